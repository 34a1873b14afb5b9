package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackers_CheckDuplicate(t *testing.T) {
	tr := NewTrackers()
	base := time.Now()
	window := 30 * time.Second

	assert.False(t, tr.CheckDuplicate("100", "hello", window, base))
	assert.True(t, tr.CheckDuplicate("100", "hello", window, base.Add(5*time.Second)))
	assert.False(t, tr.CheckDuplicate("200", "hello", window, base.Add(5*time.Second)),
		"same text from another viewer is not a duplicate")
	assert.False(t, tr.CheckDuplicate("100", "hello", window, base.Add(window)))
}

func TestTrackers_CheckDuplicatePrunesOldEntries(t *testing.T) {
	tr := NewTrackers()
	base := time.Now()
	window := 10 * time.Second

	tr.CheckDuplicate("100", "one", window, base)
	tr.CheckDuplicate("100", "two", window, base.Add(window+time.Second))

	assert.Len(t, tr.recent, 1)
}

func TestTrackers_UserRemaining(t *testing.T) {
	tr := NewTrackers()
	base := time.Now()
	gap := 30 * time.Second

	assert.Zero(t, tr.UserRemaining("100", gap, base), "unseen viewer has no cooldown")

	tr.MarkSpoken("100", base)

	assert.Equal(t, 20*time.Second, tr.UserRemaining("100", gap, base.Add(10*time.Second)))
	assert.Zero(t, tr.UserRemaining("100", gap, base.Add(gap)))
	assert.Zero(t, tr.UserRemaining("200", gap, base.Add(time.Second)))
}

func TestTrackers_GlobalRemaining(t *testing.T) {
	tr := NewTrackers()
	base := time.Now()
	gap := 10 * time.Second

	assert.Zero(t, tr.GlobalRemaining(gap, base))

	tr.MarkSpoken("100", base)

	assert.Equal(t, 4*time.Second, tr.GlobalRemaining(gap, base.Add(6*time.Second)))
	assert.Zero(t, tr.GlobalRemaining(gap, base.Add(gap)))
}
