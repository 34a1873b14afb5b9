package restriction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxbot/internal/domain"
)

type fakeViewerRepo struct {
	records map[string]*domain.ViewerRestriction
	saves   int
	failGet bool
}

func newFakeViewerRepo() *fakeViewerRepo {
	return &fakeViewerRepo{records: make(map[string]*domain.ViewerRestriction)}
}

func (f *fakeViewerRepo) Get(_ context.Context, viewerID string) (*domain.ViewerRestriction, error) {
	if f.failGet {
		return nil, errors.New("db closed")
	}
	record, ok := f.records[viewerID]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (f *fakeViewerRepo) Save(_ context.Context, record *domain.ViewerRestriction) error {
	copied := *record
	f.records[record.ViewerID] = &copied
	f.saves++
	return nil
}

func testService(repo *fakeViewerRepo, now *time.Time) *Service {
	s := NewService(repo)
	s.now = func() time.Time { return *now }
	return s
}

func TestService_PermanentMute(t *testing.T) {
	repo := newFakeViewerRepo()
	now := time.Now()
	s := testService(repo, &now)
	ctx := context.Background()

	require.NoError(t, s.Mute(ctx, "100", 0))

	muted, err := s.IsMuted(ctx, "100")
	require.NoError(t, err)
	assert.True(t, muted)

	// Permanent means no amount of waiting clears it.
	now = now.Add(1000 * time.Hour)
	muted, err = s.IsMuted(ctx, "100")
	require.NoError(t, err)
	assert.True(t, muted)

	require.NoError(t, s.Unmute(ctx, "100"))
	muted, err = s.IsMuted(ctx, "100")
	require.NoError(t, err)
	assert.False(t, muted)
}

func TestService_TimedMuteExpiresLazily(t *testing.T) {
	repo := newFakeViewerRepo()
	now := time.Now()
	s := testService(repo, &now)
	ctx := context.Background()

	require.NoError(t, s.Mute(ctx, "100", 10*time.Minute))

	muted, err := s.IsMuted(ctx, "100")
	require.NoError(t, err)
	assert.True(t, muted)

	now = now.Add(11 * time.Minute)
	savesBefore := repo.saves

	muted, err = s.IsMuted(ctx, "100")
	require.NoError(t, err)
	assert.False(t, muted)
	assert.Equal(t, savesBefore+1, repo.saves, "expiry is written back")

	// The stored record itself is now clean.
	stored := repo.records["100"]
	assert.False(t, stored.IsMuted)
	assert.Nil(t, stored.MuteExpiresAt)

	// A second read does not write again.
	muted, err = s.IsMuted(ctx, "100")
	require.NoError(t, err)
	assert.False(t, muted)
	assert.Equal(t, savesBefore+1, repo.saves)
}

func TestService_UnknownViewerIsUnmuted(t *testing.T) {
	repo := newFakeViewerRepo()
	now := time.Now()
	s := testService(repo, &now)

	muted, err := s.IsMuted(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, muted)
	assert.Zero(t, repo.saves, "read on an unknown viewer does not create a record")
}

func TestService_CooldownGap(t *testing.T) {
	repo := newFakeViewerRepo()
	now := time.Now()
	s := testService(repo, &now)
	ctx := context.Background()

	require.NoError(t, s.SetCooldown(ctx, "100", 60*time.Second, 0))

	// No speak recorded yet, nothing to wait for.
	remaining, err := s.CooldownRemaining(ctx, "100")
	require.NoError(t, err)
	assert.Zero(t, remaining)

	require.NoError(t, s.RecordSpeak(ctx, "100"))

	now = now.Add(20 * time.Second)
	remaining, err = s.CooldownRemaining(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, 40*time.Second, remaining)

	now = now.Add(40 * time.Second)
	remaining, err = s.CooldownRemaining(ctx, "100")
	require.NoError(t, err)
	assert.Zero(t, remaining)

	// The next speak re-arms the gap.
	require.NoError(t, s.RecordSpeak(ctx, "100"))
	now = now.Add(time.Second)
	remaining, err = s.CooldownRemaining(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, 59*time.Second, remaining)
}

func TestService_CooldownRuleExpires(t *testing.T) {
	repo := newFakeViewerRepo()
	now := time.Now()
	s := testService(repo, &now)
	ctx := context.Background()

	require.NoError(t, s.SetCooldown(ctx, "100", 60*time.Second, 10*time.Minute))
	require.NoError(t, s.RecordSpeak(ctx, "100"))

	now = now.Add(11 * time.Minute)

	remaining, err := s.CooldownRemaining(ctx, "100")
	require.NoError(t, err)
	assert.Zero(t, remaining)

	stored := repo.records["100"]
	assert.False(t, stored.HasCooldown)
	assert.Nil(t, stored.CooldownExpiresAt)
}

func TestService_ClearCooldown(t *testing.T) {
	repo := newFakeViewerRepo()
	now := time.Now()
	s := testService(repo, &now)
	ctx := context.Background()

	require.NoError(t, s.SetCooldown(ctx, "100", 60*time.Second, 0))
	require.NoError(t, s.RecordSpeak(ctx, "100"))
	require.NoError(t, s.ClearCooldown(ctx, "100"))

	remaining, err := s.CooldownRemaining(ctx, "100")
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

func TestService_RepoErrorSurfaces(t *testing.T) {
	repo := newFakeViewerRepo()
	repo.failGet = true
	now := time.Now()
	s := testService(repo, &now)

	_, err := s.IsMuted(context.Background(), "100")
	assert.Error(t, err)

	_, err = s.CooldownRemaining(context.Background(), "100")
	assert.Error(t, err)
}
