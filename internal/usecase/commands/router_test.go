package commands

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxbot/internal/domain"
)

type fakeOut struct {
	mu      sync.Mutex
	replies []string
}

func (f *fakeOut) SendMessage(_ context.Context, _ domain.Platform, _ string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakeOut) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.replies) == 0 {
		return ""
	}
	return f.replies[len(f.replies)-1]
}

type stubCommand struct {
	name    string
	aliases []string
	modOnly bool
	calls   []*Context
}

func (s *stubCommand) Name() string      { return s.name }
func (s *stubCommand) Aliases() []string { return s.aliases }
func (s *stubCommand) ModOnly() bool     { return s.modOnly }

func (s *stubCommand) Handle(_ context.Context, c *Context) error {
	s.calls = append(s.calls, c)
	return nil
}

func modMsg(text string) domain.ChatMessage {
	return domain.ChatMessage{
		Platform:    domain.PlatformTwitch,
		ChannelID:   "chan",
		ViewerID:    "1",
		Username:    "mod",
		Text:        text,
		IsModerator: true,
	}
}

func TestRouter_RoutesByNameAndAlias(t *testing.T) {
	router := NewRouter("~")
	cmd := &stubCommand{name: "skip", aliases: []string{"next"}}
	router.Register(cmd)
	out := &fakeOut{}

	require.NoError(t, router.Handle(context.Background(), modMsg("~skip"), out))
	require.NoError(t, router.Handle(context.Background(), modMsg("~NEXT"), out))

	assert.Len(t, cmd.calls, 2)
}

func TestRouter_PassesArguments(t *testing.T) {
	router := NewRouter("~")
	cmd := &stubCommand{name: "mute"}
	router.Register(cmd)

	require.NoError(t, router.Handle(context.Background(), modMsg("~mute  @bob   10"), &fakeOut{}))

	require.Len(t, cmd.calls, 1)
	assert.Equal(t, []string{"@bob", "10"}, cmd.calls[0].Args)
}

func TestRouter_Matches(t *testing.T) {
	router := NewRouter("~")

	assert.True(t, router.Matches(modMsg("~skip")))
	assert.True(t, router.Matches(modMsg("  ~skip")))
	assert.False(t, router.Matches(modMsg("!skip")))
	assert.False(t, router.Matches(modMsg("skip")))
}

func TestRouter_ModOnlyGate(t *testing.T) {
	router := NewRouter("~")
	cmd := &stubCommand{name: "skip", modOnly: true}
	router.Register(cmd)

	viewer := modMsg("~skip")
	viewer.IsModerator = false
	require.NoError(t, router.Handle(context.Background(), viewer, &fakeOut{}))
	assert.Empty(t, cmd.calls, "viewers cannot run mod commands")

	owner := viewer
	owner.IsOwner = true
	require.NoError(t, router.Handle(context.Background(), owner, &fakeOut{}))
	assert.Len(t, cmd.calls, 1, "the broadcaster always may")
}

func TestRouter_UnknownCommandIsSilent(t *testing.T) {
	router := NewRouter("~")
	out := &fakeOut{}

	require.NoError(t, router.Handle(context.Background(), modMsg("~nosuchthing"), out))
	require.NoError(t, router.Handle(context.Background(), modMsg("~"), out))

	assert.Empty(t, out.replies)
}
