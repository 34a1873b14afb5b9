package twitchinfra

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/nicklaw5/helix/v2"

	"voxbot/internal/domain"
)

// UserResolver maps Twitch logins to stable user ids through the Helix
// API. Restriction records are keyed by id so they survive renames.
//
// The Helix client is built on first use so the bot can boot with
// chat-only credentials; lookups fail with an error until the API
// credentials are configured.
type UserResolver struct {
	clientID        string
	userAccessToken string

	mu     sync.Mutex
	client *helix.Client
	cache  map[string]string
}

func NewUserResolver(clientID, userAccessToken string) *UserResolver {
	return &UserResolver{
		clientID:        clientID,
		userAccessToken: userAccessToken,
		cache:           make(map[string]string),
	}
}

func (r *UserResolver) api() (*helix.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return r.client, nil
	}
	if r.clientID == "" {
		return nil, fmt.Errorf("helix: api credentials not configured")
	}

	client, err := helix.NewClient(&helix.Options{
		ClientID:        r.clientID,
		UserAccessToken: r.userAccessToken,
	})
	if err != nil {
		return nil, fmt.Errorf("helix: NewClient: %w", err)
	}
	r.client = client
	return client, nil
}

func (r *UserResolver) ResolveViewerID(ctx context.Context, login string) (string, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" {
		return "", fmt.Errorf("helix: empty login")
	}

	r.mu.Lock()
	if id, ok := r.cache[login]; ok {
		r.mu.Unlock()
		return id, nil
	}
	r.mu.Unlock()

	client, err := r.api()
	if err != nil {
		return "", err
	}

	resp, err := client.GetUsers(&helix.UsersParams{Logins: []string{login}})
	if err != nil {
		return "", fmt.Errorf("helix: GetUsers: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("helix: GetUsers failed (%d: %s) %s",
			resp.StatusCode, resp.Error, resp.ErrorMessage)
	}
	if len(resp.Data.Users) == 0 {
		return "", fmt.Errorf("helix: user %q not found", login)
	}

	id := resp.Data.Users[0].ID

	r.mu.Lock()
	r.cache[login] = id
	r.mu.Unlock()

	return id, nil
}

var _ domain.ViewerResolver = (*UserResolver)(nil)
