package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoval-dev/peercall/internal/calls"
	"github.com/mkoval-dev/peercall/internal/common"
	"github.com/mkoval-dev/peercall/internal/domain"
	"github.com/mkoval-dev/peercall/internal/logging"
)

type fakeAuthenticator struct {
	profiles   map[string]string // userID -> userName
	loginCalls int
}

func (f *fakeAuthenticator) Signup(ctx context.Context, userID, userName string, avatarData []byte, avatarName string) (*domain.Profile, error) {
	if _, ok := f.profiles[userID]; ok {
		return nil, common.ErrorUserIDTaken
	}
	f.profiles[userID] = userName
	return &domain.Profile{UserID: userID, UserName: userName}, nil
}

func (f *fakeAuthenticator) Login(ctx context.Context, userID, userName string) (*domain.Profile, error) {
	f.loginCalls++
	name, ok := f.profiles[userID]
	if !ok || name != userName {
		return nil, common.ErrorNotFound
	}
	return &domain.Profile{UserID: userID, UserName: userName}, nil
}

type fakeCache struct {
	id *domain.UserIdentity
}

func (f *fakeCache) SaveIdentity(ctx context.Context, id domain.UserIdentity) error {
	f.id = &id
	return nil
}

func (f *fakeCache) LoadIdentity(ctx context.Context) (*domain.UserIdentity, error) {
	return f.id, nil
}

func (f *fakeCache) ClearIdentity(ctx context.Context) error {
	f.id = nil
	return nil
}

type nopEngine struct{}

func (nopEngine) SendInvitation(ctx context.Context, inv calls.Invitation) error { return nil }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testTokens() TokenConfig {
	return TokenConfig{AppID: 42, Secret: []byte("test-secret"), Room: "main", Validity: time.Hour}
}

func newController(auth *fakeAuthenticator, cache *fakeCache, factory EngineFactory) *Controller {
	if factory == nil {
		factory = func(token string, self domain.UserIdentity) (calls.Engine, error) {
			return nopEngine{}, nil
		}
	}
	return NewController(auth, cache, factory, testTokens(), testLogger())
}

func TestLogin_Success_Authenticates(t *testing.T) {
	auth := &fakeAuthenticator{profiles: map[string]string{"alice": "Alice"}}
	cache := &fakeCache{}
	c := newController(auth, cache, nil)

	require.Equal(t, StateUnauthenticated, c.State())

	require.NoError(t, c.Login(context.Background(), "alice", "Alice"))
	assert.Equal(t, StateAuthenticated, c.State())

	id, err := c.Identity()
	require.NoError(t, err)
	assert.Equal(t, "alice", id.UserID)

	engine, err := c.Engine()
	require.NoError(t, err)
	assert.NotNil(t, engine)

	require.NotNil(t, cache.id, "identity must be cached for resume")
	assert.Equal(t, "alice", cache.id.UserID)
}

func TestLogin_UnknownAccount_StaysUnauthenticated(t *testing.T) {
	auth := &fakeAuthenticator{profiles: map[string]string{"alice": "Alice"}}
	c := newController(auth, &fakeCache{}, nil)

	err := c.Login(context.Background(), "alice", "NotAlice")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, StateUnauthenticated, c.State())

	_, err = c.Engine()
	assert.ErrorIs(t, err, common.ErrorNotAuthenticated)
}

func TestLogin_WhileAuthenticated_Rejected(t *testing.T) {
	auth := &fakeAuthenticator{profiles: map[string]string{"alice": "Alice"}}
	c := newController(auth, &fakeCache{}, nil)

	require.NoError(t, c.Login(context.Background(), "alice", "Alice"))

	err := c.Login(context.Background(), "alice", "Alice")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestSignup_Success_Authenticates(t *testing.T) {
	auth := &fakeAuthenticator{profiles: map[string]string{}}
	c := newController(auth, &fakeCache{}, nil)

	require.NoError(t, c.Signup(context.Background(), "bob", "Bob", nil, ""))
	assert.Equal(t, StateAuthenticated, c.State())

	id, err := c.Identity()
	require.NoError(t, err)
	assert.Equal(t, "bob", id.UserID)
}

func TestEngineFactory_ReceivesValidToken(t *testing.T) {
	auth := &fakeAuthenticator{profiles: map[string]string{"alice": "Alice"}}

	var gotToken string
	factory := func(token string, self domain.UserIdentity) (calls.Engine, error) {
		gotToken = token
		return nopEngine{}, nil
	}
	c := newController(auth, &fakeCache{}, factory)

	require.NoError(t, c.Login(context.Background(), "alice", "Alice"))

	claims, err := ParseKitToken(gotToken, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.AppID)
	assert.Equal(t, "main", claims.Room)
	assert.Equal(t, "alice", claims.UserID)
	assert.Equal(t, "Alice", claims.UserName)
}

func TestEngineFactoryFailure_RevertsToUnauthenticated(t *testing.T) {
	auth := &fakeAuthenticator{profiles: map[string]string{"alice": "Alice"}}
	factory := func(token string, self domain.UserIdentity) (calls.Engine, error) {
		return nil, errors.New("engine unreachable")
	}
	c := newController(auth, &fakeCache{}, factory)

	err := c.Login(context.Background(), "alice", "Alice")
	require.Error(t, err)
	assert.Equal(t, StateUnauthenticated, c.State())
}

func TestResume_NoCachedIdentity_ReportsFalse(t *testing.T) {
	c := newController(&fakeAuthenticator{profiles: map[string]string{}}, &fakeCache{}, nil)

	resumed, err := c.Resume(context.Background())
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Equal(t, StateUnauthenticated, c.State())
}

func TestResume_CachedIdentity_SkipsProfileLookup(t *testing.T) {
	auth := &fakeAuthenticator{profiles: map[string]string{}}
	cache := &fakeCache{id: &domain.UserIdentity{UserID: "alice", UserName: "Alice"}}
	c := newController(auth, cache, nil)

	resumed, err := c.Resume(context.Background())
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, StateAuthenticated, c.State())
	assert.Zero(t, auth.loginCalls, "resume must not consult the profile store")
}

func TestLogout_RunsOfflineHookAndClearsEverything(t *testing.T) {
	auth := &fakeAuthenticator{profiles: map[string]string{"alice": "Alice"}}
	cache := &fakeCache{}
	c := newController(auth, cache, nil)

	require.NoError(t, c.Login(context.Background(), "alice", "Alice"))

	hookCalls := 0
	c.SetOfflineHook(func(ctx context.Context) error {
		hookCalls++
		// the session must still be intact when the hook runs
		assert.Equal(t, StateAuthenticated, c.state)
		return nil
	})

	require.NoError(t, c.Logout(context.Background()))
	assert.Equal(t, 1, hookCalls)
	assert.Equal(t, StateUnauthenticated, c.State())
	assert.Nil(t, cache.id)

	_, err := c.Identity()
	assert.ErrorIs(t, err, common.ErrorNotAuthenticated)
}

func TestLogout_WhileUnauthenticated_IsNoOp(t *testing.T) {
	c := newController(&fakeAuthenticator{profiles: map[string]string{}}, &fakeCache{}, nil)
	require.NoError(t, c.Logout(context.Background()))
	require.NoError(t, c.Logout(context.Background()))
}
