// Package session owns the authentication lifecycle of the client: it drives
// the Unauthenticated, Authenticating and Authenticated states, issues the
// call-engine token and holds the session's identity and engine handle.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mkoval-dev/peercall/internal/calls"
	"github.com/mkoval-dev/peercall/internal/common"
	"github.com/mkoval-dev/peercall/internal/domain"
	"github.com/mkoval-dev/peercall/internal/logging"
)

type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Authenticator validates identities against the profile store.
type Authenticator interface {
	Signup(ctx context.Context, userID, userName string, avatarData []byte, avatarName string) (*domain.Profile, error)
	Login(ctx context.Context, userID, userName string) (*domain.Profile, error)
}

// IdentityCache persists the signed-in identity across restarts.
type IdentityCache interface {
	SaveIdentity(ctx context.Context, id domain.UserIdentity) error
	LoadIdentity(ctx context.Context) (*domain.UserIdentity, error)
	ClearIdentity(ctx context.Context) error
}

// EngineFactory builds a call engine handle for an authenticated identity.
// The token is the engine session token issued for that identity.
type EngineFactory func(token string, self domain.UserIdentity) (calls.Engine, error)

// TokenConfig holds the call-engine credentials used to issue session tokens.
type TokenConfig struct {
	AppID    int64
	Secret   []byte
	Room     string
	Validity time.Duration
}

// Controller is the session state machine. Identity and engine are set once
// per session and stay immutable until logout.
type Controller struct {
	auth    Authenticator
	cache   IdentityCache
	engines EngineFactory
	tokens  TokenConfig
	logger  logging.Logger

	mu          sync.Mutex
	state       State
	self        domain.UserIdentity
	engine      calls.Engine
	offlineHook func(ctx context.Context) error
}

func NewController(auth Authenticator, cache IdentityCache, engines EngineFactory, tokens TokenConfig, logger logging.Logger) *Controller {
	return &Controller{
		auth:    auth,
		cache:   cache,
		engines: engines,
		tokens:  tokens,
		logger:  logger,
		state:   StateUnauthenticated,
	}
}

// SetOfflineHook registers the cleanup that Logout runs before the engine is
// discarded, normally the presence GoOffline call. Replaces any previous hook.
func (c *Controller) SetOfflineHook(fn func(ctx context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offlineHook = fn
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Identity returns the authenticated identity.
func (c *Controller) Identity() (domain.UserIdentity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAuthenticated {
		return domain.UserIdentity{}, common.ErrorNotAuthenticated
	}
	return c.self, nil
}

// Engine returns the session's call engine handle.
func (c *Controller) Engine() (calls.Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAuthenticated {
		return nil, common.ErrorNotAuthenticated
	}
	return c.engine, nil
}

// Signup registers a new profile and authenticates as it.
func (c *Controller) Signup(ctx context.Context, userID, userName string, avatarData []byte, avatarName string) error {
	if err := c.requireUnauthenticated(); err != nil {
		return err
	}

	p, err := c.auth.Signup(ctx, userID, userName, avatarData, avatarName)
	if err != nil {
		return err
	}

	return c.authenticate(ctx, domain.UserIdentity{UserID: p.UserID, UserName: p.UserName})
}

// Login validates the identity against the profile store and authenticates.
func (c *Controller) Login(ctx context.Context, userID, userName string) error {
	if err := c.requireUnauthenticated(); err != nil {
		return err
	}

	p, err := c.auth.Login(ctx, userID, userName)
	if err != nil {
		return err
	}

	return c.authenticate(ctx, domain.UserIdentity{UserID: p.UserID, UserName: p.UserName})
}

// Resume replays authentication from the cached identity. It reports false
// when no identity is cached; the profile store is not consulted again.
func (c *Controller) Resume(ctx context.Context) (bool, error) {
	if err := c.requireUnauthenticated(); err != nil {
		return false, err
	}

	id, err := c.cache.LoadIdentity(ctx)
	if err != nil {
		return false, fmt.Errorf("loading cached identity: %w", err)
	}
	if id == nil {
		return false, nil
	}

	if err := c.authenticate(ctx, *id); err != nil {
		return false, err
	}
	return true, nil
}

// Logout runs the offline hook, discards the engine and clears the cached
// identity. Calling it while not authenticated is a no-op.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateAuthenticated {
		return nil
	}

	// presence must be withdrawn while the session is still intact
	if c.offlineHook != nil {
		if err := c.offlineHook(ctx); err != nil {
			c.logger.Warn(ctx, "failed to go offline on logout", "error", err)
		}
	}

	if err := c.cache.ClearIdentity(ctx); err != nil {
		c.logger.Warn(ctx, "failed to clear cached identity", "error", err)
	}

	c.logger.Info(ctx, "logged out", "user_id", c.self.UserID)
	c.self = domain.UserIdentity{}
	c.engine = nil
	c.offlineHook = nil
	c.state = StateUnauthenticated
	return nil
}

func (c *Controller) requireUnauthenticated() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateUnauthenticated {
		return fmt.Errorf("%w: already signed in, log out first", common.ErrorValidation)
	}
	return nil
}

func (c *Controller) authenticate(ctx context.Context, id domain.UserIdentity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateAuthenticating

	token, err := GenerateKitToken(c.tokens.AppID, c.tokens.Secret, c.tokens.Room, id.UserID, id.UserName, c.tokens.Validity)
	if err != nil {
		c.state = StateUnauthenticated
		return fmt.Errorf("issuing engine token: %w", err)
	}

	engine, err := c.engines(token, id)
	if err != nil {
		c.state = StateUnauthenticated
		return fmt.Errorf("constructing call engine: %w", err)
	}

	// a cache failure only costs a re-login after restart
	if err := c.cache.SaveIdentity(ctx, id); err != nil {
		c.logger.Warn(ctx, "failed to cache identity", "error", err)
	}

	c.self = id
	c.engine = engine
	c.state = StateAuthenticated
	c.logger.Info(ctx, "session authenticated", "user_id", id.UserID)
	return nil
}
