// Package cli implements the interactive peercall client: a small REPL that
// drives signup, login, presence and call invitations.
package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/mkoval-dev/peercall/internal/avatar"
	"github.com/mkoval-dev/peercall/internal/calls"
	"github.com/mkoval-dev/peercall/internal/config"
	"github.com/mkoval-dev/peercall/internal/domain"
	"github.com/mkoval-dev/peercall/internal/localstate"
	"github.com/mkoval-dev/peercall/internal/logging"
	"github.com/mkoval-dev/peercall/internal/presence"
	"github.com/mkoval-dev/peercall/internal/profile"
	"github.com/mkoval-dev/peercall/internal/session"
	"github.com/mkoval-dev/peercall/internal/storage"
)

const presenceBucket = "presence"

// App wires the long-lived collaborators (stores, NATS, session controller)
// and holds the per-session state built after a successful login.
type App struct {
	config   *config.Config
	logger   logging.Logger
	session  *session.Controller
	profiles *profile.Service
	store    *presence.NatsStore
	attempts calls.AttemptRepository
	reader   *bufio.Reader

	mu         sync.Mutex
	presenceCo *presence.Coordinator
	callsCo    *calls.Coordinator
	snapshot   domain.Snapshot
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	localDB, err := localstate.OpenDatabase(ctx, c.LocalDBPath)
	if err != nil {
		return nil, err
	}
	identityCache := localstate.NewStore(localDB)

	db, err := storage.Open(c.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := storage.RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	nc, err := nats.Connect(c.NatsURL, nats.Name("peercall"))
	if err != nil {
		return nil, err
	}

	store, err := presence.NewNatsStore(nc, presenceBucket, c.PresenceTTL, logger)
	if err != nil {
		return nil, err
	}

	uploader := avatar.NewS3Uploader(avatar.S3Config{
		RootUser:     c.S3RootUser,
		RootPassword: c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		URLValidity:  c.AvatarURLValidity,
	})
	profiles := profile.NewService(profile.NewPostgresRepository(db), uploader, logger)

	engineFactory := func(token string, self domain.UserIdentity) (calls.Engine, error) {
		return calls.NewNatsEngine(nc, token), nil
	}

	controller := session.NewController(profiles, identityCache, engineFactory, session.TokenConfig{
		AppID:    c.CallAppID,
		Secret:   []byte(c.CallServerSecret),
		Room:     c.CallRoom,
		Validity: c.TokenValidityDuration,
	}, logger)

	return &App{
		config:   c,
		logger:   logger,
		session:  controller,
		profiles: profiles,
		store:    store,
		attempts: calls.NewPostgresAttemptRepository(db),
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == session.StateAuthenticated
}

// Run resumes a cached session if one exists and enters the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.store.Close()

	if resumed, err := a.session.Resume(ctx); err != nil {
		a.logger.Warn(ctx, "session resume failed", "error", err)
	} else if resumed {
		if err := a.startSession(ctx); err != nil {
			a.logger.Warn(ctx, "going online after resume failed", "error", err)
		}
	}

	a.Root(ctx)

	// graceful exit retracts presence like an explicit logout
	if a.isLoggedIn() {
		if err := a.session.Logout(ctx); err != nil {
			a.logger.Warn(ctx, "logout on exit failed", "error", err)
		}
	}
}

// startSession builds the per-session coordinators, goes online and keeps a
// live snapshot of who is online. Call only while authenticated.
func (a *App) startSession(ctx context.Context) error {
	id, err := a.session.Identity()
	if err != nil {
		return err
	}
	engine, err := a.session.Engine()
	if err != nil {
		return err
	}

	watchCtx, cancelWatch := context.WithCancel(context.Background())

	co := presence.NewCoordinator(a.store, id, a.logger)
	if err := co.Start(watchCtx); err != nil {
		cancelWatch()
		return err
	}
	if err := co.GoOnline(ctx); err != nil {
		cancelWatch()
		return err
	}

	unsubscribe := co.Subscribe(func(snap domain.Snapshot) {
		a.mu.Lock()
		a.snapshot = snap
		a.mu.Unlock()
	})

	a.mu.Lock()
	a.presenceCo = co
	a.callsCo = calls.NewCoordinator(engine, a.attempts, id, a.config.InviteTimeout, a.logger)
	a.mu.Unlock()

	a.session.SetOfflineHook(func(ctx context.Context) error {
		unsubscribe()
		cancelWatch()
		err := co.GoOffline(ctx)

		a.mu.Lock()
		a.presenceCo = nil
		a.callsCo = nil
		a.snapshot = nil
		a.mu.Unlock()

		return err
	})

	return nil
}

func (a *App) currentSnapshot() domain.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot.Clone()
}

func (a *App) callCoordinator() *calls.Coordinator {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.callsCo
}
