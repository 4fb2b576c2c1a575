package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/quizera/internal/client/client"
	"github.com/dmitrijs2005/quizera/internal/client/config"
	"github.com/dmitrijs2005/quizera/internal/client/guard"
	"github.com/dmitrijs2005/quizera/internal/client/locator"
	"github.com/dmitrijs2005/quizera/internal/client/repositories/history"
	"github.com/dmitrijs2005/quizera/internal/client/services"
	"github.com/dmitrijs2005/quizera/internal/client/session"
	"github.com/dmitrijs2005/quizera/internal/common"
	"github.com/dmitrijs2005/quizera/internal/cryptox"
	"github.com/dmitrijs2005/quizera/internal/logging"
)

type Mode string

const (
	ModeUnknown Mode = ""
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Views the REPL can be on. Protected views are entered through the guard.
const (
	ViewHome      = "home"
	ViewLogin     = "login"
	ViewSignup    = "signup"
	ViewDashboard = "dashboard"
	ViewGenerate  = "generate"
	ViewHistory   = "history"
	ViewExport    = "export"
	ViewSettings  = "settings"
	ViewAdmin     = "admin"
)

var protectedViews = map[string]bool{
	ViewDashboard: true,
	ViewGenerate:  true,
	ViewHistory:   true,
	ViewExport:    true,
	ViewSettings:  true,
	ViewAdmin:     true,
}

type App struct {
	config  *config.Config
	log     logging.Logger
	api     client.Client
	auth    services.AuthService
	quiz    services.QuizService
	guard   *guard.Guard
	baseURL string
	reader  *bufio.Reader
	out     io.Writer
	closeFn func() error

	mu   sync.Mutex
	mode Mode
	view string
}

// NewApp wires the client: it resolves the backend, opens the local database
// and builds the services on top of them.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	baseURL := locator.ResolveWithLogger(ctx, locator.Env{Override: c.APIURL, Host: c.Host}, log)

	db, err := client.InitDatabase(ctx, c.DataFile)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	secret, err := cryptox.LoadOrCreateSecret(c.SecretFile())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	sealer, err := cryptox.NewSealer(secret)
	common.WipeByteArray(secret)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	// Timeouts are applied per operation by the services.
	api := client.NewHTTPClient(baseURL, 0, log)
	store := session.NewStore(db, sealer, log)
	as := services.NewAuthService(api, store, log, c.RequestTimeout)
	qs := services.NewQuizService(api, as, history.NewSQLiteRepository(db), log, c.GenerateTimeout)

	return &App{
		config:  c,
		log:     log.With("component", "cli"),
		api:     api,
		auth:    as,
		quiz:    qs,
		guard:   guard.New(ViewLogin),
		baseURL: baseURL,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		closeFn: db.Close,
	}, nil
}

// Run starts session initialization, the background watchers and the REPL.
// It blocks until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer a.shutdown(cancel, &wg)

	printlnFn("Welcome to QuizEra CLI (type 'help' for commands)")

	states, unsubscribe := a.auth.Subscribe()
	defer unsubscribe()

	wg.Add(3)
	go func() {
		defer wg.Done()
		a.guard.Watch(ctx, states, a.onOutcome)
	}()
	go func() {
		defer wg.Done()
		a.auth.Init(ctx)
	}()
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

// shutdown stops the background goroutines and waits for them before the
// database is closed underneath them.
func (a *App) shutdown(cancel context.CancelFunc, wg *sync.WaitGroup) {
	cancel()
	wg.Wait()
	if err := a.Close(); err != nil {
		a.log.Warn(context.Background(), "close database", "error", err)
	}
}

func (a *App) Close() error {
	if a.closeFn == nil {
		return nil
	}
	return a.closeFn()
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), fmt.Sprintf("switched to %s mode", mode))
	}
}

func (a *App) getMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setView(view string) {
	a.mu.Lock()
	a.view = view
	a.mu.Unlock()
}

func (a *App) currentView() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

func (a *App) isLoggedIn() bool {
	return a.auth.State() == services.StateAuthenticated
}

// onOutcome follows session transitions: a resolved session lands on the
// dashboard, and losing it while on a protected view returns to login.
func (a *App) onOutcome(o guard.Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch o {
	case guard.Redirect:
		if protectedViews[a.view] {
			printlnFn("Your session has ended. Please log in again.")
			a.view = a.guard.LoginView
		} else if a.view == "" {
			a.view = a.guard.LoginView
		}
	case guard.Render:
		if a.view == "" || a.view == ViewLogin || a.view == ViewSignup {
			a.view = ViewDashboard
		}
	}
}

// enter runs fn as the protected view. While the session is still being
// resolved nothing is shown; without a session the user is sent to login.
func (a *App) enter(ctx context.Context, view string, fn func(ctx context.Context) error) error {
	switch a.guard.Evaluate(a.auth.State()) {
	case guard.Pending:
		printlnFn("Checking your session, try again in a moment.")
		return ErrSessionPending
	case guard.Redirect:
		a.setView(a.guard.LoginView)
		printlnFn("Please log in first.")
		return ErrLoginRequired
	}
	a.setView(view)
	return fn(ctx)
}

// StartOnlineStatusWatcher probes the backend every interval and flips the
// mode shown in the prompt.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	probe := func() {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := a.api.Ping(pctx)
		cancel()

		if err != nil {
			a.setMode(ModeOffline)
		} else {
			a.setMode(ModeOnline)
		}
	}

	probe()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probe()
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	var s string
	switch a.auth.State() {
	case services.StateUnknown:
		s = "checking session"
	case services.StateAuthenticated:
		if u := a.auth.User(); u != nil {
			s = fmt.Sprintf("%s, %d credits", u.Email, u.Credits)
		}
	default:
		s = "guest"
	}
	if m := a.getMode(); m != ModeUnknown {
		s += ", " + string(m)
	}
	if v := a.currentView(); v != "" {
		s += " | " + v
	}
	return fmt.Sprintf("(%s)", s)
}
