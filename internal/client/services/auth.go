// Package services contains application services for the QuizEra client.
// This file defines the authentication service: the session state machine,
// login and OTP signup, profile and credit updates, and account deletion.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/quizera/internal/client/client"
	"github.com/dmitrijs2005/quizera/internal/client/models"
	"github.com/dmitrijs2005/quizera/internal/client/session"
	"github.com/dmitrijs2005/quizera/internal/common"
	"github.com/dmitrijs2005/quizera/internal/logging"
)

// State is the authentication state of the running client.
type State int

const (
	// StateUnknown is the initial state, before the stored session is checked.
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// SessionStore persists the token and user together.
type SessionStore interface {
	Save(ctx context.Context, token string, user *models.User) error
	Clear(ctx context.Context) error
	DropToken(ctx context.Context) error
	Load(ctx context.Context) (string, *models.User)
}

// AuthService owns the single session of the running client.
//
// Contract:
//   - Init: resolve the stored session once, failing closed.
//   - Login, VerifyOTP, Signup: on success persist token and user and become
//     authenticated.
//   - SendOTP: request a code and stage the signup in memory.
//   - Logout: never fails; always ends anonymous with an empty store.
//   - UpdateUser, DeleteAccount: require an authenticated session.
//   - UpdateCredits: merge a new balance into the user; failures are only
//     logged.
//
// Operations never return raw errors; callers show Result.Error.
type AuthService interface {
	Init(ctx context.Context)

	Login(ctx context.Context, email string, password []byte) Result
	SendOTP(ctx context.Context, name, email string, password []byte) Result
	VerifyOTP(ctx context.Context, email, otp string) Result
	Signup(ctx context.Context, name, email string, password []byte, otp string) Result
	Logout(ctx context.Context) Result

	UpdateUser(ctx context.Context, patch models.ProfilePatch) Result
	UpdateCredits(ctx context.Context, credits int)
	Refresh(ctx context.Context) Result
	DeleteAccount(ctx context.Context) Result

	State() State
	Loading() bool
	User() *models.User
	Token() string
	IsAdmin() bool

	PendingSignup() (email string, ok bool)
	AbandonSignup()

	// Subscribe returns a channel that receives the current state and then
	// every transition. A slow reader only sees the latest state. cancel
	// closes the channel.
	Subscribe() (states <-chan State, cancel func())
}

// Operation names used by the in-flight guard.
const (
	opLogin   = "login"
	opSendOTP = "send_otp"
	opVerify  = "verify_otp"
	opSignup  = "signup"
	opUpdate  = "update_user"
	opRefresh = "refresh"
	opDelete  = "delete_account"
)

var errSessionChanged = errors.New("session changed during request")

type pendingSignup struct {
	name     string
	email    string
	password []byte
}

func (p *pendingSignup) wipe() {
	if p != nil {
		common.WipeByteArray(p.password)
	}
}

type authService struct {
	client  client.Client
	store   SessionStore
	log     logging.Logger
	timeout time.Duration
	now     func() time.Time

	// persistMu serializes store writes with the in-memory update that
	// follows them.
	persistMu sync.Mutex

	mu       sync.Mutex
	initOnce sync.Once
	state    State
	loading  bool
	token    string
	user     *models.User
	pending  *pendingSignup
	inflight map[string]bool
	subs     map[int]chan State
	nextSub  int
}

// NewAuthService constructs an AuthService. timeout bounds every backend
// request; zero leaves requests bounded only by ctx.
func NewAuthService(c client.Client, store SessionStore, log logging.Logger, timeout time.Duration) AuthService {
	return &authService{
		client:   c,
		store:    store,
		log:      log.With("component", "auth_service"),
		timeout:  timeout,
		now:      time.Now,
		state:    StateUnknown,
		loading:  true,
		inflight: make(map[string]bool),
		subs:     make(map[int]chan State),
	}
}

func (a *authService) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout > 0 {
		return context.WithTimeout(ctx, a.timeout)
	}
	return context.WithCancel(ctx)
}

func (a *authService) begin(op string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inflight[op] {
		return false
	}
	a.inflight[op] = true
	return true
}

func (a *authService) end(op string) {
	a.mu.Lock()
	delete(a.inflight, op)
	a.mu.Unlock()
}

// setSession replaces the in-memory session and broadcasts a state change.
// Callers hold persistMu.
func (a *authService) setSession(state State, token string, user *models.User) {
	a.mu.Lock()
	defer a.mu.Unlock()

	changed := a.state != state
	a.state = state
	a.token = token
	a.user = user
	if state != StateUnknown {
		a.loading = false
	}
	if changed {
		a.broadcastLocked(state)
	}
}

func (a *authService) broadcastLocked(s State) {
	for _, ch := range a.subs {
		select {
		case ch <- s:
		default:
			// drop the stale value so the newest one fits
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}

func (a *authService) Subscribe() (<-chan State, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextSub
	a.nextSub++
	ch := make(chan State, 1)
	ch <- a.state
	a.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subs, id)
			close(ch)
			a.mu.Unlock()
		})
	}
}

// Init checks the stored session with the backend. It runs once; later calls
// return immediately. Whatever happens, the service leaves StateUnknown and
// Loading reports false afterwards.
func (a *authService) Init(ctx context.Context) {
	a.initOnce.Do(func() {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.connectionTest(ctx)
		}()

		a.resolveStoredSession(ctx)
		wg.Wait()
	})
}

func (a *authService) connectionTest(ctx context.Context) {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	if err := a.client.Ping(ctx); err != nil {
		a.log.Warn(ctx, "backend connection test failed", "error", err)
		return
	}
	a.log.Info(ctx, "backend connection test passed")
}

func (a *authService) resolveStoredSession(ctx context.Context) {
	a.persistMu.Lock()
	defer a.persistMu.Unlock()

	token, user := a.store.Load(ctx)
	if token == "" || user == nil {
		a.log.Debug(ctx, "no stored session")
		a.clearStore(ctx)
		a.setSession(StateAnonymous, "", nil)
		return
	}

	if session.TokenExpired(token, a.now()) {
		a.log.Info(ctx, "stored token expired", "email", user.Email)
		a.clearStore(ctx)
		a.setSession(StateAnonymous, "", nil)
		return
	}

	reqCtx, cancel := a.requestContext(ctx)
	fresh, err := a.client.Profile(reqCtx, token)
	cancel()
	if err != nil {
		switch {
		case errors.Is(err, client.ErrUnauthorized):
			a.log.Info(ctx, "stored token rejected", "email", user.Email)
		case client.IsTransportError(err):
			a.log.Warn(ctx, "profile check unavailable, signing out", "error", err)
		default:
			a.log.Info(ctx, "profile check failed", "error", err)
		}
		a.clearStore(ctx)
		a.setSession(StateAnonymous, "", nil)
		return
	}

	// The stored pair still holds the same token, so a failed snapshot
	// refresh leaves the store consistent.
	if err := a.store.Save(ctx, token, fresh); err != nil {
		a.log.Warn(ctx, "refresh stored user", "error", err)
	}
	a.setSession(StateAuthenticated, token, fresh)
	a.log.Info(ctx, "session restored", "email", fresh.Email, "credits", fresh.Credits)
}

// clearStoreAttempts bounds how often Clear is tried before falling back to
// dropping the token alone.
const clearStoreAttempts = 2

// clearStore removes the stored session. If Clear keeps failing the token is
// deleted on its own, which is enough for Load to report no session.
func (a *authService) clearStore(ctx context.Context) {
	var err error
	for range clearStoreAttempts {
		if err = a.store.Clear(ctx); err == nil {
			return
		}
		a.log.Warn(ctx, "clear stored session", "error", err)
	}

	if err := a.store.DropToken(ctx); err != nil {
		a.log.Error(ctx, "drop stored token", "error", err)
		return
	}
	a.log.Warn(ctx, "stored session cleared by dropping the token", "error", err)
}

// establish persists and publishes a new session.
func (a *authService) establish(ctx context.Context, resp *client.AuthResponse) error {
	a.persistMu.Lock()
	defer a.persistMu.Unlock()

	if err := a.store.Save(ctx, resp.Token, resp.User); err != nil {
		return err
	}
	a.setSession(StateAuthenticated, resp.Token, resp.User)
	a.log.Info(ctx, "signed in", "email", resp.User.Email)
	return nil
}

// updateSessionUser persists a new user record for the session holding
// token. build receives a copy of the current user.
func (a *authService) updateSessionUser(ctx context.Context, token string, build func(cur *models.User) *models.User) error {
	a.persistMu.Lock()
	defer a.persistMu.Unlock()

	a.mu.Lock()
	if a.state != StateAuthenticated || a.token != token {
		a.mu.Unlock()
		return errSessionChanged
	}
	next := build(a.user.Clone())
	a.mu.Unlock()

	if err := a.store.Save(ctx, token, next); err != nil {
		return err
	}
	a.setSession(StateAuthenticated, token, next)
	return nil
}

// failure maps a transport error to a Result for operations that do not
// need a session.
func (a *authService) failure(ctx context.Context, op string, err error) Result {
	var be *client.BackendError
	if errors.As(err, &be) {
		a.log.Info(ctx, "request rejected", "op", op, "status", be.Status, "error", be.Message)
		return Failed(be.Message)
	}
	a.log.Warn(ctx, "request failed", "op", op, "error", err)
	return Failed(common.MsgNetworkError)
}

// authFailure is failure for operations that carry the bearer token: a
// rejected token ends the session.
func (a *authService) authFailure(ctx context.Context, op string, err error) Result {
	if errors.Is(err, client.ErrUnauthorized) {
		a.log.Info(ctx, "token rejected, signing out", "op", op)
		a.Logout(ctx)
		return Failed(common.MsgSessionExpired)
	}
	return a.failure(ctx, op, err)
}

func (a *authService) storageFailure(ctx context.Context, op string, err error) Result {
	a.log.Error(ctx, "persist session", "op", op, "error", err)
	return Failed(common.MsgStorageError)
}

// session returns the current token, or false when not authenticated.
func (a *authService) session() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token, a.state == StateAuthenticated
}

func (a *authService) Login(ctx context.Context, email string, password []byte) Result {
	if !a.begin(opLogin) {
		return Failed(common.MsgInProgress)
	}
	defer a.end(opLogin)

	reqCtx, cancel := a.requestContext(ctx)
	defer cancel()

	resp, err := a.client.Login(reqCtx, email, string(password))
	if err != nil {
		return a.failure(ctx, opLogin, err)
	}
	if err := a.establish(ctx, resp); err != nil {
		return a.storageFailure(ctx, opLogin, err)
	}
	a.AbandonSignup()
	return OK(resp.Message)
}

// SendOTP asks the backend to mail a code and keeps the candidate profile in
// memory for VerifyOTP. The staged password is a copy; the caller may wipe
// its own.
func (a *authService) SendOTP(ctx context.Context, name, email string, password []byte) Result {
	if !a.begin(opSendOTP) {
		return Failed(common.MsgInProgress)
	}
	defer a.end(opSendOTP)

	if err := ValidateSignup(name, email, password, password); err != nil {
		return Failed(err.Error())
	}

	reqCtx, cancel := a.requestContext(ctx)
	defer cancel()

	msg, err := a.client.SendOTP(reqCtx, name, email, string(password))
	if err != nil {
		return a.failure(ctx, opSendOTP, err)
	}

	staged := &pendingSignup{name: name, email: email, password: append([]byte(nil), password...)}
	a.mu.Lock()
	a.pending.wipe()
	a.pending = staged
	a.mu.Unlock()

	a.log.Info(ctx, "otp requested", "email", email)
	return OK(msg)
}

// VerifyOTP confirms the code for email. An empty email means the address
// staged by the last SendOTP.
func (a *authService) VerifyOTP(ctx context.Context, email, otp string) Result {
	if !a.begin(opVerify) {
		return Failed(common.MsgInProgress)
	}
	defer a.end(opVerify)

	if email == "" {
		if staged, ok := a.PendingSignup(); ok {
			email = staged
		}
	}
	if email == "" || otp == "" {
		return Failed(MsgOTPRequired)
	}

	reqCtx, cancel := a.requestContext(ctx)
	defer cancel()

	resp, err := a.client.VerifyOTP(reqCtx, email, otp)
	if err != nil {
		return a.failure(ctx, opVerify, err)
	}
	if err := a.establish(ctx, resp); err != nil {
		return a.storageFailure(ctx, opVerify, err)
	}
	a.AbandonSignup()
	return OK(resp.Message)
}

func (a *authService) Signup(ctx context.Context, name, email string, password []byte, otp string) Result {
	if !a.begin(opSignup) {
		return Failed(common.MsgInProgress)
	}
	defer a.end(opSignup)

	reqCtx, cancel := a.requestContext(ctx)
	defer cancel()

	resp, err := a.client.Signup(reqCtx, name, email, string(password), otp)
	if err != nil {
		return a.failure(ctx, opSignup, err)
	}
	if err := a.establish(ctx, resp); err != nil {
		return a.storageFailure(ctx, opSignup, err)
	}
	a.AbandonSignup()
	return OK(resp.Message)
}

// Logout clears the store and the in-memory session. It is safe to call in
// any state.
func (a *authService) Logout(ctx context.Context) Result {
	a.persistMu.Lock()
	a.clearStore(ctx)
	a.setSession(StateAnonymous, "", nil)
	a.persistMu.Unlock()

	a.AbandonSignup()
	a.log.Debug(ctx, "signed out")
	return OK("")
}

func (a *authService) UpdateUser(ctx context.Context, patch models.ProfilePatch) Result {
	token, ok := a.session()
	if !ok {
		return Failed(common.MsgNotLoggedIn)
	}
	if !a.begin(opUpdate) {
		return Failed(common.MsgInProgress)
	}
	defer a.end(opUpdate)

	reqCtx, cancel := a.requestContext(ctx)
	defer cancel()

	updated, err := a.client.UpdateProfile(reqCtx, token, patch)
	if err != nil {
		return a.authFailure(ctx, opUpdate, err)
	}

	err = a.updateSessionUser(ctx, token, func(*models.User) *models.User { return updated })
	if errors.Is(err, errSessionChanged) {
		return Failed(common.MsgNotLoggedIn)
	}
	if err != nil {
		return a.storageFailure(ctx, opUpdate, err)
	}
	return OK(MsgProfileUpdated)
}

// UpdateCredits sets the balance on the backend and merges the confirmed
// value into the current user. Failures are logged and otherwise ignored,
// except a rejected token, which ends the session.
func (a *authService) UpdateCredits(ctx context.Context, credits int) {
	token, ok := a.session()
	if !ok {
		a.log.Debug(ctx, "credit update skipped, not signed in")
		return
	}

	reqCtx, cancel := a.requestContext(ctx)
	defer cancel()

	confirmed, err := a.client.UpdateCredits(reqCtx, token, credits)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			a.log.Info(ctx, "token rejected during credit update, signing out")
			a.Logout(ctx)
			return
		}
		a.log.Warn(ctx, "credit update failed", "credits", credits, "error", err)
		return
	}

	err = a.updateSessionUser(ctx, token, func(cur *models.User) *models.User {
		cur.Credits = confirmed
		return cur
	})
	if err != nil {
		a.log.Warn(ctx, "credit update not applied", "credits", confirmed, "error", err)
		return
	}
	a.log.Debug(ctx, "credits updated", "credits", confirmed)
}

// Refresh reloads the user record from the backend, picking up server-side
// changes such as a new credit balance.
func (a *authService) Refresh(ctx context.Context) Result {
	token, ok := a.session()
	if !ok {
		return Failed(common.MsgNotLoggedIn)
	}
	if !a.begin(opRefresh) {
		return Failed(common.MsgInProgress)
	}
	defer a.end(opRefresh)

	reqCtx, cancel := a.requestContext(ctx)
	defer cancel()

	fresh, err := a.client.Profile(reqCtx, token)
	if err != nil {
		return a.authFailure(ctx, opRefresh, err)
	}

	err = a.updateSessionUser(ctx, token, func(*models.User) *models.User { return fresh })
	if errors.Is(err, errSessionChanged) {
		return Failed(common.MsgNotLoggedIn)
	}
	if err != nil {
		return a.storageFailure(ctx, opRefresh, err)
	}
	return OK("")
}

func (a *authService) DeleteAccount(ctx context.Context) Result {
	token, ok := a.session()
	if !ok {
		return Failed(common.MsgNotLoggedIn)
	}
	if !a.begin(opDelete) {
		return Failed(common.MsgInProgress)
	}
	defer a.end(opDelete)

	reqCtx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.client.DeleteAccount(reqCtx, token); err != nil {
		return a.authFailure(ctx, opDelete, err)
	}

	a.Logout(ctx)
	a.log.Info(ctx, "account deleted")
	return OK(MsgAccountDeleted)
}

func (a *authService) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *authService) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// User returns a copy of the current user, or nil.
func (a *authService) User() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return nil
	}
	return a.user.Clone()
}

func (a *authService) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

// IsAdmin trusts only the role asserted by the backend.
func (a *authService) IsAdmin() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == StateAuthenticated && a.user != nil && a.user.IsAdmin()
}

func (a *authService) PendingSignup() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending == nil {
		return "", false
	}
	return a.pending.email, true
}

// AbandonSignup drops the staged signup and wipes its password.
func (a *authService) AbandonSignup() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending.wipe()
	a.pending = nil
}
