package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/quizera/internal/client/services"
	"github.com/dmitrijs2005/quizera/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var (
	ErrLoginRequired  = errors.New("login required")
	ErrSessionPending = errors.New("session check in progress")
	ErrAlreadyLogged  = errors.New("already logged in")
	ErrNoPending      = errors.New("no pending signup")
	ErrNotAdmin       = errors.New("admin role required")
	ErrCancelled      = errors.New("cancelled")
)

// report prints the outcome of a service call and turns a failure into an
// error for the caller.
func report(r services.Result) error {
	if !r.Success {
		printlnFn(r.Error)
		return errors.New(r.Error)
	}
	if r.Message != "" {
		printlnFn(r.Message)
	}
	return nil
}

// Login prompts for credentials and signs in. On success the guard moves the
// REPL to the dashboard.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("Already logged in. Use 'logout' first.")
		return ErrAlreadyLogged
	}
	a.setView(ViewLogin)

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := report(a.auth.Login(ctx, email, password)); err != nil {
		return err
	}

	a.setView(ViewDashboard)
	if u := a.auth.User(); u != nil {
		printlnFn("Welcome back, " + u.Name + "!")
	}
	return nil
}

// Signup collects the signup form, validates it locally and requests an OTP.
// The code can be entered right away or later with 'verify'.
func (a *App) Signup(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("Already logged in. Use 'logout' first.")
		return ErrAlreadyLogged
	}
	a.setView(ViewSignup)

	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.out, "Confirm password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := services.ValidateSignup(name, email, password, confirm); err != nil {
		printlnFn(err.Error())
		return err
	}

	if err := report(a.auth.SendOTP(ctx, name, email, password)); err != nil {
		return err
	}

	return a.verifyPending(ctx)
}

// Verify completes a pending signup with the emailed OTP.
func (a *App) Verify(ctx context.Context) error {
	if _, ok := a.auth.PendingSignup(); !ok {
		printlnFn("No signup in progress. Use 'signup' first.")
		return ErrNoPending
	}
	return a.verifyPending(ctx)
}

func (a *App) verifyPending(ctx context.Context) error {
	email, _ := a.auth.PendingSignup()

	otp, err := getSimpleText(a.reader, "Enter the OTP sent to "+email+" (empty to enter it later with 'verify')", a.out)
	if err != nil {
		return err
	}
	if otp == "" {
		printlnFn(services.MsgOTPRequired)
		return nil
	}

	if err := report(a.auth.VerifyOTP(ctx, "", otp)); err != nil {
		return err
	}

	a.setView(ViewDashboard)
	if u := a.auth.User(); u != nil {
		printlnFn("Welcome to QuizEra, " + u.Name + "!")
	}
	return nil
}

// Logout ends the session. It never fails.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	a.setView(ViewHome)
	printlnFn("Logged out.")
	return nil
}
