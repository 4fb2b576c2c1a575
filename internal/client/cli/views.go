package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/quizera/internal/client/models"
	"github.com/dmitrijs2005/quizera/internal/client/services"
)

const timeLayout = "2006-01-02 15:04"

// Dashboard shows the profile, the credit balance and the latest quizzes.
func (a *App) Dashboard(ctx context.Context) error {
	return a.enter(ctx, ViewDashboard, func(ctx context.Context) error {
		u := a.auth.User()
		if u == nil {
			return ErrLoginRequired
		}

		printlnFn(fmt.Sprintf("Welcome, %s (%s)", u.Name, u.Email))
		printlnFn(fmt.Sprintf("AI credits: %d", u.Credits))
		if u.Credits <= 0 {
			printlnFn(services.MsgNoCredits)
		}

		recent, err := a.quiz.Recent(ctx, services.DashboardHistorySize)
		if err != nil {
			a.log.Warn(ctx, "load recent history", "error", err)
			printlnFn("Could not load recent quizzes.")
			return err
		}
		if len(recent) == 0 {
			printlnFn("No quizzes yet. Use 'generate' to create one.")
			return nil
		}
		printlnFn("Recent quizzes:")
		printEntries(recent)
		return nil
	})
}

// Settings shows the account fields the user can manage.
func (a *App) Settings(ctx context.Context) error {
	return a.enter(ctx, ViewSettings, func(ctx context.Context) error {
		u := a.auth.User()
		if u == nil {
			return ErrLoginRequired
		}
		printlnFn("Name:     " + u.Name)
		printlnFn("Email:    " + u.Email)
		printlnFn(fmt.Sprintf("Credits:  %d", u.Credits))
		printlnFn(fmt.Sprintf("Verified: %t", u.IsVerified))
		printlnFn("Use 'rename' to change your name or 'delete-account' to remove the account.")
		return nil
	})
}

// Rename updates the display name.
func (a *App) Rename(ctx context.Context) error {
	return a.enter(ctx, ViewSettings, func(ctx context.Context) error {
		name, err := getSimpleText(a.reader, "Enter new name", a.out)
		if err != nil {
			return err
		}
		if err := services.ValidateName(name); err != nil {
			printlnFn(err.Error())
			return err
		}
		name = strings.TrimSpace(name)
		return report(a.auth.UpdateUser(ctx, models.ProfilePatch{Name: &name}))
	})
}

// DeleteAccount removes the account after the user types DELETE. Local
// history goes with it.
func (a *App) DeleteAccount(ctx context.Context) error {
	return a.enter(ctx, ViewSettings, func(ctx context.Context) error {
		answer, err := getSimpleText(a.reader, "This permanently deletes your account. Type DELETE to confirm", a.out)
		if err != nil {
			return err
		}
		if answer != "DELETE" {
			printlnFn("Cancelled.")
			return ErrCancelled
		}

		if err := report(a.auth.DeleteAccount(ctx)); err != nil {
			return err
		}
		if err := a.quiz.Clear(ctx); err != nil {
			a.log.Warn(ctx, "clear history", "error", err)
		}
		a.setView(ViewHome)
		return nil
	})
}

// Refresh reloads the profile, e.g. after credits were added elsewhere.
func (a *App) Refresh(ctx context.Context) error {
	return a.enter(ctx, a.currentViewOr(ViewDashboard), func(ctx context.Context) error {
		if err := report(a.auth.Refresh(ctx)); err != nil {
			return err
		}
		if u := a.auth.User(); u != nil {
			printlnFn(fmt.Sprintf("Profile refreshed. AI credits: %d", u.Credits))
		}
		return nil
	})
}

// Admin shows the admin overview. Access depends on the role the backend
// assigned, not on anything stored locally.
func (a *App) Admin(ctx context.Context) error {
	return a.enter(ctx, ViewAdmin, func(ctx context.Context) error {
		if !a.auth.IsAdmin() {
			a.setView(ViewDashboard)
			printlnFn("Access denied: admin role required.")
			return ErrNotAdmin
		}

		count, err := a.quiz.Count(ctx)
		if err != nil {
			return err
		}
		u := a.auth.User()

		printlnFn("Admin overview")
		printlnFn("  Backend:          " + a.baseURL)
		printlnFn(fmt.Sprintf("  Backend status:   %s", a.modeLabel()))
		printlnFn(fmt.Sprintf("  Signed in as:     %s (%s)", u.Email, u.Role))
		printlnFn(fmt.Sprintf("  Local quizzes:    %d", count))
		return nil
	})
}

// Status prints the session and connectivity state. It needs no session.
func (a *App) Status(ctx context.Context) error {
	printlnFn("Backend:  " + a.baseURL)
	printlnFn("Mode:     " + a.modeLabel())
	printlnFn("Session:  " + a.auth.State().String())
	if u := a.auth.User(); u != nil {
		printlnFn(fmt.Sprintf("User:     %s, %d credits", u.Email, u.Credits))
	}
	if email, ok := a.auth.PendingSignup(); ok {
		printlnFn("Pending signup for " + email + ", use 'verify'.")
	}
	return nil
}

func (a *App) modeLabel() string {
	if m := a.getMode(); m != ModeUnknown {
		return string(m)
	}
	return "unknown"
}

func (a *App) currentViewOr(def string) string {
	if v := a.currentView(); protectedViews[v] {
		return v
	}
	return def
}

func printEntries(entries []models.HistoryEntry) {
	for _, e := range entries {
		printlnFn(fmt.Sprintf("  %s  %s  %-19s %-8s %-7s %d questions (%s)",
			shortID(e.ID), e.CreatedAt.Local().Format(timeLayout),
			e.OutputType, e.Language, e.Difficulty, e.TotalQuestions, e.Source))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
