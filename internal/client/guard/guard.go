// Package guard decides whether a protected view may be shown for the
// current authentication state.
package guard

import (
	"context"

	"github.com/dmitrijs2005/quizera/internal/client/services"
)

// Outcome is what the view layer should do.
type Outcome int

const (
	// Pending means the session is still being resolved: show neither the
	// view nor the login screen.
	Pending Outcome = iota
	// Render shows the protected view.
	Render
	// Redirect sends the user to the login view.
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return "pending"
	}
}

// Guard protects views that need a signed-in user.
type Guard struct {
	// LoginView is where Redirect outcomes lead.
	LoginView string
}

func New(loginView string) *Guard {
	return &Guard{LoginView: loginView}
}

// Evaluate maps a state to an outcome.
func (g *Guard) Evaluate(state services.State) Outcome {
	switch state {
	case services.StateAuthenticated:
		return Render
	case services.StateAnonymous:
		return Redirect
	default:
		return Pending
	}
}

// Watch calls fn with the outcome for every state received until ctx is
// done or states is closed.
func (g *Guard) Watch(ctx context.Context, states <-chan services.State, fn func(Outcome)) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-states:
			if !ok {
				return
			}
			fn(g.Evaluate(s))
		}
	}
}
