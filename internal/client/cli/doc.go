// Package cli provides the interactive QuizEra command-line client.
//
// It wires configuration, the backend locator, local storage and the
// services, then runs a REPL. Protected views (dashboard, generate, history,
// export, settings, admin) go through the route guard: nothing is shown while
// the stored session is still being checked, and a missing session sends the
// user to login.
//
// Key features:
//   - Login, signup with OTP verification, logout
//   - Quiz generation from text, PDF or image
//   - Local history and PDF export
//   - Profile rename and account deletion
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher and runREPL for details.
package cli
