// Package client talks to the QuizEra REST backend.
//
// # Overview
//
// The package provides:
//  1. The transport contract (see the Client interface) covering the auth
//     endpoints (/auth/login, /auth/send-otp, /auth/verify-otp,
//     /auth/signup, /auth/profile, /auth/account, /auth/credits), the
//     connectivity probe (/test) and quiz generation (/quiz/generate,
//     /quiz/generate-text).
//  2. HTTPClient, a net/http implementation that adds the bearer token and a
//     request id to every call and decodes the backend's JSON envelopes.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite file and applying the embedded goose migrations.
//
// # Error Handling
//
// Failures are reported as ErrUnavailable (transport or decoding problems),
// ErrMalformedResponse, or *BackendError carrying the backend's message;
// errors.Is(err, ErrUnauthorized) matches 401/403 responses.
//
// Concurrency & Contexts
//
// HTTPClient is stateless apart from its configuration and is safe for
// concurrent use. Every call takes a context.Context and honours
// cancellation; the configured timeout caps each request.
package client
