// Package common contains shared constants and sentinel errors used across
// QuizEra client components.
package common

// Outbound HTTP header names.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerPrefix            = "Bearer "
)

// Keys of the durable session store. They keep the product namespace the web
// client used in browser storage.
const (
	TokenKey = "quizera_token"
	UserKey  = "quizera_user"
)

// User-facing messages returned by the session manager and services.
const (
	MsgNetworkError   = "Network error. Please try again."
	MsgSessionExpired = "Session expired. Please log in again."
	MsgStorageError   = "Could not save your session. Please try again."
	MsgInProgress     = "Request already in progress."
	MsgNotLoggedIn    = "You are not logged in."
	MsgRequestFailed  = "Request failed."
)
