// Package common contains constants, roles and sentinel errors shared by the
// classroom portal server and client.
package common

const (
	// SessionStorageKey is the local storage key holding the serialized
	// session record.
	SessionStorageKey = "user"

	// SessionCookieName carries the signed access token.
	SessionCookieName = "session"

	// RefreshCookieName carries the opaque refresh token.
	RefreshCookieName = "refresh_token"

	// JoinCodeLength is the length of a classroom join code.
	JoinCodeLength = 9

	LoginPath  = "/login"
	SignupPath = "/signup"
	HomePath   = "/"
)
