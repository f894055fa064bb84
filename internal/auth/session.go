package auth

import "time"

// Session is an authenticated identity plus the bearer token that proves it.
type Session struct {
	Token      string    `json:"token"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	ObtainedAt time.Time `json:"obtained_at"`

	// Source records which path produced the session.
	Source Source `json:"source"`
}

// Source says where a session's token came from.
type Source string

const (
	SourceMemory      Source = "memory"
	SourceEnvironment Source = "environment"
	SourceCache       Source = "cache"
	SourceInteractive Source = "interactive"
)
