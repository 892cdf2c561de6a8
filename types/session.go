package types

// SessionUser is the minimal authenticated-user summary carried in a
// session payload. It deliberately excludes the password hash.
type SessionUser struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Flash is a one-shot notice stored in the session payload and shown on
// the next rendered page.
type Flash struct {
	// Kind classifies the notice ("success", "error", "info").
	Kind string `json:"kind"`

	// Message is the user-visible text.
	Message string `json:"message"`
}

// SessionPayload is what a session row stores, serialized as JSON.
// User is nil for anonymous sessions that exist only to carry flashes.
type SessionPayload struct {
	User    *SessionUser `json:"user,omitempty"`
	Flashes []Flash      `json:"flashes,omitempty"`
}
