package session

// Session is the server-tracked proof of a successful login.
type Session struct {
	ID        string
	AccountID string

	CreatedAt int64
	ExpiresAt int64
}
