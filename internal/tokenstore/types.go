// Package tokenstore persists credential material between CLI runs, keyed by
// user id. It backs the login and serve commands only; tool calls never read
// it directly.
//
// # Layout
//
// The default backend is a bbolt database at ~/.garmin-mcp/tokens.db with a
// single "tokens" bucket. Each value is a JSON-encoded Entry:
//
//	{
//	  "user_id": "jean_at_example_com",
//	  "material": "<base64 [oauth1, oauth2]>",
//	  "display_name": "runner42",
//	  "full_name": "Jean Dupont",
//	  "saved_at": "2024-06-01T08:00:00Z"
//	}
package tokenstore

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when no entry exists for a user id.
var ErrNotFound = errors.New("no stored tokens")

// Entry is the stored credential material of one user.
type Entry struct {
	UserID      string    `json:"user_id"`
	Material    string    `json:"material"`
	DisplayName string    `json:"display_name,omitempty"`
	FullName    string    `json:"full_name,omitempty"`
	SavedAt     time.Time `json:"saved_at"`
}

// Backend is the interface for token storage.
type Backend interface {
	// Read returns the entry for userID or ErrNotFound.
	Read(userID string) (*Entry, error)

	// Write replaces the entry for entry.UserID.
	Write(entry *Entry) error

	// Delete removes the entry for userID. Deleting a missing entry is not
	// an error.
	Delete(userID string) error

	// List returns the stored user ids in sorted order.
	List() ([]string, error)
}

// UserID derives the default storage key from a login email.
func UserID(email string) string {
	id := strings.ToLower(strings.TrimSpace(email))
	id = strings.ReplaceAll(id, "@", "_at_")
	return strings.ReplaceAll(id, ".", "_")
}
