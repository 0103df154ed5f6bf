// Package navsession stores per-viewer navigation cursors
package navsession

import (
	"context"
	"time"

	"github.com/KirkDiggler/bestiary/internal/orchestrators/navigation"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=navsessionmock github.com/KirkDiggler/bestiary/internal/repositories/nav_session Repository

// DefaultTTL is how long an idle session lives
const DefaultTTL = 30 * time.Minute

// NavSession is one viewer's position in the catalog
type NavSession struct {
	ID        string            `json:"id"`
	Cursor    navigation.Cursor `json:"cursor"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
	// Version increments on every update
	Version int64 `json:"version"`
}

// CreateInput contains parameters for creating a session
type CreateInput struct {
	Cursor navigation.Cursor
	TTL    time.Duration // zero means DefaultTTL
}

// CreateOutput contains the created session
type CreateOutput struct {
	Session *NavSession
}

// GetInput contains parameters for retrieving a session
type GetInput struct {
	ID string
}

// GetOutput contains the retrieved session
type GetOutput struct {
	Session *NavSession
}

// UpdateInput moves a session's cursor and extends its expiry.
// Version must match the stored session or the update is Aborted.
type UpdateInput struct {
	ID      string
	Version int64
	Cursor  navigation.Cursor
	TTL     time.Duration // zero means DefaultTTL
}

// UpdateOutput contains the updated session
type UpdateOutput struct {
	Session *NavSession
}

// DeleteInput contains parameters for deleting a session
type DeleteInput struct {
	ID string
}

// DeleteOutput is empty for now
type DeleteOutput struct{}

// Repository defines navigation session storage
type Repository interface {
	// Create stores a new session with a generated ID
	Create(ctx context.Context, input *CreateInput) (*CreateOutput, error)

	// Get retrieves a live session; expired or unknown IDs are NotFound
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// Update replaces the cursor of a live session at the given version
	Update(ctx context.Context, input *UpdateInput) (*UpdateOutput, error)

	// Delete removes a session; deleting an unknown ID is not an error
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)
}

const (
	errInputNil     = "input is required"
	errIDEmpty      = "session ID is required"
	errNotFound     = "navigation session not found"
	errNegativeTTL  = "ttl cannot be negative"
	errStale        = "navigation session %s changed since version %d"
	sessionIDPrefix = "nav"
)

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return DefaultTTL
	}
	return ttl
}
