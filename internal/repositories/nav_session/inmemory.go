package navsession

import (
	"context"
	"sync"
	"time"

	"github.com/KirkDiggler/bestiary/internal/errors"
	"github.com/KirkDiggler/bestiary/internal/pkg/clock"
	"github.com/KirkDiggler/bestiary/internal/pkg/idgen"
)

// sweepInterval bounds how often Create scans for expired sessions
const sweepInterval = time.Minute

// InMemoryConfig holds the optional dependencies of the in-memory repository
type InMemoryConfig struct {
	Clock       clock.Clock
	IDGenerator idgen.Generator
}

// InMemoryRepository implements Repository using a map.
// Expired sessions are dropped on access and swept out during Create.
type InMemoryRepository struct {
	mu        sync.RWMutex
	store     map[string]*NavSession
	lastSweep time.Time
	clock     clock.Clock
	idGen     idgen.Generator
}

// NewInMemory creates a new in-memory repository
func NewInMemory(cfg *InMemoryConfig) *InMemoryRepository {
	if cfg == nil {
		cfg = &InMemoryConfig{}
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	gen := cfg.IDGenerator
	if gen == nil {
		gen = idgen.NewUUID(sessionIDPrefix)
	}

	return &InMemoryRepository{
		store:     make(map[string]*NavSession),
		lastSweep: clk.Now(),
		clock:     clk,
		idGen:     gen,
	}
}

var _ Repository = (*InMemoryRepository)(nil)

// Create stores a new session
func (r *InMemoryRepository) Create(_ context.Context, input *CreateInput) (*CreateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument(errInputNil)
	}
	if input.TTL < 0 {
		return nil, errors.InvalidArgument(errNegativeTTL)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	r.sweepLocked(now)

	session := &NavSession{
		ID:        r.idGen.Generate(),
		Cursor:    input.Cursor,
		CreatedAt: now,
		ExpiresAt: now.Add(ttlOrDefault(input.TTL)),
	}

	if existing, ok := r.store[session.ID]; ok && !now.After(existing.ExpiresAt) {
		return nil, errors.Internalf("session %s already exists", session.ID)
	}
	r.store[session.ID] = session

	copied := *session
	return &CreateOutput{Session: &copied}, nil
}

// Get retrieves a live session
func (r *InMemoryRepository) Get(_ context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument(errInputNil)
	}
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// Expired entries are left for the write paths to remove
	session, ok := r.store[input.ID]
	if !ok || r.clock.Now().After(session.ExpiresAt) {
		return nil, errors.NotFound(errNotFound).WithMeta("session_id", input.ID)
	}

	copied := *session
	return &GetOutput{Session: &copied}, nil
}

// Update moves the cursor of a live session and extends its expiry
func (r *InMemoryRepository) Update(_ context.Context, input *UpdateInput) (*UpdateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument(errInputNil)
	}
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}
	if input.TTL < 0 {
		return nil, errors.InvalidArgument(errNegativeTTL)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	session, ok := r.store[input.ID]
	if !ok || now.After(session.ExpiresAt) {
		delete(r.store, input.ID)
		return nil, errors.NotFound(errNotFound).WithMeta("session_id", input.ID)
	}
	if session.Version != input.Version {
		return nil, errors.Abortedf(errStale, input.ID, input.Version).WithMeta("session_id", input.ID)
	}

	session.Cursor = input.Cursor
	session.ExpiresAt = now.Add(ttlOrDefault(input.TTL))
	session.Version++

	copied := *session
	return &UpdateOutput{Session: &copied}, nil
}

// Delete removes a session
func (r *InMemoryRepository) Delete(_ context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument(errInputNil)
	}
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, input.ID)

	return &DeleteOutput{}, nil
}

// sweepLocked drops expired sessions at most once per sweepInterval.
// Callers must hold the write lock.
func (r *InMemoryRepository) sweepLocked(now time.Time) {
	if now.Sub(r.lastSweep) < sweepInterval {
		return
	}
	r.lastSweep = now

	for id, session := range r.store {
		if now.After(session.ExpiresAt) {
			delete(r.store, id)
		}
	}
}
