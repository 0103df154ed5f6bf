// Package catalog implements the monster aggregation and filter core
package catalog

//go:generate mockgen -destination=mock/mock_service.go -package=catalogmock github.com/KirkDiggler/bestiary/internal/orchestrators/catalog Service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/KirkDiggler/bestiary/internal/clients/external"
	"github.com/KirkDiggler/bestiary/internal/entities/monster"
	"github.com/KirkDiggler/bestiary/internal/errors"
	"github.com/KirkDiggler/bestiary/internal/pkg/clock"
)

// Service defines the catalog operations
type Service interface {
	// LoadCatalog fetches the monster index.
	// Returns errors.CatalogUnavailable when the index cannot be obtained or is empty.
	LoadCatalog(ctx context.Context) (*LoadCatalogOutput, error)

	// ResolveAllDetails fetches every stat block concurrently, dropping the ones that fail.
	// Returns errors.CatalogUnavailable only when there is nothing to resolve.
	ResolveAllDetails(ctx context.Context, input *ResolveAllDetailsInput) (*ResolveAllDetailsOutput, error)

	// Refresh loads the index and all details, then publishes a new snapshot
	Refresh(ctx context.Context) (*RefreshOutput, error)

	// Snapshot returns the last published snapshot.
	// Returns errors.FailedPrecondition before the first load,
	// errors.CatalogUnavailable when nothing loaded and the last attempt failed.
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Status reports the lifecycle state of the catalog
	Status(ctx context.Context) *StatusOutput
}

// Config holds the dependencies for the catalog orchestrator
type Config struct {
	Client external.Client
	Clock  clock.Clock
	// MaxConcurrency bounds in-flight detail fetches, 0 means one goroutine per ref
	MaxConcurrency int
	// OnStatusChange is called after every status transition (optional)
	OnStatusChange func(Status)
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	if c.MaxConcurrency < 0 {
		vb.InvalidField("MaxConcurrency", "must not be negative")
	}
	if err := vb.Build(); err != nil {
		return err
	}

	if c.Clock == nil {
		c.Clock = clock.New()
	}
	return nil
}

type orchestrator struct {
	client         external.Client
	clock          clock.Clock
	maxConcurrency int
	onStatusChange func(Status)

	snapshot  atomic.Pointer[Snapshot]
	refreshMu sync.Mutex

	statusMu sync.RWMutex
	status   Status
	lastErr  error
}

// NewOrchestrator creates a new catalog orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		client:         cfg.Client,
		clock:          cfg.Clock,
		maxConcurrency: cfg.MaxConcurrency,
		onStatusChange: cfg.OnStatusChange,
		status:         StatusEmpty,
	}, nil
}

func (o *orchestrator) LoadCatalog(ctx context.Context) (*LoadCatalogOutput, error) {
	refs, err := o.client.ListMonsters(ctx)
	if err != nil {
		if errors.IsCatalogUnavailable(err) {
			return nil, err
		}
		return nil, errors.CatalogUnavailable(err)
	}

	if len(refs) == 0 {
		return nil, errors.CatalogUnavailable(errors.NotFound("monster index is empty"))
	}

	return &LoadCatalogOutput{Refs: refs}, nil
}

func (o *orchestrator) ResolveAllDetails(ctx context.Context, input *ResolveAllDetailsInput) (*ResolveAllDetailsOutput, error) {
	if input == nil || len(input.Refs) == 0 {
		return nil, errors.CatalogUnavailable(errors.InvalidArgument("no monster references to resolve"))
	}

	refs := dedupeRefs(input.Refs)
	if len(refs) == 0 {
		return nil, errors.CatalogUnavailable(errors.InvalidArgument("no monster references to resolve"))
	}
	slog.Info("Loading full details for each monster concurrently", "count", len(refs))

	records := make([]*monster.Record, len(refs))
	failed := make([]bool, len(refs))
	var sem chan struct{}
	if o.maxConcurrency > 0 {
		sem = make(chan struct{}, o.maxConcurrency)
	}

	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(idx int, key string) {
			defer wg.Done()

			if sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					slog.Warn("Skipped monster detail", "monster", key, "error", ctx.Err())
					failed[idx] = true
					return
				}
			}

			record, err := o.client.GetMonsterDetail(ctx, key)
			if err != nil {
				slog.Error("Failed to get monster details", "monster", key, "error", err)
				failed[idx] = true
				return
			}
			if record == nil || record.Index != key {
				slog.Error("Monster details do not match reference", "monster", key)
				failed[idx] = true
				return
			}

			records[idx] = record
			slog.Debug("Loaded monster details", "monster", key)
		}(i, ref.Index)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeCanceled, "monster detail resolution canceled")
	}

	output := &ResolveAllDetailsOutput{
		Records: make([]*monster.Record, 0, len(refs)),
	}
	for i, record := range records {
		if failed[i] {
			output.Failed = append(output.Failed, refs[i].Index)
			continue
		}
		output.Records = append(output.Records, record)
	}

	slog.Info("Resolved monster details",
		"resolved", len(output.Records),
		"failed", len(output.Failed))

	return output, nil
}

func (o *orchestrator) Refresh(ctx context.Context) (*RefreshOutput, error) {
	o.refreshMu.Lock()
	defer o.refreshMu.Unlock()

	o.setStatus(StatusLoading, nil)

	loaded, err := o.LoadCatalog(ctx)
	if err != nil {
		o.refreshFailed(ctx, err)
		return nil, err
	}

	resolved, err := o.ResolveAllDetails(ctx, &ResolveAllDetailsInput{Refs: loaded.Refs})
	if err != nil {
		o.refreshFailed(ctx, err)
		return nil, err
	}

	snapshot := NewSnapshot(loaded.Refs, resolved.Records, o.clock.Now())
	o.snapshot.Store(snapshot)
	o.setStatus(StatusReady, nil)

	return &RefreshOutput{Snapshot: snapshot}, nil
}

// refreshFailed records a failed refresh. A refresh abandoned by its caller
// while a snapshot is published leaves the catalog Ready.
func (o *orchestrator) refreshFailed(ctx context.Context, err error) {
	if ctx.Err() != nil && o.snapshot.Load() != nil {
		slog.Info("Catalog refresh canceled, keeping current snapshot", "error", err)
		o.setStatus(StatusReady, nil)
		return
	}
	o.setStatus(StatusFailed, err)
}

func (o *orchestrator) Snapshot(_ context.Context) (*Snapshot, error) {
	if snapshot := o.snapshot.Load(); snapshot != nil {
		return snapshot, nil
	}

	o.statusMu.RLock()
	defer o.statusMu.RUnlock()

	if o.status == StatusFailed && o.lastErr != nil {
		return nil, o.lastErr
	}
	return nil, errors.FailedPrecondition("monster catalog has not been loaded")
}

func (o *orchestrator) Status(_ context.Context) *StatusOutput {
	o.statusMu.RLock()
	defer o.statusMu.RUnlock()

	output := &StatusOutput{
		Status:    o.status,
		LastError: o.lastErr,
	}
	if snapshot := o.snapshot.Load(); snapshot != nil {
		output.LoadedAt = snapshot.LoadedAt
	}
	return output
}

func (o *orchestrator) setStatus(status Status, err error) {
	o.statusMu.Lock()
	o.status = status
	o.lastErr = err
	o.statusMu.Unlock()

	if o.onStatusChange != nil {
		o.onStatusChange(status)
	}
}

// dedupeRefs keeps the first ref for every index
func dedupeRefs(refs []*monster.Ref) []*monster.Ref {
	seen := make(map[string]struct{}, len(refs))
	unique := make([]*monster.Ref, 0, len(refs))
	for _, ref := range refs {
		if ref == nil {
			continue
		}
		if _, ok := seen[ref.Index]; ok {
			slog.Warn("Duplicate monster reference", "monster", ref.Index)
			continue
		}
		seen[ref.Index] = struct{}{}
		unique = append(unique, ref)
	}
	return unique
}
