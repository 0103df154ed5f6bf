// Package external is the location for the dnd5e-api monster catalog client
package external

//go:generate mockgen -destination=mock/mock_client.go -package=externalmock github.com/KirkDiggler/bestiary/internal/clients/external Client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/KirkDiggler/bestiary/internal/entities/monster"
	"github.com/KirkDiggler/bestiary/internal/errors"
)

const (
	// DefaultBaseURL is the versioned dnd5eapi.co base path
	DefaultBaseURL = "https://www.dnd5eapi.co/api/2014/"

	// DefaultHTTPTimeout bounds a single upstream request
	DefaultHTTPTimeout = 30 * time.Second

	monstersPath = "monsters"
	tracerName   = "github.com/KirkDiggler/bestiary/internal/clients/external"

	// maxErrorBody caps how much of a failed response is kept for diagnostics
	maxErrorBody = 512
)

// Client is the monster catalog collaborator
type Client interface {
	// ListMonsters returns the monster index in upstream order.
	// Returns errors.CatalogUnavailable on transport, HTTP or parse failures.
	ListMonsters(ctx context.Context) ([]*monster.Ref, error)

	// GetMonsterDetail returns the full stat block of one monster.
	// Returns errors.DetailUnavailable on transport, HTTP, parse failures or not found.
	GetMonsterDetail(ctx context.Context, index string) (*monster.Record, error)

	// ImageURL resolves a record's relative image path against the API host
	ImageURL(path string) string
}

type client struct {
	dnd5eClient dnd5e.Interface
	httpClient  *http.Client
	baseURL     *url.URL
	tracer      trace.Tracer
}

// Config contains configuration options for the external client.
type Config struct {
	// BaseURL for the D&D 5e API (optional, defaults to DefaultBaseURL)
	BaseURL string
	// HTTPTimeout for API requests (optional, defaults to 30 seconds)
	HTTPTimeout time.Duration
	// HTTPClient overrides the transport (optional)
	HTTPClient *http.Client
}

// Validate validates the Config and sets defaults if not provided.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}

	vb := errors.NewValidationBuilder()
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		vb.InvalidField("BaseURL", err.Error())
	} else if u.Scheme == "" || u.Host == "" {
		vb.InvalidField("BaseURL", "must be an absolute URL")
	}
	if cfg.HTTPTimeout < 0 {
		vb.InvalidField("HTTPTimeout", "must not be negative")
	}

	return vb.Build()
}

// New creates a new external client with the given configuration.
func New(cfg *Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.HTTPTimeout,
		}
	}

	baseClient, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client:  httpClient,
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create D&D 5e API client: %w", err)
	}

	// Validate already proved the URL parses
	baseURL, _ := url.Parse(cfg.BaseURL)

	return &client{
		dnd5eClient: baseClient,
		httpClient:  httpClient,
		baseURL:     baseURL,
		tracer:      otel.Tracer(tracerName),
	}, nil
}

func (c *client) ListMonsters(ctx context.Context) ([]*monster.Ref, error) {
	ctx, span := c.startSpan(ctx, "external.ListMonsters")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, c.fail(span, errors.CatalogUnavailable(err))
	}

	slog.Info("Calling D&D 5e API to list monsters")
	items, err := c.dnd5eClient.ListMonsters()
	if err != nil {
		return nil, c.fail(span, errors.CatalogUnavailable(
			fmt.Errorf("failed to list monsters from D&D 5e API: %w", err)))
	}

	refs := make([]*monster.Ref, 0, len(items))
	for _, item := range items {
		if item == nil || item.Key == "" {
			continue
		}
		refs = append(refs, &monster.Ref{
			Index: item.Key,
			Name:  item.Name,
			URL:   c.monsterURL(item.Key).Path,
		})
	}

	slog.Info("Got monster references", "count", len(refs))
	span.SetAttributes(attribute.Int("monster.count", len(refs)))
	return refs, nil
}

func (c *client) GetMonsterDetail(ctx context.Context, index string) (*monster.Record, error) {
	ctx, span := c.startSpan(ctx, "external.GetMonsterDetail",
		attribute.String("monster.index", index))
	defer span.End()

	if index == "" {
		return nil, c.fail(span, errors.DetailUnavailable(index, errors.InvalidArgument("monster index is required")))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.monsterURL(index).String(), nil)
	if err != nil {
		return nil, c.fail(span, errors.DetailUnavailable(index, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(span, errors.DetailUnavailable(index, err))
	}
	defer func() {
		_ = resp.Body.Close() // nolint:errcheck // body already consumed
	}()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode == http.StatusNotFound {
		return nil, c.fail(span, errors.DetailUnavailable(index, errors.NotFoundf("monster %s not found", index)))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, c.fail(span, errors.DetailUnavailable(index,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))))
	}

	var record monster.Record
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, c.fail(span, errors.DetailUnavailable(index, fmt.Errorf("failed to decode monster: %w", err)))
	}

	// Some upstream mirrors omit the index on detail bodies
	if record.Index == "" {
		record.Index = index
	}

	return &record, nil
}

func (c *client) ImageURL(path string) string {
	if path == "" {
		return ""
	}

	ref, err := url.Parse(path)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}

	return c.baseURL.ResolveReference(ref).String()
}

// monsterURL builds <base>monsters/<index>
func (c *client) monsterURL(index string) *url.URL {
	return c.baseURL.JoinPath(monstersPath, index)
}

func (c *client) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := c.tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (c *client) fail(span trace.Span, err *errors.Error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Message)
	return err
}
