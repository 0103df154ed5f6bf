package v1alpha1

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/KirkDiggler/bestiary/internal/entities/monster"
	"github.com/KirkDiggler/bestiary/internal/errors"
	"github.com/KirkDiggler/bestiary/internal/orchestrators/catalog"
)

type catalogResponse struct {
	Status    catalog.Status `json:"status"`
	LastError string         `json:"last_error,omitempty"`
	LoadedAt  *time.Time     `json:"loaded_at,omitempty"`
	Resolved  int            `json:"resolved"`
	Monsters  []*monster.Ref `json:"monsters"`
}

type monsterListResponse struct {
	Monsters     []*monster.Record `json:"monsters"`
	Total        int               `json:"total"`
	FilterActive bool              `json:"filter_active"`
}

type monsterResponse struct {
	Monster  *monster.Record `json:"monster"`
	Position int             `json:"position"`
	ImageURL string          `json:"image_url,omitempty"`
}

type filtersResponse struct {
	Types      []string `json:"types"`
	Sizes      []string `json:"sizes"`
	Alignments []string `json:"alignments"`
}

// GetCatalog returns the canonical monster index with the load status
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	status := h.catalog.Status(r.Context())
	resp := catalogResponse{
		Status:   status.Status,
		Monsters: []*monster.Ref{},
	}
	if status.LastError != nil {
		resp.LastError = errors.GetMessage(status.LastError)
	}

	// A load in progress or a failed first load still reports status
	if snapshot, err := h.catalog.Snapshot(r.Context()); err == nil {
		resp.Monsters = snapshot.Refs
		resp.Resolved = len(snapshot.Records)
		loadedAt := snapshot.LoadedAt
		resp.LoadedAt = &loadedAt
	}

	writeJSON(w, http.StatusOK, resp)
}

// RefreshCatalog reloads the index and every stat block.
// The reload runs to completion even if the caller hangs up.
func (h *Handler) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	out, err := h.catalog.Refresh(context.WithoutCancel(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}

	loadedAt := out.Snapshot.LoadedAt
	writeJSON(w, http.StatusOK, catalogResponse{
		Status:   catalog.StatusReady,
		LoadedAt: &loadedAt,
		Resolved: len(out.Snapshot.Records),
		Monsters: out.Snapshot.Refs,
	})
}

// ListMonsters returns the resolved records matching the query, sorted by name
func (h *Handler) ListMonsters(w http.ResponseWriter, r *http.Request) {
	spec, err := parseFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, err)
		return
	}

	snapshot, err := h.catalog.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	matched := catalog.SortByName(catalog.Filter(snapshot.Records, spec))
	writeJSON(w, http.StatusOK, monsterListResponse{
		Monsters:     matched,
		Total:        len(matched),
		FilterActive: spec.IsActive(),
	})
}

// GetMonster returns one resolved stat block
func (h *Handler) GetMonster(w http.ResponseWriter, r *http.Request) {
	index := mux.Vars(r)["index"]

	snapshot, err := h.catalog.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	record, ok := snapshot.Record(index)
	if !ok {
		h.writeError(w, errors.NotFoundf("monster %q not found", index))
		return
	}

	writeJSON(w, http.StatusOK, h.monsterResponse(snapshot, record))
}

// GetFilters returns the choices offered by the filter panel
func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.catalog.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, filtersResponse{
		Types:      catalog.TypeOptions(snapshot.Records),
		Sizes:      monster.Sizes,
		Alignments: monster.Alignments,
	})
}

func (h *Handler) monsterResponse(snapshot *catalog.Snapshot, record *monster.Record) monsterResponse {
	resp := monsterResponse{Monster: record}
	if pos, ok := snapshot.Position(record.Index); ok {
		resp.Position = pos
	}
	if h.images != nil && record.Image != "" {
		resp.ImageURL = h.images.ImageURL(record.Image)
	}
	return resp
}
