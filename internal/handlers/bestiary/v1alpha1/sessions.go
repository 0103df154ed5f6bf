package v1alpha1

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/KirkDiggler/bestiary/internal/entities/monster"
	"github.com/KirkDiggler/bestiary/internal/errors"
	"github.com/KirkDiggler/bestiary/internal/orchestrators/catalog"
	"github.com/KirkDiggler/bestiary/internal/orchestrators/navigation"
	navsession "github.com/KirkDiggler/bestiary/internal/repositories/nav_session"
)

type sessionResponse struct {
	ID        string            `json:"id"`
	Cursor    navigation.Cursor `json:"cursor"`
	ExpiresAt time.Time         `json:"expires_at"`
	// Changed is false when the requested move was a no-op
	Changed bool            `json:"changed"`
	Current *monster.Ref    `json:"current,omitempty"`
	Monster *monster.Record `json:"monster,omitempty"`
	// ImageURL is set when the current monster has a resolved image
	ImageURL string `json:"image_url,omitempty"`
}

type selectRequest struct {
	Index    string `json:"index,omitempty"`
	Position *int   `json:"position,omitempty"`
}

// moveFunc applies one navigation step and reports whether the cursor moved
type moveFunc func(nav *navigation.Navigator, snapshot *catalog.Snapshot) (bool, error)

// CreateSession starts a cursor at the first monster
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.catalog.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	nav, err := navigation.New(&navigation.Config{Roller: h.roller, Refs: snapshot.Refs})
	if err != nil {
		h.writeError(w, err)
		return
	}

	out, err := h.sessions.Create(r.Context(), &navsession.CreateInput{
		Cursor: nav.Cursor(),
		TTL:    h.sessionTTL,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.sessionResponse(out.Session, nav, snapshot, true))
}

// GetSession returns the monster under the session's cursor
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	got, err := h.sessions.Get(r.Context(), &navsession.GetInput{ID: id})
	if err != nil {
		h.writeError(w, err)
		return
	}

	snapshot, err := h.catalog.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	nav, err := navigation.New(&navigation.Config{Roller: h.roller, Refs: snapshot.Refs, Cursor: got.Session.Cursor})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.sessionResponse(got.Session, nav, snapshot, false))
}

// DeleteSession ends a session
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.sessions.Delete(r.Context(), &navsession.DeleteInput{ID: id}); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// NextMonster advances the cursor, wrapping at the end
func (h *Handler) NextMonster(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, func(nav *navigation.Navigator, _ *catalog.Snapshot) (bool, error) {
		nav.Next()
		return true, nil
	})
}

// PreviousMonster moves the cursor back, wrapping at the start
func (h *Handler) PreviousMonster(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, func(nav *navigation.Navigator, _ *catalog.Snapshot) (bool, error) {
		nav.Previous()
		return true, nil
	})
}

// RandomMonster jumps to a random monster, drawn from the records matching
// the query filter when any do, otherwise from the whole index
func (h *Handler) RandomMonster(w http.ResponseWriter, r *http.Request) {
	spec, err := parseFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.move(w, r, func(nav *navigation.Navigator, snapshot *catalog.Snapshot) (bool, error) {
		return nav.RandomSelection(catalog.RandomPool(snapshot, spec))
	})
}

// SelectMonster jumps to a monster by index key or by position.
// Unknown keys and out of range positions leave the cursor where it was.
func (h *Handler) SelectMonster(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		h.writeError(w, errors.InvalidArgument("request body must be a JSON object"))
		return
	}

	if req.Index == "" && req.Position == nil {
		h.writeError(w, errors.NewValidationBuilder().
			Field("index", "index or position is required").
			Build())
		return
	}

	h.move(w, r, func(nav *navigation.Navigator, _ *catalog.Snapshot) (bool, error) {
		if req.Index != "" {
			return nav.SelectByRef(req.Index), nil
		}
		return nav.SelectByIndex(*req.Position), nil
	})
}

// moveAttempts bounds how often move re-reads a session that changed under it
const moveAttempts = 5

// move loads a session, applies fn and persists the new cursor. A concurrent
// move on the same session makes the write fail as Aborted; the step is then
// replayed on the fresh cursor so every acknowledged move counts once.
func (h *Handler) move(w http.ResponseWriter, r *http.Request, fn moveFunc) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	var snapshot *catalog.Snapshot
	for attempt := 1; ; attempt++ {
		got, err := h.sessions.Get(ctx, &navsession.GetInput{ID: id})
		if err != nil {
			h.writeError(w, err)
			return
		}

		if snapshot == nil {
			if snapshot, err = h.catalog.Snapshot(ctx); err != nil {
				h.writeError(w, err)
				return
			}
		}

		nav, err := navigation.New(&navigation.Config{Roller: h.roller, Refs: snapshot.Refs, Cursor: got.Session.Cursor})
		if err != nil {
			h.writeError(w, err)
			return
		}

		before := nav.Cursor()
		if _, err := fn(nav, snapshot); err != nil {
			h.writeError(w, err)
			return
		}

		updated, err := h.sessions.Update(ctx, &navsession.UpdateInput{
			ID:      id,
			Version: got.Session.Version,
			Cursor:  nav.Cursor(),
			TTL:     h.sessionTTL,
		})
		if errors.IsAborted(err) && attempt < moveAttempts {
			h.logger.Debug("session changed during move, retrying", "session_id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			h.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, h.sessionResponse(updated.Session, nav, snapshot, nav.Cursor() != before))
		return
	}
}

func (h *Handler) sessionResponse(
	session *navsession.NavSession,
	nav *navigation.Navigator,
	snapshot *catalog.Snapshot,
	changed bool,
) sessionResponse {
	resp := sessionResponse{
		ID:        session.ID,
		Cursor:    nav.Cursor(),
		ExpiresAt: session.ExpiresAt,
		Changed:   changed,
	}

	current, ok := nav.Current()
	if !ok {
		return resp
	}
	resp.Current = current

	// The ref may have failed to resolve; the session still points at it
	if record, ok := snapshot.Record(current.Index); ok {
		resp.Monster = record
		if h.images != nil && record.Image != "" {
			resp.ImageURL = h.images.ImageURL(record.Image)
		}
	}
	return resp
}
