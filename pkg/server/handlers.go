package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/IlikeChooros/go-uttt/pkg/ai"
	"github.com/IlikeChooros/go-uttt/pkg/uttt"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Limit of the request bodies
const maxBodySize = 1 << 16

var writeTimeout = 5 * time.Second

type handlers struct {
	svc *Service
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Map the error to its status code
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ai.ErrInvalidConfiguration),
		errors.Is(err, uttt.ErrInvalidNotation),
		errors.Is(err, uttt.ErrIllegalMove),
		errors.Is(err, ai.ErrNoLegalMove):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrapf(ai.ErrInvalidConfiguration, "malformed request body: %v", err)
	}
	return nil
}

func (h *handlers) createMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	m, err := h.svc.StartMatch(req)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/matches/"+m.ID())
	writeJSON(w, http.StatusAccepted, struct {
		ID string `json:"id"`
	}{ID: m.ID()})
}

func (h *handlers) listMatches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.List())
}

func (h *handlers) getMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m.Snapshot())
}

func (h *handlers) cancelMatch(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Cancel(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Stream the match events over a websocket, starting with the ones already
// played; the connection is closed after match_end
func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer c.CloseNow()

	// Nothing is read from the client, but close frames still must be handled
	ctx := c.CloseRead(r.Context())

	next := 0
	for {
		events, changed, done := m.EventsSince(next)
		for _, ev := range events {
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c, ev)
			cancel()
			if err != nil {
				return
			}
		}
		next += len(events)

		if done {
			c.Close(websocket.StatusNormalClosure, "match ended")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-changed:
		}
	}
}

type analyzeRequest struct {
	Notation string `json:"notation"`
	Strategy string `json:"strategy"`
}

func (h *handlers) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	analysis, err := h.svc.Analyze(req.Notation, req.Strategy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}
