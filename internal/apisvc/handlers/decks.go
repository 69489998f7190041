package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi"
)

// deckRequest keeps name and cards as raw JSON so the service can tell
// "absent" from "present but malformed" and answer with the right message.
type deckRequest struct {
	Name  json.RawMessage `json:"name"`
	Cards json.RawMessage `json:"cards"`
}

// decodeDeckRequest treats an empty body as an empty request so the service
// can answer with its own per-field messages.
func decodeDeckRequest(r *http.Request) (deckRequest, error) {
	var req deckRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		return req, err
	}
	return req, nil
}

func (h *Handler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	req, err := decodeDeckRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deck, err := h.decks.CreateDeck(r.Context(), userID, req.Name, req.Cards)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, deck)
}

func (h *Handler) ListMyDecks(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	decks, err := h.decks.ListMine(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, decks)
}

func (h *Handler) GetDeck(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	deck, err := h.decks.GetByID(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, deck)
}

func (h *Handler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	req, err := decodeDeckRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deck, err := h.decks.Update(r.Context(), userID, chi.URLParam(r, "id"), req.Name, req.Cards)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, deck)
}

func (h *Handler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	if err := h.decks.Remove(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
