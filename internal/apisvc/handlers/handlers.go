package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/jwtauth"
	"github.com/iutcalais-offroy/nodejs-api-pokedex-jordy005/internal/apisvc/service"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	auth      *service.AuthService
	cards     *service.CardService
	decks     *service.DeckService
}

func NewHandler(tokenAuth *jwtauth.JWTAuth, auth *service.AuthService, cards *service.CardService, decks *service.DeckService) *Handler {
	return &Handler{
		tokenAuth: tokenAuth,
		auth:      auth,
		cards:     cards,
		decks:     decks,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, code int, message string) {
	h.writeJSON(w, code, errorResponse{Error: message})
}

// writeServiceError answers expected business failures with their own status
// and message, and hides everything else behind a generic 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *service.RequestError
	if errors.As(err, &reqErr) {
		h.writeError(w, reqErr.Status, reqErr.Message)
		return
	}
	log.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
	h.writeError(w, http.StatusInternalServerError, "server error")
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, 200, map[string]string{
		"status":  "ok",
		"message": "TCG backend is running at port " + os.Getenv("API_SERVICE_PORT"),
	})
}

// userIDFromRequest pulls the authenticated user id out of the verified
// JWT claims. The Verifier middleware has already rejected missing or
// invalid tokens by the time this runs.
func userIDFromRequest(r *http.Request) (int64, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return 0, err
	}

	switch v := claims["user_id"].(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		return v.Int64()
	}
	return 0, fmt.Errorf("user_id claim missing or malformed")
}
