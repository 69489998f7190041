package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/jwtauth"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.auth.SignUp(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// Me echoes the verified token identity.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	_, claims, _ := jwtauth.FromContext(r.Context())
	email, _ := claims["email"].(string)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": map[string]interface{}{
			"userId": userID,
			"email":  email,
		},
	})
}
