package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUpSignInFlow(t *testing.T) {
	r, _ := newTestServer()

	rec := doRequest(r, "POST", "/api/auth/sign-up", "",
		`{"email":"red@example.com","username":"red","password":"password123"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var signup struct {
		Token string `json:"token"`
		User  struct {
			Email    string `json:"email"`
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signup))
	require.NotEmpty(t, signup.Token)
	assert.Equal(t, "red", signup.User.Username)
	assert.NotContains(t, rec.Body.String(), "password123")

	// the issued token opens the protected routes
	rec = doRequest(r, "GET", "/api/auth/me", signup.Token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "red@example.com")

	// signing in again with the right password works
	rec = doRequest(r, "POST", "/api/auth/sign-in", "",
		`{"email":"red@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// and with the wrong one does not
	rec = doRequest(r, "POST", "/api/auth/sign-in", "",
		`{"email":"red@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid email or password", errorMessage(t, rec))

	// the email cannot be registered twice
	rec = doRequest(r, "POST", "/api/auth/sign-up", "",
		`{"email":"red@example.com","username":"red2","password":"password123"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "email already in use", errorMessage(t, rec))
}

func TestListCards_Public(t *testing.T) {
	r, _ := newTestServer()

	rec := doRequest(r, "GET", "/api/cards", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cards []struct {
		ID            int64 `json:"id"`
		PokedexNumber int   `json:"pokedexNumber"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cards))
	require.Len(t, cards, catalogSize)
	for i := 1; i < len(cards); i++ {
		assert.LessOrEqual(t, cards[i-1].PokedexNumber, cards[i].PokedexNumber)
	}
}

func TestHealth_Public(t *testing.T) {
	r, _ := newTestServer()

	rec := doRequest(r, "GET", "/api/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
