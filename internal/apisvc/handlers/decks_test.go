package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/iutcalais-offroy/nodejs-api-pokedex-jordy005/internal/apisvc/models"
	"github.com/iutcalais-offroy/nodejs-api-pokedex-jordy005/internal/apisvc/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalogSize is how many cards the fake catalog knows; anything above it
// "does not exist".
const catalogSize = 20

type fakeCatalog struct{}

func catalogCard(id int64) *models.Card {
	return &models.Card{
		ID:            id,
		Name:          fmt.Sprintf("pokemon-%d", id),
		HP:            50,
		Attack:        40,
		Type:          "fire",
		PokedexNumber: int(id),
	}
}

func (f *fakeCatalog) ListCards(ctx context.Context) ([]*models.Card, error) {
	cards := make([]*models.Card, 0, catalogSize)
	for id := int64(1); id <= catalogSize; id++ {
		cards = append(cards, catalogCard(id))
	}
	return cards, nil
}

func (f *fakeCatalog) CountExisting(ctx context.Context, cardIDs []int64) (int, error) {
	count := 0
	for _, id := range cardIDs {
		if id >= 1 && id <= catalogSize {
			count++
		}
	}
	return count, nil
}

// fakeDeckStore keeps decks in memory with the same observable behavior as
// the pgx store: owner-scoped lookups, full membership replacement, and
// hydrated reads.
type fakeDeckStore struct {
	nextID int64
	decks  map[int64]*models.Deck
}

func newFakeDeckStore() *fakeDeckStore {
	return &fakeDeckStore{nextID: 1, decks: map[int64]*models.Deck{}}
}

func hydrate(deckID int64, cardIDs []int64) []models.DeckCard {
	cards := make([]models.DeckCard, 0, len(cardIDs))
	for _, id := range cardIDs {
		cards = append(cards, models.DeckCard{DeckID: deckID, CardID: id, Card: catalogCard(id)})
	}
	return cards
}

func (f *fakeDeckStore) GetDeckForUser(ctx context.Context, deckID, userID int64) (*models.Deck, error) {
	d, ok := f.decks[deckID]
	if !ok || d.UserID != userID {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDeckStore) ListDecksForUser(ctx context.Context, userID int64) ([]*models.Deck, error) {
	ids := make([]int64, 0, len(f.decks))
	for id, d := range f.decks {
		if d.UserID == userID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	decks := []*models.Deck{}
	for _, id := range ids {
		cp := *f.decks[id]
		decks = append(decks, &cp)
	}
	return decks, nil
}

func (f *fakeDeckStore) CreateDeck(ctx context.Context, userID int64, name string, cardIDs []int64) (*models.Deck, error) {
	id := f.nextID
	f.nextID++
	f.decks[id] = &models.Deck{ID: id, UserID: userID, Name: name, Cards: hydrate(id, cardIDs)}
	cp := *f.decks[id]
	return &cp, nil
}

func (f *fakeDeckStore) UpdateDeck(ctx context.Context, deckID, userID int64, name *string, cardIDs []int64) (*models.Deck, error) {
	d := f.decks[deckID]
	if name != nil {
		d.Name = *name
	}
	if cardIDs != nil {
		d.Cards = hydrate(deckID, cardIDs)
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDeckStore) DeleteDeck(ctx context.Context, deckID int64) error {
	delete(f.decks, deckID)
	return nil
}

type fakeUserStore struct {
	nextID int64
	byMail map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, byMail: map[string]*models.User{}}
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.byMail[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) CreateUser(ctx context.Context, email, username, passwordHash string) (*models.User, error) {
	u := &models.User{ID: f.nextID, Email: email, Username: username, Password: passwordHash}
	f.nextID++
	f.byMail[email] = u
	cp := *u
	return &cp, nil
}

func newTestServer() (*chi.Mux, *jwtauth.JWTAuth) {
	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
	catalog := &fakeCatalog{}

	h := NewHandler(
		tokenAuth,
		service.NewAuthService(newFakeUserStore(), tokenAuth),
		service.NewCardService(catalog),
		service.NewDeckService(newFakeDeckStore(), catalog),
	)

	r := chi.NewRouter()
	h.SetRoutes(r)
	return r, tokenAuth
}

func authToken(t *testing.T, tokenAuth *jwtauth.JWTAuth, userID int64) string {
	t.Helper()
	_, token, err := tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"email":   fmt.Sprintf("user%d@example.com", userID),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	return token
}

func doRequest(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeDeck(t *testing.T, rec *httptest.ResponseRecorder) models.Deck {
	t.Helper()
	var deck models.Deck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deck))
	return deck
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

const starterBody = `{"name":"Starter","cards":[1,2,3,4,5,6,7,8,9,10]}`

func TestDecks_RequireAuth(t *testing.T) {
	r, _ := newTestServer()

	for _, route := range []struct{ method, path string }{
		{"POST", "/api/decks"},
		{"GET", "/api/decks/mine"},
		{"GET", "/api/decks/1"},
		{"PATCH", "/api/decks/1"},
		{"DELETE", "/api/decks/1"},
	} {
		rec := doRequest(r, route.method, route.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestCreateDeck_Created(t *testing.T) {
	r, tokenAuth := newTestServer()
	token := authToken(t, tokenAuth, 1)

	rec := doRequest(r, "POST", "/api/decks", token, starterBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	deck := decodeDeck(t, rec)
	assert.Equal(t, "Starter", deck.Name)
	assert.Equal(t, int64(1), deck.UserID)
	require.Len(t, deck.Cards, 10)
	for i, dc := range deck.Cards {
		assert.Equal(t, int64(i+1), dc.CardID)
		require.NotNil(t, dc.Card, "members must carry hydrated card data")
		assert.Equal(t, fmt.Sprintf("pokemon-%d", i+1), dc.Card.Name)
	}
}

func TestCreateDeck_ValidationFailures(t *testing.T) {
	r, tokenAuth := newTestServer()
	token := authToken(t, tokenAuth, 1)

	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"missing name", `{"cards":[1,2,3,4,5,6,7,8,9,10]}`, "missing name"},
		{"blank name", `{"name":"   ","cards":[1,2,3,4,5,6,7,8,9,10]}`, "missing name"},
		{"cards not an array", `{"name":"Starter","cards":"nope"}`, "cards must be an array"},
		{"cards null", `{"name":"Starter","cards":null}`, "cards must be an array"},
		{"nine cards", `{"name":"Starter","cards":[1,2,3,4,5,6,7,8,9]}`, "deck must contain exactly 10 cards"},
		{"duplicate card", `{"name":"Starter","cards":[1,1,2,3,4,5,6,7,8,9]}`, "card IDs must all be different"},
		{"non-integer card", `{"name":"Starter","cards":[1,2,3,4,5,6,7,8,9,"x"]}`, "card IDs must be integers"},
		{"unknown card", `{"name":"Starter","cards":[1,2,3,4,5,6,7,8,9,99999]}`, "some cards do not exist"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(r, "POST", "/api/decks", token, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.message, errorMessage(t, rec))
		})
	}
}

func TestGetDeck_IdempotentRead(t *testing.T) {
	r, tokenAuth := newTestServer()
	token := authToken(t, tokenAuth, 1)

	rec := doRequest(r, "POST", "/api/decks", token, starterBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	deck := decodeDeck(t, rec)

	path := fmt.Sprintf("/api/decks/%d", deck.ID)
	first := doRequest(r, "GET", path, token, "")
	second := doRequest(r, "GET", path, token, "")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestGetDeck_NotFound(t *testing.T) {
	r, tokenAuth := newTestServer()
	token := authToken(t, tokenAuth, 1)

	for _, path := range []string{"/api/decks/999", "/api/decks/abc", "/api/decks/-1"} {
		rec := doRequest(r, "GET", path, token, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "deck not found", errorMessage(t, rec))
	}
}

func TestUpdateDeck_NameOnly(t *testing.T) {
	r, tokenAuth := newTestServer()
	token := authToken(t, tokenAuth, 1)

	rec := doRequest(r, "POST", "/api/decks", token, starterBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeDeck(t, rec)

	rec = doRequest(r, "PATCH", fmt.Sprintf("/api/decks/%d", created.ID), token, `{"name":"New Name"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := decodeDeck(t, rec)
	assert.Equal(t, "New Name", updated.Name)
	require.Len(t, updated.Cards, 10)
	for i, dc := range updated.Cards {
		assert.Equal(t, created.Cards[i].CardID, dc.CardID, "membership must survive a rename")
	}
}

func TestUpdateDeck_ReplaceCards(t *testing.T) {
	r, tokenAuth := newTestServer()
	token := authToken(t, tokenAuth, 1)

	rec := doRequest(r, "POST", "/api/decks", token, starterBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeDeck(t, rec)

	rec = doRequest(r, "PATCH", fmt.Sprintf("/api/decks/%d", created.ID), token,
		`{"cards":[11,12,13,14,15,16,17,18,19,20]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := decodeDeck(t, rec)
	assert.Equal(t, "Starter", updated.Name)
	require.Len(t, updated.Cards, 10)
	seen := map[int64]bool{}
	for _, dc := range updated.Cards {
		assert.GreaterOrEqual(t, dc.CardID, int64(11), "no old card may survive replacement")
		assert.False(t, seen[dc.CardID], "no duplicate membership rows")
		seen[dc.CardID] = true
	}
}

func TestUpdateDeck_NothingToUpdate(t *testing.T) {
	r, tokenAuth := newTestServer()
	token := authToken(t, tokenAuth, 1)

	rec := doRequest(r, "POST", "/api/decks", token, starterBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeDeck(t, rec)

	rec = doRequest(r, "PATCH", fmt.Sprintf("/api/decks/%d", created.ID), token, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "nothing to update", errorMessage(t, rec))
}

func TestDeleteDeck_ThenGet(t *testing.T) {
	r, tokenAuth := newTestServer()
	token := authToken(t, tokenAuth, 1)

	rec := doRequest(r, "POST", "/api/decks", token, starterBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeDeck(t, rec)

	path := fmt.Sprintf("/api/decks/%d", created.ID)
	rec = doRequest(r, "DELETE", path, token, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = doRequest(r, "GET", path, token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDecks_OwnershipIsolation(t *testing.T) {
	r, tokenAuth := newTestServer()
	owner := authToken(t, tokenAuth, 1)
	other := authToken(t, tokenAuth, 2)

	rec := doRequest(r, "POST", "/api/decks", owner, starterBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeDeck(t, rec)

	path := fmt.Sprintf("/api/decks/%d", created.ID)
	for _, attempt := range []struct{ method, body string }{
		{"GET", ""},
		{"PATCH", `{"name":"Stolen"}`},
		{"DELETE", ""},
	} {
		rec := doRequest(r, attempt.method, path, other, attempt.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, attempt.method)
		assert.Equal(t, "deck not found", errorMessage(t, rec))
	}

	// and the deck is untouched for its owner
	rec = doRequest(r, "GET", path, owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Starter", decodeDeck(t, rec).Name)
}

func TestListMyDecks(t *testing.T) {
	r, tokenAuth := newTestServer()
	token := authToken(t, tokenAuth, 1)

	require.Equal(t, http.StatusCreated, doRequest(r, "POST", "/api/decks", token, starterBody).Code)
	require.Equal(t, http.StatusCreated, doRequest(r, "POST", "/api/decks", token,
		`{"name":"Second","cards":[11,12,13,14,15,16,17,18,19,20]}`).Code)

	rec := doRequest(r, "GET", "/api/decks/mine", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var decks []models.Deck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decks))
	require.Len(t, decks, 2)
	assert.Less(t, decks[0].ID, decks[1].ID, "decks come back in creation order")

	// a user with no decks gets an empty list, not an error
	rec = doRequest(r, "GET", "/api/decks/mine", authToken(t, tokenAuth, 2), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
