package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	config "github.com/iutcalais-offroy/nodejs-api-pokedex-jordy005/configs"
	"github.com/iutcalais-offroy/nodejs-api-pokedex-jordy005/internal/apisvc/db"
	"github.com/iutcalais-offroy/nodejs-api-pokedex-jordy005/internal/apisvc/models"
	"github.com/iutcalais-offroy/nodejs-api-pokedex-jordy005/internal/apisvc/store"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const SERVICE_NAME = "seed"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

// seed wipes the database and loads the demo users plus the card catalog
// from the JSON file named by POKEMON_DATA.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	if err := db.Migrate(ctx, dbpool); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	// wipe in foreign-key order
	for _, table := range []string{"deck_cards", "decks", "cards", "users"} {
		if _, err := dbpool.Exec(ctx, "DELETE FROM "+table); err != nil {
			log.Fatalf("Failed to clear table %s: %v", table, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	userStore := store.NewUserStore(dbpool)
	seedUsers := []struct {
		email    string
		username string
	}{
		{"red@example.com", "red"},
		{"blue@example.com", "blue"},
	}
	for _, u := range seedUsers {
		if _, err := userStore.CreateUser(ctx, u.email, u.username, string(hash)); err != nil {
			log.Fatalf("Failed to create user %s: %v", u.email, err)
		}
		log.Infof("created user %s", u.username)
	}

	dataPath := os.Getenv("POKEMON_DATA")
	if dataPath == "" {
		dataPath = "./data/pokemon.json"
	}

	raw, err := os.ReadFile(dataPath)
	if err != nil {
		log.Fatalf("Failed to read card data %s: %v", dataPath, err)
	}

	var cards []*models.Card
	if err := json.Unmarshal(raw, &cards); err != nil {
		log.Fatalf("Failed to parse card data: %v", err)
	}

	cardStore := store.NewCardStore(dbpool)
	if err := cardStore.InsertCards(ctx, cards); err != nil {
		log.Fatalf("Failed to seed cards: %v", err)
	}

	log.Infof("seed complete: %d users, %d cards", len(seedUsers), len(cards))
}
