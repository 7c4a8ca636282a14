package main

import (
	"log"
	"net/http"

	"notekeeper/auth"
	"notekeeper/config"
	"notekeeper/crypto"
	"notekeeper/db"
	"notekeeper/handlers"
	"notekeeper/i18n"
	"notekeeper/views"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}

	if err := config.LoadConfig("config.json"); err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	cfg := config.AppConfig

	if err := i18n.LoadTranslations(); err != nil {
		log.Fatalf("Error loading translations: %v", err)
	}

	store, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer store.Close()

	renderer, err := views.New(cfg.AppName)
	if err != nil {
		log.Fatalf("Error parsing templates: %v", err)
	}

	crypto.DummyHash()

	srv := handlers.New(store, auth.NewManager(cfg.SessionKey, cfg.SecureCookies), renderer, cfg)

	addr := cfg.Addr()
	log.Printf("Server starting on %s (%s)", addr, cfg.AppName)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
