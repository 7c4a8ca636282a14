package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
)

type Config struct {
	AppName           string `json:"app_name"`
	ListenIP          string `json:"listen_ip"`
	ListenPort        int    `json:"listen_port"`
	SessionKey        string `json:"session_key"`
	DatabaseDriver    string `json:"database_driver"`
	DatabaseDSN       string `json:"database_dsn"`
	SecureCookies     bool   `json:"secure_cookies"`
	Captcha           bool   `json:"captcha"`
	EnforceOwnership  bool   `json:"enforce_ownership"`
	PasswordMinLength int    `json:"password_min_length"`
}

var AppConfig Config

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		AppName:           "Notekeeper",
		ListenIP:          "127.0.0.1",
		ListenPort:        5000,
		DatabaseDriver:    "sqlite3",
		DatabaseDSN:       "./notekeeper.db",
		PasswordMinLength: 6,
	}
}

// Addr is the host:port the server binds to.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ListenIP, c.ListenPort)
}

// LoadConfig fills AppConfig from defaults, the JSON file at path (if it
// exists) and finally the environment.
func LoadConfig(path string) error {
	cfg := Default()

	file, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("config file %s not found, using defaults", path)
	case err != nil:
		return err
	default:
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return err
	}

	// If no key is provided or it's the placeholder, generate a secure random one
	if cfg.SessionKey == "" || cfg.SessionKey == "CHANGE_ME_IN_PRODUCTION" {
		log.Println("WARNING: No session key configured. Generating a random key. Sessions will be invalidated on restart.")
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err != nil {
			return err
		}
		cfg.SessionKey = hex.EncodeToString(randomKey)
	}
	if cfg.PasswordMinLength <= 0 {
		cfg.PasswordMinLength = Default().PasswordMinLength
	}

	AppConfig = cfg
	return nil
}

func applyEnv(cfg *Config) error {
	if ip := os.Getenv("IP"); ip != "" {
		cfg.ListenIP = ip
	}
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.ListenPort = p
	}
	if envKey := os.Getenv("NOTEKEEPER_SESSION_KEY"); envKey != "" {
		cfg.SessionKey = envKey
	}
	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		cfg.DatabaseDriver = driver
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.DatabaseDSN = dsn
	}
	return nil
}
