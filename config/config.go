package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"4242"`

	// Basis-URL, unter der die API von außen erreichbar ist (für die öffentlichen Journal-Links).
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:4242"`

	// Verzeichnis für hochgeladene Journal-Dokumente
	FilesDir string `envconfig:"FILES_DIR" default:"./files"`

	// JWT-Konfiguration für die Auth-Endpunkte
	JWTSecret       string `envconfig:"JWT_SECRET" required:"true"`
	TokenTTLMinutes int    `envconfig:"TOKEN_TTL_MINUTES" default:"5"`

	// Zeitplan für den Aufräum-Job (verwaiste Dokument-Dateien)
	CleanupSchedule string `envconfig:"CLEANUP_SCHEDULE" default:"0 3 * * *"`
	// Mindestalter einer Datei in Minuten, bevor der Aufräum-Job sie anfasst
	CleanupGraceMinutes int `envconfig:"CLEANUP_GRACE_MINUTES" default:"60"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
