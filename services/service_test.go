package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"journal-hand/config"
	"journal-hand/models"
)

// testDB öffnet eine frische SQLite-Datenbank pro Test, inklusive
// Foreign-Key-Enforcement, und migriert das komplette Schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Researcher{}, &models.Journal{}, &models.Subscription{}, &models.University{}))
	return db
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		PublicBaseURL:   "http://localhost:4242",
		FilesDir:        t.TempDir(),
		JWTSecret:       "test-secret",
		TokenTTLMinutes: 5,
	}
}

func createResearcher(t *testing.T, svc *ResearcherService, name, email string) *models.Researcher {
	t.Helper()
	researcher := &models.Researcher{Name: name, Email: email, Password: "geheim"}
	require.NoError(t, svc.Create(t.Context(), researcher))
	return researcher
}

// insertJournal legt eine Journal-Zeile mit kontrolliertem Veröffentlichungsdatum
// direkt in der Datenbank an (der Service stempelt sonst immer time.Now).
func insertJournal(t *testing.T, db *gorm.DB, researcherID uuid.UUID, title string, published time.Time) *models.Journal {
	t.Helper()
	journal := &models.Journal{
		ID:            uuid.New(),
		ResearcherID:  researcherID,
		Title:         title,
		URL:           "http://localhost:4242/journal/docFile/" + title,
		InternalURL:   filepath.Join("files", title+".pdf"),
		PublishedDate: published,
	}
	require.NoError(t, db.Create(journal).Error)
	return journal
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
