package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileStore legt Journal-Dokumente unter einem lokalen Wurzelverzeichnis ab.
// Die Dateinamen sind zufällig und unabhängig von der Journal-ID; die Datenbank
// speichert nur den resultierenden Pfad.
type FileStore struct {
	Root string
}

// NewFileStore erstellt den FileStore und legt das Wurzelverzeichnis bei Bedarf an.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create files dir %s: %w", root, err)
	}
	return &FileStore{Root: root}, nil
}

// Save schreibt das Dokument unter einem zufälligen Dateinamen (Original-Endung
// bleibt erhalten) und gibt den gespeicherten Pfad zurück.
func (s *FileStore) Save(data []byte, originalName string) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate file name: %w", err)
	}
	name := hex.EncodeToString(buf) + filepath.Ext(originalName)

	path := filepath.Join(s.Root, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write file %s: %w", path, err)
	}
	return path, nil
}

// Read liest ein gespeichertes Dokument vollständig ein.
func (s *FileStore) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Exists prüft, ob die Datei noch vorhanden ist.
func (s *FileStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove löscht eine Datei; eine bereits fehlende Datei ist kein Fehler.
func (s *FileStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file %s: %w", path, err)
	}
	return nil
}

// StoredFile beschreibt eine Datei im Wurzelverzeichnis (für den Aufräum-Job).
type StoredFile struct {
	Path    string
	ModTime time.Time
}

// List gibt alle regulären Dateien im Wurzelverzeichnis zurück.
func (s *FileStore) List() ([]StoredFile, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("read files dir %s: %w", s.Root, err)
	}
	var files []StoredFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, StoredFile{
			Path:    filepath.Join(s.Root, e.Name()),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}
