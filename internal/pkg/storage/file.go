package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Vodeneev/betlinkbot/internal/pkg/models"
)

var _ SessionStore = (*FileSessionStore)(nil)

// fileDB is the on-disk layout: {"users": {"<id>": {"step": ..., "affiliate": ...}}}.
type fileDB struct {
	Users map[string]models.Session `json:"users"`
}

// FileSessionStore keeps every session in one JSON document. Each Save is a
// full read-modify-write of the document under a mutex, written to a temp
// file and renamed into place.
type FileSessionStore struct {
	path string
	mu   sync.Mutex
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

func (s *FileSessionStore) Get(_ context.Context, userID string) models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, _, err := s.load()
	if err != nil {
		slog.Warn("Session file unreadable, using default session", "path", s.path, "error", err)
	}
	if session, ok := db.Users[userID]; ok {
		return session
	}
	return models.NewSession()
}

func (s *FileSessionStore) Save(_ context.Context, userID string, session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, corrupt, err := s.load()
	if err != nil {
		return fmt.Errorf("failed to read session file: %w", err)
	}
	if corrupt {
		if err := s.setAside(); err != nil {
			return err
		}
	}
	db.Users[userID] = session.Clone()
	return s.write(db)
}

func (s *FileSessionStore) Reset(ctx context.Context, userID string) error {
	return s.Save(ctx, userID, models.NewSession())
}

func (s *FileSessionStore) Close() error {
	return nil
}

// load reads the document. A missing file is an empty store, and so is a
// corrupt one, reported through corrupt. Only a file that exists but cannot
// be read returns an error; db is then an empty store.
func (s *FileSessionStore) load() (db fileDB, corrupt bool, err error) {
	empty := fileDB{Users: make(map[string]models.Session)}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return empty, false, nil
	}
	if err != nil {
		return empty, false, err
	}

	if err := json.Unmarshal(data, &db); err != nil {
		slog.Warn("Session file corrupt, using empty store", "path", s.path, "error", err)
		return empty, true, nil
	}
	if db.Users == nil {
		db.Users = make(map[string]models.Session)
	}
	return db, false, nil
}

// setAside keeps a corrupt document as <path>.corrupt before it is replaced.
func (s *FileSessionStore) setAside() error {
	backup := s.path + ".corrupt"
	if err := os.Rename(s.path, backup); err != nil {
		return fmt.Errorf("failed to move corrupt session file aside: %w", err)
	}
	slog.Warn("Corrupt session file moved aside", "path", s.path, "backup", backup)
	return nil
}

func (s *FileSessionStore) write(db fileDB) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write sessions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write sessions: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
