package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Vodeneev/betlinkbot/internal/pkg/config"
	"github.com/Vodeneev/betlinkbot/internal/pkg/models"
)

var testAffiliate = models.AffiliateParams{SiteID: "11566", AffID: "662", AdID: "431", C: "Telegram"}

// storeFactories returns every backend available in this environment.
func storeFactories(t *testing.T) map[string]func(t *testing.T) SessionStore {
	factories := map[string]func(t *testing.T) SessionStore{
		"memory": func(t *testing.T) SessionStore {
			return NewMemorySessionStore()
		},
		"file": func(t *testing.T) SessionStore {
			return NewFileSessionStore(filepath.Join(t.TempDir(), "data", "db.json"))
		},
		"sqlite": func(t *testing.T) SessionStore {
			store, err := NewSQLiteSessionStore(context.Background(), filepath.Join(t.TempDir(), "betlink.db"))
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			return store
		},
	}

	if dsn := os.Getenv("BETLINK_TEST_POSTGRES_DSN"); dsn != "" {
		factories["postgres"] = func(t *testing.T) SessionStore {
			store, err := NewPostgresSessionStore(context.Background(), &config.PostgresConfig{DSN: dsn})
			if err != nil {
				t.Fatalf("open postgres: %v", err)
			}
			return store
		}
	}
	if addr := os.Getenv("BETLINK_TEST_REDIS_ADDR"); addr != "" {
		factories["redis"] = func(t *testing.T) SessionStore {
			store, err := NewRedisSessionStore(context.Background(), &config.RedisConfig{Addr: addr})
			if err != nil {
				t.Fatalf("open redis: %v", err)
			}
			return store
		}
	}
	return factories
}

func TestSessionStores(t *testing.T) {
	for name, open := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)
			t.Cleanup(func() { store.Close() })

			// Unique IDs so shared external backends do not leak between runs.
			user := fmt.Sprintf("%s-%s", name, t.Name())

			got := store.Get(ctx, user)
			if got.State != models.StateIdle || got.Affiliate != nil {
				t.Fatalf("new user session = %+v, want default", got)
			}

			a := testAffiliate
			want := models.Session{State: models.StateAwaitingBetReference, Affiliate: &a}
			if err := store.Save(ctx, user, want); err != nil {
				t.Fatalf("Save: %v", err)
			}

			// Mutating the caller's copy must not reach the store.
			a.C = "changed"

			got = store.Get(ctx, user)
			if got.State != models.StateAwaitingBetReference {
				t.Errorf("state = %v, want %v", got.State, models.StateAwaitingBetReference)
			}
			if got.Affiliate == nil || *got.Affiliate != testAffiliate {
				t.Errorf("affiliate = %+v, want %+v", got.Affiliate, testAffiliate)
			}

			other := user + "-other"
			if err := store.Save(ctx, other, models.Session{State: models.StateAwaitingAffiliateLink}); err != nil {
				t.Fatalf("Save other: %v", err)
			}
			if got := store.Get(ctx, user); got.Affiliate == nil {
				t.Error("saving another user clobbered the first one")
			}

			if err := store.Reset(ctx, user); err != nil {
				t.Fatalf("Reset: %v", err)
			}
			got = store.Get(ctx, user)
			if got.State != models.StateIdle || got.Affiliate != nil {
				t.Errorf("after reset = %+v, want default", got)
			}
			if got := store.Get(ctx, other); got.State != models.StateAwaitingAffiliateLink {
				t.Errorf("reset touched another user: %+v", got)
			}
		})
	}
}

func TestSessionStores_ConcurrentUsers(t *testing.T) {
	for name, open := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)
			t.Cleanup(func() { store.Close() })

			const users = 20
			var wg sync.WaitGroup
			for i := 0; i < users; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					a := testAffiliate
					a.AdID = fmt.Sprint(i)
					s := models.Session{State: models.StateAwaitingBetReference, Affiliate: &a}
					if err := store.Save(ctx, fmt.Sprintf("%s-u%d", name, i), s); err != nil {
						t.Errorf("Save user %d: %v", i, err)
					}
				}(i)
			}
			wg.Wait()

			for i := 0; i < users; i++ {
				got := store.Get(ctx, fmt.Sprintf("%s-u%d", name, i))
				if got.Affiliate == nil || got.Affiliate.AdID != fmt.Sprint(i) {
					t.Errorf("user %d: got %+v", i, got.Affiliate)
				}
			}
		})
	}
}

func TestFileSessionStore_CorruptFileIsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	store := NewFileSessionStore(path)
	ctx := context.Background()

	if got := store.Get(ctx, "1"); got.State != models.StateIdle || got.Affiliate != nil {
		t.Fatalf("Get on corrupt file = %+v, want default", got)
	}
	if err := store.Save(ctx, "1", models.Session{State: models.StateAwaitingAffiliateLink}); err != nil {
		t.Fatalf("Save over corrupt file: %v", err)
	}
	if got := store.Get(ctx, "1"); got.State != models.StateAwaitingAffiliateLink {
		t.Errorf("state = %v after rewrite", got.State)
	}

	backup, err := os.ReadFile(path + ".corrupt")
	if err != nil {
		t.Fatalf("corrupt file was not kept: %v", err)
	}
	if string(backup) != "{not json" {
		t.Errorf("backup = %q", backup)
	}
}

func TestFileSessionStore_UnreadableFileIsNotOverwritten(t *testing.T) {
	// A directory at the store path exists but cannot be read as a file.
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}
	marker := filepath.Join(path, "keep")
	if err := os.WriteFile(marker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	store := NewFileSessionStore(path)
	ctx := context.Background()

	if got := store.Get(ctx, "1"); got.State != models.StateIdle || got.Affiliate != nil {
		t.Errorf("Get on unreadable file = %+v, want default", got)
	}
	if err := store.Save(ctx, "1", models.Session{State: models.StateAwaitingAffiliateLink}); err == nil {
		t.Fatal("Save on unreadable file succeeded, want error")
	}
	if err := store.Reset(ctx, "1"); err == nil {
		t.Fatal("Reset on unreadable file succeeded, want error")
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("existing data was touched: %v", err)
	}
}

func TestFileSessionStore_ReadsLegacyLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	legacy := `{
  "users": {
    "42": {
      "step": "waiting_bet_link",
      "affiliate": {"siteid": "11566", "affid": "662", "adid": "431", "c": "Telegram"}
    },
    "43": {"step": "something_else", "affiliate": null}
  }
}`
	if err := os.WriteFile(path, []byte(legacy), 0o600); err != nil {
		t.Fatal(err)
	}

	store := NewFileSessionStore(path)
	ctx := context.Background()

	got := store.Get(ctx, "42")
	if got.State != models.StateAwaitingBetReference || got.Affiliate == nil || *got.Affiliate != testAffiliate {
		t.Errorf("user 42 = %+v", got)
	}
	if got := store.Get(ctx, "43"); got.State != models.StateIdle {
		t.Errorf("unknown step should read as idle, got %v", got.State)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		cfg     config.StorageConfig
		wantErr bool
	}{
		{config.StorageConfig{Driver: config.DriverMemory}, false},
		{config.StorageConfig{Driver: config.DriverFile, FilePath: filepath.Join(dir, "db.json")}, false},
		{config.StorageConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(dir, "s.db")}, false},
		{config.StorageConfig{Driver: config.DriverPostgres}, true},
		{config.StorageConfig{Driver: "bolt"}, true},
	}

	for _, tt := range tests {
		store, err := Open(ctx, &tt.cfg)
		if (err != nil) != tt.wantErr {
			t.Errorf("Open(%q) error = %v, wantErr %v", tt.cfg.Driver, err, tt.wantErr)
		}
		if store != nil {
			store.Close()
		}
	}
}
