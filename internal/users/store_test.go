package users

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStoreTest(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb)
	t.Cleanup(func() {
		_ = store.Close()
		mr.Close()
	})
	return store, mr
}

func newSQLiteStoreTest(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "db", "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"redis": func(t *testing.T) Store {
			store, _ := newRedisStoreTest(t)
			return store
		},
		"sqlite": func(t *testing.T) Store { return newSQLiteStoreTest(t) },
	}
}

func TestStoreInsertAndFind(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			user := &User{Email: "  Ana@Example.com ", Password: "$2a$04$hash"}
			require.NoError(t, store.Insert(ctx, user))
			assert.NotEmpty(t, user.ID)
			assert.Equal(t, "ana@example.com", user.Email)
			assert.False(t, user.CreatedAt.IsZero())

			got, err := store.FindByEmail(ctx, "ana@example.com")
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)
			assert.Equal(t, "$2a$04$hash", got.Password)
			assert.WithinDuration(t, user.CreatedAt, got.CreatedAt, time.Second)

			profile, err := store.FindProfile(ctx, "ANA@example.com")
			require.NoError(t, err)
			assert.Equal(t, user.ID, profile.ID)
			assert.Equal(t, "ana@example.com", profile.Email)
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			_, err := store.FindByEmail(ctx, "nobody@example.com")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = store.FindProfile(ctx, "nobody@example.com")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreInsertDuplicate(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			require.NoError(t, store.Insert(ctx, &User{Email: "dup@example.com", Password: "first"}))
			err := store.Insert(ctx, &User{Email: "DUP@example.com", Password: "second"})
			assert.ErrorIs(t, err, ErrEmailTaken)

			got, err := store.FindByEmail(ctx, "dup@example.com")
			require.NoError(t, err)
			assert.Equal(t, "first", got.Password)
		})
	}
}

func TestStoreInsertRejectsIncompleteUser(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			assert.Error(t, store.Insert(ctx, nil))
			assert.Error(t, store.Insert(ctx, &User{Email: " ", Password: "x"}))
			assert.Error(t, store.Insert(ctx, &User{Email: "a@example.com"}))
		})
	}
}

func TestStoreConcurrentInsertSameEmail(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			const workers = 8
			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				created int
				taken   int
			)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := store.Insert(ctx, &User{Email: "race@example.com", Password: "hash"})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						created++
					case assert.ErrorIs(t, err, ErrEmailTaken):
						taken++
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, created)
			assert.Equal(t, workers-1, taken)
		})
	}
}

func TestRedisStoreKeyLayout(t *testing.T) {
	store, mr := newRedisStoreTest(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &User{Email: "Key@Example.com", Password: "hash"}))
	assert.True(t, mr.Exists("user:key@example.com"))

	mr.Set("user:broken@example.com", "not-json")
	_, err := store.FindByEmail(ctx, "broken@example.com")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRespectsCanceledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Insert(ctx, &User{Email: "a@example.com", Password: "x"}), context.Canceled)
	assert.Equal(t, 0, store.Len())
}

func TestUserProfileDropsPassword(t *testing.T) {
	user := &User{ID: "1", Email: "a@example.com", Password: "secret-hash"}
	profile := user.Profile()
	assert.Equal(t, &Profile{ID: "1", Email: "a@example.com"}, profile)
}
