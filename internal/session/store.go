package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"zerobin/client/internal/models"
)

// The session lives in a single persisted slot. Token and user are written
// and cleared together, never separately.
const slotKey = "auth"

// Record is the persisted {token, user} pair.
type Record struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Store is the persistence behind the auth slot. Load returns (nil, nil)
// when the slot is absent or unreadable: a corrupt slot is the same as no
// session.
type Store interface {
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, rec Record) error
	Clear(ctx context.Context) error
}

// FileStore keeps the slot as a JSON file under a local state directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path() string {
	return filepath.Join(s.dir, slotKey+".json")
}

func (s *FileStore) Load(_ context.Context) (*Record, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		return nil, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, nil
	}
	return &rec, nil
}

func (s *FileStore) Save(_ context.Context, rec Record) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	// Write-then-rename so a crash mid-write never leaves a torn slot.
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path())
}

func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RedisStore keeps the slot under a single redis key, for deployments where
// the gateway's state directory is not durable.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key() string {
	return "zerobin:" + slotKey
}

func (s *RedisStore) Load(ctx context.Context) (*Record, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, nil
	}
	return &rec, nil
}

func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(), data, 0).Err()
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key()).Err()
}
