package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix = "user:"
)

// RedisStore はユーザーを JSON として Redis に保存します。
// キーは user:<正規化済みemail> です。
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore は RedisStore を作成します。
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// FindByEmail はユーザー情報を取得します。
func (s *RedisStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := s.get(ctx, email, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindProfile は保存済み JSON を Profile に直接デコードし、password を読み捨てます。
func (s *RedisStore) FindProfile(ctx context.Context, email string) (*Profile, error) {
	var profile Profile
	if err := s.get(ctx, email, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Insert は SETNX で未登録の場合だけ保存します。
func (s *RedisStore) Insert(ctx context.Context, user *User) error {
	if err := prepare(user); err != nil {
		return err
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, userKey(user.Email), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return ErrEmailTaken
	}
	return nil
}

// Close は Redis クライアントを閉じます。
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) get(ctx context.Context, email string, dst any) error {
	key := userKey(NormalizeEmail(email))
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("redis get: %w", err)
	}
	return json.Unmarshal(data, dst)
}

func userKey(email string) string {
	return userKeyPrefix + email
}
