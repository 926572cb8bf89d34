package users

import (
	"context"
	"sync"
)

// MemoryStore はプロセス内のマップにユーザーを保持します。開発・テスト用です。
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryStore は空の MemoryStore を作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]User)}
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryStore) FindProfile(ctx context.Context, email string) (*Profile, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

func (s *MemoryStore) Insert(ctx context.Context, user *User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := prepare(user); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Email]; exists {
		return ErrEmailTaken
	}
	s.users[user.Email] = *user
	return nil
}

// Len は保存済みユーザー数を返します。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *MemoryStore) Close() error {
	return nil
}
