package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Store はユーザーレコードの永続化を抽象化します。
// email 引数は実装側で NormalizeEmail されます。
type Store interface {
	// FindByEmail はパスワードハッシュを含むレコードを返します。存在しなければ ErrNotFound。
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindProfile はパスワードを読み出さずにプロフィールだけを返します。
	FindProfile(ctx context.Context, email string) (*Profile, error)
	// Insert は同じ email が存在しない場合にのみ保存します（存在すれば ErrEmailTaken）。
	// 確認と作成は一つの操作として行われます。
	Insert(ctx context.Context, user *User) error
	// Close は接続などのリソースを解放します。
	Close() error
}

// prepare は保存前のレコードに ID・作成日時・正規化済み email を埋めます。
func prepare(user *User) error {
	if user == nil {
		return errors.New("user is nil")
	}
	user.Email = NormalizeEmail(user.Email)
	if user.Email == "" {
		return errors.New("email is required")
	}
	if user.Password == "" {
		return errors.New("password hash is required")
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	return nil
}
