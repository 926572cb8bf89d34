package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/roicid/proyectomodulo2/internal/users"
)

// Session はログイン成功時に発行されるトークンです。
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *users.Profile
}

// Service はストア・ハッシュ・トークンの呼び出しを順序立てて実行します。
// HTTP には依存しません。
type Service struct {
	store  users.Store
	hasher PasswordHasher
	tokens *TokenService
}

// NewService は Service を作成します。
func NewService(store users.Store, hasher PasswordHasher, tokens *TokenService) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
	}
}

// Signup はユーザーを登録します。登録後の自動ログインは行いません。
func (s *Service) Signup(ctx context.Context, email, password string) (*users.Profile, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, newError(ErrValidation, MsgSignupMissingFields)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, newError(ErrValidation, MsgPasswordTooLong)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &users.User{Email: email, Password: hash}
	if err := s.store.Insert(ctx, user); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return nil, newError(ErrConflict, MsgEmailTaken)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user.Profile(), nil
}

// Login は資格情報を検証し、署名済みトークンを発行します。
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, newError(ErrValidation, MsgLoginMissingFields)
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, newError(ErrAuthentication, MsgEmailNotFound)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Compare(password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return nil, newError(ErrAuthentication, MsgIncorrectPassword)
	}

	// ペイロードにはパスワードを読み出さない射影だけを使う
	profile, err := s.store.FindProfile(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}

	token, expiresAt, err := s.tokens.Sign(profile)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      profile,
	}, nil
}
