package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/roicid/proyectomodulo2/internal/users"
)

// TokenTTL はセッショントークンの有効期間です（発行から1時間固定）。
const TokenTTL = time.Hour

// Claims はトークンのペイロードです。パスワードを含まない Profile だけを埋め込みます。
type Claims struct {
	UserWithoutPass users.Profile `json:"userWithoutPass"`
	jwt.RegisteredClaims
}

// TokenService は HS256 でトークンを署名・検証します。
// 秘密鍵は起動時に一度だけ渡され、以降変更されません。
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService は TokenService を作成します。秘密鍵が空の場合はエラーです。
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    TokenTTL,
		now:    time.Now,
	}, nil
}

// Sign はプロフィールを埋め込んだトークンと、その有効期限を返します。
func (s *TokenService) Sign(profile *users.Profile) (string, time.Time, error) {
	if profile == nil {
		return "", time.Time{}, errors.New("profile is nil")
	}
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		UserWithoutPass: *profile,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify は署名・アルゴリズム・有効期限を検証してペイロードを返します。
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
