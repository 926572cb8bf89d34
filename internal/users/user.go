// Package users はユーザーレコードと、その永続化（Credential Store）を提供します。
package users

import (
	"strings"
	"time"
)

// User は保存されるユーザーレコードです。Password はハッシュ値のみを保持します。
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile はパスワードを除いたユーザー情報です。
// トークンのペイロードやビューにはこちらだけを渡します。
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile はパスワードを取り除いた射影を返します。
func (u *User) Profile() *Profile {
	return &Profile{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// NormalizeEmail は検索・一意性判定に使うキーへ正規化します。
// メールアドレスは大文字小文字を区別しません。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
