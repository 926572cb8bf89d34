package auth

import "errors"

// 画面で回復するエラーの種類です。これ以外のエラーはインフラ障害として扱います。
var (
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict")
	ErrAuthentication = errors.New("authentication failed")
)

// ユーザーに表示するメッセージ
const (
	MsgSignupMissingFields = "Indicate a username and a password to sign up"
	MsgPasswordTooLong     = "Password must be at most 72 bytes"
	MsgEmailTaken          = "The username already exists!"
	MsgLoginMissingFields  = "Please enter both, username and password to sign up."
	MsgEmailNotFound       = "The email doesn't exist"
	MsgIncorrectPassword   = "Incorrect password"
	MsgUserCreated         = "User created"
)

// Error は画面に表示するメッセージと種類を持つエラーです。
// errors.Is(err, ErrValidation) のように種類で判定できます。
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}
