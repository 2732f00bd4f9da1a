// Package identity は外部IdP（Firebase Authentication）とのやり取りを提供する。
// ユーザーの作成・削除はAdmin SDK、パスワード認証はIdentity Toolkit REST APIを使う。
package identity

import (
	"context"
	"fmt"
)

// User はIdPに作成されたユーザー。
type User struct {
	UID   string
	Email string
}

// SignInResult はパスワード認証の結果。
type SignInResult struct {
	LocalID string
	Email   string
	IDToken string
}

// ProviderError はIdPが拒否理由を返した場合のエラー。
// Messageには "INVALID_PASSWORD" などIdPのメッセージをそのまま保持する。
type ProviderError struct {
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider rejected request: %s", e.Message)
}

// Provider はIdPの操作インターフェース。
type Provider interface {
	CreateUser(ctx context.Context, email, password string) (*User, error)
	DeleteUser(ctx context.Context, uid string) error
	SignInWithPassword(ctx context.Context, email, password string) (*SignInResult, error)
}
