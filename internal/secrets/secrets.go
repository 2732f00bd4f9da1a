// Package secrets は署名鍵やIdPの認証情報など、名前で参照するシークレットの取得を提供する。
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// 利用するシークレット名
const (
	NameJWTSecretKey   = "jwt-secret-key"
	NameFirebaseSecret = "firebase-secret"
	NameFirebaseAPIKey = "firebase-api-key"
)

// ErrEmptyName はシークレット名が空の場合に返される。
var ErrEmptyName = errors.New("secret name must not be empty")

// Provider は名前を指定してシークレット文字列を取得するインターフェース。
type Provider interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// EnvProvider は環境変数からシークレットを読み込むProvider。
// "jwt-secret-key" は JWT_SECRET_KEY のように大文字化・ハイフンをアンダースコアに変換して参照する。
type EnvProvider struct {
	lookup func(string) (string, bool)
}

var _ Provider = (*EnvProvider)(nil)

// NewEnvProvider はプロセス環境を参照するEnvProviderを生成する。
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{lookup: os.LookupEnv}
}

// EnvName はシークレット名に対応する環境変数名を返す。
func EnvName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// GetSecret は対応する環境変数の値を返す。未設定または空の場合はエラーを返す。
func (p *EnvProvider) GetSecret(_ context.Context, name string) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	key := EnvName(name)
	v, ok := p.lookup(key)
	if !ok || v == "" {
		return "", fmt.Errorf("secret %q is not set (env %s)", name, key)
	}
	return v, nil
}
