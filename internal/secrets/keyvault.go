package secrets

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// secretClient はazsecrets.Clientのうち利用するメソッドのみを抽出したもの。
type secretClient interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// KeyVaultProvider はAzure Key Vaultからシークレットを取得するProvider。
// 取得のたびにVaultへ問い合わせ、値はキャッシュしない。
type KeyVaultProvider struct {
	client secretClient
}

var _ Provider = (*KeyVaultProvider)(nil)

// NewKeyVaultProvider はDefaultAzureCredentialで認証するKeyVaultProviderを生成する。
func NewKeyVaultProvider(vaultURL string) (*KeyVaultProvider, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure credential: %w", err)
	}

	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create key vault client: %w", err)
	}

	return &KeyVaultProvider{client: client}, nil
}

// GetSecret は最新バージョンのシークレット値を返す。
func (p *KeyVaultProvider) GetSecret(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}

	resp, err := p.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		return "", fmt.Errorf("failed to get secret %q from key vault: %w", name, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret %q has no value", name)
	}

	return *resp.Value, nil
}

// NewProvider は設定に応じたProviderを返す。
// vaultURLが空の場合は環境変数から読むEnvProviderを使用する。
func NewProvider(vaultURL string) (Provider, error) {
	if vaultURL == "" {
		return NewEnvProvider(), nil
	}
	return NewKeyVaultProvider(vaultURL)
}
