package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

func TestEnvName(t *testing.T) {
	tests := map[string]string{
		"jwt-secret-key":   "JWT_SECRET_KEY",
		"firebase-api-key": "FIREBASE_API_KEY",
		"plain":            "PLAIN",
	}
	for in, want := range tests {
		if got := EnvName(in); got != want {
			t.Errorf("EnvName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnvProvider_GetSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	p := NewEnvProvider()

	got, err := p.GetSecret(context.Background(), NameJWTSecretKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "s3cret" {
		t.Errorf("GetSecret = %q, want %q", got, "s3cret")
	}
}

func TestEnvProvider_GetSecret_Missing(t *testing.T) {
	t.Setenv("FIREBASE_API_KEY", "")
	p := NewEnvProvider()

	if _, err := p.GetSecret(context.Background(), NameFirebaseAPIKey); err == nil {
		t.Fatal("expected error for unset secret")
	}
}

func TestEnvProvider_GetSecret_EmptyName(t *testing.T) {
	p := NewEnvProvider()

	_, err := p.GetSecret(context.Background(), "")
	if !errors.Is(err, ErrEmptyName) {
		t.Errorf("error = %v, want ErrEmptyName", err)
	}
}

type mockSecretClient struct {
	getSecretFn func(ctx context.Context, name, version string) (azsecrets.GetSecretResponse, error)
	calls       []string
}

func (m *mockSecretClient) GetSecret(ctx context.Context, name string, version string, _ *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	m.calls = append(m.calls, name)
	return m.getSecretFn(ctx, name, version)
}

func TestKeyVaultProvider_GetSecret(t *testing.T) {
	value := "from-vault"
	client := &mockSecretClient{
		getSecretFn: func(_ context.Context, name, version string) (azsecrets.GetSecretResponse, error) {
			if version != "" {
				t.Errorf("version = %q, want latest (empty)", version)
			}
			var resp azsecrets.GetSecretResponse
			resp.Value = &value
			return resp, nil
		},
	}
	p := &KeyVaultProvider{client: client}

	got, err := p.GetSecret(context.Background(), NameJWTSecretKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != value {
		t.Errorf("GetSecret = %q, want %q", got, value)
	}
	if len(client.calls) != 1 || client.calls[0] != NameJWTSecretKey {
		t.Errorf("calls = %v, want [%s]", client.calls, NameJWTSecretKey)
	}
}

func TestKeyVaultProvider_GetSecret_Errors(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		fn     func(context.Context, string, string) (azsecrets.GetSecretResponse, error)
	}{
		{
			name:   "empty name",
			secret: "",
		},
		{
			name:   "vault error",
			secret: NameFirebaseSecret,
			fn: func(context.Context, string, string) (azsecrets.GetSecretResponse, error) {
				return azsecrets.GetSecretResponse{}, errors.New("forbidden")
			},
		},
		{
			name:   "nil value",
			secret: NameFirebaseSecret,
			fn: func(context.Context, string, string) (azsecrets.GetSecretResponse, error) {
				return azsecrets.GetSecretResponse{}, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockSecretClient{getSecretFn: tt.fn}
			p := &KeyVaultProvider{client: client}

			if _, err := p.GetSecret(context.Background(), tt.secret); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestNewProvider_EmptyURLUsesEnv(t *testing.T) {
	p, err := NewProvider("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*EnvProvider); !ok {
		t.Errorf("NewProvider(\"\") = %T, want *EnvProvider", p)
	}
}
