package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/catalogapi/internal/clock"
	"github.com/hitoshi/catalogapi/internal/model"
)

const testSecret = "test-signing-key"

// --- モック ---

type mockSecrets struct {
	getSecretFn func(ctx context.Context, name string) (string, error)
}

func (m *mockSecrets) GetSecret(ctx context.Context, name string) (string, error) {
	return m.getSecretFn(ctx, name)
}

func staticSecrets(value string) *mockSecrets {
	return &mockSecrets{getSecretFn: func(context.Context, string) (string, error) { return value, nil }}
}

type mockRecorder struct {
	issued   int
	rejected []string
}

func (m *mockRecorder) RecordTokenIssued()              { m.issued++ }
func (m *mockRecorder) RecordTokenRejected(code string) { m.rejected = append(m.rejected, code) }

var baseTime = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *clock.FixedClock, *mockRecorder) {
	t.Helper()
	clk := clock.NewFixedClock(baseTime)
	rec := &mockRecorder{}
	return NewService(staticSecrets(testSecret), clk, 0, rec), clk, rec
}

func bearer(token string) string { return "Bearer " + token }

func signRaw(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}

// --- テスト ---

func TestService_IssueAndValidate_RoundTrip(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	tok, err := svc.Issue(ctx, Subject{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Active: true, Admin: false})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := svc.Validate(ctx, bearer(tok), RequireAuthenticated)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Email != "ada@example.com" || claims.FirstName != "Ada" || claims.LastName != "Lovelace" {
		t.Errorf("claims = %+v", claims)
	}
	if got := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Errorf("exp - iat = %v, want 1h", got)
	}
	if rec.issued != 1 {
		t.Errorf("issued = %d, want 1", rec.issued)
	}
}

func TestService_Validate_NonAdminOnAdminRoute_Forbidden(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	tok, err := svc.Issue(ctx, Subject{Email: "user@example.com", Active: true, Admin: false})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = svc.Validate(ctx, bearer(tok), RequireAdmin)
	if model.KindOf(err) != model.KindForbidden {
		t.Fatalf("KindOf(err) = %q, want %q", model.KindOf(err), model.KindForbidden)
	}
	if len(rec.rejected) != 1 || rec.rejected[0] != model.ErrCodeNotAdmin {
		t.Errorf("rejected = %v, want [%s]", rec.rejected, model.ErrCodeNotAdmin)
	}
}

func TestService_Validate_AdminOnAdminRoute(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tok, _ := svc.Issue(ctx, Subject{Email: "admin@example.com", Active: true, Admin: true})

	claims, err := svc.Validate(ctx, bearer(tok), RequireAdmin)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !claims.IsAdmin() {
		t.Error("IsAdmin() = false, want true")
	}
}

func TestService_Validate_Expired_Unauthorized(t *testing.T) {
	svc, clk, _ := newTestService(t)
	ctx := context.Background()

	tok, _ := svc.Issue(ctx, Subject{Email: "user@example.com", Active: true})
	clk.Advance(time.Hour + time.Second)

	_, err := svc.Validate(ctx, bearer(tok), RequireAuthenticated)
	if model.KindOf(err) != model.KindUnauthorized {
		t.Fatalf("KindOf(err) = %q, want %q", model.KindOf(err), model.KindUnauthorized)
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeTokenExpired {
		t.Errorf("error = %v, want code %s", err, model.ErrCodeTokenExpired)
	}
}

func TestService_Validate_ExactlyAtExpiry_StillValid(t *testing.T) {
	svc, clk, _ := newTestService(t)
	ctx := context.Background()

	tok, _ := svc.Issue(ctx, Subject{Email: "user@example.com", Active: true})
	clk.Advance(time.Hour)

	if _, err := svc.Validate(ctx, bearer(tok), RequireAuthenticated); err != nil {
		t.Errorf("token at exact expiry should be accepted: %v", err)
	}
}

func TestService_Validate_InactiveUser_Forbidden(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tok, _ := svc.Issue(ctx, Subject{Email: "user@example.com", Active: false, Admin: true})

	_, err := svc.Validate(ctx, bearer(tok), RequireAuthenticated)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInactiveUser {
		t.Fatalf("error = %v, want code %s", err, model.ErrCodeInactiveUser)
	}
	if apiErr.Kind != model.KindForbidden {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, model.KindForbidden)
	}
}

func TestService_Validate_HeaderErrors_BadRequest(t *testing.T) {
	svc, _, _ := newTestService(t)
	tok, _ := svc.Issue(context.Background(), Subject{Email: "user@example.com", Active: true})

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", model.ErrCodeAuthHeaderMissing},
		{"basic scheme", "Basic dXNlcjpwYXNz", model.ErrCodeInvalidAuthScheme},
		{"token only", tok, model.ErrCodeInvalidAuthScheme},
		{"three parts", "Bearer " + tok + " extra", model.ErrCodeInvalidAuthScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(context.Background(), tt.header, RequireAuthenticated)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Code != tt.code || apiErr.Kind != model.KindBadRequest {
				t.Errorf("got %s/%s, want %s/%s", apiErr.Kind, apiErr.Code, model.KindBadRequest, tt.code)
			}
		})
	}
}

func TestService_Validate_SchemeIsCaseInsensitive(t *testing.T) {
	svc, _, _ := newTestService(t)
	tok, _ := svc.Issue(context.Background(), Subject{Email: "user@example.com", Active: true})

	if _, err := svc.Validate(context.Background(), "bEaReR "+tok, RequireAuthenticated); err != nil {
		t.Errorf("Validate with mixed-case scheme failed: %v", err)
	}
}

func TestService_Validate_BadSignatureOrAlgorithm_Unauthorized(t *testing.T) {
	svc, _, _ := newTestService(t)
	exp := baseTime.Add(time.Hour).Unix()
	claims := jwt.MapClaims{"email": "user@example.com", "active": true, "exp": exp}

	tests := []struct {
		name  string
		token string
	}{
		{"wrong key", signRaw(t, jwt.SigningMethodHS256, []byte("other-key"), claims)},
		{"wrong algorithm", signRaw(t, jwt.SigningMethodHS512, []byte(testSecret), claims)},
		{"unsigned", signRaw(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, claims)},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(context.Background(), bearer(tt.token), RequireAuthenticated)
			if model.KindOf(err) != model.KindUnauthorized {
				t.Errorf("KindOf(err) = %q, want %q", model.KindOf(err), model.KindUnauthorized)
			}
		})
	}
}

func TestService_Validate_MissingClaims_BadRequest(t *testing.T) {
	svc, _, _ := newTestService(t)
	exp := baseTime.Add(time.Hour).Unix()

	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"missing email", jwt.MapClaims{"active": true, "exp": exp}},
		{"missing exp", jwt.MapClaims{"email": "user@example.com", "active": true}},
		{"missing active", jwt.MapClaims{"email": "user@example.com", "exp": exp}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), tt.claims)
			_, err := svc.Validate(context.Background(), bearer(tok), RequireAuthenticated)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeMalformedToken {
				t.Errorf("error = %v, want code %s", err, model.ErrCodeMalformedToken)
			}
		})
	}
}

func TestService_SecretLookupFailure_Internal(t *testing.T) {
	failing := &mockSecrets{getSecretFn: func(context.Context, string) (string, error) {
		return "", errors.New("vault unavailable")
	}}
	svc := NewService(failing, clock.NewFixedClock(baseTime), time.Hour, nil)

	if _, err := svc.Issue(context.Background(), Subject{Email: "a@example.com", Active: true}); model.KindOf(err) != model.KindInternal {
		t.Errorf("Issue: KindOf(err) = %q, want %q", model.KindOf(err), model.KindInternal)
	}
	if _, err := svc.Validate(context.Background(), "Bearer x.y.z", RequireAuthenticated); model.KindOf(err) != model.KindInternal {
		t.Errorf("Validate: KindOf(err) = %q, want %q", model.KindOf(err), model.KindInternal)
	}
}

func TestService_RequestsJWTSecretByName(t *testing.T) {
	var requested string
	provider := &mockSecrets{getSecretFn: func(_ context.Context, name string) (string, error) {
		requested = name
		return testSecret, nil
	}}
	svc := NewService(provider, nil, 0, nil)

	if _, err := svc.Issue(context.Background(), Subject{Email: "a@example.com", Active: true}); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if requested != "jwt-secret-key" {
		t.Errorf("requested secret = %q, want %q", requested, "jwt-secret-key")
	}
}
