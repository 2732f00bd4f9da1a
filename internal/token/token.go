// Package token はHS256署名のアクセストークンの発行と検証を提供する。
package token

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/catalogapi/internal/clock"
	"github.com/hitoshi/catalogapi/internal/model"
	"github.com/hitoshi/catalogapi/internal/secrets"
)

// DefaultTTL はトークンの既定の有効期間。
const DefaultTTL = time.Hour

// Requirement は保護されたルートが要求する認可レベル。
type Requirement int

const (
	// RequireNone は認可を要求しない。
	RequireNone Requirement = iota
	// RequireAuthenticated は有効なトークンと有効なユーザーを要求する。
	RequireAuthenticated
	// RequireAdmin はRequireAuthenticatedに加えて管理者権限を要求する。
	RequireAdmin
)

// Subject はトークンに埋め込むユーザー情報。
type Subject struct {
	FirstName string
	LastName  string
	Email     string
	Active    bool
	Admin     bool
}

// Claims はトークンのペイロード。
// Active/Adminはクレームの欠落を判別するためポインタで保持する。
type Claims struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Active    *bool  `json:"active"`
	Admin     *bool  `json:"admin"`
	jwt.RegisteredClaims
}

// IsAdmin は管理者クレームが真であるかを返す。
func (c *Claims) IsAdmin() bool {
	return c.Admin != nil && *c.Admin
}

// Recorder はトークンの発行と拒否を記録するインターフェース。
type Recorder interface {
	RecordTokenIssued()
	RecordTokenRejected(code string)
}

type nopRecorder struct{}

func (nopRecorder) RecordTokenIssued()         {}
func (nopRecorder) RecordTokenRejected(string) {}

// Service はトークンの発行・検証を行う。署名鍵は毎回Secrets Providerから取得する。
type Service struct {
	secrets  secrets.Provider
	clock    clock.Clock
	ttl      time.Duration
	recorder Recorder
}

// NewService はServiceを生成する。ttlが0以下の場合はDefaultTTLを使う。
func NewService(provider secrets.Provider, clk clock.Clock, ttl time.Duration, recorder Recorder) *Service {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{secrets: provider, clock: clk, ttl: ttl, recorder: recorder}
}

func (s *Service) signingKey(ctx context.Context) ([]byte, error) {
	key, err := s.secrets.GetSecret(ctx, secrets.NameJWTSecretKey)
	if err != nil {
		return nil, fmt.Errorf("署名鍵の取得に失敗しました: %w", err)
	}
	return []byte(key), nil
}

// Issue はsubjectの情報を持つトークンを発行する。exp = iat + ttl。
func (s *Service) Issue(ctx context.Context, subject Subject) (string, error) {
	key, err := s.signingKey(ctx)
	if err != nil {
		return "", err
	}

	now := s.clock.Now()
	active := subject.Active
	admin := subject.Admin
	claims := Claims{
		FirstName: subject.FirstName,
		LastName:  subject.LastName,
		Email:     subject.Email,
		Active:    &active,
		Admin:     &admin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗しました: %w", err)
	}

	s.recorder.RecordTokenIssued()
	return signed, nil
}

// Validate はAuthorizationヘッダーの値を検証し、requirementを満たす場合にClaimsを返す。
//
// 検証順序: ヘッダー有無 → スキーム → 署名 → 必須クレーム → 有効期限 → active → admin。
func (s *Service) Validate(ctx context.Context, authorization string, requirement Requirement) (*Claims, error) {
	claims, err := s.validate(ctx, authorization, requirement)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			s.recorder.RecordTokenRejected(apiErr.Code)
		} else {
			s.recorder.RecordTokenRejected(model.ErrCodeInternal)
		}
		return nil, err
	}
	return claims, nil
}

func (s *Service) validate(ctx context.Context, authorization string, requirement Requirement) (*Claims, error) {
	if authorization == "" {
		return nil, model.NewAuthHeaderMissingError()
	}

	parts := strings.Fields(authorization)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, model.NewInvalidAuthSchemeError()
	}

	key, err := s.signingKey(ctx)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(parts[1], claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, model.NewInvalidTokenError()
	}

	if claims.Email == "" || claims.ExpiresAt == nil || claims.Active == nil {
		return nil, model.NewMalformedTokenError()
	}

	if claims.ExpiresAt.Time.Before(s.clock.Now()) {
		return nil, model.NewTokenExpiredError()
	}

	if !*claims.Active {
		return nil, model.NewInactiveUserError()
	}

	if requirement == RequireAdmin && !claims.IsAdmin() {
		return nil, model.NewNotAdminError()
	}

	return claims, nil
}
