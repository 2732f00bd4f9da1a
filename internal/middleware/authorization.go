// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/catalogapi/internal/model"
	"github.com/hitoshi/catalogapi/internal/token"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストに検証済みIdentityを格納するためのキー。
var identityContextKey = contextKey("identity")

// TokenValidator はAuthorizationヘッダーの検証に必要なインターフェース。
// token.Serviceが実装する。
type TokenValidator interface {
	Validate(ctx context.Context, authorization string, requirement token.Requirement) (*token.Claims, error)
}

// NewAuthorizationMiddleware はAuthorizationヘッダーのトークンを検証し、
// requirementを満たすリクエストのみ次のハンドラーへ渡すミドルウェアを返す。
// 検証済みのIdentityをリクエストコンテキストに注入する。
func NewAuthorizationMiddleware(validator TokenValidator, requirement token.Requirement) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requirement == token.RequireNone {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := validator.Validate(r.Context(), r.Header.Get("Authorization"), requirement)
			if err != nil {
				var apiErr *model.APIError
				if errors.As(err, &apiErr) {
					WriteErrorResponse(w, StatusForKind(apiErr.Kind), apiErr)
					return
				}
				slog.Error("token validation failed", slog.String("error", err.Error()))
				WriteInternalServerError(w)
				return
			}

			id := model.Identity{
				Email:     claims.Email,
				FirstName: claims.FirstName,
				LastName:  claims.LastName,
				Admin:     claims.IsAdmin(),
			}
			noteIdentity(r.Context(), id.Email)
			ctx := context.WithValue(r.Context(), identityContextKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext はリクエストコンテキストから検証済みIdentityを取得する。
// 認可ミドルウェアを通過していない場合はfalseを返す。
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(model.Identity)
	return id, ok
}

// ContextWithIdentity はIdentityを格納したコンテキストを返す。テスト用。
func ContextWithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}
