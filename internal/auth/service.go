// Package auth はIdPへの登録・ログインとローカルユーザーの管理を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/catalogapi/internal/identity"
	"github.com/hitoshi/catalogapi/internal/model"
	"github.com/hitoshi/catalogapi/internal/repository"
	"github.com/hitoshi/catalogapi/internal/token"
)

// LoginSucceededMessage はログイン成功時のレスポンスメッセージ。
const LoginSucceededMessage = "User authenticated successfully"

// TokenIssuer はアクセストークンの発行インターフェース。
type TokenIssuer interface {
	Issue(ctx context.Context, subject token.Subject) (string, error)
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Active    bool
	Admin     bool
}

// LoginResult はログイン成功時の結果。
type LoginResult struct {
	Message string `json:"message"`
	IDToken string `json:"idToken"`
}

// Service は登録・ログインのビジネスロジックを提供する。
type Service struct {
	idp      identity.Provider
	userRepo repository.UserRepository
	tokens   TokenIssuer
}

// NewService はServiceを生成する。
func NewService(idp identity.Provider, userRepo repository.UserRepository, tokens TokenIssuer) *Service {
	return &Service{
		idp:      idp,
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Register はIdPにユーザーを作成し、続けてローカルユーザーを保存する。
// ローカル保存に失敗した場合はIdP側のユーザーを削除してから失敗を返す。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	created, err := s.idp.CreateUser(ctx, in.Email, in.Password)
	if err != nil {
		var perr *identity.ProviderError
		if errors.As(err, &perr) {
			slog.Warn("identity provider rejected signup",
				slog.String("email", in.Email),
				slog.String("error", perr.Message),
			)
			return nil, model.NewSignupFailedError(perr.Message)
		}
		return nil, fmt.Errorf("IdPでのユーザー作成に失敗しました: %w", err)
	}

	user, err := s.userRepo.Create(ctx, &model.User{
		Email:     created.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Active:    in.Active,
		Admin:     in.Admin,
	})
	if err != nil {
		slog.Error("failed to store local user, removing identity provider user",
			slog.String("email", created.Email),
			slog.String("uid", created.UID),
			slog.String("error", err.Error()),
		)
		if delErr := s.idp.DeleteUser(ctx, created.UID); delErr != nil {
			slog.Error("compensating identity provider delete failed",
				slog.String("uid", created.UID),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, model.NewUserRegistrationError()
	}

	slog.Info("user registered",
		slog.String("email", user.Email),
		slog.Bool("admin", user.Admin),
	)
	return user, nil
}

// Login はIdPでパスワード認証し、ローカルユーザー情報からアクセストークンを発行する。
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if _, err := s.idp.SignInWithPassword(ctx, email, password); err != nil {
		var perr *identity.ProviderError
		if errors.As(err, &perr) {
			return nil, model.NewLoginFailedError(perr.Message)
		}
		return nil, fmt.Errorf("IdPでの認証に失敗しました: %w", err)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		slog.Error("authenticated user has no local record", slog.String("email", email))
		return nil, model.NewUserNotFoundError()
	}

	signed, err := s.tokens.Issue(ctx, token.Subject{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     email,
		Active:    user.Active,
		Admin:     user.Admin,
	})
	if err != nil {
		return nil, fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	slog.Info("user logged in", slog.String("email", email))
	return &LoginResult{Message: LoginSucceededMessage, IDToken: signed}, nil
}
