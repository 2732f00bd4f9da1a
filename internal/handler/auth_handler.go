package handler

import (
	"context"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/hitoshi/catalogapi/internal/auth"
	"github.com/hitoshi/catalogapi/internal/model"
	"github.com/hitoshi/catalogapi/internal/security"
)

// minPasswordLength はIdPが受け付けるパスワードの最小長。
const minPasswordLength = 6

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, in auth.RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
}

// signupRequest はPOST /signup のリクエストボディ。
// active未指定の場合は有効ユーザーとして登録する。
type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Active    *bool  `json:"active"`
	Admin     bool   `json:"admin"`
}

// Validate はリクエストの入力値を検証する。
func (req *signupRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Password, validation.Required, validation.Length(minPasswordLength, 0)),
		validation.Field(&req.FirstName, validation.Length(0, 100)),
		validation.Field(&req.LastName, validation.Length(0, 100)),
	)
}

// loginRequest はPOST /login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate はリクエストの入力値を検証する。
func (req *loginRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Password, validation.Required),
	)
}

// AuthHandler はユーザー登録とログインのHTTPハンドラー。
type AuthHandler struct {
	service   AuthServiceInterface
	sanitizer security.TextSanitizer
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		service:   service,
		sanitizer: security.NewTextSanitizer(),
	}
}

// Signup はIdPとローカルストアにユーザーを登録する。
// POST /signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		handleServiceError(w, model.NewInvalidRequestError(err.Error()))
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	user, err := h.service.Register(r.Context(), auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: h.sanitizer.Sanitize(req.FirstName),
		LastName:  h.sanitizer.Sanitize(req.LastName),
		Active:    active,
		Admin:     req.Admin,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login はIdPでパスワード認証し、アクセストークンを返す。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		handleServiceError(w, model.NewInvalidRequestError(err.Error()))
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
