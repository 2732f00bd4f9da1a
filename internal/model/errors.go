// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// ErrorKind はエラーの種別を表す。HTTPステータスへの対応はhandler層が決める。
type ErrorKind string

const (
	KindBadRequest   ErrorKind = "bad_request"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindNotFound     ErrorKind = "not_found"
	KindInternal     ErrorKind = "internal"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Kind     ErrorKind // エラー種別
	Code     string    // エラーコード
	Message  string    // エラーメッセージ
	Category string    // カテゴリ: auth, validation, catalog, system
	Action   string    // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// KindOf はエラーチェーン中のAPIErrorの種別を返す。
// APIErrorを含まない場合はKindInternalとみなす。
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindInternal
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeProductsNotFound   = "PRODUCTS_NOT_FOUND"
	ErrCodeCategoryNotFound   = "CATEGORY_NOT_FOUND"
	ErrCodeCategoriesNotFound = "CATEGORIES_NOT_FOUND"
	ErrCodeAuthHeaderMissing  = "AUTH_HEADER_MISSING"
	ErrCodeInvalidAuthScheme  = "INVALID_AUTH_SCHEME"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeMalformedToken     = "MALFORMED_TOKEN"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeInactiveUser       = "INACTIVE_USER"
	ErrCodeNotAdmin           = "NOT_ADMIN"
	ErrCodeSignupFailed       = "SIGNUP_FAILED"
	ErrCodeLoginFailed        = "LOGIN_FAILED"
	ErrCodeUserRegistration   = "USER_REGISTRATION_FAILED"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewInvalidRequestError はリクエスト形式の不備を表すエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Kind:     KindBadRequest,
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエストの形式を確認してください。",
	}
}

// NewProductsNotFoundError は商品カタログが空の場合のエラーを生成する。
func NewProductsNotFoundError() *APIError {
	return &APIError{
		Kind:     KindNotFound,
		Code:     ErrCodeProductsNotFound,
		Message:  "商品カタログが見つかりません。",
		Category: "catalog",
		Action:   "カテゴリや登録状況を確認してください。",
	}
}

// NewCategoryNotFoundError はカテゴリ未検出エラーを生成する。
func NewCategoryNotFoundError(categoryID int) *APIError {
	return &APIError{
		Kind:     KindNotFound,
		Code:     ErrCodeCategoryNotFound,
		Message:  fmt.Sprintf("指定されたカテゴリが見つかりません: %d", categoryID),
		Category: "catalog",
		Action:   "カテゴリIDを確認してください。",
	}
}

// NewCategoriesNotFoundError はカテゴリ集計結果が空の場合のエラーを生成する。
func NewCategoriesNotFoundError() *APIError {
	return &APIError{
		Kind:     KindNotFound,
		Code:     ErrCodeCategoriesNotFound,
		Message:  "カテゴリが見つかりません。",
		Category: "catalog",
		Action:   "カテゴリの登録状況を確認してください。",
	}
}

// NewAuthHeaderMissingError はAuthorizationヘッダー欠落エラーを生成する。
func NewAuthHeaderMissingError() *APIError {
	return &APIError{
		Kind:     KindBadRequest,
		Code:     ErrCodeAuthHeaderMissing,
		Message:  "Authorizationヘッダーがありません。",
		Category: "auth",
		Action:   "Authorization: Bearer <token> を指定してください。",
	}
}

// NewInvalidAuthSchemeError は認証スキーム不正エラーを生成する。
func NewInvalidAuthSchemeError() *APIError {
	return &APIError{
		Kind:     KindBadRequest,
		Code:     ErrCodeInvalidAuthScheme,
		Message:  "認証スキームが不正です。",
		Category: "auth",
		Action:   "Bearerスキームでトークンを送信してください。",
	}
}

// NewInvalidTokenError は署名不正などで検証できないトークンのエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Kind:     KindUnauthorized,
		Code:     ErrCodeInvalidToken,
		Message:  "トークンが無効です。",
		Category: "auth",
		Action:   "再度ログインしてください。",
	}
}

// NewMalformedTokenError は必須クレームが欠けたトークンのエラーを生成する。
func NewMalformedTokenError() *APIError {
	return &APIError{
		Kind:     KindBadRequest,
		Code:     ErrCodeMalformedToken,
		Message:  "トークンに必要なクレームがありません。",
		Category: "auth",
		Action:   "再度ログインしてください。",
	}
}

// NewTokenExpiredError は有効期限切れトークンのエラーを生成する。
func NewTokenExpiredError() *APIError {
	return &APIError{
		Kind:     KindUnauthorized,
		Code:     ErrCodeTokenExpired,
		Message:  "トークンの有効期限が切れています。",
		Category: "auth",
		Action:   "再度ログインしてください。",
	}
}

// NewInactiveUserError は無効化されたユーザーのエラーを生成する。
func NewInactiveUserError() *APIError {
	return &APIError{
		Kind:     KindForbidden,
		Code:     ErrCodeInactiveUser,
		Message:  "ユーザーが無効化されています。",
		Category: "auth",
		Action:   "管理者に問い合わせてください。",
	}
}

// NewNotAdminError は管理者権限がない場合のエラーを生成する。
func NewNotAdminError() *APIError {
	return &APIError{
		Kind:     KindForbidden,
		Code:     ErrCodeNotAdmin,
		Message:  "管理者権限が必要です。",
		Category: "auth",
		Action:   "管理者アカウントでログインしてください。",
	}
}

// NewSignupFailedError はIdPでのユーザー作成失敗エラーを生成する。
func NewSignupFailedError(reason string) *APIError {
	return &APIError{
		Kind:     KindBadRequest,
		Code:     ErrCodeSignupFailed,
		Message:  fmt.Sprintf("ユーザー登録に失敗しました: %s", reason),
		Category: "auth",
		Action:   "メールアドレスとパスワードを確認してください。",
	}
}

// NewLoginFailedError はIdPでの認証失敗エラーを生成する。
// reasonにはIdPが返したメッセージをそのまま渡す。
func NewLoginFailedError(reason string) *APIError {
	return &APIError{
		Kind:     KindBadRequest,
		Code:     ErrCodeLoginFailed,
		Message:  fmt.Sprintf("認証に失敗しました: %s", reason),
		Category: "auth",
		Action:   "メールアドレスとパスワードを確認してください。",
	}
}

// NewUserRegistrationError はローカルユーザーの保存失敗エラーを生成する。
// IdP側のユーザーは補償処理で削除済みであることを前提とする。
// 原因の詳細はログにのみ記録し、メッセージには含めない。
func NewUserRegistrationError() *APIError {
	return &APIError{
		Kind:     KindInternal,
		Code:     ErrCodeUserRegistration,
		Message:  "ユーザー情報の保存に失敗しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Kind:     KindInternal,
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "管理者に問い合わせてください。",
	}
}
