package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/hitoshi/catalogapi/internal/secrets"
)

// DefaultSignInURL はIdentity ToolkitのパスワードサインインAPIのエンドポイント。
const DefaultSignInURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// adminClient はfirebase auth.Clientのうち利用するメソッドのみを抽出したもの。
type adminClient interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
}

// FirebaseProvider はFirebase AuthenticationをバックエンドとするProvider。
// Admin SDKクライアントは最初の利用時に一度だけ初期化する。
type FirebaseProvider struct {
	secrets    secrets.Provider
	httpClient *http.Client
	signInURL  string // テスト用にエンドポイントを差し替え可能

	mu      sync.Mutex
	client  adminClient
	newFunc func(ctx context.Context) (adminClient, error)
}

var _ Provider = (*FirebaseProvider)(nil)

// NewFirebaseProvider はFirebaseProviderを生成する。
// signInURLが空の場合はDefaultSignInURLを使う。
func NewFirebaseProvider(provider secrets.Provider, httpClient *http.Client, signInURL string) *FirebaseProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if signInURL == "" {
		signInURL = DefaultSignInURL
	}
	p := &FirebaseProvider{
		secrets:    provider,
		httpClient: httpClient,
		signInURL:  signInURL,
	}
	p.newFunc = p.newAdminClient
	return p
}

// newAdminClient はシークレット "firebase-secret" のサービスアカウントJSONでAdmin SDKを初期化する。
func (p *FirebaseProvider) newAdminClient(ctx context.Context) (adminClient, error) {
	credJSON, err := p.secrets.GetSecret(ctx, secrets.NameFirebaseSecret)
	if err != nil {
		return nil, fmt.Errorf("Firebase認証情報の取得に失敗しました: %w", err)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON([]byte(credJSON)))
	if err != nil {
		return nil, fmt.Errorf("Firebase Admin SDKの初期化に失敗しました: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("Firebase Authクライアントの生成に失敗しました: %w", err)
	}

	slog.Info("firebase admin client initialized")
	return client, nil
}

// admin は初期化済みのAdmin SDKクライアントを返す。
// 同時に呼ばれた場合も初期化は一度だけ行われ、失敗した場合は次の呼び出しで再試行する。
func (p *FirebaseProvider) admin(ctx context.Context) (adminClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	client, err := p.newFunc(ctx)
	if err != nil {
		return nil, err
	}
	p.client = client
	return client, nil
}

// CreateUser はメールアドレスとパスワードでユーザーを作成する。
// IdPが拒否した場合はProviderErrorを返す。
func (p *FirebaseProvider) CreateUser(ctx context.Context, email, password string) (*User, error) {
	client, err := p.admin(ctx)
	if err != nil {
		return nil, err
	}

	params := (&auth.UserToCreate{}).Email(email).Password(password)
	record, err := client.CreateUser(ctx, params)
	if err != nil {
		return nil, &ProviderError{Message: err.Error()}
	}

	return &User{UID: record.UID, Email: record.Email}, nil
}

// DeleteUser は指定UIDのユーザーを削除する。
func (p *FirebaseProvider) DeleteUser(ctx context.Context, uid string) error {
	client, err := p.admin(ctx)
	if err != nil {
		return err
	}

	if err := client.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("IdPユーザーの削除に失敗しました: %w", err)
	}
	return nil
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignInWithPassword はメールアドレスとパスワードで認証する。
// 認証が拒否された場合はIdPのメッセージを持つProviderErrorを返す。
func (p *FirebaseProvider) SignInWithPassword(ctx context.Context, email, password string) (*SignInResult, error) {
	apiKey, err := p.secrets.GetSecret(ctx, secrets.NameFirebaseAPIKey)
	if err != nil {
		return nil, fmt.Errorf("FirebaseのAPIキーの取得に失敗しました: %w", err)
	}

	reqURL, err := url.Parse(p.signInURL)
	if err != nil {
		return nil, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}
	q := reqURL.Query()
	q.Set("key", apiKey)
	reqURL.RawQuery = q.Encode()

	payload, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, fmt.Errorf("リクエストのエンコードに失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		slog.Error("identity toolkit request failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("サインインAPIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var result signInResponse
	if err := json.Unmarshal(body, &result); err != nil {
		slog.Error("identity toolkit response could not be parsed",
			slog.Int("http_status", resp.StatusCode),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	if result.Error != nil {
		return nil, &ProviderError{Message: result.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("サインインAPIがステータス %d を返しました", resp.StatusCode)
	}

	return &SignInResult{LocalID: result.LocalID, Email: result.Email, IDToken: result.IDToken}, nil
}
