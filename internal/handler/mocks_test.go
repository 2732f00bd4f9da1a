package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/catalogapi/internal/auth"
	"github.com/hitoshi/catalogapi/internal/middleware"
	"github.com/hitoshi/catalogapi/internal/model"
)

// --- モック ---

type mockAuthService struct {
	registerFn func(ctx context.Context, in auth.RegisterInput) (*model.User, error)
	loginFn    func(ctx context.Context, email, password string) (*auth.LoginResult, error)
}

func (m *mockAuthService) Register(ctx context.Context, in auth.RegisterInput) (*model.User, error) {
	return m.registerFn(ctx, in)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.LoginResult, error) {
	return m.loginFn(ctx, email, password)
}

type mockCatalogService struct {
	listAllFn        func(ctx context.Context) ([]model.Product, error)
	listByCategoryFn func(ctx context.Context, categoryID int) ([]model.Product, error)
	createFn         func(ctx context.Context, product *model.Product) (*model.Product, error)
}

func (m *mockCatalogService) ListAll(ctx context.Context) ([]model.Product, error) {
	return m.listAllFn(ctx)
}

func (m *mockCatalogService) ListByCategory(ctx context.Context, categoryID int) ([]model.Product, error) {
	return m.listByCategoryFn(ctx, categoryID)
}

func (m *mockCatalogService) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	return m.createFn(ctx, product)
}

type mockCategoryService struct {
	nameByIDFn      func(ctx context.Context, id int) (string, error)
	countProductsFn func(ctx context.Context) ([]model.CategoryCount, error)
}

func (m *mockCategoryService) NameByID(ctx context.Context, id int) (string, error) {
	return m.nameByIDFn(ctx, id)
}

func (m *mockCategoryService) CountProducts(ctx context.Context) ([]model.CategoryCount, error) {
	return m.countProductsFn(ctx)
}

// --- ヘルパー ---

func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
