package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/saurav0523/liaplusAI-Backend/internal/authz"
	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
	"github.com/saurav0523/liaplusAI-Backend/internal/dto"
	"github.com/saurav0523/liaplusAI-Backend/pkg/logger"
	"github.com/saurav0523/liaplusAI-Backend/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.SignupResponse)
	return resp, args.Error(1)
}

func (m *mockAuthService) Verify(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.LoginResponse)
	return resp, args.Error(1)
}

func (m *mockAuthService) Me(ctx context.Context, accountID string) (*domain.AccountView, error) {
	args := m.Called(ctx, accountID)
	view, _ := args.Get(0).(*domain.AccountView)
	return view, args.Error(1)
}

func (m *mockAuthService) UpdateMe(ctx context.Context, accountID string, req *dto.UpdateProfileRequest) (*domain.AccountView, error) {
	args := m.Called(ctx, accountID, req)
	view, _ := args.Get(0).(*domain.AccountView)
	return view, args.Error(1)
}

type mockPostService struct {
	mock.Mock
}

func (m *mockPostService) List(ctx context.Context, query dto.ListPostsQuery) ([]*domain.Post, error) {
	args := m.Called(ctx, query)
	posts, _ := args.Get(0).([]*domain.Post)
	return posts, args.Error(1)
}

func (m *mockPostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*domain.Post)
	return post, args.Error(1)
}

func (m *mockPostService) Create(ctx context.Context, authorID string, req *dto.CreatePostRequest) (*domain.Post, error) {
	args := m.Called(ctx, authorID, req)
	post, _ := args.Get(0).(*domain.Post)
	return post, args.Error(1)
}

func (m *mockPostService) Update(ctx context.Context, id string, req *dto.UpdatePostRequest) (*domain.Post, error) {
	args := m.Called(ctx, id, req)
	post, _ := args.Get(0).(*domain.Post)
	return post, args.Error(1)
}

func (m *mockPostService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func doRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *response.ErrorData {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

// withClaims stands in for the Authenticate middleware
func withClaims(claims domain.SessionClaims) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(authz.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

func authRouter(svc *mockAuthService, claims *domain.SessionClaims) *gin.Engine {
	h := NewAuthHandler(svc, logger.NewNop())
	r := gin.New()
	r.POST("/auth/signup", h.Signup)
	r.GET("/auth/verify", h.Verify)
	r.POST("/auth/login", h.Login)
	if claims != nil {
		r.GET("/auth/me", withClaims(*claims), h.Me)
		r.PATCH("/auth/me", withClaims(*claims), h.UpdateMe)
	} else {
		r.GET("/auth/me", h.Me)
		r.PATCH("/auth/me", h.UpdateMe)
	}
	return r
}

func TestAuthHandler_Signup(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Signup", mock.Anything, &dto.SignupRequest{Name: "A", Email: "a@x.com", Password: "Passw0rd"}).
		Return(&dto.SignupResponse{
			User:                  domain.AccountView{ID: "acc-1", Email: "a@x.com", Role: domain.RoleUser},
			VerificationEmailSent: true,
		}, nil)

	w := doRequest(authRouter(svc, nil), http.MethodPost, "/auth/signup",
		map[string]string{"name": "A", "email": "a@x.com", "password": "Passw0rd"})

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Success bool               `json:"success"`
		Data    dto.SignupResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "acc-1", resp.Data.User.ID)
	assert.True(t, resp.Data.VerificationEmailSent)
	assert.NotContains(t, w.Body.String(), "password")
	svc.AssertExpectations(t)
}

func TestAuthHandler_SignupErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{name: "invalid email", err: domain.ErrInvalidEmail, wantStatus: http.StatusBadRequest, wantCode: "INVALID_EMAIL"},
		{name: "weak password", err: domain.ErrWeakPassword, wantStatus: http.StatusBadRequest, wantCode: "WEAK_PASSWORD"},
		{name: "missing field", err: domain.MissingField("name"), wantStatus: http.StatusBadRequest, wantCode: "MISSING_FIELD", wantMsg: "Missing required field: name"},
		{name: "email exists", err: domain.ErrEmailExists, wantStatus: http.StatusBadRequest, wantCode: "EMAIL_EXISTS", wantMsg: "User already exists"},
		{name: "internal", err: domain.Internal("insert account", errors.New("pq: connection refused")), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR", wantMsg: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{}
			svc.On("Signup", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := doRequest(authRouter(svc, nil), http.MethodPost, "/auth/signup",
				map[string]string{"name": "A", "email": "a@x.com", "password": "Passw0rd"})

			assert.Equal(t, tt.wantStatus, w.Code)
			e := decodeError(t, w)
			assert.Equal(t, tt.wantCode, e.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, e.Message)
			}
			assert.Empty(t, e.Details)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestAuthHandler_SignupMalformedBody(t *testing.T) {
	svc := &mockAuthService{}

	w := doRequest(authRouter(svc, nil), http.MethodPost, "/auth/signup", "{not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, w).Code)
	svc.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
}

func TestAuthHandler_Verify(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockAuthService{}
		svc.On("Verify", mock.Anything, "tok").Return(nil)

		w := doRequest(authRouter(svc, nil), http.MethodGet, "/auth/verify?token=tok", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"verified":true`)
		svc.AssertExpectations(t)
	})

	t.Run("missing token", func(t *testing.T) {
		svc := &mockAuthService{}

		w := doRequest(authRouter(svc, nil), http.MethodGet, "/auth/verify", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		e := decodeError(t, w)
		assert.Equal(t, "MISSING_FIELD", e.Code)
		assert.Equal(t, "Missing required field: token", e.Message)
	})

	t.Run("invalid token", func(t *testing.T) {
		svc := &mockAuthService{}
		svc.On("Verify", mock.Anything, "used").Return(domain.ErrInvalidToken)

		w := doRequest(authRouter(svc, nil), http.MethodGet, "/auth/verify?token=used", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_TOKEN", decodeError(t, w).Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Login", mock.Anything, &dto.LoginRequest{Email: "a@x.com", Password: "Passw0rd"}).
		Return(&dto.LoginResponse{AccessToken: "jwt", TokenType: dto.TokenTypeBearer, ExpiresIn: 3600}, nil)

	w := doRequest(authRouter(svc, nil), http.MethodPost, "/auth/login",
		map[string]string{"email": "a@x.com", "password": "Passw0rd"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"jwt"`)
	svc.AssertExpectations(t)
}

func TestAuthHandler_LoginErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "unknown account", err: domain.ErrAccountNotFound, wantStatus: http.StatusNotFound, wantCode: "ACCOUNT_NOT_FOUND"},
		{name: "wrong password", err: domain.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_CREDENTIALS"},
		{name: "not verified", err: domain.ErrEmailNotVerified, wantStatus: http.StatusForbidden, wantCode: "EMAIL_NOT_VERIFIED"},
		{name: "invalid email", err: domain.ErrInvalidEmail, wantStatus: http.StatusBadRequest, wantCode: "INVALID_EMAIL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{}
			svc.On("Login", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := doRequest(authRouter(svc, nil), http.MethodPost, "/auth/login",
				map[string]string{"email": "a@x.com", "password": "Passw0rd"})

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
		})
	}
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("with claims", func(t *testing.T) {
		svc := &mockAuthService{}
		svc.On("Me", mock.Anything, "acc-1").Return(&domain.AccountView{ID: "acc-1", Email: "a@x.com"}, nil)

		w := doRequest(authRouter(svc, &domain.SessionClaims{SubjectID: "acc-1"}), http.MethodGet, "/auth/me", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"email":"a@x.com"`)
	})

	t.Run("without claims", func(t *testing.T) {
		svc := &mockAuthService{}

		w := doRequest(authRouter(svc, nil), http.MethodGet, "/auth/me", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHENTICATED", decodeError(t, w).Code)
	})
}

func TestAuthHandler_UpdateMe(t *testing.T) {
	claims := &domain.SessionClaims{SubjectID: "acc-1"}

	t.Run("success", func(t *testing.T) {
		svc := &mockAuthService{}
		svc.On("UpdateMe", mock.Anything, "acc-1", mock.Anything).
			Return(&domain.AccountView{ID: "acc-1", Name: "New"}, nil)

		w := doRequest(authRouter(svc, claims), http.MethodPatch, "/auth/me", map[string]string{"name": "New"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"New"`)
	})

	t.Run("empty update", func(t *testing.T) {
		svc := &mockAuthService{}
		svc.On("UpdateMe", mock.Anything, "acc-1", mock.Anything).Return(nil, domain.ErrEmptyUpdate)

		w := doRequest(authRouter(svc, claims), http.MethodPatch, "/auth/me", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "EMPTY_UPDATE", decodeError(t, w).Code)
	})
}

func postRouter(svc *mockPostService) *gin.Engine {
	h := NewPostHandler(svc, logger.NewNop())
	r := gin.New()
	g := r.Group("/posts", withClaims(domain.SessionClaims{SubjectID: "admin-1", Role: domain.RoleAdmin, IsVerified: true}))
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return r
}

func TestPostHandler_List(t *testing.T) {
	svc := &mockPostService{}
	svc.On("List", mock.Anything, dto.ListPostsQuery{Limit: 5, Offset: 10}).
		Return([]*domain.Post{{ID: "p1", Title: "T"}}, nil)

	w := doRequest(postRouter(svc), http.MethodGet, "/posts?limit=5&offset=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"p1"`)
	svc.AssertExpectations(t)
}

func TestPostHandler_ListBadQuery(t *testing.T) {
	svc := &mockPostService{}

	w := doRequest(postRouter(svc), http.MethodGet, "/posts?limit=abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, w).Code)
}

func TestPostHandler_CreateUsesCaller(t *testing.T) {
	svc := &mockPostService{}
	req := &dto.CreatePostRequest{Title: "T", Content: "C"}
	svc.On("Create", mock.Anything, "admin-1", req).
		Return(&domain.Post{ID: "p1", Title: "T", Content: "C", AuthorID: "admin-1"}, nil)

	w := doRequest(postRouter(svc), http.MethodPost, "/posts", req)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestPostHandler_Update(t *testing.T) {
	t.Run("empty update", func(t *testing.T) {
		svc := &mockPostService{}
		svc.On("Update", mock.Anything, "p1", mock.Anything).Return(nil, domain.ErrEmptyUpdate)

		w := doRequest(postRouter(svc), http.MethodPatch, "/posts/p1", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "EMPTY_UPDATE", decodeError(t, w).Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mockPostService{}
		svc.On("Update", mock.Anything, "missing", mock.Anything).Return(nil, domain.ErrPostNotFound)

		w := doRequest(postRouter(svc), http.MethodPatch, "/posts/missing", map[string]string{"title": "x"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPostHandler_Delete(t *testing.T) {
	svc := &mockPostService{}
	svc.On("Delete", mock.Anything, "p1").Return(nil)
	svc.On("Delete", mock.Anything, "p2").Return(domain.ErrPostNotFound)

	r := postRouter(svc)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodDelete, "/posts/p1", nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodDelete, "/posts/p2", nil).Code)
}

func TestPostHandler_Get(t *testing.T) {
	svc := &mockPostService{}
	svc.On("Get", mock.Anything, "p1").Return(&domain.Post{ID: "p1", Title: "T"}, nil)
	svc.On("Get", mock.Anything, "p2").Return(nil, domain.ErrPostNotFound)

	r := postRouter(svc)
	w := doRequest(r, http.MethodGet, "/posts/p1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"T"`)

	w = doRequest(r, http.MethodGet, "/posts/p2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "POST_NOT_FOUND", decodeError(t, w).Code)
}

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(ctx context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		h := NewHealthHandler("auth", map[string]HealthChecker{"postgres": stubChecker{}})
		r := gin.New()
		r.GET("/health", h.Health)
		r.GET("/ready", h.Ready)

		assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/health", nil).Code)

		w := doRequest(r, http.MethodGet, "/ready", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"postgres":"connected"`)
	})

	t.Run("dependency down", func(t *testing.T) {
		h := NewHealthHandler("auth", map[string]HealthChecker{
			"postgres": stubChecker{},
			"redis":    stubChecker{err: errors.New("dial tcp: refused")},
		})
		r := gin.New()
		r.GET("/ready", h.Ready)

		w := doRequest(r, http.MethodGet, "/ready", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"redis":"disconnected"`)
		assert.NotContains(t, w.Body.String(), "refused")
	})
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, statusFor(domain.ErrUnauthenticated))
	assert.Equal(t, http.StatusForbidden, statusFor(domain.ErrInsufficientRole))
	assert.Equal(t, http.StatusUnauthorized, statusFor(domain.ErrTokenExpired))
	assert.Equal(t, http.StatusInternalServerError, statusFor(domain.ErrInternal))
}
