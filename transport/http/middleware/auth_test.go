package middleware_test

import (
	"hostel/infras/jwt"
	jwtMocks "hostel/infras/jwt/mocks"
	otelMocks "hostel/infras/otel/mocks"
	"hostel/permissions"
	"hostel/shared/constant"
	"hostel/transport/http/middleware"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const rules = `{"endpoints":[
	{"path":"/open","method":"GET","skip":true},
	{"path":"/me","method":"GET","permissions":[]},
	{"path":"/admin/{id}","method":"GET","permissions":["admin"]}
]}`

// echo writes the caller id the middleware attached, or "anonymous".
func echo(w http.ResponseWriter, r *http.Request) {
	id, _ := r.Context().Value(constant.ContextKeyUserID).(string)
	if id == "" {
		id = "anonymous"
	}

	_, _ = w.Write([]byte(id))
}

func setupAuth(t *testing.T) (*jwtMocks.MockJWT, http.Handler) {
	t.Helper()

	data, err := permissions.Parse([]byte(rules))
	require.NoError(t, err)

	tokens := jwtMocks.NewMockJWT(gomock.NewController(t))
	auth := middleware.NewAuthRoleMiddleware(tokens, otelMocks.NewOtel(), data)

	router := chi.NewRouter()
	router.Use(auth.Auth, auth.RBAC)
	router.Get("/open", echo)
	router.Get("/me", echo)
	router.Get("/admin/{id}", echo)

	return tokens, router
}

func get(router http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestAuthPublicRoute(t *testing.T) {
	tokens, router := setupAuth(t)

	rec := get(router, "/open", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	tokens.EXPECT().ValidateToken("good", jwt.AccessToken).Return(&jwt.Claims{UserID: "u-1", Role: constant.RoleUser}, nil)

	rec = get(router, "/open", "good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", rec.Body.String())

	tokens.EXPECT().ValidateToken("bad", jwt.AccessToken).Return(nil, jwt.ErrInvalidToken)

	rec = get(router, "/open", "bad")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestAuthProtectedRoute(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		claims   *jwt.Claims
		err      error
		wantCode int
		wantBody string
	}{
		{name: "missing header", wantCode: http.StatusUnauthorized, wantBody: "Missing authorization header"},
		{name: "expired", token: "old", err: jwt.ErrExpiredToken, wantCode: http.StatusUnauthorized, wantBody: "Token has expired"},
		{name: "empty user", token: "odd", claims: &jwt.Claims{}, wantCode: http.StatusUnauthorized, wantBody: "Invalid token claims"},
		{name: "valid", token: "good", claims: &jwt.Claims{UserID: "u-1"}, wantCode: http.StatusOK, wantBody: "u-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, router := setupAuth(t)

			if tt.token != "" {
				tokens.EXPECT().ValidateToken(tt.token, jwt.AccessToken).Return(tt.claims, tt.err)
			}

			rec := get(router, "/me", tt.token)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestRBAC(t *testing.T) {
	tokens, router := setupAuth(t)

	tokens.EXPECT().ValidateToken("user", jwt.AccessToken).Return(&jwt.Claims{UserID: "u-1", Role: constant.RoleUser}, nil)
	assert.Equal(t, http.StatusForbidden, get(router, "/admin/7", "user").Code)

	tokens.EXPECT().ValidateToken("admin", jwt.AccessToken).Return(&jwt.Claims{UserID: "u-2", Role: constant.RoleAdmin}, nil)
	rec := get(router, "/admin/7", "admin")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-2", rec.Body.String())
}
