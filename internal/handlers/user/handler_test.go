package user_test

import (
	"context"
	"encoding/json"
	otelMocks "hostel/infras/otel/mocks"
	"hostel/internal/domains/user/mocks"
	"hostel/internal/domains/user/model/dto"
	"hostel/internal/handlers/user"
	"hostel/shared/constant"
	"hostel/shared/failure"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setup(t *testing.T) (*mocks.MockUserService, http.Handler) {
	t.Helper()

	svc := mocks.NewMockUserService(gomock.NewController(t))

	handler := user.New(svc, otelMocks.NewOtel())
	router := chi.NewRouter()
	handler.Router(router)

	return svc, router
}

func TestGetMe(t *testing.T) {
	t.Run("signed in", func(t *testing.T) {
		svc, router := setup(t)
		svc.EXPECT().Get(gomock.Any(), "0d9c8b7a-6f5e-4d3c-8b2a-190817161514").Return(dto.UserResponse{ID: "0d9c8b7a-6f5e-4d3c-8b2a-190817161514", Username: "ravi01"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req = req.WithContext(context.WithValue(req.Context(), constant.ContextKeyUserID, "0d9c8b7a-6f5e-4d3c-8b2a-190817161514"))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data dto.UserResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ravi01", body.Data.Username)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, router := setup(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetUserByID(t *testing.T) {
	svc, router := setup(t)
	svc.EXPECT().Get(gomock.Any(), "7c6b5a49-3827-4165-a5f4-e3d2c1b0a998").Return(dto.UserResponse{}, failure.NotFound("User not found"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/7c6b5a49-3827-4165-a5f4-e3d2c1b0a998", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedUserIDs(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			_, router := setup(t)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(method, "/users/u-1", strings.NewReader(`{"role":"staff"}`)))

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), "User not found")
		})
	}
}

func TestGetUsers(t *testing.T) {
	svc, router := setup(t)
	svc.EXPECT().GetAll(gomock.Any(), gomock.Any()).
		Return(dto.GetUsersResponse{Users: []dto.UserResponse{{ID: "0d9c8b7a-6f5e-4d3c-8b2a-190817161514"}}, TotalData: 1, TotalPage: 1}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users?page=1&limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalData":1`)
}

func TestUpdateUser(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		svc, router := setup(t)
		svc.EXPECT().Update(gomock.Any(), dto.UpdateUserRequest{Role: "staff"}, "0d9c8b7a-6f5e-4d3c-8b2a-190817161514").Return(nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/users/0d9c8b7a-6f5e-4d3c-8b2a-190817161514", strings.NewReader(`{"role":"staff"}`)))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, router := setup(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/users/0d9c8b7a-6f5e-4d3c-8b2a-190817161514", strings.NewReader(`{"role":"owner"}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteUser(t *testing.T) {
	svc, router := setup(t)
	svc.EXPECT().Delete(gomock.Any(), "0d9c8b7a-6f5e-4d3c-8b2a-190817161514").Return(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/0d9c8b7a-6f5e-4d3c-8b2a-190817161514", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "User deleted successfully")
}
