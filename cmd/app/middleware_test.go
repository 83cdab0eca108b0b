package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/inkpost/internal/userservice"
)

func strptr(s string) *string {
	return &s
}

func TestRecoverPanic(t *testing.T) {
	app := &application{logger: newTestLogger()}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()

	app.recoverPanic(handler).ServeHTTP(res, req)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, "close", res.Header().Get("Connection"))
	assert.NotContains(t, res.Body.String(), "something went wrong")
}

func TestAuthenticate(t *testing.T) {
	app, _ := newTestApplication(t)

	_, token, err := app.userService.SignUp(context.Background(), userservice.SignUpRequest{
		FirstName: "Test",
		LastName:  "User",
		Email:     "testuser@example.com",
		Password:  "Test_1234!",
	})
	require.NoError(t, err)

	foreign := userservice.NewTokenManager("another-secret", time.Hour)
	foreignToken, err := foreign.Issue(uuid.New())
	require.NoError(t, err)

	unknownUser, err := userservice.NewTokenManager(app.config.JWTSecret, time.Hour).Issue(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     *string
		expectedStatus int
		wantAnonymous  bool
	}{
		{
			name:           "No Authentication Header",
			expectedStatus: http.StatusOK,
			wantAnonymous:  true,
		},
		{
			name:           "Malformed Authentication Header",
			authHeader:     strptr("Token abc"),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Token",
			authHeader:     strptr("Bearer invalid-token"),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Token Signed With Another Key",
			authHeader:     strptr("Bearer " + foreignToken.Plain),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Token For Unknown User",
			authHeader:     strptr("Bearer " + unknownUser.Plain),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Valid Token",
			authHeader:     strptr("Bearer " + token.Plain),
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var anonymous bool
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				anonymous = app.getUserContext(r).IsAnonymous()
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != nil {
				req.Header.Set("Authorization", *tt.authHeader)
			}

			res := httptest.NewRecorder()

			app.authenticate(handler).ServeHTTP(res, req)

			assert.Equal(t, tt.expectedStatus, res.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.wantAnonymous, anonymous)
			} else {
				assert.Equal(t, "Bearer", res.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRequireAuthUser(t *testing.T) {
	app := &application{logger: newTestLogger()}

	handler := app.requireAuthUser(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, app.createUserContext(req, &userservice.AnonymousUser))
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, app.createUserContext(req, &userservice.User{ID: uuid.New()}))
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestUserSegment(t *testing.T) {
	app := &application{logger: newTestLogger()}

	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/blogs/:id/me", app.userSegment(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/blogs/user/me", nil))
	assert.Equal(t, http.StatusOK, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/blogs/other/me", nil))
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestEnableCORS(t *testing.T) {
	app := &application{
		config: &Config{
			TrustedOrigins: []string{"http://example.com"},
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := app.enableCORS(handler)

	tests := []struct {
		name                       string
		origin                     string
		method                     string
		accessControlRequestMethod *string
		expectedStatus             int
		wantAllowOrigin            bool
		wantPreflight              bool
	}{
		{
			name:            "Valid Origin and Method",
			origin:          "http://example.com",
			method:          http.MethodGet,
			expectedStatus:  http.StatusOK,
			wantAllowOrigin: true,
		},
		{
			name:                       "Valid Origin and Preflight Request",
			origin:                     "http://example.com",
			method:                     http.MethodOptions,
			accessControlRequestMethod: strptr(http.MethodPut),
			expectedStatus:             http.StatusOK,
			wantAllowOrigin:            true,
			wantPreflight:              true,
		},
		{
			name:           "Invalid Origin",
			origin:         "http://invalid.com",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
		},
		{
			name:                       "Invalid Origin Preflight",
			origin:                     "http://invalid.com",
			method:                     http.MethodOptions,
			accessControlRequestMethod: strptr(http.MethodDelete),
			expectedStatus:             http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.accessControlRequestMethod != nil {
				req.Header.Set("Access-Control-Request-Method", *tt.accessControlRequestMethod)
			}

			res := httptest.NewRecorder()

			middleware.ServeHTTP(res, req)

			assert.Equal(t, tt.expectedStatus, res.Code)

			if tt.wantAllowOrigin {
				assert.Equal(t, tt.origin, res.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, res.Header().Get("Access-Control-Allow-Origin"))
			}

			if tt.wantPreflight {
				assert.Equal(t, "OPTIONS, PUT, PATCH, DELETE", res.Header().Get("Access-Control-Allow-Methods"))
				assert.Equal(t, "Content-Type, Authorization", res.Header().Get("Access-Control-Allow-Headers"))
			} else {
				assert.Empty(t, res.Header().Get("Access-Control-Allow-Methods"))
				assert.Empty(t, res.Header().Get("Access-Control-Allow-Headers"))
			}
		})
	}
}
