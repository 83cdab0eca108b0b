package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sushihentaime/inkpost/internal/blogservice"
	"github.com/sushihentaime/inkpost/internal/common"
	"github.com/sushihentaime/inkpost/internal/userservice"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	t.Helper()
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, envelope
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApplication wires the services to a fresh postgres container.
// Messaging is disabled.
func newTestApplication(t *testing.T) (*application, *sql.DB) {
	t.Helper()

	db := common.TestDB(t)
	logger := newTestLogger()
	cfg := &Config{
		Environment:    "development",
		Version:        "test",
		TrustedOrigins: []string{"http://example.com"},
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
	}

	users := userservice.NewUserService(db, userservice.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL), common.NopProducer{}, logger)

	app := &application{
		config:      cfg,
		logger:      logger,
		userService: users,
		blogService: blogservice.NewBlogService(db, users),
	}

	return app, db
}

func (ts *testServer) do(t *testing.T, method, path string, token string, payload any) (int, http.Header, envelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) post(t *testing.T, path, token string, payload any) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPost, path, token, payload)
}

func (ts *testServer) get(t *testing.T, path, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, token, nil)
}

func (ts *testServer) put(t *testing.T, path, token string, payload any) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPut, path, token, payload)
}

func (ts *testServer) delete(t *testing.T, path, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, token, nil)
}

// signUp registers a user and returns its id and bearer token.
func (ts *testServer) signUp(t *testing.T, first, last, email string) (string, string) {
	t.Helper()

	status, _, body := ts.post(t, "/auth/signup", "", map[string]string{
		"first_name": first,
		"last_name":  last,
		"email":      email,
		"password":   "password123",
	})
	if status != http.StatusCreated {
		t.Fatalf("signup failed with %d: %v", status, body)
	}

	return body["id"].(string), body["token"].(string)
}
