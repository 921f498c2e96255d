package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthClientIssueToken(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Fatalf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-issued"})
	}))
	defer server.Close()

	authClient := NewAuthClient(server.URL, nil)
	token, err := authClient.IssueToken(context.Background(), "alice", "hunter2!")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if token != "tok-issued" {
		t.Fatalf("expected issued token, got %q", token)
	}
	if gotBody["screenName"] != "alice" || gotBody["password"] != "hunter2!" {
		t.Fatalf("unexpected login payload %+v", gotBody)
	}
}

func TestAuthClientIssueTokenRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "bad credentials"})
	}))
	defer server.Close()

	authClient := NewAuthClient(server.URL, nil)
	_, err := authClient.IssueToken(context.Background(), "alice", "wrong")

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Message != "bad credentials" {
		t.Fatalf("expected backend message, got %q", authErr.Message)
	}
}

func TestAuthClientRegisterDefaultsRole(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"userid": 9, "screenName": "bob", "role": "USER"})
	}))
	defer server.Close()

	authClient := NewAuthClient(server.URL, nil)
	created, err := authClient.Register(context.Background(), Registration{ScreenName: "bob", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.ID != 9 || created.Tag != "bob" {
		t.Fatalf("unexpected created user %+v", created)
	}
	if gotBody["role"] != "USER" {
		t.Fatalf("expected USER role default, got %v", gotBody["role"])
	}
}
