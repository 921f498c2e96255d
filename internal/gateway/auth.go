package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/featherpost/client/internal/logging"
	"github.com/featherpost/client/internal/models"
)

// Registration captures the fields for a new account.
type Registration struct {
	ScreenName   string `json:"screenName"`
	Password     string `json:"password"`
	ProfileImage string `json:"profileImage,omitempty"`
	Bio          string `json:"bio,omitempty"`
	Role         string `json:"role"`
}

type loginRequest struct {
	ScreenName string `json:"screenName"`
	Password   string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// AuthClient issues the anonymous authentication calls. It carries no session
// state so it can exist before the session store does.
type AuthClient struct {
	baseURL string
	http    *http.Client
}

// NewAuthClient constructs an AuthClient for the given base URL.
func NewAuthClient(baseURL string, hc *http.Client) *AuthClient {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &AuthClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// IssueToken exchanges credentials for a bearer token. A rejection surfaces
// as AuthError.
func (a *AuthClient) IssueToken(ctx context.Context, screenName, password string) (string, error) {
	var resp tokenResponse
	err := a.post(ctx, "/auth/login", loginRequest{ScreenName: screenName, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &ServerError{Status: http.StatusOK, Message: "login response carried no token"}
	}
	return resp.Token, nil
}

// Register creates a new account and returns the created user. The backend
// does not issue a token on registration; the user logs in afterwards.
func (a *AuthClient) Register(ctx context.Context, reg Registration) (models.ViewerProfile, error) {
	if reg.Role == "" {
		reg.Role = string(models.RoleUser)
	}
	var created models.ViewerProfile
	if err := a.post(ctx, "/auth/register", reg, &created); err != nil {
		return models.ViewerProfile{}, err
	}
	return created, nil
}

func (a *AuthClient) post(ctx context.Context, path string, body, out any) error {
	ctx, op := logging.StartOp(ctx, "POST "+path)

	err := a.doPost(ctx, path, body, out)
	op.End(err)
	return err
}

func (a *AuthClient) doPost(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}
	return nil
}
