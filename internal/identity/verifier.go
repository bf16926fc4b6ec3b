// Package identity resolves bearer credentials against the external identity
// provider. The token format is opaque to this service; only the provider can
// turn it into a user id.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fitroom/internal/domain"
)

// Identity is the resolved caller.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Verifier resolves a bearer token to an identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// HTTPVerifier asks the identity provider's user-introspection endpoint to
// resolve tokens. Missing, invalid, and expired tokens all surface as
// domain.ErrUnauthenticated.
type HTTPVerifier struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPVerifier builds a verifier for the given provider endpoint and
// service API key.
func NewHTTPVerifier(endpoint, apiKey string) *HTTPVerifier {
	return &HTTPVerifier{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Verify resolves the token via GET {endpoint}/user.
func (v *HTTPVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.apiKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: call provider: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrUnauthenticated
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("identity: provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("identity: decode provider response: %w", err)
	}
	if user.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return &Identity{ID: user.ID, Email: user.Email}, nil
}
