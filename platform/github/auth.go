package github

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies the bearer token for API requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a personal access or Actions token used as-is.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", fmt.Errorf("GitHub token is empty")
	}
	return string(t), nil
}

// AppTokenSource authenticates as a GitHub App installation. It signs an
// RS256 JWT for the app and exchanges it for an installation token, which is
// cached until one minute before it expires.
type AppTokenSource struct {
	appID          int64
	installationID int64
	key            *rsa.PrivateKey
	apiURL         string
	httpCli        *http.Client

	mu    sync.Mutex
	token string
	expAt time.Time
}

// NewAppTokenSource loads the PEM private key at keyPath. When
// installationID is zero the single installation of the app is discovered
// on first use.
func NewAppTokenSource(appID, installationID int64, keyPath, apiURL string, httpCli *http.Client) (*AppTokenSource, error) {
	raw, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(raw)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return &AppTokenSource{
		appID:          appID,
		installationID: installationID,
		key:            key,
		apiURL:         apiURL,
		httpCli:        httpCli,
	}, nil
}

// makeJWT signs an app JWT. IssuedAt is backdated 60s; GitHub rejects
// lifetimes over 10 minutes.
func (s *AppTokenSource) makeJWT() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    strconv.FormatInt(s.appID, 10),
		IssuedAt:  jwt.NewNumericDate(now.Add(-60 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
}

type installationTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type installationInfo struct {
	ID int64 `json:"id"`
}

// Token returns a valid installation token, refreshing it when needed.
func (s *AppTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expAt.Add(-time.Minute)) {
		return s.token, nil
	}

	appJWT, err := s.makeJWT()
	if err != nil {
		return "", fmt.Errorf("sign JWT: %w", err)
	}

	if s.installationID == 0 {
		id, err := s.discoverInstallation(ctx, appJWT)
		if err != nil {
			return "", err
		}
		s.installationID = id
	}

	url := fmt.Sprintf("%s/app/installations/%d/access_tokens", s.apiURL, s.installationID)
	resp, err := s.do(ctx, http.MethodPost, url, appJWT)
	if err != nil {
		return "", fmt.Errorf("request installation token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", &APIError{Operation: "installation token", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tok installationTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	s.token = tok.Token
	s.expAt = tok.ExpiresAt
	return s.token, nil
}

func (s *AppTokenSource) discoverInstallation(ctx context.Context, appJWT string) (int64, error) {
	resp, err := s.do(ctx, http.MethodGet, s.apiURL+"/app/installations?per_page=100", appJWT)
	if err != nil {
		return 0, fmt.Errorf("discover installation id: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, &APIError{Operation: "discover installation id", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var installations []installationInfo
	if err := json.NewDecoder(resp.Body).Decode(&installations); err != nil {
		return 0, fmt.Errorf("decode installations response: %w", err)
	}

	switch len(installations) {
	case 0:
		return 0, fmt.Errorf("no installation found for GitHub App %d", s.appID)
	case 1:
		return installations[0].ID, nil
	default:
		return 0, fmt.Errorf("multiple installations found (%d), set GITHUB_INSTALLATION_ID explicitly", len(installations))
	}
}

func (s *AppTokenSource) do(ctx context.Context, method, url, appJWT string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+appJWT)
	req.Header.Set("Accept", "application/vnd.github+json")
	return s.httpCli.Do(req)
}
