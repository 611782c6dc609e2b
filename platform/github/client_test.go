package github

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/tailored-agentic-units/reviewkit/platform"
)

func testConfig(apiURL string) Config {
	cfg := DefaultConfig()
	cfg.Merge(&Config{
		APIURL:     apiURL,
		Repository: "owner/repo",
		PullNumber: 42,
		CommitSHA:  "abc123",
		Token:      "test-token",
	})
	return cfg
}

func TestPostReviewComment_Range(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/repos/owner/repo/pulls/42/comments" {
			t.Errorf("Path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer test-token")
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}

		var in map[string]any
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		want := map[string]any{
			"body":       "### Suggestion\n",
			"commit_id":  "abc123",
			"path":       "src/a.ts",
			"line":       float64(12),
			"side":       "RIGHT",
			"start_line": float64(10),
			"start_side": "RIGHT",
		}
		for k, v := range want {
			if in[k] != v {
				t.Errorf("body[%q] = %v, want %v", k, in[k], v)
			}
		}
		if _, ok := in["subject_type"]; ok {
			t.Error("subject_type should be omitted for line comments")
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":7,"html_url":"https://github.com/owner/repo/pull/42#discussion_r7"}`))
	}))
	defer server.Close()

	c, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	ref, err := c.PostReviewComment(context.Background(), platform.CommentRequest{
		FilePath:  "src/a.ts",
		Comment:   "### Suggestion\n",
		StartLine: 10,
		EndLine:   12,
	})
	if err != nil {
		t.Fatalf("PostReviewComment error: %v", err)
	}
	if ref != "https://github.com/owner/repo/pull/42#discussion_r7" {
		t.Errorf("ref = %q", ref)
	}
}

func TestBuildCommentInput(t *testing.T) {
	tests := []struct {
		name string
		req  platform.CommentRequest
		want reviewCommentInput
	}{
		{
			name: "file comment",
			req:  platform.CommentRequest{FilePath: "a.go", Comment: "c"},
			want: reviewCommentInput{Body: "c", CommitID: "sha", Path: "a.go", SubjectType: "file"},
		},
		{
			name: "single start line",
			req:  platform.CommentRequest{FilePath: "a.go", Comment: "c", StartLine: 5},
			want: reviewCommentInput{Body: "c", CommitID: "sha", Path: "a.go", Line: 5, Side: "RIGHT"},
		},
		{
			name: "equal start and end",
			req:  platform.CommentRequest{FilePath: "a.go", Comment: "c", StartLine: 5, EndLine: 5},
			want: reviewCommentInput{Body: "c", CommitID: "sha", Path: "a.go", Line: 5, Side: "RIGHT"},
		},
		{
			name: "range",
			req:  platform.CommentRequest{FilePath: "a.go", Comment: "c", StartLine: 5, EndLine: 8},
			want: reviewCommentInput{Body: "c", CommitID: "sha", Path: "a.go", Line: 8, Side: "RIGHT", StartLine: 5, StartSide: "RIGHT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildCommentInput(tt.req, "sha"); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPostReviewComment_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Resource not accessible by integration"}`))
	}))
	defer server.Close()

	c, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	_, err = c.PostReviewComment(context.Background(), platform.CommentRequest{FilePath: "a.go", Comment: "c", StartLine: 1})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", apiErr.StatusCode)
	}
	if got := err.Error(); got != `create review comment HTTP 403: {"message":"Resource not accessible by integration"}` {
		t.Errorf("error = %q", got)
	}
}

func TestPostReviewComment_ResolvesHeadOnce(t *testing.T) {
	var prFetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/repos/owner/repo/pulls/42":
			prFetches.Add(1)
			w.Write([]byte(`{"head":{"sha":"deadbeef"}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/repos/owner/repo/pulls/42/comments":
			var in reviewCommentInput
			json.NewDecoder(r.Body).Decode(&in)
			if in.CommitID != "deadbeef" {
				t.Errorf("commit_id = %q, want deadbeef", in.CommitID)
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":1,"html_url":"u"}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.CommitSHA = ""
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := c.PostReviewComment(context.Background(), platform.CommentRequest{FilePath: "a.go", Comment: "c", EndLine: 2}); err != nil {
			t.Fatalf("PostReviewComment error: %v", err)
		}
	}
	if prFetches.Load() != 1 {
		t.Errorf("pull request fetched %d times, want 1", prFetches.Load())
	}
}

func TestPostReviewComment_PullRequestNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.CommitSHA = ""
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	_, err = c.PostReviewComment(context.Background(), platform.CommentRequest{FilePath: "a.go", Comment: "c"})
	if err == nil || !strings.Contains(err.Error(), "get pull request HTTP 404") {
		t.Errorf("error = %v", err)
	}
}

func TestPostReviewComment_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := NewClient(testConfig(url))
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	_, err = c.PostReviewComment(context.Background(), platform.CommentRequest{FilePath: "a.go", Comment: "c"})
	if err == nil || !strings.HasPrefix(err.Error(), "posting review comment:") {
		t.Errorf("error = %v", err)
	}
}

func TestNewClient_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "bad repository", cfg: Config{Repository: "owner", PullNumber: 1, Token: "t"}},
		{name: "nested repository", cfg: Config{Repository: "a/b/c", PullNumber: 1, Token: "t"}},
		{name: "missing pull number", cfg: Config{Repository: "o/r", Token: "t"}},
		{name: "no credentials", cfg: Config{Repository: "o/r", PullNumber: 1}},
		{name: "app id without key", cfg: Config{Repository: "o/r", PullNumber: 1, AppID: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSplitRepository(t *testing.T) {
	owner, repo, err := SplitRepository("dshills/prism")
	if err != nil {
		t.Fatalf("SplitRepository error: %v", err)
	}
	if owner != "dshills" || repo != "prism" {
		t.Errorf("got %q/%q", owner, repo)
	}
}

func TestConfig_Merge_ZeroValuesPreserveDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(&Config{})

	if cfg.APIURL != defaultAPIURL {
		t.Errorf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.Timeout() != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Timeout())
	}
}

func TestRegistered(t *testing.T) {
	if _, err := platform.New(Name, testConfig("http://127.0.0.1")); err != nil {
		t.Errorf("platform.New(github, Config) error: %v", err)
	}
	cfg := testConfig("http://127.0.0.1")
	if _, err := platform.New(Name, &cfg); err != nil {
		t.Errorf("platform.New(github, *Config) error: %v", err)
	}
	if _, err := platform.New(Name, "bogus"); err == nil {
		t.Error("expected error for wrong config type")
	}
}

func writeTestKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	path := filepath.Join(t.TempDir(), "app.pem")
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return key, path
}

func TestAppTokenSource(t *testing.T) {
	key, keyPath := writeTestKey(t)

	var tokenRequests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/app/installations":
			w.Write([]byte(`[{"id":99}]`))
		case "/app/installations/99/access_tokens":
			tokenRequests.Add(1)
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			claims := &jwt.RegisteredClaims{}
			_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
				return &key.PublicKey, nil
			}, jwt.WithValidMethods([]string{"RS256"}))
			if err != nil {
				t.Errorf("invalid app JWT: %v", err)
			}
			if claims.Issuer != "12" {
				t.Errorf("iss = %q, want 12", claims.Issuer)
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(installationTokenResponse{
				Token:     "inst-token",
				ExpiresAt: time.Now().Add(time.Hour),
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	src, err := NewAppTokenSource(12, 0, keyPath, server.URL, server.Client())
	if err != nil {
		t.Fatalf("NewAppTokenSource error: %v", err)
	}

	for i := 0; i < 2; i++ {
		tok, err := src.Token(context.Background())
		if err != nil {
			t.Fatalf("Token error: %v", err)
		}
		if tok != "inst-token" {
			t.Errorf("token = %q", tok)
		}
	}
	if tokenRequests.Load() != 1 {
		t.Errorf("token requested %d times, want 1 (cached)", tokenRequests.Load())
	}
}

func TestAppTokenSource_MultipleInstallations(t *testing.T) {
	_, keyPath := writeTestKey(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1},{"id":2}]`))
	}))
	defer server.Close()

	src, err := NewAppTokenSource(12, 0, keyPath, server.URL, server.Client())
	if err != nil {
		t.Fatalf("NewAppTokenSource error: %v", err)
	}

	_, err = src.Token(context.Background())
	if err == nil || !strings.Contains(err.Error(), "multiple installations") {
		t.Errorf("error = %v", err)
	}
}

func TestNewAppTokenSource_BadKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pem")
	os.WriteFile(path, []byte("not a key"), 0600)

	if _, err := NewAppTokenSource(1, 1, path, "http://x", http.DefaultClient); err == nil {
		t.Error("expected error for malformed key")
	}
	if _, err := NewAppTokenSource(1, 1, filepath.Join(t.TempDir(), "missing.pem"), "http://x", http.DefaultClient); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestStaticToken_Empty(t *testing.T) {
	if _, err := StaticToken("").Token(context.Background()); err == nil {
		t.Error("expected error for empty token")
	}
}
