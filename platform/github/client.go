// Package github is a platform backend that posts review comments on GitHub
// pull requests through the REST API.
//
// Each comment is one POST to /repos/{owner}/{repo}/pulls/{n}/comments. The
// client makes no retries; its only timeout is the HTTP client timeout from
// Config (60 seconds by default), after which PostReviewComment fails.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/tailored-agentic-units/reviewkit/platform"
)

// Name is the registry name of this backend.
const Name = "github"

func init() {
	platform.Register(Name, func(cfg any) (platform.Collaborator, error) {
		switch c := cfg.(type) {
		case Config:
			return NewClient(c)
		case *Config:
			return NewClient(*c)
		default:
			return nil, fmt.Errorf("github: unexpected config type %T", cfg)
		}
	})
}

// APIError is a non-success response from the GitHub API.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s HTTP %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Client posts pull request review comments.
type Client struct {
	apiURL     string
	owner      string
	repo       string
	pullNumber int
	tokens     TokenSource
	httpCli    *http.Client

	mu        sync.Mutex
	commitSHA string
}

// NewClient validates cfg and builds a Client. A static token takes
// precedence over GitHub App credentials.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	owner, repo, _ := SplitRepository(cfg.Repository)

	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	httpCli := &http.Client{Timeout: cfg.Timeout()}

	var tokens TokenSource = StaticToken(cfg.Token)
	if cfg.Token == "" {
		app, err := NewAppTokenSource(cfg.AppID, cfg.InstallationID, cfg.PrivateKeyPath, apiURL, httpCli)
		if err != nil {
			return nil, err
		}
		tokens = app
	}

	return &Client{
		apiURL:     apiURL,
		owner:      owner,
		repo:       repo,
		pullNumber: cfg.PullNumber,
		tokens:     tokens,
		httpCli:    httpCli,
		commitSHA:  cfg.CommitSHA,
	}, nil
}

// reviewCommentInput is the body of the create-review-comment endpoint.
type reviewCommentInput struct {
	Body        string `json:"body"`
	CommitID    string `json:"commit_id"`
	Path        string `json:"path"`
	Line        int    `json:"line,omitempty"`
	Side        string `json:"side,omitempty"`
	StartLine   int    `json:"start_line,omitempty"`
	StartSide   string `json:"start_side,omitempty"`
	SubjectType string `json:"subject_type,omitempty"`
}

// ReviewComment is the subset of the created comment the client reads.
type ReviewComment struct {
	ID      int64  `json:"id"`
	HTMLURL string `json:"html_url"`
}

type pullRequest struct {
	Head struct {
		SHA string `json:"sha"`
	} `json:"head"`
}

// PostReviewComment creates one review comment and returns its html_url.
func (c *Client) PostReviewComment(ctx context.Context, req platform.CommentRequest) (string, error) {
	sha, err := c.headSHA(ctx)
	if err != nil {
		return "", err
	}

	in := buildCommentInput(req, sha)
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/comments", c.apiURL, c.owner, c.repo, c.pullNumber)

	resp, err := c.doAPI(ctx, http.MethodPost, url, in)
	if err != nil {
		return "", fmt.Errorf("posting review comment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", &APIError{Operation: "create review comment", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var comment ReviewComment
	if err := json.NewDecoder(resp.Body).Decode(&comment); err != nil {
		return "", fmt.Errorf("decode review comment: %w", err)
	}
	return comment.HTMLURL, nil
}

func buildCommentInput(req platform.CommentRequest, sha string) reviewCommentInput {
	in := reviewCommentInput{
		Body:     req.Comment,
		CommitID: sha,
		Path:     req.FilePath,
	}

	line := req.Line()
	if line == 0 {
		in.SubjectType = "file"
		return in
	}

	in.Line = line
	in.Side = "RIGHT"
	if req.IsRange() {
		in.StartLine = req.StartLine
		in.StartSide = "RIGHT"
	}
	return in
}

// headSHA returns the configured commit or resolves the pull request head
// once and caches it.
func (c *Client) headSHA(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.commitSHA != "" {
		return c.commitSHA, nil
	}

	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.apiURL, c.owner, c.repo, c.pullNumber)
	resp, err := c.doAPI(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetching pull request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &APIError{Operation: "get pull request", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var pr pullRequest
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return "", fmt.Errorf("decode pull request: %w", err)
	}
	if pr.Head.SHA == "" {
		return "", fmt.Errorf("pull request #%d has no head commit", c.pullNumber)
	}

	c.commitSHA = pr.Head.SHA
	return c.commitSHA, nil
}

func (c *Client) doAPI(ctx context.Context, method, url string, body any) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpCli.Do(req)
}
