package platform_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/reviewkit/platform"
)

func TestCommentRequest_Line(t *testing.T) {
	tests := []struct {
		name      string
		req       platform.CommentRequest
		wantLine  int
		wantRange bool
	}{
		{name: "file comment", req: platform.CommentRequest{}, wantLine: 0},
		{name: "start only", req: platform.CommentRequest{StartLine: 4}, wantLine: 4},
		{name: "end only", req: platform.CommentRequest{EndLine: 9}, wantLine: 9},
		{name: "range", req: platform.CommentRequest{StartLine: 10, EndLine: 12}, wantLine: 12, wantRange: true},
		{name: "same line", req: platform.CommentRequest{StartLine: 7, EndLine: 7}, wantLine: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLine, tt.req.Line())
			assert.Equal(t, tt.wantRange, tt.req.IsRange())
		})
	}
}

func TestCollaboratorFunc(t *testing.T) {
	var got platform.CommentRequest
	c := platform.CollaboratorFunc(func(_ context.Context, req platform.CommentRequest) (string, error) {
		got = req
		return "ref", nil
	})

	ref, err := c.PostReviewComment(context.Background(), platform.CommentRequest{FilePath: "a.go"})
	require.NoError(t, err)
	assert.Equal(t, "ref", ref)
	assert.Equal(t, "a.go", got.FilePath)
}

func TestRegistry(t *testing.T) {
	platform.Register("test-backend", func(cfg any) (platform.Collaborator, error) {
		prefix, _ := cfg.(string)
		return platform.CollaboratorFunc(func(_ context.Context, req platform.CommentRequest) (string, error) {
			return prefix + req.FilePath, nil
		}), nil
	})

	c, err := platform.New("test-backend", "ref:")
	require.NoError(t, err)

	ref, err := c.PostReviewComment(context.Background(), platform.CommentRequest{FilePath: "x.go"})
	require.NoError(t, err)
	assert.Equal(t, "ref:x.go", ref)
	assert.Contains(t, platform.Names(), "test-backend")
}

func TestNew_Unknown(t *testing.T) {
	_, err := platform.New("does-not-exist", nil)
	assert.True(t, errors.Is(err, platform.ErrUnknownPlatform), "error = %v", err)
}
