// Package platform defines the Platform Collaborator: the capability that
// turns a comment addressed to a file and line range into a review comment on
// a code-hosting provider. Backends live in subpackages and register
// themselves by name.
//
// Implementations own their timeout, retry, and authentication policy; callers
// pass a context and make exactly one call per comment.
package platform

import (
	"context"
	"errors"
)

// ErrUnknownPlatform is returned by New for an unregistered backend name.
var ErrUnknownPlatform = errors.New("unknown platform")

// CommentRequest addresses a review comment to a file. A zero line is absent.
// When only one of StartLine and EndLine is set the comment targets that
// single line; when neither is set it targets the file as a whole.
type CommentRequest struct {
	FilePath  string
	Comment   string
	StartLine int
	EndLine   int
}

// Line returns the last line the comment covers, or 0 for a file comment.
func (r CommentRequest) Line() int {
	if r.EndLine > 0 {
		return r.EndLine
	}
	return r.StartLine
}

// IsRange reports whether the request spans more than one line.
func (r CommentRequest) IsRange() bool {
	return r.StartLine > 0 && r.EndLine > 0 && r.StartLine < r.EndLine
}

// Collaborator posts review comments. PostReviewComment returns a reference
// to the created comment (typically a URL) or "" when the platform exposes
// none; an empty reference is not a failure.
type Collaborator interface {
	PostReviewComment(ctx context.Context, req CommentRequest) (string, error)
}

// CollaboratorFunc adapts a function to the Collaborator interface.
type CollaboratorFunc func(ctx context.Context, req CommentRequest) (string, error)

func (f CollaboratorFunc) PostReviewComment(ctx context.Context, req CommentRequest) (string, error) {
	return f(ctx, req)
}
