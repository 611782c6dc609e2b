// Package local is a platform backend that writes review comments to a
// writer instead of a hosting provider. It is used for dry runs and local
// reviews; it never returns a reference.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/tailored-agentic-units/reviewkit/platform"
)

// Name is the registry name of this backend.
const Name = "local"

func init() {
	platform.Register(Name, func(cfg any) (platform.Collaborator, error) {
		if w, ok := cfg.(io.Writer); ok && w != nil {
			return New(w), nil
		}
		return New(os.Stdout), nil
	})
}

// Collaborator prints comments to its writer. Writes are serialized so
// concurrent invocations do not interleave.
type Collaborator struct {
	mu sync.Mutex
	w  io.Writer
}

// New creates a Collaborator writing to w.
func New(w io.Writer) *Collaborator {
	return &Collaborator{w: w}
}

// PostReviewComment writes the comment under a location header. It returns
// an empty reference.
func (c *Collaborator) PostReviewComment(ctx context.Context, req platform.CommentRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := fmt.Fprintf(c.w, "--- %s\n%s\n", location(req), req.Comment); err != nil {
		return "", fmt.Errorf("writing comment: %w", err)
	}
	return "", nil
}

func location(req platform.CommentRequest) string {
	switch {
	case req.IsRange():
		return fmt.Sprintf("%s:%d-%d", req.FilePath, req.StartLine, req.EndLine)
	case req.Line() > 0:
		return fmt.Sprintf("%s:%d", req.FilePath, req.Line())
	default:
		return req.FilePath
	}
}
