package suggestion

import "github.com/tailored-agentic-units/reviewkit/platform"

// Payload is the platform-neutral comment built for one invocation.
type Payload struct {
	FilePath  string
	Body      string
	StartLine int
	EndLine   int
}

// BuildPayload composes the comment body: a heading naming the file, the
// agent's comment verbatim, and a trailing newline. It reads nothing but req,
// so equal requests always produce byte-identical bodies.
func BuildPayload(req Request) Payload {
	return Payload{
		FilePath:  req.filePath,
		Body:      "### Suggestion for `" + req.filePath + "`\n\n" + req.comment + "\n",
		StartLine: req.startLine,
		EndLine:   req.endLine,
	}
}

// CommentRequest converts the payload to the collaborator's request shape.
func (p Payload) CommentRequest() platform.CommentRequest {
	return platform.CommentRequest{
		FilePath:  p.FilePath,
		Comment:   p.Body,
		StartLine: p.StartLine,
		EndLine:   p.EndLine,
	}
}
