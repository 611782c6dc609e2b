package suggestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/tailored-agentic-units/reviewkit/tools"
)

// Arguments are the raw tool-call arguments as the agent sent them. A nil
// line pointer means the agent omitted it.
type Arguments struct {
	FilePath  string `json:"filePath"`
	Comment   string `json:"comment"`
	StartLine *int   `json:"startLine,omitempty"`
	EndLine   *int   `json:"endLine,omitempty"`
}

// Request is a validated suggestion. It cannot be modified after NewRequest
// returns it. Absent lines read as zero.
type Request struct {
	filePath  string
	comment   string
	startLine int
	endLine   int
}

func (r Request) FilePath() string { return r.filePath }
func (r Request) Comment() string  { return r.comment }
func (r Request) StartLine() int   { return r.startLine }
func (r Request) EndLine() int     { return r.endLine }

// NewRequest validates args. The range is never reordered or clamped; a
// start after the end is rejected.
func NewRequest(args Arguments) (Request, error) {
	if strings.TrimSpace(args.FilePath) == "" {
		return Request{}, reject(ErrMissingFilePath)
	}
	if strings.TrimSpace(args.Comment) == "" {
		return Request{}, reject(ErrMissingComment)
	}

	req := Request{filePath: args.FilePath, comment: args.Comment}

	if args.StartLine != nil {
		if *args.StartLine < 1 {
			return Request{}, reject(fmt.Errorf("%w: startLine is %d", ErrInvalidLine, *args.StartLine))
		}
		req.startLine = *args.StartLine
	}
	if args.EndLine != nil {
		if *args.EndLine < 1 {
			return Request{}, reject(fmt.Errorf("%w: endLine is %d", ErrInvalidLine, *args.EndLine))
		}
		req.endLine = *args.EndLine
	}

	if req.startLine > 0 && req.endLine > 0 && req.startLine > req.endLine {
		return Request{}, reject(fmt.Errorf("%w: %d > %d", ErrInvertedRange, req.startLine, req.endLine))
	}

	return req, nil
}

// ParseRequest decodes raw tool arguments and validates them.
func ParseRequest(raw json.RawMessage) (Request, error) {
	args, err := ParseArguments(raw)
	if err != nil {
		return Request{}, err
	}
	return NewRequest(args)
}

// ParseArguments decodes raw JSON tool arguments. Line numbers must be JSON
// numbers; integral floats (10.0) are accepted, strings and other
// non-integers are rejected.
func ParseArguments(raw json.RawMessage) (Arguments, error) {
	var wire struct {
		FilePath  *string         `json:"filePath"`
		Comment   *string         `json:"comment"`
		StartLine json.RawMessage `json:"startLine"`
		EndLine   json.RawMessage `json:"endLine"`
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&wire); err != nil {
		return Arguments{}, reject(fmt.Errorf("decoding arguments: %v", err))
	}

	var args Arguments
	if wire.FilePath != nil {
		args.FilePath = *wire.FilePath
	}
	if wire.Comment != nil {
		args.Comment = *wire.Comment
	}

	var err error
	if args.StartLine, err = lineNumber("startLine", wire.StartLine); err != nil {
		return Arguments{}, err
	}
	if args.EndLine, err = lineNumber("endLine", wire.EndLine); err != nil {
		return Arguments{}, err
	}
	return args, nil
}

func lineNumber(field string, raw json.RawMessage) (*int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, reject(fmt.Errorf("%w: %s: %v", ErrInvalidLine, field, err))
	}
	n, ok := v.(json.Number)
	if !ok {
		return nil, reject(fmt.Errorf("%w: %s must be a number, got %s", ErrInvalidLine, field, raw))
	}

	if i, err := n.Int64(); err == nil {
		return intPtr(i, field)
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		return nil, reject(fmt.Errorf("%w: %s is %s", ErrInvalidLine, field, n.String()))
	}
	return intPtr(int64(f), field)
}

func intPtr(i int64, field string) (*int, error) {
	if i > math.MaxInt32 || i < math.MinInt32 {
		return nil, reject(fmt.Errorf("%w: %s is out of range", ErrInvalidLine, field))
	}
	v := int(i)
	return &v, nil
}

func reject(err error) error {
	return fmt.Errorf("%w: %w", tools.ErrInvalidArguments, err)
}
