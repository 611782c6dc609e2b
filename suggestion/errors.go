package suggestion

import "errors"

// Rejection reasons. NewRequest and ParseArguments wrap these together with
// tools.ErrInvalidArguments.
var (
	ErrMissingFilePath = errors.New("filePath is required")
	ErrMissingComment  = errors.New("comment is required")
	ErrInvalidLine     = errors.New("line numbers must be integers >= 1")
	ErrInvertedRange   = errors.New("startLine must not be greater than endLine")
)

// ErrUnvalidatedRequest is the failure reported by Tool.Suggest for a Request
// that did not come from NewRequest.
var ErrUnvalidatedRequest = errors.New("request was not validated")
