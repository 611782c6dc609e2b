package suggestion

import "fmt"

// OutcomeKind tags the variant of an Outcome.
type OutcomeKind int

const (
	Posted OutcomeKind = iota + 1
	PostedWithoutReference
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Posted:
		return "posted"
	case PostedWithoutReference:
		return "posted_without_reference"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of one dispatch. Reference is set only for Posted;
// FilePath and Message only for Failed.
type Outcome struct {
	Kind      OutcomeKind
	Reference string
	FilePath  string
	Message   string
}

// String renders the outcome as the text returned to the agent.
func (o Outcome) String() string {
	switch o.Kind {
	case Posted:
		return "Suggestion posted successfully: " + o.Reference
	case PostedWithoutReference:
		return "Suggestion posted, but no URL returned."
	default:
		return fmt.Sprintf("Error posting suggestion for %s: %s", o.FilePath, o.Message)
	}
}

// IsError reports whether the outcome is a failure.
func (o Outcome) IsError() bool {
	return o.Kind == Failed
}

func outcomeFor(filePath, reference string, err error) Outcome {
	switch {
	case err != nil:
		return Outcome{Kind: Failed, FilePath: filePath, Message: err.Error()}
	case reference == "":
		return Outcome{Kind: PostedWithoutReference}
	default:
		return Outcome{Kind: Posted, Reference: reference}
	}
}
