package suggestion

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func intp(i int) *int { return &i }

func TestNewRequest(t *testing.T) {
	tests := []struct {
		name      string
		args      Arguments
		wantStart int
		wantEnd   int
		wantErr   bool
	}{
		{name: "file level", args: Arguments{FilePath: "a.go", Comment: "c"}},
		{name: "single line", args: Arguments{FilePath: "a.go", Comment: "c", StartLine: intp(3)}, wantStart: 3},
		{name: "end only", args: Arguments{FilePath: "a.go", Comment: "c", EndLine: intp(7)}, wantEnd: 7},
		{name: "range", args: Arguments{FilePath: "a.go", Comment: "c", StartLine: intp(10), EndLine: intp(12)}, wantStart: 10, wantEnd: 12},
		{name: "equal bounds", args: Arguments{FilePath: "a.go", Comment: "c", StartLine: intp(5), EndLine: intp(5)}, wantStart: 5, wantEnd: 5},
		{name: "inverted", args: Arguments{FilePath: "a.go", Comment: "c", StartLine: intp(12), EndLine: intp(10)}, wantErr: true},
		{name: "zero line", args: Arguments{FilePath: "a.go", Comment: "c", StartLine: intp(0)}, wantErr: true},
		{name: "no comment", args: Arguments{FilePath: "a.go"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewRequest() = %+v, want error", req)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRequest() unexpected error: %v", err)
			}
			if req.StartLine() != tt.wantStart || req.EndLine() != tt.wantEnd {
				t.Errorf("lines = (%d, %d), want (%d, %d)", req.StartLine(), req.EndLine(), tt.wantStart, tt.wantEnd)
			}
			if req.FilePath() != tt.args.FilePath || req.Comment() != tt.args.Comment {
				t.Errorf("fields not copied: %+v", req)
			}
		})
	}
}

func TestParseArguments(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Arguments
		wantErr bool
	}{
		{
			name: "all fields",
			raw:  `{"filePath":"a.go","comment":"c","startLine":1,"endLine":2}`,
			want: Arguments{FilePath: "a.go", Comment: "c", StartLine: intp(1), EndLine: intp(2)},
		},
		{
			name: "integral float",
			raw:  `{"filePath":"a.go","comment":"c","startLine":10.0}`,
			want: Arguments{FilePath: "a.go", Comment: "c", StartLine: intp(10)},
		},
		{
			name: "unknown fields ignored",
			raw:  `{"filePath":"a.go","comment":"c","extra":true}`,
			want: Arguments{FilePath: "a.go", Comment: "c"},
		},
		{
			name: "null line treated as absent",
			raw:  `{"filePath":"a.go","comment":"c","startLine":null}`,
			want: Arguments{FilePath: "a.go", Comment: "c"},
		},
		{name: "string line", raw: `{"filePath":"a.go","comment":"c","startLine":"10"}`, wantErr: true},
		{name: "padded string line", raw: `{"filePath":"a.go","comment":"c","endLine": "12"}`, wantErr: true},
		{name: "boolean line", raw: `{"filePath":"a.go","comment":"c","startLine":true}`, wantErr: true},
		{name: "array line", raw: `{"filePath":"a.go","comment":"c","endLine":[3]}`, wantErr: true},
		{name: "huge line", raw: `{"filePath":"a.go","comment":"c","endLine":1e12}`, wantErr: true},
		{name: "empty", raw: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArguments(json.RawMessage(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseArguments() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseArguments() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseArguments() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildPayload(t *testing.T) {
	req, err := NewRequest(Arguments{FilePath: "src/a.ts", Comment: "fix it", StartLine: intp(10), EndLine: intp(12)})
	if err != nil {
		t.Fatal(err)
	}

	got := BuildPayload(req)
	want := Payload{
		FilePath:  "src/a.ts",
		Body:      "### Suggestion for `src/a.ts`\n\nfix it\n",
		StartLine: 10,
		EndLine:   12,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildPayload() mismatch (-want +got):\n%s", diff)
	}

	for i := 0; i < 3; i++ {
		if again := BuildPayload(req); again.Body != got.Body {
			t.Fatalf("BuildPayload() body changed between calls: %q vs %q", again.Body, got.Body)
		}
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{Outcome{Kind: Posted, Reference: "u"}, "Suggestion posted successfully: u"},
		{Outcome{Kind: PostedWithoutReference}, "Suggestion posted, but no URL returned."},
		{Outcome{Kind: Failed, FilePath: "f", Message: "m"}, "Error posting suggestion for f: m"},
	}
	for _, tt := range tests {
		t.Run(tt.outcome.Kind.String(), func(t *testing.T) {
			if got := tt.outcome.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
