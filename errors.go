package idxcodec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/idxcodec/i18n"
	eng "github.com/reoring/idxcodec/internal/engine"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Schema build
	CodeDuplicateIndex       = "duplicate_index"
	CodeMissingIndex         = "missing_index"
	CodeConflictingDirective = "conflicting_directive"
	CodeInvalidCodec         = "invalid_codec"
	CodeInvalidSchema        = "invalid_schema"
	// Decode
	CodeRequired     = eng.CodeRequired
	CodeDuplicateKey = eng.CodeDuplicateKey
	CodeUnknownKey   = eng.CodeUnknownKey
	CodeInvalidType  = eng.CodeInvalidType
	CodeDecodeError  = eng.CodeDecodeError
	// Encode
	CodeEncodeError = eng.CodeEncodeError
	// Wire level
	CodeParseError = "parse_error"
)

// Issue represents a single schema or codec failure.
type Issue struct {
	Path    string // Field label, or the offending wire key for unknown keys.
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: the directive conflict or remediation.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"index": 3}) for i18n and
	// observability.
	Params map[string]any
}

// Issues is a collection of failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. duplicate_index at number: index 1 already assigned to count
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Hint != "" {
			fmt.Fprintf(b, ": %s", it.Hint)
		}
		if it.Cause != nil {
			fmt.Fprintf(b, ": %v", it.Cause)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the underlying causes to errors.Is and errors.As.
func (iss Issues) Unwrap() []error {
	var errs []error
	for _, it := range iss {
		if it.Cause != nil {
			errs = append(errs, it.Cause)
		}
	}
	return errs
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether err carries an Issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// schemaIssue builds a schema-build failure for a field.
func schemaIssue(code, label, hint string, params map[string]any) Issues {
	return AppendIssues(nil, Issue{Path: label, Code: code, Message: i18n.T(code, nil), Hint: hint, Params: params})
}

// toIssues converts engine failures into Issues. Errors that did not
// originate in the engine (reader and writer failures) are returned as is.
func toIssues(err error) error {
	if err == nil {
		return nil
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return AppendIssues(nil, Issue{
			Path:    ie.Path,
			Code:    ie.Code,
			Message: i18n.T(ie.Code, nil),
			Hint:    ie.Message,
			Cause:   ie.Cause,
		})
	}
	return err
}
