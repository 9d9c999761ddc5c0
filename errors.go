package hashschema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/hashschema/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeNotAMap              = "not_a_map"
	CodeRequired             = "required"
	CodeExpectedCollection   = "expected_collection"
	CodeExpectedMap          = "expected_map"
	CodeUnexpectedCollection = "unexpected_collection"
	CodeCoercion             = "coercion"
	CodeValidation           = "validation"
	CodeDuplicateKey         = "duplicate_key"
	CodeUnhashable           = "unhashable"
)

// Sentinels matched by errors.Is against a *DecodeError of the same code.
var (
	ErrNotAMap              = errors.New("hashschema: not a map")
	ErrMissingRequired      = errors.New("hashschema: missing required members")
	ErrExpectedCollection   = errors.New("hashschema: expected a collection")
	ErrExpectedMap          = errors.New("hashschema: expected a map")
	ErrUnexpectedCollection = errors.New("hashschema: unexpected collection")
	ErrCoercion             = errors.New("hashschema: coercion failed")
	ErrValidation           = errors.New("hashschema: validation failed")
	ErrDuplicateKey         = errors.New("hashschema: duplicate key after normalization")
	ErrUnhashable           = errors.New("hashschema: set element is not hashable")
)

var sentinelByCode = map[string]error{
	CodeNotAMap:              ErrNotAMap,
	CodeRequired:             ErrMissingRequired,
	CodeExpectedCollection:   ErrExpectedCollection,
	CodeExpectedMap:          ErrExpectedMap,
	CodeUnexpectedCollection: ErrUnexpectedCollection,
	CodeCoercion:             ErrCoercion,
	CodeValidation:           ErrValidation,
	CodeDuplicateKey:         ErrDuplicateKey,
	CodeUnhashable:           ErrUnhashable,
}

// DecodeError is the single failure returned by a decode call. Decoding stops
// at the first failing member; nested failures carry the full pointer.
type DecodeError struct {
	Code     string   // One of the Code* constants.
	Path     string   // JSON Pointer of the offending value ("/" for the instance itself).
	Member   string   // Member name, empty for instance-level failures.
	Missing  []string // CodeRequired: names in declaration order.
	Messages []string // CodeValidation: messages from one hook invocation.
	Got      string   // Go type of the offending raw value, when relevant.
	Err      error    // Underlying cause (e.g. *CoercionError).
}

func (e *DecodeError) Error() string {
	b := &strings.Builder{}
	b.WriteString("hashschema: ")
	switch e.Code {
	case CodeRequired:
		fmt.Fprintf(b, "%s: %s", i18n.T(e.Code, nil), strings.Join(e.Missing, ", "))
		return b.String()
	case CodeNotAMap:
		fmt.Fprintf(b, "%s, got %s", i18n.T(e.Code, nil), e.Got)
		return b.String()
	}
	fmt.Fprintf(b, "member %q at %s: ", e.Member, e.Path)
	switch e.Code {
	case CodeValidation:
		fmt.Fprintf(b, "%s: %s", i18n.T(e.Code, nil), strings.Join(e.Messages, "; "))
	case CodeCoercion:
		if e.Err != nil {
			b.WriteString(e.Err.Error())
		} else {
			b.WriteString(i18n.T(e.Code, nil))
		}
	default:
		b.WriteString(i18n.T(e.Code, map[string]string{"got": e.Got}))
		if e.Got != "" {
			fmt.Fprintf(b, ", got %s", e.Got)
		}
	}
	return b.String()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Code.
func (e *DecodeError) Is(target error) bool {
	s, ok := sentinelByCode[e.Code]
	return ok && s == target
}

// Issues projects the error into the Issue reporting model: one issue per
// missing member or validation message.
func (e *DecodeError) Issues() Issues {
	switch e.Code {
	case CodeRequired:
		var out Issues
		for _, n := range e.Missing {
			out = AppendIssues(out, At(e.Path).Field(n).Issue(CodeRequired, i18n.T(CodeRequired, nil)))
		}
		return out
	case CodeValidation:
		var out Issues
		for _, m := range e.Messages {
			out = AppendIssues(out, Issue{Path: e.Path, Code: CodeValidation, Message: m, Rule: e.Member})
		}
		return out
	}
	msg := i18n.T(e.Code, nil)
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return Issues{{Path: e.Path, Code: e.Code, Message: msg, Cause: e.Err, Hint: e.Got}}
}

// SchemaDefinitionError reports an invalid member declaration. It is returned
// at registration time, before any instance exists.
type SchemaDefinitionError struct {
	Type   string
	Member string
	Reason string
}

func (e *SchemaDefinitionError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("hashschema: invalid schema for %s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("hashschema: invalid member %q on %s: %s", e.Member, e.Type, e.Reason)
}

// CoercionError reports a raw value that a primitive cannot decode.
type CoercionError struct {
	Primitive Primitive
	Value     any
	Msg       string
}

func (e *CoercionError) Error() string { return e.Msg }

// Issue represents a single reportable entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /chuck/2/ernie).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: Go type of the offending value, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters for i18n and observability.
	Params map[string]any
	// Rule optionally records the member whose hook produced this issue.
	Rule string
}

// Issues is a collection of issues that implements error.
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
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
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

// AsIssues extracts Issues from an error. A *DecodeError is projected with
// its Issues method.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Issues(), true
	}
	return nil, false
}
