package yamlh

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorType int

// Many bad things could happen with the parser and emitter.
const (
	// No error is produced.
	NO_ERROR ErrorType = iota

	MEMORY_ERROR   // Cannot allocate or reallocate a block of memory.
	READER_ERROR   // Cannot read or decode the input stream.
	SCANNER_ERROR  // Cannot scan the input stream.
	PARSER_ERROR   // Cannot parse the input stream.
	COMPOSER_ERROR // Cannot compose a YAML document.
	WRITER_ERROR   // Cannot write to the output stream.
	EMITTER_ERROR  // Cannot emit a YAML stream.
)

var errorTypeStrings = []string{
	NO_ERROR:       "no error",
	MEMORY_ERROR:   "memory error",
	READER_ERROR:   "reader error",
	SCANNER_ERROR:  "scanner error",
	PARSER_ERROR:   "parser error",
	COMPOSER_ERROR: "composer error",
	WRITER_ERROR:   "writer error",
	EMITTER_ERROR:  "emitter error",
}

func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(errorTypeStrings) {
		return fmt.Sprintf("unknown error %d", int(t))
	}
	return errorTypeStrings[t]
}

// Error is the error record every stage reports. Marks are only
// meaningful for the reader, scanner, parser and composer; the emitter and
// writer report the marks of the offending events when they have them.
type Error struct {
	Kind ErrorType

	Problem      string
	Problem_mark Mark

	// Context describes the construct being processed when the problem
	// was found, e.g. "while parsing a block mapping".
	Context      string
	Context_mark Mark

	// Problem_value is the offending byte or code point, or -1.
	Problem_value int

	// Problem_offset is the byte offset of Problem_value in the raw input
	// (for READER_ERROR).
	Problem_offset int

	// Err is the underlying I/O failure, if any.
	Err error
}

// NewError returns an error record of the given kind with no context and no
// problematic value.
func NewError(kind ErrorType, problem string, mark Mark) *Error {
	return &Error{
		Kind:          kind,
		Problem:       problem,
		Problem_mark:  mark,
		Problem_value: -1,
	}
}

// NewContextError returns an error record carrying both the problem and the
// context in which it was found.
func NewContextError(kind ErrorType, context string, contextMark Mark, problem string, problemMark Mark) *Error {
	return &Error{
		Kind:          kind,
		Context:       context,
		Context_mark:  contextMark,
		Problem:       problem,
		Problem_mark:  problemMark,
		Problem_value: -1,
	}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("yaml: ")
	switch e.Kind {
	case READER_ERROR:
		b.WriteString(e.Problem)
		if e.Problem_value != -1 {
			fmt.Fprintf(&b, ": #%X at offset %d", e.Problem_value, e.Problem_offset)
		}
		if e.Err != nil {
			fmt.Fprintf(&b, ": %v", e.Err)
		}
		return b.String()
	case MEMORY_ERROR, WRITER_ERROR:
		b.WriteString(e.Problem)
		if e.Err != nil {
			fmt.Fprintf(&b, ": %v", e.Err)
		}
		return b.String()
	}
	fmt.Fprintf(&b, "%s: %s", e.Problem_mark, e.Problem)
	if e.Context != "" {
		fmt.Fprintf(&b, " (%s at %s)", e.Context, e.Context_mark)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorKind returns the kind of the first *Error in err's chain, or NO_ERROR
// when there is none.
func ErrorKind(err error) ErrorType {
	var yerr *Error
	if errors.As(err, &yerr) {
		return yerr.Kind
	}
	return NO_ERROR
}
