// Package eventfmt reads and writes events in the one-event-per-line
// notation used by the yaml-test-suite ("+STR", "=VAL :text", "=ALI *a", ...).
package eventfmt

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/willabides/yamlstream/internal/yamlh"
)

// Line returns the notation for event without a trailing newline.
func Line(event *yamlh.Event) string {
	var b strings.Builder
	switch event.Type {
	case yamlh.STREAM_START_EVENT:
		b.WriteString("+STR")
	case yamlh.STREAM_END_EVENT:
		b.WriteString("-STR")
	case yamlh.DOCUMENT_START_EVENT:
		b.WriteString("+DOC")
		if !event.Implicit {
			b.WriteString(" ---")
		}
	case yamlh.DOCUMENT_END_EVENT:
		b.WriteString("-DOC")
		if !event.Implicit {
			b.WriteString(" ...")
		}
	case yamlh.MAPPING_START_EVENT:
		b.WriteString("+MAP")
		writeProperties(&b, event)
	case yamlh.MAPPING_END_EVENT:
		b.WriteString("-MAP")
	case yamlh.SEQUENCE_START_EVENT:
		b.WriteString("+SEQ")
		writeProperties(&b, event)
	case yamlh.SEQUENCE_END_EVENT:
		b.WriteString("-SEQ")
	case yamlh.SCALAR_EVENT:
		b.WriteString("=VAL")
		writeProperties(&b, event)
		b.WriteByte(' ')
		b.WriteByte(styleIndicator(event.Scalar_style()))
		writeEscaped(&b, event.Value)
	case yamlh.ALIAS_EVENT:
		b.WriteString("=ALI *")
		b.Write(event.Anchor)
	default:
		b.WriteString("???")
	}
	return b.String()
}

func writeProperties(b *strings.Builder, event *yamlh.Event) {
	if len(event.Anchor) > 0 {
		b.WriteString(" &")
		b.Write(event.Anchor)
	}
	if len(event.Tag) > 0 {
		b.WriteString(" <")
		b.Write(event.Tag)
		b.WriteByte('>')
	}
}

func styleIndicator(style yamlh.YamlScalarStyle) byte {
	switch style {
	case yamlh.SINGLE_QUOTED_SCALAR_STYLE:
		return '\''
	case yamlh.DOUBLE_QUOTED_SCALAR_STYLE:
		return '"'
	case yamlh.LITERAL_SCALAR_STYLE:
		return '|'
	case yamlh.FOLDED_SCALAR_STYLE:
		return '>'
	}
	return ':'
}

func writeEscaped(b *strings.Builder, value []byte) {
	for _, c := range value {
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case 0:
			b.WriteString(`\0`)
		case '\b':
			b.WriteString(`\b`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
}

// Writer writes one line per event.
type Writer struct {
	w io.Writer

	// Decorate, when set, rewrites each line before it is written.
	Decorate func(event *yamlh.Event, line string) string
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Write(event *yamlh.Event) error {
	line := Line(event)
	if w.Decorate != nil {
		line = w.Decorate(event, line)
	}
	_, err := io.WriteString(w.w, line+"\n")
	return errors.Wrap(err, "write event")
}

// ParseLine parses one line of event notation. Flow collections may be
// marked with "{}" or "[]" after "+MAP" and "+SEQ".
func ParseLine(line string) (*yamlh.Event, error) {
	line = strings.TrimRight(line, "\r")
	if len(line) < 4 {
		return nil, errors.Errorf("unknown event %q", line)
	}
	head, rest := line[:4], strings.TrimPrefix(line[4:], " ")
	switch head {
	case "+STR":
		return &yamlh.Event{Type: yamlh.STREAM_START_EVENT, Encoding: yamlh.UTF8_ENCODING}, nil
	case "-STR":
		return &yamlh.Event{Type: yamlh.STREAM_END_EVENT}, nil
	case "+DOC":
		return &yamlh.Event{Type: yamlh.DOCUMENT_START_EVENT, Implicit: !strings.HasPrefix(rest, "---")}, nil
	case "-DOC":
		return &yamlh.Event{Type: yamlh.DOCUMENT_END_EVENT, Implicit: !strings.HasPrefix(rest, "...")}, nil
	case "-MAP":
		return &yamlh.Event{Type: yamlh.MAPPING_END_EVENT}, nil
	case "-SEQ":
		return &yamlh.Event{Type: yamlh.SEQUENCE_END_EVENT}, nil
	case "=ALI":
		if !strings.HasPrefix(rest, "*") || len(rest) == 1 {
			return nil, errors.Errorf("alias without anchor: %q", line)
		}
		return &yamlh.Event{Type: yamlh.ALIAS_EVENT, Anchor: []byte(rest[1:])}, nil
	case "+MAP", "+SEQ":
		event := &yamlh.Event{Type: yamlh.MAPPING_START_EVENT, Style: yamlh.YamlStyle(yamlh.BLOCK_MAPPING_STYLE)}
		flow := "{}"
		if head == "+SEQ" {
			event.Type = yamlh.SEQUENCE_START_EVENT
			event.Style = yamlh.YamlStyle(yamlh.BLOCK_SEQUENCE_STYLE)
			flow = "[]"
		}
		if strings.HasPrefix(rest, flow) {
			event.Style = yamlh.YamlStyle(yamlh.FLOW_MAPPING_STYLE)
			if head == "+SEQ" {
				event.Style = yamlh.YamlStyle(yamlh.FLOW_SEQUENCE_STYLE)
			}
			rest = strings.TrimPrefix(rest[2:], " ")
		}
		var err error
		rest, err = parseProperties(event, rest)
		if err != nil {
			return nil, errors.Wrapf(err, "%q", line)
		}
		if rest != "" {
			return nil, errors.Errorf("unexpected %q after collection start", rest)
		}
		event.Implicit = len(event.Tag) == 0
		return event, nil
	case "=VAL":
		event := &yamlh.Event{Type: yamlh.SCALAR_EVENT}
		rest, err := parseProperties(event, rest)
		if err != nil {
			return nil, errors.Wrapf(err, "%q", line)
		}
		if rest == "" {
			return nil, errors.Errorf("scalar without value: %q", line)
		}
		switch rest[0] {
		case ':':
			event.Style = yamlh.YamlStyle(yamlh.PLAIN_SCALAR_STYLE)
		case '\'':
			event.Style = yamlh.YamlStyle(yamlh.SINGLE_QUOTED_SCALAR_STYLE)
		case '"':
			event.Style = yamlh.YamlStyle(yamlh.DOUBLE_QUOTED_SCALAR_STYLE)
		case '|':
			event.Style = yamlh.YamlStyle(yamlh.LITERAL_SCALAR_STYLE)
		case '>':
			event.Style = yamlh.YamlStyle(yamlh.FOLDED_SCALAR_STYLE)
		default:
			return nil, errors.Errorf("unknown scalar style %q", rest[0])
		}
		event.Value, err = unescape(rest[1:])
		if err != nil {
			return nil, errors.Wrapf(err, "%q", line)
		}
		event.Implicit = len(event.Tag) == 0
		event.Quoted_implicit = len(event.Tag) == 0
		return event, nil
	}
	return nil, errors.Errorf("unknown event %q", line)
}

// parseProperties consumes an optional "&anchor" and an optional "<tag>".
func parseProperties(event *yamlh.Event, rest string) (string, error) {
	if strings.HasPrefix(rest, "&") {
		end := strings.IndexByte(rest, ' ')
		if end < 0 {
			end = len(rest)
		}
		if end == 1 {
			return "", errors.New("empty anchor")
		}
		event.Anchor = []byte(rest[1:end])
		rest = strings.TrimPrefix(rest[end:], " ")
	}
	if strings.HasPrefix(rest, "<") {
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return "", errors.New("unterminated tag")
		}
		event.Tag = []byte(rest[1:end])
		rest = strings.TrimPrefix(rest[end+1:], " ")
	}
	return rest, nil
}

func unescape(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			out = append(out, s[i])
			continue
		}
		i++
		if i == len(s) {
			return nil, errors.New("trailing backslash")
		}
		switch s[i] {
		case '\\':
			out = append(out, '\\')
		case '0':
			out = append(out, 0)
		case 'b':
			out = append(out, '\b')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		default:
			return nil, errors.Errorf("unknown escape \\%c", s[i])
		}
	}
	return out, nil
}

// Reader parses event notation one line at a time. Blank lines are
// skipped.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// MaxLineSize is the longest line a Reader accepts. A scalar's whole
// escaped value sits on one "=VAL" line.
const MaxLineSize = 64 << 20

func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &Reader{scanner: scanner}
}

// Parse returns the next event, or io.EOF once the input is exhausted.
func (r *Reader) Parse() (*yamlh.Event, error) {
	for r.scanner.Scan() {
		r.line++
		text := r.scanner.Bytes()
		if len(bytes.TrimSpace(text)) == 0 {
			continue
		}
		event, err := ParseLine(string(text))
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", r.line)
		}
		return event, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read events")
	}
	return nil, io.EOF
}
