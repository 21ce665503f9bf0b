package parserc

import (
	"io"

	"github.com/willabides/yamlstream/internal/growable"
	"github.com/willabides/yamlstream/internal/yamlh"
)

// ParserState The states of the parser.
type ParserState int

const (
	PARSE_STREAM_START_STATE ParserState = iota

	PARSE_IMPLICIT_DOCUMENT_START_STATE           // expect the beginning of an implicit document.
	PARSE_DOCUMENT_START_STATE                    // expect DOCUMENT-START.
	PARSE_DOCUMENT_CONTENT_STATE                  // expect the content of a document.
	PARSE_DOCUMENT_END_STATE                      // expect DOCUMENT-END.
	PARSE_BLOCK_NODE_STATE                        // expect a block node.
	PARSE_BLOCK_NODE_OR_INDENTLESS_SEQUENCE_STATE // expect a block node or indentless sequence.
	PARSE_FLOW_NODE_STATE                         // expect a flow node.
	PARSE_BLOCK_SEQUENCE_FIRST_ENTRY_STATE        // expect the first entry of a block sequence.
	PARSE_BLOCK_SEQUENCE_ENTRY_STATE              // expect an entry of a block sequence.
	PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE         // expect an entry of an indentless sequence.
	PARSE_BLOCK_MAPPING_FIRST_KEY_STATE           // expect the first key of a block mapping.
	PARSE_BLOCK_MAPPING_KEY_STATE                 // expect a block mapping key.
	PARSE_BLOCK_MAPPING_VALUE_STATE               // expect a block mapping value.
	PARSE_FLOW_SEQUENCE_FIRST_ENTRY_STATE         // expect the first entry of a flow sequence.
	PARSE_FLOW_SEQUENCE_ENTRY_STATE               // expect an entry of a flow sequence.
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_KEY_STATE   // expect a key of an ordered mapping.
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE // expect a value of an ordered mapping.
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE   // expect the and of an ordered mapping entry.
	PARSE_FLOW_MAPPING_FIRST_KEY_STATE            // expect the first key of a flow mapping.
	PARSE_FLOW_MAPPING_KEY_STATE                  // expect a key of a flow mapping.
	PARSE_FLOW_MAPPING_VALUE_STATE                // expect a value of a flow mapping.
	PARSE_FLOW_MAPPING_EMPTY_VALUE_STATE          // expect an empty value of a flow mapping.
	PARSE_END_STATE                               // expect nothing.
)

var parserStateStrings = []string{
	PARSE_STREAM_START_STATE:                      "PARSE_STREAM_START_STATE",
	PARSE_IMPLICIT_DOCUMENT_START_STATE:           "PARSE_IMPLICIT_DOCUMENT_START_STATE",
	PARSE_DOCUMENT_START_STATE:                    "PARSE_DOCUMENT_START_STATE",
	PARSE_DOCUMENT_CONTENT_STATE:                  "PARSE_DOCUMENT_CONTENT_STATE",
	PARSE_DOCUMENT_END_STATE:                      "PARSE_DOCUMENT_END_STATE",
	PARSE_BLOCK_NODE_STATE:                        "PARSE_BLOCK_NODE_STATE",
	PARSE_BLOCK_NODE_OR_INDENTLESS_SEQUENCE_STATE: "PARSE_BLOCK_NODE_OR_INDENTLESS_SEQUENCE_STATE",
	PARSE_FLOW_NODE_STATE:                         "PARSE_FLOW_NODE_STATE",
	PARSE_BLOCK_SEQUENCE_FIRST_ENTRY_STATE:        "PARSE_BLOCK_SEQUENCE_FIRST_ENTRY_STATE",
	PARSE_BLOCK_SEQUENCE_ENTRY_STATE:              "PARSE_BLOCK_SEQUENCE_ENTRY_STATE",
	PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE:         "PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE",
	PARSE_BLOCK_MAPPING_FIRST_KEY_STATE:           "PARSE_BLOCK_MAPPING_FIRST_KEY_STATE",
	PARSE_BLOCK_MAPPING_KEY_STATE:                 "PARSE_BLOCK_MAPPING_KEY_STATE",
	PARSE_BLOCK_MAPPING_VALUE_STATE:               "PARSE_BLOCK_MAPPING_VALUE_STATE",
	PARSE_FLOW_SEQUENCE_FIRST_ENTRY_STATE:         "PARSE_FLOW_SEQUENCE_FIRST_ENTRY_STATE",
	PARSE_FLOW_SEQUENCE_ENTRY_STATE:               "PARSE_FLOW_SEQUENCE_ENTRY_STATE",
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_KEY_STATE:   "PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_KEY_STATE",
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE: "PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE",
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE:   "PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE",
	PARSE_FLOW_MAPPING_FIRST_KEY_STATE:            "PARSE_FLOW_MAPPING_FIRST_KEY_STATE",
	PARSE_FLOW_MAPPING_KEY_STATE:                  "PARSE_FLOW_MAPPING_KEY_STATE",
	PARSE_FLOW_MAPPING_VALUE_STATE:                "PARSE_FLOW_MAPPING_VALUE_STATE",
	PARSE_FLOW_MAPPING_EMPTY_VALUE_STATE:          "PARSE_FLOW_MAPPING_EMPTY_VALUE_STATE",
	PARSE_END_STATE:                               "PARSE_END_STATE",
}

func (ps ParserState) String() string {
	if ps < 0 || int(ps) >= len(parserStateStrings) {
		return "<unknown parser state>"
	}
	return parserStateStrings[ps]
}

// Parser turns a byte stream into tokens (Scan) or events (Parse). The two
// entry points share the token queue and must not be mixed on one Parser.
//
// A Parser is not safe for concurrent use. After the first error every
// further call returns that same error.
type Parser struct {
	// Reader stuff

	read_handler func(p *Parser, buf []byte) (int, error)
	reader       io.Reader // File input data.
	input        []byte    // String input data.
	input_pos    int

	eof bool // EOF flag

	buffer     []byte // The working buffer.
	buffer_pos int    // The current position of the buffer.

	unread int // The number of unread characters in the buffer.

	raw_buffer     []byte // The raw buffer.
	raw_buffer_pos int    // The current position of the buffer.

	encoding yamlh.Encoding // The input encoding.

	offset int        // The offset of the current position (in bytes).
	mark   yamlh.Mark // The mark of the current position.

	line_break yamlh.Break // The first line break seen in the input.

	// Scanner stuff

	stream_start_produced bool // Have we started to scan the input stream?
	stream_end_produced   bool // Have we reached the end of the input stream?

	flow_level int // The number of unclosed '[' and '{' indicators.

	tokens          growable.Queue[yamlh.YamlToken] // The tokens queue.
	tokens_parsed   int                             // The number of tokens fetched from the queue.
	token_available bool                            // Does the tokens queue contain a token ready for dequeueing.

	indent  int                 // The current indentation level.
	indents growable.Stack[int] // The indentation levels stack.

	simple_key_allowed bool                            // May a simple key occur at the current position?
	simple_keys        growable.Stack[yamlh.SimpleKey] // The stack of simple keys.
	simple_keys_by_tok map[int]int                     // possible simple_key indexes indexed by token_number

	// Parser stuff

	state          ParserState                 // The current parser state.
	states         growable.Stack[ParserState] // The parser states stack.
	marks          growable.Stack[yamlh.Mark]  // The stack of marks.
	tag_directives []yamlh.TagDirective        // The list of TAG directives.

	err error // The first error reported.
}

func newParser() *Parser {
	return &Parser{
		raw_buffer:         make([]byte, 0, yamlh.InputRawBufferSize),
		buffer:             make([]byte, 0, yamlh.InputBufferSize),
		simple_keys_by_tok: map[int]int{},
	}
}

// New returns a parser that pulls its input from r.
func New(r io.Reader) *Parser {
	p := newParser()
	p.reader = r
	p.read_handler = readerReadHandler
	return p
}

// NewBytes returns a parser over a fixed in-memory buffer.
func NewBytes(input []byte) *Parser {
	p := newParser()
	p.input = input
	p.read_handler = stringReadHandler
	return p
}

func stringReadHandler(p *Parser, buf []byte) (int, error) {
	if p.input_pos == len(p.input) {
		return 0, io.EOF
	}
	n := copy(buf, p.input[p.input_pos:])
	p.input_pos += n
	return n, nil
}

func readerReadHandler(p *Parser, buf []byte) (int, error) {
	return p.reader.Read(buf)
}

// SetEncoding declares the input encoding instead of detecting it from the
// first bytes. It must be called before the first token is scanned.
func (p *Parser) SetEncoding(encoding yamlh.Encoding) error {
	if !encoding.Valid() {
		return yamlh.NewError(yamlh.READER_ERROR, "unknown encoding "+encoding.String(), yamlh.Mark{})
	}
	if p.encoding != yamlh.ANY_ENCODING || p.stream_start_produced {
		return yamlh.NewError(yamlh.READER_ERROR, "encoding must be set before reading", yamlh.Mark{})
	}
	p.encoding = encoding
	return nil
}

// Encoding returns the input encoding. It is ANY_ENCODING until the first
// bytes have been read.
func (p *Parser) Encoding() yamlh.Encoding {
	return p.encoding
}

// LineBreak returns the kind of the first line break found in the input,
// or ANY_BREAK if none was seen yet.
func (p *Parser) LineBreak() yamlh.Break {
	return p.line_break
}

// Mark returns the current reading position.
func (p *Parser) Mark() yamlh.Mark {
	return p.mark
}

// Err returns the first error reported by this parser, if any.
func (p *Parser) Err() error {
	return p.err
}

func (p *Parser) fail(err error) error {
	if p.err == nil {
		p.err = err
	}
	return err
}
