// Package yamlstream is a streaming YAML 1.1 processor.
//
// Text flows through four stages: a Parser scans and parses it into Events,
// a Composer builds a Document out of those events, and an Emitter writes
// events back out as text. A Dumper walks a Document and feeds the emitter.
// Each stage can be used on its own.
//
// Nothing in this package is safe for concurrent use. The first error a
// stage reports is sticky: every later call returns it again.
package yamlstream

import (
	"io"

	"github.com/willabides/yamlstream/internal/composer"
	"github.com/willabides/yamlstream/internal/document"
	"github.com/willabides/yamlstream/internal/emitter"
	"github.com/willabides/yamlstream/internal/parserc"
	"github.com/willabides/yamlstream/internal/yamlh"
)

type (
	Mark             = yamlh.Mark
	Event            = yamlh.Event
	EventType        = yamlh.EventType
	Token            = yamlh.YamlToken
	TokenType        = yamlh.TokenType
	Encoding         = yamlh.Encoding
	Break            = yamlh.Break
	VersionDirective = yamlh.VersionDirective
	TagDirective     = yamlh.TagDirective
	ScalarStyle      = yamlh.YamlScalarStyle
	SequenceStyle    = yamlh.YamlSequenceStyle
	MappingStyle     = yamlh.YamlMappingStyle
	Error            = yamlh.Error
	ErrorType        = yamlh.ErrorType

	Document = document.Document
	Node     = document.Node
	NodeID   = document.NodeID
	NodeType = document.NodeType
	NodePair = document.NodePair

	Parser   = parserc.Parser
	Composer = composer.Composer
	Emitter  = emitter.Emitter
	Dumper   = emitter.Dumper

	// EventSource is anything that yields events one at a time, such as a
	// *Parser.
	EventSource = composer.EventSource
)

const (
	ANY_ENCODING     = yamlh.ANY_ENCODING
	UTF8_ENCODING    = yamlh.UTF8_ENCODING
	UTF16LE_ENCODING = yamlh.UTF16LE_ENCODING
	UTF16BE_ENCODING = yamlh.UTF16BE_ENCODING

	NO_EVENT             = yamlh.NO_EVENT
	STREAM_START_EVENT   = yamlh.STREAM_START_EVENT
	STREAM_END_EVENT     = yamlh.STREAM_END_EVENT
	DOCUMENT_START_EVENT = yamlh.DOCUMENT_START_EVENT
	DOCUMENT_END_EVENT   = yamlh.DOCUMENT_END_EVENT
	ALIAS_EVENT          = yamlh.ALIAS_EVENT
	SCALAR_EVENT         = yamlh.SCALAR_EVENT
	SEQUENCE_START_EVENT = yamlh.SEQUENCE_START_EVENT
	SEQUENCE_END_EVENT   = yamlh.SEQUENCE_END_EVENT
	MAPPING_START_EVENT  = yamlh.MAPPING_START_EVENT
	MAPPING_END_EVENT    = yamlh.MAPPING_END_EVENT

	ANY_BREAK  = yamlh.ANY_BREAK
	CR_BREAK   = yamlh.CR_BREAK
	LN_BREAK   = yamlh.LN_BREAK
	CRLN_BREAK = yamlh.CRLN_BREAK

	ANY_SCALAR_STYLE           = yamlh.ANY_SCALAR_STYLE
	PLAIN_SCALAR_STYLE         = yamlh.PLAIN_SCALAR_STYLE
	SINGLE_QUOTED_SCALAR_STYLE = yamlh.SINGLE_QUOTED_SCALAR_STYLE
	DOUBLE_QUOTED_SCALAR_STYLE = yamlh.DOUBLE_QUOTED_SCALAR_STYLE
	LITERAL_SCALAR_STYLE       = yamlh.LITERAL_SCALAR_STYLE
	FOLDED_SCALAR_STYLE        = yamlh.FOLDED_SCALAR_STYLE

	ANY_SEQUENCE_STYLE   = yamlh.ANY_SEQUENCE_STYLE
	BLOCK_SEQUENCE_STYLE = yamlh.BLOCK_SEQUENCE_STYLE
	FLOW_SEQUENCE_STYLE  = yamlh.FLOW_SEQUENCE_STYLE

	ANY_MAPPING_STYLE   = yamlh.ANY_MAPPING_STYLE
	BLOCK_MAPPING_STYLE = yamlh.BLOCK_MAPPING_STYLE
	FLOW_MAPPING_STYLE  = yamlh.FLOW_MAPPING_STYLE

	NO_ERROR       = yamlh.NO_ERROR
	MEMORY_ERROR   = yamlh.MEMORY_ERROR
	READER_ERROR   = yamlh.READER_ERROR
	SCANNER_ERROR  = yamlh.SCANNER_ERROR
	PARSER_ERROR   = yamlh.PARSER_ERROR
	COMPOSER_ERROR = yamlh.COMPOSER_ERROR
	WRITER_ERROR   = yamlh.WRITER_ERROR
	EMITTER_ERROR  = yamlh.EMITTER_ERROR

	NO_NODE       = document.NO_NODE
	SCALAR_NODE   = document.SCALAR_NODE
	SEQUENCE_NODE = document.SEQUENCE_NODE
	MAPPING_NODE  = document.MAPPING_NODE

	STR_TAG = yamlh.STR_TAG
	SEQ_TAG = yamlh.SEQ_TAG
	MAP_TAG = yamlh.MAP_TAG
)

// NewParser returns a parser that pulls its input from r. A read that
// returns io.EOF ends the stream; any other error is a READER_ERROR.
func NewParser(r io.Reader) *Parser {
	return parserc.New(r)
}

// NewParserBytes returns a parser over input.
func NewParserBytes(input []byte) *Parser {
	return parserc.NewBytes(input)
}

// NewComposer returns a composer reading events from src.
func NewComposer(src EventSource) *Composer {
	return composer.New(src)
}

// NewEmitter returns an emitter writing to w. Output is buffered until a
// document ends, the buffer fills or Flush is called.
func NewEmitter(w io.Writer) *Emitter {
	return emitter.New(w)
}

// NewDumper returns a dumper writing documents through e.
func NewDumper(e *Emitter) *Dumper {
	return emitter.NewDumper(e)
}

// ErrorKind returns the kind of the first *Error in err's chain, or
// NO_ERROR.
func ErrorKind(err error) ErrorType {
	return yamlh.ErrorKind(err)
}
