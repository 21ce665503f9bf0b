// Package emitter serializes events to YAML text.
package emitter

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/willabides/yamlstream/internal/growable"
	"github.com/willabides/yamlstream/internal/yamlh"
	"golang.org/x/text/encoding/unicode"
)

type emitterState int

// The emitter states.
const (
	emitStreamStartState emitterState = iota

	emitFirstDocumentStartState      // expect the first DOCUMENT-START or STREAM-END.
	emitDocumentStartState           // expect DOCUMENT-START or STREAM-END.
	emitDocumentContentState         // expect the content of a document.
	emitDocumentEndState             // expect DOCUMENT-END.
	emitFlowSequenceFirstItemState   // expect the first item of a flow sequence.
	emitFlowSequenceItemState        // expect an item of a flow sequence.
	emitFlowMappingFirstKeyState     // expect the first key of a flow mapping.
	emitFlowMappingKeyState          // expect a key of a flow mapping.
	emitFlowMappingSimpleValueState  // expect a value for a simple key of a flow mapping.
	emitFlowMappingValueState        // expect a value of a flow mapping.
	emitBlockSequenceFirstItemState  // expect the first item of a block sequence.
	emitBlockSequenceItemState       // expect an item of a block sequence.
	emitBlockMappingFirstKeyState    // expect the first key of a block mapping.
	emitBlockMappingKeyState         // expect the key of a block mapping.
	emitBlockMappingSimpleValueState // expect a value for a simple key of a block mapping.
	emitBlockMappingValueState       // expect a value of a block mapping.
	emitEndState                     // expect nothing.
)

var emitterStateStrings = []string{
	emitStreamStartState:             "EMIT_STREAM_START_STATE",
	emitFirstDocumentStartState:      "EMIT_FIRST_DOCUMENT_START_STATE",
	emitDocumentStartState:           "EMIT_DOCUMENT_START_STATE",
	emitDocumentContentState:         "EMIT_DOCUMENT_CONTENT_STATE",
	emitDocumentEndState:             "EMIT_DOCUMENT_END_STATE",
	emitFlowSequenceFirstItemState:   "EMIT_FLOW_SEQUENCE_FIRST_ITEM_STATE",
	emitFlowSequenceItemState:        "EMIT_FLOW_SEQUENCE_ITEM_STATE",
	emitFlowMappingFirstKeyState:     "EMIT_FLOW_MAPPING_FIRST_KEY_STATE",
	emitFlowMappingKeyState:          "EMIT_FLOW_MAPPING_KEY_STATE",
	emitFlowMappingSimpleValueState:  "EMIT_FLOW_MAPPING_SIMPLE_VALUE_STATE",
	emitFlowMappingValueState:        "EMIT_FLOW_MAPPING_VALUE_STATE",
	emitBlockSequenceFirstItemState:  "EMIT_BLOCK_SEQUENCE_FIRST_ITEM_STATE",
	emitBlockSequenceItemState:       "EMIT_BLOCK_SEQUENCE_ITEM_STATE",
	emitBlockMappingFirstKeyState:    "EMIT_BLOCK_MAPPING_FIRST_KEY_STATE",
	emitBlockMappingKeyState:         "EMIT_BLOCK_MAPPING_KEY_STATE",
	emitBlockMappingSimpleValueState: "EMIT_BLOCK_MAPPING_SIMPLE_VALUE_STATE",
	emitBlockMappingValueState:       "EMIT_BLOCK_MAPPING_VALUE_STATE",
	emitEndState:                     "EMIT_END_STATE",
}

func (s emitterState) String() string {
	if s < 0 || int(s) >= len(emitterStateStrings) {
		return "<unknown emitter state>"
	}
	return emitterStateStrings[s]
}

// collection records where an open sequence or mapping started.
type collection struct {
	typ  yamlh.EventType
	mark yamlh.Mark
}

// Emitter writes the events it is given as YAML text. Output is buffered;
// it reaches the writer when the buffer fills up, at the end of every
// document, or on Flush.
//
// An Emitter is not safe for concurrent use. After the first error every
// further call returns that same error.
type Emitter struct {

	// Writer stuff

	writer io.Writer

	buffer    *growable.Bytes // The UTF-8 output buffer.
	rawBuffer []byte          // The transcoded output for UTF-16 streams.

	encoding yamlh.Encoding // The stream Encoding.

	// Emitter stuff

	canonical bool        // If the output is in the canonical style?
	indent    int         // The number of indentation spaces.
	width     int         // The preferred width of the output lines.
	unicode   bool        // Allow unescaped non-ASCII characters?
	lineBreak yamlh.Break // The preferred line break.

	state  emitterState                 // The current emitter State.
	states growable.Stack[emitterState] // The stack of States.

	events growable.Queue[yamlh.Event] // The event queue.

	indentStack growable.Stack[int] // The stack of indentation levels.

	// Open collections, innermost on top, and the one most recently
	// closed. Both are used to give structural errors a context.
	collections growable.Stack[collection]
	lastClosed  *collection

	tagDirectives []yamlh.TagDirective // The list of tag directives.

	indentLevel int // The current indentation level.

	flowLevel int // The current flow level.

	rootContext      bool // Is it the document root context?
	simpleKeyContext bool // Is it a simple mapping key context?

	line               int  // The current Line.
	column             int  // The current Column.
	lastCharWhitespace bool // If the last character was a Whitespace?
	lastCharIndent     bool // If the last character was an indentation character (' ', '-', '?', ':')?

	// openEnded is 1 after a plain root scalar, which needs "..." before
	// further directives, and 2 after a block scalar keeping its trailing
	// breaks, which needs "..." before the stream ends.
	openEnded int

	// Analysis of the head event.
	anchorData anchorData
	tagData    tagData
	scalarData scalarData

	err error
}

type anchorData struct {
	Anchor []byte // The anchor value.
	Alias  bool   // Is it an alias?
}

type tagData struct {
	Handle []byte // The tag handle.
	Suffix []byte // The tag suffix.
}

type scalarData struct {
	value               []byte                // The scalar value.
	multiline           bool                  // Does the scalar contain Line breaks?
	flowPlainAllowed    bool                  // Can the scalar be expessed in the flow plain style?
	blockPlainAllowed   bool                  // Can the scalar be expressed in the block plain style?
	singleQuotedAllowed bool                  // Can the scalar be expressed in the single quoted style?
	blockAllowed        bool                  // Can the scalar be expressed in the literal or folded styles?
	style               yamlh.YamlScalarStyle // The output style.
}

// New returns an emitter writing to w.
func New(w io.Writer) *Emitter {
	return &Emitter{
		writer:  w,
		buffer:  growable.NewBytes(yamlh.OutputBufferSize, 0),
		indent:  2,
		width:   80,
		unicode: true,
	}
}

// SetEncoding sets the output encoding. It must be called before
// STREAM-START is emitted. With ANY_ENCODING the encoding of the
// STREAM-START event is used.
func (e *Emitter) SetEncoding(encoding yamlh.Encoding) error {
	if !encoding.Valid() {
		return yamlh.NewError(yamlh.EMITTER_ERROR, "unknown encoding "+encoding.String(), yamlh.Mark{})
	}
	if e.state != emitStreamStartState {
		return yamlh.NewError(yamlh.EMITTER_ERROR, "encoding must be set before STREAM-START", yamlh.Mark{})
	}
	e.encoding = encoding
	return nil
}

// SetCanonical makes the emitter write every tag, force flow style and
// double-quote every scalar.
func (e *Emitter) SetCanonical(canonical bool) {
	e.canonical = canonical
}

// SetIndent sets the number of spaces per nesting level. Values outside
// 2..9 fall back to 2.
func (e *Emitter) SetIndent(spaces int) {
	if spaces < 2 || spaces > 9 {
		spaces = 2
	}
	e.indent = spaces
}

// SetWidth sets the preferred line width. A negative width means
// unlimited; widths of at most twice the indent mean 80.
func (e *Emitter) SetWidth(width int) {
	e.width = width
}

// SetUnicode controls whether non-ASCII characters are written as they
// are (true) or escaped in double-quoted scalars (false).
func (e *Emitter) SetUnicode(unicode bool) {
	e.unicode = unicode
}

// SetLineBreak sets the line break written between lines. ANY_BREAK
// means LN_BREAK.
func (e *Emitter) SetLineBreak(lineBreak yamlh.Break) {
	e.lineBreak = lineBreak
}

// Err returns the first error reported by this emitter, if any.
func (e *Emitter) Err() error {
	return e.err
}

func (e *Emitter) fail(err error) error {
	if e.err == nil {
		e.err = err
	}
	return err
}

// emitterError reports a problem with event. The context names the
// innermost open collection, or the one most recently closed.
func (e *Emitter) emitterError(problem string, event *yamlh.Event) error {
	var mark yamlh.Mark
	if event != nil {
		mark = event.Start_mark
	}
	var c *collection
	context := ""
	switch {
	case !e.collections.Empty():
		c = e.collections.Top()
		context = "while emitting a " + kindName(c.typ)
	case e.lastClosed != nil:
		c = e.lastClosed
		context = "after emitting a " + kindName(c.typ)
	}
	if c == nil {
		return e.fail(yamlh.NewError(yamlh.EMITTER_ERROR, problem, mark))
	}
	return e.fail(yamlh.NewContextError(yamlh.EMITTER_ERROR, context, c.mark, problem, mark))
}

func kindName(typ yamlh.EventType) string {
	if typ == yamlh.SEQUENCE_START_EVENT {
		return "sequence"
	}
	return "mapping"
}

func (e *Emitter) openCollection(event *yamlh.Event) error {
	if err := e.collections.Push(collection{typ: event.Type, mark: event.Start_mark}); err != nil {
		return e.fail(err)
	}
	return nil
}

func (e *Emitter) closeCollection() {
	c := e.collections.Pop()
	e.lastClosed = &c
}

// Emit queues event and writes every queued event that has enough
// lookahead. The event's strings are copied.
func (e *Emitter) Emit(event *yamlh.Event) error {
	if e.err != nil {
		return e.err
	}
	if err := e.events.Enqueue(copyEvent(event)); err != nil {
		return e.fail(err)
	}
	for e.readyToEmit() {
		head := e.events.Head()
		if err := analyzeEvent(e, head); err != nil {
			return err
		}
		if err := stateMachine(e, head); err != nil {
			return err
		}
		e.events.Dequeue()
	}
	return nil
}

func copyEvent(event *yamlh.Event) yamlh.Event {
	c := *event
	c.Anchor = cloneBytes(event.Anchor)
	c.Tag = cloneBytes(event.Tag)
	c.Value = cloneBytes(event.Value)
	if event.Version_directive != nil {
		v := *event.Version_directive
		c.Version_directive = &v
	}
	if event.Tag_directives != nil {
		c.Tag_directives = make([]yamlh.TagDirective, len(event.Tag_directives))
		for i, td := range event.Tag_directives {
			c.Tag_directives[i] = yamlh.TagDirective{
				Handle: cloneBytes(td.Handle),
				Prefix: cloneBytes(td.Prefix),
			}
		}
	}
	return c
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}

// Flush writes the buffered output. It is a no-op when nothing is
// buffered.
func (e *Emitter) Flush() error {
	if e.err != nil {
		return e.err
	}
	return e.flush()
}

// Finish flushes and then checks that the event stream was complete. It
// fails with an EMITTER_ERROR when events are still held for lookahead or
// STREAM-END was never emitted. An emitter that saw no events at all
// finishes cleanly.
func (e *Emitter) Finish() error {
	if err := e.Flush(); err != nil {
		return err
	}
	if e.events.Empty() && (e.state == emitEndState || e.state == emitStreamStartState) {
		return nil
	}
	var last *yamlh.Event
	if !e.events.Empty() {
		last = e.events.At(e.events.Len() - 1)
	}
	return e.emitterError("unexpected end of events, expected STREAM-END", last)
}

func (e *Emitter) flush() error {
	if e.buffer.Len() == 0 {
		return nil
	}
	out := e.buffer.Bytes()
	if e.encoding == yamlh.UTF16LE_ENCODING || e.encoding == yamlh.UTF16BE_ENCODING {
		endianness := unicode.LittleEndian
		if e.encoding == yamlh.UTF16BE_ENCODING {
			endianness = unicode.BigEndian
		}
		// The BOM is already part of the buffer.
		encoded, err := unicode.UTF16(endianness, unicode.IgnoreBOM).NewEncoder().Bytes(out)
		if err != nil {
			return e.writerError(err)
		}
		e.rawBuffer = append(e.rawBuffer[:0], encoded...)
		out = e.rawBuffer
	}
	n, err := e.writer.Write(out)
	if err == nil && n < len(out) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return e.writerError(err)
	}
	e.buffer.Reset()
	return nil
}

func (e *Emitter) writerError(err error) error {
	yerr := yamlh.NewError(yamlh.WRITER_ERROR, "write error", yamlh.Mark{})
	yerr.Err = errors.Wrap(err, "write handler")
	return e.fail(yerr)
}

// reserve flushes the buffer when fewer than five bytes are left, enough
// for any character or line break.
func (e *Emitter) reserve() error {
	if e.buffer.Len()+5 < yamlh.OutputBufferSize {
		return nil
	}
	return e.flush()
}

func (e *Emitter) appendBytes(b []byte) error {
	if _, err := e.buffer.Write(b); err != nil {
		return e.fail(err)
	}
	return nil
}

// put a byte on the output buffer.
func (e *Emitter) put(value byte) error {
	if err := e.reserve(); err != nil {
		return err
	}
	if err := e.buffer.WriteByte(value); err != nil {
		return e.fail(err)
	}
	e.column++
	return nil
}

// putBreak puts the configured line break on the output buffer.
func (e *Emitter) putBreak() error {
	if err := e.reserve(); err != nil {
		return err
	}
	var err error
	switch e.lineBreak {
	case yamlh.CR_BREAK:
		err = e.appendBytes([]byte{'\r'})
	case yamlh.CRLN_BREAK:
		err = e.appendBytes([]byte{'\r', '\n'})
	default:
		err = e.appendBytes([]byte{'\n'})
	}
	if err != nil {
		return err
	}
	e.column = 0
	e.line++
	e.lastCharIndent = true
	return nil
}

// write copies one character from b onto the buffer. It returns the
// number of bytes read from b.
func (e *Emitter) write(b []byte) (int, error) {
	if err := e.reserve(); err != nil {
		return 0, err
	}
	w := yamlh.Width(b[0])
	if w == 0 || w > len(b) {
		w = 1
	}
	if err := e.appendBytes(b[:w]); err != nil {
		return 0, err
	}
	e.column++
	return w, nil
}

// writeAll writes b to the output buffer.
func (e *Emitter) writeAll(b []byte) error {
	for len(b) > 0 {
		n, err := e.write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

// writeBreak writes a line break from b onto the buffer, converting '\n'
// to the configured line break. It returns the number of bytes read from
// b.
func (e *Emitter) writeBreak(b []byte) (int, error) {
	if b[0] == '\n' {
		if err := e.putBreak(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	n, err := e.write(b)
	if err != nil {
		return 0, err
	}
	e.column = 0
	e.line++
	e.lastCharIndent = true
	return n, nil
}

// readyToEmit reports whether the head of the queue can be emitted.
//
// We accumulate extra
//   - 1 event for DOCUMENT-START
//   - 2 events for SEQUENCE-START
//   - 3 events for MAPPING-START
func (e *Emitter) readyToEmit() bool {
	if e.events.Empty() {
		return false
	}
	var accumulate int
	switch e.events.Head().Type {
	case yamlh.DOCUMENT_START_EVENT:
		accumulate = 1
	case yamlh.SEQUENCE_START_EVENT:
		accumulate = 2
	case yamlh.MAPPING_START_EVENT:
		accumulate = 3
	default:
		return true
	}
	if e.events.Len() > accumulate {
		return true
	}
	var level int
	for i := 0; i < e.events.Len(); i++ {
		switch e.events.At(i).Type {
		case yamlh.STREAM_START_EVENT, yamlh.DOCUMENT_START_EVENT, yamlh.SEQUENCE_START_EVENT, yamlh.MAPPING_START_EVENT:
			level++
		case yamlh.STREAM_END_EVENT, yamlh.DOCUMENT_END_EVENT, yamlh.SEQUENCE_END_EVENT, yamlh.MAPPING_END_EVENT:
			level--
		}
		if level == 0 {
			return true
		}
	}
	return false
}

func (e *Emitter) increaseIndent(flow, indentless bool) error {
	if err := e.indentStack.Push(e.indentLevel); err != nil {
		return e.fail(err)
	}
	if e.indentLevel < 0 {
		if flow {
			e.indentLevel = e.indent
		} else {
			e.indentLevel = 0
		}
		return nil
	}
	if !indentless {
		// [Go] This was changed so that indentations are more regular.
		if top := e.states.Top(); top != nil && *top == emitBlockSequenceItemState {
			// The first indent inside a sequence will just skip the "- " indicator.
			e.indentLevel += 2
		} else {
			// Everything else aligns to the chosen indentation.
			e.indentLevel = e.indent * ((e.indentLevel + e.indent) / e.indent)
		}
	}
	return nil
}

func (e *Emitter) popIndent() {
	e.indentLevel = e.indentStack.Pop()
}

func (e *Emitter) pushState(state emitterState) error {
	if err := e.states.Push(state); err != nil {
		return e.fail(err)
	}
	return nil
}

func (e *Emitter) popState() {
	e.state = e.states.Pop()
}

// appendTagDirective adds a directive to the ones in effect.
func (e *Emitter) appendTagDirective(value *yamlh.TagDirective, allow_duplicates bool, event *yamlh.Event) error {
	for i := range e.tagDirectives {
		if bytes.Equal(value.Handle, e.tagDirectives[i].Handle) {
			if allow_duplicates {
				return nil
			}
			return e.emitterError("duplicate %TAG directive", event)
		}
	}
	e.tagDirectives = append(e.tagDirectives, yamlh.TagDirective{
		Handle: cloneBytes(value.Handle),
		Prefix: cloneBytes(value.Prefix),
	})
	return nil
}

// validUTF8 is used for every string an event hands to the emitter.
func validUTF8(b []byte) bool {
	return utf8.Valid(b)
}
