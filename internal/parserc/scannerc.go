//
// Copyright (c) 2011-2019 Canonical Ltd
// Copyright (c) 2006-2010 Kirill Simonov
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package parserc

import (
	"bytes"
	"fmt"

	"github.com/willabides/yamlstream/internal/yamlh"
)

// The scanner turns the decoded character buffer into tokens. Most tokens map
// directly onto indicators or scalars in the input. Three kinds are produced
// without any text of their own:
//
//   - BLOCK-SEQUENCE-START and BLOCK-MAPPING-START are emitted when the
//     indentation increases, and BLOCK-END when it decreases again. They play
//     the role of '[', '{' and ']', '}' for block collections.
//   - KEY is emitted for simple keys (keys without a '?' indicator). Whether a
//     scalar, alias or flow collection is a key is only known once the ':'
//     after it is found, so the scanner records a candidate and inserts the
//     KEY token back into the queue when the ':' shows up.
//
// A simple key must end on the line where it started and within 1024
// characters. A candidate that can no longer satisfy those limits is
// dropped. If it was required (it started at the indentation column of a
// block mapping) dropping it is an error.
//
// Given
//
//	key:
//	- item 1
//	- item 2
//
// the scanner produces
//
//	STREAM-START(utf-8)
//	BLOCK-MAPPING-START
//	KEY
//	SCALAR("key",plain)
//	VALUE
//	BLOCK-ENTRY
//	SCALAR("item 1",plain)
//	BLOCK-ENTRY
//	SCALAR("item 2",plain)
//	BLOCK-END
//	STREAM-END
//
// Note that the sequence is indentless, so no BLOCK-SEQUENCE-START is
// produced for it.

// Scan returns the next token. After STREAM-END it returns a NO_TOKEN token
// for every further call.
func (p *Parser) Scan() (yamlh.YamlToken, error) {
	if p.err != nil {
		return yamlh.YamlToken{}, p.err
	}
	if p.stream_end_produced {
		return yamlh.YamlToken{}, nil
	}
	tok, err := p.peekToken()
	if err != nil {
		return yamlh.YamlToken{}, err
	}
	token := *tok
	p.skipToken()
	return token, nil
}

// peekToken returns the token at the head of the queue without consuming
// it, fetching more tokens if needed.
func (p *Parser) peekToken() (*yamlh.YamlToken, error) {
	if p.err != nil {
		return nil, p.err
	}
	if !p.token_available {
		if err := p.fetchMoreTokens(); err != nil {
			return nil, err
		}
	}
	return p.tokens.Head(), nil
}

// skipToken drops the head token. It must follow a successful peekToken.
func (p *Parser) skipToken() {
	p.token_available = false
	p.tokens_parsed++
	tok := p.tokens.Dequeue()
	p.stream_end_produced = tok.Type == yamlh.STREAM_END_TOKEN
}

// cache ensures the buffer holds at least n unread characters.
func (p *Parser) cache(n int) error {
	if p.unread >= n {
		return nil
	}
	return p.updateBuffer(n)
}

func (p *Parser) ch(k int) byte {
	return p.buffer[p.buffer_pos+k]
}

func (p *Parser) insertToken(pos int, token yamlh.YamlToken) error {
	var err error
	if pos < 0 {
		err = p.tokens.Enqueue(token)
	} else {
		err = p.tokens.Insert(pos, token)
	}
	if err != nil {
		return p.fail(err)
	}
	return nil
}

func (p *Parser) queuedTokens() int {
	return p.tokens_parsed + p.tokens.Len()
}

func (p *Parser) noteBreak(kind yamlh.Break) {
	if p.line_break == yamlh.ANY_BREAK {
		p.line_break = kind
	}
}

// Advance the buffer pointer.
func (p *Parser) skip() {
	p.mark.Index++
	p.mark.Column++
	p.unread--
	p.buffer_pos += yamlh.Width(p.buffer[p.buffer_pos])
}

func (p *Parser) skipLine() {
	if yamlh.IsCRLF(p.buffer, p.buffer_pos) {
		p.noteBreak(yamlh.CRLN_BREAK)
		p.mark.Index += 2
		p.mark.Column = 0
		p.mark.Line++
		p.unread -= 2
		p.buffer_pos += 2
	} else if yamlh.IsBreak(p.buffer, p.buffer_pos) {
		switch p.ch(0) {
		case '\r':
			p.noteBreak(yamlh.CR_BREAK)
		case '\n':
			p.noteBreak(yamlh.LN_BREAK)
		}
		p.mark.Index++
		p.mark.Column = 0
		p.mark.Line++
		p.unread--
		p.buffer_pos += yamlh.Width(p.buffer[p.buffer_pos])
	}
}

// Copy a character to s and advance the pointers.
func (p *Parser) read(s []byte) []byte {
	w := yamlh.Width(p.buffer[p.buffer_pos])
	if w == 0 {
		panic("invalid character sequence")
	}
	if len(s) == 0 {
		s = make([]byte, 0, 32)
	}
	s = append(s, p.buffer[p.buffer_pos:p.buffer_pos+w]...)
	p.buffer_pos += w
	p.mark.Index++
	p.mark.Column++
	p.unread--
	return s
}

// Copy a line break to s, normalizing CR, CRLF and NEL to LF.
func (p *Parser) readLine(s []byte) []byte {
	buf := p.buffer
	pos := p.buffer_pos
	switch {
	case buf[pos] == '\r' && buf[pos+1] == '\n':
		p.noteBreak(yamlh.CRLN_BREAK)
		s = append(s, '\n')
		p.buffer_pos += 2
		p.mark.Index++
		p.unread--
	case buf[pos] == '\r':
		p.noteBreak(yamlh.CR_BREAK)
		s = append(s, '\n')
		p.buffer_pos++
	case buf[pos] == '\n':
		p.noteBreak(yamlh.LN_BREAK)
		s = append(s, '\n')
		p.buffer_pos++
	case buf[pos] == '\xC2' && buf[pos+1] == '\x85':
		s = append(s, '\n')
		p.buffer_pos += 2
	case buf[pos] == '\xE2' && buf[pos+1] == '\x80' && (buf[pos+2] == '\xA8' || buf[pos+2] == '\xA9'):
		// LS and PS are kept as they are.
		s = append(s, buf[pos:pos+3]...)
		p.buffer_pos += 3
	default:
		return s
	}
	p.mark.Index++
	p.mark.Column = 0
	p.mark.Line++
	p.unread--
	return s
}

func (p *Parser) scannerError(context string, contextMark yamlh.Mark, problem string) error {
	return p.fail(yamlh.NewContextError(yamlh.SCANNER_ERROR, context, contextMark, problem, p.mark))
}

// fetchMoreTokens makes sure the head of the queue is a token the parser
// may consume: one that cannot turn out to be preceded by a KEY.
func (p *Parser) fetchMoreTokens() error {
	for {
		if !p.tokens.Empty() {
			idx, ok := p.simple_keys_by_tok[p.tokens_parsed]
			if !ok {
				break
			}
			valid, err := p.simpleKeyIsValid(p.simple_keys.At(idx))
			if err != nil {
				return err
			}
			if !valid {
				break
			}
		}
		if err := p.fetchNextToken(); err != nil {
			return err
		}
	}
	p.token_available = true
	return nil
}

// isDocumentIndicator reports whether the buffer is at a '---' or '...'
// line start followed by a blank or the end of input.
func (p *Parser) isDocumentIndicator(c byte) bool {
	return p.mark.Column == 0 &&
		p.ch(0) == c && p.ch(1) == c && p.ch(2) == c &&
		yamlh.IsBlankZ(p.buffer, p.buffer_pos+3)
}

func (p *Parser) fetchNextToken() error {
	if err := p.cache(1); err != nil {
		return err
	}

	if !p.stream_start_produced {
		return p.fetchStreamStart()
	}

	if err := p.scanToNextToken(); err != nil {
		return err
	}

	if err := p.unrollIndent(p.mark.Column); err != nil {
		return err
	}

	// 4 is the length of the longest indicators ('--- ' and '... ').
	if err := p.cache(4); err != nil {
		return err
	}

	if yamlh.IsZ(p.buffer, p.buffer_pos) {
		return p.fetchStreamEnd()
	}

	if p.mark.Column == 0 && p.ch(0) == '%' {
		return p.fetchDirective()
	}
	if p.isDocumentIndicator('-') {
		return p.fetchDocumentIndicator(yamlh.DOCUMENT_START_TOKEN)
	}
	if p.isDocumentIndicator('.') {
		return p.fetchDocumentIndicator(yamlh.DOCUMENT_END_TOKEN)
	}

	c := p.ch(0)
	switch {
	case c == '[':
		return p.fetchFlowCollectionStart(yamlh.FLOW_SEQUENCE_START_TOKEN)
	case c == '{':
		return p.fetchFlowCollectionStart(yamlh.FLOW_MAPPING_START_TOKEN)
	case c == ']':
		return p.fetchFlowCollectionEnd(yamlh.FLOW_SEQUENCE_END_TOKEN)
	case c == '}':
		return p.fetchFlowCollectionEnd(yamlh.FLOW_MAPPING_END_TOKEN)
	case c == ',':
		return p.fetchFlowEntry()
	case c == '-' && yamlh.IsBlankZ(p.buffer, p.buffer_pos+1):
		return p.fetchBlockEntry()
	case c == '?' && (p.flow_level > 0 || yamlh.IsBlankZ(p.buffer, p.buffer_pos+1)):
		return p.fetchKey()
	case c == ':' && (p.flow_level > 0 || yamlh.IsBlankZ(p.buffer, p.buffer_pos+1)):
		return p.fetchValue()
	case c == '*':
		return p.fetchAnchor(yamlh.ALIAS_TOKEN)
	case c == '&':
		return p.fetchAnchor(yamlh.ANCHOR_TOKEN)
	case c == '!':
		return p.fetchTag()
	case c == '|' && p.flow_level == 0:
		return p.fetchBlockScalar(true)
	case c == '>' && p.flow_level == 0:
		return p.fetchBlockScalar(false)
	case c == '\'':
		return p.fetchFlowScalar(true)
	case c == '"':
		return p.fetchFlowScalar(false)
	}

	// A plain scalar may start with any non-blank character except the
	// indicators. '-' may start one when followed by a non-blank, and so may
	// '?' and ':' in the block context.
	if !(yamlh.IsBlankZ(p.buffer, p.buffer_pos) || isIndicator(c)) ||
		(c == '-' && !yamlh.IsBlank(p.buffer, p.buffer_pos+1)) ||
		(p.flow_level == 0 && (c == '?' || c == ':') && !yamlh.IsBlankZ(p.buffer, p.buffer_pos+1)) {
		return p.fetchPlainScalar()
	}

	return p.scannerError("while scanning for the next token", p.mark, "found character that cannot start any token")
}

func isIndicator(c byte) bool {
	switch c {
	case '-', '?', ':', ',', '[', ']', '{', '}', '#', '&', '*', '!', '|', '>', '\'', '"', '%', '@', '`':
		return true
	}
	return false
}

func (p *Parser) simpleKeyIsValid(simple_key *yamlh.SimpleKey) (bool, error) {
	if !simple_key.Possible {
		return false, nil
	}
	if simple_key.Mark.Line < p.mark.Line || simple_key.Mark.Index+1024 < p.mark.Index {
		if simple_key.Required {
			return false, p.scannerError("while scanning a simple key", simple_key.Mark, "could not find expected ':'")
		}
		simple_key.Possible = false
		return false, nil
	}
	return true, nil
}

// saveSimpleKey records the current position as a possible simple key. A
// key is required when it sits at the indentation column in the block
// context.
func (p *Parser) saveSimpleKey() error {
	if !p.simple_key_allowed {
		return nil
	}
	required := p.flow_level == 0 && p.indent == p.mark.Column
	simple_key := yamlh.SimpleKey{
		Possible:     true,
		Required:     required,
		Token_number: p.queuedTokens(),
		Mark:         p.mark,
	}
	if err := p.removeSimpleKey(); err != nil {
		return err
	}
	*p.simple_keys.Top() = simple_key
	p.simple_keys_by_tok[simple_key.Token_number] = p.simple_keys.Len() - 1
	return nil
}

// removeSimpleKey drops the candidate at the current flow level.
func (p *Parser) removeSimpleKey() error {
	key := p.simple_keys.Top()
	if key.Possible {
		if key.Required {
			return p.scannerError("while scanning a simple key", key.Mark, "could not find expected ':'")
		}
		key.Possible = false
		delete(p.simple_keys_by_tok, key.Token_number)
	}
	return nil
}

// max_flow_level limits the flow_level
const max_flow_level = 10000

func (p *Parser) increaseFlowLevel() error {
	err := p.simple_keys.Push(yamlh.SimpleKey{
		Token_number: p.queuedTokens(),
		Mark:         p.mark,
	})
	if err != nil {
		return p.fail(err)
	}
	p.flow_level++
	if p.flow_level > max_flow_level {
		return p.scannerError("while increasing flow level", p.simple_keys.Top().Mark,
			fmt.Sprintf("exceeded max depth of %d", max_flow_level))
	}
	return nil
}

func (p *Parser) decreaseFlowLevel() {
	if p.flow_level > 0 {
		p.flow_level--
		level := p.simple_keys.Len() - 1
		key := p.simple_keys.Pop()
		// The placeholder shares its token number with the enclosing
		// level's candidate, so only drop an entry that points here.
		if i, ok := p.simple_keys_by_tok[key.Token_number]; ok && i == level {
			delete(p.simple_keys_by_tok, key.Token_number)
		}
	}
}

// max_indents limits the indents stack size
const max_indents = 10000

// rollIndent pushes the current indentation level and inserts a block
// collection start token when column is deeper than it. number is the
// absolute token number to insert at, or -1 to append.
func (p *Parser) rollIndent(column, number int, typ yamlh.TokenType, mark yamlh.Mark) error {
	if p.flow_level > 0 {
		return nil
	}
	if p.indent >= column {
		return nil
	}
	if err := p.indents.Push(p.indent); err != nil {
		return p.fail(err)
	}
	p.indent = column
	if p.indents.Len() > max_indents {
		return p.scannerError("while increasing indent level", p.simple_keys.Top().Mark,
			fmt.Sprintf("exceeded max depth of %d", max_indents))
	}
	if number > -1 {
		number -= p.tokens_parsed
	}
	return p.insertToken(number, yamlh.YamlToken{
		Type:       typ,
		Start_mark: mark,
		End_mark:   mark,
	})
}

// unrollIndent pops indentation levels deeper than column, appending a
// BLOCK-END for each.
func (p *Parser) unrollIndent(column int) error {
	if p.flow_level > 0 {
		return nil
	}
	for p.indent > column {
		err := p.insertToken(-1, yamlh.YamlToken{
			Type:       yamlh.BLOCK_END_TOKEN,
			Start_mark: p.mark,
			End_mark:   p.mark,
		})
		if err != nil {
			return err
		}
		p.indent = p.indents.Pop()
	}
	return nil
}

func (p *Parser) fetchStreamStart() error {
	p.indent = -1
	if err := p.simple_keys.Push(yamlh.SimpleKey{}); err != nil {
		return p.fail(err)
	}
	p.simple_keys_by_tok = map[int]int{}
	p.simple_key_allowed = true
	p.stream_start_produced = true
	return p.insertToken(-1, yamlh.YamlToken{
		Type:       yamlh.STREAM_START_TOKEN,
		Start_mark: p.mark,
		End_mark:   p.mark,
		Encoding:   p.encoding,
	})
}

func (p *Parser) fetchStreamEnd() error {
	// Force new line.
	if p.mark.Column != 0 {
		p.mark.Column = 0
		p.mark.Line++
	}
	if err := p.unrollIndent(-1); err != nil {
		return err
	}
	if err := p.removeSimpleKey(); err != nil {
		return err
	}
	p.simple_key_allowed = false
	return p.insertToken(-1, yamlh.YamlToken{
		Type:       yamlh.STREAM_END_TOKEN,
		Start_mark: p.mark,
		End_mark:   p.mark,
	})
}

func (p *Parser) fetchDirective() error {
	if err := p.unrollIndent(-1); err != nil {
		return err
	}
	if err := p.removeSimpleKey(); err != nil {
		return err
	}
	p.simple_key_allowed = false
	token, err := p.scanDirective()
	if err != nil {
		return err
	}
	return p.insertToken(-1, token)
}

func (p *Parser) fetchDocumentIndicator(typ yamlh.TokenType) error {
	if err := p.unrollIndent(-1); err != nil {
		return err
	}
	if err := p.removeSimpleKey(); err != nil {
		return err
	}
	p.simple_key_allowed = false

	start_mark := p.mark
	p.skip()
	p.skip()
	p.skip()
	return p.insertToken(-1, yamlh.YamlToken{
		Type:       typ,
		Start_mark: start_mark,
		End_mark:   p.mark,
	})
}

// appendIndicator consumes a one-character indicator and queues a token for
// it.
func (p *Parser) appendIndicator(typ yamlh.TokenType) error {
	start_mark := p.mark
	p.skip()
	return p.insertToken(-1, yamlh.YamlToken{
		Type:       typ,
		Start_mark: start_mark,
		End_mark:   p.mark,
	})
}

func (p *Parser) fetchFlowCollectionStart(typ yamlh.TokenType) error {
	// '[' and '{' may start a simple key.
	if err := p.saveSimpleKey(); err != nil {
		return err
	}
	if err := p.increaseFlowLevel(); err != nil {
		return err
	}
	p.simple_key_allowed = true
	return p.appendIndicator(typ)
}

func (p *Parser) fetchFlowCollectionEnd(typ yamlh.TokenType) error {
	if err := p.removeSimpleKey(); err != nil {
		return err
	}
	p.decreaseFlowLevel()
	p.simple_key_allowed = false
	return p.appendIndicator(typ)
}

func (p *Parser) fetchFlowEntry() error {
	if err := p.removeSimpleKey(); err != nil {
		return err
	}
	p.simple_key_allowed = true
	return p.appendIndicator(yamlh.FLOW_ENTRY_TOKEN)
}

func (p *Parser) fetchBlockEntry() error {
	if p.flow_level == 0 {
		if !p.simple_key_allowed {
			return p.scannerError("", p.mark, "block sequence entries are not allowed in this context")
		}
		if err := p.rollIndent(p.mark.Column, -1, yamlh.BLOCK_SEQUENCE_START_TOKEN, p.mark); err != nil {
			return err
		}
	}
	// In the flow context the parser reports the error.

	if err := p.removeSimpleKey(); err != nil {
		return err
	}
	p.simple_key_allowed = true
	return p.appendIndicator(yamlh.BLOCK_ENTRY_TOKEN)
}

func (p *Parser) fetchKey() error {
	if p.flow_level == 0 {
		if !p.simple_key_allowed {
			return p.scannerError("", p.mark, "mapping keys are not allowed in this context")
		}
		if err := p.rollIndent(p.mark.Column, -1, yamlh.BLOCK_MAPPING_START_TOKEN, p.mark); err != nil {
			return err
		}
	}
	if err := p.removeSimpleKey(); err != nil {
		return err
	}
	p.simple_key_allowed = p.flow_level == 0
	return p.appendIndicator(yamlh.KEY_TOKEN)
}

func (p *Parser) fetchValue() error {
	simple_key := p.simple_keys.Top()

	valid, err := p.simpleKeyIsValid(simple_key)
	if err != nil {
		return err
	}
	if valid {
		// Insert the KEY token where the key started.
		err = p.insertToken(simple_key.Token_number-p.tokens_parsed, yamlh.YamlToken{
			Type:       yamlh.KEY_TOKEN,
			Start_mark: simple_key.Mark,
			End_mark:   simple_key.Mark,
		})
		if err != nil {
			return err
		}
		err = p.rollIndent(simple_key.Mark.Column, simple_key.Token_number, yamlh.BLOCK_MAPPING_START_TOKEN, simple_key.Mark)
		if err != nil {
			return err
		}
		simple_key.Possible = false
		delete(p.simple_keys_by_tok, simple_key.Token_number)

		// A simple key cannot follow another simple key.
		p.simple_key_allowed = false
	} else {
		// The ':' follows a complex key.
		if p.flow_level == 0 {
			if !p.simple_key_allowed {
				return p.scannerError("", p.mark, "mapping values are not allowed in this context")
			}
			if err := p.rollIndent(p.mark.Column, -1, yamlh.BLOCK_MAPPING_START_TOKEN, p.mark); err != nil {
				return err
			}
		}
		p.simple_key_allowed = p.flow_level == 0
	}
	return p.appendIndicator(yamlh.VALUE_TOKEN)
}

func (p *Parser) fetchAnchor(typ yamlh.TokenType) error {
	if err := p.saveSimpleKey(); err != nil {
		return err
	}
	p.simple_key_allowed = false
	token, err := p.scanAnchor(typ)
	if err != nil {
		return err
	}
	return p.insertToken(-1, token)
}

func (p *Parser) fetchTag() error {
	if err := p.saveSimpleKey(); err != nil {
		return err
	}
	p.simple_key_allowed = false
	token, err := p.scanTag()
	if err != nil {
		return err
	}
	return p.insertToken(-1, token)
}

func (p *Parser) fetchBlockScalar(literal bool) error {
	if err := p.removeSimpleKey(); err != nil {
		return err
	}
	// A simple key may follow a block scalar.
	p.simple_key_allowed = true
	token, err := p.scanBlockScalar(literal)
	if err != nil {
		return err
	}
	return p.insertToken(-1, token)
}

func (p *Parser) fetchFlowScalar(single bool) error {
	if err := p.saveSimpleKey(); err != nil {
		return err
	}
	p.simple_key_allowed = false
	token, err := p.scanFlowScalar(single)
	if err != nil {
		return err
	}
	return p.insertToken(-1, token)
}

func (p *Parser) fetchPlainScalar() error {
	if err := p.saveSimpleKey(); err != nil {
		return err
	}
	p.simple_key_allowed = false
	token, err := p.scanPlainScalar()
	if err != nil {
		return err
	}
	return p.insertToken(-1, token)
}

// skipBlanks eats spaces and tabs.
func (p *Parser) skipBlanks() error {
	if err := p.cache(1); err != nil {
		return err
	}
	for yamlh.IsBlank(p.buffer, p.buffer_pos) {
		p.skip()
		if err := p.cache(1); err != nil {
			return err
		}
	}
	return nil
}

// skipToBreak eats everything up to the next line break or the end of
// input. It is used for comments.
func (p *Parser) skipToBreak() error {
	for !yamlh.IsBreakZ(p.buffer, p.buffer_pos) {
		p.skip()
		if err := p.cache(1); err != nil {
			return err
		}
	}
	return nil
}

// scanToNextToken eats whitespace, comments and line breaks.
func (p *Parser) scanToNextToken() error {
	for {
		// A BOM may start a line.
		if err := p.cache(1); err != nil {
			return err
		}
		if p.mark.Column == 0 && yamlh.IsBOM(p.buffer, p.buffer_pos) {
			p.skip()
		}

		// Tabs are allowed in the flow context, and in the block context
		// after '-', '?' or ':' but not at the start of a line.
		if err := p.cache(1); err != nil {
			return err
		}
		for p.ch(0) == ' ' || ((p.flow_level > 0 || !p.simple_key_allowed) && p.ch(0) == '\t') {
			p.skip()
			if err := p.cache(1); err != nil {
				return err
			}
		}

		if p.ch(0) == '#' {
			if err := p.skipToBreak(); err != nil {
				return err
			}
		}

		if !yamlh.IsBreak(p.buffer, p.buffer_pos) {
			return nil
		}
		if err := p.cache(2); err != nil {
			return err
		}
		p.skipLine()

		// In the block context, a new line may start a simple key.
		if p.flow_level == 0 {
			p.simple_key_allowed = true
		}
	}
}

// scanDirective scans a %YAML or %TAG directive line.
func (p *Parser) scanDirective() (yamlh.YamlToken, error) {
	const context = "while scanning a directive"
	var token yamlh.YamlToken

	start_mark := p.mark
	p.skip()

	name, err := p.scanDirectiveName(start_mark)
	if err != nil {
		return token, err
	}

	switch {
	case bytes.Equal(name, []byte("YAML")):
		major, minor, err := p.scanVersionDirectiveValue(start_mark)
		if err != nil {
			return token, err
		}
		token = yamlh.YamlToken{
			Type:       yamlh.VERSION_DIRECTIVE_TOKEN,
			Start_mark: start_mark,
			End_mark:   p.mark,
			Major:      major,
			Minor:      minor,
		}
	case bytes.Equal(name, []byte("TAG")):
		handle, prefix, err := p.scanTagDirectiveValue(start_mark)
		if err != nil {
			return token, err
		}
		token = yamlh.YamlToken{
			Type:       yamlh.TAG_DIRECTIVE_TOKEN,
			Start_mark: start_mark,
			End_mark:   p.mark,
			Value:      handle,
			Prefix:     prefix,
		}
	default:
		return token, p.scannerError(context, start_mark, "found unknown directive name")
	}

	// Eat the rest of the line including any comments.
	if err := p.skipBlanks(); err != nil {
		return token, err
	}
	if p.ch(0) == '#' {
		if err := p.skipToBreak(); err != nil {
			return token, err
		}
	}
	if !yamlh.IsBreakZ(p.buffer, p.buffer_pos) {
		return token, p.scannerError(context, start_mark, "did not find expected comment or line break")
	}
	if yamlh.IsBreak(p.buffer, p.buffer_pos) {
		if err := p.cache(2); err != nil {
			return token, err
		}
		p.skipLine()
	}
	return token, nil
}

func (p *Parser) scanDirectiveName(start_mark yamlh.Mark) ([]byte, error) {
	const context = "while scanning a directive"
	if err := p.cache(1); err != nil {
		return nil, err
	}
	var s []byte
	for yamlh.IsAlpha(p.buffer, p.buffer_pos) {
		s = p.read(s)
		if err := p.cache(1); err != nil {
			return nil, err
		}
	}
	if len(s) == 0 {
		return nil, p.scannerError(context, start_mark, "could not find expected directive name")
	}
	if !yamlh.IsBlankZ(p.buffer, p.buffer_pos) {
		return nil, p.scannerError(context, start_mark, "found unexpected non-alphabetical character")
	}
	return s, nil
}

func (p *Parser) scanVersionDirectiveValue(start_mark yamlh.Mark) (major, minor int8, _ error) {
	if err := p.skipBlanks(); err != nil {
		return 0, 0, err
	}
	major, err := p.scanVersionDirectiveNumber(start_mark)
	if err != nil {
		return 0, 0, err
	}
	if p.ch(0) != '.' {
		return 0, 0, p.scannerError("while scanning a %YAML directive", start_mark, "did not find expected digit or '.' character")
	}
	p.skip()
	minor, err = p.scanVersionDirectiveNumber(start_mark)
	if err != nil {
		return 0, 0, err
	}
	return major, minor, nil
}

const max_number_length = 2

func (p *Parser) scanVersionDirectiveNumber(start_mark yamlh.Mark) (int8, error) {
	const context = "while scanning a %YAML directive"
	if err := p.cache(1); err != nil {
		return 0, err
	}
	var value, length int8
	for yamlh.IsDigit(p.buffer, p.buffer_pos) {
		length++
		if length > max_number_length {
			return 0, p.scannerError(context, start_mark, "found extremely long version number")
		}
		value = value*10 + int8(yamlh.AsDigit(p.buffer, p.buffer_pos))
		p.skip()
		if err := p.cache(1); err != nil {
			return 0, err
		}
	}
	if length == 0 {
		return 0, p.scannerError(context, start_mark, "did not find expected version number")
	}
	return value, nil
}

func (p *Parser) scanTagDirectiveValue(start_mark yamlh.Mark) (handle, prefix []byte, _ error) {
	const context = "while scanning a %TAG directive"
	if err := p.skipBlanks(); err != nil {
		return nil, nil, err
	}
	handle, err := p.scanTagHandle(true, start_mark)
	if err != nil {
		return nil, nil, err
	}
	if err := p.cache(1); err != nil {
		return nil, nil, err
	}
	if !yamlh.IsBlank(p.buffer, p.buffer_pos) {
		return nil, nil, p.scannerError(context, start_mark, "did not find expected whitespace")
	}
	if err := p.skipBlanks(); err != nil {
		return nil, nil, err
	}
	prefix, err = p.scanTagURI(true, nil, start_mark)
	if err != nil {
		return nil, nil, err
	}
	if err := p.cache(1); err != nil {
		return nil, nil, err
	}
	if !yamlh.IsBlankZ(p.buffer, p.buffer_pos) {
		return nil, nil, p.scannerError(context, start_mark, "did not find expected whitespace or line break")
	}
	return handle, prefix, nil
}

func (p *Parser) scanAnchor(typ yamlh.TokenType) (yamlh.YamlToken, error) {
	context := "while scanning an anchor"
	if typ == yamlh.ALIAS_TOKEN {
		context = "while scanning an alias"
	}

	start_mark := p.mark
	p.skip()

	if err := p.cache(1); err != nil {
		return yamlh.YamlToken{}, err
	}
	var s []byte
	for yamlh.IsAlpha(p.buffer, p.buffer_pos) {
		s = p.read(s)
		if err := p.cache(1); err != nil {
			return yamlh.YamlToken{}, err
		}
	}
	end_mark := p.mark

	// The name must be followed by a blank or one of '?', ':', ',', ']',
	// '}', '%', '@', '`'.
	c := p.ch(0)
	if len(s) == 0 || !(yamlh.IsBlankZ(p.buffer, p.buffer_pos) || c == '?' || c == ':' || c == ',' ||
		c == ']' || c == '}' || c == '%' || c == '@' || c == '`') {
		return yamlh.YamlToken{}, p.scannerError(context, start_mark, "did not find expected alphabetic or numeric character")
	}

	return yamlh.YamlToken{
		Type:       typ,
		Start_mark: start_mark,
		End_mark:   end_mark,
		Value:      s,
	}, nil
}

func (p *Parser) scanTag() (yamlh.YamlToken, error) {
	const context = "while scanning a tag"
	var handle, suffix []byte
	var err error

	start_mark := p.mark

	if err = p.cache(2); err != nil {
		return yamlh.YamlToken{}, err
	}

	if p.ch(1) == '<' {
		// Verbatim tag: '!<uri>'. The handle stays empty.
		p.skip()
		p.skip()
		suffix, err = p.scanTagURI(false, nil, start_mark)
		if err != nil {
			return yamlh.YamlToken{}, err
		}
		if p.ch(0) != '>' {
			return yamlh.YamlToken{}, p.scannerError(context, start_mark, "did not find the expected '>'")
		}
		p.skip()
	} else {
		// '!suffix' or '!handle!suffix'.
		handle, err = p.scanTagHandle(false, start_mark)
		if err != nil {
			return yamlh.YamlToken{}, err
		}
		if handle[0] == '!' && len(handle) > 1 && handle[len(handle)-1] == '!' {
			suffix, err = p.scanTagURI(false, nil, start_mark)
			if err != nil {
				return yamlh.YamlToken{}, err
			}
		} else {
			// Not a handle after all: it is the start of the suffix.
			suffix, err = p.scanTagURI(false, handle, start_mark)
			if err != nil {
				return yamlh.YamlToken{}, err
			}
			handle = []byte{'!'}

			// The lone '!' tag has an empty handle and a '!' suffix.
			if len(suffix) == 0 {
				handle, suffix = suffix, handle
			}
		}
	}

	if err = p.cache(1); err != nil {
		return yamlh.YamlToken{}, err
	}
	if !yamlh.IsBlankZ(p.buffer, p.buffer_pos) {
		return yamlh.YamlToken{}, p.scannerError(context, start_mark, "did not find expected whitespace or line break")
	}

	return yamlh.YamlToken{
		Type:       yamlh.TAG_TOKEN,
		Start_mark: start_mark,
		End_mark:   p.mark,
		Value:      handle,
		Suffix:     suffix,
	}, nil
}

func tagContext(directive bool) string {
	if directive {
		return "while parsing a %TAG directive"
	}
	return "while parsing a tag"
}

func (p *Parser) scanTagHandle(directive bool, start_mark yamlh.Mark) ([]byte, error) {
	if err := p.cache(1); err != nil {
		return nil, err
	}
	if p.ch(0) != '!' {
		return nil, p.scannerError(tagContext(directive), start_mark, "did not find expected '!'")
	}

	s := p.read(nil)
	if err := p.cache(1); err != nil {
		return nil, err
	}
	for yamlh.IsAlpha(p.buffer, p.buffer_pos) {
		s = p.read(s)
		if err := p.cache(1); err != nil {
			return nil, err
		}
	}

	if p.ch(0) == '!' {
		s = p.read(s)
	} else if directive && string(s) != "!" {
		// In a %TAG directive the handle must be '!' or end with '!'.
		return nil, p.scannerError(tagContext(directive), start_mark, "did not find expected '!'")
	}
	return s, nil
}

func isURIChar(c byte) bool {
	switch c {
	case ';', '/', '?', ':', '@', '&', '=', '+', '$', ',', '.', '!', '~', '*', '\'', '(', ')', '[', ']', '%':
		return true
	}
	return false
}

// scanTagURI scans the rest of a tag. head is the part already consumed as
// a would-be handle; its leading '!' is dropped.
func (p *Parser) scanTagURI(directive bool, head []byte, start_mark yamlh.Mark) ([]byte, error) {
	var s []byte
	hasTag := len(head) > 0
	if len(head) > 1 {
		s = append(s, head[1:]...)
	}

	if err := p.cache(1); err != nil {
		return nil, err
	}
	for yamlh.IsAlpha(p.buffer, p.buffer_pos) || isURIChar(p.ch(0)) {
		if p.ch(0) == '%' {
			var err error
			s, err = p.scanURIEscapes(directive, start_mark, s)
			if err != nil {
				return nil, err
			}
		} else {
			s = p.read(s)
		}
		if err := p.cache(1); err != nil {
			return nil, err
		}
		hasTag = true
	}

	if !hasTag {
		return nil, p.scannerError(tagContext(directive), start_mark, "did not find expected tag URI")
	}
	return s, nil
}

// scanURIEscapes decodes a run of %XX escapes forming one UTF-8 character.
func (p *Parser) scanURIEscapes(directive bool, start_mark yamlh.Mark, s []byte) ([]byte, error) {
	w := 1024
	for w > 0 {
		if err := p.cache(3); err != nil {
			return nil, err
		}
		if !(p.ch(0) == '%' && yamlh.IsHex(p.buffer, p.buffer_pos+1) && yamlh.IsHex(p.buffer, p.buffer_pos+2)) {
			return nil, p.scannerError(tagContext(directive), start_mark, "did not find URI escaped octet")
		}

		octet := byte((yamlh.AsHex(p.buffer, p.buffer_pos+1) << 4) + yamlh.AsHex(p.buffer, p.buffer_pos+2))

		if w == 1024 {
			w = yamlh.Width(octet)
			if w == 0 {
				return nil, p.scannerError(tagContext(directive), start_mark, "found an incorrect leading UTF-8 octet")
			}
		} else if octet&0xC0 != 0x80 {
			return nil, p.scannerError(tagContext(directive), start_mark, "found an incorrect trailing UTF-8 octet")
		}

		s = append(s, octet)
		p.skip()
		p.skip()
		p.skip()
		w--
	}
	return s, nil
}

func (p *Parser) readChomping() int {
	chomping := -1
	if p.ch(0) == '+' {
		chomping = 1
	}
	p.skip()
	return chomping
}

func (p *Parser) scanBlockScalar(literal bool) (yamlh.YamlToken, error) {
	const context = "while scanning a block scalar"

	start_mark := p.mark
	p.skip()

	if err := p.cache(1); err != nil {
		return yamlh.YamlToken{}, err
	}

	// The chomping and indentation indicators may come in either order.
	var chomping, increment int
	if p.ch(0) == '+' || p.ch(0) == '-' {
		chomping = p.readChomping()
		if err := p.cache(1); err != nil {
			return yamlh.YamlToken{}, err
		}
		if yamlh.IsDigit(p.buffer, p.buffer_pos) {
			if p.ch(0) == '0' {
				return yamlh.YamlToken{}, p.scannerError(context, start_mark, "found an indentation indicator equal to 0")
			}
			increment = yamlh.AsDigit(p.buffer, p.buffer_pos)
			p.skip()
		}
	} else if yamlh.IsDigit(p.buffer, p.buffer_pos) {
		if p.ch(0) == '0' {
			return yamlh.YamlToken{}, p.scannerError(context, start_mark, "found an indentation indicator equal to 0")
		}
		increment = yamlh.AsDigit(p.buffer, p.buffer_pos)
		p.skip()
		if err := p.cache(1); err != nil {
			return yamlh.YamlToken{}, err
		}
		if p.ch(0) == '+' || p.ch(0) == '-' {
			chomping = p.readChomping()
		}
	}

	// Eat whitespaces and comments to the end of the line.
	if err := p.skipBlanks(); err != nil {
		return yamlh.YamlToken{}, err
	}
	if p.ch(0) == '#' {
		if err := p.skipToBreak(); err != nil {
			return yamlh.YamlToken{}, err
		}
	}
	if !yamlh.IsBreakZ(p.buffer, p.buffer_pos) {
		return yamlh.YamlToken{}, p.scannerError(context, start_mark, "did not find expected comment or line break")
	}
	if yamlh.IsBreak(p.buffer, p.buffer_pos) {
		if err := p.cache(2); err != nil {
			return yamlh.YamlToken{}, err
		}
		p.skipLine()
	}

	end_mark := p.mark

	var indent int
	if increment > 0 {
		if p.indent >= 0 {
			indent = p.indent + increment
		} else {
			indent = increment
		}
	}

	var s, leading_break, trailing_breaks []byte
	err := p.scanBlockScalarBreaks(&indent, &trailing_breaks, start_mark, &end_mark)
	if err != nil {
		return yamlh.YamlToken{}, err
	}

	if err = p.cache(1); err != nil {
		return yamlh.YamlToken{}, err
	}
	var leading_blank, trailing_blank bool
	for p.mark.Column == indent && !yamlh.IsZ(p.buffer, p.buffer_pos) {
		// We are at the start of a non-empty line.
		trailing_blank = yamlh.IsBlank(p.buffer, p.buffer_pos)

		// Folded scalars join lines with a space unless either side is
		// more indented.
		if !literal && !leading_blank && !trailing_blank && len(leading_break) > 0 && leading_break[0] == '\n' {
			if len(trailing_breaks) == 0 {
				s = append(s, ' ')
			}
		} else {
			s = append(s, leading_break...)
		}
		leading_break = leading_break[:0]

		s = append(s, trailing_breaks...)
		trailing_breaks = trailing_breaks[:0]

		leading_blank = yamlh.IsBlank(p.buffer, p.buffer_pos)

		for !yamlh.IsBreakZ(p.buffer, p.buffer_pos) {
			s = p.read(s)
			if err = p.cache(1); err != nil {
				return yamlh.YamlToken{}, err
			}
		}

		if err = p.cache(2); err != nil {
			return yamlh.YamlToken{}, err
		}
		leading_break = p.readLine(leading_break)

		err = p.scanBlockScalarBreaks(&indent, &trailing_breaks, start_mark, &end_mark)
		if err != nil {
			return yamlh.YamlToken{}, err
		}
	}

	// Chomp the tail.
	if chomping != -1 {
		s = append(s, leading_break...)
	}
	if chomping == 1 {
		s = append(s, trailing_breaks...)
	}

	token := yamlh.YamlToken{
		Type:       yamlh.SCALAR_TOKEN,
		Start_mark: start_mark,
		End_mark:   end_mark,
		Value:      s,
		Style:      yamlh.LITERAL_SCALAR_STYLE,
	}
	if !literal {
		token.Style = yamlh.FOLDED_SCALAR_STYLE
	}
	return token, nil
}

// scanBlockScalarBreaks eats indentation and empty lines inside a block
// scalar, detecting the indentation level when it is still unknown.
func (p *Parser) scanBlockScalarBreaks(indent *int, breaks *[]byte, start_mark yamlh.Mark, end_mark *yamlh.Mark) error {
	*end_mark = p.mark

	max_indent := 0
	for {
		if err := p.cache(1); err != nil {
			return err
		}
		for (*indent == 0 || p.mark.Column < *indent) && yamlh.IsSpace(p.buffer, p.buffer_pos) {
			p.skip()
			if err := p.cache(1); err != nil {
				return err
			}
		}
		if p.mark.Column > max_indent {
			max_indent = p.mark.Column
		}

		if (*indent == 0 || p.mark.Column < *indent) && yamlh.IsTab(p.buffer, p.buffer_pos) {
			return p.scannerError("while scanning a block scalar", start_mark, "found a tab character where an indentation space is expected")
		}

		if !yamlh.IsBreak(p.buffer, p.buffer_pos) {
			break
		}

		if err := p.cache(2); err != nil {
			return err
		}
		*breaks = p.readLine(*breaks)
		*end_mark = p.mark
	}

	if *indent == 0 {
		*indent = max_indent
		if *indent < p.indent+1 {
			*indent = p.indent + 1
		}
		if *indent < 1 {
			*indent = 1
		}
	}
	return nil
}

// Single-character escapes of double-quoted scalars.
var simpleEscapes = map[byte]string{
	'0':  "\x00",
	'a':  "\x07",
	'b':  "\x08",
	't':  "\x09",
	'\t': "\x09",
	'n':  "\x0A",
	'v':  "\x0B",
	'f':  "\x0C",
	'r':  "\x0D",
	'e':  "\x1B",
	' ':  "\x20",
	'"':  "\"",
	'\'': "'",
	'\\': "\\",
	'N':  "\u0085", // NEL
	'_':  "\u00A0", // non-breaking space
	'L':  "\u2028", // LS
	'P':  "\u2029", // PS
}

func appendRune(s []byte, value int) []byte {
	switch {
	case value <= 0x7F:
		return append(s, byte(value))
	case value <= 0x7FF:
		return append(s, byte(0xC0+(value>>6)), byte(0x80+(value&0x3F)))
	case value <= 0xFFFF:
		return append(s, byte(0xE0+(value>>12)), byte(0x80+((value>>6)&0x3F)), byte(0x80+(value&0x3F)))
	}
	return append(s, byte(0xF0+(value>>18)), byte(0x80+((value>>12)&0x3F)), byte(0x80+((value>>6)&0x3F)), byte(0x80+(value&0x3F)))
}

func (p *Parser) scanFlowScalar(single bool) (yamlh.YamlToken, error) {
	const context = "while scanning a quoted scalar"

	start_mark := p.mark
	p.skip()

	quote := byte('"')
	if single {
		quote = '\''
	}

	var s, leading_break, trailing_breaks, whitespaces []byte
	for {
		if err := p.cache(4); err != nil {
			return yamlh.YamlToken{}, err
		}
		if p.isDocumentIndicator('-') || p.isDocumentIndicator('.') {
			return yamlh.YamlToken{}, p.scannerError(context, start_mark, "found unexpected document indicator")
		}
		if yamlh.IsZ(p.buffer, p.buffer_pos) {
			return yamlh.YamlToken{}, p.scannerError(context, start_mark, "found unexpected end of stream")
		}

		// Consume non-blank characters.
		leading_blanks := false
	nonBlank:
		for !yamlh.IsBlankZ(p.buffer, p.buffer_pos) {
			c := p.ch(0)
			switch {
			case single && c == '\'' && p.ch(1) == '\'':
				// An escaped single quote.
				s = append(s, '\'')
				p.skip()
				p.skip()
			case c == quote:
				break nonBlank
			case !single && c == '\\' && yamlh.IsBreak(p.buffer, p.buffer_pos+1):
				// An escaped line break.
				if err := p.cache(3); err != nil {
					return yamlh.YamlToken{}, err
				}
				p.skip()
				p.skipLine()
				leading_blanks = true
				break nonBlank
			case !single && c == '\\':
				var err error
				s, err = p.scanEscape(s, start_mark)
				if err != nil {
					return yamlh.YamlToken{}, err
				}
			default:
				s = p.read(s)
			}
			if err := p.cache(2); err != nil {
				return yamlh.YamlToken{}, err
			}
		}

		if err := p.cache(1); err != nil {
			return yamlh.YamlToken{}, err
		}
		if p.ch(0) == quote {
			break
		}

		// Consume blank characters.
		for yamlh.IsBlank(p.buffer, p.buffer_pos) || yamlh.IsBreak(p.buffer, p.buffer_pos) {
			if yamlh.IsBlank(p.buffer, p.buffer_pos) {
				if !leading_blanks {
					whitespaces = p.read(whitespaces)
				} else {
					p.skip()
				}
			} else {
				if err := p.cache(2); err != nil {
					return yamlh.YamlToken{}, err
				}
				if !leading_blanks {
					whitespaces = whitespaces[:0]
					leading_break = p.readLine(leading_break)
					leading_blanks = true
				} else {
					trailing_breaks = p.readLine(trailing_breaks)
				}
			}
			if err := p.cache(1); err != nil {
				return yamlh.YamlToken{}, err
			}
		}

		// Join the whitespaces or fold line breaks.
		if leading_blanks {
			if len(leading_break) > 0 && leading_break[0] == '\n' {
				if len(trailing_breaks) == 0 {
					s = append(s, ' ')
				} else {
					s = append(s, trailing_breaks...)
				}
			} else {
				s = append(s, leading_break...)
				s = append(s, trailing_breaks...)
			}
			trailing_breaks = trailing_breaks[:0]
			leading_break = leading_break[:0]
		} else {
			s = append(s, whitespaces...)
			whitespaces = whitespaces[:0]
		}
	}

	// Eat the right quote.
	p.skip()

	token := yamlh.YamlToken{
		Type:       yamlh.SCALAR_TOKEN,
		Start_mark: start_mark,
		End_mark:   p.mark,
		Value:      s,
		Style:      yamlh.SINGLE_QUOTED_SCALAR_STYLE,
	}
	if !single {
		token.Style = yamlh.DOUBLE_QUOTED_SCALAR_STYLE
	}
	return token, nil
}

// scanEscape decodes the escape sequence at the buffer position and appends
// it to s.
func (p *Parser) scanEscape(s []byte, start_mark yamlh.Mark) ([]byte, error) {
	const context = "while parsing a quoted scalar"

	code_length := 0
	c := p.ch(1)
	if esc, ok := simpleEscapes[c]; ok {
		s = append(s, esc...)
	} else {
		switch c {
		case 'x':
			code_length = 2
		case 'u':
			code_length = 4
		case 'U':
			code_length = 8
		default:
			return nil, p.scannerError(context, start_mark, "found unknown escape character")
		}
	}
	p.skip()
	p.skip()

	if code_length == 0 {
		return s, nil
	}

	if err := p.cache(code_length); err != nil {
		return nil, err
	}
	var value int
	for k := 0; k < code_length; k++ {
		if !yamlh.IsHex(p.buffer, p.buffer_pos+k) {
			return nil, p.scannerError(context, start_mark, "did not find expected hexdecimal number")
		}
		value = (value << 4) + yamlh.AsHex(p.buffer, p.buffer_pos+k)
	}
	if (value >= 0xD800 && value <= 0xDFFF) || value > 0x10FFFF {
		return nil, p.scannerError(context, start_mark, "found invalid Unicode character escape code")
	}
	s = appendRune(s, value)
	for k := 0; k < code_length; k++ {
		p.skip()
	}
	return s, nil
}

func (p *Parser) scanPlainScalar() (yamlh.YamlToken, error) {
	var s, leading_break, trailing_breaks, whitespaces []byte
	var leading_blanks bool
	var indent = p.indent + 1

	start_mark := p.mark
	end_mark := p.mark

	for {
		if err := p.cache(4); err != nil {
			return yamlh.YamlToken{}, err
		}
		if p.isDocumentIndicator('-') || p.isDocumentIndicator('.') {
			break
		}
		if p.ch(0) == '#' {
			break
		}

		// Consume non-blank characters.
		for !yamlh.IsBlankZ(p.buffer, p.buffer_pos) {
			c := p.ch(0)
			if (c == ':' && yamlh.IsBlankZ(p.buffer, p.buffer_pos+1)) ||
				(p.flow_level > 0 && (c == ',' || c == '?' || c == '[' || c == ']' || c == '{' || c == '}')) {
				break
			}

			// Join pending whitespace or fold pending breaks.
			if leading_blanks {
				if leading_break[0] == '\n' {
					if len(trailing_breaks) == 0 {
						s = append(s, ' ')
					} else {
						s = append(s, trailing_breaks...)
					}
				} else {
					s = append(s, leading_break...)
					s = append(s, trailing_breaks...)
				}
				trailing_breaks = trailing_breaks[:0]
				leading_break = leading_break[:0]
				leading_blanks = false
			} else if len(whitespaces) > 0 {
				s = append(s, whitespaces...)
				whitespaces = whitespaces[:0]
			}

			s = p.read(s)
			end_mark = p.mark
			if err := p.cache(2); err != nil {
				return yamlh.YamlToken{}, err
			}
		}

		if !(yamlh.IsBlank(p.buffer, p.buffer_pos) || yamlh.IsBreak(p.buffer, p.buffer_pos)) {
			break
		}

		if err := p.cache(1); err != nil {
			return yamlh.YamlToken{}, err
		}
		for yamlh.IsBlank(p.buffer, p.buffer_pos) || yamlh.IsBreak(p.buffer, p.buffer_pos) {
			if yamlh.IsBlank(p.buffer, p.buffer_pos) {
				if leading_blanks && p.mark.Column < indent && yamlh.IsTab(p.buffer, p.buffer_pos) {
					return yamlh.YamlToken{}, p.scannerError("while scanning a plain scalar", start_mark,
						"found a tab character that violates indentation")
				}
				if !leading_blanks {
					whitespaces = p.read(whitespaces)
				} else {
					p.skip()
				}
			} else {
				if err := p.cache(2); err != nil {
					return yamlh.YamlToken{}, err
				}
				if !leading_blanks {
					whitespaces = whitespaces[:0]
					leading_break = p.readLine(leading_break)
					leading_blanks = true
				} else {
					trailing_breaks = p.readLine(trailing_breaks)
				}
			}
			if err := p.cache(1); err != nil {
				return yamlh.YamlToken{}, err
			}
		}

		if p.flow_level == 0 && p.mark.Column < indent {
			break
		}
	}

	// A plain scalar that ran over a line break may be followed by a
	// simple key.
	if leading_blanks {
		p.simple_key_allowed = true
	}

	return yamlh.YamlToken{
		Type:       yamlh.SCALAR_TOKEN,
		Start_mark: start_mark,
		End_mark:   end_mark,
		Value:      s,
		Style:      yamlh.PLAIN_SCALAR_STYLE,
	}, nil
}
