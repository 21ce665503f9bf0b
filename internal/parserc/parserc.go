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

	"github.com/willabides/yamlstream/internal/yamlh"
)

// The parser implements the following grammar:
//
// stream               ::= STREAM-START implicit_document? explicit_document* STREAM-END
// implicit_document    ::= block_node DOCUMENT-END*
// explicit_document    ::= DIRECTIVE* DOCUMENT-START block_node? DOCUMENT-END*
// block_node_or_indentless_sequence    ::=
//                          ALIAS
//                          | properties (block_content | indentless_block_sequence)?
//                          | block_content
//                          | indentless_block_sequence
// block_node           ::= ALIAS
//                          | properties block_content?
//                          | block_content
// flow_node            ::= ALIAS
//                          | properties flow_content?
//                          | flow_content
// properties           ::= TAG ANCHOR? | ANCHOR TAG?
// block_content        ::= block_collection | flow_collection | SCALAR
// flow_content         ::= flow_collection | SCALAR
// block_collection     ::= block_sequence | block_mapping
// flow_collection      ::= flow_sequence | flow_mapping
// block_sequence       ::= BLOCK-SEQUENCE-START (BLOCK-ENTRY block_node?)* BLOCK-END
// indentless_sequence  ::= (BLOCK-ENTRY block_node?)+
// block_mapping        ::= BLOCK-MAPPING_START
//                          ((KEY block_node_or_indentless_sequence?)?
//                          (VALUE block_node_or_indentless_sequence?)?)*
//                          BLOCK-END
// flow_sequence        ::= FLOW-SEQUENCE-START
//                          (flow_sequence_entry FLOW-ENTRY)*
//                          flow_sequence_entry?
//                          FLOW-SEQUENCE-END
// flow_sequence_entry  ::= flow_node | KEY flow_node? (VALUE flow_node?)?
// flow_mapping         ::= FLOW-MAPPING-START
//                          (flow_mapping_entry FLOW-ENTRY)*
//                          flow_mapping_entry?
//                          FLOW-MAPPING-END
// flow_mapping_entry   ::= flow_node | KEY flow_node? (VALUE flow_node?)?

// Parse returns the next event. Once STREAM-END has been returned every
// further call returns a NO_EVENT event.
func (p *Parser) Parse() (*yamlh.Event, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.stream_end_produced || p.state == PARSE_END_STATE {
		return &yamlh.Event{}, nil
	}
	return p.stateMachine()
}

// State returns the state the next call to Parse starts in.
func (p *Parser) State() ParserState {
	return p.state
}

func (p *Parser) parserError(problem string, problemMark yamlh.Mark) error {
	return p.fail(yamlh.NewError(yamlh.PARSER_ERROR, problem, problemMark))
}

func (p *Parser) parserContextError(context string, contextMark yamlh.Mark, problem string, problemMark yamlh.Mark) error {
	return p.fail(yamlh.NewContextError(yamlh.PARSER_ERROR, context, contextMark, problem, problemMark))
}

func (p *Parser) pushState(state ParserState) error {
	if err := p.states.Push(state); err != nil {
		return p.fail(err)
	}
	return nil
}

func (p *Parser) popState() {
	p.state = p.states.Pop()
}

func (p *Parser) pushMark(mark yamlh.Mark) error {
	if err := p.marks.Push(mark); err != nil {
		return p.fail(err)
	}
	return nil
}

// State dispatcher.
func (p *Parser) stateMachine() (*yamlh.Event, error) {
	switch p.state {
	case PARSE_STREAM_START_STATE:
		return p.parseStreamStart()
	case PARSE_IMPLICIT_DOCUMENT_START_STATE:
		return p.parseDocumentStart(true)
	case PARSE_DOCUMENT_START_STATE:
		return p.parseDocumentStart(false)
	case PARSE_DOCUMENT_CONTENT_STATE:
		return p.parseDocumentContent()
	case PARSE_DOCUMENT_END_STATE:
		return p.parseDocumentEnd()
	case PARSE_BLOCK_NODE_STATE:
		return p.parseNode(true, false)
	case PARSE_BLOCK_NODE_OR_INDENTLESS_SEQUENCE_STATE:
		return p.parseNode(true, true)
	case PARSE_FLOW_NODE_STATE:
		return p.parseNode(false, false)
	case PARSE_BLOCK_SEQUENCE_FIRST_ENTRY_STATE:
		return p.parseBlockSequenceEntry(true)
	case PARSE_BLOCK_SEQUENCE_ENTRY_STATE:
		return p.parseBlockSequenceEntry(false)
	case PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE:
		return p.parseIndentlessSequenceEntry()
	case PARSE_BLOCK_MAPPING_FIRST_KEY_STATE:
		return p.parseBlockMappingKey(true)
	case PARSE_BLOCK_MAPPING_KEY_STATE:
		return p.parseBlockMappingKey(false)
	case PARSE_BLOCK_MAPPING_VALUE_STATE:
		return p.parseBlockMappingValue()
	case PARSE_FLOW_SEQUENCE_FIRST_ENTRY_STATE:
		return p.parseFlowSequenceEntry(true)
	case PARSE_FLOW_SEQUENCE_ENTRY_STATE:
		return p.parseFlowSequenceEntry(false)
	case PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_KEY_STATE:
		return p.parseFlowSequenceEntryMappingKey()
	case PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE:
		return p.parseFlowSequenceEntryMappingValue()
	case PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE:
		return p.parseFlowSequenceEntryMappingEnd()
	case PARSE_FLOW_MAPPING_FIRST_KEY_STATE:
		return p.parseFlowMappingKey(true)
	case PARSE_FLOW_MAPPING_KEY_STATE:
		return p.parseFlowMappingKey(false)
	case PARSE_FLOW_MAPPING_VALUE_STATE:
		return p.parseFlowMappingValue(false)
	case PARSE_FLOW_MAPPING_EMPTY_VALUE_STATE:
		return p.parseFlowMappingValue(true)
	}
	panic("invalid parser state " + p.state.String())
}

// stream   ::= STREAM-START implicit_document? explicit_document* STREAM-END
//
//	************
func (p *Parser) parseStreamStart() (*yamlh.Event, error) {
	token, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if token.Type != yamlh.STREAM_START_TOKEN {
		return nil, p.parserError("did not find expected <stream-start>", token.Start_mark)
	}
	p.state = PARSE_IMPLICIT_DOCUMENT_START_STATE
	event := &yamlh.Event{
		Type:       yamlh.STREAM_START_EVENT,
		Start_mark: token.Start_mark,
		End_mark:   token.End_mark,
		Encoding:   token.Encoding,
	}
	p.skipToken()
	return event, nil
}

// implicit_document    ::= block_node DOCUMENT-END*
//
//	*
//
// explicit_document    ::= DIRECTIVE* DOCUMENT-START block_node? DOCUMENT-END*
//
//	*************************
func (p *Parser) parseDocumentStart(implicit bool) (*yamlh.Event, error) {
	token, err := p.peekToken()
	if err != nil {
		return nil, err
	}

	// Parse extra document end indicators.
	if !implicit {
		for token.Type == yamlh.DOCUMENT_END_TOKEN {
			p.skipToken()
			token, err = p.peekToken()
			if err != nil {
				return nil, err
			}
		}
	}

	if implicit && token.Type != yamlh.VERSION_DIRECTIVE_TOKEN &&
		token.Type != yamlh.TAG_DIRECTIVE_TOKEN &&
		token.Type != yamlh.DOCUMENT_START_TOKEN &&
		token.Type != yamlh.STREAM_END_TOKEN {
		// An implicit document.
		if _, _, err = p.processDirectives(); err != nil {
			return nil, err
		}
		if err = p.pushState(PARSE_DOCUMENT_END_STATE); err != nil {
			return nil, err
		}
		p.state = PARSE_BLOCK_NODE_STATE
		return &yamlh.Event{
			Type:       yamlh.DOCUMENT_START_EVENT,
			Start_mark: token.Start_mark,
			End_mark:   token.Start_mark,
			Implicit:   true,
		}, nil
	}

	if token.Type != yamlh.STREAM_END_TOKEN {
		// An explicit document.
		start_mark := token.Start_mark
		version_directive, tag_directives, err := p.processDirectives()
		if err != nil {
			return nil, err
		}
		token, err = p.peekToken()
		if err != nil {
			return nil, err
		}
		if token.Type != yamlh.DOCUMENT_START_TOKEN {
			return nil, p.parserError("did not find expected <document start>", token.Start_mark)
		}
		if err = p.pushState(PARSE_DOCUMENT_END_STATE); err != nil {
			return nil, err
		}
		p.state = PARSE_DOCUMENT_CONTENT_STATE
		event := &yamlh.Event{
			Type:              yamlh.DOCUMENT_START_EVENT,
			Start_mark:        start_mark,
			End_mark:          token.End_mark,
			Version_directive: version_directive,
			Tag_directives:    tag_directives,
			Implicit:          false,
		}
		p.skipToken()
		return event, nil
	}

	// The stream end.
	p.state = PARSE_END_STATE
	event := &yamlh.Event{
		Type:       yamlh.STREAM_END_EVENT,
		Start_mark: token.Start_mark,
		End_mark:   token.End_mark,
	}
	p.skipToken()
	return event, nil
}

// explicit_document    ::= DIRECTIVE* DOCUMENT-START block_node? DOCUMENT-END*
//
//	***********
func (p *Parser) parseDocumentContent() (*yamlh.Event, error) {
	token, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	switch token.Type {
	case yamlh.VERSION_DIRECTIVE_TOKEN, yamlh.TAG_DIRECTIVE_TOKEN, yamlh.DOCUMENT_START_TOKEN,
		yamlh.DOCUMENT_END_TOKEN, yamlh.STREAM_END_TOKEN:
		p.popState()
		return processEmptyScalar(token.Start_mark), nil
	}
	return p.parseNode(true, false)
}

// implicit_document    ::= block_node DOCUMENT-END*
//
//	*************
//
// explicit_document    ::= DIRECTIVE* DOCUMENT-START block_node? DOCUMENT-END*
//
//	*************
func (p *Parser) parseDocumentEnd() (*yamlh.Event, error) {
	token, err := p.peekToken()
	if err != nil {
		return nil, err
	}

	start_mark := token.Start_mark
	end_mark := token.Start_mark

	implicit := true
	switch token.Type {
	case yamlh.DOCUMENT_END_TOKEN:
		end_mark = token.End_mark
		p.skipToken()
		implicit = false
	case yamlh.VERSION_DIRECTIVE_TOKEN, yamlh.TAG_DIRECTIVE_TOKEN:
		// Directives belong to the next document and must be separated
		// from this one by '...'.
		return nil, p.parserError("did not find expected <document end> before directive", token.Start_mark)
	}

	p.tag_directives = p.tag_directives[:0]

	p.state = PARSE_DOCUMENT_START_STATE
	return &yamlh.Event{
		Type:       yamlh.DOCUMENT_END_EVENT,
		Start_mark: start_mark,
		End_mark:   end_mark,
		Implicit:   implicit,
	}, nil
}

// resolveTag expands a tag handle against the directives in effect.
func (p *Parser) resolveTag(handle, suffix []byte, start_mark, tag_mark yamlh.Mark) ([]byte, error) {
	if len(handle) == 0 {
		return suffix, nil
	}
	for i := range p.tag_directives {
		td := &p.tag_directives[i]
		if bytes.Equal(td.Handle, handle) {
			tag := append([]byte(nil), td.Prefix...)
			return append(tag, suffix...), nil
		}
	}
	return nil, p.parserContextError("while parsing a node", start_mark, "found undefined tag handle", tag_mark)
}

// block_node_or_indentless_sequence    ::=
//
//	ALIAS
//	*****
//	| properties (block_content | indentless_block_sequence)?
//	  **********  *
//	| block_content | indentless_block_sequence
//	  *
//
// block_node           ::= ALIAS
//
//	*****
//	| properties block_content?
//	  ********** *
//	| block_content
//	  *
//
// flow_node            ::= ALIAS
//
//	*****
//	| properties flow_content?
//	  ********** *
//	| flow_content
//	  *
//
// properties           ::= TAG ANCHOR? | ANCHOR TAG?
//
//	*************************
func (p *Parser) parseNode(block, indentless_sequence bool) (*yamlh.Event, error) {
	token, err := p.peekToken()
	if err != nil {
		return nil, err
	}

	if token.Type == yamlh.ALIAS_TOKEN {
		p.popState()
		event := &yamlh.Event{
			Type:       yamlh.ALIAS_EVENT,
			Start_mark: token.Start_mark,
			End_mark:   token.End_mark,
			Anchor:     token.Value,
		}
		p.skipToken()
		return event, nil
	}

	start_mark := token.Start_mark
	end_mark := token.Start_mark

	var tag_token bool
	var tag_handle, tag_suffix, anchor []byte
	var tag_mark yamlh.Mark

	// Properties come in either order.
	for i := 0; i < 2; i++ {
		switch {
		case token.Type == yamlh.ANCHOR_TOKEN && anchor == nil:
			anchor = token.Value
			if i == 0 {
				start_mark = token.Start_mark
			}
			end_mark = token.End_mark
		case token.Type == yamlh.TAG_TOKEN && !tag_token:
			tag_token = true
			tag_handle = token.Value
			tag_suffix = token.Suffix
			tag_mark = token.Start_mark
			if i == 0 {
				start_mark = token.Start_mark
			}
			end_mark = token.End_mark
		default:
			i = 2
			continue
		}
		p.skipToken()
		token, err = p.peekToken()
		if err != nil {
			return nil, err
		}
	}

	var tag []byte
	if tag_token {
		tag, err = p.resolveTag(tag_handle, tag_suffix, start_mark, tag_mark)
		if err != nil {
			return nil, err
		}
	}

	implicit := len(tag) == 0

	if indentless_sequence && token.Type == yamlh.BLOCK_ENTRY_TOKEN {
		end_mark = token.End_mark
		p.state = PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE
		return &yamlh.Event{
			Type:       yamlh.SEQUENCE_START_EVENT,
			Start_mark: start_mark,
			End_mark:   end_mark,
			Anchor:     anchor,
			Tag:        tag,
			Implicit:   implicit,
			Style:      yamlh.YamlStyle(yamlh.BLOCK_SEQUENCE_STYLE),
		}, nil
	}

	switch {
	case token.Type == yamlh.SCALAR_TOKEN:
		var plain_implicit, quoted_implicit bool
		end_mark = token.End_mark
		if (len(tag) == 0 && token.Style == yamlh.PLAIN_SCALAR_STYLE) || (len(tag) == 1 && tag[0] == '!') {
			plain_implicit = true
		} else if len(tag) == 0 {
			quoted_implicit = true
		}
		p.popState()
		event := &yamlh.Event{
			Type:            yamlh.SCALAR_EVENT,
			Start_mark:      start_mark,
			End_mark:        end_mark,
			Anchor:          anchor,
			Tag:             tag,
			Value:           token.Value,
			Implicit:        plain_implicit,
			Quoted_implicit: quoted_implicit,
			Style:           yamlh.YamlStyle(token.Style),
		}
		p.skipToken()
		return event, nil

	case token.Type == yamlh.FLOW_SEQUENCE_START_TOKEN:
		p.state = PARSE_FLOW_SEQUENCE_FIRST_ENTRY_STATE
		return collectionStart(yamlh.SEQUENCE_START_EVENT, start_mark, token.End_mark, anchor, tag,
			yamlh.YamlStyle(yamlh.FLOW_SEQUENCE_STYLE)), nil

	case token.Type == yamlh.FLOW_MAPPING_START_TOKEN:
		p.state = PARSE_FLOW_MAPPING_FIRST_KEY_STATE
		return collectionStart(yamlh.MAPPING_START_EVENT, start_mark, token.End_mark, anchor, tag,
			yamlh.YamlStyle(yamlh.FLOW_MAPPING_STYLE)), nil

	case block && token.Type == yamlh.BLOCK_SEQUENCE_START_TOKEN:
		p.state = PARSE_BLOCK_SEQUENCE_FIRST_ENTRY_STATE
		return collectionStart(yamlh.SEQUENCE_START_EVENT, start_mark, token.End_mark, anchor, tag,
			yamlh.YamlStyle(yamlh.BLOCK_SEQUENCE_STYLE)), nil

	case block && token.Type == yamlh.BLOCK_MAPPING_START_TOKEN:
		p.state = PARSE_BLOCK_MAPPING_FIRST_KEY_STATE
		return collectionStart(yamlh.MAPPING_START_EVENT, start_mark, token.End_mark, anchor, tag,
			yamlh.YamlStyle(yamlh.BLOCK_MAPPING_STYLE)), nil

	case len(anchor) > 0 || len(tag) > 0:
		// Properties with no content stand for an empty scalar.
		p.popState()
		return &yamlh.Event{
			Type:       yamlh.SCALAR_EVENT,
			Start_mark: start_mark,
			End_mark:   end_mark,
			Anchor:     anchor,
			Tag:        tag,
			Implicit:   implicit,
			Style:      yamlh.YamlStyle(yamlh.PLAIN_SCALAR_STYLE),
		}, nil
	}

	context := "while parsing a flow node"
	if block {
		context = "while parsing a block node"
	}
	return nil, p.parserContextError(context, start_mark, "did not find expected node content", token.Start_mark)
}

func collectionStart(typ yamlh.EventType, start_mark, end_mark yamlh.Mark, anchor, tag []byte, style yamlh.YamlStyle) *yamlh.Event {
	return &yamlh.Event{
		Type:       typ,
		Start_mark: start_mark,
		End_mark:   end_mark,
		Anchor:     anchor,
		Tag:        tag,
		Implicit:   len(tag) == 0,
		Style:      style,
	}
}

// collectionEnd pops the state and the start mark of the collection and
// returns its end event for token, which it consumes.
func (p *Parser) collectionEnd(typ yamlh.EventType, token *yamlh.YamlToken) *yamlh.Event {
	p.popState()
	p.marks.Pop()
	event := &yamlh.Event{
		Type:       typ,
		Start_mark: token.Start_mark,
		End_mark:   token.End_mark,
	}
	p.skipToken()
	return event
}

// unmatched reports a token that does not fit the collection whose start
// mark is on top of the marks stack.
func (p *Parser) unmatched(context, problem string, token *yamlh.YamlToken) error {
	context_mark := p.marks.Pop()
	return p.parserContextError(context, context_mark, problem, token.Start_mark)
}

// firstToken records the mark of a collection start token and consumes it.
func (p *Parser) firstToken() error {
	token, err := p.peekToken()
	if err != nil {
		return err
	}
	if err = p.pushMark(token.Start_mark); err != nil {
		return err
	}
	p.skipToken()
	return nil
}

// block_sequence ::= BLOCK-SEQUENCE-START (BLOCK-ENTRY block_node?)* BLOCK-END
//
//	********************  *********** *             *********
func (p *Parser) parseBlockSequenceEntry(first bool) (*yamlh.Event, error) {
	if first {
		if err := p.firstToken(); err != nil {
			return nil, err
		}
	}

	token, err := p.peekToken()
	if err != nil {
		return nil, err
	}

	switch token.Type {
	case yamlh.BLOCK_ENTRY_TOKEN:
		mark := token.End_mark
		p.skipToken()
		token, err = p.peekToken()
		if err != nil {
			return nil, err
		}
		if token.Type != yamlh.BLOCK_ENTRY_TOKEN && token.Type != yamlh.BLOCK_END_TOKEN {
			if err = p.pushState(PARSE_BLOCK_SEQUENCE_ENTRY_STATE); err != nil {
				return nil, err
			}
			return p.parseNode(true, false)
		}
		p.state = PARSE_BLOCK_SEQUENCE_ENTRY_STATE
		return processEmptyScalar(mark), nil
	case yamlh.BLOCK_END_TOKEN:
		return p.collectionEnd(yamlh.SEQUENCE_END_EVENT, token), nil
	}
	return nil, p.unmatched("while parsing a block collection", "did not find expected '-' indicator", token)
}

// indentless_sequence  ::= (BLOCK-ENTRY block_node?)+
//
//	*********** *
func (p *Parser) parseIndentlessSequenceEntry() (*yamlh.Event, error) {
	token, err := p.peekToken()
	if err != nil {
		return nil, err
	}

	if token.Type == yamlh.BLOCK_ENTRY_TOKEN {
		mark := token.End_mark
		p.skipToken()
		token, err = p.peekToken()
		if err != nil {
			return nil, err
		}
		if token.Type != yamlh.BLOCK_ENTRY_TOKEN &&
			token.Type != yamlh.KEY_TOKEN &&
			token.Type != yamlh.VALUE_TOKEN &&
			token.Type != yamlh.BLOCK_END_TOKEN {
			if err = p.pushState(PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE); err != nil {
				return nil, err
			}
			return p.parseNode(true, false)
		}
		p.state = PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE
		return processEmptyScalar(mark), nil
	}

	// The sequence ends without a token of its own.
	p.popState()
	return &yamlh.Event{
		Type:       yamlh.SEQUENCE_END_EVENT,
		Start_mark: token.Start_mark,
		End_mark:   token.Start_mark,
	}, nil
}

// block_mapping        ::= BLOCK-MAPPING_START
//
//	*******************
//	((KEY block_node_or_indentless_sequence?)?
//	  *** *
//	(VALUE block_node_or_indentless_sequence?)?)*
//
//	BLOCK-END
//	*********
func (p *Parser) parseBlockMappingKey(first bool) (*yamlh.Event, error) {
	if first {
		if err := p.firstToken(); err != nil {
			return nil, err
		}
	}

	token, err := p.peekToken()
	if err != nil {
		return nil, err
	}

	switch token.Type {
	case yamlh.KEY_TOKEN:
		mark := token.End_mark
		p.skipToken()
		token, err = p.peekToken()
		if err != nil {
			return nil, err
		}
		if token.Type != yamlh.KEY_TOKEN &&
			token.Type != yamlh.VALUE_TOKEN &&
			token.Type != yamlh.BLOCK_END_TOKEN {
			if err = p.pushState(PARSE_BLOCK_MAPPING_VALUE_STATE); err != nil {
				return nil, err
			}
			return p.parseNode(true, true)
		}
		p.state = PARSE_BLOCK_MAPPING_VALUE_STATE
		return processEmptyScalar(mark), nil
	case yamlh.BLOCK_END_TOKEN:
		return p.collectionEnd(yamlh.MAPPING_END_EVENT, token), nil
	}
	return nil, p.unmatched("while parsing a block mapping", "did not find expected key", token)
}

// block_mapping        ::= BLOCK-MAPPING_START
//
//	((KEY block_node_or_indentless_sequence?)?
//
//	(VALUE block_node_or_indentless_sequence?)?)*
//	 ***** *
//	BLOCK-END
func (p *Parser) parseBlockMappingValue() (*yamlh.Event, error) {
	token, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if token.Type == yamlh.VALUE_TOKEN {
		mark := token.End_mark
		p.skipToken()
		token, err = p.peekToken()
		if err != nil {
			return nil, err
		}
		if token.Type != yamlh.KEY_TOKEN &&
			token.Type != yamlh.VALUE_TOKEN &&
			token.Type != yamlh.BLOCK_END_TOKEN {
			if err = p.pushState(PARSE_BLOCK_MAPPING_KEY_STATE); err != nil {
				return nil, err
			}
			return p.parseNode(true, true)
		}
		p.state = PARSE_BLOCK_MAPPING_KEY_STATE
		return processEmptyScalar(mark), nil
	}
	p.state = PARSE_BLOCK_MAPPING_KEY_STATE
	return processEmptyScalar(token.Start_mark), nil
}

// flow_sequence        ::= FLOW-SEQUENCE-START
//
//	*******************
//	(flow_sequence_entry FLOW-ENTRY)*
//	 *                   **********
//	flow_sequence_entry?
//	*
//	FLOW-SEQUENCE-END
//	*****************
//
// flow_sequence_entry  ::= flow_node | KEY flow_node? (VALUE flow_node?)?
//
//	*
func (p *Parser) parseFlowSequenceEntry(first bool) (*yamlh.Event, error) {
	if first {
		if err := p.firstToken(); err != nil {
			return nil, err
		}
	}
	token, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if token.Type != yamlh.FLOW_SEQUENCE_END_TOKEN {
		if !first {
			if token.Type != yamlh.FLOW_ENTRY_TOKEN {
				return nil, p.unmatched("while parsing a flow sequence", "did not find expected ',' or ']'", token)
			}
			p.skipToken()
			token, err = p.peekToken()
			if err != nil {
				return nil, err
			}
		}

		if token.Type == yamlh.KEY_TOKEN {
			// A single pair mapping inside a flow sequence: [a: b].
			p.state = PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_KEY_STATE
			event := &yamlh.Event{
				Type:       yamlh.MAPPING_START_EVENT,
				Start_mark: token.Start_mark,
				End_mark:   token.End_mark,
				Implicit:   true,
				Style:      yamlh.YamlStyle(yamlh.FLOW_MAPPING_STYLE),
			}
			p.skipToken()
			return event, nil
		}
		if token.Type != yamlh.FLOW_SEQUENCE_END_TOKEN {
			if err = p.pushState(PARSE_FLOW_SEQUENCE_ENTRY_STATE); err != nil {
				return nil, err
			}
			return p.parseNode(false, false)
		}
	}
	return p.collectionEnd(yamlh.SEQUENCE_END_EVENT, token), nil
}

// flow_sequence_entry  ::= flow_node | KEY flow_node? (VALUE flow_node?)?
//
//	*** *
func (p *Parser) parseFlowSequenceEntryMappingKey() (*yamlh.Event, error) {
	token, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if token.Type != yamlh.VALUE_TOKEN &&
		token.Type != yamlh.FLOW_ENTRY_TOKEN &&
		token.Type != yamlh.FLOW_SEQUENCE_END_TOKEN {
		if err = p.pushState(PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE); err != nil {
			return nil, err
		}
		return p.parseNode(false, false)
	}
	mark := token.End_mark
	p.skipToken()
	p.state = PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE
	return processEmptyScalar(mark), nil
}

// flow_sequence_entry  ::= flow_node | KEY flow_node? (VALUE flow_node?)?
//
//	***** *
func (p *Parser) parseFlowSequenceEntryMappingValue() (*yamlh.Event, error) {
	token, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if token.Type == yamlh.VALUE_TOKEN {
		p.skipToken()
		token, err = p.peekToken()
		if err != nil {
			return nil, err
		}
		if token.Type != yamlh.FLOW_ENTRY_TOKEN && token.Type != yamlh.FLOW_SEQUENCE_END_TOKEN {
			if err = p.pushState(PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE); err != nil {
				return nil, err
			}
			return p.parseNode(false, false)
		}
	}
	p.state = PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE
	return processEmptyScalar(token.Start_mark), nil
}

// flow_sequence_entry  ::= flow_node | KEY flow_node? (VALUE flow_node?)?
//
//	*
func (p *Parser) parseFlowSequenceEntryMappingEnd() (*yamlh.Event, error) {
	token, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	p.state = PARSE_FLOW_SEQUENCE_ENTRY_STATE
	return &yamlh.Event{
		Type:       yamlh.MAPPING_END_EVENT,
		Start_mark: token.Start_mark,
		End_mark:   token.Start_mark,
	}, nil
}

// flow_mapping         ::= FLOW-MAPPING-START
//
//	******************
//	(flow_mapping_entry FLOW-ENTRY)*
//	 *                  **********
//	flow_mapping_entry?
//	******************
//	FLOW-MAPPING-END
//	****************
//
// flow_mapping_entry   ::= flow_node | KEY flow_node? (VALUE flow_node?)?
//   - *** *
func (p *Parser) parseFlowMappingKey(first bool) (*yamlh.Event, error) {
	if first {
		if err := p.firstToken(); err != nil {
			return nil, err
		}
	}

	token, err := p.peekToken()
	if err != nil {
		return nil, err
	}

	if token.Type != yamlh.FLOW_MAPPING_END_TOKEN {
		if !first {
			if token.Type != yamlh.FLOW_ENTRY_TOKEN {
				return nil, p.unmatched("while parsing a flow mapping", "did not find expected ',' or '}'", token)
			}
			p.skipToken()
			token, err = p.peekToken()
			if err != nil {
				return nil, err
			}
		}

		if token.Type == yamlh.KEY_TOKEN {
			p.skipToken()
			token, err = p.peekToken()
			if err != nil {
				return nil, err
			}
			if token.Type != yamlh.VALUE_TOKEN &&
				token.Type != yamlh.FLOW_ENTRY_TOKEN &&
				token.Type != yamlh.FLOW_MAPPING_END_TOKEN {
				if err = p.pushState(PARSE_FLOW_MAPPING_VALUE_STATE); err != nil {
					return nil, err
				}
				return p.parseNode(false, false)
			}
			p.state = PARSE_FLOW_MAPPING_VALUE_STATE
			return processEmptyScalar(token.Start_mark), nil
		}
		if token.Type != yamlh.FLOW_MAPPING_END_TOKEN {
			// A lone key with no ':' gets an empty value.
			if err = p.pushState(PARSE_FLOW_MAPPING_EMPTY_VALUE_STATE); err != nil {
				return nil, err
			}
			return p.parseNode(false, false)
		}
	}
	return p.collectionEnd(yamlh.MAPPING_END_EVENT, token), nil
}

// flow_mapping_entry   ::= flow_node | KEY flow_node? (VALUE flow_node?)?
//   - ***** *
func (p *Parser) parseFlowMappingValue(empty bool) (*yamlh.Event, error) {
	token, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if empty {
		p.state = PARSE_FLOW_MAPPING_KEY_STATE
		return processEmptyScalar(token.Start_mark), nil
	}
	if token.Type == yamlh.VALUE_TOKEN {
		p.skipToken()
		token, err = p.peekToken()
		if err != nil {
			return nil, err
		}
		if token.Type != yamlh.FLOW_ENTRY_TOKEN && token.Type != yamlh.FLOW_MAPPING_END_TOKEN {
			if err = p.pushState(PARSE_FLOW_MAPPING_KEY_STATE); err != nil {
				return nil, err
			}
			return p.parseNode(false, false)
		}
	}
	p.state = PARSE_FLOW_MAPPING_KEY_STATE
	return processEmptyScalar(token.Start_mark), nil
}

// Generate an empty scalar event.
func processEmptyScalar(mark yamlh.Mark) *yamlh.Event {
	return &yamlh.Event{
		Type:       yamlh.SCALAR_EVENT,
		Start_mark: mark,
		End_mark:   mark,
		Implicit:   true,
		Style:      yamlh.YamlStyle(yamlh.PLAIN_SCALAR_STYLE),
	}
}

// processDirectives consumes the directives before a document and makes
// the default tag handles available.
func (p *Parser) processDirectives() (*yamlh.VersionDirective, []yamlh.TagDirective, error) {
	var version_directive *yamlh.VersionDirective
	var tag_directives []yamlh.TagDirective

	token, err := p.peekToken()
	if err != nil {
		return nil, nil, err
	}

	for token.Type == yamlh.VERSION_DIRECTIVE_TOKEN || token.Type == yamlh.TAG_DIRECTIVE_TOKEN {
		if token.Type == yamlh.VERSION_DIRECTIVE_TOKEN {
			if version_directive != nil {
				return nil, nil, p.parserError("found duplicate %YAML directive", token.Start_mark)
			}
			if token.Major != 1 || (token.Minor != 1 && token.Minor != 2) {
				return nil, nil, p.parserError("found incompatible YAML document", token.Start_mark)
			}
			version_directive = &yamlh.VersionDirective{
				Major: token.Major,
				Minor: token.Minor,
			}
		} else {
			value := yamlh.TagDirective{
				Handle: token.Value,
				Prefix: token.Prefix,
			}
			if err = p.appendTagDirective(value, false, token.Start_mark); err != nil {
				return nil, nil, err
			}
			tag_directives = append(tag_directives, value)
		}

		p.skipToken()
		token, err = p.peekToken()
		if err != nil {
			return nil, nil, err
		}
	}

	for i := range yamlh.DefaultTagDirectives {
		if err = p.appendTagDirective(yamlh.DefaultTagDirectives[i], true, token.Start_mark); err != nil {
			return nil, nil, err
		}
	}
	return version_directive, tag_directives, nil
}

func (p *Parser) appendTagDirective(value yamlh.TagDirective, allow_duplicates bool, mark yamlh.Mark) error {
	for i := range p.tag_directives {
		if bytes.Equal(value.Handle, p.tag_directives[i].Handle) {
			if allow_duplicates {
				return nil
			}
			return p.parserError("found duplicate %TAG directive", mark)
		}
	}
	p.tag_directives = append(p.tag_directives, yamlh.TagDirective{
		Handle: append([]byte(nil), value.Handle...),
		Prefix: append([]byte(nil), value.Prefix...),
	})
	return nil
}
