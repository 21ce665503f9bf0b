package emitter

import (
	"github.com/willabides/yamlstream/internal/yamlh"
)

// expect DOCUMENT-START or STREAM-END.
func emitDocumentStart(e *Emitter, event *yamlh.Event, first bool) error {
	if event.Type == yamlh.DOCUMENT_START_EVENT {
		return emitDocumentStartEvent(e, event, first)
	}

	if event.Type == yamlh.STREAM_END_EVENT {
		if e.openEnded == 2 {
			err := writeIndicator(e, []byte("..."), true, false, false)
			if err != nil {
				return err
			}
			err = writeIndent(e)
			if err != nil {
				return err
			}
		}
		e.openEnded = 0
		e.state = emitEndState
		return e.flush()
	}

	return e.emitterError("expected DOCUMENT-START or STREAM-END", event)
}

func emitDocumentStartEvent(e *Emitter, event *yamlh.Event, first bool) error {
	if event.Version_directive != nil {
		err := analyzeVersionDirective(e, event)
		if err != nil {
			return err
		}
	}

	for i := 0; i < len(event.Tag_directives); i++ {
		tag_directive := &event.Tag_directives[i]
		err := analyzeTagDirective(e, event, tag_directive)
		if err != nil {
			return err
		}
		err = e.appendTagDirective(tag_directive, false, event)
		if err != nil {
			return err
		}
	}

	for i := 0; i < len(yamlh.DefaultTagDirectives); i++ {
		tag_directive := &yamlh.DefaultTagDirectives[i]
		err := e.appendTagDirective(tag_directive, true, event)
		if err != nil {
			return err
		}
	}

	implicit := event.Implicit
	if !first || e.canonical {
		implicit = false
	}

	if e.openEnded > 0 && (event.Version_directive != nil || len(event.Tag_directives) > 0) {
		err := writeIndicator(e, []byte("..."), true, false, false)
		if err != nil {
			return err
		}
		err = writeIndent(e)
		if err != nil {
			return err
		}
	}
	e.openEnded = 0

	if event.Version_directive != nil {
		implicit = false
		err := writeIndicator(e, []byte("%YAML"), true, false, false)
		if err != nil {
			return err
		}
		version := []byte("1.1")
		if event.Version_directive.Minor == 2 {
			version = []byte("1.2")
		}
		err = writeIndicator(e, version, true, false, false)
		if err != nil {
			return err
		}
		err = writeIndent(e)
		if err != nil {
			return err
		}
	}

	if len(event.Tag_directives) > 0 {
		implicit = false
		for i := 0; i < len(event.Tag_directives); i++ {
			tag_directive := &event.Tag_directives[i]
			err := writeIndicator(e, []byte("%TAG"), true, false, false)
			if err != nil {
				return err
			}
			err = writeTagHandle(e, tag_directive.Handle)
			if err != nil {
				return err
			}
			err = writeTagContent(e, tag_directive.Prefix, true)
			if err != nil {
				return err
			}
			err = writeIndent(e)
			if err != nil {
				return err
			}
		}
	}

	if !implicit {
		err := writeIndent(e)
		if err != nil {
			return err
		}
		err = writeIndicator(e, []byte("---"), true, false, false)
		if err != nil {
			return err
		}
		err = writeIndent(e)
		if err != nil {
			return err
		}
	}

	e.lastClosed = nil
	e.state = emitDocumentContentState
	return nil
}

// Determine an acceptable scalar style.
func selectScalarStyle(e *Emitter, event *yamlh.Event) error {
	no_tag := len(e.tagData.Handle) == 0 && len(e.tagData.Suffix) == 0
	if no_tag && !event.Implicit && !event.Quoted_implicit {
		return e.emitterError("neither tag nor implicit flags are specified", event)
	}

	style := event.Scalar_style()
	if style == yamlh.ANY_SCALAR_STYLE {
		switch {
		case len(e.scalarData.value) == 0:
			style = yamlh.SINGLE_QUOTED_SCALAR_STYLE
		case len(e.scalarData.value) > e.width:
			style = yamlh.DOUBLE_QUOTED_SCALAR_STYLE
		default:
			style = yamlh.PLAIN_SCALAR_STYLE
		}
	}
	if e.canonical {
		style = yamlh.DOUBLE_QUOTED_SCALAR_STYLE
	}
	if e.simpleKeyContext && e.scalarData.multiline {
		style = yamlh.DOUBLE_QUOTED_SCALAR_STYLE
	}

	if style == yamlh.PLAIN_SCALAR_STYLE {
		if e.flowLevel > 0 && !e.scalarData.flowPlainAllowed ||
			e.flowLevel == 0 && !e.scalarData.blockPlainAllowed {
			style = yamlh.SINGLE_QUOTED_SCALAR_STYLE
		}
		if len(e.scalarData.value) == 0 && (e.flowLevel > 0 || e.simpleKeyContext || e.rootContext) {
			style = yamlh.SINGLE_QUOTED_SCALAR_STYLE
		}
		if no_tag && !event.Implicit {
			style = yamlh.SINGLE_QUOTED_SCALAR_STYLE
		}
	}
	if style == yamlh.SINGLE_QUOTED_SCALAR_STYLE {
		if !e.scalarData.singleQuotedAllowed {
			style = yamlh.DOUBLE_QUOTED_SCALAR_STYLE
		}
	}
	if style == yamlh.LITERAL_SCALAR_STYLE || style == yamlh.FOLDED_SCALAR_STYLE {
		if !e.scalarData.blockAllowed || e.flowLevel > 0 || e.simpleKeyContext {
			style = yamlh.DOUBLE_QUOTED_SCALAR_STYLE
		}
	}

	if no_tag && !event.Quoted_implicit && style != yamlh.PLAIN_SCALAR_STYLE {
		e.tagData.Handle = []byte{'!'}
	}
	e.scalarData.style = style
	return nil
}

// stateMachine dispatches event to the handler for the current state.
func stateMachine(e *Emitter, event *yamlh.Event) error {
	switch e.state {
	case emitStreamStartState:
		return emitStreamStart(e, event)

	case emitFirstDocumentStartState:
		return emitDocumentStart(e, event, true)

	case emitDocumentStartState:
		return emitDocumentStart(e, event, false)

	case emitDocumentContentState:
		return emitDocumentContent(e, event)

	case emitDocumentEndState:
		return emitDocumentEnd(e, event)

	case emitFlowSequenceFirstItemState:
		return emitFlowSequenceItem(e, event, true)

	case emitFlowSequenceItemState:
		return emitFlowSequenceItem(e, event, false)

	case emitFlowMappingFirstKeyState:
		return emitFlowMappingKey(e, event, true)

	case emitFlowMappingKeyState:
		return emitFlowMappingKey(e, event, false)

	case emitFlowMappingSimpleValueState:
		return emitFlowMappingValue(e, event, true)

	case emitFlowMappingValueState:
		return emitFlowMappingValue(e, event, false)

	case emitBlockSequenceFirstItemState:
		return emitBlockSequenceItem(e, event, true)

	case emitBlockSequenceItemState:
		return emitBlockSequenceItem(e, event, false)

	case emitBlockMappingFirstKeyState:
		return emitBlockMappingKey(e, event, true)

	case emitBlockMappingKeyState:
		return emitBlockMappingKey(e, event, false)

	case emitBlockMappingSimpleValueState:
		return emitBlockMappingValue(e, event, true)

	case emitBlockMappingValueState:
		return emitBlockMappingValue(e, event, false)

	case emitEndState:
		return e.emitterError("expected nothing after STREAM-END", event)
	}
	panic("invalid emitter state " + e.state.String())
}

// expect STREAM-START.
func emitStreamStart(e *Emitter, event *yamlh.Event) error {
	if event.Type != yamlh.STREAM_START_EVENT {
		return e.emitterError("expected STREAM-START", event)
	}
	if e.encoding == yamlh.ANY_ENCODING {
		e.encoding = event.Encoding
		if e.encoding == yamlh.ANY_ENCODING {
			e.encoding = yamlh.UTF8_ENCODING
		}
	}
	if e.indent < 2 || e.indent > 9 {
		e.indent = 2
	}
	if e.width >= 0 && e.width <= e.indent*2 {
		e.width = 80
	}
	if e.width < 0 {
		e.width = 1<<31 - 1
	}

	e.indentLevel = -1
	e.line = 0
	e.column = 0
	e.lastCharWhitespace = true
	e.lastCharIndent = true

	if e.encoding != yamlh.UTF8_ENCODING {
		err := writeBom(e)
		if err != nil {
			return err
		}
	}
	e.state = emitFirstDocumentStartState
	return nil
}

// expect the root node.
func emitDocumentContent(e *Emitter, event *yamlh.Event) error {
	if err := e.pushState(emitDocumentEndState); err != nil {
		return err
	}
	return emitNode(e, event, true, false)
}

// expect DOCUMENT-END.
func emitDocumentEnd(e *Emitter, event *yamlh.Event) error {
	if event.Type != yamlh.DOCUMENT_END_EVENT {
		return e.emitterError("expected DOCUMENT-END", event)
	}
	err := writeIndent(e)
	if err != nil {
		return err
	}
	if !event.Implicit {
		err = writeIndicator(e, []byte("..."), true, false, false)
		if err != nil {
			return err
		}
		err = writeIndent(e)
		if err != nil {
			return err
		}
	}
	e.state = emitDocumentStartState
	e.tagDirectives = e.tagDirectives[:0]
	return e.flush()
}

// expect a flow item node.
func emitFlowSequenceItem(e *Emitter, event *yamlh.Event, first bool) error {
	var err error
	if first {
		err = writeIndicator(e, []byte{'['}, true, true, false)
		if err != nil {
			return err
		}
		err = e.increaseIndent(true, false)
		if err != nil {
			return err
		}
		e.flowLevel++
	}

	if event.Type == yamlh.SEQUENCE_END_EVENT {
		e.flowLevel--
		e.popIndent()
		if e.canonical && !first {
			err = writeIndicator(e, []byte{','}, false, false, false)
			if err != nil {
				return err
			}
			err = writeIndent(e)
			if err != nil {
				return err
			}
		}
		err = writeIndicator(e, []byte{']'}, false, false, false)
		if err != nil {
			return err
		}
		e.closeCollection()
		e.popState()
		return nil
	}

	if !first {
		err = writeIndicator(e, []byte{','}, false, false, false)
		if err != nil {
			return err
		}
	}

	if e.canonical || e.column > e.width {
		err = writeIndent(e)
		if err != nil {
			return err
		}
	}
	if err = e.pushState(emitFlowSequenceItemState); err != nil {
		return err
	}
	return emitNode(e, event, false, false)
}

// expect a flow key node.
func emitFlowMappingKey(e *Emitter, event *yamlh.Event, first bool) error {
	var err error
	if first {
		err = writeIndicator(e, []byte{'{'}, true, true, false)
		if err != nil {
			return err
		}
		err = e.increaseIndent(true, false)
		if err != nil {
			return err
		}
		e.flowLevel++
	}

	if event.Type == yamlh.MAPPING_END_EVENT {
		e.flowLevel--
		e.popIndent()
		if e.canonical && !first {
			err = writeIndicator(e, []byte{','}, false, false, false)
			if err != nil {
				return err
			}
			err = writeIndent(e)
			if err != nil {
				return err
			}
		}
		err = writeIndicator(e, []byte{'}'}, false, false, false)
		if err != nil {
			return err
		}
		e.closeCollection()
		e.popState()
		return nil
	}

	if !first {
		err = writeIndicator(e, []byte{','}, false, false, false)
		if err != nil {
			return err
		}
	}

	if e.canonical || e.column > e.width {
		err = writeIndent(e)
		if err != nil {
			return err
		}
	}

	if !e.canonical && checkSimpleKey(e) {
		if err = e.pushState(emitFlowMappingSimpleValueState); err != nil {
			return err
		}
		return emitNode(e, event, false, true)
	}
	err = writeIndicator(e, []byte{'?'}, true, false, false)
	if err != nil {
		return err
	}
	if err = e.pushState(emitFlowMappingValueState); err != nil {
		return err
	}
	return emitNode(e, event, false, false)
}

// expect a flow value node.
func emitFlowMappingValue(e *Emitter, event *yamlh.Event, simple bool) error {
	var err error
	if simple {
		err = writeIndicator(e, []byte{':'}, false, false, false)
		if err != nil {
			return err
		}
	} else {
		if e.canonical || e.column > e.width {
			err = writeIndent(e)
			if err != nil {
				return err
			}
		}
		err = writeIndicator(e, []byte{':'}, true, false, false)
		if err != nil {
			return err
		}
	}
	if err = e.pushState(emitFlowMappingKeyState); err != nil {
		return err
	}
	return emitNode(e, event, false, false)
}

// expect a block item node.
func emitBlockSequenceItem(e *Emitter, event *yamlh.Event, first bool) error {
	if first {
		if err := e.increaseIndent(false, false); err != nil {
			return err
		}
	}
	if event.Type == yamlh.SEQUENCE_END_EVENT {
		e.popIndent()
		e.closeCollection()
		e.popState()
		return nil
	}
	err := writeIndent(e)
	if err != nil {
		return err
	}
	err = writeIndicator(e, []byte{'-'}, true, false, true)
	if err != nil {
		return err
	}
	if err = e.pushState(emitBlockSequenceItemState); err != nil {
		return err
	}
	return emitNode(e, event, false, false)
}

// expect a block key node.
func emitBlockMappingKey(e *Emitter, event *yamlh.Event, first bool) error {
	if first {
		if err := e.increaseIndent(false, false); err != nil {
			return err
		}
	}
	if event.Type == yamlh.MAPPING_END_EVENT {
		e.popIndent()
		e.closeCollection()
		e.popState()
		return nil
	}
	err := writeIndent(e)
	if err != nil {
		return err
	}
	if checkSimpleKey(e) {
		if err = e.pushState(emitBlockMappingSimpleValueState); err != nil {
			return err
		}
		return emitNode(e, event, false, true)
	}
	err = writeIndicator(e, []byte{'?'}, true, false, true)
	if err != nil {
		return err
	}
	if err = e.pushState(emitBlockMappingValueState); err != nil {
		return err
	}
	return emitNode(e, event, false, false)
}

// expect a block value node.
func emitBlockMappingValue(e *Emitter, event *yamlh.Event, simple bool) error {
	var err error
	if simple {
		err = writeIndicator(e, []byte{':'}, false, false, false)
		if err != nil {
			return err
		}
	} else {
		err = writeIndent(e)
		if err != nil {
			return err
		}
		err = writeIndicator(e, []byte{':'}, true, false, true)
		if err != nil {
			return err
		}
	}
	if err = e.pushState(emitBlockMappingKeyState); err != nil {
		return err
	}
	return emitNode(e, event, false, false)
}

// expect a node.
func emitNode(e *Emitter, event *yamlh.Event, root, simpleKey bool) error {
	e.rootContext = root
	e.simpleKeyContext = simpleKey

	switch event.Type {
	case yamlh.ALIAS_EVENT:
		return emitAlias(e, event)
	case yamlh.SCALAR_EVENT:
		return emitScalar(e, event)
	case yamlh.SEQUENCE_START_EVENT:
		return emitSequenceStart(e, event)
	case yamlh.MAPPING_START_EVENT:
		return emitMappingStart(e, event)
	default:
		return e.emitterError("expected SCALAR, SEQUENCE-START, MAPPING-START, or ALIAS", event)
	}
}

// expect ALIAS.
func emitAlias(e *Emitter, event *yamlh.Event) error {
	err := processAnchor(e)
	if err != nil {
		return err
	}
	if e.simpleKeyContext {
		err = e.put(' ')
		if err != nil {
			return err
		}
	}
	e.popState()
	return nil
}

// expect SCALAR.
func emitScalar(e *Emitter, event *yamlh.Event) error {
	err := selectScalarStyle(e, event)
	if err != nil {
		return err
	}
	err = processAnchor(e)
	if err != nil {
		return err
	}
	err = processTag(e)
	if err != nil {
		return err
	}
	err = e.increaseIndent(true, false)
	if err != nil {
		return err
	}
	err = processScalar(e)
	if err != nil {
		return err
	}
	e.popIndent()
	e.popState()
	return nil
}

// expect SEQUENCE-START.
func emitSequenceStart(e *Emitter, event *yamlh.Event) error {
	err := processAnchor(e)
	if err != nil {
		return err
	}
	err = processTag(e)
	if err != nil {
		return err
	}
	if err = e.openCollection(event); err != nil {
		return err
	}
	if e.flowLevel > 0 || e.canonical || event.Sequence_style() == yamlh.FLOW_SEQUENCE_STYLE ||
		checkEmptySequence(e) {
		e.state = emitFlowSequenceFirstItemState
	} else {
		e.state = emitBlockSequenceFirstItemState
	}
	return nil
}

// expect MAPPING-START.
func emitMappingStart(e *Emitter, event *yamlh.Event) error {
	err := processAnchor(e)
	if err != nil {
		return err
	}
	err = processTag(e)
	if err != nil {
		return err
	}
	if err = e.openCollection(event); err != nil {
		return err
	}
	if e.flowLevel > 0 || e.canonical || event.Mapping_style() == yamlh.FLOW_MAPPING_STYLE ||
		checkEmptyMapping(e) {
		e.state = emitFlowMappingFirstKeyState
	} else {
		e.state = emitBlockMappingFirstKeyState
	}
	return nil
}
