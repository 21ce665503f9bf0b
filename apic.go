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

package yamlstream

import (
	"unicode/utf8"

	"github.com/willabides/yamlstream/internal/document"
	"github.com/willabides/yamlstream/internal/yamlh"
)

// The constructors below copy their byte arguments, so the caller may reuse
// them. Invalid arguments are reported as EMITTER_ERROR, or COMPOSER_ERROR
// for documents, and no value is returned.

func invalidArgument(kind ErrorType, problem string) error {
	return yamlh.NewError(kind, problem, Mark{})
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}

func checkProperties(anchor, tag []byte) error {
	if anchor != nil {
		if len(anchor) == 0 {
			return invalidArgument(EMITTER_ERROR, "anchor must not be empty")
		}
		if !utf8.Valid(anchor) {
			return invalidArgument(EMITTER_ERROR, "anchor must be valid UTF-8")
		}
	}
	if tag != nil {
		if len(tag) == 0 {
			return invalidArgument(EMITTER_ERROR, "tag must not be empty")
		}
		if !utf8.Valid(tag) {
			return invalidArgument(EMITTER_ERROR, "tag must be valid UTF-8")
		}
	}
	return nil
}

func checkDirectives(kind ErrorType, version *VersionDirective, tags []TagDirective) error {
	if version != nil && version.Major != 1 {
		return invalidArgument(kind, "unsupported version directive")
	}
	for _, td := range tags {
		if len(td.Handle) == 0 {
			return invalidArgument(kind, "tag directive handle must not be empty")
		}
		if len(td.Prefix) == 0 {
			return invalidArgument(kind, "tag directive prefix must not be empty")
		}
		if !utf8.Valid(td.Handle) || !utf8.Valid(td.Prefix) {
			return invalidArgument(kind, "tag directive must be valid UTF-8")
		}
	}
	return nil
}

// NewStreamStartEvent creates STREAM-START.
func NewStreamStartEvent(encoding Encoding) (*Event, error) {
	if !encoding.Valid() {
		return nil, invalidArgument(EMITTER_ERROR, "invalid encoding")
	}
	return &Event{
		Type:     yamlh.STREAM_START_EVENT,
		Encoding: encoding,
	}, nil
}

// NewStreamEndEvent creates STREAM-END.
func NewStreamEndEvent() *Event {
	return &Event{
		Type: yamlh.STREAM_END_EVENT,
	}
}

// NewDocumentStartEvent creates DOCUMENT-START.
func NewDocumentStartEvent(version *VersionDirective, tags []TagDirective, implicit bool) (*Event, error) {
	if err := checkDirectives(EMITTER_ERROR, version, tags); err != nil {
		return nil, err
	}
	event := &Event{
		Type:     yamlh.DOCUMENT_START_EVENT,
		Implicit: implicit,
	}
	if version != nil {
		v := *version
		event.Version_directive = &v
	}
	for _, td := range tags {
		event.Tag_directives = append(event.Tag_directives, TagDirective{
			Handle: clone(td.Handle),
			Prefix: clone(td.Prefix),
		})
	}
	return event, nil
}

// NewDocumentEndEvent creates DOCUMENT-END.
func NewDocumentEndEvent(implicit bool) *Event {
	return &Event{
		Type:     yamlh.DOCUMENT_END_EVENT,
		Implicit: implicit,
	}
}

// NewAliasEvent creates ALIAS.
func NewAliasEvent(anchor []byte) (*Event, error) {
	if anchor == nil {
		return nil, invalidArgument(EMITTER_ERROR, "alias must have an anchor")
	}
	if err := checkProperties(anchor, nil); err != nil {
		return nil, err
	}
	return &Event{
		Type:   yamlh.ALIAS_EVENT,
		Anchor: clone(anchor),
	}, nil
}

// NewScalarEvent creates SCALAR. A nil anchor or tag means none. Either a
// tag or one of the implicit flags is required.
func NewScalarEvent(anchor, tag, value []byte, plainImplicit, quotedImplicit bool, style ScalarStyle) (*Event, error) {
	if err := checkProperties(anchor, tag); err != nil {
		return nil, err
	}
	if tag == nil && !plainImplicit && !quotedImplicit {
		return nil, invalidArgument(EMITTER_ERROR, "scalar needs a tag or an implicit flag")
	}
	if !utf8.Valid(value) {
		return nil, invalidArgument(EMITTER_ERROR, "scalar value must be valid UTF-8")
	}
	switch style {
	case yamlh.ANY_SCALAR_STYLE, yamlh.PLAIN_SCALAR_STYLE, yamlh.SINGLE_QUOTED_SCALAR_STYLE,
		yamlh.DOUBLE_QUOTED_SCALAR_STYLE, yamlh.LITERAL_SCALAR_STYLE, yamlh.FOLDED_SCALAR_STYLE:
	default:
		return nil, invalidArgument(EMITTER_ERROR, "invalid scalar style")
	}
	if value == nil {
		value = []byte{}
	}
	return &Event{
		Type:            yamlh.SCALAR_EVENT,
		Anchor:          clone(anchor),
		Tag:             clone(tag),
		Value:           clone(value),
		Implicit:        plainImplicit,
		Quoted_implicit: quotedImplicit,
		Style:           yamlh.YamlStyle(style),
	}, nil
}

// NewSequenceStartEvent creates SEQUENCE-START.
func NewSequenceStartEvent(anchor, tag []byte, implicit bool, style SequenceStyle) (*Event, error) {
	if err := checkProperties(anchor, tag); err != nil {
		return nil, err
	}
	if tag == nil && !implicit {
		return nil, invalidArgument(EMITTER_ERROR, "sequence needs a tag or the implicit flag")
	}
	if style < yamlh.ANY_SEQUENCE_STYLE || style > yamlh.FLOW_SEQUENCE_STYLE {
		return nil, invalidArgument(EMITTER_ERROR, "invalid sequence style")
	}
	return &Event{
		Type:     yamlh.SEQUENCE_START_EVENT,
		Anchor:   clone(anchor),
		Tag:      clone(tag),
		Implicit: implicit,
		Style:    yamlh.YamlStyle(style),
	}, nil
}

// NewSequenceEndEvent creates SEQUENCE-END.
func NewSequenceEndEvent() *Event {
	return &Event{
		Type: yamlh.SEQUENCE_END_EVENT,
	}
}

// NewMappingStartEvent creates MAPPING-START.
func NewMappingStartEvent(anchor, tag []byte, implicit bool, style MappingStyle) (*Event, error) {
	if err := checkProperties(anchor, tag); err != nil {
		return nil, err
	}
	if tag == nil && !implicit {
		return nil, invalidArgument(EMITTER_ERROR, "mapping needs a tag or the implicit flag")
	}
	if style < yamlh.ANY_MAPPING_STYLE || style > yamlh.FLOW_MAPPING_STYLE {
		return nil, invalidArgument(EMITTER_ERROR, "invalid mapping style")
	}
	return &Event{
		Type:     yamlh.MAPPING_START_EVENT,
		Anchor:   clone(anchor),
		Tag:      clone(tag),
		Implicit: implicit,
		Style:    yamlh.YamlStyle(style),
	}, nil
}

// NewMappingEndEvent creates MAPPING-END.
func NewMappingEndEvent() *Event {
	return &Event{
		Type: yamlh.MAPPING_END_EVENT,
	}
}

// NewDocument creates an empty document to be filled with AddScalar,
// AddSequence and AddMapping.
func NewDocument(version *VersionDirective, tags []TagDirective, startImplicit, endImplicit bool) (*Document, error) {
	if err := checkDirectives(COMPOSER_ERROR, version, tags); err != nil {
		return nil, err
	}
	return document.New(version, tags, startImplicit, endImplicit)
}
