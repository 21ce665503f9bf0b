//
// Copyright (c) 2011-2019 Canonical Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package yamlstream

import (
	"io"
)

// Decoder reads documents from a stream one at a time.
type Decoder struct {
	parser   *Parser
	composer *Composer
}

// NewDecoder returns a decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return newDecoder(NewParser(r))
}

// NewDecoderBytes returns a decoder over input.
func NewDecoderBytes(input []byte) *Decoder {
	return newDecoder(NewParserBytes(input))
}

func newDecoder(p *Parser) *Decoder {
	return &Decoder{
		parser:   p,
		composer: NewComposer(p),
	}
}

// SetEncoding declares the input encoding instead of detecting it. It must
// be called before the first Decode.
func (d *Decoder) SetEncoding(encoding Encoding) error {
	return d.parser.SetEncoding(encoding)
}

// Decode composes the next document of the stream. It returns io.EOF once
// the stream holds no more documents.
func (d *Decoder) Decode() (*Document, error) {
	doc, err := d.composer.Load()
	if err != nil {
		return nil, err
	}
	if doc.Empty() {
		return nil, io.EOF
	}
	return doc, nil
}

// LineBreak returns the kind of the first line break in the input, or
// ANY_BREAK if none was read yet. An Encoder can reuse it to write the same
// breaks back.
func (d *Decoder) LineBreak() Break {
	return d.parser.LineBreak()
}

// Encoding returns the detected or declared input encoding.
func (d *Decoder) Encoding() Encoding {
	return d.parser.Encoding()
}

// Load composes every document in input.
func Load(input []byte) ([]*Document, error) {
	d := NewDecoderBytes(input)
	var docs []*Document
	for {
		doc, err := d.Decode()
		if err == io.EOF {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
}
