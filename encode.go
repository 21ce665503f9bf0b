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
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// Encoder writes documents to a stream.
type Encoder struct {
	emitter *Emitter
	dumper  *Dumper
}

func NewEncoder(w io.Writer) *Encoder {
	e := NewEmitter(w)
	return &Encoder{
		emitter: e,
		dumper:  NewDumper(e),
	}
}

// Encode writes doc as the next document of the stream. The second and
// later documents start with "---". An empty document closes the stream.
//
// Scalars tagged !!str whose text would read as another type when plain
// (1, true, ~, 2001-12-14, ...) are quoted.
func (e *Encoder) Encode(doc *Document) error {
	if doc == nil {
		return errors.New("yaml: cannot encode a nil document")
	}
	return e.dumper.Dump(doc)
}

// Close ends the stream and flushes. It does not write a terminating "..."
// unless the last scalar needs one.
func (e *Encoder) Close() error {
	return e.dumper.Close()
}

// Configure applies every option in cfg. It must be called before the first
// Encode.
func (e *Encoder) Configure(cfg EmitterConfig) error {
	return cfg.Apply(e.emitter)
}

// SetIndent changes the indentation used when encoding.
func (e *Encoder) SetIndent(spaces int) {
	e.emitter.SetIndent(spaces)
}

// SetWidth sets the preferred line width. Negative means unlimited.
func (e *Encoder) SetWidth(width int) {
	e.emitter.SetWidth(width)
}

// SetCanonical switches to canonical output: explicit tags, flow
// collections and double-quoted scalars.
func (e *Encoder) SetCanonical(canonical bool) {
	e.emitter.SetCanonical(canonical)
}

// SetUnicode controls whether non-ASCII characters are written as is or
// escaped.
func (e *Encoder) SetUnicode(unicode bool) {
	e.emitter.SetUnicode(unicode)
}

func (e *Encoder) SetLineBreak(lineBreak Break) {
	e.emitter.SetLineBreak(lineBreak)
}

func (e *Encoder) SetEncoding(encoding Encoding) error {
	return e.emitter.SetEncoding(encoding)
}

// Dump writes docs as one stream.
func Dump(docs ...*Document) ([]byte, error) {
	var buf bytes.Buffer
	e := NewEncoder(&buf)
	for _, doc := range docs {
		if err := e.Encode(doc); err != nil {
			return nil, err
		}
	}
	if err := e.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
