package emitter_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"
	"github.com/willabides/yamlstream/internal/composer"
	"github.com/willabides/yamlstream/internal/document"
	"github.com/willabides/yamlstream/internal/emitter"
	"github.com/willabides/yamlstream/internal/parserc"
	"github.com/willabides/yamlstream/internal/yamlh"
)

func streamStart() *yamlh.Event { return &yamlh.Event{Type: yamlh.STREAM_START_EVENT} }
func streamEnd() *yamlh.Event   { return &yamlh.Event{Type: yamlh.STREAM_END_EVENT} }
func docStart() *yamlh.Event    { return &yamlh.Event{Type: yamlh.DOCUMENT_START_EVENT, Implicit: true} }
func docEnd() *yamlh.Event      { return &yamlh.Event{Type: yamlh.DOCUMENT_END_EVENT, Implicit: true} }
func mapEnd() *yamlh.Event      { return &yamlh.Event{Type: yamlh.MAPPING_END_EVENT} }
func seqEnd() *yamlh.Event      { return &yamlh.Event{Type: yamlh.SEQUENCE_END_EVENT} }

func mapStart(style yamlh.YamlMappingStyle) *yamlh.Event {
	return &yamlh.Event{Type: yamlh.MAPPING_START_EVENT, Implicit: true, Style: yamlh.YamlStyle(style)}
}

func seqStart(style yamlh.YamlSequenceStyle) *yamlh.Event {
	return &yamlh.Event{Type: yamlh.SEQUENCE_START_EVENT, Implicit: true, Style: yamlh.YamlStyle(style)}
}

func scalar(value string, style yamlh.YamlScalarStyle) *yamlh.Event {
	return &yamlh.Event{
		Type:            yamlh.SCALAR_EVENT,
		Value:           []byte(value),
		Implicit:        true,
		Quoted_implicit: true,
		Style:           yamlh.YamlStyle(style),
	}
}

func plain(value string) *yamlh.Event {
	return scalar(value, yamlh.PLAIN_SCALAR_STYLE)
}

func emitAll(t *testing.T, e *emitter.Emitter, events ...*yamlh.Event) {
	t.Helper()
	for _, event := range events {
		require.NoError(t, e.Emit(event))
	}
}

// document1 wraps content in a stream with one implicit document.
func document1(content ...*yamlh.Event) []*yamlh.Event {
	events := []*yamlh.Event{streamStart(), docStart()}
	events = append(events, content...)
	return append(events, docEnd(), streamEnd())
}

func emitString(t *testing.T, configure func(*emitter.Emitter), content ...*yamlh.Event) string {
	t.Helper()
	var buf bytes.Buffer
	e := emitter.New(&buf)
	if configure != nil {
		configure(e)
	}
	emitAll(t, e, document1(content...)...)
	return buf.String()
}

func loadOne(t *testing.T, data []byte) *document.Document {
	t.Helper()
	doc, err := composer.New(parserc.NewBytes(data)).Load()
	require.NoError(t, err, "input: %q", data)
	return doc
}

func TestEmitBlockMapping(t *testing.T) {
	got := emitString(t, nil,
		mapStart(yamlh.ANY_MAPPING_STYLE),
		plain("a"), plain("1"),
		plain("b"),
		seqStart(yamlh.ANY_SEQUENCE_STYLE), plain("x"), plain("y"), seqEnd(),
		mapEnd(),
	)
	require.Equal(t, "a: 1\nb:\n  - x\n  - y\n", got)
}

func TestEmitFlowCollections(t *testing.T) {
	got := emitString(t, nil,
		mapStart(yamlh.FLOW_MAPPING_STYLE),
		plain("a"),
		seqStart(yamlh.FLOW_SEQUENCE_STYLE), plain("x"), plain("y"), seqEnd(),
		mapEnd(),
	)
	require.Equal(t, "{a: [x, y]}\n", got)
}

func TestEmitEmptyCollectionsUseFlowStyle(t *testing.T) {
	got := emitString(t, nil,
		mapStart(yamlh.BLOCK_MAPPING_STYLE),
		plain("a"), seqStart(yamlh.BLOCK_SEQUENCE_STYLE), seqEnd(),
		plain("b"), mapStart(yamlh.BLOCK_MAPPING_STYLE), mapEnd(),
		mapEnd(),
	)
	require.Equal(t, "a: []\nb: {}\n", got)
}

func TestEmitMultipleDocuments(t *testing.T) {
	var buf bytes.Buffer
	e := emitter.New(&buf)
	emitAll(t, e,
		streamStart(),
		docStart(), plain("a"), docEnd(),
		docStart(), plain("b"), &yamlh.Event{Type: yamlh.DOCUMENT_END_EVENT},
		streamEnd(),
	)
	require.Equal(t, "a\n---\nb\n...\n", buf.String())
}

func TestEmitVersionDirective(t *testing.T) {
	var buf bytes.Buffer
	e := emitter.New(&buf)
	emitAll(t, e,
		streamStart(),
		&yamlh.Event{
			Type:              yamlh.DOCUMENT_START_EVENT,
			Version_directive: &yamlh.VersionDirective{Major: 1, Minor: 1},
			Tag_directives:    []yamlh.TagDirective{{Handle: []byte("!e!"), Prefix: []byte("tag:example.com,2000:")}},
		},
		&yamlh.Event{
			Type:  yamlh.SCALAR_EVENT,
			Tag:   []byte("tag:example.com,2000:thing"),
			Value: []byte("v"),
			Style: yamlh.YamlStyle(yamlh.PLAIN_SCALAR_STYLE),
		},
		docEnd(),
		streamEnd(),
	)
	require.Equal(t, "%YAML 1.1\n%TAG !e! tag:example.com,2000:\n---\n!e!thing v\n", buf.String())

	doc := loadOne(t, buf.Bytes())
	require.Equal(t, "tag:example.com,2000:thing", string(doc.Root().Tag))
	require.Equal(t, "v", string(doc.Root().Value))
}

func TestEmitAnchorAndAlias(t *testing.T) {
	anchored := plain("v")
	anchored.Anchor = []byte("a")
	got := emitString(t, nil,
		seqStart(yamlh.BLOCK_SEQUENCE_STYLE),
		anchored,
		&yamlh.Event{Type: yamlh.ALIAS_EVENT, Anchor: []byte("a")},
		seqEnd(),
	)
	require.Equal(t, "- &a v\n- *a\n", got)
}

func TestStructuralMismatch(t *testing.T) {
	var buf bytes.Buffer
	e := emitter.New(&buf)
	emitAll(t, e,
		streamStart(),
		docStart(),
		&yamlh.Event{Type: yamlh.MAPPING_START_EVENT, Implicit: true, Start_mark: yamlh.Mark{Index: 4, Line: 1, Column: 2}},
		mapEnd(),
	)
	err := e.Emit(&yamlh.Event{Type: yamlh.SEQUENCE_END_EVENT, Start_mark: yamlh.Mark{Index: 9, Line: 2, Column: 1}})
	var yerr *yamlh.Error
	require.ErrorAs(t, err, &yerr)
	require.Equal(t, yamlh.EMITTER_ERROR, yerr.Kind)
	require.Equal(t, "expected DOCUMENT-END", yerr.Problem)
	require.Equal(t, "after emitting a mapping", yerr.Context)
	require.Equal(t, yamlh.Mark{Index: 4, Line: 1, Column: 2}, yerr.Context_mark)
	require.Equal(t, yamlh.Mark{Index: 9, Line: 2, Column: 1}, yerr.Problem_mark)

	require.Same(t, err, e.Err())
	require.Same(t, err, e.Emit(docEnd()))
}

func TestMismatchInsideCollection(t *testing.T) {
	var buf bytes.Buffer
	e := emitter.New(&buf)
	emitAll(t, e, streamStart(), docStart())
	require.NoError(t, e.Emit(&yamlh.Event{Type: yamlh.MAPPING_START_EVENT, Implicit: true, Start_mark: yamlh.Mark{Index: 2, Column: 2}}))
	require.NoError(t, e.Emit(plain("a")))
	require.NoError(t, e.Emit(plain("b")))
	err := e.Emit(seqEnd())
	var yerr *yamlh.Error
	require.ErrorAs(t, err, &yerr)
	require.Equal(t, "expected SCALAR, SEQUENCE-START, MAPPING-START, or ALIAS", yerr.Problem)
	require.Equal(t, "while emitting a mapping", yerr.Context)
	require.Equal(t, yamlh.Mark{Index: 2, Column: 2}, yerr.Context_mark)
}

func TestEmitErrors(t *testing.T) {
	for _, td := range []struct {
		name    string
		events  []*yamlh.Event
		problem string
	}{
		{
			name:    "missing stream start",
			events:  []*yamlh.Event{docStart(), plain("a")},
			problem: "expected STREAM-START",
		},
		{
			name:    "after stream end",
			events:  []*yamlh.Event{streamStart(), streamEnd(), docStart(), plain("a")},
			problem: "expected nothing after STREAM-END",
		},
		{
			name:    "scalar without document",
			events:  []*yamlh.Event{streamStart(), plain("a")},
			problem: "expected DOCUMENT-START or STREAM-END",
		},
		{
			name: "bad version",
			events: []*yamlh.Event{streamStart(), {
				Type:              yamlh.DOCUMENT_START_EVENT,
				Version_directive: &yamlh.VersionDirective{Major: 2, Minor: 0},
			}, plain("a")},
			problem: "incompatible %YAML directive",
		},
		{
			name: "bad anchor",
			events: []*yamlh.Event{streamStart(), docStart(), {
				Type:   yamlh.ALIAS_EVENT,
				Anchor: []byte("a b"),
			}},
			problem: "alias value must contain alphanumerical characters only",
		},
		{
			name: "no tag",
			events: []*yamlh.Event{streamStart(), docStart(), {
				Type:  yamlh.SCALAR_EVENT,
				Value: []byte("a"),
			}},
			problem: "neither tag nor implicit flags are specified",
		},
		{
			name:    "invalid utf8",
			events:  []*yamlh.Event{streamStart(), docStart(), plain("\xff")},
			problem: "scalar value must be valid UTF-8",
		},
	} {
		t.Run(td.name, func(t *testing.T) {
			e := emitter.New(&bytes.Buffer{})
			var err error
			for _, event := range td.events {
				err = e.Emit(event)
				if err != nil {
					break
				}
			}
			var yerr *yamlh.Error
			require.ErrorAs(t, err, &yerr)
			require.Equal(t, yamlh.EMITTER_ERROR, yerr.Kind)
			require.Equal(t, td.problem, yerr.Problem)
		})
	}
}

type countingWriter struct {
	writes int
	err    error
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.err != nil {
		return 0, w.err
	}
	return len(p), nil
}

func TestFlushWithEmptyBuffer(t *testing.T) {
	w := &countingWriter{err: errors.New("must not be called")}
	e := emitter.New(w)
	require.NoError(t, e.Flush())
	require.NoError(t, e.Emit(streamStart()))
	require.NoError(t, e.Flush())
	require.Equal(t, 0, w.writes)
}

func TestFlushWritesBufferedOutput(t *testing.T) {
	var buf bytes.Buffer
	e := emitter.New(&buf)
	emitAll(t, e, streamStart(), docStart(), seqStart(yamlh.BLOCK_SEQUENCE_STYLE), plain("a"), plain("b"), plain("c"))
	require.Empty(t, buf.String())
	require.NoError(t, e.Flush())
	require.Equal(t, "- a\n- b\n- c", buf.String())
}

func TestWriterError(t *testing.T) {
	boom := errors.New("boom")
	e := emitter.New(&countingWriter{err: boom})
	emitAll(t, e, streamStart(), docStart(), plain("a"))
	err := e.Emit(docEnd())
	require.Equal(t, yamlh.WRITER_ERROR, yamlh.ErrorKind(err))
	require.ErrorIs(t, err, boom)
	require.EqualError(t, err, "yaml: write error: write handler: boom")
	require.Same(t, err, e.Emit(streamEnd()))
	require.Same(t, err, e.Flush())
}

func TestLongOutputIsFlushedInPieces(t *testing.T) {
	w := &countingWriter{}
	e := emitter.New(w)
	emitAll(t, e, streamStart(), docStart(), seqStart(yamlh.BLOCK_SEQUENCE_STYLE))
	for i := 0; i < 100; i++ {
		require.NoError(t, e.Emit(plain("item")))
	}
	require.Greater(t, w.writes, 1)
}

func TestEmitterOptions(t *testing.T) {
	nested := []*yamlh.Event{
		mapStart(yamlh.BLOCK_MAPPING_STYLE),
		plain("a"),
		mapStart(yamlh.BLOCK_MAPPING_STYLE), plain("b"), plain("c"), mapEnd(),
		mapEnd(),
	}

	t.Run("indent", func(t *testing.T) {
		got := emitString(t, func(e *emitter.Emitter) { e.SetIndent(4) }, nested...)
		require.Equal(t, "a:\n    b: c\n", got)
	})

	t.Run("indent out of range", func(t *testing.T) {
		got := emitString(t, func(e *emitter.Emitter) { e.SetIndent(1) }, nested...)
		require.Equal(t, "a:\n  b: c\n", got)
	})

	t.Run("line break", func(t *testing.T) {
		got := emitString(t, func(e *emitter.Emitter) { e.SetLineBreak(yamlh.CRLN_BREAK) }, nested...)
		require.Equal(t, "a:\r\n  b: c\r\n", got)
	})

	t.Run("width folds plain scalars", func(t *testing.T) {
		value := "aaaa bbbb cccc dddd eeee ffff"
		got := emitString(t, func(e *emitter.Emitter) { e.SetWidth(20) }, plain(value))
		require.Equal(t, "aaaa bbbb cccc dddd eeee\n  ffff\n", got)
		require.Equal(t, value, string(loadOne(t, []byte(got)).Root().Value))
	})

	t.Run("long unstyled scalars are double quoted", func(t *testing.T) {
		value := "aaaa bbbb cccc dddd eeee ffff"
		got := emitString(t, func(e *emitter.Emitter) { e.SetWidth(20) }, scalar(value, yamlh.ANY_SCALAR_STYLE))
		require.Equal(t, "\"aaaa bbbb cccc dddd eeee\n  ffff\"\n", got)
		require.Equal(t, value, string(loadOne(t, []byte(got)).Root().Value))
	})

	t.Run("unlimited width", func(t *testing.T) {
		value := "aaaa bbbb cccc dddd eeee ffff"
		got := emitString(t, func(e *emitter.Emitter) { e.SetWidth(-1) }, scalar(value, yamlh.ANY_SCALAR_STYLE))
		require.Equal(t, value+"\n", got)
	})

	t.Run("unicode", func(t *testing.T) {
		got := emitString(t, nil, scalar("café", yamlh.ANY_SCALAR_STYLE))
		require.Equal(t, "café\n", got)
		got = emitString(t, func(e *emitter.Emitter) { e.SetUnicode(false) }, scalar("café", yamlh.ANY_SCALAR_STYLE))
		require.Equal(t, "\"caf\\xE9\"\n", got)
		require.Equal(t, "café", string(loadOne(t, []byte(got)).Root().Value))
	})

	t.Run("canonical", func(t *testing.T) {
		got := emitString(t, func(e *emitter.Emitter) { e.SetCanonical(true) }, plain("a"))
		require.Equal(t, "---\n\"a\"\n", got)
	})
}

func TestUTF16Output(t *testing.T) {
	var buf bytes.Buffer
	e := emitter.New(&buf)
	require.NoError(t, e.SetEncoding(yamlh.UTF16LE_ENCODING))
	emitAll(t, e, document1(plain("a"))...)
	require.Equal(t, []byte{0xFF, 0xFE, 'a', 0, '\n', 0}, buf.Bytes())

	doc := loadOne(t, buf.Bytes())
	require.Equal(t, yamlh.UTF16LE_ENCODING, doc.Encoding)
	require.Equal(t, "a", string(doc.Root().Value))

	require.Error(t, e.SetEncoding(yamlh.UTF8_ENCODING))
}

func TestUTF16BigEndianFromStreamStart(t *testing.T) {
	var buf bytes.Buffer
	e := emitter.New(&buf)
	emitAll(t, e,
		&yamlh.Event{Type: yamlh.STREAM_START_EVENT, Encoding: yamlh.UTF16BE_ENCODING},
		docStart(), plain("a"), docEnd(), streamEnd(),
	)
	require.Equal(t, []byte{0xFE, 0xFF, 0, 'a', 0, '\n'}, buf.Bytes())
}

func TestScalarStyleRoundTrip(t *testing.T) {
	for _, td := range []struct {
		style  yamlh.YamlScalarStyle
		values []string
	}{
		{
			style:  yamlh.PLAIN_SCALAR_STYLE,
			values: []string{"hello", "hello world", "a:b", "-a", "x#y"},
		},
		{
			style:  yamlh.SINGLE_QUOTED_SCALAR_STYLE,
			values: []string{"it's", "  leading", "trailing  ", "a\nb", "a\n", "# not a comment", ""},
		},
		{
			style:  yamlh.DOUBLE_QUOTED_SCALAR_STYLE,
			values: []string{"tab\there", `quote"`, "\x01ctrl", "line\nbreak", "é", "back\\slash", "cr\rlf", ""},
		},
		{
			style:  yamlh.LITERAL_SCALAR_STYLE,
			values: []string{
				"line1\nline2\n", "  indented\nnext\n", "no newline", "keep\n\n",
				"\nx", "\n\nx\n", "\n", "\ttab", "\t", "a\n\tb\n",
			},
		},
		{
			style: yamlh.FOLDED_SCALAR_STYLE,
			values: []string{
				"folded text\n", "one\n\ntwo\n",
				"\nx", "\n\nx\n", "\ttab", "a\t\nb", "a\n\tb\n",
			},
		},
	} {
		for _, value := range td.values {
			t.Run(td.style.String()+"/"+value, func(t *testing.T) {
				got := emitString(t, nil, scalar(value, td.style))
				doc := loadOne(t, []byte(got))
				require.Equal(t, value, string(doc.Root().Value), "output: %q", got)
			})
			t.Run(td.style.String()+"/in mapping/"+value, func(t *testing.T) {
				got := emitString(t, nil,
					mapStart(yamlh.BLOCK_MAPPING_STYLE),
					plain("key"), scalar(value, td.style),
					mapEnd(),
				)
				doc := loadOne(t, []byte(got))
				pair := doc.Root().Pairs[0]
				require.Equal(t, value, string(doc.Node(pair.Value).Value), "output: %q", got)
			})
		}
	}
}

func TestFuzzScalarRoundTrip(t *testing.T) {
	const alphabet = "ab :-#'\"\\\té\n"
	f := fuzz.NewWithSeed(1).Funcs(func(s *string, c fuzz.Continue) {
		runes := []rune(alphabet)
		n := c.Intn(16)
		out := make([]rune, n)
		for i := range out {
			out[i] = runes[c.Intn(len(runes))]
		}
		*s = string(out)
	})
	styles := []yamlh.YamlScalarStyle{
		yamlh.ANY_SCALAR_STYLE,
		yamlh.PLAIN_SCALAR_STYLE,
		yamlh.SINGLE_QUOTED_SCALAR_STYLE,
		yamlh.DOUBLE_QUOTED_SCALAR_STYLE,
		yamlh.LITERAL_SCALAR_STYLE,
		yamlh.FOLDED_SCALAR_STYLE,
	}
	for i := 0; i < 500; i++ {
		var value string
		f.Fuzz(&value)
		// A style that cannot hold value falls back to one that can, so
		// every requested style must still round trip.
		for _, style := range styles {
			got := emitString(t, nil, scalar(value, style))
			doc := loadOne(t, []byte(got))
			require.Equal(t, value, string(doc.Root().Value), "style: %v output: %q", style, got)

			got = emitString(t, nil,
				seqStart(yamlh.BLOCK_SEQUENCE_STYLE),
				scalar(value, style),
				seqEnd(),
			)
			doc = loadOne(t, []byte(got))
			item := doc.Root().Items[0]
			require.Equal(t, value, string(doc.Node(item).Value), "style: %v output: %q", style, got)
		}
	}
}

func TestFinish(t *testing.T) {
	for _, td := range []struct {
		name   string
		events []*yamlh.Event
		ok     bool
	}{
		{name: "nothing emitted", ok: true},
		{name: "complete stream", events: document1(plain("a")), ok: true},
		{name: "stream start only", events: []*yamlh.Event{streamStart()}},
		{name: "document start held", events: []*yamlh.Event{streamStart(), docStart()}},
		{name: "missing document end", events: []*yamlh.Event{streamStart(), docStart(), plain("a")}},
		{name: "missing stream end", events: []*yamlh.Event{streamStart(), docStart(), plain("a"), docEnd()}},
		{
			name:   "open sequence",
			events: []*yamlh.Event{streamStart(), docStart(), seqStart(yamlh.FLOW_SEQUENCE_STYLE), plain("a"), plain("b")},
		},
	} {
		t.Run(td.name, func(t *testing.T) {
			var buf bytes.Buffer
			e := emitter.New(&buf)
			emitAll(t, e, td.events...)
			err := e.Finish()
			if td.ok {
				require.NoError(t, err)
				return
			}
			var yerr *yamlh.Error
			require.True(t, errors.As(err, &yerr), "not a *yamlh.Error: %v", err)
			require.Equal(t, yamlh.EMITTER_ERROR, yerr.Kind)
			require.Equal(t, "unexpected end of events, expected STREAM-END", yerr.Problem)
			// the error sticks
			require.Equal(t, err, e.Emit(streamEnd()))
		})
	}
}

// shape is a node graph without ids or marks.
type shape struct {
	Type  string
	Tag   string
	Value string
	Items []*shape
}

func shapeOf(doc *document.Document, id document.NodeID) *shape {
	node := doc.Node(id)
	s := &shape{Type: node.Type.String(), Tag: string(node.Tag), Value: string(node.Value)}
	for _, item := range node.Items {
		s.Items = append(s.Items, shapeOf(doc, item))
	}
	for _, pair := range node.Pairs {
		s.Items = append(s.Items, shapeOf(doc, pair.Key), shapeOf(doc, pair.Value))
	}
	return s
}

func TestCanonicalRoundTrip(t *testing.T) {
	input := "a: [1, &x b, *x]\nc: {d: e}\n? [k]\n: \"multi\\nline\"\nempty:\n"
	doc := loadOne(t, []byte(input))

	var buf bytes.Buffer
	e := emitter.New(&buf)
	e.SetCanonical(true)
	d := emitter.NewDumper(e)
	require.NoError(t, d.Dump(doc))
	require.NoError(t, d.Close())

	again := loadOne(t, buf.Bytes())
	if diff := cmp.Diff(shapeOf(doc, 1), shapeOf(again, 1)); diff != "" {
		t.Fatalf("node graphs differ (-want +got):\n%s\noutput:\n%s", diff, buf.String())
	}

	// The alias still points at the anchored node.
	seq := again.Node(again.Root().Pairs[0].Value)
	require.Equal(t, seq.Items[1], seq.Items[2])
}

func TestDumpGeneratesAnchors(t *testing.T) {
	doc := loadOne(t, []byte("a: &x [v]\nb: *x\n"))
	var buf bytes.Buffer
	d := emitter.NewDumper(emitter.New(&buf))
	require.NoError(t, d.Dump(doc))
	require.NoError(t, d.Close())
	require.Equal(t, "a: &id001 [v]\nb: *id001\n", buf.String())
}

func TestDumpQuotesStringsThatLookLikeOtherTypes(t *testing.T) {
	doc := loadOne(t, []byte("- 1\n- true\n- yes\n- ~\n- 1:30\n- 2001-12-14\n- text\n"))
	var buf bytes.Buffer
	d := emitter.NewDumper(emitter.New(&buf))
	require.NoError(t, d.Dump(doc))
	require.NoError(t, d.Close())
	require.Equal(t, "- '1'\n- 'true'\n- 'yes'\n- '~'\n- '1:30'\n- '2001-12-14'\n- text\n", buf.String())
}

func TestDumpEmptyDocumentClosesStream(t *testing.T) {
	var buf bytes.Buffer
	e := emitter.New(&buf)
	d := emitter.NewDumper(e)
	require.NoError(t, d.Dump(loadOne(t, []byte("a"))))

	empty, err := document.New(nil, nil, false, false)
	require.NoError(t, err)
	require.NoError(t, d.Dump(empty))
	require.Equal(t, "a\n", buf.String())
	require.NoError(t, d.Close())

	err = d.Dump(loadOne(t, []byte("b")))
	require.Equal(t, yamlh.EMITTER_ERROR, yamlh.ErrorKind(err))
}

func TestDumpMultipleDocuments(t *testing.T) {
	c := composer.New(parserc.NewBytes([]byte("a\n--- b\n")))
	var buf bytes.Buffer
	d := emitter.NewDumper(emitter.New(&buf))
	for {
		doc, err := c.Load()
		require.NoError(t, err)
		require.NoError(t, d.Dump(doc))
		if doc.Empty() {
			break
		}
	}
	require.Equal(t, "a\n---\nb\n", buf.String())
}
