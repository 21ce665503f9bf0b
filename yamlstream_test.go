package yamlstream_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/require"
	"github.com/willabides/yamlstream"
)

func scalarValue(t *testing.T, doc *yamlstream.Document, id yamlstream.NodeID) string {
	t.Helper()
	node := doc.Node(id)
	require.NotNil(t, node)
	require.Equal(t, yamlstream.SCALAR_NODE, node.Type)
	return string(node.Value)
}

func TestLoad(t *testing.T) {
	docs, err := yamlstream.Load([]byte("---\na: 1\n---\nb: 2\n"))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for i, key := range []string{"a", "b"} {
		root := docs[i].Root()
		require.Equal(t, yamlstream.MAPPING_NODE, root.Type)
		require.Len(t, root.Pairs, 1)
		require.Equal(t, key, scalarValue(t, docs[i], root.Pairs[0].Key))
		require.False(t, docs[i].Start_implicit)
	}
}

func TestLoadEmpty(t *testing.T) {
	docs, err := yamlstream.Load(nil)
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestAliasResolution(t *testing.T) {
	docs, err := yamlstream.Load([]byte("- anchor: &a [1, 2, 3]\n- *a\n"))
	require.NoError(t, err)
	doc := docs[0]
	root := doc.Root()
	first := doc.Node(root.Items[0])
	require.Equal(t, first.Pairs[0].Value, root.Items[1])
	require.Len(t, doc.Node(root.Items[1]).Items, 3)
}

func TestAnchorRebinding(t *testing.T) {
	docs, err := yamlstream.Load([]byte("- &a 1\n- *a\n- &a 2\n- *a\n"))
	require.NoError(t, err)
	doc := docs[0]
	items := doc.Root().Items
	require.Equal(t, "1", scalarValue(t, doc, items[1]))
	require.Equal(t, "2", scalarValue(t, doc, items[3]))
}

func TestLoadErrors(t *testing.T) {
	for _, td := range []struct {
		data    string
		kind    yamlstream.ErrorType
		problem string
		context string
	}{
		{data: "[a, b", kind: yamlstream.PARSER_ERROR, problem: "did not find expected ',' or ']'", context: "while parsing a flow sequence"},
		{data: "a: *nope", kind: yamlstream.COMPOSER_ERROR, problem: "found undefined alias"},
		{data: "a: 'open", kind: yamlstream.SCANNER_ERROR},
		{data: "a: \xff", kind: yamlstream.READER_ERROR},
	} {
		t.Run(td.data, func(t *testing.T) {
			_, err := yamlstream.Load([]byte(td.data))
			require.Equal(t, td.kind, yamlstream.ErrorKind(err), "error: %v", err)
			var yerr *yamlstream.Error
			require.ErrorAs(t, err, &yerr)
			if td.problem != "" {
				require.Equal(t, td.problem, yerr.Problem)
			}
			if td.context != "" {
				require.Equal(t, td.context, yerr.Context)
			}
		})
	}
}

func utf16le(s string) []byte {
	units := utf16.Encode([]rune("\ufeff" + s))
	out := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[2*i:], u)
	}
	return out
}

func TestDecoder(t *testing.T) {
	d := yamlstream.NewDecoder(bytes.NewReader(utf16le("a: b\r\nc: d\r\n")))
	doc, err := d.Decode()
	require.NoError(t, err)
	require.Equal(t, yamlstream.UTF16LE_ENCODING, d.Encoding())
	require.Equal(t, yamlstream.UTF16LE_ENCODING, doc.Encoding)
	require.Equal(t, yamlstream.CRLN_BREAK, d.LineBreak())
	require.Equal(t, "d", scalarValue(t, doc, doc.Root().Pairs[1].Value))

	_, err = d.Decode()
	require.Equal(t, io.EOF, err)
	_, err = d.Decode()
	require.Equal(t, io.EOF, err)
}

func TestDecoderDeclaredEncoding(t *testing.T) {
	d := yamlstream.NewDecoderBytes([]byte("a: b\n"))
	require.NoError(t, d.SetEncoding(yamlstream.UTF8_ENCODING))
	_, err := d.Decode()
	require.NoError(t, err)
	require.Error(t, d.SetEncoding(yamlstream.UTF16LE_ENCODING))
}

func TestDump(t *testing.T) {
	for _, td := range []struct {
		data string
		want string
	}{
		{data: "a: [x, z]\nb: {c: d}\n", want: "a: [x, z]\nb: {c: d}\n"},
		{data: "a: [x, y]\n", want: "a: [x, 'y']\n"},
		{data: "a\n--- b\n", want: "a\n---\nb\n"},
		{data: "a: &x [v]\nb: *x\n", want: "a: &id001 [v]\nb: *id001\n"},
		{data: "- 1\n- true\n- text\n", want: "- '1'\n- 'true'\n- text\n"},
		{data: "k: !!int 1\n", want: "k: !!int 1\n"},
	} {
		t.Run(td.data, func(t *testing.T) {
			docs, err := yamlstream.Load([]byte(td.data))
			require.NoError(t, err)
			got, err := yamlstream.Dump(docs...)
			require.NoError(t, err)
			require.Equal(t, td.want, string(got))
		})
	}
}

func TestEncoderOptions(t *testing.T) {
	docs, err := yamlstream.Load([]byte("a:\n  b: é\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	e := yamlstream.NewEncoder(&buf)
	e.SetIndent(4)
	e.SetUnicode(false)
	e.SetLineBreak(yamlstream.CRLN_BREAK)
	require.NoError(t, e.Encode(docs[0]))
	require.NoError(t, e.Close())
	require.Equal(t, "a:\r\n    b: \"\\xE9\"\r\n", buf.String())

	require.Error(t, e.Encode(nil))
}

func TestEncoderUTF16(t *testing.T) {
	docs, err := yamlstream.Load([]byte("a: b\n"))
	require.NoError(t, err)
	var buf bytes.Buffer
	e := yamlstream.NewEncoder(&buf)
	require.NoError(t, e.SetEncoding(yamlstream.UTF16LE_ENCODING))
	require.NoError(t, e.Encode(docs[0]))
	require.NoError(t, e.Close())
	require.Equal(t, utf16le("a: b\n"), buf.Bytes())
}

func TestEmitterConfig(t *testing.T) {
	cfg, err := yamlstream.DecodeEmitterConfig(strings.NewReader(`
indent = 4
line_break = "crlf"
unicode = false
`))
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Indent)
	require.Equal(t, "crlf", cfg.LineBreak)
	require.NotNil(t, cfg.Unicode)
	require.False(t, *cfg.Unicode)

	docs, err := yamlstream.Load([]byte("a:\n  b: é\n"))
	require.NoError(t, err)
	var buf bytes.Buffer
	e := yamlstream.NewEncoder(&buf)
	require.NoError(t, e.Configure(cfg))
	require.NoError(t, e.Encode(docs[0]))
	require.NoError(t, e.Close())
	require.Equal(t, "a:\r\n    b: \"\\xE9\"\r\n", buf.String())
}

func TestEmitterConfigErrors(t *testing.T) {
	for _, data := range []string{
		"bogus = 1",
		`encoding = "latin-1"`,
		`line_break = "nel"`,
		`indent = "four"`,
	} {
		_, err := yamlstream.DecodeEmitterConfig(strings.NewReader(data))
		require.Error(t, err, data)
	}
	_, err := yamlstream.DecodeEmitterConfig(strings.NewReader("bogus = 1"))
	require.ErrorContains(t, err, "bogus")
}

func TestEmitHandBuiltEvents(t *testing.T) {
	var buf bytes.Buffer
	e := yamlstream.NewEmitter(&buf)

	mustEvent := func(event *yamlstream.Event, err error) *yamlstream.Event {
		t.Helper()
		require.NoError(t, err)
		return event
	}
	events := []*yamlstream.Event{
		mustEvent(yamlstream.NewStreamStartEvent(yamlstream.UTF8_ENCODING)),
		mustEvent(yamlstream.NewDocumentStartEvent(nil, nil, true)),
		mustEvent(yamlstream.NewMappingStartEvent(nil, nil, true, yamlstream.BLOCK_MAPPING_STYLE)),
		mustEvent(yamlstream.NewScalarEvent(nil, nil, []byte("key"), true, true, yamlstream.ANY_SCALAR_STYLE)),
		mustEvent(yamlstream.NewSequenceStartEvent([]byte("s"), nil, true, yamlstream.FLOW_SEQUENCE_STYLE)),
		mustEvent(yamlstream.NewScalarEvent(nil, []byte(yamlstream.STR_TAG), []byte("v"), false, false, yamlstream.PLAIN_SCALAR_STYLE)),
		yamlstream.NewSequenceEndEvent(),
		mustEvent(yamlstream.NewScalarEvent(nil, nil, []byte("again"), true, true, yamlstream.ANY_SCALAR_STYLE)),
		mustEvent(yamlstream.NewAliasEvent([]byte("s"))),
		yamlstream.NewMappingEndEvent(),
		yamlstream.NewDocumentEndEvent(true),
		yamlstream.NewStreamEndEvent(),
	}
	for _, event := range events {
		require.NoError(t, e.Emit(event))
	}
	require.Equal(t, "key: &s [!!str v]\nagain: *s\n", buf.String())
}

func TestConstructorsCopyArguments(t *testing.T) {
	value := []byte("abc")
	event, err := yamlstream.NewScalarEvent(nil, nil, value, true, true, yamlstream.ANY_SCALAR_STYLE)
	require.NoError(t, err)
	value[0] = 'x'
	require.Equal(t, "abc", string(event.Value))

	event, err = yamlstream.NewScalarEvent(nil, nil, nil, true, true, yamlstream.ANY_SCALAR_STYLE)
	require.NoError(t, err)
	require.NotNil(t, event.Value)
}

func TestConstructorErrors(t *testing.T) {
	for _, td := range []struct {
		name string
		fn   func() error
		kind yamlstream.ErrorType
	}{
		{
			name: "encoding",
			fn: func() error {
				_, err := yamlstream.NewStreamStartEvent(yamlstream.Encoding(42))
				return err
			},
			kind: yamlstream.EMITTER_ERROR,
		},
		{
			name: "version",
			fn: func() error {
				_, err := yamlstream.NewDocumentStartEvent(&yamlstream.VersionDirective{Major: 2}, nil, false)
				return err
			},
			kind: yamlstream.EMITTER_ERROR,
		},
		{
			name: "tag directive prefix",
			fn: func() error {
				_, err := yamlstream.NewDocumentStartEvent(nil, []yamlstream.TagDirective{{Handle: []byte("!e!")}}, false)
				return err
			},
			kind: yamlstream.EMITTER_ERROR,
		},
		{
			name: "empty alias",
			fn: func() error {
				_, err := yamlstream.NewAliasEvent([]byte{})
				return err
			},
			kind: yamlstream.EMITTER_ERROR,
		},
		{
			name: "no tag or implicit flag",
			fn: func() error {
				_, err := yamlstream.NewScalarEvent(nil, nil, []byte("x"), false, false, yamlstream.PLAIN_SCALAR_STYLE)
				return err
			},
			kind: yamlstream.EMITTER_ERROR,
		},
		{
			name: "invalid value",
			fn: func() error {
				_, err := yamlstream.NewScalarEvent(nil, nil, []byte("\xff"), true, true, yamlstream.PLAIN_SCALAR_STYLE)
				return err
			},
			kind: yamlstream.EMITTER_ERROR,
		},
		{
			name: "scalar style",
			fn: func() error {
				_, err := yamlstream.NewScalarEvent(nil, nil, []byte("x"), true, true, yamlstream.ScalarStyle(3))
				return err
			},
			kind: yamlstream.EMITTER_ERROR,
		},
		{
			name: "sequence style",
			fn: func() error {
				_, err := yamlstream.NewSequenceStartEvent(nil, nil, true, yamlstream.SequenceStyle(7))
				return err
			},
			kind: yamlstream.EMITTER_ERROR,
		},
		{
			name: "mapping tag",
			fn: func() error {
				_, err := yamlstream.NewMappingStartEvent(nil, []byte{}, false, yamlstream.ANY_MAPPING_STYLE)
				return err
			},
			kind: yamlstream.EMITTER_ERROR,
		},
		{
			name: "document",
			fn: func() error {
				_, err := yamlstream.NewDocument(nil, []yamlstream.TagDirective{{Prefix: []byte("x")}}, true, true)
				return err
			},
			kind: yamlstream.COMPOSER_ERROR,
		},
	} {
		t.Run(td.name, func(t *testing.T) {
			require.Equal(t, td.kind, yamlstream.ErrorKind(td.fn()))
		})
	}
}

func TestBuildDocument(t *testing.T) {
	doc, err := yamlstream.NewDocument(nil, nil, true, true)
	require.NoError(t, err)
	m, err := doc.AddMapping(nil, yamlstream.ANY_MAPPING_STYLE)
	require.NoError(t, err)
	k, err := doc.AddScalar(nil, []byte("k"), yamlstream.ANY_SCALAR_STYLE)
	require.NoError(t, err)
	s, err := doc.AddSequence(nil, yamlstream.ANY_SEQUENCE_STYLE)
	require.NoError(t, err)
	v, err := doc.AddScalar(nil, []byte("v"), yamlstream.ANY_SCALAR_STYLE)
	require.NoError(t, err)
	require.NoError(t, doc.AppendSequenceItem(s, v))
	require.NoError(t, doc.AppendSequenceItem(s, v))
	require.NoError(t, doc.AppendMappingPair(m, k, s))
	require.Error(t, doc.AppendSequenceItem(m, v))

	out, err := yamlstream.Dump(doc)
	require.NoError(t, err)
	require.Equal(t, "k:\n  - &id001 v\n  - *id001\n", string(out))
}
