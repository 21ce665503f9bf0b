package eventfmt_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/willabides/yamlstream/internal/emitter"
	"github.com/willabides/yamlstream/internal/eventfmt"
	"github.com/willabides/yamlstream/internal/parserc"
	"github.com/willabides/yamlstream/internal/yamlh"
)

func formatAll(t *testing.T, input string) string {
	t.Helper()
	var buf bytes.Buffer
	w := eventfmt.NewWriter(&buf)
	p := parserc.NewBytes([]byte(input))
	for {
		event, err := p.Parse()
		require.NoError(t, err)
		require.NoError(t, w.Write(event))
		if event.Type == yamlh.STREAM_END_EVENT {
			return buf.String()
		}
	}
}

var formatTests = []struct {
	name  string
	input string
	want  string
}{
	{
		name:  "multiple documents",
		input: "---\na: 1\n---\nb: 2\n",
		want: `+STR
+DOC ---
+MAP
=VAL :a
=VAL :1
-MAP
-DOC
+DOC ---
+MAP
=VAL :b
=VAL :2
-MAP
-DOC
-STR
`,
	},
	{
		name:  "properties and styles",
		input: "- &a !!str 'x'\n- *a\n- \"t\\tab\"\n- |\n  lit\n- >\n  fold\n...\n",
		want: `+STR
+DOC
+SEQ
=VAL &a <tag:yaml.org,2002:str> 'x
=ALI *a
=VAL "t\tab
=VAL |lit\n
=VAL >fold\n
-SEQ
-DOC ...
-STR
`,
	},
	{
		name:  "collection properties",
		input: "&m !!map {k: &s !!seq [v]}\n",
		want: `+STR
+DOC
+MAP &m <tag:yaml.org,2002:map>
=VAL :k
+SEQ &s <tag:yaml.org,2002:seq>
=VAL :v
-SEQ
-MAP
-DOC
-STR
`,
	},
	{
		name:  "empty stream",
		input: "",
		want:  "+STR\n-STR\n",
	},
}

func TestFormat(t *testing.T) {
	for _, td := range formatTests {
		t.Run(td.name, func(t *testing.T) {
			require.Equal(t, td.want, formatAll(t, td.input))
		})
	}
}

func TestEscaping(t *testing.T) {
	event := &yamlh.Event{
		Type:  yamlh.SCALAR_EVENT,
		Value: []byte("a\\b\x00c\bd\re\tf\ng"),
		Style: yamlh.YamlStyle(yamlh.DOUBLE_QUOTED_SCALAR_STYLE),
	}
	line := eventfmt.Line(event)
	require.Equal(t, `=VAL "a\\b\0c\bd\re\tf\ng`, line)

	parsed, err := eventfmt.ParseLine(line)
	require.NoError(t, err)
	require.Equal(t, event.Value, parsed.Value)
}

func TestParseLineRoundTrip(t *testing.T) {
	for _, td := range formatTests {
		t.Run(td.name, func(t *testing.T) {
			lines := strings.Split(strings.TrimSuffix(td.want, "\n"), "\n")
			for _, line := range lines {
				event, err := eventfmt.ParseLine(line)
				require.NoError(t, err)
				require.Equal(t, line, eventfmt.Line(event))
			}
		})
	}
}

func TestParseLineFlags(t *testing.T) {
	event, err := eventfmt.ParseLine("=VAL :x")
	require.NoError(t, err)
	require.True(t, event.Implicit)
	require.True(t, event.Quoted_implicit)

	event, err = eventfmt.ParseLine("=VAL <tag:yaml.org,2002:int> :1")
	require.NoError(t, err)
	require.False(t, event.Implicit)
	require.False(t, event.Quoted_implicit)
	require.Equal(t, "tag:yaml.org,2002:int", string(event.Tag))

	event, err = eventfmt.ParseLine("+SEQ [] &a")
	require.NoError(t, err)
	require.Equal(t, yamlh.FLOW_SEQUENCE_STYLE, event.Sequence_style())
	require.Equal(t, "a", string(event.Anchor))
	require.True(t, event.Implicit)

	event, err = eventfmt.ParseLine("+MAP")
	require.NoError(t, err)
	require.Equal(t, yamlh.BLOCK_MAPPING_STYLE, event.Mapping_style())

	event, err = eventfmt.ParseLine("=VAL : leading space")
	require.NoError(t, err)
	require.Equal(t, " leading space", string(event.Value))
}

func TestParseLineErrors(t *testing.T) {
	for _, line := range []string{
		"",
		"bogus",
		"=VAL",
		"=VAL ?x",
		"=VAL <tag :x",
		"=VAL & :x",
		"=VAL :trailing\\",
		"=VAL :bad\\q",
		"=ALI",
		"+MAP :x",
	} {
		_, err := eventfmt.ParseLine(line)
		require.Error(t, err, "line: %q", line)
	}
}

func TestReader(t *testing.T) {
	r := eventfmt.NewReader(strings.NewReader("+STR\n\n+DOC\n=VAL :a\n-DOC\n-STR\n"))
	var types []yamlh.EventType
	for {
		event, err := r.Parse()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		types = append(types, event.Type)
	}
	require.Equal(t, []yamlh.EventType{
		yamlh.STREAM_START_EVENT,
		yamlh.DOCUMENT_START_EVENT,
		yamlh.SCALAR_EVENT,
		yamlh.DOCUMENT_END_EVENT,
		yamlh.STREAM_END_EVENT,
	}, types)

	r = eventfmt.NewReader(strings.NewReader("+STR\nnope\n"))
	_, err := r.Parse()
	require.NoError(t, err)
	_, err = r.Parse()
	require.ErrorContains(t, err, "line 2")
}

func TestReaderLongLine(t *testing.T) {
	value := strings.Repeat("x", 200*1024)
	r := eventfmt.NewReader(strings.NewReader("+STR\n+DOC\n=VAL :" + value + "\n-DOC\n-STR\n"))
	var scalars []string
	for {
		event, err := r.Parse()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if event.Type == yamlh.SCALAR_EVENT {
			scalars = append(scalars, string(event.Value))
		}
	}
	require.Equal(t, []string{value}, scalars)
}

func TestEmitFromNotation(t *testing.T) {
	r := eventfmt.NewReader(strings.NewReader("+STR\n+DOC\n+SEQ []\n=VAL :a\n=VAL 'b\n-SEQ\n-DOC\n-STR\n"))
	var buf bytes.Buffer
	e := emitter.New(&buf)
	for {
		event, err := r.Parse()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.NoError(t, e.Emit(event))
	}
	require.Equal(t, "[a, 'b']\n", buf.String())
}

func TestDecorate(t *testing.T) {
	var buf bytes.Buffer
	w := eventfmt.NewWriter(&buf)
	w.Decorate = func(event *yamlh.Event, line string) string {
		return event.Type.String() + ": " + line
	}
	require.NoError(t, w.Write(&yamlh.Event{Type: yamlh.STREAM_START_EVENT}))
	require.Equal(t, "stream start: +STR\n", buf.String())
}
