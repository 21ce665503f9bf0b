package yamlstream_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/willabides/yamlstream"
	yamlv3 "gopkg.in/yaml.v3"
)

var testData = []string{
	`{}`,
	`v: hi`,
	`v: true`,
	`v: 10`,
	`v: 0b10`,
	`v: 0xA`,
	`v: 4294967296`,
	`v: 0.1`,
	`v: .1`,
	`v: .Inf`,
	`v: -.Inf`,
	`v: -10`,
	`v: -.1`,
	`123`,
	`canonical: 6.8523e+5`,
	`expo: 685.230_15e+03`,
	`fixed: 685_230.15`,
	`neginf: -.inf`,
	`empty:`,
	`canonical: ~`,
	`english: null`,
	`~: null key`,
	`seq: [A,B]`,
	`seq: [A,B,C,]`,
	`seq: [A,1,C]`,
	"seq:\n - A\n - B",
	"seq:\n - A\n - B\n - C",
	"seq:\n - A\n - 1\n - C",
	"scalar: | # Comment\n\n literal\n\n \ttext\n\n",
	"scalar: > # Comment\n\n folded\n line\n \n next\n line\n  * one\n  * two\n\n last\n line\n\n",
	"a: {b: c}",
	"a: {b: c, 1: d}",
	"a: [b,c,d]",
	"'1': '\"2\"'",
	"v:\n- A\n- 'B\n\n  C'\n",
	"v: !!float '1.1'",
	"v: !!null ''",
	"%TAG !y! tag:yaml.org,2002:\n---\nv: !y!int '1'",
	"v: ! test",
	"a: &x 1\nb: &y 2\nc: *x\nd: *y\n",
	"a: &a {c: 1}\nb: *a",
	"a: &a [1, 2]\nb: *a",
	"foo: ''",
	"a: {b: https://github.com/go-yaml/yaml}",
	"a: [https://github.com/go-yaml/yaml]",
	"a: <foo>",
	"a: 1:1\n",
	"a: !!binary gIGC\n",
	"a: !!binary |\n  " + strings.Repeat("kJCQ", 17) + "kJ\n  CQ\n",
	"a: 2015-02-24 18:19:39\n",
	"a: !!timestamp \"2015-01-01\"",
	"\xff\xfe\xf1\x00o\x00\xf1\x00o\x00:\x00 \x00v\x00e\x00r\x00y\x00 \x00y\x00e\x00s\x00\n\x00",
	"\xfe\xff\x00\xf1\x00o\x00\xf1\x00o\x00:\x00 \x00v\x00e\x00r\x00y\x00 \x00y\x00e\x00s\x00\n",
	"First occurrence: &anchor Foo\nSecond occurrence: *anchor\nOverride anchor: &anchor Bar\nReuse anchor: *anchor\n",
	"---\nhello\n...\n}not yaml",
	"true\n#" + strings.Repeat(" ", 512*3),
	"true #" + strings.Repeat(" ", 512*3),
	"a: b\r\nc:\r\n- d\r\n- e\r\n",
	"\n0:\n<<:\n  {}:\n",
	"---\na: 1\n---\nb: 2\n",
	"[a, b",
	"a: 'unterminated",
	"a: *missing",
}

// shape is a node graph with aliases expanded and without tags or marks.
type shape struct {
	Kind  string
	Value string
	Items []*shape
}

func shapeOf(doc *yamlstream.Document, id yamlstream.NodeID) *shape {
	node := doc.Node(id)
	s := &shape{Kind: node.Type.String(), Value: string(node.Value)}
	for _, item := range node.Items {
		s.Items = append(s.Items, shapeOf(doc, item))
	}
	for _, pair := range node.Pairs {
		s.Items = append(s.Items, shapeOf(doc, pair.Key), shapeOf(doc, pair.Value))
	}
	return s
}

func v3ShapeOf(n *yamlv3.Node) *shape {
	switch n.Kind {
	case yamlv3.DocumentNode:
		return v3ShapeOf(n.Content[0])
	case yamlv3.AliasNode:
		return v3ShapeOf(n.Alias)
	case yamlv3.ScalarNode:
		return &shape{Kind: "scalar", Value: n.Value}
	}
	s := &shape{Kind: "sequence"}
	if n.Kind == yamlv3.MappingNode {
		s.Kind = "mapping"
	}
	for _, c := range n.Content {
		s.Items = append(s.Items, v3ShapeOf(c))
	}
	return s
}

func loadShapes(data []byte) ([]*shape, error) {
	docs, err := yamlstream.Load(data)
	if err != nil {
		return nil, err
	}
	shapes := make([]*shape, len(docs))
	for i, doc := range docs {
		shapes[i] = shapeOf(doc, 1)
	}
	return shapes, nil
}

func v3LoadShapes(data []byte) ([]*shape, error) {
	dec := yamlv3.NewDecoder(bytes.NewReader(data))
	var shapes []*shape
	for {
		var node yamlv3.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return shapes, nil
		}
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, v3ShapeOf(&node))
	}
}

func FuzzComposeCompatibility(f *testing.F) {
	for _, s := range testData {
		f.Add(s)
	}
	f.Fuzz(testComposeCompatibility)
}

func testComposeCompatibility(t *testing.T, data string) {
	t.Helper()
	var got, want []*shape
	var err, v3err error
	v3recovered := capturePanic(func() {
		want, v3err = v3LoadShapes([]byte(data))
	})
	recovered := capturePanic(func() {
		got, err = loadShapes([]byte(data))
	})
	// fail on our panic no matter what
	require.Nil(t, recovered)
	// don't continue if v3 panicked
	if v3recovered != nil {
		return
	}
	if v3err != nil {
		require.Errorf(t, err, "v3 error: %v", v3err)
		return
	}
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("documents differ (-v3 +ours):\n%s", diff)
	}
}

// capturePanic runs fn and returns the recovered value if fn panics
func capturePanic(fn func()) (recovered any) {
	defer func() {
		recovered = recover()
	}()
	fn()
	return nil
}

var roundTripData = []string{
	"a: 1\nb: [x, y]\nc: {d: e}\n",
	"- &a one\n- *a\n- 'single'\n- \"dq\\tx\"\n",
	"lit: |\n  line1\n  line2\nfold: >\n  a\n  b\n",
	"? [complex, key]\n: value\nempty:\n",
	"- - nested\n  - seq\n- k: v\n",
	"a: this is\n  folded plain\n",
	"%TAG !y! tag:yaml.org,2002:\n---\nv: !y!int '1'\n",
	"a: &x 1\nb: &y 2\nc: *x\nd: *y\n",
	"---\na: 1\n---\nb: 2\n",
	"v: !!binary |\n  " + strings.Repeat("kJCQ", 17) + "kJ\n",
	"quoted: \"tab\\there\\nline\"\nunicode: café\n",
}

// Dumping a document and reading the output back with yaml.v3 gives the same
// node graph.
func TestDumpCompatibility(t *testing.T) {
	for _, data := range roundTripData {
		t.Run(data, func(t *testing.T) {
			docs, err := yamlstream.Load([]byte(data))
			require.NoError(t, err)
			out, err := yamlstream.Dump(docs...)
			require.NoError(t, err)

			want, err := v3LoadShapes([]byte(data))
			require.NoError(t, err)
			got, err := v3LoadShapes(out)
			require.NoError(t, err, "output:\n%s", out)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("documents differ (-want +got):\n%s\noutput:\n%s", diff, out)
			}
		})
	}
}

func TestCanonicalCompatibility(t *testing.T) {
	for _, data := range roundTripData {
		t.Run(data, func(t *testing.T) {
			docs, err := yamlstream.Load([]byte(data))
			require.NoError(t, err)
			var buf bytes.Buffer
			e := yamlstream.NewEncoder(&buf)
			e.SetCanonical(true)
			for _, doc := range docs {
				require.NoError(t, e.Encode(doc))
			}
			require.NoError(t, e.Close())

			want, err := loadShapes([]byte(data))
			require.NoError(t, err)
			got, err := v3LoadShapes(buf.Bytes())
			require.NoError(t, err, "output:\n%s", buf.String())
			require.Empty(t, cmp.Diff(want, got), "output:\n%s", buf.String())
		})
	}
}
