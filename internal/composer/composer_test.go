package composer_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/willabides/yamlstream/internal/composer"
	"github.com/willabides/yamlstream/internal/document"
	"github.com/willabides/yamlstream/internal/parserc"
	"github.com/willabides/yamlstream/internal/yamlh"
)

func load(t *testing.T, data string) *document.Document {
	t.Helper()
	doc, err := composer.New(parserc.NewBytes([]byte(data))).Load()
	require.NoError(t, err)
	return doc
}

func scalarValue(t *testing.T, doc *document.Document, id document.NodeID) string {
	t.Helper()
	node := doc.Node(id)
	require.NotNil(t, node)
	require.Equal(t, document.SCALAR_NODE, node.Type)
	return string(node.Value)
}

func TestLoadMapping(t *testing.T) {
	doc := load(t, "a: 1\nb: [x, y]\n")
	root := doc.Root()
	require.Equal(t, document.MAPPING_NODE, root.Type)
	require.Equal(t, yamlh.MAP_TAG, string(root.Tag))
	require.Equal(t, yamlh.BLOCK_MAPPING_STYLE, root.Mapping_style)
	require.Len(t, root.Pairs, 2)

	require.Equal(t, "a", scalarValue(t, doc, root.Pairs[0].Key))
	require.Equal(t, "1", scalarValue(t, doc, root.Pairs[0].Value))
	require.Equal(t, "b", scalarValue(t, doc, root.Pairs[1].Key))

	seq := doc.Node(root.Pairs[1].Value)
	require.Equal(t, document.SEQUENCE_NODE, seq.Type)
	require.Equal(t, yamlh.FLOW_SEQUENCE_STYLE, seq.Sequence_style)
	require.Equal(t, "x", scalarValue(t, doc, seq.Items[0]))
	require.Equal(t, "y", scalarValue(t, doc, seq.Items[1]))

	require.Equal(t, yamlh.Mark{}, root.Start_mark)
	require.Equal(t, yamlh.Mark{Index: 8, Line: 1, Column: 3}, seq.Start_mark)
	require.Equal(t, yamlh.Mark{Index: 14, Line: 1, Column: 9}, seq.End_mark)
	require.True(t, doc.Start_implicit)
	require.True(t, doc.End_implicit)
}

func TestNodeIDsAreDense(t *testing.T) {
	doc := load(t, "- a\n- [b, c]\n- d\n")
	require.Equal(t, 6, doc.Len())
	for i, node := range doc.Nodes() {
		for _, item := range node.Items {
			// Children never point outside the array.
			require.True(t, item > 0 && int(item) <= doc.Len(), "node %d", i+1)
		}
	}
}

func TestLoadDefaultTags(t *testing.T) {
	doc := load(t, "!!int 1: ! x\n? 'q'\n: !custom {}\n")
	root := doc.Root()
	require.Equal(t, yamlh.INT_TAG, string(doc.Node(root.Pairs[0].Key).Tag))
	require.Equal(t, yamlh.STR_TAG, string(doc.Node(root.Pairs[0].Value).Tag))
	require.Equal(t, yamlh.STR_TAG, string(doc.Node(root.Pairs[1].Key).Tag))
	require.Equal(t, "!custom", string(doc.Node(root.Pairs[1].Value).Tag))
}

func TestAliasSharesNode(t *testing.T) {
	doc := load(t, "- anchor: &a [1, 2, 3]\n- *a\n")
	root := doc.Root()
	require.Len(t, root.Items, 2)
	first := doc.Node(root.Items[0])
	require.Equal(t, document.MAPPING_NODE, first.Type)
	anchored := first.Pairs[0].Value
	require.Equal(t, anchored, root.Items[1])
	require.Len(t, doc.Node(anchored).Items, 3)
}

func TestAnchorRebinding(t *testing.T) {
	doc := load(t, "- &a 1\n- *a\n- &a 2\n- *a\n")
	root := doc.Root()
	require.Len(t, root.Items, 4)
	require.Equal(t, root.Items[0], root.Items[1])
	require.Equal(t, root.Items[2], root.Items[3])
	require.NotEqual(t, root.Items[1], root.Items[3])
	require.Equal(t, "1", scalarValue(t, doc, root.Items[1]))
	require.Equal(t, "2", scalarValue(t, doc, root.Items[3]))
}

func TestAnchorsAreScopedToDocument(t *testing.T) {
	c := composer.New(parserc.NewBytes([]byte("--- &a x\n--- *a\n")))
	doc, err := c.Load()
	require.NoError(t, err)
	require.Equal(t, "x", string(doc.Root().Value))

	_, err = c.Load()
	require.Equal(t, yamlh.COMPOSER_ERROR, yamlh.ErrorKind(err))
	require.Same(t, err, c.Err())
}

func TestUndefinedAlias(t *testing.T) {
	_, err := composer.New(parserc.NewBytes([]byte("a: [b, *x]"))).Load()
	var yerr *yamlh.Error
	require.ErrorAs(t, err, &yerr)
	require.Equal(t, yamlh.COMPOSER_ERROR, yerr.Kind)
	require.Equal(t, "found undefined alias", yerr.Problem)
	require.Equal(t, yamlh.Mark{Index: 7, Column: 7}, yerr.Problem_mark)
	require.Equal(t, "while composing a node", yerr.Context)
	require.Equal(t, yamlh.Mark{Index: 3, Column: 3}, yerr.Context_mark)
}

func TestCollectionCannotAliasItself(t *testing.T) {
	_, err := composer.New(parserc.NewBytes([]byte("&a [*a]"))).Load()
	require.Equal(t, yamlh.COMPOSER_ERROR, yamlh.ErrorKind(err))
}

func TestLoadStream(t *testing.T) {
	c := composer.New(parserc.NewBytes([]byte("%YAML 1.1\n--- a\n...\n--- b\n")))

	doc, err := c.Load()
	require.NoError(t, err)
	require.Equal(t, "a", string(doc.Root().Value))
	require.Equal(t, &yamlh.VersionDirective{Major: 1, Minor: 1}, doc.Version_directive)
	require.False(t, doc.Start_implicit)
	require.False(t, doc.End_implicit)
	require.Equal(t, yamlh.UTF8_ENCODING, doc.Encoding)

	doc, err = c.Load()
	require.NoError(t, err)
	require.Equal(t, "b", string(doc.Root().Value))
	require.Nil(t, doc.Version_directive)
	require.True(t, doc.End_implicit)

	for i := 0; i < 2; i++ {
		doc, err = c.Load()
		require.NoError(t, err)
		require.True(t, doc.Empty())
		require.Nil(t, doc.Root())
	}
}

func TestLoadEmptyStream(t *testing.T) {
	doc, err := composer.New(parserc.NewBytes(nil)).Load()
	require.NoError(t, err)
	require.True(t, doc.Empty())
}

func TestLoadParserError(t *testing.T) {
	c := composer.New(parserc.NewBytes([]byte("a: [b")))
	_, err := c.Load()
	require.Equal(t, yamlh.PARSER_ERROR, yamlh.ErrorKind(err))

	_, again := c.Load()
	require.Same(t, err, again)
}

type eventList []*yamlh.Event

func (l *eventList) Parse() (*yamlh.Event, error) {
	if len(*l) == 0 {
		return &yamlh.Event{}, nil
	}
	event := (*l)[0]
	*l = (*l)[1:]
	return event, nil
}

func TestMismatchedEndEvent(t *testing.T) {
	events := eventList{
		{Type: yamlh.STREAM_START_EVENT},
		{Type: yamlh.DOCUMENT_START_EVENT, Implicit: true},
		{Type: yamlh.MAPPING_START_EVENT, Start_mark: yamlh.Mark{Index: 4, Line: 1}},
		{Type: yamlh.SEQUENCE_END_EVENT, Start_mark: yamlh.Mark{Index: 9, Line: 2}},
	}
	_, err := composer.New(&events).Load()
	var yerr *yamlh.Error
	require.ErrorAs(t, err, &yerr)
	require.Equal(t, yamlh.COMPOSER_ERROR, yerr.Kind)
	require.Equal(t, "found unexpected sequence end", yerr.Problem)
	require.Equal(t, "while composing a mapping", yerr.Context)
	require.Equal(t, yamlh.Mark{Index: 4, Line: 1}, yerr.Context_mark)
	require.Equal(t, yamlh.Mark{Index: 9, Line: 2}, yerr.Problem_mark)
}
