// Package document is the in-memory node graph built by the composer and
// walked by the dumper. Nodes live in one array owned by the Document and
// refer to each other by NodeID, a 1-based index into that array.
package document

import (
	"github.com/willabides/yamlstream/internal/growable"
	"github.com/willabides/yamlstream/internal/yamlh"
)

// NodeID identifies a node inside its Document. The zero value means "no
// node".
type NodeID int

type NodeType int

const (
	NO_NODE NodeType = iota

	SCALAR_NODE   // A scalar node.
	SEQUENCE_NODE // A sequence node.
	MAPPING_NODE  // A mapping node.
)

func (t NodeType) String() string {
	switch t {
	case SCALAR_NODE:
		return "scalar"
	case SEQUENCE_NODE:
		return "sequence"
	case MAPPING_NODE:
		return "mapping"
	}
	return "none"
}

// NodePair is a key/value entry of a mapping node.
type NodePair struct {
	Key   NodeID
	Value NodeID
}

// Node is a scalar, sequence or mapping. Only the fields for its Type are
// set.
type Node struct {
	Type NodeType

	Tag []byte

	Start_mark, End_mark yamlh.Mark

	// Scalar
	Value        []byte
	Scalar_style yamlh.YamlScalarStyle

	// Sequence
	Items          []NodeID
	Sequence_style yamlh.YamlSequenceStyle

	// Mapping
	Pairs         []NodePair
	Mapping_style yamlh.YamlMappingStyle
}

// Document owns the nodes of one YAML document. The first node added is the
// root.
type Document struct {
	nodes growable.Stack[Node]

	Encoding          yamlh.Encoding
	Version_directive *yamlh.VersionDirective
	Tag_directives    []yamlh.TagDirective

	Start_implicit bool
	End_implicit   bool

	Start_mark, End_mark yamlh.Mark
}

// New creates an empty document. The tag directives are copied and
// validated.
func New(version *yamlh.VersionDirective, tags []yamlh.TagDirective, startImplicit, endImplicit bool) (*Document, error) {
	doc := &Document{
		Start_implicit: startImplicit,
		End_implicit:   endImplicit,
	}
	if version != nil {
		v := *version
		doc.Version_directive = &v
	}
	for _, td := range tags {
		if len(td.Handle) == 0 || len(td.Prefix) == 0 {
			return nil, yamlh.NewError(yamlh.COMPOSER_ERROR, "tag directive handle and prefix must not be empty", yamlh.Mark{})
		}
		doc.Tag_directives = append(doc.Tag_directives, yamlh.TagDirective{
			Handle: append([]byte(nil), td.Handle...),
			Prefix: append([]byte(nil), td.Prefix...),
		})
	}
	return doc, nil
}

// Len returns the number of nodes. Valid ids are 1 through Len.
func (d *Document) Len() int {
	return d.nodes.Len()
}

// Empty reports whether the document has no nodes. The composer returns an
// empty document once the stream is exhausted.
func (d *Document) Empty() bool {
	return d.nodes.Empty()
}

// Node returns the node with the given id, or nil when id is out of range.
func (d *Document) Node(id NodeID) *Node {
	if id <= 0 || int(id) > d.nodes.Len() {
		return nil
	}
	return d.nodes.At(int(id) - 1)
}

// Root returns the root node, or nil for an empty document.
func (d *Document) Root() *Node {
	return d.Node(1)
}

// Nodes returns every node in id order. The slice aliases the document.
func (d *Document) Nodes() []Node {
	return d.nodes.Items()
}

func (d *Document) add(node Node) (NodeID, error) {
	if err := d.nodes.Push(node); err != nil {
		return 0, err
	}
	return NodeID(d.nodes.Len()), nil
}

func tagOrDefault(tag []byte, def string) []byte {
	if len(tag) == 0 {
		return []byte(def)
	}
	return append([]byte(nil), tag...)
}

// AddScalar appends a scalar node and returns its id. An empty tag means
// !!str.
func (d *Document) AddScalar(tag, value []byte, style yamlh.YamlScalarStyle) (NodeID, error) {
	return d.add(Node{
		Type:         SCALAR_NODE,
		Tag:          tagOrDefault(tag, yamlh.DEFAULT_SCALAR_TAG),
		Value:        append([]byte{}, value...),
		Scalar_style: style,
	})
}

// AddSequence appends an empty sequence node and returns its id. An empty
// tag means !!seq.
func (d *Document) AddSequence(tag []byte, style yamlh.YamlSequenceStyle) (NodeID, error) {
	return d.add(Node{
		Type:           SEQUENCE_NODE,
		Tag:            tagOrDefault(tag, yamlh.DEFAULT_SEQUENCE_TAG),
		Sequence_style: style,
	})
}

// AddMapping appends an empty mapping node and returns its id. An empty
// tag means !!map.
func (d *Document) AddMapping(tag []byte, style yamlh.YamlMappingStyle) (NodeID, error) {
	return d.add(Node{
		Type:          MAPPING_NODE,
		Tag:           tagOrDefault(tag, yamlh.DEFAULT_MAPPING_TAG),
		Mapping_style: style,
	})
}

// AppendSequenceItem adds item to the end of sequence. Both ids must already
// exist.
func (d *Document) AppendSequenceItem(sequence, item NodeID) error {
	seq := d.Node(sequence)
	if seq == nil || seq.Type != SEQUENCE_NODE {
		return yamlh.NewError(yamlh.COMPOSER_ERROR, "sequence node expected", yamlh.Mark{})
	}
	if d.Node(item) == nil {
		return yamlh.NewError(yamlh.COMPOSER_ERROR, "item refers to an unknown node", seq.Start_mark)
	}
	seq.Items = append(seq.Items, item)
	return nil
}

// AppendMappingPair adds a key/value pair to the end of mapping. All three
// ids must already exist.
func (d *Document) AppendMappingPair(mapping, key, value NodeID) error {
	m := d.Node(mapping)
	if m == nil || m.Type != MAPPING_NODE {
		return yamlh.NewError(yamlh.COMPOSER_ERROR, "mapping node expected", yamlh.Mark{})
	}
	if d.Node(key) == nil || d.Node(value) == nil {
		return yamlh.NewError(yamlh.COMPOSER_ERROR, "pair refers to an unknown node", m.Start_mark)
	}
	m.Pairs = append(m.Pairs, NodePair{Key: key, Value: value})
	return nil
}

// Release drops every node in one pass.
func (d *Document) Release() {
	d.nodes.Release()
	d.Tag_directives = nil
	d.Version_directive = nil
}
