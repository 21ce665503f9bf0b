package emitter

import (
	"fmt"

	"github.com/willabides/yamlstream/internal/document"
	"github.com/willabides/yamlstream/internal/yamlh"
)

// Dumper writes whole documents through an Emitter. Nodes reachable more
// than once from the root are written once with a generated anchor and
// then as aliases.
type Dumper struct {
	emitter *Emitter

	opened bool
	closed bool

	// Per document, indexed by node id minus one.
	references []int
	anchors    []int
	serialized []bool

	lastAnchorID int
}

// NewDumper returns a dumper writing through e.
func NewDumper(e *Emitter) *Dumper {
	return &Dumper{emitter: e}
}

// Open emits STREAM-START. Dump calls it when needed.
func (d *Dumper) Open() error {
	if d.opened {
		return nil
	}
	err := d.emitter.Emit(&yamlh.Event{
		Type:     yamlh.STREAM_START_EVENT,
		Encoding: yamlh.ANY_ENCODING,
	})
	if err != nil {
		return err
	}
	d.opened = true
	return nil
}

// Close emits STREAM-END and flushes. Closing a closed dumper is a no-op.
func (d *Dumper) Close() error {
	if d.closed {
		return nil
	}
	if err := d.Open(); err != nil {
		return err
	}
	if err := d.emitter.Emit(&yamlh.Event{Type: yamlh.STREAM_END_EVENT}); err != nil {
		return err
	}
	d.closed = true
	return d.emitter.Finish()
}

// Dump writes doc as the next document of the stream. An empty document
// closes the stream instead.
func (d *Dumper) Dump(doc *document.Document) error {
	defer d.reset()
	if err := d.Open(); err != nil {
		return err
	}
	if doc.Empty() {
		return d.Close()
	}

	n := doc.Len()
	d.references = make([]int, n)
	d.anchors = make([]int, n)
	d.serialized = make([]bool, n)

	err := d.emitter.Emit(&yamlh.Event{
		Type:              yamlh.DOCUMENT_START_EVENT,
		Start_mark:        doc.Start_mark,
		End_mark:          doc.Start_mark,
		Version_directive: doc.Version_directive,
		Tag_directives:    doc.Tag_directives,
		Implicit:          doc.Start_implicit,
	})
	if err != nil {
		return err
	}
	d.anchorNode(doc, 1)
	if err = d.dumpNode(doc, 1); err != nil {
		return err
	}
	return d.emitter.Emit(&yamlh.Event{
		Type:       yamlh.DOCUMENT_END_EVENT,
		Start_mark: doc.End_mark,
		End_mark:   doc.End_mark,
		Implicit:   doc.End_implicit,
	})
}

func (d *Dumper) reset() {
	d.references = nil
	d.anchors = nil
	d.serialized = nil
	d.lastAnchorID = 0
}

// anchorNode counts references to id and its descendants. The second
// reference to a node gives it an anchor.
func (d *Dumper) anchorNode(doc *document.Document, id document.NodeID) {
	i := int(id) - 1
	d.references[i]++
	if d.references[i] == 2 {
		d.lastAnchorID++
		d.anchors[i] = d.lastAnchorID
		return
	}
	if d.references[i] > 2 {
		return
	}
	node := doc.Node(id)
	switch node.Type {
	case document.SEQUENCE_NODE:
		for _, item := range node.Items {
			d.anchorNode(doc, item)
		}
	case document.MAPPING_NODE:
		for _, pair := range node.Pairs {
			d.anchorNode(doc, pair.Key)
			d.anchorNode(doc, pair.Value)
		}
	}
}

func generateAnchor(id int) []byte {
	return []byte(fmt.Sprintf("id%03d", id))
}

func (d *Dumper) dumpNode(doc *document.Document, id document.NodeID) error {
	i := int(id) - 1
	var anchor []byte
	if d.anchors[i] != 0 {
		anchor = generateAnchor(d.anchors[i])
	}
	node := doc.Node(id)
	if d.serialized[i] {
		return d.emitter.Emit(&yamlh.Event{
			Type:       yamlh.ALIAS_EVENT,
			Start_mark: node.Start_mark,
			End_mark:   node.End_mark,
			Anchor:     anchor,
		})
	}
	d.serialized[i] = true

	switch node.Type {
	case document.SCALAR_NODE:
		return d.dumpScalar(node, anchor)
	case document.SEQUENCE_NODE:
		return d.dumpSequence(doc, node, anchor)
	case document.MAPPING_NODE:
		return d.dumpMapping(doc, node, anchor)
	}
	panic(fmt.Sprintf("unexpected node type %v", node.Type))
}

func (d *Dumper) dumpScalar(node *document.Node, anchor []byte) error {
	isStr := string(node.Tag) == yamlh.STR_TAG
	return d.emitter.Emit(&yamlh.Event{
		Type:            yamlh.SCALAR_EVENT,
		Start_mark:      node.Start_mark,
		End_mark:        node.End_mark,
		Anchor:          anchor,
		Tag:             node.Tag,
		Value:           node.Value,
		Implicit:        isStr && plainIsString(string(node.Value)),
		Quoted_implicit: isStr,
		Style:           yamlh.YamlStyle(node.Scalar_style),
	})
}

func (d *Dumper) dumpSequence(doc *document.Document, node *document.Node, anchor []byte) error {
	err := d.emitter.Emit(&yamlh.Event{
		Type:       yamlh.SEQUENCE_START_EVENT,
		Start_mark: node.Start_mark,
		End_mark:   node.Start_mark,
		Anchor:     anchor,
		Tag:        node.Tag,
		Implicit:   string(node.Tag) == yamlh.SEQ_TAG,
		Style:      yamlh.YamlStyle(node.Sequence_style),
	})
	if err != nil {
		return err
	}
	for _, item := range node.Items {
		if err = d.dumpNode(doc, item); err != nil {
			return err
		}
	}
	return d.emitter.Emit(&yamlh.Event{
		Type:       yamlh.SEQUENCE_END_EVENT,
		Start_mark: node.End_mark,
		End_mark:   node.End_mark,
	})
}

func (d *Dumper) dumpMapping(doc *document.Document, node *document.Node, anchor []byte) error {
	err := d.emitter.Emit(&yamlh.Event{
		Type:       yamlh.MAPPING_START_EVENT,
		Start_mark: node.Start_mark,
		End_mark:   node.Start_mark,
		Anchor:     anchor,
		Tag:        node.Tag,
		Implicit:   string(node.Tag) == yamlh.MAP_TAG,
		Style:      yamlh.YamlStyle(node.Mapping_style),
	})
	if err != nil {
		return err
	}
	for _, pair := range node.Pairs {
		if err = d.dumpNode(doc, pair.Key); err != nil {
			return err
		}
		if err = d.dumpNode(doc, pair.Value); err != nil {
			return err
		}
	}
	return d.emitter.Emit(&yamlh.Event{
		Type:       yamlh.MAPPING_END_EVENT,
		Start_mark: node.End_mark,
		End_mark:   node.End_mark,
	})
}
