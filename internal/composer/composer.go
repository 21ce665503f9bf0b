// Package composer builds documents from the parser's event stream.
package composer

import (
	"github.com/willabides/yamlstream/internal/document"
	"github.com/willabides/yamlstream/internal/growable"
	"github.com/willabides/yamlstream/internal/yamlh"
)

// EventSource yields events one at a time. *parserc.Parser satisfies it.
type EventSource interface {
	Parse() (*yamlh.Event, error)
}

// frame is an open collection.
type frame struct {
	id     document.NodeID
	anchor []byte

	// key is the id of a mapping key still waiting for its value.
	key document.NodeID
}

// Composer turns the events of one document at a time into a
// document.Document.
type Composer struct {
	events EventSource

	stream_start_seen bool
	stream_end_seen   bool

	encoding yamlh.Encoding

	// anchors maps anchor names to the node most recently declared with
	// them in the current document.
	anchors map[string]document.NodeID
	frames  growable.Stack[frame]

	err error
}

// New returns a composer reading from events.
func New(events EventSource) *Composer {
	return &Composer{events: events}
}

// Err returns the first error the composer reported.
func (c *Composer) Err() error {
	return c.err
}

func (c *Composer) fail(err error) error {
	if c.err == nil {
		c.err = err
	}
	return err
}

func (c *Composer) next() (*yamlh.Event, error) {
	event, err := c.events.Parse()
	if err != nil {
		return nil, c.fail(err)
	}
	return event, nil
}

func (c *Composer) composerError(problem string, mark yamlh.Mark) error {
	return c.fail(yamlh.NewError(yamlh.COMPOSER_ERROR, problem, mark))
}

// Load composes the next document of the stream. Once the stream is
// exhausted it returns an empty document (Empty reports true) on every
// call.
func (c *Composer) Load() (*document.Document, error) {
	if c.err != nil {
		return nil, c.err
	}
	if !c.stream_start_seen {
		event, err := c.next()
		if err != nil {
			return nil, err
		}
		if event.Type != yamlh.STREAM_START_EVENT {
			return nil, c.composerError("did not find expected <stream-start>", event.Start_mark)
		}
		c.stream_start_seen = true
		c.encoding = event.Encoding
	}
	if c.stream_end_seen {
		return c.emptyDocument()
	}

	event, err := c.next()
	if err != nil {
		return nil, err
	}
	switch event.Type {
	case yamlh.STREAM_END_EVENT:
		c.stream_end_seen = true
		return c.emptyDocument()
	case yamlh.DOCUMENT_START_EVENT:
	default:
		return nil, c.composerError("did not find expected <document-start>", event.Start_mark)
	}

	doc, err := document.New(event.Version_directive, event.Tag_directives, event.Implicit, false)
	if err != nil {
		return nil, c.fail(err)
	}
	doc.Encoding = c.encoding
	doc.Start_mark = event.Start_mark

	if err = c.loadNodes(doc); err != nil {
		doc.Release()
		return nil, err
	}
	return doc, nil
}

func (c *Composer) emptyDocument() (*document.Document, error) {
	doc, err := document.New(nil, nil, false, false)
	if err != nil {
		return nil, c.fail(err)
	}
	doc.Encoding = c.encoding
	return doc, nil
}

// loadNodes consumes events up to and including DOCUMENT-END.
func (c *Composer) loadNodes(doc *document.Document) error {
	c.anchors = map[string]document.NodeID{}
	c.frames.Truncate(0)
	defer func() {
		c.anchors = nil
	}()

	for {
		event, err := c.next()
		if err != nil {
			return err
		}

		switch event.Type {
		case yamlh.DOCUMENT_END_EVENT:
			if !c.frames.Empty() {
				return c.composerError("found unterminated collection", event.Start_mark)
			}
			doc.End_implicit = event.Implicit
			doc.End_mark = event.End_mark
			return nil

		case yamlh.ALIAS_EVENT:
			id, ok := c.anchors[string(event.Anchor)]
			if !ok {
				return c.fail(yamlh.NewContextError(yamlh.COMPOSER_ERROR,
					"while composing a node", c.contextMark(doc),
					"found undefined alias", event.Start_mark))
			}
			if err = c.attach(doc, id); err != nil {
				return err
			}

		case yamlh.SCALAR_EVENT:
			id, err := doc.AddScalar(nodeTag(event.Tag), event.Value, event.Scalar_style())
			if err != nil {
				return c.fail(err)
			}
			node := doc.Node(id)
			node.Start_mark = event.Start_mark
			node.End_mark = event.End_mark
			c.setAnchor(event.Anchor, id)
			if err = c.attach(doc, id); err != nil {
				return err
			}

		case yamlh.SEQUENCE_START_EVENT, yamlh.MAPPING_START_EVENT:
			var id document.NodeID
			if event.Type == yamlh.SEQUENCE_START_EVENT {
				id, err = doc.AddSequence(nodeTag(event.Tag), event.Sequence_style())
			} else {
				id, err = doc.AddMapping(nodeTag(event.Tag), event.Mapping_style())
			}
			if err != nil {
				return c.fail(err)
			}
			doc.Node(id).Start_mark = event.Start_mark
			if err = c.frames.Push(frame{id: id, anchor: event.Anchor}); err != nil {
				return c.fail(err)
			}

		case yamlh.SEQUENCE_END_EVENT, yamlh.MAPPING_END_EVENT:
			if c.frames.Empty() {
				return c.composerError("found unexpected "+event.Type.String(), event.Start_mark)
			}
			f := c.frames.Pop()
			node := doc.Node(f.id)
			want := document.SEQUENCE_NODE
			if event.Type == yamlh.MAPPING_END_EVENT {
				want = document.MAPPING_NODE
			}
			if node.Type != want {
				return c.fail(yamlh.NewContextError(yamlh.COMPOSER_ERROR,
					"while composing a "+node.Type.String(), node.Start_mark,
					"found unexpected "+event.Type.String(), event.Start_mark))
			}
			if f.key != 0 {
				return c.fail(yamlh.NewContextError(yamlh.COMPOSER_ERROR,
					"while composing a mapping", node.Start_mark,
					"found key without a value", event.Start_mark))
			}
			node.End_mark = event.End_mark
			// The anchor becomes visible only once the collection is
			// complete, so a collection cannot contain an alias of itself.
			c.setAnchor(f.anchor, f.id)
			if err = c.attach(doc, f.id); err != nil {
				return err
			}

		default:
			return c.composerError("found unexpected "+event.Type.String(), event.Start_mark)
		}
	}
}

// nodeTag maps the non-specific tag "!" to the default tag for the node
// kind.
func nodeTag(tag []byte) []byte {
	if len(tag) == 1 && tag[0] == '!' {
		return nil
	}
	return tag
}

func (c *Composer) setAnchor(anchor []byte, id document.NodeID) {
	if len(anchor) > 0 {
		c.anchors[string(anchor)] = id
	}
}

// contextMark is the start of the innermost open collection, or of the
// document.
func (c *Composer) contextMark(doc *document.Document) yamlh.Mark {
	if f := c.frames.Top(); f != nil {
		return doc.Node(f.id).Start_mark
	}
	return doc.Start_mark
}

// attach adds a finished node to the open collection. A node with no open
// collection is the root, which always has id 1.
func (c *Composer) attach(doc *document.Document, id document.NodeID) error {
	f := c.frames.Top()
	if f == nil {
		return nil
	}
	parent := doc.Node(f.id)
	var err error
	switch parent.Type {
	case document.SEQUENCE_NODE:
		err = doc.AppendSequenceItem(f.id, id)
	case document.MAPPING_NODE:
		if f.key == 0 {
			f.key = id
			return nil
		}
		err = doc.AppendMappingPair(f.id, f.key, id)
		f.key = 0
	}
	if err != nil {
		return c.fail(err)
	}
	return nil
}
