package emitter

import "github.com/willabides/yamlstream/internal/yamlh"

// Keys longer than this are written with the "? " indicator.
const maxSimpleKeyLength = 128

// nextIsEmpty reports whether the two queued events at the head are start
// followed directly by end.
func nextIsEmpty(e *Emitter, start, end yamlh.EventType) bool {
	if e.events.Len() < 2 {
		return false
	}
	return e.events.At(0).Type == start && e.events.At(1).Type == end
}

func checkEmptySequence(e *Emitter) bool {
	return nextIsEmpty(e, yamlh.SEQUENCE_START_EVENT, yamlh.SEQUENCE_END_EVENT)
}

func checkEmptyMapping(e *Emitter) bool {
	return nextIsEmpty(e, yamlh.MAPPING_START_EVENT, yamlh.MAPPING_END_EVENT)
}

// checkSimpleKey reports whether the node at the head of the queue fits on
// one line as an implicit key. Only aliases, single-line scalars and empty
// collections qualify.
func checkSimpleKey(e *Emitter) bool {
	properties := len(e.anchorData.Anchor) + len(e.tagData.Handle) + len(e.tagData.Suffix)
	switch e.events.Head().Type {
	case yamlh.ALIAS_EVENT:
		return len(e.anchorData.Anchor) <= maxSimpleKeyLength
	case yamlh.SCALAR_EVENT:
		return !e.scalarData.multiline && properties+len(e.scalarData.value) <= maxSimpleKeyLength
	case yamlh.SEQUENCE_START_EVENT:
		return checkEmptySequence(e) && properties <= maxSimpleKeyLength
	case yamlh.MAPPING_START_EVENT:
		return checkEmptyMapping(e) && properties <= maxSimpleKeyLength
	}
	return false
}
