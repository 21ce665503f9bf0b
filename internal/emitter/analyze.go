package emitter

import (
	"bytes"
	"strings"

	"github.com/willabides/yamlstream/internal/yamlh"
)

// blankzAt is yamlh.IsBlankZ that treats the end of b as a blank.
func blankzAt(b []byte, i int) bool {
	return i >= len(b) || yamlh.IsBlankZ(b, i)
}

func allAlpha(b []byte, from, to int) bool {
	for i := from; i < to; i += yamlh.Width(b[i]) {
		if !yamlh.IsAlpha(b, i) {
			return false
		}
	}
	return true
}

// analyzeAnchor validates an anchor or alias name and records it for
// processAnchor.
func analyzeAnchor(e *Emitter, event *yamlh.Event, name []byte, alias bool) error {
	noun := "anchor"
	if alias {
		noun = "alias"
	}
	switch {
	case len(name) == 0:
		return e.emitterError(noun+" value must not be empty", event)
	case !allAlpha(name, 0, len(name)):
		return e.emitterError(noun+" value must contain alphanumerical characters only", event)
	}
	e.anchorData.Anchor = name
	e.anchorData.Alias = alias
	return nil
}

// analyzeTag splits tag into a handle and suffix using the first directive
// whose prefix it extends. With no match the whole tag is the suffix.
func analyzeTag(e *Emitter, event *yamlh.Event, tag []byte) error {
	switch {
	case len(tag) == 0:
		return e.emitterError("tag value must not be empty", event)
	case !validUTF8(tag):
		return e.emitterError("tag value must be valid UTF-8", event)
	}
	for _, td := range e.tagDirectives {
		suffix, ok := bytes.CutPrefix(tag, td.Prefix)
		if ok && len(suffix) > 0 {
			e.tagData.Handle = td.Handle
			e.tagData.Suffix = suffix
			return nil
		}
	}
	e.tagData.Suffix = tag
	return nil
}

func analyzeVersionDirective(e *Emitter, event *yamlh.Event) error {
	v := event.Version_directive
	if v.Major == 1 && (v.Minor == 1 || v.Minor == 2) {
		return nil
	}
	return e.emitterError("incompatible %YAML directive", event)
}

func tagDirectiveProblem(td *yamlh.TagDirective) string {
	handle, prefix := td.Handle, td.Prefix
	switch {
	case len(handle) == 0:
		return "tag handle must not be empty"
	case handle[0] != '!':
		return "tag handle must start with '!'"
	case handle[len(handle)-1] != '!':
		return "tag handle must end with '!'"
	case !allAlpha(handle, 1, len(handle)-1):
		return "tag handle must contain alphanumerical characters only"
	case len(prefix) == 0:
		return "tag prefix must not be empty"
	case !validUTF8(prefix):
		return "tag prefix must be valid UTF-8"
	}
	return ""
}

func analyzeTagDirective(e *Emitter, event *yamlh.Event, td *yamlh.TagDirective) error {
	if problem := tagDirectiveProblem(td); problem != "" {
		return e.emitterError(problem, event)
	}
	return nil
}

// styleMask is the set of output styles a scalar's content rules out.
type styleMask uint8

const (
	noFlowPlain styleMask = 1 << iota
	noBlockPlain
	noSingleQuoted
	noBlock

	noPlain = noFlowPlain | noBlockPlain
)

// Characters that may not open a plain scalar in any context.
const leadingIndicators = "#,[]{}&*!|>'\"%@` "

// firstCharMask is what the first character of a scalar rules out.
// nextBlank reports whether a blank or the end follows it.
func firstCharMask(c byte, nextBlank bool) styleMask {
	switch {
	case strings.IndexByte(leadingIndicators, c) >= 0:
		return noPlain
	case c == '?' || c == ':':
		if nextBlank {
			return noPlain
		}
		return noFlowPlain
	case c == '-' && nextBlank:
		return noPlain
	}
	return 0
}

// innerCharMask is firstCharMask for every later character. prevBlank
// reports whether a blank or break precedes it.
func innerCharMask(c byte, prevBlank, nextBlank bool) styleMask {
	switch c {
	case ',', '?', '[', ']', '{', '}':
		return noFlowPlain
	case ':':
		if nextBlank {
			return noPlain
		}
		return noFlowPlain
	case '#':
		if prevBlank {
			return noPlain
		}
	}
	return 0
}

func analyzeScalar(e *Emitter, value []byte) scalarData {
	sd := scalarData{value: value}
	if len(value) == 0 {
		sd.applyMask(noFlowPlain | noBlock)
		return sd
	}

	var mask styleMask
	if bytes.HasPrefix(value, []byte("---")) || bytes.HasPrefix(value, []byte("...")) {
		mask |= noPlain
	}

	prevBlank := true
	var afterSpace, afterBreak bool
	for i, w := 0, 0; i < len(value); i += w {
		c := value[i]
		w = yamlh.Width(c)
		end := i+w >= len(value)
		nextBlank := blankzAt(value, i+w)

		if i == 0 {
			mask |= firstCharMask(c, nextBlank)
		} else {
			mask |= innerCharMask(c, prevBlank, nextBlank)
		}

		switch {
		case c == '\t':
			// Tabs survive block scalars and double quotes only.
			mask |= noPlain | noSingleQuoted
		case !yamlh.IsPrintable(value, i), !e.unicode && !yamlh.IsASCII(value, i):
			mask |= noPlain | noSingleQuoted | noBlock
		}

		switch {
		case c == ' ':
			if end {
				mask |= noPlain | noBlock
			}
			if afterBreak {
				mask |= noPlain | noSingleQuoted
			}
			afterSpace, afterBreak = true, false
		case yamlh.IsBreak(value, i):
			sd.multiline = true
			mask |= noPlain
			// A space before a break is lost by folding. The reader also
			// turns every other break into '\n', so only double quotes
			// keep those.
			if afterSpace || c != '\n' {
				mask |= noSingleQuoted | noBlock
			}
			afterSpace, afterBreak = false, true
		default:
			afterSpace, afterBreak = false, false
		}
		prevBlank = yamlh.IsBlankZ(value, i)
	}
	sd.applyMask(mask)
	return sd
}

func (sd *scalarData) applyMask(mask styleMask) {
	sd.flowPlainAllowed = mask&noFlowPlain == 0
	sd.blockPlainAllowed = mask&noBlockPlain == 0
	sd.singleQuotedAllowed = mask&noSingleQuoted == 0
	sd.blockAllowed = mask&noBlock == 0
}

// analyzeEvent resets the per-event analysis and fills in what the head
// event needs before any of it is written.
func analyzeEvent(e *Emitter, event *yamlh.Event) error {
	e.anchorData = anchorData{}
	e.tagData = tagData{}
	e.scalarData = scalarData{}

	switch event.Type {
	case yamlh.ALIAS_EVENT:
		return analyzeAnchor(e, event, event.Anchor, true)
	case yamlh.SCALAR_EVENT, yamlh.SEQUENCE_START_EVENT, yamlh.MAPPING_START_EVENT:
	default:
		return nil
	}

	if len(event.Anchor) > 0 {
		if err := analyzeAnchor(e, event, event.Anchor, false); err != nil {
			return err
		}
	}
	tagged := !event.Implicit
	if event.Type == yamlh.SCALAR_EVENT {
		tagged = tagged && !event.Quoted_implicit
	}
	if len(event.Tag) > 0 && (e.canonical || tagged) {
		if err := analyzeTag(e, event, event.Tag); err != nil {
			return err
		}
	}
	if event.Type != yamlh.SCALAR_EVENT {
		return nil
	}
	if !validUTF8(event.Value) {
		return e.emitterError("scalar value must be valid UTF-8", event)
	}
	e.scalarData = analyzeScalar(e, event.Value)
	return nil
}
