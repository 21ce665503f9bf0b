package emitter

import (
	"unicode/utf8"

	"github.com/willabides/yamlstream/internal/yamlh"
)

// writeBom writes the BOM character. For UTF-16 output it is transcoded
// along with the rest of the buffer.
func writeBom(e *Emitter) error {
	if err := e.reserve(); err != nil {
		return err
	}
	return e.appendBytes([]byte("\xEF\xBB\xBF"))
}

func spaceAt(b []byte, i int) bool {
	return i < len(b) && yamlh.IsSpace(b, i)
}

func breakAt(b []byte, i int) bool {
	return i < len(b) && yamlh.IsBreak(b, i)
}

func writeIndent(e *Emitter) error {
	indent := e.indentLevel
	if indent < 0 {
		indent = 0
	}
	if !e.lastCharIndent || e.column > indent || (e.column == indent && !e.lastCharWhitespace) {
		err := e.putBreak()
		if err != nil {
			return err
		}
	}
	for e.column < indent {
		err := e.put(' ')
		if err != nil {
			return err
		}
	}
	e.lastCharWhitespace = true
	e.lastCharIndent = true
	return nil
}

func writeIndicator(e *Emitter, indicator []byte, need_whitespace, is_whitespace, is_indention bool) error {
	if need_whitespace && !e.lastCharWhitespace {
		err := e.put(' ')
		if err != nil {
			return err
		}
	}
	err := e.writeAll(indicator)
	if err != nil {
		return err
	}
	e.lastCharWhitespace = is_whitespace
	e.lastCharIndent = (e.lastCharIndent && is_indention)
	e.openEnded = 0
	return nil
}

func writeAnchor(e *Emitter, value []byte) error {
	err := e.writeAll(value)
	if err != nil {
		return err
	}
	e.lastCharWhitespace = false
	e.lastCharIndent = false
	return nil
}

func writeTagHandle(e *Emitter, value []byte) error {
	if !e.lastCharWhitespace {
		err := e.put(' ')
		if err != nil {
			return err
		}
	}
	err := e.writeAll(value)
	if err != nil {
		return err
	}
	e.lastCharWhitespace = false
	e.lastCharIndent = false
	return nil
}

func hexDigit(c byte) byte {
	if c < 10 {
		return c + '0'
	}
	return c + 'A' - 10
}

func writeTagContent(e *Emitter, value []byte, need_whitespace bool) error {
	if need_whitespace && !e.lastCharWhitespace {
		err := e.put(' ')
		if err != nil {
			return err
		}
	}
	for len(value) > 0 {
		var must_write bool
		switch value[0] {
		case ';', '/', '?', ':', '@', '&', '=', '+', '$', ',', '_', '.', '~', '*', '\'', '(', ')', '[', ']':
			must_write = true
		default:
			must_write = yamlh.IsAlpha(value, 0)
		}
		if must_write {
			n, err := e.write(value)
			if err != nil {
				return err
			}
			value = value[n:]
			continue
		}
		w := yamlh.Width(value[0])
		for k := 0; k < w; k++ {
			octet := value[k]
			for _, c := range []byte{'%', hexDigit(octet >> 4), hexDigit(octet & 0x0f)} {
				if err := e.put(c); err != nil {
					return err
				}
			}
		}
		value = value[w:]
	}
	e.lastCharWhitespace = false
	e.lastCharIndent = false
	return nil
}

func writePlainScalar(e *Emitter, value []byte, allowBreaks bool) error {
	var err error
	totalLen := len(value)
	if totalLen > 0 && !e.lastCharWhitespace {
		err = e.put(' ')
		if err != nil {
			return err
		}
	}

	spaces := false
	breaks := false
	for len(value) > 0 {
		w := yamlh.Width(value[0])
		if yamlh.IsSpace(value, 0) {
			if allowBreaks && !spaces && e.column > e.width && !spaceAt(value, w) {
				err = writeIndent(e)
				if err != nil {
					return err
				}
			} else {
				w, err = e.write(value)
				if err != nil {
					return err
				}
			}
			value = value[w:]
			spaces = true
			continue
		}
		if yamlh.IsBreak(value, 0) {
			if !breaks && value[0] == '\n' {
				err = e.putBreak()
				if err != nil {
					return err
				}
			}
			w, err = e.writeBreak(value)
			if err != nil {
				return err
			}
			value = value[w:]
			breaks = true
			continue
		}
		if breaks {
			err = writeIndent(e)
			if err != nil {
				return err
			}
		}
		w, err = e.write(value)
		if err != nil {
			return err
		}
		value = value[w:]
		e.lastCharIndent = false
		spaces = false
		breaks = false
	}

	if totalLen > 0 {
		e.lastCharWhitespace = false
	}
	e.lastCharIndent = false
	if e.rootContext {
		e.openEnded = 1
	}

	return nil
}

func writeSingleQuotedScalar(e *Emitter, value []byte, allow_breaks bool) error {
	err := writeIndicator(e, []byte{'\''}, true, false, false)
	if err != nil {
		return err
	}

	spaces := false
	breaks := false
	count := 0
	for len(value) > 0 {
		count++
		w := yamlh.Width(value[0])
		if yamlh.IsSpace(value, 0) {
			if allow_breaks &&
				!spaces &&
				e.column > e.width &&
				count > 1 &&
				len(value) > w &&
				!spaceAt(value, w) {
				err = writeIndent(e)
				if err != nil {
					return err
				}
			} else {
				w, err = e.write(value)
				if err != nil {
					return err
				}
			}
			spaces = true
			value = value[w:]
			continue
		}
		if yamlh.IsBreak(value, 0) {
			if !breaks && value[0] == '\n' {
				err = e.putBreak()
				if err != nil {
					return err
				}
			}
			w, err = e.writeBreak(value)
			if err != nil {
				return err
			}
			breaks = true
			value = value[w:]
			continue
		}
		if breaks {
			err = writeIndent(e)
			if err != nil {
				return err
			}
		}
		if value[0] == '\'' {
			err = e.put('\'')
			if err != nil {
				return err
			}
		}
		w, err = e.write(value)
		if err != nil {
			return err
		}
		value = value[w:]
		e.lastCharIndent = false
		spaces = false
		breaks = false
	}
	// A value ending in a break needs the closing quote on its own line.
	if breaks {
		err = writeIndent(e)
		if err != nil {
			return err
		}
	}
	err = writeIndicator(e, []byte{'\''}, false, false, false)
	if err != nil {
		return err
	}
	e.lastCharWhitespace = false
	e.lastCharIndent = false
	return nil
}

func writeDoubleQuotedScalar(e *Emitter, value []byte, allow_breaks bool) error {
	spaces := false
	err := writeIndicator(e, []byte{'"'}, true, false, false)
	if err != nil {
		return err
	}
	count := 0
	for len(value) > 0 {
		var w int
		count++
		if !yamlh.IsPrintable(value, 0) ||
			(!e.unicode && !yamlh.IsASCII(value, 0)) ||
			yamlh.IsBreak(value, 0) ||
			value[0] == '"' || value[0] == '\\' {

			value, err = writeDoubleQuotedEscapedChar(e, value)
			if err != nil {
				return err
			}
			spaces = false
			continue
		}
		if yamlh.IsSpace(value, 0) {
			w = yamlh.Width(value[0])
			if allow_breaks && !spaces && e.column > e.width && count > 1 && len(value) > w {
				err = writeIndent(e)
				if err != nil {
					return err
				}
				if spaceAt(value, 1) {
					err = e.put('\\')
					if err != nil {
						return err
					}
				}
			} else {
				w, err = e.write(value)
				if err != nil {
					return err
				}
			}
			value = value[w:]
			spaces = true
			continue
		}
		w, err = e.write(value)
		if err != nil {
			return err
		}
		value = value[w:]
		spaces = false
	}
	err = writeIndicator(e, []byte{'"'}, false, false, false)
	if err != nil {
		return err
	}
	e.lastCharWhitespace = false
	e.lastCharIndent = false
	return nil
}

// shortEscapes maps characters to their single-letter escape.
var shortEscapes = map[rune]byte{
	0x00:   '0',
	0x07:   'a',
	0x08:   'b',
	0x09:   't',
	0x0A:   'n',
	0x0B:   'v',
	0x0C:   'f',
	0x0D:   'r',
	0x1B:   'e',
	'"':    '"',
	'\\':   '\\',
	0x85:   'N',
	0xA0:   '_',
	0x2028: 'L',
	0x2029: 'P',
}

// writeDoubleQuotedEscapedChar writes the first character of value as an
// escape sequence and returns the rest of value.
func writeDoubleQuotedEscapedChar(e *Emitter, value []byte) ([]byte, error) {
	r, w := utf8.DecodeRune(value)
	value = value[w:]

	if err := e.put('\\'); err != nil {
		return nil, err
	}
	if c, ok := shortEscapes[r]; ok {
		return value, e.put(c)
	}

	prefix, digits := byte('U'), 8
	switch {
	case r <= 0xFF:
		prefix, digits = 'x', 2
	case r <= 0xFFFF:
		prefix, digits = 'u', 4
	}
	if err := e.put(prefix); err != nil {
		return nil, err
	}
	for shift := (digits - 1) * 4; shift >= 0; shift -= 4 {
		if err := e.put(hexDigit(byte(r>>uint(shift)) & 0x0F)); err != nil {
			return nil, err
		}
	}
	return value, nil
}

// lastCharStart returns the index of the character that ends b[:end].
func lastCharStart(b []byte, end int) int {
	i := end - 1
	for i > 0 && b[i]&0xC0 == 0x80 {
		i--
	}
	return i
}

// chompIndicator picks '-' when value has no final break and '+' when it
// has more than one or is nothing but a break. It returns 0 for the
// default clip.
func chompIndicator(value []byte) byte {
	if len(value) == 0 {
		return '-'
	}
	last := lastCharStart(value, len(value))
	switch {
	case !yamlh.IsBreak(value, last):
		return '-'
	case last == 0, yamlh.IsBreak(value, lastCharStart(value, last)):
		return '+'
	}
	return 0
}

func writeBlockScalarHints(e *Emitter, value []byte) error {
	// Leading whitespace would be read as indentation, so state it.
	if spaceAt(value, 0) || breakAt(value, 0) || (len(value) > 0 && value[0] == '\t') {
		// The content sits this far right of the enclosing node.
		hint := e.indentLevel
		if parent := e.indentStack.Top(); parent != nil && *parent >= 0 {
			hint -= *parent
		}
		if err := writeIndicator(e, []byte{'0' + byte(hint)}, false, false, false); err != nil {
			return err
		}
	}

	e.openEnded = 0
	chomp := chompIndicator(value)
	if chomp == 0 {
		return nil
	}
	if err := writeIndicator(e, []byte{chomp}, false, false, false); err != nil {
		return err
	}
	// Kept trailing breaks leave the document open.
	if chomp == '+' {
		e.openEnded = 2
	}
	return nil
}

func writeLiteralScalar(e *Emitter, value []byte) error {
	err := writeIndicator(e, []byte{'|'}, true, false, false)
	if err != nil {
		return err
	}
	err = writeBlockScalarHints(e, value)
	if err != nil {
		return err
	}
	// The header ends its own line, leaving every break in value as content.
	if err = e.putBreak(); err != nil {
		return err
	}
	e.lastCharWhitespace = true
	breaks := true
	for len(value) > 0 {
		var w int
		if yamlh.IsBreak(value, 0) {
			w, err = e.writeBreak(value)
			if err != nil {
				return err
			}
			breaks = true
			value = value[w:]
			continue
		}
		if breaks {
			err = writeIndent(e)
			if err != nil {
				return err
			}
		}
		w, err = e.write(value)
		if err != nil {
			return err
		}
		value = value[w:]
		e.lastCharIndent = false
		breaks = false
	}
	return nil
}

func writeFoldedScalar(e *Emitter, value []byte) error {
	err := writeIndicator(e, []byte{'>'}, true, false, false)
	if err != nil {
		return err
	}
	err = writeBlockScalarHints(e, value)
	if err != nil {
		return err
	}
	if err = e.putBreak(); err != nil {
		return err
	}
	e.lastCharWhitespace = true

	breaks := true
	leading_spaces := true
	for len(value) > 0 {
		w := yamlh.Width(value[0])
		if yamlh.IsBreak(value, 0) {
			if !breaks && !leading_spaces && value[0] == '\n' {
				k := 0
				for breakAt(value, k) {
					k += yamlh.Width(value[k])
				}
				if !blankzAt(value, k) {
					err = e.putBreak()
					if err != nil {
						return err
					}
				}
			}
			w, err = e.writeBreak(value)
			if err != nil {
				return err
			}
			value = value[w:]
			breaks = true
			continue
		}
		if breaks {
			err = writeIndent(e)
			if err != nil {
				return err
			}
			leading_spaces = yamlh.IsBlank(value, 0)
		}
		if !breaks && yamlh.IsSpace(value, 0) && !spaceAt(value, w) && e.column > e.width {
			err = writeIndent(e)
			if err != nil {
				return err
			}
		} else {
			w, err = e.write(value)
			if err != nil {
				return err
			}
		}
		value = value[w:]
		e.lastCharIndent = false
		breaks = false
	}
	return nil
}
