package yamlh

const (
	// The size of the input raw buffer.
	InputRawBufferSize = 512

	// The size of the input buffer.
	// It should be possible to decode the whole raw buffer.
	InputBufferSize = InputRawBufferSize * 3

	// The size of the output buffer.
	OutputBufferSize = 128

	// The size of the output raw buffer.
	// It should be possible to encode the whole output buffer.
	OutputRawBufferSize = OutputBufferSize*2 + 2

	// The size of other stacks and queues.
	InitialStackSize  = 16
	InitialQueueSize  = 16
	InitialStringSize = 16
)

// IsAlpha reports whether b[i] is an alphabetical character, a digit, '_',
// or '-'.
func IsAlpha(b []byte, i int) bool {
	return b[i] >= '0' && b[i] <= '9' || b[i] >= 'A' && b[i] <= 'Z' || b[i] >= 'a' && b[i] <= 'z' || b[i] == '_' || b[i] == '-'
}

func IsDigit(b []byte, i int) bool {
	return b[i] >= '0' && b[i] <= '9'
}

func AsDigit(b []byte, i int) int {
	return int(b[i]) - '0'
}

func IsHex(b []byte, i int) bool {
	return b[i] >= '0' && b[i] <= '9' || b[i] >= 'A' && b[i] <= 'F' || b[i] >= 'a' && b[i] <= 'f'
}

func AsHex(b []byte, i int) int {
	bi := b[i]
	if bi >= 'A' && bi <= 'F' {
		return int(bi) - 'A' + 10
	}
	if bi >= 'a' && bi <= 'f' {
		return int(bi) - 'a' + 10
	}
	return int(bi) - '0'
}

// IsASCII reports whether b[i] is a 7-bit character.
func IsASCII(b []byte, i int) bool {
	return b[i] <= 0x7F
}

// IsPrintable reports whether the character at b[i] can be written
// unescaped.
func IsPrintable(b []byte, i int) bool {
	return (b[i] == 0x0A) || // . == #x0A
		(b[i] >= 0x20 && b[i] <= 0x7E) || // #x20 <= . <= #x7E
		(b[i] == 0xC2 && b[i+1] >= 0xA0) || // #0xA0 <= . <= #xD7FF
		(b[i] > 0xC2 && b[i] < 0xED) ||
		(b[i] == 0xED && b[i+1] < 0xA0) ||
		(b[i] == 0xEE) ||
		(b[i] == 0xEF && // #xE000 <= . <= #xFFFD
			!(b[i+1] == 0xBB && b[i+2] == 0xBF) && // && . != #xFEFF
			!(b[i+1] == 0xBF && (b[i+2] == 0xBE || b[i+2] == 0xBF)))
}

func IsZ(b []byte, i int) bool {
	return b[i] == 0x00
}

// IsBOM reports whether b starts with a UTF-8 byte order mark.
func IsBOM(b []byte, i int) bool {
	return b[i] == 0xEF && b[i+1] == 0xBB && b[i+2] == 0xBF
}

func IsSpace(b []byte, i int) bool {
	return b[i] == ' '
}

func IsTab(b []byte, i int) bool {
	return b[i] == '\t'
}

func IsBlank(b []byte, i int) bool {
	return b[i] == ' ' || b[i] == '\t'
}

// IsBreak reports whether b[i] starts a line break: CR, LF, NEL, LS or PS.
func IsBreak(b []byte, i int) bool {
	return b[i] == '\r' || // CR (#xD)
		b[i] == '\n' || // LF (#xA)
		b[i] == 0xC2 && b[i+1] == 0x85 || // NEL (#x85)
		b[i] == 0xE2 && b[i+1] == 0x80 && b[i+2] == 0xA8 || // LS (#x2028)
		b[i] == 0xE2 && b[i+1] == 0x80 && b[i+2] == 0xA9 // PS (#x2029)
}

func IsCRLF(b []byte, i int) bool {
	return b[i] == '\r' && b[i+1] == '\n'
}

// IsBreakZ reports whether b[i] is a line break or NUL.
func IsBreakZ(b []byte, i int) bool {
	return IsBreak(b, i) || b[i] == 0
}

// IsSpaceZ reports whether b[i] is a line break, space, or NUL.
func IsSpaceZ(b []byte, i int) bool {
	return b[i] == ' ' || IsBreakZ(b, i)
}

// IsBlankZ reports whether b[i] is a line break, space, tab, or NUL.
func IsBlankZ(b []byte, i int) bool {
	return b[i] == ' ' || b[i] == '\t' || IsBreakZ(b, i)
}

// Width returns the length of the UTF-8 sequence starting with b, or 0
// for an invalid leading byte.
func Width(b byte) int {
	// Don't replace these by a switch without first
	// confirming that it is being inlined.
	if b&0x80 == 0x00 {
		return 1
	}
	if b&0xE0 == 0xC0 {
		return 2
	}
	if b&0xF0 == 0xE0 {
		return 3
	}
	if b&0xF8 == 0xF0 {
		return 4
	}
	return 0
}
