//
// Copyright (c) 2011-2019 Canonical Ltd
// Copyright (c) 2006-2010 Kirill Simonov
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package parserc

import (
	"io"

	"github.com/pkg/errors"
	"github.com/willabides/yamlstream/internal/yamlh"
)

func (p *Parser) readerError(problem string, offset int, value int) error {
	err := yamlh.NewError(yamlh.READER_ERROR, problem, p.mark)
	err.Problem_offset = offset
	err.Problem_value = value
	return p.fail(err)
}

// Byte order marks.
const (
	bom_UTF8    = "\xef\xbb\xbf"
	bom_UTF16LE = "\xff\xfe"
	bom_UTF16BE = "\xfe\xff"
)

// determineEncoding checks the input for a BOM. If none is found, UTF-8 is
// assumed.
func (p *Parser) determineEncoding() error {
	// Ensure that we had enough bytes in the raw buffer.
	for !p.eof && len(p.raw_buffer)-p.raw_buffer_pos < 3 {
		if err := p.updateRawBuffer(); err != nil {
			return err
		}
	}

	buf := p.raw_buffer
	pos := p.raw_buffer_pos
	avail := len(buf) - pos
	switch {
	case avail >= 2 && buf[pos] == bom_UTF16LE[0] && buf[pos+1] == bom_UTF16LE[1]:
		p.encoding = yamlh.UTF16LE_ENCODING
		p.raw_buffer_pos += 2
		p.offset += 2
	case avail >= 2 && buf[pos] == bom_UTF16BE[0] && buf[pos+1] == bom_UTF16BE[1]:
		p.encoding = yamlh.UTF16BE_ENCODING
		p.raw_buffer_pos += 2
		p.offset += 2
	case avail >= 3 && buf[pos] == bom_UTF8[0] && buf[pos+1] == bom_UTF8[1] && buf[pos+2] == bom_UTF8[2]:
		p.encoding = yamlh.UTF8_ENCODING
		p.raw_buffer_pos += 3
		p.offset += 3
	default:
		p.encoding = yamlh.UTF8_ENCODING
	}
	return nil
}

// skipDeclaredBOM drops a BOM matching an encoding that was set explicitly.
func (p *Parser) skipDeclaredBOM() error {
	for !p.eof && len(p.raw_buffer)-p.raw_buffer_pos < 3 {
		if err := p.updateRawBuffer(); err != nil {
			return err
		}
	}
	var bom string
	switch p.encoding {
	case yamlh.UTF8_ENCODING:
		bom = bom_UTF8
	case yamlh.UTF16LE_ENCODING:
		bom = bom_UTF16LE
	case yamlh.UTF16BE_ENCODING:
		bom = bom_UTF16BE
	}
	rest := p.raw_buffer[p.raw_buffer_pos:]
	if len(rest) >= len(bom) && string(rest[:len(bom)]) == bom {
		p.raw_buffer_pos += len(bom)
		p.offset += len(bom)
	}
	return nil
}

// updateRawBuffer refills the raw buffer from the read handler.
func (p *Parser) updateRawBuffer() error {
	// Return if the raw buffer is full.
	if p.raw_buffer_pos == 0 && len(p.raw_buffer) == cap(p.raw_buffer) {
		return nil
	}

	// Return on EOF.
	if p.eof {
		return nil
	}

	// Move the remaining bytes in the raw buffer to the beginning.
	if p.raw_buffer_pos > 0 && p.raw_buffer_pos < len(p.raw_buffer) {
		copy(p.raw_buffer, p.raw_buffer[p.raw_buffer_pos:])
	}
	p.raw_buffer = p.raw_buffer[:len(p.raw_buffer)-p.raw_buffer_pos]
	p.raw_buffer_pos = 0

	n, err := p.read_handler(p, p.raw_buffer[len(p.raw_buffer):cap(p.raw_buffer)])
	p.raw_buffer = p.raw_buffer[:len(p.raw_buffer)+n]
	switch {
	case err == io.EOF:
		p.eof = true
	case err != nil:
		yerr := yamlh.NewError(yamlh.READER_ERROR, "input error", p.mark)
		yerr.Problem_offset = p.offset
		yerr.Err = errors.Wrap(err, "read handler")
		return p.fail(yerr)
	case n == 0:
		// A read handler that returns no data and no error is at the end of
		// the stream.
		p.eof = true
	}
	return nil
}

// updateBuffer ensures the working buffer holds at least length decoded
// characters, padding with NUL once the input is exhausted.
func (p *Parser) updateBuffer(length int) error {
	if p.err != nil {
		return p.err
	}

	// Return if the buffer contains enough characters.
	if p.unread >= length {
		return nil
	}

	// Determine the input encoding if it is not known yet.
	if p.encoding == yamlh.ANY_ENCODING {
		if err := p.determineEncoding(); err != nil {
			return err
		}
	} else if p.offset == 0 && p.raw_buffer_pos == 0 {
		if err := p.skipDeclaredBOM(); err != nil {
			return err
		}
	}

	// Move the unread characters to the beginning of the buffer.
	buffer_len := len(p.buffer)
	if p.buffer_pos > 0 && p.buffer_pos < buffer_len {
		copy(p.buffer, p.buffer[p.buffer_pos:])
		buffer_len -= p.buffer_pos
		p.buffer_pos = 0
	} else if p.buffer_pos == buffer_len {
		buffer_len = 0
		p.buffer_pos = 0
	}

	// Open the whole buffer for writing, and cut it before returning.
	p.buffer = p.buffer[:cap(p.buffer)]

	// Fill the buffer until it has enough characters.
	first := true
	for p.unread < length {

		// Fill the raw buffer if necessary.
		if !first || p.raw_buffer_pos == len(p.raw_buffer) {
			if err := p.updateRawBuffer(); err != nil {
				p.buffer = p.buffer[:buffer_len]
				return err
			}
		}
		first = false

	inner:
		for p.raw_buffer_pos != len(p.raw_buffer) {
			var value rune
			var width int

			raw_unread := len(p.raw_buffer) - p.raw_buffer_pos

			switch p.encoding {
			case yamlh.UTF8_ENCODING:
				// Decode a UTF-8 character (RFC 3629).
				//
				//    Char. number range |        UTF-8 octet sequence
				//      (hexadecimal)    |              (binary)
				//   --------------------+------------------------------------
				//   0000 0000-0000 007F | 0xxxxxxx
				//   0000 0080-0000 07FF | 110xxxxx 10xxxxxx
				//   0000 0800-0000 FFFF | 1110xxxx 10xxxxxx 10xxxxxx
				//   0001 0000-0010 FFFF | 11110xxx 10xxxxxx 10xxxxxx 10xxxxxx
				//
				// The range 0xD800-0xDFFF is reserved for UTF-16 surrogates.
				octet := p.raw_buffer[p.raw_buffer_pos]
				width = yamlh.Width(octet)
				if width == 0 {
					p.buffer = p.buffer[:buffer_len]
					return p.readerError("invalid leading UTF-8 octet", p.offset, int(octet))
				}

				// Check if the raw buffer contains an incomplete character.
				if width > raw_unread {
					if p.eof {
						p.buffer = p.buffer[:buffer_len]
						return p.readerError("incomplete UTF-8 octet sequence", p.offset, -1)
					}
					break inner
				}

				// Decode the leading octet.
				switch width {
				case 1:
					value = rune(octet & 0x7F)
				case 2:
					value = rune(octet & 0x1F)
				case 3:
					value = rune(octet & 0x0F)
				case 4:
					value = rune(octet & 0x07)
				}

				// Check and decode the trailing octets.
				for k := 1; k < width; k++ {
					octet = p.raw_buffer[p.raw_buffer_pos+k]
					if (octet & 0xC0) != 0x80 {
						p.buffer = p.buffer[:buffer_len]
						return p.readerError("invalid trailing UTF-8 octet", p.offset+k, int(octet))
					}
					value = (value << 6) + rune(octet&0x3F)
				}

				// Check the length of the sequence against the value.
				switch {
				case width == 1:
				case width == 2 && value >= 0x80:
				case width == 3 && value >= 0x800:
				case width == 4 && value >= 0x10000:
				default:
					p.buffer = p.buffer[:buffer_len]
					return p.readerError("invalid length of a UTF-8 sequence", p.offset, -1)
				}

				if value >= 0xD800 && value <= 0xDFFF || value > 0x10FFFF {
					p.buffer = p.buffer[:buffer_len]
					return p.readerError("invalid Unicode character", p.offset, int(value))
				}

			case yamlh.UTF16LE_ENCODING, yamlh.UTF16BE_ENCODING:
				var low, high int
				if p.encoding == yamlh.UTF16LE_ENCODING {
					low, high = 0, 1
				} else {
					low, high = 1, 0
				}

				// UTF-16 (RFC 2781). Characters above 0xFFFF are written as
				// a surrogate pair:
				//
				//  U  = U' + 0x10000   (0x01 00 00 <= U <= 0x10 FF FF)
				//  U' = yyyyyyyyyyxxxxxxxxxx   (0 <= U' <= 0x0F FF FF)
				//  W1 = 110110yyyyyyyyyy
				//  W2 = 110111xxxxxxxxxx

				if raw_unread < 2 {
					if p.eof {
						p.buffer = p.buffer[:buffer_len]
						return p.readerError("incomplete UTF-16 character", p.offset, -1)
					}
					break inner
				}

				value = rune(p.raw_buffer[p.raw_buffer_pos+low]) +
					(rune(p.raw_buffer[p.raw_buffer_pos+high]) << 8)

				if value&0xFC00 == 0xDC00 {
					p.buffer = p.buffer[:buffer_len]
					return p.readerError("unexpected low surrogate area", p.offset, int(value))
				}

				if value&0xFC00 == 0xD800 {
					width = 4

					if raw_unread < 4 {
						if p.eof {
							p.buffer = p.buffer[:buffer_len]
							return p.readerError("incomplete UTF-16 surrogate pair", p.offset, -1)
						}
						break inner
					}

					value2 := rune(p.raw_buffer[p.raw_buffer_pos+low+2]) +
						(rune(p.raw_buffer[p.raw_buffer_pos+high+2]) << 8)

					if value2&0xFC00 != 0xDC00 {
						p.buffer = p.buffer[:buffer_len]
						return p.readerError("expected low surrogate area", p.offset+2, int(value2))
					}

					value = 0x10000 + ((value & 0x3FF) << 10) + (value2 & 0x3FF)
				} else {
					width = 2
				}

			default:
				panic("impossible")
			}

			// Check if the character is in the allowed range:
			//      #x9 | #xA | #xD | [#x20-#x7E]               (8 bit)
			//      | #x85 | [#xA0-#xD7FF] | [#xE000-#xFFFD]    (16 bit)
			//      | [#x10000-#x10FFFF]                        (32 bit)
			switch {
			case value == 0x09:
			case value == 0x0A:
			case value == 0x0D:
			case value >= 0x20 && value <= 0x7E:
			case value == 0x85:
			case value >= 0xA0 && value <= 0xD7FF:
			case value >= 0xE000 && value <= 0xFFFD:
			case value >= 0x10000 && value <= 0x10FFFF:
			default:
				p.buffer = p.buffer[:buffer_len]
				return p.readerError("control characters are not allowed", p.offset, int(value))
			}

			p.raw_buffer_pos += width
			p.offset += width

			// Put the character into the buffer as UTF-8.
			switch {
			case value <= 0x7F:
				p.buffer[buffer_len+0] = byte(value)
				buffer_len += 1
			case value <= 0x7FF:
				p.buffer[buffer_len+0] = byte(0xC0 + (value >> 6))
				p.buffer[buffer_len+1] = byte(0x80 + (value & 0x3F))
				buffer_len += 2
			case value <= 0xFFFF:
				p.buffer[buffer_len+0] = byte(0xE0 + (value >> 12))
				p.buffer[buffer_len+1] = byte(0x80 + ((value >> 6) & 0x3F))
				p.buffer[buffer_len+2] = byte(0x80 + (value & 0x3F))
				buffer_len += 3
			default:
				p.buffer[buffer_len+0] = byte(0xF0 + (value >> 18))
				p.buffer[buffer_len+1] = byte(0x80 + ((value >> 12) & 0x3F))
				p.buffer[buffer_len+2] = byte(0x80 + ((value >> 6) & 0x3F))
				p.buffer[buffer_len+3] = byte(0x80 + (value & 0x3F))
				buffer_len += 4
			}

			p.unread++
		}

		// On EOF, put NUL into the buffer and return.
		if p.eof {
			p.buffer[buffer_len] = 0
			buffer_len++
			p.unread++
			break
		}
	}
	// Callers index up to length characters ahead; pad past EOF so those
	// reads see NUL.
	for buffer_len < length {
		p.buffer[buffer_len] = 0
		buffer_len++
	}
	p.buffer = p.buffer[:buffer_len]
	return nil
}
