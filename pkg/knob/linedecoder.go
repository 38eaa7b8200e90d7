// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The openknob authors

package knob

// MaxLineLength bounds a single protocol line. Anything longer is discarded
// up to the next newline so a corrupt stream cannot grow the buffer without
// limit.
const MaxLineLength = 256

// LineDecoder accumulates raw transport bytes and emits complete
// newline-terminated lines. Carriage returns are stripped, so CRLF and bare
// LF streams decode identically. Partial lines survive across reads.
type LineDecoder struct {
	buf      []byte
	overflow bool
}

// NewLineDecoder creates a new line decoder.
func NewLineDecoder() *LineDecoder {
	return &LineDecoder{buf: make([]byte, 0, 64)}
}

// Reset discards any partially accumulated line.
func (d *LineDecoder) Reset() {
	d.buf = d.buf[:0]
	d.overflow = false
}

// DecodeByte processes a single byte. It returns the completed line and
// true when b terminates one, otherwise "" and false. Lines exceeding
// MaxLineLength are dropped in their entirety.
func (d *LineDecoder) DecodeByte(b byte) (string, bool) {
	switch b {
	case '\n':
		if d.overflow {
			d.Reset()
			return "", false
		}
		line := string(d.buf)
		d.buf = d.buf[:0]
		return line, true
	case '\r':
		return "", false
	default:
		if d.overflow {
			return "", false
		}
		if len(d.buf) >= MaxLineLength {
			d.overflow = true
			return "", false
		}
		d.buf = append(d.buf, b)
		return "", false
	}
}

// Decode feeds a whole read buffer through the decoder and returns every
// line completed by it, in order.
func (d *LineDecoder) Decode(p []byte) []string {
	var lines []string
	for _, b := range p {
		if line, ok := d.DecodeByte(b); ok {
			lines = append(lines, line)
		}
	}
	return lines
}
