// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package essentia

// LineFramer assembles CR-terminated lines from a byte stream.
//
// The amplifier terminates every report with CR (often followed by LF).
// LF bytes are ignored. Lines longer than the buffer are truncated, the
// excess bytes are dropped until the next CR.
type LineFramer struct {
	buffer    [MaxLineLength]byte
	pos       int
	truncated bool

	truncatedLines uint64
}

// NewLineFramer creates a new line framer
func NewLineFramer() *LineFramer {
	return &LineFramer{}
}

// FeedByte processes a single byte.
// Returns the completed line and true when b is the CR terminator, or
// "", false while the line is still incomplete. A NUL byte is treated as
// "no byte available" and ignored.
func (f *LineFramer) FeedByte(b byte) (string, bool) {
	switch b {
	case NUL, LF:
		return "", false

	case CR:
		line := string(f.buffer[:f.pos])
		if f.truncated {
			f.truncatedLines++
		}
		f.pos = 0
		f.truncated = false
		return line, true

	default:
		if f.pos < MaxLineLength-1 {
			f.buffer[f.pos] = b
			f.pos++
		} else {
			f.truncated = true
		}
		return "", false
	}
}

// Pos returns the current cursor position (bytes buffered for the
// pending line).
func (f *LineFramer) Pos() int {
	return f.pos
}

// Truncated returns the number of completed lines that overflowed the
// buffer.
func (f *LineFramer) Truncated() uint64 {
	return f.truncatedLines
}

// Reset discards any partially assembled line
func (f *LineFramer) Reset() {
	f.pos = 0
	f.truncated = false
}
