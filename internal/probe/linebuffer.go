// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"bytes"
	"strings"
)

// lineBuffer splits arbitrary output chunks into lines.
// An incomplete trailing fragment is kept and prefixed onto the next chunk.
type lineBuffer struct {
	pending []byte
}

// feed appends chunk and returns all lines it completed, without terminators.
func (b *lineBuffer) feed(chunk []byte) []string {
	b.pending = append(b.pending, chunk...)

	var lines []string
	for {
		i := bytes.IndexByte(b.pending, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, strings.TrimSuffix(string(b.pending[:i]), "\r"))
		b.pending = b.pending[i+1:]
	}

	// Reclaim memory of consumed lines.
	if len(b.pending) == 0 {
		b.pending = nil
	}
	return lines
}

// flush returns the remaining fragment at end of stream.
// The second return value is false if nothing but whitespace is left.
func (b *lineBuffer) flush() (string, bool) {
	rest := strings.TrimSuffix(string(b.pending), "\r")
	b.pending = nil
	if strings.TrimSpace(rest) == "" {
		return "", false
	}
	return rest, true
}

// cappedBuffer keeps the first max bytes written to it and discards the rest.
type cappedBuffer struct {
	buf bytes.Buffer
	max int
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if room := c.max - c.buf.Len(); room > 0 {
		if len(p) > room {
			c.buf.Write(p[:room])
		} else {
			c.buf.Write(p)
		}
	}
	return len(p), nil
}

func (c *cappedBuffer) String() string {
	return strings.TrimSpace(c.buf.String())
}
