package soldieriq

import (
	"bytes"
	"io"
	"strings"
)

// rawEvent is one decoded SSE frame before payload interpretation.
type rawEvent struct {
	// Type is the value of the event: line, or "message" when absent.
	Type string
	// Data is the data: payload. Multiple data lines are joined with \n.
	Data string
}

// frameReader incrementally splits a byte stream into SSE frames.
//
// Frames are delimited by a blank line. The reader keeps any trailing
// incomplete fragment buffered until later reads complete it, so frame
// boundaries and even multi-byte UTF-8 sequences may be split arbitrarily
// across chunks without corrupting output: the buffer holds raw bytes and
// is only interpreted once a full frame has arrived.
type frameReader struct {
	r       io.Reader
	pending []byte
	chunk   []byte
	eof     bool
}

const frameReadSize = 4096

var frameDelim = []byte("\n\n")

func newFrameReader(r io.Reader) *frameReader {
	return &frameReader{r: r, chunk: make([]byte, frameReadSize)}
}

// next returns the next complete frame. It returns io.EOF once the stream
// is exhausted; an incomplete trailing fragment at end of stream is
// discarded, matching the SSE rule that unterminated events are dropped.
func (fr *frameReader) next() (rawEvent, error) {
	for {
		if frame, ok := fr.cutFrame(); ok {
			if ev, ok := parseFrame(frame); ok {
				return ev, nil
			}
			continue // comment-only or empty frame
		}

		if fr.eof {
			return rawEvent{}, io.EOF
		}

		n, err := fr.r.Read(fr.chunk)
		if n > 0 {
			fr.pending = append(fr.pending, fr.chunk[:n]...)
		}
		if err == io.EOF {
			fr.eof = true
			continue
		}
		if err != nil {
			return rawEvent{}, err
		}
	}
}

// cutFrame removes the first complete frame from the pending buffer.
func (fr *frameReader) cutFrame() ([]byte, bool) {
	// Normalize CRLF delimiters without copying the common LF-only case.
	i := bytes.Index(fr.pending, frameDelim)
	j := bytes.Index(fr.pending, []byte("\r\n\r\n"))
	if j >= 0 && (i < 0 || j < i) {
		frame := fr.pending[:j]
		fr.pending = fr.pending[j+4:]
		return frame, true
	}
	if i < 0 {
		return nil, false
	}
	frame := fr.pending[:i]
	fr.pending = fr.pending[i+2:]
	return frame, true
}

// parseFrame interprets the lines of one frame. It returns ok=false for
// frames carrying no event or data field (e.g. keepalive comments).
func parseFrame(frame []byte) (rawEvent, bool) {
	ev := rawEvent{Type: "message"}
	var data []string
	seen := false

	for _, line := range strings.Split(string(frame), "\n") {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, ":"):
			continue // comment / keepalive
		case strings.HasPrefix(line, "event:"):
			ev.Type = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			seen = true
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
			seen = true
		default:
			// Unknown field such as id: is ignored.
		}
	}

	if !seen {
		return rawEvent{}, false
	}
	ev.Data = strings.Join(data, "\n")
	return ev, true
}
