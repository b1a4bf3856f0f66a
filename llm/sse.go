package llm

import (
	"bytes"
	"io"
	"strings"
)

// A Decoder decodes server-sent events from a byte stream.
//
// It is pull-based: each call to Next returns the data payload
// of the next complete event, independent of how the underlying
// transport chunks its reads. Partial frames are buffered
// across reads until their terminating blank line arrives.
type Decoder struct {
	r   io.Reader
	buf []byte // bytes read but not yet consumed
	err error  // deferred read error, delivered after buffered frames drain
}

// NewDecoder produces a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

var frameSep = []byte("\n\n")

// Next returns the data payload of the next event.
// At the end of the stream it returns io.EOF.
// Events with no data field (comments, bare ids) are skipped.
func (d *Decoder) Next() (string, error) {
	for {
		frame, ok := d.frame()
		if ok {
			if data, ok := parseFrame(frame); ok {
				return data, nil
			}
			continue
		}

		// No complete frame buffered. Once the reader is exhausted,
		// whatever remains is the final (unterminated) frame.
		if d.err != nil {
			if len(bytes.TrimSpace(d.buf)) > 0 {
				frame, d.buf = d.buf, nil
				if data, ok := parseFrame(frame); ok {
					return data, nil
				}
			}
			return "", d.err
		}

		chunk := make([]byte, 512)
		n, err := d.r.Read(chunk)
		d.buf = append(d.buf, chunk[:n]...)
		if err != nil {
			// A read may deliver data together with its error.
			// Record the error and keep draining complete frames
			// from the buffer before giving up.
			d.err = err
		}
	}
}

// frame slices the next complete frame off the front of the buffer.
func (d *Decoder) frame() ([]byte, bool) {
	normalized := bytes.ReplaceAll(d.buf, []byte("\r\n"), []byte("\n"))
	i := bytes.Index(normalized, frameSep)
	if i < 0 {
		d.buf = normalized
		return nil, false
	}
	frame := normalized[:i]
	d.buf = append([]byte(nil), normalized[i+len(frameSep):]...)
	return frame, true
}

// parseFrame extracts an event's data payload.
// Multiple data lines concatenate with a newline between them.
func parseFrame(frame []byte) (string, bool) {
	var (
		data  []string
		found bool
	)
	for _, line := range strings.Split(string(frame), "\n") {
		line = strings.TrimSuffix(line, "\r")
		rest, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		found = true
		data = append(data, strings.TrimPrefix(rest, " "))
	}
	return strings.Join(data, "\n"), found
}
