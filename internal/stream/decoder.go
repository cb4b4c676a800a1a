package stream

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
)

// Stats counts the lines a Decoder has seen, split by how they were handled
type Stats struct {
	Events       int // recognized payloads (token, done or error)
	NonEvent     int // non-blank lines without the event prefix
	Malformed    int // prefixed lines whose payload is not a JSON object
	Unrecognized int // JSON objects matching no known payload shape
}

// Decoder turns a chunked event stream into a growing text value.
// Bytes are buffered across chunk boundaries and only complete lines are parsed,
// so the result does not depend on how the transport splits the stream.
type Decoder struct {
	remainder []byte
	text      strings.Builder
	done      bool
	onPartial func(string)
	stats     Stats
}

// NewDecoder creates a decoder that publishes the accumulated text to onPartial
// after every appended token. onPartial may be nil.
func NewDecoder(onPartial func(string)) *Decoder {
	return &Decoder{onPartial: onPartial}
}

// Write feeds one transport chunk. It reports done once a done payload has been
// decoded; further input is ignored after that. An error payload aborts with *StreamError.
func (d *Decoder) Write(chunk []byte) (bool, error) {
	if d.done {
		return true, nil
	}
	d.remainder = append(d.remainder, chunk...)

	for {
		i := bytes.IndexByte(d.remainder, '\n')
		if i < 0 {
			break
		}
		line := string(bytes.TrimSuffix(d.remainder[:i], []byte{'\r'}))
		d.remainder = d.remainder[i+1:]

		if err := d.handleLine(line); err != nil {
			return false, err
		}
		if d.done {
			d.remainder = nil
			return true, nil
		}
	}

	// Compact so a long stream does not pin every consumed chunk.
	if len(d.remainder) == 0 {
		d.remainder = nil
	}
	return false, nil
}

// Close is called once the transport reports end of stream. It returns the final text
// when a done payload was seen, including one left unterminated in the remainder.
func (d *Decoder) Close() (string, error) {
	if d.done {
		return d.text.String(), nil
	}

	rest := strings.TrimSuffix(string(d.remainder), "\r")
	d.remainder = nil
	if strings.TrimSpace(rest) == "" {
		return "", ErrUnexpectedEOF
	}

	if strings.HasPrefix(rest, EventPrefix) {
		p, err := parsePayload(rest[len(EventPrefix):])
		if err == nil {
			switch p.kind {
			case payloadDone:
				d.done = true
				return d.text.String(), nil
			case payloadError:
				return "", &StreamError{Message: p.message}
			}
		}
	}
	return "", &ProtocolError{Reason: "unterminated line at end of stream", Line: rest}
}

// Text returns the text accumulated so far
func (d *Decoder) Text() string {
	return d.text.String()
}

// Done reports whether a done payload has been decoded
func (d *Decoder) Done() bool {
	return d.done
}

// Stats returns the line counters
func (d *Decoder) Stats() Stats {
	return d.stats
}

func (d *Decoder) handleLine(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	if !strings.HasPrefix(line, EventPrefix) {
		d.stats.NonEvent++
		log.Debug().Str("line", line).Msg("Ignored non-event line")
		return nil
	}

	p, err := parsePayload(line[len(EventPrefix):])
	if err != nil {
		d.stats.Malformed++
		log.Warn().Err(err).Str("line", line).Msg("Ignored malformed payload")
		return nil
	}

	switch p.kind {
	case payloadError:
		d.stats.Events++
		return &StreamError{Message: p.message}
	case payloadDone:
		d.stats.Events++
		d.done = true
	case payloadToken:
		d.stats.Events++
		d.text.WriteString(p.token)
		if d.onPartial != nil {
			d.onPartial(d.text.String())
		}
	default:
		d.stats.Unrecognized++
		log.Warn().Str("line", line).Msg("Ignored unrecognized payload")
	}
	return nil
}

type payloadKind int

const (
	payloadUnknown payloadKind = iota
	payloadError
	payloadDone
	payloadToken
)

type payload struct {
	kind    payloadKind
	token   string
	message string
}

type rawPayload struct {
	Error   any `json:"error"`
	Message any `json:"message"`
	Done    any `json:"done"`
	Token   any `json:"token"`
}

// parsePayload classifies a JSON payload. Shapes are checked in priority order
// error, done, token, following the truthiness of each field.
func parsePayload(data string) (payload, error) {
	var raw rawPayload
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return payload{}, err
	}

	switch {
	case truthy(raw.Error):
		msg, _ := raw.Message.(string)
		if msg == "" {
			msg = "Streaming error"
		}
		return payload{kind: payloadError, message: msg}, nil
	case truthy(raw.Done):
		return payload{kind: payloadDone}, nil
	}

	if tok, ok := raw.Token.(string); ok && tok != "" {
		return payload{kind: payloadToken, token: tok}, nil
	}
	return payload{kind: payloadUnknown}, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}
