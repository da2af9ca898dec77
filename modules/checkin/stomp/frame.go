// Package stomp adapts the go-stomp frame codec to the check-in websocket,
// where every websocket message carries exactly one frame.
package stomp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-stomp/stomp/v3/frame"
)

const (
	CommandConnect     = "CONNECT"
	CommandStomp       = "STOMP"
	CommandConnected   = "CONNECTED"
	CommandSend        = "SEND"
	CommandSubscribe   = "SUBSCRIBE"
	CommandUnsubscribe = "UNSUBSCRIBE"
	CommandDisconnect  = "DISCONNECT"
	CommandMessage     = "MESSAGE"
	CommandReceipt     = "RECEIPT"
	CommandError       = "ERROR"
)

const (
	HeaderAcceptVersion = "accept-version"
	HeaderVersion       = "version"
	HeaderHeartBeat     = "heart-beat"
	HeaderDestination   = "destination"
	HeaderID            = "id"
	HeaderSubscription  = "subscription"
	HeaderMessageID     = "message-id"
	HeaderReceipt       = "receipt"
	HeaderReceiptID     = "receipt-id"
	HeaderContentType   = "content-type"
	HeaderContentLength = "content-length"
	HeaderMessage       = "message"
	HeaderServer        = "server"
	HeaderSession       = "session"
)

var ErrMalformedFrame = errors.New("stomp: malformed frame")

var knownCommands = map[string]struct{}{
	CommandConnect:     {},
	CommandStomp:       {},
	CommandSend:        {},
	CommandSubscribe:   {},
	CommandUnsubscribe: {},
	CommandDisconnect:  {},
	CommandConnected:   {},
	CommandMessage:     {},
	CommandReceipt:     {},
	CommandError:       {},
	"ACK":              {},
	"NACK":             {},
	"BEGIN":            {},
	"COMMIT":           {},
	"ABORT":            {},
}

type Frame = frame.Frame

func New(command string, headers ...string) *Frame {
	return frame.New(command, headers...)
}

// Parse decodes one websocket message. A message holding only end-of-line
// bytes is a heart-beat and yields a nil frame with a nil error.
func Parse(data []byte) (*Frame, error) {
	data = trimLeadingEOL(data)
	if len(data) == 0 {
		return nil, nil
	}
	if err := checkContentLength(data); err != nil {
		return nil, err
	}

	f, err := frame.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if _, known := knownCommands[f.Command]; !known {
		return nil, fmt.Errorf("%w: unknown command %q", ErrMalformedFrame, f.Command)
	}
	return f, nil
}

// Marshal encodes f, setting content-length when there is a body.
func Marshal(f *Frame) []byte {
	if len(f.Body) > 0 {
		f.Header.Set(HeaderContentLength, strconv.Itoa(len(f.Body)))
	}
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_ = frame.NewWriter(&buf).Write(f)
	return buf.Bytes()
}

// checkContentLength rejects a declared body length the message cannot
// hold, before the decoder sizes a buffer from it.
func checkContentLength(data []byte) error {
	prefix := []byte(HeaderContentLength + ":")
	rest := data
	for {
		line, next, found := bytes.Cut(rest, []byte{'\n'})
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) == 0 || !found {
			return nil
		}
		if value, ok := bytes.CutPrefix(line, prefix); ok {
			n, err := strconv.Atoi(string(value))
			if err != nil || n < 0 || n > len(data) {
				return fmt.Errorf("%w: bad content-length %q", ErrMalformedFrame, value)
			}
			return nil
		}
		rest = next
	}
}

func trimLeadingEOL(data []byte) []byte {
	for len(data) > 0 {
		switch {
		case data[0] == '\n':
			data = data[1:]
		case data[0] == '\r' && len(data) > 1 && data[1] == '\n':
			data = data[2:]
		default:
			return data
		}
	}
	return data
}
