// Package protocol implements the binary frame format spoken between the snake
// server and its clients.
//
// Every frame is laid out as a little-endian u16 length, a single type byte and
// the payload. The length counts the type byte plus the payload, so the
// smallest valid frame (ConnRejected) is the three bytes 01 00 07.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// HeaderSize is the size of the length prefix that precedes every frame.
const HeaderSize = 2

// MaxFrameLength is the largest length a frame header can declare.
const MaxFrameLength = math.MaxUint16

// Type identifies the kind of a frame. It is the first byte after the length prefix.
type Type uint8

// Frame types.
const (
	TypeInfo            Type = 0x1
	TypeFoodUpdate      Type = 0x2
	TypeDirectionUpdate Type = 0x3
	TypeHeadUpdate      Type = 0x4
	TypeSnakeConnect    Type = 0x5
	TypeSnakeDisconnect Type = 0x6
	TypeConnRejected    Type = 0x7
)

func (t Type) String() string {
	switch t {
	case TypeInfo:
		return "Info"
	case TypeFoodUpdate:
		return "FoodUpdate"
	case TypeDirectionUpdate:
		return "DirectionUpdate"
	case TypeHeadUpdate:
		return "HeadUpdate"
	case TypeSnakeConnect:
		return "SnakeConnect"
	case TypeSnakeDisconnect:
		return "SnakeDisconnect"
	case TypeConnRejected:
		return "ConnRejected"
	default:
		return fmt.Sprintf("Type(0x%02x)", uint8(t))
	}
}

var (
	// ErrEmptyFrame is returned for a frame whose length prefix is zero.
	ErrEmptyFrame = errors.New("protocol: empty frame")
	// ErrUnknownType is returned when the type byte names no known frame.
	ErrUnknownType = errors.New("protocol: unknown frame type")
	// ErrTruncated is returned when a payload ends before its grammar is satisfied.
	ErrTruncated = errors.New("protocol: truncated payload")
	// ErrTrailingBytes is returned when a payload has bytes left after decoding.
	ErrTrailingBytes = errors.New("protocol: trailing bytes after payload")
	// ErrFrameTooLarge is returned when an encoded frame would not fit the u16 length prefix.
	ErrFrameTooLarge = errors.New("protocol: frame exceeds maximum length")
	// ErrInvalidDirection is returned for a direction code outside 1..4.
	ErrInvalidDirection = errors.New("protocol: invalid direction")
	// ErrMalformed is returned for payloads that are well sized but semantically invalid.
	ErrMalformed = errors.New("protocol: malformed payload")
)

// ReadFrame reads exactly one frame from r and returns its body: the type byte
// followed by the payload. A zero length prefix yields ErrEmptyFrame with the
// stream still positioned on the next frame. A clean end of stream before any
// header byte is reported as io.EOF.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	length := binary.LittleEndian.Uint16(header[:])
	if length == 0 {
		return nil, ErrEmptyFrame
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return body, nil
}

// WriteFrame marshals p and writes the resulting frame to w in a single call.
func WriteFrame(w io.Writer, p Packet) error {
	frame, err := Marshal(p)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// Marshal encodes p as a complete frame including its length prefix.
func Marshal(p Packet) ([]byte, error) {
	buf := make([]byte, HeaderSize+1, 32)
	buf[HeaderSize] = byte(p.Type())

	buf, err := p.appendPayload(buf)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", p.Type(), err)
	}

	length := len(buf) - HeaderSize
	if length > MaxFrameLength {
		return nil, fmt.Errorf("marshal %s: %w (%d bytes)", p.Type(), ErrFrameTooLarge, length)
	}
	binary.LittleEndian.PutUint16(buf, uint16(length))
	return buf, nil
}

// Decode parses a frame body as returned by ReadFrame. The caller is
// responsible for slicing exactly the declared length; Decode rejects bodies
// with missing or leftover payload bytes.
func Decode(body []byte) (Packet, error) {
	if len(body) == 0 {
		return nil, ErrEmptyFrame
	}

	t := Type(body[0])
	decode, ok := decoders[t]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownType, body[0])
	}

	r := &payloadReader{buf: body[1:]}
	p := decode(r)
	if err := r.finish(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", t, err)
	}
	return p, nil
}

// payloadReader is a cursor over a payload. The first failure sticks, so
// decoders can read a whole grammar and check the error once.
type payloadReader struct {
	buf []byte
	off int
	err error
}

func (r *payloadReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *payloadReader) remaining() int {
	return len(r.buf) - r.off
}

func (r *payloadReader) u8() uint8 {
	if r.err != nil {
		return 0
	}
	if r.remaining() < 1 {
		r.fail(ErrTruncated)
		return 0
	}
	v := r.buf[r.off]
	r.off++
	return v
}

func (r *payloadReader) u16() uint16 {
	if r.err != nil {
		return 0
	}
	if r.remaining() < 2 {
		r.fail(ErrTruncated)
		return 0
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v
}

func (r *payloadReader) point() Point {
	x := r.u8()
	y := r.u8()
	return Point{X: x, Y: y}
}

func (r *payloadReader) finish() error {
	if r.err != nil {
		return r.err
	}
	if n := r.remaining(); n > 0 {
		return fmt.Errorf("%w (%d)", ErrTrailingBytes, n)
	}
	return nil
}
