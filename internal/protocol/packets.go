package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
)

// InfoTerminator marks the end of the snake list inside an Info payload. It is
// never a valid snake id.
const InfoTerminator uint8 = 0xFF

// Point is a board cell as carried on the wire. Each axis is one byte.
type Point struct {
	X uint8
	Y uint8
}

// Direction is the wire code of a movement direction.
type Direction uint8

// Direction codes.
const (
	DirectionUp    Direction = 1
	DirectionDown  Direction = 2
	DirectionLeft  Direction = 3
	DirectionRight Direction = 4
)

// Valid reports whether d is one of the four direction codes.
func (d Direction) Valid() bool {
	return d >= DirectionUp && d <= DirectionRight
}

// Snake is the full body of one snake: tail-first body segments followed by the head.
type Snake struct {
	ID   uint8
	Body []Point
	Head Point
}

// Head is a single entry of a HeadUpdate frame.
type Head struct {
	ID   uint8
	Head Point
}

// Packet is implemented by every frame variant. The set is closed: only the
// seven types declared in this package satisfy it.
type Packet interface {
	Type() Type
	appendPayload(dst []byte) ([]byte, error)
}

// Info is sent to a client once, right after it joins, and carries the whole world.
type Info struct {
	OwnID  uint8
	Snakes []Snake
	Food   Point
}

// FoodUpdate announces that a snake ate and where the food respawned.
type FoodUpdate struct {
	EaterID uint8
	Food    Point
}

// DirectionUpdate is the only frame a client sends.
type DirectionUpdate struct {
	Direction Direction
}

// HeadUpdate lists the new head of every live snake after a tick.
type HeadUpdate struct {
	Heads []Head
}

// SnakeConnect announces a newly spawned snake to the other clients.
type SnakeConnect struct {
	Snake Snake
}

// SnakeDisconnect announces that a snake left the world.
type SnakeDisconnect struct {
	ID uint8
}

// ConnRejected tells a connecting client the server is full.
type ConnRejected struct{}

func (Info) Type() Type            { return TypeInfo }
func (FoodUpdate) Type() Type      { return TypeFoodUpdate }
func (DirectionUpdate) Type() Type { return TypeDirectionUpdate }
func (HeadUpdate) Type() Type      { return TypeHeadUpdate }
func (SnakeConnect) Type() Type    { return TypeSnakeConnect }
func (SnakeDisconnect) Type() Type { return TypeSnakeDisconnect }
func (ConnRejected) Type() Type    { return TypeConnRejected }

var decoders = map[Type]func(*payloadReader) Packet{
	TypeInfo:            decodeInfo,
	TypeFoodUpdate:      decodeFoodUpdate,
	TypeDirectionUpdate: decodeDirectionUpdate,
	TypeHeadUpdate:      decodeHeadUpdate,
	TypeSnakeConnect:    decodeSnakeConnect,
	TypeSnakeDisconnect: decodeSnakeDisconnect,
	TypeConnRejected:    decodeConnRejected,
}

func appendPoint(dst []byte, p Point) []byte {
	return append(dst, p.X, p.Y)
}

// appendSegments writes the segment count (body plus head), the body and the head.
func appendSegments(dst []byte, s Snake) ([]byte, error) {
	count := len(s.Body) + 1
	if count > math.MaxUint16 {
		return nil, fmt.Errorf("%w: snake %d has %d segments", ErrFrameTooLarge, s.ID, count)
	}
	dst = binary.LittleEndian.AppendUint16(dst, uint16(count))
	for _, p := range s.Body {
		dst = appendPoint(dst, p)
	}
	return appendPoint(dst, s.Head), nil
}

func readSegments(r *payloadReader, id uint8) Snake {
	s := Snake{ID: id}
	count := int(r.u16())
	if r.err != nil {
		return s
	}
	if count == 0 {
		r.fail(fmt.Errorf("%w: snake %d has no segments", ErrMalformed, id))
		return s
	}
	if r.remaining() < count*2 {
		r.fail(ErrTruncated)
		return s
	}
	for i := 0; i < count-1; i++ {
		s.Body = append(s.Body, r.point())
	}
	s.Head = r.point()
	return s
}

func (p Info) appendPayload(dst []byte) ([]byte, error) {
	dst = append(dst, p.OwnID)
	for _, s := range p.Snakes {
		if s.ID == InfoTerminator {
			return nil, fmt.Errorf("%w: snake id 0x%02x is reserved", ErrMalformed, s.ID)
		}
		dst = append(dst, s.ID)
		var err error
		if dst, err = appendSegments(dst, s); err != nil {
			return nil, err
		}
	}
	dst = append(dst, InfoTerminator)
	return appendPoint(dst, p.Food), nil
}

func decodeInfo(r *payloadReader) Packet {
	p := Info{OwnID: r.u8()}
	for r.err == nil {
		id := r.u8()
		if id == InfoTerminator || r.err != nil {
			break
		}
		p.Snakes = append(p.Snakes, readSegments(r, id))
	}
	p.Food = r.point()
	return p
}

func (p FoodUpdate) appendPayload(dst []byte) ([]byte, error) {
	dst = append(dst, p.EaterID)
	return appendPoint(dst, p.Food), nil
}

func decodeFoodUpdate(r *payloadReader) Packet {
	id := r.u8()
	return FoodUpdate{EaterID: id, Food: r.point()}
}

func (p DirectionUpdate) appendPayload(dst []byte) ([]byte, error) {
	if !p.Direction.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, p.Direction)
	}
	return append(dst, byte(p.Direction)), nil
}

func decodeDirectionUpdate(r *payloadReader) Packet {
	d := Direction(r.u8())
	if r.err == nil && !d.Valid() {
		r.fail(fmt.Errorf("%w: %d", ErrInvalidDirection, d))
	}
	return DirectionUpdate{Direction: d}
}

func (p HeadUpdate) appendPayload(dst []byte) ([]byte, error) {
	for _, h := range p.Heads {
		dst = append(dst, h.ID)
		dst = appendPoint(dst, h.Head)
	}
	return dst, nil
}

func decodeHeadUpdate(r *payloadReader) Packet {
	var p HeadUpdate
	if r.remaining()%3 != 0 {
		r.fail(fmt.Errorf("%w: %d bytes is not a whole number of heads", ErrTruncated, r.remaining()))
		return p
	}
	for r.remaining() > 0 && r.err == nil {
		id := r.u8()
		p.Heads = append(p.Heads, Head{ID: id, Head: r.point()})
	}
	return p
}

func (p SnakeConnect) appendPayload(dst []byte) ([]byte, error) {
	dst = append(dst, p.Snake.ID)
	return appendSegments(dst, p.Snake)
}

func decodeSnakeConnect(r *payloadReader) Packet {
	id := r.u8()
	return SnakeConnect{Snake: readSegments(r, id)}
}

func (p SnakeDisconnect) appendPayload(dst []byte) ([]byte, error) {
	return append(dst, p.ID), nil
}

func decodeSnakeDisconnect(r *payloadReader) Packet {
	return SnakeDisconnect{ID: r.u8()}
}

func (ConnRejected) appendPayload(dst []byte) ([]byte, error) {
	return dst, nil
}

func decodeConnRejected(*payloadReader) Packet {
	return ConnRejected{}
}
