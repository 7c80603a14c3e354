package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// protocolVersion of the binary websocket framing.
const protocolVersion = 0b0001

// MessageType is the 4-bit frame type.
type MessageType uint8

const (
	FullClientRequest       MessageType = 0b0001
	FullServerResponse      MessageType = 0b1001
	AudioOnlyServerResponse MessageType = 0b1011
	ErrorMessage            MessageType = 0b1111
)

// MessageFlags qualify the frame type. The low two bits describe the
// sequence number that follows the header.
type MessageFlags uint8

const (
	NoSequenceNumber       MessageFlags = 0b0000
	PositiveSequenceNumber MessageFlags = 0b0001
	LastPacketNoSequence   MessageFlags = 0b0010
	NegativeSequenceNumber MessageFlags = 0b0011
)

// SerializationMethod of the payload.
type SerializationMethod uint8

const (
	NoSerialization   SerializationMethod = 0b0000
	JSONSerialization SerializationMethod = 0b0001
)

// CompressionMethod of the payload.
type CompressionMethod uint8

const (
	NoCompression   CompressionMethod = 0b0000
	GzipCompression CompressionMethod = 0b0001
)

// Header is the fixed 4-byte frame header.
type Header struct {
	ProtocolVersion     uint8
	HeaderSize          uint8 // in units of 4 bytes
	MessageType         MessageType
	MessageFlags        MessageFlags
	SerializationMethod SerializationMethod
	CompressionMethod   CompressionMethod
	Reserved            uint8
}

// Message is one decoded frame.
type Message struct {
	Header      Header
	Sequence    int32
	ErrorCode   uint32
	PayloadSize uint32
	Payload     []byte
}

// NewHeader builds a 4-byte header.
func NewHeader(msgType MessageType, flags MessageFlags, serialization SerializationMethod, compression CompressionMethod) Header {
	return Header{
		ProtocolVersion:     protocolVersion,
		HeaderSize:          0b0001,
		MessageType:         msgType,
		MessageFlags:        flags,
		SerializationMethod: serialization,
		CompressionMethod:   compression,
	}
}

// Encode packs the header into 4 bytes.
func (h Header) Encode() []byte {
	return []byte{
		h.ProtocolVersion<<4 | h.HeaderSize,
		uint8(h.MessageType)<<4 | uint8(h.MessageFlags),
		uint8(h.SerializationMethod)<<4 | uint8(h.CompressionMethod),
		h.Reserved,
	}
}

// DecodeHeader unpacks a 4-byte header.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < 4 {
		return Header{}, fmt.Errorf("header too short: got %d bytes, need 4", len(data))
	}
	h := Header{
		ProtocolVersion:     data[0] >> 4,
		HeaderSize:          data[0] & 0x0F,
		MessageType:         MessageType(data[1] >> 4),
		MessageFlags:        MessageFlags(data[1] & 0x0F),
		SerializationMethod: SerializationMethod(data[2] >> 4),
		CompressionMethod:   CompressionMethod(data[2] & 0x0F),
		Reserved:            data[3],
	}
	if h.ProtocolVersion != protocolVersion {
		return Header{}, fmt.Errorf("unsupported protocol version %d", h.ProtocolVersion)
	}
	if h.HeaderSize == 0 {
		return Header{}, errors.New("invalid header size 0")
	}
	return h, nil
}

func (h Header) hasSequence() bool {
	switch h.MessageFlags & 0b0011 {
	case PositiveSequenceNumber, NegativeSequenceNumber:
		return true
	default:
		return false
	}
}

// EncodeMessage serialises msg: header, optional sequence, payload size and
// payload, all big-endian.
func EncodeMessage(msg *Message) []byte {
	var buf bytes.Buffer
	buf.Write(msg.Header.Encode())

	if msg.Header.hasSequence() {
		_ = binary.Write(&buf, binary.BigEndian, msg.Sequence)
	}
	if msg.Header.MessageType == ErrorMessage {
		_ = binary.Write(&buf, binary.BigEndian, msg.ErrorCode)
	}
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(msg.Payload)))
	buf.Write(msg.Payload)
	return buf.Bytes()
}

// DecodeMessage parses one frame. An audio-only frame without a sequence
// number is an acknowledgement and carries no payload size at all.
func DecodeMessage(r io.Reader) (*Message, error) {
	raw := make([]byte, 4)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header, err := DecodeHeader(raw)
	if err != nil {
		return nil, err
	}
	msg := &Message{Header: header}

	if extra := int(header.HeaderSize)*4 - 4; extra > 0 {
		if _, err := io.ReadFull(r, make([]byte, extra)); err != nil {
			return nil, fmt.Errorf("read extended header: %w", err)
		}
	}

	if header.hasSequence() {
		if err := binary.Read(r, binary.BigEndian, &msg.Sequence); err != nil {
			return nil, fmt.Errorf("read sequence: %w", err)
		}
	}
	if header.MessageType == ErrorMessage {
		if err := binary.Read(r, binary.BigEndian, &msg.ErrorCode); err != nil {
			return nil, fmt.Errorf("read error code: %w", err)
		}
	}

	if err := binary.Read(r, binary.BigEndian, &msg.PayloadSize); err != nil {
		if errors.Is(err, io.EOF) && header.MessageType == AudioOnlyServerResponse && !header.hasSequence() {
			return msg, nil
		}
		return nil, fmt.Errorf("read payload size: %w", err)
	}
	if msg.PayloadSize > 0 {
		msg.Payload = make([]byte, msg.PayloadSize)
		if _, err := io.ReadFull(r, msg.Payload); err != nil {
			return nil, fmt.Errorf("read payload (%d bytes): %w", msg.PayloadSize, err)
		}
	}
	return msg, nil
}

// NewFullClientRequest frames a JSON request payload.
func NewFullClientRequest(payload []byte, compression CompressionMethod) *Message {
	return &Message{
		Header:      NewHeader(FullClientRequest, NoSequenceNumber, JSONSerialization, compression),
		PayloadSize: uint32(len(payload)),
		Payload:     payload,
	}
}

// IsLastPacket reports whether the server marked this frame as final.
func (m *Message) IsLastPacket() bool {
	switch m.Header.MessageFlags & 0b0011 {
	case LastPacketNoSequence, NegativeSequenceNumber:
		return true
	default:
		return m.Sequence < 0
	}
}
