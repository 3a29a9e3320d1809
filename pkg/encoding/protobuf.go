package encoding

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/golang/protobuf/proto"
)

const (
	// protobufEncoderInitialBufferSize is the initial buffer size for encoders.
	protobufEncoderInitialBufferSize = 32 * 1024

	// protobufEncoderMaximumPersistentBufferSize is the maximum buffer size
	// that the encoder will keep allocated.
	protobufEncoderMaximumPersistentBufferSize = 1024 * 1024

	// protobufDecoderReaderBufferSize is the size to use for the buffered
	// reader in ProtobufDecoder.
	protobufDecoderReaderBufferSize = 32 * 1024

	// protobufDecoderInitialBufferSize is the initial buffer size for decoders.
	protobufDecoderInitialBufferSize = 32 * 1024

	// protobufDecoderMaximumAllowedMessageSize is the maximum message size
	// that will be read from the wire. This bounds memory used to decode a
	// single ExecutePip/PipResult frame from a misbehaving peer.
	protobufDecoderMaximumAllowedMessageSize = 100 * 1024 * 1024

	// protobufDecoderMaximumPersistentBufferSize is the maximum buffer size
	// that the decoder will keep allocated.
	protobufDecoderMaximumPersistentBufferSize = 1024 * 1024
)

// LoadAndUnmarshalProtobuf loads data from the specified path and decodes it
// into the specified Protocol Buffers message.
func LoadAndUnmarshalProtobuf(path string, message proto.Message) error {
	return LoadAndUnmarshal(path, func(data []byte) error {
		return proto.Unmarshal(data, message)
	})
}

// MarshalAndSaveProtobuf marshals the specified Protocol Buffers message and
// saves it to the specified path.
func MarshalAndSaveProtobuf(path string, message proto.Message) error {
	return MarshalAndSave(path, func() ([]byte, error) {
		return proto.Marshal(message)
	})
}

// ProtobufEncoder is a stream encoder for Protocol Buffers messages, used for
// the distribution coordinator's control connection (Attach, ExecutePip,
// PipResult, Heartbeat, Bye).
type ProtobufEncoder struct {
	writer io.Writer
	buffer *proto.Buffer
}

// NewProtobufEncoder creates a new Protocol Buffers stream encoder.
func NewProtobufEncoder(writer io.Writer) *ProtobufEncoder {
	return &ProtobufEncoder{
		writer: writer,
		buffer: proto.NewBuffer(make([]byte, 0, protobufEncoderInitialBufferSize)),
	}
}

// EncodeWithoutFlush encodes a length-prefixed Protocol Buffers message into
// the encoder's internal buffer, but does not write this data to the
// underlying stream.
func (e *ProtobufEncoder) EncodeWithoutFlush(message proto.Message) error {
	if err := e.buffer.EncodeMessage(message); err != nil {
		return errors.Wrap(err, "unable to encode message")
	}
	return nil
}

// Flush writes the contents of the encoder's internal buffer, if any, to the
// underlying stream.
func (e *ProtobufEncoder) Flush() error {
	data := e.buffer.Bytes()

	if len(data) > 0 {
		if _, err := e.writer.Write(data); err != nil {
			return errors.Wrap(err, "unable to write message")
		}
	}

	if cap(data) > protobufEncoderMaximumPersistentBufferSize {
		e.buffer.SetBuf(make([]byte, 0, protobufEncoderMaximumPersistentBufferSize))
	} else {
		e.buffer.Reset()
	}

	return nil
}

// Encode encodes a length-prefixed Protocol Buffers message and writes it to
// the underlying stream.
func (e *ProtobufEncoder) Encode(message proto.Message) error {
	if err := e.EncodeWithoutFlush(message); err != nil {
		return err
	}
	return e.Flush()
}

// ProtobufDecoder is a stream decoder for Protocol Buffers messages. Because
// it wraps the underlying stream in a buffered reader, it should persist for
// the lifetime of the stream; for single-message decodes use DecodeProtobuf.
type ProtobufDecoder struct {
	reader *bufio.Reader
	buffer []byte
}

// NewProtobufDecoder creates a new Protocol Buffers stream decoder.
func NewProtobufDecoder(reader io.Reader) *ProtobufDecoder {
	return &ProtobufDecoder{
		reader: bufio.NewReaderSize(reader, protobufDecoderReaderBufferSize),
		buffer: make([]byte, protobufDecoderInitialBufferSize),
	}
}

func (d *ProtobufDecoder) bufferWithSize(size int) []byte {
	if cap(d.buffer) >= size {
		return d.buffer[:size]
	}
	result := make([]byte, size)
	if size <= protobufDecoderMaximumPersistentBufferSize {
		d.buffer = result
	}
	return result
}

// Decode decodes a length-prefixed Protocol Buffers message from the
// underlying stream.
func (d *ProtobufDecoder) Decode(message proto.Message) error {
	length, err := binary.ReadUvarint(d.reader)
	if err != nil {
		return errors.Wrap(err, "unable to read message length")
	}

	if length > protobufDecoderMaximumAllowedMessageSize {
		return errors.New("message size too large")
	}

	messageBytes := d.bufferWithSize(int(length))

	if _, err := io.ReadFull(d.reader, messageBytes); err != nil {
		return errors.Wrap(err, "unable to read message")
	}

	if err := proto.Unmarshal(messageBytes, message); err != nil {
		return errors.Wrap(err, "unable to unmarshal message")
	}

	return nil
}

// EncodeProtobuf writes a single Protocol Buffers message that can be read by
// ProtobufDecoder or DecodeProtobuf. For multiple message sends, a
// ProtobufEncoder is far more efficient.
func EncodeProtobuf(writer io.Writer, message proto.Message) error {
	return NewProtobufEncoder(writer).Encode(message)
}

// simpleByteReader is a naive io.ByteReader implementation on top of an
// io.Reader, used only for single-message reads where a buffered reader
// would over-read the stream.
type simpleByteReader struct {
	reader io.Reader
}

// ReadByte implements io.ByteReader.ReadByte.
func (r *simpleByteReader) ReadByte() (byte, error) {
	var data [1]byte
	if _, err := io.ReadFull(r.reader, data[:]); err != nil {
		return 0, err
	}
	return data[0], nil
}

// DecodeProtobuf reads and decodes a single Protocol Buffers message as
// transmitted by ProtobufEncoder or EncodeProtobuf, without reading past the
// end of that message.
func DecodeProtobuf(reader io.Reader, message proto.Message) error {
	length, err := binary.ReadUvarint(&simpleByteReader{reader})
	if err != nil {
		return errors.Wrap(err, "unable to read message length")
	}

	if length > protobufDecoderMaximumAllowedMessageSize {
		return errors.New("message size too large")
	}

	messageBytes := make([]byte, length)

	if _, err := io.ReadFull(reader, messageBytes); err != nil {
		return errors.Wrap(err, "unable to read message")
	}

	if err := proto.Unmarshal(messageBytes, message); err != nil {
		return errors.Wrap(err, "unable to unmarshal message")
	}

	return nil
}
