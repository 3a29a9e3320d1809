package graphcache

import (
	"bytes"
	"compress/flate"
	"errors"
	"io"

	proto "github.com/golang/protobuf/proto"

	"github.com/pipforge/pipforge/pkg/wireproto"
)

// errEnvelopeMismatch indicates that an artifact's envelope id does not
// match the correlation id the caller expected. Per spec.md §4.4 this is
// "not present", never corruption, and callers must treat it identically
// to a missing file.
var errEnvelopeMismatch = errors.New("envelope id mismatch")

// envelopeSize is the width of the correlation id every persisted artifact
// is prefixed with (spec.md §6: FileEnvelopeId).
const envelopeSize = 16

// writeEnvelope wraps payload in an Envelope keyed by envelopeId, optionally
// flate-compressing it, and marshals the result.
func writeEnvelope(envelopeId [envelopeSize]byte, payload []byte, compress bool) ([]byte, error) {
	stored := payload
	if compress {
		var buffer bytes.Buffer
		writer, err := flate.NewWriter(&buffer, flate.DefaultCompression)
		if err != nil {
			return nil, err
		}
		if _, err := writer.Write(payload); err != nil {
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}
		stored = buffer.Bytes()
	}

	message := &wireproto.Envelope{
		EnvelopeId: envelopeId[:],
		Compressed: compress,
		Payload:    stored,
	}
	return proto.Marshal(message)
}

// readEnvelope unmarshals data as an Envelope, verifying its id matches
// expected. A mismatch is reported as errEnvelopeMismatch, which callers
// must treat as "not present", never as corruption (spec.md §4.4).
func readEnvelope(data []byte, expected [envelopeSize]byte) ([]byte, error) {
	message := &wireproto.Envelope{}
	if err := proto.Unmarshal(data, message); err != nil {
		return nil, err
	}
	if !bytes.Equal(message.EnvelopeId, expected[:]) {
		return nil, errEnvelopeMismatch
	}
	if !message.Compressed {
		return message.Payload, nil
	}
	reader := flate.NewReader(bytes.NewReader(message.Payload))
	defer reader.Close()
	return io.ReadAll(reader)
}
