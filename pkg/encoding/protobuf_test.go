package encoding

import (
	"bytes"
	"testing"

	"github.com/pipforge/pipforge/pkg/wireproto"
)

func TestProtocolBuffersCycle(t *testing.T) {
	path := t.TempDir() + "/message.bin"

	message := &wireproto.PipResult{
		Seq:     42,
		PipId:   "deadbeef",
		Status:  "succeeded",
		Outputs: []string{"a.o", "b.o"},
	}
	if err := MarshalAndSaveProtobuf(path, message); err != nil {
		t.Fatal("unable to marshal and save Protocol Buffers message:", err)
	}

	decoded := &wireproto.PipResult{}
	if err := LoadAndUnmarshalProtobuf(path, decoded); err != nil {
		t.Fatal("unable to load and unmarshal Protocol Buffers message:", err)
	}

	match := decoded.Seq == message.Seq &&
		decoded.PipId == message.PipId &&
		decoded.Status == message.Status &&
		len(decoded.Outputs) == len(message.Outputs)
	if !match {
		t.Error("decoded Protocol Buffers message did not match original:", decoded, "!=", message)
	}
}

const (
	// testProtobufEncodingNMessages is the number of messages to send/receive
	// in TestProtobufEncoding.
	testProtobufEncodingNMessages = 100
	// testProtobufSingleEncodingNMessage is the number of messages to
	// send/receive in TestProtobufSingleEncoding.
	testProtobufSingleEncodingNMessage = 10
)

func TestProtobufEncoding(t *testing.T) {
	stream := &bytes.Buffer{}
	encoder := NewProtobufEncoder(stream)
	decoder := NewProtobufDecoder(stream)

	pipId := "deadbeef"
	status := "succeeded"

	message := &wireproto.PipResult{PipId: pipId, Status: status}
	for i := 0; i < testProtobufEncodingNMessages; i++ {
		message.Seq = uint64(i)
		if err := encoder.Encode(message); err != nil {
			t.Fatal("unable to encode message:", err)
		}
	}

	for i := 0; i < testProtobufEncodingNMessages; i++ {
		*message = wireproto.PipResult{}
		if err := decoder.Decode(message); err != nil {
			t.Fatal("unable to decode message:", err)
		} else if message.PipId != pipId {
			t.Error("pip id mismatch in received message")
		} else if message.Status != status {
			t.Error("status mismatch in received message")
		} else if message.Seq != uint64(i) {
			t.Error("sequence mismatch in received message")
		}
	}
}

func TestProtobufSingleEncoding(t *testing.T) {
	stream := &bytes.Buffer{}

	pipId := "deadbeef"
	status := "succeeded"

	message := &wireproto.PipResult{PipId: pipId, Status: status}
	for i := 0; i < testProtobufSingleEncodingNMessage; i++ {
		message.Seq = uint64(i)
		if err := EncodeProtobuf(stream, message); err != nil {
			t.Fatal("unable to encode message:", err)
		}
	}

	for i := 0; i < testProtobufSingleEncodingNMessage; i++ {
		*message = wireproto.PipResult{}
		if err := DecodeProtobuf(stream, message); err != nil {
			t.Fatal("unable to decode message:", err)
		} else if message.PipId != pipId {
			t.Error("pip id mismatch in received message")
		} else if message.Status != status {
			t.Error("status mismatch in received message")
		} else if message.Seq != uint64(i) {
			t.Error("sequence mismatch in received message")
		}
	}
}
