// Package wireproto defines the persisted and wire-transmitted messages
// used by GraphCache (C4) and DistributionCoordinator (C7). The message
// types below are hand-authored in the legacy protoc-gen-go idiom (struct
// tags plus proto.InternalMessageInfo delegation) rather than produced by
// running protoc, but they are wire-compatible with any future generated
// code sharing the same field numbers, and they work correctly against the
// modern google.golang.org/protobuf runtime via its legacy message support.
//
// Unlike a protoc-generated file, these types deliberately omit a
// Descriptor() method and gzipped file-descriptor bytes: that machinery is
// only needed for reflection-based tooling (grpc-reflection, protoc
// interop), not for proto.Message compliance or for InternalMessageInfo's
// own Marshal/Unmarshal, both of which operate purely from the struct tags.
package wireproto

import (
	"fmt"
	"math"

	proto "github.com/golang/protobuf/proto"
)

var _ = proto.Marshal
var _ = fmt.Errorf
var _ = math.Inf

const _ = proto.ProtoPackageIsVersion2

// GraphDescriptor is a content-addressed pointer to a set of serialized
// graph files in the shared content store, plus the set of environment
// variables and mounts the graph depended on (spec.md §3).
type GraphDescriptor struct {
	// ExactFingerprint is the hex-encoded ExactFingerprint this descriptor
	// was stored under.
	ExactFingerprint string `protobuf:"bytes,1,opt,name=exactFingerprint" json:"exactFingerprint,omitempty"`
	// Files maps a persisted table name (e.g. "PipGraph", "PreviousInputs")
	// to the content hash of its serialized bytes in the shared store.
	Files map[string][]byte `protobuf:"bytes,2,rep,name=files" json:"files,omitempty" protobuf_key:"bytes,1,opt,name=key" protobuf_val:"bytes,2,opt,name=value"`
	// EnvironmentVariableNames is the set of environment variable names the
	// graph depended on.
	EnvironmentVariableNames []string `protobuf:"bytes,3,rep,name=environmentVariableNames" json:"environmentVariableNames,omitempty"`
	// MountNames is the set of mount names the graph depended on.
	MountNames []string `protobuf:"bytes,4,rep,name=mountNames" json:"mountNames,omitempty"`
	// Compressed indicates whether the referenced files are flate-compressed.
	Compressed bool `protobuf:"varint,5,opt,name=compressed" json:"compressed,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *GraphDescriptor) Reset()         { *m = GraphDescriptor{} }
func (m *GraphDescriptor) String() string { return proto.CompactTextString(m) }
func (*GraphDescriptor) ProtoMessage()    {}

func (m *GraphDescriptor) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_GraphDescriptor.Unmarshal(m, b)
}
func (m *GraphDescriptor) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_GraphDescriptor.Marshal(b, m, deterministic)
}
func (dst *GraphDescriptor) XXX_Merge(src proto.Message) {
	xxx_messageInfo_GraphDescriptor.Merge(dst, src)
}
func (m *GraphDescriptor) XXX_Size() int {
	return xxx_messageInfo_GraphDescriptor.Size(m)
}
func (m *GraphDescriptor) XXX_DiscardUnknown() {
	xxx_messageInfo_GraphDescriptor.DiscardUnknown(m)
}

var xxx_messageInfo_GraphDescriptor proto.InternalMessageInfo

// Envelope is the 16-byte-id-prefixed header written at the start of every
// persisted artifact (spec.md §6: PipGraph, StringTable, PreviousInputs,
// etc). Loaders verify EnvelopeId against the expected correlation id before
// trusting the remaining payload; a mismatch means "not present", never
// "corrupt" (spec.md §4.4, Testable Property 5).
type Envelope struct {
	// EnvelopeId is the 16-byte correlation id for this artifact's cohort.
	EnvelopeId []byte `protobuf:"bytes,1,opt,name=envelopeId,proto3" json:"envelopeId,omitempty"`
	// Compressed indicates that Payload is flate-compressed.
	Compressed bool `protobuf:"varint,2,opt,name=compressed" json:"compressed,omitempty"`
	// Payload is the envelope's inner content.
	Payload []byte `protobuf:"bytes,3,opt,name=payload,proto3" json:"payload,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *Envelope) Reset()         { *m = Envelope{} }
func (m *Envelope) String() string { return proto.CompactTextString(m) }
func (*Envelope) ProtoMessage()    {}

func (m *Envelope) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_Envelope.Unmarshal(m, b)
}
func (m *Envelope) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_Envelope.Marshal(b, m, deterministic)
}
func (dst *Envelope) XXX_Merge(src proto.Message) {
	xxx_messageInfo_Envelope.Merge(dst, src)
}
func (m *Envelope) XXX_Size() int {
	return xxx_messageInfo_Envelope.Size(m)
}
func (m *Envelope) XXX_DiscardUnknown() {
	xxx_messageInfo_Envelope.DiscardUnknown(m)
}

var xxx_messageInfo_Envelope proto.InternalMessageInfo

func init() {
	proto.RegisterType((*GraphDescriptor)(nil), "pipforge.GraphDescriptor")
	proto.RegisterMapType((map[string][]byte)(nil), "pipforge.GraphDescriptor.FilesEntry")
	proto.RegisterType((*Envelope)(nil), "pipforge.Envelope")
}
