package wireproto

import (
	proto "github.com/golang/protobuf/proto"
)

// TrackedFileEntry is the persisted form of one InputTracker file
// observation.
type TrackedFileEntry struct {
	Path      string `protobuf:"bytes,1,opt,name=path" json:"path,omitempty"`
	VolumeId  uint64 `protobuf:"varint,2,opt,name=volumeId" json:"volumeId,omitempty"`
	FileId    uint64 `protobuf:"varint,3,opt,name=fileId" json:"fileId,omitempty"`
	Usn       int64  `protobuf:"varint,4,opt,name=usn" json:"usn,omitempty"`
	Hash      []byte `protobuf:"bytes,5,opt,name=hash,proto3" json:"hash,omitempty"`
	HashKnown bool   `protobuf:"varint,6,opt,name=hashKnown" json:"hashKnown,omitempty"`
	Absent    bool   `protobuf:"varint,7,opt,name=absent" json:"absent,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *TrackedFileEntry) Reset()         { *m = TrackedFileEntry{} }
func (m *TrackedFileEntry) String() string { return proto.CompactTextString(m) }
func (*TrackedFileEntry) ProtoMessage()    {}
func (m *TrackedFileEntry) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_TrackedFileEntry.Unmarshal(m, b)
}
func (m *TrackedFileEntry) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_TrackedFileEntry.Marshal(b, m, deterministic)
}
func (dst *TrackedFileEntry) XXX_Merge(src proto.Message) {
	xxx_messageInfo_TrackedFileEntry.Merge(dst, src)
}
func (m *TrackedFileEntry) XXX_Size() int { return xxx_messageInfo_TrackedFileEntry.Size(m) }
func (m *TrackedFileEntry) XXX_DiscardUnknown() {
	xxx_messageInfo_TrackedFileEntry.DiscardUnknown(m)
}

var xxx_messageInfo_TrackedFileEntry proto.InternalMessageInfo

// TrackedDirectoryEntry is the persisted form of one InputTracker directory
// enumeration.
type TrackedDirectoryEntry struct {
	Path        string `protobuf:"bytes,1,opt,name=path" json:"path,omitempty"`
	Fingerprint []byte `protobuf:"bytes,2,opt,name=fingerprint,proto3" json:"fingerprint,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *TrackedDirectoryEntry) Reset()         { *m = TrackedDirectoryEntry{} }
func (m *TrackedDirectoryEntry) String() string { return proto.CompactTextString(m) }
func (*TrackedDirectoryEntry) ProtoMessage()    {}
func (m *TrackedDirectoryEntry) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_TrackedDirectoryEntry.Unmarshal(m, b)
}
func (m *TrackedDirectoryEntry) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_TrackedDirectoryEntry.Marshal(b, m, deterministic)
}
func (dst *TrackedDirectoryEntry) XXX_Merge(src proto.Message) {
	xxx_messageInfo_TrackedDirectoryEntry.Merge(dst, src)
}
func (m *TrackedDirectoryEntry) XXX_Size() int {
	return xxx_messageInfo_TrackedDirectoryEntry.Size(m)
}
func (m *TrackedDirectoryEntry) XXX_DiscardUnknown() {
	xxx_messageInfo_TrackedDirectoryEntry.DiscardUnknown(m)
}

var xxx_messageInfo_TrackedDirectoryEntry proto.InternalMessageInfo

// PreviousInputs is the persisted InputTracker snapshot written to the
// engine-cache directory on graph construction success (spec.md §6).
type PreviousInputs struct {
	Files             []*TrackedFileEntry      `protobuf:"bytes,1,rep,name=files" json:"files,omitempty"`
	Directories       []*TrackedDirectoryEntry `protobuf:"bytes,2,rep,name=directories" json:"directories,omitempty"`
	EnvironmentValues map[string]string        `protobuf:"bytes,3,rep,name=environmentValues" json:"environmentValues,omitempty" protobuf_key:"bytes,1,opt,name=key" protobuf_val:"bytes,2,opt,name=value"`
	MountValues       map[string]string        `protobuf:"bytes,4,rep,name=mountValues" json:"mountValues,omitempty" protobuf_key:"bytes,1,opt,name=key" protobuf_val:"bytes,2,opt,name=value"`
	ExactFingerprint  []byte                   `protobuf:"bytes,5,opt,name=exactFingerprint,proto3" json:"exactFingerprint,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *PreviousInputs) Reset()         { *m = PreviousInputs{} }
func (m *PreviousInputs) String() string { return proto.CompactTextString(m) }
func (*PreviousInputs) ProtoMessage()    {}
func (m *PreviousInputs) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_PreviousInputs.Unmarshal(m, b)
}
func (m *PreviousInputs) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_PreviousInputs.Marshal(b, m, deterministic)
}
func (dst *PreviousInputs) XXX_Merge(src proto.Message) {
	xxx_messageInfo_PreviousInputs.Merge(dst, src)
}
func (m *PreviousInputs) XXX_Size() int { return xxx_messageInfo_PreviousInputs.Size(m) }
func (m *PreviousInputs) XXX_DiscardUnknown() {
	xxx_messageInfo_PreviousInputs.DiscardUnknown(m)
}

var xxx_messageInfo_PreviousInputs proto.InternalMessageInfo

func init() {
	proto.RegisterType((*TrackedFileEntry)(nil), "pipforge.TrackedFileEntry")
	proto.RegisterType((*TrackedDirectoryEntry)(nil), "pipforge.TrackedDirectoryEntry")
	proto.RegisterType((*PreviousInputs)(nil), "pipforge.PreviousInputs")
	proto.RegisterMapType((map[string]string)(nil), "pipforge.PreviousInputs.EnvironmentValuesEntry")
	proto.RegisterMapType((map[string]string)(nil), "pipforge.PreviousInputs.MountValuesEntry")
}
