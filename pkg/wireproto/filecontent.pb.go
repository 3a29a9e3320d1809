package wireproto

import (
	proto "github.com/golang/protobuf/proto"
)

// FileContentEntry is the persisted form of one FileContentTable row: a
// FileIdentity (volume id, file id, update-sequence value) paired with the
// content hash recorded for that identity, plus a time-to-live counted in
// builds (spec.md §3, §4.2).
type FileContentEntry struct {
	VolumeId uint64 `protobuf:"varint,1,opt,name=volumeId" json:"volumeId,omitempty"`
	FileId   uint64 `protobuf:"varint,2,opt,name=fileId" json:"fileId,omitempty"`
	Usn      int64  `protobuf:"varint,3,opt,name=usn" json:"usn,omitempty"`
	Hash     []byte `protobuf:"bytes,4,opt,name=hash,proto3" json:"hash,omitempty"`
	Ttl      uint32 `protobuf:"varint,5,opt,name=ttl" json:"ttl,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *FileContentEntry) Reset()         { *m = FileContentEntry{} }
func (m *FileContentEntry) String() string { return proto.CompactTextString(m) }
func (*FileContentEntry) ProtoMessage()    {}
func (m *FileContentEntry) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_FileContentEntry.Unmarshal(m, b)
}
func (m *FileContentEntry) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_FileContentEntry.Marshal(b, m, deterministic)
}
func (dst *FileContentEntry) XXX_Merge(src proto.Message) {
	xxx_messageInfo_FileContentEntry.Merge(dst, src)
}
func (m *FileContentEntry) XXX_Size() int { return xxx_messageInfo_FileContentEntry.Size(m) }
func (m *FileContentEntry) XXX_DiscardUnknown() {
	xxx_messageInfo_FileContentEntry.DiscardUnknown(m)
}

var xxx_messageInfo_FileContentEntry proto.InternalMessageInfo

// FileContentTable is the persisted form of the whole FileContentTable (C2),
// keyed by the identity key string (see pkg/filecontent.identityKey).
type FileContentTable struct {
	Entries map[string]*FileContentEntry `protobuf:"bytes,1,rep,name=entries" json:"entries,omitempty" protobuf_key:"bytes,1,opt,name=key" protobuf_val:"bytes,2,opt,name=value"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *FileContentTable) Reset()         { *m = FileContentTable{} }
func (m *FileContentTable) String() string { return proto.CompactTextString(m) }
func (*FileContentTable) ProtoMessage()    {}
func (m *FileContentTable) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_FileContentTable.Unmarshal(m, b)
}
func (m *FileContentTable) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_FileContentTable.Marshal(b, m, deterministic)
}
func (dst *FileContentTable) XXX_Merge(src proto.Message) {
	xxx_messageInfo_FileContentTable.Merge(dst, src)
}
func (m *FileContentTable) XXX_Size() int { return xxx_messageInfo_FileContentTable.Size(m) }
func (m *FileContentTable) XXX_DiscardUnknown() {
	xxx_messageInfo_FileContentTable.DiscardUnknown(m)
}

var xxx_messageInfo_FileContentTable proto.InternalMessageInfo

func init() {
	proto.RegisterType((*FileContentEntry)(nil), "pipforge.FileContentEntry")
	proto.RegisterType((*FileContentTable)(nil), "pipforge.FileContentTable")
	proto.RegisterMapType((map[string]*FileContentEntry)(nil), "pipforge.FileContentTable.EntriesEntry")
}
