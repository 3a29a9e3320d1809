package wireproto

import (
	proto "github.com/golang/protobuf/proto"
)

// WireEnvironmentVariable is the persisted form of a pipgraph.EnvironmentVariable.
type WireEnvironmentVariable struct {
	Name  string `protobuf:"bytes,1,opt,name=name" json:"name,omitempty"`
	Value string `protobuf:"bytes,2,opt,name=value" json:"value,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *WireEnvironmentVariable) Reset()         { *m = WireEnvironmentVariable{} }
func (m *WireEnvironmentVariable) String() string { return proto.CompactTextString(m) }
func (*WireEnvironmentVariable) ProtoMessage()    {}
func (m *WireEnvironmentVariable) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_WireEnvironmentVariable.Unmarshal(m, b)
}
func (m *WireEnvironmentVariable) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_WireEnvironmentVariable.Marshal(b, m, deterministic)
}
func (dst *WireEnvironmentVariable) XXX_Merge(src proto.Message) {
	xxx_messageInfo_WireEnvironmentVariable.Merge(dst, src)
}
func (m *WireEnvironmentVariable) XXX_Size() int {
	return xxx_messageInfo_WireEnvironmentVariable.Size(m)
}
func (m *WireEnvironmentVariable) XXX_DiscardUnknown() {
	xxx_messageInfo_WireEnvironmentVariable.DiscardUnknown(m)
}

var xxx_messageInfo_WireEnvironmentVariable proto.InternalMessageInfo

// WireFileDependency is the persisted form of a pipgraph.FileDependency.
type WireFileDependency struct {
	Mount string `protobuf:"bytes,1,opt,name=mount" json:"mount,omitempty"`
	Path  string `protobuf:"bytes,2,opt,name=path" json:"path,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *WireFileDependency) Reset()         { *m = WireFileDependency{} }
func (m *WireFileDependency) String() string { return proto.CompactTextString(m) }
func (*WireFileDependency) ProtoMessage()    {}
func (m *WireFileDependency) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_WireFileDependency.Unmarshal(m, b)
}
func (m *WireFileDependency) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_WireFileDependency.Marshal(b, m, deterministic)
}
func (dst *WireFileDependency) XXX_Merge(src proto.Message) {
	xxx_messageInfo_WireFileDependency.Merge(dst, src)
}
func (m *WireFileDependency) XXX_Size() int { return xxx_messageInfo_WireFileDependency.Size(m) }
func (m *WireFileDependency) XXX_DiscardUnknown() {
	xxx_messageInfo_WireFileDependency.DiscardUnknown(m)
}

var xxx_messageInfo_WireFileDependency proto.InternalMessageInfo

// WireSealedDirectory is the persisted form of a pipgraph.SealedDirectory.
type WireSealedDirectory struct {
	Root                  string `protobuf:"bytes,1,opt,name=root" json:"root,omitempty"`
	Mount                 string `protobuf:"bytes,2,opt,name=mount" json:"mount,omitempty"`
	MembershipFingerprint []byte `protobuf:"bytes,3,opt,name=membershipFingerprint,proto3" json:"membershipFingerprint,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *WireSealedDirectory) Reset()         { *m = WireSealedDirectory{} }
func (m *WireSealedDirectory) String() string { return proto.CompactTextString(m) }
func (*WireSealedDirectory) ProtoMessage()    {}
func (m *WireSealedDirectory) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_WireSealedDirectory.Unmarshal(m, b)
}
func (m *WireSealedDirectory) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_WireSealedDirectory.Marshal(b, m, deterministic)
}
func (dst *WireSealedDirectory) XXX_Merge(src proto.Message) {
	xxx_messageInfo_WireSealedDirectory.Merge(dst, src)
}
func (m *WireSealedDirectory) XXX_Size() int { return xxx_messageInfo_WireSealedDirectory.Size(m) }
func (m *WireSealedDirectory) XXX_DiscardUnknown() {
	xxx_messageInfo_WireSealedDirectory.DiscardUnknown(m)
}

var xxx_messageInfo_WireSealedDirectory proto.InternalMessageInfo

// WirePip is the persisted form of a pipgraph.Pip.
type WirePip struct {
	Id                    string                      `protobuf:"bytes,1,opt,name=id" json:"id,omitempty"`
	Executable            string                      `protobuf:"bytes,2,opt,name=executable" json:"executable,omitempty"`
	Arguments             []string                    `protobuf:"bytes,3,rep,name=arguments" json:"arguments,omitempty"`
	Environment           []*WireEnvironmentVariable  `protobuf:"bytes,4,rep,name=environment" json:"environment,omitempty"`
	Inputs                []*WireFileDependency       `protobuf:"bytes,5,rep,name=inputs" json:"inputs,omitempty"`
	SealedDirectoryInputs []*WireSealedDirectory       `protobuf:"bytes,6,rep,name=sealedDirectoryInputs" json:"sealedDirectoryInputs,omitempty"`
	Outputs               []*WireFileDependency       `protobuf:"bytes,7,rep,name=outputs" json:"outputs,omitempty"`
	Dependents            []string                    `protobuf:"bytes,8,rep,name=dependents" json:"dependents,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *WirePip) Reset()         { *m = WirePip{} }
func (m *WirePip) String() string { return proto.CompactTextString(m) }
func (*WirePip) ProtoMessage()    {}
func (m *WirePip) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_WirePip.Unmarshal(m, b)
}
func (m *WirePip) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_WirePip.Marshal(b, m, deterministic)
}
func (dst *WirePip) XXX_Merge(src proto.Message) { xxx_messageInfo_WirePip.Merge(dst, src) }
func (m *WirePip) XXX_Size() int                 { return xxx_messageInfo_WirePip.Size(m) }
func (m *WirePip) XXX_DiscardUnknown()           { xxx_messageInfo_WirePip.DiscardUnknown(m) }

var xxx_messageInfo_WirePip proto.InternalMessageInfo

// WireMount is the persisted form of a pipgraph.Mount.
type WireMount struct {
	Name         string `protobuf:"bytes,1,opt,name=name" json:"name,omitempty"`
	ResolvedPath string `protobuf:"bytes,2,opt,name=resolvedPath" json:"resolvedPath,omitempty"`
	Access       uint32 `protobuf:"varint,3,opt,name=access" json:"access,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *WireMount) Reset()         { *m = WireMount{} }
func (m *WireMount) String() string { return proto.CompactTextString(m) }
func (*WireMount) ProtoMessage()    {}
func (m *WireMount) XXX_Unmarshal(b []byte) error { return xxx_messageInfo_WireMount.Unmarshal(m, b) }
func (m *WireMount) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_WireMount.Marshal(b, m, deterministic)
}
func (dst *WireMount) XXX_Merge(src proto.Message) { xxx_messageInfo_WireMount.Merge(dst, src) }
func (m *WireMount) XXX_Size() int                 { return xxx_messageInfo_WireMount.Size(m) }
func (m *WireMount) XXX_DiscardUnknown()           { xxx_messageInfo_WireMount.DiscardUnknown(m) }

var xxx_messageInfo_WireMount proto.InternalMessageInfo

// WirePipGraph is the persisted form of a pipgraph.PipGraph: the serialized
// "PipGraph" file GraphCache writes into the engine cache and registers in
// the shared store (spec.md §6).
type WirePipGraph struct {
	Pips   []*WirePip   `protobuf:"bytes,1,rep,name=pips" json:"pips,omitempty"`
	Mounts []*WireMount `protobuf:"bytes,2,rep,name=mounts" json:"mounts,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *WirePipGraph) Reset()         { *m = WirePipGraph{} }
func (m *WirePipGraph) String() string { return proto.CompactTextString(m) }
func (*WirePipGraph) ProtoMessage()    {}
func (m *WirePipGraph) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_WirePipGraph.Unmarshal(m, b)
}
func (m *WirePipGraph) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_WirePipGraph.Marshal(b, m, deterministic)
}
func (dst *WirePipGraph) XXX_Merge(src proto.Message) { xxx_messageInfo_WirePipGraph.Merge(dst, src) }
func (m *WirePipGraph) XXX_Size() int                 { return xxx_messageInfo_WirePipGraph.Size(m) }
func (m *WirePipGraph) XXX_DiscardUnknown()           { xxx_messageInfo_WirePipGraph.DiscardUnknown(m) }

var xxx_messageInfo_WirePipGraph proto.InternalMessageInfo

func init() {
	proto.RegisterType((*WireEnvironmentVariable)(nil), "pipforge.WireEnvironmentVariable")
	proto.RegisterType((*WireFileDependency)(nil), "pipforge.WireFileDependency")
	proto.RegisterType((*WireSealedDirectory)(nil), "pipforge.WireSealedDirectory")
	proto.RegisterType((*WirePip)(nil), "pipforge.WirePip")
	proto.RegisterType((*WireMount)(nil), "pipforge.WireMount")
	proto.RegisterType((*WirePipGraph)(nil), "pipforge.WirePipGraph")
}
