package wireproto

import (
	proto "github.com/golang/protobuf/proto"
)

// Attach is sent by the orchestrator to a newly-connected worker, announcing
// the graph it has published and the configuration digest the worker must
// match (spec.md §6).
type Attach struct {
	OrchestratorInfo string `protobuf:"bytes,1,opt,name=orchestratorInfo" json:"orchestratorInfo,omitempty"`
	GraphDescriptor  []byte `protobuf:"bytes,2,opt,name=graphDescriptor,proto3" json:"graphDescriptor,omitempty"`
	ConfigDigest     []byte `protobuf:"bytes,3,opt,name=configDigest,proto3" json:"configDigest,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *Attach) Reset()         { *m = Attach{} }
func (m *Attach) String() string { return proto.CompactTextString(m) }
func (*Attach) ProtoMessage()    {}
func (m *Attach) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_Attach.Unmarshal(m, b)
}
func (m *Attach) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_Attach.Marshal(b, m, deterministic)
}
func (dst *Attach) XXX_Merge(src proto.Message) { xxx_messageInfo_Attach.Merge(dst, src) }
func (m *Attach) XXX_Size() int                 { return xxx_messageInfo_Attach.Size(m) }
func (m *Attach) XXX_DiscardUnknown()           { xxx_messageInfo_Attach.DiscardUnknown(m) }

var xxx_messageInfo_Attach proto.InternalMessageInfo

// ExecutePip dispatches a single pip to a worker. Seq is monotonically
// increasing per (orchestrator, worker) pair; the worker's PipResult echoes
// it so that late replies from a previously-failed dispatch attempt can be
// discarded (spec.md §4.7 protocol invariants).
type ExecutePip struct {
	Seq                    uint64 `protobuf:"varint,1,opt,name=seq" json:"seq,omitempty"`
	PipId                  string `protobuf:"bytes,2,opt,name=pipId" json:"pipId,omitempty"`
	InputsMaterializationPlan []byte `protobuf:"bytes,3,opt,name=inputsMaterializationPlan,proto3" json:"inputsMaterializationPlan,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *ExecutePip) Reset()         { *m = ExecutePip{} }
func (m *ExecutePip) String() string { return proto.CompactTextString(m) }
func (*ExecutePip) ProtoMessage()    {}
func (m *ExecutePip) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_ExecutePip.Unmarshal(m, b)
}
func (m *ExecutePip) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_ExecutePip.Marshal(b, m, deterministic)
}
func (dst *ExecutePip) XXX_Merge(src proto.Message) { xxx_messageInfo_ExecutePip.Merge(dst, src) }
func (m *ExecutePip) XXX_Size() int                 { return xxx_messageInfo_ExecutePip.Size(m) }
func (m *ExecutePip) XXX_DiscardUnknown()           { xxx_messageInfo_ExecutePip.DiscardUnknown(m) }

var xxx_messageInfo_ExecutePip proto.InternalMessageInfo

// PipResult is the worker's reply to an ExecutePip dispatch.
type PipResult struct {
	Seq     uint64   `protobuf:"varint,1,opt,name=seq" json:"seq,omitempty"`
	PipId   string   `protobuf:"bytes,2,opt,name=pipId" json:"pipId,omitempty"`
	Status  string   `protobuf:"bytes,3,opt,name=status" json:"status,omitempty"`
	Outputs []string `protobuf:"bytes,4,rep,name=outputs" json:"outputs,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *PipResult) Reset()         { *m = PipResult{} }
func (m *PipResult) String() string { return proto.CompactTextString(m) }
func (*PipResult) ProtoMessage()    {}
func (m *PipResult) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_PipResult.Unmarshal(m, b)
}
func (m *PipResult) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_PipResult.Marshal(b, m, deterministic)
}
func (dst *PipResult) XXX_Merge(src proto.Message) { xxx_messageInfo_PipResult.Merge(dst, src) }
func (m *PipResult) XXX_Size() int                 { return xxx_messageInfo_PipResult.Size(m) }
func (m *PipResult) XXX_DiscardUnknown()           { xxx_messageInfo_PipResult.DiscardUnknown(m) }

var xxx_messageInfo_PipResult proto.InternalMessageInfo

// Heartbeat is sent periodically by a worker to report load.
type Heartbeat struct {
	WorkerLoad uint32 `protobuf:"varint,1,opt,name=workerLoad" json:"workerLoad,omitempty"`
	QueueDepth uint32 `protobuf:"varint,2,opt,name=queueDepth" json:"queueDepth,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *Heartbeat) Reset()         { *m = Heartbeat{} }
func (m *Heartbeat) String() string { return proto.CompactTextString(m) }
func (*Heartbeat) ProtoMessage()    {}
func (m *Heartbeat) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_Heartbeat.Unmarshal(m, b)
}
func (m *Heartbeat) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_Heartbeat.Marshal(b, m, deterministic)
}
func (dst *Heartbeat) XXX_Merge(src proto.Message) { xxx_messageInfo_Heartbeat.Merge(dst, src) }
func (m *Heartbeat) XXX_Size() int                 { return xxx_messageInfo_Heartbeat.Size(m) }
func (m *Heartbeat) XXX_DiscardUnknown()           { xxx_messageInfo_Heartbeat.DiscardUnknown(m) }

var xxx_messageInfo_Heartbeat proto.InternalMessageInfo

// Bye is sent by either party to announce an orderly disconnect.
type Bye struct {
	Reason string `protobuf:"bytes,1,opt,name=reason" json:"reason,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *Bye) Reset()         { *m = Bye{} }
func (m *Bye) String() string { return proto.CompactTextString(m) }
func (*Bye) ProtoMessage()    {}
func (m *Bye) XXX_Unmarshal(b []byte) error { return xxx_messageInfo_Bye.Unmarshal(m, b) }
func (m *Bye) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_Bye.Marshal(b, m, deterministic)
}
func (dst *Bye) XXX_Merge(src proto.Message) { xxx_messageInfo_Bye.Merge(dst, src) }
func (m *Bye) XXX_Size() int                 { return xxx_messageInfo_Bye.Size(m) }
func (m *Bye) XXX_DiscardUnknown()           { xxx_messageInfo_Bye.DiscardUnknown(m) }

var xxx_messageInfo_Bye proto.InternalMessageInfo

// ControlMessage wraps exactly one of the control-connection message kinds.
// Framing a single stream with a tagged wrapper (rather than one message
// type per stream) lets Attach, ExecutePip, PipResult, and Heartbeat
// interleave freely on one yamux stream per worker, which is what lets
// ExecutePip dispatch run ahead of PipResult replies.
type ControlMessage struct {
	Attach     *Attach     `protobuf:"bytes,1,opt,name=attach" json:"attach,omitempty"`
	ExecutePip *ExecutePip `protobuf:"bytes,2,opt,name=executePip" json:"executePip,omitempty"`
	PipResult  *PipResult  `protobuf:"bytes,3,opt,name=pipResult" json:"pipResult,omitempty"`
	Heartbeat  *Heartbeat  `protobuf:"bytes,4,opt,name=heartbeat" json:"heartbeat,omitempty"`
	Bye        *Bye        `protobuf:"bytes,5,opt,name=bye" json:"bye,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *ControlMessage) Reset()         { *m = ControlMessage{} }
func (m *ControlMessage) String() string { return proto.CompactTextString(m) }
func (*ControlMessage) ProtoMessage()    {}
func (m *ControlMessage) XXX_Unmarshal(b []byte) error {
	return xxx_messageInfo_ControlMessage.Unmarshal(m, b)
}
func (m *ControlMessage) XXX_Marshal(b []byte, deterministic bool) ([]byte, error) {
	return xxx_messageInfo_ControlMessage.Marshal(b, m, deterministic)
}
func (dst *ControlMessage) XXX_Merge(src proto.Message) { xxx_messageInfo_ControlMessage.Merge(dst, src) }
func (m *ControlMessage) XXX_Size() int                 { return xxx_messageInfo_ControlMessage.Size(m) }
func (m *ControlMessage) XXX_DiscardUnknown()           { xxx_messageInfo_ControlMessage.DiscardUnknown(m) }

var xxx_messageInfo_ControlMessage proto.InternalMessageInfo

func init() {
	proto.RegisterType((*Attach)(nil), "pipforge.Attach")
	proto.RegisterType((*ExecutePip)(nil), "pipforge.ExecutePip")
	proto.RegisterType((*PipResult)(nil), "pipforge.PipResult")
	proto.RegisterType((*Heartbeat)(nil), "pipforge.Heartbeat")
	proto.RegisterType((*Bye)(nil), "pipforge.Bye")
	proto.RegisterType((*ControlMessage)(nil), "pipforge.ControlMessage")
}
