package msgs

import (
	"github.com/golang/protobuf/proto"
)

// CommandOK is the generic reply indicating success for commands.
type CommandOK struct {
}

// NewMessage implements Message.
func (m *CommandOK) NewMessage() Message { return &CommandOK{} }

// TypeID implements Message.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// ProtoMessage implements proto.Message.
func (m *CommandOK) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandOK) Reset() { *m = CommandOK{} }

// String implements proto.Message.
func (m *CommandOK) String() string { return proto.CompactTextString(m) }

// CommandErr is the generic reply representing a command error.
type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return &CommandErr{Message: err.Error()}
}

// NewMessage implements Message.
func (m *CommandErr) NewMessage() Message { return &CommandErr{} }

// TypeID implements Message.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// ProtoMessage implements proto.Message.
func (m *CommandErr) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandErr) Reset() { *m = CommandErr{} }

// String implements proto.Message.
func (m *CommandErr) String() string { return proto.CompactTextString(m) }

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }

// PacketEvent reports a received packet. Result follows alpharx.Result.
type PacketEvent struct {
	Label     uint32 `protobuf:"varint,1,opt,name=label,proto3" json:"label"`
	Value     uint32 `protobuf:"varint,2,opt,name=value,proto3" json:"value"`
	Result    uint32 `protobuf:"varint,3,opt,name=result,proto3" json:"result"`
	Timestamp int64  `protobuf:"varint,4,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

// NewMessage implements Message.
func (m *PacketEvent) NewMessage() Message { return &PacketEvent{} }

// TypeID implements Message.
func (m *PacketEvent) TypeID() uint32 { return PacketEventTypeID }

// ProtoMessage implements proto.Message.
func (m *PacketEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *PacketEvent) Reset() { *m = PacketEvent{} }

// String implements proto.Message.
func (m *PacketEvent) String() string { return proto.CompactTextString(m) }

// StatusEvent reports the status word.
type StatusEvent struct {
	Word      uint32 `protobuf:"varint,1,opt,name=word,proto3" json:"word"`
	Timestamp int64  `protobuf:"varint,2,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

// NewMessage implements Message.
func (m *StatusEvent) NewMessage() Message { return &StatusEvent{} }

// TypeID implements Message.
func (m *StatusEvent) TypeID() uint32 { return StatusEventTypeID }

// ProtoMessage implements proto.Message.
func (m *StatusEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StatusEvent) Reset() { *m = StatusEvent{} }

// String implements proto.Message.
func (m *StatusEvent) String() string { return proto.CompactTextString(m) }

// SendCommand writes a raw command frame.
type SendCommand struct {
	Cmd1 uint32 `protobuf:"varint,1,opt,name=cmd1,proto3" json:"cmd1"`
	Cmd2 uint32 `protobuf:"varint,2,opt,name=cmd2,proto3" json:"cmd2"`
}

// NewMessage implements Message.
func (m *SendCommand) NewMessage() Message { return &SendCommand{} }

// TypeID implements Message.
func (m *SendCommand) TypeID() uint32 { return SendCommandTypeID }

// ProtoMessage implements proto.Message.
func (m *SendCommand) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SendCommand) Reset() { *m = SendCommand{} }

// String implements proto.Message.
func (m *SendCommand) String() string { return proto.CompactTextString(m) }

// InitDefaults replays the configuration table.
type InitDefaults struct {
}

// NewMessage implements Message.
func (m *InitDefaults) NewMessage() Message { return &InitDefaults{} }

// TypeID implements Message.
func (m *InitDefaults) TypeID() uint32 { return InitDefaultsTypeID }

// ProtoMessage implements proto.Message.
func (m *InitDefaults) ProtoMessage() {}

// Reset implements proto.Message.
func (m *InitDefaults) Reset() { *m = InitDefaults{} }

// String implements proto.Message.
func (m *InitDefaults) String() string { return proto.CompactTextString(m) }

// StatusQuery reads the status word, replied with StatusEvent.
type StatusQuery struct {
}

// NewMessage implements Message.
func (m *StatusQuery) NewMessage() Message { return &StatusQuery{} }

// TypeID implements Message.
func (m *StatusQuery) TypeID() uint32 { return StatusQueryTypeID }

// ProtoMessage implements proto.Message.
func (m *StatusQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StatusQuery) Reset() { *m = StatusQuery{} }

// String implements proto.Message.
func (m *StatusQuery) String() string { return proto.CompactTextString(m) }

// StatusReply is the response for StatusQuery.
type StatusReply struct {
	Status *StatusEvent `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

// NewMessage implements Message.
func (m *StatusReply) NewMessage() Message { return &StatusReply{} }

// TypeID implements Message.
func (m *StatusReply) TypeID() uint32 { return StatusReplyTypeID }

// ProtoMessage implements proto.Message.
func (m *StatusReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StatusReply) Reset() { *m = StatusReply{} }

// String implements proto.Message.
func (m *StatusReply) String() string { return proto.CompactTextString(m) }

// TypeID Groups
const (
	GroupCommand uint32 = 0x00000000
	GroupRx      uint32 = 0x00030000
)

// TypeIDs
const (
	CommandOKTypeID    uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID   uint32 = GroupCommand | TypeIDMaskReply | 0x0001
	PacketEventTypeID  uint32 = GroupRx | TypeIDKindEvent | 0x0000
	StatusEventTypeID  uint32 = GroupRx | TypeIDKindEvent | 0x0001
	SendCommandTypeID  uint32 = GroupRx | 0x0000
	InitDefaultsTypeID uint32 = GroupRx | 0x0001
	StatusQueryTypeID  uint32 = GroupRx | 0x0002
	StatusReplyTypeID  uint32 = StatusQueryTypeID | TypeIDMaskReply
)

// MessageTypes are predefined mapping of type ID to messages.
var MessageTypes = map[uint32]Message{
	CommandOKTypeID:    (*CommandOK)(nil),
	CommandErrTypeID:   (*CommandErr)(nil),
	PacketEventTypeID:  (*PacketEvent)(nil),
	StatusEventTypeID:  (*StatusEvent)(nil),
	SendCommandTypeID:  (*SendCommand)(nil),
	InitDefaultsTypeID: (*InitDefaults)(nil),
	StatusQueryTypeID:  (*StatusQuery)(nil),
	StatusReplyTypeID:  (*StatusReply)(nil),
}
