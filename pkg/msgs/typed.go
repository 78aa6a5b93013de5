package msgs

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"
)

// TypeID masks
const (
	TypeIDMaskKind  uint32 = 0x80000000
	TypeIDMaskGroup uint32 = 0x7fff0000
	TypeIDMaskID    uint32 = 0x0000ffff
	TypeIDMaskReply uint32 = 0x00008000
)

// Message Kinds
const (
	TypeIDKindCommand uint32 = 0x00000000
	TypeIDKindEvent   uint32 = 0x80000000
)

// Message is a wire message.
type Message interface {
	proto.Message
	// NewMessage creates an empty message of the same type.
	NewMessage() Message
	// TypeID identifies the message type on the wire.
	TypeID() uint32
}

// Typed wraps a message with type information.
type Typed struct {
	TypeId   uint32 `protobuf:"varint,1,opt,name=type_id,proto3" json:"type_id,omitempty"`
	Sequence uint32 `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Message  []byte `protobuf:"bytes,3,opt,name=message,proto3" json:"message,omitempty"`
}

// ProtoMessage implements proto.Message.
func (p *Typed) ProtoMessage() {}

// Reset implements proto.Message.
func (p *Typed) Reset() { *p = Typed{} }

// String implements proto.Message.
func (p *Typed) String() string { return proto.CompactTextString(p) }

// ErrUnknownType indicates unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

var (
	// ErrNotSerializable indicates the message is not serializable.
	ErrNotSerializable = errors.New("not serializable message")
	// ErrUnsupportedCommand indicates the command is unsupported.
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// TypedFrom wraps a message into the envelope.
func TypedFrom(msg Message, seq uint32) (*Typed, error) {
	if msg == nil {
		return nil, ErrNotSerializable
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return &Typed{TypeId: msg.TypeID(), Sequence: seq, Message: data}, nil
}

// Encode wraps and encodes a message in one step.
func Encode(msg Message, seq uint32) ([]byte, error) {
	typed, err := TypedFrom(msg, seq)
	if err != nil {
		return nil, err
	}
	return typed.Encode()
}

// Decode decodes the payload into the actual message.
func (p *Typed) Decode() (Message, error) {
	msgType, ok := MessageTypes[p.TypeId]
	if !ok {
		return nil, &ErrUnknownType{TypeID: p.TypeId}
	}
	msg := msgType.NewMessage()
	if err := proto.Unmarshal(p.Message, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Encode encodes the envelope to bytes.
func (p *Typed) Encode() ([]byte, error) {
	return proto.Marshal(p)
}

// Kind gets message kind from type ID.
func (p *Typed) Kind() uint32 {
	return p.TypeId & TypeIDMaskKind
}

// IsCommand determines if the message is a command or a reply.
func (p *Typed) IsCommand() bool {
	return p.Kind() == TypeIDKindCommand
}

// IsEvent determines if the message is an event.
func (p *Typed) IsEvent() bool {
	return p.Kind() == TypeIDKindEvent
}

// IsReply determines if the message replies a command.
func (p *Typed) IsReply() bool {
	return p.IsCommand() && p.TypeId&TypeIDMaskReply != 0
}

// DecodeTyped decodes bytes into Typed.
func DecodeTyped(data []byte) (*Typed, error) {
	var typed Typed
	if err := proto.Unmarshal(data, &typed); err != nil {
		return nil, err
	}
	return &typed, nil
}

// CommandHandler executes commands and produces the reply.
type CommandHandler interface {
	HandleCommand(ctx context.Context, msg Message) (Message, error)
}

// CommandHandlerFunc is the func form of CommandHandler.
type CommandHandlerFunc func(ctx context.Context, msg Message) (Message, error)

// HandleCommand implements CommandHandler.
func (f CommandHandlerFunc) HandleCommand(ctx context.Context, msg Message) (Message, error) {
	return f(ctx, msg)
}

// ReplyTo decodes an encoded command, runs it through h and returns the
// encoded reply with the command's sequence. Failures to decode or
// execute the command become a CommandErr reply. Payloads which are not
// commands produce no reply.
func ReplyTo(ctx context.Context, h CommandHandler, payload []byte) ([]byte, error) {
	typed, err := DecodeTyped(payload)
	if err != nil {
		return nil, err
	}
	if !typed.IsCommand() || typed.IsReply() {
		return nil, nil
	}
	var reply Message
	msg, err := typed.Decode()
	if err == nil {
		reply, err = h.HandleCommand(ctx, msg)
	}
	if err != nil {
		reply = NewCommandErr(err)
	} else if reply == nil {
		reply = &CommandOK{}
	}
	return Encode(reply, typed.Sequence)
}
