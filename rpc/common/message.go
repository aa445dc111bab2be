package common

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message is the envelope exchanged between clients and cluster nodes.
// It is encoded as one portable record, see serializer.NewPortableSerializer.
// Which fields are set depends on the type of message.
type Message struct {
	MsgType MessageType

	Key      string // target key of store and lock operations
	ExpireIn uint64 // time to live of a value in milliseconds
	DeleteIn uint64 // time until a value or lock is removed in milliseconds
	Value    []byte

	// Response only fields
	Ok  bool
	Err string // empty on success

	// Meta carries opaque adapter data, it is written to the raw section of the record
	Meta []byte
}

// String returns a short description of the message for logging
func (m *Message) String() string {
	var sb strings.Builder
	sb.WriteString(m.MsgType.String())
	if m.Key != "" {
		sb.WriteString(fmt.Sprintf(" key=%q", m.Key))
	}
	if len(m.Value) > 0 {
		sb.WriteString(fmt.Sprintf(" value=%dB", len(m.Value)))
	}
	if m.ExpireIn > 0 || m.DeleteIn > 0 {
		sb.WriteString(fmt.Sprintf(" expireIn=%d deleteIn=%d", m.ExpireIn, m.DeleteIn))
	}
	if m.Ok {
		sb.WriteString(" ok")
	}
	if m.Err != "" {
		sb.WriteString(fmt.Sprintf(" err=%q", m.Err))
	}
	if len(m.Meta) > 0 {
		sb.WriteString(fmt.Sprintf(" meta=%dB", len(m.Meta)))
	}
	return sb.String()
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewSetERequest creates a request storing value under key with expiration settings
func NewSetERequest(key string, value []byte, expireIn, deleteIn uint64) *Message {
	return &Message{
		MsgType:  MsgTKVSetE,
		Key:      key,
		Value:    value,
		ExpireIn: expireIn,
		DeleteIn: deleteIn,
	}
}

// NewGetRequest creates a request reading the value of key
func NewGetRequest(key string) *Message {
	return &Message{
		MsgType: MsgTKVGet,
		Key:     key,
	}
}

// NewGetResponse creates the response to a get request
func NewGetResponse(value []byte, ok bool, err error) *Message {
	return withErr(&Message{
		MsgType: MsgTKVGet,
		Ok:      ok,
		Value:   value,
	}, err)
}

// NewAcquireRequest creates a request acquiring the lock key
func NewAcquireRequest(key string, deleteIn uint64) *Message {
	return &Message{
		MsgType:  MsgTLCKAcquire,
		Key:      key,
		DeleteIn: deleteIn,
	}
}

// NewCustomRequest creates a request that only carries adapter data
func NewCustomRequest(meta []byte) *Message {
	return &Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}
}

// NewErrorResponse creates a response that only reports an error
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

func withErr(msg *Message, err error) *Message {
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTKVSet:
		return "set"
	case MsgTKVSetE:
		return "setE"
	case MsgTKVSetEIfUnset:
		return "setEIfUnset"
	case MsgTKVExpire:
		return "expire"
	case MsgTKVDelete:
		return "delete"
	case MsgTKVGet:
		return "get"
	case MsgTKVHas:
		return "has"
	case MsgTLCKAcquire:
		return "acquire"
	case MsgTLCKRelease:
		return "release"
	case MsgTCustom:
		return "custom"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// ParseMessageType converts the string representation of a MessageType back to its value
func ParseMessageType(s string) (MessageType, error) {
	for t := MsgTUnknown; t <= MsgTCustom; t++ {
		if strings.EqualFold(t.String(), s) {
			return t, nil
		}
	}
	return MsgTUnknown, fmt.Errorf("unknown message type: %s", s)
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// Store operations

	MsgTKVSet         // Set a key-value pair
	MsgTKVSetE        // Set a key-value pair with expiration
	MsgTKVSetEIfUnset // Set a key-value pair if not already set
	MsgTKVExpire      // Expire a key
	MsgTKVDelete      // Delete a key-value pair
	MsgTKVGet         // Get a value by key
	MsgTKVHas         // Check if a key exists

	// Lock operations

	MsgTLCKAcquire // Acquire a lock
	MsgTLCKRelease // Release a lock

	// Custom operations

	MsgTCustom // Custom operation type
)
