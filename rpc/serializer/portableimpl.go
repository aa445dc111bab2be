package serializer

import (
	"fmt"
	"github.com/ValentinKolb/dPortable/lib/portable"
	"github.com/ValentinKolb/dPortable/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
	"reflect"
)

var Logger = logger.GetLogger("rpc")

// MessageTypeName is the portable type name under which common.Message is registered
const MessageTypeName = "dportable.Message"

// Field names of the message record
const (
	fieldMsgType  = "msgType"
	fieldKey      = "key"
	fieldExpireIn = "expireIn"
	fieldDeleteIn = "deleteIn"
	fieldValue    = "value"
	fieldOk       = "ok"
	fieldErr      = "err"
)

// RegisterMessage registers common.Message as a user type with the given registry
func RegisterMessage(r *portable.TypeRegistry) (*portable.TypeDescriptor, error) {
	return r.Register(&common.Message{}, portable.TypeConfig{
		TypeName:   MessageTypeName,
		Serializer: portable.PortableSerializerFunc(writeMessage),
	})
}

// NewPortableSerializer creates a new serializer that encodes messages as
// portable records, readable by clients in other languages
func NewPortableSerializer() IRPCSerializer {
	r := portable.NewTypeRegistry(nil)
	if _, err := RegisterMessage(r); err != nil {
		// the registry is empty, this can't fail
		panic(err)
	}
	s, _ := NewPortableSerializerWith(portable.NewMarshaller(r, portable.Config{}))
	return s
}

// NewPortableSerializerWith creates a portable serializer on top of an existing
// marshaller, whose registry must contain common.Message (see RegisterMessage)
func NewPortableSerializerWith(m *portable.Marshaller) (IRPCSerializer, error) {
	desc, ok := m.Registry().Lookup(reflect.TypeOf(&common.Message{}))
	if !ok {
		return nil, fmt.Errorf("message type is not registered")
	}
	Logger.Debugf("portable serializer uses type id %d for %s", desc.TypeID, desc.TypeName)
	return &portableSerializerImpl{marshaller: m, desc: desc}, nil
}

// portableSerializerImpl implements IRPCSerializer using the portable format
type portableSerializerImpl struct {
	marshaller *portable.Marshaller
	desc       *portable.TypeDescriptor
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (p *portableSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	return p.marshaller.Marshal(&msg)
}

func (p *portableSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	rec, err := portable.ReadRecord(b, 0)
	if err != nil {
		return err
	}
	if rec.TypeID != p.desc.TypeID {
		return fmt.Errorf("expected record of type %d, got %d", p.desc.TypeID, rec.TypeID)
	}

	r, err := portable.NewRecordReader(rec, p.desc.IdResolver)
	if err != nil {
		return err
	}

	var result common.Message

	msgType, err := r.Byte(fieldMsgType)
	if err != nil {
		return err
	}
	result.MsgType = common.MessageType(msgType)

	if result.Key, err = r.String(fieldKey); err != nil {
		return err
	}

	expireIn, err := r.Int64(fieldExpireIn)
	if err != nil {
		return err
	}
	result.ExpireIn = uint64(expireIn)

	deleteIn, err := r.Int64(fieldDeleteIn)
	if err != nil {
		return err
	}
	result.DeleteIn = uint64(deleteIn)

	if result.Value, err = r.Bytes(fieldValue); err != nil {
		return err
	}
	if result.Ok, err = r.Bool(fieldOk); err != nil {
		return err
	}
	if result.Err, err = r.String(fieldErr); err != nil {
		return err
	}

	if rec.HasRaw() {
		if result.Meta, err = r.Raw().ReadBytes(); err != nil {
			return fmt.Errorf("failed to read meta: %w", err)
		}
	}

	*msg = result
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// writeMessage writes the fields of a message. Only present fields are
// written, absent fields are read back as zero values. Meta is opaque to
// the record and goes into the raw section.
func writeMessage(obj interface{}, w portable.IPortableWriter) error {
	msg := obj.(*common.Message)

	if err := w.WriteByte(fieldMsgType, byte(msg.MsgType)); err != nil {
		return err
	}
	if msg.Key != "" {
		if err := w.WriteString(fieldKey, msg.Key); err != nil {
			return err
		}
	}
	if msg.ExpireIn != 0 {
		if err := w.WriteInt64(fieldExpireIn, int64(msg.ExpireIn)); err != nil {
			return err
		}
	}
	if msg.DeleteIn != 0 {
		if err := w.WriteInt64(fieldDeleteIn, int64(msg.DeleteIn)); err != nil {
			return err
		}
	}
	if msg.Value != nil {
		if err := w.WriteBytes(fieldValue, msg.Value); err != nil {
			return err
		}
	}
	if msg.Ok {
		if err := w.WriteBool(fieldOk, msg.Ok); err != nil {
			return err
		}
	}
	if msg.Err != "" {
		if err := w.WriteString(fieldErr, msg.Err); err != nil {
			return err
		}
	}

	if msg.Meta != nil {
		return w.RawWriter().WriteBytes(msg.Meta)
	}
	return nil
}
