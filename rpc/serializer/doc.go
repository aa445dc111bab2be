// Package serializer provides message serialization for the client/cluster
// protocol. It defines a common interface and an implementation that encodes
// messages in the portable binary format, so that clients written in other
// languages can produce and consume the same bytes.
//
// The package focuses on:
//   - Providing a consistent interface for message serialization
//   - Encoding the message envelope as a self-describing portable record
//   - Writing only the fields that are present in a message
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations must satisfy.
//
//   - portableSerializerImpl: Registers common.Message as the user type
//     "dportable.Message" and writes it with a portable.Marshaller. Present fields
//     are written as named fields (msgType, key, expireIn, deleteIn, value, ok,
//     err), Meta is opaque adapter data and goes into the raw section of the
//     record. Deserialize reads the record back with a portable.RecordReader.
//
// Thread Safety:
//
//	The portable serializer is safe for concurrent use across multiple
//	goroutines without additional synchronization, every call uses its own
//	write context.
//
// Usage:
//
//	Serializers are typically created once and reused throughout the application:
//
//	  serializer := serializer.NewPortableSerializer()
//	  data, err := serializer.Serialize(message)
//	  // ... send data ...
//	  var receivedMsg common.Message
//	  err = serializer.Deserialize(receivedData, &receivedMsg)
//
//	To share metrics with other encoders, register the message type with an
//	existing registry and use NewPortableSerializerWith.
package serializer
