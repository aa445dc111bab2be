// Package portable implements the write side of a portable, self-describing
// binary object format. Object graphs are encoded into a seekable in-memory
// stream so that the resulting bytes can be read by clients written in other
// languages without sharing any Go type information.
//
// The package focuses on:
//   - Encoding arbitrary object graphs, including shared instances and cycles
//   - Writing well-known values in a compact form without per-object overhead
//   - Producing records whose length and raw offset can be used to skip them
//   - Keeping all per-operation state local, so encoders run concurrently
//
// Encoding Dispatch:
//
//	Every value passes through the same dispatch, the first match wins:
//
//	  1. nil (or a typed nil) is written as the single byte HdrNull
//	  2. well-known types (numbers, bool, string, uuid.UUID, time.Time, their
//	     slices, []interface{} and map[string]interface{}) use a fast path
//	     encoding of the form [type code][payload]
//	  3. an instance that was already written in the same operation becomes a
//	     back-reference [HdrHandle][int32 distance]
//	  4. everything else is written as a full record using the descriptor
//	     registered for its Go type
//
// Full Record Layout:
//
//	[1] HdrFull
//	[1] user type flag
//	[4] type id
//	[4] hash code (externally supplied, 0 if none)
//	[4] total length, including this header
//	[4] raw offset, relative to the record start (== length if no raw section)
//	[.] named fields: [int32 field id][int32 value length][value]
//	[.] raw section: untyped positional values
//
//	All integers are little endian. The two length slots are unknown while
//	the body is written, they are skipped and patched afterwards.
//
// Back-References:
//
//	Instances are tracked by identity (pointer, map, slice, ...), never by
//	value. A back-reference stores the distance between the position right
//	after its tag byte and the start of the referenced record. An instance is
//	registered before its fields are written, so cycles terminate.
//	Object arrays and maps have no record header to refer to, a collection
//	that contains itself fails with ErrCyclicCollection. Pointers to
//	zero-size values have no identity.
//
// Errors:
//
//	A value that fails to encode is rolled back. Its bytes, its field header
//	and the handles registered while writing it are discarded, so a
//	serializer that handles the error of a nested value can keep writing.
//
// Key Components:
//
//   - TypeRegistry: Maps Go types to TypeDescriptors (type id, id resolver,
//     serializer callback). Built once and shared; lookups are lock free.
//
//   - Marshaller: Runs encode operations on pooled streams and records
//     VictoriaMetrics counters and histograms about them.
//
//   - IPortableWriter / IPortableRawWriter: The facade handed to serializer
//     callbacks for writing named fields and the trailing raw section.
//
//   - Stream: A growable byte buffer with absolute seeking and an optional
//     size limit.
//
//   - ReadValue, ReadRecord, RecordReader, Dump: A small inspector used to
//     verify and debug encoded data. It does not reconstruct Go objects.
//
// Thread Safety:
//
//	A TypeRegistry and a Marshaller are safe for concurrent use. Each encode
//	operation uses its own write context, handle table and stream.
//
// Usage:
//
//	registry := portable.NewTypeRegistry(nil)
//	registry.MustRegister(&Node{}, portable.TypeConfig{
//		Serializer: portable.PortableSerializerFunc(func(obj interface{}, w portable.IPortableWriter) error {
//			n := obj.(*Node)
//			if err := w.WriteString("name", n.Name); err != nil {
//				return err
//			}
//			return w.WriteObject("next", n.Next)
//		}),
//	})
//
//	m := portable.NewMarshaller(registry, portable.Config{})
//	data, err := m.Marshal(root)
package portable
