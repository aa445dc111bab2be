// Package rpc contains the message layer shared by clients and the cluster.
// Messages are encoded in the portable binary format so that clients in
// other languages can read and write them.
//
// The package is organized into two subpackages:
//
//   - common: Core data structures and utilities used across the message layer,
//     including the Message envelope, codec configuration, and logging.
//
//   - serializer: Message serialization on top of lib/portable for converting
//     between Message objects and byte arrays.
package rpc
