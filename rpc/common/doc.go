// Package common provides the data structures shared by the codec commands
// and the RPC serializer: the client/cluster message envelope, the codec
// configuration and the logging setup.
//
// The package focuses on:
//   - Message protocol definition for client and cluster communication
//   - Configuration of the portable encoder
//   - Custom logging implementation integrated with the Dragonboat logger package
//
// Key Components:
//
//   - Message: Envelope for all requests and responses, with a flexible
//     structure that adapts to different operation types. Includes factory
//     methods for the most common requests and responses.
//
//   - MessageType: Enumeration of all supported operation types, categorized
//     into store operations, lock operations and control messages.
//
//   - CodecConfig: Buffer sizes, message size limit, log level and metrics
//     settings. Converts to a portable.Config.
//
//   - Logger: Custom logging implementation that plugs into Dragonboat's
//     logger factory and provides consistent formatting across the packages.
package common
