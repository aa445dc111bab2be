// Package cmd implements the command-line interface of dPortable. It provides
// commands to encode documents, to inspect encoded data and to measure the
// encoder.
//
// The package is organized into several subpackages:
//
//   - codec: Commands converting JSON documents to framed portable data (encode)
//     and printing the structure of such data (inspect)
//   - bench: Performance test encoding a cyclic object graph and protocol messages
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// All flags can also be set as environment variables with the prefix DPORTABLE_
// (e.g. DPORTABLE_LOG_LEVEL=debug), .env and .env.local files are loaded on startup.
//
// See dportable -help for a list of all commands.
package cmd
