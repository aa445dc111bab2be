package common

import (
	"fmt"
	"github.com/ValentinKolb/dPortable/lib/portable"
	"strings"
)

// --------------------------------------------------------------------------
// Codec configuration struct
// --------------------------------------------------------------------------

// CodecConfig holds the settings shared by the encode, inspect and bench commands
type CodecConfig struct {
	// InitialBufferKB is the initial capacity of pooled encode buffers
	InitialBufferKB int
	// MaxMessageKB limits the size of one encoded message (0 = unbounded)
	MaxMessageKB int

	// Logging configuration
	LogLevel string

	// Metrics enables printing the encoder metrics after a command
	Metrics bool
}

// ToPortableConfig converts the CodecConfig to the configuration of a portable.Marshaller
func (c *CodecConfig) ToPortableConfig() portable.Config {
	return portable.Config{
		InitialBufferSize: c.InitialBufferKB * 1024,
		MaxMessageSize:    c.MaxMessageKB * 1024,
	}
}

// String returns a formatted string representation of the configuration
func (c *CodecConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Encoder settings
	addSection("Encoder")
	addField("Initial Buffer", fmt.Sprintf("%d KB", c.InitialBufferKB))
	if c.MaxMessageKB > 0 {
		addField("Max Message Size", fmt.Sprintf("%d KB", c.MaxMessageKB))
	} else {
		addField("Max Message Size", "unbounded")
	}
	addField("Metrics", fmt.Sprintf("%t", c.Metrics))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
