package util

import (
	"fmt"
	"github.com/ValentinKolb/dPortable/lib/portable"
	"github.com/ValentinKolb/dPortable/rpc/common"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupCodecFlags adds the encoder and logging flags to a command
func SetupCodecFlags(cmd *cobra.Command) {
	key := "initial-buffer"
	cmd.PersistentFlags().Int(key, 4, WrapString("The initial size of the pooled encode buffers (in KB)"))

	key = "max-message"
	cmd.PersistentFlags().Int(key, 0, WrapString("The maximum size of one encoded message (in KB, 0 = unbounded)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("dportable")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetCodecConfig reads the codec configuration from viper
func GetCodecConfig() *common.CodecConfig {
	return &common.CodecConfig{
		InitialBufferKB: viper.GetInt("initial-buffer"),
		MaxMessageKB:    viper.GetInt("max-message"),
		LogLevel:        viper.GetString("log-level"),
		Metrics:         viper.GetBool("metrics"),
	}
}

// NewMarshaller creates a marshaller from the codec configuration.
// Every register function is called with the new type registry first.
func NewMarshaller(config *common.CodecConfig, register ...func(r *portable.TypeRegistry) error) (*portable.Marshaller, error) {
	if config.InitialBufferKB < 0 || config.MaxMessageKB < 0 {
		return nil, fmt.Errorf("buffer sizes must not be negative")
	}

	registry := portable.NewTypeRegistry(nil)
	for _, fn := range register {
		if err := fn(registry); err != nil {
			return nil, err
		}
	}
	return portable.NewMarshaller(registry, config.ToPortableConfig()), nil
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
