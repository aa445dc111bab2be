package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ValentinKolb/dPortable/cmd/util"
	"github.com/ValentinKolb/dPortable/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var Logger = logger.GetLogger("cmd")

var (
	encodeConfig = &common.CodecConfig{}
	encodeInput  string
	encodeOutput string

	// EncodeCmd converts JSON documents to framed portable data
	EncodeCmd = &cobra.Command{
		Use:   "encode",
		Short: "Encode JSON documents in the portable format",
		Long: `Encode every JSON value of the input as one length prefixed portable frame.
Objects become maps, arrays become object arrays, integral numbers are written as long
and all other numbers as double. The configuration can be set via command line flags
or environment variables in the format DPORTABLE_<flag> (e.g. DPORTABLE_MAX_MESSAGE=64)`,
		PreRunE: processEncodeConfig,
		RunE:    runEncode,
	}
)

func init() {
	key := "input"
	EncodeCmd.Flags().String(key, "-", util.WrapString("Path of the JSON input (- for stdin). The input may contain several JSON values"))

	key = "output"
	EncodeCmd.Flags().String(key, "", util.WrapString("Path of the output file (default: the input path with extension .bin, or out.bin for stdin)"))

	key = "metrics"
	EncodeCmd.Flags().Bool(key, false, util.WrapString("Print the encoder metrics in Prometheus text format after encoding"))
}

// processEncodeConfig reads the configuration from the command line flags and environment variables
func processEncodeConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	encodeConfig = util.GetCodecConfig()
	encodeInput = viper.GetString("input")
	encodeOutput = viper.GetString("output")

	if encodeOutput == "" {
		encodeOutput = defaultOutputPath(encodeInput)
	}
	if encodeOutput == encodeInput {
		return fmt.Errorf("output %s would overwrite the input", encodeOutput)
	}
	return nil
}

func runEncode(_ *cobra.Command, _ []string) error {
	m, err := util.NewMarshaller(encodeConfig)
	if err != nil {
		return err
	}

	in, err := openInput(encodeInput)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(encodeOutput)
	if err != nil {
		return fmt.Errorf("failed to create output: %v", err)
	}
	defer out.Close()

	start := time.Now()
	frames, written, err := encodeDocuments(in, out, m.MarshalTo)
	if err != nil {
		return err
	}

	Logger.Infof("encoded %d documents (%d bytes) to %s in %s", frames, written, encodeOutput, time.Since(start))
	fmt.Printf("%d documents, %d bytes written to %s\n", frames, written, encodeOutput)

	if encodeConfig.Metrics {
		fmt.Println()
		m.WriteMetrics(os.Stdout)
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// encodeDocuments decodes JSON values from r until EOF and writes each one as a frame to w
func encodeDocuments(r io.Reader, w io.Writer, marshalTo func(w io.Writer, obj interface{}) (int, error)) (frames int, written int, err error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	for {
		var doc interface{}
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return frames, written, nil
			}
			return frames, written, fmt.Errorf("document %d: invalid JSON: %v", frames, err)
		}

		value, err := fromJSON(doc)
		if err != nil {
			return frames, written, fmt.Errorf("document %d: %w", frames, err)
		}

		n, err := marshalTo(w, value)
		if err != nil {
			return frames, written, fmt.Errorf("document %d: %w", frames, err)
		}
		frames++
		written += n
	}
}

// fromJSON converts a value decoded with UseNumber to the types with a portable fast path
func fromJSON(v interface{}) (interface{}, error) {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %s: %v", v, err)
		}
		return f, nil
	case []interface{}:
		for i := range v {
			converted, err := fromJSON(v[i])
			if err != nil {
				return nil, err
			}
			v[i] = converted
		}
		return v, nil
	case map[string]interface{}:
		for k := range v {
			converted, err := fromJSON(v[k])
			if err != nil {
				return nil, err
			}
			v[k] = converted
		}
		return v, nil
	default:
		// string, bool and nil are written as they are
		return v, nil
	}
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %v", err)
	}
	return f, nil
}

func defaultOutputPath(input string) string {
	if input == "-" {
		return "out.bin"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".bin"
}
