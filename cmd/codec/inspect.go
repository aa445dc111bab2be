package codec

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dPortable/cmd/util"
	"github.com/ValentinKolb/dPortable/lib/portable"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"io"
	"os"
)

var (
	inspectInput string

	// InspectCmd prints the structure of framed portable data
	InspectCmd = &cobra.Command{
		Use:   "inspect",
		Short: "Print the structure of portable frames",
		Long: `Print every frame of a file written by encode as a tree of records, fields,
back-references and raw sections.`,
		PreRunE: processInspectConfig,
		RunE:    runInspect,
	}
)

func init() {
	key := "input"
	InspectCmd.Flags().String(key, "-", util.WrapString("Path of the framed portable data (- for stdin)"))
}

func processInspectConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	inspectInput = viper.GetString("input")
	return nil
}

func runInspect(_ *cobra.Command, _ []string) error {
	in, err := openInput(inspectInput)
	if err != nil {
		return err
	}
	defer in.Close()

	frames, err := inspectFrames(in, os.Stdout)
	if err != nil {
		return err
	}
	Logger.Infof("inspected %d frames of %s", frames, inspectInput)
	return nil
}

// inspectFrames dumps all frames of r to w and returns the number of frames
func inspectFrames(r io.Reader, w io.Writer) (int, error) {
	var buf []byte
	for i := 0; ; i++ {
		frame, err := portable.ReadFrame(r, buf)
		if errors.Is(err, io.EOF) {
			return i, nil
		}
		if err != nil {
			return i, fmt.Errorf("frame %d: %w", i, err)
		}
		buf = frame

		if _, err := fmt.Fprintf(w, "frame %d (%d bytes)\n", i, len(frame)); err != nil {
			return i, err
		}
		if err := portable.Dump(w, frame); err != nil {
			return i, fmt.Errorf("frame %d: %w", i, err)
		}
	}
}
