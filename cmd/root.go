package cmd

import (
	"fmt"
	"github.com/ValentinKolb/dPortable/cmd/bench"
	"github.com/ValentinKolb/dPortable/cmd/codec"
	"github.com/ValentinKolb/dPortable/cmd/util"
	"github.com/ValentinKolb/dPortable/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dportable",
		Short: "portable binary object encoder",
		Long: fmt.Sprintf(`dPortable (v%s)

An encoder for a portable, self-describing binary object format written in Go.
Object graphs with shared instances and cycles are written as records with
back-references, readable by clients written in other languages.`, Version),
		PersistentPreRunE: setupLogging,
		SilenceUsage:      true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dPortable",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dPortable v%s\n", Version)
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(codec.EncodeCmd)
	RootCmd.AddCommand(codec.InspectCmd)
	RootCmd.AddCommand(bench.BenchCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupCodecFlags(RootCmd)
}

// setupLogging binds the persistent flags and configures the package loggers
func setupLogging(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	return common.InitLoggers(viper.GetString("log-level"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
