package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	_ "github.com/reoring/idxcodec/codec"
	_ "github.com/reoring/idxcodec/wire/cbor"
	_ "github.com/reoring/idxcodec/wire/json"
	_ "github.com/reoring/idxcodec/wire/msgpack"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
)

// app is the state shared by all subcommands of one invocation.
type app struct {
	v   *viper.Viper
	cfg Config
	log *zap.Logger
	in  io.Reader
	out io.Writer
}

func main() {
	root := newRootCmd(os.Stdin, os.Stdout)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop(), in: in, out: out}
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "idxcodec",
		Short: "Inspect and convert integer-keyed records",
		Long: `idxcodec encodes records described by a YAML schema file as maps keyed by
small integers (CBOR, MessagePack or JSON), and converts them back.`,
		Version:       Version + " (" + GitCommit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(a.v, configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = newLogger(cfg.Verbose)
			a.log.Debug("config loaded",
				zap.String("format", cfg.Format),
				zap.String("unknown", cfg.Unknown),
				zap.String("output", cfg.Output),
				zap.String("file", a.v.ConfigFileUsed()))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default ./idxcodec.yaml)")
	pf.String("format", defaultFormat, "wire format: cbor, msgpack or json")
	pf.String("unknown", defaultUnknown, "unknown-key policy: skip or strict")
	pf.BoolP("verbose", "v", false, "enable debug logging")
	pf.StringP("output", "o", "", "write output to this file instead of stdout")
	for _, key := range []string{"format", "unknown", "verbose", "output"} {
		_ = a.v.BindPFlag(key, pf.Lookup(key))
	}

	// Add subcommands
	rootCmd.AddCommand(newCheckCmd(a))
	rootCmd.AddCommand(newEncodeCmd(a))
	rootCmd.AddCommand(newDecodeCmd(a))
	rootCmd.AddCommand(newDiagCmd(a))
	rootCmd.AddCommand(newGenCmd(a))
	return rootCmd
}

func newLogger(verbose bool) *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if verbose {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return log
}
