package main

import (
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/rbozan/lsp-translations/internal/server"
)

// Version will be set during the build process using ldflags
var Version = "(dev) v0.0.0"

var log = commonlog.GetLogger("lsp-translations")

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logfile string
	var verbose int

	cmd := &cobra.Command{
		Use:     "lsp-translations",
		Short:   "Language server for translation keys",
		Long:    "Completes translation keys in source files and shows their translations on hover.",
		Version: Version,
		Args:    cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// stdout is the protocol channel, so the default is stderr
			var path *string
			if logfile != "" {
				path = &logfile
			}
			commonlog.Configure(1+verbose, path)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
	cmd.PersistentFlags().StringVar(&logfile, "logfile", "", "Path to log file")
	cmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "Log more, repeat for debug output")

	cmd.AddCommand(indexCmd())
	return cmd
}

func runServer() error {
	log.Infof("starting lsp-translations %s on %d cores", Version, runtime.GOMAXPROCS(0))

	ls, err := server.NewServer(Version)
	if err != nil {
		log.Errorf("failed to create server: %v", err)
		return err
	}
	if err := ls.RunStdio(); err != nil {
		log.Errorf("server error: %v", err)
		return err
	}
	return nil
}
