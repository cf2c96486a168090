package main

import (
	"net/http"
	"os"

	"github.com/burntcarrot/histdiff/annotator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Flags represents the command-line flags that are passed to histdiff's server.
type Flags struct {
	Addr         string
	Snapshots    string
	Curation     string
	NumberNicely bool
	Debug        bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags Flags

	cmd := &cobra.Command{
		Use:          "histdiff-server",
		Short:        "Serve annotated views of a document history over a websocket",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags)
		},
	}

	cmd.Flags().StringVar(&flags.Addr, "addr", ":9000", "Server's network address")
	cmd.Flags().StringVar(&flags.Snapshots, "snapshots", "", "YAML file holding the document snapshots")
	cmd.Flags().StringVar(&flags.Curation, "curation", "", "TOML file holding the curated tables")
	cmd.Flags().BoolVar(&flags.NumberNicely, "nice-numbering", false, "Let new blocks skip deleted positions for shorter identifiers")
	cmd.Flags().BoolVar(&flags.Debug, "debug", false, "Enable debugging mode to show more verbose logs")
	_ = cmd.MarkFlagRequired("snapshots")

	return cmd
}

func run(flags Flags) error {
	logger := logrus.New()
	if flags.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	result, err := annotator.Load(flags.Snapshots, flags.Curation, annotator.Options{
		NumberNicely: flags.NumberNicely,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	logger.Infof("Built history of %d versions with %d warnings", len(result.Versions), len(result.Warnings))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	srv := newServer(result, logger, reg)

	// Start the server.
	logger.Infof("Starting server on %s", flags.Addr)
	return http.ListenAndServe(flags.Addr, srv.routes(reg))
}
