package main

import (
	"errors"
	"io"
	"os"

	"github.com/burntcarrot/histdiff/annotator"
	"github.com/burntcarrot/histdiff/history"
	"github.com/burntcarrot/histdiff/render"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var errNoSnapshots = errors.New("no snapshot file given (use --snapshots)")

// Flags represents the command-line flags shared by histdiff's commands.
type Flags struct {
	Snapshots    string
	Curation     string
	NumberNicely bool
	Debug        bool
	LogDir       string
}

// cli holds the state shared by the subcommands.
type cli struct {
	flags  Flags
	logger *logrus.Logger

	logFile      *os.File
	debugLogFile *os.File
}

func main() {
	if err := newCLI().execute(os.Args[1:], os.Stdout); err != nil {
		os.Exit(1)
	}
}

func newCLI() *cli {
	return &cli{logger: logrus.New()}
}

// execute runs the command line args and closes the log files, whether the
// command succeeded or not.
func (c *cli) execute(args []string, out io.Writer) error {
	defer c.closeLogs()

	cmd := c.rootCmd()
	cmd.SetOut(out)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func (c *cli) closeLogs() {
	if c.logFile != nil {
		closeLogFiles(c.logFile, c.debugLogFile)
	}
}

func (c *cli) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "histdiff",
		Short:        "Build and view the history of a versioned document",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			c.logFile, c.debugLogFile, err = setupLogger(c.logger, c.flags.LogDir)
			if err != nil {
				return err
			}
			if c.flags.Debug {
				c.logger.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.flags.Snapshots, "snapshots", "", "YAML file holding the document snapshots")
	flags.StringVar(&c.flags.Curation, "curation", "", "TOML file holding the curated tables")
	flags.BoolVar(&c.flags.NumberNicely, "nice-numbering", false, "Let new blocks skip deleted positions for shorter identifiers")
	flags.BoolVar(&c.flags.Debug, "debug", false, "Enable debugging mode to show more verbose logs")
	flags.StringVar(&c.flags.LogDir, "log-dir", defaultLogDir(), "Directory for the log files")

	cmd.AddCommand(c.newBuildCmd(), c.newRenderCmd(), c.newViewCmd())
	return cmd
}

// load builds the history from the snapshot and curation files.
func (c *cli) load() (*annotator.Result, error) {
	if c.flags.Snapshots == "" {
		return nil, errNoSnapshots
	}
	return annotator.Load(c.flags.Snapshots, c.flags.Curation, annotator.Options{
		NumberNicely: c.flags.NumberNicely,
		Logger:       c.logger,
	})
}

// window resolves the --base and --head flags; an empty flag keeps the default window's bound.
func window(r *annotator.Result, base, head string) (render.Window, error) {
	w := render.DefaultWindow(r)
	if base != "" {
		v, err := history.ParseVersion(base)
		if err != nil {
			return render.Window{}, err
		}
		w.Base = v
	}
	if head != "" {
		v, err := history.ParseVersion(head)
		if err != nil {
			return render.Window{}, err
		}
		w.Head = v
	}
	return w, w.Validate()
}
