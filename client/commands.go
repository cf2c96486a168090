package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/burntcarrot/histdiff/annotator"
	"github.com/burntcarrot/histdiff/render"
	"github.com/burntcarrot/histdiff/tui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// newBuildCmd reports the warnings found while building the history and the versions that changed something.
func (c *cli) newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the history and report data-quality warnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.load()
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func printSummary(w io.Writer, r *annotator.Result) {
	warn := color.New(color.FgYellow)
	for _, warning := range r.Warnings {
		warn.Fprintf(w, "warning: %s\n", warning)
	}

	versions := make([]string, len(r.Versions))
	for i, v := range r.Versions {
		versions[i] = v.String()
	}
	color.New(color.FgGreen).Fprintf(w, "%d positions, %d warnings\n", len(r.Document.IDs()), len(r.Warnings))
	fmt.Fprintf(w, "versions: %s\n", strings.Join(versions, " "))
}

// renderFlags represents the flags of the render command.
type renderFlags struct {
	Format string
	Base   string
	Head   string
	Color  bool
	Width  int
}

func (c *cli) newRenderCmd() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the changes between two versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.load()
			if err != nil {
				return err
			}
			w, err := window(result, flags.Base, flags.Head)
			if err != nil {
				return err
			}
			return renderWindow(cmd.OutOrStdout(), result, w, flags, filepath.Base(c.flags.Snapshots))
		},
	}

	cmd.Flags().StringVar(&flags.Format, "format", "terminal", "Output format: terminal, markup, patch or json")
	cmd.Flags().StringVar(&flags.Base, "base", "", "Changes at or before this version show as plain text (default: first version)")
	cmd.Flags().StringVar(&flags.Head, "head", "", "Changes after this version are hidden (default: last version)")
	cmd.Flags().BoolVar(&flags.Color, "color", false, "Use ANSI colours in terminal output")
	cmd.Flags().IntVar(&flags.Width, "width", 0, "Wrap terminal output at this many columns")

	return cmd
}

func renderWindow(out io.Writer, r *annotator.Result, w render.Window, flags renderFlags, name string) error {
	if flags.Format == "patch" {
		return render.Patch(out, r, w, name)
	}

	lines, err := render.View(r, w)
	if err != nil {
		return err
	}

	switch flags.Format {
	case "terminal":
		return render.Terminal(out, lines, render.TerminalOptions{
			Versions: r.Versions,
			Color:    flags.Color,
			Width:    flags.Width,
		})
	case "markup":
		return render.Markup(out, lines)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(lines)
	default:
		return fmt.Errorf("unknown format %q", flags.Format)
	}
}

// viewFlags represents the flags of the view command.
type viewFlags struct {
	Server string
	Secure bool
}

func (c *cli) newViewCmd() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the history interactively, locally or from a server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, closeSource, err := c.source(flags)
			if err != nil {
				return err
			}
			defer closeSource()
			return tui.Run(src)
		},
	}

	cmd.Flags().StringVar(&flags.Server, "server", "", "The network address of a histdiff server; the history is built locally when empty")
	cmd.Flags().BoolVar(&flags.Secure, "secure", false, "Enable a secure WebSocket connection (wss://)")

	return cmd
}

// source returns the viewer's source and a function releasing it.
func (c *cli) source(flags viewFlags) (tui.Source, func(), error) {
	if flags.Server == "" {
		result, err := c.load()
		if err != nil {
			return nil, nil, err
		}
		return tui.Local{Result: result}, func() {}, nil
	}

	conn, _, err := createConn(flags.Server, flags.Secure)
	if err != nil {
		c.logger.Errorf("Connection error: %s", err)
		return nil, nil, fmt.Errorf("connecting to %s: %w", flags.Server, err)
	}
	c.logger.Infof("Connected to %s", flags.Server)
	return tui.NewRemote(conn), func() { conn.Close() }, nil
}
