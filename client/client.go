package client

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/codetrek/needle/conf"
	"github.com/codetrek/needle/display"
	"github.com/codetrek/needle/shared/running"
)

type globalOptions struct {
	configFile string
	color      string
	serveMCP   bool
	closeLog   func() error
}

// NewRootCommand builds the needle command. There are no subcommands, so any
// word, "version" or "mcp" included, can be searched for. --mcp and
// --version switch the command to serving or printing the version.
func NewRootCommand() *cobra.Command {
	global := &globalOptions{}
	search := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "needle [flags] [--] EXPRESSION",
		Short: "Search the files of a directory for a text or a regular expression",
		Long: `needle scans the files of a directory concurrently and reports the lines
matching EXPRESSION, grouped by file: files directly in the directory first,
then files in subdirectories, each group sorted by path.

EXPRESSION is matched as a literal substring unless --regex is given, and
case-insensitively unless --case-sensitive is given.`,
		Example: `  needle "sleep" -d openstack-neat -f "*.py" -R
  needle " Watson " -d books -f "*.txt" -s
  needle caseSensitiveWord -C -d ../project
  needle "#[A-Z]{3,5}" -r -C -f "*.py" -R
  needle needle -R --json
  needle -R -- -v
  needle --mcp`,
		Args: func(cmd *cobra.Command, args []string) error {
			if global.serveMCP {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		Version: running.Version(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return global.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if global.closeLog != nil {
				return global.closeLog()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if global.serveMCP {
				return runMCP()
			}
			return runSearch(cmd, args[0], search)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&global.configFile, "config", "", "config file (default: first of "+
		"config.local.yaml next to the binary, ~/.needle/config.yaml, config.yaml next to the binary)")
	cmd.PersistentFlags().StringVar(&global.color, "color", "", "colorize output: auto, always or never")
	cmd.Flags().BoolVar(&global.serveMCP, "mcp", false, "serve search_in_files as an MCP tool on stdio instead of searching")
	search.register(cmd)

	cmd.SetVersionTemplate("{{.Version}}\n")

	return cmd
}

func (g *globalOptions) setup(cmd *cobra.Command) error {
	var err error
	if g.configFile != "" {
		err = conf.LoadFile(g.configFile)
	} else {
		err = conf.Load()
	}
	if err != nil {
		return err
	}

	c := conf.Get()
	mode := c.Output.Color
	if g.color != "" {
		mode = g.color
	}
	if err := setColorMode(mode); err != nil {
		return err
	}

	g.closeLog, err = running.InitLog(running.LogOptions{
		Stderr:     c.Logging.Stderr,
		Debug:      c.Logging.Level == conf.LevelDebug,
		File:       c.Logging.File,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	})
	if err != nil {
		// A log file we cannot create must not prevent searching
		running.DiscardLog()
		g.closeLog = nil
	}

	return nil
}

func setColorMode(mode string) error {
	switch mode {
	case conf.ColorAlways:
		color.NoColor = false
	case conf.ColorNever:
		color.NoColor = true
	case conf.ColorAuto, "":
		fd := os.Stderr.Fd()
		color.NoColor = os.Getenv("NO_COLOR") != "" || !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
	default:
		return fmt.Errorf("invalid --color %q: want auto, always or never", mode)
	}
	return nil
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		display.Error(cmd.ErrOrStderr(), err)
		return 1
	}
	return 0
}
