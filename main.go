// Command gsg evaluates scene scripts and inspects the scene graphs they
// build.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/perryiv/cadkit-sub042/pkg/config"
	"github.com/perryiv/cadkit-sub042/pkg/logging"
)

// cli carries what the subcommands share once flags are parsed.
type cli struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg config.Config
	app *App
}

func newRootCommand(stderr io.Writer) *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:   "gsg",
		Short: "Build and inspect scene graphs",
		Long: color.New(color.FgCyan).Sprint("Usage: gsg [global options] <command> [args]") + "\n\n" +
			"gsg evaluates scene scripts, small Lisp programs that build a tree of\n" +
			"groups, transforms and primitive shapes, and reports on the result.\n",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(stderr)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to a TOML config file")
	cmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Override log level (debug | info | warn | error)")
	cmd.PersistentFlags().StringVar(&c.logFormat, "log-format", "", "Override log format (text | json)")

	cmd.AddCommand(
		newTreeCommand(c),
		newBoundsCommand(c),
		newMeshCommand(c),
		newValidateCommand(c),
		newDrawCommand(c),
		newPrimitiveCommand(c),
	)
	return cmd
}

func (c *cli) setup(stderr io.Writer) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Log.Format = c.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := logging.New(cfg.Log, stderr)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.app = NewApp(cfg, log)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		color.NoColor = true
	}
	if err := newRootCommand(os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		stop()
		os.Exit(1)
	}
}
