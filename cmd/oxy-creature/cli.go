package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-creature/engine/asset_cache"
	"github.com/Carmen-Shannon/oxy-creature/engine/config"
	"github.com/Carmen-Shannon/oxy-creature/engine/creature"
	"github.com/Carmen-Shannon/oxy-creature/engine/draw_buffer"
	"github.com/Carmen-Shannon/oxy-creature/engine/fixture"
	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CLI holds the command tree and everything the commands share.
type CLI struct {
	root     *cobra.Command
	v        *viper.Viper
	cfg      config.Config
	cfgFile  string
	logger   logging.Logger
	output   io.Writer
	errorOut io.Writer
}

// NewCLI builds the command tree writing to the given outputs.
//
// Parameters:
//   - output: destination of command results
//   - errorOut: destination of errors and logs
//
// Returns:
//   - *CLI: the CLI
func NewCLI(output, errorOut io.Writer) *CLI {
	c := &CLI{
		v:        config.NewViper(),
		output:   output,
		errorOut: errorOut,
	}
	c.root = &cobra.Command{
		Use:               "oxy-creature",
		Short:             "Play and inspect creature animation assets headlessly",
		SilenceUsage:      true,
		PersistentPreRunE: c.initializeConfig,
	}
	c.root.SetOut(output)
	c.root.SetErr(errorOut)

	flags := c.root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default: ./oxy.yaml if present)")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.Bool("log-colors", true, "colorize log levels")
	flags.StringSlice("search-dir", nil, "directories relative asset keys are resolved against")
	c.bind("log_level", flags.Lookup("log-level"))
	c.bind("log_colors", flags.Lookup("log-colors"))
	c.bind("search_dirs", flags.Lookup("search-dir"))

	c.root.AddCommand(c.newRunCmd())
	c.root.AddCommand(c.newInspectCmd())
	c.root.AddCommand(c.newWatchCmd())
	return c
}

// Execute runs the CLI with the given arguments.
func (c *CLI) Execute(args []string) error {
	return c.ExecuteContext(context.Background(), args)
}

// ExecuteContext runs the CLI with the given arguments until ctx is done.
func (c *CLI) ExecuteContext(ctx context.Context, args []string) error {
	c.root.SetArgs(args)
	err := c.root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(c.errorOut, "%s %v\n", color.RedString("[oxy-creature]"), err)
	}
	return err
}

func (c *CLI) initializeConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logging.New(cfg.LogLevel, c.errorOut, cfg.LogColors)
	logging.SetDefault(c.logger)
	if used := c.v.ConfigFileUsed(); used != "" {
		c.logger.Debug("using config file", logging.WithField("file", used))
	}
	return nil
}

// bind ties a viper key to a flag. Binding only fails on a nil flag.
func (c *CLI) bind(key string, flag *pflag.Flag) {
	if err := c.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("oxy-creature: failed to bind %s: %v", key, err))
	}
}

func (c *CLI) newCache() asset_cache.AssetCache {
	opts := append(c.cfg.CacheOptions(c.logger), asset_cache.WithParser(fixture.NewParser()))
	return asset_cache.NewAssetCache(opts...)
}

// newCreature creates and initializes one instance of key from the configured settings.
func (c *CLI) newCreature(cache asset_cache.AssetCache, key string) (creature.Creature, error) {
	opts := append(c.cfg.CreatureOptions(),
		creature.WithCache(cache),
		creature.WithAsset(key),
		creature.WithLogger(c.logger),
	)
	cr := creature.NewCreature(opts...)
	if err := cr.Init(); err != nil {
		return nil, err
	}
	return cr, nil
}

// printSummary writes one line describing an instance's current output.
func (c *CLI) printSummary(label string, cr creature.Creature) {
	var points, indices int
	cr.Snapshot().Read(func(v draw_buffer.View) {
		points = v.NumPoints
		indices = v.NumIndices()
	})
	st := cr.State()
	fmt.Fprintf(c.output, "%s animation=%s frame=%.2f points=%d indices=%d playing=%t\n",
		color.CyanString(label), cr.ActiveAnimation(), st.RunTime, points, indices, st.ShouldPlay)
}
