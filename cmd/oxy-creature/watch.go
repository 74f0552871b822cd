package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/oxy-creature/common"
	"github.com/Carmen-Shannon/oxy-creature/engine/asset_cache"
	"github.com/Carmen-Shannon/oxy-creature/engine/config"
	"github.com/Carmen-Shannon/oxy-creature/engine/creature"
	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
	"github.com/spf13/cobra"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	var timeout time.Duration
	var frames int
	var notify bool

	cmd := &cobra.Command{
		Use:   "watch <asset>",
		Short: "Reload an asset whenever its file changes",
		Long: `Load an asset file, then unload and reload it every time the file is written.
Each reload creates a fresh instance, plays it for --frames and prints its output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			return c.watch(ctx, args[0], frames, newReloadNotifier(notify, c.logger))
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "stop watching after this long")
	cmd.Flags().IntVar(&frames, "frames", 1, "frames to play after each reload")
	cmd.Flags().BoolVar(&notify, "notify", false, "raise a desktop notification on every reload")
	return cmd
}

func (c *CLI) watch(ctx context.Context, key string, frames int, n *reloadNotifier) error {
	cache := c.newCache()
	defer cache.Clear()

	cr, err := c.reload(cache, key, frames)
	if err != nil {
		return err
	}
	key = cr.AssetKey()

	w, err := asset_cache.NewWatcher(cache, c.logger)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(key); err != nil {
		return err
	}

	fmt.Fprintf(c.output, "watching %s\n", key)
	w.Run(ctx, func(changed string) {
		cr, err := c.reload(cache, changed, frames)
		if err != nil {
			c.logger.Error("reload failed", logging.WithField("asset", changed), logging.WithField("error", err))
			n.failed(changed, err)
			return
		}
		n.reloaded(changed, cr.ActiveIndexCount())
	})
	return nil
}

// reload drops any cached copy of key, loads it into a fresh instance, plays frames ticks and
// prints the result.
func (c *CLI) reload(cache asset_cache.AssetCache, key string, frames int) (creature.Creature, error) {
	cache.UnloadAsset(key)
	cr, err := c.newCreature(cache, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	dt := float32(1 / common.Coalesce(c.cfg.TickRate, config.DefaultTickRate))
	for range frames {
		cr.Tick(dt)
	}
	c.printSummary(cr.AssetKey(), cr)
	return cr, nil
}
