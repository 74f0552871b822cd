package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-creature/common"
	"github.com/Carmen-Shannon/oxy-creature/engine"
	"github.com/Carmen-Shannon/oxy-creature/engine/config"
	"github.com/Carmen-Shannon/oxy-creature/engine/creature"
	"github.com/Carmen-Shannon/oxy-creature/engine/director"
	"github.com/Carmen-Shannon/oxy-creature/engine/draw_buffer"
	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func (c *CLI) newRunCmd() *cobra.Command {
	var frames int
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "run <asset>",
		Short: "Play an asset on one or more instances and print their output",
		Long: `Load an asset, create the configured number of instances and play them.

With --frames the instances are ticked that many times at the configured tick rate.
Otherwise the engine loop runs for --duration, --max-ticks, or until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlay(cmd.Context(), args[0], frames, duration)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&frames, "frames", 0, "tick this many frames without the engine loop")
	flags.DurationVar(&duration, "duration", 0, "run the engine loop for this long")
	flags.Int("instances", 1, "number of instances to play")
	flags.String("animation", "", "start animation (default: first clip)")
	flags.Float64("tick-rate", config.DefaultTickRate, "ticks per second")
	flags.Int64("max-ticks", 0, "stop the engine loop after this many ticks")
	flags.Int("workers", 0, "tick workers (default: one less than the CPU count)")
	flags.Bool("profile", false, "log tick rate and memory statistics")
	c.bind("instances", flags.Lookup("instances"))
	c.bind("start_animation", flags.Lookup("animation"))
	c.bind("tick_rate", flags.Lookup("tick-rate"))
	c.bind("max_ticks", flags.Lookup("max-ticks"))
	c.bind("tick_workers", flags.Lookup("workers"))
	c.bind("profiling", flags.Lookup("profile"))
	return cmd
}

func (c *CLI) runPlay(ctx context.Context, key string, frames int, duration time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cache := c.newCache()
	defer cache.Clear()

	d := director.NewDirector("run", append(c.cfg.DirectorOptions(), director.WithLogger(c.logger))...)
	defer d.Release()

	for range max(c.cfg.Instances, 1) {
		cr, err := c.newCreature(cache, key)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", key, err)
		}
		d.Add(cr)
	}

	rate := common.Coalesce(c.cfg.TickRate, config.DefaultTickRate)
	if frames > 0 {
		dt := float32(1 / rate)
		for range frames {
			d.Tick(dt)
		}
		fmt.Fprintf(c.output, "ticked %d frames on %d instances\n", frames, d.Count())
	} else {
		rendered := c.runEngine(ctx, d, rate, duration)
		fmt.Fprintf(c.output, "rendered %d frames on %d instances\n", rendered, d.Count())
	}

	for i, id := range d.IDs() {
		c.printSummary(fmt.Sprintf("[%d]", i), d.Get(id))
	}
	return nil
}

// runEngine drives d with the engine loop and a render callback that reads every snapshot the
// way a renderer would. It returns the number of render frames.
func (c *CLI) runEngine(ctx context.Context, d director.Director, rate float64, duration time.Duration) int64 {
	opts := append(c.cfg.EngineOptions(), engine.WithDirector(0, d), engine.WithLogger(c.logger))
	if duration > 0 {
		opts = append(opts, engine.WithMaxTicks(max(int64(duration.Seconds()*rate), 1)))
	}
	e := engine.NewEngine(opts...)

	var rendered atomic.Int64
	e.SetRenderCallback(func(float32) {
		d.Each(func(_ uuid.UUID, cr creature.Creature) {
			cr.Snapshot().Read(func(draw_buffer.View) {})
		})
		rendered.Add(1)
	})

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			c.logger.Info("interrupted", logging.WithField("ticks", e.Ticks()))
			e.Quit()
		case <-done:
		}
	}()
	e.Run()
	close(done)
	return rendered.Load()
}
