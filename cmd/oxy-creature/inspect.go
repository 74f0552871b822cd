package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func (c *CLI) newInspectCmd() *cobra.Command {
	var skins []string

	cmd := &cobra.Command{
		Use:   "inspect <asset>",
		Short: "Print the regions, bones and animations of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.inspect(args[0], skins)
		},
	}
	cmd.Flags().StringSliceVar(&skins, "skin", nil, "also resolve these skin swaps")
	return cmd
}

func (c *CLI) inspect(key string, skins []string) error {
	cache := c.newCache()
	defer cache.Clear()

	h, _, err := cache.LoadAsset(key)
	if err != nil {
		return err
	}
	solver, err := h.Packet().NewSolver()
	if err != nil {
		return fmt.Errorf("failed to create solver for %s: %w", key, err)
	}
	topo := solver.Topology()

	heading := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(c.output, "%s %s (%s)\n", heading("asset"), h.Key(), h.Path())
	fmt.Fprintf(c.output, "  points=%d indices=%d\n", topo.NumPoints(), topo.NumIndices())

	fmt.Fprintln(c.output, heading("regions"))
	for _, r := range topo.Regions() {
		fmt.Fprintf(c.output, "  %-12s id=%d points=%d indices=%d opacity=%.0f\n",
			r.Name, r.ID, r.NumPoints(), r.NumIndices(), r.Opacity)
	}

	fmt.Fprintln(c.output, heading("bones"))
	for _, b := range topo.Bones() {
		parent := b.Parent
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(c.output, "  %-12s parent=%-12s children=[%s]\n", b.Name, parent, strings.Join(b.Children, " "))
	}

	fmt.Fprintln(c.output, heading("animations"))
	for _, name := range h.Packet().AnimationNames() {
		clip, err := cache.LoadClip(h.Key(), name)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.output, "  %-12s frames=%g..%g fps=%g\n", name, clip.StartTime(), clip.EndTime(), clip.TimeScale())
	}

	track := h.Packet().RegionOrderTrack()
	if len(skins) == 0 || track == nil {
		return nil
	}
	fmt.Fprintln(c.output, heading("skins"))
	for _, name := range skins {
		set, ok := track.BuildSkinSwap(name, topo)
		if !ok {
			fmt.Fprintf(c.output, "  %-12s %s\n", name, color.YellowString("unknown"))
			continue
		}
		fmt.Fprintf(c.output, "  %-12s regions=%d indices=%d\n", name, len(set.Regions), len(set.Indices))
	}
	return nil
}
