package main

import (
	"fmt"

	"github.com/okian/lapreplay/internal/simulate"
	"github.com/spf13/cobra"
)

func newSimulateCmd(c *cli) *cobra.Command {
	sim := simulate.DefaultConfig()
	cmd := &cobra.Command{
		Use:     "simulate",
		Short:   "Generate a synthetic race and verify its replay",
		Long:    "Generate a synthetic race log with known lap times, replay it in process\nor against a running server (--url), and compare the passes with the ground truth.",
		GroupID: "replay",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sim.Readers = c.cfg.Readers
			sim.Teams = c.cfg.Teams

			var replayer simulate.Replayer
			if sim.BaseURL != "" {
				replayer = simulate.NewHTTPReplayer(sim.BaseURL, sim.Timeout)
			} else {
				svc, err := c.service()
				if err != nil {
					return err
				}
				replayer = svc
			}

			st, err := simulate.Run(cmd.Context(), sim, c.cfg.Threshold, replayer)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "verified %d pairs from %d lines in %s\n", st.PairsChecked, st.Lines, st.Duration)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&sim.OutputFile, "out", "", "write the generated log to this file")
	f.StringVar(&sim.BaseURL, "url", "", "replay through a running server at this base URL")
	f.DurationVar(&sim.Timeout, "timeout", sim.Timeout, "HTTP request timeout")
	f.Uint64Var(&sim.Seed, "seed", sim.Seed, "random seed")
	f.IntVar(&sim.Laps, "laps", sim.Laps, "laps per team")
	f.Float64Var(&sim.MinLap, "min-lap", sim.MinLap, "shortest lap")
	f.Float64Var(&sim.MaxLap, "max-lap", sim.MaxLap, "longest lap")
	f.IntVar(&sim.MaxRereads, "rereads", sim.MaxRereads, "maximum extra reads per crossing")
	f.IntVar(&sim.NoiseReads, "noise", sim.NoiseReads, "sightings of an unassigned tag")
	return cmd
}
