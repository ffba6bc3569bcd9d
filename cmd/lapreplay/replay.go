package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/okian/lapreplay/internal/adapters/export"
	"github.com/okian/lapreplay/internal/domain/report"
	"github.com/okian/lapreplay/pkg/logger"
	"github.com/spf13/cobra"
)

func newPassesCmd(c *cli) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:     "passes <log>",
		Short:   "Reconstruct passes and print a summary per pair",
		GroupID: "replay",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			rep, err := svc.ReplayFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), rep)
			}
			return printPairs(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full report as JSON")
	return cmd
}

func newExportCmd(c *cli) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:     "export <log>",
		Short:   "Replay a log and export per-pair CSV files and the JSON report",
		Long:    "Replay a log and export per-pair CSV files and the JSON report.\nObjects go to S3 when s3_bucket is configured, otherwise to --out.",
		GroupID: "replay",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.service()
			if err != nil {
				return err
			}
			rep, err := svc.ReplayFile(ctx, args[0])
			if err != nil {
				return err
			}

			var dest export.Destination = export.NewDirDestination(out)
			if c.cfg.S3Bucket != "" {
				s3, err := export.NewS3Destination(ctx, c.cfg.S3Bucket, c.cfg.S3Prefix, c.cfg.S3Region, c.cfg.S3Endpoint)
				if err != nil {
					return err
				}
				dest = s3
			}

			keys, err := svc.Export(ctx, rep, dest)
			if err != nil {
				return err
			}
			logger.Get().Info(ctx, "export finished",
				logger.String("destination", dest.Name()),
				logger.Int("objects", len(keys)))
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "export", "output directory when no S3 bucket is configured")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func printPairs(w io.Writer, rep *report.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "READER\tTEAM\tNAME\tPASSES\tFAST LAP\tLOW\tHIGH")
	for _, p := range rep.Pairs {
		fast, low, high := "-", "-", "-"
		if p.Bands != nil {
			fast = formatFloat(p.Bands.FastLap)
			low = formatFloat(p.Bands.Low)
			high = formatFloat(p.Bands.High)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\t%s\t%s\n", p.Reader, p.Team, p.Name, len(p.Passes), fast, low, high)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	s := rep.Stats
	_, err := fmt.Fprintf(w, "\naccepted %d, debounced %d, discarded %d (not started %d, unassigned %d), assigned tags %d\n",
		s.Accepted, s.Debounced, s.DiscardedNotStarted+s.DiscardedUnassigned,
		s.DiscardedNotStarted, s.DiscardedUnassigned, s.AssignedTagsAtFinish)
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
