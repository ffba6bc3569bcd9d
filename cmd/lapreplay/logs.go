package main

import (
	"fmt"

	"github.com/okian/lapreplay/internal/adapters/liststore"
	"github.com/okian/lapreplay/internal/adapters/logfilter"
	"github.com/okian/lapreplay/pkg/logger"
	"github.com/spf13/cobra"
)

func newFilterCmd(c *cli) *cobra.Command {
	var crit logfilter.Criteria
	cmd := &cobra.Command{
		Use:     "filter <readerlog>",
		Short:   "Filter a raw reader log in place by time window and tag prefix",
		GroupID: "logs",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			st, err := svc.Filter(cmd.Context(), args[0], crit)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "kept %d, dropped %d\n", st.Kept, st.Dropped)
			return err
		},
	}
	cmd.Flags().Float64Var(&crit.Start, "start", 0, "first updateTime to keep")
	cmd.Flags().Float64Var(&crit.End, "end", 0, "last updateTime to keep")
	cmd.Flags().StringVar(&crit.Pattern, "pattern", "", "regular expression the tag must start with")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("pattern")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "import <log> <list>",
		Short:   "Load every line of a log into a JetStream-backed list",
		GroupID: "logs",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			store, err := liststore.NewJetStream(c.cfg.NATSURL, liststore.WithLogger(logger.Get()))
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := svc.Import(cmd.Context(), store, args[0], args[1])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d lines into %s\n", n, args[1])
			return err
		},
	}
}
