package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gitrdm/judged/pkg/syntax"
	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	var load []string

	cmd := &cobra.Command{
		Use:   "query LITERAL",
		Short: "Load optional files, then ask a single query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parseMode(flagMode)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(flagConfig)
			if err != nil {
				return err
			}
			s, err := newSession(m, cfg, logger, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			ctx := context.Background()
			for _, path := range load {
				src, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				if err := s.loadFile(ctx, path, string(src), flagVerbose); err != nil {
					return err
				}
			}
			entries, err := syntax.Parse(args[0]+"?", s.ctx.NS(), s.ext.Resolve)
			if err != nil {
				return fmt.Errorf("parsing query literal %q: %w", args[0], err)
			}
			for _, e := range entries {
				if err := s.runEntry(ctx, e, false); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&load, "load", nil, "Program file to load before asking the query (repeatable)")
	return cmd
}
