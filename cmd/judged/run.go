package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run FILE...",
		Short: "Execute one or more judged programs top to bottom",
		Args:  cobra.MinimumNArgs(1),
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
			for _, path := range args {
				src, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				if err := s.loadFile(ctx, path, string(src), flagVerbose); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
