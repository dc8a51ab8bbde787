package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"leqo/internal/enrich"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the enrichment disk cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached enrichment result",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cache, err := enrich.OpenCache(cfg.Cache.Dir, enrich.Inline{})
		if err != nil {
			return err
		}
		if err := cache.DropAll(); err != nil {
			return err
		}
		quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "enrichment cache cleared")
		}
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}
