package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "print lifetime buffer pool counters for a freshly opened pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, _, sched, err := env.open()
			if err != nil {
				return err
			}
			defer sched.Shutdown()

			s := pool.Stats()
			fmt.Printf("hits=%d misses=%d ghost_hits=%d evictions=%d disk_reads=%d disk_writes=%d all_pinned_errors=%d\n",
				s.Hits, s.Misses, s.GhostHits, s.Evictions, s.DiskReads, s.DiskWrites, s.AllPinnedErrors)
			return nil
		},
	}
}
