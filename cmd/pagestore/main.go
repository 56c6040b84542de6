// Command pagestore is a thin operator surface over the storage core: it
// is not part of the core itself, just the manual/smoke-testing client a
// real deployment would run alongside it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ryogrid/pagestore/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var dataDir string
	var poolSize int
	var useDirectIO bool

	env := &cliEnv{dataDir: &dataDir, poolSize: &poolSize, useDirectIO: &useDirectIO}

	root := &cobra.Command{
		Use:   "pagestore",
		Short: "pagestore manages a buffer-pool-backed page store",
		// PersistentPreRunE overlays a YAML config file onto the flag
		// defaults, then lets any flag the operator actually typed win.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("data-dir") {
				dataDir = cfg.Storage.DataDir
			}
			if !cmd.Flags().Changed("pool-size") {
				poolSize = cfg.Buffer.PoolSize
			}
			if !cmd.Flags().Changed("direct-io") {
				useDirectIO = cfg.Storage.UseDirectIO
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (overlaid under explicit flags)")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "./data", "catalog and page file directory")
	root.PersistentFlags().IntVar(&poolSize, "pool-size", 128, "number of buffer pool frames")
	root.PersistentFlags().BoolVar(&useDirectIO, "direct-io", false, "bypass the OS page cache with O_DIRECT")

	root.AddCommand(
		newCreateTableCmd(env),
		newGetPageCmd(env),
		newPutPageCmd(env),
		newStatsCmd(env),
		newShellCmd(env),
	)
	return root
}
