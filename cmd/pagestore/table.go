package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryogrid/pagestore/catalog"
)

func newCreateTableCmd(env *cliEnv) *cobra.Command {
	var heap bool
	cmd := &cobra.Command{
		Use:   "create-table <name>",
		Short: "register a new table in the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(*env.dataDir)
			if err != nil {
				return err
			}
			typ := catalog.Heap
			if !heap {
				typ = catalog.BTreeIndex
			}
			id, err := cat.CreateTable(args[0], typ)
			if err != nil {
				return err
			}
			fmt.Printf("created table %q with file_id=%d\n", args[0], id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&heap, "heap", true, "register as a heap file (vs. a B+-tree index file)")
	return cmd
}
