package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ryogrid/pagestore/storage/page"
)

func newGetPageCmd(env *cliEnv) *cobra.Command {
	var length int
	cmd := &cobra.Command{
		Use:   "get-page <table> <page-number>",
		Short: "fetch a page and dump its leading bytes as hex",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid page number %q: %w", args[1], err)
			}
			pool, cat, sched, err := env.open()
			if err != nil {
				return err
			}
			defer sched.Shutdown()

			fileID, err := cat.FindByName(args[0])
			if err != nil {
				return err
			}
			id := page.ID{FileID: fileID, PageNumber: uint32(n)}

			fr, err := pool.FetchPage(id)
			if err != nil {
				return err
			}
			fr.RLock()
			if length <= 0 || length > page.FrameSize {
				length = 64
			}
			dump := make([]byte, length)
			copy(dump, fr.Data()[:length])
			fr.RUnlock()
			_ = pool.UnpinPage(id, false)

			fmt.Println(hex.Dump(dump))
			return nil
		},
	}
	cmd.Flags().IntVar(&length, "length", 64, "number of leading bytes to dump")
	return cmd
}

func newPutPageCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put-page <table> <page-number> <hex-bytes>",
		Short: "fetch a page, overwrite its leading bytes, unpin dirty",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid page number %q: %w", args[1], err)
			}
			raw, err := hex.DecodeString(args[2])
			if err != nil {
				return fmt.Errorf("invalid hex payload: %w", err)
			}
			if len(raw) > page.FrameSize {
				return fmt.Errorf("payload of %d bytes exceeds frame size %d", len(raw), page.FrameSize)
			}

			pool, cat, sched, err := env.open()
			if err != nil {
				return err
			}
			defer sched.Shutdown()

			fileID, err := cat.FindByName(args[0])
			if err != nil {
				return err
			}
			id := page.ID{FileID: fileID, PageNumber: uint32(n)}

			fr, err := pool.FetchPage(id)
			if err != nil {
				return err
			}
			fr.Lock()
			copy(fr.Data()[:], raw)
			fr.Unlock()

			if err := pool.UnpinPage(id, true); err != nil {
				return err
			}
			if err := pool.FlushPage(id); err != nil {
				return err
			}
			fmt.Printf("wrote %d bytes to %s\n", len(raw), id)
			return nil
		},
	}
	return cmd
}
