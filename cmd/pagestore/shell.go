package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/ryogrid/pagestore/storage/buffer"
	"github.com/ryogrid/pagestore/storage/page"
)

// shellPool is the slice of *buffer.PoolManager the REPL needs; narrowing
// it to an interface keeps runShellLine testable without a live scheduler.
type shellPool interface {
	FetchPage(page.ID) (*page.Frame, error)
	UnpinPage(page.ID, bool) error
	FlushPage(page.ID) error
	Stats() buffer.Stats
}

// newShellCmd opens one pool for the session and loops simple
// get/put/stats/flush commands against it, the manual-testing REPL shape
// modeled on the pack's own readline-backed SQL client.
func newShellCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "interactive REPL over a live buffer pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, cat, sched, err := env.open()
			if err != nil {
				return err
			}
			defer sched.Shutdown()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "pagestore> ",
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return fmt.Errorf("readline: %w", err)
			}
			defer func() { _ = rl.Close() }()

			fmt.Println("commands: get <table> <page>, put <table> <page> <hex>, flush <table> <page>, stats, quit")
			for {
				line, err := rl.Readline()
				if err == readline.ErrInterrupt {
					continue
				}
				if err != nil {
					return nil
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if line == "quit" || line == "exit" {
					return nil
				}
				if err := runShellLine(pool, cat.FindByName, line); err != nil {
					fmt.Println("error:", err)
				}
			}
		},
	}
}

func runShellLine(pool shellPool, findByName func(string) (uint32, error), line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "stats":
		s := pool.Stats()
		fmt.Printf("hits=%d misses=%d ghost_hits=%d evictions=%d\n", s.Hits, s.Misses, s.GhostHits, s.Evictions)
		return nil

	case "get":
		if len(fields) != 3 {
			return fmt.Errorf("usage: get <table> <page>")
		}
		id, err := resolveID(findByName, fields[1], fields[2])
		if err != nil {
			return err
		}
		fr, err := pool.FetchPage(id)
		if err != nil {
			return err
		}
		fr.RLock()
		dump := make([]byte, 32)
		copy(dump, fr.Data()[:32])
		fr.RUnlock()
		_ = pool.UnpinPage(id, false)
		fmt.Print(hex.Dump(dump))
		return nil

	case "put":
		if len(fields) != 4 {
			return fmt.Errorf("usage: put <table> <page> <hex>")
		}
		id, err := resolveID(findByName, fields[1], fields[2])
		if err != nil {
			return err
		}
		raw, err := hex.DecodeString(fields[3])
		if err != nil {
			return fmt.Errorf("invalid hex payload: %w", err)
		}
		if len(raw) > page.FrameSize {
			return fmt.Errorf("payload too large")
		}
		fr, err := pool.FetchPage(id)
		if err != nil {
			return err
		}
		fr.Lock()
		copy(fr.Data()[:], raw)
		fr.Unlock()
		return pool.UnpinPage(id, true)

	case "flush":
		if len(fields) != 3 {
			return fmt.Errorf("usage: flush <table> <page>")
		}
		id, err := resolveID(findByName, fields[1], fields[2])
		if err != nil {
			return err
		}
		return pool.FlushPage(id)

	default:
		return fmt.Errorf("unknown command: %s", fields[0])
	}
}

func resolveID(findByName func(string) (uint32, error), table, pageStr string) (page.ID, error) {
	fileID, err := findByName(table)
	if err != nil {
		return page.ID{}, err
	}
	n, err := strconv.ParseUint(pageStr, 10, 32)
	if err != nil {
		return page.ID{}, fmt.Errorf("invalid page number %q: %w", pageStr, err)
	}
	return page.ID{FileID: fileID, PageNumber: uint32(n)}, nil
}
