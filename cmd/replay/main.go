package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"asteroids.ai/internal/persistence/indexdb"
	"asteroids.ai/internal/persistence/roundlog"
)

func main() {
	var (
		roundsDir = flag.String("rounds", "", "dir containing rounds-*.jsonl.zst")
		fromRound = flag.Int("from", 0, "start verifying from round (inclusive, optional)")
		toRound   = flag.Int("to", 0, "stop verifying after round (inclusive, optional)")
		indexPath = flag.String("index", "", "sqlite round index to summarize (optional)")
	)
	flag.Parse()

	if *roundsDir == "" && *indexPath == "" {
		fmt.Fprintln(os.Stderr, "missing -rounds or -index")
		os.Exit(2)
	}

	if *roundsDir != "" {
		v, err := roundlog.VerifyDir(*roundsDir, *fromRound, *toRound)
		if err != nil {
			fmt.Fprintln(os.Stderr, "replay:", err)
			os.Exit(1)
		}
		fmt.Printf("replay ok: runs=%d applied=%d checked=%d rounds\n", v.Runs, v.Applied, v.Checked)
	}

	if *indexPath != "" {
		ctx := context.Background()
		rows, err := indexdb.ReadRounds(ctx, *indexPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read index:", err)
			os.Exit(1)
		}
		counts, err := indexdb.CommandCounts(ctx, *indexPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read index:", err)
			os.Exit(1)
		}
		runs := map[string]int{}
		var order []string
		for _, r := range rows {
			if _, ok := runs[r.Run]; !ok {
				order = append(order, r.Run)
			}
			runs[r.Run]++
		}
		fmt.Printf("index: runs=%d rounds=%d\n", len(order), len(rows))
		for _, run := range order {
			fmt.Printf("  run %s rounds=%d\n", run, runs[run])
		}
		types := make([]string, 0, len(counts))
		for t := range counts {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Printf("  %-7s %d\n", t, counts[t])
		}
	}
}
