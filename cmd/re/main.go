// Command re is the CLI front end for memoregex (spec.md §6), grounded on
// ajroetker-goat's cobra wiring: a single root command, persistent flags
// registered in init(), explicit os.Exit codes.
//
// Usage:
//
//	re -m MODE -e ENCODING PATTERN STRING
//	re -m MODE -e ENCODING -f queries.json
//
// Exit codes follow spec.md §6: 0 on a match (single-query form), 2 on a
// usage error (bad mode/encoding, missing arguments, unreadable query
// file, or a pattern that fails to compile). A clean "no match" is not a
// usage error; it exits 1, the grep convention, since spec.md does not
// reserve that code for anything else.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coregx/memoregex"
	"github.com/coregx/memoregex/config"
	"github.com/coregx/memoregex/internal/query"
	"github.com/coregx/memoregex/stats"
)

var command = &cobra.Command{
	Use:  "re [pattern] [string]",
	Args: cobra.MaximumNArgs(2),
	Run:  run,
}

func init() {
	command.PersistentFlags().StringP("mode", "m", "none", "memo vertex selection: none, full, in-degree-gt1, loop-dest")
	command.PersistentFlags().StringP("encoding", "e", "dense", "memo table encoding: dense, negative, rle")
	command.PersistentFlags().Bool("rle-tuned", false, "tune RLE run length from the language-length analyzer")
	command.PersistentFlags().StringP("query-file", "f", "", "JSON query file ({\"pattern\":...,\"input\":...} or an array of those)")
}

func run(cmd *cobra.Command, args []string) {
	modeStr, _ := cmd.PersistentFlags().GetString("mode")
	encStr, _ := cmd.PersistentFlags().GetString("encoding")
	rleTuned, _ := cmd.PersistentFlags().GetBool("rle-tuned")
	queryFile, _ := cmd.PersistentFlags().GetString("query-file")

	mode, err := config.ParseMemoMode(modeStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	enc, err := config.ParseMemoEncoding(encStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg := config.Config{MemoMode: mode, MemoEncoding: enc, RLETuned: rleTuned}

	if queryFile != "" {
		runQueryFile(cfg, queryFile)
		return
	}

	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "re: expected PATTERN and STRING, or -f queryFile.json")
		os.Exit(2)
	}
	if !runOne(cfg, args[0], args[1]) {
		os.Exit(1)
	}
}

func runQueryFile(cfg config.Config, path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer f.Close()

	queries, err := query.Load(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	anyMatched := false
	for _, q := range queries {
		if runOne(cfg, q.Pattern, q.Input) {
			anyMatched = true
		}
	}
	if !anyMatched {
		os.Exit(1)
	}
}

func runOne(cfg config.Config, pattern, input string) bool {
	re, err := memoregex.Compile(pattern, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	result, report := re.Report([]byte(input))

	if err := stats.WriteHuman(os.Stdout, report); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if err := stats.WriteJSON(os.Stderr, report); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if result.Matched {
		enc := json.NewEncoder(os.Stdout)
		_ = enc.Encode(map[string]any{"matched": true, "captures": result.Captures})
	}
	return result.Matched
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
