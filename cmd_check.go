package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/sourmash-bio/revindex/internal/store"
)

func newCmd_Check() *cli.Command {
	var output string
	var quick, colors bool

	return &cli.Command{
		Name:        "check",
		Usage:       "Report statistics about an index.",
		Description: "Reports per-CF key/value byte totals, key counts, and (unless --quick) a posting-length histogram and distinct-dataset count.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Usage:       "path to the index",
				Required:    true,
				Destination: &output,
			},
			&cli.BoolFlag{
				Name:        "quick",
				Usage:       "skip the posting-length histogram and distinct-dataset count",
				Destination: &quick,
			},
			&cli.BoolFlag{
				Name:        "colors",
				Usage:       "the index was built with --colors",
				Destination: &colors,
			},
		},
		Action: func(c *cli.Context) error {
			facade, err := store.Open(output, colors, true)
			if err != nil {
				return err
			}
			defer facade.Close()

			stats, err := facade.Check(quick)
			if err != nil {
				return fmt.Errorf("check: %w", err)
			}

			fmt.Printf("hashes:     %d keys, %s\n", stats.Hashes.Keys, humanize.Bytes(uint64(stats.Hashes.Bytes)))
			if colors {
				fmt.Printf("colors:     %d keys, %s\n", stats.Colors.Keys, humanize.Bytes(uint64(stats.Colors.Bytes)))
			}
			fmt.Printf("signatures: %d keys, %s\n", stats.Signatures.Keys, humanize.Bytes(uint64(stats.Signatures.Bytes)))

			if quick {
				return nil
			}

			fmt.Printf("distinct datasets referenced: %d\n", stats.DistinctDatasets)
			fmt.Println("posting-length histogram:")
			for length, count := range stats.PostingLengthHistogram {
				fmt.Printf("  %d members: %d hashes\n", length, count)
			}
			return nil
		},
	}
}
