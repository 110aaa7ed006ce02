package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/sourmash-bio/revindex/internal/gather"
	"github.com/sourmash-bio/revindex/internal/minhash"
	"github.com/sourmash-bio/revindex/internal/store"
)

func newCmd_Search() *cli.Command {
	var query, index, output string
	var ksize uint
	var scaled uint64
	var thresholdBp uint64
	var colors, doGather bool

	return &cli.Command{
		Name:        "search",
		Usage:       "Search an index for datasets sharing hashes with a query.",
		Description: "Emits matches whose count meets threshold_bp / scaled. With --gather, emits a minimum-cover decomposition instead.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "query",
				Usage:       "query signature file",
				Required:    true,
				Destination: &query,
			},
			&cli.StringFlag{
				Name:        "index",
				Usage:       "path to the index",
				Required:    true,
				Destination: &index,
			},
			&cli.UintFlag{
				Name:        "ksize",
				Value:       31,
				Destination: &ksize,
			},
			&cli.Uint64Flag{
				Name:        "scaled",
				Value:       1000,
				Destination: &scaled,
			},
			&cli.Uint64Flag{
				Name:        "threshold_bp",
				Value:       50000,
				Destination: &thresholdBp,
			},
			&cli.StringFlag{
				Name:        "output",
				Usage:       "write results here instead of stdout",
				Destination: &output,
			},
			&cli.BoolFlag{
				Name:        "colors",
				Usage:       "the index was built with --colors",
				Destination: &colors,
			},
			&cli.BoolFlag{
				Name:        "gather",
				Usage:       "run the gather (minimum-cover) decomposition instead of plain containment search",
				Destination: &doGather,
			},
		},
		Action: func(c *cli.Context) error {
			template := minhash.BuildTemplate(uint32(ksize), scaled)

			sig, err := minhash.LoadSignatureFile(query)
			if err != nil {
				return err
			}
			querySketch, err := minhash.PrepareSketch(sig, template)
			if err != nil {
				return fmt.Errorf("query sketch incompatible with template: %w", err)
			}

			thresholdHashes := int(thresholdBp / scaled)

			facade, err := store.Open(index, colors, true)
			if err != nil {
				return err
			}
			defer facade.Close()

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			if doGather {
				if err := facade.PrepareGatherCounters(); err != nil {
					return fmt.Errorf("gather: %w", err)
				}
				results, err := gather.Run(facade, querySketch, template, thresholdHashes)
				if err != nil {
					return err
				}
				klog.Infof("gather produced %d results", len(results))
				for _, r := range results {
					fmt.Fprintf(out, "rank=%d name=%s f_match=%.4f f_orig_query=%.4f intersect_bp=%d remaining_bp=%d\n",
						r.GatherResultRank, r.MatchName, r.FMatch, r.FOrigQuery, r.IntersectBp, r.RemainingBp)
				}
				return nil
			}

			ctr, err := facade.CounterForQuery(querySketch.Hashes)
			if err != nil {
				return err
			}
			matches, err := facade.MatchesFromCounter(ctr, thresholdHashes)
			if err != nil {
				return err
			}
			klog.Infof("found %d matches", len(matches))
			for _, m := range matches {
				fmt.Fprintf(out, "%s\t%d\n", m.DisplayName, m.Count)
			}
			return nil
		},
	}
}
