package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/sourmash-bio/revindex/internal/minhash"
	"github.com/sourmash-bio/revindex/internal/store"
)

func newCmd_Index() *cli.Command {
	var siglist, output string
	var ksize uint
	var threshold float64
	var scaled uint64
	var colors bool

	return &cli.Command{
		Name:        "index",
		Usage:       "Build an index from a list of signature files.",
		Description: "Builds an index at --output from the newline-delimited list of signature file paths in --siglist.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "siglist",
				Usage:       "newline-delimited list of signature file paths",
				Required:    true,
				Destination: &siglist,
			},
			&cli.StringFlag{
				Name:        "output",
				Usage:       "path to create the index at",
				Required:    true,
				Destination: &output,
			},
			&cli.UintFlag{
				Name:        "ksize",
				Usage:       "k-mer size",
				Value:       31,
				Destination: &ksize,
			},
			&cli.Float64Flag{
				Name:        "threshold",
				Usage:       "minimum sketch size to index (sketches below this are stored as empty)",
				Value:       0.85,
				Destination: &threshold,
			},
			&cli.Uint64Flag{
				Name:        "scaled",
				Usage:       "scaled factor for the sketch template",
				Value:       1000,
				Destination: &scaled,
			},
			&cli.BoolFlag{
				Name:        "colors",
				Usage:       "build a color-compacted index instead of a plain one",
				Destination: &colors,
			},
		},
		Action: func(c *cli.Context) error {
			paths, err := readSiglist(siglist)
			if err != nil {
				return err
			}
			klog.Infof("loaded %d signature paths from siglist", len(paths))

			template := minhash.BuildTemplate(uint32(ksize), scaled)

			facade, err := store.Open(output, colors, false)
			if err != nil {
				return err
			}
			defer facade.Close()

			opts := store.BuildOptions{Template: template, Threshold: threshold}
			if err := facade.Index(c.Context, paths, opts); err != nil {
				return fmt.Errorf("indexing: %w", err)
			}

			if err := facade.CompactColors(); err != nil {
				return fmt.Errorf("compacting colors: %w", err)
			}

			if err := facade.Flush(); err != nil {
				return err
			}
			klog.Infof("index built at %s", output)
			return nil
		},
	}
}
