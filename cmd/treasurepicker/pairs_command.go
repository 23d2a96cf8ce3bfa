package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"treasurepicker/internal/assetkey"
	"treasurepicker/internal/pairing"
)

type pairView struct {
	Key              string `json:"key"`
	RegionFile       string `json:"region_file"`
	LocalisationFile string `json:"localisation_file"`
	BaseName         string `json:"base_name"`
	Directions       string `json:"directions,omitempty"`
}

type pairsResult struct {
	Regions       int        `json:"regions"`
	Localisations int        `json:"localisations"`
	Paired        int        `json:"paired"`
	Query         string     `json:"query,omitempty"`
	Pairs         []pairView `json:"pairs"`
}

func newPairsCommand(ctx *commandContext) *cobra.Command {
	var search string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "List the exact region/localisation pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			inv, err := pairing.Build(cfg.Paths.RegionsDir, cfg.Paths.LocalisationDir, cfg.Gallery.Extensions)
			if err != nil {
				return err
			}

			pairs := pairing.Filter(inv.Pairs, search)
			pairing.SortByKey(pairs)

			result := pairsResult{
				Regions:       len(inv.Regions),
				Localisations: len(inv.Localisations),
				Paired:        len(inv.Pairs),
				Query:         search,
				Pairs:         make([]pairView, 0, len(pairs)),
			}
			for _, p := range pairs {
				key := assetkey.Decode(p.Key)
				result.Pairs = append(result.Pairs, pairView{
					Key:              p.Key,
					RegionFile:       p.RegionFile,
					LocalisationFile: p.LocalisationFile,
					BaseName:         key.BaseName,
					Directions:       key.Summary(),
				})
			}

			if asJSON {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, inv.Summary())
			if len(result.Pairs) == 0 {
				if search != "" {
					fmt.Fprintf(out, "No pairs match %q\n", search)
				} else {
					fmt.Fprintln(out, "No pairs found")
				}
				return nil
			}
			rows := make([][]string, 0, len(result.Pairs))
			for i, p := range result.Pairs {
				rows = append(rows, []string{strconv.Itoa(i + 1), p.BaseName, p.Directions, p.RegionFile, p.LocalisationFile})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Region", "Directions", "Region File", "Localisation File"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive filter on key and file names")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
