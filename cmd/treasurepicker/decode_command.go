package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"treasurepicker/internal/assetkey"
	"treasurepicker/internal/pairing"
)

func newDecodeCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "decode <key-or-file>...",
		Short:       "Decode asset keys into region name and directions",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := make([]assetkey.Key, 0, len(args))
			for _, arg := range args {
				keys = append(keys, assetkey.Decode(keyFromArg(arg)))
			}
			if asJSON {
				return writeJSON(cmd, keys)
			}

			out := cmd.OutOrStdout()
			for _, k := range keys {
				fmt.Fprintf(out, "%s: %s\n", k.Raw, k.Display())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

// keyFromArg accepts either a bare key or a file name, stripping the
// extension and the localisation prefix from the latter.
func keyFromArg(arg string) string {
	if pairing.Stem(arg) == arg {
		return arg
	}
	return strings.TrimPrefix(pairing.Stem(filepath.Base(arg)), pairing.LocalisationPrefix)
}
