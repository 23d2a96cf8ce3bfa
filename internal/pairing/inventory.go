package pairing

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"treasurepicker/internal/imaging"
)

// Inventory is the content of both collections and the pairs derived from them.
type Inventory struct {
	Regions       []string `json:"regions"`
	Localisations []string `json:"localisations"`
	Pairs         []Pair   `json:"pairs"`
}

// Summary renders the collection counts, e.g. "Regions: 3 | Loc: 4 | Paires: 2".
func (inv Inventory) Summary() string {
	return fmt.Sprintf("Regions: %d | Loc: %d | Paires: %d", len(inv.Regions), len(inv.Localisations), len(inv.Pairs))
}

// ListImages returns the sorted names of image files directly inside dir.
// A missing directory yields an empty list.
func ListImages(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list images in %q: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imaging.IsImageFile(entry.Name(), exts) {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// Build lists both directories and reconciles them.
func Build(regionDir, localisationDir string, exts []string) (Inventory, error) {
	regions, err := ListImages(regionDir, exts)
	if err != nil {
		return Inventory{}, err
	}
	localisations, err := ListImages(localisationDir, exts)
	if err != nil {
		return Inventory{}, err
	}
	return Inventory{
		Regions:       regions,
		Localisations: localisations,
		Pairs:         Reconcile(regions, localisations),
	}, nil
}
