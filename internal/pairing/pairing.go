package pairing

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"
)

// LocalisationPrefix marks the localisation counterpart of a region stem.
const LocalisationPrefix = "loc_"

// Pair associates a region asset with its localisation counterpart. Key is
// the region stem, decoded by package assetkey for display.
type Pair struct {
	RegionFile       string `json:"region_file"`
	LocalisationFile string `json:"localisation_file"`
	Key              string `json:"key"`
}

// Stem strips the final extension from a file name.
func Stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Reconcile returns the exact pairs in region order. A key pairs only when
// exactly one region and exactly one localisation file carry it, so no file
// appears in more than one Pair.
func Reconcile(regions, localisations []string) []Pair {
	matches := make(map[string][]string, len(localisations))
	for _, loc := range localisations {
		s := Stem(loc)
		matches[s] = append(matches[s], loc)
	}
	regionCount := make(map[string]int, len(regions))
	for _, reg := range regions {
		regionCount[Stem(reg)]++
	}
	pairs := make([]Pair, 0, len(regions))
	for _, reg := range regions {
		key := Stem(reg)
		if regionCount[key] != 1 {
			continue
		}
		found := matches[LocalisationPrefix+key]
		if len(found) != 1 {
			continue
		}
		pairs = append(pairs, Pair{RegionFile: reg, LocalisationFile: found[0], Key: key})
	}
	return pairs
}

// Filter keeps the pairs whose key, region file or localisation file contains
// query, ignoring case. A blank query keeps everything.
func Filter(pairs []Pair, query string) []Pair {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(pairs)
	}
	var out []Pair
	for _, p := range pairs {
		if strings.Contains(strings.ToLower(p.Key), q) ||
			strings.Contains(strings.ToLower(p.RegionFile), q) ||
			strings.Contains(strings.ToLower(p.LocalisationFile), q) {
			out = append(out, p)
		}
	}
	return out
}

// SortByKey orders pairs by key in place.
func SortByKey(pairs []Pair) {
	slices.SortStableFunc(pairs, func(a, b Pair) int {
		return cmp.Compare(a.Key, b.Key)
	})
}

// Unpaired wraps every localisation file as a pair with no region file. Key
// is the stem without the localisation prefix. It serves callers that rank
// the whole localisation collection instead of the reconciled pairs.
func Unpaired(localisations []string) []Pair {
	pairs := make([]Pair, 0, len(localisations))
	for _, loc := range localisations {
		pairs = append(pairs, Pair{
			LocalisationFile: loc,
			Key:              strings.TrimPrefix(Stem(loc), LocalisationPrefix),
		})
	}
	return pairs
}
