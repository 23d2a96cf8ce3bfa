// Command treasurepicker matches a treasure-map screenshot against the
// localisation gallery and inspects the region/localisation asset pairs.
package main
