// Package pairing reconciles the region and localisation collections into
// exact one-to-one pairs.
//
// A region file with stem S pairs with the localisation file whose stem is
// "loc_" + S, compared case-sensitively after stripping the extension. A key
// pairs only when exactly one region and exactly one localisation file carry
// it; anything else is left out without error.
package pairing
