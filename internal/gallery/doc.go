// Package gallery turns reconciled pairs into ranking candidates by decoding
// the localisation half of each pair. Candidates are identified by their
// localisation file name. An image that fails to decode is logged, recorded
// as a Failure and left out; the remaining candidates are still returned.
package gallery
