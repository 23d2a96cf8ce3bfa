// Package assetkey decodes asset keys such as "pontaudy_sud_est_x2" into a
// base name and an ordered list of compass directions.
//
// Tokens are read right to left: an optional trailing "x2" doubles the last
// direction only, then "nord", "sud", "est" and "ouest" tokens are collected
// until the first other token. What remains is the base name; when nothing
// remains the whole key is used. Decoding never fails.
package assetkey
