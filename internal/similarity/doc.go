// Package similarity scores two equally sized intensity buffers with the
// normalized cross-correlation coefficient: the cosine of the angle between
// the two images once each has been mean-centred. A score of 1 is a perfect
// linear match of intensity patterns, 0 is no linear relationship and -1 is an
// inverted pattern.
//
// The measure is alignment sensitive. Both buffers must already show the same
// crop in the same orientation; callers resize the candidate to the reference
// before scoring.
package similarity
