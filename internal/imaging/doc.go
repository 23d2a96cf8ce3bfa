// Package imaging turns decoded images into single-channel intensity buffers
// and resamples them to a common size before they are correlated.
//
// Gray is the only buffer type the matching packages understand. FromImage
// applies the ITU-R BT.601 luma weights (0.299, 0.587, 0.114) to 8-bit
// channels and ignores alpha, so a buffer built here carries the same values a
// grayscale image load would. Resizing always returns a new buffer; inputs are
// never modified.
//
// Area interpolation is implemented here because it is the filter suited to
// shrinking large gallery captures without aliasing. The bilinear, bicubic and
// lanczos3 filters delegate to github.com/nfnt/resize.
package imaging
