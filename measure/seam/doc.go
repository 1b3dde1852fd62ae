// Package seam measures discontinuities at the joins of a waveform that
// was generated in independent segments.
//
// Segmented sampling concatenates chains that never saw each other, so the
// sample on either side of a join can differ by more than the local signal
// would suggest, which is heard as a click. [Analyze] reports, for every
// join, the size of the step relative to the surrounding sample-to-sample
// variation and the share of high-frequency energy in a windowed frame
// (Hann by default) centered on the join, next to the same share measured
// away from joins.
package seam
