// Package loudness implements EBU R128 / ITU-R BS.1770 loudness metering.
//
// [Meter] is a streaming meter fed one frame at a time. [Measure] runs a
// meter over a whole [buffer.Audio] and returns the integrated loudness
// together with the loudest momentary and short-term readings.
//
// Channel weighting is 1 for every channel; surround weights are not
// applied. Peaks are sample peaks, not oversampled true peaks.
package loudness
