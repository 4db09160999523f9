// Package biquad provides the second-order IIR section used for
// K-weighting in loudness measurement.
//
// A [Section] implements Direct Form II Transposed processing for one
// second-order section defined by [Coefficients]. Coefficient design lives
// in dsp/filter/design.
package biquad
