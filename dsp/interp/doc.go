// Package interp provides fractional-position interpolation primitives used
// by the time-stretcher.
//
// Available methods, from cheapest to highest quality:
//
//   - [Linear2]:  2-point linear interpolation
//   - [Hermite4]: 4-point cubic Hermite
//
// [At] evaluates either method at a fractional read position inside a
// slice, clamping neighbour indices to the slice bounds.
package interp
