// Package design provides RBJ-style biquad coefficient designers.
//
// The functions produce coefficients consumable by dsp/filter/biquad. Out of
// range frequencies or sample rates yield zero coefficients, which filter
// every input to silence.
package design
