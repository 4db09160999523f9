// Package buffer provides the multi-channel PCM buffer passed between
// processing stages, plus a float64 scratch pool for allocation-friendly
// inner loops. DSP functions accept raw [][]float32 channel slices; Audio
// bundles them with their sample rate and validates shape.
package buffer
