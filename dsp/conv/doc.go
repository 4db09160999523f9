// Package conv provides linear convolution of a signal with a fixed kernel.
//
// Two strategies are offered:
//
//   - Direct: O(N*M) time-domain convolution, best for short kernels
//   - Overlap-add (OLA): FFT-based block convolution for long kernels
//
// # Usage
//
// For one-shot convolution:
//
//	full, err := conv.Convolve(signal, kernel)
//	head, err := conv.ConvolveMode(signal, kernel, conv.ModeCausal)
//
// For repeated convolution with the same kernel, create a reusable convolver:
//
//	c, err := conv.NewOverlapAdd(kernel, blockSize)
//	result, err := c.ProcessCausal(signal)
//
// ModeCausal keeps the leading len(signal) samples of the full result, which
// is the output of a causal filter run over the signal.
package conv
