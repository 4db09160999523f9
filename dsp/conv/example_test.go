package conv_test

import (
	"fmt"

	"github.com/cwbudde/slowverb/dsp/conv"
)

func ExampleConvolveMode() {
	out, _ := conv.ConvolveMode([]float64{1, 0, 0, 0}, []float64{0, 0.5, 0.25}, conv.ModeCausal)
	fmt.Println(out)
	// Output:
	// [0 0.5 0.25 0]
}
