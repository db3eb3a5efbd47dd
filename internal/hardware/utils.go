package hardware

import "macropad-service/internal/display"

// lightBytes flattens the brightness-scaled lights of f into an RGB byte
// stream.
func lightBytes(f display.Frame) []byte {
	out := make([]byte, 0, display.Lights*3)
	for i := 0; i < display.Lights; i++ {
		c := f.Scaled(i)
		out = append(out, c[0], c[1], c[2])
	}
	return out
}
