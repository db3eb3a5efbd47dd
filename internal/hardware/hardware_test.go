package hardware

import (
	"encoding/binary"
	"image"
	"image/color"
	"testing"

	"macropad-service/internal/config"
	"macropad-service/internal/display"
	"macropad-service/internal/keys"
)

func rawEvent(typ, code uint16, value int32) []byte {
	buf := make([]byte, inputEventSize)
	off := inputEventSize - 8
	binary.LittleEndian.PutUint16(buf[off:], typ)
	binary.LittleEndian.PutUint16(buf[off+2:], code)
	binary.LittleEndian.PutUint32(buf[off+4:], uint32(value))
	return buf
}

func TestKeyEventDecoding(t *testing.T) {
	tests := []struct {
		name   string
		raw    []byte
		want   keys.Event
		wantOK bool
	}{
		{"press select", rawEvent(evKey, uint16(keys.PinKey2), 1), keys.Event{Key: keys.Select, Pressed: true}, true},
		{"release action 9", rawEvent(evKey, uint16(keys.PinKey12), 0), keys.Event{Key: keys.Action9}, true},
		{"autorepeat", rawEvent(evKey, uint16(keys.PinKey2), 2), keys.Event{}, false},
		{"sync event", rawEvent(0, 0, 0), keys.Event{}, false},
		{"foreign key", rawEvent(evKey, 30, 1), keys.Event{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := decodeInputEvent(tt.raw)
			if !ok {
				t.Fatal("Expected record to decode")
			}
			got, ok := keyEvent(raw)
			if ok != tt.wantOK {
				t.Fatalf("Expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && (!got.Key.Equal(tt.want.Key) || got.Pressed != tt.want.Pressed) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}

	if _, ok := decodeInputEvent(make([]byte, 3)); ok {
		t.Error("Expected short record to be rejected")
	}
}

func TestPressedIn(t *testing.T) {
	state := make([]byte, keyStateLen)
	for _, pin := range []keys.Pin{keys.PinKey1, keys.PinKey7} {
		state[pin/8] |= 1 << (pin % 8)
	}

	held := pressedIn(state)
	if len(held) != 2 || !held[0].Equal(keys.Previous) || !held[1].Equal(keys.Action4) {
		t.Errorf("Expected previous and action_4, got %v", held)
	}
}

func TestQuadrature(t *testing.T) {
	cycle := []uint8{0b00, 0b01, 0b11, 0b10, 0b00}

	raw := 0
	for i := 1; i < len(cycle); i++ {
		raw += quadratureStep(cycle[i-1], cycle[i])
	}
	if raw != -EncoderDivisor {
		t.Errorf("Expected %d for a full cycle, got %d", -EncoderDivisor, raw)
	}

	raw = 0
	for i := len(cycle) - 1; i > 0; i-- {
		raw += quadratureStep(cycle[i], cycle[i-1])
	}
	if raw != EncoderDivisor {
		t.Errorf("Expected %d for the reverse cycle, got %d", EncoderDivisor, raw)
	}

	if step := quadratureStep(0b00, 0b11); step != 0 {
		t.Errorf("Expected invalid transition to count 0, got %d", step)
	}
}

func TestDetents(t *testing.T) {
	tests := map[int]int{0: 0, 3: 0, 4: 1, 9: 2, -1: -1, -4: -1, -5: -2}
	for raw, want := range tests {
		if got := detents(raw); got != want {
			t.Errorf("detents(%d): expected %d, got %d", raw, want, got)
		}
	}
}

func TestLightBytes(t *testing.T) {
	var f display.Frame
	f.Colors[0] = config.Color{200, 100, 0}
	f.Colors[display.Lights-1] = config.Color{255, 255, 255}
	f.Brightness = 0.5

	got := lightBytes(f)
	if len(got) != display.Lights*3 {
		t.Fatalf("Expected %d bytes, got %d", display.Lights*3, len(got))
	}
	if got[0] != 100 || got[1] != 50 || got[2] != 0 {
		t.Errorf("Expected first light scaled to [100 50 0], got %v", got[:3])
	}
	if last := got[len(got)-3:]; last[0] != 128 {
		t.Errorf("Expected last light scaled to 128, got %v", last)
	}
}

func TestCanvasDrawLines(t *testing.T) {
	c := newCanvas(image.Rect(0, 0, screenWidth, screenHeight))

	c.drawLines([]string{"", "", "", "", ""})
	if lit := litPixels(c); lit != 0 {
		t.Errorf("Expected blank screen, got %d lit pixels", lit)
	}

	c.drawLines([]string{"HOME: 1", "", "", "", ""})
	if lit := litPixels(c); lit == 0 {
		t.Error("Expected text to light pixels")
	}
	for y := lineHeight + 1; y < screenHeight; y++ {
		for x := 0; x < screenWidth; x++ {
			if c.img.BitAt(x, y) {
				t.Fatalf("Expected only the first row drawn, pixel %d,%d lit", x, y)
			}
		}
	}

	c.SetPixel(-1, 500, color.RGBA{R: 255, A: 255})
}

func litPixels(c *canvas) int {
	n := 0
	for _, b := range c.img.Pix {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return n
}
