package hardware

import (
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"macropad-service/internal/display"
)

var textFont = &proggy.TinySZ8pt7b

// canvas lets tinyfont draw into a 1-bit framebuffer.
type canvas struct {
	img *image1bit.VerticalLSB
}

var _ drivers.Displayer = (*canvas)(nil)

func newCanvas(bounds image.Rectangle) *canvas {
	return &canvas{img: image1bit.NewVerticalLSB(bounds)}
}

func (c *canvas) Size() (x, y int16) {
	b := c.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (c *canvas) SetPixel(x, y int16, col color.RGBA) {
	if !image.Pt(int(x), int(y)).In(c.img.Bounds()) {
		return
	}
	c.img.SetBit(int(x), int(y), image1bit.Bit(col.R|col.G|col.B != 0))
}

func (c *canvas) Display() error { return nil }

func (c *canvas) clear() {
	for i := range c.img.Pix {
		c.img.Pix[i] = 0
	}
}

// drawLines renders the text rows of a frame, one row per lineHeight.
func (c *canvas) drawLines(lines []string) {
	c.clear()
	w, _ := c.Size()
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for row, text := range lines {
		_, width := tinyfont.LineWidth(textFont, text)
		x := (int16(w) - int16(width)) / 2
		if x < 0 {
			x = 0
		}
		tinyfont.WriteLine(c, textFont, x, int16(baseline+row*lineHeight), text, white)
	}
}

// Screen is the SSD1306 OLED on the I2C bus.
type Screen struct {
	bus    i2c.BusCloser
	dev    *ssd1306.Dev
	canvas *canvas
}

func OpenScreen(busName string) (*Screen, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %q: %w", busName, err)
	}
	opts := ssd1306.DefaultOpts
	opts.W, opts.H = screenWidth, screenHeight
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	return &Screen{bus: bus, dev: dev, canvas: newCanvas(dev.Bounds())}, nil
}

func (s *Screen) Show(f display.Frame) error {
	s.canvas.drawLines(f.Lines[:])
	if err := s.dev.Draw(s.dev.Bounds(), s.canvas.img, image.Point{}); err != nil {
		return fmt.Errorf("failed to draw display: %w", err)
	}
	return nil
}

func (s *Screen) Close() {
	s.dev.Halt()
	s.bus.Close()
}
