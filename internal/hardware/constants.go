package hardware

const (
	// Consumer is the label the GPIO lines are requested under.
	Consumer = "macropad-service"

	// GpioKeysInput is the evdev node of the gpio-keys overlay the twelve
	// switches are wired to.
	GpioKeysInput = "/dev/input/by-path/platform-gpio-keys-event"

	DefaultGPIOChip  = "gpiochip0"
	DefaultEncoderA  = 17
	DefaultEncoderB  = 27
	DefaultEncoderSw = 22

	// DefaultI2CBus and DefaultSPIPort are periph registry names; empty
	// selects the first bus found.
	DefaultI2CBus  = ""
	DefaultSPIPort = ""

	// EncoderDivisor is the number of quadrature transitions per detent.
	EncoderDivisor = 4

	keyEventQueue = 32

	screenWidth  = 128
	screenHeight = 64
	lineHeight   = 12
	baseline     = 9
)

// Config selects the devices the Linux hardware layer opens.
type Config struct {
	InputDevice string
	GPIOChip    string
	EncoderA    int
	EncoderB    int
	EncoderSw   int
	I2CBus      string
	SPIPort     string
}

// DefaultConfig matches the reference wiring on a Raspberry Pi header.
func DefaultConfig() Config {
	return Config{
		InputDevice: GpioKeysInput,
		GPIOChip:    DefaultGPIOChip,
		EncoderA:    DefaultEncoderA,
		EncoderB:    DefaultEncoderB,
		EncoderSw:   DefaultEncoderSw,
		I2CBus:      DefaultI2CBus,
		SPIPort:     DefaultSPIPort,
	}
}
