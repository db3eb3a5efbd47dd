package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"macropad-service/internal/config"
	"macropad-service/internal/core"
	"macropad-service/internal/hardware"
	"macropad-service/internal/hid"
	"macropad-service/internal/link"
	"macropad-service/internal/logger"
	"macropad-service/internal/messaging"
)

const defaultStore = "/var/lib/macropad/db.json"

func main() {
	// Service log level
	var serviceLogLevel int
	flag.IntVar(&serviceLogLevel, "log", 3, "Service log level (0=NONE, 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG)")

	storePath := flag.String("store", defaultStore, "Profile store: a JSON file path or sqlite:<path>")
	serialPort := flag.String("serial", link.DefaultSerialPort, "Serial device of the host link")
	baud := flag.Int("baud", link.DefaultBaud, "Serial baud rate")
	hidDevice := flag.String("hid", hid.DefaultDevice, "HID keyboard gadget device")
	redisAddr := flag.String("redis", "", "Redis address for the state mirror (empty disables it)")
	tick := flag.Duration("tick", core.DefaultTickInterval, "Control loop interval")

	hw := hardware.DefaultConfig()
	flag.StringVar(&hw.InputDevice, "input", hw.InputDevice, "evdev device of the key switches")
	flag.StringVar(&hw.GPIOChip, "gpiochip", hw.GPIOChip, "GPIO chip of the encoder")
	flag.IntVar(&hw.EncoderA, "enc-a", hw.EncoderA, "Encoder phase A line")
	flag.IntVar(&hw.EncoderB, "enc-b", hw.EncoderB, "Encoder phase B line")
	flag.IntVar(&hw.EncoderSw, "enc-sw", hw.EncoderSw, "Encoder switch line")
	flag.StringVar(&hw.I2CBus, "i2c", hw.I2CBus, "I2C bus of the display")
	flag.StringVar(&hw.SPIPort, "spi", hw.SPIPort, "SPI port of the key lights")

	flag.Parse()

	// Create standard logger with appropriate format
	var stdLogger *log.Logger
	if os.Getenv("INVOCATION_ID") != "" {
		// Running under systemd, use minimal format
		stdLogger = log.New(os.Stdout, "", 0)
	} else {
		// Running interactively, use timestamps
		stdLogger = log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds|log.Lmsgprefix)
	}

	// Create leveled logger
	l := logger.NewLogger(stdLogger, logger.LogLevel(serviceLogLevel))

	l.Infof("Starting macro pad service...")

	opts := options{
		storePath:  *storePath,
		serialPort: *serialPort,
		baud:       *baud,
		hidDevice:  *hidDevice,
		redisAddr:  *redisAddr,
		tick:       *tick,
		hardware:   hw,
	}
	if err := run(opts, l); err != nil {
		l.Fatalf("%v", err)
	}
	l.Infof("Shutdown complete")
}

type options struct {
	storePath  string
	serialPort string
	baud       int
	hidDevice  string
	redisAddr  string
	tick       time.Duration
	hardware   hardware.Config
}

// run wires the pad and blocks until SIGINT or SIGTERM. Deferred cleanup
// runs before main decides the exit status.
func run(opts options, l *logger.Logger) error {
	backend, err := config.OpenBackend(opts.storePath)
	if err != nil {
		return fmt.Errorf("failed to open profile store: %w", err)
	}
	store, err := config.Open(backend, l.WithTag("Store"))
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	defer store.Close()

	serial, err := link.OpenSerial(opts.serialPort, opts.baud, l.WithTag("Serial"))
	if err != nil {
		return fmt.Errorf("failed to open host link: %w", err)
	}
	defer serial.Close()

	var keyboard core.Keyboard
	if gadget, err := hid.OpenGadget(opts.hidDevice); err != nil {
		l.Warnf("Keystrokes disabled: %v", err)
	} else {
		defer gadget.Close()
		keyboard = gadget
	}

	var mirror core.Mirror
	if opts.redisAddr != "" {
		r := messaging.NewRedisMirror(opts.redisAddr, l.WithTag("Redis"))
		if err := r.Connect(); err != nil {
			l.Warnf("Redis mirror disabled: %v", err)
			r.Close()
		} else {
			r.StartListening()
			defer r.Close()
			mirror = r
		}
	}

	io := hardware.NewLinuxHardwareIO(opts.hardware, l)
	pad := core.NewMacroPad(store, io, keyboard, serial, mirror, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		l.Infof("Received signal %v, shutting down...", sig)
		cancel()
	}()

	if err := pad.Run(ctx, opts.tick); err != nil {
		return fmt.Errorf("failed to start macro pad: %w", err)
	}
	return nil
}
