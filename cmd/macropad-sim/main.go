package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"macropad-service/internal/config"
	"macropad-service/internal/core"
	"macropad-service/internal/link"
	"macropad-service/internal/logger"
	"macropad-service/internal/sim"
)

func main() {
	var logLevel int
	flag.IntVar(&logLevel, "log", 3, "Log level (0=NONE, 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG)")
	logFile := flag.String("logfile", "macropad-sim.log", "File the simulator logs to")
	storePath := flag.String("store", "macropad-sim.json", "Profile store: a JSON file path or sqlite:<path>")
	listen := flag.String("listen", "127.0.0.1:7000", "TCP address the host connects to")
	tick := flag.Duration("tick", core.DefaultTickInterval, "Control loop interval")
	flag.Parse()

	// The terminal belongs to the UI, so logs go to a file.
	f, err := tea.LogToFile(*logFile, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	l := logger.NewLogger(log.Default(), logger.LogLevel(logLevel))
	if err := run(*storePath, *listen, *tick, l); err != nil {
		fmt.Fprintln(os.Stderr, err)
		l.Fatalf("%v", err)
	}
}

func run(storePath, listen string, tick time.Duration, l *logger.Logger) error {
	backend, err := config.OpenBackend(storePath)
	if err != nil {
		return fmt.Errorf("failed to open profile store: %w", err)
	}
	store, err := config.Open(backend, l.WithTag("Store"))
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	defer store.Close()

	host, err := link.ListenTCP(listen, l.WithTag("TCP"))
	if err != nil {
		return err
	}
	defer host.Close()

	pad := sim.NewPad()
	program := tea.NewProgram(sim.NewModel(pad), tea.WithAltScreen())
	pad.Attach(program)

	macroPad := core.NewMacroPad(store, pad, pad, host, nil, l)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var runErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = macroPad.Run(ctx, tick)
		if runErr != nil {
			program.Quit()
		}
	}()

	_, uiErr := program.Run()
	cancel()
	wg.Wait()

	if runErr != nil {
		return fmt.Errorf("failed to start macro pad: %w", runErr)
	}
	return uiErr
}
