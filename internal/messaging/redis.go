package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"macropad-service/internal/logger"
	"macropad-service/internal/types"

	"github.com/redis/go-redis/v9"
)

const (
	// StateHash holds the current view, mode and page.
	StateHash = "macropad"
	// StateChannel announces changed StateHash fields.
	StateChannel = "macropad"
	// EventChannel carries a copy of every frame sent to the host.
	EventChannel = "macropad:events"
	// CommandList is popped for commands in the host's line format.
	CommandList = "macropad:command"

	commandQueueSize = 16
)

// commandLine normalises a command pushed to CommandList into a complete
// inbound frame.
func commandLine(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.HasSuffix(value, ";") {
		return value
	}
	return value + ";"
}

// RedisMirror publishes the pad's state to Redis and accepts commands
// pushed to a list, so tools on the device can watch and drive the pad.
type RedisMirror struct {
	client   *redis.Client
	logger   *logger.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	commands chan string
}

func NewRedisMirror(addr string, l *logger.Logger) *RedisMirror {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisMirror{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   0,
		}),
		logger:   l,
		ctx:      ctx,
		cancel:   cancel,
		commands: make(chan string, commandQueueSize),
	}
}

func (r *RedisMirror) Connect() error {
	r.logger.Infof("Attempting to connect to Redis at %s", r.client.Options().Addr)

	if err := r.client.Ping(r.ctx).Err(); err != nil {
		return fmt.Errorf("Redis connection failed: %w", err)
	}
	r.logger.Infof("Successfully connected to Redis")
	return nil
}

// StartListening starts the command list listener.
func (r *RedisMirror) StartListening() {
	r.wg.Add(1)
	go r.listCommandListener(CommandList)
}

func (r *RedisMirror) listCommandListener(key string) {
	defer r.wg.Done()
	r.logger.Infof("Starting list command listener for %s", key)

	for {
		// BRPOP with a short timeout so cancellation is noticed
		result, err := r.client.BRPop(r.ctx, 5*time.Second, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if r.ctx.Err() != nil {
				r.logger.Infof("Context cancelled, exiting %s listener", key)
				return
			}
			r.logger.Warnf("Error reading from %s list: %v", key, err)
			select {
			case <-r.ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		// BRPOP returns [key, value]
		if len(result) < 2 {
			continue
		}
		line := commandLine(result[1])
		r.logger.Debugf("Received command from %s: %s", key, line)
		select {
		case r.commands <- line:
		case <-r.ctx.Done():
			return
		}
	}
}

// ReadLine returns a command popped from the list without blocking.
func (r *RedisMirror) ReadLine() (string, bool) {
	select {
	case line := <-r.commands:
		return line, true
	default:
		return "", false
	}
}

// PublishView atomically stores the navigation state and announces it.
func (r *RedisMirror) PublishView(view types.ViewState, mode string, page int) error {
	pipe := r.client.Pipeline()
	pipe.HSet(r.ctx, StateHash, "view", string(view))
	pipe.HSet(r.ctx, StateHash, "mode", mode)
	pipe.HSet(r.ctx, StateHash, "page", page)
	pipe.HSet(r.ctx, StateHash, "view:timestamp", time.Now().Format(time.RFC3339))
	pipe.Publish(r.ctx, StateChannel, "view")
	if _, err := pipe.Exec(r.ctx); err != nil {
		return fmt.Errorf("failed to publish view: %w", err)
	}
	r.logger.Debugf("Published view %s (mode %q, page %d)", view, mode, page)
	return nil
}

// PublishFrame forwards an outbound frame without its line terminator.
func (r *RedisMirror) PublishFrame(frame []byte) error {
	payload := strings.TrimRight(string(frame), "\n")
	return r.client.Publish(r.ctx, EventChannel, payload).Err()
}

func (r *RedisMirror) Close() error {
	r.logger.Infof("Closing Redis client")
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Infof("All Redis goroutines finished")
	case <-time.After(5 * time.Second):
		r.logger.Infof("Timeout waiting for Redis goroutines to finish")
	}

	return r.client.Close()
}
