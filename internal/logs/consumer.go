package logs

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/phuslu/log"
	"github.com/ternarybob/arbor"
	arborlevels "github.com/ternarybob/arbor/levels"
	arbormodels "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/pretium/internal/models"
)

// Consumer consumes log batches from arbor's context channel and feeds
// the activity ring.
type Consumer struct {
	buffer   *Buffer
	logger   arbor.ILogger
	channel  chan []arbormodels.LogEvent
	done     chan struct{}
	wg       sync.WaitGroup
	minLevel arbor.LogLevel
}

// NewConsumer creates a consumer filling the given ring. Events below
// minLevel never enter the ring.
func NewConsumer(buffer *Buffer, logger arbor.ILogger, minLevel string) *Consumer {
	return &Consumer{
		buffer:   buffer,
		logger:   logger,
		channel:  make(chan []arbormodels.LogEvent, 10),
		done:     make(chan struct{}),
		minLevel: parseLogLevel(minLevel),
	}
}

// parseLogLevel converts a string log level to arbor.LogLevel.
func parseLogLevel(levelStr string) arbor.LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return arbor.DebugLevel
	case "info":
		return arbor.InfoLevel
	case "warn", "warning":
		return arbor.WarnLevel
	case "error":
		return arbor.ErrorLevel
	default:
		return arbor.InfoLevel
	}
}

// convertTo3Letter converts full level names to 3-letter display codes.
func convertTo3Letter(level string) string {
	switch strings.ToUpper(level) {
	case "INFO":
		return "INF"
	case "WARN", "WARNING":
		return "WRN"
	case "ERROR":
		return "ERR"
	case "DEBUG":
		return "DBG"
	default:
		if len(level) == 3 {
			return strings.ToUpper(level)
		}
		return "INF"
	}
}

// GetChannel returns the channel for arbor to send log batches to.
func (c *Consumer) GetChannel() chan []arbormodels.LogEvent {
	return c.channel
}

// Start launches the consumer goroutine.
func (c *Consumer) Start() error {
	c.wg.Add(1)
	go c.consume()
	return nil
}

// Stop shuts down the consumer. Batches already queued are drained
// before it returns.
func (c *Consumer) Stop() error {
	close(c.done)
	c.wg.Wait()
	return nil
}

func (c *Consumer) consume() {
	defer c.wg.Done()

	defer func() {
		if r := recover(); r != nil {
			if c.logger != nil {
				c.logger.Error().
					Str("panic", fmt.Sprintf("%v", r)).
					Msg("Log consumer panic recovered")
			}
		}
	}()

	for {
		select {
		case batch, ok := <-c.channel:
			if !ok {
				return
			}
			c.record(batch)
		case <-c.done:
			// Drain whatever arrived before shutdown.
			for {
				select {
				case batch := <-c.channel:
					c.record(batch)
				default:
					return
				}
			}
		}
	}
}

func (c *Consumer) record(batch []arbormodels.LogEvent) {
	for _, event := range batch {
		if !c.shouldRecord(event.Level) {
			continue
		}
		c.buffer.Append(transformEvent(event))
	}
}

// shouldRecord reports whether a level clears the ring threshold.
func (c *Consumer) shouldRecord(level log.Level) bool {
	return arborlevels.FromLogLevel(level) >= c.minLevel
}

// transformEvent renders an arbor event into an activity entry.
// Structured fields are folded into the message in key order.
func transformEvent(event arbormodels.LogEvent) models.ActivityEntry {
	message := event.Message
	if len(event.Fields) > 0 {
		keys := make([]string, 0, len(event.Fields))
		for key := range event.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			message += fmt.Sprintf(" %s=%v", key, event.Fields[key])
		}
	}

	return models.ActivityEntry{
		Timestamp:     event.Timestamp.Format("15:04:05"),
		FullTimestamp: event.Timestamp.Format(time.RFC3339),
		Level:         convertTo3Letter(event.Level.String()),
		Message:       message,
		RequestID:     event.CorrelationID,
	}
}
