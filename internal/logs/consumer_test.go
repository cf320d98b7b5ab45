package logs

import (
	"testing"
	"time"

	"github.com/phuslu/log"
	"github.com/ternarybob/arbor"
	arbormodels "github.com/ternarybob/arbor/models"
)

func TestTransformEventFoldsFields(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 30, 15, 0, time.UTC)
	event := arbormodels.LogEvent{
		Timestamp:     ts,
		Level:         log.WarnLevel,
		Message:       "slow quote",
		CorrelationID: "req-42",
		Fields: map[string]interface{}{
			"symbol":   "RELIANCE",
			"duration": "1.2s",
		},
	}

	got := transformEvent(event)

	if got.Message != "slow quote duration=1.2s symbol=RELIANCE" {
		t.Errorf("Message = %q, want fields folded in key order", got.Message)
	}
	if got.Level != "WRN" {
		t.Errorf("Level = %q, want WRN", got.Level)
	}
	if got.Timestamp != "09:30:15" {
		t.Errorf("Timestamp = %q, want 09:30:15", got.Timestamp)
	}
	if got.FullTimestamp != "2024-03-01T09:30:15Z" {
		t.Errorf("FullTimestamp = %q", got.FullTimestamp)
	}
	if got.RequestID != "req-42" {
		t.Errorf("RequestID = %q, want req-42", got.RequestID)
	}
}

func TestTransformEventWithoutFields(t *testing.T) {
	event := arbormodels.LogEvent{
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Level:     log.InfoLevel,
		Message:   "started",
	}

	got := transformEvent(event)
	if got.Message != "started" {
		t.Errorf("Message = %q, want unchanged", got.Message)
	}
	if got.Level != "INF" {
		t.Errorf("Level = %q, want INF", got.Level)
	}
	if got.RequestID != "" {
		t.Errorf("RequestID = %q, want empty", got.RequestID)
	}
}

func TestConsumerFiltersBelowThreshold(t *testing.T) {
	buffer := NewBuffer(10)
	consumer := NewConsumer(buffer, nil, "warn")
	if err := consumer.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	now := time.Now()
	consumer.GetChannel() <- []arbormodels.LogEvent{
		{Timestamp: now, Level: log.DebugLevel, Message: "probe"},
		{Timestamp: now, Level: log.InfoLevel, Message: "fetched"},
		{Timestamp: now, Level: log.WarnLevel, Message: "stale served"},
		{Timestamp: now, Level: log.ErrorLevel, Message: "source down"},
	}

	if err := consumer.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	got := buffer.Recent(0, "")
	if len(got) != 2 {
		t.Fatalf("ring holds %d entries, want 2", len(got))
	}
	if got[0].Message != "source down" || got[0].Level != "ERR" {
		t.Errorf("newest = %s/%s, want ERR/source down", got[0].Level, got[0].Message)
	}
	if got[1].Message != "stale served" || got[1].Level != "WRN" {
		t.Errorf("oldest = %s/%s, want WRN/stale served", got[1].Level, got[1].Message)
	}
}

func TestConsumerDrainsQueuedBatchesOnStop(t *testing.T) {
	buffer := NewBuffer(20)
	consumer := NewConsumer(buffer, nil, "debug")
	if err := consumer.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	now := time.Now()
	for i := 0; i < 3; i++ {
		consumer.GetChannel() <- []arbormodels.LogEvent{
			{Timestamp: now, Level: log.InfoLevel, Message: "batch"},
			{Timestamp: now, Level: log.InfoLevel, Message: "batch"},
		}
	}

	if err := consumer.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if buffer.Len() != 6 {
		t.Errorf("ring holds %d entries after drain, want 6", buffer.Len())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want arbor.LogLevel
	}{
		{"debug", arbor.DebugLevel},
		{"info", arbor.InfoLevel},
		{"warn", arbor.WarnLevel},
		{"warning", arbor.WarnLevel},
		{"error", arbor.ErrorLevel},
		{"", arbor.InfoLevel},
		{"verbose", arbor.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConvertTo3Letter(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"info", "INF"},
		{"warn", "WRN"},
		{"warning", "WRN"},
		{"error", "ERR"},
		{"debug", "DBG"},
		{"FTL", "FTL"},
		{"unknown", "INF"},
	}
	for _, tt := range tests {
		if got := convertTo3Letter(tt.in); got != tt.want {
			t.Errorf("convertTo3Letter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
