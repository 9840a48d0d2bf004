package trace

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Tracer receives events. Implementations must be safe for concurrent use:
// units of a directory are checked in parallel.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// Mode says where events are kept.
type Mode uint8

const (
	ModeStream Mode = iota + 1 // сразу в файл или stderr
	ModeRing                   // последние N событий в памяти, для дампа при панике
	ModeBoth
)

var modeNames = [...]string{
	ModeStream: "stream",
	ModeRing:   "ring",
	ModeBoth:   "both",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) && modeNames[m] != "" {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode converts a --trace-mode value.
func ParseMode(s string) (Mode, error) {
	return parseName[Mode](modeNames[:], s, "trace mode")
}

// Config describes the tracer built by New.
type Config struct {
	Level     Level
	Mode      Mode
	Output    io.Writer // если nil, пишем в Path
	Path      string    // "-" или "" означает stderr; расширение выбирает формат
	RingSize  int
	Heartbeat time.Duration // 0 выключает
}

const defaultRingSize = 4096

// New builds the tracer for cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = defaultRingSize
	}

	var sinks []Tracer
	if cfg.Mode == ModeStream || cfg.Mode == ModeBoth {
		stream, err := openStream(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, stream)
	}
	if cfg.Mode == ModeRing || cfg.Mode == ModeBoth {
		sinks = append(sinks, NewRingTracer(cfg.RingSize, cfg.Level))
	}

	var t Tracer
	switch len(sinks) {
	case 0:
		return nil, fmt.Errorf("unknown trace mode: %v", cfg.Mode)
	case 1:
		t = sinks[0]
	default:
		t = NewMultiTracer(cfg.Level, sinks...)
	}
	return WithHeartbeat(t, cfg.Heartbeat), nil
}

func openStream(cfg Config) (*StreamTracer, error) {
	format := FormatFor(cfg.Path)
	if cfg.Output != nil {
		return NewStreamTracer(cfg.Output, cfg.Level, format), nil
	}
	if cfg.Path == "" || cfg.Path == "-" {
		return NewStreamTracer(os.Stderr, cfg.Level, format), nil
	}
	f, err := os.Create(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	t := NewStreamTracer(f, cfg.Level, format)
	t.closer = f
	return t, nil
}

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop discards everything.
var Nop Tracer = nopTracer{}
