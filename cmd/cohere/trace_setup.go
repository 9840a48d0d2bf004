package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"cohere/internal/trace"
)

// traceFlags mirrors the persistent --trace* flags.
type traceFlags struct {
	output    string
	level     string
	mode      string
	ringSize  int
	heartbeat time.Duration
}

func readTraceFlags(fs *pflag.FlagSet) (traceFlags, error) {
	var (
		tf  traceFlags
		err error
	)
	if tf.output, err = fs.GetString("trace"); err != nil {
		return tf, err
	}
	if tf.level, err = fs.GetString("trace-level"); err != nil {
		return tf, err
	}
	if tf.mode, err = fs.GetString("trace-mode"); err != nil {
		return tf, err
	}
	if tf.ringSize, err = fs.GetInt("trace-ring-size"); err != nil {
		return tf, err
	}
	tf.heartbeat, err = fs.GetDuration("trace-heartbeat")
	return tf, err
}

// config turns flags into a tracer config. --trace=FILE without a level
// means phase; stream output without a file goes to stderr.
func (tf traceFlags) config() (trace.Config, error) {
	level, err := trace.ParseLevel(tf.level)
	if err != nil {
		return trace.Config{}, fmt.Errorf("invalid trace level: %w", err)
	}
	if level == trace.LevelOff && tf.output != "" {
		level = trace.LevelPhase
	}
	cfg := trace.Config{Level: level, Path: tf.output, RingSize: tf.ringSize, Heartbeat: tf.heartbeat}
	if level == trace.LevelOff {
		return cfg, nil
	}
	if cfg.Mode, err = trace.ParseMode(tf.mode); err != nil {
		return trace.Config{}, fmt.Errorf("invalid trace mode: %w", err)
	}
	if cfg.Path == "" && cfg.Mode != trace.ModeRing {
		cfg.Path = "-"
	}
	return cfg, nil
}

// setupTracing installs the tracer into the command context; the returned
// cleanup stops the heartbeat and flushes output.
func setupTracing(cmd *cobra.Command) (func(), error) {
	tf, err := readTraceFlags(cmd.Root().PersistentFlags())
	if err != nil {
		return nil, fmt.Errorf("failed to read trace flags: %w", err)
	}
	cfg, err := tf.config()
	if err != nil {
		return nil, err
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	return func() {
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: %v\n", err)
		}
	}, nil
}

// dumpTraceOnPanic печатает ring-буфер в stderr и паникует дальше.
func dumpTraceOnPanic(cmd *cobra.Command) {
	r := recover()
	if r == nil {
		return
	}
	if ring := trace.RingOf(trace.FromContext(cmd.Context())); ring != nil {
		_ = ring.Dump(os.Stderr, trace.FormatText) //nolint:errcheck // паникуем в любом случае
	}
	panic(r)
}
