package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"meel/internal/trace"
)

func addTraceFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("trace", "", "write trace events to file (\"-\" for stderr, *.ndjson for NDJSON)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "ring buffer capacity for --trace-mode ring|both")
	flags.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")
}

// traceFlags is the parsed form of the --trace* flags.
type traceFlags struct {
	output    string
	level     trace.Level
	mode      trace.StorageMode
	ringSize  int
	heartbeat time.Duration
}

func readTraceFlags(cmd *cobra.Command) (traceFlags, error) {
	flags := cmd.Root().PersistentFlags()
	var (
		tf       traceFlags
		errs     []error
		levelStr string
		modeStr  string
	)
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	var err error
	tf.output, err = flags.GetString("trace")
	collect(err)
	levelStr, err = flags.GetString("trace-level")
	collect(err)
	modeStr, err = flags.GetString("trace-mode")
	collect(err)
	tf.ringSize, err = flags.GetInt("trace-ring-size")
	collect(err)
	tf.heartbeat, err = flags.GetDuration("trace-heartbeat")
	collect(err)
	if len(errs) > 0 {
		return tf, fmt.Errorf("failed to read trace flags: %w", errors.Join(errs...))
	}

	tf.level, err = trace.ParseLevel(levelStr)
	collect(err)
	tf.mode, err = trace.ParseMode(modeStr)
	collect(err)
	if len(errs) > 0 {
		return tf, errors.Join(errs...)
	}
	// --trace без уровня включает фазы
	if tf.level == trace.LevelOff && tf.output != "" {
		tf.level = trace.LevelPhase
	}
	return tf, nil
}

// setupTracing installs the tracer selected by the flags into the command
// context, where the check driver and the language server pick it up.
// The returned cleanup stops the heartbeat, dumps a ring-only trace to
// stderr and closes the output.
func setupTracing(cmd *cobra.Command) (func(), error) {
	tf, err := readTraceFlags(cmd)
	if err != nil {
		return nil, err
	}
	if tf.level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	tracer, err := trace.New(trace.Config{
		Level:      tf.level,
		Mode:       tf.mode,
		OutputPath: tf.output,
		RingSize:   tf.ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	heartbeat := trace.StartHeartbeat(tracer, tf.heartbeat)
	stderr := cmd.ErrOrStderr()
	return func() {
		heartbeat.Stop()
		if ring, ok := trace.RingOf(tracer); ok && tf.mode == trace.ModeRing {
			_ = ring.Dump(stderr, trace.FormatText)
		}
		if err := errors.Join(tracer.Flush(), tracer.Close()); err != nil {
			fmt.Fprintf(stderr, "trace: %v\n", err)
		}
	}, nil
}
