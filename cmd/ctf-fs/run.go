package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"
	"go.uber.org/zap"

	"github.com/barometric/ctf-fs/ctf/ctfsink"
	"github.com/barometric/ctf-fs/ctf/ctfsrc"
)

// runConfig is `ctf-fs run`: it drives a local source -> sink pipeline over
// one trace root, the CLI-level analogue of the module's end-to-end
// dataflow.
type runConfig struct {
	*rootConfig

	Path     string
	OffsetS  int64
	OffsetNS int64
	Out      string
}

func (cfg *runConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		LongName:    "path",
		Value:       ffval.NewValue(&cfg.Path),
		Usage:       "trace root directory to discover and mirror",
		Placeholder: "PATH",
	})
	fs.AddFlag(ff.FlagConfig{
		LongName:    "offset-s",
		Value:       ffval.NewValue(&cfg.OffsetS),
		NoDefault:   true,
		Usage:       "timestamp offset, seconds",
		Placeholder: "N",
	})
	fs.AddFlag(ff.FlagConfig{
		LongName:    "offset-ns",
		Value:       ffval.NewValue(&cfg.OffsetNS),
		NoDefault:   true,
		Usage:       "timestamp offset, nanoseconds",
		Placeholder: "N",
	})
	fs.AddFlag(ff.FlagConfig{
		LongName:    "out",
		Value:       ffval.NewValue(&cfg.Out),
		Usage:       "output base directory for mirrored traces",
		Placeholder: "DIR",
	})
}

func (cfg *runConfig) Exec(ctx context.Context, args []string) error {
	logger, err := cfg.buildLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Out == "" {
		return fmt.Errorf("--out is required")
	}

	src := ctfsrc.NewComponent(logger, unimplementedParser, unimplementedInspector, unimplementedOpenFile, nil)
	if err := src.Init(ctx, ctfsrc.Params{Path: cfg.Path, OffsetS: cfg.OffsetS, OffsetNS: cfg.OffsetNS}); err != nil {
		return fmt.Errorf("init source: %w", err)
	}

	sink := ctfsink.NewComponent(logger)
	if err := sink.Init(ctfsink.Params{Base: cfg.Out}, ctfsink.NewFSWriter); err != nil {
		return fmt.Errorf("init sink: %w", err)
	}

	var g run.Group
	{
		pumpCtx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			err := pumpPorts(pumpCtx, src, sink)
			if err != nil {
				fmt.Fprintln(cfg.stderr, joinLines(recentDiagnosticLines(src, sink)))
			}
			return err
		}, func(error) {
			cancel()
			if err := src.Finalize(); err != nil {
				logger.Warn("finalize source", zap.Error(err))
			}
			if err := sink.Finalize(); err != nil {
				logger.Warn("finalize sink", zap.Error(err))
			}
		})
	}
	{
		g.Add(run.SignalHandler(ctx, os.Interrupt, os.Kill))
	}

	return g.Run()
}

// pumpPorts drains every source port in turn, feeding each notification to
// the sink, until every port reaches End or the context is cancelled. Ports
// are drained sequentially here; a higher-throughput runtime would fan
// them out across goroutines, which this single-process driver
// deliberately keeps simple.
func pumpPorts(ctx context.Context, src *ctfsrc.Component, sink *ctfsink.Component) error {
	for _, port := range src.Ports() {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			n, err := port.Iterator.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return fmt.Errorf("port %s: %w", port.Name, err)
			}

			if err := sink.Consume(n); err != nil {
				return fmt.Errorf("port %s: %w", port.Name, err)
			}
		}
	}
	return nil
}
