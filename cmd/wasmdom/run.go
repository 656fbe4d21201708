package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wasmdom/wasmdom-go/internal/modfinder"
	"github.com/wasmdom/wasmdom-go/internal/reload"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/config"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/remote"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/replay"
)

var (
	// run flags
	configPath    string
	runWidth      int
	eventsPath    string
	follow        bool
	listenAddr    string
	watch         bool
	maxFrames     int
	frameInterval time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run [module]",
	Short: "Run a wasm guest",
	Long: `Instantiate a wasm guest, call its _start export and drive its step
export once per frame until it returns false.

The module is taken from the argument, the config file's module key, the
WASMDOM_MODULE environment variable, or the first of main.wasm, index.wasm,
web/main.wasm, web/index.wasm, build/main.wasm in the working directory.

Guest output (odin_env.write) goes to stdout and stderr.

Examples:
  # Run with an initial DOM
  wasmdom run app.wasm --config dom.yaml

  # Replay an event script, then keep following it
  wasmdom run app.wasm --events input.jsonl --follow

  # Accept events over WebSocket at ws://localhost:7700/events
  wasmdom run app.wasm --listen localhost:7700

  # Restart whenever the module is rebuilt
  wasmdom run app.wasm --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", "",
		"YAML runtime configuration file")
	runCmd.Flags().IntVarP(&runWidth, "word-width", "w", 0,
		"Guest word width in bytes: 4 or 8 (default from config, else 4)")
	runCmd.Flags().StringVarP(&eventsPath, "events", "e", "",
		"Event script to replay (JSON Lines)")
	runCmd.Flags().BoolVar(&follow, "follow", false,
		"Keep following the event script for appended lines")
	runCmd.Flags().StringVar(&listenAddr, "listen", "",
		"Accept events over WebSocket on this address")
	runCmd.Flags().BoolVar(&watch, "watch", false,
		"Restart the guest when the module file changes")
	runCmd.Flags().IntVar(&maxFrames, "frames", 0,
		"Stop after this many frames (0 = until the guest stops)")
	runCmd.Flags().DurationVar(&frameInterval, "frame-interval", 0,
		"Time between frames (default from config, else 16ms)")

	rootCmd.AddCommand(runCmd)
}

// session holds everything one guest run needs.
type session struct {
	module   string
	cfg      *config.File
	interval time.Duration
	logger   *slog.Logger
	cmd      *cobra.Command
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cmd.ErrOrStderr())

	var cfg *config.File
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	module, err := resolveModule(args, cfg, configPath)
	if err != nil {
		return err
	}

	var opts []wasmdom.Option
	if cfg != nil {
		opts = cfg.RuntimeOptions()
	}
	if runWidth != 0 {
		opts = append(opts, wasmdom.WithWordWidth(runWidth))
	}
	opts = append(opts, wasmdom.WithLogger(logger))

	rt, err := wasmdom.New(ctx, opts...)
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())

	s := &session{
		module:   module,
		cfg:      cfg,
		interval: resolveFrameInterval(frameInterval, cfg),
		logger:   logger,
		cmd:      cmd,
	}

	var changes <-chan string
	if watch {
		var werrs <-chan error
		changes, werrs, err = reload.Watch(ctx, module, reload.DefaultDebounce)
		if err != nil {
			return err
		}
		go func() {
			for err := range werrs {
				logger.Warn("module watch error", "error", err)
			}
		}()
	}

	for {
		restart, err := s.run(ctx, rt, changes)
		if !restart {
			return err
		}
		if err != nil {
			logger.Warn("guest failed; waiting for the module to change", "error", err)
		}
		logger.Info("module changed, restarting", "module", module)
	}
}

// run runs the guest once. It reports restart when the module changed.
func (s *session) run(ctx context.Context, rt *wasmdom.Runtime, changes <-chan string) (restart bool, err error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	restartCh := make(chan struct{})
	if changes != nil {
		go func() {
			select {
			case _, ok := <-changes:
				if ok {
					close(restartCh)
					cancel()
				}
			case <-runCtx.Done():
			}
		}()
	}
	restarting := func() bool {
		select {
		case <-restartCh:
			return true
		default:
			return false
		}
	}

	err = s.runGuest(runCtx, rt)
	if restarting() {
		return true, err
	}
	if err != nil && changes != nil && ctx.Err() == nil {
		// keep the watcher alive until the next rebuild
		select {
		case <-restartCh:
			return true, err
		case <-ctx.Done():
			return false, nil
		}
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return false, nil
	}
	return false, err
}

func (s *session) runGuest(ctx context.Context, rt *wasmdom.Runtime) error {
	mod, err := rt.Load(ctx, s.module)
	if err != nil {
		return err
	}

	var instOpts []wasmdom.InstanceOption
	if s.cfg != nil {
		if instOpts, err = s.cfg.InstanceOptions(nil); err != nil {
			return err
		}
	}
	instOpts = append(instOpts,
		wasmdom.WithStdout(s.cmd.OutOrStdout()),
		wasmdom.WithStderr(s.cmd.ErrOrStderr()),
	)

	inst, err := rt.Instantiate(ctx, mod, instOpts...)
	if err != nil {
		return err
	}
	defer inst.Close(context.Background())

	if err := inst.Start(ctx); err != nil {
		return err
	}
	s.logger.Debug("guest started", "name", inst.Name(), "listeners", inst.Listeners())

	var playerDone <-chan struct{}
	if eventsPath != "" {
		done, err := s.startPlayer(ctx, inst)
		if err != nil {
			return err
		}
		playerDone = done
	}
	if listenAddr != "" {
		srv, err := remote.NewServer(inst, remote.WithLogger(s.logger))
		if err != nil {
			return err
		}
		go func() {
			if err := srv.ListenAndServe(ctx, listenAddr); err != nil && !errors.Is(err, remote.ErrServerClosed) {
				s.logger.Error("remote event feed stopped", "error", err)
			}
		}()
	}

	frames, err := inst.Run(ctx, wasmdom.RunOptions{FrameInterval: s.interval, MaxFrames: maxFrames})
	if err != nil {
		return err
	}
	s.logger.Debug("frame loop finished", "frames", frames)

	// Listeners stay attached after _end, so live event sources keep
	// feeding the guest.
	switch {
	case follow || listenAddr != "":
		<-ctx.Done()
	case playerDone != nil:
		select {
		case <-playerDone:
		case <-ctx.Done():
		}
	}
	return nil
}

// startPlayer starts replaying the event script. The returned channel
// closes when playback ends.
func (s *session) startPlayer(ctx context.Context, inst *wasmdom.Instance) (<-chan struct{}, error) {
	p, err := replay.NewPlayer(eventsPath, inst,
		replay.WithFollow(follow),
		replay.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}
	results, errs, err := p.Play(ctx)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer p.Close()
		for results != nil || errs != nil {
			select {
			case r, ok := <-results:
				if !ok {
					results = nil
					continue
				}
				s.logger.Debug("event dispatched", "line", r.Line, "type", r.Record.Type,
					"target", r.Record.Target, "default_prevented", r.DefaultPrevented)
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				s.logger.Warn("event script", "error", err)
			}
		}
	}()
	return done, nil
}

// resolveModule picks the module path: argument, then the config file's
// module key (relative to the config file), then module discovery.
func resolveModule(args []string, cfg *config.File, cfgPath string) (string, error) {
	explicit := ""
	switch {
	case len(args) > 0:
		explicit = args[0]
	case cfg != nil && cfg.Module != "":
		explicit = cfg.Module
		if !filepath.IsAbs(explicit) {
			explicit = filepath.Join(filepath.Dir(cfgPath), explicit)
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	path, err := modfinder.FindModule(explicit, wd)
	if err != nil {
		return "", fmt.Errorf("finding module: %w", err)
	}
	return path, nil
}

// resolveFrameInterval prefers the flag, then the config file.
func resolveFrameInterval(flag time.Duration, cfg *config.File) time.Duration {
	if flag > 0 {
		return flag
	}
	if cfg != nil && cfg.FrameInterval > 0 {
		return cfg.FrameInterval
	}
	return wasmdom.DefaultFrameInterval
}
