//go:build linux

// Command irengined is the IR remote-control engine daemon: it wires
// together the persistent store, AC state, action store, a concrete
// pulse source/sink backend, the orchestrator, the control-surface
// websocket endpoints, and the CSV session log, then runs until
// signalled. Flag handling follows the teacher's src/kissutil.go
// pflag style.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/birchlabs/irengine/internal/acstate"
	"github.com/birchlabs/irengine/internal/actions"
	"github.com/birchlabs/irengine/internal/config"
	"github.com/birchlabs/irengine/internal/controlsrv"
	"github.com/birchlabs/irengine/internal/gpiopulse"
	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/kvstore"
	"github.com/birchlabs/irengine/internal/learn"
	"github.com/birchlabs/irengine/internal/logx"
	"github.com/birchlabs/irengine/internal/orchestrator"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
	"github.com/birchlabs/irengine/internal/sessionlog"
	"github.com/birchlabs/irengine/internal/transmit"
	"github.com/birchlabs/irengine/internal/usbpulse"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "Path to a YAML config file (optional; built-in defaults otherwise)")
		storeDir   = pflag.StringP("store-dir", "d", "", "Directory for the persistent store (empty: in-memory, for dry runs)")
		logDir     = pflag.StringP("log-dir", "l", "", "Directory for the CSV session log (empty: disabled)")
		verbose    = pflag.BoolP("verbose", "v", false, "Enable debug logging")
		help       = pflag.Bool("help", false, "Display help text")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: irengined [options]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		return
	}

	if *verbose {
		logx.SetLevel(log.DebugLevel)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logx.Logger().Fatal("irengined: loading config", "err", err)
		}
		cfg = loaded
	}
	if *storeDir != "" {
		cfg.Store.Dir = *storeDir
	}

	store, err := openStore(cfg.Store.Dir)
	if err != nil {
		logx.Logger().Fatal("irengined: opening store", "err", err)
	}

	ac := acstate.New(store)
	if err := ac.Init(); err != nil {
		logx.Logger().Fatal("irengined: initializing AC state", "err", err)
	}
	actionStore := actions.New(store)
	applyBindings(actionStore, cfg.Bindings)

	var slog *sessionlog.Log
	if *logDir != "" {
		slog, err = sessionlog.New(*logDir)
		if err != nil {
			logx.Logger().Warn("irengined: session log disabled", "err", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch cfg.Backend {
	case config.BackendUSB:
		runUSB(ctx, cfg, ac, actionStore, slog)
	default:
		runGPIO(ctx, cfg, ac, actionStore, slog)
	}
}

func openStore(dir string) (kvstore.Store, error) {
	if dir == "" {
		return kvstore.NewMemStore(), nil
	}
	return kvstore.NewFileStore(dir)
}

func applyBindings(store *actions.Store, bindings []config.Binding) {
	for _, b := range bindings {
		device, ok := actions.DeviceFromPrefix(b.Device)
		if !ok {
			logx.Logger().Warn("irengined: unknown device in config bindings", "device", b.Device)
			continue
		}
		tag, ok := actions.ActionFromName(b.Action)
		if !ok {
			logx.Logger().Warn("irengined: unknown action in config bindings", "action", b.Action)
			continue
		}
		id, ok := protocol.FromName(b.Protocol)
		if !ok {
			logx.Logger().Warn("irengined: unknown protocol in config bindings", "protocol", b.Protocol)
			continue
		}
		code := ircode.Code{Protocol: id, Data: b.Data, Bits: b.Bits}
		if err := store.Save(device, tag, code); err != nil {
			logx.Logger().Warn("irengined: applying config binding", "device", b.Device, "action", b.Action, "err", err)
		}
	}
}

func runGPIO(ctx context.Context, cfg config.Config, ac *acstate.AC, actionStore *actions.Store, slog *sessionlog.Log) {
	l := learn.New()

	tx, err := gpiopulse.NewTransmitter(cfg.GPIO.Chip, cfg.GPIO.TransmitLine)
	if err != nil {
		logx.Logger().Fatal("irengined: opening transmit line", "err", err)
	}
	defer tx.Close()

	var orch *orchestrator.Orchestrator
	rx, err := gpiopulse.NewReceiver(cfg.GPIO.Chip, cfg.GPIO.ReceiveLine, cfg.GPIO.ActiveLow, func(buf pulse.Buffer) {
		orch.Submit(buf)
	})
	if err != nil {
		logx.Logger().Fatal("irengined: opening receive line", "err", err)
	}
	defer rx.Close()

	orch = orchestrator.New(actionStore, rx, l, callbacks(slog))
	serve(ctx, cfg, actionStore, ac, orch, tx)
}

func runUSB(ctx context.Context, cfg config.Config, ac *acstate.AC, actionStore *actions.Store, slog *sessionlog.Log) {
	l := learn.New()

	dev, err := usbpulse.Open(cfg.USB.VendorID, cfg.USB.ProductID)
	if err != nil {
		logx.Logger().Fatal("irengined: opening USB IR transceiver", "err", err)
	}
	defer dev.Close()

	orch := orchestrator.New(actionStore, dev, l, callbacks(slog))

	go func() {
		for ctx.Err() == nil {
			buf, err := dev.ReadBurst(ctx)
			if err != nil {
				if ctx.Err() == nil {
					logx.Logger().Warn("irengined: reading burst from USB transceiver", "err", err)
					time.Sleep(100 * time.Millisecond)
				}
				continue
			}
			orch.Submit(buf)
		}
	}()

	serve(ctx, cfg, actionStore, ac, orch, dev)
}

func callbacks(slog *sessionlog.Log) orchestrator.Callbacks {
	return orchestrator.Callbacks{
		OnReceive: func(code ircode.Code) {
			logx.Logger().Info("irengined: received", "protocol", code.Protocol, "data", code.Data, "bits", code.Bits)
			if slog != nil {
				_ = slog.Write("", code, code.MatchCount)
			}
		},
		OnLearnSuccess: func(target learn.Target, grade learn.Grade, code ircode.Code) {
			logx.Logger().Info("irengined: learned", "device", target.Device, "action", target.Action, "grade", grade)
			if slog != nil {
				_ = slog.Write(target.Device+"/"+target.Action, code, code.MatchCount)
			}
		},
		OnLearnFail: func(target learn.Target) {
			logx.Logger().Warn("irengined: learn timed out", "device", target.Device, "action", target.Action)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, actionStore *actions.Store, ac *acstate.AC, orch *orchestrator.Orchestrator, sink transmit.Sink) {
	srv := controlsrv.New(actionStore, ac, orch, sink)
	httpServer := &http.Server{Addr: cfg.ControlSurface.ListenAddr, Handler: srv.Handler()}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Logger().Error("irengined: control surface stopped", "err", err)
		}
	}()

	go runReceiveLoop(ctx, orch)
	go runDeadlineTicker(ctx, orch)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logx.Logger().Info("irengined: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
}

func runReceiveLoop(ctx context.Context, orch *orchestrator.Orchestrator) {
	orch.Run(ctx)
}

func runDeadlineTicker(ctx context.Context, orch *orchestrator.Orchestrator) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			orch.CheckLearnerDeadline(now)
		}
	}
}
