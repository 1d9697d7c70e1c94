package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"asteroids.ai/internal/client"
	"asteroids.ai/internal/config"
	"asteroids.ai/internal/persistence/indexdb"
	"asteroids.ai/internal/persistence/roundlog"
	"asteroids.ai/internal/protocol"
	"asteroids.ai/internal/strategy"
	"asteroids.ai/internal/transport/stream"
	"asteroids.ai/internal/transport/ws"
)

func main() {
	os.Exit(run())
}

// run returns the process exit status so deferred closers flush first.
func run() int {
	var (
		configPath = flag.String("config", "", "path to bot.yaml (optional)")
		url        = flag.String("url", "", "relay websocket url (empty: stdin/stdout)")
		strat      = flag.String("strategy", "", "decider: idle|sample (overrides config)")
		recordDir  = flag.String("record", "", "directory for rounds-*.jsonl.zst (overrides config)")
		indexPath  = flag.String("index", "", "sqlite round index path (overrides config)")
		verbose    = flag.Bool("v", false, "log a line per round")
	)
	flag.Parse()

	// stdout carries the protocol; everything else goes to stderr.
	logger := log.New(os.Stderr, "[bot] ", log.LstdFlags|log.Lmicroseconds)

	cfg := config.Defaults()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			logger.Printf("load config: %v", err)
			return 2
		}
		cfg = c
	}
	if *url != "" {
		cfg.Transport.WSURL = *url
	}
	if *strat != "" {
		cfg.Strategy = *strat
	}
	if *recordDir != "" {
		cfg.Record.Dir = *recordDir
	}
	if *indexPath != "" {
		cfg.Index.Path = *indexPath
	}
	if err := cfg.Validate(); err != nil {
		logger.Printf("config: %v", err)
		return 2
	}

	decider, err := strategy.ByName(cfg.Strategy, cfg.Rules)
	if err != nil {
		logger.Printf("strategy: %v", err)
		return 2
	}

	ctx, cancel := signalContext()
	defer cancel()

	runID := roundlog.NewRunID()
	opts := client.Options{Logger: logger, Verbose: *verbose}
	if cfg.Protocol.ValidateState || cfg.Protocol.ValidateCommands {
		v, err := protocol.NewValidator()
		if err != nil {
			logger.Printf("compile schemas: %v", err)
			return 1
		}
		opts.Validator = v
		opts.ValidateState = cfg.Protocol.ValidateState
		opts.ValidateCommands = cfg.Protocol.ValidateCommands
	}
	if cfg.Record.Dir != "" {
		rl := roundlog.NewLogger(cfg.Record.Dir, runID, logger)
		defer rl.Close()
		opts.Observers = append(opts.Observers, rl)
	}
	if cfg.Index.Path != "" {
		idx, err := indexdb.OpenSQLite(cfg.Index.Path, runID)
		if err != nil {
			logger.Printf("open index: %v", err)
			return 1
		}
		defer func() {
			_ = idx.Close()
			if st := idx.Stats(); st.DropTotal > 0 || st.FailTotal > 0 {
				logger.Printf("index: written=%d dropped=%d failed=%d", st.WriteTotal, st.DropTotal, st.FailTotal)
			}
		}()
		opts.Observers = append(opts.Observers, idx)
	}

	var conn client.Conn
	if cfg.Transport.WSURL != "" {
		c, err := ws.Dial(ctx, cfg.Transport.WSURL, ws.Options{
			ReadTimeout:  cfg.Transport.ReadTimeout,
			WriteTimeout: cfg.Transport.WriteTimeout,
		})
		if err != nil {
			logger.Printf("dial: %v", err)
			return 1
		}
		conn = c
	} else {
		sc := stream.Stdio(stream.Options{
			ReadTimeout:  cfg.Transport.ReadTimeout,
			WriteTimeout: cfg.Transport.WriteTimeout,
		})
		if !sc.Deadlines() {
			logger.Printf("stdin has no deadline support; read timeout %s falls back to an abandoned read", cfg.Transport.ReadTimeout)
		}
		conn = sc
	}

	logger.Printf("run=%s strategy=%s transport=%s", runID, cfg.Strategy, transportName(cfg))
	err = client.New(conn, decider, opts).Run(ctx)
	_ = conn.Close()
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	code := protocol.CodeOf(err)
	if code == "" {
		code = "E_IO"
	}
	logger.Printf("exit %s: %v", code, err)
	return 1
}

func transportName(cfg config.Config) string {
	if cfg.Transport.WSURL != "" {
		return "ws " + cfg.Transport.WSURL
	}
	return "stdio"
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
