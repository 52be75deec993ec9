// Command ledgerd runs the event-sourced ledger service: it binds a TCP
// listener, serves the length-framed TLV protocol (spec §4.B, §4.F) over
// one shared in-memory ledger, and optionally serves a read-only
// WebSocket feed of committed operations.
package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klingon-exchange/ledgerd/internal/config"
	"github.com/klingon-exchange/ledgerd/internal/feed"
	"github.com/klingon-exchange/ledgerd/internal/ledger"
	"github.com/klingon-exchange/ledgerd/internal/server"
	"github.com/klingon-exchange/ledgerd/pkg/logging"
)

var version = "0.1.0-dev"

func main() {
	var (
		configFile  = flag.String("config", "", "Config file path (YAML)")
		listenAddr  = flag.String("listen", "", "TCP listen address, overrides config")
		feedAddr    = flag.String("feed", "", "Observer WebSocket feed address, overrides config")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error), overrides config")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	if *showVersion {
		println("ledgerd " + version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		logging.Fatal("failed to load config", "error", err)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *feedAddr != "" {
		cfg.FeedAddr = *feedAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	log := logging.New(&logging.Config{
		Level:      cfg.LogLevel,
		TimeFormat: cfg.LogTimeFormat,
	})
	logging.SetDefault(log)

	l := ledger.New()
	acceptor := server.New(l)

	if cfg.FeedAddr != "" {
		hub := feed.NewHub()
		go hub.Run()
		l.SetCommitHook(func(id ledger.OpID, op ledger.Op) {
			hub.Broadcast(feed.EventFromOp(id, op, time.Now().Unix()))
		})

		mux := http.NewServeMux()
		mux.Handle("/feed", hub)
		go func() {
			log.Info("observer feed listening", "addr", cfg.FeedAddr)
			if err := http.ListenAndServe(cfg.FeedAddr, mux); err != nil {
				log.Error("observer feed server stopped", "error", err)
			}
		}()
	}

	go func() {
		if err := acceptor.Listen(cfg.ListenAddr); err != nil {
			log.Fatal("acceptor stopped", "error", err)
		}
	}()
	log.Info("ledgerd started", "version", version, "listen", cfg.ListenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	if err := acceptor.Close(); err != nil {
		log.Error("error closing listener", "error", err)
	}
	acceptor.Wait()
	log.Info("goodbye")
}
