// Package main is the entry point for edgeproxy, a single-process HTTP/gRPC
// reverse proxy. It loads Config (env vars, optionally overridden by a YAML
// file), builds the route matcher, round-robin balancer and request
// forwarder, and wires them behind Dispatcher as the sole http.Handler for
// one TCP listener serving HTTP/1.1 and HTTP/2 (h2c in plaintext, ALPN
// h2/http1.1 under TLS). On SIGINT/SIGTERM it drains in-flight requests via
// http.Server.Shutdown before exiting.
package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"edgeproxy/service"
)

func main() {
	logger := log.NewLogfmtLogger(os.Stderr)
	cfg, err := LoadConfig()
	if err != nil {
		level.Error(logger).Log("msg", "failed to load configuration", "err", err)
		os.Exit(1)
	}

	provider := newStaticConfigProvider(cfg.Proxy)
	matcher := service.NewRouteMatcher(cfg.Proxy.Routes)
	balancer := service.NewRoundRobinBalancer()
	client := service.NewUpstreamClient()
	forwarder := service.NewRequestForwarder(client, logger)
	dispatcher := service.NewDispatcher(provider, matcher, balancer, forwarder, logger)

	handler := h2c.NewHandler(dispatcher, &http2.Server{})

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: handler,
	}

	if cfg.EnableTLS {
		srv.TLSConfig = &tls.Config{
			NextProtos: []string{"h2", "http/1.1"},
		}
	}

	level.Info(logger).Log("msg", "starting edgeproxy", "port", cfg.Port, "tls", cfg.EnableTLS)
	go func() {
		var serveErr error
		if cfg.EnableTLS {
			serveErr = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			serveErr = srv.ListenAndServe()
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			level.Error(logger).Log("msg", "serve", "err", serveErr)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	level.Info(logger).Log("msg", "shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		level.Error(logger).Log("msg", "graceful shutdown timed out, forcing close", "err", err)
		_ = srv.Close()
	}
}
