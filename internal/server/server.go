// Package server assembles the node's serving surfaces: the JSON-RPC
// endpoint, the websocket hub, the grpc query service and the metrics
// exposition, under a single lifecycle.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goswapd/internal/config"
	"github.com/LeJamon/goswapd/internal/core/ledger/service"
	swapdgrpc "github.com/LeJamon/goswapd/internal/grpc"
	"github.com/LeJamon/goswapd/internal/rpc"
)

// Server wires the serving surfaces of one node.
type Server struct {
	cfg  config.ServerConfig
	node *service.Service
	log  *zap.SugaredLogger

	httpServer *http.Server
	grpcServer *swapdgrpc.Server
	hub        *rpc.Hub
	metrics    *Metrics
}

// New assembles the surfaces cfg enables and installs their event
// hooks on the node. The node keeps running when the server stops;
// callers own its lifecycle.
func New(cfg config.ServerConfig, node *service.Service, version string, log *zap.SugaredLogger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	s := &Server{cfg: cfg, node: node, log: log}

	var hookSets []service.Hooks
	if cfg.HTTPAddr != "" {
		s.hub = rpc.NewHub(node, version, log)
		hookSets = append(hookSets, s.hub.Hooks())

		router := mux.NewRouter()
		router.Handle("/", rpc.NewServer(node, version, log)).Methods(http.MethodPost, http.MethodGet)
		router.Handle("/ws", s.hub)
		router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
		if cfg.EnableMetrics {
			s.metrics = NewMetrics()
			hookSets = append(hookSets, s.metrics.Hooks())
			router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
		}

		c := cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		})

		s.httpServer = &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      c.Handler(router),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		}
	}

	if cfg.GRPCAddr != "" {
		gcfg := swapdgrpc.DefaultServerConfig()
		gcfg.Address = cfg.GRPCAddr
		gs, err := swapdgrpc.NewServer(gcfg, node, version)
		if err != nil {
			return nil, err
		}
		s.grpcServer = gs
	}

	if len(hookSets) > 0 {
		node.SetHooks(service.MergeHooks(hookSets...))
	}
	return s, nil
}

// Run serves until ctx is cancelled or a listener fails, then shuts
// both surfaces down within the configured grace period.
func (s *Server) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	if s.httpServer != nil {
		g.Go(func() error {
			s.log.Infow("http_listening", "addr", s.cfg.HTTPAddr)
			if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	if s.grpcServer != nil {
		g.Go(func() error {
			s.log.Infow("grpc_listening", "addr", s.cfg.GRPCAddr)
			return s.grpcServer.Serve()
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		s.shutdown()
		return nil
	})

	err := g.Wait()
	s.log.Infow("server_stopped")
	return err
}

func (s *Server) shutdown() {
	grace, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(grace); err != nil {
			s.log.Warnw("http_shutdown_failed", "err", err)
		}
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.hub != nil {
		s.hub.Close()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info, err := s.node.Info()
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":           "ok",
		"validated_ledger": info.ValidatedSequence,
		"complete_ledgers": info.CompleteLedgers,
	})
}
