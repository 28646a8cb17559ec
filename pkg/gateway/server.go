package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xrplwatch/feedhub/pkg/config"
	"github.com/xrplwatch/feedhub/pkg/feed"
	"github.com/xrplwatch/feedhub/pkg/httputil"
	"github.com/xrplwatch/feedhub/pkg/logging"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The gateway fronts a read-only replica; any origin may subscribe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server is the WebSocket gateway: it upgrades client connections into feed
// sessions, relays their subscribe/unsubscribe commands to the registry, and
// exposes the ingest surface the upstream ledger applier drives.
type Server struct {
	cfg      *config.Config
	registry *feed.Registry
	writer   LedgerWriter
	logger   *logging.ColoredLogger
	http     *http.Server
}

// NewServer wires the gateway. writer may be nil when ingest should not
// persist headers.
func NewServer(cfg *config.Config, registry *feed.Registry, writer LedgerWriter, logger *logging.ColoredLogger) *Server {
	s := &Server{
		cfg:      cfg,
		registry: registry,
		writer:   writer,
		logger:   logger,
	}
	s.http = &http.Server{
		Addr:         cfg.Server.ListenAddress,
		Handler:      s.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWS)
	r.Get("/report", s.handleReport)

	r.Route("/ingest", func(r chi.Router) {
		r.Post("/ledger", s.handleIngestLedger)
		r.Post("/manifest", s.handleIngestManifest)
		r.Post("/validation", s.handleIngestValidation)
		r.Post("/proposed", s.handleIngestProposed)
	})

	return r
}

// ListenAndServe runs the server until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.ComponentInfo(logging.ComponentGateway, "gateway listening",
		zap.String("address", s.cfg.Server.ListenAddress))
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// handleWS upgrades a connection and runs its command loop. The session dies
// with the connection; the registry prunes it lazily.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.ComponentWarn(logging.ComponentGateway, "websocket upgrade failed", zap.Error(err))
		return
	}

	sess := newWSSession(conn, s.cfg.Feed.SendQueueSize, s.logger)
	s.logger.ComponentInfo(logging.ComponentGateway, "session connected",
		zap.String("session", sess.uid), zap.String("remote", r.RemoteAddr))

	defer func() {
		sess.Close()
		s.logger.ComponentInfo(logging.ComponentGateway, "session disconnected",
			zap.String("session", sess.uid))
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.reply(sess, errResponse("malformed command"))
			continue
		}
		s.reply(sess, s.handleCommand(r.Context(), sess, cmd))
	}
}

// reply sends a command response through the session's own queue so replies
// and stream payloads share one ordered path.
func (s *Server) reply(sess *wsSession, resp response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.ComponentError(logging.ComponentGateway, "failed to marshal response", zap.Error(err))
		return
	}
	sess.Send(data)
}

// handleReport serves the per-stream live subscriber counts.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.registry.Report())
}
