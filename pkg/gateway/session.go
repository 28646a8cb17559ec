package gateway

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xrplwatch/feedhub/pkg/logging"
)

// nextSessionID hands out engine identities; the uuid is for humans.
var nextSessionID atomic.Uint64

const writeTimeout = 30 * time.Second

// wsSession adapts one WebSocket connection to the feed.Session interface.
// A single writer goroutine drains the outbound queue; Send never blocks,
// dropping when the queue is full.
type wsSession struct {
	id         uint64
	uid        string
	conn       *websocket.Conn
	apiVersion atomic.Int64
	logger     *logging.ColoredLogger

	out    chan []byte
	quit   chan struct{}
	closed atomic.Bool
	once   sync.Once
}

func newWSSession(conn *websocket.Conn, queueSize int, logger *logging.ColoredLogger) *wsSession {
	s := &wsSession{
		id:     nextSessionID.Add(1),
		uid:    uuid.NewString(),
		conn:   conn,
		logger: logger,
		out:    make(chan []byte, queueSize),
		quit:   make(chan struct{}),
	}
	s.apiVersion.Store(1)
	go s.writeLoop()
	return s
}

// ID implements feed.Session.
func (s *wsSession) ID() uint64 { return s.id }

// APIVersion implements feed.Session.
func (s *wsSession) APIVersion() int { return int(s.apiVersion.Load()) }

// Closed implements feed.Session.
func (s *wsSession) Closed() bool { return s.closed.Load() }

// Send implements feed.Session: best-effort, non-blocking enqueue.
func (s *wsSession) Send(payload []byte) {
	if s.closed.Load() {
		return
	}
	select {
	case s.out <- payload:
	case <-s.quit:
	default:
		s.logger.ComponentDebug(logging.ComponentGateway, "session queue full, dropping payload",
			zap.String("session", s.uid), zap.Int("len", len(payload)))
	}
}

// Close marks the session dead and tears down the connection. Safe to call
// from any goroutine, any number of times.
func (s *wsSession) Close() {
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.quit)
		s.conn.Close()
	})
}

func (s *wsSession) writeLoop() {
	for {
		select {
		case payload := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.logger.ComponentDebug(logging.ComponentGateway, "session write failed",
					zap.String("session", s.uid), zap.Error(err))
				s.Close()
				return
			}
		case <-s.quit:
			return
		}
	}
}
