package server

import (
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/aeolun/fileserv/pkg/database"
	"github.com/aeolun/fileserv/pkg/protocol"
	"github.com/aeolun/fileserv/pkg/storage"
)

// downloadChunkSize is the fixed size of each write while streaming a file.
const downloadChunkSize = 1024

var (
	errorLog = log.New(os.Stderr, "ERROR: ", log.LstdFlags)
	debugLog = log.New(io.Discard, "DEBUG: ", log.LstdFlags)
)

// Server is the bounded-concurrency TCP file server. It owns the listener,
// the admission gate, the handler registry, the stats subscriber registry and
// the per-file usage tracker.
type Server struct {
	config      ServerConfig
	listener    net.Listener
	gate        *Gate
	tracker     *UsageTracker
	subscribers *SubscriberRegistry
	handlers    map[protocol.CommandType]HandlerFunc
	root        *storage.Root
	db          *database.DB
	writes      *database.WriteBuffer
	metrics     *Metrics
	startTime   time.Time
	shutdown    chan struct{}
	wg          sync.WaitGroup
}

// HandlerFunc services one accepted connection for a single command. The
// command byte has already been consumed when the handler runs.
type HandlerFunc func(conn net.Conn)

// NewServer creates a new server instance: it ensures the storage root
// exists, opens the stats database when one is configured and seeds the usage
// tracker from it, and registers the default command handlers.
func NewServer(config ServerConfig) (*Server, error) {
	root, err := storage.Ensure(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare root directory: %w", err)
	}

	if config.BroadcastInterval <= 0 {
		config.BroadcastInterval = DefaultConfig().BroadcastInterval
	}

	s := &Server{
		config:      config,
		gate:        NewGate(config.MaxConnections),
		tracker:     NewUsageTracker(),
		subscribers: NewSubscriberRegistry(),
		handlers:    make(map[protocol.CommandType]HandlerFunc),
		root:        root,
		startTime:   time.Now(),
		shutdown:    make(chan struct{}),
	}

	if config.DatabasePath != "" {
		db, err := database.Open(config.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open stats database: %w", err)
		}

		counts, err := db.FileCounts()
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to load persisted counts: %w", err)
		}
		s.tracker.Seed(counts)

		s.db = db
		s.writes = database.NewWriteBuffer(db, 1*time.Second)
	}

	s.RegisterHandler(protocol.CmdDownload, s.handleDownload)
	s.RegisterHandler(protocol.CmdStatistics, s.handleStatistics)

	return s, nil
}

// RegisterHandler binds a handler to a command type. The registry is read by
// the accept loop without locking, so registration must happen before Start.
func (s *Server) RegisterHandler(cmd protocol.CommandType, handler HandlerFunc) {
	s.handlers[cmd] = handler
}

// SetMetrics attaches metrics to the server
func (s *Server) SetMetrics(metrics *Metrics) {
	s.metrics = metrics
}

// EnableDebugLogging turns on verbose per-connection logging
func (s *Server) EnableDebugLogging() {
	debugLog.SetOutput(os.Stderr)
}

// RootDir returns the directory downloads are served from.
func (s *Server) RootDir() string {
	return s.root.Path()
}

// Addr returns the listener address, valid after Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start binds the listener and launches the accept loop and the stats
// broadcaster.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Address, strconv.Itoa(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = listener
	log.Printf("TCP file server listening on %s (max %d connections)", listener.Addr(), s.gate.Capacity())

	s.wg.Add(1)
	go s.statsLoop()

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop gracefully stops the server: it stops accepting, waits for in-flight
// downloads and the broadcaster, closes subscriber connections and flushes
// persisted counts.
func (s *Server) Stop() error {
	close(s.shutdown)

	if s.listener != nil {
		s.listener.Close()
		s.listener = nil
	}

	// Wait for the accept loop, the broadcaster and download workers
	s.wg.Wait()

	s.subscribers.CloseAll()

	if s.writes != nil {
		s.writes.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// acceptLoop accepts incoming connections one at a time: accept, acquire an
// admission slot, then route by command byte.
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	listener := s.listener
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				errorLog.Printf("Accept error: %v", err)
				continue
			}
		}

		// Disable Nagle's algorithm for immediate sends
		if tcpConn, ok := conn.(*net.TCPConn); ok {
			tcpConn.SetNoDelay(true)
		}

		if !s.gate.Acquire(s.shutdown) {
			conn.Close()
			return
		}
		if s.metrics != nil {
			s.metrics.RecordActiveConnections(s.gate.InUse())
		}

		s.route(conn)
	}
}

// route reads the command byte from a freshly accepted connection and hands
// it to the registered handler. Download runs in its own worker goroutine;
// Statistics keeps the connection on the broadcaster side; parse failures are
// terminal for this connection only.
func (s *Server) route(conn net.Conn) {
	cmd, err := protocol.ReadCommand(conn)
	if err != nil {
		reportError(conn, err)
		s.finish(conn)
		return
	}

	debugLog.Printf("Connection from %s: command %s", conn.RemoteAddr(), cmd)

	if cmd == protocol.CmdUpload {
		// Recognized wire value with nothing behind it. Answered as an
		// ordinary per-connection error; the server keeps serving.
		reportError(conn, fmt.Errorf("%w: upload not implemented", protocol.ErrCommandParse))
		s.finish(conn)
		return
	}

	handler, ok := s.handlers[cmd]
	if !ok {
		reportError(conn, fmt.Errorf("%w: no handler for command %s", protocol.ErrCommandParse, cmd))
		s.finish(conn)
		return
	}

	switch cmd {
	case protocol.CmdStatistics:
		// Subscription happens here on the accept-loop side: the connection
		// is stored for the broadcaster instead of getting a worker. Its
		// admission slot is released right away, since a subscriber consumes
		// no serving capacity beyond the periodic write.
		id := s.subscribers.Add(conn)
		s.release()
		log.Printf("Client %s registered on statistics endpoint (connection id %d)", conn.RemoteAddr(), id)
		if s.metrics != nil {
			s.metrics.RecordStatsSubscribers(s.subscribers.Count())
		}

	default:
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.finish(conn)
			handler(conn)
		}()
	}
}

// finish closes a serviced connection and returns its admission slot.
func (s *Server) finish(conn net.Conn) {
	conn.Close()
	s.release()
}

func (s *Server) release() {
	s.gate.Release()
	if s.metrics != nil {
		s.metrics.RecordActiveConnections(s.gate.InUse())
	}
}
