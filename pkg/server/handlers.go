package server

import (
	"bufio"
	"io"
	"net"

	"github.com/aeolun/fileserv/pkg/protocol"
)

// reportError writes the error text to the client as raw bytes. That text is
// the protocol's entire error channel; if even the report write fails there is
// nothing left to do but log it.
func reportError(conn net.Conn, err error) {
	errorLog.Printf("Reporting error to client %s: %v", conn.RemoteAddr(), err)
	if _, werr := conn.Write([]byte(err.Error())); werr != nil {
		errorLog.Printf("Failed to report error to client %s: %v", conn.RemoteAddr(), werr)
	}
}

// handleDownload services one download request: parse the file name, open it
// under the storage root, record the download, then stream the content in
// fixed-size chunks until EOF. The client detects completion by the
// connection closing; there is no end-of-stream marker.
func (s *Server) handleDownload(conn net.Conn) {
	name, err := protocol.ReadDownloadRequest(bufio.NewReader(conn))
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordDownloadError()
		}
		reportError(conn, err)
		return
	}

	f, err := s.root.Open(name)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordDownloadError()
		}
		reportError(conn, err)
		return
	}
	defer f.Close()

	// The download counts from the moment the open succeeds, even if the
	// stream aborts halfway.
	count := s.tracker.Record(name)
	if s.writes != nil {
		s.writes.RecordDownload(name)
	}
	if s.metrics != nil {
		s.metrics.RecordDownload(name)
	}
	debugLog.Printf("Streaming %q to %s (download %d)", name, conn.RemoteAddr(), count)

	buf := make([]byte, downloadChunkSize)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			if _, werr := conn.Write(buf[:n]); werr != nil {
				if s.metrics != nil {
					s.metrics.RecordDownloadError()
				}
				reportError(conn, werr)
				return
			}
			if s.metrics != nil {
				s.metrics.RecordBytesSent(n)
			}
		}
		if rerr == io.EOF {
			return
		}
		if rerr != nil {
			if s.metrics != nil {
				s.metrics.RecordDownloadError()
			}
			reportError(conn, rerr)
			return
		}
	}
}

// handleStatistics exists so the Statistics command has a handler bound in
// the registry. The actual subscription happens on the accept-loop side,
// which keeps the connection for the broadcaster instead of spawning a
// worker.
func (s *Server) handleStatistics(conn net.Conn) {}
