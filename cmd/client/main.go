package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"

	"github.com/aeolun/fileserv/pkg/protocol"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8089", "Server address")
	download := flag.String("download", "", "File name to download")
	output := flag.String("output", "", "Write the downloaded file here instead of stdout")
	stats := flag.Bool("stats", false, "Subscribe to statistics pushes")
	count := flag.Int("count", 0, "Stop after this many stats messages (0 = forever)")
	flag.Parse()

	switch {
	case *download != "":
		if err := downloadFile(*addr, *download, *output); err != nil {
			log.Fatalf("Download failed: %v", err)
		}
	case *stats:
		if err := watchStats(*addr, *count); err != nil {
			log.Fatalf("Stats subscription failed: %v", err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func downloadFile(addr, name, output string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	if err := protocol.WriteCommand(conn, protocol.CmdDownload); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	if _, err := conn.Write(protocol.EncodeDownloadRequest(name)); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	out := io.Writer(os.Stdout)
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	// The server signals the end of the file by closing the connection
	n, err := io.Copy(out, conn)
	if err != nil {
		return fmt.Errorf("transfer aborted after %d bytes: %w", n, err)
	}

	if output != "" {
		log.Printf("Received %d bytes into %s", n, output)
	}
	return nil
}

func watchStats(addr string, count int) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	if err := protocol.WriteCommand(conn, protocol.CmdStatistics); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	for i := 0; count == 0 || i < count; i++ {
		msg, err := protocol.DecodeStats(conn)
		if err != nil {
			return fmt.Errorf("failed to read stats message: %w", err)
		}
		fmt.Printf("active=%d most_downloaded=%q downloads=%d\n",
			msg.ActiveConnections, msg.TopFile, msg.TopCount)
	}
	return nil
}
