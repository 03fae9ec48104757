package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aeolun/fileserv/pkg/protocol"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8089", "Server address")
	file := flag.String("file", "", "File name every client downloads")
	clients := flag.Int("clients", 10, "Number of concurrent clients")
	requests := flag.Int("requests", 10, "Downloads per client")
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}

	var (
		succeeded atomic.Int64
		failed    atomic.Int64
		bytesRead atomic.Int64
	)

	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < *requests; j++ {
				n, err := downloadOnce(*addr, *file)
				if err != nil {
					failed.Add(1)
					log.Printf("client %d request %d: %v", id, j, err)
					continue
				}
				succeeded.Add(1)
				bytesRead.Add(n)
			}
		}(i)
	}
	wg.Wait()

	elapsed := time.Since(start)
	total := succeeded.Load() + failed.Load()
	fmt.Printf("%d downloads in %v (%.1f/s)\n", total, elapsed.Round(time.Millisecond),
		float64(total)/elapsed.Seconds())
	fmt.Printf("  succeeded: %d\n", succeeded.Load())
	fmt.Printf("  failed:    %d\n", failed.Load())
	fmt.Printf("  received:  %d bytes\n", bytesRead.Load())
}

func downloadOnce(addr, name string) (int64, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if err := protocol.WriteCommand(conn, protocol.CmdDownload); err != nil {
		return 0, fmt.Errorf("send command: %w", err)
	}
	if _, err := conn.Write(protocol.EncodeDownloadRequest(name)); err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}

	n, err := io.Copy(io.Discard, conn)
	if err != nil {
		return n, fmt.Errorf("read: %w", err)
	}
	return n, nil
}
