package protocol

import (
	"bufio"
	"fmt"
	"regexp"
)

// RequestTerminator ends a download request body. Everything after it is
// ignored by the request parser.
const RequestTerminator = '|'

// filenamePattern is compiled once at startup and read-only thereafter.
// Allowed request shape: filename=a_file_name|
var filenamePattern = regexp.MustCompile(`filename=([^|]+)\|`)

// ReadDownloadRequest reads the download request body from r, buffering bytes
// up to and including the terminator, and returns the requested file name.
func ReadDownloadRequest(r *bufio.Reader) (string, error) {
	raw, err := r.ReadBytes(RequestTerminator)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestParse, err)
	}
	return ParseDownloadRequest(raw)
}

// ParseDownloadRequest matches raw against the request grammar and extracts
// the file name.
func ParseDownloadRequest(raw []byte) (string, error) {
	m := filenamePattern.FindSubmatch(raw)
	if m == nil {
		return "", fmt.Errorf("%w: file name not found", ErrRequestParse)
	}
	return string(m[1]), nil
}

// EncodeDownloadRequest builds the request body a client sends after the
// Download command byte.
func EncodeDownloadRequest(name string) []byte {
	return []byte("filename=" + name + string(RequestTerminator))
}
