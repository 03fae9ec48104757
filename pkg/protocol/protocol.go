// Package protocol defines the wire format spoken by fileserv clients and
// servers: a single command byte selecting an operation, a plain-text download
// request terminated by '|', and the compact statistics push message.
//
// There is no protocol version byte and no framing around file content or
// error text; clients detect the end of a download by the server closing the
// connection, and anything that is not file bytes or a stats message is a raw
// human-readable error string.
package protocol

import (
	"errors"
	"fmt"
	"io"
)

// CommandType identifies the operation a client requests with its first byte.
type CommandType uint8

const (
	// CmdDownload requests a file transfer (filename=<name>| body follows).
	CmdDownload CommandType = 0x01
	// CmdUpload is a recognized wire value with no implementation behind it.
	CmdUpload CommandType = 0x02
	// CmdStatistics subscribes the connection to periodic stats pushes.
	CmdStatistics CommandType = 0x03
)

var (
	// ErrCommandParse indicates the command byte was unreadable, unknown, or
	// had no handler bound to it.
	ErrCommandParse = errors.New("could not parse command in request")
	// ErrRequestParse indicates the download request body did not match the
	// filename=<name>| grammar.
	ErrRequestParse = errors.New("could not parse filename in request")
)

func (c CommandType) String() string {
	switch c {
	case CmdDownload:
		return "Download"
	case CmdUpload:
		return "Upload"
	case CmdStatistics:
		return "Statistics"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", uint8(c))
	}
}

// ReadCommand reads exactly one command byte from the connection and maps it
// to a CommandType. A read failure or a byte outside the known set yields a
// recoverable ErrCommandParse.
func ReadCommand(r io.Reader) (CommandType, error) {
	b, err := ReadUint8(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCommandParse, err)
	}

	cmd := CommandType(b)
	switch cmd {
	case CmdDownload, CmdUpload, CmdStatistics:
		return cmd, nil
	}
	return 0, fmt.Errorf("%w: unknown command byte 0x%02X", ErrCommandParse, b)
}

// WriteCommand writes the command byte that opens every client connection.
func WriteCommand(w io.Writer, cmd CommandType) error {
	return WriteUint8(w, uint8(cmd))
}
