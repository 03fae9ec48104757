package protocol

import (
	"io"
	"math"
)

// StatsNoFiles is the sentinel file name pushed while no download has been
// recorded yet.
const StatsNoFiles = "no files"

// MaxStatsNameLen is the longest file name the stats message can carry; the
// wire format length-prefixes the name with a single byte.
const MaxStatsNameLen = math.MaxUint8

// StatsMessage is the periodic statistics push.
// Format: [ActiveConnections (1 byte)][NameLen (1 byte)][Name (NameLen bytes)][TopCount (1 byte)]
//
// All numeric fields are 8-bit on the wire; values above 255 saturate and
// longer names are truncated. This is a deliberate wire-format constraint.
type StatsMessage struct {
	ActiveConnections uint8  // connections currently holding an admission slot
	TopFile           string // most-downloaded file name
	TopCount          uint8  // download count of the most-downloaded file
}

// NewStatsMessage builds a push message, saturating wide counter values into
// the 8-bit wire fields and truncating over-long names.
func NewStatsMessage(active int, topFile string, topCount int64) *StatsMessage {
	if len(topFile) > MaxStatsNameLen {
		topFile = topFile[:MaxStatsNameLen]
	}
	return &StatsMessage{
		ActiveConnections: saturateUint8(int64(active)),
		TopFile:           topFile,
		TopCount:          saturateUint8(topCount),
	}
}

func saturateUint8(v int64) uint8 {
	if v < 0 {
		return 0
	}
	if v > math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(v)
}

// Encode writes the message as four sequential fields.
func (m *StatsMessage) Encode(w io.Writer) error {
	name := m.TopFile
	if len(name) > MaxStatsNameLen {
		name = name[:MaxStatsNameLen]
	}

	if err := WriteUint8(w, m.ActiveConnections); err != nil {
		return err
	}
	if err := WriteUint8(w, uint8(len(name))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, name); err != nil {
		return err
	}
	return WriteUint8(w, m.TopCount)
}

// DecodeStats reads one statistics push from r.
func DecodeStats(r io.Reader) (*StatsMessage, error) {
	active, err := ReadUint8(r)
	if err != nil {
		return nil, err
	}

	nameLen, err := ReadUint8(r)
	if err != nil {
		return nil, err
	}

	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, err
	}

	count, err := ReadUint8(r)
	if err != nil {
		return nil, err
	}

	return &StatsMessage{
		ActiveConnections: active,
		TopFile:           string(name),
		TopCount:          count,
	}, nil
}
