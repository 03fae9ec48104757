package protocol

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDownloadRequest(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantName string
		wantErr  bool
	}{
		{
			name:     "simple file name",
			raw:      "filename=report.txt|",
			wantName: "report.txt",
		},
		{
			name:     "underscores and digits",
			raw:      "filename=a_file_name_2|",
			wantName: "a_file_name_2",
		},
		{
			name:     "trailing bytes after terminator are ignored",
			raw:      "filename=data.bin|garbage",
			wantName: "data.bin",
		},
		{
			name:    "empty name",
			raw:     "filename=|",
			wantErr: true,
		},
		{
			name:    "missing key",
			raw:     "file=data.bin|",
			wantErr: true,
		},
		{
			name:    "no terminator",
			raw:     "filename=data.bin",
			wantErr: true,
		},
		{
			name:    "empty body",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, err := ParseDownloadRequest([]byte(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrRequestParse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestReadDownloadRequestStopsAtTerminator(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("filename=movie.mkv|filename=other|"))

	name, err := ReadDownloadRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "movie.mkv", name)
}

func TestReadDownloadRequestTruncatedStream(t *testing.T) {
	// Client closed before sending the terminator.
	r := bufio.NewReader(strings.NewReader("filename=half"))

	_, err := ReadDownloadRequest(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestParse)
}

func TestEncodeDownloadRequestRoundTrip(t *testing.T) {
	raw := EncodeDownloadRequest("archive.tar.gz")

	name, err := ParseDownloadRequest(raw)
	require.NoError(t, err)
	assert.Equal(t, "archive.tar.gz", name)
}

func TestReadCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    CommandType
		wantErr bool
	}{
		{name: "download", input: []byte{0x01}, want: CmdDownload},
		{name: "upload", input: []byte{0x02}, want: CmdUpload},
		{name: "statistics", input: []byte{0x03}, want: CmdStatistics},
		{name: "unknown byte", input: []byte{0x7F}, wantErr: true},
		{name: "empty stream", input: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ReadCommand(strings.NewReader(string(tt.input)))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrCommandParse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}
