package utils

import (
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileNameFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/pub/image.iso", "image.iso"},
		{"https://example.com/pub/image.iso?X-Amz-Signature=abc#frag", "image.iso"},
		{"https://example.com/pub/dir/", "dir"},
		{"https://example.com/a%20b.txt", "a b.txt"},
	}
	for _, tt := range tests {
		got, err := FileNameFromURL(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"https://example.com", "https://example.com/", "::not a url"} {
		_, err := FileNameFromURL(bad)
		assert.Error(t, err, bad)
	}
	_, err := FileNameFromURL("https://example.com/")
	assert.ErrorIs(t, err, ErrNoFileName)
}

func TestParseHeaderArgs(t *testing.T) {
	headers := ParseHeaderArgs([]string{"Authorization: Basic abc", "X-Empty:", "malformed", "Cookie: a=b: c"})
	assert.Equal(t, map[string]string{
		"Authorization": "Basic abc",
		"X-Empty":       "",
		"Cookie":        "a=b: c",
	}, headers)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.50 KB", FormatBytes(1536))
	assert.Equal(t, "8.00 MB", FormatBytes(DefaultBufferSize))
}

func TestInspectJob(t *testing.T) {
	staging, completed := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(completed, "done.bin"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "half.bin"+PartSuffix), []byte("12345"), 0644))

	status, err := InspectJob("https://example.com/done.bin", staging, completed)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, status.State)

	status, err = InspectJob("https://example.com/half.bin", staging, completed)
	require.NoError(t, err)
	assert.Equal(t, StatePartial, status.State)
	assert.Equal(t, int64(5), status.PartialSize)

	status, err = InspectJob("https://example.com/none.bin", staging, completed)
	require.NoError(t, err)
	assert.Equal(t, StateMissing, status.State)
	assert.Equal(t, "none.bin", status.Name)

	_, err = InspectJob("https://example.com/", staging, completed)
	assert.ErrorIs(t, err, ErrNoFileName)
}

func TestCleanStaging(t *testing.T) {
	staging, completed := t.TempDir(), t.TempDir()
	write := func(dir, name string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	write(completed, "orphan.bin")
	write(staging, "orphan.bin"+PartSuffix)
	write(staging, "active.bin"+PartSuffix)
	write(staging, "notes.txt")

	removed, err := CleanStaging(staging, completed, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(staging, "orphan.bin"+PartSuffix)}, removed)
	assert.FileExists(t, filepath.Join(staging, "active.bin"+PartSuffix))

	removed, err = CleanStaging(staging, completed, true)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(staging, "active.bin"+PartSuffix)}, removed)
	assert.FileExists(t, filepath.Join(staging, "notes.txt"))

	removed, err = CleanStaging(filepath.Join(staging, "absent"), completed, true)
	assert.NoError(t, err)
	assert.Empty(t, removed)
}

func TestResumerHTTPClientSendsHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	client := NewResumerHTTPClient(HTTPClientConfig{
		UserAgent:   "tester/1.0",
		BearerToken: "s3cr3t",
		Headers:     map[string]string{"X-Team": "storage"},
	})
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/file.bin", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "tester/1.0", got.Get("User-Agent"))
	assert.Equal(t, "Bearer s3cr3t", got.Get("Authorization"))
	assert.Equal(t, "storage", got.Get("X-Team"))
	assert.Empty(t, got.Get("Accept-Encoding"))
}

func TestResumerHTTPClientDefaultUserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.UserAgent()
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := NewResumerHTTPClient(HTTPClientConfig{}).Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, ToolUserAgent, ua)
}

func TestOutcome(t *testing.T) {
	assert.True(t, OutcomeSkipped.Succeeded())
	assert.True(t, OutcomeCompleted.Succeeded())
	assert.False(t, OutcomeFailed.Succeeded())
	assert.False(t, OutcomeAborted.Succeeded())
	assert.Equal(t, "aborted", OutcomeAborted.String())
}

func TestChunkBufferPool(t *testing.T) {
	buf := GetChunkBuffer()
	assert.Len(t, *buf, StreamChunkSize)
	PutChunkBuffer(buf)
	short := make([]byte, 10)
	PutChunkBuffer(&short)
	assert.Len(t, *GetChunkBuffer(), StreamChunkSize)
}

func TestResumerHTTPClientKeepsTokenOnOriginHost(t *testing.T) {
	var offHost, sameHost string
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offHost = r.Header.Get("Authorization")
	}))
	defer target.Close()
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/moved.bin":
			http.Redirect(w, r, "/file.bin", http.StatusFound)
		case "/file.bin":
			sameHost = r.Header.Get("Authorization")
		default:
			// the target server, reached under another host name
			_, port, _ := net.SplitHostPort(target.Listener.Addr().String())
			http.Redirect(w, r, "http://localhost:"+port+"/file.bin", http.StatusFound)
		}
	}))
	defer origin.Close()

	client := NewResumerHTTPClient(HTTPClientConfig{BearerToken: "s3cr3t"})
	for _, path := range []string{"/moved.bin", "/cdn.bin"} {
		req, err := http.NewRequest(http.MethodGet, origin.URL+path, nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, "Bearer s3cr3t", sameHost)
	assert.Empty(t, offHost)
}

func TestResumerHTTPClientIgnoresCustomRange(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Range")
	}))
	defer srv.Close()

	client := NewResumerHTTPClient(HTTPClientConfig{Headers: map[string]string{"range": "bytes=0-", "X-Team": "storage"}})
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/file.bin", nil)
	require.NoError(t, err)
	req.Header.Set("Range", "bytes=10-")
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "bytes=10-", got)
}
