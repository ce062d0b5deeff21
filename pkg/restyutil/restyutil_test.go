package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mutex     sync.Mutex
	exchanges map[string]string
}

func (m *memoryOutput) Write(id string, contents string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.exchanges[id] = contents
}

func TestDump(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		fmt.Fprint(w, `{"threads": []}`)
	}))
	defer server.Close()

	output := &memoryOutput{exchanges: map[string]string{}}
	client := resty.New()
	client.SetAuthToken("secret-token")
	Dump(client, output)

	_, err := client.R().Get(server.URL + "/api/courses/1/threads")
	require.NoError(t, err)
	_, err = client.R().Get(server.URL + "/api/user")
	require.NoError(t, err)

	require.Len(t, output.exchanges, 2)
	first := output.exchanges["1"]
	require.Contains(t, first, "GET "+server.URL+"/api/courses/1/threads")
	require.Contains(t, first, "200 OK")
	require.Contains(t, first, `{"threads": []}`)
	require.Contains(t, first, "Authorization: <redacted>")
	require.NotContains(t, first, "secret-token")
	require.True(t, strings.HasPrefix(first, "---- REQUEST ----"))
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "http")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("old"), 0600))

	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	output.Write("1", "exchange")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	contents, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	require.NoError(t, err)
	require.Equal(t, "exchange", string(contents))
}

func TestFormatRequestBodyWithoutBody(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://us.edstem.org/api/user", nil)
	require.NoError(t, err)
	req.GetBody = func() (io.ReadCloser, error) { return nil, nil }
	require.Equal(t, "", formatRequestBody(req))

	req, err = http.NewRequest(http.MethodPost, "https://us.edstem.org/api/threads", strings.NewReader(`{"title": "hw3"}`))
	require.NoError(t, err)
	require.Equal(t, `{"title": "hw3"}`, formatRequestBody(req))
}
