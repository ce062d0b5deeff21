package edapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"edarchive/internal/components/telemetry"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const testToken = "test-token"

func newTestClient(t testing.TB, handler http.Handler) (*Client, *telemetry.Recorder) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	rec := telemetry.NewRecorder(t)
	client, err := NewClient(ClientOptions{
		BaseUrl:           server.URL + "/api",
		Token:             testToken,
		RequestsPerSecond: -1,
	}, rec)
	require.NoError(t, err)
	return client, rec
}

func requireAuth(t testing.TB, r *http.Request) {
	require.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient(ClientOptions{}, telemetry.NewRecorder(t))
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestLogin(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/user", r.URL.Path)
		requireAuth(t, r)
		fmt.Fprint(w, `{"user": {"id": 7, "name": "Ada Lovelace", "email": "ada@example.com"}, "courses": []}`)
	}))

	user, err := client.Login(context.Background())
	require.NoError(t, err)
	require.Equal(t, User{Id: 7, Name: "Ada Lovelace", Email: "ada@example.com"}, user)
}

type dumpOutput map[string]string

func (d dumpOutput) Write(id string, contents string) {
	d[id] = contents
}

func TestLoginDumpsExchanges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"user": {"id": 7, "name": "Ada Lovelace"}}`)
	}))
	defer server.Close()

	out := dumpOutput{}
	client, err := NewClient(ClientOptions{
		BaseUrl:           server.URL + "/api",
		Token:             testToken,
		RequestsPerSecond: -1,
		Dump:              out,
	}, telemetry.NewRecorder(t))
	require.NoError(t, err)

	_, err = client.Login(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Contains(t, out["1"], "GET "+server.URL+"/api/user")
	require.Contains(t, out["1"], "Ada Lovelace")
	require.NotContains(t, out["1"], testToken)
}

func TestLoginSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracing, err := telemetry.NewTracing("edarchive-test", sdktrace.WithSyncer(exporter))
	require.NoError(t, err)
	defer tracing.Shutdown(context.Background())

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	_, err = client.Login(context.Background())
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Equal(t, "client:Login", spans[0].Name)
	require.Equal(t, "login failed", spans[0].Status.Description)

	var events []string
	for _, event := range spans[0].Events {
		events = append(events, event.Name)
	}
	require.Contains(t, events, "http.response")
	require.Contains(t, events, "exception")
}

func TestLoginRejected(t *testing.T) {
	client, rec := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"code": "bad_token"}`)
	}))

	_, err := client.Login(context.Background())
	require.Error(t, err)
	require.Len(t, rec.Reports("broken", report_client_login), 1)
}

func TestListThreadsShapes(t *testing.T) {
	testCases := []struct {
		name          string
		body          string
		expectedIds   []int64
		expectedTotal int64
	}{
		{
			name:          "threads key",
			body:          `{"threads": [{"id": 1, "number": 10, "title": "a"}, {"id": 2, "number": 11, "title": "b"}], "total": 40}`,
			expectedIds:   []int64{1, 2},
			expectedTotal: 40,
		},
		{
			name:          "data key",
			body:          `{"data": [{"id": 3}], "count": 1}`,
			expectedIds:   []int64{3},
			expectedTotal: 1,
		},
		{
			name:          "items key",
			body:          `{"items": [{"id": 4}]}`,
			expectedIds:   []int64{4},
			expectedTotal: -1,
		},
		{
			name:          "bare array",
			body:          `[{"id": 5}, {"id": 6}]`,
			expectedIds:   []int64{5, 6},
			expectedTotal: -1,
		},
		{
			name:          "no threads",
			body:          `{"users": []}`,
			expectedIds:   nil,
			expectedTotal: -1,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/api/courses/84647/threads", r.URL.Path)
				require.Equal(t, "30", r.URL.Query().Get("limit"))
				require.Equal(t, "60", r.URL.Query().Get("offset"))
				requireAuth(t, r)
				fmt.Fprint(w, test.body)
			}))

			page, err := client.ListThreads(context.Background(), 84647, 60, 30)
			require.NoError(t, err)
			require.Equal(t, test.expectedTotal, page.Total)

			var ids []int64
			for _, thread := range page.Threads {
				ids = append(ids, thread.Id)
			}
			require.Equal(t, test.expectedIds, ids)
		})
	}
}

func TestListThreadsSkipsUndecodableItems(t *testing.T) {
	client, rec := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"threads": [{"id": 1}, {"id": "not a number"}, {"id": 3}]}`)
	}))

	page, err := client.ListThreads(context.Background(), 1, 0, 100)
	require.NoError(t, err)
	require.Equal(t, 3, page.Count)
	require.Len(t, page.Threads, 2)
	require.Len(t, rec.Reports("warning", report_client_list_threads), 1)
}

func threadPage(from, count int) string {
	threads := make([]map[string]any, count)
	for i := range threads {
		threads[i] = map[string]any{
			"id":     from + i,
			"number": from + i,
			"title":  fmt.Sprintf("thread %d", from+i),
		}
	}
	out, _ := json.Marshal(map[string]any{"threads": threads})
	return string(out)
}

func TestListAllThreadsPaginates(t *testing.T) {
	var offsets []int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		require.NoError(t, err)
		offsets = append(offsets, offset)

		switch offset {
		case 0:
			fmt.Fprint(w, threadPage(0, 10))
		case 10:
			fmt.Fprint(w, threadPage(10, 10))
		case 20:
			fmt.Fprint(w, threadPage(20, 4))
		default:
			t.Fatalf("unexpected offset %d", offset)
		}
	}))

	threads, err := client.ListAllThreads(context.Background(), 1, 10, 1000)
	require.NoError(t, err)
	require.Len(t, threads, 24)
	require.Equal(t, []int{0, 10, 20}, offsets)
	require.Equal(t, int64(23), threads[23].Id)
}

func TestListAllThreadsStopsAtMaxOffset(t *testing.T) {
	requests := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		fmt.Fprint(w, threadPage(offset, 5))
	}))

	threads, err := client.ListAllThreads(context.Background(), 1, 5, 12)
	require.NoError(t, err)
	// offsets 0, 5, 10 are fetched, the next offset (15) is past the limit
	require.Equal(t, 3, requests)
	require.Len(t, threads, 15)
}

func TestListAllThreadsPartialFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") != "0" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, threadPage(0, 3))
	}))

	threads, err := client.ListAllThreads(context.Background(), 1, 3, 100)
	require.NoError(t, err)
	require.Len(t, threads, 3)
}

func TestListAllThreadsFirstPageFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := client.ListAllThreads(context.Background(), 1, 3, 100)
	require.Error(t, err)
}

func TestGetThread(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireAuth(t, r)
		switch r.URL.Path {
		case "/api/threads/55":
			fmt.Fprint(w, `{"thread": {"id": 55, "number": 9, "title": "HW1 Q1", "content": "<document/>", "extra": {"nested": true}}, "users": []}`)
		case "/api/threads/56":
			fmt.Fprint(w, `{"id": 56, "title": "bare"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	thread, err := client.GetThread(context.Background(), 55)
	require.NoError(t, err)
	require.Equal(t, int64(55), thread.Id)
	require.Equal(t, int64(9), thread.Number)
	require.Equal(t, "HW1 Q1", thread.Title)
	fields, err := thread.Fields()
	require.NoError(t, err)
	require.JSONEq(t, `{"nested": true}`, string(fields["extra"]))

	thread, err = client.GetThread(context.Background(), 56)
	require.NoError(t, err)
	require.Equal(t, "bare", thread.Title)

	_, err = client.GetThread(context.Background(), 57)
	require.Error(t, err)
}

func TestDownload(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireAuth(t, r)
		switch r.URL.Path {
		case "/files/notes.pdf":
			fmt.Fprint(w, "%PDF-1.4 pretend")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	baseUrl := client.Http.BaseURL[:len(client.Http.BaseURL)-len("/api")]

	dir := t.TempDir()
	dest := filepath.Join(dir, "notes.pdf")
	n, err := client.Download(context.Background(), baseUrl+"/files/notes.pdf", dest)
	require.NoError(t, err)
	require.Equal(t, int64(len("%PDF-1.4 pretend")), n)

	contents, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 pretend", string(contents))

	missing := filepath.Join(dir, "missing.pdf")
	_, err = client.Download(context.Background(), baseUrl+"/files/missing.pdf", missing)
	require.Error(t, err)
	_, err = os.Stat(missing)
	require.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestThreadAuthor(t *testing.T) {
	require.Equal(t, "Anonymous", Thread{}.Author())
	require.Equal(t, "Grace", Thread{User: &User{Name: "Grace"}}.Author())
}
