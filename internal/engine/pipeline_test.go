package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/cosmico/webinar/internal/domain"
	"github.com/cosmico/webinar/internal/infra/config"
	"github.com/cosmico/webinar/internal/infra/httpclient"
	"github.com/cosmico/webinar/internal/infra/logger"
	"github.com/cosmico/webinar/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mediaHost serves fixed bodies by path and counts requests per path.
type mediaHost struct {
	mu     sync.Mutex
	files  map[string][]byte
	hits   map[string]int
	agents map[string]bool
}

func newMediaHost(t *testing.T, files map[string][]byte) (*mediaHost, *httptest.Server) {
	h := &mediaHost{
		files:  files,
		hits:   make(map[string]int),
		agents: make(map[string]bool),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.hits[r.URL.Path]++
		h.agents[r.UserAgent()] = true
		body, ok := h.files[r.URL.Path]
		h.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return h, srv
}

func (h *mediaHost) hitCount(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits[path]
}

func (h *mediaHost) userAgents() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.agents))
	for ua := range h.agents {
		out = append(out, ua)
	}
	return out
}

func newTestPipeline(outDir string, workers int, reporter progress.Reporter, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Discard()
	}
	return NewPipeline(config.DownloadConfig{
		OutDir:    outDir,
		Workers:   workers,
		ChunkSize: 8192,
	}, &http.Client{}, reporter, log)
}

func maxDone(events []progress.Event) int64 {
	var max int64
	for _, ev := range events {
		if ev.Kind == progress.KindOverallAdvanced && ev.Done > max {
			max = ev.Done
		}
	}
	return max
}

func lastOf(events []progress.Event, kind progress.Kind) progress.Event {
	var last progress.Event
	for _, ev := range events {
		if ev.Kind == kind {
			last = ev
		}
	}
	return last
}

func TestRunExactlyOnce(t *testing.T) {
	const count = 12
	files := make(map[string][]byte)
	var jobs []domain.DownloadJob
	for i := 0; i < count; i++ {
		path := fmt.Sprintf("/vod-%d.mp4", i)
		files[path] = bytes.Repeat([]byte{byte(i)}, 5000*i+1)
	}
	host, srv := newMediaHost(t, files)
	for i := 0; i < count; i++ {
		jobs = append(jobs, domain.NewDownloadJob(fmt.Sprintf("Webinar %d", i), fmt.Sprintf("%s/vod-%d.mp4", srv.URL, i), ""))
	}

	outDir := filepath.Join(t.TempDir(), "nested", "output")
	rec := &progress.Recorder{}
	sum, err := newTestPipeline(outDir, 3, rec, nil).Run(context.Background(), jobs)
	require.NoError(t, err)

	assert.Equal(t, count, sum.Total)
	assert.Equal(t, count, sum.Succeeded)
	assert.Equal(t, 0, sum.Remaining())
	assert.False(t, sum.Interrupted)
	assert.NotEmpty(t, sum.RunID)

	for i := 0; i < count; i++ {
		got, err := os.ReadFile(filepath.Join(outDir, fmt.Sprintf("webinar-%d.mp4", i)))
		require.NoError(t, err)
		assert.Equal(t, files[fmt.Sprintf("/vod-%d.mp4", i)], got)
		assert.Equal(t, 1, host.hitCount(fmt.Sprintf("/vod-%d.mp4", i)))
	}

	assert.Equal(t, count, rec.Count(progress.KindJobSucceeded))
	assert.Equal(t, count, rec.Count(progress.KindTrackerAdded))
	assert.Equal(t, count, rec.Count(progress.KindTrackerRemoved))
	assert.Equal(t, int64(count), maxDone(rec.Events()))
	assert.Equal(t, []string{config.BrowserUserAgent}, host.userAgents())

	var written int64
	for _, ev := range rec.Events() {
		if ev.Kind == progress.KindJobProgress {
			assert.LessOrEqual(t, ev.Bytes, int64(8192))
			written += ev.Bytes
		}
	}
	assert.Equal(t, sum.BytesWritten, written)
}

func TestRunIdempotentRerun(t *testing.T) {
	_, srv := newMediaHost(t, map[string][]byte{
		"/a.mp4": bytes.Repeat([]byte("a"), 20000),
		"/b.mp4": bytes.Repeat([]byte("b"), 300),
	})
	jobs := []domain.DownloadJob{
		domain.NewDownloadJob("Alpha", srv.URL+"/a.mp4", ""),
		domain.NewDownloadJob("Beta", srv.URL+"/b.mp4", ""),
	}
	outDir := t.TempDir()

	first, err := newTestPipeline(outDir, 2, nil, nil).Run(context.Background(), jobs)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Succeeded)

	rec := &progress.Recorder{}
	second, err := newTestPipeline(outDir, 2, rec, nil).Run(context.Background(), jobs)
	require.NoError(t, err)

	assert.Equal(t, 2, second.Skipped)
	assert.Equal(t, int64(0), second.BytesWritten)
	assert.Equal(t, 0, rec.Count(progress.KindTrackerAdded))
	assert.Equal(t, 0, rec.Count(progress.KindJobProgress))
	assert.Equal(t, int64(2), maxDone(rec.Events()))
}

func TestRunNotFoundKeepsWorkerAlive(t *testing.T) {
	_, srv := newMediaHost(t, map[string][]byte{
		"/a.mp4": []byte("first"),
		"/c.mp4": []byte("third"),
	})
	jobs := []domain.DownloadJob{
		domain.NewDownloadJob("A", srv.URL+"/a.mp4", ""),
		domain.NewDownloadJob("B", srv.URL+"/b.mp4", ""),
		domain.NewDownloadJob("C", srv.URL+"/c.mp4", ""),
	}

	var logs bytes.Buffer
	rec := &progress.Recorder{}
	sum, err := newTestPipeline(t.TempDir(), 2, rec, logger.NewWithWriter(&logs, logger.LevelDebug)).Run(context.Background(), jobs)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 0, sum.Remaining())

	// Failures count as done for the overall bar
	assert.Equal(t, int64(3), maxDone(rec.Events()))

	var failed progress.Event
	for _, ev := range rec.Events() {
		if ev.Kind == progress.KindJobFailed {
			failed = ev
		}
	}
	var statusErr *httpclient.StatusError
	require.True(t, errors.As(failed.Err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, logs.String(), `Download of "B" failed`)
	assert.NotContains(t, logs.String(), "stopping after unexpected error")
}

func TestRunErrorStatusNeverSkips(t *testing.T) {
	const page = "<html>not found</html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(page)))
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	// A local file whose size matches the error body
	outDir := t.TempDir()
	local := bytes.Repeat([]byte("x"), len(page))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "gone.mp4"), local, 0644))

	rec := &progress.Recorder{}
	sum, err := newTestPipeline(outDir, 1, rec, nil).Run(context.Background(), []domain.DownloadJob{
		domain.NewDownloadJob("Gone", srv.URL+"/gone.mp4", ""),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 0, sum.Skipped)
	assert.Equal(t, 1, rec.Count(progress.KindJobFailed))
	assert.Equal(t, 0, rec.Count(progress.KindJobSkipped))

	var statusErr *httpclient.StatusError
	require.True(t, errors.As(lastOf(rec.Events(), progress.KindJobFailed).Err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)

	got, err := os.ReadFile(filepath.Join(outDir, "gone.mp4"))
	require.NoError(t, err)
	assert.Equal(t, local, got)
}

func TestRunFatalErrorStopsOnlyThatWorker(t *testing.T) {
	_, srv := newMediaHost(t, map[string][]byte{
		"/a.mp4": []byte("alpha"),
		"/b.mp4": []byte("beta"),
	})

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	t.Run("single worker stops", func(t *testing.T) {
		jobs := []domain.DownloadJob{
			domain.NewDownloadJob("Broken", deadURL+"/x.mp4", ""),
			domain.NewDownloadJob("A", srv.URL+"/a.mp4", ""),
		}
		rec := &progress.Recorder{}
		sum, err := newTestPipeline(t.TempDir(), 1, rec, nil).Run(context.Background(), jobs)
		require.NoError(t, err)

		assert.Equal(t, 1, sum.Failed)
		assert.Equal(t, 0, sum.Succeeded)
		assert.Equal(t, 1, sum.Remaining())
		assert.Equal(t, int64(1), maxDone(rec.Events()))

		// Jobs were left over but nobody interrupted the run
		finished := lastOf(rec.Events(), progress.KindRunFinished)
		assert.False(t, sum.Interrupted)
		assert.False(t, finished.Interrupted)
		assert.Equal(t, int64(1), finished.Done)
		assert.Equal(t, int64(2), finished.Total)
	})

	t.Run("siblings keep going", func(t *testing.T) {
		jobs := []domain.DownloadJob{
			domain.NewDownloadJob("Broken", deadURL+"/x.mp4", ""),
			domain.NewDownloadJob("A", srv.URL+"/a.mp4", ""),
			domain.NewDownloadJob("B", srv.URL+"/b.mp4", ""),
		}
		sum, err := newTestPipeline(t.TempDir(), 2, nil, nil).Run(context.Background(), jobs)
		require.NoError(t, err)

		assert.Equal(t, 1, sum.Failed)
		assert.Equal(t, 2, sum.Succeeded)
		assert.Equal(t, 0, sum.Remaining())
	})
}

func TestRunSlugCollision(t *testing.T) {
	_, srv := newMediaHost(t, map[string][]byte{
		"/a.mp4": []byte("first talk"),
		"/b.mp4": []byte("second talk, longer"),
	})
	jobs := []domain.DownloadJob{
		domain.NewDownloadJob("Intro to X", srv.URL+"/a.mp4", ""),
		domain.NewDownloadJob("Intro to X", srv.URL+"/b.mp4", ""),
	}
	outDir := t.TempDir()

	sum, err := newTestPipeline(outDir, 1, nil, nil).Run(context.Background(), jobs)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Succeeded)

	first, err := os.ReadFile(filepath.Join(outDir, "intro-to-x.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "first talk", string(first))

	second, err := os.ReadFile(filepath.Join(outDir, "intro-to-x-"+domain.ShortHash(srv.URL+"/b.mp4")+".mp4"))
	require.NoError(t, err)
	assert.Equal(t, "second talk, longer", string(second))

	again, err := newTestPipeline(outDir, 1, nil, nil).Run(context.Background(), jobs)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Skipped)
}

func TestRunSkipsEmptyFileWithoutContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Flushing before the handler returns forces a chunked response
		w.(http.Flusher).Flush()
	}))
	defer srv.Close()

	outDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "empty.mp4"), nil, 0644))

	sum, err := newTestPipeline(outDir, 1, nil, nil).Run(context.Background(), []domain.DownloadJob{
		domain.NewDownloadJob("Empty", srv.URL+"/empty.mp4", ""),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
}

// stallingServer sends one chunk of a large body and then blocks.
func stallingServer(t *testing.T) *httptest.Server {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(1<<20))
		w.Write(make([]byte, 8192))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })
	return srv
}

func runWithTimeout(t *testing.T, fn func() (Summary, error)) Summary {
	t.Helper()
	type result struct {
		sum Summary
		err error
	}
	done := make(chan result, 1)
	go func() {
		sum, err := fn()
		done <- result{sum, err}
	}()

	select {
	case r := <-done:
		require.NoError(t, r.err)
		return r.sum
	case <-time.After(10 * time.Second):
		t.Fatal("pipeline did not return after cancellation")
		return Summary{}
	}
}

func TestRunCancelMidTransfer(t *testing.T) {
	srv := stallingServer(t)
	outDir := t.TempDir()

	sig := NewCancellation()
	rec := &progress.Recorder{}
	reporter := progress.ReporterFunc(func(ev progress.Event) {
		rec.Report(ev)
		if ev.Kind == progress.KindJobProgress {
			sig.Cancel()
		}
	})

	jobs := []domain.DownloadJob{
		domain.NewDownloadJob("Slow", srv.URL+"/slow.mp4", ""),
		domain.NewDownloadJob("Never", srv.URL+"/never.mp4", ""),
	}
	p := newTestPipeline(outDir, 1, reporter, nil)

	sum := runWithTimeout(t, func() (Summary, error) {
		return p.RunWithCancellation(context.Background(), jobs, sig)
	})

	assert.True(t, sum.Interrupted)
	assert.Equal(t, 1, sum.Cancelled)
	assert.Equal(t, 1, sum.Remaining())
	assert.Equal(t, 0, rec.Count(progress.KindOverallAdvanced))
	assert.Equal(t, 1, rec.Count(progress.KindTrackerRemoved))
	assert.True(t, lastOf(rec.Events(), progress.KindRunFinished).Interrupted)

	// The partial file is left in place
	info, err := os.Stat(filepath.Join(outDir, "slow.mp4"))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.LessOrEqual(t, info.Size(), int64(8192))

	_, err = os.Stat(filepath.Join(outDir, "never.mp4"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunInterruptedByContext(t *testing.T) {
	srv := stallingServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var once sync.Once
	reporter := progress.ReporterFunc(func(ev progress.Event) {
		if ev.Kind == progress.KindJobProgress {
			once.Do(cancel)
		}
	})

	var logs bytes.Buffer
	p := newTestPipeline(t.TempDir(), 2, reporter, logger.NewWithWriter(&logs, logger.LevelInfo))

	sum := runWithTimeout(t, func() (Summary, error) {
		return p.Run(ctx, []domain.DownloadJob{
			domain.NewDownloadJob("Slow", srv.URL+"/slow.mp4", ""),
		})
	})

	assert.True(t, sum.Interrupted)
	assert.Equal(t, 1, sum.Cancelled)
	assert.Equal(t, 1, bytes.Count(logs.Bytes(), []byte("Interrupted")))
}

func TestRunNoJobs(t *testing.T) {
	rec := &progress.Recorder{}
	sum, err := newTestPipeline(t.TempDir(), 2, rec, nil).Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, sum.Total)
	assert.Equal(t, 0, sum.Remaining())
	assert.Equal(t, 1, rec.Count(progress.KindRunStarted))
	assert.Equal(t, 1, rec.Count(progress.KindRunFinished))
}
