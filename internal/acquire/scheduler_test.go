package acquire

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmorenoc/cronograma/internal/findings"
	"github.com/dmorenoc/cronograma/internal/store"
)

var imageColumns = []int{24, 25, 26, 27, 28, 29}

type fakeFetcher struct {
	mu     sync.Mutex
	calls  []string
	failOn map[string]error
}

func (f *fakeFetcher) Fetch(_ context.Context, task findings.DownloadTask) (findings.FetchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, task.URL)
	f.mu.Unlock()
	if err, ok := f.failOn[task.URL]; ok {
		return findings.FetchResult{}, err
	}
	payload := []byte(task.URL)
	return findings.FetchResult{
		Bytes:  payload,
		Base64: base64.StdEncoding.EncodeToString(payload),
	}, nil
}

func wideRow(category string, urls map[int]string) []string {
	row := make([]string, 30)
	row[1] = category
	for col, url := range urls {
		row[col] = url
	}
	return row
}

func TestAcquirePopulatesStore(t *testing.T) {
	fetcher := &fakeFetcher{failOn: map[string]error{
		"http://img/b.jpg": &findings.FetchError{Kind: findings.FailureHTTPStatus, StatusCode: 404},
	}}
	sched := New(fetcher, 4, imageColumns, zap.NewNop())

	cs := findings.CategorySheet{
		Category: "A",
		Header:   make([]string, 30),
		Rows: [][]string{
			wideRow("A", map[int]string{24: "http://img/a.jpg", 26: "http://img/b.jpg"}),
			wideRow("A", map[int]string{29: "http://img/c.jpg"}),
		},
	}

	st := store.NewImageStore()
	stats := sched.Acquire(context.Background(), cs, st)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 2, st.Len())

	b64, ok := st.Get(findings.ImageKey{Row: 2, Col: 24})
	require.True(t, ok)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("http://img/a.jpg")), b64)

	_, ok = st.Get(findings.ImageKey{Row: 2, Col: 26})
	assert.False(t, ok, "failed download must leave no entry")

	_, ok = st.Get(findings.ImageKey{Row: 3, Col: 29})
	assert.True(t, ok)
}

func TestAcquireSkipsNonURLCells(t *testing.T) {
	fetcher := &fakeFetcher{}
	sched := New(fetcher, 2, imageColumns, zap.NewNop())

	cs := findings.CategorySheet{
		Category: "A",
		Header:   make([]string, 30),
		Rows: [][]string{
			wideRow("A", map[int]string{24: "not a url", 25: "", 27: "ftp://img/x.jpg"}),
			{"short", "row"},
		},
	}

	st := store.NewImageStore()
	stats := sched.Acquire(context.Background(), cs, st)

	assert.Equal(t, Stats{}, stats)
	assert.Equal(t, 0, st.Len())
	assert.Empty(t, fetcher.calls)
}

func TestAcquireEmptySheet(t *testing.T) {
	sched := New(&fakeFetcher{}, 2, imageColumns, zap.NewNop())
	st := store.NewImageStore()
	stats := sched.Acquire(context.Background(), findings.CategorySheet{Category: "A"}, st)

	assert.Equal(t, Stats{}, stats)
	assert.Equal(t, 0, st.Len())
}

func TestAcquireFailuresDoNotAbortSiblings(t *testing.T) {
	boom := errors.New("boom")
	fetcher := &fakeFetcher{failOn: map[string]error{"http://img/0.jpg": boom}}
	sched := New(fetcher, 3, imageColumns, zap.NewNop())

	rows := make([][]string, 5)
	for i := range rows {
		rows[i] = wideRow("A", map[int]string{24: "http://img/" + string(rune('0'+i)) + ".jpg"})
	}
	cs := findings.CategorySheet{Category: "A", Header: make([]string, 30), Rows: rows}

	st := store.NewImageStore()
	stats := sched.Acquire(context.Background(), cs, st)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 4, stats.Succeeded)
	assert.Len(t, fetcher.calls, 5)
}
