package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/interview-analyzer/internal/models"
	"alfredoptarigan/interview-analyzer/internal/repositories"
)

type testFile struct {
	name string
	mime string
	data []byte
}

func buildFileHeaders(t *testing.T, files ...testFile) []*multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, f.name))
		if f.mime != "" {
			h.Set("Content-Type", f.mime)
		}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(64 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["files"]
}

type fakeGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	lastReq  *GenerationRequest
}

func (g *fakeGenerator) GenerateContent(_ context.Context, req *GenerationRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastReq = req
	return g.response, g.err
}

type fakeFactory struct {
	gen  *fakeGenerator
	err  error
	keys []string
}

func (f *fakeFactory) NewGenerator(_ context.Context, apiKey string) (ContentGenerator, error) {
	f.keys = append(f.keys, apiKey)
	if f.err != nil {
		return nil, f.err
	}
	return f.gen, nil
}

type memoryLogRepo struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*models.AnalysisLog
}

func newMemoryLogRepo() *memoryLogRepo {
	return &memoryLogRepo{entries: map[uuid.UUID]*models.AnalysisLog{}}
}

func (r *memoryLogRepo) Create(entry *models.AnalysisLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *entry
	r.entries[entry.ID] = &copied
	return nil
}

func (r *memoryLogRepo) get(id uuid.UUID) (models.AnalysisLog, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return models.AnalysisLog{}, false
	}
	return *entry, true
}

func (r *memoryLogRepo) MarkCompleted(id uuid.UUID, duration time.Duration) error {
	return r.update(id, func(e *models.AnalysisLog) {
		e.Status = models.StatusCompleted
		ms := duration.Milliseconds()
		e.DurationMs = &ms
	})
}

func (r *memoryLogRepo) MarkFailed(id uuid.UUID, duration time.Duration, errorMsg string) error {
	return r.update(id, func(e *models.AnalysisLog) {
		e.Status = models.StatusFailed
		e.ErrorMessage = &errorMsg
		ms := duration.Milliseconds()
		e.DurationMs = &ms
	})
}

func (r *memoryLogRepo) update(id uuid.UUID, fn func(*models.AnalysisLog)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return repositories.ErrAnalysisLogNotFound
	}
	fn(entry)
	return nil
}
