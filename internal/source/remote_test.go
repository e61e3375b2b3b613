package source

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Makepad-fr/transmit/internal/listing"
	"github.com/Makepad-fr/transmit/internal/model"
)

// fakePortal serves the portal API from a Memory store.
type fakePortal struct {
	store *Memory
	mu    sync.Mutex
	hits  []string
}

func (p *fakePortal) record(r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hits = append(p.hits, r.Method+" "+r.URL.RequestURI())
}

func (p *fakePortal) router() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			p.record(req)
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/api/transmittals", func(r chi.Router) {
		r.Get("/", p.list)
		r.Post("/", p.create)
		r.Post("/upload-receipt", p.uploadReceipt)
		r.Get("/count", p.count)
		r.Get("/{id}", p.get)
		r.Put("/{id}", p.update)
		r.Delete("/{id}", p.delete)
		r.Post("/{id}/generate", p.generate)
		r.Post("/{id}/duplicate", p.duplicate)
		r.Post("/{id}/send", p.send)
		r.Post("/{id}/receive", p.receive)
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Transmittal not found"})
	case errors.Is(err, ErrNotDraft):
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Can only modify draft transmittals"})
	case errors.As(err, &verr), errors.Is(err, ErrInvalidMode):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
	}
}

func (p *fakePortal) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	items, err := p.store.List(r.Context(), listing.PageRequest{Status: q.Get("status"), Skip: skip, Limit: limit})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (p *fakePortal) count(w http.ResponseWriter, r *http.Request) {
	n, err := p.store.Count(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (p *fakePortal) get(w http.ResponseWriter, r *http.Request) {
	t, err := p.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (p *fakePortal) create(w http.ResponseWriter, r *http.Request) {
	var d model.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeErr(w, err)
		return
	}
	t, err := p.store.Create(r.Context(), d)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (p *fakePortal) update(w http.ResponseWriter, r *http.Request) {
	var d model.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeErr(w, err)
		return
	}
	t, err := p.store.Update(r.Context(), chi.URLParam(r, "id"), d)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (p *fakePortal) delete(w http.ResponseWriter, r *http.Request) {
	if err := p.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Transmittal deleted successfully"})
}

func (p *fakePortal) generate(w http.ResponseWriter, r *http.Request) {
	t, err := p.store.Generate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (p *fakePortal) duplicate(w http.ResponseWriter, r *http.Request) {
	t, err := p.store.Duplicate(r.Context(), chi.URLParam(r, "id"), DuplicateMode(r.URL.Query().Get("mode")))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (p *fakePortal) send(w http.ResponseWriter, r *http.Request) {
	var d model.SendDetails
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeErr(w, err)
		return
	}
	if err := p.store.MarkSent(r.Context(), chi.URLParam(r, "id"), d, r.URL.Query().Get("sent_status")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Send status updated successfully"})
}

func (p *fakePortal) receive(w http.ResponseWriter, r *http.Request) {
	var d model.ReceiveDetails
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeErr(w, err)
		return
	}
	if err := p.store.MarkReceived(r.Context(), chi.URLParam(r, "id"), d, r.URL.Query().Get("received_status")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Receive status updated successfully"})
}

func (p *fakePortal) uploadReceipt(w http.ResponseWriter, r *http.Request) {
	f, h, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	defer f.Close()
	ct := h.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") && ct != "application/pdf" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Only image and PDF files are allowed"})
		return
	}
	b, err := io.ReadAll(f)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Receipt{
		Filename:      h.Filename,
		ContentType:   ct,
		Base64Content: base64.StdEncoding.EncodeToString(b),
	})
}

func newPortal(t *testing.T) (*fakePortal, *Remote) {
	t.Helper()
	p := &fakePortal{store: newTestMemory()}
	srv := httptest.NewServer(p.router())
	rem := NewRemote(srv.URL, 5*time.Second, zerolog.Nop())
	t.Cleanup(func() {
		rem.client.CloseIdleConnections()
		srv.Close()
	})
	return p, rem
}

func verifyNoLeaks(t *testing.T) {
	goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func TestRemote_ListQuery(t *testing.T) {
	p, rem := newPortal(t)
	ctx := context.Background()

	page, err := rem.List(ctx, listing.PageRequest{Status: "all", Skip: 0, Limit: 6})
	require.NoError(t, err)
	assert.Len(t, page, 6)
	assert.Equal(t, "4", page[0].ID)

	drafts, err := rem.List(ctx, listing.PageRequest{Status: "draft", Skip: 2, Limit: 6})
	require.NoError(t, err)
	assert.Len(t, drafts, 2)

	empty, err := rem.List(ctx, listing.PageRequest{Skip: 1000, Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Equal(t, []string{
		"GET /api/transmittals?limit=6&skip=0",
		"GET /api/transmittals?limit=6&skip=2&status=draft",
		"GET /api/transmittals?limit=10&skip=1000",
	}, p.hits)
}

func TestRemote_Count(t *testing.T) {
	_, rem := newPortal(t)
	n, err := rem.Count(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	n, err = rem.Count(context.Background(), "received")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRemote_Workflow(t *testing.T) {
	_, rem := newPortal(t)
	ctx := context.Background()

	created, err := rem.Create(ctx, sampleDraft("Create Test"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, created.Status)
	assert.Equal(t, 2, created.DocumentCount)

	got, err := rem.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Create Test", got.Title)
	assert.Equal(t, "A-101", got.Documents[0].DocumentNo)

	updated, err := rem.Update(ctx, created.ID, sampleDraft("Update Test"))
	require.NoError(t, err)
	assert.Equal(t, "Update Test", updated.Title)

	generated, err := rem.Generate(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusGenerated, generated.Status)
	assert.Equal(t, "TRN-2025-001", generated.TransmittalNumber)

	_, err = rem.Update(ctx, created.ID, sampleDraft("nope"))
	assert.ErrorIs(t, err, ErrNotDraft)
	err = rem.Delete(ctx, created.ID)
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, http.StatusBadRequest, ferr.StatusCode)
	assert.Contains(t, ferr.Error(), "Can only modify draft transmittals")

	dup, err := rem.Duplicate(ctx, created.ID, DuplicateOpposite)
	require.NoError(t, err)
	assert.Equal(t, model.SendModeHardcopy, dup.SendMode)
	require.NoError(t, rem.Delete(ctx, dup.ID))

	sendDate := model.NewTimestamp(fixedNow)
	require.NoError(t, rem.MarkSent(ctx, created.ID, model.SendDetails{DeliveryPerson: "Me", SendDate: &sendDate}, model.SentStatusSent))
	require.NoError(t, rem.MarkReceived(ctx, created.ID, model.ReceiveDetails{
		ReceivedDate: ptr(model.MustDate("2024-01-20")),
		ReceivedTime: "14:30",
	}, model.ReceivedStatusReceived))

	got, err = rem.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReceived, got.Status)
	assert.Equal(t, "2024-01-20", got.ReceiveDetails.ReceivedDate.String())
}

func TestRemote_NotFound(t *testing.T) {
	_, rem := newPortal(t)
	ctx := context.Background()

	_, err := rem.Get(ctx, "invalid-id-123")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = rem.Update(ctx, "invalid-id-123", sampleDraft("test"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, rem.Delete(ctx, "invalid-id-123"), ErrNotFound)
}

func TestRemote_InvalidDuplicateModeNeverHitsTheWire(t *testing.T) {
	p, rem := newPortal(t)
	_, err := rem.Duplicate(context.Background(), "1", "sideways")
	assert.ErrorIs(t, err, ErrInvalidMode)
	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Empty(t, p.hits)
}

func TestRemote_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rem := NewRemote(url, time.Second, zerolog.Nop())
	_, err := rem.List(context.Background(), listing.PageRequest{Limit: 6})
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "list", ferr.Op)
	assert.Zero(t, ferr.StatusCode)
}

func TestRemote_BadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"1","status":"draft","created_date":"yesterday"}]`))
	}))
	defer srv.Close()

	rem := NewRemote(srv.URL, time.Second, zerolog.Nop())
	defer rem.client.CloseIdleConnections()
	_, err := rem.List(context.Background(), listing.PageRequest{})
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, http.StatusOK, ferr.StatusCode)
	assert.ErrorContains(t, err, "decode response")
}

func TestRemote_ServerFeedAgainstPortal(t *testing.T) {
	t.Cleanup(func() { verifyNoLeaks(t) })
	_, rem := newPortal(t)

	f := listing.NewServerFeed[model.Transmittal](6)
	ctx := context.Background()
	require.NoError(t, f.Fetch(ctx, Fetcher(rem), listing.LoadInitial))

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f.Fetch(ctx, Fetcher(rem), listing.LoadMore)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}

	page := f.Page()
	assert.Len(t, page.Items, 10, "no duplicates from concurrent load more")
	assert.False(t, page.HasMore)
}

func TestRemote_UploadReceipt(t *testing.T) {
	p, rem := newPortal(t)
	ctx := context.Background()
	png := []byte("\x89PNG\r\n\x1a\n0000")

	r, err := rem.UploadReceipt(ctx, "/tmp/scans/receipt.png", png)
	require.NoError(t, err)
	assert.Equal(t, "receipt.png", r.Filename)
	assert.Equal(t, "image/png", r.ContentType)
	got, err := base64.StdEncoding.DecodeString(r.Base64Content)
	require.NoError(t, err)
	assert.Equal(t, png, got)
	assert.True(t, strings.HasPrefix(r.DataURL(), "data:image/png;base64,"))

	_, err = rem.UploadReceipt(ctx, "notes.txt", []byte("hello, plain text"))
	require.ErrorIs(t, err, ErrInvalidReceipt)
	_, err = rem.UploadReceipt(ctx, "empty.png", nil)
	require.ErrorIs(t, err, ErrInvalidReceipt)

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Equal(t, []string{"POST /api/transmittals/upload-receipt"}, p.hits, "rejected files never hit the wire")
}

func TestFetchError_UploadBadRequest(t *testing.T) {
	upload := &FetchError{Op: opUploadReceipt, StatusCode: http.StatusBadRequest, Err: errors.New("Only image files are allowed")}
	assert.ErrorIs(t, upload, ErrInvalidReceipt)
	assert.NotErrorIs(t, upload, ErrNotDraft)

	update := &FetchError{Op: "update", StatusCode: http.StatusBadRequest, Err: errors.New("Can only modify draft transmittals")}
	assert.ErrorIs(t, update, ErrNotDraft)
	assert.NotErrorIs(t, update, ErrInvalidReceipt)
}

func ptr[T any](v T) *T { return &v }
