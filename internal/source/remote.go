package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Makepad-fr/transmit/internal/listing"
	"github.com/Makepad-fr/transmit/internal/model"
)

// DefaultBackendURL is where the portal API listens in development.
const DefaultBackendURL = "http://localhost:8001"

// Remote talks to the transmittal portal's REST API.
type Remote struct {
	base   string
	client *http.Client
	log    zerolog.Logger
}

// NewRemote returns a client for the API rooted at baseURL (without /api).
func NewRemote(baseURL string, timeout time.Duration, log zerolog.Logger) *Remote {
	if baseURL == "" {
		baseURL = DefaultBackendURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Remote{
		base:   strings.TrimRight(baseURL, "/") + "/api/transmittals",
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

func (r *Remote) List(ctx context.Context, req listing.PageRequest) ([]model.Transmittal, error) {
	q := url.Values{}
	if s := normStatus(req.Status); s != "" {
		q.Set("status", s)
	}
	q.Set("skip", strconv.Itoa(req.Skip))
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	var out []model.Transmittal
	if err := r.do(ctx, "list", http.MethodGet, "", q, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Transmittal{}
	}
	return out, nil
}

func (r *Remote) Count(ctx context.Context, status string) (int, error) {
	q := url.Values{}
	if s := normStatus(status); s != "" {
		q.Set("status", s)
	}
	var out struct {
		Count int `json:"count"`
	}
	if err := r.do(ctx, "count", http.MethodGet, "/count", q, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (r *Remote) Get(ctx context.Context, id string) (model.Transmittal, error) {
	var out model.Transmittal
	err := r.do(ctx, "get", http.MethodGet, "/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (r *Remote) Create(ctx context.Context, d model.Draft) (model.Transmittal, error) {
	var out model.Transmittal
	err := r.do(ctx, "create", http.MethodPost, "", nil, d, &out)
	return out, err
}

func (r *Remote) Update(ctx context.Context, id string, d model.Draft) (model.Transmittal, error) {
	var out model.Transmittal
	err := r.do(ctx, "update", http.MethodPut, "/"+url.PathEscape(id), nil, d, &out)
	return out, err
}

func (r *Remote) Delete(ctx context.Context, id string) error {
	return r.do(ctx, "delete", http.MethodDelete, "/"+url.PathEscape(id), nil, nil, nil)
}

func (r *Remote) Generate(ctx context.Context, id string) (model.Transmittal, error) {
	var out model.Transmittal
	err := r.do(ctx, "generate", http.MethodPost, "/"+url.PathEscape(id)+"/generate", nil, nil, &out)
	return out, err
}

func (r *Remote) Duplicate(ctx context.Context, id string, mode DuplicateMode) (model.Transmittal, error) {
	if mode != DuplicateOpposite && mode != DuplicateSame {
		return model.Transmittal{}, fmt.Errorf("duplicate %q: %w", mode, ErrInvalidMode)
	}
	var out model.Transmittal
	q := url.Values{"mode": {string(mode)}}
	err := r.do(ctx, "duplicate", http.MethodPost, "/"+url.PathEscape(id)+"/duplicate", q, nil, &out)
	return out, err
}

func (r *Remote) MarkSent(ctx context.Context, id string, d model.SendDetails, sentStatus string) error {
	q := url.Values{"sent_status": {sentStatus}}
	return r.do(ctx, "send", http.MethodPost, "/"+url.PathEscape(id)+"/send", q, d, nil)
}

func (r *Remote) MarkReceived(ctx context.Context, id string, d model.ReceiveDetails, receivedStatus string) error {
	q := url.Values{"received_status": {receivedStatus}}
	return r.do(ctx, "receive", http.MethodPost, "/"+url.PathEscape(id)+"/receive", q, d, nil)
}

// UploadReceipt posts the file as multipart form field "file". Files the
// portal would refuse are rejected before anything is sent.
func (r *Remote) UploadReceipt(ctx context.Context, filename string, data []byte) (model.Receipt, error) {
	ct, err := checkReceipt(filename, data)
	if err != nil {
		return model.Receipt{}, fmt.Errorf("%s: %w", opUploadReceipt, err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return model.Receipt{}, &FetchError{Op: opUploadReceipt, Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return model.Receipt{}, &FetchError{Op: opUploadReceipt, Err: err}
	}
	if err := mw.Close(); err != nil {
		return model.Receipt{}, &FetchError{Op: opUploadReceipt, Err: err}
	}

	var out model.Receipt
	err = r.send(ctx, opUploadReceipt, http.MethodPost, "/upload-receipt", nil, &buf, mw.FormDataContentType(), &out)
	return out, err
}

// do performs one JSON API call. Every failure comes back as a *FetchError.
func (r *Remote) do(ctx context.Context, op, method, path string, q url.Values, in, out any) error {
	if in == nil {
		return r.send(ctx, op, method, path, q, nil, "", out)
	}
	b, err := json.Marshal(in)
	if err != nil {
		return &FetchError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
	}
	return r.send(ctx, op, method, path, q, bytes.NewReader(b), "application/json", out)
}

// send performs one API call with a ready-made body and decodes a JSON reply
// into out.
func (r *Remote) send(ctx context.Context, op, method, path string, q url.Values, body io.Reader, contentType string, out any) error {
	u := r.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &FetchError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Warn().Err(err).Str("op", op).Str("url", u).Msg("request failed")
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	r.log.Debug().
		Str("op", op).
		Str("method", method).
		Str("url", u).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(detail(resp.Body))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// detail extracts the API's {"detail": "..."} message, or the raw body.
func detail(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	var e struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(b, &e) == nil && e.Detail != "" {
		return e.Detail
	}
	if s := strings.TrimSpace(string(b)); s != "" {
		return s
	}
	return "request failed"
}
