package testhelpers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Request is one call received by FakeScanAPI.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

// FakeScanAPI mimics the security-api scan routes (GET/PUT /api/scans/{id})
// on top of an httptest server.
type FakeScanAPI struct {
	Server *httptest.Server

	mu        sync.Mutex
	scans     map[string][]byte
	requests  []Request
	putStatus int
	getRaw    map[string]string
}

func NewFakeScanAPI() *FakeScanAPI {
	f := &FakeScanAPI{
		scans:  make(map[string][]byte),
		getRaw: make(map[string]string),
	}

	r := chi.NewRouter()
	r.Route("/api/scans", func(rt chi.Router) {
		rt.Get("/{id}", f.handleGet)
		rt.Put("/{id}", f.handlePut)
	})
	f.Server = httptest.NewServer(r)
	return f
}

// BaseURL is the value to configure as api.baseURL.
func (f *FakeScanAPI) BaseURL() string { return f.Server.URL + "/api/scans" }

func (f *FakeScanAPI) Close() { f.Server.Close() }

// Seed stores a scan document under id.
func (f *FakeScanAPI) Seed(id, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans[id] = []byte(body)
}

// ServeRawOnGet makes GET for id answer 200 with body as-is.
func (f *FakeScanAPI) ServeRawOnGet(id, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getRaw[id] = body
}

// FailPutsWith makes every PUT answer status without storing anything.
func (f *FakeScanAPI) FailPutsWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putStatus = status
}

// Stored returns the current document for id.
func (f *FakeScanAPI) Stored(id string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scans[id]
}

// Requests returns a copy of the calls received so far.
func (f *FakeScanAPI) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// Methods lists the HTTP methods received, in order.
func (f *FakeScanAPI) Methods() []string {
	var out []string
	for _, r := range f.Requests() {
		out = append(out, r.Method)
	}
	return out
}

func (f *FakeScanAPI) record(r *http.Request, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, Request{Method: r.Method, Path: r.URL.EscapedPath(), Body: body})
}

func (f *FakeScanAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	f.record(r, nil)
	id := chi.URLParam(r, "id")

	f.mu.Lock()
	raw, rawOK := f.getRaw[id]
	doc, ok := f.scans[id]
	f.mu.Unlock()

	if rawOK {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, raw)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Scan not found"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(doc)
}

func (f *FakeScanAPI) handlePut(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.record(r, body)
	id := chi.URLParam(r, "id")

	f.mu.Lock()
	status := f.putStatus
	_, exists := f.scans[id]
	f.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
		return
	}
	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Scan not found"})
		return
	}

	f.mu.Lock()
	f.scans[id] = body
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"message": "Scan updated", "scan": json.RawMessage(body)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
