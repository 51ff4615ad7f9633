// Package fakeapi is an in-memory stand-in for the Algorithmia API, used by
// tests. It implements a few demo algorithms and the data store.
package fakeapi

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Algorithms served by the fake.
const (
	AlgoAddOne = "docs/JavaAddOne" // JSON integer n -> n+1
	AlgoHello  = "demo/hello"      // text s -> "Hello s"
	AlgoEcho   = "util/Echo"       // returns the input with its own content type
	AlgoFail   = "util/Fail"       // fails with a stack trace
)

// Error messages sent by the fake.
const (
	MsgAuthorizationRequired = "authorization required"
	MsgJSONParse             = "Failed to parse input, input did not parse as valid json"
)

// Server is a running fake API. Close it when done.
type Server struct {
	*httptest.Server

	// APIKey is the only accepted key. Requests without an Authorization
	// header get 401; requests with another key get the service's
	// "authorization required" error with status 200.
	APIKey string

	// PageSize limits directory listings. Zero means unlimited.
	PageSize int

	mu    sync.Mutex
	files map[string]file
	dirs  map[string]bool
	calls map[string]int
	last  http.Header
}

type file struct {
	data     []byte
	modified time.Time
}

// New starts a fake API accepting apiKey.
func New(apiKey string) *Server {
	s := &Server{
		APIKey: apiKey,
		files:  map[string]file{},
		dirs:   map[string]bool{},
		calls:  map[string]int{},
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.auth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/algo/*", s.pipe)

		r.Head("/data/*", s.headData)
		r.Get("/data/*", s.getData)
		r.Put("/data/*", s.putData)
		r.Post("/data", s.createDir)
		r.Post("/data/*", s.createDir)
		r.Delete("/data/*", s.deleteData)
	})
	return r
}

// Calls returns how many times the algorithm ref was executed.
func (s *Server) Calls(ref string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[ref]
}

// LastHeader returns the headers of the most recent request.
func (s *Server) LastHeader() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last.Clone()
}

// AddFile stores data at the data path p (without "data://").
func (s *Server) AddFile(p string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putFile(clean(p), data)
}

// AddDir creates the directory p and its parents.
func (s *Server) AddDir(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mkdirAll(clean(p))
}

// File returns the stored content of p.
func (s *Server) File(p string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[clean(p)]
	return f.data, ok
}

// HasDir reports whether directory p exists.
func (s *Server) HasDir(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirs[clean(p)]
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.last = r.Header.Clone()
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Authorization")
		switch {
		case key == "":
			w.WriteHeader(http.StatusUnauthorized)
		case key != s.APIKey:
			writeError(w, r, http.StatusOK, MsgAuthorizationRequired, "")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// =============================================================================
// Algorithms
// =============================================================================

func (s *Server) pipe(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "*")
	parts := strings.Split(ref, "/")
	if len(parts) < 2 {
		writeError(w, r, http.StatusBadRequest, "invalid algorithm reference", "")
		return
	}
	name := parts[0] + "/" + parts[1]

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}

	if r.URL.Query().Get("output") == "void" {
		s.count(ref)
		writeJSON(w, http.StatusOK, map[string]string{"async": "void", "request_id": uuid.NewString()})
		return
	}

	start := time.Now()
	var (
		result      any
		contentType string
	)
	switch name {
	case AlgoAddOne:
		n, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, MsgJSONParse, "")
			return
		}
		result, contentType = n+1, "json"
	case AlgoHello:
		result, contentType = "Hello "+string(body), "text"
	case AlgoEcho:
		result, contentType = echo(r.Header.Get("Content-Type"), body)
	case AlgoFail:
		s.count(ref)
		writeError(w, r, http.StatusInternalServerError, "algorithm failed", "at main.apply (line 3)")
		return
	default:
		writeError(w, r, http.StatusNotFound, "algorithm algo://"+ref+" not found", "")
		return
	}
	s.count(ref)

	if r.URL.Query().Get("output") == "raw" {
		writeRaw(w, contentType, result)
		return
	}

	metadata := map[string]any{
		"content_type": contentType,
		"duration":     time.Since(start).Seconds(),
	}
	if r.URL.Query().Get("stdout") == "true" {
		metadata["stdout"] = "running " + ref + "\n"
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result, "metadata": metadata})
}

func echo(contentType string, body []byte) (any, string) {
	switch contentType {
	case "text/plain":
		return string(body), "text"
	case "application/octet-stream":
		return base64.StdEncoding.EncodeToString(body), "binary"
	default:
		return json.RawMessage(body), "json"
	}
}

func writeRaw(w http.ResponseWriter, contentType string, result any) {
	switch contentType {
	case "text":
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, result.(string))
	case "binary":
		data, _ := base64.StdEncoding.DecodeString(result.(string))
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(data)
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) count(ref string) {
	s.mu.Lock()
	s.calls[ref]++
	s.mu.Unlock()
}

// =============================================================================
// Data
// =============================================================================

func (s *Server) headData(w http.ResponseWriter, r *http.Request) {
	p := clean(chi.URLParam(r, "*"))
	s.mu.Lock()
	_, isFile := s.files[p]
	isDir := s.dirs[p]
	s.mu.Unlock()
	if !isFile && !isDir {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) getData(w http.ResponseWriter, r *http.Request) {
	p := clean(chi.URLParam(r, "*"))
	s.mu.Lock()
	f, isFile := s.files[p]
	isDir := s.dirs[p]
	s.mu.Unlock()

	switch {
	case isFile:
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(f.data)
	case isDir:
		s.list(w, p, r.URL.Query().Get("marker"))
	default:
		writeError(w, r, http.StatusNotFound, "path not found", "")
	}
}

type entry struct {
	name     string
	dir      bool
	size     int
	modified time.Time
}

func (s *Server) list(w http.ResponseWriter, dir, marker string) {
	s.mu.Lock()
	var entries []entry
	for d := range s.dirs {
		if d != dir && path.Dir(d) == dir {
			entries = append(entries, entry{name: path.Base(d), dir: true})
		}
	}
	for p, f := range s.files {
		if path.Dir(p) == dir {
			entries = append(entries, entry{name: path.Base(p), size: len(f.data), modified: f.modified})
		}
	}
	s.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	start, _ := strconv.Atoi(marker)
	start = min(start, len(entries))
	end := len(entries)
	if s.PageSize > 0 {
		end = min(start+s.PageSize, end)
	}

	folders := []map[string]any{}
	files := []map[string]any{}
	for _, e := range entries[start:end] {
		if e.dir {
			folders = append(folders, map[string]any{"name": e.name})
			continue
		}
		files = append(files, map[string]any{
			"filename":      e.name,
			"size":          e.size,
			"last_modified": e.modified.UTC().Format(time.RFC3339),
		})
	}

	out := map[string]any{"folders": folders, "files": files}
	if end < len(entries) {
		out["marker"] = strconv.Itoa(end)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) putData(w http.ResponseWriter, r *http.Request) {
	p := clean(chi.URLParam(r, "*"))
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}
	s.mu.Lock()
	s.putFile(p, body)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"result": "data://" + p})
}

func (s *Server) createDir(w http.ResponseWriter, r *http.Request) {
	parent := clean(chi.URLParam(r, "*"))
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, r, http.StatusBadRequest, MsgJSONParse, "")
		return
	}
	p := path.Join(parent, req.Name)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirs[p] {
		writeError(w, r, http.StatusBadRequest, "directory already exists", "")
		return
	}
	s.mkdirAll(p)
	writeJSON(w, http.StatusOK, map[string]string{"result": "data://" + p})
}

func (s *Server) deleteData(w http.ResponseWriter, r *http.Request) {
	p := clean(chi.URLParam(r, "*"))
	force := r.URL.Query().Get("force") == "true"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[p]; ok {
		delete(s.files, p)
		writeJSON(w, http.StatusOK, map[string]any{"result": map[string]int{"deleted": 1}})
		return
	}
	if !s.dirs[p] {
		writeError(w, r, http.StatusNotFound, "path not found", "")
		return
	}

	var children []string
	for f := range s.files {
		if strings.HasPrefix(f, p+"/") {
			children = append(children, f)
		}
	}
	for d := range s.dirs {
		if strings.HasPrefix(d, p+"/") {
			children = append(children, d)
		}
	}
	if len(children) > 0 && !force {
		writeError(w, r, http.StatusBadRequest, "directory not empty", "")
		return
	}
	for _, c := range children {
		delete(s.files, c)
		delete(s.dirs, c)
	}
	delete(s.dirs, p)
	writeJSON(w, http.StatusOK, map[string]any{"result": map[string]int{"deleted": len(children) + 1}})
}

// putFile stores data at p. Callers hold s.mu.
func (s *Server) putFile(p string, data []byte) {
	s.mkdirAll(path.Dir(p))
	s.files[p] = file{data: append([]byte(nil), data...), modified: time.Now()}
}

// mkdirAll creates p and its parents. Callers hold s.mu.
func (s *Server) mkdirAll(p string) {
	for p != "." && p != "/" && p != "" {
		s.dirs[p] = true
		p = path.Dir(p)
	}
}

func clean(p string) string {
	return strings.Trim(path.Clean("/"+p), "/")
}

// =============================================================================
// Responses
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg, stacktrace string) {
	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		return
	}
	e := map[string]string{"message": msg}
	if stacktrace != "" {
		e["stacktrace"] = stacktrace
	}
	writeJSON(w, status, map[string]any{"error": e})
}
