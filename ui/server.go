// Package ui serves a browser playground for trying grammars on input.
package ui

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/dhamidi/gpeg/ebnf/grammar"
	"github.com/dhamidi/gpeg/format"
	"github.com/dhamidi/gpeg/gpeg"
	"github.com/tliron/commonlog"
)

//go:embed static templates
var embeddedFS embed.FS

// maxCached bounds the number of compiled grammars kept between requests.
const maxCached = 32

// Request is a playground parse request, sent as a form or as JSON.
type Request struct {
	Grammar   string `json:"grammar"`
	Input     string `json:"input"`
	Start     string `json:"start,omitempty"`
	Ambiguous bool   `json:"ambiguous,omitempty"`
	Format    string `json:"format,omitempty"`
}

// Response is the outcome of a Request. Errors lists grammar problems; a
// failed parse is reported in SyntaxError with Output left empty.
type Response struct {
	Request     Request  `json:"-"`
	Errors      []string `json:"errors,omitempty"`
	SyntaxError string   `json:"syntaxError,omitempty"`
	Ambiguous   bool     `json:"ambiguous,omitempty"`
	Output      string   `json:"output,omitempty"`
	Formats     []string `json:"-"`
}

type cacheKey struct {
	grammar   string
	start     string
	ambiguous bool
}

type Server struct {
	initial    Request
	staticFS   fs.FS
	templateFS fs.FS
	mux        *http.ServeMux
	log        commonlog.Logger

	mu      sync.Mutex
	parsers map[cacheKey]*gpeg.Parser
	order   []cacheKey
}

// NewServer creates a playground. initial fills the form on the index page.
func NewServer(initial Request) (*Server, error) {
	s := &Server{
		initial:    initial,
		staticFS:   overlayFS("ui/static", mustSub(embeddedFS, "static")),
		templateFS: overlayFS("ui/templates", mustSub(embeddedFS, "templates")),
		mux:        http.NewServeMux(),
		log:        commonlog.GetLogger("gpeg.ui"),
		parsers:    make(map[cacheKey]*gpeg.Parser),
	}
	if s.initial.Format == "" {
		s.initial.Format = format.Names[0]
	}

	if _, err := s.templates(); err != nil {
		return nil, err
	}

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(s.staticFS))))
	s.mux.HandleFunc("POST /parse", s.handleParse)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) templates() (*template.Template, error) {
	tmpl, err := template.New("").ParseFS(s.templateFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, err := s.templates()
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Errorf("render %s: %s", name, err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", &Response{Request: s.initial, Formats: format.Names})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req Request

	wantJSON := r.Header.Get("Content-Type") == "application/json"
	if wantJSON {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data: "+err.Error(), http.StatusBadRequest)
			return
		}
		req.Grammar = r.FormValue("grammar")
		req.Input = r.FormValue("input")
		req.Start = r.FormValue("start")
		req.Ambiguous = r.FormValue("ambiguous") != ""
		req.Format = r.FormValue("format")
	}
	if req.Format == "" {
		req.Format = format.Names[0]
	}

	resp, err := s.Parse(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if wantJSON || r.Header.Get("Accept") == "application/json" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
		return
	}
	s.render(w, "index.html", resp)
}

// Parse runs req. Problems with the grammar or the input are reported in the
// Response; the error is only set for an unknown output format.
func (s *Server) Parse(req Request) (*Response, error) {
	resp := &Response{Request: req, Formats: format.Names}

	var out strings.Builder
	enc, err := format.NewEncoder(req.Format, &out)
	if err != nil {
		return nil, err
	}

	p, err := s.parser(req)
	if err != nil {
		for _, e := range grammar.Errors(err) {
			resp.Errors = append(resp.Errors, e.Error())
		}
		return resp, nil
	}

	t := p.ParseString(req.Input, gpeg.WithSource("input"))
	if t.IsError() {
		resp.SyntaxError = gpeg.NewSyntaxError(t).Error()
		return resp, nil
	}
	resp.Ambiguous = t.IsAmbiguity()
	if err := enc.Encode(t); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	resp.Output = out.String()
	return resp, nil
}

// parser compiles the grammar of req, reusing earlier compilations of the
// same grammar text.
func (s *Server) parser(req Request) (*gpeg.Parser, error) {
	key := cacheKey{grammar: req.Grammar, start: req.Start, ambiguous: req.Ambiguous}

	s.mu.Lock()
	p, ok := s.parsers[key]
	s.mu.Unlock()
	if ok {
		return p, nil
	}

	if strings.TrimSpace(req.Grammar) == "" {
		return nil, errors.New("grammar is empty")
	}
	var opts []grammar.Option
	if req.Start != "" {
		opts = append(opts, grammar.WithStart(req.Start))
	}
	if req.Ambiguous {
		opts = append(opts, grammar.WithAmbiguity())
	}
	g, err := grammar.Parse("grammar", strings.NewReader(req.Grammar), opts...)
	if err != nil {
		return nil, err
	}
	p, err = gpeg.New(g)
	if err != nil {
		return nil, err
	}
	s.log.Debugf("compiled grammar with %d rules", len(g.Rules()))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parsers[key]; !ok {
		if len(s.order) == maxCached {
			delete(s.parsers, s.order[0])
			s.order = s.order[1:]
		}
		s.parsers[key] = p
		s.order = append(s.order, key)
	}
	return p, nil
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// overlayFS serves files from primaryPath on disk when they exist so
// templates can be edited without rebuilding.
type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}

func (o *overlayFSType) ReadDir(name string) ([]fs.DirEntry, error) {
	entries := make(map[string]fs.DirEntry)

	if rd, ok := o.secondary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	if rd, ok := o.primary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	return result, nil
}
