package ui

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pairs = `
Pairs = pair { "," pair } .
pair = letter "=" letter .
letter = "a" … "z" .
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(Request{Grammar: pairs, Input: "a=b"})
	require.NoError(t, err)
	return s
}

func TestIndex(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Pairs = pair")
	assert.Contains(t, body, `<option value="sexpr" selected>`)
}

func TestStatic(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("GET", "/static/style.css", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".panes")
}

func TestParseForm(t *testing.T) {
	s := newTestServer(t)

	form := url.Values{
		"grammar": {pairs},
		"input":   {"a=b,c=d"},
		"format":  {"sexpr"},
	}
	req := httptest.NewRequest("POST", "/parse", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "[#pair &#39;a=b&#39;]")
}

func TestParseJSON(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		req   Request
		check func(t *testing.T, resp Response)
	}{
		{
			name: "ok",
			req:  Request{Grammar: pairs, Input: "x=y", Format: "line"},
			check: func(t *testing.T, resp Response) {
				assert.Empty(t, resp.Errors)
				assert.Equal(t, "0\tPairs\t-\t0\t3\t-\n1\tpair\t-\t0\t3\t'x=y'\n", resp.Output)
			},
		},
		{
			name: "syntax error",
			req:  Request{Grammar: pairs, Input: "x=1"},
			check: func(t *testing.T, resp Response) {
				assert.Equal(t, "input:1:3: syntax error: unexpected '1'", resp.SyntaxError)
				assert.Empty(t, resp.Output)
			},
		},
		{
			name: "grammar error",
			req:  Request{Grammar: "S = T .", Input: "x"},
			check: func(t *testing.T, resp Response) {
				require.Len(t, resp.Errors, 1)
				assert.Contains(t, resp.Errors[0], "undefined: T")
			},
		},
		{
			name: "ambiguous",
			req:  Request{Grammar: "S = A | B .\nA = \"a\" .\nB = \"a\" \"b\" .", Input: "ab", Ambiguous: true},
			check: func(t *testing.T, resp Response) {
				assert.True(t, resp.Ambiguous)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(tt.req)
			require.NoError(t, err)
			req := httptest.NewRequest("POST", "/parse", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			tt.check(t, resp)
		})
	}
}

func TestParse_UnknownFormat(t *testing.T) {
	s := newTestServer(t)

	_, err := s.Parse(Request{Grammar: pairs, Input: "a=b", Format: "xml"})
	assert.Error(t, err)
}

func TestParse_CachesCompiledGrammars(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < maxCached+5; i++ {
		req := Request{Grammar: pairs + strings.Repeat(" ", i), Input: "a=b"}
		_, err := s.Parse(req)
		require.NoError(t, err)
	}
	_, err := s.Parse(Request{Grammar: pairs, Input: "a=b", Start: "pair"})
	require.NoError(t, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Len(t, s.parsers, maxCached)
	assert.Len(t, s.order, maxCached)
}
