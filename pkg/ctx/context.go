// Package ctx provides a request context for FastBite handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context with helper methods:
//
//	func (m *MenuController) Index(c *ctx.Context) {
//	    category := c.DefaultQuery("category", "all")
//	    c.Render(http.StatusOK, views.Pages, "menu", data)
//	}
//
//	router.Get("/menu", "menu", ctx.Wrap(m.Index))
package ctx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/jhonlemus05/FastBite-Delivery/pkg/bind"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/session"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Renderer is satisfied by *html/template.Template.
type Renderer interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

// ─── Context ──────────────────────────────────────────────────────────────────

// Context wraps a request/response pair.
type Context struct {
	W     http.ResponseWriter
	R     *http.Request
	mu    sync.RWMutex
	store map[string]any
}

var pool = sync.Pool{
	New: func() any { return &Context{store: make(map[string]any)} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	for k := range c.store {
		delete(c.store, k)
	}
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter (e.g. "/products/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// DefaultQuery returns a query-string value, or def if it is empty.
func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

// PostForm returns a trimmed form field.
func (c *Context) PostForm(key string) string {
	return strings.TrimSpace(c.R.FormValue(key))
}

func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

func (c *Context) Cookie(name string) (string, error) {
	cookie, err := c.R.Cookie(name)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

func (c *Context) Method() string { return c.R.Method }

func (c *Context) Path() string { return c.R.URL.Path }

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// ─── Per-request store ────────────────────────────────────────────────────────

func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	c.store[key] = val
	c.mu.Unlock()
}

func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.store[key]
	c.mu.RUnlock()
	return v, ok
}

// MustGet panics if the key is absent.
func (c *Context) MustGet(key string) any {
	v, ok := c.Get(key)
	if !ok {
		panic(fmt.Sprintf("ctx: key %q not found in store", key))
	}
	return v
}

func (c *Context) GetString(key string) string {
	v, _ := c.Get(key)
	s, _ := v.(string)
	return s
}

// ─── Binding ──────────────────────────────────────────────────────────────────

// BindForm decodes the form body into dest and runs validation.
//
//	var in ProductForm
//	errs, err := c.BindForm(&in)
func (c *Context) BindForm(dest any) (map[string]string, error) {
	return bind.Form(c.R, dest)
}

// ─── Session / flash ──────────────────────────────────────────────────────────

// Session returns the request session, or nil without session.Middleware.
func (c *Context) Session() *session.Session {
	return session.FromCtx(c.R.Context())
}

// Flash stores a one-shot message shown on the next rendered page.
func (c *Context) Flash(key, msg string) {
	if s := c.Session(); s != nil {
		if err := s.Flash(key, msg); err != nil {
			logger.WithCtx(c.Context()).Warn("flash failed", "key", key, "error", err)
		}
	}
}

// TakeFlash returns and clears a flash message.
func (c *Context) TakeFlash(key string) string {
	if s := c.Session(); s != nil {
		v, _ := s.GetFlash(key)
		return v
	}
	return ""
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// Render executes the named template into a buffer first so a template error
// yields a clean 500 instead of a half-written page.
func (c *Context) Render(code int, t Renderer, name string, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		logger.WithCtx(c.Context()).ErrorContext(c.Context(), "render failed", "template", name, "error", err)
		c.String(http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	c.W.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.W.WriteHeader(code)
	_, _ = buf.WriteTo(c.W)
}

// JSON writes a JSON response with the given status code.
func (c *Context) JSON(code int, v any) {
	c.W.Header().Set("Content-Type", "application/json")
	c.W.WriteHeader(code)
	json.NewEncoder(c.W).Encode(v) //nolint:errcheck
}

// Success sends a 200 JSON envelope: {"status":200,"data":...}
func (c *Context) Success(data any) {
	c.JSON(http.StatusOK, envelope{Status: http.StatusOK, Data: data})
}

// String writes a plain-text response.
func (c *Context) String(code int, format string, args ...any) {
	c.W.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.W.WriteHeader(code)
	fmt.Fprintf(c.W, format, args...)
}

// Redirect sends an HTTP redirect response.
func (c *Context) Redirect(code int, url string) {
	http.Redirect(c.W, c.R, url, code)
}

// SeeOther is the POST/redirect/GET response.
func (c *Context) SeeOther(url string) {
	c.Redirect(http.StatusSeeOther, url)
}

// Back redirects to the Referer when it points at this site, else to fallback.
func (c *Context) Back(fallback string) {
	c.SeeOther(SafeReferer(c.R, fallback))
}

// SafeReferer returns the path+query of the Referer if it is same-host,
// otherwise fallback.
func SafeReferer(r *http.Request, fallback string) string {
	ref := r.Header.Get("Referer")
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	// "//x" and "/\x" are both read as protocol-relative by browsers.
	if err != nil || (u.Host != "" && u.Host != r.Host) || !strings.HasPrefix(u.Path, "/") ||
		(len(u.Path) > 1 && (u.Path[1] == '/' || u.Path[1] == '\\')) {
		return fallback
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}

// ─── JSON envelope ────────────────────────────────────────────────────────────

type envelope struct {
	Status int `json:"status"`
	Data   any `json:"data,omitempty"`
}
