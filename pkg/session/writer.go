package session

import "net/http"

// SaveWriter runs a hook exactly once, immediately before the first
// WriteHeader or Write reaches the wrapped writer. State that must travel in
// response headers (cookies) is committed from the hook.
type SaveWriter struct {
	http.ResponseWriter
	hook func(http.ResponseWriter)
	done bool
}

func NewSaveWriter(w http.ResponseWriter, hook func(http.ResponseWriter)) *SaveWriter {
	return &SaveWriter{ResponseWriter: w, hook: hook}
}

func (w *SaveWriter) commit() {
	if w.done {
		return
	}
	w.done = true
	w.hook(w.ResponseWriter)
}

func (w *SaveWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *SaveWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

// Flush runs the hook if the handler never wrote anything.
func (w *SaveWriter) Flush() {
	w.commit()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *SaveWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
