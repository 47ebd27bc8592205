package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
)

var errNoFile = errors.New("no file uploaded")

// formFile returns the named upload from an already parsed multipart form.
// An empty file input counts as no upload.
func formFile(r *http.Request, field string) (*multipart.FileHeader, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, errNoFile
	}
	fh := r.MultipartForm.File[field][0]
	if fh.Size == 0 && fh.Filename == "" {
		return nil, errNoFile
	}
	return fh, nil
}
