// Package formutil reads multipart form submissions: plain fields and an
// optional image file.
package formutil

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// MaxUploadSize caps the whole multipart body.
const MaxUploadSize = 10 << 20

var (
	// ErrTooLarge is returned when the body exceeds MaxUploadSize.
	ErrTooLarge = errors.New("upload too large (max 10MB)")
	// ErrNotMultipart is returned when the request is not multipart/form-data.
	ErrNotMultipart = errors.New("request must be multipart/form-data")
	// ErrNotImage is returned when an image field holds something else.
	ErrNotImage = errors.New("file must be an image")
)

// Parse reads a multipart body, capped at MaxUploadSize.
func Parse(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge), strings.Contains(err.Error(), "request body too large"):
			return ErrTooLarge
		case errors.Is(err, http.ErrNotMultipart):
			return ErrNotMultipart
		}
		return err
	}
	return nil
}

// Value returns the trimmed form value for key.
func Value(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

// Bool reports whether a checkbox-style field is set.
func Bool(r *http.Request, key string) bool {
	switch strings.ToLower(Value(r, key)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// File is an uploaded file. Callers must Close it.
type File struct {
	multipart.File
	Filename    string
	ContentType string
	Size        int64
}

// Image returns the image uploaded under field, or nil if none was sent.
// The content type is sniffed from the bytes, not taken from the client.
func Image(r *http.Request, field string) (*File, error) {
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if header.Size == 0 {
		f.Close()
		return nil, nil
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		f.Close()
		return nil, err
	}
	ct := http.DetectContentType(head[:n])
	if !strings.HasPrefix(ct, "image/") {
		f.Close()
		return nil, ErrNotImage
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}

	return &File{
		File:        f,
		Filename:    header.Filename,
		ContentType: ct,
		Size:        header.Size,
	}, nil
}
