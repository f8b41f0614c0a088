// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/olegiv/campus-go/internal/imaging"
	"github.com/olegiv/campus-go/internal/model"
	"github.com/olegiv/campus-go/internal/util"
	"github.com/olegiv/campus-go/internal/workspace"
)

// multipartMemory is how much of a multipart form is kept in memory
// before spilling files to disk.
const multipartMemory = 8 << 20

// formOverhead allows for the non-file fields of an upload form.
const formOverhead = 1 << 20

var (
	errFileTooLarge = errors.New("file too large")
	errBadImage     = errors.New("invalid image")
)

// uploader reads files posted with admin and gallery forms. Images are
// re-oriented and scaled down before they are forwarded to the backend;
// other files pass through unchanged.
type uploader struct {
	images  *imaging.Processor
	maxSize int64
}

func newUploader(images *imaging.Processor, maxSize int64) uploader {
	return uploader{images: images, maxSize: maxSize}
}

// parseForm parses a multipart or urlencoded form, bounding the body size.
func (u uploader) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, u.maxSize+formOverhead)
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// attachment returns the file posted in field, or nil when none was chosen.
func (u uploader) attachment(r *http.Request, field string) (*workspace.Attachment, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, u.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > u.maxSize {
		return nil, errFileTooLarge
	}
	if len(data) == 0 {
		return nil, nil
	}

	name, err := util.SanitizeFilename(header.Filename)
	if err != nil {
		name = "upload"
	}

	res, err := u.images.Prepare(bytes.NewReader(data), name)
	switch {
	case errors.Is(err, imaging.ErrNotImage):
		return &workspace.Attachment{Reader: bytes.NewReader(data), Filename: name}, nil
	case err != nil:
		slog.Warn("rejected upload", "category", model.EventCategoryUpload, "file", name, "error", err)
		return nil, fmt.Errorf("%w: %v", errBadImage, err)
	}
	if res.Resized {
		slog.Debug("resized upload", "file", res.Filename, "width", res.Width, "height", res.Height)
	}
	return &workspace.Attachment{Reader: bytes.NewReader(res.Data), Filename: res.Filename}, nil
}

// uploadMessage describes a file that could not be read.
func (u uploader) uploadMessage(err error) string {
	switch {
	case errors.Is(err, errFileTooLarge):
		return fmt.Sprintf("File is too large (maximum %d MB)", u.maxSize>>20)
	case errors.Is(err, errBadImage):
		return "The selected image could not be read"
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Sprintf("File is too large (maximum %d MB)", u.maxSize>>20)
	}
	return "Failed to read the uploaded file"
}
