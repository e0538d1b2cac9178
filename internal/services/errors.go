package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParse marks filenames or paths that no archive parser recognizes.
	ErrParse = errors.New("parse failure")
	// ErrUnknownAlbum marks slide filenames whose album number has no lookup entry.
	ErrUnknownAlbum = errors.New("unknown album number")
	// ErrConflict marks a destination that already exists with different content.
	ErrConflict = errors.New("destination conflict")
	// ErrTransient marks retryable remote failures (network, rate limit, 5xx).
	ErrTransient = errors.New("transient failure")
	// ErrLinkOnly marks media that uploaded successfully but could not be
	// linked to its album; a later run can repair the link without re-uploading.
	ErrLinkOnly = errors.New("album link failure")
	// ErrRejected marks permanent remote rejections (4xx other than auth):
	// not retried, recorded against the file, never fatal to the batch.
	ErrRejected      = errors.New("request rejected")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error should abort the entire run rather than
// being recorded against a single file. Per-file errors (parse, lookup miss,
// conflict, transient, link) are never fatal to a batch.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrParse),
		errors.Is(err, ErrUnknownAlbum),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrTransient),
		errors.Is(err, ErrLinkOnly),
		errors.Is(err, ErrRejected),
		errors.Is(err, ErrNotFound):
		return false
	}
	return true
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
