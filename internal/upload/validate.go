// Package upload coordinates article image uploads: it validates the file,
// streams it to object storage and undoes the upload when the database
// write that should reference it fails.
package upload

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MaxImageSize is the largest accepted image, in bytes.
const MaxImageSize = 5 << 20

// Reason explains why an upload was rejected.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonExtension   Reason = "extension"
	ReasonContentType Reason = "content_type"
	ReasonTooLarge    Reason = "too_large"
	ReasonEmpty       Reason = "empty"
	ReasonUndecodable Reason = "undecodable"
)

// Message is the user-facing Portuguese text for a rejection.
func (r Reason) Message() string {
	switch r {
	case ReasonExtension, ReasonContentType:
		return "Apenas imagens são permitidas (jpeg, jpg, png, gif, webp)."
	case ReasonTooLarge:
		return "A imagem excede o tamanho máximo de 5 MB."
	case ReasonEmpty:
		return "O ficheiro enviado está vazio."
	case ReasonUndecodable:
		return "O ficheiro enviado não é uma imagem válida."
	default:
		return ""
	}
}

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Decision is the outcome of Validate.
type Decision struct {
	Accepted bool
	Reason   Reason
}

// Validate decides whether a file may be uploaded, using only its name,
// declared content type and size. Both the extension and the content type
// must be in the allowed image set.
func Validate(filename, contentType string, size int64) Decision {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return Decision{Reason: ReasonExtension}
	}

	// Browsers may append parameters, e.g. "image/png; charset=binary".
	if !allowedContentTypes[mediaType(contentType)] {
		return Decision{Reason: ReasonContentType}
	}

	if size <= 0 {
		return Decision{Reason: ReasonEmpty}
	}
	if size > MaxImageSize {
		return Decision{Reason: ReasonTooLarge}
	}

	return Decision{Accepted: true}
}

// RejectedError is returned by the coordinator when a file fails validation.
type RejectedError struct {
	Reason Reason
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("upload rejected: %s", e.Reason)
}
