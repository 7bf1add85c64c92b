// Package upload provides the resume upload subsystem: a file acceptance
// predicate, a reducer-style status store tracking each file's lifecycle,
// and a controller that validates dropped batches, fans uploads out to an
// injected transport, and aggregates validation errors.
package upload

import "strings"

// File is one file submitted to the controller. Once accepted, the payload
// is owned by the TrackedFile that wraps it.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the payload size in bytes.
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// resumeLimits is the fixed acceptance set for resume documents. Type
// matching goes through the matcher's acceptsType.
var resumeLimits = Limits{Accept: map[string][]string{
	"application/pdf":    {".pdf"},
	"application/msword": {".doc"},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {".docx"},
}}

// IsAcceptableFile reports whether a file may be uploaded as a resume.
// The declared content type takes precedence; the lowercase name extension
// is the fallback. Files with an empty or blank name are always rejected.
func IsAcceptableFile(f File) bool {
	if strings.TrimSpace(f.Name) == "" {
		return false
	}
	return resumeLimits.acceptsType(f)
}
