package upload

import (
	"fmt"
	"sort"
	"strings"
)

// RejectionCode identifies why a file was rejected before being tracked.
type RejectionCode string

// Rejection codes mirror the matcher's possible verdicts. TooManyFiles is
// never produced by the matcher itself; it only appears in the composite
// root error raised on capacity overflow.
const (
	CodeInvalidType  RejectionCode = "file-invalid-type"
	CodeTooLarge     RejectionCode = "file-too-large"
	CodeTooSmall     RejectionCode = "file-too-small"
	CodeTooManyFiles RejectionCode = "too-many-files"
)

// Limits configures batch validation. Accept maps a MIME type to the name
// extensions it covers (e.g. "application/pdf" -> [".pdf"]). Zero values
// leave the corresponding limit unset.
type Limits struct {
	Accept   map[string][]string
	MinSize  int64
	MaxSize  int64
	MaxFiles int
}

// match checks one file against the type and size limits. Count limits are
// handled by the controller's capacity logic, not here.
func (l Limits) match(f File) (RejectionCode, bool) {
	if len(l.Accept) > 0 && !l.acceptsType(f) {
		return CodeInvalidType, false
	}
	if l.MaxSize > 0 && f.Size() > l.MaxSize {
		return CodeTooLarge, false
	}
	if l.MinSize > 0 && f.Size() < l.MinSize {
		return CodeTooSmall, false
	}
	return "", true
}

func (l Limits) acceptsType(f File) bool {
	if _, ok := l.Accept[f.ContentType]; ok {
		return true
	}
	name := strings.ToLower(f.Name)
	for _, exts := range l.Accept {
		for _, ext := range exts {
			if ext != "" && strings.HasSuffix(name, strings.ToLower(ext)) {
				return true
			}
		}
	}
	return false
}

// acceptedList returns the flattened accept extensions for error messages,
// sorted for stable output.
func (l Limits) acceptedList() string {
	var all []string
	for _, exts := range l.Accept {
		all = append(all, exts...)
	}
	sort.Strings(all)
	return strings.Join(all, ", ")
}

// rootErrorMessage turns a set of distinct rejection codes into one
// human-readable composite message.
func rootErrorMessage(codes []RejectionCode, limits Limits) string {
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		switch code {
		case CodeInvalidType:
			parts = append(parts, fmt.Sprintf("only %s are allowed", limits.acceptedList()))
		case CodeTooLarge:
			if limits.MaxSize > 0 {
				parts = append(parts, fmt.Sprintf("max size is %.2fMB", float64(limits.MaxSize)/(1024*1024)))
			} else {
				parts = append(parts, "max size is infinite?MB")
			}
		case CodeTooSmall:
			if limits.MinSize > 0 {
				parts = append(parts, fmt.Sprintf("min size is %.2fMB", float64(limits.MinSize)/(1024*1024)))
			} else {
				parts = append(parts, "min size is negative?MB")
			}
		case CodeTooManyFiles:
			parts = append(parts, fmt.Sprintf("max %d files", limits.MaxFiles))
		}
	}
	joined := strings.Join(parts, ", ")
	if joined == "" {
		return ""
	}
	return strings.ToUpper(joined[:1]) + joined[1:]
}

// distinctCodes preserves first-seen order while dropping duplicates.
func distinctCodes(codes []RejectionCode) []RejectionCode {
	seen := make(map[RejectionCode]bool, len(codes))
	out := make([]RejectionCode, 0, len(codes))
	for _, c := range codes {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
