package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// algoSegmentRegex matches a single owner or algorithm name segment.
var algoSegmentRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

// algoVersionRegex matches the version forms accepted by the service:
// a semantic version with optional wildcards, "latest", or a build hash.
var algoVersionRegex = regexp.MustCompile(`^(latest|\d+(\.(\d+|\*)){0,2}|[0-9a-f]{40})$`)

// ValidateAlgorithmRef validates an algorithm reference of the form
// owner/name or owner/name/version, with an optional algo:// prefix.
func ValidateAlgorithmRef(ref string) error {
	ref = strings.TrimPrefix(ref, "algo://")
	if ref == "" {
		return New(ErrCodeInvalidInput, "algorithm reference cannot be empty")
	}

	for _, r := range ref {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "algorithm reference contains invalid characters")
		}
	}

	parts := strings.Split(ref, "/")
	if len(parts) < 2 || len(parts) > 3 {
		return New(ErrCodeInvalidInput, "algorithm reference must be owner/name[/version]: %q", ref)
	}
	for _, p := range parts[:2] {
		if !algoSegmentRegex.MatchString(p) {
			return New(ErrCodeInvalidInput, "invalid algorithm reference segment: %q", p)
		}
	}
	if len(parts) == 3 && !algoVersionRegex.MatchString(parts[2]) {
		return New(ErrCodeInvalidInput, "invalid algorithm version: %q", parts[2])
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
