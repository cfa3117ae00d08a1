package utils

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// data-URL header, e.g. "data:image/jpeg;base64,"
var dataURLPattern = regexp.MustCompile(`^data:image/\w+;base64,`)

// StripDataURLPrefix removes an embedded data-URL header from a base64 image
// payload if present, returning the bare base64 content.
func StripDataURLPrefix(content string) string {
	return dataURLPattern.ReplaceAllString(content, "")
}

// DataURLContentType extracts the content type declared in a data-URL header,
// returning fallback when no header is present.
func DataURLContentType(content, fallback string) string {
	header := dataURLPattern.FindString(content)
	if header == "" {
		return fallback
	}
	// "data:" ... ";base64,"
	ct := strings.TrimPrefix(header, "data:")
	ct = strings.TrimSuffix(ct, ";base64,")
	if ct == "" {
		return fallback
	}
	return ct
}

// DecodeProofImage decodes a base64 image proof (with or without a data-URL
// header) into raw bytes.
func DecodeProofImage(content string) ([]byte, error) {
	raw := StripDataURLPrefix(content)
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode proof image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("proof image is empty")
	}
	return data, nil
}
