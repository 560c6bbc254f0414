package media

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// sniffImage detects the content type from the leading bytes. Only image/*
// types are accepted; the declared multipart type is ignored.
func sniffImage(head []byte) (*mimetype.MIME, bool) {
	detected := mimetype.Detect(head)
	for m := detected; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return detected, true
		}
	}
	return detected, false
}

// extensionFor prefers the sniffed extension and falls back to the client
// file name.
func extensionFor(detected *mimetype.MIME, original string) string {
	if ext := detected.Extension(); ext != "" {
		return ext
	}
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if ext == "." || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
