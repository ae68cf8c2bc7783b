package util

import (
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// GetIDFromString returns the sha1 hex digest of str.
func GetIDFromString(str *string) string {
	hasher := sha1.New()
	hasher.Write([]byte(*str))

	return hex.EncodeToString(hasher.Sum(nil))
}

// WebPath turns a relative file path into a link target.
func WebPath(path string) string {
	return strings.ReplaceAll(filepath.ToSlash(path), `\`, "/")
}
