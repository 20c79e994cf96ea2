package upload

import (
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9.]`)

// ObjectKey derives the storage key for an uploaded file: the upload time
// in Unix milliseconds, a hyphen, then the base name with every character
// outside [a-zA-Z0-9.] replaced by an underscore.
func ObjectKey(now time.Time, filename string) string {
	name := unsafeKeyChars.ReplaceAllString(filepath.Base(filename), "_")
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + name
}
