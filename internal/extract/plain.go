package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// extractPlain returns content as a string. A UTF-8 BOM is dropped and invalid
// sequences become U+FFFD. Content containing NUL bytes is rejected as binary.
func extractPlain(content []byte) (string, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if bytes.IndexByte(content, 0) >= 0 {
		return "", fmt.Errorf("%w: binary content", ErrUnsupportedFormat)
	}
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "�"), nil
	}
	return string(content), nil
}
