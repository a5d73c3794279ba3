package content

import (
	"bytes"
	"errors"
)

var ErrMissingClosingDelimiter = errors.New("front matter: missing closing delimiter")

// splitFrontMatter separates `---` delimited YAML front matter from the body.
// Documents without front matter return a nil front matter and the full input.
func splitFrontMatter(src []byte) (fm []byte, body []byte, err error) {
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))

	open := []byte("---\n")
	if !bytes.HasPrefix(src, open) {
		return nil, src, nil
	}

	rest := src[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], nil
	}

	idx := bytes.Index(rest, []byte("\n---\n"))
	if idx < 0 {
		if bytes.HasSuffix(rest, []byte("\n---")) {
			return rest[:len(rest)-len("---")], nil, nil
		}
		return nil, nil, ErrMissingClosingDelimiter
	}
	return rest[:idx+1], rest[idx+len("\n---\n"):], nil
}
