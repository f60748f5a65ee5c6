package content

import (
	"bytes"
	"errors"
	"strings"

	"github.com/inful/mdfp"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml front matter start delimiter found but closing delimiter is missing")

// split separates YAML front matter (`---` delimited) from the Markdown body.
// CRLF input is normalized to LF first.
func split(doc []byte) (frontmatter, body []byte, had bool, err error) {
	doc = bytes.ReplaceAll(doc, []byte("\r\n"), []byte("\n"))

	open := []byte("---\n")
	if !bytes.HasPrefix(doc, open) {
		return nil, doc, false, nil
	}

	rest := doc[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}

	closeSeq := []byte("\n---\n")
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		if bytes.HasSuffix(rest, []byte("\n---")) {
			return rest[:len(rest)-len("---")], nil, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	return rest[:idx+1], rest[idx+len(closeSeq):], true, nil
}

// join reassembles a front matter document.
func join(frontmatter, body []byte) []byte {
	out := make([]byte, 0, len(frontmatter)+len(body)+8)
	out = append(out, "---\n"...)
	out = append(out, frontmatter...)
	if len(frontmatter) > 0 && frontmatter[len(frontmatter)-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, "---\n"...)
	out = append(out, body...)
	return out
}

func fingerprint(frontmatter, body []byte) string {
	fm := strings.TrimSuffix(string(frontmatter), "\n")
	return mdfp.CalculateFingerprintFromParts(fm, string(body))
}
