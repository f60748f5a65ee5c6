package htmltag

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoInsertionPoint is returned when a document lacks the closing tag a
// non-empty tag list must be inserted before.
var ErrNoInsertionPoint = errors.New("htmltag: insertion point not found")

// insertionPoints holds byte offsets of the first </head> and the last </body>; -1 when absent.
type insertionPoints struct {
	headEnd int
	bodyEnd int
}

func locate(doc []byte) (insertionPoints, error) {
	pts := insertionPoints{headEnd: -1, bodyEnd: -1}
	z := html.NewTokenizer(bytes.NewReader(doc))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return pts, fmt.Errorf("tokenize: %w", err)
			}
			return pts, nil
		}
		raw := len(z.Raw())
		if tt == html.EndTagToken {
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Head:
				if pts.headEnd < 0 {
					pts.headEnd = offset
				}
			case atom.Body:
				pts.bodyEnd = offset
			}
		}
		offset += raw
	}
}

// Splice inserts set.Head before the first </head> and set.BodyEnd before the
// last </body>. Tokenizing keeps occurrences inside scripts and comments from
// being mistaken for real closing tags.
func Splice(doc []byte, set Set) ([]byte, error) {
	if set.IsEmpty() {
		return doc, nil
	}
	pts, err := locate(doc)
	if err != nil {
		return nil, err
	}
	if len(set.Head) > 0 && pts.headEnd < 0 {
		return nil, fmt.Errorf("%w: </head>", ErrNoInsertionPoint)
	}
	if len(set.BodyEnd) > 0 && pts.bodyEnd < 0 {
		return nil, fmt.Errorf("%w: </body>", ErrNoInsertionPoint)
	}
	if len(set.Head) > 0 && len(set.BodyEnd) > 0 && pts.headEnd > pts.bodyEnd {
		return nil, fmt.Errorf("%w: </head> after </body>", ErrNoInsertionPoint)
	}

	var out bytes.Buffer
	out.Grow(len(doc) + 512)
	cursor := 0
	insert := func(at int, tags []Tag) {
		if len(tags) == 0 {
			return
		}
		out.Write(doc[cursor:at])
		out.WriteString(RenderAll(tags))
		out.WriteByte('\n')
		cursor = at
	}
	insert(pts.headEnd, set.Head)
	insert(pts.bodyEnd, set.BodyEnd)
	out.Write(doc[cursor:])
	return out.Bytes(), nil
}

// Contains reports whether doc already carries a tag rendering identical to t.
func Contains(doc []byte, t Tag) bool {
	return bytes.Contains(doc, []byte(t.Render()))
}
