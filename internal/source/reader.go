package source

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ParseFile opens path and runs it through p. A missing or unreadable file is
// fatal for the run and comes back as a *SourceError.
func ParseFile(p Parser, path string) (*Result, error) {
	const op = "Open"

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewSourceError(op, p.System(), path, ErrInputMissing)
		}
		return nil, NewSourceError(op, p.System(), path, err)
	}
	defer f.Close()

	result, err := p.Parse(f)
	if err != nil {
		var srcErr *SourceError
		if errors.As(err, &srcErr) && srcErr.Path == "" {
			srcErr.Path = path
			return nil, srcErr
		}
		return nil, NewSourceError("Parse", p.System(), path, err)
	}
	return result, nil
}

// newTextReader decodes UTF-8 input and drops a leading byte order mark, which
// both exports write.
func newTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}
