package refdata

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/gridsage/plantenrich/internal/fetcher"
)

// Source yields the reference table's raw CSV stream.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads the reference table from a local path.
type FileSource struct {
	Path string
}

func (s FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "refdata: open %s", s.Path)
	}
	return f, nil
}

// HTTPSource downloads the reference table.
type HTTPSource struct {
	Fetcher fetcher.Fetcher
	URL     string
}

func (s HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return s.Fetcher.Download(ctx, s.URL)
}
