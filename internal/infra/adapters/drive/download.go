package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/ports/adapter"
)

// Download streams the file into its own directory under the download dir,
// reporting progress after each chunk. The caller removes the returned
// path (and its parent directory) when done.
func (c *Client) Download(ctx context.Context, fileID, name string, progress adapter.ProgressFunc) (string, error) {
	var resp *http.Response
	err := c.do(ctx, "download", func(api filesAPI) error {
		var err error
		resp, err = api.Media(ctx, fileID)
		return err
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	size := resp.ContentLength
	if size <= 0 {
		if item, err := c.Metadata(ctx, fileID); err == nil {
			size = item.Size
		}
	}

	dir := filepath.Join(c.downloadDir, ulid.Make().String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create download dir: %v", domain.ErrDrive, err)
	}
	path := filepath.Join(dir, safeName(name, fileID))
	if err := c.copyChunks(path, resp.Body, size, progress); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return path, nil
}

func (c *Client) copyChunks(path string, body io.Reader, size int64, progress adapter.ProgressFunc) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create file: %v", domain.ErrDrive, err)
	}
	defer f.Close()

	var written int64
	for {
		n, err := io.CopyN(f, body, c.chunkSize)
		written += n
		if progress != nil && n > 0 {
			progress(fraction(written, size))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return classify("download", err)
		}
	}
	if progress != nil && size <= 0 {
		progress(1)
	}
	return f.Close()
}

func fraction(done, total int64) float64 {
	if total <= 0 {
		return 0
	}
	if done >= total {
		return 1
	}
	return float64(done) / float64(total)
}

// safeName keeps the display name but never lets it leave the directory.
func safeName(name, fallback string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return fallback
	}
	return name
}
