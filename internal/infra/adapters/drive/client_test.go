//go:build !integration

package drive

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"drive-search-bot/internal/domain"
)

type fakeFiles struct {
	queries []listQuery
	list    func(q listQuery) (*gdrive.FileList, error)
	get     func(id string) (*gdrive.File, error)
	trash   func(id string) error
	media   func(id string) (*http.Response, error)
}

func (f *fakeFiles) List(_ context.Context, q listQuery) (*gdrive.FileList, error) {
	f.queries = append(f.queries, q)
	return f.list(q)
}

func (f *fakeFiles) Get(_ context.Context, id string) (*gdrive.File, error) { return f.get(id) }

func (f *fakeFiles) Trash(_ context.Context, id string) error { return f.trash(id) }

func (f *fakeFiles) Media(_ context.Context, id string) (*http.Response, error) { return f.media(id) }

func newTestClient(api filesAPI, folderID string) *Client {
	l := zerolog.Nop()
	c := &Client{folderID: folderID, chunkSize: chunkSize, log: &l}
	c.api = api
	return c
}

func TestSearchQuery(t *testing.T) {
	api := &fakeFiles{list: func(q listQuery) (*gdrive.FileList, error) {
		return &gdrive.FileList{Files: []*gdrive.File{{Id: "1", Name: "report.pdf", Size: 2048, CreatedTime: "2024-01-02T03:04:05Z"}}}, nil
	}}
	c := newTestClient(api, "folder1")

	items, err := c.Search(context.Background(), "bob's")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 1 || items[0].Name != "report.pdf" || items[0].Size != 2048 {
		t.Fatalf("unexpected items: %+v", items)
	}
	if items[0].CreatedTime.Year() != 2024 {
		t.Fatalf("created time not parsed: %v", items[0].CreatedTime)
	}

	q := api.queries[0]
	for _, want := range []string{`name contains 'bob\'s'`, "trashed = false", "mimeType != 'application/vnd.google-apps.folder'", "'folder1' in parents"} {
		if !strings.Contains(q.Q, want) {
			t.Errorf("query %q missing %q", q.Q, want)
		}
	}
	if q.PageSize != searchPageSize || q.OrderBy != "name_natural" {
		t.Errorf("unexpected paging: %+v", q)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	c := newTestClient(&fakeFiles{}, "")
	if _, err := c.Search(context.Background(), "   "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSearchWithoutFolderIsUnscoped(t *testing.T) {
	api := &fakeFiles{list: func(listQuery) (*gdrive.FileList, error) { return &gdrive.FileList{}, nil }}
	c := newTestClient(api, "")
	if _, err := c.Search(context.Background(), "x"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if strings.Contains(api.queries[0].Q, "in parents") {
		t.Fatalf("query should not be scoped: %q", api.queries[0].Q)
	}
}

func TestListAllFollowsPages(t *testing.T) {
	pages := map[string]*gdrive.FileList{
		"":   {Files: []*gdrive.File{{Id: "a"}, {Id: "b"}}, NextPageToken: "p2"},
		"p2": {Files: []*gdrive.File{{Id: "c"}}, NextPageToken: "p3"},
		"p3": {Files: []*gdrive.File{{Id: "d"}}},
	}
	api := &fakeFiles{list: func(q listQuery) (*gdrive.FileList, error) { return pages[q.PageToken], nil }}
	c := newTestClient(api, "f")

	items, err := c.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}
	if len(api.queries) != 3 {
		t.Fatalf("expected 3 page requests, got %d", len(api.queries))
	}
	if api.queries[0].PageSize != listPageSize {
		t.Errorf("page size = %d", api.queries[0].PageSize)
	}
}

func TestRecursiveCount(t *testing.T) {
	// root: 2 files, sub1 + sub2; sub1: 3 files; sub2: 1 file, sub3; sub3: 0 files
	files := map[string]int{"root1": 2, "sub1": 3, "sub2": 1, "sub3": 0}
	folders := map[string][]string{"root1": {"sub1", "sub2"}, "sub2": {"sub3"}}

	listing := func(failOn string) func(q listQuery) (*gdrive.FileList, error) {
		return func(q listQuery) (*gdrive.FileList, error) {
			parent := strings.TrimPrefix(strings.SplitN(q.Q, "' in parents", 2)[0], "'")
			if parent == failOn {
				return nil, &googleapi.Error{Code: 500}
			}
			out := &gdrive.FileList{}
			if strings.Contains(q.Q, "mimeType = ") {
				for _, id := range folders[parent] {
					out.Files = append(out.Files, &gdrive.File{Id: id})
				}
				return out, nil
			}
			for i := 0; i < files[parent]; i++ {
				out.Files = append(out.Files, &gdrive.File{Id: parent})
			}
			return out, nil
		}
	}

	t.Run("full tree", func(t *testing.T) {
		c := newTestClient(&fakeFiles{list: listing("")}, "root1")
		n, err := c.RecursiveCount(context.Background(), "")
		if err != nil || n != 6 {
			t.Fatalf("got %d, %v; want 6", n, err)
		}
	})

	t.Run("partial on failure", func(t *testing.T) {
		c := newTestClient(&fakeFiles{list: listing("sub2")}, "root1")
		n, err := c.RecursiveCount(context.Background(), "root1")
		if err != nil {
			t.Fatalf("partial count should not error: %v", err)
		}
		if n != 5 {
			t.Fatalf("got %d; want 5", n)
		}
	})

	t.Run("defaults to drive root", func(t *testing.T) {
		api := &fakeFiles{list: func(listQuery) (*gdrive.FileList, error) { return &gdrive.FileList{}, nil }}
		c := newTestClient(api, "")
		if _, err := c.RecursiveCount(context.Background(), ""); err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(api.queries[0].Q, "'root' in parents") {
			t.Fatalf("unexpected query %q", api.queries[0].Q)
		}
	})
}

func TestDeleteClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"ok", nil, nil},
		{"forbidden", &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "insufficientFilePermissions"}}}, domain.ErrForbidden},
		{"rate limited", &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "userRateLimitExceeded"}}}, domain.ErrTransient},
		{"not found", &googleapi.Error{Code: 404}, domain.ErrNotFound},
		{"server", &googleapi.Error{Code: 503}, domain.ErrTransient},
		{"too many", &googleapi.Error{Code: 429}, domain.ErrTransient},
		{"other", errors.New("boom"), domain.ErrDrive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(&fakeFiles{trash: func(string) error { return tc.err }}, "")
			err := c.Delete(context.Background(), "id")
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestMetadata(t *testing.T) {
	api := &fakeFiles{get: func(id string) (*gdrive.File, error) {
		return &gdrive.File{Id: id, Name: "a.zip", Size: 10, MimeType: "application/zip"}, nil
	}}
	item, err := newTestClient(api, "").Metadata(context.Background(), "x1")
	if err != nil {
		t.Fatal(err)
	}
	if item.ID != "x1" || item.Name != "a.zip" || item.MimeType != "application/zip" {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestDownloadReportsProgress(t *testing.T) {
	body := strings.Repeat("x", 25)
	api := &fakeFiles{media: func(string) (*http.Response, error) {
		return &http.Response{StatusCode: 200, ContentLength: int64(len(body)), Body: io.NopCloser(strings.NewReader(body))}, nil
	}}
	c := newTestClient(api, "")
	c.downloadDir = t.TempDir()
	c.chunkSize = 10

	var seen []float64
	path, err := c.Download(context.Background(), "id", "../evil/name.txt", func(f float64) { seen = append(seen, f) })
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if filepath.Dir(filepath.Dir(path)) != c.downloadDir {
		t.Fatalf("file escaped download dir: %s", path)
	}
	if filepath.Base(path) != ".._evil_name.txt" {
		t.Fatalf("unexpected file name %s", filepath.Base(path))
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != body {
		t.Fatalf("content mismatch: %q, %v", got, err)
	}
	want := []float64{0.4, 0.8, 1}
	if len(seen) != len(want) {
		t.Fatalf("progress calls = %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("progress calls = %v", seen)
		}
	}
}

func TestDownloadFailureCleansUp(t *testing.T) {
	api := &fakeFiles{media: func(string) (*http.Response, error) { return nil, &googleapi.Error{Code: 404} }}
	c := newTestClient(api, "")
	c.downloadDir = t.TempDir()

	if _, err := c.Download(context.Background(), "id", "a", nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	entries, _ := os.ReadDir(c.downloadDir)
	if len(entries) != 0 {
		t.Fatalf("download dir not empty: %d entries", len(entries))
	}
}

func TestFilesWithoutAuth(t *testing.T) {
	l := zerolog.Nop()
	c := &Client{log: &l}
	if _, err := c.Search(context.Background(), "x"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
