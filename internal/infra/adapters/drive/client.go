package drive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"drive-search-bot/internal/config"
	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/adapter"
	"drive-search-bot/internal/infra/metrics"
)

const (
	searchPageSize = 100
	listPageSize   = 1000
	chunkSize      = 5 << 20

	itemFields = "id, name, size, mimeType, createdTime"
	pageFields = "nextPageToken, files(" + itemFields + ")"

	filesOnly   = "mimeType != '" + model.FolderMimeType + "' and trashed = false"
	foldersOnly = "mimeType = '" + model.FolderMimeType + "' and trashed = false"
)

var _ adapter.DriveService = (*Client)(nil)

type listQuery struct {
	Q         string
	PageToken string
	Fields    string
	OrderBy   string
	PageSize  int64
}

// filesAPI is the slice of the Drive v3 files resource the client uses.
type filesAPI interface {
	List(ctx context.Context, q listQuery) (*gdrive.FileList, error)
	Get(ctx context.Context, fileID string) (*gdrive.File, error)
	Trash(ctx context.Context, fileID string) error
	Media(ctx context.Context, fileID string) (*http.Response, error)
}

type serviceFiles struct {
	files *gdrive.FilesService
}

func newServiceFiles(ctx context.Context, ts oauth2.TokenSource) (filesAPI, error) {
	svc, err := gdrive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &serviceFiles{files: svc.Files}, nil
}

func (s *serviceFiles) List(ctx context.Context, q listQuery) (*gdrive.FileList, error) {
	call := s.files.List().
		Q(q.Q).
		PageSize(q.PageSize).
		Fields(googleapi.Field(q.Fields)).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx)
	if q.OrderBy != "" {
		call = call.OrderBy(q.OrderBy)
	}
	if q.PageToken != "" {
		call = call.PageToken(q.PageToken)
	}
	return call.Do()
}

func (s *serviceFiles) Get(ctx context.Context, fileID string) (*gdrive.File, error) {
	return s.files.Get(fileID).Fields(googleapi.Field(itemFields)).SupportsAllDrives(true).Context(ctx).Do()
}

func (s *serviceFiles) Trash(ctx context.Context, fileID string) error {
	_, err := s.files.Update(fileID, &gdrive.File{Trashed: true}).SupportsAllDrives(true).Context(ctx).Do()
	return err
}

func (s *serviceFiles) Media(ctx context.Context, fileID string) (*http.Response, error) {
	return s.files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
}

// Client searches, lists, downloads and trashes files in one Drive folder scope.
type Client struct {
	auth        *Authenticator
	folderID    string
	downloadDir string
	chunkSize   int64
	log         *zerolog.Logger

	mu     sync.Mutex
	api    filesAPI
	apiGen uint64
	newAPI func(ctx context.Context, ts oauth2.TokenSource) (filesAPI, error)
}

func NewClient(auth *Authenticator, cfg config.DriveConfig, logger *zerolog.Logger) *Client {
	l := logger.With().Str("component", "drive").Logger()
	return &Client{
		auth:        auth,
		folderID:    cfg.FolderID,
		downloadDir: cfg.DownloadDir,
		chunkSize:   chunkSize,
		log:         &l,
		newAPI:      newServiceFiles,
	}
}

// files returns the API bound to the current token, rebuilding it after
// the token was replaced or discarded.
func (c *Client) files(ctx context.Context) (filesAPI, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.auth == nil {
		if c.api == nil {
			return nil, domain.ErrUnauthenticated
		}
		return c.api, nil
	}
	gen := c.auth.Generation()
	if c.api != nil && c.apiGen == gen {
		return c.api, nil
	}
	ts, err := c.auth.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	api, err := c.newAPI(context.Background(), ts)
	if err != nil {
		return nil, err
	}
	c.api, c.apiGen = api, gen
	return api, nil
}

func (c *Client) do(ctx context.Context, op string, fn func(api filesAPI) error) error {
	start := time.Now()
	api, err := c.files(ctx)
	if err == nil {
		err = fn(api)
	}
	err = classify(op, err)
	if errors.Is(err, domain.ErrUnauthenticated) && c.auth != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			c.auth.Invalidate(ctx, "api returned 401")
		}
	}
	metrics.ObserveDriveRequest(op, start, err)
	return err
}

func (c *Client) scoped(q string) string {
	if c.folderID == "" {
		return q
	}
	return fmt.Sprintf("%s and '%s' in parents", q, escape(c.folderID))
}

// Search matches names containing query, excluding folders and trashed files.
func (c *Client) Search(ctx context.Context, query string) ([]model.DriveItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidArgument
	}
	q := c.scoped(fmt.Sprintf("name contains '%s' and %s", escape(query), filesOnly))
	var items []model.DriveItem
	err := c.do(ctx, "search", func(api filesAPI) error {
		res, err := api.List(ctx, listQuery{
			Q:        q,
			Fields:   "files(" + itemFields + ")",
			OrderBy:  "name_natural",
			PageSize: searchPageSize,
		})
		if err != nil {
			return err
		}
		items = toItems(res.Files)
		return nil
	})
	return items, err
}

// ListAll follows page tokens until every file in scope is collected.
func (c *Client) ListAll(ctx context.Context) ([]model.DriveItem, error) {
	var all []model.DriveItem
	err := c.eachPage(ctx, "list_all", c.scoped(filesOnly), pageFields, func(files []*gdrive.File) {
		all = append(all, toItems(files)...)
	})
	return all, err
}

// RecursiveCount walks the folder tree breadth first. A provider error ends
// the walk and the files counted so far are returned.
func (c *Client) RecursiveCount(ctx context.Context, rootID string) (int, error) {
	if rootID == "" {
		rootID = c.folderID
	}
	if rootID == "" {
		rootID = "root"
	}
	total := 0
	queue := []string{rootID}
	for len(queue) > 0 {
		folder := queue[0]
		queue = queue[1:]
		parent := fmt.Sprintf("'%s' in parents and ", escape(folder))

		err := c.eachPage(ctx, "count_files", parent+filesOnly, "nextPageToken, files(id)", func(files []*gdrive.File) {
			total += len(files)
		})
		if err == nil {
			err = c.eachPage(ctx, "list_folders", parent+foldersOnly, "nextPageToken, files(id)", func(files []*gdrive.File) {
				for _, f := range files {
					queue = append(queue, f.Id)
				}
			})
		}
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) || errors.Is(err, domain.ErrNoCredentials) {
				return total, err
			}
			c.log.Warn().Err(err).Str("folder", folder).Int("partial_total", total).Msg("recursive count interrupted")
			return total, nil
		}
	}
	return total, nil
}

func (c *Client) eachPage(ctx context.Context, op, q, fields string, fn func([]*gdrive.File)) error {
	token := ""
	for {
		var res *gdrive.FileList
		err := c.do(ctx, op, func(api filesAPI) error {
			var err error
			res, err = api.List(ctx, listQuery{Q: q, Fields: fields, PageToken: token, PageSize: listPageSize})
			return err
		})
		if err != nil {
			return err
		}
		fn(res.Files)
		if res.NextPageToken == "" {
			return nil
		}
		token = res.NextPageToken
	}
}

func (c *Client) Metadata(ctx context.Context, fileID string) (model.DriveItem, error) {
	var item model.DriveItem
	err := c.do(ctx, "metadata", func(api filesAPI) error {
		f, err := api.Get(ctx, fileID)
		if err != nil {
			return err
		}
		item = toItem(f)
		return nil
	})
	return item, err
}

// Delete moves the file to trash. Trashing needs fewer permissions than
// permanent deletion.
func (c *Client) Delete(ctx context.Context, fileID string) error {
	return c.do(ctx, "trash", func(api filesAPI) error {
		return api.Trash(ctx, fileID)
	})
}

func toItems(files []*gdrive.File) []model.DriveItem {
	out := make([]model.DriveItem, 0, len(files))
	for _, f := range files {
		out = append(out, toItem(f))
	}
	return out
}

func toItem(f *gdrive.File) model.DriveItem {
	item := model.DriveItem{ID: f.Id, Name: f.Name, Size: f.Size, MimeType: f.MimeType}
	if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
		item.CreatedTime = t
	}
	return item
}

var queryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func escape(s string) string { return queryEscaper.Replace(s) }
