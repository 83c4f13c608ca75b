package gdrive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"treesync/internal/model"
	"treesync/internal/remote"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

type fakeDrive struct {
	mu     sync.Mutex
	tokens []string
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)

	switch {
	case r.URL.Path == "/about":
		_ = enc.Encode(map[string]any{
			"user":         map[string]any{"emailAddress": "me@example.com", "permissionId": "p1"},
			"storageQuota": map[string]any{"limit": "1000", "usage": "250"},
		})

	case r.URL.Path == "/files/root":
		_ = enc.Encode(map[string]any{"id": "root-id", "name": "My Drive", "mimeType": folderMimeType})

	case r.URL.Path == "/files" && r.Method == http.MethodGet:
		q := r.URL.Query().Get("q")
		token := r.URL.Query().Get("pageToken")

		f.mu.Lock()
		f.tokens = append(f.tokens, token)
		f.mu.Unlock()

		switch {
		case strings.Contains(q, "name='Docs'"):
			_ = enc.Encode(map[string]any{"files": []any{
				map[string]any{"id": "docs-id", "name": "Docs", "mimeType": folderMimeType},
			}})
		case strings.Contains(q, "name="):
			_ = enc.Encode(map[string]any{"files": []any{}})
		case strings.Contains(q, "'docs-id' in parents"):
			_ = enc.Encode(listPage(token))
		default:
			_ = enc.Encode(map[string]any{"files": []any{}})
		}

	default:
		w.WriteHeader(http.StatusNotFound)
		_ = enc.Encode(map[string]any{"error": map[string]any{"code": 404, "message": "File not found"}})
	}
}

func listPage(token string) map[string]any {
	switch token {
	case "":
		return map[string]any{
			"nextPageToken": "t1",
			"files": []any{
				map[string]any{"id": "a", "name": "a.txt", "mimeType": "text/plain", "size": "3", "md5Checksum": "abc", "modifiedTime": "2024-01-02T03:04:05.000Z"},
				map[string]any{"id": "b", "name": "B", "mimeType": folderMimeType},
			},
		}
	case "t1":
		return map[string]any{
			"nextPageToken": "t2",
			"files":         []any{map[string]any{"id": "c", "name": "c.txt", "mimeType": "text/plain", "size": "7"}},
		}
	default:
		return map[string]any{
			"files": []any{map[string]any{"id": "d", "name": "d.txt", "mimeType": "text/plain", "size": "1"}},
		}
	}
}

func newTestAccessor(t *testing.T) (*Accessor, *fakeDrive) {
	t.Helper()

	fake := &fakeDrive{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := drive.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	return New(svc, afero.NewMemMapFs()), fake
}

func TestAccessor_DefaultDrive(t *testing.T) {
	a, _ := newTestAccessor(t)

	d, err := a.DefaultDrive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &model.Drive{ID: "p1", Owner: "me@example.com", Total: 1000, Used: 250}, d)
}

func TestAccessor_PathWithChildrenWalksAllPages(t *testing.T) {
	a, fake := newTestAccessor(t)

	docs, err := a.Path(context.Background(), "/Docs", true)
	require.NoError(t, err)
	assert.Equal(t, "docs-id", docs.ID)
	assert.True(t, docs.IsFolder())
	assert.Equal(t, "/Docs", docs.FullName())

	require.Len(t, docs.Children, 4)
	var names []string
	for _, c := range docs.Children {
		names = append(names, c.Name)
		assert.Same(t, docs, c.Parent)
	}
	assert.Equal(t, []string{"a.txt", "B", "c.txt", "d.txt"}, names)

	first := docs.Children[0]
	assert.Equal(t, model.KindFile, first.Kind)
	assert.Equal(t, int64(3), first.Size)
	assert.Equal(t, "abc", first.Hash)
	assert.Equal(t, 2024, first.ModifiedAt.Year())
	assert.Equal(t, "/Docs/a.txt", first.FullName())
	assert.Equal(t, model.KindFolder, docs.Children[1].Kind)

	assert.Contains(t, fake.tokens, "t1")
	assert.Contains(t, fake.tokens, "t2")
}

func TestAccessor_PathMissingIsNotFound(t *testing.T) {
	a, _ := newTestAccessor(t)

	_, err := a.Path(context.Background(), "/Nope", false)
	require.Error(t, err)
	assert.True(t, remote.IsNotFound(err))
}

func TestAccessor_DownloadMissingIsNotFound(t *testing.T) {
	a, _ := newTestAccessor(t)

	err := a.Download(context.Background(), &model.RemoteItem{ID: "gone", Name: "gone"}, "/tmp/gone")
	require.Error(t, err)
	assert.True(t, remote.IsNotFound(err))
}

func TestAccessor_ChildrenRejectsFile(t *testing.T) {
	a, _ := newTestAccessor(t)

	_, err := a.Children(context.Background(), &model.RemoteItem{ID: "f", Kind: model.KindFile})
	assert.ErrorIs(t, err, remote.ErrNotFolder)
}

func TestSplitPathAndEscape(t *testing.T) {
	assert.Nil(t, splitPath("/"))
	assert.Nil(t, splitPath(""))
	assert.Equal(t, []string{"a", "b"}, splitPath("/a//b/"))
	assert.Equal(t, `it\'s`, escapeName("it's"))
}
