package syncer

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"
	"treesync/internal/model"
	"treesync/internal/remote"
)

type call struct {
	op     string
	target string
}

// fakeRemote is an in-memory remote tree. Mutations change the tree and are
// recorded in calls. With contentTimes set it behaves like a backend that
// only takes the modification time along with uploaded content.
type fakeRemote struct {
	mu           sync.Mutex
	contentTimes bool
	root         *model.RemoteItem
	children     map[string][]*model.RemoteItem
	nextID       int
	calls        []call
	fail         map[string]error
}

var _ remote.Accessor = (*fakeRemote)(nil)

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		root:     &model.RemoteItem{ID: "root", Kind: model.KindFolder},
		children: make(map[string][]*model.RemoteItem),
		fail:     make(map[string]error),
	}
}

func (f *fakeRemote) add(parent *model.RemoteItem, item *model.RemoteItem) *model.RemoteItem {
	f.nextID++
	item.ID = fmt.Sprintf("id-%d", f.nextID)
	item.Parent = parent
	f.children[parent.ID] = append(f.children[parent.ID], item)
	return item
}

func (f *fakeRemote) addFolder(parent *model.RemoteItem, name string) *model.RemoteItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.add(parent, &model.RemoteItem{Name: name, Kind: model.KindFolder})
}

func (f *fakeRemote) addFile(parent *model.RemoteItem, name string, size int64, hash string, mod time.Time) *model.RemoteItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.add(parent, &model.RemoteItem{Name: name, Kind: model.KindFile, Size: size, Hash: hash, ModifiedAt: mod})
}

func (f *fakeRemote) record(op, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: op, target: target})
	return f.fail[op+" "+target]
}

func (f *fakeRemote) callsOf(op string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c.target)
		}
	}

	return out
}

func (f *fakeRemote) DefaultDrive(context.Context) (*model.Drive, error) {
	return &model.Drive{ID: "fake"}, nil
}

func (f *fakeRemote) Root(context.Context) (*model.RemoteItem, error) {
	return f.root, nil
}

func (f *fakeRemote) Path(ctx context.Context, _ string, _ bool) (*model.RemoteItem, error) {
	return f.Root(ctx)
}

func (f *fakeRemote) Children(_ context.Context, folder *model.RemoteItem) ([]*model.RemoteItem, error) {
	if err := f.record("children", folder.FullName()); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.RemoteItem(nil), f.children[folder.ID]...), nil
}

func (f *fakeRemote) put(op string, parent *model.RemoteItem, file model.LocalEntry) (*model.RemoteItem, error) {
	target := path.Join(parent.FullName(), file.Name)
	if err := f.record(op, target); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.children[parent.ID] {
		if c.Name == file.Name && !c.IsFolder() {
			c.Size = file.Size
			if f.contentTimes {
				c.ModifiedAt = file.ModTime
			}
			return c, nil
		}
	}

	item := &model.RemoteItem{Name: file.Name, Kind: model.KindFile, Size: file.Size}
	if f.contentTimes {
		item.ModifiedAt = file.ModTime
	}

	return f.add(parent, item), nil
}

func (f *fakeRemote) ReplaceFile(_ context.Context, parent *model.RemoteItem, file model.LocalEntry) (*model.RemoteItem, error) {
	return f.put("replace", parent, file)
}

func (f *fakeRemote) UploadFile(_ context.Context, parent *model.RemoteItem, file model.LocalEntry) (*model.RemoteItem, error) {
	return f.put("upload", parent, file)
}

func (f *fakeRemote) UploadFileInChunks(_ context.Context, parent *model.RemoteItem, file model.LocalEntry, _ int64) (*model.RemoteItem, error) {
	return f.put("chunked", parent, file)
}

func (f *fakeRemote) UpdateTimestamps(_ context.Context, item *model.RemoteItem, _, modified time.Time) (*model.RemoteItem, error) {
	if err := f.record("touch", item.FullName()); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.contentTimes {
		item.ModifiedAt = modified
	}
	return item, nil
}

func (f *fakeRemote) CreateFolder(_ context.Context, parent *model.RemoteItem, name string) (*model.RemoteItem, error) {
	target := path.Join(parent.FullName(), name)
	if err := f.record("mkdir", target); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.add(parent, &model.RemoteItem{Name: name, Kind: model.KindFolder}), nil
}

func (f *fakeRemote) Download(context.Context, *model.RemoteItem, string) error {
	return nil
}

func (f *fakeRemote) Delete(_ context.Context, item *model.RemoteItem) error {
	return f.record("delete", item.FullName())
}
