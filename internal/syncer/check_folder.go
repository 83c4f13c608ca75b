package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"treesync/internal/logger"
	"treesync/internal/model"

	"go.uber.org/zap"
)

// CheckFolderTask diffs one remote folder against one local directory and
// queues a task for every difference it finds.
type CheckFolderTask struct {
	env    *Env
	folder *model.RemoteItem
	dir    string
}

func NewCheckFolderTask(env *Env, folder *model.RemoteItem, dir string) (*CheckFolderTask, error) {
	if err := env.validate(); err != nil {
		return nil, err
	}
	if folder == nil || !folder.IsFolder() {
		return nil, fmt.Errorf("%w: remote target of a folder check must be a folder", ErrInvalidArgument)
	}
	if !env.Local.IsDir(dir) {
		return nil, fmt.Errorf("%w: %s is not an existing directory", ErrInvalidArgument, dir)
	}

	return &CheckFolderTask{env: env, folder: folder, dir: dir}, nil
}

func (t *CheckFolderTask) Priority() int {
	return PriorityCheckFolder
}

func (t *CheckFolderTask) Kind() string {
	return "check_folder"
}

func (t *CheckFolderTask) String() string {
	return fmt.Sprintf("check folder %s against %s", t.folder.FullName(), t.dir)
}

// Run matches remote children to local entries by name. Matched folders and
// files get their own check task. A name that is a folder on one side and a
// file on the other is reported as a conflict and left alone on both sides.
// Remote-only children are only logged. Local-only entries not on the
// ignore list become a folder creation plus check, or an upload.
func (t *CheckFolderTask) Run(ctx context.Context) error {
	children, err := t.env.Remote.Children(ctx, t.folder)
	if err != nil {
		return err
	}

	entries, err := t.env.Local.List(t.dir)
	if err != nil {
		return err
	}

	pending := make(map[string]model.LocalEntry, len(entries))
	for _, entry := range entries {
		pending[entry.Name] = entry
	}

	var errs []error
	for _, child := range children {
		entry, ok := pending[child.Name]
		if !ok {
			t.env.Counters.RemoteOnly.Add(1)
			logger.Log.Info("remote-only item, not deleting",
				zap.String("remote", child.FullName()))
			continue
		}

		delete(pending, child.Name)

		switch {
		case child.IsFolder() != entry.IsDir():
			t.conflict(child, entry)
		case child.IsFolder():
			errs = append(errs, t.enqueueFolder(child, entry.Path))
		default:
			errs = append(errs, t.enqueueFile(child, entry))
		}
	}

	for name := range pending {
		if t.env.ignored(name) {
			t.env.Counters.Ignored.Add(1)
			delete(pending, name)
		}
	}

	names := make([]string, 0, len(pending))
	for name := range pending {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := pending[name]
		if !entry.IsDir() {
			errs = append(errs, t.enqueueUpload(entry))
			continue
		}

		created, err := t.env.Remote.CreateFolder(ctx, t.folder, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		t.env.Counters.FoldersCreated.Add(1)
		logger.Log.Info("remote folder created",
			zap.String("remote", created.FullName()),
			zap.String("local", entry.Path))
		errs = append(errs, t.enqueueFolder(created, entry.Path))
	}

	return errors.Join(errs...)
}

func (t *CheckFolderTask) conflict(child *model.RemoteItem, entry model.LocalEntry) {
	t.env.Counters.Conflicts.Add(1)
	logger.Log.Warn("type conflict, skipping",
		zap.String("remote", child.FullName()),
		zap.String("remote_kind", string(child.Kind)),
		zap.String("local", entry.Path),
		zap.String("local_kind", string(entry.Kind)))

	if t.env.OnConflict != nil {
		t.env.OnConflict(child, entry)
	}
}

func (t *CheckFolderTask) enqueueFolder(folder *model.RemoteItem, dir string) error {
	task, err := NewCheckFolderTask(t.env, folder, dir)
	if err != nil {
		return err
	}

	t.env.Queue.Add(task)
	return nil
}

func (t *CheckFolderTask) enqueueFile(item *model.RemoteItem, entry model.LocalEntry) error {
	task, err := NewCheckFileTask(t.env, item, entry)
	if err != nil {
		return err
	}

	t.env.Queue.Add(task)
	return nil
}

func (t *CheckFolderTask) enqueueUpload(entry model.LocalEntry) error {
	task, err := NewUploadTask(t.env, t.folder, entry, false)
	if err != nil {
		return err
	}

	t.env.Queue.Add(task)
	return nil
}
