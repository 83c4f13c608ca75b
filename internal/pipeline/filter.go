package pipeline

import (
	"path/filepath"
	"strings"
	"treesync/internal/model"
)

const tempSuffix = ".treesync.tmp"

// Filter drops events for paths with a component on the ignore list.
// Components are compared exactly and case-sensitively, the same way a pass
// skips names. Temp files written by downloads are always dropped.
func Filter(inCh <-chan model.FileEvent, ignoreList []string) <-chan model.FileEvent {
	outCh := make(chan model.FileEvent, cap(inCh))

	ignored := make(map[string]struct{}, len(ignoreList))
	for _, name := range ignoreList {
		ignored[name] = struct{}{}
	}

	go func() {
		defer close(outCh)

		for event := range inCh {
			if shouldIgnore(event.Path, ignored) {
				continue
			}
			outCh <- event
		}
	}()

	return outCh
}

func shouldIgnore(path string, ignored map[string]struct{}) bool {
	if strings.HasSuffix(path, tempSuffix) {
		return true
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if _, ok := ignored[part]; ok {
			return true
		}
	}

	return false
}
