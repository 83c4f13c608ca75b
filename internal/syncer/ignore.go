package syncer

// IgnoreList holds names that are never uploaded. Matching is exact and
// case-sensitive.
type IgnoreList map[string]struct{}

var defaultIgnoreNames = []string{
	"Thumbs.db",
	".picasa.ini",
	"._.DS_Store",
	".DS_Store",
}

func DefaultIgnoreNames() []string {
	return append([]string(nil), defaultIgnoreNames...)
}

func DefaultIgnoreList() IgnoreList {
	return NewIgnoreList(defaultIgnoreNames...)
}

func NewIgnoreList(names ...string) IgnoreList {
	l := make(IgnoreList, len(names))
	for _, name := range names {
		l[name] = struct{}{}
	}

	return l
}

func (l IgnoreList) Match(name string) bool {
	_, ok := l[name]
	return ok
}
