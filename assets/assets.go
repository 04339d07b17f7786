package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hollis-cloud/pyxis/menu"
)

// Problem is one menu reference that cannot be served from the HTTP root.
type Problem struct {
	Entry string
	Path  string
	Err   error
}

func (p Problem) String() string {
	if p.Entry == "" {
		return fmt.Sprintf("%s: %v", p.Path, p.Err)
	}
	return fmt.Sprintf("entry %s: %s: %v", p.Entry, p.Path, p.Err)
}

// Verify checks that every file the boot menu references exists below the
// HTTP root. References to other servers are skipped.
func Verify(m *menu.Menu, root string) []Problem {
	var problems []Problem

	check := func(entry, ref string) {
		if ref == "" || menu.IsAbsoluteURL(ref) {
			return
		}
		path := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(ref, "/")))
		info, err := os.Stat(path)
		if err != nil {
			problems = append(problems, Problem{Entry: entry, Path: ref, Err: err})
			return
		}
		if info.IsDir() {
			problems = append(problems, Problem{Entry: entry, Path: ref, Err: fmt.Errorf("is a directory")})
		}
	}

	check("", m.Background)
	for _, entry := range m.Entries {
		check(entry.Name, entry.Kernel)
		for _, initrd := range entry.Initrds {
			check(entry.Name, initrd)
		}
	}

	return problems
}
