package menu

import (
	"fmt"
	"regexp"
	"strings"
)

// Entry is one selectable operating system in the boot menu. Kernel and
// Initrds are paths below the HTTP base URL, or absolute http(s) URLs.
type Entry struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Arch        string   `yaml:"arch"`
	Kernel      string   `yaml:"kernel"`
	Initrds     []string `yaml:"initrds"`
	Cmdline     string   `yaml:"cmdline"`
}

// Menu is the ordered list of boot entries presented to a machine.
type Menu struct {
	Title      string  `yaml:"title"`
	Background string  `yaml:"background"`
	Default    string  `yaml:"default"`
	TimeoutMS  int     `yaml:"timeout_ms"`
	Entries    []Entry `yaml:"entries"`
}

// DefaultTitle is used when the configuration does not name the menu.
const DefaultTitle = "Select an operating system"

// label chars accepted by the iPXE goto/menu commands
var nameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Validate checks that the menu renders to a script whose every item maps to
// exactly one boot target.
func (m *Menu) Validate() error {
	if len(m.Entries) == 0 {
		return fmt.Errorf("menu has no entries")
	}
	if m.TimeoutMS < 0 {
		return fmt.Errorf("menu timeout must not be negative: %d", m.TimeoutMS)
	}

	seen := map[string]struct{}{}
	for _, e := range m.Entries {
		if !nameRe.MatchString(e.Name) {
			return fmt.Errorf("invalid entry name %q", e.Name)
		}
		if _, ok := seen[e.Name]; ok {
			return fmt.Errorf("duplicate entry name %q", e.Name)
		}
		seen[e.Name] = struct{}{}

		if e.Description == "" {
			return fmt.Errorf("entry %q has no description", e.Name)
		}
		if e.Kernel == "" {
			return fmt.Errorf("entry %q has no kernel", e.Name)
		}
		for _, initrd := range e.Initrds {
			if initrd == "" {
				return fmt.Errorf("entry %q has an empty initrd path", e.Name)
			}
		}
	}

	if m.Default != "" {
		if _, ok := seen[m.Default]; !ok {
			return fmt.Errorf("default entry %q does not exist", m.Default)
		}
	}

	return nil
}

// Files returns every base-URL-relative path the menu references, in menu
// order without duplicates. Absolute URLs are not served from our HTTP root
// and are skipped.
func (m *Menu) Files() []string {
	var (
		files []string
		seen  = map[string]struct{}{}
	)
	add := func(p string) {
		if p == "" || IsAbsoluteURL(p) {
			return
		}
		p = strings.TrimPrefix(p, "/")
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	add(m.Background)
	for _, e := range m.Entries {
		add(e.Kernel)
		for _, initrd := range e.Initrds {
			add(initrd)
		}
	}
	return files
}

// IsAbsoluteURL reports whether a menu reference points at another
// server instead of a path below the base URL.
func IsAbsoluteURL(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}
