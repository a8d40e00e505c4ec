package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Match walks fs once and returns the slash separated paths of the regular
// files selected by patterns, in walk order. Patterns apply in order; a
// pattern starting with "!" removes files matched by earlier patterns.
//
// Wildcards never match a name starting with a dot. A dotfile or anything
// below a dot directory is only included by a pattern that spells out the
// leading dot, e.g. ".well-known/**" or "**/.htaccess". A missing root
// matches nothing.
func Match(fs billy.Filesystem, patterns []string) ([]string, error) {
	if _, err := fs.Stat("."); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	var matches []string

	err := util.Walk(fs, ".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel := filepath.ToSlash(path)
		if selected(rel, patterns) {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", fs.Root(), err)
	}

	return matches, nil
}

func selected(rel string, patterns []string) bool {
	included := false
	for _, pattern := range patterns {
		exclude := strings.HasPrefix(pattern, "!")
		pattern = strings.TrimPrefix(strings.TrimPrefix(pattern, "!"), "./")

		if !exclude && !dotAllowed(pattern, rel) {
			continue
		}
		if ok, _ := doublestar.Match(pattern, rel); ok {
			included = !exclude
		}
	}
	return included
}

// dotAllowed reports whether every dot segment of rel is named by a pattern
// segment that itself starts with a dot
func dotAllowed(pattern, rel string) bool {
	segments := strings.Split(pattern, "/")
	for _, name := range strings.Split(rel, "/") {
		if !strings.HasPrefix(name, ".") {
			continue
		}

		named := false
		for _, segment := range segments {
			if !strings.HasPrefix(segment, ".") {
				continue
			}
			if ok, _ := doublestar.Match(segment, name); ok {
				named = true
				break
			}
		}
		if !named {
			return false
		}
	}
	return true
}
