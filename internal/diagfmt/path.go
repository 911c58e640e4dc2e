package diagfmt

import (
	"path/filepath"
	"strings"

	"wirecheck/internal/source"
)

const unknownPath = "<unknown>"

func formatPath(f *source.File, mode PathMode, base string) string {
	if f == nil {
		return unknownPath
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathModeBasename:
		return filepath.Base(f.Path)
	case PathModeRelative, PathModeAuto:
		if base == "" || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		rel, err := filepath.Rel(base, f.Path)
		if err != nil {
			return f.Path
		}
		rel = filepath.ToSlash(rel)
		// auto не выводит путей вида ../../x
		if mode == PathModeAuto && strings.HasPrefix(rel, "../") {
			return f.Path
		}
		return rel
	}
	return f.Path
}
