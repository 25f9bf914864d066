package fstools

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mcpfs/mcpfs"
)

// ignoredDirNames are skipped by exact name match: version control, caches,
// virtual environments, build output and editor metadata.
var ignoredDirNames = map[string]bool{
	".git":               true,
	".svn":               true,
	".hg":                true,
	"__pycache__":        true,
	".mypy_cache":        true,
	".pytest_cache":      true,
	".ruff_cache":        true,
	".cache":             true,
	"node_modules":       true,
	".venv":              true,
	"venv":               true,
	"env":                true,
	".tox":               true,
	"build":              true,
	"dist":               true,
	"target":             true,
	"out":                true,
	".idea":              true,
	".vscode":            true,
	".vs":                true,
	".ipynb_checkpoints": true,
}

// ignoredSuffixes are skipped by suffix match: build artifacts, compiled
// bytecode, logs, temp/backup/swap files.
var ignoredSuffixes = []string{
	".pyc", ".pyo", ".pyd",
	".o", ".a", ".so", ".dylib", ".dll", ".obj",
	".exe", ".class",
	".log",
	".tmp", ".temp",
	".bak", ".orig",
	".swp", ".swo", "~",
}

// allowedDotfiles are the dotfiles still listed despite the dotfile rule.
var allowedDotfiles = map[string]bool{
	".gitignore":    true,
	".env.example":  true,
	".dockerignore": true,
}

// excluded reports whether an entry name is filtered from listings.
func excluded(name string) bool {
	if ignoredDirNames[name] {
		return true
	}
	if strings.HasPrefix(name, ".") && !allowedDotfiles[name] {
		return true
	}
	for _, suffix := range ignoredSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

type directoryListing struct {
	path        string
	files       []string
	directories []string
}

// listDirectory partitions the surviving entries of path into sorted file
// and subdirectory name lists.
func listDirectory(path string) (*directoryListing, *mcpfs.ToolResult) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, mcpfs.Failf("Directory '%s' does not exist", path)
		}
		return nil, mcpfs.Failf("Error listing directory '%s': %v", path, err)
	}
	if !info.IsDir() {
		return nil, mcpfs.Failf("Path '%s' is not a directory", path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, mcpfs.Failf("Error listing directory '%s': %v", path, err)
	}

	listing := &directoryListing{path: path}
	for _, entry := range entries {
		name := entry.Name()
		if excluded(name) {
			continue
		}
		if entry.IsDir() {
			listing.directories = append(listing.directories, name)
		} else {
			listing.files = append(listing.files, name)
		}
	}
	sort.Strings(listing.files)
	sort.Strings(listing.directories)
	return listing, nil
}

// render formats the listing the way the wire contract expects: header,
// counted file section, counted directory section with trailing slashes.
func (l *directoryListing) render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Directory: %s\n\n", l.path)
	fmt.Fprintf(&b, "Files (%d):\n", len(l.files))
	for _, f := range l.files {
		fmt.Fprintf(&b, "  %s\n", f)
	}
	fmt.Fprintf(&b, "\nDirectories (%d):\n", len(l.directories))
	for _, d := range l.directories {
		fmt.Fprintf(&b, "  %s/\n", d)
	}
	return b.String()
}
