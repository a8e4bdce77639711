// Package walkwalk provides a deterministic, filterable filesystem walker
// used to gather the playbook files a run will process. The full list is
// collected and sorted before the caller touches any file.
package walkwalk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrRootNotFound is returned by CollectFiles when the search root is missing.
var ErrRootNotFound = errors.New("search root not found")

// DefaultExts are the extensions collected when Options.Exts is empty.
var DefaultExts = []string{".yml", ".yaml"}

// FileInfo is a minimal, deterministic descriptor of a collected file.
type FileInfo struct {
	RelPath string // root-relative path with forward slashes
	AbsPath string // absolute filesystem path
	Size    int64  // size in bytes
	Ext     string // lowercase extension including dot (e.g., ".yml")
}

// Options filters the walk.
type Options struct {
	Exts    []string // lowercase extensions with dot; empty means DefaultExts
	Exclude []string // base names of dirs/files to skip (exact match)

	// FollowSymlinks includes symlinked files. Symlinked directories are never
	// descended into (filepath.WalkDir semantics).
	FollowSymlinks bool
}

type walkState struct {
	root    string
	exts    map[string]struct{}
	exclude map[string]struct{}
	follow  bool
	files   []FileInfo
}

// CollectFiles walks root and returns matching files sorted by RelPath.
func CollectFiles(root string, opts Options) ([]FileInfo, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("search root %s is not a directory", root)
	}

	exts := opts.Exts
	if len(exts) == 0 {
		exts = DefaultExts
	}
	ws := &walkState{
		root:    abs,
		exts:    toSet(exts, strings.ToLower),
		exclude: toSet(opts.Exclude, nil),
		follow:  opts.FollowSymlinks,
	}
	if err := filepath.WalkDir(abs, ws.visit); err != nil {
		return nil, err
	}
	sort.Slice(ws.files, func(i, j int) bool { return ws.files[i].RelPath < ws.files[j].RelPath })
	return ws.files, nil
}

func (ws *walkState) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		// Unreadable subtrees are skipped; the root itself was checked above.
		if d != nil && d.IsDir() && path != ws.root {
			return filepath.SkipDir
		}
		return nil
	}
	rel, ok := ws.relative(path)
	if !ok {
		return nil
	}
	if rel != "." {
		if _, bad := ws.exclude[d.Name()]; bad {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
	}
	if d.IsDir() {
		return nil
	}
	return ws.handleFile(path, rel, d)
}

func (ws *walkState) relative(path string) (string, bool) {
	rel, err := filepath.Rel(ws.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") || rel == ".." {
		return "", false
	}
	return rel, true
}

func (ws *walkState) handleFile(path, rel string, d fs.DirEntry) error {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := ws.exts[ext]; !ok {
		return nil
	}
	if isSymlink(d) && !ws.follow {
		return nil
	}
	// os.Stat resolves symlinks so a followed link reports its target.
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	ws.files = append(ws.files, FileInfo{
		RelPath: rel,
		AbsPath: path,
		Size:    info.Size(),
		Ext:     ext,
	})
	return nil
}

// isSymlink reports whether the DirEntry is a symlink (file or directory).
func isSymlink(d fs.DirEntry) bool {
	return d.Type()&fs.ModeSymlink != 0
}

// toSet builds a set from list, skipping empty strings and applying norm when
// it is non-nil.
func toSet(list []string, norm func(string) string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, v := range list {
		v = strings.TrimSpace(v)
		if norm != nil {
			v = norm(v)
		}
		if v != "" {
			m[v] = struct{}{}
		}
	}
	return m
}
