// Package proxy owns the proxy root lifecycle: the nested-proxy guard,
// member repository discovery, and the init/refresh operations that
// persist the proxy record.
package proxy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"repofan/internal/config"
)

// ErrNotAProxy is returned when an operation requires an initialized proxy
// root and the directory has no proxy record.
var ErrNotAProxy = errors.New("not a proxy root (run 'repofan init' first)")

// NestedProxyError is returned when an ancestor directory is already
// proxy-configured. Nesting would fan the same repositories out twice.
type NestedProxyError struct {
	Ancestor string
}

func (e *NestedProxyError) Error() string {
	return fmt.Sprintf("ancestor %s is already a proxy root; nested proxies are not supported", e.Ancestor)
}

// AlreadyInitializedError is returned by Init when a proxy record already
// exists and force was not requested.
type AlreadyInitializedError struct {
	Root string
}

func (e *AlreadyInitializedError) Error() string {
	return fmt.Sprintf("%s is already a proxy root (use --force to reinitialize)", e.Root)
}

// Repo is one member repository of the proxy.
type Repo struct {
	// Name is the root-relative path, used as the display name when
	// prefixing merged results and tagging multiplexed output.
	Name string

	// Path is the absolute repository path, used as the subprocess CWD.
	Path string
}

// CheckNested walks the ancestors of root and fails if any of them is
// itself proxy-configured.
func CheckNested(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve proxy root: %w", err)
	}
	for dir := filepath.Dir(abs); ; dir = filepath.Dir(dir) {
		if config.HasRecord(dir) {
			return &NestedProxyError{Ancestor: dir}
		}
		if dir == filepath.Dir(dir) {
			return nil
		}
	}
}

// Discover recursively scans root for member repositories, identified by
// the presence of the indexer's marker directory. Symlinks are resolved to
// canonical paths and a visited set makes circular symlinks terminate, so
// each physical repository is returned exactly once. The proxy's own
// record directory is excluded. Results are sorted root-relative paths.
//
// Unreadable directories are skipped, not fatal: one bad subtree must not
// hide every other member.
func Discover(root, marker string, log zerolog.Logger) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve proxy root: %w", err)
	}
	rootCanon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve proxy root: %w", err)
	}

	visited := map[string]bool{rootCanon: true}
	var repos []string

	var walk func(dir string)
	walk = func(dir string) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Debug().Err(err).Str("dir", dir).Msg("skipping unreadable directory")
			return
		}
		for _, entry := range entries {
			name := entry.Name()
			if name == config.RecordDirName || name == marker {
				continue
			}

			path := filepath.Join(dir, name)
			isDir := entry.IsDir()
			if entry.Type()&os.ModeSymlink != 0 {
				info, err := os.Stat(path)
				if err != nil {
					log.Debug().Err(err).Str("path", path).Msg("skipping broken symlink")
					continue
				}
				isDir = info.IsDir()
			}
			if !isDir {
				continue
			}

			canon, err := filepath.EvalSymlinks(path)
			if err != nil {
				log.Debug().Err(err).Str("path", path).Msg("skipping unresolvable directory")
				continue
			}
			if visited[canon] {
				continue
			}
			visited[canon] = true

			if _, err := os.Stat(filepath.Join(path, marker)); err == nil {
				rel, err := filepath.Rel(abs, path)
				if err == nil {
					repos = append(repos, filepath.ToSlash(rel))
				}
			}

			walk(path)
		}
	}
	walk(abs)

	sort.Strings(repos)
	return repos, nil
}

// Init configures root as a proxy: nested-proxy guard, discovery, record
// write. If root already has a record, Init fails unless force is set.
func Init(root, marker string, force bool, log zerolog.Logger) (*config.ProxyRecord, error) {
	if err := CheckNested(root); err != nil {
		return nil, err
	}
	if config.HasRecord(root) && !force {
		return nil, &AlreadyInitializedError{Root: root}
	}

	repos, err := Discover(root, marker, log)
	if err != nil {
		return nil, err
	}

	rec := &config.ProxyRecord{ProxyMode: true, Repositories: repos}
	if err := rec.Save(root); err != nil {
		return nil, err
	}
	log.Debug().Int("repos", len(repos)).Str("root", root).Msg("proxy initialized")
	return rec, nil
}

// Refresh re-discovers member repositories for an existing proxy root and
// rewrites the record.
func Refresh(root, marker string, log zerolog.Logger) (*config.ProxyRecord, error) {
	if !config.HasRecord(root) {
		return nil, ErrNotAProxy
	}

	repos, err := Discover(root, marker, log)
	if err != nil {
		return nil, err
	}

	rec := &config.ProxyRecord{ProxyMode: true, Repositories: repos}
	if err := rec.Save(root); err != nil {
		return nil, err
	}
	return rec, nil
}

// Resolve maps the record's relative paths to absolute member repos,
// preserving record order.
func Resolve(root string, rec *config.ProxyRecord) []Repo {
	repos := make([]Repo, 0, len(rec.Repositories))
	for _, rel := range rec.Repositories {
		repos = append(repos, Repo{
			Name: rel,
			Path: filepath.Join(root, filepath.FromSlash(rel)),
		})
	}
	return repos
}
