package steam

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/andygrunwald/vdf"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// DefaultInstallPath is where Steam lands when the registry has nothing
// to say about it.
const DefaultInstallPath = `C:\Program Files (x86)\Steam`

// Resolver discovers the steamapps/common directory of every Steam
// library on the machine. Every failure along the way degrades to a
// smaller result set; Resolve never returns an error.
type Resolver struct {
	fs         afero.Fs
	installDir func() string
}

// NewResolver builds a resolver against the real filesystem and the
// platform's install metadata (the registry on Windows).
func NewResolver() *Resolver {
	return &Resolver{fs: afero.NewOsFs(), installDir: installDirFromRegistry}
}

// NewResolverWithFs builds a resolver with an injected filesystem and
// install-dir lookup. Used by tests.
func NewResolverWithFs(fs afero.Fs, installDir func() string) *Resolver {
	return &Resolver{fs: fs, installDir: installDir}
}

// Resolve returns every existing steamapps/common directory, first-seen
// order, deduplicated case-insensitively. An empty result means Steam
// could not be found or has no libraries.
func (r *Resolver) Resolve() []string {
	root := r.installDir()
	if root == "" {
		root = DefaultInstallPath
	}
	if ok, err := afero.DirExists(r.fs, root); err != nil || !ok {
		log.Debug().Str("path", root).Msg("steam installation not found")
		return nil
	}
	log.Debug().Str("path", root).Msg("steam installation found")

	libraries := []string{filepath.Clean(root)}
	manifest := filepath.Join(root, "steamapps", "libraryfolders.vdf")
	libraries = append(libraries, r.parseLibraryFolders(manifest)...)

	seen := make(map[string]bool)
	var dirs []string
	for _, lib := range libraries {
		common := filepath.Join(lib, "steamapps", "common")
		if ok, err := afero.DirExists(r.fs, common); err != nil || !ok {
			continue
		}
		key := strings.ToLower(common)
		if seen[key] {
			continue
		}
		seen[key] = true
		dirs = append(dirs, common)
	}
	return dirs
}

// parseLibraryFolders reads libraryfolders.vdf and returns the library
// paths it names. It accepts both historical layouts: numeric keys
// mapping directly to a path string, and numeric keys mapping to a block
// with a "path" entry. An unreadable or malformed file contributes
// nothing.
func (r *Resolver) parseLibraryFolders(path string) []string {
	f, err := r.fs.Open(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("libraryfolders.vdf not readable")
		return nil
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing libraryfolders.vdf")
		}
	}()

	m, err := vdf.NewParser(f).Parse()
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("error parsing libraryfolders.vdf")
		return nil
	}
	m = lowercaseKeys(m)

	folders, ok := m["libraryfolders"].(map[string]any)
	if !ok {
		log.Warn().Str("path", path).Msg("libraryfolders.vdf has no libraryfolders block")
		return nil
	}

	type entry struct {
		key  string
		path string
	}
	var entries []entry
	for k, v := range folders {
		switch val := v.(type) {
		case string:
			// Old layout: "0"  "C:\\Games". Non-numeric string values
			// are metadata like ContentStatsID, not paths.
			if _, err := strconv.Atoi(k); err != nil {
				continue
			}
			entries = append(entries, entry{key: k, path: filepath.Clean(val)})
		case map[string]any:
			// New layout: "0" { "path"  "C:\\Games" ... }
			if p, ok := val["path"].(string); ok && p != "" {
				entries = append(entries, entry{key: k, path: filepath.Clean(p)})
			}
		}
	}

	// The vdf parser hands back maps, so restore the file's numeric
	// ordering to keep the final root set deterministic.
	sort.Slice(entries, func(i, j int) bool {
		ni, erri := strconv.Atoi(entries[i].key)
		nj, errj := strconv.Atoi(entries[j].key)
		if erri == nil && errj == nil {
			return ni < nj
		}
		return entries[i].key < entries[j].key
	})

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.path)
	}
	log.Debug().Int("count", len(paths)).Msg("steam library paths found in vdf")
	return paths
}

// lowercaseKeys recursively lowercases all keys in a parsed VDF tree.
// Valve's format is case-insensitive but Go maps are not.
func lowercaseKeys(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = lowercaseKeys(nested)
		}
		result[strings.ToLower(k)] = v
	}
	return result
}
