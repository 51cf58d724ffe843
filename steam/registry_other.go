//go:build !windows

package steam

// installDirFromRegistry has no registry to consult off Windows; the
// resolver falls back to the conventional install path.
func installDirFromRegistry() string {
	return ""
}
