package collector

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jaipkapoor99/GamingLog/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MinResidentBytes is the memory floor separating a running game from the
// short-lived launcher and helper processes that live under the same
// install directory.
const MinResidentBytes = 2 << 30 // 2 GiB

// ExcludedExeNames are Steam's own binaries, which also run from the
// install directories but are never games.
var ExcludedExeNames = map[string]struct{}{
	"steam.exe":              {},
	"steamservice.exe":       {},
	"steamwebhelper.exe":     {},
	"steamerrorreporter.exe": {},
}

// PathClassifier matches any process whose executable lives under a
// resolved library root and whose resident memory clears the floor. No
// allowlist needed.
type PathClassifier struct {
	excluded map[string]struct{}
	folded   []string // cleaned and lowercased, for case-insensitive matching
}

// NewPathClassifier builds the classifier from resolved library roots.
func NewPathClassifier(roots []string) *PathClassifier {
	c := &PathClassifier{excluded: ExcludedExeNames}
	for _, root := range roots {
		c.folded = append(c.folded, strings.ToLower(filepath.Clean(root)))
	}
	return c
}

// Classify matches iff the basename is not excluded, the path sits under
// a library root (case-insensitive, separator-aware) and resident memory
// is at least MinResidentBytes.
func (c *PathClassifier) Classify(snap models.ProcessSnapshot) (models.GameIdentity, bool) {
	if snap.ExePath == "" {
		return models.GameIdentity{}, false
	}

	base := strings.ToLower(filepath.Base(snap.ExePath))
	if _, ok := c.excluded[base]; ok {
		return models.GameIdentity{}, false
	}
	if snap.ResidentBytes < MinResidentBytes {
		return models.GameIdentity{}, false
	}

	cleaned := filepath.Clean(snap.ExePath)
	folded := strings.ToLower(cleaned)
	for _, root := range c.folded {
		rest, ok := underRoot(folded, root)
		if !ok {
			continue
		}
		// Slice the original-case path by the same amount so the
		// display name keeps its on-disk spelling.
		display := deriveDisplayName(cleaned[len(cleaned)-len(rest):], cleaned)
		return models.GameIdentity{Key: base, DisplayName: display}, true
	}
	return models.GameIdentity{}, false
}

// underRoot reports whether path sits under root and returns the
// remainder after the root and its trailing separator. Both arguments
// must already be folded to lowercase.
func underRoot(path, root string) (string, bool) {
	if !strings.HasPrefix(path, root) {
		return "", false
	}
	rest := path[len(root):]
	if rest == "" || rest[0] != filepath.Separator {
		// "common2" must not match root "common".
		return "", false
	}
	return strings.TrimLeft(rest, string(filepath.Separator)), true
}

// deriveDisplayName turns the path below the matched root into a display
// name: the first segment, prettified. Falls back to the executable's
// parent directory, then its filename stem.
func deriveDisplayName(rel, exePath string) string {
	segments := strings.Split(rel, string(filepath.Separator))
	if len(segments) > 0 && segments[0] != "" {
		return niceTitle(segments[0])
	}
	if parent := filepath.Base(filepath.Dir(exePath)); parent != "." && parent != string(filepath.Separator) {
		return niceTitle(parent)
	}
	return niceTitle(stem(exePath))
}

var (
	wordBreaks  = regexp.MustCompile(`[_\-]+`)
	extraSpaces = regexp.MustCompile(`\s{2,}`)
)

// niceTitle turns a directory or file name into a display title:
// "Half-Life 2" -> "Half Life 2".
func niceTitle(name string) string {
	s := strings.TrimSpace(wordBreaks.ReplaceAllString(name, " "))
	s = extraSpaces.ReplaceAllString(s, " ")
	if s == "" {
		return name
	}
	return cases.Title(language.English).String(strings.ToLower(s))
}
