package collector

import (
	"path/filepath"
	"strings"

	"github.com/jaipkapoor99/GamingLog/models"
)

// DefaultGames is the built-in allowlist, used only when the GAMES
// variable supplies nothing.
var DefaultGames = map[string]string{
	"eldenring.exe":                     "ELDEN RING",
	"witcher3.exe":                      "The Witcher 3",
	"apex.exe":                          "Apex Legends",
	"fortniteclient-win64-shipping.exe": "Fortnite",
	"league of legends.exe":             "League of Legends",
}

// ParseGames parses allowlist text of the form "exe[=Display Name]" with
// entries separated by semicolons. An entry without a display name
// derives one from the executable's filename stem.
func ParseGames(text string) map[string]string {
	mapping := make(map[string]string)
	for _, entry := range strings.Split(text, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if exe, name, ok := strings.Cut(entry, "="); ok {
			exe = strings.ToLower(strings.TrimSpace(exe))
			name = strings.TrimSpace(name)
			if exe == "" {
				continue
			}
			if name == "" {
				name = exe
			}
			mapping[exe] = name
		} else {
			exe := strings.ToLower(entry)
			mapping[exe] = stem(exe)
		}
	}
	return mapping
}

// stem returns the filename without directory or extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// AllowlistClassifier matches processes against a fixed mapping of
// lowercase executable name to display name.
type AllowlistClassifier struct {
	games map[string]string
}

// NewAllowlistClassifier builds the classifier from allowlist text;
// explicit entries override the built-in defaults entirely.
func NewAllowlistClassifier(text string) *AllowlistClassifier {
	games := ParseGames(text)
	if len(games) == 0 {
		games = make(map[string]string, len(DefaultGames))
		for exe, name := range DefaultGames {
			games[strings.ToLower(exe)] = name
		}
	}
	return &AllowlistClassifier{games: games}
}

// Empty reports whether there is nothing to match against.
func (c *AllowlistClassifier) Empty() bool {
	return len(c.games) == 0
}

// Names returns the display names being watched, for startup logging.
func (c *AllowlistClassifier) Names() []string {
	seen := make(map[string]bool, len(c.games))
	names := make([]string, 0, len(c.games))
	for _, name := range c.games {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Classify matches when the process name or the executable basename
// (both lowercased) is a key in the mapping.
func (c *AllowlistClassifier) Classify(snap models.ProcessSnapshot) (models.GameIdentity, bool) {
	name := strings.ToLower(snap.Name)
	base := name
	if snap.ExePath != "" {
		base = strings.ToLower(filepath.Base(snap.ExePath))
	}

	for _, key := range []string{name, base} {
		if key == "" {
			continue
		}
		if display, ok := c.games[key]; ok {
			return models.GameIdentity{Key: key, DisplayName: display}, true
		}
	}
	return models.GameIdentity{}, false
}
