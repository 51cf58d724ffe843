//go:build windows

package steam

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/windows/registry"
)

// installDirFromRegistry looks up Steam's InstallPath, checking the
// 64-bit registry view first since that is where modern installs live.
func installDirFromRegistry() string {
	paths := []string{
		`SOFTWARE\Wow6432Node\Valve\Steam`,
		`SOFTWARE\Valve\Steam`,
	}

	for _, path := range paths {
		key, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.QUERY_VALUE)
		if err != nil {
			continue
		}

		installPath, _, err := key.GetStringValue("InstallPath")
		if closeErr := key.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing registry key")
		}
		if err != nil || installPath == "" {
			continue
		}

		log.Debug().Str("path", installPath).Msg("found Steam installation via registry")
		return installPath
	}

	return ""
}
