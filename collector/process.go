package collector

import (
	"strings"

	"github.com/jaipkapoor99/GamingLog/models"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/process"
)

// Snapshot enumerates every live process once. A process whose name,
// executable path or memory cannot be read (exited mid-scan, access
// denied) is skipped; the scan itself never aborts.
func Snapshot() []models.ProcessSnapshot {
	procs, err := process.Processes()
	if err != nil {
		log.Error().Err(err).Msg("failed to list processes")
		return nil
	}

	snaps := make([]models.ProcessSnapshot, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}

		snap := models.ProcessSnapshot{
			PID:  p.Pid,
			Name: strings.ToLower(name),
		}
		if exe, err := p.Exe(); err == nil {
			snap.ExePath = exe
		}
		if mem, err := p.MemoryInfo(); err == nil && mem != nil {
			snap.ResidentBytes = mem.RSS
		}
		snaps = append(snaps, snap)
	}
	return snaps
}

// PidAlive reports whether the OS still knows the pid.
func PidAlive(pid int32) bool {
	alive, err := process.PidExists(pid)
	return err == nil && alive
}
