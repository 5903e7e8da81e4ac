package fingerprint

import (
	"fmt"
	"slices"
)

// Report summarizes repeated builds against the same host.
type Report struct {
	Runs int `json:"runs"`
	// Unstable lists the slots whose digest changed between runs.
	Unstable []string `json:"unstable"`
	// Missing lists the slots that were empty in at least one run.
	Missing []string `json:"missing"`
}

// Stable reports whether every slot kept the same digest.
func (r Report) Stable() bool { return len(r.Unstable) == 0 }

// Compare digests every run slot by slot.
func Compare(runs []*Fingerprint) (Report, error) {
	report := Report{Runs: len(runs)}
	if len(runs) == 0 {
		return report, nil
	}

	first, err := runs[0].Digests()
	if err != nil {
		return Report{}, fmt.Errorf("run 1: %w", err)
	}

	unstable := make(map[string]bool)
	missing := make(map[string]bool)
	for i, fp := range runs {
		digests, err := fp.Digests()
		if err != nil {
			return Report{}, fmt.Errorf("run %d: %w", i+1, err)
		}
		for _, s := range fp.Slots() {
			if !s.Present {
				missing[s.Name] = true
			}
			if digests[s.Name] != first[s.Name] {
				unstable[s.Name] = true
			}
		}
	}

	for _, s := range runs[0].Slots() {
		if unstable[s.Name] {
			report.Unstable = append(report.Unstable, s.Name)
		}
		if missing[s.Name] {
			report.Missing = append(report.Missing, s.Name)
		}
	}
	slices.Sort(report.Unstable)
	slices.Sort(report.Missing)
	return report, nil
}
