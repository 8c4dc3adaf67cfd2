package catalog

import (
	"sort"
	"strings"
)

// Tag is the priority class encoded in a job definition's storage name.
type Tag int

const (
	TagNormal Tag = iota
	TagPermanent
	TagPriority
	TagHigh
	TagLow
	TagDisabled
)

func (t Tag) String() string {
	switch t {
	case TagPermanent:
		return "permanent-priority"
	case TagPriority:
		return "priority"
	case TagHigh:
		return "high"
	case TagLow:
		return "low"
	case TagDisabled:
		return "disabled"
	default:
		return "normal"
	}
}

// token returns the literal bracket token for the tag, empty for Normal.
func (t Tag) token() string {
	switch t {
	case TagPermanent:
		return "[PP]"
	case TagPriority:
		return "[P]"
	case TagHigh:
		return "[H]"
	case TagLow:
		return "[L]"
	case TagDisabled:
		return "[D]"
	default:
		return ""
	}
}

// DetectTag prefix-matches the identifier against the bracket tokens, [PP]
// before [P] so a permanent tag never reads as plain priority. The match is
// case-sensitive and exact. The second result reports a leading bracket that
// matched no token, which callers surface as a configuration warning; such
// identifiers are treated as Normal.
func DetectTag(id string) (Tag, bool) {
	for _, t := range []Tag{TagPermanent, TagPriority, TagHigh, TagLow, TagDisabled} {
		if strings.HasPrefix(id, t.token()) {
			return t, false
		}
	}
	return TagNormal, strings.HasPrefix(id, "[")
}

// Select computes the execution set and order for one run.
//
// Disabled tags and enabled:false jobs are dropped unconditionally. If any
// permanent-priority or priority job survives, the run is exactly that union;
// otherwise the run is high, then normal, then low. Each partition is ordered
// lexicographically by identifier, scan order breaking ties.
func Select(jobs []Job) []Job {
	parts := map[Tag][]Job{}
	for _, j := range jobs {
		if j.Tag == TagDisabled {
			continue
		}
		if j.Err == nil && !j.Enabled {
			continue
		}
		parts[j.Tag] = append(parts[j.Tag], j)
	}

	if len(parts[TagPermanent])+len(parts[TagPriority]) > 0 {
		run := append(parts[TagPermanent], parts[TagPriority]...)
		sortJobs(run)
		return run
	}

	var run []Job
	for _, t := range []Tag{TagHigh, TagNormal, TagLow} {
		p := parts[t]
		sortJobs(p)
		run = append(run, p...)
	}
	return run
}

func sortJobs(jobs []Job) {
	sort.SliceStable(jobs, func(i, k int) bool { return jobs[i].ID < jobs[k].ID })
}
