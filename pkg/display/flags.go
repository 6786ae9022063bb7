package display

// FlagMap maps a business status string onto a presentation flag used to pick
// a badge configuration.
type FlagMap map[string]string

// DefaultFlags returns the compliance status mapping.
func DefaultFlags() FlagMap {
	return FlagMap{
		"Compliant":    "success",
		"Non-standard": "warning",
		"Violation":    "error",
		"Under Review": "pending",
		"Reference":    "info",
	}
}

// Flag resolves status. Unknown statuses map to themselves so badge configs
// may be keyed by raw values too.
func (m FlagMap) Flag(status string) string {
	if flag, ok := m[status]; ok {
		return flag
	}
	return status
}
