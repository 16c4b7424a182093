package governance

import (
	"bufio"
	"strings"
)

// ParseIntakeHeader parses the `key: value` header lines at the top of
// an intake file (spec §6). Parsing stops at the first line that isn't
// a recognized `key: value` pair (the header block ends there); keys
// are case-insensitive and values are trimmed.
func ParseIntakeHeader(content string) IntakeHeader {
	var h IntakeHeader
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			break
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		switch key {
		case "origin":
			h.Origin = value
		case "scope":
			h.Scope = value
		case "intake_approval_id":
			h.IntakeApprovalID = value
		case "knowledge_version":
			h.KnowledgeVersion = value
		case "sufficiency_override":
			h.SufficiencyOverride = strings.EqualFold(value, "true")
		default:
			return h
		}
	}
	return h
}
