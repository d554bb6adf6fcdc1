package models

// Warnings maps guild ID -> member ID -> active warning count.
// This is also the layout of the legacy unversioned warnings.json.
type Warnings map[string]map[string]int

// Count returns the count for a member, zero when absent.
func (w Warnings) Count(guildID, memberID string) int {
	return w[guildID][memberID]
}
