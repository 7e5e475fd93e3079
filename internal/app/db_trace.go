package app

import "strings"

// Traced statements are collapsed to one line and capped so span payloads
// stay small even for the wide directory upsert queries.
const maxTracedQueryLength = 512

func formatDBQueryForTrace(query string) string {
	collapsed := strings.Join(strings.Fields(query), " ")
	if len(collapsed) <= maxTracedQueryLength {
		return collapsed
	}
	return collapsed[:maxTracedQueryLength] + "..."
}
