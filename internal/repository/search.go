package repository

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user search text into an ILIKE substring pattern.
// Wildcards in the text match literally; backslash is Postgres' default
// LIKE escape.
func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(search)) + "%"
}
