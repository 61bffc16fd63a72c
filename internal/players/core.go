package players

import (
	"strings"

	"github.com/tyler180/sleeper-sync/internal/sleeper"
)

// CorePlayer is the trimmed record used to enrich rosters. Every field is
// nullable and always present in JSON.
type CorePlayer struct {
	FullName     *string `json:"full_name"`
	Position     *string `json:"position"`
	Team         *string `json:"team"`
	ByeWeek      any     `json:"bye_week"`
	Status       *string `json:"status"`
	InjuryStatus *string `json:"injury_status"`
}

// Core maps player_id to its trimmed record.
type Core map[string]CorePlayer

// BuildCore trims a full directory. It is idempotent: a Core re-read as a
// Directory trims to the same value, because full_name wins the name lookup.
func BuildCore(dir sleeper.Directory) Core {
	core := make(Core, len(dir))
	for pid, p := range dir {
		core[pid] = Trim(p)
	}
	return core
}

// Trim projects a single full player record.
func Trim(p map[string]any) CorePlayer {
	return CorePlayer{
		FullName:     DisplayName(p),
		Position:     getStr(p, "position"),
		Team:         getStr(p, "team"),
		ByeWeek:      p["bye_week"],
		Status:       getStr(p, "status"),
		InjuryStatus: getStr(p, "injury_status"),
	}
}

// DisplayName resolves a player's name: full_name, then first+last, then
// search_full_name, then display_name. The first non-empty one wins; nil
// when none is present.
func DisplayName(p map[string]any) *string {
	if s := getStr(p, "full_name"); s != nil {
		return s
	}
	parts := make([]string, 0, 2)
	for _, k := range []string{"first_name", "last_name"} {
		if s := getStr(p, k); s != nil {
			parts = append(parts, *s)
		}
	}
	if len(parts) > 0 {
		name := strings.Join(parts, " ")
		return &name
	}
	if s := getStr(p, "search_full_name"); s != nil {
		return s
	}
	return getStr(p, "display_name")
}

// getStr returns a pointer to a non-empty string value, or nil.
func getStr(m map[string]any, key string) *string {
	if m == nil {
		return nil
	}
	s, ok := m[key].(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}
