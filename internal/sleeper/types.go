package sleeper

// Directory is the full player listing keyed by Sleeper player_id. Entries are
// kept as loose maps so upstream fields we never read survive a round trip.
type Directory map[string]map[string]any

// User is a Sleeper account, either looked up directly or as a league member.
type User struct {
	UserID      string         `json:"user_id"`
	Username    string         `json:"username"`
	DisplayName string         `json:"display_name"`
	Metadata    map[string]any `json:"metadata"`
}

// TeamName returns metadata.team_name, or "" when absent.
func (u User) TeamName() string {
	if u.Metadata == nil {
		return ""
	}
	s, _ := u.Metadata["team_name"].(string)
	return s
}

type League struct {
	LeagueID        string         `json:"league_id"`
	Name            string         `json:"name"`
	Status          string         `json:"status"`
	Season          string         `json:"season"`
	ScoringSettings map[string]any `json:"scoring_settings"`
	RosterPositions []string       `json:"roster_positions"`
}

// Roster is one team in a league. OwnerID is empty for unclaimed rosters.
type Roster struct {
	LeagueID string         `json:"league_id"`
	RosterID int            `json:"roster_id"`
	OwnerID  string         `json:"owner_id"`
	Players  []string       `json:"players"`
	Starters []string       `json:"starters"`
	Taxi     []string       `json:"taxi"`
	Reserve  []string       `json:"reserve"`
	Settings map[string]any `json:"settings"`
}
