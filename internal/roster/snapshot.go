package roster

import (
	"time"

	"github.com/tyler180/sleeper-sync/internal/sleeper"
)

type UserRef struct {
	UserID      string  `json:"user_id"`
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name"`
}

// LeagueRef is the selected league only, never the member's full list.
type LeagueRef struct {
	LeagueID        string         `json:"league_id"`
	Name            string         `json:"name"`
	Status          string         `json:"status"`
	ScoringSettings map[string]any `json:"scoring_settings"`
	RosterPositions []string       `json:"roster_positions"`
}

// Snapshot is one league's enriched rosters at a point in time.
type Snapshot struct {
	FetchedAt     string    `json:"fetched_at"`
	User          UserRef   `json:"user"`
	Season        int       `json:"season"`
	League        LeagueRef `json:"league"`
	Teams         []Team    `json:"teams"`
	PlayersSource string    `json:"players_source,omitempty"`
	*Locations
}

// Locations is set after publication; a nil field is a failed write.
type Locations struct {
	URI           *string `json:"s3_uri"`
	LatestURI     *string `json:"s3_latest_uri"`
	UserStableURI *string `json:"s3_user_stable_uri"`
	UserURI       *string `json:"s3_user_uri"`
	UserLatestURI *string `json:"s3_user_latest_uri"`
}

func NewSnapshot(t Target, teams []Team, fetchedAt time.Time) *Snapshot {
	if teams == nil {
		teams = []Team{}
	}
	return &Snapshot{
		FetchedAt: fetchedAt.UTC().Format(time.RFC3339),
		User:      userRef(t.User),
		Season:    t.Season,
		League: LeagueRef{
			LeagueID:        t.League.LeagueID,
			Name:            t.League.Name,
			Status:          t.League.Status,
			ScoringSettings: t.League.ScoringSettings,
			RosterPositions: t.League.RosterPositions,
		},
		Teams: teams,
	}
}

func userRef(u sleeper.User) UserRef {
	return UserRef{UserID: u.UserID, Username: strPtr(u.Username), DisplayName: strPtr(u.DisplayName)}
}
