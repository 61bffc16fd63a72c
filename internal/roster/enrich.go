package roster

import (
	"github.com/tyler180/sleeper-sync/internal/players"
	"github.com/tyler180/sleeper-sync/internal/sleeper"
)

// Manager is the owning member of a roster. Every field is null for
// unclaimed rosters and owners missing from the member list.
type Manager struct {
	UserID      *string `json:"user_id"`
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name"`
	TeamName    *string `json:"team_name"`
}

// PlayerView is a roster slot joined with the core projection. Ids unknown
// to the projection keep only PlayerID.
type PlayerView struct {
	PlayerID     string  `json:"player_id"`
	Name         *string `json:"name"`
	Pos          *string `json:"pos"`
	Team         *string `json:"team"`
	Status       *string `json:"status"`
	InjuryStatus *string `json:"injury_status"`
}

type Team struct {
	LeagueID string         `json:"league_id"`
	RosterID int            `json:"roster_id"`
	Manager  Manager        `json:"manager"`
	Settings map[string]any `json:"settings"`
	Players  []PlayerView   `json:"players"`
	Starters []PlayerView   `json:"starters"`
	Taxi     []string       `json:"taxi"`
	Reserve  []string       `json:"reserve"`
}

// Enrich joins rosters with their managers and player views. One Team per
// roster, in input order; player and starter order is preserved.
func Enrich(rosters []sleeper.Roster, members []sleeper.User, core players.Core) []Team {
	byID := make(map[string]sleeper.User, len(members))
	for _, m := range members {
		if m.UserID != "" {
			byID[m.UserID] = m
		}
	}

	teams := make([]Team, 0, len(rosters))
	for _, r := range rosters {
		var mgr Manager
		if r.OwnerID != "" {
			if m, ok := byID[r.OwnerID]; ok {
				mgr = Manager{
					UserID:      strPtr(m.UserID),
					Username:    strPtr(m.Username),
					DisplayName: strPtr(m.DisplayName),
					TeamName:    strPtr(m.TeamName()),
				}
			}
		}
		settings := r.Settings
		if settings == nil {
			settings = map[string]any{}
		}
		teams = append(teams, Team{
			LeagueID: r.LeagueID,
			RosterID: r.RosterID,
			Manager:  mgr,
			Settings: settings,
			Players:  views(r.Players, core),
			Starters: views(r.Starters, core),
			Taxi:     orEmpty(r.Taxi),
			Reserve:  orEmpty(r.Reserve),
		})
	}
	return teams
}

func views(ids []string, core players.Core) []PlayerView {
	out := make([]PlayerView, 0, len(ids))
	for _, id := range ids {
		v := PlayerView{PlayerID: id}
		if p, ok := core[id]; ok {
			v.Name = p.FullName
			v.Pos = p.Position
			v.Team = p.Team
			v.Status = p.Status
			v.InjuryStatus = p.InjuryStatus
		}
		out = append(out, v)
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
