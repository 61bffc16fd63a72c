package sleepersync

import (
	"encoding/json"

	"github.com/tyler180/sleeper-sync/internal/roster"
)

// Event is the Lambda payload shared by the three entrypoints. Players sync
// reads Out and SkipPublish; roster sync reads the rest.
type Event struct {
	Out         string        `json:"out"`
	SkipPublish bool          `json:"skip_publish"`
	Username    string        `json:"username"`
	UserID      string        `json:"user_id"`
	Season      roster.Season `json:"season"` // 2025 or "2025"
	LeagueID    string        `json:"league_id"`
	LeagueName  string        `json:"league_name"`
}

func (e Event) RosterRequest() roster.Request {
	return roster.Request{
		Username:   e.Username,
		UserID:     e.UserID,
		Season:     int(e.Season),
		LeagueID:   e.LeagueID,
		LeagueName: e.LeagueName,
		Out:        e.Out,
	}
}

// Raw is used by Lambda entrypoint to avoid tight coupling to the event type at the edge.
type Raw = json.RawMessage
