package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/tyler180/sleeper-sync/internal/sleeper"
)

// API is the slice of the Sleeper client roster sync reads from.
type API interface {
	GetUser(ctx context.Context, usernameOrID string) (sleeper.User, error)
	GetUserLeagues(ctx context.Context, userID string, season int) ([]sleeper.League, error)
	GetLeagueUsers(ctx context.Context, leagueID string) ([]sleeper.User, error)
	GetLeagueRosters(ctx context.Context, leagueID string) ([]sleeper.Roster, error)
}

// Request names one league to sync. Username or UserID is required; LeagueID
// beats LeagueName; Season 0 means the configured default.
type Request struct {
	Username   string `json:"username,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	Season     int    `json:"season,omitempty"`
	LeagueID   string `json:"league_id,omitempty"`
	LeagueName string `json:"league_name,omitempty"`
	// Out, when set, receives a local copy of the snapshot.
	Out string `json:"out,omitempty"`
}

// Target is a resolved request.
type Target struct {
	User   sleeper.User
	Season int
	League sleeper.League
}

// ResolveUser looks the member up by handle, or by id when no handle is
// given. The user_id in the response wins over the one supplied.
func ResolveUser(ctx context.Context, api API, username, userID string) (sleeper.User, error) {
	username, userID = strings.TrimSpace(username), strings.TrimSpace(userID)
	lookup := username
	if lookup == "" {
		lookup = userID
	}
	if lookup == "" {
		return sleeper.User{}, fmt.Errorf("%w: username or user_id is required", ErrIdentityUnresolvable)
	}

	u, err := api.GetUser(ctx, lookup)
	if err != nil {
		return sleeper.User{}, fmt.Errorf("get user %q: %w", lookup, err)
	}
	if u.UserID == "" {
		u.UserID = userID
	}
	if u.UserID == "" {
		return sleeper.User{}, fmt.Errorf("%w for %q", ErrIdentityUnresolvable, lookup)
	}
	if u.Username == "" {
		u.Username = username
	}
	return u, nil
}

// SelectLeague applies the selection order: explicit id, then explicit name
// (trimmed, case-insensitive), then the first drafting or in_season league,
// then the first league.
func SelectLeague(leagues []sleeper.League, leagueID, leagueName string) (sleeper.League, error) {
	if len(leagues) == 0 {
		return sleeper.League{}, ErrNoLeagues
	}
	if id := strings.TrimSpace(leagueID); id != "" {
		for _, l := range leagues {
			if l.LeagueID == id {
				return l, nil
			}
		}
		return sleeper.League{}, fmt.Errorf("%w: %q", ErrLeagueNotFoundByID, id)
	}
	if name := strings.TrimSpace(leagueName); name != "" {
		for _, l := range leagues {
			if strings.EqualFold(strings.TrimSpace(l.Name), name) {
				return l, nil
			}
		}
		return sleeper.League{}, fmt.Errorf("%w: %q", ErrLeagueNotFoundByName, name)
	}
	for _, l := range leagues {
		switch l.Status {
		case "drafting", "in_season":
			return l, nil
		}
	}
	return leagues[0], nil
}

// ResolveTarget resolves the member, lists their leagues for the season and
// picks one.
func ResolveTarget(ctx context.Context, api API, req Request) (Target, error) {
	u, err := ResolveUser(ctx, api, req.Username, req.UserID)
	if err != nil {
		return Target{}, err
	}
	leagues, err := api.GetUserLeagues(ctx, u.UserID, req.Season)
	if err != nil {
		return Target{}, fmt.Errorf("get leagues for %s: %w", u.UserID, err)
	}
	who := u.Username
	if who == "" {
		who = u.UserID
	}
	l, err := SelectLeague(leagues, req.LeagueID, req.LeagueName)
	if err != nil {
		return Target{}, fmt.Errorf("user %s season %d: %w", who, req.Season, err)
	}
	return Target{User: u, Season: req.Season, League: l}, nil
}
