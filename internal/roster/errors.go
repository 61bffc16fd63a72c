package roster

import "errors"

// Fatal error kinds of a single roster sync. Wrapped errors carry the
// offending input.
var (
	ErrIdentityUnresolvable = errors.New("no user_id found")
	ErrNoLeagues            = errors.New("no leagues found")
	ErrLeagueNotFoundByID   = errors.New("league_id not found")
	ErrLeagueNotFoundByName = errors.New("league_name not found")
	ErrNoTargets            = errors.New("no roster targets")
)
