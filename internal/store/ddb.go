package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type DynamoDBAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// metaSK is the sort key of the per-league sync status row.
const metaSK = "#meta"

// OwnershipRow says which roster holds a player in one league-season.
type OwnershipRow struct {
	Season   string
	LeagueID string
	PlayerID string
	RosterID int
	OwnerID  string
	Username string
	TeamName string
	Player   string
	Pos      string
	Team     string
	Starter  bool
	Taxi     bool
	Reserve  bool
}

// OwnershipTable indexes published rosters by player:
// PK=SeasonLeague (S, "2025#<league_id>"), SK=PlayerID (S).
type OwnershipTable struct {
	ddb   DynamoDBAPI
	table string
	now   func() time.Time
	pause time.Duration
}

// NewOwnershipTable returns nil when the table or client is missing.
func NewOwnershipTable(ddb DynamoDBAPI, table string) *OwnershipTable {
	if ddb == nil || table == "" {
		return nil
	}
	return &OwnershipTable{ddb: ddb, table: table, now: time.Now, pause: 120 * time.Millisecond}
}

func (t *OwnershipTable) Table() string { return t.table }

// PutOwnershipRows upserts rows in batches of 25, retrying UnprocessedItems.
// Rows missing a key are skipped and duplicate keys keep the first row.
func (t *OwnershipTable) PutOwnershipRows(ctx context.Context, rows []OwnershipRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	const maxBatch = 25
	now := strconv.FormatInt(t.now().Unix(), 10)

	type key struct{ pk, sk string }
	seen := make(map[key]struct{}, len(rows))
	reqs := make([]types.WriteRequest, 0, len(rows))
	for _, r := range rows {
		if r.Season == "" || r.LeagueID == "" || r.PlayerID == "" {
			continue
		}
		k := key{pk: r.Season + "#" + r.LeagueID, sk: r.PlayerID}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		reqs = append(reqs, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: ownershipItem(r, now)},
		})
	}

	written := 0
	for i := 0; i < len(reqs); i += maxBatch {
		end := i + maxBatch
		if end > len(reqs) {
			end = len(reqs)
		}
		if err := t.batchWriteWithRetry(ctx, reqs[i:end]); err != nil {
			return written, fmt.Errorf("batch write ownership rows: %w", err)
		}
		written += end - i
	}
	return written, nil
}

func ownershipItem(r OwnershipRow, now string) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"SeasonLeague": &types.AttributeValueMemberS{Value: r.Season + "#" + r.LeagueID}, // PK
		"PlayerID":     &types.AttributeValueMemberS{Value: r.PlayerID},                  // SK
		"Season":       &types.AttributeValueMemberS{Value: r.Season},
		"LeagueID":     &types.AttributeValueMemberS{Value: r.LeagueID},
		"RosterID":     &types.AttributeValueMemberN{Value: strconv.Itoa(r.RosterID)},
		"Starter":      &types.AttributeValueMemberBOOL{Value: r.Starter},
		"Taxi":         &types.AttributeValueMemberBOOL{Value: r.Taxi},
		"Reserve":      &types.AttributeValueMemberBOOL{Value: r.Reserve},
		"UpdatedAt":    &types.AttributeValueMemberN{Value: now},
	}
	// empty strings are omitted
	optional := map[string]string{
		"OwnerID":  r.OwnerID,
		"Username": r.Username,
		"TeamName": r.TeamName,
		"Player":   r.Player,
		"Pos":      r.Pos,
		"Team":     r.Team,
	}
	for k, v := range optional {
		if v != "" {
			item[k] = &types.AttributeValueMemberS{Value: v}
		}
	}
	return item
}

func (t *OwnershipTable) batchWriteWithRetry(ctx context.Context, reqs []types.WriteRequest) error {
	input := &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{t.table: reqs},
	}
	const maxAttempts = 6
	backoff := t.pause

	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := t.ddb.BatchWriteItem(ctx, input)
		if err != nil {
			return err
		}
		if len(out.UnprocessedItems) == 0 || len(out.UnprocessedItems[t.table]) == 0 {
			return nil
		}
		input.RequestItems = out.UnprocessedItems
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 2*time.Second {
			backoff += t.pause
		}
	}
	return fmt.Errorf("unprocessed items remained after retries for table %s", t.table)
}

// MarkSynced records the last fetch time and latest snapshot URI on the
// league's "#meta" row.
func (t *OwnershipTable) MarkSynced(ctx context.Context, season, leagueID, fetchedAt, latestURI string, players int) error {
	key := map[string]types.AttributeValue{
		"SeasonLeague": &types.AttributeValueMemberS{Value: season + "#" + leagueID},
		"PlayerID":     &types.AttributeValueMemberS{Value: metaSK},
	}
	vals := map[string]types.AttributeValue{
		":f":   &types.AttributeValueMemberS{Value: fetchedAt},
		":n":   &types.AttributeValueMemberN{Value: strconv.Itoa(players)},
		":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(t.now().Unix(), 10)},
	}
	expr := "SET FetchedAt=:f, PlayerCount=:n, UpdatedAt=:now"
	if latestURI != "" {
		vals[":u"] = &types.AttributeValueMemberS{Value: latestURI}
		expr += ", LatestURI=:u"
	}
	_, err := t.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.table),
		Key:                       key,
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeValues: vals,
	})
	if err != nil {
		return fmt.Errorf("mark synced %s#%s: %w", season, leagueID, err)
	}
	return nil
}
