package players

import (
	"bytes"
	"fmt"
	"sort"

	parquet "github.com/parquet-go/parquet-go"
)

// CoreRow is the columnar layout of the core projection, for Athena/Glue readers.
type CoreRow struct {
	PlayerID     string  `parquet:"player_id"`
	FullName     *string `parquet:"full_name,optional"`
	Position     *string `parquet:"position,optional"`
	Team         *string `parquet:"team,optional"`
	ByeWeek      *string `parquet:"bye_week,optional"`
	Status       *string `parquet:"status,optional"`
	InjuryStatus *string `parquet:"injury_status,optional"`
}

// CoreRows flattens core into rows sorted by player id.
func CoreRows(core Core) []CoreRow {
	ids := make([]string, 0, len(core))
	for id := range core {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]CoreRow, 0, len(ids))
	for _, id := range ids {
		p := core[id]
		rows = append(rows, CoreRow{
			PlayerID:     id,
			FullName:     p.FullName,
			Position:     p.Position,
			Team:         p.Team,
			ByeWeek:      byeString(p.ByeWeek),
			Status:       p.Status,
			InjuryStatus: p.InjuryStatus,
		})
	}
	return rows
}

// EncodeCoreParquet writes core as a Snappy-compressed parquet file in memory.
func EncodeCoreParquet(core Core) ([]byte, error) {
	var buf bytes.Buffer
	w := parquet.NewWriter(&buf, parquet.SchemaOf(new(CoreRow)), parquet.Compression(&parquet.Snappy))
	for _, r := range CoreRows(core) {
		if err := w.Write(r); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func byeString(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return &t
	case float64:
		s := fmt.Sprintf("%g", t)
		return &s
	default:
		s := fmt.Sprint(t)
		return &s
	}
}
