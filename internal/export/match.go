// Package export renders a match as an XLSX workbook.
package export

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/maxviazov/bongo-stats-service/internal/model"
	"github.com/maxviazov/bongo-stats-service/internal/stats"
)

const (
	StatsSheet  = "Stats"
	EventsSheet = "Events"
)

// MatchWorkbook builds a two-sheet workbook: per-player counters with a team
// totals row, and the raw event log. names maps player ids to display names;
// unknown ids are written as the raw id.
func MatchWorkbook(m model.Match, names map[uuid.UUID]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", StatsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(EventsSheet); err != nil {
		return nil, fmt.Errorf("create events sheet: %w", err)
	}

	nameOf := func(id uuid.UUID) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id.String()
	}

	catalog := model.StatCatalog()
	headers := []any{"Player", "GK"}
	for _, s := range catalog {
		headers = append(headers, s.Label)
	}
	if err := f.SetSheetRow(StatsSheet, "A1", &headers); err != nil {
		return nil, err
	}

	row := 2
	for _, ps := range m.PlayerStats {
		values := []any{nameOf(ps.PlayerID), gkMark(ps.IsGoalkeeper)}
		for _, s := range catalog {
			values = append(values, ps.Stats.Get(s.Key))
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(StatsSheet, cell, &values); err != nil {
			return nil, err
		}
		row++
	}

	totals := stats.TeamTotals(m)
	totalRow := []any{"Team", ""}
	for _, s := range catalog {
		totalRow = append(totalRow, totals.Get(s.Key))
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(StatsSheet, cell, &totalRow); err != nil {
		return nil, err
	}

	score := stats.MatchScore(m)
	scoreLine := []any{"Opponent", m.Opponent, "Date", m.ScheduledAt.Format("2006-01-02 15:04"), "Result", string(score.Result)}
	cell, _ = excelize.CoordinatesToCellName(1, row+2)
	if err := f.SetSheetRow(StatsSheet, cell, &scoreLine); err != nil {
		return nil, err
	}

	eventHeaders := []any{"#", "Time", "Player", "Stat", "Value"}
	if err := f.SetSheetRow(EventsSheet, "A1", &eventHeaders); err != nil {
		return nil, err
	}
	for i, ev := range m.Events {
		label := string(ev.Stat)
		if info, ok := ev.Stat.Info(); ok {
			label = info.Label
		}
		line := []any{i + 1, ev.Timestamp.Format("15:04:05"), nameOf(ev.PlayerID), label, ev.Value}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(EventsSheet, cell, &line); err != nil {
			return nil, err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(StatsSheet, "A", "A", 18)
	_ = f.SetColWidth(StatsSheet, "C", lastCol, 14)
	_ = f.SetColWidth(EventsSheet, "C", "D", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gkMark(on bool) string {
	if on {
		return "GK"
	}
	return ""
}
