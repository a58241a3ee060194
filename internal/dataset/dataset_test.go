package dataset

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/healthreport/internal/calendar"
)

func TestJoinKeepsEveryCanonicalKey(t *testing.T) {
	may := calendar.YearMonth{Year: 2024, Month: time.May}
	days := may.Range().Days()

	steps := NewColumn[calendar.Date]("Steps", "Steps")
	steps.SetNumber(calendar.Date{Year: 2024, Month: time.May, Day: 3}, 9000)
	mass := NewColumn[calendar.Date]("Mass (lb)", "Mass")
	mass.SetNumber(calendar.Date{Year: 2024, Month: time.May, Day: 20}, 178)
	// Outside the key set; must not produce a row.
	mass.SetNumber(calendar.Date{Year: 2024, Month: time.June, Day: 1}, 177)

	joined := Join(DayKeys("Date", days), New(steps), New(mass), nil)
	rows := joined.Rows()
	require.Len(t, rows, 31)

	seen := make(map[string]int)
	for _, row := range rows {
		require.Len(t, row, 3)
		seen[row[0].Value.String()]++
	}
	require.Len(t, seen, 31)
	for _, count := range seen {
		require.Equal(t, 1, count)
	}

	third := rows[len(rows)-3]
	require.Equal(t, "2024-05-03", third[0].Value.String())
	v, ok := third[1].Value.Float()
	require.True(t, ok)
	require.Equal(t, 9000.0, v)
	require.True(t, third[2].Value.IsEmpty())
}

func TestJoinWithNoDataIsEmptyButHasRows(t *testing.T) {
	months := []calendar.YearMonth{{Year: 2024, Month: time.February}, {Year: 2024, Month: time.January}}
	joined := Join(MonthKeys("Month", months), New(NewColumn[calendar.YearMonth]("Body Fat %", "BodyFat")))
	require.True(t, joined.Empty())
	require.Len(t, joined.Rows(), 2)
	require.Equal(t, "2024-02", joined.Rows()[0][0].Value.String())
}

func TestWithoutEmptyColumns(t *testing.T) {
	keys := []calendar.YearMonth{{Year: 2024, Month: time.January}}
	full := NewColumn[calendar.YearMonth]("Steps", "")
	full.SetNumber(keys[0], 1)
	blank := NewColumn[calendar.YearMonth]("Nutrition", "")
	blank.SetNumber(calendar.YearMonth{Year: 2020, Month: time.January}, 4)

	trimmed := Join(MonthKeys("Month", keys), New(full, blank)).WithoutEmptyColumns()
	cols := trimmed.Describe()
	require.Len(t, cols, 2)
	require.Equal(t, "Month", cols[0].Header)
	require.Equal(t, "Steps", cols[1].Header)
}

func TestTableWithoutEmptyColumns(t *testing.T) {
	table := Table{
		{{Header: "Date", Value: Text("a")}, {Header: "Source", Value: Empty()}},
		{{Header: "Date", Value: Text("b")}, {Header: "Source", Value: Empty()}},
	}
	trimmed := table.WithoutEmptyColumns()
	require.Equal(t, []ColumnInfo{{Header: "Date"}}, trimmed.Describe())
	require.True(t, Table{}.Empty())
	require.Nil(t, Table{}.Describe())
}

func TestValueJSON(t *testing.T) {
	payload, err := json.Marshal([]Value{
		Number(1.23456789),
		Text("x"),
		Empty(),
		DateValue(calendar.Date{Year: 2024, Month: time.March, Day: 9}),
	})
	require.NoError(t, err)
	require.JSONEq(t, `[1.2346, "x", null, "2024-03-09"]`, string(payload))
}
