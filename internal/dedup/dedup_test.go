package dedup

import (
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/healthreport/internal/domain"
)

var base = time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)

func steps(source string, startMin, endMin int, value string) domain.Record {
	return domain.Record{
		Type:       domain.TypeStepCount,
		Start:      base.Add(time.Duration(startMin) * time.Minute),
		End:        base.Add(time.Duration(endMin) * time.Minute),
		Value:      value,
		Unit:       "count",
		SourceName: source,
	}
}

func TestPrioritizeEmpty(t *testing.T) {
	require.Empty(t, Prioritize(nil))
	require.NotNil(t, Prioritize(nil))
}

func TestPrioritizeWatchWinsOverPhone(t *testing.T) {
	a := steps("Jon's iPhone", 0, 10, "500")
	b := steps("Jon's Apple Watch", 5, 15, "600")
	c := steps("Pedometer App", 60, 70, "300")

	got := Prioritize([]domain.Record{c, a, b})
	require.Equal(t, []domain.Record{b, c}, got)

	var total float64
	for _, r := range got {
		total += r.FloatOrZero()
	}
	require.Equal(t, 900.0, total)
}

func TestPrioritizeWatchWinsRegardlessOfMagnitude(t *testing.T) {
	phone := steps("iPhone", 0, 10, "5000")
	watch := steps("Apple Watch", 2, 8, "10")
	require.Equal(t, []domain.Record{watch}, Prioritize([]domain.Record{phone, watch}))
}

func TestPrioritizeSameSourceKeepsLarger(t *testing.T) {
	small := steps("iPhone", 0, 10, "100")
	large := steps("iPhone", 5, 15, "250")
	require.Equal(t, []domain.Record{large}, Prioritize([]domain.Record{small, large}))

	big := steps("iPhone", 0, 10, "900")
	require.Equal(t, []domain.Record{big}, Prioritize([]domain.Record{big, large}))
}

func TestPrioritizeSameSourceTieKeepsFirst(t *testing.T) {
	first := steps("iPhone", 0, 10, "100")
	second := steps("iPhone", 5, 15, "100")
	require.Equal(t, []domain.Record{first}, Prioritize([]domain.Record{first, second}))
}

func TestPrioritizeDifferentNonWatchSourcesKeepLarger(t *testing.T) {
	a := steps("iPhone", 0, 10, "100")
	b := steps("Fitbit", 3, 12, "300")
	require.Equal(t, []domain.Record{b}, Prioritize([]domain.Record{a, b}))
}

func TestPrioritizeBothWatchesKeepLarger(t *testing.T) {
	a := steps("Old Watch", 0, 10, "700")
	b := steps("New Watch", 3, 12, "300")
	require.Equal(t, []domain.Record{a}, Prioritize([]domain.Record{a, b}))
}

func TestPrioritizeUpperBoundIsExclusive(t *testing.T) {
	a := steps("iPhone", 0, 10, "100")
	b := steps("Fitbit", 10, 20, "300")
	require.Equal(t, []domain.Record{a, b}, Prioritize([]domain.Record{b, a}))
}

func TestPrioritizeRejectionExposesNewOverlap(t *testing.T) {
	long := steps("iPhone", 0, 60, "1000")
	short := steps("iPhone", 5, 10, "10")
	later := steps("iPhone", 30, 40, "20")
	after := steps("iPhone", 60, 70, "30")
	require.Equal(t, []domain.Record{long, after}, Prioritize([]domain.Record{later, short, after, long}))
}

func TestPrioritizeUnparseableValueComparesAsZero(t *testing.T) {
	bad := steps("iPhone", 0, 10, "n/a")
	good := steps("iPhone", 5, 15, "1")
	require.Equal(t, []domain.Record{good}, Prioritize([]domain.Record{bad, good}))

	alone := steps("iPhone", 0, 10, domain.Null)
	require.Equal(t, []domain.Record{alone}, Prioritize([]domain.Record{alone}))
}

func TestPrioritizeOutputHasNoOverlaps(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	sources := []string{"iPhone", "Apple Watch", "Fitbit"}

	records := make([]domain.Record, 0, 500)
	for i := 0; i < 500; i++ {
		start := rng.Intn(24 * 60)
		length := rng.Intn(30)
		records = append(records, steps(sources[rng.Intn(len(sources))], start, start+length, strconv.Itoa(rng.Intn(2000))))
	}

	got := Prioritize(records)
	require.NotEmpty(t, got)
	for i := 0; i < len(got); i++ {
		for j := i + 1; j < len(got); j++ {
			a, b := got[i], got[j]
			overlap := a.Start.Before(b.End) && b.Start.Before(a.End)
			require.Falsef(t, overlap, "records %d and %d overlap", i, j)
		}
	}
}
