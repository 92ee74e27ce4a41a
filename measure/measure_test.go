package measure_test

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropfour/dropfour/measure"
)

func TestSpeedupBookkeepingInvariant(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mjerenje.txt")

	sink, err := measure.NewFileSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.Record(1, 1000))
	require.NoError(t, sink.Record(2, 400))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	// speedup[k-1] * ms[k-1] == ms[0] to 3 decimals: for process count
	// 2, the written speedup is 1000/400 = 2.500, so ms[1]*speedup[1] == ms[0].
	lines := strings.Split(string(data), "\n")
	speedup, err := strconv.ParseFloat(strings.Fields(lines[2])[1], 64)
	require.NoError(t, err)
	require.InDelta(t, 1000.0, 400.0*speedup, 0.001)
}

func TestOnceTimesEachProcessCountExactlyOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mjerenje.txt")

	sink, err := measure.NewFileSink(path)
	require.NoError(t, err)

	var clock int64
	tick := func() int64 {
		clock += 5
		return clock
	}
	once := measure.NewOnce(sink, tick)

	calls := 0
	play := func() (int, error) {
		calls++
		return 3, nil
	}

	col, err := once.Do(1, play)
	require.NoError(t, err)
	require.Equal(t, 3, col)
	require.Equal(t, 1, calls)

	// Second call for the same process count runs play but is not
	// re-timed/re-recorded.
	col, err = once.Do(1, play)
	require.NoError(t, err)
	require.Equal(t, 3, col)
	require.Equal(t, 2, calls)
}

func TestFileSinkRejectsOutOfRangeProcessCount(t *testing.T) {
	dir := t.TempDir()
	sink, err := measure.NewFileSink(filepath.Join(dir, "mjerenje.txt"))
	require.NoError(t, err)

	require.Error(t, sink.Record(0, 100))
	require.Error(t, sink.Record(9, 100))
}

func TestNewFileSinkLoadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mjerenje.txt")

	first, err := measure.NewFileSink(path)
	require.NoError(t, err)
	require.NoError(t, first.Record(1, 2000))

	second, err := measure.NewFileSink(path)
	require.NoError(t, err)
	require.NoError(t, second.Record(2, 1000))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "2000")
}
