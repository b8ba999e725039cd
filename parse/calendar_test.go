package parse_test

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/transit/parse"
	"tidbyt.dev/transit/storage"
)

func TestParseCalendarLoadsWeekdayMask(t *testing.T) {
	csv := "service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday\n" +
		"weekdays,20260101,20261231,1,1,1,1,1,0,0\n"

	feed := storage.NewMemoryFeed()
	ids, err := parse.ParseCalendar(feed, strings.NewReader(csv), slog.Default())
	require.NoError(t, err)
	assert.True(t, ids["weekdays"])

	cals := feed.Calendars()
	require.Len(t, cals, 1)
	// Monday (bit 1) through Friday (bit 5) set, Saturday/Sunday clear.
	assert.Equal(t, int8(1<<1|1<<2|1<<3|1<<4|1<<5), cals[0].Weekday)
}

func TestParseCalendarRejectsInvalidDates(t *testing.T) {
	csv := "service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday\n" +
		"bad,not-a-date,20261231,1,1,1,1,1,0,0\n"

	feed := storage.NewMemoryFeed()
	ids, err := parse.ParseCalendar(feed, strings.NewReader(csv), slog.Default())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestParseCalendarSkipsDuplicateServiceID(t *testing.T) {
	csv := "service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday\n" +
		"svc,20260101,20261231,1,1,1,1,1,0,0\n" +
		"svc,20260101,20261231,0,0,0,0,0,1,1\n"

	feed := storage.NewMemoryFeed()
	ids, err := parse.ParseCalendar(feed, strings.NewReader(csv), slog.Default())
	require.NoError(t, err)
	assert.True(t, ids["svc"])
	assert.Len(t, feed.Calendars(), 1)
}
