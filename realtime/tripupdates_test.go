package realtime_test

import (
	"testing"

	gtfsproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"tidbyt.dev/transit/realtime"
)

func strp(s string) *string { return &s }
func u32p(v uint32) *uint32 { return &v }
func i32p(v int32) *int32   { return &v }

func marshalFeed(t *testing.T, msg *gtfsproto.FeedMessage) []byte {
	t.Helper()
	// header is a required field of FeedMessage; fixtures that leave it
	// out get a version 2.0 header so the message encodes and decodes.
	if msg.Header == nil {
		msg.Header = &gtfsproto.FeedHeader{GtfsRealtimeVersion: strp("2.0")}
	}
	b, err := proto.Marshal(msg)
	require.NoError(t, err)
	return b
}

func TestParseTripUpdatesBuildsPerStopDelays(t *testing.T) {
	relSkipped := gtfsproto.TripUpdate_StopTimeUpdate_SKIPPED
	msg := &gtfsproto.FeedMessage{
		Header: &gtfsproto.FeedHeader{GtfsRealtimeVersion: strp("2.0")},
		Entity: []*gtfsproto.FeedEntity{
			{
				Id: strp("e1"),
				TripUpdate: &gtfsproto.TripUpdate{
					Trip: &gtfsproto.TripDescriptor{TripId: strp("t1")},
					StopTimeUpdate: []*gtfsproto.TripUpdate_StopTimeUpdate{
						{
							StopSequence: u32p(2),
							StopId:       strp("s2"),
							Arrival:      &gtfsproto.TripUpdate_StopTimeEvent{Delay: i32p(90)},
						},
						{
							StopSequence:          u32p(1),
							StopId:                strp("s1"),
							ScheduleRelationship:  &relSkipped,
						},
					},
				},
			},
		},
	}

	updates, err := realtime.ParseTripUpdates(marshalFeed(t, msg))
	require.NoError(t, err)
	require.Contains(t, updates, "t1")

	info := updates["t1"]
	assert.False(t, info.IsCancelled)
	require.Len(t, info.Updates, 2)
	// Sorted by stop_sequence ascending.
	assert.Equal(t, uint32(1), info.Updates[0].StopSequence)
	assert.True(t, info.Updates[0].Skipped)
	assert.Equal(t, uint32(2), info.Updates[1].StopSequence)
	assert.Equal(t, 90, info.Updates[1].ArrDelaySeconds)
	// No departure event given: falls back to the arrival delay.
	assert.Equal(t, 90, info.Updates[1].DepDelaySeconds)
}

func TestParseTripUpdatesHandlesCancelledTrip(t *testing.T) {
	canceled := gtfsproto.TripDescriptor_CANCELED
	msg := &gtfsproto.FeedMessage{
		Entity: []*gtfsproto.FeedEntity{
			{
				Id: strp("e1"),
				TripUpdate: &gtfsproto.TripUpdate{
					Trip: &gtfsproto.TripDescriptor{TripId: strp("t1"), ScheduleRelationship: &canceled},
				},
			},
		},
	}

	updates, err := realtime.ParseTripUpdates(marshalFeed(t, msg))
	require.NoError(t, err)
	require.Contains(t, updates, "t1")
	assert.True(t, updates["t1"].IsCancelled)
}

func TestParseTripUpdatesSkipsBlankTripID(t *testing.T) {
	msg := &gtfsproto.FeedMessage{
		Entity: []*gtfsproto.FeedEntity{
			{Id: strp("e1"), TripUpdate: &gtfsproto.TripUpdate{Trip: &gtfsproto.TripDescriptor{}}},
		},
	}

	updates, err := realtime.ParseTripUpdates(marshalFeed(t, msg))
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestParseTripUpdatesRejectsUnsupportedVersion(t *testing.T) {
	msg := &gtfsproto.FeedMessage{Header: &gtfsproto.FeedHeader{GtfsRealtimeVersion: strp("3.0")}}
	_, err := realtime.ParseTripUpdates(marshalFeed(t, msg))
	assert.Error(t, err)
}
