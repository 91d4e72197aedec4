package thingspeak

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregMSThompson/novaspeak/internal/errs"
	"github.com/GregMSThompson/novaspeak/internal/models"
)

const sampleFeed = `{
  "channel": {
    "id": 9,
    "name": "my house",
    "description": "Netduino Plus connected to sensors around the house",
    "latitude": "40.44",
    "longitude": "-79.996",
    "field1": "Light",
    "field2": "Outside Temperature",
    "field4": "Water Level",
    "created_at": "2010-12-13T20:20:06-05:00",
    "updated_at": "2014-02-26T12:43:04-05:00",
    "last_entry_id": 6062844
  },
  "feeds": [
    {"created_at": "2024-05-01T10:00:00Z", "entry_id": 1, "field1": "10", "field2": null},
    {"created_at": "2024-05-01T10:05:00Z", "entry_id": 2, "field1": 20.5, "field2": "bad", "field9": "ignored"}
  ]
}`

type capture struct {
	path  string
	query url.Values
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, *capture) {
	t.Helper()
	c := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.path = r.URL.Path
		c.query = r.URL.Query()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func TestFetchLatest_DecodesSnapshot(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, sampleFeed)
	client := New(srv.URL, srv.Client())

	snap, err := client.FetchLatest(context.Background(), "9", "KEY", 50)
	require.NoError(t, err)

	assert.Equal(t, "/channels/9/feeds.json", got.path)
	assert.Equal(t, "50", got.query.Get("results"))
	assert.Equal(t, "KEY", got.query.Get("api_key"))

	assert.Equal(t, int64(9), snap.Channel.ID)
	assert.Equal(t, "Light", snap.Channel.FieldName(1))
	assert.Equal(t, "", snap.Channel.FieldName(3))
	assert.Equal(t, "Water Level", snap.Channel.FieldName(4))
	require.Len(t, snap.Feeds, 2)

	first := snap.Feeds[0]
	require.NotNil(t, first.Value(1))
	assert.Equal(t, "10", *first.Value(1))
	assert.Nil(t, first.Value(2))
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), first.CreatedAt)

	second := snap.Feeds[1]
	require.NotNil(t, second.Value(1))
	assert.Equal(t, "20.5", *second.Value(1))
	assert.Equal(t, "bad", *second.Value(2))
	assert.Equal(t, int64(2), second.EntryID)
}

func TestFetchLatest_OmitsEmptyKeyAndDefaultsResults(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, sampleFeed)
	client := New(srv.URL, srv.Client())

	_, err := client.FetchLatest(context.Background(), "9", "", 0)
	require.NoError(t, err)

	_, hasKey := got.query["api_key"]
	assert.False(t, hasKey)
	assert.Equal(t, "50", got.query.Get("results"))
}

func TestFetchLatest_EmptyChannel(t *testing.T) {
	client := New("http://unused.invalid", nil)

	_, err := client.FetchLatest(context.Background(), "", "", 10)

	var ve *errs.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, MsgChannelRequired, ve.Message)
}

func TestFetchLatest_NotFound(t *testing.T) {
	srv, _ := newServer(t, http.StatusNotFound, "")
	client := New(srv.URL, srv.Client())

	_, err := client.FetchLatest(context.Background(), "404", "", 10)

	var nf *errs.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Channel not found. Please check ID and visibility.", err.Error())
}

func TestFetchLatest_OtherStatusIsGenericFailure(t *testing.T) {
	cases := []struct {
		status    int
		transient bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv, _ := newServer(t, tc.status, "oops")
			client := New(srv.URL, srv.Client())

			_, err := client.FetchLatest(context.Background(), "9", "", 10)

			var ext *errs.ExternalServiceError
			require.True(t, errors.As(err, &ext))
			assert.Equal(t, "Failed to fetch ThingSpeak data", ext.Message)
			assert.Equal(t, tc.status, ext.Status)
			assert.Equal(t, tc.transient, ext.Transient)
		})
	}
}

func TestFetchLatest_PrivateChannelMarker(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, "-1")
	client := New(srv.URL, srv.Client())

	_, err := client.FetchLatest(context.Background(), "9", "", 10)

	var nf *errs.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestFetchLatest_TransportErrorIsTransient(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, sampleFeed)
	client := New(srv.URL, srv.Client())
	srv.Close()

	_, err := client.FetchLatest(context.Background(), "9", "", 10)

	var ext *errs.ExternalServiceError
	require.True(t, errors.As(err, &ext))
	assert.True(t, ext.Transient)
	assert.Equal(t, MsgFetchFailed, ext.Message)
}

func TestFetchLatest_MalformedBody(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, "{not json")
	client := New(srv.URL, srv.Client())

	_, err := client.FetchLatest(context.Background(), "9", "", 10)

	var ext *errs.ExternalServiceError
	require.True(t, errors.As(err, &ext))
	assert.False(t, ext.Transient)
}

func TestFetchDay_NaiveRange(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, sampleFeed)
	client := New(srv.URL, srv.Client())

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := client.FetchDay(context.Background(), "9", "", day)
	require.NoError(t, err)

	assert.Equal(t, "2024-05-01 00:00:00", got.query.Get("start"))
	assert.Equal(t, "2024-05-01 23:59:59", got.query.Get("end"))
	_, hasTZ := got.query["timezone"]
	assert.False(t, hasTZ)
	_, hasResults := got.query["results"]
	assert.False(t, hasResults)
}

func TestFetchDay_WithTimezone(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, sampleFeed)
	client := New(srv.URL, srv.Client(), WithTimezone("Europe/London"))

	_, err := client.FetchDay(context.Background(), "9", "KEY", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "Europe/London", got.query.Get("timezone"))
	assert.Equal(t, "KEY", got.query.Get("api_key"))
}

func TestFetchDay_FailureMessages(t *testing.T) {
	srv, _ := newServer(t, http.StatusInternalServerError, "")
	client := New(srv.URL, srv.Client())

	_, err := client.FetchDay(context.Background(), "9", "", time.Now())
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch history data", err.Error())

	notFound, _ := newServer(t, http.StatusNotFound, "")
	client = New(notFound.URL, notFound.Client())
	_, err = client.FetchDay(context.Background(), "9", "", time.Now())
	var nf *errs.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestDecodeSnapshot_KeepsDeliveredOrder(t *testing.T) {
	body := `{"channel":{"id":1},"feeds":[
		{"created_at":"2024-05-01T10:05:00Z","entry_id":5},
		{"created_at":"2024-05-01T10:00:00Z","entry_id":4}
	]}`

	snap, err := decodeSnapshot([]byte(body))
	require.NoError(t, err)
	require.Len(t, snap.Feeds, 2)
	assert.Equal(t, int64(5), snap.Feeds[0].EntryID)
	assert.Equal(t, int64(4), snap.Feeds[1].EntryID)

	latest, ok := snap.Latest()
	require.True(t, ok)
	assert.Equal(t, int64(4), latest.EntryID)
	var empty models.ChannelSnapshot
	_, ok = empty.Latest()
	assert.False(t, ok)
}
