package thingspeak

import (
	"bytes"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/GregMSThompson/novaspeak/internal/models"
)

// text accepts a JSON string, number or null. The feed API sends field
// values as strings but some channels report numbers.
type text struct {
	value *string
}

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		t.value = nil
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		t.value = &s
		return nil
	}
	s := string(b)
	t.value = &s
	return nil
}

func (t text) String() string {
	if t.value == nil {
		return ""
	}
	return *t.value
}

type feedResponse struct {
	Channel channelPayload `json:"channel"`
	Feeds   []feedPayload  `json:"feeds"`
}

type channelPayload struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Latitude    text   `json:"latitude"`
	Longitude   text   `json:"longitude"`
	Field1      text   `json:"field1"`
	Field2      text   `json:"field2"`
	Field3      text   `json:"field3"`
	Field4      text   `json:"field4"`
	Field5      text   `json:"field5"`
	Field6      text   `json:"field6"`
	Field7      text   `json:"field7"`
	Field8      text   `json:"field8"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	LastEntryID int64  `json:"last_entry_id"`
}

type feedPayload struct {
	CreatedAt string `json:"created_at"`
	EntryID   int64  `json:"entry_id"`
	Field1    text   `json:"field1"`
	Field2    text   `json:"field2"`
	Field3    text   `json:"field3"`
	Field4    text   `json:"field4"`
	Field5    text   `json:"field5"`
	Field6    text   `json:"field6"`
	Field7    text   `json:"field7"`
	Field8    text   `json:"field8"`
}

func decodeSnapshot(body []byte) (models.ChannelSnapshot, error) {
	var resp feedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.ChannelSnapshot{}, err
	}
	return toSnapshot(resp), nil
}

func toSnapshot(resp feedResponse) models.ChannelSnapshot {
	c := resp.Channel
	snap := models.ChannelSnapshot{
		Channel: models.Channel{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Latitude:    c.Latitude.String(),
			Longitude:   c.Longitude.String(),
			Fields: [models.FieldCount]string{
				c.Field1.String(), c.Field2.String(), c.Field3.String(), c.Field4.String(),
				c.Field5.String(), c.Field6.String(), c.Field7.String(), c.Field8.String(),
			},
			CreatedAt:   parseTime(c.CreatedAt),
			UpdatedAt:   parseTime(c.UpdatedAt),
			LastEntryID: c.LastEntryID,
		},
		Feeds: make([]models.FeedEntry, 0, len(resp.Feeds)),
	}

	for _, f := range resp.Feeds {
		snap.Feeds = append(snap.Feeds, models.FeedEntry{
			CreatedAt: parseTime(f.CreatedAt),
			EntryID:   f.EntryID,
			Values: [models.FieldCount]*string{
				f.Field1.value, f.Field2.value, f.Field3.value, f.Field4.value,
				f.Field5.value, f.Field6.value, f.Field7.value, f.Field8.value,
			},
		})
	}
	return snap
}

// parseTime returns the zero time for values the API leaves empty or
// formats unexpectedly; entries are never dropped for a bad timestamp.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC()
	}
	return time.Time{}
}
