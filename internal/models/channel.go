package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldCount is the number of data slots a channel exposes.
const FieldCount = 8

// FieldKey identifies one of the channel's field slots, 1 through 8.
type FieldKey int

func (k FieldKey) Valid() bool { return k >= 1 && k <= FieldCount }

func (k FieldKey) String() string { return fmt.Sprintf("field%d", int(k)) }

func (k FieldKey) index() int { return int(k) - 1 }

func ParseFieldKey(s string) (FieldKey, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(s, "field"))
	if err != nil || !strings.HasPrefix(s, "field") || !FieldKey(n).Valid() {
		return 0, fmt.Errorf("invalid field key %q", s)
	}
	return FieldKey(n), nil
}

func (k FieldKey) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid field key %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *FieldKey) UnmarshalText(b []byte) error {
	parsed, err := ParseFieldKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// FieldKeys lists every slot in order.
func FieldKeys() []FieldKey {
	keys := make([]FieldKey, FieldCount)
	for i := range keys {
		keys[i] = FieldKey(i + 1)
	}
	return keys
}

type Channel struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Latitude    string             `json:"latitude,omitempty"`
	Longitude   string             `json:"longitude,omitempty"`
	Fields      [FieldCount]string `json:"fields"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	LastEntryID int64              `json:"lastEntryId"`
}

// FieldName returns the channel-level label of a slot, empty if unused.
func (c Channel) FieldName(k FieldKey) string {
	if !k.Valid() {
		return ""
	}
	return c.Fields[k.index()]
}

// FeedEntry is one timestamped reading. Values hold the raw text the
// remote API sent for each slot, nil when the slot was null or absent.
type FeedEntry struct {
	CreatedAt time.Time           `json:"createdAt"`
	EntryID   int64               `json:"entryId"`
	Values    [FieldCount]*string `json:"values"`
}

func (e FeedEntry) Value(k FieldKey) *string {
	if !k.Valid() {
		return nil
	}
	return e.Values[k.index()]
}

// SetValue is used when building entries outside the wire decoder.
func (e *FeedEntry) SetValue(k FieldKey, v *string) {
	if k.Valid() {
		e.Values[k.index()] = v
	}
}

// ChannelSnapshot is a full response from the feed API. Feeds keep the
// order the remote source delivered them in (oldest first).
type ChannelSnapshot struct {
	Channel Channel     `json:"channel"`
	Feeds   []FeedEntry `json:"feeds"`
}

// Latest returns the newest entry, if any.
func (s ChannelSnapshot) Latest() (FeedEntry, bool) {
	if len(s.Feeds) == 0 {
		return FeedEntry{}, false
	}
	return s.Feeds[len(s.Feeds)-1], true
}
