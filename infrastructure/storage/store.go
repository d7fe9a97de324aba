//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../../mocks/mock_message_store.go -package=mocks
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	apperrors "message-board/errors"
)

const (
	AttrMessageID = "messageId"
	AttrTimestamp = "timestamp"
	AttrReactions = "reactions"
)

// Item is a stored document.
// Numbers are kept in the store's decimal representation (json.Number) until Normalize runs.
type Item map[string]any

// Key identifies a message: messageId + timestamp.
type Key struct {
	MessageID string
	Timestamp int64
}

// String returns the storage key, "msg:{timestamp_padded}:{messageId}".
// Zero padding keeps a prefix scan in chronological order.
func (k Key) String() string {
	return fmt.Sprintf("msg:%019d:%s", k.Timestamp, k.MessageID)
}

// Increment adds Delta to Attribute[Field].
// When the map attribute is missing, the increment fails unless CreateMissing is set.
type Increment struct {
	Attribute     string
	Field         string
	Delta         int64
	CreateMissing bool
}

// Update is applied atomically to one existing document.
type Update struct {
	Set map[string]any
	Add []Increment
}

// Condition must hold on the stored document for the update to apply.
type Condition struct {
	AttributeExists string
}

type IMessageStore interface {
	Scan(ctx context.Context) ([]Item, error)
	Put(ctx context.Context, item Item) error
	// Update fails with ErrMessageNotFound when the key is absent and
	// with ErrConditionFailed when condition is set and unmet.
	Update(ctx context.Context, key Key, update Update, condition *Condition) error
	Ping(ctx context.Context) error
	Close() error
}

// ToItem converts any JSON-serializable value into a document.
func ToItem(v any) (Item, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return DecodeItem(data)
}

// KeyOf extracts the composite key of a document.
func KeyOf(item Item) (Key, error) {
	id, ok := item[AttrMessageID].(string)
	if !ok || id == "" {
		return Key{}, fmt.Errorf("item has no %s", AttrMessageID)
	}
	ts, ok := item[AttrTimestamp].(json.Number)
	if !ok {
		return Key{}, fmt.Errorf("item %s has no numeric %s", id, AttrTimestamp)
	}
	timestamp, err := ts.Int64()
	if err != nil {
		return Key{}, fmt.Errorf("item %s: %w", id, err)
	}
	return Key{MessageID: id, Timestamp: timestamp}, nil
}

func encodeItem(item Item) ([]byte, error) {
	return json.Marshal(item)
}

// DecodeItem parses a stored document, keeping numbers as json.Number.
func DecodeItem(data []byte) (Item, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var item Item
	if err := decoder.Decode(&item); err != nil {
		return nil, fmt.Errorf("failed to decode item: %w", err)
	}
	return item, nil
}

// applyUpdate mutates doc in place.
// Both backends run it inside their own transaction so that check and write stay atomic.
func applyUpdate(doc Item, update Update, condition *Condition) error {
	if condition != nil && condition.AttributeExists != "" {
		if _, ok := doc[condition.AttributeExists]; !ok {
			return fmt.Errorf("%w: attribute_exists(%s)", apperrors.ErrConditionFailed, condition.AttributeExists)
		}
	}

	for name, value := range update.Set {
		normalized, err := ToItem(map[string]any{name: value})
		if err != nil {
			return fmt.Errorf("cannot set %s: %w", name, err)
		}
		doc[name] = normalized[name]
	}

	for _, inc := range update.Add {
		m, err := mapAttribute(doc, inc)
		if err != nil {
			return err
		}
		current := int64(0)
		if existing, ok := m[inc.Field]; ok {
			n, ok := existing.(json.Number)
			if !ok {
				return fmt.Errorf("%s.%s is not a number", inc.Attribute, inc.Field)
			}
			if current, err = n.Int64(); err != nil {
				return fmt.Errorf("%s.%s is not an integer: %w", inc.Attribute, inc.Field, err)
			}
		}
		m[inc.Field] = json.Number(strconv.FormatInt(current+inc.Delta, 10))
	}
	return nil
}

func mapAttribute(doc Item, inc Increment) (map[string]any, error) {
	raw, ok := doc[inc.Attribute]
	if !ok || raw == nil {
		if !inc.CreateMissing {
			return nil, fmt.Errorf("the document path %s.%s is invalid for update", inc.Attribute, inc.Field)
		}
		m := map[string]any{}
		doc[inc.Attribute] = m
		return m, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s is not a map", inc.Attribute)
	}
	return m, nil
}
