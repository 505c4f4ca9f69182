package l1frames

import (
	"errors"
	"fmt"
	"math"
)

// Header keys every frame source must provide.
const (
	KeyFrames    = "FRAMES"   // number of frames in the stack
	KeyFrameTime = "FRAMETIM" // exposure time per frame [s]
	KeyThrowout  = "THROWOUT" // frames discarded before the first stored one
	KeyROIX0     = "ROIX0"    // 1-based x origin of the readout window
	KeyROIY0     = "ROIY0"    // 1-based y origin of the readout window
)

// RequiredKeys lists the header keys the extraction chain consumes.
var RequiredKeys = []string{KeyFrames, KeyFrameTime, KeyThrowout, KeyROIX0, KeyROIY0}

// ErrMissingKey is returned when a required header key is absent.
var ErrMissingKey = errors.New("missing header key")

// Card is a single header entry. Value is one of int64, float64, string or bool.
type Card struct {
	Key     string
	Value   interface{}
	Unit    string
	Comment string
}

// Header is an ordered set of cards keyed by name.
type Header struct {
	cards []Card
	index map[string]int
}

// NewHeader returns an empty header.
func NewHeader() *Header {
	return &Header{index: make(map[string]int)}
}

// normalizeValue narrows Go numeric types to the int64/float64 pair the
// header stores.
func normalizeValue(v interface{}) interface{} {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint:
		return normalizeUnsigned(uint64(x))
	case uint64:
		return normalizeUnsigned(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}

// normalizeUnsigned keeps values that fit in int64 as integers and falls
// back to float64 above math.MaxInt64.
func normalizeUnsigned(x uint64) interface{} {
	if x > math.MaxInt64 {
		return float64(x)
	}
	return int64(x)
}

// Set stores value under key. An existing card keeps its position and unit;
// its comment is replaced only when comment is non-empty.
func (h *Header) Set(key string, value interface{}, comment string) {
	if i, ok := h.index[key]; ok {
		h.cards[i].Value = normalizeValue(value)
		if comment != "" {
			h.cards[i].Comment = comment
		}
		return
	}
	h.SetCard(Card{Key: key, Value: value, Comment: comment})
}

// SetCard stores a complete card, replacing any card with the same key in place.
func (h *Header) SetCard(c Card) {
	if h.index == nil {
		h.index = make(map[string]int)
	}
	c.Value = normalizeValue(c.Value)
	if i, ok := h.index[c.Key]; ok {
		h.cards[i] = c
		return
	}
	h.index[c.Key] = len(h.cards)
	h.cards = append(h.cards, c)
}

// Get returns the card stored under key.
func (h *Header) Get(key string) (Card, bool) {
	i, ok := h.index[key]
	if !ok {
		return Card{}, false
	}
	return h.cards[i], true
}

// Has reports whether key is present.
func (h *Header) Has(key string) bool {
	_, ok := h.index[key]
	return ok
}

// Pop removes key and returns its card.
func (h *Header) Pop(key string) (Card, bool) {
	i, ok := h.index[key]
	if !ok {
		return Card{}, false
	}
	c := h.cards[i]
	h.cards = append(h.cards[:i], h.cards[i+1:]...)
	delete(h.index, key)
	for j := i; j < len(h.cards); j++ {
		h.index[h.cards[j].Key] = j
	}
	return c, true
}

// Len returns the number of cards.
func (h *Header) Len() int { return len(h.cards) }

// Keys returns the card keys in header order.
func (h *Header) Keys() []string {
	keys := make([]string, len(h.cards))
	for i, c := range h.cards {
		keys[i] = c.Key
	}
	return keys
}

// Cards returns a copy of the cards in header order.
func (h *Header) Cards() []Card {
	out := make([]Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Clone returns an independent copy of the header.
func (h *Header) Clone() *Header {
	out := NewHeader()
	for _, c := range h.cards {
		out.SetCard(c)
	}
	return out
}

// Require checks that every key is present.
func (h *Header) Require(keys ...string) error {
	for _, k := range keys {
		if !h.Has(k) {
			return fmt.Errorf("%w: %s", ErrMissingKey, k)
		}
	}
	return nil
}

// Int returns the integer value stored under key. Floating point values are
// accepted only when they are integral.
func (h *Header) Int(key string) (int64, error) {
	c, ok := h.Get(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	switch v := c.Value.(type) {
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, fmt.Errorf("header key %s: value %v is not an integer", key, v)
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("header key %s: value %v (%T) is not numeric", key, c.Value, c.Value)
	}
}

// Float returns the numeric value stored under key as float64.
func (h *Header) Float(key string) (float64, error) {
	c, ok := h.Get(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	switch v := c.Value.(type) {
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("header key %s: value %v (%T) is not numeric", key, c.Value, c.Value)
	}
}

// Text returns the string value stored under key.
func (h *Header) Text(key string) (string, error) {
	c, ok := h.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	s, ok := c.Value.(string)
	if !ok {
		return "", fmt.Errorf("header key %s: value %v (%T) is not a string", key, c.Value, c.Value)
	}
	return s, nil
}
