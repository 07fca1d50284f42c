package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// EncodedPayload is the base64 JPEG sent to the tagging service.
type EncodedPayload struct {
	Data   string `json:"image"`
	Width  int    `json:"-"`
	Height int    `json:"-"`
}

// Key identifies the payload by content. Cache entries and events use it
// instead of the full base64 string.
func (p EncodedPayload) Key() string {
	sum := sha256.Sum256([]byte(p.Data))
	return hex.EncodeToString(sum[:])
}

func (p EncodedPayload) Empty() bool {
	return p.Data == ""
}

type TagRequest struct {
	Image string `json:"image"`
}

// TaggedEvent is published after the tagging service returns a new result.
type TaggedEvent struct {
	PayloadKey string    `json:"payload_key"`
	TitleEN    string    `json:"title_en,omitempty"`
	TitleAR    string    `json:"title_ar,omitempty"`
	TagCount   int       `json:"tag_count"`
	TaggedAt   time.Time `json:"tagged_at"`
}
