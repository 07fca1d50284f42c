package entity

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

const (
	TitleKeyEN = "Title"
	TitleKeyAR = "العنوان"
)

var errTagSetNotObject = errors.New("tag set must be a JSON object")

type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TagSet keeps tags in the order the tagging service sent them.
type TagSet []Tag

func (s TagSet) Get(key string) (string, bool) {
	for _, t := range s {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

// Without returns a copy of the set with key removed.
func (s TagSet) Without(key string) TagSet {
	out := make(TagSet, 0, len(s))
	for _, t := range s {
		if t.Key != key {
			out = append(out, t)
		}
	}
	return out
}

// Rename returns a copy where from is stored under to. The renamed entry
// moves to the end and replaces any entry already named to.
func (s TagSet) Rename(from, to string) TagSet {
	value, ok := s.Get(from)
	if !ok || from == to {
		return s.Clone()
	}
	out := s.Without(from).Without(to)
	return append(out, Tag{Key: to, Value: value})
}

func (s TagSet) Clone() TagSet {
	if s == nil {
		return nil
	}
	out := make(TagSet, len(s))
	copy(out, s)
	return out
}

func (s TagSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(t.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(t.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON walks the object in document order. A repeated key keeps
// its first position and takes the last value.
func (s *TagSet) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errTagSetNotObject
	}
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*s = nil
		return nil
	}
	if !res.IsObject() {
		return errTagSetNotObject
	}

	tags := make(TagSet, 0)
	index := make(map[string]int)
	res.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if i, ok := index[k]; ok {
			tags[i].Value = value.String()
			return true
		}
		index[k] = len(tags)
		tags = append(tags, Tag{Key: k, Value: value.String()})
		return true
	})
	*s = tags
	return nil
}

// TagResult is the body returned by the tagging service.
type TagResult struct {
	EngTags TagSet `json:"eng_tags"`
	ArTags  TagSet `json:"ar_tags"`
}

func (r TagResult) Clone() TagResult {
	return TagResult{EngTags: r.EngTags.Clone(), ArTags: r.ArTags.Clone()}
}

// Presentation is a tag set resolved for one display language.
type Presentation struct {
	Language    Language  `json:"language"`
	Direction   Direction `json:"direction"`
	Title       string    `json:"title,omitempty"`
	HasTitle    bool      `json:"has_title"`
	TagsHeading string    `json:"tags_heading"`
	Tags        []Tag     `json:"tags"`
}
