package entity

import (
	"fmt"
	"time"
)

type Project string

const (
	ProjectAutoTagging  Project = "autotagging"
	ProjectNeuralSearch Project = "neural-search"
	ProjectSimilarity   Project = "similarity"
)

// Projects lists the sidebar entries in display order.
var Projects = []Project{ProjectAutoTagging, ProjectNeuralSearch, ProjectSimilarity}

func ParseProject(s string) (Project, error) {
	for _, p := range Projects {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProject, s)
}

func (p Project) Name() string {
	switch p {
	case ProjectAutoTagging:
		return "Auto Tagging"
	case ProjectNeuralSearch:
		return "Neural Search"
	case ProjectSimilarity:
		return "Similarity"
	}
	return string(p)
}

func (p Project) Title() string {
	switch p {
	case ProjectAutoTagging:
		return "Auto Tag Your Fashion Catalog"
	case ProjectNeuralSearch:
		return "Neural Search"
	case ProjectSimilarity:
		return "Similar Items Recommender"
	}
	return p.Name()
}

// Session is the per-user state carried between requests.
type Session struct {
	ID        string         `json:"id"`
	Language  Language       `json:"language"`
	Project   Project        `json:"project"`
	Payload   EncodedPayload `json:"-"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func NewSession(id string, lang Language) *Session {
	if !lang.Valid() {
		lang = LanguageEN
	}
	return &Session{
		ID:        id,
		Language:  lang,
		Project:   ProjectAutoTagging,
		UpdatedAt: time.Now(),
	}
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// TaggingView is what the auto tagging page renders.
type TaggingView struct {
	Payload      EncodedPayload `json:"-"`
	PayloadKey   string         `json:"payload_key"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	Presentation Presentation   `json:"presentation"`
	Cached       bool           `json:"cached"`
}
