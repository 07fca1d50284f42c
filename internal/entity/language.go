package entity

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

type Language string

const (
	LanguageEN Language = "EN"
	LanguageAR Language = "AR"
)

type Direction string

const (
	DirectionLTR Direction = "ltr"
	DirectionRTL Direction = "rtl"
)

// supported order matters: the first tag is the fallback for the matcher.
var (
	supportedTags   = []language.Tag{language.English, language.Arabic}
	languageMatcher = language.NewMatcher(supportedTags)
)

func ParseLanguage(s string) (Language, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EN", "ENG", "ENGLISH":
		return LanguageEN, nil
	case "AR", "ARA", "ARABIC":
		return LanguageAR, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
}

// NegotiateLanguage picks the display language for an Accept-Language header.
func NegotiateLanguage(acceptLanguage string) Language {
	tag, _ := language.MatchStrings(languageMatcher, acceptLanguage)
	base, _ := tag.Base()
	if base.String() == "ar" {
		return LanguageAR
	}
	return LanguageEN
}

func (l Language) Valid() bool {
	return l == LanguageEN || l == LanguageAR
}

func (l Language) Toggle() Language {
	if l == LanguageAR {
		return LanguageEN
	}
	return LanguageAR
}

func (l Language) Direction() Direction {
	if l == LanguageAR {
		return DirectionRTL
	}
	return DirectionLTR
}

// Tag returns the BCP 47 tag, used for the html lang attribute.
func (l Language) Tag() language.Tag {
	if l == LanguageAR {
		return language.Arabic
	}
	return language.English
}

func (l Language) TitleKey() string {
	if l == LanguageAR {
		return TitleKeyAR
	}
	return TitleKeyEN
}

func (l Language) TagsHeading() string {
	if l == LanguageAR {
		return "الوسوم:"
	}
	return "Tags:"
}
