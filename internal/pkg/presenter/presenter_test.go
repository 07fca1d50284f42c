package presenter

import (
	"encoding/json"
	"testing"

	"github.com/ds124wfegd/autotagger/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shirtResponse = `{
	"eng_tags": {"Title": "Blue Shirt", "Color": "Blue"},
	"ar_tags": {"Title": "قميص أزرق", "Color": "أزرق"}
}`

func loadResult(t *testing.T, raw string) entity.TagResult {
	t.Helper()
	var result entity.TagResult
	require.NoError(t, json.Unmarshal([]byte(raw), &result))
	return result
}

func TestPresentShirtScenario(t *testing.T) {
	result := loadResult(t, shirtResponse)

	en := Present(result, entity.LanguageEN)
	assert.True(t, en.HasTitle)
	assert.Equal(t, "Blue Shirt", en.Title)
	assert.Equal(t, []entity.Tag{{Key: "Color", Value: "Blue"}}, en.Tags)
	assert.Equal(t, entity.DirectionLTR, en.Direction)
	assert.Equal(t, "Tags:", en.TagsHeading)

	ar := Present(result, entity.LanguageAR)
	assert.True(t, ar.HasTitle)
	assert.Equal(t, "قميص أزرق", ar.Title)
	assert.Equal(t, []entity.Tag{{Key: "Color", Value: "أزرق"}}, ar.Tags)
	assert.Equal(t, entity.DirectionRTL, ar.Direction)
}

// TestPresentNeverRendersTitleTwice checks the title keys never reach the tag list
func TestPresentNeverRendersTitleTwice(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		lang      entity.Language
		wantTitle string
		hasTitle  bool
	}{
		{
			name:      "english title",
			raw:       `{"eng_tags": {"Color": "Red", "Title": "Red Dress", "Sleeve": "Short"}}`,
			lang:      entity.LanguageEN,
			wantTitle: "Red Dress",
			hasTitle:  true,
		},
		{
			name:      "arabic set with english title key",
			raw:       `{"ar_tags": {"Title": "فستان أحمر", "اللون": "أحمر"}}`,
			lang:      entity.LanguageAR,
			wantTitle: "فستان أحمر",
			hasTitle:  true,
		},
		{
			name:      "arabic set with both title keys",
			raw:       `{"ar_tags": {"العنوان": "قديم", "Title": "جديد", "اللون": "أحمر"}}`,
			lang:      entity.LanguageAR,
			wantTitle: "جديد",
			hasTitle:  true,
		},
		{
			name:      "arabic set with localized title only",
			raw:       `{"ar_tags": {"العنوان": "حذاء", "اللون": "أسود"}}`,
			lang:      entity.LanguageAR,
			wantTitle: "حذاء",
			hasTitle:  true,
		},
		{
			name:     "no title",
			raw:      `{"eng_tags": {"Color": "Green"}}`,
			lang:     entity.LanguageEN,
			hasTitle: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Present(loadResult(t, tt.raw), tt.lang)

			assert.Equal(t, tt.hasTitle, p.HasTitle)
			assert.Equal(t, tt.wantTitle, p.Title)
			for _, tag := range p.Tags {
				assert.NotEqual(t, entity.TitleKeyEN, tag.Key)
				assert.NotEqual(t, entity.TitleKeyAR, tag.Key)
			}
		})
	}
}

func TestPresentKeepsServiceOrder(t *testing.T) {
	result := loadResult(t, `{"eng_tags": {"Sleeve": "Long", "Title": "Coat", "Color": "Black", "Fabric": "Wool", "Fit": "Regular"}}`)

	p := Present(result, entity.LanguageEN)

	keys := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		keys = append(keys, tag.Key)
	}
	assert.Equal(t, []string{"Sleeve", "Color", "Fabric", "Fit"}, keys)
}

// TestPresentDoesNotMutateCachedResult renders one cached value repeatedly in both languages
func TestPresentDoesNotMutateCachedResult(t *testing.T) {
	result := loadResult(t, shirtResponse)
	snapshot := result.Clone()

	firstEN := Present(result, entity.LanguageEN)
	firstAR := Present(result, entity.LanguageAR)

	for i := 0; i < 3; i++ {
		assert.Equal(t, firstEN, Present(result, entity.LanguageEN))
		assert.Equal(t, firstAR, Present(result, entity.LanguageAR))
	}
	assert.Equal(t, snapshot, result)
	_, hasEnglishKey := result.ArTags.Get(entity.TitleKeyEN)
	_, hasArabicKey := result.ArTags.Get(entity.TitleKeyAR)
	assert.True(t, hasEnglishKey)
	assert.False(t, hasArabicKey)
}

func TestPresentEmptyAndUnknown(t *testing.T) {
	p := Present(entity.TagResult{}, entity.LanguageAR)
	assert.False(t, p.HasTitle)
	assert.Empty(t, p.Tags)
	assert.NotNil(t, p.Tags)

	p = Present(loadResult(t, shirtResponse), entity.Language("FR"))
	assert.Equal(t, entity.LanguageEN, p.Language)
	assert.Equal(t, "Blue Shirt", p.Title)
}
