// Resolving a tag result into what the page shows for one language
package presenter

import (
	"github.com/ds124wfegd/autotagger/internal/entity"
)

// Present selects the tag set for lang, sets the title aside and returns
// the remaining tags in service order. result is never modified, so the
// same cached value can be rendered any number of times.
func Present(result entity.TagResult, lang entity.Language) entity.Presentation {
	if !lang.Valid() {
		lang = entity.LanguageEN
	}

	var tags entity.TagSet
	if lang == entity.LanguageAR {
		// the service sends the arabic set with an english title key
		tags = result.ArTags.Rename(entity.TitleKeyEN, entity.TitleKeyAR)
	} else {
		tags = result.EngTags.Clone()
	}

	titleKey := lang.TitleKey()
	title, hasTitle := tags.Get(titleKey)
	rest := tags.Without(titleKey)

	out := entity.Presentation{
		Language:    lang,
		Direction:   lang.Direction(),
		Title:       title,
		HasTitle:    hasTitle,
		TagsHeading: lang.TagsHeading(),
		Tags:        make([]entity.Tag, 0, len(rest)),
	}
	out.Tags = append(out.Tags, rest...)
	return out
}
