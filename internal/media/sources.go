package media

import (
	"strings"

	"github.com/rebelcode/iris/internal/engine"
)

// Source types understood by the media providers.
const (
	TypePersonalAccount = "PERSONAL_ACCOUNT"
	TypeBusinessAccount = "BUSINESS_ACCOUNT"
	TypeRecentHashtag   = "RECENT_HASHTAG"
	TypePopularHashtag  = "POPULAR_HASHTAG"
	TypeUserStory       = "USER_STORY"
	TypeTaggedAccount   = "TAGGED_ACCOUNT"
	TypeListingPage     = "LISTING_PAGE"
)

// AccountSource creates a source for a user's own posts. Any accountType
// other than "business" is treated as a personal account.
func AccountSource(username, accountType string) engine.Source {
	srcType := TypePersonalAccount
	if strings.EqualFold(accountType, "business") {
		srcType = TypeBusinessAccount
	}
	return engine.AutoSource(srcType, map[string]any{"name": username})
}

// HashtagSource creates a source for posts under a hashtag. mediaType picks
// between recent and popular posts; anything not mentioning "recent" maps to
// popular.
func HashtagSource(tag, mediaType string) engine.Source {
	srcType := TypePopularHashtag
	if strings.Contains(strings.ToLower(mediaType), "recent") {
		srcType = TypeRecentHashtag
	}
	return engine.AutoSource(srcType, map[string]any{"name": tag})
}

// StorySource creates a source for a user's story posts.
func StorySource(username string) engine.Source {
	return engine.AutoSource(TypeUserStory, map[string]any{"name": username})
}

// TaggedSource creates a source for posts in which a user is tagged.
func TaggedSource(username string) engine.Source {
	return engine.AutoSource(TypeTaggedAccount, map[string]any{"name": username})
}

// ListingSource creates a source for an HTML listing page scraped without an
// API.
func ListingSource(name, url string) engine.Source {
	return engine.AutoSource(TypeListingPage, map[string]any{"name": name, "url": url})
}
