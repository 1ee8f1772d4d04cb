// Package media binds the generic item engine to social media posts: source
// constructors for the supported source types, the data keys media items
// carry, and the processors, segregator and transformer that shape media
// feeds for clients.
package media

// Data keys for media items, matching the upstream API payload fields.
const (
	FieldMediaID       = "media_id"
	FieldCaption       = "caption"
	FieldUsername      = "username"
	FieldTimestamp     = "timestamp"
	FieldMediaType     = "media_type"
	FieldMediaURL      = "media_url"
	FieldPermalink     = "permalink"
	FieldThumbnailURL  = "thumbnail_url"
	FieldThumbnails    = "thumbnails"
	FieldLikesCount    = "like_count"
	FieldCommentsCount = "comments_count"
	FieldComments      = "comments"
	FieldChildren      = "children"
	FieldIsStory       = "is_story"
	FieldSourceType    = "source_type"
	FieldSourceName    = "source_name"
)

// Collection names used when segregating media feeds.
const (
	StoriesCollection = "stories"
)
