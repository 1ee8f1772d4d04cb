package media

import "github.com/rebelcode/iris/internal/engine"

// Transformer maps a media item to the shape served to clients. Comment and
// child-media payloads are reduced to the fields clients consume.
type Transformer struct{}

func (Transformer) Transform(item *engine.Item, feed *engine.Feed) any {
	children := make([]map[string]any, 0)
	if raw, ok := item.Data[FieldChildren].([]map[string]any); ok {
		for _, child := range raw {
			children = append(children, map[string]any{
				"id":        child[FieldMediaID],
				"type":      child[FieldMediaType],
				"url":       child[FieldMediaURL],
				"permalink": child[FieldPermalink],
			})
		}
	}

	comments := make([]map[string]any, 0)
	if raw, ok := item.Data[FieldComments].([]map[string]any); ok {
		for _, comment := range raw {
			comments = append(comments, map[string]any{
				"id":        comment["id"],
				"username":  comment[FieldUsername],
				"text":      comment["text"],
				"timestamp": comment[FieldTimestamp],
				"likeCount": comment[FieldLikesCount],
			})
		}
	}

	return map[string]any{
		"id":            item.ID,
		"username":      item.Data[FieldUsername],
		"caption":       item.Data[FieldCaption],
		"timestamp":     item.Data[FieldTimestamp],
		"type":          item.Data[FieldMediaType],
		"url":           item.Data[FieldMediaURL],
		"permalink":     item.Data[FieldPermalink],
		"thumbnail":     item.Data[FieldThumbnailURL],
		"thumbnails":    item.Data[FieldThumbnails],
		"likesCount":    item.Data[FieldLikesCount],
		"commentsCount": item.Data[FieldCommentsCount],
		"comments":      comments,
		"children":      children,
		"source": map[string]any{
			"type": item.Source.Type,
			"name": item.Source.Data["name"],
		},
	}
}
