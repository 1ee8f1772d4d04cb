package media

import "github.com/rebelcode/iris/internal/engine"

// StorySegregator routes story posts into their own collection, leaving
// regular media in the default one.
type StorySegregator struct{}

func (StorySegregator) Segregate(item *engine.Item, feed *engine.Feed) (string, bool) {
	if isStory, _ := item.Data[FieldIsStory].(bool); isStory {
		return StoriesCollection, true
	}
	return "", false
}
