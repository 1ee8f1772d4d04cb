package media

import (
	"testing"

	"github.com/rebelcode/iris/internal/engine"
)

func TestAccountSourceTypes(t *testing.T) {
	tests := []struct {
		accountType string
		want        string
	}{
		{"business", TypeBusinessAccount},
		{"Business", TypeBusinessAccount},
		{"personal", TypePersonalAccount},
		{"", TypePersonalAccount},
	}

	for _, tt := range tests {
		if got := AccountSource("abc", tt.accountType).Type; got != tt.want {
			t.Errorf("AccountSource(%q).Type = %q, want %q", tt.accountType, got, tt.want)
		}
	}
}

func TestHashtagSourceTypes(t *testing.T) {
	if got := HashtagSource("sunset", "recent").Type; got != TypeRecentHashtag {
		t.Errorf("expected recent hashtag type, got %q", got)
	}
	if got := HashtagSource("sunset", "top").Type; got != TypePopularHashtag {
		t.Errorf("expected popular hashtag type, got %q", got)
	}
}

func TestSourceKeysAreStablePerInput(t *testing.T) {
	a := AccountSource("abc", "personal")
	b := AccountSource("abc", "personal")
	c := AccountSource("def", "personal")

	if a.Key != b.Key {
		t.Errorf("same account must produce the same key")
	}
	if a.Key == c.Key {
		t.Errorf("different accounts must produce different keys")
	}
}

func TestSanitizeProcessorCleansTextFields(t *testing.T) {
	src := AccountSource("abc", "personal")
	item := engine.NewItem("1", src, map[string]any{
		FieldCaption:  `hello <script>alert(1)</script><b>world</b>`,
		FieldUsername: "abc\xff",
	})

	feed := engine.NewFeed([]engine.Source{src}, nil)
	NewSanitizeProcessor().Process([]*engine.Item{item}, feed)

	if got := item.Data[FieldCaption]; got != "hello world" {
		t.Errorf("expected markup stripped, got %q", got)
	}
	if got := item.Data[FieldUsername]; got != "abc" {
		t.Errorf("expected invalid UTF-8 removed, got %q", got)
	}
}

func TestStorySegregator(t *testing.T) {
	src := StorySource("abc")
	feed := engine.NewFeed([]engine.Source{src}, nil)

	story := engine.NewItem("1", src, map[string]any{FieldIsStory: true})
	post := engine.NewItem("2", src, map[string]any{})

	if key, ok := (StorySegregator{}).Segregate(story, feed); !ok || key != StoriesCollection {
		t.Errorf("expected stories collection, got %q ok=%v", key, ok)
	}
	if _, ok := (StorySegregator{}).Segregate(post, feed); ok {
		t.Errorf("regular posts belong in the default collection")
	}
}

func TestTransformerShape(t *testing.T) {
	src := AccountSource("abc", "personal")
	item := engine.NewItem("99", src, map[string]any{
		FieldUsername:      "abc",
		FieldCaption:       "sunset",
		FieldTimestamp:     "2026-01-02T15:04:05Z",
		FieldMediaType:     "IMAGE",
		FieldMediaURL:      "https://cdn.example/99.jpg",
		FieldLikesCount:    5,
		FieldCommentsCount: 2,
		FieldChildren: []map[string]any{
			{FieldMediaID: "c1", FieldMediaType: "IMAGE", FieldMediaURL: "u", FieldPermalink: "p"},
		},
	})

	feed := engine.NewFeed([]engine.Source{src}, nil)
	out, ok := (Transformer{}).Transform(item, feed).(map[string]any)
	if !ok {
		t.Fatalf("expected a map, got %T", out)
	}

	if out["id"] != "99" || out["username"] != "abc" || out["likesCount"] != 5 {
		t.Errorf("unexpected top-level fields: %+v", out)
	}

	source, ok := out["source"].(map[string]any)
	if !ok || source["type"] != TypePersonalAccount || source["name"] != "abc" {
		t.Errorf("unexpected source block: %+v", out["source"])
	}

	children, ok := out["children"].([]map[string]any)
	if !ok || len(children) != 1 || children[0]["id"] != "c1" {
		t.Errorf("unexpected children: %+v", out["children"])
	}
}
