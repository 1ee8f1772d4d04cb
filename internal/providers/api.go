package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/rebelcode/iris/internal/engine"
	"github.com/rebelcode/iris/internal/media"
)

// DefaultPageSize is requested from the remote API when the caller imposes
// no limit.
const DefaultPageSize = 50

// Error codes reported by APIProvider.
const (
	ErrCodeAPIRequest  = "api_request_failed"
	ErrCodeAPIResponse = "api_bad_response"
)

// APIProvider pulls media items from a paginated JSON API.
//
// The API is expected to answer with a "data" array of objects carrying an
// "id" field, and an optional "paging.next" URL for the following page. When
// a next URL is present the result carries a continuation that re-issues it,
// so a BatchingProvider can drain the source page by page.
type APIProvider struct {
	Fetcher  Fetcher
	BaseURL  string
	Token    string
	PageSize int
}

// NewAPIProvider creates a provider against the given API base URL.
func NewAPIProvider(fetcher Fetcher, baseURL, token string) *APIProvider {
	return &APIProvider{
		Fetcher:  fetcher,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Token:    token,
		PageSize: DefaultPageSize,
	}
}

type apiResponse struct {
	Data   []map[string]any `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func (p *APIProvider) GetItems(ctx context.Context, source engine.Source, limit, offset int) *engine.Result {
	name, _ := source.Data["name"].(string)
	if name == "" {
		return engine.Fail(fmt.Sprintf("source %q has no name", source.Key), ErrCodeAPIRequest)
	}

	path, ok := endpointPath(source.Type, name)
	if !ok {
		// Not a source this API serves.
		return engine.Empty()
	}

	if limit <= 0 {
		limit = p.PageSize
	}
	if offset < 0 {
		offset = 0
	}

	query := url.Values{}
	query.Set("limit", fmt.Sprint(limit))
	if offset > 0 {
		query.Set("offset", fmt.Sprint(offset))
	}
	if p.Token != "" {
		query.Set("access_token", p.Token)
	}

	return p.request(ctx, source, p.BaseURL+path+"?"+query.Encode())
}

// request fetches one page and translates it into a result, attaching a
// continuation when the response advertises a next page.
func (p *APIProvider) request(ctx context.Context, source engine.Source, pageURL string) *engine.Result {
	doc, err := p.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return engine.Fail(err.Error(), ErrCodeAPIRequest)
	}
	defer doc.Body.Close()

	var body apiResponse
	if err := json.NewDecoder(doc.Body).Decode(&body); err != nil {
		return engine.Fail(fmt.Sprintf("decoding response from %s: %v", pageURL, err), ErrCodeAPIResponse)
	}

	if body.Error != nil {
		return engine.Fail(body.Error.Message, fmt.Sprint(body.Error.Code))
	}

	isStory := source.Type == media.TypeUserStory

	items := make([]*engine.Item, 0, len(body.Data))
	for _, data := range body.Data {
		id, ok := data["id"]
		if !ok {
			continue
		}
		if isStory {
			data[media.FieldIsStory] = true
		}
		items = append(items, engine.NewItem(id, source, data))
	}

	result := engine.Succeed(items)
	result.Data["paging"] = body.Paging

	if next := body.Paging.Next; next != "" {
		result.Next = func(ctx context.Context) *engine.Result {
			return p.request(ctx, source, next)
		}
	}

	log.Printf("[API] fetched %d items for %s (%s)", len(items), source.Key, source.Type)
	return result
}

func endpointPath(sourceType, name string) (string, bool) {
	name = url.PathEscape(name)

	switch sourceType {
	case media.TypePersonalAccount, media.TypeBusinessAccount:
		return "/" + name + "/media", true
	case media.TypeUserStory:
		return "/" + name + "/stories", true
	case media.TypeTaggedAccount:
		return "/" + name + "/tagged", true
	case media.TypeRecentHashtag:
		return "/hashtags/" + name + "/recent", true
	case media.TypePopularHashtag:
		return "/hashtags/" + name + "/popular", true
	default:
		return "", false
	}
}
