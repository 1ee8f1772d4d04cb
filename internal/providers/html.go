package providers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/rebelcode/iris/internal/engine"
	"github.com/rebelcode/iris/internal/media"
)

// ErrCodeHTMLFetch identifies page-fetch failures from the HTML provider.
const ErrCodeHTMLFetch = "html_fetch_failed"

// SelectorConfig names the CSS selectors used to pull items out of a
// listing page.
type SelectorConfig struct {
	Container string `yaml:"container"`            // wrapper for one list entry
	Link      string `yaml:"link"`                 // link within the container
	LinkAttr  string `yaml:"link_attr,omitempty"`  // attribute holding the link, default href
	Title     string `yaml:"title,omitempty"`      // caption text
	Date      string `yaml:"date,omitempty"`       // date text in the listing
}

// HTMLProvider scrapes items from listing pages for sources without an API.
//
// The source's data must carry a "url" seed. Pagination follows the NextPage
// selector up to MaxPages pages. Item ids are the absolute item links, which
// keeps ids stable across runs so the aggregator can deduplicate them.
type HTMLProvider struct {
	Selectors SelectorConfig
	NextPage  string // CSS selector for the next-page link
	MaxPages  int
	UserAgent string
	Delay     time.Duration // per-domain politeness delay
}

// NewHTMLProvider creates a provider for the given selectors, paginating up
// to maxPages.
func NewHTMLProvider(selectors SelectorConfig, nextPage string, maxPages int) *HTMLProvider {
	return &HTMLProvider{
		Selectors: selectors,
		NextPage:  nextPage,
		MaxPages:  maxPages,
		Delay:     time.Second,
	}
}

func (p *HTMLProvider) GetItems(ctx context.Context, source engine.Source, limit, offset int) *engine.Result {
	seed, _ := source.Data["url"].(string)
	if seed == "" {
		return engine.Fail("source "+source.Key+" has no url", ErrCodeHTMLFetch)
	}

	maxPages := p.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	var (
		items []*engine.Item
		errs  []engine.Error
		pages int
	)

	opts := []colly.CollectorOption{colly.MaxBodySize(10 * 1024 * 1024)}
	if p.UserAgent != "" {
		opts = append(opts, colly.UserAgent(p.UserAgent))
	}
	c := colly.NewCollector(opts...)
	c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 1, Delay: p.Delay})

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnResponse(func(r *colly.Response) {
		pages++
	})

	c.OnError(func(r *colly.Response, err error) {
		errs = append(errs, engine.Error{Message: err.Error(), Code: ErrCodeHTMLFetch})
	})

	c.OnHTML(p.Selectors.Container, func(e *colly.HTMLElement) {
		if item := p.extract(e.DOM, e, source); item != nil {
			items = append(items, item)
		}
	})

	if p.NextPage != "" {
		c.OnHTML(p.NextPage, func(e *colly.HTMLElement) {
			if pages >= maxPages {
				return
			}
			next := e.Request.AbsoluteURL(e.Attr("href"))
			if next != "" {
				e.Request.Visit(next)
			}
		})
	}

	if err := c.Visit(seed); err != nil {
		return engine.Fail(err.Error(), ErrCodeHTMLFetch)
	}
	c.Wait()

	log.Printf("[HTML] scraped %d items over %d pages for %s", len(items), pages, source.Key)

	result := engine.Succeed(pageSlice(items, limit, offset))
	result.Errors = errs
	if pages == 0 && len(errs) > 0 {
		result.Success = false
		result.Items = nil
	}
	return result
}

// extract pulls one item out of a listing container.
func (p *HTMLProvider) extract(dom *goquery.Selection, e *colly.HTMLElement, source engine.Source) *engine.Item {
	linkAttr := p.Selectors.LinkAttr
	if linkAttr == "" {
		linkAttr = "href"
	}

	href, _ := dom.Find(p.Selectors.Link).First().Attr(linkAttr)
	if href == "" {
		return nil
	}
	link := e.Request.AbsoluteURL(href)

	data := map[string]any{media.FieldPermalink: link}

	if p.Selectors.Title != "" {
		if title := normalizeSpace(dom.Find(p.Selectors.Title).First().Text()); title != "" {
			data[media.FieldCaption] = title
		}
	}
	if p.Selectors.Date != "" {
		if raw := normalizeSpace(dom.Find(p.Selectors.Date).First().Text()); raw != "" {
			data[media.FieldTimestamp] = parseListingDate(raw)
		}
	}

	return engine.NewItem(link, source, data)
}

func pageSlice(items []*engine.Item, limit, offset int) []*engine.Item {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// normalizeSpace collapses runs of whitespace and trims the string.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var listingDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"02/01/2006",
	"January 2, 2006",
	"2 January 2006",
	"Jan 2, 2006",
}

// parseListingDate tries the common listing-page date formats. Unparseable
// dates are kept raw; the sorter treats them as undated.
func parseListingDate(raw string) any {
	for _, layout := range listingDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return raw
}
