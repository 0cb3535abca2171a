// Package resolver selects the learning-material link to present for a
// course: an internally hosted content item when backend validation or a
// conservative title match sanctions one, otherwise external links.
package resolver

import (
	"context"
	"net/url"
	"strings"

	"github.com/openlearnhub/hub-edge/internal/catalog"
	"github.com/openlearnhub/hub-edge/internal/curriculum"
)

// Kind says whether a resolution points on-platform or off-platform.
type Kind string

const (
	KindInternal Kind = "internal"
	KindExternal Kind = "external"
)

// Source records which rule produced the resolution.
type Source string

const (
	// SourceValidatedID: matched_content_id resolved in the catalog.
	SourceValidatedID Source = "validated_id"
	// SourceContentURL: an internal id extracted from content_url resolved.
	SourceContentURL Source = "content_url"
	// SourceTitleMatch: legacy payload, conservative title similarity.
	SourceTitleMatch Source = "title_match"
	// SourceCurated: curated external links from the backend.
	SourceCurated Source = "curated"
	// SourceSearch: generated search-query links, the terminal fallback.
	SourceSearch Source = "search"
)

// Resolution is the outcome for one course. Item and ViewPath are set
// only for internal resolutions, Links only for external ones.
type Resolution struct {
	Kind     Kind                      `json:"kind"`
	Source   Source                    `json:"source"`
	Item     *catalog.Item             `json:"item,omitempty"`
	ViewPath string                    `json:"view_path,omitempty"`
	Links    []curriculum.ExternalLink `json:"links,omitempty"`
}

// Resolver matches courses against the platform content catalog.
type Resolver struct {
	catalog catalog.Store
}

func New(store catalog.Store) *Resolver {
	return &Resolver{catalog: store}
}

// Resolve picks a link for the course. level is the difficulty of the
// tier the course sits in, used only by the legacy title heuristic.
//
// Internal content is surfaced only when the backend validated the match
// (validation_status "available", or an explicit matched_content_id under
// that status) or when the title heuristic finds a near-exact match. An
// "alternative" or "external_platform_fallback" status forces external
// links even when a matched_content_id is present; the status is the
// backend's verdict that the id is not trustworthy.
func (r *Resolver) Resolve(ctx context.Context, course curriculum.Course, level string) Resolution {
	mc := course.MatchingCriteria
	if mc == nil {
		// Legacy payload: no validation metadata at all.
		if item, ok := catalog.BestTitleMatch(ctx, r.catalog, course.Title, level); ok {
			return internal(item, SourceTitleMatch)
		}
		return r.external(course, nil)
	}

	switch mc.ValidationStatus {
	case curriculum.ValidationAlternative, curriculum.ValidationExternalFallback:
		return r.external(course, mc.ExternalLinks)

	case curriculum.ValidationAvailable, "":
		if mc.MatchedContentID != "" {
			if item, ok := r.catalog.ByID(ctx, mc.MatchedContentID); ok {
				return internal(item, SourceValidatedID)
			}
		}
		if id := extractContentID(mc.ContentURL); id != "" {
			if item, ok := r.catalog.ByID(ctx, id); ok {
				return internal(item, SourceContentURL)
			}
		}
		return r.external(course, mc.ExternalLinks)

	default:
		// Unknown status from a newer backend: treat like alternative
		// and stay off-platform.
		return r.external(course, mc.ExternalLinks)
	}
}

func internal(item catalog.Item, source Source) Resolution {
	return Resolution{
		Kind:     KindInternal,
		Source:   source,
		Item:     &item,
		ViewPath: item.ViewPath(),
	}
}

func (r *Resolver) external(course curriculum.Course, curated []curriculum.ExternalLink) Resolution {
	if len(curated) > 0 {
		return Resolution{Kind: KindExternal, Source: SourceCurated, Links: curated}
	}
	return Resolution{Kind: KindExternal, Source: SourceSearch, Links: SearchLinks(course.Title)}
}

// SearchLinks builds platform-specific search URLs for a topic.
func SearchLinks(topic string) []curriculum.ExternalLink {
	q := url.QueryEscape(strings.TrimSpace(topic))
	return []curriculum.ExternalLink{
		{
			Title:    "Search YouTube: " + topic,
			URL:      "https://www.youtube.com/results?search_query=" + q + "+tutorial",
			Platform: "YouTube",
		},
		{
			Title:    "Search freeCodeCamp: " + topic,
			URL:      "https://www.freecodecamp.org/news/search/?query=" + q,
			Platform: "freeCodeCamp",
		},
	}
}

// extractContentID pulls an internal content id out of a content URL of
// the form "/note/<id>" (absolute URLs with that path also qualify).
func extractContentID(contentURL string) string {
	if contentURL == "" {
		return ""
	}
	u, err := url.Parse(contentURL)
	if err != nil {
		return ""
	}
	rest, ok := strings.CutPrefix(u.Path, "/note/")
	if !ok {
		return ""
	}
	rest = strings.Trim(rest, "/")
	if strings.Contains(rest, "/") {
		return ""
	}
	return rest
}
