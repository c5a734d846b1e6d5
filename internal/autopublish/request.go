package autopublish

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// minContentLength is the shortest content, after trimming, that may be
// pushed to the publish transport.
const minContentLength = 100

// ArticleContent is the editorial payload of an article as it comes out of
// the content store.
type ArticleContent struct {
	Title           string
	Content         string
	Excerpt         string
	Slug            string
	MetaTitle       string
	MetaDescription string
}

// PublishRequest is the transport-ready payload sent to the CMS.
type PublishRequest struct {
	Title           string `json:"title"`
	Content         string `json:"content"`
	Status          string `json:"status"`
	Excerpt         string `json:"excerpt,omitempty"`
	Slug            string `json:"slug,omitempty"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
}

// ValidationResult is the accumulated outcome of a publish validation.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateContent checks that an article is shaped well enough to publish.
// All violations are accumulated so the caller can report them together.
func ValidateContent(a ArticleContent) ValidationResult {
	var errs []string
	if strings.TrimSpace(a.Title) == "" {
		errs = append(errs, "title must not be empty")
	}
	if utf8.RuneCountInString(strings.TrimSpace(a.Content)) < minContentLength {
		errs = append(errs, fmt.Sprintf("content must be at least %d characters", minContentLength))
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// PrepareForPublish shapes article content into the transport payload.
// The meta title falls back to the title and the meta description to the
// excerpt when not set. Pure mapping, no I/O.
func PrepareForPublish(a ArticleContent) PublishRequest {
	req := PublishRequest{
		Title:           a.Title,
		Content:         a.Content,
		Status:          "publish",
		Excerpt:         a.Excerpt,
		Slug:            a.Slug,
		MetaTitle:       a.MetaTitle,
		MetaDescription: a.MetaDescription,
	}
	if req.MetaTitle == "" {
		req.MetaTitle = a.Title
	}
	if req.MetaDescription == "" {
		req.MetaDescription = a.Excerpt
	}
	return req
}
