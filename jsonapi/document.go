package jsonapi

import (
	"strings"
)

// MediaType is the JSON:API content type.
const MediaType = "application/vnd.api+json"

// Document is an outgoing document with primary data. Data is a
// ResourceObject or a []ResourceObject.
type Document struct {
	Data  any               `json:"data"`
	Links map[string]string `json:"links,omitempty"`
	Meta  map[string]any    `json:"meta,omitempty"`
}

// ResourceObject is an outgoing resource object.
type ResourceObject struct {
	Type          string                        `json:"type"`
	ID            string                        `json:"id"`
	Attributes    map[string]any                `json:"attributes,omitempty"`
	Relationships map[string]RelationshipObject `json:"relationships,omitempty"`
	Links         map[string]string             `json:"links,omitempty"`
}

// RelationshipObject is an outgoing relationship carrying links only.
type RelationshipObject struct {
	Links map[string]string `json:"links"`
}

// ErrorDocument is a top-level errors document.
type ErrorDocument struct {
	Errors []ErrorObject `json:"errors"`
}

// ErrorObject describes a single problem.
type ErrorObject struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// URLs builds resource links under a common base such as
// "http://localhost/api/v1".
type URLs struct {
	base string
}

// NewURLs returns a URLs rooted at base. A trailing slash is ignored.
func NewURLs(base string) URLs {
	return URLs{base: strings.TrimRight(base, "/")}
}

// Base returns the root all links are built on.
func (u URLs) Base() string { return u.base }

// Collection returns the link for a resource type: {base}/{type}.
func (u URLs) Collection(typ string) string {
	return u.base + "/" + typ
}

// Resource returns the self link of a resource: {base}/{type}/{id}.
func (u URLs) Resource(typ, id string) string {
	return u.Collection(typ) + "/" + id
}

// RelationshipLinks returns the self and related links of a relationship
// on the resource whose self link is self.
func RelationshipLinks(self, name string) map[string]string {
	return map[string]string{
		"self":    self + "/relationships/" + name,
		"related": self + "/" + name,
	}
}
