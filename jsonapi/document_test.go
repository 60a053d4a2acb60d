package jsonapi_test

import (
	"testing"

	"github.com/mickamy/jsonapi-hydrator/jsonapi"
)

func TestURLsTrailingSlash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base string
		want string
	}{
		{"http://localhost/api/v1", "http://localhost/api/v1/downloads/5"},
		{"http://localhost/api/v1/", "http://localhost/api/v1/downloads/5"},
		{"", "/downloads/5"},
	}
	for _, tt := range tests {
		if got := jsonapi.NewURLs(tt.base).Resource("downloads", "5"); got != tt.want {
			t.Errorf("NewURLs(%q).Resource = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestRelationshipLinks(t *testing.T) {
	t.Parallel()

	links := jsonapi.RelationshipLinks("http://localhost/posts/1", "author")
	if got := links["self"]; got != "http://localhost/posts/1/relationships/author" {
		t.Errorf("self = %q", got)
	}
	if got := links["related"]; got != "http://localhost/posts/1/author" {
		t.Errorf("related = %q", got)
	}
}

func TestIdentifierString(t *testing.T) {
	t.Parallel()

	id := jsonapi.Identifier{Type: "tags", ID: "a"}
	if got := id.String(); got != "tags:a" {
		t.Errorf("String() = %q, want %q", got, "tags:a")
	}
	ids := jsonapi.IDs([]jsonapi.Identifier{id, {Type: "tags", ID: "b"}})
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("IDs() = %v", ids)
	}
}
