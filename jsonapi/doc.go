// Package jsonapi models the parts of a JSON:API document this module
// consumes and produces: resource identifiers, to-one and to-many
// relationships, incoming resource objects and outgoing documents.
package jsonapi
