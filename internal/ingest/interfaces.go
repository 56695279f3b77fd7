package ingest

// Walker queries a decoded payload and returns the matching sub-documents.
type Walker interface {
	// Query executes selector against root. root is a generic decoded JSON
	// value (map[string]any, []any or a scalar).
	Query(root any, selector string) ([]Match, error)
}

// Match represents a single result from a query.
type Match interface {
	// Values returns the match as a field map. Scalars are returned under the
	// "value" key.
	Values() map[string]any

	// Context returns the matched value itself, used as the root for building
	// an asset tree.
	Context() any
}
