package tenant

import "context"

// Source loads raw tenant JSON blobs from a backing store. Concrete
// implementations wrap a specific storage backend (local filesystem,
// object storage, or a SQL/NoSQL database); Registry is agnostic to which
// one is configured.
type Source interface {
	// Load returns the raw JSON document for tenant id, or an error if it
	// does not exist in this backend.
	Load(ctx context.Context, id string) ([]byte, error)
	// ListIDs enumerates every tenant id available from this backend.
	ListIDs(ctx context.Context) ([]string, error)
}
