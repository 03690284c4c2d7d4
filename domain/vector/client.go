package vector

import "context"

// Client is the capability the adapter needs from a vector database.
// Implementations return transport errors unchanged.
type Client interface {
	ListCollections(ctx context.Context) ([]string, error)
	CreateCollection(ctx context.Context, name string, cfg CollectionConfig) error
	Upsert(ctx context.Context, collection string, req UpsertRequest) error
	Search(ctx context.Context, collection string, req SearchRequest) ([]ScoredPoint, error)
	Scroll(ctx context.Context, collection string, req ScrollRequest) ([]Point, error)
	Retrieve(ctx context.Context, collection string, req RetrieveRequest) ([]Point, error)
	Close() error
}
