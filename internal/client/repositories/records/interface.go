package records

import "context"

// Repository stores opaque payloads under a namespace. Get returns
// (nil, nil) for an absent namespace.
type Repository interface {
	Get(ctx context.Context, namespace string) ([]byte, error)
	Put(ctx context.Context, namespace string, payload []byte) error
	Delete(ctx context.Context, namespace string) error
	List(ctx context.Context) (map[string][]byte, error)
}
