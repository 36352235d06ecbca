package health

import "context"

// Pinger checks one backing component's connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
