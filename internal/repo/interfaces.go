package repo

import "context"

// Gateway performs authenticated JSON calls against the backend. Implemented
// by the gateway client; stubbed in tests.
type Gateway interface {
	Do(ctx context.Context, method, path string, body, out any) error
}
