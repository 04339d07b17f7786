package httpd

import "context"

// HTTPd is the interface for pyxis to provide the HTTP daemon.
type HTTPd interface {
	Serve(ctx context.Context) error
}
