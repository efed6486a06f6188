// Package publisher pushes a finished site directory to its hosting target.
// Publishing is a one-shot operation per deploy request; failures surface to
// the caller and are safe to retry by issuing another deploy.
package publisher

import "context"

// Publisher deploys the contents of a site directory.
type Publisher interface {
	// Mode names the publish backend for logs and metrics.
	Mode() string

	// Deploy synchronizes dir with the hosting target.
	Deploy(ctx context.Context, dir string) error
}

// Noop is the publisher for deployments without a hosting target. Deploys
// succeed without doing anything, which keeps the pipeline exercisable in
// development.
type Noop struct{}

func (Noop) Mode() string                         { return "none" }
func (Noop) Deploy(context.Context, string) error { return nil }
