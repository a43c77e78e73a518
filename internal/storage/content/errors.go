package content

import "errors"

var (
	// ErrWorkspaceNotFound is returned for reads/updates of a missing workspace.
	ErrWorkspaceNotFound = errors.New("workspace not found")
	// ErrCanvasNotFound is returned by Get for a missing canvas. Updates do
	// not return it: a canvas update is an upsert.
	ErrCanvasNotFound = errors.New("canvas not found")

	errTenantRequired = errors.New("tenant is required")
	errIDRequired     = errors.New("id is required")
)
