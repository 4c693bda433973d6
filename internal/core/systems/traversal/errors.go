package traversal

import "errors"

var (
	ErrAgentNotFound  = errors.New("agent not found")
	ErrNotInitialized = errors.New("traversal system is not initialized")
	ErrShutdown       = errors.New("traversal system is shut down")
)
