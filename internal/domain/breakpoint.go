package domain

// BreakpointRequest is a request to set every breakpoint of one source path.
// OnResult receives the lines the server accepted.
type BreakpointRequest struct {
	Path     string
	Lines    []int
	OnResult func(accepted []int)
}
