package act

import "fmt"

// ErrLoginFailed indicates the W3ACT login did not yield a session cookie.
type ErrLoginFailed struct {
	Err error
}

func (e ErrLoginFailed) Error() string {
	return fmt.Errorf("w3act login failed: %w", e.Err).Error()
}

func (e ErrLoginFailed) Unwrap() error {
	return e.Err
}

// ErrStatus indicates a non-200 response from a W3ACT endpoint.
type ErrStatus struct {
	Path string
	Code int
}

func (e ErrStatus) Error() string {
	return fmt.Sprintf("w3act returned status %d for %s", e.Code, e.Path)
}

// ErrMalformedExport indicates an export payload that could not be
// decoded. This is fatal to the run: a structurally broken dataset must
// not silently become an empty export.
type ErrMalformedExport struct {
	Path string
	Err  error
}

func (e ErrMalformedExport) Error() string {
	return fmt.Errorf("malformed w3act export %s: %w", e.Path, e.Err).Error()
}

func (e ErrMalformedExport) Unwrap() error {
	return e.Err
}
