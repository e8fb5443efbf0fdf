//go:build !opencl

package water

import "errors"

// NewOpenCLBackend is unavailable without the opencl build tag.
func NewOpenCLBackend(size int) (Backend, error) {
	return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
}
