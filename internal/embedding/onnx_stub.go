//go:build !cgo

package embedding

import "errors"

// ONNXEmbedder is unavailable without CGO (see onnx.go).
type ONNXEmbedder struct{ Embedder }

// NewONNXEmbedder returns an error when built without CGO.
func NewONNXEmbedder(_ string, _, _ int) (*ONNXEmbedder, error) {
	return nil, errors.New("ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}
