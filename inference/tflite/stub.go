//go:build !(tflite && cgo)

package tflite

import (
	"errors"

	"github.com/7blacky7/seglive/inference"
)

// ErrNotBuilt wird zurueckgegeben wenn ohne -tags tflite oder ohne CGO gebaut wurde
var ErrNotBuilt = errors.New("tflite: built without tflite tag or cgo")

func init() {
	inference.Register("tflite", Open)
}

// Open Stub - gibt immer Fehler zurueck
func Open(cfg inference.Config) (inference.Session, error) {
	return nil, ErrNotBuilt
}
