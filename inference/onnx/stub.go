//go:build !(onnx && cgo)

// MODUL: onnx/stub
// ZWECK: Stub-Backend wenn ONNX Runtime nicht eingebaut ist
// HINWEISE: Registriert "onnx", Open schlaegt immer fehl

package onnx

import (
	"errors"

	"github.com/7blacky7/seglive/inference"
)

// ErrNotBuilt wird zurueckgegeben wenn ohne -tags onnx oder ohne CGO gebaut wurde
var ErrNotBuilt = errors.New("onnx: built without onnx tag or cgo")

func init() {
	inference.Register("onnx", Open)
}

// Open Stub - gibt immer Fehler zurueck
func Open(cfg inference.Config) (inference.Session, error) {
	return nil, ErrNotBuilt
}
