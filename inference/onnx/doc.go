// Package onnx stellt das Backend "onnx" auf Basis von ONNX Runtime bereit.
//
// Ohne die Build-Tags onnx und cgo registriert das Paket nur einen Stub,
// der beim Oeffnen ErrNotBuilt meldet.
//
//	go build -tags onnx ./...
package onnx
