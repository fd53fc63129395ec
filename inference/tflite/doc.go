// Package tflite stellt das Backend "tflite" auf Basis von TensorFlow Lite bereit.
//
// Ohne die Build-Tags tflite und cgo registriert das Paket nur einen Stub.
//
//	go build -tags tflite ./...
package tflite
