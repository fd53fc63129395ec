//go:build onnx && cgo

package onnx

import "github.com/7blacky7/seglive/inference"

func init() {
	inference.Register("onnx", Open)
}
