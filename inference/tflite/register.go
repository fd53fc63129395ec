//go:build tflite && cgo

package tflite

import "github.com/7blacky7/seglive/inference"

func init() {
	inference.Register("tflite", Open)
}
