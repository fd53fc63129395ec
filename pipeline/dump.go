package pipeline

import (
	"bufio"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
)

// CropDumpName ist der Dateiname des exportierten Crops
const CropDumpName = "crop.png"

// dumpCrop schreibt den Crop als PNG. Fehler werden nur geloggt.
func dumpCrop(path string, img *image.RGBA) {
	if err := writePNG(path, img); err != nil {
		slog.Warn("crop dump failed", "path", path, "error", err)
	}
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := png.Encode(w, img); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}
