package tensor

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// Dateinamen fuer den Debug-Export
const (
	InputDumpName  = "net_ins.json"
	OutputDumpName = "net_outs.json"
)

// WriteArray schreibt values als [v0,v1,...,vN] mit drei Nachkommastellen
func WriteArray(w io.Writer, values []float32) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 16)

	if err := bw.WriteByte('['); err != nil {
		return err
	}
	for i, v := range values {
		if i > 0 {
			if err := bw.WriteByte(','); err != nil {
				return err
			}
		}
		buf = strconv.AppendFloat(buf[:0], float64(v), 'f', 3, 32)
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	if err := bw.WriteByte(']'); err != nil {
		return err
	}
	return bw.Flush()
}

// Dump schreibt values nach path und legt das Verzeichnis bei Bedarf an.
// Fehler werden nur geloggt, der Debug-Export darf die Verarbeitung nie beeinflussen.
func Dump(path string, values []float32) {
	if err := dump(path, values); err != nil {
		slog.Warn("tensor dump failed", "path", path, "error", err)
		return
	}
	slog.Debug("tensor dumped", "path", path, "values", len(values))
}

func dump(path string, values []float32) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteArray(f, values); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
