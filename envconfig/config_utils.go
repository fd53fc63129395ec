// config_utils.go - Utility-Funktionen und Export fuer Konfiguration
//
// Dieses Modul enthaelt:
// - BoolWithDefault/Bool: Boolean-Getter mit Default-Wert
// - String/StringWithDefault: String-Getter
// - Uint/Int: Integer-Getter mit Default-Wert
// - Float: Float-Getter mit Default-Wert
// - EnvVar: Struktur fuer Environment-Variablen-Info
// - AsMap: Gibt alle Konfigurationen als Map zurueck
// - Values: Gibt alle Konfigurationswerte als String-Map zurueck
package envconfig

import (
	"fmt"
	"log/slog"
	"strconv"
)

// =============================================================================
// Boolean-Getter
// =============================================================================

// BoolWithDefault gibt eine Funktion zurueck, die einen Bool mit Default-Wert liest
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool gibt eine Funktion zurueck, die einen Bool liest (Default: false)
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// =============================================================================
// String-Getter
// =============================================================================

// String gibt eine Funktion zurueck, die einen String liest
func String(s string) func() string {
	return func() string {
		return Var(s)
	}
}

// StringWithDefault gibt eine Funktion zurueck, die einen String mit Default liest
func StringWithDefault(key, defaultValue string) func() string {
	return func() string {
		if s := Var(key); s != "" {
			return s
		}
		return defaultValue
	}
}

// =============================================================================
// Zahlen-Getter
// =============================================================================

// Uint gibt eine Funktion zurueck, die einen uint mit Default-Wert liest
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// Int gibt eine Funktion zurueck, die einen int mit Default-Wert liest.
// Negative Werte sind erlaubt (z.B. Rotation -90).
func Int(key string, defaultValue int) func() int {
	return func() int {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseInt(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return int(n)
			}
		}
		return defaultValue
	}
}

// Float gibt eine Funktion zurueck, die einen float32 mit Default-Wert liest
func Float(key string, defaultValue float32) func() float32 {
	return func() float32 {
		if s := Var(key); s != "" {
			if f, err := strconv.ParseFloat(s, 32); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return float32(f)
			}
		}
		return defaultValue
	}
}

// =============================================================================
// Export-Strukturen und -Funktionen
// =============================================================================

// EnvVar repraesentiert eine Environment-Variable mit Metadaten
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap gibt alle Konfigurationen als Map zurueck
// Enthaelt Namen, aktuelle Werte und Beschreibungen
func AsMap() map[string]EnvVar {
	pw, ph := Preview()
	return map[string]EnvVar{
		"SEGLIVE_DEBUG":           {"SEGLIVE_DEBUG", LogLevel(), "Show additional debug information (e.g. SEGLIVE_DEBUG=1)"},
		"SEGLIVE_HOST":            {"SEGLIVE_HOST", Host(), "IP Address for the overlay server (default 127.0.0.1:11534)"},
		"SEGLIVE_ORIGINS":         {"SEGLIVE_ORIGINS", AllowedOrigins(), "A comma separated list of allowed origins"},
		"SEGLIVE_BACKEND":         {"SEGLIVE_BACKEND", Backend(), "Inference backend: synthetic, onnx, tflite (default synthetic)"},
		"SEGLIVE_MODEL":           {"SEGLIVE_MODEL", Model(), "Path to the segmentation model file"},
		"SEGLIVE_INPUT_NAME":      {"SEGLIVE_INPUT_NAME", InputName(), "Model input tensor name (default \"input_1\")"},
		"SEGLIVE_OUTPUT_NAME":     {"SEGLIVE_OUTPUT_NAME", OutputName(), "Model output tensor name (default \"activation_16/Sigmoid\")"},
		"SEGLIVE_NUM_THREADS":     {"SEGLIVE_NUM_THREADS", NumThreads(), "Intra-op threads for the inference backend (0 = backend default)"},
		"SEGLIVE_COLLECT_STATS":   {"SEGLIVE_COLLECT_STATS", CollectStats(), "Collect backend run statistics for the debug overlay"},
		"SEGLIVE_CROP_SIZE":       {"SEGLIVE_CROP_SIZE", CropSize(), "Model input edge length in pixels (default 128)"},
		"SEGLIVE_THRESHOLD":       {"SEGLIVE_THRESHOLD", Threshold(), "Activation threshold, cells strictly above are drawn (default 0.2)"},
		"SEGLIVE_IMAGE_MEAN":      {"SEGLIVE_IMAGE_MEAN", ImageMean(), "Per channel mean subtracted before inference (default 128)"},
		"SEGLIVE_IMAGE_STD":       {"SEGLIVE_IMAGE_STD", ImageStd(), "Per channel standard deviation (default 128)"},
		"SEGLIVE_MAINTAIN_ASPECT": {"SEGLIVE_MAINTAIN_ASPECT", MaintainAspect(true), "Fill the crop with a uniform scale instead of stretching"},
		"SEGLIVE_LAYOUT":          {"SEGLIVE_LAYOUT", Layout(), "Tensor layout: planar or interleaved (default planar)"},
		"SEGLIVE_INTERPOLATION":   {"SEGLIVE_INTERPOLATION", Interpolation(), "Crop resampling: nearest or bilinear (default nearest)"},
		"SEGLIVE_CELL_ORIGIN":     {"SEGLIVE_CELL_ORIGIN", CellOrigin(), "Overlay reference point: center or corner (default center)"},
		"SEGLIVE_GRID_ORDER":      {"SEGLIVE_GRID_ORDER", GridOrder(), "Activation grid order: row or column (default row)"},
		"SEGLIVE_ROTATION":        {"SEGLIVE_ROTATION", Rotation(), "Sensor rotation in degrees, multiple of 90"},
		"SEGLIVE_PREVIEW":         {"SEGLIVE_PREVIEW", fmt.Sprintf("%dx%d", pw, ph), "Preview frame size (default 640x480)"},
		"SEGLIVE_FPS":             {"SEGLIVE_FPS", FPS(), "Frame rate of the built-in sources (default 30)"},
		"SEGLIVE_CONVERT_WORKERS": {"SEGLIVE_CONVERT_WORKERS", ConvertWorkers(), "Row bands converted in parallel (default 1)"},
		"SEGLIVE_DUMP_DIR":        {"SEGLIVE_DUMP_DIR", DumpDir(), "Directory for net_ins.json, net_outs.json and crop.png"},
		"SEGLIVE_DUMP_EVERY":      {"SEGLIVE_DUMP_EVERY", DumpEvery(), "Dump tensors on every cycle instead of on request"},
		"SEGLIVE_KEEP_CROP":       {"SEGLIVE_KEEP_CROP", KeepCrop(), "Keep a copy of the last crop for /api/crop.png"},
	}
}

// Values gibt alle Konfigurationswerte als String-Map zurueck
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
