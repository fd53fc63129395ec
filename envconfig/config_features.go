// config_features.go - Pipeline-, Modell- und Debug-Konfiguration
//
// Dieses Modul enthaelt:
// - Inference-Backend und Modell-Variablen
// - Geometrie- und Tensor-Einstellungen
// - Quellen- und Debug-Einstellungen
package envconfig

// =============================================================================
// Inference-Backend
// =============================================================================

var (
	// Backend waehlt den registrierten Inference-Backend-Namen
	Backend = StringWithDefault("SEGLIVE_BACKEND", "synthetic")

	// Model ist der Pfad zur Modelldatei (.onnx, .tflite)
	Model = String("SEGLIVE_MODEL")

	// InputName ist der Name des Eingabe-Tensors
	InputName = StringWithDefault("SEGLIVE_INPUT_NAME", "input_1")

	// OutputName ist der Name des Ausgabe-Tensors
	OutputName = StringWithDefault("SEGLIVE_OUTPUT_NAME", "activation_16/Sigmoid")

	// NumThreads setzt die Intra-Op Threads des Backends
	NumThreads = Uint("SEGLIVE_NUM_THREADS", 0)

	// CollectStats sammelt Laufzeit-Statistiken pro Inference
	CollectStats = Bool("SEGLIVE_COLLECT_STATS")
)

// =============================================================================
// Geometrie und Tensor
// =============================================================================

var (
	// CropSize ist die Kantenlaenge des quadratischen Modell-Eingangs
	CropSize = Uint("SEGLIVE_CROP_SIZE", 128)

	// Threshold ist die Aktivierungsschwelle (strikt groesser)
	Threshold = Float("SEGLIVE_THRESHOLD", 0.2)

	// ImageMean wird von jedem Kanal abgezogen
	ImageMean = Float("SEGLIVE_IMAGE_MEAN", 128)

	// ImageStd teilt jeden Kanal nach Abzug des Mittelwerts
	ImageStd = Float("SEGLIVE_IMAGE_STD", 128)

	// MaintainAspect fuellt den Crop mit einheitlicher Skalierung
	MaintainAspect = BoolWithDefault("SEGLIVE_MAINTAIN_ASPECT")

	// Layout ist "planar" oder "interleaved"
	Layout = StringWithDefault("SEGLIVE_LAYOUT", "planar")

	// Interpolation ist "nearest" oder "bilinear"
	Interpolation = StringWithDefault("SEGLIVE_INTERPOLATION", "nearest")

	// CellOrigin ist "center" oder "corner"
	CellOrigin = StringWithDefault("SEGLIVE_CELL_ORIGIN", "center")

	// GridOrder ist "row" oder "column"
	GridOrder = StringWithDefault("SEGLIVE_GRID_ORDER", "row")

	// Rotation der Kamera in Grad
	Rotation = Int("SEGLIVE_ROTATION", 0)
)

// =============================================================================
// Quellen
// =============================================================================

var (
	// FPS der eingebauten Bildquellen
	FPS = Uint("SEGLIVE_FPS", 30)

	// ConvertWorkers ist die Anzahl paralleler Zeilenbaender
	ConvertWorkers = Uint("SEGLIVE_CONVERT_WORKERS", 1)
)

// =============================================================================
// Debug-Export
// =============================================================================

var (
	// DumpDir ist das Zielverzeichnis fuer Tensor-Dumps
	DumpDir = String("SEGLIVE_DUMP_DIR")

	// DumpEvery schreibt Dumps in jedem Zyklus
	DumpEvery = Bool("SEGLIVE_DUMP_EVERY")

	// KeepCrop haelt eine Kopie des letzten Crops
	KeepCrop = Bool("SEGLIVE_KEEP_CROP")
)
