// cmd.go - Haupt-CLI Aufbau
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/containerd/console"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/7blacky7/seglive/envconfig"

	// Backends registrieren sich per init, ohne Build-Tags als Stub
	_ "github.com/7blacky7/seglive/inference/onnx"
	_ "github.com/7blacky7/seglive/inference/tflite"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cobra.EnableCommandSorting = false

	// watch zeichnet mit ANSI-Sequenzen, die Windows-Konsole braucht VT-Modus
	if runtime.GOOS == "windows" && term.IsTerminal(int(os.Stdout.Fd())) {
		console.ConsoleFromFile(os.Stdin) //nolint:errcheck
	}

	rootCmd := &cobra.Command{
		Use:           "seglive",
		Short:         "Live segmentation overlay for camera frames",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	serveCmd := newServeCmd()
	benchCmd := newBenchCmd()
	watchCmd := newWatchCmd()

	// Environment-Dokumentation hinzufuegen
	envVars := envconfig.AsMap()
	pipelineEnvs := []envconfig.EnvVar{
		envVars["SEGLIVE_BACKEND"],
		envVars["SEGLIVE_MODEL"],
		envVars["SEGLIVE_INPUT_NAME"],
		envVars["SEGLIVE_OUTPUT_NAME"],
		envVars["SEGLIVE_NUM_THREADS"],
		envVars["SEGLIVE_CROP_SIZE"],
		envVars["SEGLIVE_THRESHOLD"],
		envVars["SEGLIVE_IMAGE_MEAN"],
		envVars["SEGLIVE_IMAGE_STD"],
		envVars["SEGLIVE_MAINTAIN_ASPECT"],
		envVars["SEGLIVE_LAYOUT"],
		envVars["SEGLIVE_INTERPOLATION"],
		envVars["SEGLIVE_CELL_ORIGIN"],
		envVars["SEGLIVE_GRID_ORDER"],
		envVars["SEGLIVE_CONVERT_WORKERS"],
	}

	appendEnvDocs(serveCmd, append([]envconfig.EnvVar{
		envVars["SEGLIVE_DEBUG"],
		envVars["SEGLIVE_HOST"],
		envVars["SEGLIVE_ORIGINS"],
		envVars["SEGLIVE_PREVIEW"],
		envVars["SEGLIVE_FPS"],
		envVars["SEGLIVE_ROTATION"],
		envVars["SEGLIVE_COLLECT_STATS"],
		envVars["SEGLIVE_DUMP_DIR"],
		envVars["SEGLIVE_DUMP_EVERY"],
		envVars["SEGLIVE_KEEP_CROP"],
	}, pipelineEnvs...))
	appendEnvDocs(benchCmd, pipelineEnvs)
	appendEnvDocs(watchCmd, []envconfig.EnvVar{envVars["SEGLIVE_HOST"]})

	rootCmd.AddCommand(
		serveCmd,
		benchCmd,
		watchCmd,
	)

	return rootCmd
}
