// cmd_watch.go - Laufenden Server beobachten
// Hauptfunktionen: WatchHandler, watchOnce, checkServerHeartbeat
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/7blacky7/seglive/api"
)

// maxWatchPoints begrenzt die Punkt-Tabelle im Terminal
const maxWatchPoints = 10

// fetchOverlay - nil ohne Fehler solange noch nichts veroeffentlicht wurde
func fetchOverlay(ctx context.Context, client *api.Client) (*api.OverlayResponse, error) {
	ov, err := client.Overlay(ctx)
	var se api.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	return ov, err
}

// watchOnce - Eine Abfrage, im Terminal als Bildschirm, sonst als Zeile
func watchOnce(ctx context.Context, client *api.Client, w io.Writer, tty bool) error {
	stats, err := client.Stats(ctx)
	if err != nil {
		return err
	}
	ov, err := fetchOverlay(ctx, client)
	if err != nil {
		return err
	}

	if !tty {
		seq, points := uint64(0), 0
		if ov != nil {
			seq, points = ov.Seq, len(ov.Points)
		}
		fmt.Fprintf(w, "%s seq=%d points=%d state=%s delivered=%d dropped=%d failures=%d inference=%s\n",
			time.Now().Format(time.TimeOnly), seq, points, stats.State, stats.Delivered, stats.Dropped, stats.Failures, stats.LastInference)
		return nil
	}

	// Cursor nach oben links, Bildschirm leeren
	fmt.Fprint(w, "\033[H\033[2J")
	stats.Summary(w)
	if ov == nil {
		fmt.Fprintln(w, "\nno overlay yet")
		return nil
	}

	fmt.Fprintln(w)
	for _, line := range ov.Debug {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)

	var data [][]string
	for i, p := range ov.Points {
		if i == maxWatchPoints {
			data = append(data, []string{"...", "", "", ""})
			break
		}
		data = append(data, []string{
			fmt.Sprintf("%d,%d", p.Row, p.Col),
			fmt.Sprintf("%.1f", p.X),
			fmt.Sprintf("%.1f", p.Y),
			fmt.Sprintf("%.3f", p.Score),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"CELL", "X", "Y", "SCORE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
	return nil
}

// WatchHandler - Fragt den Server im Intervall ab bis Ctrl+C
func WatchHandler(cmd *cobra.Command, _ []string) error {
	interval, _ := cmd.Flags().GetDuration("interval")
	if interval <= 0 {
		interval = time.Second
	}

	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tty := term.IsTerminal(int(os.Stdout.Fd()))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := watchOnce(ctx, client, os.Stdout, tty); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// checkServerHeartbeat - Prueft ob der Server laeuft
func checkServerHeartbeat(cmd *cobra.Command, _ []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}
	if err := client.Heartbeat(cmd.Context()); err != nil {
		return fmt.Errorf("seglive server not responding at %s - %w", client.Base(), err)
	}
	return nil
}

// newWatchCmd - Erstellt den watch Command
func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch",
		Short:   "Poll overlay and counters of a running server",
		Args:    cobra.ExactArgs(0),
		PreRunE: checkServerHeartbeat,
		RunE:    WatchHandler,
	}

	cmd.Flags().Duration("interval", time.Second, "Poll interval")

	return cmd
}
