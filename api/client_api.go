// Package api - Einfache API-Methoden des Clients.

package api

import (
	"context"
	"image"
	"image/png"
	"io"
	"net/http"
)

// Heartbeat checks if the server has started and is responsive; if yes, it
// returns nil, otherwise an error.
func (c *Client) Heartbeat(ctx context.Context) error {
	if err := c.do(ctx, http.MethodHead, "/", nil, nil); err != nil {
		return err
	}
	return nil
}

// Version returns the seglive server version as a string.
func (c *Client) Version(ctx context.Context) (string, error) {
	var version VersionResponse
	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &version); err != nil {
		return "", err
	}

	return version.Version, nil
}

// Overlay holt den zuletzt veroeffentlichten Snapshot.
// Vor der ersten Veroeffentlichung liefert der Server 404 als StatusError.
func (c *Client) Overlay(ctx context.Context) (*OverlayResponse, error) {
	var resp OverlayResponse
	if err := c.do(ctx, http.MethodGet, "/api/overlay", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats holt die Zaehler der Pipeline.
func (c *Client) Stats(ctx context.Context) (*StatsResponse, error) {
	var resp StatsResponse
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RequestDump fordert den Debug-Export fuer den naechsten Zyklus an.
func (c *Client) RequestDump(ctx context.Context) (*DumpResponse, error) {
	var resp DumpResponse
	if err := c.do(ctx, http.MethodPost, "/api/dump", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Crop laedt den zuletzt gespeicherten Crop als Bild.
func (c *Client) Crop(ctx context.Context) (image.Image, error) {
	resp, err := c.request(ctx, http.MethodGet, "/api/crop.png", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return nil, checkError(resp, body)
	}
	return png.Decode(resp.Body)
}
