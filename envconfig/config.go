// config.go - Haupt-Konfigurationsfunktionen fuer seglive
//
// Dieses Modul enthaelt:
// - Host: Gibt Scheme und Host zurueck (SEGLIVE_HOST)
// - AllowedOrigins: Gibt erlaubte Origins zurueck (SEGLIVE_ORIGINS)
// - LogLevel: Gibt Log-Level zurueck (SEGLIVE_DEBUG)
// - Preview: Gibt die Vorschau-Groesse zurueck (SEGLIVE_PREVIEW)
//
// Weitere Konfigurationen sind ausgelagert:
// - config_features.go: Pipeline-, Modell- und Debug-Variablen
// - config_utils.go: Utility-Funktionen und AsMap/Values
package envconfig

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Host gibt Scheme und Host zurueck
// Konfigurierbar via SEGLIVE_HOST
// Default: http://127.0.0.1:11534
func Host() *url.URL {
	defaultPort := "11534"

	s := strings.TrimSpace(Var("SEGLIVE_HOST"))
	scheme, hostport, ok := strings.Cut(s, "://")
	switch {
	case !ok:
		scheme, hostport = "http", s
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		slog.Warn("invalid port, using default", "port", port, "default", defaultPort)
		port = defaultPort
	}

	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, port),
		Path:   path,
	}
}

// AllowedOrigins gibt erlaubte Origins zurueck
// Konfigurierbar via SEGLIVE_ORIGINS (komma-separiert)
// Enthaelt Standard-Origins fuer localhost
func AllowedOrigins() (origins []string) {
	if s := Var("SEGLIVE_ORIGINS"); s != "" {
		origins = strings.Split(s, ",")
	}

	for _, origin := range []string{"localhost", "127.0.0.1", "0.0.0.0"} {
		origins = append(origins,
			fmt.Sprintf("http://%s", origin),
			fmt.Sprintf("https://%s", origin),
			fmt.Sprintf("http://%s", net.JoinHostPort(origin, "*")),
			fmt.Sprintf("https://%s", net.JoinHostPort(origin, "*")),
		)
	}

	// Renderer laufen haeufig als lokale Datei oder Webview
	origins = append(origins,
		"app://*",
		"file://*",
		"vscode-webview://*",
	)

	return origins
}

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via SEGLIVE_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("SEGLIVE_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Preview gibt die angenommene Vorschau-Groesse der Kamera zurueck
// Konfigurierbar via SEGLIVE_PREVIEW im Format BREITExHOEHE
// Default: 640x480
func Preview() (width, height int) {
	width, height = 640, 480
	s := Var("SEGLIVE_PREVIEW")
	if s == "" {
		return width, height
	}

	w, h, err := ParseSize(s)
	if err != nil {
		slog.Warn("invalid environment variable, using default", "key", "SEGLIVE_PREVIEW", "value", s, "default", "640x480")
		return width, height
	}
	return w, h
}

// ParseSize liest eine Groesse im Format BREITExHOEHE
func ParseSize(s string) (width, height int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: expected WIDTHxHEIGHT", s)
	}
	width, err = strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	height, err = strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("size %q: must be positive", s)
	}
	return width, height, nil
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
