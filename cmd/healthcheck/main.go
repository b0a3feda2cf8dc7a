// Command healthcheck is the container HEALTHCHECK for fundintake. It exits
// non-zero unless the server reports a reachable database and a clean,
// fully migrated schema.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"
)

const (
	healthPath  = "/api/v1/health"
	timeout     = 2 * time.Second
	maxBodySize = 16 << 10
)

// health mirrors the fields of the server's health body that decide the exit
// code.
type health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Schema   *struct {
		Version uint `json:"version"`
		Latest  uint `json:"latest"`
		Dirty   bool `json:"dirty"`
	} `json:"schema"`
}

func main() {
	os.Exit(run(os.Getenv("FUNDINTAKE_LISTEN_ADDR"), os.Stderr))
}

func run(listenAddr string, stderr io.Writer) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	url := "http://" + normalizeAddr(listenAddr) + healthPath
	if err := check(ctx, &http.Client{Timeout: timeout}, url); err != nil {
		_, _ = fmt.Fprintf(stderr, "unhealthy: %v\n", err)
		return 1
	}
	return 0
}

// check fetches url and returns an error describing the first unhealthy
// component.
func check(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var h health
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&h); err != nil {
		return fmt.Errorf("decode health body (HTTP %d): %w", resp.StatusCode, err)
	}

	switch {
	case h.Database != "ok":
		return fmt.Errorf("database %q", h.Database)
	case h.Schema == nil:
		return errors.New("schema state missing")
	case h.Schema.Dirty:
		return fmt.Errorf("schema version %d is dirty", h.Schema.Version)
	case h.Schema.Version != h.Schema.Latest:
		return fmt.Errorf("schema version %d, want %d", h.Schema.Version, h.Schema.Latest)
	case resp.StatusCode != http.StatusOK || h.Status != "ok":
		return fmt.Errorf("status %q (HTTP %d)", h.Status, resp.StatusCode)
	}
	return nil
}

// normalizeAddr points the check at loopback when the server binds every
// interface, since it runs inside the same container.
func normalizeAddr(raw string) string {
	const fallback = "127.0.0.1:8080"

	host, port, err := net.SplitHostPort(raw)
	if raw == "" || err != nil {
		return fallback
	}

	switch host {
	case "", "0.0.0.0":
		host = "127.0.0.1"
	case "::":
		host = "::1"
	}
	return net.JoinHostPort(host, port)
}
