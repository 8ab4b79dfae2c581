package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// client is a minimal JSON-over-HTTP helper shared by every subcommand. It
// deliberately knows nothing about the workflow domain types — the server
// is the single source of truth for shapes, the CLI just forwards bytes.
type client struct {
	baseURL string
	http    *http.Client
}

func clientFromFlags(cmd *cobra.Command) (*client, error) {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return nil, err
	}
	return &client{
		baseURL: addr,
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (c *client) do(method, path string, body any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return out, fmt.Errorf("%s %s: server returned %d: %v", method, path, resp.StatusCode, out["error"])
	}
	return out, nil
}

func printResult(cmd *cobra.Command, result map[string]any) error {
	format, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	if format == "json" || result == nil {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	for k, v := range result {
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %v\n", k+":", v)
	}
	return nil
}
