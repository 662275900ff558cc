package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/spf13/cobra"
)

type lookupParams struct {
	Phone string `url:"phone"`
}

type lookupOptions struct {
	baseURL  string
	password string
	token    string
	timeout  time.Duration
}

func newLookupCmd() *cobra.Command {
	opts := lookupOptions{}
	cmd := &cobra.Command{
		Use:   "lookup <phone>",
		Short: "Query a running service for a guest's bonus balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := lookup(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(body)
			return err
		},
	}
	cmd.Flags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "service base URL")
	cmd.Flags().StringVar(&opts.password, "password", "", "staff password, sent as X-Staff-Password")
	cmd.Flags().StringVar(&opts.token, "token", "", "staff session token from /api/auth/login")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")
	return cmd
}

func lookup(ctx context.Context, opts lookupOptions, phone string) ([]byte, error) {
	v, err := query.Values(lookupParams{Phone: phone})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	endpoint := strings.TrimRight(opts.baseURL, "/") + "/api/bonus-lookup?" + v.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	switch {
	case opts.token != "":
		req.Header.Set("Authorization", "Bearer "+opts.token)
	case opts.password != "":
		req.Header.Set("X-Staff-Password", opts.password)
	}

	client := &http.Client{Timeout: opts.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bonus lookup: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unexpected response (status %d): %w", resp.StatusCode, err)
	}
	if !env.Success {
		return nil, fmt.Errorf("bonus lookup failed (status %d): %s", resp.StatusCode, env.Message)
	}
	return raw, nil
}
