package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type globalOptions struct {
	statusURL    string
	dashboardURL string
	timeout      time.Duration
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "evdashctl",
		Short:         "evdashctl talks to the EV fleet status and dashboard services",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.statusURL, "status-url", envOr("EVDASH_STATUS_URL", "http://localhost:3000"), "status-service base URL")
	flags.StringVar(&opts.dashboardURL, "dashboard-url", envOr("EVDASH_DASHBOARD_URL", "http://localhost:8090"), "dashboard-service base URL")
	flags.DurationVar(&opts.timeout, "timeout", 5*time.Second, "request timeout")

	cmd.AddCommand(
		newPushCommand(opts),
		newStatusCommand(opts),
		newDashboardCommand(opts),
		newRefreshCommand(opts),
	)
	return cmd
}

func newPushCommand(opts *globalOptions) *cobra.Command {
	var (
		fields     = map[string]*string{}
		ocppStatus string
	)
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push a partial charger status",
		Long: `Push a partial status to POST /data. Only the flags you set are sent;
the service keeps its current value for everything else.

--ocpp-status maps an OCPP connector status to the display status
(Charging -> CHARGING, Finishing -> FINISHED, anything else -> STANDBY).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body := map[string]string{}
			for name, v := range fields {
				if *v != "" {
					body[name] = *v
				}
			}
			if ocppStatus != "" && body["status"] == "" {
				body["status"] = displayStatus(ocppStatus)
			}
			if uid := body["uid"]; uid != "" && body["username"] == "" {
				body["username"] = usernameFor(uid)
			}

			payload, err := json.Marshal(body)
			if err != nil {
				return err
			}
			resp, err := do(cmd.Context(), opts, http.MethodPost, opts.statusURL+"/data", payload)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	for _, name := range []string{"uid", "username", "power", "energy", "duration", "status"} {
		fields[name] = cmd.Flags().String(name, "", name+" to set")
	}
	cmd.Flags().StringVar(&ocppStatus, "ocpp-status", "", "OCPP connector status to translate into status")
	return cmd
}

func newStatusCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the latest charger status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := do(cmd.Context(), opts, http.MethodGet, opts.statusURL+"/api/data", nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func newDashboardCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print fleet KPIs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := do(cmd.Context(), opts, http.MethodGet, opts.dashboardURL+"/api/dashboard", nil)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), resp)
		},
	}
}

func newRefreshCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Run a poll cycle now and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := do(cmd.Context(), opts, http.MethodPost, opts.dashboardURL+"/api/dashboard/refresh", nil)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), resp)
		},
	}
}

type dashboardSummary struct {
	Status      string     `json:"status"`
	Error       string     `json:"error"`
	LastSuccess *time.Time `json:"last_success"`
	Metrics     *struct {
		TotalStations   int `json:"total_stations"`
		ActiveSessions  int `json:"active_sessions"`
		SystemHealthPct int `json:"system_health_pct"`
		AlertCount      int `json:"alert_count"`
	} `json:"metrics"`
}

func printSummary(w io.Writer, body []byte) error {
	var s dashboardSummary
	if err := json.Unmarshal(body, &s); err != nil {
		return fmt.Errorf("decode dashboard: %w", err)
	}
	fmt.Fprintf(w, "status:          %s\n", s.Status)
	if s.Error != "" {
		fmt.Fprintf(w, "error:           %s\n", s.Error)
	}
	if s.LastSuccess != nil {
		fmt.Fprintf(w, "last success:    %s\n", s.LastSuccess.Format(time.RFC3339))
	}
	if s.Metrics != nil {
		fmt.Fprintf(w, "stations:        %d\n", s.Metrics.TotalStations)
		fmt.Fprintf(w, "active sessions: %d\n", s.Metrics.ActiveSessions)
		fmt.Fprintf(w, "system health:   %d%%\n", s.Metrics.SystemHealthPct)
		fmt.Fprintf(w, "alerts:          %d\n", s.Metrics.AlertCount)
	}
	return nil
}

func printJSON(w io.Writer, body []byte) error {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}

func do(ctx context.Context, opts *globalOptions, method, url string, body []byte) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		// A failed refresh still carries the dashboard state; show it before failing.
		if resp.StatusCode == http.StatusBadGateway {
			return respBody, nil
		}
		return nil, fmt.Errorf("%s %s: %s: %s", method, url, resp.Status, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

func displayStatus(ocpp string) string {
	switch strings.ToLower(strings.TrimSpace(ocpp)) {
	case "charging":
		return "CHARGING"
	case "finishing":
		return "FINISHED"
	default:
		return "STANDBY"
	}
}

func usernameFor(uid string) string {
	if len(uid) > 4 {
		uid = uid[len(uid)-4:]
	}
	return "User " + uid
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
