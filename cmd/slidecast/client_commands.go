package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"slidecast/internal/api"
	"slidecast/internal/config"
)

// apiClient talks to a running serve instance over its bind address.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(configFlag *string) (*apiClient, error) {
	cfg, _, _, err := config.Load(*configFlag)
	if err != nil {
		return nil, err
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, fmt.Errorf("paths.api_bind is not configured")
	}
	return &apiClient{
		baseURL: "http://" + bind,
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (c *apiClient) get(path string, dst any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("is the server running? %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, dst)
}

func (c *apiClient) post(path string, dst any) error {
	resp, err := c.http.Post(c.baseURL+path, "application/json", nil)
	if err != nil {
		return fmt.Errorf("is the server running? %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, dst)
}

func decodeResponse(resp *http.Response, dst any) error {
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var failure api.ErrorResponse
		if api.Decode(payload, &failure) == nil && failure.Error != "" {
			if failure.Status != "" {
				return fmt.Errorf("%s (status: %s)", failure.Error, failure.Status)
			}
			return fmt.Errorf("%s", failure.Error)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if dst == nil {
		return nil
	}
	return api.Decode(payload, dst)
}

func newJobsCommand(configFlag *string) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List jobs on the running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(configFlag)
			if err != nil {
				return err
			}
			path := "/api/jobs"
			if all {
				path += "?all=1"
			}
			var listing api.JobListResponse
			if err := client.get(path, &listing); err != nil {
				return err
			}
			if len(listing.Jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs.")
				return nil
			}

			headers := []string{"Job", "Status", "Progress", "Message", "Source"}
			rows := make([][]string, 0, len(listing.Jobs))
			for _, job := range listing.Jobs {
				rows = append(rows, []string{
					shortID(job.JobID),
					job.Status,
					strconv.Itoa(job.Progress) + "%",
					job.Message,
					job.Source,
				})
			}
			writeRows(cmd.OutOrStdout(), headers, rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft})
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include archived history entries")
	return cmd
}

func newStatusCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show one job's status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(configFlag)
			if err != nil {
				return err
			}
			var status api.JobStatus
			if err := client.get("/api/status/"+args[0], &status); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status:   %s\n", status.Status)
			fmt.Fprintf(out, "Progress: %d%%\n", status.Progress)
			fmt.Fprintf(out, "Message:  %s\n", status.Message)
			if info := status.RenderInfo; info != nil {
				fmt.Fprintf(out, "Frames:   %d/%d (%.1f fps, ETA %.1fs)\n",
					info.CurrentFrame, info.TotalFrames, info.FPSSpeed, info.ETASeconds)
			}
			return nil
		},
	}
}

func newCancelCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a queued or running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(configFlag)
			if err != nil {
				return err
			}
			var cancelled api.CancelResponse
			if err := client.post("/api/cancel/"+args[0], &cancelled); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cancelled.Message)
			return nil
		},
	}
}

// shortID trims UUIDs down to their first group for table display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 && len(id) > 16 {
		return id[:i]
	}
	return id
}

// writeRows renders a rounded table on terminals and tab-separated lines
// when output is piped.
func writeRows(out io.Writer, headers []string, rows [][]string, aligns []columnAlignment) {
	if terminalOutput(out) {
		fmt.Fprintln(out, renderTable(headers, rows, aligns))
		return
	}
	fmt.Fprintln(out, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(out, strings.Join(row, "\t"))
	}
}

func terminalOutput(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
