package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/clip-extract-go/internal/domain"
)

// getJSON fetches path from the server and decodes a 200 response into v
func getJSON(path string, v interface{}) error {
	resp, err := http.Get(serverURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return errors.New(apiErr.Error)
		}
		return errors.New(string(body))
	}
	return json.Unmarshal(body, v)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past downloads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer(cmd.Context())

		path := "/api/v1/downloads"
		if status, _ := cmd.Flags().GetString("status"); status != "" {
			path += "?status=" + url.QueryEscape(status)
		}

		var list struct {
			Downloads []domain.Download `json:"downloads"`
			Count     int               `json:"count"`
		}
		if err := getJSON(path, &list); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tURL\tSTATUS\tCREATED")
		for _, d := range list.Downloads {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				truncate(d.ID, 8),
				truncate(d.Title, 30),
				truncate(d.URL, 40),
				d.Status,
				d.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show download statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer(cmd.Context())

		var stats domain.DownloadStats
		if err := getJSON("/api/v1/downloads/stats", &stats); err != nil {
			return err
		}

		fmt.Println("Download Statistics:")
		fmt.Printf("  Total:      %d\n", stats.Total)
		fmt.Printf("  Processing: %d\n", stats.Processing)
		fmt.Printf("  Completed:  %d\n", stats.Completed)
		fmt.Printf("  Failed:     %d\n", stats.Failed)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get download details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer(cmd.Context())

		var d domain.Download
		if err := getJSON("/api/v1/downloads/"+url.PathEscape(args[0]), &d); err != nil {
			return err
		}

		fmt.Printf("Download Details:\n")
		fmt.Printf("  ID:       %s\n", d.ID)
		fmt.Printf("  Title:    %s\n", d.Title)
		fmt.Printf("  URL:      %s\n", d.URL)
		fmt.Printf("  Status:   %s\n", d.Status)
		fmt.Printf("  Created:  %s\n", d.CreatedAt.Format("2006-01-02 15:04:05"))
		if d.FilePath != "" {
			fmt.Printf("  File:     %s\n", d.FilePath)
		}
		if d.ErrorMessage != "" {
			fmt.Printf("  Error:    %s\n", d.ErrorMessage)
		}
		if log, _ := cmd.Flags().GetBool("log"); log && d.ProcessLog != "" {
			fmt.Printf("\n%s\n", d.ProcessLog)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringP("status", "s", "", "Filter by status (processing, completed, failed)")
	getCmd.Flags().Bool("log", false, "Print the yt-dlp output")
}
