package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/clip-extract-go/api/handlers"
	"github.com/yourusername/clip-extract-go/internal/app"
	"github.com/yourusername/clip-extract-go/internal/domain"
	"github.com/yourusername/clip-extract-go/internal/htmldom"
	"github.com/yourusername/clip-extract-go/internal/infrastructure"
	"github.com/yourusername/clip-extract-go/internal/observer"
	"github.com/yourusername/clip-extract-go/internal/relay"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the download server is running",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := relay.New(&config.Relay, nil)
		if err := r.CheckHealth(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("Download server is running at %s\n", r.ServerURL())
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [url]",
	Short: "Send a clip to the download server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer(cmd.Context())

		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			title = domain.DefaultClipTitle
		}
		clipID, _ := domain.ExtractClipID(args[0])
		clip := &domain.ClipDescriptor{ClipID: clipID, URL: args[0], Title: title}

		logs := newLogAdapter()
		defer logs.Sync()

		fmt.Printf("Downloading %s...\n", clip.URL)
		result, err := relay.New(&config.Relay, logs.Relay()).Download(cmd.Context(), clip)
		if err != nil {
			return err
		}
		fmt.Println("Download complete!")
		if result.FilePath != "" {
			fmt.Printf("File: %s\n", result.FilePath)
		}
		return nil
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect [file|url]",
	Short: "Show the clip a saved or fetched page would produce",
	Long: `Parses an HTML page offline and prints the clip descriptor and the anchor
the download button would be inserted under. For a saved file pass the
page address with --location.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		location, _ := cmd.Flags().GetString("location")
		src, loc, err := readPage(cmd.Context(), args[0], location)
		if err != nil {
			return err
		}

		doc, err := htmldom.Parse(loc, src)
		if err != nil {
			return err
		}
		defer doc.Close()

		clip, err := observer.DefaultExtractor().Extract(cmd.Context(), doc)
		if err != nil {
			return err
		}
		if clip == nil {
			fmt.Printf("Not a clip page: %s\n", loc)
			return nil
		}

		out, _ := json.MarshalIndent(clip, "", "  ")
		fmt.Println(string(out))

		for _, anchor := range observer.DefaultAnchors {
			if ok, _ := doc.Exists(cmd.Context(), anchor); ok {
				fmt.Printf("Button anchor: %s\n", anchor)
				return nil
			}
		}
		fmt.Println("Button anchor: none")
		return nil
	},
}

// readPage loads HTML from a URL or a local file
func readPage(ctx context.Context, arg, location string) (string, string, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, arg, nil)
		if err != nil {
			return "", "", err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return "", "", err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", "", err
		}
		if location == "" {
			location = arg
		}
		return string(body), location, nil
	}

	if location == "" {
		return "", "", errors.New("--location is required for a local file")
	}
	body, err := os.ReadFile(arg)
	if err != nil {
		return "", "", err
	}
	return string(body), location, nil
}

var checkCmd = &cobra.Command{
	Use:   "check [url]",
	Short: "Inspect a clip without downloading it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer(cmd.Context())

		data, _ := json.Marshal(handlers.CheckClipRequest{URL: args[0]})
		resp, err := http.Post(serverURL+"/check-clip", "application/json", bytes.NewBuffer(data))
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			var result domain.DownloadResult
			if json.Unmarshal(body, &result) == nil && result.Error != "" {
				return errors.New(result.Error)
			}
			return errors.New(string(body))
		}

		var meta domain.ClipMetadata
		if err := json.Unmarshal(body, &meta); err != nil {
			return err
		}
		printMetadata(&meta)
		return nil
	},
}

func printMetadata(meta *domain.ClipMetadata) {
	fmt.Println("Clip Details:")
	fmt.Printf("  Title:    %s\n", meta.Title)
	fmt.Printf("  Live:     %v\n", meta.IsLive)
	if meta.LiveStatus != "" {
		fmt.Printf("  Status:   %s\n", meta.LiveStatus)
	}
	if meta.Duration != nil {
		fmt.Printf("  Duration: %s\n", seconds(*meta.Duration))
	}
	if meta.HasClipSection && meta.SectionStart != nil && meta.SectionEnd != nil {
		fmt.Printf("  Section:  %s - %s\n", seconds(*meta.SectionStart), seconds(*meta.SectionEnd))
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Round(time.Second)
}

var monitorCmd = &cobra.Command{
	Use:   "monitor [video_url] [clip_url]",
	Short: "Wait for a live stream to end, then download a clip of it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
			config.Monitor.CheckInterval = interval
		}

		logs := newLogAdapter()
		defer logs.Sync()
		log := logs.Service()

		runner := infrastructure.ExecRunner{}
		notifier := infrastructure.NewNotificationService(&config.Notification, runner, log)
		ytdlp := infrastructure.NewYTDLPDownloader(&config.Download, runner, log)
		service := app.NewDownloadService(nil, ytdlp, notifier, log)

		monitor := app.NewStreamMonitor(ytdlp, service, &config.Monitor, log)
		monitor.OnCheck = func(check int, meta *domain.ClipMetadata, err error) {
			switch {
			case err != nil:
				fmt.Fprintf(os.Stderr, "[%d] Status check failed: %v\n", check, err)
			case meta.IsLive:
				fmt.Printf("[%d] %s is live, checking again in %v\n", check, meta.Title, config.Monitor.CheckInterval)
			default:
				fmt.Printf("[%d] %s is offline\n", check, meta.Title)
				if check > 0 {
					notifier.NotifyStreamEnded(ctx, args[0])
				}
			}
		}

		result, err := monitor.Run(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println("Download complete!")
		if result.FilePath != "" {
			fmt.Printf("File: %s\n", result.FilePath)
		}
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringP("title", "t", "", "Clip title")
	detectCmd.Flags().StringP("location", "l", "", "Page address of a saved HTML file")
	monitorCmd.Flags().Duration("interval", 0, "Status check interval (default from config)")
}
