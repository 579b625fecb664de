package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/clip-extract-go/internal/browser"
	"github.com/yourusername/clip-extract-go/internal/domain"
	"github.com/yourusername/clip-extract-go/internal/observer"
	"github.com/yourusername/clip-extract-go/internal/relay"
)

var watchCmd = &cobra.Command{
	Use:   "watch [url]",
	Short: "Open a page in Chrome and add a download button on clip pages",
	Long: `Opens url in Chrome (launched, or --remote) and keeps a "Download Clip"
button on every clip page the tab navigates to. Clicking it sends the clip
to the local download server. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ensureServer(ctx)

		if remote, _ := cmd.Flags().GetString("remote"); remote != "" {
			config.Observer.RemoteURL = remote
		}
		if cmd.Flags().Changed("headless") {
			config.Observer.Headless, _ = cmd.Flags().GetBool("headless")
		}

		logs := newLogAdapter()
		defer logs.Sync()
		log := logs.Observer()

		mgr := browser.NewManager(browser.Config{
			RemoteURL: config.Observer.RemoteURL,
			Headless:  config.Observer.Headless,
			Logger:    log,
		})
		defer mgr.Close()

		b, err := mgr.Start(ctx)
		if err != nil {
			return err
		}

		page, err := browser.OpenPage(ctx, b, args[0], log)
		if err != nil {
			return err
		}
		defer page.Close()

		bridge := relay.NewBridge(1)
		defer bridge.Close()

		r := relay.New(&config.Relay, logs.Relay())
		go r.Serve(ctx, bridge.Inbox())

		obs := observer.New(observer.Config{
			Document:     page,
			Messenger:    bridge,
			DetectDelay:  config.Observer.DetectDelay,
			ResetDelay:   config.Observer.ResetDelay,
			Logger:       log,
			OnTransition: printTransition,
			OnButton:     printButton,
		})

		log.Info("Watching page", zap.String("url", args[0]), zap.String("server", r.ServerURL()))
		err = obs.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func printButton(clip *domain.ClipDescriptor, present bool) {
	if present {
		fmt.Printf("Button added for clip %s (%s)\n", clip.ClipID, clip.Title)
		return
	}
	if clip != nil {
		fmt.Printf("Button removed for clip %s\n", clip.ClipID)
	}
}

func printTransition(t observer.Transition) {
	switch t.To {
	case domain.StateRequesting:
		fmt.Printf("Downloading %s...\n", t.Clip.URL)
	case domain.StateSuccess:
		fmt.Printf("Downloaded %s\n", t.Clip.Title)
	case domain.StateFailure:
		fmt.Fprintf(os.Stderr, "Download failed: %s\n", t.Err)
	}
}

func init() {
	watchCmd.Flags().String("remote", "", "DevTools WebSocket URL of a running Chrome")
	watchCmd.Flags().Bool("headless", false, "Launch Chrome without a window")
}
