package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fretcoach/fretcoach/internal/dotenv"
	"github.com/fretcoach/fretcoach/pkg/core"
	"github.com/fretcoach/fretcoach/pkg/core/capture"
	"github.com/fretcoach/fretcoach/pkg/core/prompt"
	"github.com/fretcoach/fretcoach/pkg/core/session"
	"github.com/fretcoach/fretcoach/pkg/core/turn"
	"github.com/fretcoach/fretcoach/pkg/core/types"
	"github.com/fretcoach/fretcoach/pkg/feed"
	"github.com/fretcoach/fretcoach/pkg/lesson"
)

func newPracticeCmd() *cobra.Command {
	var (
		backendURL string
		planFile   string
		feedAddr   string
		ffmpegPath string
		ffplayPath string
	)

	cmd := &cobra.Command{
		Use:   "practice <lesson>",
		Short: "Run a practice session",
		Long: "Runs one practice session for a built-in lesson (see `fretcoach lessons`)\n" +
			"or a custom YAML plan passed with --plan.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := resolvePlan(args, planFile)
			if err != nil {
				return err
			}
			if backendURL == "" {
				backendURL = dotenv.Getenv("FRETCOACH_BACKEND_URL", "http://127.0.0.1:8000")
			}
			return runPractice(plan, backendURL, feedAddr, ffmpegPath, ffplayPath)
		},
	}

	cmd.Flags().StringVar(&backendURL, "backend", "", "lesson backend base URL (default: $FRETCOACH_BACKEND_URL or http://127.0.0.1:8000)")
	cmd.Flags().StringVar(&planFile, "plan", "", "path to a custom lesson plan YAML")
	cmd.Flags().StringVar(&feedAddr, "feed", "", "serve the session status feed on this address, e.g. 127.0.0.1:9100")
	cmd.Flags().StringVar(&ffmpegPath, "ffmpeg-path", "ffmpeg", "path to the ffmpeg executable")
	cmd.Flags().StringVar(&ffplayPath, "ffplay-path", "ffplay", "path to the ffplay executable")
	return cmd
}

func resolvePlan(args []string, planFile string) (lesson.Plan, error) {
	if planFile != "" {
		return lesson.LoadFile(planFile)
	}
	if len(args) == 0 {
		return lesson.Plan{}, fmt.Errorf("name a lesson or pass --plan (see `fretcoach lessons`)")
	}
	plan, ok := lesson.Builtin()[args[0]]
	if !ok {
		return lesson.Plan{}, fmt.Errorf("unknown lesson %q (see `fretcoach lessons`)", args[0])
	}
	return plan, nil
}

func runPractice(plan lesson.Plan, backendURL, feedAddr, ffmpegPath, ffplayPath string) error {
	logger := slog.Default()
	httpClient := core.NewHTTPClient()

	recorder := capture.NewRecorder(
		&capture.FFmpegCapture{Path: ffmpegPath},
		capture.DefaultStreamConfig(),
		logger,
	)
	uploader := turn.NewUploader(strings.TrimRight(backendURL, "/")+plan.CheckPath, logger)
	uploader.HTTPClient = httpClient
	assets := &prompt.HTTPAssetClient{
		BaseURL:    backendURL,
		DeletePath: plan.DeletePath,
		HTTPClient: httpClient,
		Logger:     logger,
	}
	player := prompt.NewPlayer(assets, &prompt.FFplaySpeaker{Path: ffplayPath}, logger)
	processor := turn.NewProcessor(types.NewProgressSet(), logger)

	done := make(chan struct{})
	config := plan.SessionConfig()
	config.OnDone = func() { close(done) }

	controller := session.NewController(config, recorder, uploader, processor, player, logger)
	defer controller.Close()

	hub := feed.NewHub(controller, logger)
	go hub.Run()
	if feedAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/state", hub.StateHandler())
		mux.Handle("/ws", hub.WSHandler())
		go func() {
			logger.Info("status feed listening", "addr", feedAddr)
			if err := http.ListenAndServe(feedAddr, mux); err != nil {
				logger.Warn("status feed stopped", "error", err)
			}
		}()
	}

	sub, cancelSub := hub.Subscribe()
	defer cancelSub()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// Enter triggers the next turn in tap-to-record lessons, and doubles as
	// the retry affordance after an error in every flow.
	taps := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			taps <- struct{}{}
		}
	}()

	fmt.Println(renderBanner(plan))
	controller.Start()

	for {
		select {
		case snap, ok := <-sub:
			if !ok {
				fmt.Println(renderFinal(controller.Snapshot()))
				return nil
			}
			fmt.Println(renderSnapshot(plan, snap, controller.Progress()))
		case <-taps:
			controller.StartRecording()
		case <-done:
			fmt.Println(renderFinal(controller.Snapshot()))
			return nil
		case sig := <-sigCh:
			logger.Info("interrupted, tearing session down", "signal", sig.String())
			return nil
		}
	}
}
