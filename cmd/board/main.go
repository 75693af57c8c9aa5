package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/justsurfingit/hiring-board/internal/board"
	"github.com/justsurfingit/hiring-board/internal/client"
	"github.com/justsurfingit/hiring-board/internal/config"
	"github.com/justsurfingit/hiring-board/internal/dtos"
	"github.com/justsurfingit/hiring-board/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	jobID := flag.Uint("job", cfg.Board.JobID, "job whose board to open")
	apiURL := flag.String("api", cfg.Board.APIURL, "pipeline API base URL")
	flag.Parse()
	if *jobID == 0 {
		log.Fatal("A job id is required (-job or PIPELINE_BOARD_JOB_ID)")
	}

	// the terminal belongs to the UI; logs go to a file when DEBUG is set
	var logOut io.Writer = io.Discard
	if os.Getenv("DEBUG") != "" {
		f, err := tea.LogToFile("board.log", "board")
		if err != nil {
			log.Fatal("Failed to open log file: ", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug}))

	api := client.New(*apiURL, cfg.Board.Timeout)

	title := fmt.Sprintf("Job #%d", *jobID)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Board.Timeout)
	if job, err := api.GetJob(ctx, *jobID); err == nil {
		title = job.Title
		if job.Company.Name != "" {
			title += " · " + job.Company.Name
		}
	} else {
		logger.Warn("job lookup failed", "job_id", *jobID, "error", err)
	}
	cancel()

	indicator := board.NewIndicator(clock.New(), cfg.Board.MinUpdating, cfg.Board.SavedFor)
	session := board.NewSession(*jobID, api, indicator, logger)

	streamCtx, stopStream := context.WithCancel(context.Background())
	defer stopStream()
	notes := make(chan dtos.Notification, 16)
	go follow(streamCtx, api, *jobID, notes, logger)

	p := tea.NewProgram(tui.New(session, title, notes, cfg.Board.Timeout), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal("Board failed: ", err)
	}
}

// follow keeps jobID's notification stream open, resuming from the last seen
// sequence. Events are dropped when the UI falls behind.
func follow(ctx context.Context, api *client.Client, jobID uint, out chan<- dtos.Notification, logger *slog.Logger) {
	var since int64
	backoff := time.Second
	for ctx.Err() == nil {
		last, err := api.Stream(ctx, jobID, since, func(n dtos.Notification) {
			select {
			case out <- n:
			default:
			}
		})
		if last > since {
			since = last
			backoff = time.Second
		}
		if ctx.Err() != nil {
			return
		}
		logger.Debug("notification stream closed", "since", since, "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}
