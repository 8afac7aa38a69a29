package strategies

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/desertthunder/trackdl/internal/models"
	"github.com/desertthunder/trackdl/internal/shared"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// YTDLPOption configures the yt-dlp strategy.
type YTDLPOption func(*YTDLPStrategy)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) YTDLPOption {
	return func(s *YTDLPStrategy) {
		if exec != nil {
			s.exec = exec
		}
	}
}

// WithLookPath overrides the binary lookup used by Probe (tests).
func WithLookPath(fn func(string) (string, error)) YTDLPOption {
	return func(s *YTDLPStrategy) {
		if fn != nil {
			s.lookPath = fn
		}
	}
}

// YTDLPStrategy acquires audio by spawning the yt-dlp command-line tool and
// parsing percentages out of its line-oriented output.
type YTDLPStrategy struct {
	binary       string
	timeout      time.Duration
	toleranceSec int
	exec         Executor
	lookPath     func(string) (string, error)
}

// NewYTDLPStrategy constructs the external-process strategy.
func NewYTDLPStrategy(binary string, timeout time.Duration, toleranceSec int, opts ...YTDLPOption) *YTDLPStrategy {
	if binary == "" {
		binary = "yt-dlp"
	}
	if toleranceSec <= 0 {
		toleranceSec = 5
	}
	s := &YTDLPStrategy{
		binary:       binary,
		timeout:      timeout,
		toleranceSec: toleranceSec,
		exec:         commandExecutor{},
		lookPath:     exec.LookPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *YTDLPStrategy) Name() string { return "yt-dlp" }

// Probe checks that the yt-dlp binary exists on PATH. No process is spawned.
func (s *YTDLPStrategy) Probe(ctx context.Context) bool {
	_, err := s.lookPath(s.binary)
	return err == nil
}

// downloadPercentRegex matches yt-dlp's "[download]  42.3% of ..." lines.
var downloadPercentRegex = regexp.MustCompile(`\[download\]\s+(\d+(?:\.\d+)?)%`)

// Execute spawns yt-dlp against a YouTube search for the query and waits for
// it to produce the output file. Exit code zero plus a present output file is
// success; anything else is a transfer failure. Timeout kills the process via
// context cancellation.
func (s *YTDLPStrategy) Execute(ctx context.Context, req models.DownloadRequest, query, destDir string, fn ProgressFunc) (*Output, error) {
	if destDir == "" {
		return nil, fmt.Errorf("%w: destination directory required", shared.ErrInvalidArgument)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	outPath := filepath.Join(destDir, "track.mp3")
	args := s.buildArgs(req, query, outPath)

	var lastPercent float64 = -1
	runErr := s.exec.Run(ctx, s.binary, args, func(line string) {
		if fn == nil {
			return
		}
		m := downloadPercentRegex.FindStringSubmatch(line)
		if m == nil {
			return
		}
		percent, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return
		}
		// Only strictly increasing percentages are forwarded; yt-dlp
		// restarts its counter for every fragment.
		if percent > lastPercent {
			lastPercent = percent
			fn(percent, fmt.Sprintf("yt-dlp %.1f%%", percent))
		}
	})

	if runErr != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: yt-dlp exceeded %s budget", shared.ErrTimeout, s.timeout)
		}
		return nil, fmt.Errorf("%w: yt-dlp: %v", shared.ErrTransferFailed, runErr)
	}

	if _, err := os.Stat(outPath); err != nil {
		return nil, fmt.Errorf("%w: yt-dlp exited cleanly but produced no output file", shared.ErrTransferFailed)
	}

	return &Output{Path: outPath, MimeType: "audio/mpeg", Ext: ".mp3"}, nil
}

// buildArgs assembles the yt-dlp argument list: audio extraction into a fixed
// output path, searching YouTube for the query, filtered by track duration
// when the catalog supplied one.
func (s *YTDLPStrategy) buildArgs(req models.DownloadRequest, query, outPath string) []string {
	args := []string{
		"--extract-audio",
		"--audio-format", "mp3",
		"--output", outPath,
		"--format", "bestaudio/best",
		"--no-playlist",
		"--newline",
	}

	if req.DurationMS > 0 {
		desired := req.DurationMS / 1000
		min := desired - s.toleranceSec
		max := desired + s.toleranceSec
		args = append(args, "--match-filter", fmt.Sprintf("duration>%d & duration<%d", min, max))
	}

	args = append(args, fmt.Sprintf("ytsearch10:%s", query))
	return args
}

// commandExecutor runs the real process, scanning stdout and stderr line by
// line. Context cancellation kills the process; WaitDelay keeps Wait from
// hanging on pipes inherited by stray children.
type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.WaitDelay = 5 * time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if onLine != nil {
				onLine(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
			once.Do(func() { scanErr = err })
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	if scanErr != nil {
		return fmt.Errorf("scan output: %w", scanErr)
	}
	return nil
}
