package cli

import (
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

// progress renders ingestion progress while an ingest command runs.
var progress = &progressReporter{out: os.Stderr}

// progressReporter draws one bar per ingestion stage.
// Updates are ignored unless the reporter is enabled.
type progressReporter struct {
	mu      sync.Mutex
	out     io.Writer
	enabled bool
	stage   domain.IngestStage
	bar     *progressbar.ProgressBar
}

// enable turns rendering on when out is a terminal.
func (p *progressReporter) enable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = isTerminal(p.out)
}

// disable finishes the current bar and turns rendering off.
func (p *progressReporter) disable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finish()
	p.enabled = false
}

func (p *progressReporter) update(u domain.IngestProgress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled || u.Total <= 0 {
		return
	}

	if p.bar == nil || p.stage != u.Stage {
		p.finish()
		p.stage = u.Stage
		p.bar = newBar(p.out, u.Total, stageLabel(u.Stage))
	}
	_ = p.bar.Set(u.Current) //nolint:errcheck // Progress output is best-effort
	if u.Current >= u.Total {
		p.finish()
	}
}

func (p *progressReporter) finish() {
	if p.bar != nil {
		_ = p.bar.Finish() //nolint:errcheck // Progress output is best-effort
		p.bar = nil
	}
}

func newBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func stageLabel(stage domain.IngestStage) string {
	switch stage {
	case domain.StageLoading:
		return "Loading files  "
	case domain.StageChunking:
		return "Chunking       "
	case domain.StageEmbedding:
		return "Embedding      "
	case domain.StageSaving:
		return "Saving index   "
	default:
		return string(stage)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
