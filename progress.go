package main

import (
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
)

// progressBar reports collector progress on stderr
type progressBar struct {
	title string
	bar   *pterm.ProgressbarPrinter
}

func newProgressBar(title string) *progressBar {
	return &progressBar{title: title}
}

func (p *progressBar) Start(total int) {
	if total == 0 {
		return
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(p.title).
		WithWriter(os.Stderr).
		Start()
	if err != nil {
		logrus.WithError(err).Debug("progress bar unavailable")
		return
	}
	p.bar = bar
}

func (p *progressBar) Increment(path string) {
	if p.bar == nil {
		return
	}
	p.bar.UpdateTitle(p.title + " " + filepath.Base(path))
	p.bar.Increment()
}

func (p *progressBar) Stop() {
	if p.bar == nil {
		return
	}
	_, _ = p.bar.Stop()
	p.bar = nil
}
