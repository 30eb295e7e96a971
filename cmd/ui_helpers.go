package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"neonrpc/cli/internal/terminal"

	"atomicgo.dev/cursor"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// startInlineSpinner animates frames followed by text on one line of w
// until the returned function is called, which clears the line. The cursor
// is hidden meanwhile. When stdin is not a terminal nothing is drawn.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	if !terminal.IsInteractive() {
		return func() {}
	}
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	cursor.Hide()
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], text)
				i++
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
			cursor.Show()
		})
	}
}

// spin runs fn behind a spinner on stderr.
func spin(text string, fn func() error) error {
	stop := startInlineSpinner(os.Stderr, text, spinnerFrames, 120*time.Millisecond)
	defer stop()
	return fn()
}
