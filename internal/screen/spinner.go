// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package screen

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// SpinnerFrames are the braille frames used for the busy indicator.
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// StartSpinner starts an inline spinner on a single line of w, followed by
// text. It runs in its own goroutine and is stopped (and its line cleared) by
// calling the returned function, which is safe to call more than once.
func StartSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	if len(frames) == 0 {
		frames = SpinnerFrames
	}
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		fmt.Fprintf(w, "\r%s %s", frames[0], text)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				i++
				fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], text)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
		})
	}
}
