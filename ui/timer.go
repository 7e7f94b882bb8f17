package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

// timer shows the time since it was last Set. It stays blank until the first Set
type timer struct {
	label string
	start time.Time
	mtx   sync.Mutex
	text  *canvas.Text
}

func newTimer(label string) *timer {
	return &timer{
		label: label,
		text:  canvas.NewText(label+" --:--", nil),
	}
}

func (t *timer) Set(start time.Time) {
	t.mtx.Lock()
	t.start = start
	t.mtx.Unlock()
}

// format renders elapsed as mm:ss
func (t *timer) format(now time.Time) string {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.start.IsZero() {
		return t.label + " --:--"
	}
	elapsed := now.Sub(t.start)
	minutes := int(elapsed.Minutes())
	seconds := int(elapsed.Seconds()) % 60
	return fmt.Sprintf("%s %02d:%02d", t.label, minutes, seconds)
}

// Go refreshes the text every second until ctx is done
func (t *timer) Go(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				text := t.format(now)
				fyne.Do(func() {
					t.text.Text = text
					t.text.Refresh()
				})
			}
		}
	}()
}
