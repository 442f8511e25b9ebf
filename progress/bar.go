// bar.go - Fortschrittsbalken
//
// Dieses Modul enthaelt:
// - Bar: Balken mit Prozentanzeige und Rate
// - NewBar/Set: Konstruktor und Fortschritts-Update
package progress

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/ovdet/ovdet/format"
)

// Bar ist ein Fortschrittsbalken ueber einer Gesamtmenge
type Bar struct {
	message      string
	messageWidth int

	maxValue     int64
	initialValue int64
	currentValue int64

	started time.Time
	stopped time.Time
}

// NewBar erstellt einen Fortschrittsbalken
func NewBar(message string, maxValue, initialValue int64) *Bar {
	b := Bar{
		message:      message,
		messageWidth: -1,
		maxValue:     maxValue,
		initialValue: initialValue,
		currentValue: initialValue,
		started:      time.Now(),
	}

	return &b
}

func (b *Bar) String() string {
	termWidth, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil {
		termWidth = 80
	}

	var pre strings.Builder
	if len(b.message) > 0 {
		message := strings.TrimSpace(b.message)
		if b.messageWidth > 0 && len(message) > b.messageWidth {
			message = message[:b.messageWidth]
		}

		fmt.Fprintf(&pre, "%s", message)
		if padding := b.messageWidth - runewidth.StringWidth(message); padding > 0 {
			pre.WriteString(strings.Repeat(" ", padding))
		}

		pre.WriteString(" ")
	}

	fmt.Fprintf(&pre, "%3.0f%%", b.percent())

	var suf strings.Builder
	if b.stopped.IsZero() {
		fmt.Fprintf(&suf, " (%s/%s", format.HumanNumber(uint64(b.currentValue)), format.HumanNumber(uint64(b.maxValue)))

		rate := b.rate()
		if rate > 0 {
			fmt.Fprintf(&suf, ", %.0f it/s", rate)
		}

		suf.WriteString(")")
	}

	mid := "  "
	f := termWidth - pre.Len() - suf.Len() - 5
	if f > 5 {
		mid = " ▕"

		g := int(float64(f) * b.percent() / 100)
		mid += strings.Repeat("█", g)

		if g < f {
			mid += strings.Repeat(" ", f-g)
		}

		mid += "▏ "
	}

	return pre.String() + mid + suf.String()
}

// Set aktualisiert den aktuellen Wert
func (b *Bar) Set(value int64) {
	if value >= b.maxValue {
		value = b.maxValue
	}

	b.currentValue = value
	if b.currentValue >= b.maxValue {
		b.stopped = time.Now()
	}
}

func (b *Bar) percent() float64 {
	if b.maxValue > 0 {
		return float64(b.currentValue) / float64(b.maxValue) * 100
	}

	return 0
}

func (b *Bar) rate() float64 {
	elapsed := b.elapsed()
	if elapsed.Seconds() > 0 {
		return float64(b.currentValue-b.initialValue) / elapsed.Seconds()
	}

	return 0
}

func (b *Bar) elapsed() time.Duration {
	stopped := b.stopped
	if stopped.IsZero() {
		stopped = time.Now()
	}

	return stopped.Sub(b.started)
}
