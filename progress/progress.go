// progress.go - Fortschrittsanzeige mit mehreren Zustaenden
//
// Dieses Modul enthaelt:
// - State: Interface fuer anzeigbare Zustaende (Bar, Spinner)
// - Progress: Verwaltet und rendert Zustaende auf dem Terminal
package progress

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"time"
)

// State ist ein anzeigbarer Fortschrittszustand
type State interface {
	String() string
}

// Progress rendert eine Liste von States zyklisch auf den Writer
type Progress struct {
	mu sync.Mutex
	// buf schreibt vollstaendige Frames, damit nicht geflackert wird
	buf *bufio.Writer
	w   io.Writer

	pos int

	ticker *time.Ticker
	states []State
}

// NewProgress erstellt und startet eine Fortschrittsanzeige
func NewProgress(w io.Writer) *Progress {
	p := &Progress{buf: bufio.NewWriter(w), w: w, pos: -1}
	go p.start()
	return p
}

// Add fuegt einen neuen Zustand hinzu
func (p *Progress) Add(key string, state State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.states = append(p.states, state)
}

func (p *Progress) stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
		p.render()
		return true
	}

	return false
}

// Stop haelt die Anzeige an und laesst die letzte Ausgabe stehen
func (p *Progress) Stop() bool {
	stopped := p.stop()
	if stopped {
		fmt.Fprint(p.w, "\n")
	}
	return stopped
}

// StopAndClear haelt die Anzeige an und loescht die Ausgabe
func (p *Progress) StopAndClear() bool {
	fmt.Fprint(p.buf, "\033[?25l")
	defer fmt.Fprint(p.buf, "\033[?25h")

	stopped := p.stop()
	if stopped {
		// clear all progress lines
		for i := range p.pos {
			if i > 0 {
				fmt.Fprint(p.buf, "\033[A")
			}
			fmt.Fprint(p.buf, "\033[2K\033[1G")
		}
		p.buf.Flush()
	}

	return stopped
}

func (p *Progress) render() {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprint(p.buf, "\033[?25l")
	defer fmt.Fprint(p.buf, "\033[?25h")

	// clear already rendered progress lines
	for i := range p.pos {
		if i > 0 {
			fmt.Fprint(p.buf, "\033[A")
		}
		fmt.Fprint(p.buf, "\033[2K\033[1G")
	}

	// render progress lines
	for i, state := range p.states {
		fmt.Fprint(p.buf, state.String(), "\033[K")
		if i < len(p.states)-1 {
			fmt.Fprint(p.buf, "\n")
		}
	}

	p.pos = len(p.states)

	p.buf.Flush()
}

func (p *Progress) start() {
	p.ticker = time.NewTicker(100 * time.Millisecond)
	for range p.ticker.C {
		p.render()
	}
}
