package tpcsim

import (
	"fmt"
	"sync"
	"time"
)

const (
	progressEvery     = 1000
	progressFractions = 5
	timeLayout        = "2006-01-02 15-04-05"
)

// Progress reports the advance of a run: at the first event, every 1000
// events and every fifth of the run, with the event rate and an estimated
// end time. Events are counted from the first one seen, so runs that skip
// the head of the input report the same way as full runs.
type Progress struct {
	mu       sync.Mutex
	nbEvents int
	started  bool
	start    time.Time
	seen     int
	ended    int
	now      func() time.Time
}

func NewProgress(nbEvents int) *Progress {
	return &Progress{nbEvents: nbEvents, now: time.Now}
}

func (p *Progress) BeginEvent(eventID int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		p.started = true
		p.start = p.now()
		logger.Info(fmt.Sprintf("Data file stamp: %s", p.start.Format(timeLayout)), "progress")
	}
	index := p.seen
	p.seen++
	if message, ok := p.report(eventID, index); ok {
		logger.Info(message, "progress")
	}
}

// EndEvent may be called from several workers.
func (p *Progress) EndEvent(eventID int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ended++
	if p.ended != p.nbEvents {
		return
	}
	now := p.now()
	logger.Info(fmt.Sprintf("%s || End of last event (id %d) || %.0fs running time",
		now.Format(timeLayout), eventID, now.Sub(p.start).Seconds()), "progress")
}

func (p *Progress) due(index int) bool {
	if index%progressEvery == 0 {
		return true
	}
	step := p.nbEvents / progressFractions
	return step > 0 && index%step == 0
}

// report describes the run when the event at position index, counted from
// the first one seen, starts.
func (p *Progress) report(eventID int, index int) (string, bool) {
	if !p.due(index) {
		return "", false
	}
	now := p.now()
	if index == 0 {
		return fmt.Sprintf("%s || Start of first event (id %d)", now.Format(timeLayout), eventID), true
	}
	elapsed := now.Sub(p.start).Seconds()
	if elapsed <= 0 {
		return "", false
	}
	rate := float64(index) / elapsed
	remaining := time.Duration(float64(max(p.nbEvents-index, 0)) / rate * float64(time.Second))
	return fmt.Sprintf("%s || Event %d / %d (id %d) || E/s %.1f || ETA: %s",
		now.Format(timeLayout), index, p.nbEvents, eventID, rate, now.Add(remaining).Format(timeLayout)), true
}
