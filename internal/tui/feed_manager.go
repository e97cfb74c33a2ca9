// Copyright (c) 2024 Neomantra Corp
//
// Tick feed manager, adapted from the teacher's download_manager.go: same
// background-goroutine-plus-buffered-channel-with-backlog shape, retargeted
// from queued HTTP batch downloads onto a tailed newline-delimited JSON tick
// feed (the same feed shape cmd/wt-live ingests).

package tui

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"wondertrader/wt"
)

// FeedTick is one parsed line off the tick feed.
type FeedTick struct {
	Code string `json:"code"`
	wt.TickRecord
}

// FeedEventMsg is delivered on the feed's progress channel: either a
// successfully parsed tick, or a terminal error/EOF.
type FeedEventMsg struct {
	Tick  *FeedTick
	Error error
	Done  bool
}

///////////////////////////////////////////////////////////////////////////////

// FeedManager tails a tick feed file (or stdin) in the background and
// reports every parsed tick on its event channel.
type FeedManager struct {
	path string

	eventCh chan FeedEventMsg
	exitCh  chan struct{}
}

// NewFeedManager starts tailing path ("-" for stdin) in a background
// goroutine. Call Close to stop it.
func NewFeedManager(path string) *FeedManager {
	fm := &FeedManager{
		path:    path,
		eventCh: make(chan FeedEventMsg, 500),
		exitCh:  make(chan struct{}),
	}
	go fm.run()
	return fm
}

// EventChannel returns the channel tick/error events are delivered on.
func (fm *FeedManager) EventChannel() chan FeedEventMsg {
	return fm.eventCh
}

// Close stops the tailing goroutine.
func (fm *FeedManager) Close() {
	close(fm.exitCh)
}

func (fm *FeedManager) run() {
	var in io.ReadCloser = os.Stdin
	if fm.path != "" && fm.path != "-" {
		f, err := os.Open(fm.path)
		if err != nil {
			fm.sendEvent(FeedEventMsg{Error: err, Done: true})
			return
		}
		in = f
	}
	defer in.Close()

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		select {
		case <-fm.exitCh:
			return
		default:
		}

		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var tick FeedTick
		if err := json.Unmarshal(line, &tick); err != nil {
			fm.sendEvent(FeedEventMsg{Error: err})
			continue
		}
		fm.sendEvent(FeedEventMsg{Tick: &tick})
	}
	fm.sendEvent(FeedEventMsg{Error: sc.Err(), Done: true})
}

func (fm *FeedManager) sendEvent(msg FeedEventMsg) {
	select {
	case fm.eventCh <- msg:
	case <-fm.exitCh:
	}
}
