package driver

import "time"

// Stage identifies a step of directory processing.
type Stage string

const (
	// StageLoad reads and normalizes the file.
	StageLoad Stage = "load"
	// StageTokenize runs the lexer alone.
	StageTokenize Stage = "tokenize"
	// StageParse builds the syntax tree.
	StageParse Stage = "parse"
	// StageDiagnose collects diagnostics (tokenize + parse, or a cache hit).
	StageDiagnose Stage = "diagnose"
)

// Status describes the state of a file within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates a worker picked the file up.
	StatusWorking Status = "working"
	// StatusDone indicates the stage finished without error diagnostics.
	StatusDone Status = "done"
	// StatusError indicates the stage produced errors or failed.
	StatusError Status = "error"
)

// Event is a progress notification. An event with an empty File describes
// the whole run.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent is called from worker
// goroutines and must be safe for concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}

func emitQueued(sink ProgressSink, files []string, stage Stage) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: StatusQueued})
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: stage, Status: StatusQueued})
	}
}
