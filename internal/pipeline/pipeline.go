// Package pipeline sequences the meeting-minutes stages: source acquisition,
// transcription and summarization. A run emits a finite stream of status
// updates so the consuming layer can render progress, and maps any stage
// failure to a terminal failure update instead of propagating it.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/minutegen/internal/instrumentation"
	"github.com/teemow/minutegen/internal/logging"
	"github.com/teemow/minutegen/internal/transcribe"
)

// Stage identifies a step of the pipeline state machine.
type Stage string

const (
	StageInitializing       Stage = "initializing"
	StageAcquiringSource    Stage = "acquiring_source"
	StageSourceReady        Stage = "source_ready"
	StageTranscribing       Stage = "transcribing"
	StageTranscriptionReady Stage = "transcription_ready"
	StageSummarizing        Stage = "summarizing"
	StageComplete           Stage = "complete"
	StageFailed             Stage = "failed"
)

// FailurePrefix marks failure statuses so consumers can style them
// differently from progress text.
const FailurePrefix = "ERROR: "

// Source selects the audio input for a run. Exactly one field must be set.
type Source struct {
	// LocalPath is a path to an audio file already on disk.
	LocalPath string `json:"local_path,omitempty"`

	// RemoteRef is a Google Drive file ID or share URL.
	RemoteRef string `json:"remote_ref,omitempty"`
}

// Update is one progress emission. Minutes stays empty until the run
// completes; Status carries progress text, and in transcript-bearing stages
// the transcript itself.
type Update struct {
	Stage   Stage  `json:"stage"`
	Status  string `json:"status"`
	Minutes string `json:"minutes"`
}

// Failed reports whether the update is the terminal failure emission.
func (u Update) Failed() bool {
	return u.Stage == StageFailed
}

// Fetcher downloads a remote file to a local temporary artifact.
type Fetcher interface {
	Download(ctx context.Context, reference string) (path, name string, err error)
}

// Transcriber converts a local audio file to plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Summarizer turns a transcript into a minutes document.
type Summarizer interface {
	Generate(ctx context.Context, transcript string) (string, error)
}

// Orchestrator runs the staged pipeline. A single Orchestrator serves many
// runs; each run's transient state lives on the stack of its goroutine and
// is never shared.
type Orchestrator struct {
	fetcher     Fetcher
	transcriber Transcriber
	summarizer  Summarizer
	metrics     *instrumentation.Metrics
	logger      *slog.Logger
}

// New creates an Orchestrator. fetcher may be nil when remote acquisition is
// unavailable (not authorized); a run with a remote source then fails at the
// acquisition stage. metrics may be nil.
func New(fetcher Fetcher, transcriber Transcriber, summarizer Summarizer,
	metrics *instrumentation.Metrics, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		fetcher:     fetcher,
		transcriber: transcriber,
		summarizer:  summarizer,
		metrics:     metrics,
		logger:      logger,
	}
}

// Run executes the pipeline for one source and returns the update stream.
// The channel is unbuffered, so every emission is a suspension point where
// the consumer observes the intermediate state before the run proceeds; it
// is closed when the run reaches Complete or Failed. Cancelling ctx stops
// the run at the next emission or remote call.
func (o *Orchestrator) Run(ctx context.Context, source Source) <-chan Update {
	updates := make(chan Update)
	go func() {
		defer close(updates)
		o.run(ctx, source, updates)
	}()
	return updates
}

func (o *Orchestrator) run(ctx context.Context, source Source, updates chan<- Update) {
	runID := uuid.NewString()
	logger := logging.WithRunID(o.logger, runID)
	started := time.Now()

	emit := func(u Update) bool {
		// A cancelled run must not keep emitting even if the consumer is
		// still draining the channel.
		select {
		case <-ctx.Done():
			return false
		default:
		}
		select {
		case updates <- u:
			return true
		case <-ctx.Done():
			return false
		}
	}
	fail := func(stage Stage, msg string) {
		logger.Error("pipeline run failed",
			logging.Stage(string(stage)), logging.Status(logging.StatusError), "reason", msg)
		o.metrics.RecordPipelineStage(ctx, string(stage), instrumentation.ResultError, time.Since(started))
		o.metrics.RecordPipelineRun(ctx, instrumentation.ResultError, time.Since(started))
		emit(Update{Stage: StageFailed, Status: FailurePrefix + msg})
	}

	if !emit(Update{Stage: StageInitializing, Status: "Initializing..."}) {
		return
	}

	if source.LocalPath == "" && source.RemoteRef == "" {
		fail(StageInitializing, "no source selected: upload an audio file or select one from Google Drive")
		return
	}
	if source.LocalPath != "" && source.RemoteRef != "" {
		fail(StageInitializing, "ambiguous source: provide either a local file or a Google Drive file, not both")
		return
	}

	// Acquire the audio artifact.
	audioPath := source.LocalPath
	sourceNote := "Using local file"
	if source.RemoteRef != "" {
		if !emit(Update{Stage: StageAcquiringSource, Status: "Downloading from Google Drive..."}) {
			return
		}
		if o.fetcher == nil {
			fail(StageAcquiringSource, "Google Drive is not authorized")
			return
		}

		acquireStart := time.Now()
		path, name, err := o.fetcher.Download(ctx, source.RemoteRef)
		if err != nil {
			fail(StageAcquiringSource, fmt.Sprintf("error downloading from Google Drive: %v", err))
			return
		}
		o.metrics.RecordPipelineStage(ctx, string(StageAcquiringSource), instrumentation.ResultSuccess, time.Since(acquireStart))

		// The downloaded artifact is owned by this run: remove it on every
		// exit path, success or failure.
		defer func() {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				logger.Warn("failed to remove temporary download", "path", path, logging.Err(err))
			}
		}()

		audioPath = path
		sourceNote = fmt.Sprintf("Downloaded %q from Google Drive", name)
	} else {
		if !emit(Update{Stage: StageAcquiringSource, Status: sourceNote}) {
			return
		}
	}

	if err := transcribe.ValidateFile(audioPath); err != nil {
		fail(StageSourceReady, err.Error())
		return
	}
	if !emit(Update{Stage: StageSourceReady, Status: sourceNote + ", file loaded successfully"}) {
		return
	}

	// Transcribe.
	if !emit(Update{Stage: StageTranscribing, Status: "Transcribing audio (this may take a few minutes)..."}) {
		return
	}
	transcribeStart := time.Now()
	transcript, err := o.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		fail(StageTranscribing, fmt.Sprintf("transcription failed: %v", err))
		return
	}
	o.metrics.RecordPipelineStage(ctx, string(StageTranscribing), instrumentation.ResultSuccess, time.Since(transcribeStart))
	logger.Info("transcription completed", "transcript_chars", len(transcript))

	if !emit(Update{Stage: StageTranscriptionReady, Status: transcript}) {
		return
	}

	// Summarize.
	if !emit(Update{Stage: StageSummarizing, Status: transcript + "\n\nGenerating meeting minutes..."}) {
		return
	}
	summarizeStart := time.Now()
	doc, err := o.summarizer.Generate(ctx, transcript)
	if err != nil {
		fail(StageSummarizing, fmt.Sprintf("minutes generation failed: %v", err))
		return
	}
	o.metrics.RecordPipelineStage(ctx, string(StageSummarizing), instrumentation.ResultSuccess, time.Since(summarizeStart))

	o.metrics.RecordPipelineRun(ctx, instrumentation.ResultSuccess, time.Since(started))
	logger.Info("pipeline run completed",
		logging.Status(logging.StatusSuccess),
		"duration", time.Since(started).Truncate(time.Millisecond).String())

	emit(Update{Stage: StageComplete, Status: transcript, Minutes: doc})
}
