package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeFetcher struct {
	calls int
	path  string
	name  string
	err   error
}

func (f *fakeFetcher) Download(ctx context.Context, reference string) (string, string, error) {
	f.calls++
	return f.path, f.name, f.err
}

type fakeTranscriber struct {
	calls      int
	transcript string
	err        error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	f.calls++
	return f.transcript, f.err
}

type fakeSummarizer struct {
	calls int
	doc   string
	err   error
}

func (f *fakeSummarizer) Generate(ctx context.Context, transcript string) (string, error) {
	f.calls++
	return f.doc, f.err
}

const sixSectionDoc = `## Meeting Summary
yes
## Attendees
Alice, Bob
## Key Discussion Points
things
## Action Items
do things
## Next Steps
more things
## Additional Notes
none`

func writeLocalAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meeting.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func drain(t *testing.T, updates <-chan Update) []Update {
	t.Helper()
	var all []Update
	for u := range updates {
		all = append(all, u)
	}
	if len(all) == 0 {
		t.Fatal("Expected at least one update")
	}
	return all
}

func TestRunNoSourceFailsWithoutRemoteCalls(t *testing.T) {
	fetcher := &fakeFetcher{}
	transcriber := &fakeTranscriber{}
	summarizer := &fakeSummarizer{}
	o := New(fetcher, transcriber, summarizer, nil, nil)

	all := drain(t, o.Run(context.Background(), Source{}))

	last := all[len(all)-1]
	if !last.Failed() {
		t.Fatalf("Expected terminal failure, got %+v", last)
	}
	if !strings.Contains(last.Status, "no source selected") {
		t.Errorf("Expected no-source reason, got %q", last.Status)
	}
	if fetcher.calls+transcriber.calls+summarizer.calls != 0 {
		t.Error("Expected no remote calls for a sourceless run")
	}
}

func TestRunBothSourcesFails(t *testing.T) {
	o := New(&fakeFetcher{}, &fakeTranscriber{}, &fakeSummarizer{}, nil, nil)

	all := drain(t, o.Run(context.Background(), Source{LocalPath: "/a.mp3", RemoteRef: "abc"}))

	last := all[len(all)-1]
	if !last.Failed() || !strings.Contains(last.Status, "ambiguous source") {
		t.Errorf("Expected ambiguous-source failure, got %+v", last)
	}
}

func TestRunLocalFileCompletes(t *testing.T) {
	fetcher := &fakeFetcher{}
	transcriber := &fakeTranscriber{transcript: "Alice said hello"}
	summarizer := &fakeSummarizer{doc: sixSectionDoc}
	o := New(fetcher, transcriber, summarizer, nil, nil)

	all := drain(t, o.Run(context.Background(), Source{LocalPath: writeLocalAudio(t)}))

	// A local source must never touch the fetcher.
	if fetcher.calls != 0 {
		t.Errorf("Expected fetcher untouched, got %d calls", fetcher.calls)
	}

	expectedStages := []Stage{
		StageInitializing,
		StageAcquiringSource,
		StageSourceReady,
		StageTranscribing,
		StageTranscriptionReady,
		StageSummarizing,
		StageComplete,
	}
	if len(all) != len(expectedStages) {
		t.Fatalf("Expected %d updates, got %d: %+v", len(expectedStages), len(all), all)
	}
	for i, stage := range expectedStages {
		if all[i].Stage != stage {
			t.Errorf("Update %d: expected stage %s, got %s", i, stage, all[i].Stage)
		}
	}

	// Minutes must be empty in every update before Complete.
	for _, u := range all[:len(all)-1] {
		if u.Minutes != "" {
			t.Errorf("Expected empty minutes before completion, got %q at %s", u.Minutes, u.Stage)
		}
	}

	final := all[len(all)-1]
	if final.Status != "Alice said hello" {
		t.Errorf("Expected final status to carry the transcript, got %q", final.Status)
	}
	for _, heading := range []string{"Meeting Summary", "Attendees", "Key Discussion Points", "Action Items", "Next Steps", "Additional Notes"} {
		if !strings.Contains(final.Minutes, heading) {
			t.Errorf("Expected minutes to contain %q", heading)
		}
	}

	// No progress update may carry the failure marker.
	for _, u := range all {
		if strings.HasPrefix(u.Status, FailurePrefix) {
			t.Errorf("Unexpected failure marker in %+v", u)
		}
	}
}

func TestRunRemoteDownloadFailureStopsBeforeTranscription(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("permission denied on file xyz")}
	transcriber := &fakeTranscriber{}
	o := New(fetcher, transcriber, &fakeSummarizer{}, nil, nil)

	all := drain(t, o.Run(context.Background(), Source{RemoteRef: "xyz"}))

	last := all[len(all)-1]
	if !last.Failed() {
		t.Fatalf("Expected failure, got %+v", last)
	}
	if !strings.Contains(last.Status, "permission denied") {
		t.Errorf("Expected underlying error embedded, got %q", last.Status)
	}
	if transcriber.calls != 0 {
		t.Error("Transcription must never start after a failed download")
	}
	for _, u := range all {
		if u.Stage == StageTranscribing {
			t.Error("Expected run to stop before the transcribing stage")
		}
	}
}

func TestRunRemoteSourceDeletesTemporaryArtifact(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "downloaded.mp3")
	if err := os.WriteFile(tmp, []byte("audio"), 0600); err != nil {
		t.Fatal(err)
	}
	fetcher := &fakeFetcher{path: tmp, name: "weekly.mp3"}
	o := New(fetcher, &fakeTranscriber{transcript: "t"}, &fakeSummarizer{doc: "m"}, nil, nil)

	all := drain(t, o.Run(context.Background(), Source{RemoteRef: "abc"}))

	if all[len(all)-1].Stage != StageComplete {
		t.Fatalf("Expected completion, got %+v", all[len(all)-1])
	}
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Error("Expected temporary artifact to be deleted after the run")
	}
}

func TestRunRemoteFailedTranscriptionStillDeletesArtifact(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "downloaded.mp3")
	if err := os.WriteFile(tmp, []byte("audio"), 0600); err != nil {
		t.Fatal(err)
	}
	fetcher := &fakeFetcher{path: tmp, name: "weekly.mp3"}
	o := New(fetcher, &fakeTranscriber{err: errors.New("dial tcp: connection refused")}, &fakeSummarizer{}, nil, nil)

	all := drain(t, o.Run(context.Background(), Source{RemoteRef: "abc"}))

	if !all[len(all)-1].Failed() {
		t.Fatal("Expected failure")
	}
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Error("Expected temporary artifact to be deleted even on failure")
	}
}

func TestRunTranscriptionErrorNeverReachesSummarizer(t *testing.T) {
	transcriber := &fakeTranscriber{err: errors.New("dial tcp: connection refused")}
	summarizer := &fakeSummarizer{}
	o := New(nil, transcriber, summarizer, nil, nil)

	all := drain(t, o.Run(context.Background(), Source{LocalPath: writeLocalAudio(t)}))

	last := all[len(all)-1]
	if !last.Failed() {
		t.Fatalf("Expected failure, got %+v", last)
	}
	if !strings.Contains(last.Status, "connection refused") {
		t.Errorf("Expected transport error embedded, got %q", last.Status)
	}
	if !strings.HasPrefix(last.Status, FailurePrefix) {
		t.Errorf("Expected failure marker prefix, got %q", last.Status)
	}
	if summarizer.calls != 0 {
		t.Error("Summarizing must never start after a failed transcription")
	}
}

func TestRunSummarizationError(t *testing.T) {
	summarizer := &fakeSummarizer{err: errors.New("quota exceeded")}
	o := New(nil, &fakeTranscriber{transcript: "words"}, summarizer, nil, nil)

	all := drain(t, o.Run(context.Background(), Source{LocalPath: writeLocalAudio(t)}))

	last := all[len(all)-1]
	if !last.Failed() || !strings.Contains(last.Status, "quota exceeded") {
		t.Errorf("Expected summarization failure with reason, got %+v", last)
	}
}

func TestRunUnvalidatableLocalFileFails(t *testing.T) {
	transcriber := &fakeTranscriber{}
	o := New(nil, transcriber, &fakeSummarizer{}, nil, nil)

	all := drain(t, o.Run(context.Background(), Source{LocalPath: filepath.Join(t.TempDir(), "missing.mp3")}))

	last := all[len(all)-1]
	if !last.Failed() {
		t.Fatalf("Expected failure for missing local file, got %+v", last)
	}
	if transcriber.calls != 0 {
		t.Error("Expected no transcription attempt for an invalid file")
	}
}

func TestRunWithRemoteSourceAndNoFetcherFails(t *testing.T) {
	o := New(nil, &fakeTranscriber{}, &fakeSummarizer{}, nil, nil)

	all := drain(t, o.Run(context.Background(), Source{RemoteRef: "abc"}))

	last := all[len(all)-1]
	if !last.Failed() || !strings.Contains(last.Status, "not authorized") {
		t.Errorf("Expected not-authorized failure, got %+v", last)
	}
}

func TestRunStopsWhenConsumerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	o := New(nil, &fakeTranscriber{transcript: "t"}, &fakeSummarizer{doc: "m"}, nil, nil)

	updates := o.Run(ctx, Source{LocalPath: writeLocalAudio(t)})

	first, ok := <-updates
	if !ok || first.Stage != StageInitializing {
		t.Fatalf("Expected initializing update, got %+v (ok=%v)", first, ok)
	}
	cancel()

	// The producer must terminate and close the stream without reaching
	// completion.
	for u := range updates {
		if u.Stage == StageComplete {
			t.Error("Expected run to stop before completion after cancellation")
		}
	}
}

func TestUpdateFailedHelper(t *testing.T) {
	if (Update{Stage: StageComplete}).Failed() {
		t.Error("Complete must not report failed")
	}
	if !(Update{Stage: StageFailed, Status: fmt.Sprintf("%sboom", FailurePrefix)}).Failed() {
		t.Error("Failed stage must report failed")
	}
}
