package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"transit/internal/config"
	"transit/internal/pipeline"
)

func testSettings(baseURL string) config.AssemblyAISettings {
	return config.AssemblyAISettings{
		BaseURL:           baseURL,
		SpeechModel:       "best",
		LanguageDetection: true,
		PollInterval:      time.Millisecond,
		APIKey:            "test-key",
	}
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meeting.mp3")
	if err := os.WriteFile(path, []byte("fake audio bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// fakeService emulates the upload/create/poll cycle. The job reports
// "processing" for pendingPolls polls before finishing with finalStatus.
type fakeService struct {
	t            *testing.T
	pendingPolls int32
	finalStatus  string
	polls        atomic.Int32
	uploaded     []byte
	request      transcriptRequest
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v2/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("authorization") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error": "bad key"}`)
			return
		}
		f.uploaded, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(uploadResponse{UploadURL: "https://cdn.example/upload/1"})
	})

	mux.HandleFunc("POST /v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&f.request); err != nil {
			f.t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(transcriptResponse{ID: "job-1", Status: "queued"})
	})

	mux.HandleFunc("GET /v2/transcript/job-1", func(w http.ResponseWriter, r *http.Request) {
		n := f.polls.Add(1)
		if n <= f.pendingPolls {
			json.NewEncoder(w).Encode(transcriptResponse{ID: "job-1", Status: "processing"})
			return
		}
		if f.finalStatus == "error" {
			json.NewEncoder(w).Encode(transcriptResponse{ID: "job-1", Status: "error", Error: "audio too short"})
			return
		}
		speakerB := "B"
		json.NewEncoder(w).Encode(transcriptResponse{
			ID:           "job-1",
			Status:       "completed",
			Text:         "Hi there",
			LanguageCode: "de",
			Words: []serviceWord{
				{Text: "Hi", Start: 0, End: 500, Confidence: 0.9},
				{Text: "there", Start: 500, End: 1000, Confidence: 0.8, Speaker: &speakerB},
			},
		})
	})

	return mux
}

func TestNewClient_MissingKey(t *testing.T) {
	s := testSettings("http://localhost")
	s.APIKey = "  "
	if _, err := NewClient(s); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestTranscribe(t *testing.T) {
	fake := &fakeService{t: t, pendingPolls: 2, finalStatus: "completed"}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client, err := NewClient(testSettings(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	var lastRead atomic.Int64
	client.Progress = func(read, total int64) { lastRead.Store(read) }

	audio := writeAudio(t)
	tr, err := client.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if string(fake.uploaded) != "fake audio bytes" {
		t.Errorf("uploaded = %q", fake.uploaded)
	}
	if got := lastRead.Load(); got != int64(len("fake audio bytes")) {
		t.Errorf("progress reported %d bytes", got)
	}
	if !fake.request.SpeakerLabels || !fake.request.Punctuate || !fake.request.FormatText {
		t.Errorf("request flags not set: %+v", fake.request)
	}
	if fake.request.AudioURL != "https://cdn.example/upload/1" || fake.request.SpeechModel != "best" {
		t.Errorf("unexpected request: %+v", fake.request)
	}
	if got := fake.polls.Load(); got != 3 {
		t.Errorf("polls = %d, want 3", got)
	}

	if tr.ID != "job-1" || tr.Status != "completed" || tr.LanguageCode != "de" || tr.AudioURL != audio {
		t.Errorf("unexpected transcript header: %+v", tr)
	}
	want := []pipeline.Word{
		{Text: "Hi", Start: 0, End: 500, Confidence: 0.9, Speaker: "A"},
		{Text: "there", Start: 500, End: 1000, Confidence: 0.8, Speaker: "B"},
	}
	if len(tr.Words) != len(want) {
		t.Fatalf("got %d words, want %d", len(tr.Words), len(want))
	}
	for i := range want {
		if tr.Words[i] != want[i] {
			t.Errorf("word %d = %+v, want %+v", i, tr.Words[i], want[i])
		}
	}
}

func TestTranscribe_JobError(t *testing.T) {
	fake := &fakeService{t: t, finalStatus: "error"}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client, err := NewClient(testSettings(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Transcribe(context.Background(), writeAudio(t))
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Fatalf("expected ErrTranscriptionFailed, got %v", err)
	}
}

func TestTranscribe_StatusError(t *testing.T) {
	fake := &fakeService{t: t}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	s := testSettings(srv.URL)
	s.APIKey = "wrong"
	client, err := NewClient(s)
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Transcribe(context.Background(), writeAudio(t))
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if serr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", serr.StatusCode)
	}
}

func TestTranscribe_MissingFile(t *testing.T) {
	client, err := NewClient(testSettings("http://127.0.0.1:1"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "none.mp3")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTranscribe_ContextCancelledWhilePolling(t *testing.T) {
	fake := &fakeService{t: t, pendingPolls: 1 << 30}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	s := testSettings(srv.URL)
	s.PollInterval = 5 * time.Millisecond
	client, err := NewClient(s)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Transcribe(ctx, writeAudio(t))
	if err == nil {
		t.Fatal("expected error after context deadline")
	}
}
