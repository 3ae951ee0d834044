package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"transit/internal/config"
	"transit/internal/pipeline"

	"golang.org/x/time/rate"
)

const (
	uploadPath     = "/v2/upload"
	transcriptPath = "/v2/transcript"
	uploadTimeout  = 30 * time.Minute
	requestTimeout = 60 * time.Second

	// defaultSpeaker is assigned to words the service returns without a label.
	defaultSpeaker = "A"
)

var (
	// ErrMissingAPIKey is returned by NewClient when no key is configured.
	ErrMissingAPIKey = errors.New("missing AssemblyAI API key")
	// ErrTranscriptionFailed wraps the service's message for a failed job.
	ErrTranscriptionFailed = errors.New("transcription failed")
)

// StatusError is returned for any non-2xx HTTP answer.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}

// ProgressFunc is called with (bytesRead, totalBytes) during upload.
type ProgressFunc func(bytesRead, totalBytes int64)

// progressReader wraps an io.Reader and reports progress.
type progressReader struct {
	reader   io.Reader
	total    int64
	read     int64
	callback ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.read += int64(n)
	if pr.callback != nil {
		pr.callback(pr.read, pr.total)
	}
	return n, err
}

// Client talks to the AssemblyAI REST API.
type Client struct {
	baseURL           string
	apiKey            string
	speechModel       string
	languageDetection bool
	pollInterval      time.Duration

	httpClient *http.Client
	// Progress, when set, receives upload progress.
	Progress ProgressFunc
}

// NewClient creates a client from the AssemblyAI settings.
func NewClient(settings config.AssemblyAISettings) (*Client, error) {
	if strings.TrimSpace(settings.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	poll := settings.PollInterval
	if poll <= 0 {
		poll = 3 * time.Second
	}
	return &Client{
		baseURL:           strings.TrimRight(settings.BaseURL, "/"),
		apiKey:            strings.TrimSpace(settings.APIKey),
		speechModel:       settings.SpeechModel,
		languageDetection: settings.LanguageDetection,
		pollInterval:      poll,
		httpClient:        &http.Client{Timeout: uploadTimeout},
	}, nil
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL          string `json:"audio_url"`
	SpeakerLabels     bool   `json:"speaker_labels"`
	Punctuate         bool   `json:"punctuate"`
	FormatText        bool   `json:"format_text"`
	SpeechModel       string `json:"speech_model,omitempty"`
	LanguageDetection bool   `json:"language_detection"`
}

type serviceWord struct {
	Text       string  `json:"text"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    *string `json:"speaker"`
}

type transcriptResponse struct {
	ID           string        `json:"id"`
	Status       string        `json:"status"`
	Error        string        `json:"error"`
	Text         string        `json:"text"`
	LanguageCode string        `json:"language_code"`
	Words        []serviceWord `json:"words"`
}

// Transcribe uploads a local audio file, requests a speaker-labelled
// transcript and waits for it to complete.
func (c *Client) Transcribe(ctx context.Context, filePath string) (*pipeline.Transcript, error) {
	uploadURL, err := c.upload(ctx, filePath)
	if err != nil {
		return nil, err
	}
	slog.Debug("upload complete", "file", filepath.Base(filePath))

	job, err := c.createTranscript(ctx, uploadURL)
	if err != nil {
		return nil, err
	}
	slog.Info("transcription queued", "file", filepath.Base(filePath), "id", job.ID)

	done, err := c.waitForTranscript(ctx, job.ID)
	if err != nil {
		return nil, err
	}

	transcript := toTranscript(done, filePath)
	if err := pipeline.ValidateWords(transcript.Words); err != nil {
		return nil, fmt.Errorf("transcript %s: %w", done.ID, err)
	}
	return transcript, nil
}

func (c *Client) upload(ctx context.Context, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat file: %w", err)
	}

	body := &progressReader{
		reader:   f,
		total:    stat.Size(),
		callback: c.Progress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.ContentLength = stat.Size()
	setHeaders(req, c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var out uploadResponse
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	if out.UploadURL == "" {
		return "", fmt.Errorf("upload: response has no upload_url")
	}
	return out.UploadURL, nil
}

func (c *Client) createTranscript(ctx context.Context, audioURL string) (*transcriptResponse, error) {
	payload, err := json.Marshal(transcriptRequest{
		AudioURL:          audioURL,
		SpeakerLabels:     true,
		Punctuate:         true,
		FormatText:        true,
		SpeechModel:       c.speechModel,
		LanguageDetection: c.languageDetection,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+transcriptPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	setHeaders(req, c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var out transcriptResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("create transcript: %w", err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("create transcript: response has no id")
	}
	return &out, nil
}

// waitForTranscript polls the job, paced by a limiter, until it completes
// or fails.
func (c *Client) waitForTranscript(ctx context.Context, id string) (*transcriptResponse, error) {
	limiter := rate.NewLimiter(rate.Every(c.pollInterval), 1)

	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("poll transcript %s: %w", id, err)
		}

		job, err := c.getTranscript(ctx, id)
		if err != nil {
			return nil, err
		}

		switch job.Status {
		case "completed":
			return job, nil
		case "error":
			return nil, fmt.Errorf("transcript %s: %w: %s", id, ErrTranscriptionFailed, job.Error)
		default:
			slog.Debug("transcript pending", "id", id, "status", job.Status)
		}
	}
}

func (c *Client) getTranscript(ctx context.Context, id string) (*transcriptResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+transcriptPath+"/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	setHeaders(req, c.apiKey)

	var out transcriptResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("get transcript %s: %w", id, err)
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func toTranscript(job *transcriptResponse, filePath string) *pipeline.Transcript {
	t := &pipeline.Transcript{
		ID:           job.ID,
		Text:         job.Text,
		Status:       "completed",
		AudioURL:     filePath,
		LanguageCode: job.LanguageCode,
		Words:        make([]pipeline.Word, 0, len(job.Words)),
	}
	if t.LanguageCode == "" {
		t.LanguageCode = "en"
	}
	for _, w := range job.Words {
		speaker := defaultSpeaker
		if w.Speaker != nil && *w.Speaker != "" {
			speaker = *w.Speaker
		}
		t.Words = append(t.Words, pipeline.Word{
			Text:       w.Text,
			Start:      w.Start,
			End:        w.End,
			Confidence: w.Confidence,
			Speaker:    speaker,
		})
	}
	return t
}
