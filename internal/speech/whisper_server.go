package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// WhisperServer posts audio to a whisper.cpp server's /inference endpoint.
type WhisperServer struct {
	serverURL  string
	language   string
	httpClient *http.Client
}

type ServerOption func(*WhisperServer)

func WithLanguage(lang string) ServerOption {
	return func(w *WhisperServer) { w.language = lang }
}

func WithHTTPClient(c *http.Client) ServerOption {
	return func(w *WhisperServer) { w.httpClient = c }
}

func NewWhisperServer(serverURL string, opts ...ServerOption) (*WhisperServer, error) {
	if serverURL == "" {
		return nil, errors.New("whisper server: url must not be empty")
	}
	w := &WhisperServer{
		serverURL:  strings.TrimRight(serverURL, "/"),
		language:   "en",
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// Transcribe implements Transcriber.
func (w *WhisperServer) Transcribe(ctx context.Context, audio Audio) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	name := audio.Filename
	if name == "" {
		name = "answer.wav"
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("whisper server: create form file: %w", err)
	}
	if _, err := fw.Write(audio.Data); err != nil {
		return "", fmt.Errorf("whisper server: write audio: %w", err)
	}
	if w.language != "" {
		if err := mw.WriteField("language", w.language); err != nil {
			return "", fmt.Errorf("whisper server: write language: %w", err)
		}
	}
	if err := mw.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("whisper server: write format: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("whisper server: close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.serverURL+"/inference", &body)
	if err != nil {
		return "", fmt.Errorf("whisper server: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper server: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whisper server: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("whisper server: read body: %w", err)
	}
	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("whisper server: decode response: %w", err)
	}
	return strings.TrimSpace(result.Text), nil
}
