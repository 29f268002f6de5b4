package speech

import (
	"bytes"
	"context"
	"fmt"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// WhisperAPI transcribes through the OpenAI audio transcription endpoint
// (or a compatible one such as Groq).
type WhisperAPI struct {
	client   oai.Client
	model    string
	language string
}

func NewWhisperAPI(apiKey, baseURL, model, language string) (*WhisperAPI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("whisper api: api key must not be empty")
	}
	if model == "" {
		model = string(oai.AudioModelWhisper1)
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &WhisperAPI{client: oai.NewClient(opts...), model: model, language: language}, nil
}

// Transcribe implements Transcriber.
func (w *WhisperAPI) Transcribe(ctx context.Context, audio Audio) (string, error) {
	name := audio.Filename
	if name == "" {
		name = "answer.wav"
	}
	contentType := audio.ContentType
	if contentType == "" {
		contentType = "audio/wav"
	}

	params := oai.AudioTranscriptionNewParams{
		File:  oai.File(bytes.NewReader(audio.Data), name, contentType),
		Model: oai.AudioModel(w.model),
	}
	if w.language != "" {
		params.Language = oai.String(w.language)
	}

	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("whisper api: transcribe: %w", err)
	}
	return resp.Text, nil
}
