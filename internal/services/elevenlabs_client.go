package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "os"
  "strconv"
  "strings"
  "time"

  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
)

// ElevenLabsClient wraps the ElevenLabs text-to-speech API. Synthesize returns
// raw audio bytes (mpeg by default). Single attempt, no retries.
type ElevenLabsClient interface {
  Synthesize(ctx context.Context, voiceID string, text string) ([]byte, error)
}

type elevenLabsClient struct {
  log            *logger.Logger
  baseURL        string
  apiKey         string
  modelID        string
  defaultVoiceID string
  httpClient     *http.Client
}

func NewElevenLabsClient(log *logger.Logger) (ElevenLabsClient, error) {
  apiKey := os.Getenv("ELEVENLABS_API_KEY")
  if apiKey == "" {
    return nil, fmt.Errorf("missing ELEVENLABS_API_KEY")
  }

  baseURL := os.Getenv("ELEVENLABS_BASE_URL")
  if baseURL == "" {
    baseURL = "https://api.elevenlabs.io"
  }

  modelID := os.Getenv("ELEVENLABS_MODEL_ID")
  if modelID == "" {
    modelID = "eleven_multilingual_v2"
  }

  defaultVoiceID := os.Getenv("ELEVENLABS_DEFAULT_VOICE_ID")

  timeoutSec := 120
  if v := os.Getenv("ELEVENLABS_TIMEOUT_SECONDS"); v != "" {
    if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
      timeoutSec = parsed
    }
  }

  return &elevenLabsClient{
    log:            log.With("service", "ElevenLabsClient"),
    baseURL:        baseURL,
    apiKey:         apiKey,
    modelID:        modelID,
    defaultVoiceID: defaultVoiceID,
    httpClient:     &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
  }, nil
}

type elevenLabsHTTPError struct {
  StatusCode int
  Body       string
}

func (e *elevenLabsHTTPError) Error() string {
  return fmt.Sprintf("elevenlabs http %d: %s", e.StatusCode, e.Body)
}

type ttsRequest struct {
  Text          string `json:"text"`
  ModelID       string `json:"model_id"`
  VoiceSettings struct {
    Stability       float64 `json:"stability"`
    SimilarityBoost float64 `json:"similarity_boost"`
  } `json:"voice_settings"`
}

func (c *elevenLabsClient) Synthesize(ctx context.Context, voiceID string, text string) ([]byte, error) {
  if strings.TrimSpace(text) == "" {
    return nil, fmt.Errorf("text required for speech synthesis")
  }
  if voiceID == "" {
    voiceID = c.defaultVoiceID
  }
  if voiceID == "" {
    return nil, fmt.Errorf("voice id required (no ELEVENLABS_DEFAULT_VOICE_ID configured)")
  }

  body := ttsRequest{Text: text, ModelID: c.modelID}
  body.VoiceSettings.Stability = 0.5
  body.VoiceSettings.SimilarityBoost = 0.75

  var buf bytes.Buffer
  if err := json.NewEncoder(&buf).Encode(body); err != nil {
    return nil, err
  }

  path := fmt.Sprintf("/v1/text-to-speech/%s", voiceID)
  req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
  if err != nil {
    return nil, err
  }
  req.Header.Set("xi-api-key", c.apiKey)
  req.Header.Set("Content-Type", "application/json")
  req.Header.Set("Accept", "audio/mpeg")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return nil, err
  }

  raw, readErr := io.ReadAll(resp.Body)
  _ = resp.Body.Close()
  if readErr != nil {
    return nil, readErr
  }

  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return nil, &elevenLabsHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
  }
  return raw, nil
}
