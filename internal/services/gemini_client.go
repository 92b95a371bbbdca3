package services

import (
  "bytes"
  "context"
  "encoding/base64"
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

// GeminiClient wraps the Gemini generateContent REST API for text and image
// generation. Every call is a single attempt; failed calls surface the
// provider's message and are never retried here.
type GeminiClient interface {
  GenerateText(ctx context.Context, system string, prompt string, images []ReferenceImage) (string, error)
  GenerateImage(ctx context.Context, req GeminiImageRequest) (*GeneratedImage, error)
}

type ReferenceImage struct {
  MimeType string
  Data     []byte
}

type GeminiImageRequest struct {
  Model           string
  Prompt          string
  NegativePrompt  string
  AspectRatio     string
  ReferenceImages []ReferenceImage
}

type GeneratedImage struct {
  MimeType string
  Data     []byte
}

type geminiClient struct {
  log        *logger.Logger
  baseURL    string
  apiKey     string
  textModel  string
  imageModel string
  httpClient *http.Client
}

func NewGeminiClient(log *logger.Logger) (GeminiClient, error) {
  apiKey := os.Getenv("GEMINI_API_KEY")
  if apiKey == "" {
    return nil, fmt.Errorf("missing GEMINI_API_KEY")
  }

  baseURL := os.Getenv("GEMINI_BASE_URL")
  if baseURL == "" {
    baseURL = "https://generativelanguage.googleapis.com"
  }

  textModel := os.Getenv("GEMINI_TEXT_MODEL")
  if textModel == "" {
    textModel = "gemini-2.0-flash"
  }

  imageModel := os.Getenv("GEMINI_IMAGE_MODEL")
  if imageModel == "" {
    imageModel = "gemini-2.0-flash-preview-image-generation"
  }

  timeoutSec := 120
  if v := os.Getenv("GEMINI_TIMEOUT_SECONDS"); v != "" {
    if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
      timeoutSec = parsed
    }
  }

  return &geminiClient{
    log:        log.With("service", "GeminiClient"),
    baseURL:    baseURL,
    apiKey:     apiKey,
    textModel:  textModel,
    imageModel: imageModel,
    httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
  }, nil
}

type geminiHTTPError struct {
  StatusCode int
  Body       string
}

func (e *geminiHTTPError) Error() string {
  return fmt.Sprintf("gemini http %d: %s", e.StatusCode, e.Body)
}

type geminiPart struct {
  Text       string            `json:"text,omitempty"`
  InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
  MimeType string `json:"mime_type"`
  Data     string `json:"data"`
}

type geminiContent struct {
  Role  string       `json:"role,omitempty"`
  Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
  ResponseModalities []string `json:"responseModalities,omitempty"`
  AspectRatio        string   `json:"aspectRatio,omitempty"`
}

type generateContentRequest struct {
  Contents          []geminiContent         `json:"contents"`
  SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
  GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type generateContentResponse struct {
  Candidates []struct {
    Content struct {
      Parts []struct {
        Text       string `json:"text,omitempty"`
        InlineData *struct {
          MimeType string `json:"mimeType"`
          Data     string `json:"data"`
        } `json:"inlineData,omitempty"`
      } `json:"parts"`
    } `json:"content"`
    FinishReason string `json:"finishReason,omitempty"`
  } `json:"candidates"`
  Error *struct {
    Code    int    `json:"code"`
    Message string `json:"message"`
  } `json:"error,omitempty"`
}

func (c *geminiClient) doOnce(ctx context.Context, model string, body generateContentRequest) (*generateContentResponse, error) {
  var buf bytes.Buffer
  if err := json.NewEncoder(&buf).Encode(body); err != nil {
    return nil, err
  }

  path := fmt.Sprintf("/v1beta/models/%s:generateContent", model)
  req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
  if err != nil {
    return nil, err
  }
  req.Header.Set("x-goog-api-key", c.apiKey)
  req.Header.Set("Content-Type", "application/json")

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
    return nil, &geminiHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
  }

  var out generateContentResponse
  if err := json.Unmarshal(raw, &out); err != nil {
    return nil, fmt.Errorf("gemini decode error: %w; raw=%s", err, string(raw))
  }
  if out.Error != nil {
    return nil, fmt.Errorf("gemini error %d: %s", out.Error.Code, out.Error.Message)
  }
  return &out, nil
}

func (c *geminiClient) GenerateText(ctx context.Context, system string, prompt string, images []ReferenceImage) (string, error) {
  parts := []geminiPart{{Text: prompt}}
  for _, img := range images {
    mime := img.MimeType
    if mime == "" {
      mime = "image/png"
    }
    parts = append(parts, geminiPart{InlineData: &geminiInlineData{
      MimeType: mime,
      Data:     base64.StdEncoding.EncodeToString(img.Data),
    }})
  }

  req := generateContentRequest{
    Contents: []geminiContent{{Role: "user", Parts: parts}},
  }
  if system != "" {
    req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
  }

  resp, err := c.doOnce(ctx, c.textModel, req)
  if err != nil {
    return "", err
  }

  var text strings.Builder
  for _, cand := range resp.Candidates {
    for _, p := range cand.Content.Parts {
      if p.Text != "" {
        text.WriteString(p.Text)
      }
    }
  }
  if text.Len() == 0 {
    return "", fmt.Errorf("gemini returned no text candidates")
  }
  return text.String(), nil
}

func (c *geminiClient) GenerateImage(ctx context.Context, imgReq GeminiImageRequest) (*GeneratedImage, error) {
  model := imgReq.Model
  if model == "" {
    model = c.imageModel
  }

  prompt := imgReq.Prompt
  if imgReq.NegativePrompt != "" {
    prompt = prompt + "\n\nAvoid: " + imgReq.NegativePrompt
  }

  parts := []geminiPart{{Text: prompt}}
  for _, img := range imgReq.ReferenceImages {
    mime := img.MimeType
    if mime == "" {
      mime = "image/png"
    }
    parts = append(parts, geminiPart{InlineData: &geminiInlineData{
      MimeType: mime,
      Data:     base64.StdEncoding.EncodeToString(img.Data),
    }})
  }

  req := generateContentRequest{
    Contents: []geminiContent{{Role: "user", Parts: parts}},
    GenerationConfig: &geminiGenerationConfig{
      ResponseModalities: []string{"TEXT", "IMAGE"},
      AspectRatio:        imgReq.AspectRatio,
    },
  }

  resp, err := c.doOnce(ctx, model, req)
  if err != nil {
    return nil, err
  }

  for _, cand := range resp.Candidates {
    for _, p := range cand.Content.Parts {
      if p.InlineData != nil && p.InlineData.Data != "" {
        data, decErr := base64.StdEncoding.DecodeString(p.InlineData.Data)
        if decErr != nil {
          return nil, fmt.Errorf("gemini image decode error: %w", decErr)
        }
        return &GeneratedImage{MimeType: p.InlineData.MimeType, Data: data}, nil
      }
    }
  }
  return nil, fmt.Errorf("gemini returned no image data")
}
