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

const (
  VideoJobCompleted  = "completed"
  VideoJobInProgress = "in_progress"
  VideoJobFailed     = "failed"
)

// HiggsfieldClient wraps the Higgsfield video generation API, which is
// asynchronous: a submit call returns a job id and the job is polled until it
// finishes or the wall-clock ceiling is hit. Hitting the ceiling is not an
// error; the caller gets an in-progress result pointing at the dashboard.
type HiggsfieldClient interface {
  SubmitVideo(ctx context.Context, req HiggsfieldVideoRequest) (string, error)
  PollJob(ctx context.Context, jobID string) (*HiggsfieldVideoResult, error)
  GenerateVideo(ctx context.Context, req HiggsfieldVideoRequest) (*HiggsfieldVideoResult, error)
}

type HiggsfieldVideoRequest struct {
  Prompt          string
  Model           string
  ImageURL        string
  DurationSeconds float64
}

type HiggsfieldVideoResult struct {
  Status   string
  JobID    string
  VideoURL string
  Duration float64
  Message  string
}

type higgsfieldClient struct {
  log        *logger.Logger
  baseURL    string
  apiKey     string
  model      string
  httpClient *http.Client

  pollInterval time.Duration
  pollCeiling  time.Duration
}

func NewHiggsfieldClient(log *logger.Logger) (HiggsfieldClient, error) {
  apiKey := os.Getenv("HIGGSFIELD_API_KEY")
  if apiKey == "" {
    return nil, fmt.Errorf("missing HIGGSFIELD_API_KEY")
  }

  baseURL := os.Getenv("HIGGSFIELD_BASE_URL")
  if baseURL == "" {
    baseURL = "https://platform.higgsfield.ai"
  }

  model := os.Getenv("HIGGSFIELD_MODEL")
  if model == "" {
    model = "higgsfield-v1"
  }

  pollIntervalSec := 5
  if v := os.Getenv("HIGGSFIELD_POLL_INTERVAL_SECONDS"); v != "" {
    if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
      pollIntervalSec = parsed
    }
  }

  pollCeilingMin := 10
  if v := os.Getenv("HIGGSFIELD_POLL_CEILING_MINUTES"); v != "" {
    if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
      pollCeilingMin = parsed
    }
  }

  return &higgsfieldClient{
    log:          log.With("service", "HiggsfieldClient"),
    baseURL:      baseURL,
    apiKey:       apiKey,
    model:        model,
    httpClient:   &http.Client{Timeout: 60 * time.Second},
    pollInterval: time.Duration(pollIntervalSec) * time.Second,
    pollCeiling:  time.Duration(pollCeilingMin) * time.Minute,
  }, nil
}

type higgsfieldHTTPError struct {
  StatusCode int
  Body       string
}

func (e *higgsfieldHTTPError) Error() string {
  return fmt.Sprintf("higgsfield http %d: %s", e.StatusCode, e.Body)
}

func (c *higgsfieldClient) doOnce(ctx context.Context, method, path string, body any, out any) error {
  var buf bytes.Buffer
  if body != nil {
    if err := json.NewEncoder(&buf).Encode(body); err != nil {
      return err
    }
  }

  req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
  if err != nil {
    return err
  }
  req.Header.Set("Authorization", "Bearer "+c.apiKey)
  req.Header.Set("Content-Type", "application/json")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return err
  }

  raw, readErr := io.ReadAll(resp.Body)
  _ = resp.Body.Close()
  if readErr != nil {
    return readErr
  }

  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return &higgsfieldHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
  }
  if out == nil {
    return nil
  }
  if err := json.Unmarshal(raw, out); err != nil {
    return fmt.Errorf("higgsfield decode error: %w; raw=%s", err, string(raw))
  }
  return nil
}

type submitVideoRequest struct {
  Model           string  `json:"model"`
  Prompt          string  `json:"prompt"`
  ImageURL        string  `json:"image_url,omitempty"`
  DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

type submitVideoResponse struct {
  JobID string `json:"job_id"`
}

type jobStatusResponse struct {
  JobID  string `json:"job_id"`
  Status string `json:"status"`
  Error  string `json:"error,omitempty"`
  Result struct {
    VideoURL        string  `json:"video_url"`
    DurationSeconds float64 `json:"duration_seconds"`
  } `json:"result"`
}

func (c *higgsfieldClient) SubmitVideo(ctx context.Context, videoReq HiggsfieldVideoRequest) (string, error) {
  model := videoReq.Model
  if model == "" {
    model = c.model
  }
  body := submitVideoRequest{
    Model:           model,
    Prompt:          videoReq.Prompt,
    ImageURL:        videoReq.ImageURL,
    DurationSeconds: videoReq.DurationSeconds,
  }
  var resp submitVideoResponse
  if err := c.doOnce(ctx, http.MethodPost, "/v1/video/generations", body, &resp); err != nil {
    return "", err
  }
  if resp.JobID == "" {
    return "", fmt.Errorf("higgsfield returned no job id")
  }
  return resp.JobID, nil
}

func (c *higgsfieldClient) PollJob(ctx context.Context, jobID string) (*HiggsfieldVideoResult, error) {
  var resp jobStatusResponse
  path := fmt.Sprintf("/v1/video/generations/%s", jobID)
  if err := c.doOnce(ctx, http.MethodGet, path, nil, &resp); err != nil {
    return nil, err
  }

  switch strings.ToLower(resp.Status) {
  case "completed", "succeeded":
    return &HiggsfieldVideoResult{
      Status:   VideoJobCompleted,
      JobID:    jobID,
      VideoURL: resp.Result.VideoURL,
      Duration: resp.Result.DurationSeconds,
    }, nil
  case "failed", "error":
    msg := resp.Error
    if msg == "" {
      msg = "video generation failed"
    }
    return &HiggsfieldVideoResult{Status: VideoJobFailed, JobID: jobID, Message: msg}, nil
  default:
    return &HiggsfieldVideoResult{Status: VideoJobInProgress, JobID: jobID}, nil
  }
}

// GenerateVideo submits a job and polls it until completion, failure or the
// wall-clock ceiling. On ceiling the job keeps running server-side; there is
// no way to abort a submitted generation.
func (c *higgsfieldClient) GenerateVideo(ctx context.Context, videoReq HiggsfieldVideoRequest) (*HiggsfieldVideoResult, error) {
  jobID, err := c.SubmitVideo(ctx, videoReq)
  if err != nil {
    return nil, err
  }

  deadline := time.Now().Add(c.pollCeiling)
  for {
    result, pollErr := c.PollJob(ctx, jobID)
    if pollErr != nil {
      return nil, pollErr
    }
    switch result.Status {
    case VideoJobCompleted:
      return result, nil
    case VideoJobFailed:
      return nil, fmt.Errorf("higgsfield job %s failed: %s", jobID, result.Message)
    }

    if time.Now().After(deadline) {
      c.log.Warn("Video generation exceeded poll ceiling, returning in-progress result", "job_id", jobID, "ceiling", c.pollCeiling.String())
      return &HiggsfieldVideoResult{
        Status:  VideoJobInProgress,
        JobID:   jobID,
        Message: "Video generation still in progress, check the Higgsfield dashboard",
      }, nil
    }

    select {
    case <-ctx.Done():
      return nil, ctx.Err()
    case <-time.After(c.pollInterval):
    }
  }
}
