package services

import (
  "bytes"
  "context"
  "fmt"
  "io"
  "testing"

  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
)

func testLogger(tb testing.TB) *logger.Logger {
  tb.Helper()
  log, err := logger.New("test")
  if err != nil {
    tb.Fatalf("failed to init logger: %v", err)
  }
  return log
}

type fakeGeminiClient struct {
  textResponse string
  textErr      error
  image        *GeneratedImage
  imageErr     error

  textCalls  []GeminiTextCall
  imageCalls []GeminiImageRequest
}

type GeminiTextCall struct {
  System string
  Prompt string
  Images []ReferenceImage
}

func (fg *fakeGeminiClient) GenerateText(ctx context.Context, system string, prompt string, images []ReferenceImage) (string, error) {
  fg.textCalls = append(fg.textCalls, GeminiTextCall{System: system, Prompt: prompt, Images: images})
  return fg.textResponse, fg.textErr
}

func (fg *fakeGeminiClient) GenerateImage(ctx context.Context, req GeminiImageRequest) (*GeneratedImage, error) {
  fg.imageCalls = append(fg.imageCalls, req)
  return fg.image, fg.imageErr
}

type fakeElevenLabsClient struct {
  audio []byte
  err   error
}

func (fe *fakeElevenLabsClient) Synthesize(ctx context.Context, voiceID string, text string) ([]byte, error) {
  return fe.audio, fe.err
}

type fakeHiggsfieldClient struct {
  result *HiggsfieldVideoResult
  err    error
}

func (fh *fakeHiggsfieldClient) SubmitVideo(ctx context.Context, req HiggsfieldVideoRequest) (string, error) {
  if fh.err != nil {
    return "", fh.err
  }
  return fh.result.JobID, nil
}

func (fh *fakeHiggsfieldClient) PollJob(ctx context.Context, jobID string) (*HiggsfieldVideoResult, error) {
  return fh.result, fh.err
}

func (fh *fakeHiggsfieldClient) GenerateVideo(ctx context.Context, req HiggsfieldVideoRequest) (*HiggsfieldVideoResult, error) {
  return fh.result, fh.err
}

// fakeBucketService keeps objects in memory so execution paths that upload
// and re-download content can be tested without GCS.
type fakeBucketService struct {
  objects      map[string][]byte
  contentTypes map[string]string
  uploadErr    error
}

func newFakeBucketService() *fakeBucketService {
  return &fakeBucketService{
    objects:      map[string][]byte{},
    contentTypes: map[string]string{},
  }
}

func (fb *fakeBucketService) UploadFile(ctx context.Context, key string, contentType string, file io.Reader) error {
  if fb.uploadErr != nil {
    return fb.uploadErr
  }
  data, err := io.ReadAll(file)
  if err != nil {
    return err
  }
  fb.objects[key] = data
  fb.contentTypes[key] = contentType
  return nil
}

func (fb *fakeBucketService) DeleteFile(ctx context.Context, key string) error {
  delete(fb.objects, key)
  delete(fb.contentTypes, key)
  return nil
}

func (fb *fakeBucketService) DownloadFile(ctx context.Context, key string) (io.ReadCloser, string, error) {
  data, ok := fb.objects[key]
  if !ok {
    return nil, "", fmt.Errorf("object not found: %s", key)
  }
  return io.NopCloser(bytes.NewReader(data)), fb.contentTypes[key], nil
}

func (fb *fakeBucketService) SignedURL(ctx context.Context, key string) (string, error) {
  if _, ok := fb.objects[key]; !ok {
    return "", fmt.Errorf("object not found: %s", key)
  }
  return "https://signed.example.com/" + key, nil
}

func (fb *fakeBucketService) GetPublicURL(key string) string {
  return "https://cdn.example.com/" + key
}
