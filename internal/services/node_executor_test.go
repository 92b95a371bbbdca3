package services

import (
  "context"
  "encoding/base64"
  "errors"
  "strings"
  "testing"

  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

func newTestExecutor(tb testing.TB, gemini *fakeGeminiClient, eleven *fakeElevenLabsClient, higgs *fakeHiggsfieldClient) NodeExecutor {
  tb.Helper()
  if gemini == nil {
    gemini = &fakeGeminiClient{}
  }
  if eleven == nil {
    eleven = &fakeElevenLabsClient{}
  }
  if higgs == nil {
    higgs = &fakeHiggsfieldClient{}
  }
  return NewNodeExecutor(testLogger(tb), gemini, eleven, higgs)
}

func TestExecute_TextInputEchoesConfig(t *testing.T) {
  ne := newTestExecutor(t, nil, nil, nil)
  node := types.WorkflowNode{
    ID:   "n1",
    Data: types.WorkflowNodeData{Type: types.NodeTypeTextInput, Config: map[string]any{"text": "hello"}},
  }

  result := ne.Execute(context.Background(), node, NodeInputs{})
  if !result.Success {
    t.Fatalf("expected success, got error %q", result.Error)
  }
  if result.Output["text"] != "hello" || result.Output["prompt"] != "hello" {
    t.Fatalf("unexpected output: %+v", result.Output)
  }
}

func TestExecute_ImageInputWithoutDataYieldsNulls(t *testing.T) {
  ne := newTestExecutor(t, nil, nil, nil)
  node := types.WorkflowNode{
    ID:   "n1",
    Data: types.WorkflowNodeData{Type: types.NodeTypeImageInput, Config: map[string]any{}},
  }

  result := ne.Execute(context.Background(), node, NodeInputs{})
  if !result.Success {
    t.Fatalf("expected success, got error %q", result.Error)
  }
  if v, ok := result.Output["imageData"]; !ok || v != nil {
    t.Fatalf("expected imageData present and nil, got %v (present=%v)", v, ok)
  }
  if v, ok := result.Output["storagePath"]; !ok || v != nil {
    t.Fatalf("expected storagePath present and nil, got %v (present=%v)", v, ok)
  }
}

func TestExecute_UnknownNodeTypeFailsInsideEnvelope(t *testing.T) {
  ne := newTestExecutor(t, nil, nil, nil)
  node := types.WorkflowNode{
    ID:   "n1",
    Data: types.WorkflowNodeData{Type: "teleport", Config: map[string]any{}},
  }

  result := ne.Execute(context.Background(), node, NodeInputs{})
  if result.Success {
    t.Fatalf("expected failure for unknown node type")
  }
  if result.Error != "unknown node type: teleport" {
    t.Fatalf("unexpected error: %q", result.Error)
  }
}

func TestExecute_TextGenerationUpstreamPromptOverridesConfig(t *testing.T) {
  gemini := &fakeGeminiClient{textResponse: "generated"}
  ne := newTestExecutor(t, gemini, nil, nil)
  node := types.WorkflowNode{
    ID:   "n1",
    Data: types.WorkflowNodeData{Type: types.NodeTypeTextGeneration, Config: map[string]any{"prompt": "stored prompt"}},
  }

  result := ne.Execute(context.Background(), node, NodeInputs{Prompt: "upstream prompt"})
  if !result.Success {
    t.Fatalf("expected success, got error %q", result.Error)
  }
  if len(gemini.textCalls) != 1 {
    t.Fatalf("expected 1 provider call, got %d", len(gemini.textCalls))
  }
  if gemini.textCalls[0].Prompt != "upstream prompt" {
    t.Fatalf("expected upstream prompt to win, provider got %q", gemini.textCalls[0].Prompt)
  }
  if result.Output["text"] != "generated" || result.Output["response"] != "generated" {
    t.Fatalf("unexpected output: %+v", result.Output)
  }
}

func TestExecute_TextGenerationWithoutPromptFails(t *testing.T) {
  ne := newTestExecutor(t, &fakeGeminiClient{}, nil, nil)
  node := types.WorkflowNode{
    ID:   "n1",
    Data: types.WorkflowNodeData{Type: types.NodeTypeTextGeneration, Config: map[string]any{}},
  }

  result := ne.Execute(context.Background(), node, NodeInputs{})
  if result.Success {
    t.Fatalf("expected failure without a prompt")
  }
}

func TestExecute_ProviderErrorBecomesFailedResult(t *testing.T) {
  gemini := &fakeGeminiClient{textErr: errors.New("quota exceeded")}
  ne := newTestExecutor(t, gemini, nil, nil)
  node := types.WorkflowNode{
    ID:   "n1",
    Data: types.WorkflowNodeData{Type: types.NodeTypeTextGeneration, Config: map[string]any{"prompt": "p"}},
  }

  result := ne.Execute(context.Background(), node, NodeInputs{})
  if result.Success {
    t.Fatalf("expected failure when the provider errors")
  }
  if result.Error != "quota exceeded" {
    t.Fatalf("unexpected error: %q", result.Error)
  }
  if result.RequestBody == nil {
    t.Fatalf("expected request body to be recorded on failure")
  }
}

func TestExecute_ImageGenerationEncodesOutput(t *testing.T) {
  raw := []byte{0x89, 0x50, 0x4e, 0x47}
  gemini := &fakeGeminiClient{image: &GeneratedImage{MimeType: "image/png", Data: raw}}
  ne := newTestExecutor(t, gemini, nil, nil)
  node := types.WorkflowNode{
    ID: "n1",
    Data: types.WorkflowNodeData{
      Type:   types.NodeTypeImageGeneration,
      Config: map[string]any{"prompt": "a harbor", "aspectRatio": "16:9"},
    },
  }

  result := ne.Execute(context.Background(), node, NodeInputs{})
  if !result.Success {
    t.Fatalf("expected success, got error %q", result.Error)
  }
  if result.Output["imageData"] != base64.StdEncoding.EncodeToString(raw) {
    t.Fatalf("unexpected imageData: %v", result.Output["imageData"])
  }
  if result.Output["mimeType"] != "image/png" {
    t.Fatalf("unexpected mimeType: %v", result.Output["mimeType"])
  }
  if len(gemini.imageCalls) != 1 || gemini.imageCalls[0].AspectRatio != "16:9" {
    t.Fatalf("unexpected provider request: %+v", gemini.imageCalls)
  }
}

func TestExecute_ImageGenerationForwardsUpstreamReferenceImages(t *testing.T) {
  gemini := &fakeGeminiClient{image: &GeneratedImage{MimeType: "image/png", Data: []byte{1}}}
  ne := newTestExecutor(t, gemini, nil, nil)
  node := types.WorkflowNode{
    ID:   "n1",
    Data: types.WorkflowNodeData{Type: types.NodeTypeImageGeneration, Config: map[string]any{"prompt": "p"}},
  }
  inputs := NodeInputs{
    PreviousImages: []map[string]any{
      {"imageData": base64.StdEncoding.EncodeToString([]byte("ref-bytes")), "mimeType": "image/jpeg"},
      {"imageUrl": "https://example.com/url-only.png"},
    },
  }

  result := ne.Execute(context.Background(), node, inputs)
  if !result.Success {
    t.Fatalf("expected success, got error %q", result.Error)
  }
  // URL-only upstream entries carry no decodable bytes and are dropped.
  if len(gemini.imageCalls[0].ReferenceImages) != 1 {
    t.Fatalf("expected 1 reference image, got %d", len(gemini.imageCalls[0].ReferenceImages))
  }
  ref := gemini.imageCalls[0].ReferenceImages[0]
  if ref.MimeType != "image/jpeg" || string(ref.Data) != "ref-bytes" {
    t.Fatalf("unexpected reference image: %+v", ref)
  }
}

func TestExecute_SpeechGenerationOutput(t *testing.T) {
  eleven := &fakeElevenLabsClient{audio: []byte("mp3-bytes")}
  ne := newTestExecutor(t, nil, eleven, nil)
  node := types.WorkflowNode{
    ID:   "n1",
    Data: types.WorkflowNodeData{Type: types.NodeTypeSpeechGeneration, Config: map[string]any{"text": "say this", "voiceId": "v1"}},
  }

  result := ne.Execute(context.Background(), node, NodeInputs{})
  if !result.Success {
    t.Fatalf("expected success, got error %q", result.Error)
  }
  if result.Output["audioData"] != base64.StdEncoding.EncodeToString([]byte("mp3-bytes")) {
    t.Fatalf("unexpected audioData: %v", result.Output["audioData"])
  }
  if result.Output["mimeType"] != "audio/mpeg" || result.Output["text"] != "say this" {
    t.Fatalf("unexpected output: %+v", result.Output)
  }
}

func TestExecute_VideoGenerationPrefersUpstreamImageURL(t *testing.T) {
  higgs := &fakeHiggsfieldClient{result: &HiggsfieldVideoResult{Status: "completed", JobID: "job-1", VideoURL: "https://example.com/v.mp4", Duration: 5}}
  ne := newTestExecutor(t, nil, nil, higgs)
  node := types.WorkflowNode{
    ID: "n1",
    Data: types.WorkflowNodeData{
      Type:   types.NodeTypeVideoGeneration,
      Config: map[string]any{"prompt": "pan across the harbor", "imageUrl": "https://example.com/config.png"},
    },
  }
  inputs := NodeInputs{
    PreviousImages: []map[string]any{{"imageUrl": "https://example.com/upstream.png"}},
  }

  result := ne.Execute(context.Background(), node, inputs)
  if !result.Success {
    t.Fatalf("expected success, got error %q", result.Error)
  }
  if result.RequestBody["image_url"] != "https://example.com/upstream.png" {
    t.Fatalf("expected upstream image url, got %v", result.RequestBody["image_url"])
  }
  if result.Output["videoUrl"] != "https://example.com/v.mp4" || result.Output["status"] != "completed" {
    t.Fatalf("unexpected output: %+v", result.Output)
  }
}

func TestExecute_PanicIsRecoveredIntoFailedResult(t *testing.T) {
  // A nil provider forces a nil-pointer panic inside the generation branch.
  ne := NewNodeExecutor(testLogger(t), nil, nil, nil)
  node := types.WorkflowNode{
    ID:   "n1",
    Data: types.WorkflowNodeData{Type: types.NodeTypeTextGeneration, Config: map[string]any{"prompt": "p"}},
  }

  result := ne.Execute(context.Background(), node, NodeInputs{})
  if result == nil {
    t.Fatalf("expected a result, got nil")
  }
  if result.Success {
    t.Fatalf("expected failure after panic")
  }
  if !strings.HasPrefix(result.Error, "node execution panic:") {
    t.Fatalf("unexpected error: %q", result.Error)
  }
}
