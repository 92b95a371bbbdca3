package services

import (
  "context"
  "encoding/base64"
  "fmt"
  "strings"

  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

// NodeResult is the discriminated outcome of executing one node. Failures are
// carried in the envelope, never as a Go error or a panic: the executor always
// hands back something the caller can persist.
type NodeResult struct {
  Success     bool           `json:"success"`
  Output      map[string]any `json:"output,omitempty"`
  Error       string         `json:"error,omitempty"`
  RequestBody map[string]any `json:"request_body,omitempty"`
}

// NodeExecutor runs exactly one workflow node against pre-collected inputs.
// Generation nodes make a single provider call; input nodes only echo their
// stored configuration. The executor never writes to the database.
type NodeExecutor interface {
  Execute(ctx context.Context, node types.WorkflowNode, inputs NodeInputs) *NodeResult
}

type nodeExecutor struct {
  log              *logger.Logger
  geminiClient     GeminiClient
  elevenLabsClient ElevenLabsClient
  higgsfieldClient HiggsfieldClient
}

func NewNodeExecutor(log *logger.Logger, geminiClient GeminiClient, elevenLabsClient ElevenLabsClient, higgsfieldClient HiggsfieldClient) NodeExecutor {
  return &nodeExecutor{
    log:              log.With("service", "NodeExecutor"),
    geminiClient:     geminiClient,
    elevenLabsClient: elevenLabsClient,
    higgsfieldClient: higgsfieldClient,
  }
}

func (ne *nodeExecutor) Execute(ctx context.Context, node types.WorkflowNode, inputs NodeInputs) (result *NodeResult) {
  defer func() {
    if r := recover(); r != nil {
      ne.log.Error("Node execution panicked", "node_id", node.ID, "node_type", node.Data.Type, "panic", r)
      result = &NodeResult{Success: false, Error: fmt.Sprintf("node execution panic: %v", r)}
    }
  }()

  switch node.Data.Type {
  case types.NodeTypeTextInput:
    return ne.executeTextInput(node)
  case types.NodeTypeImageInput:
    return ne.executeImageInput(node)
  case types.NodeTypeTextGeneration:
    return ne.executeTextGeneration(ctx, node, inputs)
  case types.NodeTypeImageGeneration:
    return ne.executeImageGeneration(ctx, node, inputs)
  case types.NodeTypeSpeechGeneration:
    return ne.executeSpeechGeneration(ctx, node, inputs)
  case types.NodeTypeVideoGeneration:
    return ne.executeVideoGeneration(ctx, node, inputs)
  default:
    return &NodeResult{Success: false, Error: fmt.Sprintf("unknown node type: %s", node.Data.Type)}
  }
}

// Input nodes echo their stored configuration. Absent optional data yields a
// null-valued output, not a failure.
func (ne *nodeExecutor) executeTextInput(node types.WorkflowNode) *NodeResult {
  text := configString(node.Data.Config, "text")
  return &NodeResult{
    Success: true,
    Output:  map[string]any{"text": text, "prompt": text},
  }
}

func (ne *nodeExecutor) executeImageInput(node types.WorkflowNode) *NodeResult {
  output := map[string]any{"imageData": nil, "storagePath": nil}
  if v := configString(node.Data.Config, "imageData"); v != "" {
    output["imageData"] = v
  }
  if v := configString(node.Data.Config, "storagePath"); v != "" {
    output["storagePath"] = v
  }
  return &NodeResult{Success: true, Output: output}
}

func (ne *nodeExecutor) executeTextGeneration(ctx context.Context, node types.WorkflowNode, inputs NodeInputs) *NodeResult {
  // Upstream prompt input overrides the node's own stored prompt.
  prompt := inputs.Prompt
  if prompt == "" {
    prompt = configString(node.Data.Config, "prompt")
  }
  if prompt == "" {
    return &NodeResult{Success: false, Error: "text generation requires a prompt"}
  }
  system := configString(node.Data.Config, "systemPrompt", "system")
  refImages := decodeReferenceImages(inputs.PreviousImages)

  requestBody := map[string]any{
    "prompt":          prompt,
    "system":          system,
    "reference_count": len(refImages),
  }

  response, err := ne.geminiClient.GenerateText(ctx, system, prompt, refImages)
  if err != nil {
    return &NodeResult{Success: false, Error: err.Error(), RequestBody: requestBody}
  }
  return &NodeResult{
    Success:     true,
    Output:      map[string]any{"text": response, "response": response},
    RequestBody: requestBody,
  }
}

func (ne *nodeExecutor) executeImageGeneration(ctx context.Context, node types.WorkflowNode, inputs NodeInputs) *NodeResult {
  prompt := inputs.Prompt
  if prompt == "" {
    prompt = configString(node.Data.Config, "prompt")
  }
  if prompt == "" {
    return &NodeResult{Success: false, Error: "image generation requires a prompt"}
  }

  imageReq := GeminiImageRequest{
    Model:           configString(node.Data.Config, "model"),
    Prompt:          prompt,
    NegativePrompt:  configString(node.Data.Config, "negativePrompt"),
    AspectRatio:     configString(node.Data.Config, "aspectRatio"),
    ReferenceImages: decodeReferenceImages(inputs.PreviousImages),
  }

  requestBody := map[string]any{
    "model":           imageReq.Model,
    "prompt":          imageReq.Prompt,
    "negative_prompt": imageReq.NegativePrompt,
    "aspect_ratio":    imageReq.AspectRatio,
    "reference_count": len(imageReq.ReferenceImages),
  }

  generated, err := ne.geminiClient.GenerateImage(ctx, imageReq)
  if err != nil {
    return &NodeResult{Success: false, Error: err.Error(), RequestBody: requestBody}
  }
  return &NodeResult{
    Success: true,
    Output: map[string]any{
      "imageData": base64.StdEncoding.EncodeToString(generated.Data),
      "mimeType":  generated.MimeType,
    },
    RequestBody: requestBody,
  }
}

func (ne *nodeExecutor) executeSpeechGeneration(ctx context.Context, node types.WorkflowNode, inputs NodeInputs) *NodeResult {
  text := inputs.Prompt
  if text == "" {
    text = configString(node.Data.Config, "text")
  }
  if text == "" {
    return &NodeResult{Success: false, Error: "speech generation requires text"}
  }
  voiceID := configString(node.Data.Config, "voiceId")

  requestBody := map[string]any{"voice_id": voiceID, "text": text}

  audio, err := ne.elevenLabsClient.Synthesize(ctx, voiceID, text)
  if err != nil {
    return &NodeResult{Success: false, Error: err.Error(), RequestBody: requestBody}
  }
  return &NodeResult{
    Success: true,
    Output: map[string]any{
      "audioData": base64.StdEncoding.EncodeToString(audio),
      "mimeType":  "audio/mpeg",
      "text":      text,
    },
    RequestBody: requestBody,
  }
}

func (ne *nodeExecutor) executeVideoGeneration(ctx context.Context, node types.WorkflowNode, inputs NodeInputs) *NodeResult {
  prompt := inputs.Prompt
  if prompt == "" {
    prompt = configString(node.Data.Config, "prompt")
  }
  if prompt == "" {
    return &NodeResult{Success: false, Error: "video generation requires a prompt"}
  }

  imageURL := firstImageURL(inputs.PreviousImages)
  if imageURL == "" {
    imageURL = configString(node.Data.Config, "imageUrl")
  }

  videoReq := HiggsfieldVideoRequest{
    Prompt:          prompt,
    Model:           configString(node.Data.Config, "model"),
    ImageURL:        imageURL,
    DurationSeconds: configFloat(node.Data.Config, "duration"),
  }

  requestBody := map[string]any{
    "model":            videoReq.Model,
    "prompt":           videoReq.Prompt,
    "image_url":        videoReq.ImageURL,
    "duration_seconds": videoReq.DurationSeconds,
  }

  videoResult, err := ne.higgsfieldClient.GenerateVideo(ctx, videoReq)
  if err != nil {
    return &NodeResult{Success: false, Error: err.Error(), RequestBody: requestBody}
  }

  output := map[string]any{
    "status": videoResult.Status,
    "jobId":  videoResult.JobID,
  }
  if videoResult.VideoURL != "" {
    output["videoUrl"] = videoResult.VideoURL
  }
  if videoResult.Duration > 0 {
    output["duration"] = videoResult.Duration
  }
  if videoResult.Message != "" {
    output["message"] = videoResult.Message
  }
  return &NodeResult{Success: true, Output: output, RequestBody: requestBody}
}

func configString(config map[string]any, keys ...string) string {
  for _, key := range keys {
    if s, ok := config[key].(string); ok && s != "" {
      return s
    }
  }
  return ""
}

func configFloat(config map[string]any, key string) float64 {
  switch v := config[key].(type) {
  case float64:
    return v
  case int:
    return float64(v)
  }
  return 0
}

// decodeReferenceImages pulls inline base64 image payloads out of upstream
// outputs. Entries without decodable data (URL-only outputs included) are
// skipped; providers that need bytes cannot use them.
func decodeReferenceImages(previousImages []map[string]any) []ReferenceImage {
  var refs []ReferenceImage
  for _, img := range previousImages {
    raw, ok := img["imageData"].(string)
    if !ok || raw == "" {
      continue
    }
    mimeType := "image/png"
    if m, mok := img["mimeType"].(string); mok && m != "" {
      mimeType = m
    }
    if idx := strings.Index(raw, ";base64,"); idx >= 0 {
      if strings.HasPrefix(raw, "data:") {
        mimeType = raw[len("data:"):idx]
      }
      raw = raw[idx+len(";base64,"):]
    }
    data, err := base64.StdEncoding.DecodeString(raw)
    if err != nil {
      continue
    }
    refs = append(refs, ReferenceImage{MimeType: mimeType, Data: data})
  }
  return refs
}

func firstImageURL(previousImages []map[string]any) string {
  for _, img := range previousImages {
    if u, ok := img["imageUrl"].(string); ok && u != "" {
      return u
    }
  }
  return ""
}
