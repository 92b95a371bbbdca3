package services

import (
  "strings"

  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

// NodeInputs is the classified input bundle handed to the node executor:
// prompt text plus ordered lists of upstream media outputs.
type NodeInputs struct {
  Prompt         string
  PreviousImages []map[string]any
  PreviousVideos []map[string]any
  PreviousAudios []map[string]any
}

// CollectInputs computes the inputs for one target node from the outputs of
// its direct predecessors. Only single-hop edges are considered: an edge whose
// source has not produced an output yet is skipped, not an error, so callers
// must execute nodes in a valid order themselves.
//
// Each contributing edge is classified into a bucket. An explicit sourceHandle
// (image, video, audio, prompt) wins; otherwise the source output's shape is
// sniffed in fixed priority order: image fields, then videoUrl, then
// audioData, then text/prompt/response. Media outputs accumulate in edge
// encounter order; prompt texts are joined with a newline.
func CollectInputs(nodeID string, edges []types.WorkflowEdge, outputsByNode map[string]map[string]any) NodeInputs {
  var inputs NodeInputs
  var prompts []string

  for _, edge := range edges {
    if edge.Target != nodeID {
      continue
    }
    output, ready := outputsByNode[edge.Source]
    if !ready || output == nil {
      continue
    }

    switch classifyEdge(edge.SourceHandle, output) {
    case "image":
      inputs.PreviousImages = append(inputs.PreviousImages, output)
    case "video":
      inputs.PreviousVideos = append(inputs.PreviousVideos, output)
    case "audio":
      inputs.PreviousAudios = append(inputs.PreviousAudios, output)
    case "prompt":
      if text := extractPromptText(output); text != "" {
        prompts = append(prompts, text)
      }
    }
  }

  inputs.Prompt = strings.Join(prompts, "\n")
  return inputs
}

func classifyEdge(sourceHandle string, output map[string]any) string {
  switch sourceHandle {
  case "image", "video", "audio", "prompt":
    return sourceHandle
  }

  if hasNonEmpty(output, "imageData") || hasNonEmpty(output, "imageUrl") {
    return "image"
  }
  if hasNonEmpty(output, "videoUrl") {
    return "video"
  }
  if hasNonEmpty(output, "audioData") {
    return "audio"
  }
  if hasNonEmpty(output, "text") || hasNonEmpty(output, "prompt") || hasNonEmpty(output, "response") {
    return "prompt"
  }
  return ""
}

func extractPromptText(output map[string]any) string {
  for _, key := range []string{"text", "prompt", "response"} {
    if s, ok := output[key].(string); ok && s != "" {
      return s
    }
  }
  return ""
}

func hasNonEmpty(output map[string]any, key string) bool {
  v, ok := output[key]
  if !ok || v == nil {
    return false
  }
  if s, isStr := v.(string); isStr {
    return s != ""
  }
  return true
}
