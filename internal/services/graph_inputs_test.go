package services

import (
  "testing"

  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

func TestCollectInputs_JoinsPromptsWithNewline(t *testing.T) {
  edges := []types.WorkflowEdge{
    {Source: "a", Target: "gen"},
    {Source: "b", Target: "gen"},
  }
  outputs := map[string]map[string]any{
    "a": {"text": "foo"},
    "b": {"text": "bar"},
  }

  inputs := CollectInputs("gen", edges, outputs)
  if inputs.Prompt != "foo\nbar" {
    t.Fatalf("expected joined prompt %q, got %q", "foo\nbar", inputs.Prompt)
  }
}

func TestCollectInputs_SkipsSourcesWithoutOutput(t *testing.T) {
  edges := []types.WorkflowEdge{
    {Source: "ready", Target: "gen"},
    {Source: "pending", Target: "gen"},
  }
  outputs := map[string]map[string]any{
    "ready": {"text": "hello"},
  }

  inputs := CollectInputs("gen", edges, outputs)
  if inputs.Prompt != "hello" {
    t.Fatalf("expected prompt %q, got %q", "hello", inputs.Prompt)
  }
  if len(inputs.PreviousImages) != 0 || len(inputs.PreviousVideos) != 0 || len(inputs.PreviousAudios) != 0 {
    t.Fatalf("expected no media inputs, got %+v", inputs)
  }
}

func TestCollectInputs_IgnoresEdgesToOtherTargets(t *testing.T) {
  edges := []types.WorkflowEdge{
    {Source: "a", Target: "other"},
  }
  outputs := map[string]map[string]any{
    "a": {"text": "hello"},
  }

  inputs := CollectInputs("gen", edges, outputs)
  if inputs.Prompt != "" {
    t.Fatalf("expected empty prompt, got %q", inputs.Prompt)
  }
}

func TestCollectInputs_SourceHandleOverridesSniffing(t *testing.T) {
  // The output looks like an image but the handle pins it to prompt.
  edges := []types.WorkflowEdge{
    {Source: "a", Target: "gen", SourceHandle: "prompt"},
  }
  outputs := map[string]map[string]any{
    "a": {"imageData": "abc", "text": "use this"},
  }

  inputs := CollectInputs("gen", edges, outputs)
  if inputs.Prompt != "use this" {
    t.Fatalf("expected prompt %q, got %q", "use this", inputs.Prompt)
  }
  if len(inputs.PreviousImages) != 0 {
    t.Fatalf("expected no image inputs, got %d", len(inputs.PreviousImages))
  }
}

func TestCollectInputs_SniffsImageBeforeText(t *testing.T) {
  edges := []types.WorkflowEdge{
    {Source: "a", Target: "gen"},
  }
  outputs := map[string]map[string]any{
    "a": {"imageData": "abc", "text": "caption"},
  }

  inputs := CollectInputs("gen", edges, outputs)
  if len(inputs.PreviousImages) != 1 {
    t.Fatalf("expected 1 image input, got %d", len(inputs.PreviousImages))
  }
  if inputs.Prompt != "" {
    t.Fatalf("expected no prompt, got %q", inputs.Prompt)
  }
}

func TestCollectInputs_SniffsVideoURL(t *testing.T) {
  edges := []types.WorkflowEdge{
    {Source: "vid", Target: "gen"},
  }
  outputs := map[string]map[string]any{
    "vid": {"videoUrl": "https://example.com/v.mp4", "status": "completed"},
  }

  inputs := CollectInputs("gen", edges, outputs)
  if len(inputs.PreviousVideos) != 1 {
    t.Fatalf("expected 1 video input, got %d", len(inputs.PreviousVideos))
  }
  if u := inputs.PreviousVideos[0]["videoUrl"]; u != "https://example.com/v.mp4" {
    t.Fatalf("unexpected videoUrl: %v", u)
  }
}

func TestCollectInputs_SniffsAudioData(t *testing.T) {
  edges := []types.WorkflowEdge{
    {Source: "speech", Target: "gen"},
  }
  outputs := map[string]map[string]any{
    "speech": {"audioData": "base64audio", "text": "spoken words"},
  }

  inputs := CollectInputs("gen", edges, outputs)
  if len(inputs.PreviousAudios) != 1 {
    t.Fatalf("expected 1 audio input, got %d", len(inputs.PreviousAudios))
  }
  if inputs.Prompt != "" {
    t.Fatalf("expected no prompt from audio output, got %q", inputs.Prompt)
  }
}

func TestCollectInputs_NullImageDataFallsThroughToImageURL(t *testing.T) {
  edges := []types.WorkflowEdge{
    {Source: "img", Target: "gen"},
  }
  outputs := map[string]map[string]any{
    "img": {"imageData": nil, "imageUrl": "https://example.com/i.png"},
  }

  inputs := CollectInputs("gen", edges, outputs)
  if len(inputs.PreviousImages) != 1 {
    t.Fatalf("expected 1 image input, got %d", len(inputs.PreviousImages))
  }
}

func TestCollectInputs_PreservesEdgeOrder(t *testing.T) {
  edges := []types.WorkflowEdge{
    {Source: "one", Target: "gen", SourceHandle: "image"},
    {Source: "two", Target: "gen", SourceHandle: "image"},
  }
  outputs := map[string]map[string]any{
    "one": {"imageData": "first"},
    "two": {"imageData": "second"},
  }

  inputs := CollectInputs("gen", edges, outputs)
  if len(inputs.PreviousImages) != 2 {
    t.Fatalf("expected 2 image inputs, got %d", len(inputs.PreviousImages))
  }
  if inputs.PreviousImages[0]["imageData"] != "first" || inputs.PreviousImages[1]["imageData"] != "second" {
    t.Fatalf("image inputs out of order: %+v", inputs.PreviousImages)
  }
}
