package services

import (
  "strings"
  "testing"

  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

func TestValidateGraph_AcceptsConnectedNodes(t *testing.T) {
  nodes := []types.WorkflowNode{
    {ID: "a", Data: types.WorkflowNodeData{Type: types.NodeTypeTextInput}},
    {ID: "b", Data: types.WorkflowNodeData{Type: types.NodeTypeTextGeneration}},
  }
  edges := []types.WorkflowEdge{{Source: "a", Target: "b"}}

  if err := validateGraph(nodes, edges); err != nil {
    t.Fatalf("expected valid graph, got %v", err)
  }
}

func TestValidateGraph_RejectsEmptyNodeID(t *testing.T) {
  nodes := []types.WorkflowNode{{ID: ""}}
  if err := validateGraph(nodes, nil); err == nil {
    t.Fatalf("expected error for empty node id")
  }
}

func TestValidateGraph_RejectsDuplicateNodeID(t *testing.T) {
  nodes := []types.WorkflowNode{{ID: "a"}, {ID: "a"}}
  err := validateGraph(nodes, nil)
  if err == nil {
    t.Fatalf("expected error for duplicate node id")
  }
  if !strings.Contains(err.Error(), "a") {
    t.Fatalf("expected offending id in error, got %v", err)
  }
}

func TestValidateGraph_RejectsDanglingEdge(t *testing.T) {
  nodes := []types.WorkflowNode{{ID: "a"}}
  edges := []types.WorkflowEdge{{Source: "a", Target: "missing"}}
  if err := validateGraph(nodes, edges); err == nil {
    t.Fatalf("expected error for edge to unknown node")
  }
}

func TestDeriveFormConfig_InputNodesOnly(t *testing.T) {
  nodes := []types.WorkflowNode{
    {ID: "t1", Data: types.WorkflowNodeData{Type: types.NodeTypeTextInput, Config: map[string]any{"label": "Scene prompt", "required": true}}},
    {ID: "i1", Data: types.WorkflowNodeData{Type: types.NodeTypeImageInput, Config: map[string]any{}}},
    {ID: "g1", Data: types.WorkflowNodeData{Type: types.NodeTypeImageGeneration, Config: map[string]any{}}},
  }

  fields := deriveFormConfig(nodes)
  if len(fields) != 2 {
    t.Fatalf("expected 2 form fields, got %d", len(fields))
  }

  if fields[0].NodeID != "t1" || fields[0].Type != "text" || fields[0].Label != "Scene prompt" || !fields[0].Required {
    t.Fatalf("unexpected first field: %+v", fields[0])
  }
  // No label configured: the node id doubles as the label.
  if fields[1].NodeID != "i1" || fields[1].Type != "image" || fields[1].Label != "i1" || fields[1].Required {
    t.Fatalf("unexpected second field: %+v", fields[1])
  }
}

func TestDeriveFormConfig_EmptyGraphYieldsEmptySlice(t *testing.T) {
  fields := deriveFormConfig(nil)
  if fields == nil {
    t.Fatalf("expected empty slice, got nil")
  }
  if len(fields) != 0 {
    t.Fatalf("expected no fields, got %d", len(fields))
  }
}
