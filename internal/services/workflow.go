package services

import (
  "context"
  "encoding/json"
  "fmt"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/repos"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

type WorkflowService interface {
  CreateWorkflow(ctx context.Context, userID uuid.UUID, name string, nodes []types.WorkflowNode, edges []types.WorkflowEdge) (*types.Workflow, error)
  GetWorkflow(ctx context.Context, userID uuid.UUID, workflowID uuid.UUID) (*types.Workflow, error)
  ListWorkflows(ctx context.Context, userID uuid.UUID) ([]*types.Workflow, error)
  UpdateWorkflow(ctx context.Context, userID uuid.UUID, workflowID uuid.UUID, name string, nodes []types.WorkflowNode, edges []types.WorkflowEdge) (*types.Workflow, error)
  DeleteWorkflow(ctx context.Context, userID uuid.UUID, workflowID uuid.UUID) error
  ExecuteNode(ctx context.Context, userID uuid.UUID, stepID uuid.UUID, nodeID string) (*NodeResult, error)
}

type workflowService struct {
  db           *gorm.DB
  log          *logger.Logger
  workflowRepo repos.WorkflowRepo
  stepRepo     repos.StepRepo
  boardRepo    repos.BoardRepo
  studioRepo   repos.StudioRepo
  nodeExecutor NodeExecutor
}

func NewWorkflowService(
  db *gorm.DB,
  log *logger.Logger,
  workflowRepo repos.WorkflowRepo,
  stepRepo repos.StepRepo,
  boardRepo repos.BoardRepo,
  studioRepo repos.StudioRepo,
  nodeExecutor NodeExecutor,
) WorkflowService {
  return &workflowService{
    db:           db,
    log:          log.With("service", "WorkflowService"),
    workflowRepo: workflowRepo,
    stepRepo:     stepRepo,
    boardRepo:    boardRepo,
    studioRepo:   studioRepo,
    nodeExecutor: nodeExecutor,
  }
}

// validateGraph rejects edges whose endpoints are not nodes of the same
// workflow. Anything else the editor saves is stored as-is.
func validateGraph(nodes []types.WorkflowNode, edges []types.WorkflowEdge) error {
  nodeIDs := make(map[string]bool, len(nodes))
  for _, node := range nodes {
    if node.ID == "" {
      return fmt.Errorf("Node with empty id")
    }
    if nodeIDs[node.ID] {
      return fmt.Errorf("Duplicate node id: %s", node.ID)
    }
    nodeIDs[node.ID] = true
  }
  for _, edge := range edges {
    if !nodeIDs[edge.Source] {
      return fmt.Errorf("Edge source references unknown node: %s", edge.Source)
    }
    if !nodeIDs[edge.Target] {
      return fmt.Errorf("Edge target references unknown node: %s", edge.Target)
    }
  }
  return nil
}

// deriveFormConfig rebuilds the external input form from the workflow's input
// nodes. Runs on every save so the form never drifts from the graph.
func deriveFormConfig(nodes []types.WorkflowNode) []types.FormField {
  fields := make([]types.FormField, 0)
  for _, node := range nodes {
    var fieldType string
    switch node.Data.Type {
    case types.NodeTypeTextInput:
      fieldType = "text"
    case types.NodeTypeImageInput:
      fieldType = "image"
    default:
      continue
    }
    label := configString(node.Data.Config, "label")
    if label == "" {
      label = node.ID
    }
    required := false
    if r, ok := node.Data.Config["required"].(bool); ok {
      required = r
    }
    fields = append(fields, types.FormField{
      NodeID:   node.ID,
      Label:    label,
      Type:     fieldType,
      Required: required,
    })
  }
  return fields
}

func marshalGraph(nodes []types.WorkflowNode, edges []types.WorkflowEdge) (datatypes.JSON, datatypes.JSON, datatypes.JSON, error) {
  nodesJSON, err := json.Marshal(nodes)
  if err != nil {
    return nil, nil, nil, fmt.Errorf("Failed to marshal nodes: %w", err)
  }
  edgesJSON, err := json.Marshal(edges)
  if err != nil {
    return nil, nil, nil, fmt.Errorf("Failed to marshal edges: %w", err)
  }
  formJSON, err := json.Marshal(deriveFormConfig(nodes))
  if err != nil {
    return nil, nil, nil, fmt.Errorf("Failed to marshal form config: %w", err)
  }
  return datatypes.JSON(nodesJSON), datatypes.JSON(edgesJSON), datatypes.JSON(formJSON), nil
}

func (ws *workflowService) CreateWorkflow(ctx context.Context, userID uuid.UUID, name string, nodes []types.WorkflowNode, edges []types.WorkflowEdge) (*types.Workflow, error) {
  name = strings.TrimSpace(name)
  if name == "" {
    return nil, fmt.Errorf("Name is required")
  }
  if vErr := validateGraph(nodes, edges); vErr != nil {
    return nil, vErr
  }

  nodesJSON, edgesJSON, formJSON, mErr := marshalGraph(nodes, edges)
  if mErr != nil {
    return nil, mErr
  }

  workflow := &types.Workflow{
    ID:         uuid.New(),
    UserID:     userID,
    Name:       name,
    Nodes:      nodesJSON,
    Edges:      edgesJSON,
    FormConfig: formJSON,
  }
  if _, cErr := ws.workflowRepo.Create(ctx, nil, []*types.Workflow{workflow}); cErr != nil {
    return nil, fmt.Errorf("Failed to create workflow: %w", cErr)
  }
  return workflow, nil
}

func (ws *workflowService) getOwned(ctx context.Context, tx *gorm.DB, userID uuid.UUID, workflowID uuid.UUID) (*types.Workflow, error) {
  workflows, gErr := ws.workflowRepo.GetByIDs(ctx, tx, []uuid.UUID{workflowID})
  if gErr != nil {
    return nil, fmt.Errorf("Failed to get workflow: %w", gErr)
  }
  if len(workflows) == 0 || workflows[0].UserID != userID {
    return nil, ErrNotFound
  }
  return workflows[0], nil
}

func (ws *workflowService) GetWorkflow(ctx context.Context, userID uuid.UUID, workflowID uuid.UUID) (*types.Workflow, error) {
  return ws.getOwned(ctx, nil, userID, workflowID)
}

func (ws *workflowService) ListWorkflows(ctx context.Context, userID uuid.UUID) ([]*types.Workflow, error) {
  return ws.workflowRepo.ListByUserID(ctx, nil, userID)
}

func (ws *workflowService) UpdateWorkflow(ctx context.Context, userID uuid.UUID, workflowID uuid.UUID, name string, nodes []types.WorkflowNode, edges []types.WorkflowEdge) (*types.Workflow, error) {
  if _, err := ws.getOwned(ctx, nil, userID, workflowID); err != nil {
    return nil, err
  }
  if vErr := validateGraph(nodes, edges); vErr != nil {
    return nil, vErr
  }

  nodesJSON, edgesJSON, formJSON, mErr := marshalGraph(nodes, edges)
  if mErr != nil {
    return nil, mErr
  }

  fields := map[string]any{
    "nodes":       nodesJSON,
    "edges":       edgesJSON,
    "form_config": formJSON,
    "updated_at":  time.Now(),
  }
  if name = strings.TrimSpace(name); name != "" {
    fields["name"] = name
  }
  if uErr := ws.workflowRepo.UpdateFields(ctx, nil, workflowID, fields); uErr != nil {
    return nil, fmt.Errorf("Failed to update workflow: %w", uErr)
  }
  return ws.getOwned(ctx, nil, userID, workflowID)
}

func (ws *workflowService) DeleteWorkflow(ctx context.Context, userID uuid.UUID, workflowID uuid.UUID) error {
  if _, err := ws.getOwned(ctx, nil, userID, workflowID); err != nil {
    return err
  }
  if dErr := ws.workflowRepo.Delete(ctx, nil, workflowID); dErr != nil {
    return fmt.Errorf("Failed to delete workflow: %w", dErr)
  }
  return nil
}

// ExecuteNode runs one node of the step's workflow and merges the result into
// the step's output_data. Only the executed node's entry changes; prior node
// outputs stay untouched. Metadata records execution timing and the request
// body sent to the provider, keyed the same way.
func (ws *workflowService) ExecuteNode(ctx context.Context, userID uuid.UUID, stepID uuid.UUID, nodeID string) (*NodeResult, error) {
  step, sErr := ws.getOwnedStep(ctx, userID, stepID)
  if sErr != nil {
    return nil, sErr
  }

  workflow, wErr := ws.getOwned(ctx, nil, userID, step.WorkflowID)
  if wErr != nil {
    return nil, wErr
  }

  var nodes []types.WorkflowNode
  if err := json.Unmarshal(workflow.Nodes, &nodes); err != nil {
    return nil, fmt.Errorf("Failed to unmarshal workflow nodes: %w", err)
  }
  var edges []types.WorkflowEdge
  if err := json.Unmarshal(workflow.Edges, &edges); err != nil {
    return nil, fmt.Errorf("Failed to unmarshal workflow edges: %w", err)
  }

  var target *types.WorkflowNode
  for i := range nodes {
    if nodes[i].ID == nodeID {
      target = &nodes[i]
      break
    }
  }
  if target == nil {
    return nil, fmt.Errorf("Node %s not found in workflow", nodeID)
  }

  outputData := make(map[string]*NodeResult)
  if len(step.OutputData) > 0 {
    if err := json.Unmarshal(step.OutputData, &outputData); err != nil {
      return nil, fmt.Errorf("Failed to unmarshal step output data: %w", err)
    }
  }

  outputsByNode := make(map[string]map[string]any, len(outputData))
  for id, prior := range outputData {
    if prior != nil && prior.Success && prior.Output != nil {
      outputsByNode[id] = prior.Output
    }
  }
  inputs := CollectInputs(nodeID, edges, outputsByNode)

  started := time.Now()
  result := ws.nodeExecutor.Execute(ctx, *target, inputs)
  elapsed := time.Since(started)

  outputData[nodeID] = result

  metadata := make(map[string]any)
  if len(step.Metadata) > 0 {
    if err := json.Unmarshal(step.Metadata, &metadata); err != nil {
      return nil, fmt.Errorf("Failed to unmarshal step metadata: %w", err)
    }
  }
  executions, _ := metadata["node_executions"].(map[string]any)
  if executions == nil {
    executions = make(map[string]any)
  }
  executions[nodeID] = map[string]any{
    "executed_at":  started.UTC().Format(time.RFC3339),
    "duration_ms":  elapsed.Milliseconds(),
    "request_body": result.RequestBody,
    "success":      result.Success,
  }
  metadata["node_executions"] = executions

  outputJSON, oErr := json.Marshal(outputData)
  if oErr != nil {
    return nil, fmt.Errorf("Failed to marshal step output data: %w", oErr)
  }
  metadataJSON, mErr := json.Marshal(metadata)
  if mErr != nil {
    return nil, fmt.Errorf("Failed to marshal step metadata: %w", mErr)
  }

  if uErr := ws.stepRepo.UpdateFields(ctx, nil, stepID, map[string]any{
    "output_data": datatypes.JSON(outputJSON),
    "metadata":    datatypes.JSON(metadataJSON),
    "updated_at":  time.Now(),
  }); uErr != nil {
    return nil, fmt.Errorf("Failed to persist node result: %w", uErr)
  }

  return result, nil
}

// getOwnedStep walks the ownership chain step -> board -> studio -> user.
func (ws *workflowService) getOwnedStep(ctx context.Context, userID uuid.UUID, stepID uuid.UUID) (*types.Step, error) {
  steps, gErr := ws.stepRepo.GetByIDs(ctx, nil, []uuid.UUID{stepID})
  if gErr != nil {
    return nil, fmt.Errorf("Failed to get step: %w", gErr)
  }
  if len(steps) == 0 {
    return nil, ErrNotFound
  }
  step := steps[0]

  boards, bErr := ws.boardRepo.GetByIDs(ctx, nil, []uuid.UUID{step.BoardID})
  if bErr != nil {
    return nil, fmt.Errorf("Failed to get board: %w", bErr)
  }
  if len(boards) == 0 {
    return nil, ErrNotFound
  }

  studios, stErr := ws.studioRepo.GetByIDs(ctx, nil, []uuid.UUID{boards[0].StudioID})
  if stErr != nil {
    return nil, fmt.Errorf("Failed to get studio: %w", stErr)
  }
  if len(studios) == 0 || studios[0].UserID != userID {
    return nil, ErrNotFound
  }
  return step, nil
}
