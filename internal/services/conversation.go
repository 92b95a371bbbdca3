package services

import (
  "bytes"
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

// Delay between per-line speech synthesis calls, same sleep-based throttle as
// the other bulk provider loops.
const lineAudioDelay = 300 * time.Millisecond

// LineError records a line whose audio generation failed; surviving lines keep
// their generated audio.
type LineError struct {
  LineIndex int    `json:"line_index"`
  Error     string `json:"error"`
}

type ConversationService interface {
  CreateConversation(ctx context.Context, userID uuid.UUID, title string, lines []types.ConversationLine) (*types.Conversation, error)
  GetConversation(ctx context.Context, userID uuid.UUID, conversationID uuid.UUID) (*types.Conversation, error)
  ListConversations(ctx context.Context, userID uuid.UUID) ([]*types.Conversation, error)
  UpdateConversation(ctx context.Context, userID uuid.UUID, conversationID uuid.UUID, title string, lines []types.ConversationLine) (*types.Conversation, error)
  DeleteConversation(ctx context.Context, userID uuid.UUID, conversationID uuid.UUID) error
  GenerateAudio(ctx context.Context, userID uuid.UUID, conversationID uuid.UUID) (*types.Conversation, []LineError, error)
}

type conversationService struct {
  db               *gorm.DB
  log              *logger.Logger
  conversationRepo repos.ConversationRepo
  elevenLabsClient ElevenLabsClient
  bucketService    BucketService
}

func NewConversationService(db *gorm.DB, log *logger.Logger, conversationRepo repos.ConversationRepo, elevenLabsClient ElevenLabsClient, bucketService BucketService) ConversationService {
  return &conversationService{
    db:               db,
    log:              log.With("service", "ConversationService"),
    conversationRepo: conversationRepo,
    elevenLabsClient: elevenLabsClient,
    bucketService:    bucketService,
  }
}

func marshalLines(lines []types.ConversationLine) (datatypes.JSON, error) {
  if lines == nil {
    lines = []types.ConversationLine{}
  }
  raw, err := json.Marshal(lines)
  if err != nil {
    return nil, fmt.Errorf("Failed to marshal conversation lines: %w", err)
  }
  return datatypes.JSON(raw), nil
}

func (cv *conversationService) CreateConversation(ctx context.Context, userID uuid.UUID, title string, lines []types.ConversationLine) (*types.Conversation, error) {
  title = strings.TrimSpace(title)
  if title == "" {
    return nil, fmt.Errorf("Title is required")
  }
  linesJSON, mErr := marshalLines(lines)
  if mErr != nil {
    return nil, mErr
  }

  conversation := &types.Conversation{
    ID:     uuid.New(),
    UserID: userID,
    Title:  title,
    Lines:  linesJSON,
  }
  if _, cErr := cv.conversationRepo.Create(ctx, nil, []*types.Conversation{conversation}); cErr != nil {
    return nil, fmt.Errorf("Failed to create conversation: %w", cErr)
  }
  return conversation, nil
}

func (cv *conversationService) getOwned(ctx context.Context, userID uuid.UUID, conversationID uuid.UUID) (*types.Conversation, error) {
  conversations, gErr := cv.conversationRepo.GetByIDs(ctx, nil, []uuid.UUID{conversationID})
  if gErr != nil {
    return nil, fmt.Errorf("Failed to get conversation: %w", gErr)
  }
  if len(conversations) == 0 || conversations[0].UserID != userID {
    return nil, ErrNotFound
  }
  return conversations[0], nil
}

func (cv *conversationService) GetConversation(ctx context.Context, userID uuid.UUID, conversationID uuid.UUID) (*types.Conversation, error) {
  return cv.getOwned(ctx, userID, conversationID)
}

func (cv *conversationService) ListConversations(ctx context.Context, userID uuid.UUID) ([]*types.Conversation, error) {
  return cv.conversationRepo.ListByUserID(ctx, nil, userID)
}

func (cv *conversationService) UpdateConversation(ctx context.Context, userID uuid.UUID, conversationID uuid.UUID, title string, lines []types.ConversationLine) (*types.Conversation, error) {
  if _, err := cv.getOwned(ctx, userID, conversationID); err != nil {
    return nil, err
  }
  linesJSON, mErr := marshalLines(lines)
  if mErr != nil {
    return nil, mErr
  }
  fields := map[string]any{"lines": linesJSON, "updated_at": time.Now()}
  if title = strings.TrimSpace(title); title != "" {
    fields["title"] = title
  }
  if uErr := cv.conversationRepo.UpdateFields(ctx, nil, conversationID, fields); uErr != nil {
    return nil, fmt.Errorf("Failed to update conversation: %w", uErr)
  }
  return cv.getOwned(ctx, userID, conversationID)
}

func (cv *conversationService) DeleteConversation(ctx context.Context, userID uuid.UUID, conversationID uuid.UUID) error {
  if _, err := cv.getOwned(ctx, userID, conversationID); err != nil {
    return err
  }
  if dErr := cv.conversationRepo.Delete(ctx, nil, conversationID); dErr != nil {
    return fmt.Errorf("Failed to delete conversation: %w", dErr)
  }
  return nil
}

// GenerateAudio synthesizes speech for every line that has text but no audio
// yet, one line at a time with a fixed delay between provider calls. Each
// line's outcome is independent: failures land in the returned error list and
// the remaining lines still run. Lines that already carry audio are skipped.
func (cv *conversationService) GenerateAudio(ctx context.Context, userID uuid.UUID, conversationID uuid.UUID) (*types.Conversation, []LineError, error) {
  conversation, gErr := cv.getOwned(ctx, userID, conversationID)
  if gErr != nil {
    return nil, nil, gErr
  }

  var lines []types.ConversationLine
  if len(conversation.Lines) > 0 {
    if err := json.Unmarshal(conversation.Lines, &lines); err != nil {
      return nil, nil, fmt.Errorf("Failed to unmarshal conversation lines: %w", err)
    }
  }

  var lineErrors []LineError
  synthesized := false
  for i := range lines {
    if strings.TrimSpace(lines[i].Text) == "" || lines[i].AudioKey != "" {
      continue
    }
    if synthesized {
      select {
      case <-ctx.Done():
        lineErrors = append(lineErrors, LineError{LineIndex: i, Error: ctx.Err().Error()})
        return conversation, lineErrors, nil
      case <-time.After(lineAudioDelay):
      }
    }
    synthesized = true

    audio, synthErr := cv.elevenLabsClient.Synthesize(ctx, lines[i].VoiceID, lines[i].Text)
    if synthErr != nil {
      cv.log.Warn("Failed to synthesize line, continuing", "conversation_id", conversationID, "line", i, "error", synthErr)
      lineErrors = append(lineErrors, LineError{LineIndex: i, Error: synthErr.Error()})
      continue
    }

    key := fmt.Sprintf("%s/conversation/%s/line_%d_%d.mp3", userID.String(), conversationID.String(), i, time.Now().UnixNano())
    if upErr := cv.bucketService.UploadFile(ctx, key, "audio/mpeg", bytes.NewReader(audio)); upErr != nil {
      cv.log.Warn("Failed to upload line audio, continuing", "conversation_id", conversationID, "line", i, "error", upErr)
      lineErrors = append(lineErrors, LineError{LineIndex: i, Error: upErr.Error()})
      continue
    }
    lines[i].AudioKey = key
  }

  linesJSON, mErr := marshalLines(lines)
  if mErr != nil {
    return nil, lineErrors, mErr
  }
  if uErr := cv.conversationRepo.UpdateFields(ctx, nil, conversationID, map[string]any{
    "lines":      linesJSON,
    "updated_at": time.Now(),
  }); uErr != nil {
    return nil, lineErrors, fmt.Errorf("Failed to persist line audio keys: %w", uErr)
  }

  updated, gErr2 := cv.getOwned(ctx, userID, conversationID)
  if gErr2 != nil {
    return nil, lineErrors, gErr2
  }
  return updated, lineErrors, nil
}
