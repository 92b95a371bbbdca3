package services

import (
  "bytes"
  "context"
  "fmt"
  "strings"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/repos"
  "github.com/kazika-dev/kazika-studio-sub003/internal/requestdata"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
  "github.com/kazika-dev/kazika-studio-sub003/internal/utils"
)

type JWTClaims struct {
  jwt.RegisteredClaims
}

type AuthService interface {
  RegisterUser(ctx context.Context, email, password, displayName string) (*types.User, error)
  LoginUser(ctx context.Context, email, password string) (string, string, error)
  RefreshUser(ctx context.Context) (string, string, error)
  LogoutUser(ctx context.Context) error
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  SetContextFromAPIKey(ctx context.Context, plainKey string) (context.Context, error)
  CreateAPIKey(ctx context.Context, userID uuid.UUID, name string, expiresAt *time.Time) (*types.APIKey, string, error)
  ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]*types.APIKey, error)
  RevokeAPIKey(ctx context.Context, userID uuid.UUID, keyID uuid.UUID) error
  GetAccessTTL() time.Duration
}

type authService struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  userTokenRepo repos.UserTokenRepo
  apiKeyRepo    repos.APIKeyRepo
  avatarService AvatarService
  bucketService BucketService
  jwtSecretKey  string
  accessTTL     time.Duration
  refreshTTL    time.Duration
}

func NewAuthService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  userTokenRepo repos.UserTokenRepo,
  apiKeyRepo repos.APIKeyRepo,
  avatarService AvatarService,
  bucketService BucketService,
  jwtSecretKey string,
  accessTTL time.Duration,
  refreshTTL time.Duration,
) AuthService {
  serviceLog := log.With("service", "AuthService")
  return &authService{
    db:            db,
    log:           serviceLog,
    userRepo:      userRepo,
    userTokenRepo: userTokenRepo,
    apiKeyRepo:    apiKeyRepo,
    avatarService: avatarService,
    bucketService: bucketService,
    jwtSecretKey:  jwtSecretKey,
    accessTTL:     accessTTL,
    refreshTTL:    refreshTTL,
  }
}

func (as *authService) RegisterUser(ctx context.Context, email, password, displayName string) (*types.User, error) {
  email = utils.NormalizeEmail(email)
  if email == "" {
    return nil, fmt.Errorf("Email is required")
  }
  if len(password) < 8 {
    return nil, fmt.Errorf("Password must be at least 8 characters")
  }

  exists, exErr := as.userRepo.EmailExists(ctx, nil, email)
  if exErr != nil {
    return nil, fmt.Errorf("Failed to check email: %w", exErr)
  }
  if exists {
    return nil, fmt.Errorf("Email already registered")
  }

  hashed, hErr := utils.HashPassword(password)
  if hErr != nil {
    return nil, fmt.Errorf("Failed to hash password: %w", hErr)
  }

  user := &types.User{
    ID:          uuid.New(),
    Email:       email,
    Password:    hashed,
    DisplayName: strings.TrimSpace(displayName),
  }

  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    avatarBuf, avErr := as.avatarService.GenerateUserAvatar(ctx, user)
    if avErr != nil {
      as.log.Warn("Failed to generate user avatar (continuing without)", "error", avErr)
    } else {
      key := fmt.Sprintf("%s/avatar/%d.png", user.ID.String(), time.Now().UnixNano())
      if upErr := as.bucketService.UploadFile(ctx, key, "image/png", bytes.NewReader(avatarBuf.Bytes())); upErr != nil {
        as.log.Warn("Failed to upload user avatar (continuing without)", "error", upErr)
      } else {
        user.AvatarKey = key
      }
    }
    if _, ucErr := as.userRepo.Create(ctx, tx, []*types.User{user}); ucErr != nil {
      return fmt.Errorf("Failed to create user in postgres: %w", ucErr)
    }
    return nil
  }); err != nil {
    return nil, err
  }
  return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
  email = utils.NormalizeEmail(email)

  users, usErr := as.userRepo.GetByEmails(ctx, nil, []string{email})
  if usErr != nil {
    return "", "", fmt.Errorf("Error retrieving user by email: %w", usErr)
  }
  if len(users) == 0 {
    return "", "", fmt.Errorf("Invalid email or password")
  }

  user := users[0]
  if cErr := utils.CheckPassword(user.Password, password); cErr != nil {
    return "", "", fmt.Errorf("Invalid email or password")
  }

  var accessToken string
  var refreshToken string
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, ftErr := as.userTokenRepo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
    if ftErr != nil {
      return fmt.Errorf("Failed to check user tokens: %w", ftErr)
    }
    expired := make([]*types.UserToken, 0, len(foundTokens))
    for _, tok := range foundTokens {
      if tok != nil && tok.ExpiresAt.Before(time.Now()) {
        expired = append(expired, tok)
      }
    }
    if len(expired) > 0 {
      if dtErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, expired); dtErr != nil {
        return fmt.Errorf("Failed to delete expired user tokens: %w", dtErr)
      }
    }
    tok, genErr := as.generateAccessToken(user)
    if genErr != nil {
      return fmt.Errorf("Generate access token error: %w", genErr)
    }
    accessToken = tok
    refreshToken = uuid.New().String()
    userToken := types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  accessToken,
      RefreshToken: refreshToken,
      ExpiresAt:    time.Now().Add(as.refreshTTL),
    }
    if _, ctErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken}); ctErr != nil {
      return fmt.Errorf("Create User Token Error: %w", ctErr)
    }
    return nil
  }); err != nil {
    return "", "", err
  }
  return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return "", "", fmt.Errorf("No Request Data found in context")
  }
  if rd.RefreshToken == "" {
    return "", "", fmt.Errorf("RefreshToken not found in requestdata")
  }

  var accessToken string
  var newRefreshTokenStr string
  err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, ftErr := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
    if ftErr != nil {
      return fmt.Errorf("Error fetching refresh token: %w", ftErr)
    }
    if len(foundTokens) == 0 {
      return fmt.Errorf("Refresh token not found")
    }
    existingToken := foundTokens[0]
    if existingToken.ExpiresAt.Before(time.Now()) {
      if dtErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, []*types.UserToken{existingToken}); dtErr != nil {
        return fmt.Errorf("Refresh token expired, error deleting: %w", dtErr)
      }
      return fmt.Errorf("Refresh token expired")
    }
    users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existingToken.UserID})
    if uErr != nil {
      return fmt.Errorf("Failed to load user for refresh: %w", uErr)
    }
    if len(users) == 0 {
      return fmt.Errorf("No user found for the given refresh token")
    }
    user := users[0]
    tok, genErr := as.generateAccessToken(user)
    if genErr != nil {
      return fmt.Errorf("Failed to generate new access token: %w", genErr)
    }
    accessToken = tok
    newRefreshTokenStr = uuid.New().String()
    newUserToken := types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  tok,
      RefreshToken: newRefreshTokenStr,
      ExpiresAt:    time.Now().Add(as.refreshTTL),
    }
    if _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&newUserToken}); cErr != nil {
      return fmt.Errorf("Failed to create new user token: %w", cErr)
    }
    if dErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, []*types.UserToken{existingToken}); dErr != nil {
      return fmt.Errorf("Failed to remove old refresh token: %w", dErr)
    }
    return nil
  })
  if err != nil {
    return "", "", err
  }
  return accessToken, newRefreshTokenStr, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return fmt.Errorf("No request data found in context")
  }
  if rd.TokenString == "" {
    return fmt.Errorf("TokenString in request data empty")
  }
  return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, tx, []string{rd.TokenString})
    if ftErr != nil {
      return fmt.Errorf("Error finding user token from token string: %w", ftErr)
    }
    if len(foundTokens) == 0 {
      return nil
    }
    if tdErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, foundTokens); tdErr != nil {
      return fmt.Errorf("Error deleting user token: %w", tdErr)
    }
    return nil
  })
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   user.ID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, nil
  }
  parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    return ctx, fmt.Errorf("Failed to parse token: %w", err)
  }
  claims, ok := parsedToken.Claims.(*JWTClaims)
  if !ok || !parsedToken.Valid {
    return ctx, fmt.Errorf("Invalid or expired JWT token")
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, fmt.Errorf("Invalid user id in token: %w", err)
  }

  var refreshTokenStr string
  foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
  if ftErr != nil {
    return ctx, fmt.Errorf("Failed to fetch user token by access token: %w", ftErr)
  }
  if len(foundTokens) > 0 {
    refreshTokenStr = foundTokens[0].RefreshToken
  }

  rd := &requestdata.RequestData{
    TokenString:  tokenString,
    RefreshToken: refreshTokenStr,
    UserID:       userID,
    AuthKind:     "session",
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

// SetContextFromAPIKey resolves a plaintext key by its SHA-256 digest. Expired
// keys are rejected; a resolved key records its last use best-effort.
func (as *authService) SetContextFromAPIKey(ctx context.Context, plainKey string) (context.Context, error) {
  if !utils.LooksLikeAPIKey(plainKey) {
    return ctx, fmt.Errorf("Malformed API key")
  }

  key, kErr := as.apiKeyRepo.GetByHash(ctx, nil, utils.HashAPIKey(plainKey))
  if kErr != nil {
    return ctx, fmt.Errorf("Failed to resolve API key: %w", kErr)
  }
  if key == nil {
    return ctx, fmt.Errorf("Unknown API key")
  }
  if key.ExpiresAt != nil && key.ExpiresAt.Before(time.Now()) {
    return ctx, fmt.Errorf("API key expired")
  }

  if tErr := as.apiKeyRepo.TouchLastUsed(ctx, nil, key.ID, time.Now()); tErr != nil {
    as.log.Warn("Failed to record API key use", "key_id", key.ID, "error", tErr)
  }

  rd := &requestdata.RequestData{
    UserID:   key.UserID,
    AuthKind: "api_key",
    APIKeyID: key.ID,
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

// CreateAPIKey returns the stored row and the plaintext key. The plaintext is
// never persisted and cannot be recovered later.
func (as *authService) CreateAPIKey(ctx context.Context, userID uuid.UUID, name string, expiresAt *time.Time) (*types.APIKey, string, error) {
  name = strings.TrimSpace(name)
  if name == "" {
    return nil, "", fmt.Errorf("Key name is required")
  }
  if expiresAt != nil && expiresAt.Before(time.Now()) {
    return nil, "", fmt.Errorf("Expiry must be in the future")
  }

  plainKey, genErr := utils.GenerateAPIKey()
  if genErr != nil {
    return nil, "", fmt.Errorf("Failed to generate API key: %w", genErr)
  }

  key := &types.APIKey{
    ID:        uuid.New(),
    UserID:    userID,
    Name:      name,
    KeyHash:   utils.HashAPIKey(plainKey),
    ExpiresAt: expiresAt,
  }
  if _, cErr := as.apiKeyRepo.Create(ctx, nil, []*types.APIKey{key}); cErr != nil {
    return nil, "", fmt.Errorf("Failed to create API key: %w", cErr)
  }
  return key, plainKey, nil
}

func (as *authService) ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]*types.APIKey, error) {
  return as.apiKeyRepo.ListByUserID(ctx, nil, userID)
}

func (as *authService) RevokeAPIKey(ctx context.Context, userID uuid.UUID, keyID uuid.UUID) error {
  return as.apiKeyRepo.Delete(ctx, nil, userID, keyID)
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}
