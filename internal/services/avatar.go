package services

import (
  "bytes"
  "context"
  "fmt"
  "image/color"
  "math/rand"
  "os"
  "strings"
  "unicode"

  "github.com/fogleman/gg"
  "github.com/golang/freetype/truetype"
  "golang.org/x/image/font"

  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/types"
)

// AvatarService renders the placeholder artwork the app falls back to when a
// user has not uploaded anything: a circular initial tile for accounts and a
// two-tone banner for studio covers. Rendering is pure; uploading is the
// caller's job.
type AvatarService interface {
  GenerateUserAvatar(ctx context.Context, user *types.User) (bytes.Buffer, error)
  GenerateStudioCover(ctx context.Context, studio *types.Studio) (bytes.Buffer, error)
}

type avatarService struct {
  log      *logger.Logger
  palette  []color.NRGBA
  fontFace font.Face
}

var defaultPalette = []color.NRGBA{
  {R: 0x5B, G: 0x8D, B: 0xEF, A: 0xFF},
  {R: 0xEF, G: 0x6C, B: 0x57, A: 0xFF},
  {R: 0x5F, G: 0xB4, B: 0x9C, A: 0xFF},
  {R: 0xB3, G: 0x7F, B: 0xE0, A: 0xFF},
  {R: 0xE8, G: 0xA8, B: 0x3C, A: 0xFF},
  {R: 0x4A, G: 0x6F, B: 0x8A, A: 0xFF},
}

// NewAvatarService loads the TTF named by AVATAR_FONT. When the env var is
// empty the service still constructs; it renders tiles without initials so a
// missing font never blocks registration.
func NewAvatarService(log *logger.Logger) (AvatarService, error) {
  serviceLog := log.With("service", "AvatarService")

  var face font.Face
  fontPath := os.Getenv("AVATAR_FONT")
  if strings.TrimSpace(fontPath) == "" {
    serviceLog.Warn("AVATAR_FONT not set, avatars will be rendered without initials")
  } else {
    serviceLog.Info("Loading avatar font", "font", fontPath)
    loaded, err := loadFontFace(fontPath, 206)
    if err != nil {
      return nil, fmt.Errorf("Failed to load avatar font: %w", err)
    }
    face = loaded
  }

  return &avatarService{
    log:      serviceLog,
    palette:  defaultPalette,
    fontFace: face,
  }, nil
}

func (as *avatarService) GenerateUserAvatar(ctx context.Context, user *types.User) (bytes.Buffer, error) {
  const size = 512
  var buf bytes.Buffer

  dc := gg.NewContext(size, size)
  dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
  dc.Clip()

  base := as.pickColor(user.Email)
  dc.SetColor(base)
  dc.DrawRectangle(0, 0, float64(size), float64(size))
  dc.Fill()

  if as.fontFace != nil {
    initials := computeInitials(user.DisplayName, user.Email)
    dc.SetFontFace(as.fontFace)
    tw, th := dc.MeasureString(initials)
    cx, cy := float64(size)/2, float64(size)/2
    dc.SetColor(color.White)
    dc.DrawString(initials, cx-(tw/2)+5, cy+(th/2)-10)
  }

  if err := dc.EncodePNG(&buf); err != nil {
    return buf, fmt.Errorf("Failed to encode PNG: %w", err)
  }
  return buf, nil
}

func (as *avatarService) GenerateStudioCover(ctx context.Context, studio *types.Studio) (bytes.Buffer, error) {
  const width, height = 1280, 480
  var buf bytes.Buffer

  dc := gg.NewContext(width, height)

  base := as.pickColor(studio.Title)
  accent := shade(base, 0.72)

  dc.SetColor(base)
  dc.DrawRectangle(0, 0, float64(width), float64(height))
  dc.Fill()

  // Diagonal accent band across the lower half
  dc.SetColor(accent)
  dc.MoveTo(0, float64(height))
  dc.LineTo(float64(width), float64(height)*0.45)
  dc.LineTo(float64(width), float64(height))
  dc.ClosePath()
  dc.Fill()

  if as.fontFace != nil {
    initial := firstLetter(studio.Title)
    dc.SetFontFace(as.fontFace)
    tw, th := dc.MeasureString(initial)
    dc.SetColor(color.White)
    dc.DrawString(initial, float64(width)/2-(tw/2), float64(height)/2+(th/2)-10)
  }

  if err := dc.EncodePNG(&buf); err != nil {
    return buf, fmt.Errorf("Failed to encode PNG: %w", err)
  }
  return buf, nil
}

func (as *avatarService) pickColor(seed string) color.NRGBA {
  if seed == "" {
    return as.palette[rand.Intn(len(as.palette))]
  }
  var sum int
  for _, r := range seed {
    sum += int(r)
  }
  return as.palette[sum%len(as.palette)]
}

func shade(c color.NRGBA, factor float64) color.NRGBA {
  scale := func(v uint8) uint8 { return uint8(float64(v) * factor) }
  return color.NRGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
}

func computeInitials(displayName, email string) string {
  name := strings.TrimSpace(displayName)
  if name == "" {
    name = strings.TrimSpace(email)
  }
  if name == "" {
    return "?"
  }

  parts := strings.Fields(name)
  if len(parts) >= 2 {
    return upperFirst(parts[0]) + upperFirst(parts[1])
  }
  return upperFirst(parts[0])
}

func firstLetter(s string) string {
  s = strings.TrimSpace(s)
  if s == "" {
    return "?"
  }
  return upperFirst(s)
}

func upperFirst(s string) string {
  for _, r := range s {
    return string(unicode.ToUpper(r))
  }
  return "?"
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
  fontBytes, err := os.ReadFile(fontPath)
  if err != nil {
    return nil, fmt.Errorf("failed to read font file: %w", err)
  }
  parsedFont, err := truetype.Parse(fontBytes)
  if err != nil {
    return nil, fmt.Errorf("failed to parse TTF: %w", err)
  }
  face := truetype.NewFace(parsedFont, &truetype.Options{
    Size:    size,
    DPI:     72,
    Hinting: font.HintingNone,
  })
  return face, nil
}
