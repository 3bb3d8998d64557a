package services

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"os"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/font"

	"github.com/gridsight/gridsight-backend/internal/data/repos/annotations"
	"github.com/gridsight/gridsight-backend/internal/data/repos/inspections"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
	"github.com/gridsight/gridsight-backend/internal/platform/localmedia"
)

// Per-class box colors; anything unknown falls back to red.
var classColors = map[string]color.NRGBA{
	"Loose Joint (Faulty)":       {R: 0xE5, G: 0x39, B: 0x35, A: 0xFF},
	"Loose Joint (Potential)":    {R: 0xFB, G: 0x8C, B: 0x00, A: 0xFF},
	"Point Overload (Faulty)":    {R: 0xD8, G: 0x1B, B: 0x60, A: 0xFF},
	"Point Overload (Potential)": {R: 0xFF, G: 0xB3, B: 0x00, A: 0xFF},
	"Full Wire Overload":         {R: 0x8E, G: 0x24, B: 0xAA, A: 0xFF},
}

var fallbackColor = color.NRGBA{R: 0xE5, G: 0x39, B: 0x35, A: 0xFF}

type RenderService interface {
	// RenderAnnotated draws the inspection's active boxes onto its thermal
	// image, stores the result, and records the path on the inspection.
	RenderAnnotated(ctx context.Context, inspectionID uuid.UUID) (*types.Inspection, error)
}

type renderService struct {
	log            *logger.Logger
	store          *localmedia.Store
	annotationRepo annotations.AnnotationRepo
	inspectionRepo inspections.InspectionRepo

	fontFace font.Face
}

func NewRenderService(
	baseLog *logger.Logger,
	store *localmedia.Store,
	annotationRepo annotations.AnnotationRepo,
	inspectionRepo inspections.InspectionRepo,
) RenderService {
	serviceLog := baseLog.With("service", "RenderService")

	var face font.Face
	if fontPath := strings.TrimSpace(os.Getenv("RENDER_FONT")); fontPath != "" {
		loaded, err := loadFontFace(fontPath, 22)
		if err != nil {
			serviceLog.Warn("Could not load render font, box labels disabled", "font", fontPath, "error", err)
		} else {
			face = loaded
		}
	}

	return &renderService{
		log:            serviceLog,
		store:          store,
		annotationRepo: annotationRepo,
		inspectionRepo: inspectionRepo,
		fontFace:       face,
	}
}

func (s *renderService) RenderAnnotated(ctx context.Context, inspectionID uuid.UUID) (*types.Inspection, error) {
	insp, err := s.inspectionRepo.GetByID(ctx, nil, inspectionID)
	if err != nil {
		return nil, err
	}
	if insp == nil {
		return nil, apperr.NotFound("inspection")
	}
	if insp.ImagePath == nil || *insp.ImagePath == "" {
		return nil, apperr.Validation("inspection %s has no thermal image", insp.InspectionNo)
	}

	active, err := s.annotationRepo.GetActiveByInspection(ctx, nil, inspectionID)
	if err != nil {
		return nil, err
	}

	img, err := gg.LoadImage(s.store.Path(*insp.ImagePath))
	if err != nil {
		return nil, fmt.Errorf("load inspection image: %w", err)
	}

	bounds := img.Bounds()
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.DrawImage(img, 0, 0)

	for _, a := range active {
		s.drawBox(dc, a)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode annotated image: %w", err)
	}
	stored, _, err := s.store.SaveBytes("annotated.png", buf.Bytes())
	if err != nil {
		return nil, err
	}

	updated, err := s.inspectionRepo.Update(ctx, nil, inspectionID, map[string]interface{}{
		"annotated_image_path": stored,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Rendered annotated image",
		"inspection_no", insp.InspectionNo, "boxes", len(active), "stored", stored)
	return updated, nil
}

func (s *renderService) drawBox(dc *gg.Context, a *types.Annotation) {
	c := fallbackColor
	if a.ClassName != nil {
		if known, ok := classColors[*a.ClassName]; ok {
			c = known
		}
	}

	x := float64(a.BboxX1)
	y := float64(a.BboxY1)
	w := float64(a.BboxX2 - a.BboxX1)
	h := float64(a.BboxY2 - a.BboxY1)

	dc.SetColor(c)
	dc.SetLineWidth(3)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()

	if s.fontFace == nil || a.BoxNumber == nil {
		return
	}

	label := fmt.Sprintf("%d", *a.BoxNumber)
	dc.SetFontFace(s.fontFace)
	tw, th := dc.MeasureString(label)

	// Label chip above the top-left corner, clamped into the frame.
	chipY := y - th - 8
	if chipY < 0 {
		chipY = y + 2
	}
	dc.DrawRectangle(x, chipY, tw+10, th+6)
	dc.Fill()
	dc.SetColor(color.White)
	dc.DrawString(label, x+5, chipY+th)
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
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
