package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gridsight/gridsight-backend/internal/data/repos/annotations"
	"github.com/gridsight/gridsight-backend/internal/data/repos/inspections"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

// FeedbackItem is one lineage's verdict in an AI-vs-human comparison. For AI
// lineages HumanVersion is the edited head when an inspector reworked the
// box, nil otherwise. Human-created lineages carry action "added".
type FeedbackItem struct {
	BoxNumber    *int              `json:"box_number"`
	Action       string            `json:"action"`
	AIDetection  *types.Annotation `json:"ai_detection,omitempty"`
	HumanVersion *types.Annotation `json:"human_version,omitempty"`
}

type FeedbackSummary struct {
	TotalAI    int `json:"total_ai"`
	TotalHuman int `json:"total_human"`
	Approved   int `json:"approved"`
	Rejected   int `json:"rejected"`
	Edited     int `json:"edited"`
	Added      int `json:"added"`
	Pending    int `json:"pending"`
	Deleted    int `json:"deleted"`
}

// FeedbackReport is a point-in-time snapshot recomputed from store state on
// every call.
type FeedbackReport struct {
	InspectionID uuid.UUID       `json:"inspection_id"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Items        []FeedbackItem  `json:"items"`
	Summary      FeedbackSummary `json:"summary"`
}

type FeedbackService interface {
	Export(ctx context.Context, inspectionID uuid.UUID) (*FeedbackReport, error)
}

type feedbackService struct {
	log            *logger.Logger
	annotationRepo annotations.AnnotationRepo
	inspectionRepo inspections.InspectionRepo
}

func NewFeedbackService(
	baseLog *logger.Logger,
	annotationRepo annotations.AnnotationRepo,
	inspectionRepo inspections.InspectionRepo,
) FeedbackService {
	return &feedbackService{
		log:            baseLog.With("service", "FeedbackService"),
		annotationRepo: annotationRepo,
		inspectionRepo: inspectionRepo,
	}
}

func (s *feedbackService) Export(ctx context.Context, inspectionID uuid.UUID) (*FeedbackReport, error) {
	insp, err := s.inspectionRepo.GetByID(ctx, nil, inspectionID)
	if err != nil {
		return nil, err
	}
	if insp == nil {
		return nil, apperr.NotFound("inspection")
	}

	var (
		active    []*types.Annotation
		aiRows    []*types.Annotation
		humanRows []*types.Annotation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		active, err = s.annotationRepo.GetActiveByInspection(gctx, nil, inspectionID)
		return err
	})
	g.Go(func() error {
		var err error
		aiRows, err = s.annotationRepo.GetByInspectionAndSource(gctx, nil, inspectionID, types.SourceAI)
		return err
	})
	g.Go(func() error {
		var err error
		humanRows, err = s.annotationRepo.GetByInspectionAndSource(gctx, nil, inspectionID, types.SourceHuman)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &FeedbackReport{
		InspectionID: inspectionID,
		GeneratedAt:  time.Now().UTC(),
		Items:        []FeedbackItem{},
	}

	// Verdict counts come from the active rows regardless of source; Added
	// counts human-rooted lineages separately, so a human box that was later
	// approved shows up in both.
	for _, row := range active {
		switch row.Source {
		case types.SourceAI:
			report.Summary.TotalAI++
		case types.SourceHuman:
			report.Summary.TotalHuman++
		}
		report.Summary.count(classifyHead(row))
	}

	// Lineage roots are the version-1 rows; edits inherit their root's
	// source, so ai rows and human rows partition the lineages.
	aiRoots := lineageRoots(aiRows)
	humanRoots := lineageRoots(humanRows)
	lineageIDs := make([]uuid.UUID, 0, len(aiRoots)+len(humanRoots))
	for _, root := range aiRoots {
		lineageIDs = append(lineageIDs, root.LineageID)
	}
	for _, root := range humanRoots {
		lineageIDs = append(lineageIDs, root.LineageID)
	}
	heads, err := s.annotationRepo.GetLineageHeads(ctx, nil, lineageIDs)
	if err != nil {
		return nil, err
	}

	for _, root := range aiRoots {
		head := heads[root.LineageID]
		if head == nil {
			head = root
		}
		item := FeedbackItem{
			BoxNumber:   head.BoxNumber,
			Action:      classifyHead(head),
			AIDetection: root,
		}
		if head.Version > 1 {
			item.HumanVersion = head
		}
		report.Items = append(report.Items, item)
	}

	for _, root := range humanRoots {
		head := heads[root.LineageID]
		if head == nil {
			head = root
		}
		report.Items = append(report.Items, FeedbackItem{
			BoxNumber:    head.BoxNumber,
			Action:       "added",
			HumanVersion: head,
		})
		report.Summary.Added++
	}

	sort.SliceStable(report.Items, func(i, j int) bool {
		a, b := report.Items[i].BoxNumber, report.Items[j].BoxNumber
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return *a < *b
	})

	return report, nil
}

func (s *FeedbackSummary) count(action string) {
	switch action {
	case "approved":
		s.Approved++
	case "rejected":
		s.Rejected++
	case "edited":
		s.Edited++
	case "pending":
		s.Pending++
	case "deleted":
		s.Deleted++
	}
}

// classifyHead maps a lineage head to its feedback verdict. A head still at
// its creation state counts as pending while active and deleted once the
// lineage was terminated.
func classifyHead(head *types.Annotation) string {
	if head.ActionType == types.ActionCreated {
		if head.IsActive {
			return "pending"
		}
		return "deleted"
	}
	return string(head.ActionType)
}

// lineageRoots filters rows down to the version-1 row of each lineage.
func lineageRoots(rows []*types.Annotation) []*types.Annotation {
	var roots []*types.Annotation
	for _, row := range rows {
		if row.Version == 1 {
			roots = append(roots, row)
		}
	}
	return roots
}
