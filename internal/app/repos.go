package app

import (
	"gorm.io/gorm"

	"github.com/gridsight/gridsight-backend/internal/data/repos/annotations"
	"github.com/gridsight/gridsight-backend/internal/data/repos/auth"
	"github.com/gridsight/gridsight-backend/internal/data/repos/inspections"
	"github.com/gridsight/gridsight-backend/internal/data/repos/maintenance"
	"github.com/gridsight/gridsight-backend/internal/data/repos/transformers"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

type Repos struct {
	User         auth.UserRepo
	UserToken    auth.UserTokenRepo
	Transformer  transformers.TransformerRepo
	ThermalImage transformers.ThermalImageRepo
	Inspection   inspections.InspectionRepo
	Comment      inspections.CommentRepo
	Annotation   annotations.AnnotationRepo
	BoxSequence  annotations.BoxSequenceRepo
	History      annotations.HistoryRepo
	Maintenance  maintenance.RecordRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         auth.NewUserRepo(db, log),
		UserToken:    auth.NewUserTokenRepo(db, log),
		Transformer:  transformers.NewTransformerRepo(db, log),
		ThermalImage: transformers.NewThermalImageRepo(db, log),
		Inspection:   inspections.NewInspectionRepo(db, log),
		Comment:      inspections.NewCommentRepo(db, log),
		Annotation:   annotations.NewAnnotationRepo(db, log),
		BoxSequence:  annotations.NewBoxSequenceRepo(db, log),
		History:      annotations.NewHistoryRepo(db, log),
		Maintenance:  maintenance.NewRecordRepo(db, log),
	}
}
