package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sale *Sale) error
	InsertLines(ctx context.Context, db *gorm.DB, lines []Line) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Sale, error)
	FindLines(ctx context.Context, db *gorm.DB, saleID snowflake.ID) ([]Line, error)
	UpdateLineTaxes(ctx context.Context, db *gorm.DB, line *Line) error
	MarkPosted(ctx context.Context, db *gorm.DB, sale *Sale) (bool, error)
}
