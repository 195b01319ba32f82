package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/milestonegate/internal/dbx"
	"github.com/dmitrijs2005/milestonegate/internal/server/repositories/milestones"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Milestones(db dbx.DBTX) milestones.Repository
}
