package entity

import (
	"context"

	"github.com/xptrack-lab/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&Player{},
		&Snapshot{},
		&Record{},
		&Achievement{},
		&Competition{},
		&Participation{},
	)
}
