package main

import (
	"github.com/cardcon-lab/backend/migration"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	defer s.syncLogger()

	s.loadCatalog()
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	xcontext.Logger(s.ctx).Infof("Migrated tables and seeded %d factions", len(s.catalog.GetAll()))

	version := cctx.String("version")
	if version == "" {
		return nil
	}

	if err := migration.Run(s.ctx, version); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Ran migration %s", version)
	return nil
}
