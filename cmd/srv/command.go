package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the toml configuration file",
		EnvVars: []string{"FACTION_CONFIG"},
	}

	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "Faction"
	s.app.Usage = "Faction points service of the card convention"
	s.app.Before = s.loadConfig
	s.app.Flags = []cli.Flag{configFlag}
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Used to start the http api serving factions, points, qr codes and statistics.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate the database",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Usage: "Run the one-shot data migration of this version after migrating tables",
				},
			},
			Description: `Used to migrate tables and seed the faction catalog snapshot.`,
		},
		{
			Action:   s.startToken,
			Name:     "token",
			Usage:    "Generate an access token",
			Category: "Tool",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "user", Usage: "User id of the token", Required: true},
				&cli.BoolFlag{Name: "staff", Usage: "Grant staff permission"},
			},
			Description: `Used by operators to mint access tokens for users and staff.`,
		},
		{
			Action:      s.startAudit,
			Name:        "audit",
			Usage:       "Start the point audit consumer",
			Category:    "Worker",
			Description: `Used to consume point transaction events and write them to the audit log.`,
		},
	}
}
