package main

import (
	"fmt"

	"github.com/cardcon-lab/backend/internal/model"
	"github.com/urfave/cli/v2"
)

func (s *srv) startToken(cctx *cli.Context) error {
	s.loadTokenEngine()

	userID := cctx.String("user")
	token, err := s.tokenEngine.Generate(userID, model.AccessToken{
		ID:    userID,
		Staff: cctx.Bool("staff"),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cctx.App.Writer, token)
	return nil
}
