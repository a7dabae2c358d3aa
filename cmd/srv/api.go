package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cardcon-lab/backend/internal/common"
	"github.com/cardcon-lab/backend/internal/middleware"
	"github.com/cardcon-lab/backend/pkg/prometheus"
	"github.com/cardcon-lab/backend/pkg/router"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	defer s.syncLogger()
	defer s.closeClients()

	s.loadCatalog()
	s.loadSnowflake()
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadPublisher()
	s.loadTokenEngine()
	s.loadRepos()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx).ApiServer
	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.router.Handler(cfg.AllowedOrigins),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		xcontext.Logger(s.ctx).Infof("Starting server on %s", cfg.Address())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		xcontext.Logger(s.ctx).Infof("Received signal %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Server stopped")
	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.AddCloser(middleware.Logger())

	cfg := xcontext.Configs(s.ctx)
	if cfg.Prometheus.Enable {
		s.router.AddCloser(middleware.Prometheus())
		s.router.Handle(http.MethodGet, cfg.Prometheus.Path, prometheus.NewHandler(common.PromCollectors()...))
	}

	// These following APIs need an access token.
	userRouter := s.router.Branch()
	authVerifier := middleware.NewAuthVerifier(s.tokenEngine)
	userRouter.Before(authVerifier.Middleware())
	{
		// Faction API
		router.GET(userRouter, "/canJoinFaction", s.factionDomain.CanJoin)
		router.POST(userRouter, "/joinFaction", s.factionDomain.Join)
		router.POST(userRouter, "/leaveFaction", s.factionDomain.Leave)
		router.GET(userRouter, "/getMyFaction", s.factionDomain.GetMyFaction)

		// Point API
		router.GET(userRouter, "/getMyPoints", s.pointDomain.GetMyPoints)
		router.GET(userRouter, "/getMyTransactions", s.pointDomain.GetMyTransactions)
		router.GET(userRouter, "/getMyRank", s.statisticDomain.GetMyRank)

		// QR code API
		router.GET(userRouter, "/getMyQRCodes", s.qrCodeDomain.GetMyQRCodes)
		router.POST(userRouter, "/createPurchaseQRCode", s.qrCodeDomain.CreatePurchaseQRCode)
		router.GET(userRouter, "/getQRCodeImage", s.qrCodeDomain.GetQRCodeImage)
	}

	// These following APIs need an access token of a staff member.
	staffRouter := s.router.Branch()
	staffRouter.Before(authVerifier.WithStaff().Middleware())
	{
		router.POST(staffRouter, "/redeemQRCode", s.qrCodeDomain.RedeemQRCode)
		router.POST(staffRouter, "/awardBonusPoints", s.pointDomain.AwardBonusPoints)
		router.GET(staffRouter, "/validateMembership", s.factionDomain.ValidateMembership)
		router.GET(staffRouter, "/getFactionMembers", s.factionDomain.GetMembers)
		router.GET(staffRouter, "/getTransactions", s.pointDomain.GetTransactions)
	}

	// Public API.
	router.GET(s.router, "/getFactions", s.factionDomain.GetFactions)
	router.GET(s.router, "/getFaction", s.factionDomain.GetFaction)
	router.GET(s.router, "/getContest", s.factionDomain.GetContest)
	router.GET(s.router, "/getFactionStats", s.statisticDomain.GetFactionStats)
	router.GET(s.router, "/getAllFactionStats", s.statisticDomain.GetAllFactionStats)
	router.GET(s.router, "/getLeaderBoard", s.statisticDomain.GetLeaderBoard)
}
