package main

import (
	"fmt"
	"net/http"

	"github.com/xptrack-lab/backend/internal/model"
	"github.com/xptrack-lab/backend/pkg/api"
	"github.com/xptrack-lab/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadPublisher()
	s.loadRepos()
	s.loadEfficiency()
	s.loadDomains()

	s.updater.Start(s.ctx)

	mux := http.NewServeMux()
	s.registerEndpoints(mux)

	cfg := xcontext.Configs(s.ctx).ApiServer
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	xcontext.Logger(s.ctx).Infof("Starting api server on %s", addr)

	server := &http.Server{Addr: addr, Handler: mux}
	return server.ListenAndServe()
}

func (s *srv) registerEndpoints(mux *http.ServeMux) {
	(&api.Endpoint[model.RequestUpdateRequest, model.RequestUpdateResponse]{
		Method: http.MethodPost,
		Path:   "/updatePlayer",
		Handle: s.playerDomain.RequestUpdate,
	}).Register(s.ctx, mux)

	(&api.Endpoint[model.GetPlayerRequest, model.GetPlayerResponse]{
		Method: http.MethodGet,
		Path:   "/getPlayer",
		Handle: s.playerDomain.GetPlayer,
	}).Register(s.ctx, mux)

	(&api.Endpoint[model.GetDeltaRequest, model.GetDeltaResponse]{
		Method: http.MethodGet,
		Path:   "/getDelta",
		Handle: s.statisticDomain.GetDelta,
	}).Register(s.ctx, mux)

	(&api.Endpoint[model.GetRecordsRequest, model.GetRecordsResponse]{
		Method: http.MethodGet,
		Path:   "/getRecords",
		Handle: s.statisticDomain.GetRecords,
	}).Register(s.ctx, mux)

	(&api.Endpoint[model.GetEfficiencyRequest, model.GetEfficiencyResponse]{
		Method: http.MethodGet,
		Path:   "/getEfficiency",
		Handle: s.statisticDomain.GetEfficiency,
	}).Register(s.ctx, mux)

	(&api.Endpoint[model.GetAchievementsRequest, model.GetAchievementsResponse]{
		Method: http.MethodGet,
		Path:   "/getAchievements",
		Handle: s.achievementDomain.GetAchievements,
	}).Register(s.ctx, mux)

	(&api.Endpoint[model.ScoreCompetitionRequest, model.ScoreCompetitionResponse]{
		Method: http.MethodGet,
		Path:   "/getCompetitionScoreboard",
		Handle: s.competitionDomain.ScoreCompetition,
	}).Register(s.ctx, mux)

	(&api.Endpoint[model.GetCompetitionRankRequest, model.GetCompetitionRankResponse]{
		Method: http.MethodGet,
		Path:   "/getCompetitionRank",
		Handle: s.competitionDomain.GetRank,
	}).Register(s.ctx, mux)
}
