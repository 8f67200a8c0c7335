package api

import (
	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/schema"
	"github.com/gofiber/fiber/v2"
)

// getInfo returns the environment information of the server.
func (s *Server) getInfo(c *fiber.Ctx) error {
	return c.JSON(schema.AppInfo{
		Env:        s.cfg.Env,
		APIVersion: contract.APIVersion,
		AuthURL:    s.cfg.AuthURL,
		Backend:    string(s.cfg.StoreBackend),
	})
}

// listBenchmarkConfigs returns every benchmark config.
func (s *Server) listBenchmarkConfigs(c *fiber.Ctx) error {
	configs, err := s.configs.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(configs)
}

// getBenchmark composes a benchmark. The optional view query keeps a single view.
func (s *Server) getBenchmark(c *fiber.Ctx) error {
	bm, err := s.composer.BuildBenchmark(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	if view := c.Query("view"); view != "" {
		table, ok := bm.Views[view]
		if !ok {
			return &schema.NotFoundError{Kind: "view", ID: view}
		}
		bm.Views = map[string]schema.BenchmarkTable{view: table}
	}
	return c.JSON(bm)
}
