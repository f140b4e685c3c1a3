package control

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/psi-streaming/nodeflow/node"
)

// routes wires the control-plane endpoint table under both
// /api/v1/{inst}/... and the bare /{inst}/... alias.
func (s *Server) routes() {
	for _, base := range []string{"/api/v1/:inst", "/:inst"} {
		s.app.Get(base+"/help", s.handleHelp)
		s.app.Get(base+"/status", s.handleStatus)

		s.app.Get(base+"/parameters", s.handleGetParameters)
		s.app.Post(base+"/parameters", s.handleSetParameters)

		s.app.Get(base+"/statistics", s.handleStatistics)
		s.app.Get(base+"/statistics_raw", s.handleStatisticsRaw)
		s.app.Get(base+"/statistics/stream", s.handleStatisticsStream)

		s.app.Get(base+"/start", s.handleStart)
		s.app.Put(base+"/start", s.handleStart)
		s.app.Put(base, s.handleStart)

		s.app.Get(base+"/stop", s.handleStop)
		s.app.Delete(base+"/stop", s.handleStop)
		s.app.Delete(base, s.handleStop)

		s.app.Post(base+"/reset", s.handleReset)

		s.app.Get(base+"/logging", s.handleGetLogging)
		s.app.Post(base+"/logging", s.handleSetLogging)

		s.app.Delete(base+"/kill", s.handleKill)
	}
}

func (s *Server) instanceManager(c *fiber.Ctx) (*node.Manager, error) {
	inst := c.Params("inst")
	mgr, err := s.manager(inst)
	if err != nil {
		return nil, err
	}
	return mgr, nil
}

func (s *Server) handleHelp(c *fiber.Ctx) error {
	mgr, err := s.instanceManager(c)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err)
	}
	return ok(c, mgr.Describe())
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	mgr, err := s.instanceManager(c)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err)
	}

	return ok(c, fiber.Map{
		"processor_name": mgr.Describe(),
		"is_running":     mgr.IsRunning(),
		"parameters":     mgr.GetParametersOrdered(),
	})
}

func (s *Server) handleGetParameters(c *fiber.Ctx) error {
	mgr, err := s.instanceManager(c)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err)
	}
	return ok(c, mgr.GetParametersOrdered())
}

func (s *Server) handleSetParameters(c *fiber.Ctx) error {
	mgr, err := s.instanceManager(c)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err)
	}

	updates := map[string]interface{}{}
	if err := c.BodyParser(&updates); err != nil {
		return fail(c, fiber.StatusBadRequest, fmt.Errorf("control: malformed parameters body: %w", err))
	}

	mgr.SetParameters(updates)
	return ok(c, nil)
}

func (s *Server) handleStatistics(c *fiber.Ctx) error {
	mgr, err := s.instanceManager(c)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err)
	}
	return ok(c, mgr.GetStatistics())
}

func (s *Server) handleStatisticsRaw(c *fiber.Ctx) error {
	mgr, err := s.instanceManager(c)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err)
	}
	return ok(c, mgr.GetStatisticsRaw())
}

func (s *Server) handleStart(c *fiber.Ctx) error {
	mgr, err := s.instanceManager(c)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err)
	}

	if len(c.Body()) > 0 {
		updates := map[string]interface{}{}
		if err := c.BodyParser(&updates); err == nil {
			mgr.SetParameters(updates)
		}
	}

	if err := mgr.Start(); err != nil {
		return fail(c, fiber.StatusInternalServerError, err)
	}
	return ok(c, nil)
}

func (s *Server) handleStop(c *fiber.Ctx) error {
	mgr, err := s.instanceManager(c)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err)
	}
	if err := mgr.Stop(); err != nil {
		return fail(c, fiber.StatusInternalServerError, err)
	}
	return ok(c, nil)
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	mgr, err := s.instanceManager(c)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err)
	}
	if err := mgr.Reset(); err != nil {
		return fail(c, fiber.StatusInternalServerError, err)
	}
	return ok(c, mgr.GetParametersOrdered())
}

func (s *Server) handleGetLogging(c *fiber.Ctx) error {
	return ok(c, s.logs.Levels())
}

func (s *Server) handleSetLogging(c *fiber.Ctx) error {
	levels := map[string]string{}
	if err := c.BodyParser(&levels); err != nil {
		return fail(c, fiber.StatusBadRequest, fmt.Errorf("control: malformed logging body: %w", err))
	}

	if err := s.logs.SetLevels(levels); err != nil {
		return fail(c, fiber.StatusInternalServerError, err)
	}
	return ok(c, nil)
}

// handleKill stops the instance then terminates the process — the
// response may never reach the client if the process exits first.
func (s *Server) handleKill(c *fiber.Ctx) error {
	mgr, err := s.instanceManager(c)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err)
	}

	if err := mgr.Stop(); err != nil {
		s.logger.WithError(err).Error("control: error stopping manager before kill")
	}

	go terminateProcess()

	return ok(c, nil)
}
