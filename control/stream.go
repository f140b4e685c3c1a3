package control

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"github.com/psi-streaming/nodeflow/node"
)

// statisticsStreamInterval is how often a connected client receives a
// fresh statistics snapshot.
const statisticsStreamInterval = time.Second

// handleStatisticsStream upgrades the connection and pushes the
// instance's aggregated statistics once per statisticsStreamInterval
// until the client disconnects, supplementing the polling-only
// statistics endpoints with a live feed.
func (s *Server) handleStatisticsStream(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	mgr, err := s.instanceManager(c)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err)
	}

	return websocket.New(func(conn *websocket.Conn) {
		streamStatistics(conn, mgr, s.logger.WithField("component", "statistics_stream"))
	})(c)
}

func streamStatistics(conn *websocket.Conn, mgr *node.Manager, log logrus.FieldLogger) {
	defer conn.Close()

	ticker := time.NewTicker(statisticsStreamInterval)
	defer ticker.Stop()

	for range ticker.C {
		payload, err := json.Marshal(mgr.GetStatistics())
		if err != nil {
			log.Error(err)
			return
		}

		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
