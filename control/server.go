package control

import (
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/psi-streaming/nodeflow/internal/nodelog"
	"github.com/psi-streaming/nodeflow/node"
)

// Server hosts the HTTP control plane for one or more node instances,
// each reachable under its own instance name in the path. It is built
// on the same fiber.App + recover-middleware + logrus combination the
// teacher's Pipe.Run uses.
type Server struct {
	app    *fiber.App
	logger *logrus.Logger
	logs   *nodelog.Registry

	mu        sync.RWMutex
	instances map[string]*node.Manager
}

// NewServer returns a Server with no instances registered yet. Use
// Register to add one before starting to listen.
func NewServer(logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	app := fiber.New()
	app.Use(recover.New())

	s := &Server{
		app:       app,
		logger:    logger,
		logs:      nodelog.New(),
		instances: map[string]*node.Manager{},
	}

	s.routes()

	return s
}

// Register makes mgr reachable under instance name inst.
func (s *Server) Register(inst string, mgr *node.Manager) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[inst] = mgr
}

func (s *Server) manager(inst string) (*node.Manager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mgr, ok := s.instances[inst]
	if !ok {
		return nil, fmt.Errorf("control: no such instance %q", inst)
	}
	return mgr, nil
}

// Listen starts serving on addr. It blocks until the server stops.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops every registered instance's Manager, then gracefully
// shuts down the HTTP server.
func (s *Server) Shutdown() error {
	s.mu.RLock()
	managers := make([]*node.Manager, 0, len(s.instances))
	for _, mgr := range s.instances {
		managers = append(managers, mgr)
	}
	s.mu.RUnlock()

	for _, mgr := range managers {
		if err := mgr.Stop(); err != nil {
			s.logger.WithError(err).Error("control: error stopping manager during shutdown")
		}
	}

	return s.app.Shutdown()
}
