package server

import (
	"context"
	"sync/atomic"

	"github.com/kbukum/forohub/component"
)

const componentName = "http-server"

// Component registers a Server with component.Registry.
type Component struct {
	srv     *Server
	serving atomic.Bool
}

var _ component.Component = (*Component)(nil)

func NewComponent(s *Server) *Component {
	return &Component{srv: s}
}

func (c *Component) Name() string { return componentName }

func (c *Component) Start(ctx context.Context) error {
	if err := c.srv.Start(ctx); err != nil {
		return err
	}
	c.serving.Store(true)
	return nil
}

// Stop is a no-op unless Start succeeded.
func (c *Component) Stop(ctx context.Context) error {
	if !c.serving.CompareAndSwap(true, false) {
		return nil
	}
	return c.srv.Stop(ctx)
}

// Health reports the listen address while serving.
func (c *Component) Health(context.Context) component.Health {
	if !c.serving.Load() {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not serving"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy, Message: c.srv.Addr()}
}
