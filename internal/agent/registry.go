package agent

import (
	"fmt"
	"sync"
)

// AgentFactory is a constructor that creates an Agent from shared deps.
type AgentFactory func(Deps) Agent

// Registry maps agent roles to their factory constructors.
type Registry struct {
	mu        sync.RWMutex
	factories map[Role]AgentFactory
}

// NewRegistry creates a Registry pre-registered with all specialist agents.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[Role]AgentFactory),
	}
	r.factories[RoleUnderstanding] = NewUnderstanding
	r.factories[RolePlanning] = NewPlanning
	r.factories[RoleUIDesigner] = NewUIDesigner
	r.factories[RoleUXWriter] = NewUXWriter
	r.factories[RoleIntegrator] = NewIntegrator
	r.factories[RoleHTMLDeveloper] = NewHTMLDeveloper
	r.factories[RoleCSSDeveloper] = NewCSSDeveloper
	r.factories[RoleJSDeveloper] = NewJSDeveloper
	return r
}

// Register replaces the factory for role.
func (r *Registry) Register(role Role, factory AgentFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[role] = factory
}

// Build creates a single agent by role using the registered factory.
func (r *Registry) Build(role Role, deps Deps) (Agent, error) {
	r.mu.RLock()
	factory, ok := r.factories[role]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no factory registered for role %q", role)
	}
	ag := factory(deps)
	if ag.Role() != role {
		return nil, fmt.Errorf("factory for role %q built agent with role %q", role, ag.Role())
	}
	return ag, nil
}

// BuildAll creates every pipeline agent, keyed by role.
func (r *Registry) BuildAll(deps Deps) (map[Role]Agent, error) {
	agents := make(map[Role]Agent, len(Roles()))
	for _, role := range Roles() {
		ag, err := r.Build(role, deps)
		if err != nil {
			return nil, err
		}
		agents[role] = ag
	}
	return agents, nil
}
