package discovery

import (
	"fmt"
	"log"
	"strconv"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/config"

	"github.com/hashicorp/consul/api"
)

type ServiceRegistry struct {
	client *api.Client
	server config.ServerConfig
}

func NewServiceRegistry(cfg *config.Config) (*ServiceRegistry, error) {
	consulConfig := api.DefaultConfig()
	consulConfig.Address = cfg.Consul.ConsulAddress

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}

	return &ServiceRegistry{
		client: client,
		server: cfg.Server,
	}, nil
}

// Registration describes this instance and its /health check.
func Registration(server config.ServerConfig) (*api.AgentServiceRegistration, error) {
	port, err := strconv.Atoi(server.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid service port %q: %w", server.Port, err)
	}
	return &api.AgentServiceRegistration{
		ID:      server.ServiceID,
		Name:    server.ServiceName,
		Port:    port,
		Address: server.ServiceAddress,
		Check: &api.AgentServiceCheck{
			HTTP:     fmt.Sprintf("http://%s:%s/health", server.ServiceAddress, server.Port),
			Interval: "10s",
			Timeout:  "5s",
		},
		Tags: []string{"exam", "scoring", "catalog"},
	}, nil
}

func (sr *ServiceRegistry) Register() error {
	registration, err := Registration(sr.server)
	if err != nil {
		return err
	}
	if err := sr.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register service with Consul: %w", err)
	}

	log.Println("Successfully registered service with Consul")
	return nil
}

// Deregister removes the service from Consul
func (sr *ServiceRegistry) Deregister() error {
	return sr.client.Agent().ServiceDeregister(sr.server.ServiceID)
}
