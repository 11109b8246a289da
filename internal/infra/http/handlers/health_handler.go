package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Pinger is satisfied by every usecase.KeyValueStore.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BrokerState is satisfied by *queue.RabbitMQ.
type BrokerState interface {
	IsHealthy() bool
}

type HealthHandler struct {
	Storage   Pinger
	Driver    string
	Broker    BrokerState
	Version   string
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

// NewHealthHandler takes a nil broker when RabbitMQ is not configured.
func NewHealthHandler(storage Pinger, driver string, broker BrokerState, version string) *HealthHandler {
	return &HealthHandler{
		Storage:   storage,
		Driver:    driver,
		Broker:    broker,
		Version:   version,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)

	// Check storage
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.Storage.Ping(ctx); err != nil {
		deps["storage"] = fmt.Sprintf("unhealthy: %v", err)
	} else {
		deps["storage"] = "healthy"
	}
	deps["storage_driver"] = h.Driver

	// Check RabbitMQ
	if h.Broker != nil {
		if h.Broker.IsHealthy() {
			deps["rabbitmq"] = "healthy"
		} else {
			deps["rabbitmq"] = "unhealthy: connection closed"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	status := "healthy"
	for k, v := range deps {
		if k != "storage_driver" && v != "healthy" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	response := HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "degraded" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}
