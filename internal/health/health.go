// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package health exposes grpc.health.v1 for the gateway. The serving status
// follows a periodic database ping.
package health

import (
	"context"
	"net"
	"time"

	"github.com/pterm/pterm"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service is the name reported for the gateway in health checks. The empty
// service name reports the same status.
const Service = "dbgate.Gateway"

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Checker tracks database reachability.
type Checker struct {
	db       Pinger
	hs       *health.Server
	interval time.Duration
	logger   *pterm.Logger
}

// NewChecker returns a Checker that pings db every interval. Status starts
// as NOT_SERVING until the first ping succeeds.
func NewChecker(db Pinger, interval time.Duration, logger *pterm.Logger) *Checker {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(Service, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Checker{db: db, hs: hs, interval: interval, logger: logger}
}

// Server returns the grpc health implementation.
func (c *Checker) Server() *health.Server { return c.hs }

// Probe pings once and updates the serving status. It returns the ping error.
func (c *Checker) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	err := c.db.PingContext(ctx)
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	c.hs.SetServingStatus("", status)
	c.hs.SetServingStatus(Service, status)
	return err
}

// Run probes until ctx is done, then marks everything NOT_SERVING.
func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	healthy := true
	for {
		err := c.Probe(ctx)
		if err != nil && healthy {
			c.logger.Warn("database ping failed", c.logger.Args("error", err.Error()))
		} else if err == nil && !healthy {
			c.logger.Info("database reachable again")
		}
		healthy = err == nil

		select {
		case <-ctx.Done():
			c.hs.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

// Serve runs a gRPC server with the health service on addr until ctx is done.
func (c *Checker) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, c.hs)

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	c.logger.Info("health server listening", c.logger.Args("addr", lis.Addr().String()))
	return srv.Serve(lis)
}
