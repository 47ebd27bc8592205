package controllers

import (
	"github.com/jhonlemus05/FastBite-Delivery/config"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/ctx"
)

// Health is the liveness check. It does not call the backend.
func Health(c *ctx.Context) {
	c.Success(map[string]string{
		"status": "ok",
		"app":    config.AppName(),
		"env":    config.AppEnv(),
	})
}
