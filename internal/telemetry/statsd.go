// Package telemetry reports system phase timings over statsd. Until Init is
// called every metric goes to a no-op client.
package telemetry

import (
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var client ddstatsd.ClientInterface = &ddstatsd.NoOpClient{}

func Client() ddstatsd.ClientInterface {
	return client
}

// EmitPhaseStat records how long one system spent in one phase.
func EmitPhaseStat(start time.Time, system, phase string) {
	err := Client().Timing("system.phase", time.Since(start), []string{"system:" + system, "phase:" + phase}, 1)
	if err != nil {
		zap.L().Warn("failed to emit phase stat", zap.Error(err))
	}
}

// EmitEntityCount gauges the live population of a context.
func EmitEntityCount(context string, n int) {
	if err := Client().Gauge("context.entities", float64(n), []string{"context:" + context}, 1); err != nil {
		zap.L().Warn("failed to emit entity count", zap.Error(err))
	}
}

// Init replaces the no-op client with one sending to address.
func Init(address, namespace string, tags []string) error {
	if address == "" {
		return eris.New("address must not be empty")
	}
	if namespace == "" {
		namespace = "ecsrt"
	}
	opts := []ddstatsd.Option{
		ddstatsd.WithNamespace(namespace),
	}
	if len(tags) > 0 {
		opts = append(opts, ddstatsd.WithTags(tags))
	}

	newClient, err := ddstatsd.New(address, opts...)
	if err != nil {
		return eris.Wrapf(err, "statsd client for %s", address)
	}
	client = newClient
	return nil
}

// Close flushes and closes the active client and restores the no-op client.
func Close() error {
	c := client
	client = &ddstatsd.NoOpClient{}
	return c.Close()
}
