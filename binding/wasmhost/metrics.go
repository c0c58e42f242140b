package wasmhost

import (
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wippyai/rttr/errors"
)

type metrics struct {
	calls  *prometheus.CounterVec
	errors *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	calls, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rttr_wasmhost_calls_total",
		Help: "Total number of host function calls made by guests",
	}, []string{"export"}))
	if err != nil {
		return nil, err
	}
	failed, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rttr_wasmhost_call_errors_total",
		Help: "Total number of host function calls that trapped",
	}, []string{"export"}))
	if err != nil {
		return nil, err
	}
	return &metrics{calls: calls, errors: failed}, nil
}

// register adds c to reg. A collector already registered under the same
// name is reused so several hosts can share one registry.
func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if reg == nil {
		return c, nil
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if stderrors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindRegistration, err, "register metrics")
	}
	return c, nil
}
