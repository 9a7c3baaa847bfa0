// Package qlsettings holds the process-wide mutable state the kernel's
// collaborators read implicitly: a single evaluationDate, the iborCoupon
// "use at-par coupons" convention flag, and the enable-tracing switch that
// gates pkg/calibration, pkg/solvers1d, and pkg/pde structured-logging
// output.
//
// This is acknowledged process-wide mutable state, deliberately not
// localized to a context object; every test that mutates it must save and
// restore the prior value.
package qlsettings

import (
	"sync"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qldate"
)

// Settings is the process-global configuration singleton.
type Settings struct {
	mu                 sync.RWMutex
	evaluationDate     qldate.Date
	enableTracing      bool
	usingAtParCoupons  bool
}

var instance = &Settings{}

// Instance returns the process-wide Settings singleton.
func Instance() *Settings { return instance }

// EvaluationDate returns the current evaluation date.
func (s *Settings) EvaluationDate() qldate.Date {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.evaluationDate
}

// SetEvaluationDate updates the evaluation date and returns the previous
// value, so callers can restore it: `prev := Instance().SetEvaluationDate(d);
// defer Instance().SetEvaluationDate(prev)`.
func (s *Settings) SetEvaluationDate(d qldate.Date) qldate.Date {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.evaluationDate
	s.evaluationDate = d
	return prev
}

// EnableTracing reports whether structured tracing is currently enabled.
func (s *Settings) EnableTracing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enableTracing
}

// SetEnableTracing toggles structured tracing and returns the previous value.
func (s *Settings) SetEnableTracing(v bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.enableTracing
	s.enableTracing = v
	return prev
}

// UsingAtParCoupons reports the ibor-coupon convention flag.
func (s *Settings) UsingAtParCoupons() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usingAtParCoupons
}

// SetUsingAtParCoupons sets the ibor-coupon convention flag and returns the
// previous value.
func (s *Settings) SetUsingAtParCoupons(v bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.usingAtParCoupons
	s.usingAtParCoupons = v
	return prev
}
