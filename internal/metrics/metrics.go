// Package metrics holds Prometheus instruments that are used across the
// gateway.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DomainLookupTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_domain_lookup_total",
			Help: "Cumulative number of host-to-tenant resolution attempts.",
		})

	DomainLookupErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_domain_lookup_errors_total",
			Help: "Cumulative number of tenant lookups folded to not-found after a datastore error.",
		})

	RewriteTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_rewrite_total",
			Help: "Cumulative number of requests rewritten onto a tenant path prefix.",
		})

	RedirectTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_redirect_total",
			Help: "Cumulative number of gateway-issued redirects, by reason.",
		},
		[]string{"reason"}, // login, role_mismatch, superadmin
	)

	RoleDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_role_denied_total",
			Help: "Cumulative number of role-gate mismatches redirected to the caller's own area.",
		})
)

func init() {
	prometheus.MustRegister(
		DomainLookupTotal,
		DomainLookupErrorsTotal,
		RewriteTotal,
		RedirectTotal,
		RoleDeniedTotal,
	)
}
