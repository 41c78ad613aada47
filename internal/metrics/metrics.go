// Package metrics holds Prometheus instruments used across the site.  All
// collectors are registered with the global registry, so importing this
// package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LeadsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Cumulative number of lead registrations persisted.",
		})

	LeadsDuplicateTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_duplicate_total",
			Help: "Cumulative number of registrations rejected as duplicate email.",
		})

	EmailSendTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_send_total",
			Help: "Email send attempts by kind and outcome.",
		},
		[]string{"kind", "outcome"}, // kind: welcome|admin|contact|test, outcome: ok|error
	)

	ContactMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_messages_total",
			Help: "Cumulative number of contact-form submissions delivered.",
		})

	StoreConnectRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "store_connect_retries_total",
			Help: "Cumulative number of store connection retries during boot.",
		})
)

func init() {
	prometheus.MustRegister(
		LeadsCreatedTotal,
		LeadsDuplicateTotal,
		EmailSendTotal,
		ContactMessagesTotal,
		StoreConnectRetriesTotal,
	)
}
