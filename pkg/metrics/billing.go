package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const billingSubsystem = "billing"

var webhookEvents = &Metric{
	ID:          "webhookEvents",
	Name:        "webhook_events_total",
	Description: "Gateway webhook deliveries partitioned by event type and outcome.",
	Type:        CounterVec,
	Args:        []string{"event", "outcome"},
}

var ledgerWrites = &Metric{
	ID:          "ledgerWrites",
	Name:        "ledger_writes_total",
	Description: "Payment ledger insert attempts partitioned by source and result (inserted, duplicate, skipped).",
	Type:        CounterVec,
	Args:        []string{"source", "result"},
}

var transitions = &Metric{
	ID:          "transitions",
	Name:        "subscription_transitions_total",
	Description: "Applied subscription state transitions.",
	Type:        CounterVec,
	Args:        []string{"from", "to", "reason"},
}

var gatewayCallDur = &Metric{
	ID:          "gatewayCallDur",
	Name:        "gateway_call_dur_ms",
	Description: "Payment gateway call latency in milliseconds.",
	Type:        HistogramVec,
	Args:        []string{"op", "ok"},
}

var (
	billingOnce sync.Once

	webhookEventsVec  *prometheus.CounterVec
	ledgerWritesVec   *prometheus.CounterVec
	transitionsVec    *prometheus.CounterVec
	gatewayCallDurVec *prometheus.HistogramVec
)

// registerBilling creates and registers the billing collectors once per process.
// Registration errors (e.g. duplicate registration in tests) leave the collectors usable.
func registerBilling() {
	billingOnce.Do(func() {
		webhookEventsVec = NewMetric(webhookEvents, billingSubsystem).(*prometheus.CounterVec)
		ledgerWritesVec = NewMetric(ledgerWrites, billingSubsystem).(*prometheus.CounterVec)
		transitionsVec = NewMetric(transitions, billingSubsystem).(*prometheus.CounterVec)
		gatewayCallDurVec = NewMetric(gatewayCallDur, billingSubsystem).(*prometheus.HistogramVec)
		for _, c := range []prometheus.Collector{webhookEventsVec, ledgerWritesVec, transitionsVec, gatewayCallDurVec} {
			_ = prometheus.Register(c)
		}
	})
}

func ObserveWebhookEvent(event, outcome string) {
	registerBilling()
	webhookEventsVec.WithLabelValues(event, outcome).Inc()
}

func ObserveLedgerWrite(source, result string) {
	registerBilling()
	ledgerWritesVec.WithLabelValues(source, result).Inc()
}

func ObserveTransition(from, to, reason string) {
	registerBilling()
	transitionsVec.WithLabelValues(from, to, reason).Inc()
}

// ObserveGatewayCall records the latency of a gateway call started at start.
func ObserveGatewayCall(op string, start time.Time, err error) {
	registerBilling()
	gatewayCallDurVec.WithLabelValues(op, strconv.FormatBool(err == nil)).Observe(MillisecondsSince(start))
}
