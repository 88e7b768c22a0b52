package metrics

import (
	"time"

	"github.com/fleetkeep/maintguard/internal/db"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Collector struct {
	alertsCreated    *prometheus.CounterVec
	alertsResolved   *prometheus.CounterVec
	alertsDismissed  *prometheus.CounterVec
	alertsAutoClosed *prometheus.CounterVec
	activeAlerts     *prometheus.GaugeVec
	resolutionTime   *prometheus.HistogramVec

	scanDuration        *prometheus.HistogramVec
	componentsEvaluated *prometheus.CounterVec
	componentFailures   *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		alertsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "maintguard_alerts_created_total",
			Help: "Maintenance alerts raised, by severity and component criticality",
		}, []string{"tenant_id", "severity", "criticality"}),

		alertsResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "maintguard_alerts_resolved_total",
			Help: "Alerts automatically resolved after the trigger cleared",
		}, []string{"tenant_id"}),

		alertsDismissed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "maintguard_alerts_dismissed_total",
			Help: "Alerts dismissed by operators",
		}, []string{"tenant_id"}),

		alertsAutoClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "maintguard_alerts_auto_closed_total",
			Help: "Stale alerts closed without operator action",
		}, []string{"tenant_id"}),

		activeAlerts: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "maintguard_active_alerts",
			Help: "Currently ACTIVE alerts by severity",
		}, []string{"tenant_id", "severity"}),

		resolutionTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "maintguard_alert_resolution_hours",
			Help:    "Hours between alert creation and automatic resolution",
			Buckets: []float64{1, 6, 24, 72, 168, 336, 720},
		}, []string{"tenant_id"}),

		scanDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "maintguard_scan_duration_seconds",
			Help:    "Duration of a full per-tenant evaluation pass",
			Buckets: prometheus.DefBuckets,
		}, []string{"tenant_id"}),

		componentsEvaluated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "maintguard_components_evaluated_total",
			Help: "Components evaluated across scan passes",
		}, []string{"tenant_id"}),

		componentFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "maintguard_component_failures_total",
			Help: "Per-component evaluation failures that were skipped over",
		}, []string{"tenant_id"}),
	}
}

func (c *Collector) RecordAlertCreated(tenantID string, severity db.Severity, criticality db.Criticality) {
	c.alertsCreated.WithLabelValues(tenantID, string(severity), string(criticality)).Inc()
}

func (c *Collector) RecordAlertResolved(tenantID string, openFor time.Duration) {
	c.alertsResolved.WithLabelValues(tenantID).Inc()
	c.resolutionTime.WithLabelValues(tenantID).Observe(openFor.Hours())
}

func (c *Collector) RecordAlertDismissed(tenantID string) {
	c.alertsDismissed.WithLabelValues(tenantID).Inc()
}

func (c *Collector) RecordAlertsAutoClosed(tenantID string, count int64) {
	c.alertsAutoClosed.WithLabelValues(tenantID).Add(float64(count))
}

func (c *Collector) RecordScan(tenantID string, duration time.Duration, evaluated, failed int) {
	c.scanDuration.WithLabelValues(tenantID).Observe(duration.Seconds())
	c.componentsEvaluated.WithLabelValues(tenantID).Add(float64(evaluated))
	c.componentFailures.WithLabelValues(tenantID).Add(float64(failed))
}

func (c *Collector) SetActiveAlerts(tenantID string, summary *db.AlertListSummary) {
	c.activeAlerts.WithLabelValues(tenantID, string(db.SeverityCritical)).Set(float64(summary.Critical))
	c.activeAlerts.WithLabelValues(tenantID, string(db.SeverityWarning)).Set(float64(summary.Warning))
	c.activeAlerts.WithLabelValues(tenantID, string(db.SeverityInfo)).Set(float64(summary.Info))
}
