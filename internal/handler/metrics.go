package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenario_admin_login_attempts_total",
		Help: "Login attempts by result (success, failure, rate_limited).",
	}, []string{"result"})
	sessionExpiriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenario_admin_session_expiries_total",
		Help: "Sessions ended because the backend rejected the token.",
	})
	scenarioSavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenario_admin_scenario_saves_total",
		Help: "Successful scenario saves by mode (create, update).",
	}, []string{"mode"})
	scenarioDeletesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenario_admin_scenario_deletes_total",
		Help: "Total number of successful scenario deletions.",
	})
	scenarioExportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenario_admin_scenario_exports_total",
		Help: "Total number of CSV exports served.",
	})
	videoStreamsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenario_admin_video_streams_total",
		Help: "Videos proxied from the backend by kind (preview, download).",
	}, []string{"kind"})
	userAdminActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenario_admin_user_actions_total",
		Help: "Successful user management actions (create, delete, toggle_admin).",
	}, []string{"action"})
)
