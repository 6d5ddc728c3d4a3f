// Package metrics 暴露 Prometheus 指标。
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// LoginSuccessTotal 登录成功次数。
	LoginSuccessTotal prometheus.Counter
	// LoginFailureTotal 登录失败次数（凭证或令牌无效）。
	LoginFailureTotal prometheus.Counter
	// UserRegisteredTotal 注册成功的用户数。
	UserRegisteredTotal prometheus.Counter
	// TransitionRejectedTotal 被状态机拒绝的任务状态变更次数。
	TransitionRejectedTotal prometheus.Counter
	// AdminPromotedTotal 从清单提升为管理员的账号数。
	AdminPromotedTotal prometheus.Counter

	initOnce sync.Once
)

// InitMetrics 注册所有指标，可重复调用。
func InitMetrics() {
	initOnce.Do(func() {
		LoginSuccessTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhub_login_success_total",
			Help: "Number of successful logins.",
		})
		LoginFailureTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhub_login_failure_total",
			Help: "Number of failed login attempts.",
		})
		UserRegisteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhub_user_registered_total",
			Help: "Number of registered users.",
		})
		TransitionRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhub_task_transition_rejected_total",
			Help: "Number of task status transitions rejected by the state machine.",
		})
		AdminPromotedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhub_admin_promoted_total",
			Help: "Number of accounts promoted to admin from the manifest.",
		})

		prometheus.MustRegister(
			LoginSuccessTotal,
			LoginFailureTotal,
			UserRegisteredTotal,
			TransitionRejectedTotal,
			AdminPromotedTotal,
		)
	})
}
