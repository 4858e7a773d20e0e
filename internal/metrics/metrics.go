package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/saurav0523/liaplusAI-Backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	SignupsTotal         *telemetry.Counter
	LoginsTotal          *telemetry.Counter
	VerificationsTotal   *telemetry.Counter
	GuardRejectionsTotal *telemetry.Counter
	EmailDispatchFailed  *telemetry.Counter

	PasswordHashDuration *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init registers all auth instruments
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	SignupsTotal, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "auth_signups_total",
		Description: "Signup attempts by outcome",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	LoginsTotal, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "auth_logins_total",
		Description: "Login attempts by outcome",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	VerificationsTotal, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "auth_verifications_total",
		Description: "Email verification attempts by outcome",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	GuardRejectionsTotal, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "auth_guard_rejections_total",
		Description: "Requests rejected by the authorization chain",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	EmailDispatchFailed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "auth_email_dispatch_failures_total",
		Description: "Verification emails that could not be handed off",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PasswordHashDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "auth_password_hash_duration_seconds",
		Description: "Time spent hashing or verifying passwords",
		Unit:        "s",
	}, []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1})
	return err
}

// RecordSignup counts a signup attempt. reason is the error code on failure.
func RecordSignup(ctx context.Context, outcome, reason string) {
	SignupsTotal.Inc(ctx, attribute.String("outcome", outcome), attribute.String("reason", reason))
}

// RecordLogin counts a login attempt
func RecordLogin(ctx context.Context, outcome, reason string) {
	LoginsTotal.Inc(ctx, attribute.String("outcome", outcome), attribute.String("reason", reason))
}

// RecordVerification counts a verification attempt
func RecordVerification(ctx context.Context, outcome string) {
	VerificationsTotal.Inc(ctx, attribute.String("outcome", outcome))
}

// RecordGuardRejection counts a request stopped by a guard
func RecordGuardRejection(ctx context.Context, reason string) {
	GuardRejectionsTotal.Inc(ctx, attribute.String("reason", reason))
}

// RecordEmailDispatchFailure counts a failed verification email handoff
func RecordEmailDispatchFailure(ctx context.Context) {
	EmailDispatchFailed.Inc(ctx)
}

// RecordPasswordHash records how long a hash or verify took
func RecordPasswordHash(ctx context.Context, op string, d time.Duration) {
	PasswordHashDuration.Record(ctx, d.Seconds(), attribute.String("op", op))
}
