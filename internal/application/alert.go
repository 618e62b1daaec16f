package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"insteon-alert/internal/domain"
	"insteon-alert/internal/infra"
)

const (
	defaultCallDelay = time.Second

	lineSucceeded = "Call to Insteon succeeded"
	lineFailed    = "Call to Insteon failed"
)

type RunnerConfig struct {
	// CallDelay separates repeated calls to the same device.
	CallDelay time.Duration
	// DeviceDelay separates devices. Defaults to twice CallDelay.
	DeviceDelay time.Duration
	// Sleep defaults to infra.Sleep.
	Sleep Sleeper
}

// Runner validates alert invocations and dispatches them to the hub, one
// device at a time.
type Runner struct {
	hub        HubCaller
	normalizer *Normalizer
	notifier   Notifier
	metrics    MetricsRecorder
	logger     *slog.Logger

	callDelay   time.Duration
	deviceDelay time.Duration
	sleep       Sleeper
	newRunID    func() string
	now         func() time.Time
}

func NewRunner(
	hub HubCaller,
	normalizer *Normalizer,
	notifier Notifier,
	metrics MetricsRecorder,
	logger *slog.Logger,
	cfg RunnerConfig,
) *Runner {
	if cfg.CallDelay <= 0 {
		cfg.CallDelay = defaultCallDelay
	}
	if cfg.DeviceDelay <= 0 {
		cfg.DeviceDelay = 2 * cfg.CallDelay
	}
	if cfg.Sleep == nil {
		cfg.Sleep = infra.Sleep
	}
	if notifier == nil {
		notifier = &NoopNotifier{}
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	return &Runner{
		hub:         hub,
		normalizer:  normalizer,
		notifier:    notifier,
		metrics:     metrics,
		logger:      logger,
		callDelay:   cfg.CallDelay,
		deviceDelay: cfg.DeviceDelay,
		sleep:       cfg.Sleep,
		newRunID:    uuid.NewString,
		now:         time.Now,
	}
}

// Validate checks every field of inv and reports all problems at once as
// ValidationErrors.
func (r *Runner) Validate(inv Invocation) (Alert, error) {
	var (
		alert Alert
		errs  ValidationErrors
	)

	address, ferr := validateAddress(inv.Address)
	if ferr != nil {
		errs = append(errs, *ferr)
	}
	port, ferr := validatePort(inv.Port)
	if ferr != nil {
		errs = append(errs, *ferr)
	}
	if ferr := validateRequired("username", inv.Username); ferr != nil {
		errs = append(errs, *ferr)
	}
	if ferr := validateRequired("password", inv.Password); ferr != nil {
		errs = append(errs, *ferr)
	}

	if inv.Devices == nil || strings.TrimSpace(*inv.Devices) == "" {
		errs = append(errs, FieldError{Field: "device", Message: "is required"})
	} else {
		devices, err := r.normalizer.NormalizeAll(inv.Devices)
		var deviceErrs ValidationErrors
		switch {
		case errors.As(err, &deviceErrs):
			errs = append(errs, deviceErrs...)
		case err != nil:
			errs = append(errs, FieldError{Field: "device", Value: *inv.Devices, Message: err.Error()})
		default:
			alert.Devices = devices
		}
	}

	command, ferr := validateCommand(inv.Command)
	if ferr != nil {
		errs = append(errs, *ferr)
	}

	if len(errs) > 0 {
		return Alert{}, errs
	}

	alert.Endpoint = domain.HubEndpoint{
		Address:  address,
		Port:     port,
		Username: inv.Username,
		Password: inv.Password,
	}
	alert.Command = command

	return alert, nil
}

// Run validates inv and dispatches it. Validation failures are returned
// before any call is made; hub failures are only reported in the summary
// and the output lines. The returned error is non-nil only for invalid
// input or a canceled ctx.
func (r *Runner) Run(ctx context.Context, w io.Writer, inv Invocation) (domain.RunSummary, error) {
	alert, err := r.Validate(inv)
	if err != nil {
		r.metrics.IncValidationFailures()
		r.logger.Error("alert rejected", "error", err)
		return domain.RunSummary{}, err
	}

	return r.Dispatch(ctx, w, alert)
}

// Dispatch sends alert.Command to every device in order, pausing
// DeviceDelay between devices.
func (r *Runner) Dispatch(ctx context.Context, w io.Writer, alert Alert) (domain.RunSummary, error) {
	summary := domain.RunSummary{
		RunID:   r.newRunID(),
		Command: alert.Command.Name,
		Devices: alert.Devices,
		Started: r.now(),
	}
	logger := r.logger.With("run_id", summary.RunID)

	logger.Info("dispatching alert",
		"command", alert.Command.String(),
		"hub", alert.Endpoint.HostPort(),
		"devices", len(alert.Devices),
	)

	var runErr error
	for i, device := range alert.Devices {
		if i > 0 {
			if err := r.sleep(ctx, r.deviceDelay); err != nil {
				runErr = err
				break
			}
		}

		results, err := r.callRepeatedly(ctx, w, logger, alert.Endpoint, device, alert.Command)
		for _, res := range results {
			summary.Add(res)
		}
		r.metrics.IncDevicesDispatched()

		if err != nil {
			runErr = err
			break
		}
	}

	summary.Duration = r.now().Sub(summary.Started)
	r.metrics.SetLastRun(summary.Started.Add(summary.Duration))

	if runErr != nil {
		logger.Warn("alert run interrupted", "error", runErr, "attempts", summary.Attempts)
	} else {
		logger.Info("alert run complete",
			"attempts", summary.Attempts,
			"succeeded", summary.Succeeded,
			"failed", summary.Failed,
		)
	}

	if err := r.notifier.Notify(context.WithoutCancel(ctx), summary); err != nil {
		logger.Error("notifying run summary", "error", err)
	}

	return summary, runErr
}

// CallRepeatedly sends spec to device spec.Times times (at least once),
// writing one result line per call to w and pausing CallDelay between calls.
func (r *Runner) CallRepeatedly(
	ctx context.Context,
	w io.Writer,
	endpoint domain.HubEndpoint,
	device domain.DeviceID,
	spec domain.CommandSpec,
) ([]domain.DispatchResult, error) {
	return r.callRepeatedly(ctx, w, r.logger, endpoint, device, spec)
}

func (r *Runner) callRepeatedly(
	ctx context.Context,
	w io.Writer,
	logger *slog.Logger,
	endpoint domain.HubEndpoint,
	device domain.DeviceID,
	spec domain.CommandSpec,
) ([]domain.DispatchResult, error) {
	times := spec.Times
	if times < 1 {
		times = 1
	}

	results := make([]domain.DispatchResult, 0, times)
	for attempt := uint(1); attempt <= times; attempt++ {
		start := r.now()
		status, err := r.hub.Call(ctx, endpoint, device, spec.Cmd1, spec.Cmd2)
		r.metrics.ObserveCall(err == nil, r.now().Sub(start))

		result := domain.DispatchResult{
			Device:     device,
			Attempt:    attempt,
			Success:    err == nil,
			HTTPStatus: status,
			Err:        err,
		}
		results = append(results, result)

		line := lineSucceeded
		if !result.Success {
			line = lineFailed
			logger.Debug("call failed", "device", device, "attempt", attempt, "status", status, "error", err)
		}
		if _, werr := fmt.Fprintln(w, line); werr != nil {
			logger.Warn("writing call result", "error", werr)
		}

		if err := ctx.Err(); err != nil {
			return results, err
		}
		if attempt < times {
			if err := r.sleep(ctx, r.callDelay); err != nil {
				return results, err
			}
		}
	}

	return results, nil
}
