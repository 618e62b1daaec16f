package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"insteon-alert/config"
	"insteon-alert/internal/application"
	"insteon-alert/internal/domain"
	"insteon-alert/internal/infra"
	"insteon-alert/internal/infra/insteon"
	"insteon-alert/internal/infra/lookup"
	"insteon-alert/internal/infra/mqtt"
	"insteon-alert/internal/infra/pushover"
	"insteon-alert/internal/metrics"
)

var sendFlags struct {
	address  string
	port     int
	username string
	password string
	device   string
	command  string
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a command to one or more devices",
	Example: `  insteon-alert send --device "56:78:9A" --command beep_three_times
  insteon-alert send -c config.yaml --device "Front Door, 11.22.33" --command off`,
	RunE: runSend,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the canonical device IDs for a device list",
	RunE:  runResolve,
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the supported commands",
	RunE:  runCommands,
}

func init() {
	f := sendCmd.Flags()
	f.StringVar(&sendFlags.address, "address", "", "hub IPv4 address (overrides hub.address)")
	f.IntVar(&sendFlags.port, "port", 0, "hub port (overrides hub.port)")
	f.StringVar(&sendFlags.username, "username", "", "hub username (overrides hub.username)")
	f.StringVar(&sendFlags.password, "password", "", "hub password (overrides hub.password)")
	f.StringVarP(&sendFlags.device, "device", "d", "", "comma-separated device IDs or lookup names")
	f.StringVar(&sendFlags.command, "command", "", "command name, see 'insteon-alert commands'")

	resolveCmd.Flags().StringVarP(&sendFlags.device, "device", "d", "", "comma-separated device IDs or lookup names")
}

func runSend(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log, cmd.ErrOrStderr())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("interrupted, stopping dispatch")
			cancel()
		case <-ctx.Done():
		}
	}()

	registry := metrics.NewRegistry()

	hub := insteon.NewClient(insteon.Options{
		Scheme:             cfg.Hub.Scheme,
		Timeout:            cfg.Hub.TimeoutDuration(),
		InsecureSkipVerify: cfg.Hub.InsecureSkipVerify,
		Breaker: insteon.BreakerOptions{
			Enabled:     cfg.Breaker.Enabled,
			MaxFailures: cfg.Breaker.MaxFailures,
			OpenTimeout: cfg.Breaker.OpenTimeoutDuration(),
		},
	}, logger)
	if cfg.Hub.InsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled for the hub")
	}

	runner := application.NewRunner(
		hub,
		newNormalizer(cfg, logger),
		createNotifier(cfg, logger),
		registry,
		logger,
		application.RunnerConfig{
			CallDelay:   cfg.Dispatch.CallDelayDuration(),
			DeviceDelay: cfg.Dispatch.DeviceDelayDuration(),
			Sleep:       infra.Sleep,
		},
	)

	_, runErr := runner.Run(ctx, cmd.OutOrStdout(), invocationFromFlags(cmd, cfg.Hub))

	if cfg.Metrics.Textfile != "" {
		if err := registry.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Error("writing metrics", "error", err, "path", cfg.Metrics.Textfile)
		}
	}

	return runErr
}

func runResolve(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log, cmd.ErrOrStderr())

	devices := sendFlags.device
	ids, err := newNormalizer(cfg, logger).NormalizeAll(&devices)
	if err != nil {
		return err
	}

	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}

func runCommands(cmd *cobra.Command, _ []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCMD1\tCMD2\tTIMES\tRESPONSE")
	for _, c := range domain.Commands() {
		fmt.Fprintf(w, "%s\t%02X\t%02X\t%d\t%v\n", c.Name, c.Cmd1, c.Cmd2, c.Times, c.ResponseExpected)
	}
	return w.Flush()
}

// invocationFromFlags merges the hub config with any flags given on the
// command line. The device list stays nil when --device was not passed.
func invocationFromFlags(cmd *cobra.Command, hub config.HubConfig) application.Invocation {
	inv := application.Invocation{
		Address:  hub.Address,
		Port:     hub.Port,
		Username: hub.Username,
		Password: hub.Password,
		Command:  sendFlags.command,
	}

	flags := cmd.Flags()
	if flags.Changed("address") {
		inv.Address = sendFlags.address
	}
	if flags.Changed("port") {
		inv.Port = sendFlags.port
	}
	if flags.Changed("username") {
		inv.Username = sendFlags.username
	}
	if flags.Changed("password") {
		inv.Password = sendFlags.password
	}
	if flags.Changed("device") {
		devices := sendFlags.device
		inv.Devices = &devices
	}

	return inv
}

func newNormalizer(cfg *config.Config, logger *slog.Logger) *application.Normalizer {
	return application.NewNormalizer(lookup.NewRegistry(cfg.Lookup.Paths, logger))
}

func createNotifier(cfg *config.Config, logger *slog.Logger) application.Notifier {
	var notifiers application.MultiNotifier

	if cfg.Pushover.Enabled {
		notifiers = append(notifiers, pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey))
	}
	if cfg.MQTT.Enabled {
		notifiers = append(notifiers, mqtt.NewPublisher(mqtt.Config{
			BrokerURL: cfg.MQTT.Broker,
			ClientID:  cfg.MQTT.ClientID,
			Username:  cfg.MQTT.Username,
			Password:  cfg.MQTT.Password,
			Topic:     cfg.MQTT.Topic,
			QoS:       cfg.MQTT.QoS,
			Timeout:   5 * time.Second,
		}))
	}

	if len(notifiers) == 0 {
		return &application.NoopNotifier{}
	}
	logger.Debug("notifiers enabled", "count", len(notifiers))
	return notifiers
}
