package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markusressel/twiddle/internal/api"
	"github.com/markusressel/twiddle/internal/configuration"
	"github.com/markusressel/twiddle/internal/persistence"
	"github.com/markusressel/twiddle/internal/statistics"
	"github.com/markusressel/twiddle/internal/tuning"
	"github.com/markusressel/twiddle/internal/ui"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RunDaemon() {
	pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	if err := pers.Init(); err != nil {
		ui.Fatal("Unable to initialize persistence at %s: %v", configuration.CurrentConfig.DbPath, err)
	}

	sessions, err := InitializeObjects(configuration.CurrentConfig.Controllers)
	if err != nil {
		ui.Fatal("%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	var g run.Group
	{
		enabled := configuration.CurrentConfig.Profiling.Enabled
		if enabled {
			// === pprof
			g.Add(func() error {
				profiling := configuration.CurrentConfig.Profiling
				addr := fmt.Sprintf("%s:%d", profiling.Host, profiling.Port)
				server := &http.Server{Addr: addr, Handler: http.DefaultServeMux}
				ui.Info("Starting profiling webserver at %s...", addr)
				return runHttpServer(ctx, server, "profiling")
			}, func(err error) {
				if err != nil {
					ui.Warning("Error stopping profiling webserver: %v", err)
				} else {
					ui.Info("Profiling webserver stopped.")
				}
			})
		}
	}
	{
		enabled := configuration.CurrentConfig.Statistics.Enabled
		if enabled {
			// === Prometheus Exporter
			g.Add(func() error {
				port := configuration.CurrentConfig.Statistics.Port
				if port <= 0 || port >= 65535 {
					port = 9000
				}
				endpoint := "/metrics"
				addr := fmt.Sprintf(":%d", port)
				mux := http.NewServeMux()
				mux.Handle(endpoint, promhttp.Handler())
				server := &http.Server{Addr: addr, Handler: mux}
				return runHttpServer(ctx, server, "statistics")
			}, func(err error) {
				if err != nil {
					ui.Warning("Error stopping statistics server: %v", err)
				} else {
					ui.Info("Statistics server stopped.")
				}
			})
		}
	}
	{
		enabled := configuration.CurrentConfig.Api.Enabled
		if enabled {
			// === REST api
			rest := api.CreateRestService(pers)
			g.Add(func() error {
				apiConfig := configuration.CurrentConfig.Api
				addr := fmt.Sprintf("%s:%d", apiConfig.Host, apiConfig.Port)
				ui.Info("Starting REST api at %s...", addr)
				go func() {
					<-ctx.Done()
					timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer timeoutCancel()
					_ = rest.Shutdown(timeoutCtx)
				}()
				if err := rest.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			}, func(err error) {
				if err != nil {
					ui.Warning("Error stopping REST api: %v", err)
				} else {
					ui.Info("REST api stopped.")
				}
			})
		}
	}
	{
		// === tuning sessions
		for _, session := range sessions {
			s := session

			g.Add(func() error {
				err := RunSession(ctx, s, pers)
				if err != nil {
					ui.ErrorAndNotify("Tuning Error", "Controller %s: %v", s.GetId(), err)
					return err
				}
				// keep the daemon alive, so results can still be inspected
				<-ctx.Done()
				return nil
			}, func(err error) {
				if err != nil {
					ui.Warning("Something went wrong: %v", err)
				}
			})
		}
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		g.Add(func() error {
			select {
			case <-sig:
				ui.Info("Received SIGTERM signal, exiting...")
			case <-ctx.Done():
			}
			return nil
		}, func(err error) {
			signal.Stop(sig)
			cancel()
		})
	}

	if err := g.Run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	} else {
		ui.Info("Done.")
		os.Exit(0)
	}
}

// InitializeObjects creates a tuning session for each of the given controller configurations,
// registers it and its statistics collector
func InitializeObjects(configs []configuration.ControllerConfig) ([]tuning.Session, error) {
	var sessions []tuning.Session
	for _, config := range configs {
		session, err := tuning.NewSessionFromConfig(config)
		if err != nil {
			return nil, fmt.Errorf("unable to process controller configuration %s: %w", config.ID, err)
		}
		tuning.SessionMap.Set(config.ID, session)
		sessions = append(sessions, session)
	}

	if len(sessions) == 0 {
		return nil, errors.New("no valid controller configurations")
	}

	collector := statistics.NewControllerCollector(func() []tuning.Session {
		var result []tuning.Session
		for _, session := range tuning.SessionMap.Items() {
			result = append(result, session)
		}
		return result
	})
	statistics.Register(collector)

	return sessions, nil
}

// RunSession runs the given session to completion and saves its report
func RunSession(ctx context.Context, session tuning.Session, pers persistence.Persistence) error {
	runErr := session.Run(ctx)

	report := session.Report()
	if report.Iterations > 0 && pers != nil {
		if err := pers.SaveReport(report); err != nil {
			ui.Warning("Unable to save report of controller %s: %v", session.GetId(), err)
		}
	}
	if runErr != nil {
		return runErr
	}

	if report.Converged() {
		ui.InfoAndNotify("Tuning finished", "Controller %s converged: %s", session.GetId(), report.Gains)
	}
	return nil
}

func runHttpServer(ctx context.Context, server *http.Server, name string) error {
	go func() {
		<-ctx.Done()
		ui.Info("Stopping %s server...", name)
		timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		_ = server.Shutdown(timeoutCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		ui.Error("Cannot start %s server (%s)", name, err.Error())
		return err
	}
	return nil
}
