package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/example/appointment-scheduler/internal/application"
	"github.com/example/appointment-scheduler/internal/config"
	httptransport "github.com/example/appointment-scheduler/internal/http"
	"github.com/example/appointment-scheduler/internal/ical"
	"github.com/example/appointment-scheduler/internal/persistence/sqlite"
	"github.com/example/appointment-scheduler/internal/scheduler"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	app := &cli.App{
		Name:  "scheduler",
		Usage: "participant appointment scheduling service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "path to an optional dotenv file",
				Value: ".env",
			},
		},
		Commands: []*cli.Command{
			serveCommand(logger),
			exportCommand(logger),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func serveCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c.String("env-file"))
			if err != nil {
				return err
			}

			deps, err := buildServices(c.Context, cfg, logger)
			if err != nil {
				return err
			}
			defer deps.close()

			grid, err := gridFromConfig(cfg)
			if err != nil {
				return err
			}

			router := httptransport.NewRouter(httptransport.RouterConfig{
				Appointments: httptransport.NewAppointmentHandler(deps.appointments, deps.participants, logger),
				Participants: httptransport.NewParticipantHandler(deps.participants, logger),
				Calendar:     httptransport.NewCalendarHandler(deps.appointments, deps.participants, grid, time.Now, logger),
				Middleware: []func(http.Handler) http.Handler{
					httptransport.RequestLogger(logger),
					httptransport.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger),
				},
			})

			return runServer(c.Context, cfg, router, logger)
		},
	}
}

func exportCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write the appointment collection as an iCalendar feed",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output",
				Usage: "destination file, defaults to stdout",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c.String("env-file"))
			if err != nil {
				return err
			}

			deps, err := buildServices(c.Context, cfg, logger)
			if err != nil {
				return err
			}
			defer deps.close()

			records, err := deps.appointments.ListAppointments(c.Context, application.ListAppointmentsParams{})
			if err != nil {
				return fmt.Errorf("list appointments: %w", err)
			}

			events := make([]ical.Event, 0, len(records))
			for _, record := range records {
				event := ical.Event{
					UID:         record.ID,
					Summary:     record.Title,
					Description: record.Description,
					Location:    record.Location,
					Start:       record.StartTime.At(record.Date),
					End:         record.EndTime.At(record.Date),
					Stamp:       record.UpdatedAt,
				}
				for _, id := range record.ParticipantIDs {
					participant := deps.participants.ResolveParticipant(c.Context, id)
					event.Attendees = append(event.Attendees, ical.Attendee{
						Name:  participant.Name,
						Email: participant.Email,
					})
				}
				events = append(events, event)
			}

			payload, err := ical.EncodeFeed(events)
			if err != nil {
				return err
			}

			if output := c.String("output"); output != "" {
				return os.WriteFile(output, payload, 0o644)
			}
			_, err = os.Stdout.Write(payload)
			return err
		},
	}
}

func loadConfig(envFile string) (config.Config, error) {
	// A missing dotenv file is fine; the environment wins either way.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config.Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

type serviceDeps struct {
	appointments *application.AppointmentService
	participants *application.ParticipantService
	close        func()
}

func buildServices(ctx context.Context, cfg config.Config, logger *slog.Logger) (serviceDeps, error) {
	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		return serviceDeps{}, fmt.Errorf("open storage: %w", err)
	}
	if err := pool.Migrate(ctx); err != nil {
		_ = pool.Close()
		return serviceDeps{}, fmt.Errorf("apply migrations: %w", err)
	}

	idGenerator := uuid.NewString
	now := time.Now

	return serviceDeps{
		appointments: application.NewAppointmentServiceWithLogger(sqlite.NewAppointmentRepository(pool), idGenerator, now, logger),
		participants: application.NewParticipantServiceWithLogger(sqlite.NewParticipantRepository(pool), idGenerator, now, logger),
		close: func() {
			if err := pool.Close(); err != nil {
				logger.Error("failed to close storage", "error", err)
			}
		},
	}, nil
}

func gridFromConfig(cfg config.Config) (scheduler.TimeGrid, error) {
	grid, err := scheduler.NewTimeGrid(cfg.GridStartHour, cfg.GridEndHour, cfg.GridSlotMinutes)
	if err != nil {
		return scheduler.TimeGrid{}, fmt.Errorf("build time grid: %w", err)
	}
	return grid, nil
}

func runServer(ctx context.Context, cfg config.Config, handler http.Handler, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("scheduler API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
