// @title PlanIt reminders API
// @description API for the PlanIt reminder scheduling core
// @BasePath /api/v1
// @schemes http
package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/planit/planit/internal/api"
	"github.com/planit/planit/internal/notification"
	"github.com/planit/planit/internal/repository"
	"github.com/planit/planit/internal/scheduler"
	"github.com/planit/planit/internal/service"
	"github.com/planit/planit/pkg/cleanup"
	"github.com/planit/planit/pkg/config"
)

func init() {
	service.InitValidator()
}

func main() {
	cfg := config.New()
	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	remindersRepo := repository.NewRemindersRepo(&dbCfg)
	activitiesRepo := repository.NewActivitiesRepo(&dbCfg)
	occurrencesRepo := repository.NewOccurrencesRepo(&dbCfg)

	wake := scheduler.NewTimerWakeUp(cfg.GetBool("EXACT_ALARMS_ENABLED"))
	cleanup.Register(&cleanup.Job{
		Name: "stopping wake-up timers",
		F:    wake.Close,
	})
	presenter := notification.NewLogPresenter(cfg.GetBool("NOTIFICATIONS_ENABLED"))
	sched := scheduler.New(wake, presenter, remindersRepo)
	wake.Bind(func(p scheduler.FirePayload) {
		if err := sched.Fire(context.Background(), p); err != nil {
			slog.Error("handling fired wake-up error", slog.String("error", err.Error()))
		}
	})

	bus := service.NewChangeBus()
	remindersService := service.NewRemindersService(remindersRepo, activitiesRepo, sched, bus)
	queryService := service.NewQueryService(remindersRepo, occurrencesRepo, bus)

	// Restore wake-ups lost with the previous process.
	if err := sched.RearmAll(context.Background()); err != nil {
		slog.Error("re-arming reminders on startup error", slog.String("error", err.Error()))
	}

	serv := api.New(&api.ServicesList{
		RemindersService: remindersService,
		QueryService:     queryService,
	})
	err := serv.Run(cfg.GetString("API_ADDRESS"))
	if err != nil {
		log.Println("Server error: " + err.Error())
	}
	cleanup.CleanUp()
}
