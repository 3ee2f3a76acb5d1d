package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"taskbot/internal/bot"
	"taskbot/internal/config"
	"taskbot/internal/conversation"
	"taskbot/internal/service"
)

const digestTimeout = 30 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the daily scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	store, closeDB, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	clock := service.SystemClock{Location: loc}
	taskSvc := service.NewTaskService(store, clock)
	categorySvc := service.NewCategoryService(store)
	recurrenceSvc := service.NewRecurrenceService(store, clock)

	telegramBot, err := bot.New(cfg.TelegramToken, bot.Deps{
		Users:         store.Users,
		Tasks:         taskSvc,
		Categories:    categorySvc,
		Reminders:     service.NewReminderService(taskSvc),
		Conversations: conversation.NewEngine(taskSvc, categorySvc),
		Clock:         clock,
		PageSize:      cfg.PageSize,
	})
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}

	scheduler := service.NewSchedulerService(loc)
	tickID, err := scheduler.ScheduleDaily("recurrence", cfg.RecurrenceTime, 0, func(ctx context.Context) error {
		_, err := recurrenceSvc.RunTick(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("schedule recurrence: %w", err)
	}
	if cfg.DigestTime != "" {
		if _, err := scheduler.ScheduleDaily("digest", cfg.DigestTime, digestTimeout, telegramBot.SendDailyDigests); err != nil {
			return fmt.Errorf("schedule digest: %w", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()
	log.Printf("[info] next recurrence tick at %s", scheduler.Next(tickID).Format(time.RFC3339))

	log.Println("Task bot started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped with error: %w", err)
	}
	log.Println("Shutdown complete.")
	return nil
}
