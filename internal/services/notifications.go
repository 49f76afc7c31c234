package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/terraincognita07/totoro/internal/cycle"
)

const (
	defaultTelegramEndpoint = "https://api.telegram.org"
	notificationInterval    = 6 * time.Hour
	maxSentNotifications    = 500
)

type DueReminderSource interface {
	DueOn(day time.Time) (ReminderSet, error)
}

type NotificationConfig struct {
	BotToken          string
	ChatID            string
	PeriodReminder    bool
	FertilityReminder bool
	Endpoint          string
	Interval          time.Duration
}

// NotificationService pushes due reminders to a Telegram chat.
type NotificationService struct {
	reminders         DueReminderSource
	botToken          string
	chatID            string
	enabled           bool
	enabledKinds      map[cycle.ReminderKind]bool
	endpoint          string
	interval          time.Duration
	now               func() time.Time
	client            *http.Client
	logger            *slog.Logger
	mu                sync.Mutex
	sentNotifications map[string]time.Time
}

func NewNotificationService(reminders DueReminderSource, config NotificationConfig, logger *slog.Logger) *NotificationService {
	endpoint := strings.TrimRight(strings.TrimSpace(config.Endpoint), "/")
	if endpoint == "" {
		endpoint = defaultTelegramEndpoint
	}
	interval := config.Interval
	if interval <= 0 {
		interval = notificationInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &NotificationService{
		reminders: reminders,
		botToken:  config.BotToken,
		chatID:    config.ChatID,
		enabled:   config.BotToken != "" && config.ChatID != "",
		enabledKinds: map[cycle.ReminderKind]bool{
			cycle.ReminderPeriod:    config.PeriodReminder,
			cycle.ReminderOvulation: config.FertilityReminder,
			cycle.ReminderFertile:   config.FertilityReminder,
		},
		endpoint: endpoint,
		interval: interval,
		now:      time.Now,
		client: &http.Client{
			Timeout: 8 * time.Second,
		},
		logger:            logger.With("component", "notifications"),
		sentNotifications: make(map[string]time.Time),
	}
}

func (service *NotificationService) Enabled() bool {
	return service.enabled
}

// Start runs the dispatcher until ctx is cancelled. It is a no-op when no bot
// is configured.
func (service *NotificationService) Start(ctx context.Context) {
	if !service.enabled {
		return
	}

	ticker := time.NewTicker(service.interval)
	go func() {
		defer ticker.Stop()

		service.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				service.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce sends every reminder that fires today and has not been sent yet.
// It returns the number of messages delivered.
func (service *NotificationService) RunOnce(ctx context.Context) int {
	today := cycle.DateOnly(service.now())

	due, err := service.reminders.DueOn(today)
	if err != nil {
		service.logger.Error("load due reminders failed", "error", err)
		return 0
	}

	sent := 0
	for _, reminder := range due.Reminders {
		if !service.enabledKinds[reminder.Kind] {
			continue
		}

		key := fmt.Sprintf("%s:%s", reminder.Kind, cycle.FormatDay(reminder.Date))
		if !service.shouldSend(key, today) {
			continue
		}

		message := reminder.Title + "\n" + reminder.Body
		if err := service.sendTelegram(ctx, message); err != nil {
			service.logger.Error("send reminder failed", "kind", reminder.Kind, "error", err)
			service.forget(key)
			continue
		}
		service.logger.Info("reminder sent", "kind", reminder.Kind, "date", cycle.FormatDay(reminder.Date))
		sent++
	}
	return sent
}

func (service *NotificationService) shouldSend(key string, today time.Time) bool {
	service.mu.Lock()
	defer service.mu.Unlock()

	if sentOn, ok := service.sentNotifications[key]; ok && cycle.SameDay(sentOn, today) {
		return false
	}

	service.sentNotifications[key] = today
	if len(service.sentNotifications) > maxSentNotifications {
		service.sentNotifications = map[string]time.Time{key: today}
	}
	return true
}

func (service *NotificationService) forget(key string) {
	service.mu.Lock()
	defer service.mu.Unlock()
	delete(service.sentNotifications, key)
}

func (service *NotificationService) sendTelegram(ctx context.Context, message string) error {
	values := url.Values{}
	values.Set("chat_id", service.chatID)
	values.Set("text", message)

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", service.endpoint, service.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := service.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
