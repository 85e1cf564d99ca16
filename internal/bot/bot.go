package bot

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/store"
)

// Bot answers attendance queries in chat and nags the admins on working days
// when nobody has marked attendance yet.
type Bot struct {
	config    *Config
	store     store.RegisterStore
	api       *tgbotapi.BotAPI
	admins    map[int64]bool
	scheduler *gocron.Scheduler
	now       func() time.Time
}

func New(config *Config, store store.RegisterStore) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(config.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	admins := make(map[int64]bool)
	for _, id := range config.Bot.AdminIDs {
		admins[id] = true
	}

	return &Bot{
		config:    config,
		store:     store,
		api:       api,
		admins:    admins,
		scheduler: gocron.NewScheduler(time.Local),
		now:       time.Now,
	}, nil
}

func (b *Bot) Start() error {
	if _, err := b.scheduler.Cron(b.config.Bot.ReminderCron).Do(b.sendReminder); err != nil {
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}
	b.scheduler.StartAsync()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	logger.Info.Printf("Bot started as @%s", b.api.Self.UserName)

	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}

		if !b.admins[update.Message.From.ID] {
			logger.Debug.Printf("Ignoring command from non-admin %d", update.Message.From.ID)
			continue
		}

		b.handleCommand(update.Message)
	}

	b.scheduler.Stop()
	return nil
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		logger.Error.Printf("Failed to send message to %d: %v", chatID, err)
	}
}

func (b *Bot) notifyAdmins(text string) {
	for id := range b.admins {
		b.reply(id, text)
	}
}
