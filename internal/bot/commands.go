package bot

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/models"
	"github.com/shrimpsizemoose/lussekatt/internal/rollcall"
)

const helpText = `Commands:
/today — attendance for today
/absent [YYYY-MM-DD] — absentees with reasons
/summary [YYYY-MM] — monthly percentages
/help — this message`

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "today":
		b.handleToday(msg)
	case "absent":
		b.handleAbsent(msg)
	case "summary":
		b.handleSummary(msg)
	case "help", "start":
		b.reply(msg.Chat.ID, helpText)
	default:
		b.reply(msg.Chat.ID, "Unknown command, try /help")
	}
}

func (b *Bot) dayStatuses(date models.Date) ([]rollcall.DayStatus, error) {
	students, err := b.store.ListStudents("roll")
	if err != nil {
		return nil, err
	}
	records, err := b.store.ListAttendanceByDate(date)
	if err != nil {
		return nil, err
	}
	return rollcall.SummarizeByDate(students, records, date), nil
}

func (b *Bot) handleToday(msg *tgbotapi.Message) {
	today := models.DateOf(b.now())

	holiday, err := b.store.GetHoliday(today)
	if err != nil {
		logger.Error.Printf("Failed to check holiday: %v", err)
		b.reply(msg.Chat.ID, "Something went wrong, try again")
		return
	}
	if holiday != nil {
		note := ""
		if holiday.Note != nil {
			note = " (" + *holiday.Note + ")"
		}
		b.reply(msg.Chat.ID, fmt.Sprintf("%s is a holiday%s", today, note))
		return
	}

	statuses, err := b.dayStatuses(today)
	if err != nil {
		logger.Error.Printf("Failed to build today view: %v", err)
		b.reply(msg.Chat.ID, "Something went wrong, try again")
		return
	}

	var present, absent, unmarked int
	for _, s := range statuses {
		switch s.Status {
		case string(models.StatusPresent):
			present++
		case string(models.StatusAbsent):
			absent++
		default:
			unmarked++
		}
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"%s: %d present, %d absent, %d unmarked of %d students",
		today, present, absent, unmarked, len(statuses),
	))
}

func (b *Bot) handleAbsent(msg *tgbotapi.Message) {
	date := models.DateOf(b.now())
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		parsed, err := models.ParseDate(arg)
		if err != nil {
			b.reply(msg.Chat.ID, "Usage: /absent [YYYY-MM-DD]")
			return
		}
		date = parsed
	}

	statuses, err := b.dayStatuses(date)
	if err != nil {
		logger.Error.Printf("Failed to build absent list: %v", err)
		b.reply(msg.Chat.ID, "Something went wrong, try again")
		return
	}

	var lines []string
	for _, s := range statuses {
		if s.Status != string(models.StatusAbsent) {
			continue
		}
		line := fmt.Sprintf("%s (%s)", s.Name, s.UniversityRoll)
		if s.AbsenceReason != nil && *s.AbsenceReason != "" {
			line += ": " + *s.AbsenceReason
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		b.reply(msg.Chat.ID, fmt.Sprintf("No absentees recorded for %s", date))
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("Absent on %s:\n%s", date, strings.Join(lines, "\n")))
}

func (b *Bot) handleSummary(msg *tgbotapi.Message) {
	anchor := models.DateOf(b.now())
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		parsed, err := time.Parse("2006-01", arg)
		if err != nil {
			b.reply(msg.Chat.ID, "Usage: /summary [YYYY-MM]")
			return
		}
		anchor = models.DateOf(parsed)
	}

	first, last := models.MonthRange(anchor)

	students, err := b.store.ListStudents("roll")
	if err != nil {
		logger.Error.Printf("Failed to list students: %v", err)
		b.reply(msg.Chat.ID, "Something went wrong, try again")
		return
	}
	records, err := b.store.ListAttendanceRange(first, last)
	if err != nil {
		logger.Error.Printf("Failed to list attendance: %v", err)
		b.reply(msg.Chat.ID, "Something went wrong, try again")
		return
	}
	holidays, err := b.store.ListHolidaysRange(first, last)
	if err != nil {
		logger.Error.Printf("Failed to list holidays: %v", err)
		b.reply(msg.Chat.ID, "Something went wrong, try again")
		return
	}

	holidayDates := make([]models.Date, 0, len(holidays))
	for _, h := range holidays {
		holidayDates = append(holidayDates, h.Date)
	}

	days := rollcall.WorkingDays(first, last, models.DateOf(b.now()), holidayDates)
	summaries := rollcall.SummarizeAll(students, records, days)

	if len(summaries) == 0 {
		b.reply(msg.Chat.ID, "No students registered yet")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s, %d working days:\n", first.Format("January 2006"), len(days))
	for _, s := range summaries {
		fmt.Fprintf(&sb, "%s (%s): %s%% [%d/%d]\n", s.Name, s.UniversityRoll, s.Percentage, s.Present, s.Total)
	}
	b.reply(msg.Chat.ID, sb.String())
}

// sendReminder pings the admins when a working day is about to end with no
// attendance marked at all.
func (b *Bot) sendReminder() {
	today := models.DateOf(b.now())
	if today.IsWeekend() {
		return
	}

	holiday, err := b.store.GetHoliday(today)
	if err != nil {
		logger.Error.Printf("Reminder holiday check failed: %v", err)
		return
	}
	if holiday != nil {
		return
	}

	statuses, err := b.dayStatuses(today)
	if err != nil {
		logger.Error.Printf("Reminder attendance check failed: %v", err)
		return
	}
	if !needsReminder(statuses) {
		return
	}

	b.notifyAdmins(fmt.Sprintf("Attendance for %s has not been marked yet", today))
}

// needsReminder reports whether every current student is still unmarked.
// Orphan rows left by student deletion never show up in statuses, so they
// cannot suppress the nag. An empty roster needs no reminder either.
func needsReminder(statuses []rollcall.DayStatus) bool {
	if len(statuses) == 0 {
		return false
	}
	for _, s := range statuses {
		if s.Status != rollcall.StatusUnmarked {
			return false
		}
	}
	return true
}
