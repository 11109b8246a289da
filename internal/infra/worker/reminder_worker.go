package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xavierca1/leadbridge/internal/entity"
)

// TaskSource is the read side of the store the worker polls.
type TaskSource interface {
	OverdueTasks(now time.Time) []entity.Task
	GetLead(id string) (entity.Lead, bool)
}

type Reminder interface {
	SendTaskReminder(ctx context.Context, task entity.Task, lead entity.Lead) error
}

// ReminderWorker sends one reminder per overdue task. Failed sends are
// retried on the next tick.
type ReminderWorker struct {
	source       TaskSource
	reminder     Reminder
	tickInterval time.Duration
	now          func() time.Time
	logger       *slog.Logger
	sent         prometheus.Counter

	reminded map[string]bool
}

func NewReminderWorker(source TaskSource, reminder Reminder, interval time.Duration, logger *slog.Logger, sent prometheus.Counter) *ReminderWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute // Roda a cada 1 min
	}
	return &ReminderWorker{
		source:       source,
		reminder:     reminder,
		tickInterval: interval,
		now:          time.Now,
		logger:       logger,
		sent:         sent,
		reminded:     make(map[string]bool),
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	w.logger.Info("🕒 Reminder Worker iniciado", "interval", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	// Primeira varredura já na subida, sem esperar o ticker
	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("⚠️ Reminder Worker encerrado")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce sends reminders for overdue tasks not reminded yet and returns how many were sent.
func (w *ReminderWorker) RunOnce(ctx context.Context) int {
	overdue := w.source.OverdueTasks(w.now())

	current := make(map[string]bool, len(overdue))
	sentCount := 0
	for _, task := range overdue {
		current[task.ID] = true
		if w.reminded[task.ID] {
			continue
		}

		lead, _ := w.source.GetLead(task.LeadID)
		if err := w.reminder.SendTaskReminder(ctx, task, lead); err != nil {
			w.logger.Error("❌ Erro ao enviar lembrete", "task", task.ID, "error", err)
			continue
		}

		w.reminded[task.ID] = true
		sentCount++
		if w.sent != nil {
			w.sent.Inc()
		}
		w.logger.Info("⏱️ Lembrete enviado", "task", task.ID, "lead", task.LeadID)
	}

	// Task concluída ou remarcada sai do mapa; se atrasar de novo, novo lembrete
	for id := range w.reminded {
		if !current[id] {
			delete(w.reminded, id)
		}
	}

	return sentCount
}
