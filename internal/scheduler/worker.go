package scheduler

import (
	"context"
	"fmt"

	"cityreport_backend/internal/email"
	"cityreport_backend/internal/notification/inapp"
	usersrepo "cityreport_backend/internal/users/repository"
	"cityreport_backend/platform/config"
	"cityreport_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Worker struct {
	server        *asynq.Server
	mux           *asynq.ServeMux
	notifications *inapp.Repository
	users         *usersrepo.Repository
	mail          email.Sender
	log           *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, mail email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:        server,
		mux:           mux,
		notifications: inapp.New(pool),
		users:         usersrepo.New(pool),
		mail:          mail,
		log:           log,
	}

	mux.HandleFunc(TaskNotificationEmail, w.handleNotificationEmail)

	return w, nil
}

// handleNotificationEmail mirrors an in-app notification to the user's email
// address. The notification row is the source of truth; a missing row means
// the task is stale and is dropped.
func (w *Worker) handleNotificationEmail(ctx context.Context, task *asynq.Task) error {
	if w.mail == nil {
		return nil
	}

	payload, err := ParseNotificationEmailPayload(task)
	if err != nil {
		return err
	}

	notificationID, err := uuid.Parse(payload.NotificationID)
	if err != nil {
		return fmt.Errorf("invalid notification id: %w", err)
	}
	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	notif, err := w.notifications.GetByID(ctx, notificationID, userID)
	if err != nil {
		w.log.Warn("notification email task dropped", "notificationId", payload.NotificationID, "error", err)
		return nil
	}

	user, err := w.users.GetByID(ctx, userID)
	if err != nil {
		w.log.Warn("notification email task dropped", "userId", payload.UserID, "error", err)
		return nil
	}

	if err := w.mail.SendNotificationEmail(ctx, user.Email, notif.Title, notif.Content); err != nil {
		return fmt.Errorf("send notification email: %w", err)
	}
	return nil
}

// Run starts the worker and blocks until shutdown.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Shutdown stops the worker gracefully.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}
