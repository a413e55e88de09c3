package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"task-notifier/config"
	"task-notifier/internal/model"
	"task-notifier/internal/repository"
	"task-notifier/pkg/logger"
	"task-notifier/pkg/utils"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// Scheduler owns the pending deferred fires: one cancellable single-shot
// timer per task id, at most one live handle per id at any moment.
type Scheduler interface {
	// Schedule arms (or re-arms) the timer for a task. A fire instant at or
	// before now is recorded as skipped and arms nothing; the caller's CRUD
	// operation still succeeds.
	Schedule(ctx context.Context, task *model.PeriodicTask) error
	// Cancel stops and removes any pending timer for the task id. It is
	// best-effort with respect to a fire that already started executing.
	Cancel(taskID uint) bool
	// HasPending reports whether a timer is armed for the task id.
	HasPending(taskID uint) bool
	// PendingCount returns the number of armed timers.
	PendingCount() int
	// Recover re-arms every active persisted task whose fire instant is
	// still in the future. Armed timers are left alone.
	Recover(ctx context.Context) error
	// Start runs an initial recovery pass and begins the periodic sweep.
	Start(ctx context.Context) error
	// Stop halts the sweep and drops all armed timers.
	Stop()
}

type taskScheduler struct {
	cfg        *config.Config
	log        *logger.Logger
	taskRepo   repository.TaskRepository
	logRepo    repository.NotificationLogRepository
	resolver   RecipientResolver
	dispatcher NotificationDispatcher

	loc *time.Location
	now func() time.Time

	mu     sync.Mutex
	timers map[uint]*time.Timer

	cron *cron.Cron
}

func NewTaskScheduler(
	cfg *config.Config,
	log *logger.Logger,
	taskRepo repository.TaskRepository,
	logRepo repository.NotificationLogRepository,
	resolver RecipientResolver,
	dispatcher NotificationDispatcher,
) *taskScheduler {
	loc := time.Local
	if cfg.Scheduler.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Scheduler.Timezone); err == nil {
			loc = l
		} else {
			log.Warn("Invalid scheduler timezone, falling back to local",
				logger.StringField("timezone", cfg.Scheduler.Timezone),
				logger.ErrorField(err),
			)
		}
	}

	return &taskScheduler{
		cfg:        cfg,
		log:        log,
		taskRepo:   taskRepo,
		logRepo:    logRepo,
		resolver:   resolver,
		dispatcher: dispatcher,
		loc:        loc,
		now:        time.Now,
		timers:     make(map[uint]*time.Timer),
	}
}

func (s *taskScheduler) Schedule(ctx context.Context, task *model.PeriodicTask) error {
	if !task.Active {
		if s.Cancel(task.ID) {
			s.log.InfoContext(ctx, "Cancelled pending timer for inactive task",
				logger.IntField("task_id", int(task.ID)),
			)
		}
		return nil
	}

	fireAt, err := ComputeFireTime(task.SendDate, task.ExecutionTime, task.Periodicity, s.loc)
	if err != nil {
		return err
	}

	now := s.now()
	if !fireAt.After(now) {
		s.Cancel(task.ID)
		s.log.InfoContext(ctx, "Fire instant is not in the future, task skipped",
			logger.IntField("task_id", int(task.ID)),
			logger.StringField("fire_at", fireAt.Format(time.RFC3339)),
		)
		s.writeLog(ctx, task.ID, fireAt, model.NotificationStatusSkipped, nil)
		return nil
	}

	// Snapshot so the armed closure does not share memory with the caller's record.
	snapshot := *task
	snapshot.Recipients = append([]model.User(nil), task.Recipients...)
	delay := fireAt.Sub(now)

	s.mu.Lock()
	if prev, ok := s.timers[task.ID]; ok {
		prev.Stop()
	}
	var handle *time.Timer
	handle = time.AfterFunc(delay, func() {
		if !s.claim(task.ID, handle) {
			return
		}
		s.fire(&snapshot, fireAt)
	})
	s.timers[task.ID] = handle
	s.mu.Unlock()

	s.log.InfoContext(ctx, "Timer armed",
		logger.IntField("task_id", int(task.ID)),
		logger.StringField("fire_at", fireAt.Format(time.RFC3339)),
		logger.StringField("delay", delay.String()),
	)
	return nil
}

func (s *taskScheduler) Cancel(taskID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.timers[taskID]
	if !ok {
		return false
	}
	timer.Stop()
	delete(s.timers, taskID)
	return true
}

func (s *taskScheduler) HasPending(taskID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[taskID]
	return ok
}

func (s *taskScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// claim detaches an expired timer from the map, but only when it is still
// the tracked handle for its task id. A false return means a Cancel or a
// newer arm won the race after this timer had already expired; the newer
// state owns the map entry and this fire must not run.
func (s *taskScheduler) claim(taskID uint, handle *time.Timer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timers[taskID] != handle {
		return false
	}
	delete(s.timers, taskID)
	return true
}

// fire runs on the timer's goroutine, long after the request that armed it
// completed. Outcomes are observable only via logs and notification_logs.
func (s *taskScheduler) fire(task *model.PeriodicTask, firedAt time.Time) {
	ctx := context.Background()

	// An update that does not touch the timing leaves the timer alone, so
	// the armed snapshot may carry superseded text. Prefer the persisted
	// record at fire time.
	fresh, err := s.taskRepo.FindByID(ctx, task.ID)
	switch {
	case err != nil:
		s.log.WarnContext(ctx, "Could not reload task before dispatch, using armed snapshot",
			logger.ErrorField(err),
			logger.IntField("task_id", int(task.ID)),
		)
	case fresh == nil:
		s.log.InfoContext(ctx, "Task deleted before fire, nothing dispatched",
			logger.IntField("task_id", int(task.ID)),
		)
		return
	case !fresh.Active:
		s.log.InfoContext(ctx, "Task deactivated before fire, nothing dispatched",
			logger.IntField("task_id", int(task.ID)),
		)
		return
	default:
		task = fresh
	}

	ids := task.RecipientIDs()
	contacts, unresolved, err := s.resolver.Resolve(ctx, ids)
	if err != nil {
		s.log.ErrorContext(ctx, "Recipient resolution failed, fire aborted",
			logger.ErrorField(err),
			logger.IntField("task_id", int(task.ID)),
		)
		s.writeLog(ctx, task.ID, firedAt, model.NotificationStatusFailed, nil)
		return
	}

	outcomes := make([]model.DispatchOutcome, 0, len(ids))
	for _, id := range unresolved {
		outcomes = append(outcomes, model.DispatchOutcome{
			RecipientID: id,
			Error:       "recipient no longer exists",
		})
	}

	if len(contacts) == 0 {
		s.log.ErrorContext(ctx, "No recipients resolved, fire aborted",
			logger.ErrorField(ErrNoRecipientsResolved),
			logger.IntField("task_id", int(task.ID)),
			logger.IntField("recipient_count", len(ids)),
		)
		s.writeLog(ctx, task.ID, firedAt, model.NotificationStatusFailed, outcomes)
		return
	}

	var (
		outcomeMu sync.Mutex
		sent      int
	)

	limit := s.cfg.Scheduler.MaxConcurrency
	if limit <= 0 {
		limit = 1
	}

	g := new(errgroup.Group)
	g.SetLimit(limit)
	for _, contact := range contacts {
		contact := contact
		g.Go(func() error {
			// A failed dispatch never aborts the fan-out.
			err := s.dispatcher.Dispatch(ctx, task, contact)

			outcome := model.DispatchOutcome{
				RecipientID: contact.ID,
				Address:     contact.Email,
				Sent:        err == nil,
			}
			if err != nil {
				outcome.Error = err.Error()
			}

			outcomeMu.Lock()
			outcomes = append(outcomes, outcome)
			if err == nil {
				sent++
			}
			outcomeMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	status := model.NotificationStatusSent
	switch {
	case sent == 0:
		status = model.NotificationStatusFailed
	case sent < len(ids):
		status = model.NotificationStatusPartial
	}

	s.log.InfoContext(ctx, "Task fired",
		logger.IntField("task_id", int(task.ID)),
		logger.IntField("sent", sent),
		logger.IntField("failed", len(outcomes)-sent),
		logger.StringField("status", status),
	)
	s.writeLog(ctx, task.ID, firedAt, status, outcomes)
}

func (s *taskScheduler) writeLog(ctx context.Context, taskID uint, firedAt time.Time, status string, outcomes []model.DispatchOutcome) {
	entry := &model.NotificationLog{
		TaskID:  taskID,
		FiredAt: firedAt,
		Status:  status,
	}
	if len(outcomes) > 0 {
		detail, err := json.Marshal(outcomes)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to marshal dispatch outcomes",
				logger.ErrorField(err),
				logger.IntField("task_id", int(taskID)),
			)
		} else {
			entry.Detail = datatypes.JSON(detail)
		}
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		s.log.ErrorContext(ctx, "Failed to persist notification log",
			logger.ErrorField(err),
			logger.IntField("task_id", int(taskID)),
		)
	}
}

func (s *taskScheduler) Recover(ctx context.Context) error {
	tasks, err := s.taskRepo.Get(ctx, &model.GetTaskParam{Active: utils.ToPointer(true)})
	if err != nil {
		return err
	}

	now := s.now()
	var armed, pastDue int
	for i := range tasks {
		task := &tasks[i]
		if s.HasPending(task.ID) {
			continue
		}

		fireAt, err := ComputeFireTime(task.SendDate, task.ExecutionTime, task.Periodicity, s.loc)
		if err != nil {
			s.log.WarnContext(ctx, "Persisted task has an invalid schedule",
				logger.ErrorField(err),
				logger.IntField("task_id", int(task.ID)),
			)
			continue
		}
		if !fireAt.After(now) {
			pastDue++
			continue
		}
		if err := s.Schedule(ctx, task); err != nil {
			s.log.ErrorContext(ctx, "Failed to re-arm task",
				logger.ErrorField(err),
				logger.IntField("task_id", int(task.ID)),
			)
			continue
		}
		armed++
	}

	s.log.InfoContext(ctx, "Recovery sweep finished",
		logger.IntField("tasks_seen", len(tasks)),
		logger.IntField("armed", armed),
		logger.IntField("past_due", pastDue),
	)
	return nil
}

func (s *taskScheduler) Start(ctx context.Context) error {
	if err := s.Recover(ctx); err != nil {
		s.log.ErrorContext(ctx, "Initial recovery sweep failed", logger.ErrorField(err))
	}

	s.cron = cron.New(cron.WithLocation(s.loc))
	if _, err := s.cron.AddFunc(s.cfg.Scheduler.RecoverySpec, func() {
		if err := s.Recover(context.Background()); err != nil {
			s.log.Error("Recovery sweep failed", logger.ErrorField(err))
		}
	}); err != nil {
		return err
	}
	s.cron.Start()

	s.log.InfoContext(ctx, "Scheduler started",
		logger.StringField("recovery_spec", s.cfg.Scheduler.RecoverySpec),
		logger.StringField("timezone", s.loc.String()),
	)
	return nil
}

func (s *taskScheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	s.mu.Lock()
	for _, timer := range s.timers {
		timer.Stop()
	}
	s.timers = make(map[uint]*time.Timer)
	s.mu.Unlock()

	s.log.Info("Scheduler stopped")
}
