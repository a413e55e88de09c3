package service

import (
	"context"
	"sync"
	"time"

	"task-notifier/config"
	"task-notifier/internal/model"
	"task-notifier/pkg/utils"

	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Scheduler: config.Scheduler{
			MaxConcurrency:    4,
			DispatchTimeout:   time.Second,
			RecoverySpec:      "@every 1m",
			SendRatePerSecond: 100,
			SendBurst:         100,
		},
		Mailer: config.Mailer{
			Mode:        config.MailerModeGateway,
			FromAddress: "no-reply@example.com",
		},
		Notification: config.Notification{
			Subject:       "Task reminder",
			ActionURLBase: "http://app.example.com",
		},
		Cache: config.Cache{
			DefaultExpiration: time.Minute,
			CleanupInterval:   time.Minute,
		},
	}
}

type fakeTaskRepo struct {
	mu     sync.Mutex
	nextID uint
	txns   int
	tasks  map[uint]model.PeriodicTask
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uint]model.PeriodicTask)}
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *model.PeriodicTask, opts ...utils.DBOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	task.ID = r.nextID
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *model.PeriodicTask, opts ...utils.DBOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) ReplaceRecipients(ctx context.Context, task *model.PeriodicTask, recipients []model.User, opts ...utils.DBOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.tasks[task.ID]
	stored.Recipients = recipients
	r.tasks[task.ID] = stored
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id uint, opts ...utils.DBOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.PeriodicTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	copied := task
	return &copied, nil
}

func (r *fakeTaskRepo) Get(ctx context.Context, param *model.GetTaskParam, opts ...utils.DBOption) ([]model.PeriodicTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PeriodicTask
	for _, task := range r.tasks {
		if param.Active != nil && task.Active != *param.Active {
			continue
		}
		if param.RecipientID != nil {
			found := false
			for _, rec := range task.Recipients {
				if rec.ID == *param.RecipientID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, task)
	}
	return out, nil
}

func (r *fakeTaskRepo) Transaction(ctx context.Context, fn func(opt utils.DBOption) error) error {
	r.mu.Lock()
	r.txns++
	r.mu.Unlock()
	return fn(func(db *gorm.DB) *gorm.DB { return db })
}

func (r *fakeTaskRepo) txCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.txns
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint]model.User
}

func newFakeUserRepo(users ...model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) remove(id uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *fakeUserRepo) FindByIDs(ctx context.Context, ids []uint, opts ...utils.DBOption) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

type recordingLogRepo struct {
	mu      sync.Mutex
	entries []model.NotificationLog
}

func (r *recordingLogRepo) Create(ctx context.Context, entry *model.NotificationLog, opts ...utils.DBOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *recordingLogRepo) FindByTaskID(ctx context.Context, taskID uint, opts ...utils.DBOption) ([]model.NotificationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.NotificationLog
	for _, e := range r.entries {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *recordingLogRepo) lastStatus() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return ""
	}
	return r.entries[len(r.entries)-1].Status
}

func (r *recordingLogRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type stubResolver struct {
	contacts   []model.User
	unresolved []uint
	err        error
}

func (r *stubResolver) Resolve(ctx context.Context, ids []uint) ([]model.User, []uint, error) {
	return r.contacts, r.unresolved, r.err
}

type recordingDispatcher struct {
	mu      sync.Mutex
	calls   []uint
	titles  []string
	failFor map[uint]error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, task *model.PeriodicTask, contact model.User) error {
	d.mu.Lock()
	d.calls = append(d.calls, contact.ID)
	d.titles = append(d.titles, task.Title)
	d.mu.Unlock()
	if d.failFor != nil {
		if err, ok := d.failFor[contact.ID]; ok {
			return err
		}
	}
	return nil
}

func (d *recordingDispatcher) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

func (d *recordingDispatcher) lastTitle() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.titles) == 0 {
		return ""
	}
	return d.titles[len(d.titles)-1]
}

func (d *recordingDispatcher) calledWith(id uint) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.calls {
		if c == id {
			return true
		}
	}
	return false
}

type recordingScheduler struct {
	mu        sync.Mutex
	scheduled []uint
	cancelled []uint
}

func (s *recordingScheduler) Schedule(ctx context.Context, task *model.PeriodicTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, task.ID)
	return nil
}

func (s *recordingScheduler) Cancel(taskID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, taskID)
	return true
}

func (s *recordingScheduler) HasPending(taskID uint) bool { return false }
func (s *recordingScheduler) PendingCount() int           { return 0 }

func (s *recordingScheduler) Recover(ctx context.Context) error { return nil }
func (s *recordingScheduler) Start(ctx context.Context) error   { return nil }
func (s *recordingScheduler) Stop()                             {}

func (s *recordingScheduler) scheduleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scheduled)
}

func (s *recordingScheduler) cancelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cancelled)
}
