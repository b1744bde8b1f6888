package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"habittracker/internal/dateutil"
	"habittracker/internal/model"
)

// 内存假实现，测试服务层时替代数据库仓储

type fakeHabitStore struct {
	mu      sync.Mutex
	habits  []model.Habit
	nextID  int
	listErr error
}

func newFakeHabitStore(titles ...string) *fakeHabitStore {
	s := &fakeHabitStore{nextID: 1}
	for _, title := range titles {
		s.habits = append(s.habits, model.Habit{ID: s.nextID, Title: title, GoalType: model.GoalTypeDaily})
		s.nextID++
	}
	return s
}

func (s *fakeHabitStore) Insert(_ context.Context, title, goalType string) (model.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := model.Habit{ID: s.nextID, Title: title, GoalType: goalType, CreatedAt: time.Now()}
	s.nextID++
	s.habits = append(s.habits, h)
	return h, nil
}

func (s *fakeHabitStore) List(_ context.Context) ([]model.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]model.Habit, len(s.habits))
	copy(out, s.habits)
	return out, nil
}

func (s *fakeHabitStore) UpdateTitle(_ context.Context, id int, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.habits {
		if s.habits[i].ID == id {
			s.habits[i].Title = title
			return nil
		}
	}
	return fmt.Errorf("habit %d not found", id)
}

func (s *fakeHabitStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.habits {
		if s.habits[i].ID == id {
			s.habits = append(s.habits[:i], s.habits[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("habit %d not found", id)
}

type fakeRecordStore struct {
	mu      sync.Mutex
	records map[string]model.DailyRecord
	nextID  int
	err     error
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: make(map[string]model.DailyRecord), nextID: 1}
}

func recordKey(habitID int, day time.Time) string {
	return fmt.Sprintf("%d/%s", habitID, dateutil.DayKey(day))
}

func (s *fakeRecordStore) Upsert(_ context.Context, habitID int, day time.Time, status model.RecordStatus, note string) (model.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.DailyRecord{}, s.err
	}
	key := recordKey(habitID, day)
	rec, ok := s.records[key]
	if !ok {
		rec = model.DailyRecord{ID: s.nextID, HabitID: habitID, Date: dateutil.StartOfDay(day)}
		s.nextID++
	}
	rec.Status = status
	rec.Note = note
	rec.UpdatedAt = time.Now()
	s.records[key] = rec
	return rec, nil
}

func (s *fakeRecordStore) ListByHabitBetween(_ context.Context, habitID int, from, to time.Time) ([]model.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []model.DailyRecord
	for _, rec := range s.records {
		if rec.HabitID == habitID && !rec.Date.Before(from) && !rec.Date.After(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *fakeRecordStore) ListByDate(_ context.Context, day time.Time) ([]model.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []model.DailyRecord
	for _, rec := range s.records {
		if dateutil.DayKey(rec.Date) == dateutil.DayKey(day) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *fakeRecordStore) GetByHabitAndDate(_ context.Context, habitID int, day time.Time) (*model.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if rec, ok := s.records[recordKey(habitID, day)]; ok {
		out := rec
		return &out, nil
	}
	return nil, nil
}

func (s *fakeRecordStore) CompletedDays(_ context.Context, from, to time.Time) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	seen := make(map[string]time.Time)
	for _, rec := range s.records {
		if rec.Status == model.StatusCompleted && !rec.Date.Before(from) && !rec.Date.After(to) {
			seen[dateutil.DayKey(rec.Date)] = rec.Date
		}
	}
	out := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	return out, nil
}

type fakeReviewStore struct {
	mu      sync.Mutex
	reviews map[string]model.Review
	nextID  int
	err     error
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{reviews: make(map[string]model.Review), nextID: 1}
}

func (s *fakeReviewStore) upsert(day time.Time, mutate func(*model.Review)) model.Review {
	key := dateutil.DayKey(day)
	rev, ok := s.reviews[key]
	if !ok {
		rev = model.Review{ID: s.nextID, Date: dateutil.StartOfDay(day)}
		s.nextID++
	}
	mutate(&rev)
	rev.UpdatedAt = time.Now()
	s.reviews[key] = rev
	return rev
}

func (s *fakeReviewStore) UpsertText(_ context.Context, day time.Time, text string) (model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.Review{}, s.err
	}
	return s.upsert(day, func(r *model.Review) { r.Text = text }), nil
}

func (s *fakeReviewStore) UpsertSuggestion(_ context.Context, day time.Time, suggestion string) (model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.Review{}, s.err
	}
	return s.upsert(day, func(r *model.Review) { r.AISuggestion = suggestion }), nil
}

func (s *fakeReviewStore) GetByDate(_ context.Context, day time.Time) (*model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if rev, ok := s.reviews[dateutil.DayKey(day)]; ok {
		out := rev
		return &out, nil
	}
	return nil, nil
}

type fakeGate struct {
	subscribed bool
}

func (g *fakeGate) IsSubscribed() bool { return g.subscribed }

type fakeGenerator struct {
	mu         sync.Mutex
	text       string
	err        error
	calls      int
	lastPrompt string
	started    chan struct{}
	release    chan struct{}
}

func (g *fakeGenerator) FetchSuggestion(_ context.Context, _, prompt string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.lastPrompt = prompt
	started := g.started
	g.started = nil
	release := g.release
	g.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	return g.text, g.err
}

type publishedEvent struct {
	routingKey string
	payload    any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{routingKey: routingKey, payload: payload})
	return nil
}

func (p *fakePublisher) routingKeys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.events))
	for _, e := range p.events {
		keys = append(keys, e.routingKey)
	}
	return keys
}
