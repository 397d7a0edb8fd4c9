package invites

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hezo-be/webinar-backend/internal/models"
	"github.com/hezo-be/webinar-backend/internal/notify"
	"github.com/hezo-be/webinar-backend/internal/webinars"
)

type memoryStore struct {
	mu       sync.Mutex
	invites  []models.Invite
	webinars map[uuid.UUID]*models.Webinar
	clock    time.Time
	failNext bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{webinars: map[uuid.UUID]*models.Webinar{}, clock: time.Now()}
}

func (m *memoryStore) addWebinar(title string, active bool) *models.Webinar {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := &models.Webinar{ID: uuid.New(), Title: title, VideoURL: "https://youtu.be/abc", IsActive: active}
	m.webinars[w.ID] = w
	return w
}

func (m *memoryStore) CreateBatch(_ context.Context, webinarID uuid.UUID, recipients []models.Recipient, expiresAt *time.Time) ([]models.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return nil, errors.New("insert failed")
	}
	if _, ok := m.webinars[webinarID]; !ok {
		return nil, webinars.ErrNotFound
	}
	created := make([]models.Invite, 0, len(recipients))
	for _, r := range recipients {
		token, err := NewToken()
		if err != nil {
			return nil, err
		}
		m.clock = m.clock.Add(time.Second)
		created = append(created, models.Invite{
			ID:        uuid.New(),
			WebinarID: webinarID,
			Token:     token,
			Name:      r.Name,
			Email:     r.Email,
			ExpiresAt: expiresAt,
			CreatedAt: m.clock,
		})
	}
	m.invites = append(m.invites, created...)
	return created, nil
}

func (m *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*models.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invites {
		if inv.ID == id {
			cp := inv
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryStore) List(_ context.Context, webinarID *uuid.UUID) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := []Row{}
	for _, inv := range m.invites {
		if webinarID != nil && inv.WebinarID != *webinarID {
			continue
		}
		w := m.webinars[inv.WebinarID]
		rows = append(rows, Row{Invite: inv, WebinarTitle: w.Title, WebinarActive: w.IsActive})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}

func (m *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, inv := range m.invites {
		if inv.ID == id {
			m.invites = append(m.invites[:i], m.invites[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.invites)
}

type webinarGetter struct{ store *memoryStore }

func (g webinarGetter) GetByID(_ context.Context, id uuid.UUID) (*models.Webinar, error) {
	g.store.mu.Lock()
	defer g.store.mu.Unlock()
	w, ok := g.store.webinars[id]
	if !ok {
		return nil, webinars.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

// fakeDispatcher fails every address containing "fail".
type fakeDispatcher struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (d *fakeDispatcher) Dispatch(_ context.Context, msgs []notify.Message) []notify.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	results := make([]notify.Result, len(msgs))
	for i, m := range msgs {
		results[i].Message = m
		if strings.Contains(m.To, "fail") {
			results[i].Err = errors.New("mailbox unavailable")
			continue
		}
		d.sent = append(d.sent, m)
	}
	return results
}

type memoryEmailLogs struct {
	mu   sync.Mutex
	logs []*models.EmailLog
}

func (l *memoryEmailLogs) Create(_ context.Context, el *models.EmailLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	el.ID = uuid.New()
	l.logs = append(l.logs, el)
	return nil
}

func strPtr(s string) *string { return &s }
