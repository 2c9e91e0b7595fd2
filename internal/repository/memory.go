package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"birdfolio-backend/internal/models"
	"birdfolio-backend/internal/services"

	"github.com/jackc/pgx/v5/pgtype"
)

// MemoryStore keeps records in process memory. Units of work are serialized by
// a single mutex and operate on a copy of the state that replaces the live
// state only when fn succeeds.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memoryState{users: make(map[int64]models.User)},
		now:   time.Now,
	}
}

// WithTx runs fn against a private copy and publishes it on success
func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context, repos services.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, work.repositories(s.now)); err != nil {
		return err
	}
	s.state = work
	return nil
}

// WithReadTx runs fn against a copy that is always discarded
func (s *MemoryStore) WithReadTx(ctx context.Context, fn func(ctx context.Context, repos services.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(ctx, s.state.clone().repositories(s.now))
}

// Ping always succeeds
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

type memoryState struct {
	users           map[int64]models.User
	sightings       []models.Sighting
	checklist       []models.ChecklistItem
	nextSightingID  int64
	nextChecklistID int64
}

func (st *memoryState) clone() *memoryState {
	users := make(map[int64]models.User, len(st.users))
	for k, v := range st.users {
		users[k] = v
	}
	return &memoryState{
		users:           users,
		sightings:       append([]models.Sighting(nil), st.sightings...),
		checklist:       append([]models.ChecklistItem(nil), st.checklist...),
		nextSightingID:  st.nextSightingID,
		nextChecklistID: st.nextChecklistID,
	}
}

func (st *memoryState) repositories(now func() time.Time) services.Repositories {
	return services.Repositories{
		Users:     &memoryUsers{st: st, now: now},
		Sightings: &memorySightings{st: st, now: now},
		Checklist: &memoryChecklist{st: st},
	}
}

func (st *memoryState) requireUser(telegramID int64) error {
	if _, ok := st.users[telegramID]; !ok {
		return fmt.Errorf("user %d does not exist", telegramID)
	}
	return nil
}

type memoryUsers struct {
	st  *memoryState
	now func() time.Time
}

func (r *memoryUsers) Upsert(_ context.Context, telegramID int64, region string) (*models.User, error) {
	user, ok := r.st.users[telegramID]
	if !ok {
		user = models.User{TelegramID: telegramID, CreatedAt: r.now()}
	}
	user.Region = region
	r.st.users[telegramID] = user
	return &user, nil
}

func (r *memoryUsers) GetByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	user, ok := r.st.users[telegramID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &user, nil
}

func (r *memoryUsers) EnsureExists(_ context.Context, telegramID int64, region string) error {
	if _, ok := r.st.users[telegramID]; !ok {
		r.st.users[telegramID] = models.User{TelegramID: telegramID, Region: region, CreatedAt: r.now()}
	}
	return nil
}

func (r *memoryUsers) Delete(_ context.Context, telegramID int64) error {
	if _, ok := r.st.users[telegramID]; !ok {
		return models.ErrNotFound
	}
	delete(r.st.users, telegramID)

	sightings := r.st.sightings[:0]
	for _, s := range r.st.sightings {
		if s.TelegramID != telegramID {
			sightings = append(sightings, s)
		}
	}
	r.st.sightings = sightings

	checklist := r.st.checklist[:0]
	for _, item := range r.st.checklist {
		if item.TelegramID != telegramID {
			checklist = append(checklist, item)
		}
	}
	r.st.checklist = checklist
	return nil
}

type memorySightings struct {
	st  *memoryState
	now func() time.Time
}

func (r *memorySightings) CreateLifer(ctx context.Context, sighting *models.Sighting) (bool, error) {
	for _, s := range r.st.sightings {
		if s.IsLifer && s.TelegramID == sighting.TelegramID && s.CommonName == sighting.CommonName {
			return false, nil
		}
	}
	if err := r.insert(sighting, true); err != nil {
		return false, err
	}
	return true, nil
}

func (r *memorySightings) Create(_ context.Context, sighting *models.Sighting) error {
	return r.insert(sighting, false)
}

func (r *memorySightings) insert(sighting *models.Sighting, lifer bool) error {
	if err := r.st.requireUser(sighting.TelegramID); err != nil {
		return fmt.Errorf("failed to create sighting: %w", err)
	}
	r.st.nextSightingID++
	sighting.ID = r.st.nextSightingID
	sighting.IsLifer = lifer
	sighting.CreatedAt = r.now()
	r.st.sightings = append(r.st.sightings, *sighting)
	return nil
}

func (r *memorySightings) ListByUser(_ context.Context, telegramID int64) ([]*models.Sighting, error) {
	sightings := r.filter(telegramID, false)
	sort.SliceStable(sightings, func(i, j int) bool {
		if !sightings[i].CreatedAt.Equal(sightings[j].CreatedAt) {
			return sightings[i].CreatedAt.After(sightings[j].CreatedAt)
		}
		return sightings[i].ID > sightings[j].ID
	})
	return sightings, nil
}

func (r *memorySightings) CountByUser(_ context.Context, telegramID int64) (int, error) {
	return len(r.filter(telegramID, false)), nil
}

func (r *memorySightings) ListLifers(_ context.Context, telegramID int64) ([]*models.Sighting, error) {
	return r.filter(telegramID, true), nil
}

func (r *memorySightings) filter(telegramID int64, lifersOnly bool) []*models.Sighting {
	sightings := make([]*models.Sighting, 0)
	for _, s := range r.st.sightings {
		if s.TelegramID != telegramID || (lifersOnly && !s.IsLifer) {
			continue
		}
		s := s
		sightings = append(sightings, &s)
	}
	return sightings
}

type memoryChecklist struct {
	st *memoryState
}

func (r *memoryChecklist) ListByUser(_ context.Context, telegramID int64) ([]*models.ChecklistItem, error) {
	items := make([]*models.ChecklistItem, 0)
	for _, item := range r.st.checklist {
		if item.TelegramID == telegramID {
			item := item
			items = append(items, &item)
		}
	}
	return items, nil
}

func (r *memoryChecklist) MarkFound(_ context.Context, telegramID int64, slug string, dateFound pgtype.Date) (*models.ChecklistItem, error) {
	for i := range r.st.checklist {
		item := &r.st.checklist[i]
		if item.TelegramID != telegramID || item.Slug != slug {
			continue
		}
		item.Found = true
		item.DateFound = dateFound
		updated := *item
		return &updated, nil
	}
	return nil, models.ErrNotFound
}

func (r *memoryChecklist) BulkCreate(_ context.Context, telegramID int64, items []models.ChecklistItemInput) (int64, error) {
	if err := r.st.requireUser(telegramID); err != nil {
		return 0, fmt.Errorf("failed to create checklist items: %w", err)
	}
	for _, in := range items {
		r.st.nextChecklistID++
		r.st.checklist = append(r.st.checklist, models.ChecklistItem{
			ID:         r.st.nextChecklistID,
			TelegramID: telegramID,
			Region:     in.Region,
			Species:    in.Species,
			Slug:       in.Slug,
			RarityTier: in.RarityTier,
		})
	}
	return int64(len(items)), nil
}
