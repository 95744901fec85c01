package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sav-suite/reclamation-service/internal/domain"
	"github.com/sav-suite/reclamation-service/internal/events"
	"github.com/sav-suite/reclamation-service/internal/repository"
)

// fakeStore is a shared in-memory database for service tests. The fake
// transaction manager snapshots and restores it, so failed transactions
// observably roll back, counters included.
type fakeStore struct {
	mu            sync.Mutex
	reclamations  map[int64]domain.Reclamation
	interventions map[string]domain.InterventionRequest
	workOrders    map[string]domain.WorkOrder
	users         map[int64]domain.User
	history       []domain.ReclamationHistory
	counters      map[string]int64
	nextRecID     int64
	nextRowID     int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reclamations:  make(map[int64]domain.Reclamation),
		interventions: make(map[string]domain.InterventionRequest),
		workOrders:    make(map[string]domain.WorkOrder),
		users:         make(map[int64]domain.User),
		counters:      make(map[string]int64),
	}
}

func (s *fakeStore) newRowID() string {
	s.nextRowID++
	return "row-" + strconv.FormatInt(s.nextRowID, 10)
}

func (s *fakeStore) addUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

func (s *fakeStore) addReclamation(rec domain.Reclamation) domain.Reclamation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == 0 {
		s.nextRecID++
		rec.ID = s.nextRecID
	} else if rec.ID > s.nextRecID {
		s.nextRecID = rec.ID
	}
	now := time.Now()
	if rec.OpenedAt.IsZero() {
		rec.OpenedAt = now
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.reclamations[rec.ID] = rec
	return rec
}

type storeSnapshot struct {
	reclamations  map[int64]domain.Reclamation
	interventions map[string]domain.InterventionRequest
	workOrders    map[string]domain.WorkOrder
	users         map[int64]domain.User
	history       []domain.ReclamationHistory
	counters      map[string]int64
	nextRecID     int64
	nextRowID     int64
}

func (s *fakeStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storeSnapshot{
		reclamations:  copyMap(s.reclamations),
		interventions: copyMap(s.interventions),
		workOrders:    copyMap(s.workOrders),
		users:         copyMap(s.users),
		history:       append([]domain.ReclamationHistory{}, s.history...),
		counters:      copyMap(s.counters),
		nextRecID:     s.nextRecID,
		nextRowID:     s.nextRowID,
	}
}

func (s *fakeStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reclamations = snap.reclamations
	s.interventions = snap.interventions
	s.workOrders = snap.workOrders
	s.users = snap.users
	s.history = snap.history
	s.counters = snap.counters
	s.nextRecID = snap.nextRecID
	s.nextRowID = snap.nextRowID
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// fakeTxManager serializes transactions with a mutex, mirroring the row
// locks the real engine takes, and restores the store when fn fails.
type fakeTxManager struct {
	store *fakeStore
	txMu  sync.Mutex
}

func newFakeTxManager(store *fakeStore) *fakeTxManager {
	return &fakeTxManager{store: store}
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type fakeReclamationRepo struct {
	store *fakeStore

	createFn    func(ctx context.Context, rec *domain.Reclamation) error
	setStatusFn func(ctx context.Context, id int64, status domain.ReclamationStatus, note *string) (*domain.Reclamation, error)
}

func (f *fakeReclamationRepo) Create(ctx context.Context, rec *domain.Reclamation) error {
	if f.createFn != nil {
		return f.createFn(ctx, rec)
	}
	stored := f.store.addReclamation(*rec)
	*rec = stored
	return nil
}

func (f *fakeReclamationRepo) GetByID(ctx context.Context, id int64) (*domain.Reclamation, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	rec, ok := f.store.reclamations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &rec, nil
}

func (f *fakeReclamationRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reclamation, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeReclamationRepo) AssignTechnician(ctx context.Context, id, technicianID int64) (*domain.Reclamation, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	rec, ok := f.store.reclamations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	rec.TechnicianID = &technicianID
	rec.Status = domain.StatusInProgress
	rec.UpdatedAt = time.Now()
	f.store.reclamations[id] = rec
	return &rec, nil
}

func (f *fakeReclamationRepo) UnassignTechnician(ctx context.Context, id int64) (*domain.Reclamation, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	rec, ok := f.store.reclamations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	rec.TechnicianID = nil
	rec.Status = domain.StatusOpen
	rec.UpdatedAt = time.Now()
	f.store.reclamations[id] = rec
	return &rec, nil
}

func (f *fakeReclamationRepo) SetStatus(ctx context.Context, id int64, status domain.ReclamationStatus, note *string) (*domain.Reclamation, error) {
	if f.setStatusFn != nil {
		return f.setStatusFn(ctx, id, status, note)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	rec, ok := f.store.reclamations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	rec.Status = status
	if note != nil {
		rec.ResolutionNote = note
	}
	if status.RequiresResolution() {
		if rec.ResolvedAt == nil {
			now := time.Now()
			rec.ResolvedAt = &now
		}
	} else {
		rec.ResolvedAt = nil
	}
	rec.UpdatedAt = time.Now()
	f.store.reclamations[id] = rec
	return &rec, nil
}

func (f *fakeReclamationRepo) ListWithFilter(ctx context.Context, filter repository.ReclamationFilter) ([]domain.Reclamation, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var result []domain.Reclamation
	for _, rec := range f.store.reclamations {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, rec.Status) {
			continue
		}
		if filter.TechnicianID != nil && (rec.TechnicianID == nil || *rec.TechnicianID != *filter.TechnicianID) {
			continue
		}
		if filter.SearchTerm != nil {
			term := strings.ToLower(*filter.SearchTerm)
			if !strings.Contains(strings.ToLower(rec.Subject), term) &&
				!strings.Contains(strings.ToLower(rec.ClientLabel), term) &&
				!strings.Contains(strings.ToLower(rec.NumTicket), term) {
				continue
			}
		}
		result = append(result, rec)
	}
	return result, nil
}

func containsStatus(statuses []domain.ReclamationStatus, status domain.ReclamationStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type fakeInterventionRepo struct {
	store *fakeStore

	createFn func(ctx context.Context, di *domain.InterventionRequest) error
}

func (f *fakeInterventionRepo) Create(ctx context.Context, di *domain.InterventionRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, di)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	di.ID = f.store.newRowID()
	di.CreatedAt = time.Now()
	f.store.interventions[di.ID] = *di
	return nil
}

func (f *fakeInterventionRepo) GetByID(ctx context.Context, id string) (*domain.InterventionRequest, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	di, ok := f.store.interventions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &di, nil
}

func (f *fakeInterventionRepo) ListByReclamation(ctx context.Context, reclamationID int64) ([]domain.InterventionRequest, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var result []domain.InterventionRequest
	for _, di := range f.store.interventions {
		if di.ReclamationID != nil && *di.ReclamationID == reclamationID {
			result = append(result, di)
		}
	}
	return result, nil
}

func (f *fakeInterventionRepo) List(ctx context.Context, limit, offset int) ([]domain.InterventionRequest, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var result []domain.InterventionRequest
	for _, di := range f.store.interventions {
		result = append(result, di)
	}
	return result, nil
}

type fakeWorkOrderRepo struct {
	store *fakeStore

	createFn func(ctx context.Context, bt *domain.WorkOrder) error
	closeFn  func(ctx context.Context, id string, result *string) (*domain.WorkOrder, error)
}

func (f *fakeWorkOrderRepo) Create(ctx context.Context, bt *domain.WorkOrder) error {
	if f.createFn != nil {
		return f.createFn(ctx, bt)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	bt.ID = f.store.newRowID()
	bt.CreatedAt = time.Now()
	f.store.workOrders[bt.ID] = *bt
	return nil
}

func (f *fakeWorkOrderRepo) GetByID(ctx context.Context, id string) (*domain.WorkOrder, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	bt, ok := f.store.workOrders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &bt, nil
}

func (f *fakeWorkOrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.WorkOrder, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeWorkOrderRepo) Close(ctx context.Context, id string, result *string) (*domain.WorkOrder, error) {
	if f.closeFn != nil {
		return f.closeFn(ctx, id, result)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	bt, ok := f.store.workOrders[id]
	if !ok || bt.Closed {
		return nil, pgx.ErrNoRows
	}
	bt.Closed = true
	bt.InProgress = false
	if result != nil {
		bt.Result = result
	}
	now := time.Now()
	bt.ClosedAt = &now
	f.store.workOrders[id] = bt
	return &bt, nil
}

func (f *fakeWorkOrderRepo) List(ctx context.Context, limit, offset int) ([]domain.WorkOrder, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var result []domain.WorkOrder
	for _, bt := range f.store.workOrders {
		result = append(result, bt)
	}
	return result, nil
}

func (f *fakeWorkOrderRepo) CountOpenByReclamation(ctx context.Context, reclamationID int64) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var count int64
	for _, bt := range f.store.workOrders {
		di, ok := f.store.interventions[bt.InterventionID]
		if !ok || di.ReclamationID == nil || *di.ReclamationID != reclamationID {
			continue
		}
		if !bt.Closed {
			count++
		}
	}
	return count, nil
}

type fakeUserRepo struct {
	store *fakeStore
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	f.store.addUser(*user)
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if _, ok := f.store.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.store.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	user, ok := f.store.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, user := range f.store.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeHistoryRepo struct {
	store *fakeStore
}

func (f *fakeHistoryRepo) Create(ctx context.Context, history *domain.ReclamationHistory) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	history.ID = f.store.newRowID()
	history.CreatedAt = time.Now()
	f.store.history = append(f.store.history, *history)
	return nil
}

func (f *fakeHistoryRepo) ListByReclamation(ctx context.Context, reclamationID int64) ([]domain.ReclamationHistory, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var result []domain.ReclamationHistory
	for _, entry := range f.store.history {
		if entry.ReclamationID == reclamationID {
			result = append(result, entry)
		}
	}
	return result, nil
}

// fakeAllocator increments counters in the shared store so failed
// transactions roll the counter back together with the inserts.
type fakeAllocator struct {
	store *fakeStore

	nextValueFn func(ctx context.Context, series string) (int64, error)
}

func (f *fakeAllocator) NextValue(ctx context.Context, series string) (int64, error) {
	if f.nextValueFn != nil {
		return f.nextValueFn(ctx, series)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.counters[series]++
	return f.store.counters[series], nil
}

func (f *fakeAllocator) current(series string) int64 {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.counters[series]
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}
