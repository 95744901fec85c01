package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sav-suite/reclamation-service/internal/domain"
	"github.com/sav-suite/reclamation-service/internal/events"
	"github.com/sav-suite/reclamation-service/internal/repository"
	apperrors "github.com/sav-suite/reclamation-service/pkg/util"
)

type serviceFixture struct {
	store        *fakeStore
	reclamations *fakeReclamationRepo
	history      *fakeHistoryRepo
	allocator    *fakeAllocator
	dispatcher   *recordingDispatcher
	service      *ReclamationService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	store := newFakeStore()
	f := &serviceFixture{
		store:        store,
		reclamations: &fakeReclamationRepo{store: store},
		history:      &fakeHistoryRepo{store: store},
		allocator:    &fakeAllocator{store: store},
		dispatcher:   &recordingDispatcher{},
	}
	f.service = NewReclamationService(ReclamationDependencies{
		ReclamationRepo: f.reclamations,
		HistoryRepo:     f.history,
		Allocator:       f.allocator,
		TxManager:       newFakeTxManager(store),
		Dispatcher:      f.dispatcher,
	})
	return f
}

func TestCreateTicketAllocatesSequentialNumbers(t *testing.T) {
	f := newServiceFixture(t)
	year := time.Now().Year()

	first, err := f.service.CreateTicket(context.Background(), 1, ReclamationCreateInput{
		ClientLabel: "ABC Corp",
		Subject:     "Engine overheating",
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("REC-%d-0001", year), first.NumTicket)
	assert.Equal(t, domain.StatusOpen, first.Status)
	assert.Equal(t, domain.PriorityMedium, first.Priority)

	second, err := f.service.CreateTicket(context.Background(), 1, ReclamationCreateInput{
		ClientLabel: "XYZ Ltd",
		Subject:     "Display flickering",
		Priority:    domain.PriorityUrgent,
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("REC-%d-0002", year), second.NumTicket)
	assert.Equal(t, domain.PriorityUrgent, second.Priority)

	assert.Len(t, f.dispatcher.byType(events.EventReclamationCreated), 2)
}

func TestCreateTicketValidation(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.CreateTicket(context.Background(), 1, ReclamationCreateInput{
		ClientLabel: "  ",
		Subject:     "Engine overheating",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainErrCode(t, err))

	_, err = f.service.CreateTicket(context.Background(), 1, ReclamationCreateInput{
		ClientLabel: "ABC Corp",
		Subject:     "",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainErrCode(t, err))

	// nothing was allocated or published for rejected input
	assert.Equal(t, int64(0), f.allocator.current(repository.SeriesReclamation))
	assert.Empty(t, f.dispatcher.events)
}

func TestCreateTicketRollsBackCounterOnInsertFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.reclamations.createFn = func(ctx context.Context, rec *domain.Reclamation) error {
		return errors.New("connection reset")
	}

	_, err := f.service.CreateTicket(context.Background(), 1, ReclamationCreateInput{
		ClientLabel: "ABC Corp",
		Subject:     "Engine overheating",
	})
	require.Error(t, err)
	assert.Equal(t, int64(0), f.allocator.current(repository.SeriesReclamation))
}

func TestGetTicketNotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.GetTicket(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainErrCode(t, err))
}

func TestListTicketsFilters(t *testing.T) {
	f := newServiceFixture(t)
	f.store.addReclamation(domain.Reclamation{NumTicket: "REC-2026-0001", ClientLabel: "ABC Corp", Subject: "Engine overheating", Status: domain.StatusOpen})
	f.store.addReclamation(domain.Reclamation{NumTicket: "REC-2026-0002", ClientLabel: "XYZ Ltd", Subject: "Display flickering", Status: domain.StatusClosed})

	open, err := f.service.ListTickets(context.Background(), repository.ReclamationFilter{
		Statuses: []domain.ReclamationStatus{domain.StatusOpen},
	})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "REC-2026-0001", open[0].NumTicket)

	search := "flicker"
	matched, err := f.service.ListTickets(context.Background(), repository.ReclamationFilter{
		SearchTerm: &search,
	})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "REC-2026-0002", matched[0].NumTicket)
}

func TestListHistoryUnknownTicket(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.ListHistory(context.Background(), 404)
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestFormatTicketNumber(t *testing.T) {
	ref := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "REC-2026-0001", FormatTicketNumber(ref, 1))
	assert.Equal(t, "REC-2026-0042", FormatTicketNumber(ref, 42))
	assert.Equal(t, "REC-2026-9999", FormatTicketNumber(ref, 9999))
	// the width is a minimum, not a cap
	assert.Equal(t, "REC-2026-10000", FormatTicketNumber(ref, 10000))
}
