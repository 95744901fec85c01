package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sav-suite/reclamation-service/internal/cache"
	"github.com/sav-suite/reclamation-service/internal/domain"
	"github.com/sav-suite/reclamation-service/internal/events"
	"github.com/sav-suite/reclamation-service/internal/persistence"
	"github.com/sav-suite/reclamation-service/internal/repository"
	apperrors "github.com/sav-suite/reclamation-service/pkg/util"
)

// ReclamationService covers ticket creation and the read side of the
// boundary; workflow transitions live in WorkflowEngine.
type ReclamationService struct {
	reclamations repository.ReclamationRepository
	history      repository.ReclamationHistoryRepository
	allocator    repository.SequenceAllocator
	txManager    persistence.TxManager
	dispatcher   events.Dispatcher
	snapshots    *cache.ReclamationCache
}

// ReclamationDependencies bundles collaborators.
type ReclamationDependencies struct {
	ReclamationRepo repository.ReclamationRepository
	HistoryRepo     repository.ReclamationHistoryRepository
	Allocator       repository.SequenceAllocator
	TxManager       persistence.TxManager
	Dispatcher      events.Dispatcher
	Snapshots       *cache.ReclamationCache
}

// ReclamationCreateInput describes ticket creation payload.
type ReclamationCreateInput struct {
	ClientLabel string
	Subject     string
	Description string
	Category    string
	Priority    domain.ReclamationPriority
}

// NewReclamationService constructs the service.
func NewReclamationService(deps ReclamationDependencies) *ReclamationService {
	return &ReclamationService{
		reclamations: deps.ReclamationRepo,
		history:      deps.HistoryRepo,
		allocator:    deps.Allocator,
		txManager:    deps.TxManager,
		dispatcher:   deps.Dispatcher,
		snapshots:    deps.Snapshots,
	}
}

// CreateTicket opens a new reclamation. The ticket number is allocated
// from the REC series inside the same transaction as the insert, so the
// counter never advances for a ticket that was not created.
func (s *ReclamationService) CreateTicket(ctx context.Context, actorID int64, input ReclamationCreateInput) (*domain.Reclamation, error) {
	input.ClientLabel = strings.TrimSpace(input.ClientLabel)
	input.Subject = strings.TrimSpace(input.Subject)
	if input.ClientLabel == "" || input.Subject == "" {
		return nil, apperrors.NewValidationError("client label and subject required", nil)
	}
	if input.Priority == "" {
		input.Priority = domain.PriorityMedium
	}

	rec := &domain.Reclamation{
		ClientLabel: input.ClientLabel,
		Subject:     input.Subject,
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Priority:    input.Priority,
		Status:      domain.StatusOpen,
	}

	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		seq, err := s.allocator.NextValue(ctx, repository.SeriesReclamation)
		if err != nil {
			return err
		}
		rec.NumTicket = FormatTicketNumber(time.Now(), seq)
		if err := s.reclamations.Create(ctx, rec); err != nil {
			return apperrors.MapError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, actorID, events.EventReclamationCreated, rec.ID, events.ReclamationCreatedPayload{
		NumTicket:   rec.NumTicket,
		ClientLabel: rec.ClientLabel,
		Priority:    rec.Priority,
		Subject:     rec.Subject,
	})
	return rec, nil
}

// GetTicket fetches a ticket, serving cached snapshots when available.
func (s *ReclamationService) GetTicket(ctx context.Context, ticketID int64) (*domain.Reclamation, error) {
	if rec, ok := s.snapshots.Get(ctx, ticketID); ok {
		return rec, nil
	}
	rec, err := s.reclamations.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("reclamation", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	s.snapshots.Set(ctx, rec)
	return rec, nil
}

// ListTickets returns tickets matching the filter.
func (s *ReclamationService) ListTickets(ctx context.Context, filter repository.ReclamationFilter) ([]domain.Reclamation, error) {
	tickets, err := s.reclamations.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListHistory returns the audit trail of a ticket.
func (s *ReclamationService) ListHistory(ctx context.Context, ticketID int64) ([]domain.ReclamationHistory, error) {
	if s.history == nil {
		return []domain.ReclamationHistory{}, nil
	}
	if _, err := s.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByReclamation(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// FormatTicketNumber renders the human ticket code. The sequence is
// globally monotonic; the year is display only and does not reset the
// counter.
func FormatTicketNumber(now time.Time, seq int64) string {
	return fmt.Sprintf("REC-%d-%04d", now.Year(), seq)
}

func (s *ReclamationService) publishEvent(ctx context.Context, actorID int64, eventType events.EventType, ticketID int64, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		ReclamationID: ticketID,
		ActorID:       actorID,
		Timestamp:     time.Now(),
		Payload:       payload,
	})
}
