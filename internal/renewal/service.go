package renewal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
)

var (
	// ErrUnknownKind rejects routes or payloads naming a document kind
	// outside LTO/LTFRB/INSURANCE.
	ErrUnknownKind = errors.New("renewal: unknown document kind")
	// ErrExpiryNotAdvanced rejects a renewal whose new expiry does not move
	// past the current one.
	ErrExpiryNotAdvanced = errors.New("renewal: new expiry must be after the current expiry")
)

// RepositoryPort defines data access methods for renewal records.
type RepositoryPort interface {
	ListRecords(ctx context.Context, kind Kind) ([]Record, error)
	GetRecord(ctx context.Context, id int64) (*Record, error)
	CreateRecord(ctx context.Context, kind Kind, in RecordInput) (*Record, error)
	UpdateRecord(ctx context.Context, id int64, in RecordInput) (*Record, error)
	DeleteRecord(ctx context.Context, id int64) error
	Renew(ctx context.Context, id int64, newExpiry, referenceNo string, cost decimal.Decimal) (*Record, error)
	ListHistory(ctx context.Context, kind Kind) ([]History, error)
	ExpiringWithin(ctx context.Context, asOf time.Time, window time.Duration) ([]Record, error)
}

// Service wraps renewal persistence with validation and the renew workflow.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
	audit    *shared.AuditLogger
	logger   *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		audit:    audit,
		logger:   logger,
	}
}

func (s *Service) ListRecords(ctx context.Context, kind Kind) ([]Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return s.repo.ListRecords(ctx, kind)
}

func (s *Service) GetRecord(ctx context.Context, id int64) (*Record, error) {
	return s.repo.GetRecord(ctx, id)
}

func (s *Service) CreateRecord(ctx context.Context, kind Kind, in RecordInput) (*Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.CreateRecord(ctx, kind, in)
}

func (s *Service) UpdateRecord(ctx context.Context, id int64, in RecordInput) (*Record, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.UpdateRecord(ctx, id, in)
}

func (s *Service) DeleteRecord(ctx context.Context, actor *shared.Token, id int64) error {
	if actor == nil {
		return shared.ErrTokenRequired
	}
	if err := s.repo.DeleteRecord(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "renewal.delete", id)
	return nil
}

// Renew advances a record's expiry and appends a history entry. The new
// expiry must land strictly after the current one.
func (s *Service) Renew(ctx context.Context, actor *shared.Token, id int64, in RenewInput) (*Record, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	current, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.NewExpiry <= current.ExpiryDate {
		return nil, fmt.Errorf("%w: %s -> %s", ErrExpiryNotAdvanced, current.ExpiryDate, in.NewExpiry)
	}

	cost := decimal.Zero
	if in.Cost != "" {
		if cost, err = decimal.NewFromString(in.Cost); err != nil {
			return nil, fmt.Errorf("renewal: cost %q: %w", in.Cost, err)
		}
	}
	referenceNo := in.ReferenceNo
	if referenceNo == "" {
		referenceNo = current.ReferenceNo
	}

	renewed, err := s.repo.Renew(ctx, id, in.NewExpiry, referenceNo, cost)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "renewal.renew", id)
	return renewed, nil
}

func (s *Service) ListHistory(ctx context.Context, kind Kind) ([]History, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return s.repo.ListHistory(ctx, kind)
}

// ExpiringWithin lists records whose expiry falls inside the window from
// asOf, already-expired ones included. Powers the nightly worker scan.
func (s *Service) ExpiringWithin(ctx context.Context, asOf time.Time, window time.Duration) ([]Record, error) {
	return s.repo.ExpiringWithin(ctx, asOf, window)
}

func (s *Service) recordAudit(ctx context.Context, actor *shared.Token, action string, id int64) {
	if s.audit == nil {
		return
	}
	var actorID int64
	if actor != nil {
		actorID = actor.UserID
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "renewal_record",
		EntityID: strconv.FormatInt(id, 10),
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}
