package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
)

var (
	// ErrInvalidQuantity rejects zero, negative, or unparsable quantities.
	ErrInvalidQuantity = errors.New("inventory: invalid quantity")
	// ErrInsufficientStock stops an outbound movement that would drive the
	// item's on-hand quantity negative.
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
	// ErrInvalidTransition rejects a material request status change outside
	// the lifecycle.
	ErrInvalidTransition = errors.New("inventory: invalid status transition")
)

// RepositoryPort defines data access methods for inventory.
type RepositoryPort interface {
	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, id int64) (*Item, error)
	CreateItem(ctx context.Context, in ItemInput) (*Item, error)
	UpdateItem(ctx context.Context, id int64, in ItemInput) (*Item, error)
	DeleteItem(ctx context.Context, id int64) error

	// PostMovement applies the on-hand delta and records the movement in
	// one transaction, returning the movement with the resulting balance.
	PostMovement(ctx context.Context, itemID int64, typ MovementType, delta decimal.Decimal, reference, note string) (*StockMovement, error)
	ListMovements(ctx context.Context, itemID int64) ([]StockMovement, error)

	CreatePurchase(ctx context.Context, in PurchaseInput, qty, unitCost decimal.Decimal) (*Purchase, error)
	ListPurchases(ctx context.Context) ([]Purchase, error)

	CreateMaterialRequest(ctx context.Context, in MaterialRequestInput, qty decimal.Decimal) (*MaterialRequest, error)
	GetMaterialRequest(ctx context.Context, id int64) (*MaterialRequest, error)
	UpdateMaterialRequestStatus(ctx context.Context, id int64, status RequestStatus) (*MaterialRequest, error)
	ListMaterialRequests(ctx context.Context) ([]MaterialRequest, error)
}

// Service coordinates inventory operations.
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

// Items

func (s *Service) ListItems(ctx context.Context) ([]Item, error) {
	return s.repo.ListItems(ctx)
}

func (s *Service) GetItem(ctx context.Context, id int64) (*Item, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *Service) CreateItem(ctx context.Context, in ItemInput) (*Item, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.CreateItem(ctx, in)
}

func (s *Service) UpdateItem(ctx context.Context, id int64, in ItemInput) (*Item, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.UpdateItem(ctx, id, in)
}

func (s *Service) DeleteItem(ctx context.Context, actor *shared.Token, id int64) error {
	if actor == nil {
		return shared.ErrTokenRequired
	}
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "item.delete", "item", id)
	return nil
}

// parseQuantity turns raw text into a strictly positive decimal.
func parseQuantity(raw string) (decimal.Decimal, error) {
	qty, err := decimal.NewFromString(raw)
	if err != nil || !qty.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidQuantity, raw)
	}
	return qty, nil
}

// Movements

// PostMovement applies one stock movement. IN adds, OUT subtracts with a
// non-negative balance guard, ADJUST sets the signed delta as given.
func (s *Service) PostMovement(ctx context.Context, in MovementInput) (*StockMovement, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: type %q", ErrInvalidQuantity, in.Type)
	}

	var delta decimal.Decimal
	switch in.Type {
	case MovementAdjust:
		d, err := decimal.NewFromString(in.Quantity)
		if err != nil || d.IsZero() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidQuantity, in.Quantity)
		}
		delta = d
	case MovementIn:
		qty, err := parseQuantity(in.Quantity)
		if err != nil {
			return nil, err
		}
		delta = qty
	case MovementOut:
		qty, err := parseQuantity(in.Quantity)
		if err != nil {
			return nil, err
		}
		delta = qty.Neg()
	}

	if delta.IsNegative() {
		item, err := s.repo.GetItem(ctx, in.ItemID)
		if err != nil {
			return nil, err
		}
		if item.OnHand.Add(delta).IsNegative() {
			return nil, fmt.Errorf("%w: on hand %s, requested %s", ErrInsufficientStock, item.OnHand, delta.Abs())
		}
	}

	return s.repo.PostMovement(ctx, in.ItemID, in.Type, delta, in.Reference, in.Note)
}

func (s *Service) ListMovements(ctx context.Context, itemID int64) ([]StockMovement, error) {
	return s.repo.ListMovements(ctx, itemID)
}

// Purchases

// RecordPurchase stores the purchase and posts the matching inbound
// movement referencing it.
func (s *Service) RecordPurchase(ctx context.Context, in PurchaseInput) (*Purchase, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	qty, err := parseQuantity(in.Quantity)
	if err != nil {
		return nil, err
	}
	unitCost, err := decimal.NewFromString(in.UnitCost)
	if err != nil || unitCost.IsNegative() {
		return nil, fmt.Errorf("%w: unit cost %q", ErrInvalidQuantity, in.UnitCost)
	}

	purchase, err := s.repo.CreatePurchase(ctx, in, qty, unitCost)
	if err != nil {
		return nil, err
	}
	reference := "purchase:" + strconv.FormatInt(purchase.ID, 10)
	if _, err := s.repo.PostMovement(ctx, in.ItemID, MovementIn, qty, reference, in.Supplier); err != nil {
		return nil, fmt.Errorf("inventory: post purchase movement: %w", err)
	}
	return purchase, nil
}

func (s *Service) ListPurchases(ctx context.Context) ([]Purchase, error) {
	return s.repo.ListPurchases(ctx)
}

// Material requests

func (s *Service) CreateMaterialRequest(ctx context.Context, in MaterialRequestInput) (*MaterialRequest, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	qty, err := parseQuantity(in.Quantity)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateMaterialRequest(ctx, in, qty)
}

func (s *Service) ListMaterialRequests(ctx context.Context) ([]MaterialRequest, error) {
	return s.repo.ListMaterialRequests(ctx)
}

// requestTransitions maps each status to the statuses it may move to.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:  {RequestApproved, RequestRejected},
	RequestApproved: {RequestFulfilled, RequestRejected},
}

func transitionAllowed(from, to RequestStatus) bool {
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionMaterialRequest moves a request along its lifecycle. Fulfilling
// posts the outbound movement for the requested quantity.
func (s *Service) TransitionMaterialRequest(ctx context.Context, actor *shared.Token, id int64, to RequestStatus) (*MaterialRequest, error) {
	if actor == nil {
		return nil, shared.ErrTokenRequired
	}
	req, err := s.repo.GetMaterialRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(req.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, req.Status, to)
	}

	if to == RequestFulfilled {
		reference := "material-request:" + strconv.FormatInt(req.ID, 10)
		if _, err := s.PostMovement(ctx, MovementInput{
			ItemID:    req.ItemID,
			Type:      MovementOut,
			Quantity:  req.Quantity.String(),
			Reference: reference,
			Note:      req.RequestedBy,
		}); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.UpdateMaterialRequestStatus(ctx, id, to)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "material_request."+string(to), "material_request", id)
	return updated, nil
}

func (s *Service) recordAudit(ctx context.Context, actor *shared.Token, action, entity string, id int64) {
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
		Entity:   entity,
		EntityID: strconv.FormatInt(id, 10),
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}
