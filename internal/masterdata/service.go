package masterdata

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

// ErrInvalidAmount rejects trip expense amounts that do not parse as a
// non-negative decimal.
var ErrInvalidAmount = errors.New("masterdata: invalid amount")

// RepositoryPort defines data access methods for masterdata entities.
type RepositoryPort interface {
	ListIndividuals(ctx context.Context) ([]Individual, error)
	GetIndividual(ctx context.Context, id int64) (*Individual, error)
	CreateIndividual(ctx context.Context, in IndividualInput) (*Individual, error)
	UpdateIndividual(ctx context.Context, id int64, in IndividualInput) (*Individual, error)
	DeleteIndividual(ctx context.Context, id int64) error

	ListConsignees(ctx context.Context, owner ConsigneeOwner, ownerID int64) ([]Consignee, error)
	CreateConsignee(ctx context.Context, owner ConsigneeOwner, ownerID int64, in ConsigneeInput) (*Consignee, error)
	UpdateConsignee(ctx context.Context, owner ConsigneeOwner, id int64, in ConsigneeInput) (*Consignee, error)
	DeleteConsignee(ctx context.Context, owner ConsigneeOwner, id int64) error

	ListCompanies(ctx context.Context) ([]Company, error)
	GetCompany(ctx context.Context, id int64) (*Company, error)
	CreateCompany(ctx context.Context, in CompanyInput) (*Company, error)
	UpdateCompany(ctx context.Context, id int64, in CompanyInput) (*Company, error)
	DeleteCompany(ctx context.Context, id int64) error

	ListWarehouses(ctx context.Context) ([]Warehouse, error)
	GetWarehouse(ctx context.Context, id int64) (*Warehouse, error)
	CreateWarehouse(ctx context.Context, in WarehouseInput) (*Warehouse, error)
	UpdateWarehouse(ctx context.Context, id int64, in WarehouseInput) (*Warehouse, error)
	DeleteWarehouse(ctx context.Context, id int64) error

	ListTrucks(ctx context.Context) ([]Truck, error)
	GetTruck(ctx context.Context, id int64) (*Truck, error)
	CreateTruck(ctx context.Context, in TruckInput) (*Truck, error)
	UpdateTruck(ctx context.Context, id int64, in TruckInput) (*Truck, error)
	DeleteTruck(ctx context.Context, id int64) error

	ListTripExpenses(ctx context.Context, truckID int64) ([]TripExpense, error)
	CreateTripExpense(ctx context.Context, in TripExpenseInput, amount decimal.Decimal) (*TripExpense, error)
	DeleteTripExpense(ctx context.Context, id int64) error
}

// Service wraps masterdata persistence with input validation and
// token-guarded deletes.
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

// requireToken is the delete guard: a missing token fails before any
// repository call.
func (s *Service) requireToken(actor *shared.Token) error {
	if actor == nil {
		return shared.ErrTokenRequired
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor *shared.Token, action, entity string, entityID int64) {
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
		EntityID: strconv.FormatInt(entityID, 10),
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}

// Individuals

func (s *Service) ListIndividuals(ctx context.Context) ([]Individual, error) {
	return s.repo.ListIndividuals(ctx)
}

func (s *Service) GetIndividual(ctx context.Context, id int64) (*Individual, error) {
	return s.repo.GetIndividual(ctx, id)
}

func (s *Service) CreateIndividual(ctx context.Context, in IndividualInput) (*Individual, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.CreateIndividual(ctx, in)
}

func (s *Service) UpdateIndividual(ctx context.Context, id int64, in IndividualInput) (*Individual, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.UpdateIndividual(ctx, id, in)
}

func (s *Service) DeleteIndividual(ctx context.Context, actor *shared.Token, id int64) error {
	if err := s.requireToken(actor); err != nil {
		return err
	}
	if err := s.repo.DeleteIndividual(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "individual.delete", "individual", id)
	return nil
}

// Consignees

func (s *Service) ListConsignees(ctx context.Context, owner ConsigneeOwner, ownerID int64) ([]Consignee, error) {
	return s.repo.ListConsignees(ctx, owner, ownerID)
}

func (s *Service) CreateConsignee(ctx context.Context, actor *shared.Token, owner ConsigneeOwner, ownerID int64, in ConsigneeInput) (*Consignee, error) {
	if err := s.requireToken(actor); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.CreateConsignee(ctx, owner, ownerID, in)
}

func (s *Service) UpdateConsignee(ctx context.Context, actor *shared.Token, owner ConsigneeOwner, id int64, in ConsigneeInput) (*Consignee, error) {
	if err := s.requireToken(actor); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.UpdateConsignee(ctx, owner, id, in)
}

func (s *Service) DeleteConsignee(ctx context.Context, actor *shared.Token, owner ConsigneeOwner, id int64) error {
	if err := s.requireToken(actor); err != nil {
		return err
	}
	if err := s.repo.DeleteConsignee(ctx, owner, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "consignee.delete", string(owner)+"_consignee", id)
	return nil
}

// Companies

func (s *Service) ListCompanies(ctx context.Context) ([]Company, error) {
	return s.repo.ListCompanies(ctx)
}

func (s *Service) GetCompany(ctx context.Context, id int64) (*Company, error) {
	return s.repo.GetCompany(ctx, id)
}

func (s *Service) CreateCompany(ctx context.Context, in CompanyInput) (*Company, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.CreateCompany(ctx, in)
}

func (s *Service) UpdateCompany(ctx context.Context, id int64, in CompanyInput) (*Company, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.UpdateCompany(ctx, id, in)
}

func (s *Service) DeleteCompany(ctx context.Context, actor *shared.Token, id int64) error {
	if err := s.requireToken(actor); err != nil {
		return err
	}
	if err := s.repo.DeleteCompany(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "company.delete", "company", id)
	return nil
}

// Warehouses

func (s *Service) ListWarehouses(ctx context.Context) ([]Warehouse, error) {
	return s.repo.ListWarehouses(ctx)
}

func (s *Service) GetWarehouse(ctx context.Context, id int64) (*Warehouse, error) {
	return s.repo.GetWarehouse(ctx, id)
}

func (s *Service) CreateWarehouse(ctx context.Context, in WarehouseInput) (*Warehouse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.CreateWarehouse(ctx, in)
}

func (s *Service) UpdateWarehouse(ctx context.Context, id int64, in WarehouseInput) (*Warehouse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.UpdateWarehouse(ctx, id, in)
}

func (s *Service) DeleteWarehouse(ctx context.Context, actor *shared.Token, id int64) error {
	if err := s.requireToken(actor); err != nil {
		return err
	}
	if err := s.repo.DeleteWarehouse(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "warehouse.delete", "warehouse", id)
	return nil
}

// Trucks

func (s *Service) ListTrucks(ctx context.Context) ([]Truck, error) {
	return s.repo.ListTrucks(ctx)
}

func (s *Service) GetTruck(ctx context.Context, id int64) (*Truck, error) {
	return s.repo.GetTruck(ctx, id)
}

func (s *Service) CreateTruck(ctx context.Context, in TruckInput) (*Truck, error) {
	if in.Status == "" {
		in.Status = "ACTIVE"
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.CreateTruck(ctx, in)
}

func (s *Service) UpdateTruck(ctx context.Context, id int64, in TruckInput) (*Truck, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.UpdateTruck(ctx, id, in)
}

func (s *Service) DeleteTruck(ctx context.Context, actor *shared.Token, id int64) error {
	if err := s.requireToken(actor); err != nil {
		return err
	}
	if err := s.repo.DeleteTruck(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "truck.delete", "truck", id)
	return nil
}

// Trip expenses

func (s *Service) ListTripExpenses(ctx context.Context, truckID int64) ([]TripExpense, error) {
	return s.repo.ListTripExpenses(ctx, truckID)
}

func (s *Service) CreateTripExpense(ctx context.Context, in TripExpenseInput) (*TripExpense, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(in.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, in.Amount)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, in.Amount)
	}
	return s.repo.CreateTripExpense(ctx, in, amount)
}

func (s *Service) DeleteTripExpense(ctx context.Context, actor *shared.Token, id int64) error {
	if err := s.requireToken(actor); err != nil {
		return err
	}
	if err := s.repo.DeleteTripExpense(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "trip_expense.delete", "trip_expense", id)
	return nil
}
