package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
)

// Module sentinel errors, mapped onto the HTTP taxonomy by the handler.
var (
	// ErrInvalidRange rejects a malformed allocation request before any
	// repository call is made.
	ErrInvalidRange = errors.New("invoice: invalid range")
	// ErrRangeConflict signals that part of the requested range is already
	// allocated, under any stub.
	ErrRangeConflict = errors.New("invoice: range conflicts with existing slots")
	// ErrDuplicateStub blocks a rename onto an existing stub label.
	ErrDuplicateStub = errors.New("invoice: stub already exists")
	// ErrStubNotFound indicates the stub has no slots.
	ErrStubNotFound = errors.New("invoice: stub not found")
)

// RepositoryPort defines data access methods for invoice stubs.
type RepositoryPort interface {
	CreateRange(ctx context.Context, stub string, start, end int64) (int, error)
	RangeOverlaps(ctx context.Context, start, end int64) (bool, error)
	ListStubs(ctx context.Context) ([]StubSummary, error)
	ListSlots(ctx context.Context, stub string) ([]InvoiceSlot, error)
	UpdateSlotStatus(ctx context.Context, stub string, invoiceNo int64, status SlotStatus, customerName string) (*InvoiceSlot, error)
	StubExists(ctx context.Context, stub string) (bool, error)
	RenameStub(ctx context.Context, currentStub, newStub string) (int, error)
	DeleteStub(ctx context.Context, stub string) (int, error)
	LatestSlot(ctx context.Context) (*InvoiceSlot, error)
}

const hintCacheKey = "invoice:latest-info"

// Service implements the stub range allocator.
type Service struct {
	repo   RepositoryPort
	audit  *shared.AuditLogger
	cache  *redis.Client
	logger *slog.Logger
}

// NewService builds Service instance. The cache client is optional.
func NewService(repo RepositoryPort, audit *shared.AuditLogger, cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, cache: cache, logger: logger}
}

// ValidateRange performs the local precheck: non-empty stub, positive
// bounds, start not past end. It never touches the repository.
func (s *Service) ValidateRange(req AllocateRangeRequest) error {
	if req.Stub == "" {
		return fmt.Errorf("%w: stub is required", ErrInvalidRange)
	}
	if req.RangeStart <= 0 || req.RangeEnd <= 0 {
		return fmt.Errorf("%w: range bounds must be positive", ErrInvalidRange)
	}
	if req.RangeStart > req.RangeEnd {
		return fmt.Errorf("%w: range start %d exceeds end %d", ErrInvalidRange, req.RangeStart, req.RangeEnd)
	}
	return nil
}

// CheckRange validates the request and then scans for overlap against every
// allocated slot. The whole number space is treated as shared across stubs.
func (s *Service) CheckRange(ctx context.Context, req AllocateRangeRequest) error {
	if err := s.ValidateRange(req); err != nil {
		return err
	}
	overlaps, err := s.repo.RangeOverlaps(ctx, req.RangeStart, req.RangeEnd)
	if err != nil {
		return fmt.Errorf("invoice: overlap scan: %w", err)
	}
	if overlaps {
		return fmt.Errorf("%w: [%d, %d]", ErrRangeConflict, req.RangeStart, req.RangeEnd)
	}
	return nil
}

// AllocateRange materializes the range as UNUSED slots in one transaction.
// A conflict detected either by the scan or by the unique index during the
// insert reports ErrRangeConflict; nothing is partially committed.
func (s *Service) AllocateRange(ctx context.Context, req AllocateRangeRequest) (int, error) {
	if err := s.CheckRange(ctx, req); err != nil {
		return 0, err
	}
	created, err := s.repo.CreateRange(ctx, req.Stub, req.RangeStart, req.RangeEnd)
	if err != nil {
		return 0, err
	}
	s.invalidateHints(ctx)
	return created, nil
}

// ListStubs returns stub summaries ordered by the numeric part of the
// label, highest first, matching the service invoice screen.
func (s *Service) ListStubs(ctx context.Context) ([]StubSummary, error) {
	stubs, err := s.repo.ListStubs(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(stubs, func(i, j int) bool {
		return StubNumberPart(stubs[i].Stub) > StubNumberPart(stubs[j].Stub)
	})
	return stubs, nil
}

// ListSlots returns every slot under a stub in number order.
func (s *Service) ListSlots(ctx context.Context, stub string) ([]InvoiceSlot, error) {
	if stub == "" {
		return nil, fmt.Errorf("%w: stub is required", ErrInvalidRange)
	}
	return s.repo.ListSlots(ctx, stub)
}

// MarkSlotUsed consumes a slot for a customer.
func (s *Service) MarkSlotUsed(ctx context.Context, stub string, invoiceNo int64, customerName string) (*InvoiceSlot, error) {
	return s.repo.UpdateSlotStatus(ctx, stub, invoiceNo, SlotUsed, customerName)
}

// ReleaseSlot returns a slot to the pool, clearing the customer.
func (s *Service) ReleaseSlot(ctx context.Context, stub string, invoiceNo int64) (*InvoiceSlot, error) {
	return s.repo.UpdateSlotStatus(ctx, stub, invoiceNo, SlotUnused, "")
}

// LatestInfo fetches the latest stub and invoice number hints. Failures are
// reported but callers treat them as advisory; allocation never depends on
// this path.
func (s *Service) LatestInfo(ctx context.Context) (LatestInvoiceInfo, error) {
	if info, ok := s.cachedHints(ctx); ok {
		return info, nil
	}

	latest, err := s.repo.LatestSlot(ctx)
	if err != nil {
		return LatestInvoiceInfo{NextInvoice: "N/A"}, err
	}

	info := LatestInvoiceInfo{NextInvoice: "N/A"}
	if latest != nil {
		info.LatestStub = latest.Stub
		info.LatestInvoice = strconv.FormatInt(latest.InvoiceNo, 10)
		info.NextInvoice = strconv.FormatInt(latest.InvoiceNo+1, 10)
	}
	s.storeHints(ctx, info)
	return info, nil
}

// RenameStub relabels every slot under currentStub. The duplicate check is
// advisory; a lost race still trips the unique index and surfaces as a
// conflict instead of corrupting the batch.
func (s *Service) RenameStub(ctx context.Context, actor *shared.Token, req RenameStubRequest) (int, error) {
	if req.CurrentStub == "" || req.NewStub == "" {
		return 0, fmt.Errorf("%w: both current and new stub are required", ErrInvalidRange)
	}
	if req.CurrentStub == req.NewStub {
		return 0, fmt.Errorf("%w: new stub matches current", ErrInvalidRange)
	}
	exists, err := s.repo.StubExists(ctx, req.NewStub)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateStub, req.NewStub)
	}

	renamed, err := s.repo.RenameStub(ctx, req.CurrentStub, req.NewStub)
	if err != nil {
		return 0, err
	}
	if renamed == 0 {
		return 0, fmt.Errorf("%w: %q", ErrStubNotFound, req.CurrentStub)
	}

	s.recordAudit(ctx, actor, "stub.rename", req.CurrentStub, map[string]any{
		"new_stub": req.NewStub,
		"slots":    renamed,
	})
	s.invalidateHints(ctx)
	return renamed, nil
}

// DeleteStub removes every slot under the stub. It fails fast without a
// bearer token and leaves an audit trail of what was retired.
func (s *Service) DeleteStub(ctx context.Context, actor *shared.Token, stub string) (int, error) {
	if actor == nil {
		return 0, shared.ErrTokenRequired
	}
	if stub == "" {
		return 0, fmt.Errorf("%w: stub is required", ErrInvalidRange)
	}

	deleted, err := s.repo.DeleteStub(ctx, stub)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, fmt.Errorf("%w: %q", ErrStubNotFound, stub)
	}

	s.recordAudit(ctx, actor, "stub.delete", stub, map[string]any{"slots": deleted})
	s.invalidateHints(ctx)
	return deleted, nil
}

func (s *Service) recordAudit(ctx context.Context, actor *shared.Token, action, stub string, meta map[string]any) {
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
		Entity:   "invoice_stub",
		EntityID: stub,
		Meta:     meta,
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.Any("error", err), slog.String("action", action))
	}
}

func (s *Service) cachedHints(ctx context.Context) (LatestInvoiceInfo, bool) {
	if s.cache == nil {
		return LatestInvoiceInfo{}, false
	}
	payload, err := s.cache.Get(ctx, hintCacheKey).Bytes()
	if err != nil {
		return LatestInvoiceInfo{}, false
	}
	var info LatestInvoiceInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return LatestInvoiceInfo{}, false
	}
	return info, true
}

func (s *Service) storeHints(ctx context.Context, info LatestInvoiceInfo) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(info)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, hintCacheKey, payload, 30*time.Second).Err()
}

func (s *Service) invalidateHints(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, hintCacheKey).Err()
}
