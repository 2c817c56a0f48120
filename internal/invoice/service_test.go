package invoice

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
)

type memoryRepo struct {
	slots       map[int64]*InvoiceSlot
	nextID      int64
	createCalls int
	renameCalls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{slots: make(map[int64]*InvoiceSlot)}
}

func (r *memoryRepo) CreateRange(ctx context.Context, stub string, start, end int64) (int, error) {
	r.createCalls++
	// Mirrors the transactional insert: either the whole range or nothing.
	for no := start; no <= end; no++ {
		if r.hasNumber(no) {
			return 0, fmt.Errorf("%w: [%d, %d]", ErrRangeConflict, start, end)
		}
	}
	created := 0
	for no := start; no <= end; no++ {
		r.nextID++
		r.slots[r.nextID] = &InvoiceSlot{
			ID:        r.nextID,
			Stub:      stub,
			InvoiceNo: no,
			Status:    SlotUnused,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		created++
	}
	return created, nil
}

func (r *memoryRepo) hasNumber(no int64) bool {
	for _, s := range r.slots {
		if s.InvoiceNo == no {
			return true
		}
	}
	return false
}

func (r *memoryRepo) RangeOverlaps(ctx context.Context, start, end int64) (bool, error) {
	for _, s := range r.slots {
		if s.InvoiceNo >= start && s.InvoiceNo <= end {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) ListStubs(ctx context.Context) ([]StubSummary, error) {
	byStub := map[string]*StubSummary{}
	for _, s := range r.slots {
		sum, ok := byStub[s.Stub]
		if !ok {
			sum = &StubSummary{Stub: s.Stub, LowestNo: s.InvoiceNo, HighestNo: s.InvoiceNo}
			byStub[s.Stub] = sum
		}
		sum.SlotCount++
		if s.Status == SlotUsed {
			sum.UsedCount++
		}
		if s.InvoiceNo < sum.LowestNo {
			sum.LowestNo = s.InvoiceNo
		}
		if s.InvoiceNo > sum.HighestNo {
			sum.HighestNo = s.InvoiceNo
		}
	}
	var out []StubSummary
	for _, sum := range byStub {
		out = append(out, *sum)
	}
	return out, nil
}

func (r *memoryRepo) ListSlots(ctx context.Context, stub string) ([]InvoiceSlot, error) {
	var out []InvoiceSlot
	for _, s := range r.slots {
		if s.Stub == stub {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memoryRepo) UpdateSlotStatus(ctx context.Context, stub string, invoiceNo int64, status SlotStatus, customerName string) (*InvoiceSlot, error) {
	for _, s := range r.slots {
		if s.Stub == stub && s.InvoiceNo == invoiceNo {
			s.Status = status
			s.CustomerName = customerName
			s.UpdatedAt = time.Now()
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%d", ErrStubNotFound, stub, invoiceNo)
}

func (r *memoryRepo) StubExists(ctx context.Context, stub string) (bool, error) {
	for _, s := range r.slots {
		if s.Stub == stub {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) RenameStub(ctx context.Context, currentStub, newStub string) (int, error) {
	r.renameCalls++
	n := 0
	for _, s := range r.slots {
		if s.Stub == currentStub {
			s.Stub = newStub
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) DeleteStub(ctx context.Context, stub string) (int, error) {
	n := 0
	for id, s := range r.slots {
		if s.Stub == stub {
			delete(r.slots, id)
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) LatestSlot(ctx context.Context) (*InvoiceSlot, error) {
	var latest *InvoiceSlot
	for _, s := range r.slots {
		if latest == nil || s.InvoiceNo > latest.InvoiceNo {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func newTestService(repo RepositoryPort) *Service {
	return NewService(repo, nil, nil, nil)
}

func TestAllocateRangeCreatesEverySlot(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.AllocateRange(ctx, AllocateRangeRequest{Stub: "101-1050", RangeStart: 1001, RangeEnd: 1050})
	require.NoError(t, err)
	require.Equal(t, 50, created)

	slots, err := svc.ListSlots(ctx, "101-1050")
	require.NoError(t, err)
	require.Len(t, slots, 50)

	seen := map[int64]bool{}
	for _, s := range slots {
		require.Equal(t, SlotUnused, s.Status)
		require.GreaterOrEqual(t, s.InvoiceNo, int64(1001))
		require.LessOrEqual(t, s.InvoiceNo, int64(1050))
		require.False(t, seen[s.InvoiceNo], "duplicate invoice number %d", s.InvoiceNo)
		seen[s.InvoiceNo] = true
	}
}

func TestAllocateRangeRejectsBeforeRepository(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	cases := []AllocateRangeRequest{
		{Stub: "", RangeStart: 1, RangeEnd: 10},
		{Stub: "s", RangeStart: 0, RangeEnd: 10},
		{Stub: "s", RangeStart: -5, RangeEnd: 10},
		{Stub: "s", RangeStart: 1, RangeEnd: 0},
		{Stub: "s", RangeStart: 20, RangeEnd: 10},
	}
	for _, tc := range cases {
		_, err := svc.AllocateRange(ctx, tc)
		require.ErrorIs(t, err, ErrInvalidRange, "request %+v", tc)
	}
	require.Zero(t, repo.createCalls, "precheck failures must not reach the repository")
}

func TestAllocateRangeConflictSkipsCreation(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.AllocateRange(ctx, AllocateRangeRequest{Stub: "old", RangeStart: 100, RangeEnd: 200})
	require.NoError(t, err)
	callsAfterFirst := repo.createCalls

	_, err = svc.AllocateRange(ctx, AllocateRangeRequest{Stub: "new", RangeStart: 150, RangeEnd: 250})
	require.ErrorIs(t, err, ErrRangeConflict)
	require.Equal(t, callsAfterFirst, repo.createCalls, "conflicting range must not attempt creation")

	// The conflict is cross-stub: a different stub does not get its own
	// number space.
	err = svc.CheckRange(ctx, AllocateRangeRequest{Stub: "another", RangeStart: 200, RangeEnd: 200})
	require.ErrorIs(t, err, ErrRangeConflict)
}

func TestListStubsSortedByNumberPartDescending(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	for _, alloc := range []AllocateRangeRequest{
		{Stub: "1-50", RangeStart: 1, RangeEnd: 50},
		{Stub: "1001-1050", RangeStart: 1001, RangeEnd: 1050},
		{Stub: "501-550", RangeStart: 501, RangeEnd: 550},
	} {
		_, err := svc.AllocateRange(ctx, alloc)
		require.NoError(t, err)
	}

	stubs, err := svc.ListStubs(ctx)
	require.NoError(t, err)
	require.Len(t, stubs, 3)
	require.Equal(t, "1001-1050", stubs[0].Stub)
	require.Equal(t, "501-550", stubs[1].Stub)
	require.Equal(t, "1-50", stubs[2].Stub)
}

func TestRenameStubRejectsDuplicateWithoutRenaming(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.AllocateRange(ctx, AllocateRangeRequest{Stub: "keep", RangeStart: 1, RangeEnd: 5})
	require.NoError(t, err)
	_, err = svc.AllocateRange(ctx, AllocateRangeRequest{Stub: "move", RangeStart: 6, RangeEnd: 10})
	require.NoError(t, err)

	_, err = svc.RenameStub(ctx, nil, RenameStubRequest{CurrentStub: "move", NewStub: "keep"})
	require.ErrorIs(t, err, ErrDuplicateStub)
	require.Zero(t, repo.renameCalls, "duplicate target must not issue the rename")

	// Case-sensitive: "KEEP" is a different label and goes through.
	renamed, err := svc.RenameStub(ctx, nil, RenameStubRequest{CurrentStub: "move", NewStub: "KEEP"})
	require.NoError(t, err)
	require.Equal(t, 5, renamed)
}

func TestDeleteStubRequiresToken(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.AllocateRange(ctx, AllocateRangeRequest{Stub: "doomed", RangeStart: 1, RangeEnd: 3})
	require.NoError(t, err)

	_, err = svc.DeleteStub(ctx, nil, "doomed")
	require.ErrorIs(t, err, shared.ErrTokenRequired)
	slots, _ := svc.ListSlots(ctx, "doomed")
	require.Len(t, slots, 3, "unauthenticated delete must not touch slots")

	deleted, err := svc.DeleteStub(ctx, &shared.Token{UserID: 9}, "doomed")
	require.NoError(t, err)
	require.Equal(t, 3, deleted)
}

func TestLatestInfoHints(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	// Empty system: hints stay blank with the literal "N/A" next number.
	info, err := svc.LatestInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, "N/A", info.NextInvoice)
	require.Empty(t, info.LatestStub)

	_, err = svc.AllocateRange(ctx, AllocateRangeRequest{Stub: "101-1050", RangeStart: 1001, RangeEnd: 1050})
	require.NoError(t, err)

	info, err = svc.LatestInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, "101-1050", info.LatestStub)
	require.Equal(t, "1050", info.LatestInvoice)
	require.Equal(t, "1051", info.NextInvoice)
}

func TestMarkAndReleaseSlot(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.AllocateRange(ctx, AllocateRangeRequest{Stub: "s", RangeStart: 1, RangeEnd: 2})
	require.NoError(t, err)

	slot, err := svc.MarkSlotUsed(ctx, "s", 1, "Grace Cargo")
	require.NoError(t, err)
	require.Equal(t, SlotUsed, slot.Status)
	require.Equal(t, "Grace Cargo", slot.CustomerName)

	slot, err = svc.ReleaseSlot(ctx, "s", 1)
	require.NoError(t, err)
	require.Equal(t, SlotUnused, slot.Status)
	require.Empty(t, slot.CustomerName)
}
