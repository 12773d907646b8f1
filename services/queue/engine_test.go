package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	queueRepo "winqroo/database/repository/queue"
	serviceRepo "winqroo/database/repository/service"
	"winqroo/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalogStub is a fixed in-memory service catalog.
type catalogStub struct {
	services map[string]models.Service
}

func (c *catalogStub) Create(_ context.Context, svc models.Service) (string, error) {
	c.services[svc.ID] = svc
	return svc.ID, nil
}

func (c *catalogStub) GetByID(_ context.Context, id string) (*models.Service, error) {
	svc, ok := c.services[id]
	if !ok {
		return nil, serviceRepo.ErrNotFound
	}
	return &svc, nil
}

func (c *catalogStub) GetByIDs(_ context.Context, ids []string) ([]models.Service, error) {
	out := make([]models.Service, 0, len(ids))
	for _, id := range ids {
		svc, ok := c.services[id]
		if !ok || !svc.IsActive {
			return nil, serviceRepo.ErrNotFound
		}
		out = append(out, svc)
	}
	return out, nil
}

func (c *catalogStub) ListByShop(_ context.Context, shopID string, _ bool) ([]models.Service, error) {
	var out []models.Service
	for _, svc := range c.services {
		if svc.ShopID == shopID {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (c *catalogStub) Update(_ context.Context, svc models.Service) error {
	c.services[svc.ID] = svc
	return nil
}

func (c *catalogStub) Deactivate(_ context.Context, id string) error {
	svc := c.services[id]
	svc.IsActive = false
	c.services[id] = svc
	return nil
}

func newTestEngine() *DefaultQueueService {
	catalog := &catalogStub{services: map[string]models.Service{
		"cut":   {ID: "cut", ShopID: "shop-1", Name: "Classic Haircut", Duration: 30, Price: 150, IsActive: true},
		"beard": {ID: "beard", ShopID: "shop-1", Name: "Beard Trim", Duration: 20, Price: 80, IsActive: true},
		"shave": {ID: "shave", ShopID: "shop-1", Name: "Hot Towel Shave", Duration: 25, Price: 120, IsActive: true},
	}}
	return &DefaultQueueService{
		Repo:     queueRepo.NewMemoryQueueRepo(),
		Services: catalog,
	}
}

func join(t *testing.T, svc *DefaultQueueService, customer string, req JoinRequest) *models.QueueEntry {
	t.Helper()
	if req.ShopID == "" {
		req.ShopID = "shop-1"
	}
	if len(req.ServiceIDs) == 0 {
		req.ServiceIDs = []string{"cut"}
	}
	if req.CustomerType == "" {
		req.CustomerType = models.CustomerStandard
	}
	if req.PaymentOption == "" {
		req.PaymentOption = models.PayAtShop
	}
	req.CustomerID = customer

	entry, err := svc.Join(context.Background(), req)
	require.NoError(t, err)
	return entry
}

// requireDensePositions asserts active positions are exactly 1..n in order.
func requireDensePositions(t *testing.T, svc *DefaultQueueService, shopID string) []models.QueueEntry {
	t.Helper()
	active, err := svc.ListActive(context.Background(), shopID)
	require.NoError(t, err)
	for i, e := range active {
		require.Equal(t, i+1, e.Position, "positions must stay dense and gap-free")
	}
	return active
}

func TestJoin_FIFOForStandardCustomers(t *testing.T) {
	svc := newTestEngine()

	a := join(t, svc, "alice", JoinRequest{})
	b := join(t, svc, "bob", JoinRequest{})
	c := join(t, svc, "carol", JoinRequest{})

	assert.Equal(t, 1, a.Position)
	assert.Equal(t, 2, b.Position)
	assert.Equal(t, 3, c.Position)

	assert.Equal(t, 0, a.EstimatedWait)
	assert.Equal(t, 30, b.EstimatedWait)
	assert.Equal(t, 60, c.EstimatedWait)

	assert.InDelta(t, 150.0, a.QuotedPrice, 1e-9)
	requireDensePositions(t, svc, "shop-1")
}

func TestJoin_CombinesMultipleServices(t *testing.T) {
	svc := newTestEngine()

	entry := join(t, svc, "alice", JoinRequest{ServiceIDs: []string{"cut", "beard"}})

	assert.Equal(t, 50, entry.ServiceDuration)
	assert.InDelta(t, 230.0, entry.QuotedPrice, 1e-9)
}

func TestJoin_VIPJumpsAheadAndPaysSurcharge(t *testing.T) {
	svc := newTestEngine()

	join(t, svc, "alice", JoinRequest{})
	join(t, svc, "bob", JoinRequest{})

	vip := join(t, svc, "vera", JoinRequest{
		CustomerType:  models.CustomerVIP,
		PaymentOption: models.PayNow,
	})

	assert.Equal(t, 1, vip.Position)
	assert.Equal(t, 0, vip.EstimatedWait)
	assert.InDelta(t, 375.0, vip.QuotedPrice, 1e-9)

	// Everyone behind shifted up by one and got a fresh estimate.
	active := requireDensePositions(t, svc, "shop-1")
	require.Len(t, active, 3)
	assert.Equal(t, "vera", active[0].CustomerID)
	assert.Equal(t, "alice", active[1].CustomerID)
	assert.Equal(t, 30, active[1].EstimatedWait)
	assert.Equal(t, "bob", active[2].CustomerID)
	assert.Equal(t, 60, active[2].EstimatedWait)
}

func TestJoin_SecondVIPQueuesBehindFirst(t *testing.T) {
	svc := newTestEngine()

	join(t, svc, "vera", JoinRequest{CustomerType: models.CustomerVIP, PaymentOption: models.PayNow})
	join(t, svc, "alice", JoinRequest{})
	second := join(t, svc, "victor", JoinRequest{CustomerType: models.CustomerVIP, PaymentOption: models.PayNow})

	assert.Equal(t, 2, second.Position)

	active := requireDensePositions(t, svc, "shop-1")
	assert.Equal(t, "vera", active[0].CustomerID)
	assert.Equal(t, "victor", active[1].CustomerID)
	assert.Equal(t, "alice", active[2].CustomerID)
}

func TestJoin_RegularRanksBetweenVIPAndStandard(t *testing.T) {
	svc := newTestEngine()

	join(t, svc, "vera", JoinRequest{CustomerType: models.CustomerVIP, PaymentOption: models.PayNow})
	join(t, svc, "alice", JoinRequest{})
	regular := join(t, svc, "rita", JoinRequest{
		CustomerType:  models.CustomerRegular,
		PaymentOption: models.PayNow,
	})

	assert.Equal(t, 2, regular.Position)
	// Regulars are fast-tracked without the surcharge.
	assert.InDelta(t, 150.0, regular.QuotedPrice, 1e-9)
}

func TestJoin_PriorityRequiresOnlinePayment(t *testing.T) {
	svc := newTestEngine()
	join(t, svc, "alice", JoinRequest{})

	_, err := svc.Join(context.Background(), JoinRequest{
		ShopID:        "shop-1",
		ServiceIDs:    []string{"cut"},
		CustomerID:    "vera",
		CustomerType:  models.CustomerVIP,
		PaymentOption: models.PayAtShop,
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodePaymentRequired))

	// The rejected admission must leave the line untouched.
	active := requireDensePositions(t, svc, "shop-1")
	require.Len(t, active, 1)
	assert.Equal(t, "alice", active[0].CustomerID)
	assert.Equal(t, 0, active[0].EstimatedWait)
}

func TestJoin_EmergencyRequiresOnlinePayment(t *testing.T) {
	svc := newTestEngine()

	_, err := svc.Join(context.Background(), JoinRequest{
		ShopID:        "shop-1",
		ServiceIDs:    []string{"cut"},
		CustomerID:    "eve",
		CustomerType:  models.CustomerStandard,
		IsEmergency:   true,
		PaymentOption: models.PayAtShop,
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodePaymentRequired))
}

func TestJoin_RejectsSecondActiveEntryAcrossShops(t *testing.T) {
	svc := newTestEngine()
	join(t, svc, "alice", JoinRequest{})

	// Same customer, different shop: still rejected while the first entry is active.
	_, err := svc.Join(context.Background(), JoinRequest{
		ShopID:        "shop-2",
		ServiceIDs:    []string{"cut"},
		CustomerID:    "alice",
		CustomerType:  models.CustomerStandard,
		PaymentOption: models.PayAtShop,
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeDuplicateActiveEntry))
}

func TestJoin_AllowedAgainAfterTerminalStatus(t *testing.T) {
	svc := newTestEngine()
	ctx := context.Background()

	first := join(t, svc, "alice", JoinRequest{})
	_, err := svc.UpdateStatus(ctx, first.ID, models.QueueStatusCancelled)
	require.NoError(t, err)

	second := join(t, svc, "alice", JoinRequest{})
	assert.Equal(t, 1, second.Position)
}

func TestJoin_UnknownServiceRejected(t *testing.T) {
	svc := newTestEngine()

	_, err := svc.Join(context.Background(), JoinRequest{
		ShopID:        "shop-1",
		ServiceIDs:    []string{"cut", "perm"},
		CustomerID:    "alice",
		CustomerType:  models.CustomerStandard,
		PaymentOption: models.PayAtShop,
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeNotFound))
}

func TestUpdateStatus_StartClearsOwnWait(t *testing.T) {
	svc := newTestEngine()
	ctx := context.Background()

	a := join(t, svc, "alice", JoinRequest{})
	b := join(t, svc, "bob", JoinRequest{})

	started, err := svc.UpdateStatus(ctx, a.ID, models.QueueStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStatusInProgress, started.Status)
	assert.Equal(t, 0, started.EstimatedWait)
	require.NotNil(t, started.StartedAt)

	// Starting service does not renumber anyone.
	got, err := svc.GetEntry(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Position)
}

func TestUpdateStatus_CompletionRenumbersAndFreezesHistory(t *testing.T) {
	svc := newTestEngine()
	ctx := context.Background()

	a := join(t, svc, "alice", JoinRequest{})
	b := join(t, svc, "bob", JoinRequest{})
	c := join(t, svc, "carol", JoinRequest{})

	_, err := svc.UpdateStatus(ctx, a.ID, models.QueueStatusInProgress)
	require.NoError(t, err)
	done, err := svc.UpdateStatus(ctx, a.ID, models.QueueStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)

	// The completed entry keeps its historical position.
	assert.Equal(t, 1, done.Position)

	// Everyone behind compacts down and re-estimates.
	active := requireDensePositions(t, svc, "shop-1")
	require.Len(t, active, 2)
	assert.Equal(t, b.ID, active[0].ID)
	assert.Equal(t, 0, active[0].EstimatedWait)
	assert.Equal(t, c.ID, active[1].ID)
	assert.Equal(t, 30, active[1].EstimatedWait)
}

func TestUpdateStatus_CancellingMidQueueCompacts(t *testing.T) {
	svc := newTestEngine()
	ctx := context.Background()

	join(t, svc, "alice", JoinRequest{})
	b := join(t, svc, "bob", JoinRequest{})
	c := join(t, svc, "carol", JoinRequest{})

	cancelled, err := svc.UpdateStatus(ctx, b.ID, models.QueueStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 2, cancelled.Position)

	active := requireDensePositions(t, svc, "shop-1")
	require.Len(t, active, 2)
	assert.Equal(t, c.ID, active[1].ID)
	assert.Equal(t, 2, active[1].Position)
	assert.Equal(t, 30, active[1].EstimatedWait)
}

func TestUpdateStatus_InvalidTransitions(t *testing.T) {
	svc := newTestEngine()
	ctx := context.Background()

	a := join(t, svc, "alice", JoinRequest{})

	_, err := svc.UpdateStatus(ctx, a.ID, models.QueueStatusCompleted)
	assert.True(t, IsCode(err, CodeInvalidTransition), "waiting cannot complete without being served")

	_, err = svc.UpdateStatus(ctx, a.ID, models.QueueStatusNoShow)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, a.ID, models.QueueStatusWaiting)
	assert.True(t, IsCode(err, CodeInvalidTransition), "terminal states are final")
}

func TestUpdateStatus_UnknownEntry(t *testing.T) {
	svc := newTestEngine()

	_, err := svc.UpdateStatus(context.Background(), "missing", models.QueueStatusCancelled)
	assert.True(t, IsCode(err, CodeNotFound))
}

func TestSwap_ExchangesPositionsAndEstimates(t *testing.T) {
	svc := newTestEngine()
	ctx := context.Background()

	a := join(t, svc, "alice", JoinRequest{ServiceIDs: []string{"cut"}})
	b := join(t, svc, "bob", JoinRequest{ServiceIDs: []string{"shave"}})

	require.NoError(t, svc.Swap(ctx, a.ID, b.ID))

	active := requireDensePositions(t, svc, "shop-1")
	require.Len(t, active, 2)
	assert.Equal(t, b.ID, active[0].ID)
	assert.Equal(t, 0, active[0].EstimatedWait)
	assert.Equal(t, a.ID, active[1].ID)
	assert.Equal(t, 25, active[1].EstimatedWait)
}

func TestSwap_RejectsCrossShopPairs(t *testing.T) {
	svc := newTestEngine()
	ctx := context.Background()

	a := join(t, svc, "alice", JoinRequest{ShopID: "shop-1"})
	b := join(t, svc, "bob", JoinRequest{ShopID: "shop-2"})

	err := svc.Swap(ctx, a.ID, b.ID)
	assert.True(t, IsCode(err, CodeScopeMismatch))
}

func TestSwap_RequiresBothEntriesActive(t *testing.T) {
	svc := newTestEngine()
	ctx := context.Background()

	a := join(t, svc, "alice", JoinRequest{})
	b := join(t, svc, "bob", JoinRequest{})
	_, err := svc.UpdateStatus(ctx, a.ID, models.QueueStatusCancelled)
	require.NoError(t, err)

	err = svc.Swap(ctx, a.ID, b.ID)
	assert.True(t, IsCode(err, CodeConflict))
}

func TestEmergencyWalkInReordersTheAfternoon(t *testing.T) {
	svc := newTestEngine()
	ctx := context.Background()

	alice := join(t, svc, "alice", JoinRequest{ServiceIDs: []string{"cut"}})
	bob := join(t, svc, "bob", JoinRequest{ServiceIDs: []string{"cut"}})
	assert.Equal(t, 30, bob.EstimatedWait)

	eve := join(t, svc, "eve", JoinRequest{
		ServiceIDs:      []string{"shave"},
		IsEmergency:     true,
		EmergencyReason: "wedding in an hour",
		PaymentOption:   models.PayNow,
	})

	assert.Equal(t, 1, eve.Position)
	assert.Equal(t, 0, eve.EstimatedWait)
	assert.InDelta(t, 300.0, eve.QuotedPrice, 1e-9)

	active := requireDensePositions(t, svc, "shop-1")
	require.Len(t, active, 3)
	assert.Equal(t, alice.ID, active[1].ID)
	assert.Equal(t, 25, active[1].EstimatedWait)
	assert.Equal(t, bob.ID, active[2].ID)
	assert.Equal(t, 55, active[2].EstimatedWait)

	// Once the emergency is done the line compacts back.
	_, err := svc.UpdateStatus(ctx, eve.ID, models.QueueStatusInProgress)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, eve.ID, models.QueueStatusCompleted)
	require.NoError(t, err)

	active = requireDensePositions(t, svc, "shop-1")
	require.Len(t, active, 2)
	assert.Equal(t, alice.ID, active[0].ID)
	assert.Equal(t, 0, active[0].EstimatedWait)
	assert.Equal(t, bob.ID, active[1].ID)
	assert.Equal(t, 30, active[1].EstimatedWait)
}

func TestJoin_ConcurrentJoinsStayDense(t *testing.T) {
	svc := newTestEngine()
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Join(ctx, JoinRequest{
				ShopID:        "shop-1",
				ServiceIDs:    []string{"cut"},
				CustomerID:    fmt.Sprintf("customer-%d", i),
				CustomerType:  models.CustomerStandard,
				PaymentOption: models.PayAtShop,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// No two racing admissions may land on the same position.
	active := requireDensePositions(t, svc, "shop-1")
	require.Len(t, active, n)
}

func TestJoin_ConcurrentCrossShopJoinsBySameCustomer(t *testing.T) {
	svc := newTestEngine()
	ctx := context.Background()

	shops := []string{"shop-1", "shop-2"}
	errs := make([]error, len(shops))
	var wg sync.WaitGroup
	for i := range shops {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Join(ctx, JoinRequest{
				ShopID:        shops[i],
				ServiceIDs:    []string{"cut"},
				CustomerID:    "dave",
				CustomerType:  models.CustomerStandard,
				PaymentOption: models.PayAtShop,
			})
		}(i)
	}
	wg.Wait()

	admitted := 0
	for _, err := range errs {
		switch {
		case err == nil:
			admitted++
		case IsCode(err, CodeDuplicateActiveEntry):
		default:
			t.Fatalf("unexpected join error: %v", err)
		}
	}
	require.Equal(t, 1, admitted, "exactly one of the racing joins may be admitted")

	total := 0
	for _, shop := range shops {
		active, err := svc.ListActive(ctx, shop)
		require.NoError(t, err)
		total += len(active)
	}
	assert.Equal(t, 1, total)
}

func TestListCustomerQueues_NewestFirst(t *testing.T) {
	svc := newTestEngine()
	ctx := context.Background()

	first := join(t, svc, "alice", JoinRequest{})
	_, err := svc.UpdateStatus(ctx, first.ID, models.QueueStatusCancelled)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second := join(t, svc, "alice", JoinRequest{})

	history, err := svc.ListCustomerQueues(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)
}
