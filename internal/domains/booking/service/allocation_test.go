package service_test

import (
	"context"
	"fmt"
	"hostel/config"
	"hostel/infras/kafka"
	otelMocks "hostel/infras/otel/mocks"
	"hostel/infras/storage"
	"hostel/internal/domains/booking/model"
	"hostel/internal/domains/booking/model/dto"
	"hostel/internal/domains/booking/repository"
	"hostel/internal/domains/booking/service"
	"hostel/internal/domains/inventory"
	userMocks "hostel/internal/domains/user/mocks"
	"hostel/shared/cache"
	gDto "hostel/shared/dto"
	"hostel/shared/failure"
	gRepo "hostel/shared/repository"
	"math/rand/v2"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type bedKey struct{ floor, room, bed int }

// memoryStore is a booking store with the same unique bed index as the schema.
type memoryStore struct {
	mu    sync.Mutex
	byID  map[string]model.Booking
	byBed map[bedKey]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{byID: map[string]model.Booking{}, byBed: map[bedKey]string{}}
}

func keyOf(b model.Booking) bedKey { return bedKey{b.Floor, b.Room, b.Bed} }

func (m *memoryStore) Insert(_ context.Context, booking model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byBed[keyOf(booking)]; taken {
		return fmt.Errorf("insert: %w", repository.ErrBedTaken)
	}

	m.byID[booking.ID] = booking
	m.byBed[keyOf(booking)] = booking.ID

	return nil
}

func (m *memoryStore) GetByID(_ context.Context, id string) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	booking, ok := m.byID[id]
	if !ok {
		return model.Booking{}, gRepo.ErrNotFound
	}

	return booking, nil
}

func (m *memoryStore) GetAll(_ context.Context, _ gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]model.Booking, 0, len(m.byID))
	for _, booking := range m.byID {
		all = append(all, booking)
	}

	return all, nil
}

func (m *memoryStore) Count(_ context.Context, _ gDto.FilterGroup) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.byID), nil
}

func (m *memoryStore) FindByRoom(_ context.Context, floor, room int) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found []model.Booking

	for _, booking := range m.byID {
		if booking.Floor == floor && booking.Room == room {
			found = append(found, booking)
		}
	}

	return found, nil
}

func (m *memoryStore) FindOccupant(_ context.Context, floor, room, bed int, excludeID string) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byBed[bedKey{floor, room, bed}]
	if !ok || id == excludeID {
		return model.Booking{}, gRepo.ErrNotFound
	}

	return m.byID[id], nil
}

func (m *memoryStore) UpdatePlacement(_ context.Context, id string, floor, room, bed int, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	booking, ok := m.byID[id]
	if !ok {
		return gRepo.ErrNotFound
	}

	target := bedKey{floor, room, bed}
	if holder, taken := m.byBed[target]; taken && holder != id {
		return fmt.Errorf("update: %w", repository.ErrBedTaken)
	}

	delete(m.byBed, keyOf(booking))

	booking.Floor, booking.Room, booking.Bed = floor, room, bed
	m.byID[id] = booking
	m.byBed[target] = id

	return nil
}

func (m *memoryStore) Delete(_ context.Context, filter gDto.FilterGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, args := filter.GetWhereClause()
	id, _ := args[model.FieldID].(string)

	booking, ok := m.byID[id]
	if !ok {
		return gRepo.ErrNotFound
	}

	delete(m.byID, id)
	delete(m.byBed, keyOf(booking))

	return nil
}

// stallingStore parks the first read of method after it loaded its rows,
// until release is closed.
type stallingStore struct {
	*memoryStore
	method  string
	stalled atomic.Bool
	loaded  chan struct{}
	release chan struct{}
}

func newStallingStore(method string) *stallingStore {
	return &stallingStore{
		memoryStore: newMemoryStore(),
		method:      method,
		loaded:      make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (s *stallingStore) stall(method string) {
	if method != s.method || !s.stalled.CompareAndSwap(false, true) {
		return
	}

	close(s.loaded)
	<-s.release
}

func (s *stallingStore) FindByRoom(ctx context.Context, floor, room int) ([]model.Booking, error) {
	found, err := s.memoryStore.FindByRoom(ctx, floor, room)
	s.stall("FindByRoom")

	return found, err
}

func (s *stallingStore) GetByID(ctx context.Context, id string) (model.Booking, error) {
	found, err := s.memoryStore.GetByID(ctx, id)
	s.stall("GetByID")

	return found, err
}

func setupAllocation(t *testing.T) service.Booking {
	t.Helper()

	return setupAllocationWith(t, newMemoryStore())
}

func setupAllocationWith(t *testing.T, repo repository.Booking) service.Booking {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ot := otelMocks.NewOtel()
	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	return service.New(
		repo,
		userMocks.NewMockUser(gomock.NewController(t)),
		inventory.Default(),
		storage.NewLocal(t.TempDir(), "/uploads", ot),
		kafka.New(cfg, ot),
		cfg,
		cache.NewRedisCache(client, ot),
		ot,
	)
}

func guest(name string, floor, room, bed int) dto.CreateBookingRequest {
	return dto.CreateBookingRequest{Name: name, Phone: "9000000000", JoinDate: "2024-01-15", Floor: floor, Room: room, Bed: bed}
}

func bookedBeds(status dto.RoomStatusResponse) []int {
	beds := make([]int, len(status.Booked))
	for i, occupant := range status.Booked {
		beds[i] = occupant.Bed
	}

	return beds
}

func TestAllocation_CreateThenStatus(t *testing.T) {
	svc := setupAllocation(t)
	ctx := context.Background()

	before, err := svc.RoomStatus(ctx, 2, 3)
	require.NoError(t, err)
	require.Contains(t, before.Available, 2)

	_, err = svc.Create(ctx, guest("Asha", 2, 3, 2), nil)
	require.NoError(t, err)

	after, err := svc.RoomStatus(ctx, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []inventory.Occupant{{Bed: 2, Name: "Asha"}}, after.Booked)
	assert.Equal(t, []int{1, 3}, after.Available)

	_, err = svc.Create(ctx, guest("Late", 2, 3, 2), nil)
	require.Error(t, err)
	assert.Equal(t, "Bed already booked by: Asha", err.Error())
}

func TestAllocation_ShiftAndDelete(t *testing.T) {
	svc := setupAllocation(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, guest("Ravi", 1, 1, 1), nil)
	require.NoError(t, err)

	_, err = svc.RoomStatus(ctx, 3, 4)
	require.NoError(t, err)

	res, err := svc.Shift(ctx, dto.ShiftRequest{BookingID: created.ID, ToFloor: 1, ToRoom: 1, ToBed: 1})
	require.NoError(t, err)
	assert.True(t, res.Success, "moving onto its own bed is a no-op")

	res, err = svc.Shift(ctx, dto.ShiftRequest{BookingID: created.ID, ToFloor: 3, ToRoom: 4, ToBed: 3})
	require.NoError(t, err)
	require.True(t, res.Success)

	source, err := svc.RoomStatus(ctx, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, source.Booked)

	destination, err := svc.RoomStatus(ctx, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, []inventory.Occupant{{Bed: 3, Name: "Ravi"}}, destination.Booked)

	require.NoError(t, svc.Delete(ctx, created.ID))

	freed, err := svc.RoomStatus(ctx, 3, 4)
	require.NoError(t, err)
	assert.Empty(t, freed.Booked)
	assert.Equal(t, []int{1, 2, 3}, freed.Available)
}

func TestAllocation_ConcurrentCreateSingleWinner(t *testing.T) {
	svc := setupAllocation(t)

	const racers = 16

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
		start   = make(chan struct{})
	)

	for i := range racers {
		wg.Add(1)

		go func() {
			defer wg.Done()
			<-start

			if _, err := svc.Create(context.Background(), guest(fmt.Sprintf("guest-%d", i), 4, 3, 3), nil); err == nil {
				winners.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())

	status, err := svc.RoomStatus(context.Background(), 4, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, bookedBeds(status))
}

func TestAllocation_RandomOperationsKeepPartition(t *testing.T) {
	svc := setupAllocation(t)
	ctx := context.Background()
	topology := inventory.Default()
	rng := rand.New(rand.NewPCG(7, 11))

	var ids []string

	for step := range 300 {
		floors := topology.Floors()
		floor := floors[rng.IntN(len(floors))]
		rooms := topology.Rooms(floor)
		room := rooms[rng.IntN(len(rooms))]
		capacity, _ := topology.Capacity(floor, room)
		bed := rng.IntN(capacity+1) + 1

		switch op := rng.IntN(3); {
		case op == 0 || len(ids) == 0:
			if created, err := svc.Create(ctx, guest(fmt.Sprintf("g%d", step), floor, room, bed), nil); err == nil {
				ids = append(ids, created.ID)
			}
		case op == 1:
			_, err := svc.Shift(ctx, dto.ShiftRequest{BookingID: ids[rng.IntN(len(ids))], ToFloor: floor, ToRoom: room, ToBed: bed})
			require.NoError(t, err)
		default:
			idx := rng.IntN(len(ids))
			require.NoError(t, svc.Delete(ctx, ids[idx]))
			ids = slices.Delete(ids, idx, idx+1)
		}

		status, err := svc.RoomStatus(ctx, floor, room)
		require.NoError(t, err)

		all := append(bookedBeds(status), status.Available...)
		slices.Sort(all)

		want := make([]int, capacity)
		for i := range want {
			want[i] = i + 1
		}

		require.Equal(t, want, all, "floor %d room %d after step %d", floor, room, step)
	}
}

func TestAllocation_StatusReadOvertakenByDelete(t *testing.T) {
	store := newStallingStore("FindByRoom")
	svc := setupAllocationWith(t, store)
	ctx := context.Background()

	asha, err := svc.Create(ctx, guest("Asha", 1, 1, 1), nil)
	require.NoError(t, err)

	read := make(chan error, 1)

	go func() {
		_, err := svc.RoomStatus(ctx, 1, 1)
		read <- err
	}()

	<-store.loaded
	require.NoError(t, svc.Delete(ctx, asha.ID))
	close(store.release)
	require.NoError(t, <-read)

	status, err := svc.RoomStatus(ctx, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, status.Booked)
	assert.Equal(t, []int{1, 2}, status.Available)
}

func TestAllocation_GetOvertakenByDelete(t *testing.T) {
	store := newStallingStore("GetByID")
	svc := setupAllocationWith(t, store)
	ctx := context.Background()

	asha, err := svc.Create(ctx, guest("Asha", 1, 1, 1), nil)
	require.NoError(t, err)

	read := make(chan error, 1)

	go func() {
		_, err := svc.Get(ctx, asha.ID)
		read <- err
	}()

	<-store.loaded
	require.NoError(t, svc.Delete(ctx, asha.ID))
	close(store.release)
	require.NoError(t, <-read)

	_, err = svc.Get(ctx, asha.ID)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))

	listed, err := svc.GetAll(ctx, gDto.QueryParams{}, gDto.FilterGroup{})
	require.NoError(t, err)
	assert.Empty(t, listed.Bookings)
}
