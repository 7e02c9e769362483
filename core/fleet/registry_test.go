package fleet

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/sirene/core/model"
)

func testUnits() []model.Unit {
	return []model.Unit{
		{ID: "a1", Type: model.UnitAmbulance, Position: model.Coordinate{Lat: 1, Lon: 1}, Status: model.UnitAvailable},
		{ID: "a2", Type: model.UnitAmbulance, Position: model.Coordinate{Lat: 2, Lon: 2}, Status: model.UnitBusy},
		{ID: "p1", Type: model.UnitPolice, Position: model.Coordinate{Lat: 3, Lon: 3}, Status: model.UnitAvailable},
	}
}

func TestRegistry_ListOrderIsLoadOrder(t *testing.T) {
	units := []model.Unit{
		{ID: "z", Type: model.UnitFire, Status: model.UnitAvailable},
		{ID: "a", Type: model.UnitFire, Status: model.UnitAvailable},
		{ID: "m", Type: model.UnitFire, Status: model.UnitAvailable},
	}
	r, err := NewRegistry(units, nil)
	require.NoError(t, err)
	got := r.ListByTypeAndStatus(model.UnitFire, model.UnitAvailable)
	require.Len(t, got, 3)
	for i, want := range []string{"z", "a", "m"} {
		require.Equal(t, want, got[i].ID)
	}
}

func TestRegistry_DuplicateID(t *testing.T) {
	units := []model.Unit{{ID: "a1", Type: model.UnitFire}, {ID: "a1", Type: model.UnitFire}}
	if _, err := NewRegistry(units, nil); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestRegistry_Reserve(t *testing.T) {
	r, err := NewRegistry(testUnits(), nil)
	require.NoError(t, err)

	require.NoError(t, r.Reserve("a1"))

	err = r.Reserve("a1")
	var busy UnitBusyError
	require.True(t, errors.As(err, &busy))
	require.Equal(t, "a1", busy.ID)

	err = r.Reserve("nope")
	var nf UnitNotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestRegistry_ConcurrentReserve_OneWinner(t *testing.T) {
	r, err := NewRegistry(testUnits(), nil)
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Reserve("p1") == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)
	n := 0
	for range wins {
		n++
	}
	require.Equal(t, 1, n, "exactly one reservation must win")
}

func TestRegistry_ResetAll(t *testing.T) {
	r, err := NewRegistry(testUnits(), nil)
	require.NoError(t, err)
	require.NoError(t, r.Reserve("a1"))

	n := r.ResetAll()
	require.Equal(t, 2, n) // a2 was busy at load, a1 was reserved

	units, _ := r.Snapshot()
	for _, u := range units {
		require.Equal(t, model.UnitAvailable, u.Status)
	}
}

func TestRegistry_ResetAll_KeepsPositions(t *testing.T) {
	r, err := NewRegistry(testUnits(), nil)
	require.NoError(t, err)
	r.ResetAll()
	units, _ := r.Snapshot()
	require.Equal(t, model.Coordinate{Lat: 2, Lon: 2}, units[1].Position)
}

func TestRegistry_UpdatePositionIfAvailable(t *testing.T) {
	r, err := NewRegistry(testUnits(), nil)
	require.NoError(t, err)

	moved, err := r.UpdatePositionIfAvailable("a1", model.Coordinate{Lat: 9, Lon: 9}, "s1")
	require.NoError(t, err)
	require.True(t, moved)

	// a2 is busy: the update is skipped silently
	moved, err = r.UpdatePositionIfAvailable("a2", model.Coordinate{Lat: 9, Lon: 9}, "s1")
	require.NoError(t, err)
	require.False(t, moved)

	units, _ := r.Snapshot()
	require.Equal(t, model.Coordinate{Lat: 9, Lon: 9}, units[0].Position)
	require.Equal(t, "s1", units[0].StationID)
	require.Equal(t, model.Coordinate{Lat: 2, Lon: 2}, units[1].Position)

	_, err = r.UpdatePositionIfAvailable("nope", model.Coordinate{}, "")
	var nf UnitNotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestRegistry_SnapshotIsCopy(t *testing.T) {
	r, err := NewRegistry(testUnits(), nil)
	require.NoError(t, err)
	units, _ := r.Snapshot()
	units[0].Status = model.UnitBusy
	units[0].Position = model.Coordinate{Lat: 99, Lon: 99}

	fresh, _ := r.Snapshot()
	require.Equal(t, model.UnitAvailable, fresh[0].Status)
	require.Equal(t, model.Coordinate{Lat: 1, Lon: 1}, fresh[0].Position)
}

func TestRegistry_Release(t *testing.T) {
	r, err := NewRegistry(testUnits(), nil)
	require.NoError(t, err)
	require.NoError(t, r.Reserve("a1"))
	require.NoError(t, r.Release("a1"))
	require.NoError(t, r.Reserve("a1"))

	var nf UnitNotFoundError
	require.True(t, errors.As(r.Release("ghost"), &nf))
}
