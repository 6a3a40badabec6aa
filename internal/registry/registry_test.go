package registry

import (
	"sync"
	"testing"

	"github.com/MRSt3Ss/rat2/internal/models"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestUpsertCreatesAndMerges(t *testing.T) {
	r := New()

	device, created := r.Upsert("10.0.0.5", models.DeviceUpdate{
		IP:    strPtr("10.0.0.5"),
		Model: strPtr("Pixel 7"),
	})
	require.True(t, created)
	require.Equal(t, "Pixel 7", device.Model)
	require.True(t, device.Connected)
	require.False(t, device.LastSeen.IsZero())

	// Later partial update keeps earlier fields, overwrites supplied ones
	device, created = r.Upsert("10.0.0.5", models.DeviceUpdate{
		Battery: intPtr(81),
	})
	require.False(t, created)
	require.Equal(t, "Pixel 7", device.Model)
	require.Equal(t, 81, device.Battery)

	device, created = r.Upsert("10.0.0.5", models.DeviceUpdate{
		Model:   strPtr("Pixel 8"),
		Battery: intPtr(80),
	})
	require.False(t, created)
	require.Equal(t, "Pixel 8", device.Model)
	require.Equal(t, 80, device.Battery)
}

func TestSelectUnknownDeviceLeavesSelectionUnchanged(t *testing.T) {
	r := New()
	r.Upsert("dev-1", models.DeviceUpdate{})

	_, err := r.Select("dev-1")
	require.NoError(t, err)

	_, err = r.Select("dev-2")
	require.ErrorIs(t, err, models.ErrDeviceNotFound)

	selected, ok := r.Selected()
	require.True(t, ok)
	require.Equal(t, "dev-1", selected)
}

func TestSelectedEmptyByDefault(t *testing.T) {
	r := New()

	_, ok := r.Selected()
	require.False(t, ok)
}

func TestListReturnsAllDevices(t *testing.T) {
	r := New()
	r.Upsert("dev-1", models.DeviceUpdate{})
	r.Upsert("dev-2", models.DeviceUpdate{})
	r.Upsert("dev-1", models.DeviceUpdate{})

	devices := r.List()
	require.Len(t, devices, 2)
}

func TestGetReturnsSnapshot(t *testing.T) {
	r := New()

	_, ok := r.Get("missing")
	require.False(t, ok)

	r.Upsert("dev-1", models.DeviceUpdate{Model: strPtr("Pixel 7")})
	device, ok := r.Get("dev-1")
	require.True(t, ok)
	require.Equal(t, "Pixel 7", device.Model)
}

func TestConcurrentUpserts(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			battery := n
			r.Upsert("dev-1", models.DeviceUpdate{Battery: &battery})
			r.List()
		}(i)
	}
	wg.Wait()

	device, ok := r.Get("dev-1")
	require.True(t, ok)
	require.True(t, device.Connected)
}
