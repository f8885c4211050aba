package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Fixtures
// =============================================================================

func running(name, service, ip string, ports ...int) Container {
	return Container{
		Name:    name,
		Service: service,
		Status:  Status{Kind: StatusRunning},
		IP:      ip,
		Ports:   ports,
	}
}

// allPortsOpen pretends every probe succeeds.
func allPortsOpen(string, int) bool { return true }

// =============================================================================
// State Tests
// =============================================================================

func TestState_GroupsByService(t *testing.T) {
	state := NewState([]Container{
		running("hello_web_2", "web", "10.0.0.2", 3000),
		running("hello_web_1", "web", "10.0.0.1", 3000),
		running("hello_db_1", "db", "10.0.0.3", 5432),
	})

	web := state.ContainersFor("web")
	require.Len(t, web, 2)
	assert.Equal(t, "hello_web_1", web[0].Name, "sorted by name")
	assert.Equal(t, []string{"db", "web"}, state.Services())
}

func TestState_MissingServiceYieldsEmptySlice(t *testing.T) {
	state := NewState(nil)
	assert.Empty(t, state.ContainersFor("ghost"))
}

// =============================================================================
// Readiness Tests
// =============================================================================

func TestPodReady_AllServicesServed(t *testing.T) {
	state := NewState([]Container{
		running("hello_web_1", "web", "10.0.0.1", 3000),
		running("hello_db_1", "db", "10.0.0.2", 5432),
	})

	assert.True(t, PodReady(state, []string{"web", "db"}, allPortsOpen))
}

func TestPodReady_MissingServiceNotReady(t *testing.T) {
	state := NewState([]Container{
		running("hello_web_1", "web", "10.0.0.1", 3000),
	})

	assert.False(t, PodReady(state, []string{"web", "db"}, allPortsOpen))
}

func TestPodReady_UnreachablePortNotReady(t *testing.T) {
	state := NewState([]Container{
		running("hello_web_1", "web", "10.0.0.1", 3000, 3001),
	})
	probe := func(ip string, port int) bool { return port != 3001 }

	assert.False(t, PodReady(state, []string{"web"}, probe))
}

func TestPodReady_OneHealthyReplicaSuffices(t *testing.T) {
	state := NewState([]Container{
		{Name: "hello_web_1", Service: "web", Status: Status{Kind: StatusExited, ExitCode: 1}},
		running("hello_web_2", "web", "10.0.0.2", 3000),
	})

	assert.True(t, PodReady(state, []string{"web"}, allPortsOpen))
}

func TestPodReady_OneOffContainersNeverCount(t *testing.T) {
	oneOff := running("hello_web_run_1", "web", "10.0.0.1", 3000)
	oneOff.OneOff = true
	state := NewState([]Container{oneOff})

	assert.False(t, PodReady(state, []string{"web"}, allPortsOpen))
}

func TestPodReady_StoppedContainerNotReady(t *testing.T) {
	state := NewState([]Container{
		{Name: "hello_web_1", Service: "web", Status: Status{Kind: StatusDone}, Ports: []int{3000}},
	})

	assert.False(t, PodReady(state, []string{"web"}, allPortsOpen))
}

func TestPodReady_NoPortsMeansNoProbe(t *testing.T) {
	state := NewState([]Container{
		running("hello_worker_1", "worker", ""),
	})
	neverCalled := func(string, int) bool {
		t.Fatal("probe must not run for portless containers")
		return false
	}

	assert.True(t, PodReady(state, []string{"worker"}, neverCalled))
}

func TestPodReady_PortsWithoutAddressNotReady(t *testing.T) {
	state := NewState([]Container{
		running("hello_web_1", "web", "", 3000),
	})

	assert.False(t, PodReady(state, []string{"web"}, allPortsOpen))
}

func TestPodReady_EmptyServiceListVacuouslyReady(t *testing.T) {
	assert.True(t, PodReady(NewState(nil), nil, allPortsOpen))
}

// =============================================================================
// WaitReady Tests
// =============================================================================

func TestWaitReady_ReturnsOnceReady(t *testing.T) {
	calls := 0
	observe := func(ctx context.Context) (*State, error) {
		calls++
		if calls < 3 {
			return NewState(nil), nil
		}
		return NewState([]Container{running("hello_web_1", "web", "10.0.0.1", 3000)}), nil
	}

	err := WaitReady(context.Background(), observe, allPortsOpen, []string{"web"}, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWaitReady_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	observe := func(ctx context.Context) (*State, error) {
		cancel()
		return NewState(nil), nil
	}

	err := WaitReady(ctx, observe, allPortsOpen, []string{"web"}, time.Hour)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestWaitReady_ObserverErrorPropagates(t *testing.T) {
	boom := errors.New("engine down")
	observe := func(ctx context.Context) (*State, error) { return nil, boom }

	err := WaitReady(context.Background(), observe, allPortsOpen, []string{"web"}, time.Millisecond)
	assert.True(t, errors.Is(err, boom))
}
