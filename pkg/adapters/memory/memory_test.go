package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RobbyUitbeijerse/use-tree/pkg/adapters/memory"
	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/RobbyUitbeijerse/use-tree/pkg/ports"
)

func fixture() []memory.Item[string] {
	return []memory.Item[string]{
		{ID: "root", Data: "Root"},
		{ID: "child", Data: "Child", Parent: "root"},
		{ID: "grandchild", Data: "Grandchild", Parent: "child"},
		{ID: "other", Data: "Other"},
	}
}

func TestSource_Contract(t *testing.T) {
	source := memory.NewSource(fixture())
	ports.RunTreeSourceContract(t, source, "root", "child", "grandchild")
}

func TestStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, memory.NewStore())
}

func TestSource_FailureInjection(t *testing.T) {
	boom := errors.New("boom")
	source := memory.NewSource(fixture(),
		memory.WithChildrenError[string]("root", boom),
		memory.WithTrailError[string]("grandchild", boom),
	)
	ctx := context.Background()

	if _, err := source.Children(ctx, "root"); !errors.Is(err, boom) {
		t.Errorf("Children error = %v, want injected failure", err)
	}
	if _, err := source.Trail(ctx, "grandchild"); !errors.Is(err, boom) {
		t.Errorf("Trail error = %v, want injected failure", err)
	}

	// Other ids stay healthy.
	if _, err := source.Children(ctx, "child"); err != nil {
		t.Errorf("Children(child) = %v", err)
	}
}

func TestSource_LatencyHonorsContext(t *testing.T) {
	source := memory.NewSource(fixture(), memory.WithLatency[string](time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := source.Children(ctx, ports.RootID); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Children = %v, want deadline exceeded", err)
	}
}

func TestSource_UnknownID(t *testing.T) {
	source := memory.NewSource(fixture())
	ctx := context.Background()

	if _, err := source.Children(ctx, "nope"); !errors.Is(err, domain.ErrNodeNotFound) {
		t.Errorf("Children = %v, want ErrNodeNotFound", err)
	}
	if _, err := source.Trail(ctx, "nope"); !errors.Is(err, domain.ErrNodeNotFound) {
		t.Errorf("Trail = %v, want ErrNodeNotFound", err)
	}
}
