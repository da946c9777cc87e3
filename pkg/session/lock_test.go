package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
)

// MockStore accepts everything and stores nothing.
type MockStore struct{}

func (m *MockStore) Save(ctx context.Context, key string, state domain.ViewState) error {
	return nil
}
func (m *MockStore) Load(ctx context.Context, key string) (domain.ViewState, error) {
	return domain.ViewState{}, nil
}
func (m *MockStore) Delete(ctx context.Context, key string) error { return nil }
func (m *MockStore) List(ctx context.Context) ([]string, error)   { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(&MockStore{})
	ctx := context.Background()
	count := 10000

	// Touch many keys; refcounting must garbage collect every lock entry.
	for i := 0; i < count; i++ {
		key := fmt.Sprintf("state-%d", i)
		_ = mgr.Save(ctx, key, domain.ViewState{})
		_ = mgr.Delete(ctx, key)
	}

	lockCount := len(mgr.locks)
	t.Logf("Keys touched: %d, locks remaining: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("memory leak: %d locks remaining after Delete", lockCount)
	}
}
