package middleware_test

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/RobbyUitbeijerse/use-tree/pkg/adapters/memory"
	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/RobbyUitbeijerse/use-tree/pkg/persistence/middleware"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := memory.NewStore()
	key := generateKey(t)
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	original := domain.ViewState{
		ActiveID: "docs/secret-project",
		Expanded: map[string]bool{"docs": true, "docs/secret-project": false},
	}

	if err := secureStore.Save(ctx, "session", original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The underlying store must only see the envelope.
	stored, err := underlyingStore.Load(ctx, "session")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if !strings.HasPrefix(stored.ActiveID, "enc:v1:") {
		t.Fatalf("Expected envelope, got ActiveID %q", stored.ActiveID)
	}
	if len(stored.Expanded) != 0 {
		t.Fatalf("Expected expanded overrides to be hidden, found %v", stored.Expanded)
	}

	loaded, err := secureStore.Load(ctx, "session")
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if loaded.ActiveID != original.ActiveID {
		t.Errorf("Expected ActiveID %q, got %q", original.ActiveID, loaded.ActiveID)
	}
	if !loaded.Expanded["docs"] {
		t.Error("Expected docs override to survive the roundtrip")
	}
	if v, ok := loaded.Expanded["docs/secret-project"]; !ok || v {
		t.Error("Expected explicit collapse to survive the roundtrip")
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	ctx := context.Background()
	original := domain.ViewState{ActiveID: "a1"}

	// Save with the old key.
	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)
	if err := oldStore.Save(ctx, "rotation", original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load with the new key active and the old one as fallback.
	rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	loaded, err := rotated.Load(ctx, "rotation")
	if err != nil {
		t.Fatalf("Load after rotation failed: %v", err)
	}
	if loaded.ActiveID != "a1" {
		t.Errorf("Expected ActiveID a1, got %q", loaded.ActiveID)
	}

	// Without the fallback the state is unreadable.
	strict := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey})(underlyingStore)
	if _, err := strict.Load(ctx, "rotation"); !errors.Is(err, middleware.ErrDecryptionFailed) {
		t.Fatalf("Expected ErrDecryptionFailed, got %v", err)
	}
}

func TestEncryptionMiddleware_PlaintextPassthrough(t *testing.T) {
	underlyingStore := memory.NewStore()
	ctx := context.Background()

	// A state written before encryption was enabled.
	legacy := domain.ViewState{ActiveID: "b", Expanded: map[string]bool{"b": true}}
	if err := underlyingStore.Save(ctx, "legacy", legacy); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	loaded, err := secureStore.Load(ctx, "legacy")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ActiveID != "b" || !loaded.Expanded["b"] {
		t.Errorf("Expected legacy state to pass through, got %+v", loaded)
	}
}

func TestEncryptionMiddleware_PanicsOnShortKey(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Expected panic for short key")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
}
