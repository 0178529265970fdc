package engine

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/wippyai/js-runtime/errors"
)

func TestPersistent_RestoreAcrossEntries(t *testing.T) {
	eng := New()
	ctx := context.Background()

	c, err := eng.Enter(ctx)
	if err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	p := c.Persist(c.ToValue("pinned"))
	c.Exit()

	if n := eng.PinnedValues(); n != 1 {
		t.Fatalf("PinnedValues = %d, want 1", n)
	}

	c2, err := eng.Enter(ctx)
	if err != nil {
		t.Fatalf("second Enter failed: %v", err)
	}
	defer c2.Exit()

	v, err := p.Restore(c2)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := v.Export(); got != "pinned" {
		t.Errorf("restored value = %v, want pinned", got)
	}
}

func TestPersistent_Release(t *testing.T) {
	eng := New()
	ctx := context.Background()

	c, err := eng.Enter(ctx)
	if err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	defer c.Exit()

	p := c.Persist(c.ToValue(1))
	p.Release()
	p.Release() // idempotent

	if n := eng.PinnedValues(); n != 0 {
		t.Errorf("PinnedValues = %d after release, want 0", n)
	}
	_, err = p.Restore(c)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindNotFound}) {
		t.Errorf("Restore after release = %v, want not_found", err)
	}
}

func TestPersistent_ZeroValue(t *testing.T) {
	eng := New()
	c, err := eng.Enter(context.Background())
	if err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	defer c.Exit()

	var p Persistent
	p.Release() // no-op
	_, err = p.Restore(c)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindNotInitialized}) {
		t.Errorf("Restore of zero handle = %v, want not_initialized", err)
	}
}

func TestPersistent_WrongEngine(t *testing.T) {
	engA := New()
	engB := New()
	ctx := context.Background()

	cA, err := engA.Enter(ctx)
	if err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	p := cA.Persist(cA.ToValue(1))
	cA.Exit()

	cB, err := engB.Enter(ctx)
	if err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	defer cB.Exit()

	_, err = p.Restore(cB)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindInvalidInput}) {
		t.Errorf("Restore on wrong engine = %v, want invalid_input", err)
	}
}

func TestPersistent_RestoreAfterClose(t *testing.T) {
	eng := New()
	ctx := context.Background()

	c, err := eng.Enter(ctx)
	if err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	p := c.Persist(c.ToValue(1))
	c.Exit()

	if err := eng.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if n := eng.PinnedValues(); n != 0 {
		t.Errorf("PinnedValues = %d after close, want 0", n)
	}

	// No live entry exists after Close; Reentered stands in for one here.
	_, err = p.Restore(eng.Reentered())
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindUnavailable}) {
		t.Errorf("Restore after close = %v, want unavailable", err)
	}
}

func TestPersistent_HandleReuse(t *testing.T) {
	eng := New()
	c, err := eng.Enter(context.Background())
	if err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	defer c.Exit()

	p1 := c.Persist(c.ToValue("a"))
	p1.Release()
	p2 := c.Persist(c.ToValue("b"))

	v, err := p2.Restore(c)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := v.Export(); got != "b" {
		t.Errorf("restored value = %v, want b", got)
	}
	if eng.PinnedValues() != 1 {
		t.Errorf("PinnedValues = %d, want 1", eng.PinnedValues())
	}
	_ = p1
}
