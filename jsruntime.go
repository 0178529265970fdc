package jsruntime

// Waker is an opaque token handed out by the host executor. Invoking Wake
// requests that the suspended poll it belongs to is scheduled again.
//
// Wake must be safe to call from any goroutine, including from inside an
// engine callback while the engine exclusivity lock is held. Calling Wake
// on an already-scheduled or completed poll target is a no-op.
type Waker interface {
	Wake()
}

// WakerFunc adapts a plain function to the Waker interface.
type WakerFunc func()

func (f WakerFunc) Wake() { f() }
