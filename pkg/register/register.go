package register

import "sync"

// Handler is a deferred setup hook resolved later by the owner of key.
type Handler[T any] func(T)

var (
	mu       sync.RWMutex
	handlers = map[any][]any{}
)

// RegisterFunc queues a setup handler under key. Store implementations call
// this from their init() so the sqlstore provider can wire them without
// import cycles.
func RegisterFunc[T any](key any, handler Handler[T]) {
	mu.Lock()
	defer mu.Unlock()
	handlers[key] = append(handlers[key], handler)
}

// ResolveFuncHandlers returns the handlers queued under key whose type
// matches T, in registration order.
func ResolveFuncHandlers[T any](key any) []Handler[T] {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Handler[T], 0, len(handlers[key]))
	for _, v := range handlers[key] {
		if h, ok := v.(Handler[T]); ok {
			result = append(result, h)
		}
	}
	return result
}
