package retry

import "context"

// Action is a unit of work run by an Executor. Description identifies it in
// logs and in the error returned when retries run out.
type Action[T any] interface {
	Description() string
	Execute(ctx context.Context) (T, error)
}

// Func adapts a plain function to an Action.
func Func[T any](description string, fn func(ctx context.Context) (T, error)) Action[T] {
	return funcAction[T]{desc: description, fn: fn}
}

type funcAction[T any] struct {
	desc string
	fn   func(ctx context.Context) (T, error)
}

func (f funcAction[T]) Description() string { return f.desc }

func (f funcAction[T]) Execute(ctx context.Context) (T, error) { return f.fn(ctx) }
