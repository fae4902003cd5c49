package error_notificator

import "context"

type Notificator interface {
	// Notify сообщает админам об ошибке
	Notify(ctx context.Context, err error, details string) error
}
