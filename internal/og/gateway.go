package og

import (
	"context"

	"github.com/yanun0323/errors"

	"main/internal/schema"
)

var (
	ErrGatewayDisconnected = errors.New("gateway disconnected")
	ErrUnknownOrder        = errors.New("unknown order id")
	ErrDuplicateClientRef  = errors.New("duplicate client reference")
)

// Gateway is the broker-facing order surface. Implementations must
// deliver order-status and position events for a ticker in order.
type Gateway interface {
	// NextOrderID allocates a broker order id. Ids are allocated before
	// submission so every later event can be correlated.
	NextOrderID() int64

	// SubmitOrder places the order with the broker. The order carries an
	// id from NextOrderID and a client reference the broker uses to
	// deduplicate resubmissions.
	SubmitOrder(ctx context.Context, o *schema.Order) error

	// CancelOrder requests cancellation of a working order. Cancellation
	// is asynchronous; the terminal status arrives as an event.
	CancelOrder(ctx context.Context, orderID int64) error
}
