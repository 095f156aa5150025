/*
store.go - Unit of work shared by every domain store

PURPOSE:
  Each domain package declares the narrow persistence interface it needs
  (hr.Store, finance.Store, ...). What they all share is the ability to run
  several writes as one all-or-nothing unit. That contract lives here.

TRANSACTIONS TRAVEL IN THE CONTEXT:
  WithTx hands fn a derived context that carries the open transaction.
  Every store method called with that context joins the transaction, so a
  service can compose "update stock, append ledger row, change order status"
  and get a single commit or a single rollback.

  Nested WithTx calls join the outer unit of work instead of opening a new
  one. The inventory ledger relies on this when procurement calls it from
  inside the receive transaction.

SIDE EFFECTS AFTER COMMIT:
  Work that must not happen for a rolled back unit (counting a metric,
  notifying someone) is registered with AfterCommit. The outermost WithTx
  runs the callbacks once it has committed and drops them on rollback.

EXAMPLE:
  err := store.WithTx(ctx, func(ctx context.Context) error {
      if err := store.IncrementStock(ctx, productID, 10, now); err != nil {
          return err   // rolls back
      }
      return store.AppendTransaction(ctx, &tx)
  })

SEE ALSO:
  - store/rdb/store.go: gorm implementation
*/
package generic

import (
	"context"
	"sync"
)

// Transactor runs fn inside a single unit of work.
// If fn returns an error every write made through its context is rolled back.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type hooksKey struct{}

type commitHooks struct {
	mu  sync.Mutex
	fns []func()
}

// WithCommitHooks prepares ctx to collect AfterCommit callbacks. Transactor
// implementations call it when they open the outermost unit of work and call
// the returned run function after a successful commit.
func WithCommitHooks(ctx context.Context) (context.Context, func()) {
	h := &commitHooks{}
	run := func() {
		h.mu.Lock()
		fns := h.fns
		h.fns = nil
		h.mu.Unlock()
		for _, fn := range fns {
			fn()
		}
	}
	return context.WithValue(ctx, hooksKey{}, h), run
}

// AfterCommit defers fn until the unit of work carried by ctx commits. With no
// unit of work in ctx, fn runs immediately.
func AfterCommit(ctx context.Context, fn func()) {
	h, ok := ctx.Value(hooksKey{}).(*commitHooks)
	if !ok {
		fn()
		return
	}
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}
