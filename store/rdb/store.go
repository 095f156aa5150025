/*
Package rdb is the relational Persistence Gateway, built on gorm.

PURPOSE:
  One Store implements the narrow store interface of every domain package
  (hr.Store, finance.Store, inventory.Store, procurement.Store, auth.Store).
  The same code runs on SQLite, PostgreSQL and MySQL; the dialect is picked
  from the configured driver name.

UNIT OF WORK:
  WithTx opens a gorm transaction and puts it in the context handed to fn.
  Every method resolves its connection with conn(ctx), so anything called
  with that context joins the transaction. A nested WithTx joins the outer
  one instead of opening a second transaction.

RACES:
  Workflow transitions are conditional updates ("... WHERE status = ?").
  Zero affected rows means someone else moved the entity first and is
  reported as a Conflict. Stock changes are single "quantity = quantity + ?"
  statements. Purchase orders are row-locked (SELECT ... FOR UPDATE) where
  the dialect supports it.

APPEND-ONLY TABLES:
  inventory_transactions and expense_approvals have insert and select
  methods only.

SEE ALSO:
  - generic/store.go: the Transactor contract
  - errors.go: driver error translation
*/
package rdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/warp/erp-engine/auth"
	"github.com/warp/erp-engine/finance"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/hr"
	"github.com/warp/erp-engine/inventory"
	"github.com/warp/erp-engine/procurement"
	"gorm.io/gorm"
)

var (
	_ generic.Transactor = (*Store)(nil)
	_ hr.Store           = (*Store)(nil)
	_ finance.Store      = (*Store)(nil)
	_ inventory.Store    = (*Store)(nil)
	_ procurement.Store  = (*Store)(nil)
	_ auth.Store         = (*Store)(nil)
)

type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

type txKey struct{}

// WithTx runs fn in a transaction, or inside the one already in ctx.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	ctx, runHooks := generic.WithCommitHooks(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if err != nil {
		return err
	}
	runHooks()
	return nil
}

// conn returns the transaction carried by ctx, or the pool.
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

// models lists every table, in creation order.
func models() []any {
	return []any{
		&auth.User{}, &auth.UserRole{},
		&hr.Department{}, &hr.Position{}, &hr.Employee{}, &hr.Attendance{}, &hr.Leave{},
		&finance.Budget{}, &finance.Expense{}, &finance.ExpenseApproval{},
		&inventory.Product{}, &inventory.Stock{}, &inventory.Transaction{},
		&procurement.Supplier{}, &procurement.PurchaseOrder{}, &procurement.Item{},
	}
}

// Migrate creates or updates every table and its indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	s.log.Info().Int("tables", len(models())).Msg("schema migrated")
	return nil
}

// Reset deletes every row of every table, children first. Demo scenarios
// call it before seeding.
func (s *Store) Reset(ctx context.Context) error {
	return s.WithTx(ctx, func(ctx context.Context) error {
		all := models()
		for i := len(all) - 1; i >= 0; i-- {
			res := s.conn(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(all[i])
			if res.Error != nil {
				return fmt.Errorf("reset %T: %w", all[i], res.Error)
			}
		}
		s.log.Warn().Msg("all tables cleared")
		return nil
	})
}

// Stats exposes the pool statistics for the metrics endpoint.
func (s *Store) Stats() sql.DBStats {
	sqlDB, err := s.db.DB()
	if err != nil {
		return sql.DBStats{}
	}
	return sqlDB.Stats()
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// affected turns a conditional update result into NotFound or Conflict.
// exists is consulted only when no row was affected.
func (s *Store) affected(ctx context.Context, res *gorm.DB, model any, entity string, id generic.ID, conflict string) error {
	if res.Error != nil {
		return translate(res.Error, entity, id)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := s.conn(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return translate(err, entity, id)
	}
	if n == 0 {
		return generic.NotFound(entity, id)
	}
	return generic.Conflict("%s %d %s", entity, id, conflict)
}
