package procurement

import (
	"context"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"
	"github.com/warp/erp-engine/generic"
)

// Suppliers manages the supplier directory.
type Suppliers struct {
	Store Store
	Log   zerolog.Logger
}

func NewSuppliers(store Store, log zerolog.Logger) *Suppliers {
	return &Suppliers{Store: store, Log: log}
}

type SupplierInput struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
}

func (in SupplierInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return generic.Validation("name", "supplier name is required")
	}
	if e := strings.TrimSpace(in.Email); e != "" {
		if _, err := mail.ParseAddress(e); err != nil {
			return generic.Validation("email", "invalid email %q", e)
		}
	}
	return nil
}

func (in SupplierInput) apply(s *Supplier) {
	s.Name = strings.TrimSpace(in.Name)
	s.ContactPerson = strings.TrimSpace(in.ContactPerson)
	s.Email = strings.TrimSpace(in.Email)
	s.Phone = strings.TrimSpace(in.Phone)
	s.Address = strings.TrimSpace(in.Address)
}

func (s *Suppliers) Create(ctx context.Context, in SupplierInput) (*Supplier, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	sup := &Supplier{IsActive: true}
	in.apply(sup)
	if err := s.Store.CreateSupplier(ctx, sup); err != nil {
		return nil, err
	}
	s.Log.Info().Int64("supplier_id", sup.ID).Str("name", sup.Name).Msg("supplier created")
	return sup, nil
}

func (s *Suppliers) Get(ctx context.Context, id generic.ID) (*Supplier, error) {
	return s.Store.GetSupplier(ctx, id)
}

func (s *Suppliers) Search(ctx context.Context, filter SupplierFilter) ([]Supplier, error) {
	return s.Store.SearchSuppliers(ctx, filter)
}

func (s *Suppliers) Update(ctx context.Context, id generic.ID, in SupplierInput, active *bool) (*Supplier, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var sup *Supplier
	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if sup, err = s.Store.GetSupplier(ctx, id); err != nil {
			return err
		}
		in.apply(sup)
		if active != nil {
			sup.IsActive = *active
		}
		return s.Store.UpdateSupplier(ctx, sup)
	})
	if err != nil {
		return nil, err
	}
	return sup, nil
}

// Delete deactivates the supplier. Its orders keep pointing at it.
func (s *Suppliers) Delete(ctx context.Context, id generic.ID) error {
	return s.Store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.Store.GetSupplier(ctx, id); err != nil {
			return err
		}
		return s.Store.DeactivateSupplier(ctx, id)
	})
}
