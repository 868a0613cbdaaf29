package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/drug"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store"
)

type DrugService struct {
	base
}

func NewDrugService(d Deps) *DrugService {
	return &DrugService{base: newBase(d)}
}

func (s *DrugService) Create(ctx context.Context, p *access.Principal, cmd *drug.CreateDrugCommand) (*drug.Drug, error) {
	if err := access.Authorize(p, access.OpManageDrugs); err != nil {
		return nil, err
	}

	var errs fieldErrors
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		errs.add("name is required")
	}
	if cmd.Quantity < 0 {
		errs.add("%s", drug.ErrNegativeQuantity.Error())
	}
	if cmd.UnitPriceCents < 0 {
		errs.add("%s", drug.ErrNegativePrice.Error())
	}
	minStock := drug.DefaultMinStockLevel
	if cmd.MinStockLevel != nil {
		if *cmd.MinStockLevel < 0 {
			errs.add("minStockLevel cannot be negative")
		}
		minStock = *cmd.MinStockLevel
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	d := &drug.Drug{
		CreatedAt:      s.now(),
		Name:           name,
		GenericName:    strings.TrimSpace(cmd.GenericName),
		Manufacturer:   strings.TrimSpace(cmd.Manufacturer),
		BatchNumber:    strings.TrimSpace(cmd.BatchNumber),
		ExpiryDate:     cmd.ExpiryDate,
		Quantity:       cmd.Quantity,
		UnitPriceCents: cmd.UnitPriceCents,
		MinStockLevel:  minStock,
		IsActive:       true,
	}
	if err := s.store.Drugs().Create(ctx, d); err != nil {
		return nil, fmt.Errorf("creating drug: %w", err)
	}

	s.record(ctx, p, domain.ActionCreate, "drug", d.ID, nil)
	return d, nil
}

func (s *DrugService) Update(ctx context.Context, p *access.Principal, id int64, patch *drug.Patch) (*drug.Drug, error) {
	if err := access.Authorize(p, access.OpManageDrugs); err != nil {
		return nil, err
	}
	if patch.Quantity != nil && *patch.Quantity < 0 {
		return nil, drug.ErrNegativeQuantity
	}
	if patch.UnitPriceCents != nil && *patch.UnitPriceCents < 0 {
		return nil, drug.ErrNegativePrice
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, invalid("name cannot be empty")
	}

	d, err := s.store.Drugs().Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.record(ctx, p, domain.ActionUpdate, "drug", d.ID, nil)
	s.warnLowStock(d)
	return d, nil
}

// AdjustStock adds delta (negative to remove) to a drug's quantity.
func (s *DrugService) AdjustStock(ctx context.Context, p *access.Principal, id int64, delta int) (d *drug.Drug, err error) {
	if err := access.Authorize(p, access.OpManageDrugs); err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		cur, err := tx.Drugs().GetByID(ctx, id)
		if err != nil {
			return err
		}
		qty := cur.Quantity + delta
		if qty < 0 {
			return drug.ErrInsufficientStock
		}
		d, err = tx.Drugs().Update(ctx, id, &drug.Patch{Quantity: &qty})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, p, domain.ActionUpdate, "drug", d.ID, map[string]any{"delta": delta, "quantity": d.Quantity})
	s.warnLowStock(d)
	return d, nil
}

func (s *DrugService) List(ctx context.Context, p *access.Principal, q *drug.ListQuery) ([]*drug.Drug, error) {
	if err := access.Authorize(p, access.OpReadDrugs); err != nil {
		return nil, err
	}
	return s.store.Drugs().List(ctx, q)
}

// LowStock lists active drugs at or below their minimum stock level.
func (s *DrugService) LowStock(ctx context.Context, p *access.Principal) ([]*drug.Drug, error) {
	return s.List(ctx, p, &drug.ListQuery{ActiveOnly: true, LowStock: true})
}

func (s *DrugService) warnLowStock(d *drug.Drug) {
	if d.IsActive && d.IsLowStock() {
		s.log.Warn("drug stock low",
			zap.Int64("drug_id", d.ID),
			zap.String("name", d.Name),
			zap.Int("quantity", d.Quantity),
			zap.Int("min_stock_level", d.MinStockLevel),
		)
	}
}
