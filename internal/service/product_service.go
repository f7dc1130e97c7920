package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"jewelshop/internal/dto"
	"jewelshop/internal/infra"
	"jewelshop/internal/model"
	"jewelshop/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductService interface {
	// Create stores the product together with its stock record.
	Create(ctx context.Context, req dto.ProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	// Update rewrites the catalog fields and overrides the stock quantities.
	Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.ProductRequest) (*dto.ProductResponse, error)
	// Delete removes the product and its stock. Products referenced by a sale
	// cannot be deleted.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page dto.PageQuery) (*dto.ProductListResponse, error)
	SearchNames(ctx context.Context, search string) ([]dto.ProductNameResponse, error)
	ListWithStock(ctx context.Context) ([]dto.ProductResponse, error)
	// Import creates every product of an .xlsx sheet in one transaction.
	Import(ctx context.Context, r io.Reader) (*dto.ImportResponse, error)
	// Template writes the empty import spreadsheet.
	Template(w io.Writer) error
}

type productService struct {
	repo      repository.ProductRepository
	stock     repository.StockRepository
	movements repository.StockMovementRepository
	cache     *StatsCache
	now       func() time.Time
}

func NewProductService(
	repo repository.ProductRepository,
	stock repository.StockRepository,
	movements repository.StockMovementRepository,
	cache *StatsCache,
) ProductService {
	return &productService{repo: repo, stock: stock, movements: movements, cache: cache, now: time.Now}
}

func (s *productService) Create(ctx context.Context, req dto.ProductRequest) (*dto.ProductResponse, error) {
	p, st, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.createTx(tx, p, st)
	})
	if err != nil {
		return nil, err
	}
	p.Stock = st
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) createTx(tx *gorm.DB, p *model.Product, st *model.Stock) error {
	if err := s.repo.CreateTx(tx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: product code %q already exists", ErrConflict, p.Code)
		}
		return err
	}
	st.ProductID = p.ID
	return s.stock.CreateTx(tx, st)
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("product")
		}
		return nil, err
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.ProductRequest) (*dto.ProductResponse, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("product")
		}
		return nil, err
	}
	p, st, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt

	target := make(map[model.Material]int, len(model.Materials))
	for _, m := range model.Materials {
		target[m] = st.Quantity(m)
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, p); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: product code %q already exists", ErrConflict, p.Code)
			}
			return err
		}
		if existing.Stock == nil {
			st.ProductID = p.ID
			return s.stock.CreateTx(tx, st)
		}
		return overrideStockTx(tx, s.stock, s.movements, p.ID, target, actor, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	// weights feed the stats
	s.cache.Invalidate(ctx)
	return s.Get(ctx, id)
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("product")
		}
		return err
	}
	n, err := s.repo.CountSaleItems(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: product is referenced by %d sale item(s)", ErrConflict, n)
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.movements.DeleteByProductTx(tx, id); err != nil {
			return err
		}
		if err := s.stock.DeleteByProductTx(tx, id); err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, id)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("product")
	}
	return err
}

func (s *productService) List(ctx context.Context, page dto.PageQuery) (*dto.ProductListResponse, error) {
	products, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductListResponse{Data: make([]dto.ProductResponse, len(products)), Total: total}
	for i := range products {
		resp.Data[i] = productToResponse(&products[i])
	}
	return resp, nil
}

func (s *productService) SearchNames(ctx context.Context, search string) ([]dto.ProductNameResponse, error) {
	products, err := s.repo.SearchNames(ctx, search)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductNameResponse, len(products))
	for i, p := range products {
		out[i] = dto.ProductNameResponse{ID: p.ID.String(), Name: p.Name, Code: p.Code}
		if p.Stock != nil {
			out[i].Stock = &dto.StockQuantities{
				QuantityGold:   p.Stock.QuantityGold,
				QuantitySilver: p.Stock.QuantitySilver,
				QuantityCopper: p.Stock.QuantityCopper,
			}
		}
	}
	return out, nil
}

func (s *productService) ListWithStock(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.ListWithStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, len(products))
	for i := range products {
		out[i] = productToResponse(&products[i])
	}
	return out, nil
}

func (s *productService) Import(ctx context.Context, r io.Reader) (*dto.ImportResponse, error) {
	rows, err := infra.ReadProductSheet(r)
	if err != nil {
		return nil, invalid("%v", err)
	}
	if len(rows) == 0 {
		return nil, invalid("the sheet contains no products")
	}

	type pending struct {
		product *model.Product
		stock   *model.Stock
	}
	batch := make([]pending, 0, len(rows))
	codes := make(map[string]int, len(rows))
	for _, row := range rows {
		req := dto.ProductRequest{Name: row.Name, Code: row.Code}
		specs := map[model.Material]*dto.MaterialSpecRequest{
			model.MaterialGold:   &req.Gold,
			model.MaterialSilver: &req.Silver,
			model.MaterialCopper: &req.Copper,
		}
		for m, spec := range row.Specs {
			*specs[m] = dto.MaterialSpecRequest{Weight: spec.Weight, Price: spec.Price, Quantity: spec.Quantity}
		}
		p, st, err := productFromRequest(req)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row.Line, err)
		}
		if first, dup := codes[p.Code]; dup {
			return nil, invalid("row %d: code %q already used on row %d", row.Line, p.Code, first)
		}
		codes[p.Code] = row.Line
		batch = append(batch, pending{p, st})
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for i, item := range batch {
			if err := s.createTx(tx, item.product, item.stock); err != nil {
				return fmt.Errorf("row %d: %w", rows[i].Line, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.ImportResponse{Message: "Products imported successfully", Imported: len(batch)}, nil
}

func (s *productService) Template(w io.Writer) error {
	return infra.WriteProductSheet(w, nil)
}

func productFromRequest(req dto.ProductRequest) (*model.Product, *model.Stock, error) {
	name, code := strings.TrimSpace(req.Name), strings.TrimSpace(req.Code)
	if name == "" {
		return nil, nil, invalid("name is required")
	}
	if code == "" {
		return nil, nil, invalid("code is required")
	}
	p := &model.Product{Name: name, Code: code}
	st := &model.Stock{}
	for m, spec := range req.Specs() {
		if spec.Weight.IsNegative() || spec.Price.IsNegative() || spec.Quantity < 0 {
			return nil, nil, invalid("%s: weight, price and quantity must not be negative", m)
		}
		p.SetSpec(m, model.MaterialSpec{Weight: spec.Weight, Price: spec.Price})
		st.SetQuantity(m, spec.Quantity)
	}
	return p, st, nil
}

func productToResponse(p *model.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Code:      p.Code,
		CreatedAt: formatTime(p.CreatedAt),
		UpdatedAt: formatTime(p.UpdatedAt),
	}
	blocks := map[model.Material]*dto.MaterialSpecResponse{
		model.MaterialGold:   &resp.Gold,
		model.MaterialSilver: &resp.Silver,
		model.MaterialCopper: &resp.Copper,
	}
	for m, block := range blocks {
		spec := p.Spec(m)
		block.Weight = spec.Weight
		block.Price = spec.Price
		if p.Stock != nil {
			block.Quantity = p.Stock.Quantity(m)
		}
	}
	return resp
}
