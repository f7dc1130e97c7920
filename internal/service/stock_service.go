package service

import (
	"context"
	"errors"
	"time"

	"jewelshop/internal/dto"
	"jewelshop/internal/model"
	"jewelshop/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockService covers the admin side of the stock ledger. Sales adjust stock
// through SaleService only.
type StockService interface {
	List(ctx context.Context, filter dto.StockFilter) (*dto.StockListResponse, error)
	Get(ctx context.Context, productID uuid.UUID) (*dto.StockResponse, error)
	// Override sets every pool of the product to the given quantities.
	Override(ctx context.Context, actor Actor, productID uuid.UUID, req dto.UpdateStockRequest) (*dto.StockResponse, error)
	// Reset sets every pool of the product to zero.
	Reset(ctx context.Context, actor Actor, productID uuid.UUID) (*dto.StockResponse, error)
	Movements(ctx context.Context, productID uuid.UUID, page dto.PageQuery) (*dto.StockMovementListResponse, error)
}

type stockService struct {
	repo      repository.StockRepository
	movements repository.StockMovementRepository
	now       func() time.Time
}

func NewStockService(repo repository.StockRepository, movements repository.StockMovementRepository) StockService {
	return &stockService{repo: repo, movements: movements, now: time.Now}
}

func (s *stockService) List(ctx context.Context, filter dto.StockFilter) (*dto.StockListResponse, error) {
	stocks, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.StockListResponse{Data: make([]dto.StockResponse, len(stocks)), Total: total}
	for i := range stocks {
		resp.Data[i] = stockToResponse(&stocks[i])
	}
	return resp, nil
}

func (s *stockService) Get(ctx context.Context, productID uuid.UUID) (*dto.StockResponse, error) {
	st, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("stock")
		}
		return nil, err
	}
	resp := stockToResponse(st)
	return &resp, nil
}

func (s *stockService) Override(ctx context.Context, actor Actor, productID uuid.UUID, req dto.UpdateStockRequest) (*dto.StockResponse, error) {
	target := map[model.Material]int{
		model.MaterialGold:   req.QuantityGold,
		model.MaterialSilver: req.QuantitySilver,
		model.MaterialCopper: req.QuantityCopper,
	}
	for m, q := range target {
		if q < 0 {
			return nil, invalid("quantity_%s must not be negative", m)
		}
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return overrideStockTx(tx, s.repo, s.movements, productID, target, actor, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, productID)
}

func (s *stockService) Reset(ctx context.Context, actor Actor, productID uuid.UUID) (*dto.StockResponse, error) {
	return s.Override(ctx, actor, productID, dto.UpdateStockRequest{})
}

func (s *stockService) Movements(ctx context.Context, productID uuid.UUID, page dto.PageQuery) (*dto.StockMovementListResponse, error) {
	movements, total, err := s.movements.List(ctx, repository.StockMovementFilter{ProductID: &productID, PageQuery: page})
	if err != nil {
		return nil, err
	}
	resp := &dto.StockMovementListResponse{Data: make([]dto.StockMovementResponse, len(movements)), Total: total}
	for i, m := range movements {
		r := dto.StockMovementResponse{
			ID:             m.ID.String(),
			Material:       string(m.Material),
			Kind:           m.Kind,
			Delta:          m.Delta,
			QuantityBefore: m.QuantityBefore,
			QuantityAfter:  m.QuantityAfter,
			CreatedAt:      formatTime(m.CreatedAt),
		}
		if m.SaleID != nil {
			id := m.SaleID.String()
			r.SaleID = &id
		}
		resp.Data[i] = r
	}
	return resp, nil
}

// overrideStockTx locks the product's stock row, writes the target quantities
// and records an override movement for every pool that changed.
func overrideStockTx(
	tx *gorm.DB,
	stocks repository.StockRepository,
	movements repository.StockMovementRepository,
	productID uuid.UUID,
	target map[model.Material]int,
	actor Actor,
	now time.Time,
) error {
	locked, err := stocks.LockByProductIDsTx(tx, []uuid.UUID{productID})
	if err != nil {
		return err
	}
	st, ok := locked[productID]
	if !ok {
		return notFound("stock")
	}

	var changes []*model.StockMovement
	for _, m := range model.Materials {
		q, ok := target[m]
		if !ok {
			continue
		}
		before := st.Quantity(m)
		if before == q {
			continue
		}
		st.SetQuantity(m, q)
		mov := &model.StockMovement{
			ProductID:      productID,
			Material:       m,
			Kind:           model.MovementOverride,
			Delta:          q - before,
			QuantityBefore: before,
			QuantityAfter:  q,
			CreatedAt:      now,
		}
		if actor.ID != uuid.Nil {
			actorID := actor.ID
			mov.ActorID = &actorID
		}
		changes = append(changes, mov)
	}
	if len(changes) == 0 {
		return nil
	}
	if err := stocks.SetQuantitiesTx(tx, st); err != nil {
		return err
	}
	for _, mov := range changes {
		if err := movements.CreateTx(tx, mov); err != nil {
			return err
		}
	}
	return nil
}

func stockToResponse(st *model.Stock) dto.StockResponse {
	resp := dto.StockResponse{
		ID:        st.ID.String(),
		ProductID: st.ProductID.String(),
		Gold:      st.QuantityGold,
		Silver:    st.QuantitySilver,
		Copper:    st.QuantityCopper,
		CreatedAt: formatTime(st.CreatedAt),
		UpdatedAt: formatTime(st.UpdatedAt),
	}
	if st.Product != nil {
		resp.ProductName = st.Product.Name
		resp.ProductCode = st.Product.Code
	}
	return resp
}
