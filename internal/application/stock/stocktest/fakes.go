// Package stocktest provee dobles en memoria de los puertos de persistencia
// para probar los casos de uso sin base de datos.
package stocktest

import (
	"sort"
	"time"

	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

// FakeMovementRepo guarda los movimientos en orden de inserción.
type FakeMovementRepo struct {
	Entries []*entity.MovementEntry
}

func NewFakeMovementRepo() *FakeMovementRepo {
	return &FakeMovementRepo{}
}

func (r *FakeMovementRepo) Create(entry *entity.MovementEntry) error {
	cp := *entry
	r.Entries = append(r.Entries, &cp)
	return nil
}

func (r *FakeMovementRepo) GetByID(id string) (*entity.MovementEntry, error) {
	for _, e := range r.Entries {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *FakeMovementRepo) FindByReference(referenceType, referenceID string) ([]*entity.MovementEntry, error) {
	var out []*entity.MovementEntry
	for _, e := range r.Entries {
		if e.ReferenceType == referenceType && e.ReferenceID == referenceID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *FakeMovementRepo) ListByMedication(medicationID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	var out []*entity.MovementEntry
	for _, e := range r.Entries {
		if e.MedicationID != medicationID {
			continue
		}
		if from != nil && e.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && e.CreatedAt.After(*to) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *FakeMovementRepo) Summarize(filter repository.MovementFilter) ([]repository.MovementSummary, error) {
	byType := map[string]*repository.MovementSummary{}
	var order []string
	for _, e := range r.Entries {
		if filter.MedicationID != "" && e.MedicationID != filter.MedicationID {
			continue
		}
		if filter.SiteID != nil && (e.SiteID == nil || *e.SiteID != *filter.SiteID) {
			continue
		}
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		if filter.ReferenceType != "" && e.ReferenceType != filter.ReferenceType {
			continue
		}
		if filter.From != nil && e.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.CreatedAt.After(*filter.To) {
			continue
		}
		s, ok := byType[e.Type]
		if !ok {
			s = &repository.MovementSummary{Type: e.Type}
			byType[e.Type] = s
			order = append(order, e.Type)
		}
		s.Count++
		s.TotalQuantity += e.Quantity
	}
	out := make([]repository.MovementSummary, 0, len(order))
	for _, t := range order {
		out = append(out, *byType[t])
	}
	return out, nil
}

// FakeMedicationStockRepo guarda el stock global en un mapa por medicamento.
type FakeMedicationStockRepo struct {
	Stocks map[string]*entity.MedicationStock
}

func NewFakeMedicationStockRepo() *FakeMedicationStockRepo {
	return &FakeMedicationStockRepo{Stocks: map[string]*entity.MedicationStock{}}
}

// Seed registra stock global para un medicamento con estado ACTIVE.
func (r *FakeMedicationStockRepo) Seed(medicationID string, quantity, minStock int64) {
	r.Stocks[medicationID] = &entity.MedicationStock{
		MedicationID: medicationID,
		Quantity:     quantity,
		MinStock:     minStock,
		Status:       entity.StockStatusActive,
		UpdatedAt:    time.Now(),
	}
}

func (r *FakeMedicationStockRepo) Create(stock *entity.MedicationStock) error {
	cp := *stock
	r.Stocks[stock.MedicationID] = &cp
	return nil
}

func (r *FakeMedicationStockRepo) Get(medicationID string) (*entity.MedicationStock, error) {
	s, ok := r.Stocks[medicationID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *FakeMedicationStockRepo) GetForUpdate(medicationID string) (*entity.MedicationStock, error) {
	return r.Get(medicationID)
}

func (r *FakeMedicationStockRepo) Save(stock *entity.MedicationStock) error {
	cp := *stock
	r.Stocks[stock.MedicationID] = &cp
	return nil
}

func (r *FakeMedicationStockRepo) ListBelowMin(limit, offset int) ([]*entity.MedicationStock, error) {
	var out []*entity.MedicationStock
	for _, s := range r.Stocks {
		if s.Quantity <= s.MinStock {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MedicationID < out[j].MedicationID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// FakeSiteStockRepo guarda el stock de sede en un mapa por (sede, medicamento).
type FakeSiteStockRepo struct {
	Stocks map[string]*entity.SiteStock
}

func NewFakeSiteStockRepo() *FakeSiteStockRepo {
	return &FakeSiteStockRepo{Stocks: map[string]*entity.SiteStock{}}
}

func siteKey(siteID, medicationID string) string {
	return siteID + "/" + medicationID
}

// Seed registra stock para un medicamento en una sede.
func (r *FakeSiteStockRepo) Seed(siteID, medicationID string, quantity int64) {
	r.Stocks[siteKey(siteID, medicationID)] = &entity.SiteStock{
		SiteID:       siteID,
		MedicationID: medicationID,
		Quantity:     quantity,
		UpdatedAt:    time.Now(),
	}
}

func (r *FakeSiteStockRepo) Get(siteID, medicationID string) (*entity.SiteStock, error) {
	s, ok := r.Stocks[siteKey(siteID, medicationID)]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *FakeSiteStockRepo) GetForUpdate(siteID, medicationID string) (*entity.SiteStock, error) {
	return r.Get(siteID, medicationID)
}

func (r *FakeSiteStockRepo) Upsert(stock *entity.SiteStock) error {
	cp := *stock
	r.Stocks[siteKey(stock.SiteID, stock.MedicationID)] = &cp
	return nil
}

func (r *FakeSiteStockRepo) ListBySite(siteID string) ([]*entity.SiteStock, error) {
	var out []*entity.SiteStock
	for _, s := range r.Stocks {
		if s.SiteID == siteID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MedicationID < out[j].MedicationID })
	return out, nil
}
