package stocktest

import (
	"sort"

	"github.com/jhoicas/FarmaStock-api/internal/domain"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
)

// FakeDistributionRepo guarda distribuciones en un mapa por ID.
type FakeDistributionRepo struct {
	Distributions map[string]*entity.Distribution
}

func NewFakeDistributionRepo() *FakeDistributionRepo {
	return &FakeDistributionRepo{Distributions: map[string]*entity.Distribution{}}
}

func copyDistribution(d *entity.Distribution) *entity.Distribution {
	cp := *d
	cp.Lines = append([]entity.DistributionLine(nil), d.Lines...)
	return &cp
}

func (r *FakeDistributionRepo) Create(d *entity.Distribution) error {
	r.Distributions[d.ID] = copyDistribution(d)
	return nil
}

func (r *FakeDistributionRepo) GetByID(id string) (*entity.Distribution, error) {
	d, ok := r.Distributions[id]
	if !ok {
		return nil, nil
	}
	return copyDistribution(d), nil
}

func (r *FakeDistributionRepo) UpdateStatus(id, status string) error {
	d, ok := r.Distributions[id]
	if !ok {
		return domain.ErrNotFound
	}
	d.Status = status
	return nil
}

func (r *FakeDistributionRepo) SetLineMovements(distributionID, medicationID, outMovementID, inMovementID string) error {
	d, ok := r.Distributions[distributionID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range d.Lines {
		if d.Lines[i].MedicationID == medicationID {
			out, in := outMovementID, inMovementID
			d.Lines[i].OutMovementID = &out
			d.Lines[i].InMovementID = &in
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *FakeDistributionRepo) Delete(id string) error {
	if _, ok := r.Distributions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.Distributions, id)
	return nil
}

func (r *FakeDistributionRepo) List(siteID string, limit, offset int) ([]*entity.Distribution, error) {
	var out []*entity.Distribution
	for _, d := range r.Distributions {
		if siteID != "" && d.SiteID != siteID {
			continue
		}
		out = append(out, copyDistribution(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

// FakeOrderRepo guarda órdenes de compra en un mapa por ID.
type FakeOrderRepo struct {
	Orders map[string]*entity.Order
}

func NewFakeOrderRepo() *FakeOrderRepo {
	return &FakeOrderRepo{Orders: map[string]*entity.Order{}}
}

func copyOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Lines = append([]entity.OrderLine(nil), o.Lines...)
	return &cp
}

func (r *FakeOrderRepo) Create(o *entity.Order) error {
	r.Orders[o.ID] = copyOrder(o)
	return nil
}

func (r *FakeOrderRepo) GetByID(id string) (*entity.Order, error) {
	o, ok := r.Orders[id]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

func (r *FakeOrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	return r.GetByID(id)
}

func (r *FakeOrderRepo) Update(o *entity.Order) error {
	if _, ok := r.Orders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	r.Orders[o.ID] = copyOrder(o)
	return nil
}

func (r *FakeOrderRepo) SetLineMovement(orderID, medicationID, movementID string) error {
	o, ok := r.Orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range o.Lines {
		if o.Lines[i].MedicationID == medicationID {
			id := movementID
			o.Lines[i].MovementID = &id
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *FakeOrderRepo) List(status string, limit, offset int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.Orders {
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

// FakePrescriptionRepo guarda fórmulas médicas en un mapa por ID.
type FakePrescriptionRepo struct {
	Prescriptions map[string]*entity.Prescription
}

func NewFakePrescriptionRepo() *FakePrescriptionRepo {
	return &FakePrescriptionRepo{Prescriptions: map[string]*entity.Prescription{}}
}

func copyPrescription(p *entity.Prescription) *entity.Prescription {
	cp := *p
	cp.Lines = append([]entity.PrescriptionLine(nil), p.Lines...)
	return &cp
}

func (r *FakePrescriptionRepo) Create(p *entity.Prescription) error {
	r.Prescriptions[p.ID] = copyPrescription(p)
	return nil
}

func (r *FakePrescriptionRepo) GetByID(id string) (*entity.Prescription, error) {
	p, ok := r.Prescriptions[id]
	if !ok {
		return nil, nil
	}
	return copyPrescription(p), nil
}

func (r *FakePrescriptionRepo) GetForUpdate(id string) (*entity.Prescription, error) {
	return r.GetByID(id)
}

func (r *FakePrescriptionRepo) Update(p *entity.Prescription) error {
	if _, ok := r.Prescriptions[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.Prescriptions[p.ID] = copyPrescription(p)
	return nil
}

func (r *FakePrescriptionRepo) SetLineMovement(prescriptionID, medicationID, movementID string) error {
	p, ok := r.Prescriptions[prescriptionID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range p.Lines {
		if p.Lines[i].MedicationID == medicationID {
			id := movementID
			p.Lines[i].MovementID = &id
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *FakePrescriptionRepo) List(siteID, status string, limit, offset int) ([]*entity.Prescription, error) {
	var out []*entity.Prescription
	for _, p := range r.Prescriptions {
		if siteID != "" && p.SiteID != siteID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, copyPrescription(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
