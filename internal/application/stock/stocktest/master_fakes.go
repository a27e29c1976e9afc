package stocktest

import (
	"sort"
	"time"

	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
)

// FakeSiteRepo guarda sedes en un mapa por ID.
type FakeSiteRepo struct {
	Sites map[string]*entity.Site
}

func NewFakeSiteRepo() *FakeSiteRepo {
	return &FakeSiteRepo{Sites: map[string]*entity.Site{}}
}

// Seed registra una sede activa.
func (r *FakeSiteRepo) Seed(id, code, name string) {
	now := time.Now()
	r.Sites[id] = &entity.Site{
		ID:        id,
		Code:      code,
		Name:      name,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *FakeSiteRepo) Create(site *entity.Site) error {
	cp := *site
	r.Sites[site.ID] = &cp
	return nil
}

func (r *FakeSiteRepo) GetByID(id string) (*entity.Site, error) {
	s, ok := r.Sites[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *FakeSiteRepo) Update(site *entity.Site) error {
	cp := *site
	r.Sites[site.ID] = &cp
	return nil
}

func (r *FakeSiteRepo) List(limit, offset int) ([]*entity.Site, error) {
	var out []*entity.Site
	for _, s := range r.Sites {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

// FakeSupplierRepo guarda proveedores en un mapa por ID.
type FakeSupplierRepo struct {
	Suppliers map[string]*entity.Supplier
}

func NewFakeSupplierRepo() *FakeSupplierRepo {
	return &FakeSupplierRepo{Suppliers: map[string]*entity.Supplier{}}
}

// Seed registra un proveedor activo.
func (r *FakeSupplierRepo) Seed(id, nit, name string) {
	now := time.Now()
	r.Suppliers[id] = &entity.Supplier{
		ID:        id,
		NIT:       nit,
		Name:      name,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *FakeSupplierRepo) Create(supplier *entity.Supplier) error {
	cp := *supplier
	r.Suppliers[supplier.ID] = &cp
	return nil
}

func (r *FakeSupplierRepo) GetByID(id string) (*entity.Supplier, error) {
	s, ok := r.Suppliers[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *FakeSupplierRepo) Update(supplier *entity.Supplier) error {
	cp := *supplier
	r.Suppliers[supplier.ID] = &cp
	return nil
}

func (r *FakeSupplierRepo) List(limit, offset int) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	for _, s := range r.Suppliers {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}
