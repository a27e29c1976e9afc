package distribution

import (
	"context"
	"fmt"

	"github.com/jhoicas/FarmaStock-api/internal/domain"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

// DeliveryNoteLine línea enriquecida para la remisión: datos de catálogo más
// la cantidad distribuida.
type DeliveryNoteLine struct {
	CUM          string
	Name         string
	Presentation string
	Unit         string
	Quantity     int64
}

// DeliveryNotePDFGenerator genera la remisión de entrega de una distribución.
type DeliveryNotePDFGenerator interface {
	GenerateDeliveryNotePDF(ctx context.Context, d *entity.Distribution, site *entity.Site, lines []DeliveryNoteLine) ([]byte, error)
}

// PDFUseCase genera la remisión (PDF) de una distribución ya ejecutada.
type PDFUseCase struct {
	distRepo  repository.DistributionRepository
	siteRepo  repository.SiteRepository
	medRepo   repository.MedicationRepository
	generator DeliveryNotePDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(
	distRepo repository.DistributionRepository,
	siteRepo repository.SiteRepository,
	medRepo repository.MedicationRepository,
	generator DeliveryNotePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{distRepo: distRepo, siteRepo: siteRepo, medRepo: medRepo, generator: generator}
}

// DownloadDeliveryNotePDF arma los datos de la remisión y genera el PDF.
// Solo las distribuciones ya ejecutadas (DISTRIBUTED) tienen remisión.
func (uc *PDFUseCase) DownloadDeliveryNotePDF(ctx context.Context, distributionID string) (pdfBytes []byte, filename string, err error) {
	d, err := uc.distRepo.GetByID(distributionID)
	if err != nil {
		return nil, "", fmt.Errorf("remision: obtener distribucion: %w", err)
	}
	if d == nil {
		return nil, "", domain.ErrNotFound
	}
	if d.Status != entity.DistributionStatusDistributed {
		return nil, "", domain.ErrInvalidInput
	}

	site, err := uc.siteRepo.GetByID(d.SiteID)
	if err != nil {
		return nil, "", fmt.Errorf("remision: obtener sede: %w", err)
	}
	if site == nil {
		return nil, "", domain.ErrNotFound
	}

	lines := make([]DeliveryNoteLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		med, err := uc.medRepo.GetByID(l.MedicationID)
		if err != nil {
			return nil, "", fmt.Errorf("remision: obtener medicamento: %w", err)
		}
		line := DeliveryNoteLine{Quantity: l.Quantity}
		if med != nil {
			line.CUM = med.CUM
			line.Name = med.Name
			line.Presentation = med.Presentation
			line.Unit = med.Unit
		}
		lines = append(lines, line)
	}

	bytes, err := uc.generator.GenerateDeliveryNotePDF(ctx, d, site, lines)
	if err != nil {
		return nil, "", err
	}
	return bytes, fmt.Sprintf("remision-%s.pdf", d.ID), nil
}
