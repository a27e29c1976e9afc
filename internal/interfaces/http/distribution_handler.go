package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/FarmaStock-api/internal/application/distribution"
	"github.com/jhoicas/FarmaStock-api/internal/application/dto"
)

// DistributionHandler maneja las peticiones HTTP de distribuciones a sedes.
type DistributionHandler struct {
	uc  *distribution.UseCase
	pdf *distribution.PDFUseCase
}

// NewDistributionHandler construye el handler.
func NewDistributionHandler(uc *distribution.UseCase, pdf *distribution.PDFUseCase) *DistributionHandler {
	return &DistributionHandler{uc: uc, pdf: pdf}
}

// Create godoc
// @Summary      Crear distribución (queda PENDING, no toca stock)
// @Tags         distributions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDistributionRequest  true  "Sede destino y líneas"
// @Success      201   {object}  dto.DistributionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/distributions [post]
func (h *DistributionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDistributionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.SiteID == "" || len(in.Lines) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "site_id y lines son requeridos"})
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Distribute godoc
// @Summary      Ejecutar una distribución PENDING
// @Description  Transfiere cada línea del pool global a la sede como unidad
// @Description  atómica. Si alguna línea falla responde 409 con el detalle y la
// @Description  distribución sigue PENDING.
// @Tags         distributions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la distribución"
// @Success      200  {object}  distribution.DistributeResult
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  distribution.DistributeResult
// @Router       /api/distributions/{id}/distribute [post]
func (h *DistributionHandler) Distribute(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.Distribute(c.UserContext(), id, GetUserID(c))
	if err != nil {
		return domainError(c, err)
	}
	if out.Transfer != nil && !out.Transfer.Success {
		return c.Status(fiber.StatusConflict).JSON(out)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar una distribución PENDING (la elimina)
// @Tags         distributions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la distribución"
// @Success      204  "Sin contenido"
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/distributions/{id} [delete]
func (h *DistributionHandler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.uc.Cancel(c.UserContext(), id); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetByID godoc
// @Summary      Obtener distribución por ID
// @Tags         distributions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la distribución"
// @Success      200  {object}  dto.DistributionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/distributions/{id} [get]
func (h *DistributionHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar distribuciones
// @Tags         distributions
// @Security     Bearer
// @Produce      json
// @Param        site_id  query  string  false  "Filtrar por sede"
// @Param        limit    query  int     false  "Límite"   default(20)
// @Param        offset   query  int     false  "Offset"   default(0)
// @Success      200      {object}  dto.DistributionListResponse
// @Router       /api/distributions [get]
func (h *DistributionHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	if page.Limit > 100 {
		page.Limit = 100
	}
	out, err := h.uc.List(c.UserContext(), c.Query("site_id"), page)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Descargar remisión en PDF de una distribución DISTRIBUTED
// @Tags         distributions
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la distribución"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/distributions/{id}/pdf [get]
func (h *DistributionHandler) DownloadPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	pdfBytes, filename, err := h.pdf.DownloadDeliveryNotePDF(c.UserContext(), id)
	if err != nil {
		return domainError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
