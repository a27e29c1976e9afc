package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/FarmaStock-api/internal/application/dto"
	"github.com/jhoicas/FarmaStock-api/internal/application/stock"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

// StockHandler maneja transferencias, reversiones, ajustes y consultas de stock.
type StockHandler struct {
	transfer *stock.TransferUseCase
	query    *stock.QueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(transfer *stock.TransferUseCase, query *stock.QueryUseCase) *StockHandler {
	return &StockHandler{transfer: transfer, query: query}
}

func toTransferLines(lines []dto.TransferLineRequest) []stock.TransferLine {
	out := make([]stock.TransferLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, stock.TransferLine{MedicationID: l.MedicationID, Quantity: l.Quantity})
	}
	return out
}

// ValidateTransfer godoc
// @Summary      Validar transferencia (consultivo, no muta)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Sede destino y líneas"
// @Success      200   {object}  stock.TransferValidation
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/transfers/validate [post]
func (h *StockHandler) ValidateTransfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.SiteID == "" || len(in.Lines) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "site_id y lines son requeridos"})
	}
	out, err := h.transfer.ValidateTransfer(c.UserContext(), in.SiteID, toTransferLines(in.Lines))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// PerformTransfer godoc
// @Summary      Transferir stock del pool global a una sede
// @Description  Aplica todas las líneas o ninguna. Si alguna falla, la respuesta
// @Description  es 409 con el detalle por línea y ningún stock cambia.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Sede destino y líneas"
// @Success      200   {object}  stock.TransferResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  stock.TransferResult
// @Router       /api/stock/transfers [post]
func (h *StockHandler) PerformTransfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.SiteID == "" || len(in.Lines) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "site_id y lines son requeridos"})
	}
	out, err := h.transfer.PerformTransfer(c.UserContext(), stock.TransferInput{
		SiteID: in.SiteID,
		Lines:  toTransferLines(in.Lines),
		UserID: GetUserID(c),
		Notes:  in.Notes,
	})
	if err != nil {
		return domainError(c, err)
	}
	if !out.Success {
		return c.Status(fiber.StatusConflict).JSON(out)
	}
	return c.JSON(out)
}

// Reverse godoc
// @Summary      Revertir los movimientos de una referencia
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReverseRequest  true  "Referencia a revertir"
// @Success      200   {object}  stock.ReversalResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/reversals [post]
func (h *StockHandler) Reverse(c *fiber.Ctx) error {
	var in dto.ReverseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.ReferenceType == "" || in.ReferenceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "reference_type y reference_id son requeridos"})
	}
	out, err := h.transfer.ReverseTransfer(c.UserContext(), stock.ReversalInput{
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		UserID:        GetUserID(c),
		Notes:         in.Notes,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajuste administrativo del stock global (solo admin)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del medicamento"
// @Param        body  body  dto.AdjustStockRequest  true  "Delta con signo y notas"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/medications/{id}/adjust [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Delta == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "delta no puede ser cero"})
	}
	gs, err := h.transfer.AdjustGlobal(c.UserContext(), id, in.Delta, GetUserID(c), in.Notes)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toStockResponse(gs))
}

// Synchronize godoc
// @Summary      Sincronizar el stock de una sede contra el pool global
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        siteId  path  string  true  "ID de la sede"
// @Success      200     {array}  stock.SyncAdjustment
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/stock/sites/{siteId}/synchronize [post]
func (h *StockHandler) Synchronize(c *fiber.Ctx) error {
	siteID := c.Params("siteId")
	if siteID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "siteId es requerido"})
	}
	out, err := h.transfer.Synchronize(c.UserContext(), siteID, GetUserID(c))
	if err != nil {
		return domainError(c, err)
	}
	if out == nil {
		out = []stock.SyncAdjustment{}
	}
	return c.JSON(out)
}

// GetGlobal godoc
// @Summary      Stock global de un medicamento
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del medicamento"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/medications/{id} [get]
func (h *StockHandler) GetGlobal(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	gs, err := h.query.GetGlobal(c.UserContext(), id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toStockResponse(gs))
}

// ListSiteStocks godoc
// @Summary      Stock completo de una sede
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        siteId  path  string  true  "ID de la sede"
// @Success      200     {array}  dto.SiteStockResponse
// @Router       /api/stock/sites/{siteId} [get]
func (h *StockHandler) ListSiteStocks(c *fiber.Ctx) error {
	siteID := c.Params("siteId")
	if siteID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "siteId es requerido"})
	}
	rows, err := h.query.ListSiteStocks(c.UserContext(), siteID)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.SiteStockResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, *toSiteStockResponse(r))
	}
	return c.JSON(out)
}

// GetSiteStock godoc
// @Summary      Stock de un medicamento en una sede
// @Description  Si la sede nunca recibió el medicamento responde cantidad cero.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        siteId  path  string  true  "ID de la sede"
// @Param        id      path  string  true  "ID del medicamento"
// @Success      200     {object}  dto.SiteStockResponse
// @Router       /api/stock/sites/{siteId}/medications/{id} [get]
func (h *StockHandler) GetSiteStock(c *fiber.Ctx) error {
	siteID := c.Params("siteId")
	id := c.Params("id")
	if siteID == "" || id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "siteId e id son requeridos"})
	}
	ss, err := h.query.GetSiteStock(c.UserContext(), siteID, id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toSiteStockResponse(ss))
}

// ListLowStock godoc
// @Summary      Medicamentos con stock global en o bajo su umbral de reorden
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(100)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {array}  dto.StockResponse
// @Router       /api/stock/low [get]
func (h *StockHandler) ListLowStock(c *fiber.Ctx) error {
	rows, err := h.query.ListLowStock(c.UserContext(), c.QueryInt("limit", 100), c.QueryInt("offset", 0))
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.StockResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, *toStockResponse(r))
	}
	return c.JSON(out)
}

// MovementsByReference godoc
// @Summary      Movimientos de una referencia en orden de libro
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        type  path  string  true  "Tipo de referencia"  Enums(DISTRIBUTION, ORDER, PRESCRIPTION, ADJUSTMENT, TRANSFER)
// @Param        id    path  string  true  "ID de la referencia"
// @Success      200   {array}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/movements/{type}/{id} [get]
func (h *StockHandler) MovementsByReference(c *fiber.Ctx) error {
	refType := c.Params("type")
	refID := c.Params("id")
	if refType == "" || refID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "type e id son requeridos"})
	}
	entries, err := h.query.MovementsByReference(c.UserContext(), refType, refID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toMovementResponses(entries))
}

// MovementHistory godoc
// @Summary      Historial de movimientos de un medicamento
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del medicamento"
// @Param        from    query  string  false  "Desde (RFC3339)"
// @Param        to      query  string  false  "Hasta (RFC3339)"
// @Param        limit   query  int     false  "Límite"   default(50)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200     {array}  dto.MovementResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/stock/medications/{id}/movements [get]
func (h *StockHandler) MovementHistory(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
	}
	entries, err := h.query.MovementHistory(c.UserContext(), id, from, to, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toMovementResponses(entries))
}

// SummarizeMovements godoc
// @Summary      Resumen del libro de movimientos agrupado por tipo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        medication_id   query  string  false  "ID del medicamento"
// @Param        site_id         query  string  false  "ID de la sede"
// @Param        type            query  string  false  "Tipo de movimiento"
// @Param        reference_type  query  string  false  "Tipo de referencia"
// @Param        from            query  string  false  "Desde (RFC3339)"
// @Param        to              query  string  false  "Hasta (RFC3339)"
// @Success      200             {array}  dto.MovementSummaryResponse
// @Router       /api/stock/movements/summary [get]
func (h *StockHandler) SummarizeMovements(c *fiber.Ctx) error {
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
	}
	filter := repository.MovementFilter{
		MedicationID:  c.Query("medication_id"),
		Type:          c.Query("type"),
		ReferenceType: c.Query("reference_type"),
		From:          from,
		To:            to,
	}
	if siteID := c.Query("site_id"); siteID != "" {
		filter.SiteID = &siteID
	}
	rows, err := h.query.SummarizeMovements(c.UserContext(), filter)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.MovementSummaryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.MovementSummaryResponse{Type: r.Type, Count: r.Count, TotalQuantity: r.TotalQuantity})
	}
	return c.JSON(out)
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toStockResponse(gs *entity.MedicationStock) *dto.StockResponse {
	if gs == nil {
		return nil
	}
	return &dto.StockResponse{
		MedicationID: gs.MedicationID,
		Quantity:     gs.Quantity,
		MinStock:     gs.MinStock,
		Status:       gs.Status,
		UpdatedAt:    gs.UpdatedAt,
	}
}

func toSiteStockResponse(ss *entity.SiteStock) *dto.SiteStockResponse {
	if ss == nil {
		return nil
	}
	return &dto.SiteStockResponse{
		SiteID:       ss.SiteID,
		MedicationID: ss.MedicationID,
		Quantity:     ss.Quantity,
		MinStock:     ss.MinStock,
		MaxStock:     ss.MaxStock,
		UpdatedAt:    ss.UpdatedAt,
	}
}

func toMovementResponse(e *entity.MovementEntry) *dto.MovementResponse {
	if e == nil {
		return nil
	}
	return &dto.MovementResponse{
		ID:            e.ID,
		MedicationID:  e.MedicationID,
		Type:          e.Type,
		Quantity:      e.Quantity,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
		SiteID:        e.SiteID,
		FromSiteID:    e.FromSiteID,
		ToSiteID:      e.ToSiteID,
		UserID:        e.UserID,
		ReversalOf:    e.ReversalOf,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
	}
}

func toMovementResponses(entries []*entity.MovementEntry) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, *toMovementResponse(e))
	}
	return out
}
