// Package stock contiene servicios de dominio puros sobre el libro de movimientos.
package stock

import "github.com/jhoicas/FarmaStock-api/internal/domain/entity"

// ReplayGlobal reconstruye la cantidad global de un medicamento a partir de una
// cantidad inicial y su secuencia de movimientos, en orden de libro.
// Es la base de la auditoría de conservación: tras cualquier operación
// confirmada, la cantidad del pool debe coincidir con el replay.
func ReplayGlobal(initial int64, entries []*entity.MovementEntry) int64 {
	q := initial
	for _, e := range entries {
		q += e.GlobalDelta()
	}
	return q
}

// ReplaySite reconstruye la cantidad de un medicamento en una sede a partir de
// una cantidad inicial y su secuencia de movimientos.
func ReplaySite(siteID string, initial int64, entries []*entity.MovementEntry) int64 {
	q := initial
	for _, e := range entries {
		if e.SiteID == nil || *e.SiteID != siteID {
			continue
		}
		q += e.SiteDelta()
	}
	return q
}
