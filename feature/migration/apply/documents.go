package apply

import (
	"context"
	"encoding/json"
	"strconv"

	"accounting-sync/feature/migration/models"

	"gorm.io/datatypes"
)

// JournalLines upserts asiento_lineas. Entry and account are both required.
func JournalLines() Applier {
	return Func(EntityJournalLines, func(ctx context.Context, rc *RunContext, sum *EntitySummary) error {
		for _, l := range rc.Payload.JournalLines {
			key, err := rc.Addressor.RowKey("al", l.ID, l)
			if err != nil {
				return err
			}
			r := row{key: key, record: l}
			entryID, okEntry := rc.IDs.Get(EntityJournalEntries, l.AsientoID)
			accountID, okAccount := rc.IDs.Get(EntityAccounts, l.CuentaID)
			switch {
			case !okEntry:
				r.gap = gap(EntityJournalLines, key, EntityJournalEntries, l.AsientoID)
			case !okAccount:
				r.gap = gap(EntityJournalLines, key, EntityAccounts, l.CuentaID)
			}
			r.upsert = upsertOn(&models.JournalLine{
				SourceID:    key,
				AsientoID:   entryID,
				CuentaID:    accountID,
				Debe:        l.Debe,
				Haber:       l.Haber,
				Descripcion: l.Descripcion,
			}, []string{"source_id"}, "asiento_id", "cuenta_id", "debe", "haber", "descripcion")
			if err := rc.process(ctx, EntityJournalLines, sum, r); err != nil {
				return err
			}
		}
		return nil
	})
}

// InventoryLots upserts lotes_inventario. The product is required.
func InventoryLots() Applier {
	return Func(EntityInventoryLots, func(ctx context.Context, rc *RunContext, sum *EntitySummary) error {
		for _, lot := range rc.Payload.InventoryLots {
			key, err := rc.Addressor.RowKey("lot", lot.ID, lot)
			if err != nil {
				return err
			}
			r := row{key: key, record: lot, aliases: []string{lot.ID}}
			productID, ok := rc.IDs.Get(EntityProducts, lot.ProductID)
			if !ok {
				r.gap = gap(EntityInventoryLots, key, EntityProducts, lot.ProductID)
			}
			r.upsert = upsertOn(&models.InventoryLot{
				SourceID:     key,
				ProductoID:   productID,
				FechaIngreso: lot.FechaIngreso,
				Qty:          lot.Qty,
				RemainingQty: lot.RemainingQty,
				UnitCost:     lot.UnitCost,
				Origen:       orDefault(lot.Source, DefaultLotSource),
			}, []string{"source_id"}, "producto_id", "fecha_ingreso", "qty", "remaining_qty", "unit_cost", "origen")
			r.resolve = resolveBy(&models.InventoryLot{}, "source_id", key)
			if err := rc.process(ctx, EntityInventoryLots, sum, r); err != nil {
				return err
			}
		}
		return nil
	})
}

// KardexMovements upserts kardex_movimientos. The product is required, the lot optional.
// Lots share a stage with kardex and are applied first, so lot ids are already mapped.
func KardexMovements() Applier {
	return Func(EntityKardex, func(ctx context.Context, rc *RunContext, sum *EntitySummary) error {
		for _, k := range rc.Payload.KardexMovements {
			key, err := rc.Addressor.RowKey("kdx", k.ID, k)
			if err != nil {
				return err
			}
			r := row{key: key, record: k}
			productID, ok := rc.IDs.Get(EntityProducts, k.ProductID)
			if !ok {
				r.gap = gap(EntityKardex, key, EntityProducts, k.ProductID)
			}
			target := &models.KardexMovement{
				SourceID:   key,
				Fecha:      k.Fecha,
				ProductoID: productID,
				Tipo:       k.Type,
				Qty:        k.Qty,
				UnitCost:   k.UnitCost,
				TotalCost:  k.TotalCost,
				LoteID:     rc.IDs.Optional(EntityInventoryLots, k.LotID),
				Referencia: k.Reference,
			}
			r.refs = []*uint{target.LoteID}
			r.upsert = upsertOn(target, []string{"source_id"}, "fecha", "producto_id", "tipo", "qty", "unit_cost", "total_cost", "lote_id", "referencia")
			if err := rc.process(ctx, EntityKardex, sum, r); err != nil {
				return err
			}
		}
		return nil
	})
}

// FiscalDocuments upserts documentos_fiscales by (tipo_dte, folio). A document
// without folio uses its row key as folio.
func FiscalDocuments() Applier {
	return Func(EntityFiscalDocuments, func(ctx context.Context, rc *RunContext, sum *EntitySummary) error {
		for _, d := range rc.Payload.FiscalDocuments {
			folio := d.Folio
			key := d.TipoDte + "/" + d.Folio
			if folio == "" {
				k, err := rc.Addressor.RowKey("doc", d.ID, d)
				if err != nil {
					return err
				}
				folio, key = k, d.TipoDte+"/"+k
			}
			target := &models.FiscalDocument{
				SourceID:     d.ID,
				TipoDte:      d.TipoDte,
				Folio:        folio,
				FechaEmision: d.FechaEmision,
				Periodo:      d.Periodo,
				Neto:         d.Neto,
				Iva:          d.Iva,
				Total:        d.Total,
				Metadata:     jsonColumn(d.Metadata),
			}
			err := rc.process(ctx, EntityFiscalDocuments, sum, row{
				key:    key,
				record: d,
				upsert: upsertOn(target, []string{"tipo_dte", "folio"},
					"source_id", "fecha_emision", "periodo", "neto", "iva", "total", "metadata"),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Reconciliations upserts conciliaciones by row key.
func Reconciliations() Applier {
	return Func(EntityReconciliations, func(ctx context.Context, rc *RunContext, sum *EntitySummary) error {
		for _, c := range rc.Payload.Reconciliations {
			key, err := rc.Addressor.RowKey("conc", c.ID, c)
			if err != nil {
				return err
			}
			target := &models.Reconciliation{
				SourceID:   key,
				Fecha:      c.Fecha,
				Periodo:    c.Periodo,
				Estado:     c.Estado,
				SaldoBanco: c.SaldoBanco,
				SaldoLibro: c.SaldoLibro,
				Diferencia: c.Diferencia,
				Detalle:    c.Detalle,
			}
			err = rc.process(ctx, EntityReconciliations, sum, row{
				key:    key,
				record: c,
				upsert: upsertOn(target, []string{"source_id"},
					"fecha", "periodo", "estado", "saldo_banco", "saldo_libro", "diferencia", "detalle"),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// TaxConfigs upserts tax_config by year.
func TaxConfigs() Applier {
	return Func(EntityTaxConfig, func(ctx context.Context, rc *RunContext, sum *EntitySummary) error {
		for _, t := range rc.Payload.TaxConfigs {
			target := &models.TaxConfig{
				Anio:          t.Year,
				Regimen:       t.Regime,
				PpmRate:       t.PpmRate,
				IvaRate:       t.IvaRate,
				RetentionRate: t.RetentionRate,
			}
			err := rc.process(ctx, EntityTaxConfig, sum, row{
				key:    strconv.Itoa(t.Year),
				record: t,
				upsert: upsertOn(target, []string{"anio"}, "regimen", "ppm_rate", "iva_rate", "retention_rate"),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// jsonColumn stores valid JSON as is and anything else as a JSON string.
func jsonColumn(s string) datatypes.JSON {
	if s == "" {
		return nil
	}
	if json.Valid([]byte(s)) {
		return datatypes.JSON(s)
	}
	b, _ := json.Marshal(s)
	return datatypes.JSON(b)
}
