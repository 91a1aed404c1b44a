package apply

import (
	"context"

	"accounting-sync/feature/migration/models"
)

// Sessions upserts sesiones by token. The user is required.
func Sessions() Applier {
	return Func(EntitySessions, func(ctx context.Context, rc *RunContext, sum *EntitySummary) error {
		for _, s := range rc.Payload.Sessions {
			r := row{key: s.Token, record: s}
			userID, ok := rc.IDs.Get(EntityUsers, s.UserID)
			if !ok {
				r.gap = gap(EntitySessions, s.Token, EntityUsers, s.UserID)
			}
			r.upsert = upsertOn(&models.Session{
				Token:     s.Token,
				UsuarioID: userID,
				CreadoEn:  s.CreadoEn,
				ExpiraEn:  s.ExpiraEn,
			}, []string{"token"}, "usuario_id", "creado_en", "expira_en")
			if err := rc.process(ctx, EntitySessions, sum, r); err != nil {
				return err
			}
		}
		return nil
	})
}

// Movements upserts movimientos by row key. Product and counterparty are optional.
func Movements() Applier {
	return Func(EntityMovements, func(ctx context.Context, rc *RunContext, sum *EntitySummary) error {
		for _, m := range rc.Payload.Movements {
			key, err := rc.Addressor.RowKey("mov", m.ID, m)
			if err != nil {
				return err
			}
			target := &models.Movement{
				SourceID:    key,
				Fecha:       m.Fecha,
				Periodo:     m.Periodo,
				Tipo:        orDefault(m.Tipo, DefaultMovementType),
				Descripcion: m.Descripcion,
				Neto:        m.Neto,
				Iva:         m.Iva,
				Total:       m.Total,
				NDoc:        m.NDoc,
				Estado:      m.Estado,
				ProductoID:  rc.IDs.Optional(EntityProducts, m.ProductoID),
				TerceroID:   rc.IDs.Optional(EntityCounterparties, m.TerceroID),
			}
			err = rc.process(ctx, EntityMovements, sum, row{
				key:    key,
				record: m,
				refs:   []*uint{target.ProductoID, target.TerceroID},
				upsert: upsertOn(target, []string{"source_id"},
					"fecha", "periodo", "tipo", "descripcion", "neto", "iva", "total", "n_doc", "estado", "producto_id", "tercero_id"),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// CashFlow upserts flujo_caja by row key. The account is optional.
func CashFlow() Applier {
	return Func(EntityCashFlow, func(ctx context.Context, rc *RunContext, sum *EntitySummary) error {
		for _, f := range rc.Payload.CashFlow {
			key, err := rc.Addressor.RowKey("fc", f.ID, f)
			if err != nil {
				return err
			}
			target := &models.CashFlowEntry{
				SourceID:       key,
				Fecha:          f.Fecha,
				Periodo:        f.Periodo,
				TipoMovimiento: orDefault(f.TipoMovimiento, DefaultMovementType),
				Monto:          f.Monto,
				Descripcion:    f.Descripcion,
				CuentaID:       rc.IDs.Optional(EntityAccounts, f.CuentaID),
			}
			err = rc.process(ctx, EntityCashFlow, sum, row{
				key:    key,
				record: f,
				refs:   []*uint{target.CuentaID},
				upsert: upsertOn(target, []string{"source_id"},
					"fecha", "periodo", "tipo_movimiento", "monto", "descripcion", "cuenta_id"),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Periods upserts periodos_contables by YYYY-MM key.
func Periods() Applier {
	return Func(EntityPeriods, func(ctx context.Context, rc *RunContext, sum *EntitySummary) error {
		for _, p := range rc.Payload.Periods {
			target := &models.Period{
				Clave:            p.Key,
				Anio:             p.Anio,
				Mes:              p.Mes,
				Estado:           orDefault(p.Estado, DefaultPeriodState),
				CerradoPor:       p.CerradoPor,
				CerradoEn:        p.CerradoEn,
				ReabiertoPor:     p.ReabiertoPor,
				ReabiertoEn:      p.ReabiertoEn,
				MotivoReapertura: p.MotivoReapertura,
			}
			err := rc.process(ctx, EntityPeriods, sum, row{
				key:    p.Key,
				record: p,
				upsert: upsertOn(target, []string{"clave"},
					"anio", "mes", "estado", "cerrado_por", "cerrado_en", "reabierto_por", "reabierto_en", "motivo_reapertura"),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// JournalEntries upserts asientos_contables by row key. The author is optional.
func JournalEntries() Applier {
	return Func(EntityJournalEntries, func(ctx context.Context, rc *RunContext, sum *EntitySummary) error {
		for _, e := range rc.Payload.JournalEntries {
			key, err := rc.Addressor.RowKey("as", e.ID, e)
			if err != nil {
				return err
			}
			target := &models.JournalEntry{
				SourceID:  key,
				Fecha:     e.Fecha,
				Periodo:   e.Periodo,
				Glosa:     orDefault(e.Glosa, DefaultJournalGloss),
				Origen:    e.Origen,
				Estado:    e.Estado,
				CreadoPor: rc.IDs.Optional(EntityUsers, e.CreadoPor),
				CreadoEn:  e.CreadoEn,
			}
			err = rc.process(ctx, EntityJournalEntries, sum, row{
				key:     key,
				record:  e,
				aliases: []string{e.ID},
				refs:    []*uint{target.CreadoPor},
				upsert: upsertOn(target, []string{"source_id"},
					"fecha", "periodo", "glosa", "origen", "estado", "creado_por", "creado_en"),
				resolve: resolveBy(&models.JournalEntry{}, "source_id", key),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}
