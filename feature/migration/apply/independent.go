package apply

import (
	"context"

	"accounting-sync/feature/migration/models"
)

// Users upserts usuarios by email.
func Users() Applier {
	return Func(EntityUsers, func(ctx context.Context, rc *RunContext, sum *EntitySummary) error {
		for _, u := range rc.Payload.Users {
			m := &models.User{
				SourceID:     u.ID,
				Email:        u.Email,
				Nombre:       orDefault(u.Nombre, u.Email),
				Rol:          orDefault(u.Rol, DefaultRole),
				PasswordHash: u.PasswordHash,
				CreadoEn:     u.CreadoEn,
			}
			err := rc.process(ctx, EntityUsers, sum, row{
				key:     u.Email,
				record:  u,
				aliases: []string{u.ID},
				upsert:  upsertOn(m, []string{"email"}, "source_id", "nombre", "rol", "password_hash", "creado_en"),
				resolve: resolveBy(&models.User{}, "email", u.Email),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Accounts upserts cuentas by codigo.
func Accounts() Applier {
	return Func(EntityAccounts, func(ctx context.Context, rc *RunContext, sum *EntitySummary) error {
		for _, a := range rc.Payload.Accounts {
			m := &models.Account{
				SourceID: a.ID,
				Codigo:   a.Codigo,
				Nombre:   orDefault(a.Nombre, DefaultAccountName),
				Tipo:     a.Tipo,
			}
			err := rc.process(ctx, EntityAccounts, sum, row{
				key:     a.Codigo,
				record:  a,
				aliases: []string{a.ID},
				upsert:  upsertOn(m, []string{"codigo"}, "source_id", "nombre", "tipo"),
				resolve: resolveBy(&models.Account{}, "codigo", a.Codigo),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Counterparties upserts terceros by rut.
func Counterparties() Applier {
	return Func(EntityCounterparties, func(ctx context.Context, rc *RunContext, sum *EntitySummary) error {
		for _, c := range rc.Payload.Counterparties {
			m := &models.Counterparty{
				SourceID: c.ID,
				Rut:      c.Rut,
				Nombre:   orDefault(c.Nombre, DefaultCounterpartyName),
				Tipo:     c.Tipo,
				Email:    c.Email,
			}
			err := rc.process(ctx, EntityCounterparties, sum, row{
				key:     c.Rut,
				record:  c,
				aliases: []string{c.ID},
				upsert:  upsertOn(m, []string{"rut"}, "source_id", "nombre", "tipo", "email"),
				resolve: resolveBy(&models.Counterparty{}, "rut", c.Rut),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Products upserts productos by sku. A product without sku uses its row key.
func Products() Applier {
	return Func(EntityProducts, func(ctx context.Context, rc *RunContext, sum *EntitySummary) error {
		for _, p := range rc.Payload.Products {
			natural := p.Sku
			if natural == "" {
				natural = p.ID
			}
			key, err := rc.Addressor.RowKey("prod", natural, p)
			if err != nil {
				return err
			}
			m := &models.Product{
				SourceID:      p.ID,
				Sku:           key,
				Nombre:        orDefault(p.Nombre, DefaultProductName),
				Stock:         p.Stock,
				CostoPromedio: p.CostoPromedio,
			}
			err = rc.process(ctx, EntityProducts, sum, row{
				key:     key,
				record:  p,
				aliases: []string{p.ID, p.Sku},
				upsert:  upsertOn(m, []string{"sku"}, "source_id", "nombre", "stock", "costo_promedio"),
				resolve: resolveBy(&models.Product{}, "sku", key),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}
