package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"accounting-sync/core/utils"
	"accounting-sync/feature/migration/errs"
	"accounting-sync/feature/migration/snapshot"

	"github.com/shopspring/decimal"
)

// Collection aliases, canonical name first.
var collectionAliases = map[string][]string{
	"usuarios":           {"usuarios", "users"},
	"sesiones":           {"sesiones", "sessions"},
	"cuentas":            {"cuentas", "accounts"},
	"terceros":           {"terceros", "counterparties"},
	"productos":          {"productos", "products"},
	"movimientos":        {"movimientos", "movements"},
	"flujoCaja":          {"flujoCaja", "flujo_caja", "cashFlow"},
	"periodos":           {"periodos", "periods"},
	"asientos":           {"asientos", "journalEntries"},
	"asientoLineas":      {"asientoLineas", "asiento_lineas", "journalLines"},
	"inventoryLots":      {"inventoryLots", "inventory_lots", "lotesInventario"},
	"kardexMovements":    {"kardexMovements", "kardex_movements", "kardex"},
	"rcvVentas":          {"rcvVentas", "rcv_ventas"},
	"rcvCompras":         {"rcvCompras", "rcv_compras"},
	"documentosFiscales": {"documentosFiscales", "documentos_fiscales"},
	"conciliaciones":     {"conciliaciones", "reconciliations"},
	"taxConfig":          {"taxConfig", "tax_config"},
}

// Default tax parameters for a year whose config omits them. The PPM default
// depends on the regime: DefaultPpmRate for DefaultRegime, OtherRegimePpmRate otherwise.
var (
	DefaultRegime        = "14D8"
	DefaultPpmRate       = decimal.RequireFromString("0.2")
	OtherRegimePpmRate   = decimal.RequireFromString("0.25")
	DefaultIvaRate       = decimal.RequireFromString("0.19")
	DefaultRetentionRate = decimal.RequireFromString("14.5")
)

// currentYear fills a tax config without year.
var currentYear = func() int { return time.Now().Year() }

type row map[string]any

// get returns the first alias present with a non-null value.
func (r row) get(aliases ...string) any {
	for _, a := range aliases {
		if v, ok := r[a]; ok && v != nil {
			return v
		}
	}
	return nil
}

func (r row) str(aliases ...string) string {
	return utils.ToTrimmedString(r.get(aliases...))
}

func (r row) dec(aliases ...string) decimal.Decimal {
	return utils.ToDecimal(r.get(aliases...))
}

func (r row) num(aliases ...string) int {
	return utils.ToInt(r.get(aliases...))
}

// Normalize projects a snapshot into a Payload. Absent collections become empty
// slices; a present collection that is not an array is a ConfigurationError.
func Normalize(s snapshot.Snapshot) (*Payload, error) {
	n := normalizer{snap: s}
	p := &Payload{
		Source:          n.source(),
		FiscalDocuments: []FiscalDocument{},
	}

	p.Users = mapRows(n.rows("usuarios"), toUser)
	p.Sessions = mapRows(n.rows("sesiones"), toSession)
	p.Accounts = mapRows(n.rows("cuentas"), toAccount)
	p.Counterparties = mapRows(n.rows("terceros"), toCounterparty)
	p.Products = mapRows(n.rows("productos"), toProduct)
	p.Movements = mapRows(n.rows("movimientos"), toMovement)
	p.CashFlow = mapRows(n.rows("flujoCaja"), toCashFlow)
	p.Periods = mapRows(n.rows("periodos"), toPeriod)
	p.JournalEntries = mapRows(n.rows("asientos"), toJournalEntry)
	p.JournalLines = mapRows(n.rows("asientoLineas"), toJournalLine)
	p.InventoryLots = mapRows(n.rows("inventoryLots"), toInventoryLot)
	p.KardexMovements = mapRows(n.rows("kardexMovements"), toKardex)

	p.FiscalDocuments = append(p.FiscalDocuments, mapRows(n.rows("rcvVentas"), rcvDocument(DocRCVVenta))...)
	p.FiscalDocuments = append(p.FiscalDocuments, mapRows(n.rows("rcvCompras"), rcvDocument(DocRCVCompra))...)
	p.FiscalDocuments = append(p.FiscalDocuments, mapRows(n.rows("documentosFiscales"), toFiscalDocument)...)

	p.Reconciliations = mapRows(n.rows("conciliaciones"), toReconciliation)
	p.TaxConfigs = mapRows(n.rows("taxConfig"), toTaxConfig)

	if n.err != nil {
		return nil, n.err
	}
	return p, nil
}

type normalizer struct {
	snap snapshot.Snapshot
	err  error
}

func (n *normalizer) source() string {
	raw, ok := n.snap["source"]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// rows decodes the collection behind the first present alias of name.
// A single object is accepted as a one-row collection (taxConfig is exported that way).
func (n *normalizer) rows(name string) []row {
	if n.err != nil {
		return nil
	}
	var raw json.RawMessage
	for _, alias := range collectionAliases[name] {
		if n.snap.Has(alias) {
			raw = bytes.TrimSpace(n.snap[alias])
			break
		}
	}
	if len(raw) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	switch raw[0] {
	case '[':
		var items []any
		if err := dec.Decode(&items); err != nil {
			n.err = errs.Configuration(fmt.Sprintf("collection %s is malformed", name), err)
			return nil
		}
		out := make([]row, 0, len(items))
		for _, item := range items {
			obj, _ := item.(map[string]any)
			out = append(out, row(obj))
		}
		return out
	case '{':
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			n.err = errs.Configuration(fmt.Sprintf("collection %s is malformed", name), err)
			return nil
		}
		if len(obj) == 0 {
			return nil
		}
		return []row{obj}
	default:
		n.err = errs.Configuration(fmt.Sprintf("collection %s is not an array", name), nil)
		return nil
	}
}

func mapRows[T any](rows []row, fn func(row) T) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, fn(r))
	}
	return out
}

func toUser(r row) User {
	return User{
		ID:           r.str("id"),
		Email:        strings.ToLower(r.str("email", "correo")),
		Nombre:       r.str("nombre", "name"),
		Rol:          r.str("rol", "role"),
		PasswordHash: r.str("passwordHash", "password_hash"),
		CreadoEn:     r.str("creadoEn", "creado_en", "createdAt", "created_at"),
	}
}

func toSession(r row) Session {
	return Session{
		Token:    r.str("token", "id"),
		UserID:   r.str("userId", "user_id", "usuarioId", "usuario_id"),
		CreadoEn: r.str("creadoEn", "creado_en", "createdAt"),
		ExpiraEn: r.str("expiraEn", "expira_en", "expiresAt"),
	}
}

func toAccount(r row) Account {
	return Account{
		ID:     r.str("id"),
		Codigo: r.str("codigo", "code"),
		Nombre: r.str("nombre", "name"),
		Tipo:   r.str("tipo", "type"),
	}
}

func toCounterparty(r row) Counterparty {
	return Counterparty{
		ID:     r.str("id"),
		Rut:    strings.ToUpper(r.str("rut")),
		Nombre: r.str("nombre", "razonSocial", "razon_social", "name"),
		Tipo:   r.str("tipo", "type"),
		Email:  strings.ToLower(r.str("email")),
	}
}

func toProduct(r row) Product {
	return Product{
		ID:            r.str("id"),
		Sku:           r.str("sku", "codigo"),
		Nombre:        r.str("nombre", "name"),
		Stock:         r.dec("stock"),
		CostoPromedio: r.dec("costoPromedio", "costo_promedio", "avgCost"),
	}
}

func toMovement(r row) Movement {
	fecha := r.str("fecha", "date")
	return Movement{
		ID:          r.str("id"),
		Fecha:       fecha,
		Periodo:     MonthKey(fecha),
		Tipo:        strings.ToUpper(r.str("tipo", "type")),
		Descripcion: r.str("descripcion", "glosa"),
		Neto:        r.dec("neto"),
		Iva:         r.dec("iva"),
		Total:       r.dec("total"),
		NDoc:        r.str("nDoc", "n_doc", "numeroDocumento"),
		Estado:      r.str("estado", "status"),
		ProductoID:  r.str("productoId", "productId", "producto_id", "product_id"),
		TerceroID:   r.str("terceroId", "tercero_id", "counterpartyId"),
	}
}

func toCashFlow(r row) CashFlowEntry {
	fecha := r.str("fecha", "date")
	return CashFlowEntry{
		ID:             r.str("id"),
		Fecha:          fecha,
		Periodo:        MonthKey(fecha),
		TipoMovimiento: strings.ToUpper(r.str("tipoMovimiento", "tipo_movimiento", "tipo")),
		Monto:          r.dec("monto", "amount"),
		Descripcion:    r.str("descripcion"),
		CuentaID:       r.str("cuentaId", "cuenta_id", "accountId"),
	}
}

func toPeriod(r row) Period {
	p := Period{
		Key:              r.str("key", "clave", "periodo"),
		Anio:             r.num("anio", "year"),
		Mes:              r.num("mes", "month"),
		Estado:           r.str("estado", "status"),
		CerradoPor:       r.str("cerradoPor", "cerrado_por"),
		CerradoEn:        r.str("cerradoEn", "cerrado_en"),
		ReabiertoPor:     r.str("reabiertoPor", "reabierto_por"),
		ReabiertoEn:      r.str("reabiertoEn", "reabierto_en"),
		MotivoReapertura: r.str("motivoReapertura", "motivo_reapertura"),
	}
	if p.Key == "" && p.Anio > 0 && p.Mes >= 1 && p.Mes <= 12 {
		p.Key = fmt.Sprintf("%04d-%02d", p.Anio, p.Mes)
	}
	if y, m, ok := parsePeriodKey(p.Key); ok && (p.Anio == 0 || p.Mes == 0) {
		p.Anio, p.Mes = y, m
	}
	return p
}

func toJournalEntry(r row) JournalEntry {
	fecha := r.str("fecha", "date")
	return JournalEntry{
		ID:        r.str("id"),
		Fecha:     fecha,
		Periodo:   MonthKey(fecha),
		Glosa:     r.str("glosa", "descripcion"),
		Origen:    r.str("origen", "source"),
		Estado:    r.str("estado", "status"),
		CreadoPor: author(r),
		CreadoEn:  r.str("creadoEn", "creado_en"),
	}
}

// author returns the entry author. Emails are lowercased to match user keys;
// a userId is kept as is.
func author(r row) string {
	if email := r.str("creadoPor", "creado_por"); email != "" {
		return strings.ToLower(email)
	}
	return r.str("userId")
}

func toJournalLine(r row) JournalLine {
	return JournalLine{
		ID:          r.str("id"),
		AsientoID:   r.str("asientoId", "asiento_id", "entryId"),
		CuentaID:    r.str("cuentaId", "cuenta_id", "accountId"),
		Debe:        r.dec("debe", "debit"),
		Haber:       r.dec("haber", "credit"),
		Descripcion: r.str("descripcion"),
	}
}

func toInventoryLot(r row) InventoryLot {
	return InventoryLot{
		ID:           r.str("id"),
		ProductID:    r.str("productId", "productoId", "product_id", "producto_id"),
		FechaIngreso: r.str("fechaIngreso", "fecha_ingreso", "fecha"),
		Qty:          r.dec("qty", "cantidad"),
		RemainingQty: r.dec("remainingQty", "remaining_qty"),
		UnitCost:     r.dec("unitCost", "unit_cost", "costoUnitario"),
		Source:       r.str("source", "origen"),
	}
}

func toKardex(r row) KardexMovement {
	return KardexMovement{
		ID:        r.str("id"),
		Fecha:     r.str("fecha", "date"),
		ProductID: r.str("productId", "productoId", "product_id", "producto_id"),
		Type:      kardexType(r.str("type", "tipo")),
		Qty:       r.dec("qty", "cantidad"),
		UnitCost:  r.dec("unitCost", "unit_cost"),
		TotalCost: r.dec("totalCost", "total_cost"),
		LotID:     r.str("lotId", "lot_id", "loteId"),
		Reference: r.str("reference", "referencia"),
	}
}

func kardexType(s string) string {
	switch strings.ToUpper(s) {
	case "IN", "ENTRADA":
		return "IN"
	case "OUT", "SALIDA":
		return "OUT"
	default:
		return strings.ToUpper(s)
	}
}

func rcvDocument(tipo string) func(row) FiscalDocument {
	return func(r row) FiscalDocument {
		d := toFiscalDocument(r)
		d.TipoDte = tipo
		return d
	}
}

func toFiscalDocument(r row) FiscalDocument {
	fecha := r.str("fechaEmision", "fecha_emision", "fecha")
	return FiscalDocument{
		ID:           r.str("id"),
		TipoDte:      strings.ToUpper(r.str("tipoDte", "tipo_dte", "tipo")),
		Folio:        r.str("folio"),
		FechaEmision: fecha,
		Periodo:      MonthKey(fecha),
		Neto:         r.dec("neto"),
		Iva:          r.dec("iva"),
		Total:        r.dec("total"),
		Metadata:     r.str("metadata"),
	}
}

func toReconciliation(r row) Reconciliation {
	fecha := r.str("fecha", "date")
	periodo := r.str("periodo", "period")
	if periodo == "" {
		periodo = MonthKey(fecha)
	}
	return Reconciliation{
		ID:         r.str("id"),
		Fecha:      fecha,
		Periodo:    periodo,
		Estado:     r.str("estado", "status"),
		SaldoBanco: r.dec("saldoBanco", "saldo_banco"),
		SaldoLibro: r.dec("saldoLibro", "saldo_libro"),
		Diferencia: r.dec("diferencia"),
		Detalle:    r.str("detalle", "detail"),
	}
}

func toTaxConfig(r row) TaxConfig {
	t := TaxConfig{
		Year:          r.num("year", "anio"),
		Regime:        r.str("regime", "regimen"),
		PpmRate:       r.dec("ppmRate", "ppm_rate"),
		IvaRate:       r.dec("ivaRate", "iva_rate"),
		RetentionRate: r.dec("retentionRate", "retention_rate"),
	}
	if t.Year == 0 {
		t.Year = currentYear()
	}
	if t.Regime == "" {
		t.Regime = DefaultRegime
	}
	if r.get("ppmRate", "ppm_rate") == nil {
		t.PpmRate = OtherRegimePpmRate
		if t.Regime == DefaultRegime {
			t.PpmRate = DefaultPpmRate
		}
	}
	if r.get("ivaRate", "iva_rate") == nil {
		t.IvaRate = DefaultIvaRate
	}
	if r.get("retentionRate", "retention_rate") == nil {
		t.RetentionRate = DefaultRetentionRate
	}
	return t
}
