package payload

import "github.com/shopspring/decimal"

// User is a usuarios row. Email is the business key.
type User struct {
	ID           string `json:"id,omitempty"`
	Email        string `json:"email" validate:"required"`
	Nombre       string `json:"nombre"`
	Rol          string `json:"rol"`
	PasswordHash string `json:"passwordHash,omitempty"`
	CreadoEn     string `json:"creadoEn,omitempty"`
}

// Session is a sesiones row. Token is the business key.
type Session struct {
	Token    string `json:"token" validate:"required"`
	UserID   string `json:"userId"`
	CreadoEn string `json:"creadoEn,omitempty"`
	ExpiraEn string `json:"expiraEn,omitempty"`
}

// Account is a cuentas (chart of accounts) row. Codigo is the business key.
type Account struct {
	ID     string `json:"id,omitempty"`
	Codigo string `json:"codigo" validate:"required"`
	Nombre string `json:"nombre"`
	Tipo   string `json:"tipo"`
}

// Counterparty is a terceros row. Rut is the business key.
type Counterparty struct {
	ID     string `json:"id,omitempty"`
	Rut    string `json:"rut" validate:"required"`
	Nombre string `json:"nombre"`
	Tipo   string `json:"tipo"`
	Email  string `json:"email,omitempty"`
}

// Product is a productos row. Sku is the business key.
type Product struct {
	ID            string          `json:"id,omitempty"`
	Sku           string          `json:"sku"`
	Nombre        string          `json:"nombre"`
	Stock         decimal.Decimal `json:"stock"`
	CostoPromedio decimal.Decimal `json:"costoPromedio"`
}

// Movement is a movimientos row.
type Movement struct {
	ID          string          `json:"id"`
	Fecha       string          `json:"fecha"`
	Periodo     string          `json:"periodo"`
	Tipo        string          `json:"tipo"`
	Descripcion string          `json:"descripcion"`
	Neto        decimal.Decimal `json:"neto"`
	Iva         decimal.Decimal `json:"iva"`
	Total       decimal.Decimal `json:"total"`
	NDoc        string          `json:"nDoc,omitempty"`
	Estado      string          `json:"estado"`
	ProductoID  string          `json:"productoId,omitempty"`
	TerceroID   string          `json:"terceroId,omitempty"`
}

// CashFlowEntry is a flujo_caja row.
type CashFlowEntry struct {
	ID             string          `json:"id"`
	Fecha          string          `json:"fecha"`
	Periodo        string          `json:"periodo"`
	TipoMovimiento string          `json:"tipoMovimiento"`
	Monto          decimal.Decimal `json:"monto"`
	Descripcion    string          `json:"descripcion"`
	CuentaID       string          `json:"cuentaId,omitempty"`
}

// Period is a periodos_contables row keyed by YYYY-MM.
type Period struct {
	Key              string `json:"key" validate:"required"`
	Anio             int    `json:"anio"`
	Mes              int    `json:"mes"`
	Estado           string `json:"estado"`
	CerradoPor       string `json:"cerradoPor,omitempty"`
	CerradoEn        string `json:"cerradoEn,omitempty"`
	ReabiertoPor     string `json:"reabiertoPor,omitempty"`
	ReabiertoEn      string `json:"reabiertoEn,omitempty"`
	MotivoReapertura string `json:"motivoReapertura,omitempty"`
}

// JournalEntry is an asientos_contables row. CreadoPor holds the author's email or id.
type JournalEntry struct {
	ID        string `json:"id"`
	Fecha     string `json:"fecha"`
	Periodo   string `json:"periodo"`
	Glosa     string `json:"glosa"`
	Origen    string `json:"origen"`
	Estado    string `json:"estado"`
	CreadoPor string `json:"creadoPor,omitempty"`
	CreadoEn  string `json:"creadoEn,omitempty"`
}

// JournalLine is an asiento_lineas row. Both parents are required.
type JournalLine struct {
	ID          string          `json:"id"`
	AsientoID   string          `json:"asientoId"`
	CuentaID    string          `json:"cuentaId"`
	Debe        decimal.Decimal `json:"debe"`
	Haber       decimal.Decimal `json:"haber"`
	Descripcion string          `json:"descripcion"`
}

// InventoryLot is a lotes_inventario row.
type InventoryLot struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"productId"`
	FechaIngreso string          `json:"fechaIngreso"`
	Qty          decimal.Decimal `json:"qty" validate:"gt=0"`
	RemainingQty decimal.Decimal `json:"remainingQty"`
	UnitCost     decimal.Decimal `json:"unitCost"`
	Source       string          `json:"source"`
}

// KardexMovement is a kardex_movimientos row.
type KardexMovement struct {
	ID        string          `json:"id"`
	Fecha     string          `json:"fecha"`
	ProductID string          `json:"productId"`
	Type      string          `json:"type" validate:"oneof=IN OUT"`
	Qty       decimal.Decimal `json:"qty" validate:"gt=0"`
	UnitCost  decimal.Decimal `json:"unitCost"`
	TotalCost decimal.Decimal `json:"totalCost"`
	LotID     string          `json:"lotId,omitempty"`
	Reference string          `json:"reference,omitempty"`
}

// Fiscal document kinds merged into documentos_fiscales.
const (
	DocRCVVenta  = "RCV_VENTA"
	DocRCVCompra = "RCV_COMPRA"
)

// FiscalDocument is a documentos_fiscales row. (TipoDte, Folio) is the business key.
type FiscalDocument struct {
	ID           string          `json:"id,omitempty"`
	TipoDte      string          `json:"tipoDte" validate:"required"`
	Folio        string          `json:"folio"`
	FechaEmision string          `json:"fechaEmision"`
	Periodo      string          `json:"periodo"`
	Neto         decimal.Decimal `json:"neto"`
	Iva          decimal.Decimal `json:"iva"`
	Total        decimal.Decimal `json:"total"`
	Metadata     string          `json:"metadata,omitempty"`
}

// Reconciliation is a conciliaciones row (bank statement vs books for a period).
type Reconciliation struct {
	ID         string          `json:"id"`
	Fecha      string          `json:"fecha"`
	Periodo    string          `json:"periodo"`
	Estado     string          `json:"estado"`
	SaldoBanco decimal.Decimal `json:"saldoBanco"`
	SaldoLibro decimal.Decimal `json:"saldoLibro"`
	Diferencia decimal.Decimal `json:"diferencia"`
	Detalle    string          `json:"detalle,omitempty"`
}

// TaxConfig is the tax_config row of a fiscal year.
type TaxConfig struct {
	Year          int             `json:"year" validate:"required"`
	Regime        string          `json:"regime"`
	PpmRate       decimal.Decimal `json:"ppmRate"`
	IvaRate       decimal.Decimal `json:"ivaRate"`
	RetentionRate decimal.Decimal `json:"retentionRate"`
}

// Payload is the normalized projection of a snapshot. Every collection is non-nil.
type Payload struct {
	Source          string           `json:"-"`
	Users           []User           `json:"usuarios"`
	Sessions        []Session        `json:"sesiones"`
	Accounts        []Account        `json:"cuentas"`
	Counterparties  []Counterparty   `json:"terceros"`
	Products        []Product        `json:"productos"`
	Movements       []Movement       `json:"movimientos"`
	CashFlow        []CashFlowEntry  `json:"flujoCaja"`
	Periods         []Period         `json:"periodos"`
	JournalEntries  []JournalEntry   `json:"asientos"`
	JournalLines    []JournalLine    `json:"asientoLineas"`
	InventoryLots   []InventoryLot   `json:"inventoryLots"`
	KardexMovements []KardexMovement `json:"kardexMovements"`
	FiscalDocuments []FiscalDocument `json:"documentosFiscales"`
	Reconciliations []Reconciliation `json:"conciliaciones"`
	TaxConfigs      []TaxConfig      `json:"taxConfig"`
}
