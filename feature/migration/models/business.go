package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// User maps the 'usuarios' table.
type User struct {
	ID           uint   `gorm:"primaryKey;column:id"`
	SourceID     string `gorm:"column:source_id;type:varchar(191)"`
	Email        string `gorm:"column:email;type:varchar(191);uniqueIndex;not null"`
	Nombre       string `gorm:"column:nombre;type:varchar(255);not null"`
	Rol          string `gorm:"column:rol;type:varchar(32);not null"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255)"`
	CreadoEn     string `gorm:"column:creado_en;type:varchar(40)"`
}

func (User) TableName() string { return "usuarios" }

// Session maps the 'sesiones' table.
type Session struct {
	ID        uint   `gorm:"primaryKey;column:id"`
	Token     string `gorm:"column:token;type:varchar(191);uniqueIndex;not null"`
	UsuarioID uint   `gorm:"column:usuario_id;not null;index"`
	CreadoEn  string `gorm:"column:creado_en;type:varchar(40)"`
	ExpiraEn  string `gorm:"column:expira_en;type:varchar(40)"`
}

func (Session) TableName() string { return "sesiones" }

// Account maps the 'cuentas' table (chart of accounts).
type Account struct {
	ID       uint   `gorm:"primaryKey;column:id"`
	SourceID string `gorm:"column:source_id;type:varchar(191)"`
	Codigo   string `gorm:"column:codigo;type:varchar(64);uniqueIndex;not null"`
	Nombre   string `gorm:"column:nombre;type:varchar(255);not null"`
	Tipo     string `gorm:"column:tipo;type:varchar(32)"`
}

func (Account) TableName() string { return "cuentas" }

// Counterparty maps the 'terceros' table.
type Counterparty struct {
	ID       uint   `gorm:"primaryKey;column:id"`
	SourceID string `gorm:"column:source_id;type:varchar(191)"`
	Rut      string `gorm:"column:rut;type:varchar(32);uniqueIndex;not null"`
	Nombre   string `gorm:"column:nombre;type:varchar(255);not null"`
	Tipo     string `gorm:"column:tipo;type:varchar(32)"`
	Email    string `gorm:"column:email;type:varchar(191)"`
}

func (Counterparty) TableName() string { return "terceros" }

// Product maps the 'productos' table.
type Product struct {
	ID            uint            `gorm:"primaryKey;column:id"`
	SourceID      string          `gorm:"column:source_id;type:varchar(191)"`
	Sku           string          `gorm:"column:sku;type:varchar(191);uniqueIndex;not null"`
	Nombre        string          `gorm:"column:nombre;type:varchar(255);not null"`
	Stock         decimal.Decimal `gorm:"column:stock;type:decimal(18,4);not null"`
	CostoPromedio decimal.Decimal `gorm:"column:costo_promedio;type:decimal(18,2);not null"`
}

func (Product) TableName() string { return "productos" }

// Movement maps the 'movimientos' table. SourceID holds the row key.
type Movement struct {
	ID          uint            `gorm:"primaryKey;column:id"`
	SourceID    string          `gorm:"column:source_id;type:varchar(191);uniqueIndex;not null"`
	Fecha       string          `gorm:"column:fecha;type:varchar(40)"`
	Periodo     string          `gorm:"column:periodo;type:varchar(16);index;not null"`
	Tipo        string          `gorm:"column:tipo;type:varchar(32);not null"`
	Descripcion string          `gorm:"column:descripcion;type:text"`
	Neto        decimal.Decimal `gorm:"column:neto;type:decimal(18,2);not null"`
	Iva         decimal.Decimal `gorm:"column:iva;type:decimal(18,2);not null"`
	Total       decimal.Decimal `gorm:"column:total;type:decimal(18,2);not null"`
	NDoc        string          `gorm:"column:n_doc;type:varchar(64)"`
	Estado      string          `gorm:"column:estado;type:varchar(32)"`
	ProductoID  *uint           `gorm:"column:producto_id;index"`
	TerceroID   *uint           `gorm:"column:tercero_id;index"`
}

func (Movement) TableName() string { return "movimientos" }

// CashFlowEntry maps the 'flujo_caja' table.
type CashFlowEntry struct {
	ID             uint            `gorm:"primaryKey;column:id"`
	SourceID       string          `gorm:"column:source_id;type:varchar(191);uniqueIndex;not null"`
	Fecha          string          `gorm:"column:fecha;type:varchar(40)"`
	Periodo        string          `gorm:"column:periodo;type:varchar(16);index;not null"`
	TipoMovimiento string          `gorm:"column:tipo_movimiento;type:varchar(32);not null"`
	Monto          decimal.Decimal `gorm:"column:monto;type:decimal(18,2);not null"`
	Descripcion    string          `gorm:"column:descripcion;type:text"`
	CuentaID       *uint           `gorm:"column:cuenta_id;index"`
}

func (CashFlowEntry) TableName() string { return "flujo_caja" }

// Period maps the 'periodos_contables' table.
type Period struct {
	ID               uint   `gorm:"primaryKey;column:id"`
	Clave            string `gorm:"column:clave;type:varchar(16);uniqueIndex;not null"`
	Anio             int    `gorm:"column:anio;not null"`
	Mes              int    `gorm:"column:mes;not null"`
	Estado           string `gorm:"column:estado;type:varchar(32);not null"`
	CerradoPor       string `gorm:"column:cerrado_por;type:varchar(191)"`
	CerradoEn        string `gorm:"column:cerrado_en;type:varchar(40)"`
	ReabiertoPor     string `gorm:"column:reabierto_por;type:varchar(191)"`
	ReabiertoEn      string `gorm:"column:reabierto_en;type:varchar(40)"`
	MotivoReapertura string `gorm:"column:motivo_reapertura;type:text"`
}

func (Period) TableName() string { return "periodos_contables" }

// JournalEntry maps the 'asientos_contables' table.
type JournalEntry struct {
	ID        uint   `gorm:"primaryKey;column:id"`
	SourceID  string `gorm:"column:source_id;type:varchar(191);uniqueIndex;not null"`
	Fecha     string `gorm:"column:fecha;type:varchar(40)"`
	Periodo   string `gorm:"column:periodo;type:varchar(16);index;not null"`
	Glosa     string `gorm:"column:glosa;type:text;not null"`
	Origen    string `gorm:"column:origen;type:varchar(32)"`
	Estado    string `gorm:"column:estado;type:varchar(32)"`
	CreadoPor *uint  `gorm:"column:creado_por;index"`
	CreadoEn  string `gorm:"column:creado_en;type:varchar(40)"`
}

func (JournalEntry) TableName() string { return "asientos_contables" }

// JournalLine maps the 'asiento_lineas' table. Both parents are mandatory.
type JournalLine struct {
	ID          uint            `gorm:"primaryKey;column:id"`
	SourceID    string          `gorm:"column:source_id;type:varchar(191);uniqueIndex;not null"`
	AsientoID   uint            `gorm:"column:asiento_id;not null;index"`
	CuentaID    uint            `gorm:"column:cuenta_id;not null;index"`
	Debe        decimal.Decimal `gorm:"column:debe;type:decimal(18,2);not null"`
	Haber       decimal.Decimal `gorm:"column:haber;type:decimal(18,2);not null"`
	Descripcion string          `gorm:"column:descripcion;type:text"`
}

func (JournalLine) TableName() string { return "asiento_lineas" }

// InventoryLot maps the 'lotes_inventario' table.
type InventoryLot struct {
	ID           uint            `gorm:"primaryKey;column:id"`
	SourceID     string          `gorm:"column:source_id;type:varchar(191);uniqueIndex;not null"`
	ProductoID   uint            `gorm:"column:producto_id;not null;index"`
	FechaIngreso string          `gorm:"column:fecha_ingreso;type:varchar(40)"`
	Qty          decimal.Decimal `gorm:"column:qty;type:decimal(18,4);not null"`
	RemainingQty decimal.Decimal `gorm:"column:remaining_qty;type:decimal(18,4);not null"`
	UnitCost     decimal.Decimal `gorm:"column:unit_cost;type:decimal(18,2);not null"`
	Origen       string          `gorm:"column:origen;type:varchar(32)"`
}

func (InventoryLot) TableName() string { return "lotes_inventario" }

// KardexMovement maps the 'kardex_movimientos' table.
type KardexMovement struct {
	ID         uint            `gorm:"primaryKey;column:id"`
	SourceID   string          `gorm:"column:source_id;type:varchar(191);uniqueIndex;not null"`
	Fecha      string          `gorm:"column:fecha;type:varchar(40)"`
	ProductoID uint            `gorm:"column:producto_id;not null;index"`
	Tipo       string          `gorm:"column:tipo;type:varchar(8);not null"`
	Qty        decimal.Decimal `gorm:"column:qty;type:decimal(18,4);not null"`
	UnitCost   decimal.Decimal `gorm:"column:unit_cost;type:decimal(18,2);not null"`
	TotalCost  decimal.Decimal `gorm:"column:total_cost;type:decimal(18,2);not null"`
	LoteID     *uint           `gorm:"column:lote_id;index"`
	Referencia string          `gorm:"column:referencia;type:varchar(191)"`
}

func (KardexMovement) TableName() string { return "kardex_movimientos" }

// FiscalDocument maps the 'documentos_fiscales' table, unique on (tipo_dte, folio).
type FiscalDocument struct {
	ID           uint            `gorm:"primaryKey;column:id"`
	SourceID     string          `gorm:"column:source_id;type:varchar(191)"`
	TipoDte      string          `gorm:"column:tipo_dte;type:varchar(32);uniqueIndex:idx_documentos_fiscales_tipo_folio;not null"`
	Folio        string          `gorm:"column:folio;type:varchar(64);uniqueIndex:idx_documentos_fiscales_tipo_folio;not null"`
	FechaEmision string          `gorm:"column:fecha_emision;type:varchar(40)"`
	Periodo      string          `gorm:"column:periodo;type:varchar(16);index;not null"`
	Neto         decimal.Decimal `gorm:"column:neto;type:decimal(18,2);not null"`
	Iva          decimal.Decimal `gorm:"column:iva;type:decimal(18,2);not null"`
	Total        decimal.Decimal `gorm:"column:total;type:decimal(18,2);not null"`
	Metadata     datatypes.JSON  `gorm:"column:metadata"`
}

func (FiscalDocument) TableName() string { return "documentos_fiscales" }

// Reconciliation maps the 'conciliaciones' table.
type Reconciliation struct {
	ID         uint            `gorm:"primaryKey;column:id"`
	SourceID   string          `gorm:"column:source_id;type:varchar(191);uniqueIndex;not null"`
	Fecha      string          `gorm:"column:fecha;type:varchar(40)"`
	Periodo    string          `gorm:"column:periodo;type:varchar(16);index;not null"`
	Estado     string          `gorm:"column:estado;type:varchar(32)"`
	SaldoBanco decimal.Decimal `gorm:"column:saldo_banco;type:decimal(18,2);not null"`
	SaldoLibro decimal.Decimal `gorm:"column:saldo_libro;type:decimal(18,2);not null"`
	Diferencia decimal.Decimal `gorm:"column:diferencia;type:decimal(18,2);not null"`
	Detalle    string          `gorm:"column:detalle;type:text"`
}

func (Reconciliation) TableName() string { return "conciliaciones" }

// TaxConfig maps the 'tax_config' table, one row per fiscal year.
type TaxConfig struct {
	ID            uint            `gorm:"primaryKey;column:id"`
	Anio          int             `gorm:"column:anio;uniqueIndex;not null"`
	Regimen       string          `gorm:"column:regimen;type:varchar(16);not null"`
	PpmRate       decimal.Decimal `gorm:"column:ppm_rate;type:decimal(9,4);not null"`
	IvaRate       decimal.Decimal `gorm:"column:iva_rate;type:decimal(9,4);not null"`
	RetentionRate decimal.Decimal `gorm:"column:retention_rate;type:decimal(9,4);not null"`
}

func (TaxConfig) TableName() string { return "tax_config" }
