package apply

import (
	"context"
	"fmt"

	"accounting-sync/feature/migration/content"
	"accounting-sync/feature/migration/errs"
	"accounting-sync/feature/migration/payload"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RowLedger decides whether a row has to be written.
type RowLedger interface {
	ShouldApply(ctx context.Context, tx *gorm.DB, entity, rowKey, checksum, batchID string) (bool, error)
}

// RunContext is everything an applier needs for one batch. Tx is the single
// apply transaction; nothing may write through another handle.
type RunContext struct {
	Tx         *gorm.DB
	Payload    *payload.Payload
	Ledger     RowLedger
	Addressor  content.Addressor
	BatchID    string
	IDs        *IDMap
	FailOnDrop bool
	Logger     *zap.Logger
}

// row is one source record ready to be applied.
type row struct {
	key    string
	record any
	// aliases are extra IdMap keys (source id, business key).
	aliases []string
	// gap is set when a required parent is unresolved.
	gap *errs.ReferentialGapError
	// refs are the resolved optional parent ids written with the row.
	refs []*uint
	// upsert writes the record by its business key.
	upsert func(tx *gorm.DB) error
	// resolve returns the surrogate id. Only parents of other entities set it.
	resolve func(tx *gorm.DB) (uint, error)
}

// process runs one row through validation, referential checks, the ledger and
// the write, in that order, and records its outcome.
func (rc *RunContext) process(ctx context.Context, entity string, sum *EntitySummary, r row) error {
	if reason := payload.Validate(r.record); reason != "" {
		verr := &errs.ValidationError{Entity: entity, RowKey: r.key, Reason: reason}
		rc.Logger.Debug("Row skipped", zap.String("entity", entity), zap.Error(verr))
		sum.Record(Outcome{Kind: Skipped, Reason: reason})
		return nil
	}

	if r.gap != nil {
		if rc.FailOnDrop {
			return r.gap
		}
		rc.Logger.Debug("Row dropped", zap.String("entity", entity), zap.Error(r.gap))
		sum.Record(Outcome{Kind: Dropped, Reason: "missing " + r.gap.Parent})
		return nil
	}

	checksum, err := rc.Addressor.Hash(r.hashed())
	if err != nil {
		return fmt.Errorf("failed to hash %s row %q: %w", entity, r.key, err)
	}

	tx := rc.Tx.WithContext(ctx)
	ok, err := rc.Ledger.ShouldApply(ctx, tx, entity, r.key, checksum, rc.BatchID)
	if err != nil {
		return err
	}
	if ok {
		if err := r.upsert(tx); err != nil {
			return fmt.Errorf("failed to upsert %s row %q: %w", entity, r.key, err)
		}
		sum.Record(Outcome{Kind: Applied})
	} else {
		sum.Record(Outcome{Kind: Skipped, Reason: ReasonUnchanged})
	}

	if r.resolve == nil {
		return nil
	}
	id, err := r.resolve(tx)
	if err != nil {
		return fmt.Errorf("failed to resolve %s row %q: %w", entity, r.key, err)
	}
	if id == 0 {
		if ok {
			return fmt.Errorf("%s row %q not found after upsert", entity, r.key)
		}
		rc.Logger.Warn("Unchanged row missing from target", zap.String("entity", entity), zap.String("row_key", r.key))
		return nil
	}
	rc.IDs.Put(entity, id, append([]string{r.key}, r.aliases...)...)
	return nil
}

// resolvedRecord is what gets hashed for a row whose optional parents resolved.
type resolvedRecord struct {
	Record any     `json:"record"`
	Refs   []*uint `json:"refs"`
}

// hashed returns the value the row checksum covers. Once an optional parent
// resolves the checksum changes, so the row is rewritten with the new link.
func (r row) hashed() any {
	for _, ref := range r.refs {
		if ref != nil {
			return resolvedRecord{Record: r.record, Refs: r.refs}
		}
	}
	return r.record
}

// gap builds a ReferentialGapError for a required parent.
func gap(entity, key, parent, ref string) *errs.ReferentialGapError {
	return &errs.ReferentialGapError{Entity: entity, RowKey: key, Parent: parent, Ref: ref}
}

// lookupID selects the surrogate id of the row whose column equals value.
func lookupID(tx *gorm.DB, model any, column string, value any) (uint, error) {
	var ids []uint
	err := tx.Model(model).Where(column+" = ?", value).Limit(1).Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	return ids[0], nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
