package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	cause := errors.New("connection refused")

	cfgErr := fmt.Errorf("failed to start: %w", Configuration("database.name is empty", nil))
	txErr := fmt.Errorf("run: %w", &TransactionError{BatchID: "b1", Entity: "productos", Err: cause})
	gapErr := &ReferentialGapError{Entity: "asientoLineas", RowKey: "ALN-1", Parent: "asientos", Ref: "AST-9"}

	assert.True(t, IsConfiguration(cfgErr))
	assert.False(t, IsConfiguration(txErr))

	assert.True(t, IsTransaction(txErr))
	assert.ErrorIs(t, txErr, cause)
	assert.Equal(t, "run: batch b1 failed while applying productos: connection refused", txErr.Error())

	assert.True(t, IsReferentialGap(gapErr))
	assert.Equal(t, `asientoLineas row "ALN-1" references missing asientos "AST-9"`, gapErr.Error())
}

func TestConfigurationError_Message(t *testing.T) {
	assert.Equal(t, "configuration error: missing driver", Configuration("missing driver", nil).Error())
	assert.Equal(t, "configuration error: bad: boom", Configuration("bad", errors.New("boom")).Error())
}
