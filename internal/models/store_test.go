// internal/models/store_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActiveForStatus(t *testing.T) {
	assert.True(t, ActiveForStatus(StoreStatusApproved))
	assert.False(t, ActiveForStatus(StoreStatusPending))
	assert.False(t, ActiveForStatus(StoreStatusRejected))
	assert.False(t, ActiveForStatus(StoreStatusSuspended))
}

func TestValidStoreStatus(t *testing.T) {
	for _, s := range []StoreStatus{
		StoreStatusPending, StoreStatusApproved, StoreStatusRejected, StoreStatusSuspended,
	} {
		assert.True(t, ValidStoreStatus(s), string(s))
	}
	assert.False(t, ValidStoreStatus(StoreStatus("CLOSED")))
}
