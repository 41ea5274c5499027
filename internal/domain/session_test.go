package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissionAtLeast(t *testing.T) {
	assert.True(t, PermissionAdmin.AtLeast(PermissionEmployee))
	assert.True(t, PermissionEmployee.AtLeast(PermissionEmployee))
	assert.False(t, PermissionCustomer.AtLeast(PermissionEmployee))
	assert.False(t, Permission("root").AtLeast(PermissionCustomer))
}
