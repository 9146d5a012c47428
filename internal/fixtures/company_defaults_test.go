package fixtures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLeaveTypes_AreValid(t *testing.T) {
	codes := map[string]bool{}
	for _, lt := range DefaultLeaveTypes("0198a1f0-0000-7000-8000-0000000000aa") {
		require.NoError(t, lt.Validate(), lt.Code)
		assert.False(t, codes[lt.Code], "duplicate code %s", lt.Code)
		codes[lt.Code] = true
	}
	assert.True(t, codes["ANNUAL"])
}

func TestDefaultDepartments_AreValid(t *testing.T) {
	for _, dept := range DefaultDepartments("0198a1f0-0000-7000-8000-0000000000aa") {
		assert.NoError(t, dept.Validate(), dept.Name)
	}
}
