package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNutritionalInfoValueScan(t *testing.T) {
	info := NutritionalInfo{"calories": {Value: 320, Unit: "kcal"}}
	v, err := info.Value()
	require.NoError(t, err)

	var decoded NutritionalInfo
	require.NoError(t, decoded.Scan([]byte(v.(string))))
	assert.Equal(t, info, decoded)
}

func TestNutritionalInfoNilAndEmpty(t *testing.T) {
	var info NutritionalInfo
	v, err := info.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	var decoded NutritionalInfo
	require.NoError(t, decoded.Scan(nil))
	assert.NotNil(t, decoded)
	require.NoError(t, decoded.Scan(""))
	assert.Empty(t, decoded)

	assert.Error(t, decoded.Scan(42))
	assert.Error(t, decoded.Scan("not json"))
}
