package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/angryss/idp-engine/internal/models"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

func stringSchema(name string, required bool, rules string) models.PropertySchema {
	s := models.PropertySchema{Name: name, DataType: models.PropertyString, Required: required}
	if rules != "" {
		s.Rules = datatypes.JSON(rules)
	}
	return s
}

func TestValidatePropertiesUnknownKeyRejected(t *testing.T) {
	schemas := []models.PropertySchema{stringSchema("engine", false, "")}
	err := ValidateProperties(schemas, map[string]any{"enginee": "postgres"})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestValidatePropertiesRequiredAndDefaults(t *testing.T) {
	schemas := []models.PropertySchema{
		stringSchema("engine", true, ""),
		{Name: "version", DataType: models.PropertyString, DefaultValue: "16"},
	}

	err := ValidateProperties(schemas, map[string]any{})
	require.Error(t, err)

	config := map[string]any{"engine": "postgres"}
	require.NoError(t, ValidateProperties(schemas, config))
	assert.Equal(t, "16", config["version"], "default should be filled in")
}

func TestValidatePropertiesStringRules(t *testing.T) {
	schemas := []models.PropertySchema{
		stringSchema("name", true, `{"minLength":3,"maxLength":10,"pattern":"^[a-z]+$","patternMessage":"lowercase letters only"}`),
	}

	require.NoError(t, ValidateProperties(schemas, map[string]any{"name": "orders"}))
	require.Error(t, ValidateProperties(schemas, map[string]any{"name": "ab"}))
	require.Error(t, ValidateProperties(schemas, map[string]any{"name": "waytoolongvalue"}))

	err := ValidateProperties(schemas, map[string]any{"name": "Orders"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resource configuration is invalid")
}

func TestValidatePropertiesNumberAcceptsNumericStrings(t *testing.T) {
	schemas := []models.PropertySchema{
		{Name: "replicas", DataType: models.PropertyNumber, Required: true,
			Rules: datatypes.JSON(`{"min":"1","max":"10"}`)},
	}

	require.NoError(t, ValidateProperties(schemas, map[string]any{"replicas": float64(3)}))
	require.NoError(t, ValidateProperties(schemas, map[string]any{"replicas": "3"}))
	require.Error(t, ValidateProperties(schemas, map[string]any{"replicas": "0"}))
	require.Error(t, ValidateProperties(schemas, map[string]any{"replicas": float64(11)}))
	require.Error(t, ValidateProperties(schemas, map[string]any{"replicas": "many"}))
}

func TestValidatePropertiesBoolean(t *testing.T) {
	schemas := []models.PropertySchema{
		{Name: "multi_az", DataType: models.PropertyBoolean, Required: true},
	}
	require.NoError(t, ValidateProperties(schemas, map[string]any{"multi_az": true}))
	require.NoError(t, ValidateProperties(schemas, map[string]any{"multi_az": "false"}))
	require.Error(t, ValidateProperties(schemas, map[string]any{"multi_az": "yes"}))
	require.Error(t, ValidateProperties(schemas, map[string]any{"multi_az": 1}))
}

func TestValidatePropertiesList(t *testing.T) {
	schemas := []models.PropertySchema{
		{Name: "zones", DataType: models.PropertyList, Required: true,
			Rules: datatypes.JSON(`{"minItems":1,"maxItems":3}`)},
	}
	require.NoError(t, ValidateProperties(schemas, map[string]any{"zones": []any{"a", "b"}}))
	require.Error(t, ValidateProperties(schemas, map[string]any{"zones": []any{}}))
	require.Error(t, ValidateProperties(schemas, map[string]any{"zones": []any{"a", "b", "c", "d"}}))
	require.Error(t, ValidateProperties(schemas, map[string]any{"zones": "a,b"}))
}

func TestValidatePropertiesCollectsAllViolations(t *testing.T) {
	schemas := []models.PropertySchema{
		stringSchema("engine", true, ""),
		{Name: "replicas", DataType: models.PropertyNumber, Required: true},
	}
	err := ValidateProperties(schemas, map[string]any{"bogus": 1})
	require.Error(t, err)

	var ae *appErr.AppError
	require.ErrorAs(t, err, &ae)
	violations, ok := ae.Meta["violations"].([]string)
	require.True(t, ok)
	assert.Len(t, violations, 3)
}
