package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angryss/idp-engine/internal/models"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

func TestValidCloudName(t *testing.T) {
	valid := []string{"orders", "order-service", "a2c", "payments_v2", "Payments-API"}
	for _, name := range valid {
		assert.True(t, ValidCloudName(name), name)
	}

	invalid := []string{
		"",
		"ab",            // too short
		"2orders",       // must start with a letter
		"-orders",       // must start with a letter
		"order--api",    // consecutive separators
		"order__api",    // consecutive separators
		"order service", // no spaces
		"order.api",
	}
	for _, name := range invalid {
		assert.False(t, ValidCloudName(name), name)
	}

	long := "a"
	for len(long) < 60 {
		long += "b"
	}
	assert.True(t, ValidCloudName(long))
	assert.False(t, ValidCloudName(long+"c"))
}

func TestValidRoutePath(t *testing.T) {
	assert.True(t, ValidRoutePath("/orders/"))
	assert.True(t, ValidRoutePath("/orders-v2/"))
	// The trailing slash is mandatory.
	assert.False(t, ValidRoutePath("/orders"))
	assert.False(t, ValidRoutePath("orders/"))
	assert.False(t, ValidRoutePath("/2orders/"))
	assert.False(t, ValidRoutePath("/orders--v2/"))
	assert.False(t, ValidRoutePath("/or/"))
	assert.False(t, ValidRoutePath("/orders/items/"))
}

func TestNormalizeStackSettingsLanguageDefaults(t *testing.T) {
	st := &models.Stack{
		CloudName: "orders",
		StackType: models.StackTypeRestfulServerless,
	}
	require.NoError(t, normalizeStackSettings(st))
	assert.Equal(t, models.LanguageQuarkus, st.Language)

	web := &models.Stack{
		CloudName: "storefront",
		StackType: models.StackTypeJavascriptWebApp,
	}
	require.NoError(t, normalizeStackSettings(web))
	assert.Equal(t, models.LanguageNodeJS, web.Language)

	web.Language = models.LanguageQuarkus
	err := normalizeStackSettings(web)
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestNormalizeStackSettingsInfrastructure(t *testing.T) {
	st := &models.Stack{
		CloudName: "shared-network",
		StackType: models.StackTypeInfrastructure,
	}
	require.NoError(t, normalizeStackSettings(st))
	assert.Empty(t, st.Language)

	st.Language = models.LanguageNodeJS
	require.Error(t, normalizeStackSettings(st))
}

func TestNormalizeStackSettingsPublicRules(t *testing.T) {
	// Event-driven serverless stacks can never be public.
	st := &models.Stack{
		CloudName: "ingest",
		StackType: models.StackTypeEventDrivenServerless,
		Public:    true,
	}
	err := normalizeStackSettings(st)
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	// Public API stacks need a route path.
	api := &models.Stack{
		CloudName: "orders",
		StackType: models.StackTypeRestfulAPI,
		Public:    true,
	}
	require.Error(t, normalizeStackSettings(api))

	api.RoutePath = "/orders/"
	require.NoError(t, normalizeStackSettings(api))

	// Route paths are rejected on private stacks.
	private := &models.Stack{
		CloudName: "internal-api",
		StackType: models.StackTypeRestfulAPI,
		RoutePath: "/internal/",
	}
	require.Error(t, normalizeStackSettings(private))
}

func TestStackTypeInfos(t *testing.T) {
	infos := StackTypeInfos()
	require.Len(t, infos, len(models.AllStackTypes))

	byType := make(map[models.StackType]StackTypeInfo, len(infos))
	for _, info := range infos {
		assert.NotEmpty(t, info.DisplayName, string(info.Type))
		byType[info.Type] = info
	}

	infra := byType[models.StackTypeInfrastructure]
	assert.Empty(t, infra.SupportedLanguages)
	assert.Empty(t, infra.DefaultLanguage)
	assert.False(t, infra.SupportsPublic)

	web := byType[models.StackTypeJavascriptWebApp]
	assert.Equal(t, []models.ProgrammingLanguage{models.LanguageNodeJS}, web.SupportedLanguages)
	assert.Equal(t, models.LanguageNodeJS, web.DefaultLanguage)
	assert.False(t, web.SupportsPublic)

	api := byType[models.StackTypeRestfulAPI]
	assert.Equal(t, models.LanguageQuarkus, api.DefaultLanguage)
	assert.Len(t, api.SupportedLanguages, 2)
	assert.True(t, api.SupportsPublic)
}

func TestOwnerMatches(t *testing.T) {
	assert.True(t, ownerMatches("jo@corp.example", "jo@corp.example"))
	assert.True(t, ownerMatches("Jo@corp.example", "jo@CORP.example"))
	// Same account arriving through a different identity domain.
	assert.True(t, ownerMatches("jo@corp.example", "jo@idp.example"))
	assert.False(t, ownerMatches("jo@corp.example", "sam@corp.example"))
	assert.False(t, ownerMatches("", "jo@corp.example"))
	assert.False(t, ownerMatches("jo", "jo@corp.example"))
}
