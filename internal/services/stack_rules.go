package services

import (
	"regexp"
	"strings"

	"github.com/angryss/idp-engine/internal/models"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

// Cloud names seed generated infrastructure identifiers, so the character set
// is restricted and consecutive separators are rejected.
var (
	cloudNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{2,59}$`)
	routePathPattern = regexp.MustCompile(`^/[a-zA-Z][a-zA-Z0-9_-]{2,19}/$`)
)

// ValidCloudName reports whether s is usable as a stack cloud name.
func ValidCloudName(s string) bool {
	return cloudNamePattern.MatchString(s) &&
		!strings.Contains(s, "__") && !strings.Contains(s, "--")
}

// ValidRoutePath reports whether s is usable as a public route path.
func ValidRoutePath(s string) bool {
	return routePathPattern.MatchString(s) &&
		!strings.Contains(s, "__") && !strings.Contains(s, "--")
}

// allowedLanguages returns the languages a stack type accepts, and the
// default applied when none is given. Infrastructure stacks carry no code.
func allowedLanguages(t models.StackType) (allowed []models.ProgrammingLanguage, def models.ProgrammingLanguage) {
	switch t {
	case models.StackTypeInfrastructure:
		return nil, ""
	case models.StackTypeJavascriptWebApp:
		return []models.ProgrammingLanguage{models.LanguageNodeJS}, models.LanguageNodeJS
	default:
		return []models.ProgrammingLanguage{models.LanguageQuarkus, models.LanguageNodeJS}, models.LanguageQuarkus
	}
}

// StackTypeInfo describes one stack type for catalog-style listings.
type StackTypeInfo struct {
	Type               models.StackType             `json:"type"`
	DisplayName        string                       `json:"display_name"`
	SupportedLanguages []models.ProgrammingLanguage `json:"supported_languages,omitempty"`
	DefaultLanguage    models.ProgrammingLanguage   `json:"default_language,omitempty"`
	SupportsPublic     bool                         `json:"supports_public"`
}

// StackTypeInfos lists every stack type with its language and exposure rules.
func StackTypeInfos() []StackTypeInfo {
	out := make([]StackTypeInfo, 0, len(models.AllStackTypes))
	for _, t := range models.AllStackTypes {
		allowed, def := allowedLanguages(t)
		probe := models.Stack{StackType: t}
		out = append(out, StackTypeInfo{
			Type:               t,
			DisplayName:        t.DisplayName(),
			SupportedLanguages: allowed,
			DefaultLanguage:    def,
			SupportsPublic:     probe.SupportsPublicExposure(),
		})
	}
	return out
}

// normalizeStackSettings applies language defaults and enforces the
// per-stack-type rules. It mutates the stack in place.
func normalizeStackSettings(s *models.Stack) error {
	if !s.StackType.Valid() {
		return appErr.Newf(appErr.CodeInvalid, "unknown stack type %q", s.StackType)
	}

	if !ValidCloudName(s.CloudName) {
		return appErr.New(appErr.CodeInvalid, "cloud name must start with a letter, use only letters, digits, '-' and '_', avoid consecutive separators, and be 3-60 characters long")
	}

	allowed, def := allowedLanguages(s.StackType)
	if s.RequiresLanguage() {
		if s.Language == "" {
			s.Language = def
		}
		ok := false
		for _, l := range allowed {
			if s.Language == l {
				ok = true
				break
			}
		}
		if !ok {
			return appErr.Newf(appErr.CodeInvalid, "language %q is not supported for stack type %s", s.Language, s.StackType)
		}
	} else if s.Language != "" {
		return appErr.New(appErr.CodeInvalid, "infrastructure stacks do not take a programming language")
	}

	if s.Public && !s.SupportsPublicExposure() {
		return appErr.Newf(appErr.CodeInvalid, "stack type %s cannot be public", s.StackType)
	}
	if !s.Public && s.RoutePath != "" {
		return appErr.New(appErr.CodeInvalid, "route path is only valid on public stacks")
	}
	if s.Public {
		if s.RoutePath == "" {
			return appErr.New(appErr.CodeInvalid, "public stacks require a route path")
		}
		if !ValidRoutePath(s.RoutePath) {
			return appErr.New(appErr.CodeInvalid, "route path must start and end with '/', begin with a letter, use only letters, digits, '-' and '_', and avoid consecutive separators")
		}
	}

	return nil
}

// ownerMatches compares a stack owner with a principal email. Identities
// arriving through different auth mechanisms may differ in domain, so equal
// local parts are accepted as a match.
func ownerMatches(owner, email string) bool {
	if owner == "" || email == "" {
		return false
	}
	if strings.EqualFold(owner, email) {
		return true
	}
	ol, _, okA := strings.Cut(owner, "@")
	el, _, okB := strings.Cut(email, "@")
	return okA && okB && strings.EqualFold(ol, el)
}
