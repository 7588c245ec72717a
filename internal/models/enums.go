package models

// StackType classifies the deployable shape of a stack.
type StackType string

const (
	StackTypeInfrastructure        StackType = "INFRASTRUCTURE"
	StackTypeRestfulServerless     StackType = "RESTFUL_SERVERLESS"
	StackTypeRestfulAPI            StackType = "RESTFUL_API"
	StackTypeJavascriptWebApp      StackType = "JAVASCRIPT_WEB_APPLICATION"
	StackTypeEventDrivenServerless StackType = "EVENT_DRIVEN_SERVERLESS"
	StackTypeEventDrivenAPI        StackType = "EVENT_DRIVEN_API"
)

// AllStackTypes lists every stack type in display order.
var AllStackTypes = []StackType{
	StackTypeInfrastructure,
	StackTypeRestfulServerless,
	StackTypeRestfulAPI,
	StackTypeJavascriptWebApp,
	StackTypeEventDrivenServerless,
	StackTypeEventDrivenAPI,
}

func (t StackType) Valid() bool {
	switch t {
	case StackTypeInfrastructure, StackTypeRestfulServerless, StackTypeRestfulAPI,
		StackTypeJavascriptWebApp, StackTypeEventDrivenServerless, StackTypeEventDrivenAPI:
		return true
	}
	return false
}

func (t StackType) DisplayName() string {
	switch t {
	case StackTypeInfrastructure:
		return "Infrastructure"
	case StackTypeRestfulServerless:
		return "RESTful Serverless"
	case StackTypeRestfulAPI:
		return "RESTful API"
	case StackTypeJavascriptWebApp:
		return "JavaScript Web Application"
	case StackTypeEventDrivenServerless:
		return "Event-driven Serverless"
	case StackTypeEventDrivenAPI:
		return "Event-driven API"
	}
	return string(t)
}

// ProgrammingLanguage is the implementation language of a stack.
type ProgrammingLanguage string

const (
	LanguageQuarkus ProgrammingLanguage = "QUARKUS"
	LanguageNodeJS  ProgrammingLanguage = "NODE_JS"
	LanguageReact   ProgrammingLanguage = "REACT"
)

func (l ProgrammingLanguage) Valid() bool {
	switch l {
	case LanguageQuarkus, LanguageNodeJS, LanguageReact:
		return true
	}
	return false
}

// ResourceCategory controls where a resource type may be used:
// SHARED resources only in blueprints, NON_SHARED only in stacks, BOTH anywhere.
type ResourceCategory string

const (
	CategoryShared    ResourceCategory = "SHARED"
	CategoryNonShared ResourceCategory = "NON_SHARED"
	CategoryBoth      ResourceCategory = "BOTH"
)

// ModuleLocationType is where a Terraform module is stored.
type ModuleLocationType string

const (
	ModuleLocationGit        ModuleLocationType = "GIT"
	ModuleLocationFileSystem ModuleLocationType = "FILE_SYSTEM"
	ModuleLocationRegistry   ModuleLocationType = "REGISTRY"
)

// PropertyDataType is the data type of a configurable property.
type PropertyDataType string

const (
	PropertyString  PropertyDataType = "STRING"
	PropertyNumber  PropertyDataType = "NUMBER"
	PropertyBoolean PropertyDataType = "BOOLEAN"
	PropertyList    PropertyDataType = "LIST"
)

// APIKeyType distinguishes personal keys from organization-level keys.
type APIKeyType string

const (
	APIKeyUser   APIKeyType = "USER"
	APIKeySystem APIKeyType = "SYSTEM"
)

// EnvironmentName is a deployment environment.
type EnvironmentName string

const (
	EnvironmentDev  EnvironmentName = "DEV"
	EnvironmentProd EnvironmentName = "PROD"
)

// InfraResourceKind names the infrastructure resource families the
// provisioner selector understands.
type InfraResourceKind string

const (
	InfraRelationalDatabase InfraResourceKind = "RELATIONAL_DATABASE"
	InfraCache              InfraResourceKind = "CACHE"
	InfraQueue              InfraResourceKind = "QUEUE"
)

// ComputePlatform is the runtime a stack's compute lands on.
type ComputePlatform string

const (
	ComputeKubernetes ComputePlatform = "kubernetes"
	ComputeLambda     ComputePlatform = "lambda"
	ComputeFargate    ComputePlatform = "fargate"
)
