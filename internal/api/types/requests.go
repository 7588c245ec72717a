package types

// Catalog requests.

type ProviderRequest struct {
	Name        string `json:"name" validate:"required,max=64"`
	Description string `json:"description"`
}

type ResourceTypeRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"required,oneof=SHARED NON_SHARED BOTH"`
}

type MappingCreateRequest struct {
	ResourceTypeID  string `json:"resource_type_id" validate:"required,uuid4"`
	CloudProviderID string `json:"cloud_provider_id" validate:"required,uuid4"`
	ModuleLocation  string `json:"module_location"`
	LocationType    string `json:"location_type" validate:"omitempty,oneof=GIT FILE_SYSTEM REGISTRY"`
	ModuleVersion   string `json:"module_version"`
}

type MappingUpdateRequest struct {
	ModuleLocation string `json:"module_location"`
	LocationType   string `json:"location_type" validate:"omitempty,oneof=GIT FILE_SYSTEM REGISTRY"`
	ModuleVersion  string `json:"module_version"`
}

type PropertyRequest struct {
	Name         string         `json:"name" validate:"required,max=128"`
	DataType     string         `json:"data_type" validate:"required,oneof=STRING NUMBER BOOLEAN LIST"`
	Required     bool           `json:"required"`
	DefaultValue string         `json:"default_value"`
	Description  string         `json:"description"`
	Rules        map[string]any `json:"rules"`
}

// Blueprint requests.

type BlueprintResourceRequest struct {
	MappingID     string         `json:"mapping_id" validate:"required,uuid4"`
	Name          string         `json:"name"`
	Configuration map[string]any `json:"configuration"`
}

type BlueprintCreateRequest struct {
	Name        string                     `json:"name" validate:"required,max=128"`
	Description string                     `json:"description"`
	StackType   string                     `json:"stack_type" validate:"required"`
	ProviderID  string                     `json:"cloud_provider_id" validate:"required,uuid4"`
	Resources   []BlueprintResourceRequest `json:"resources" validate:"dive"`
}

type BlueprintUpdateRequest struct {
	Name        string `json:"name" validate:"omitempty,max=128"`
	Description string `json:"description"`
}

// Stack requests.

type StackResourceRequest struct {
	MappingID     string         `json:"mapping_id" validate:"required,uuid4"`
	Name          string         `json:"name"`
	Configuration map[string]any `json:"configuration"`
}

type StackCreateRequest struct {
	Name         string                 `json:"name" validate:"required,max=128"`
	CloudName    string                 `json:"cloud_name" validate:"required,max=64"`
	Description  string                 `json:"description"`
	StackType    string                 `json:"stack_type"`
	Language     string                 `json:"language"`
	BlueprintID  string                 `json:"blueprint_id" validate:"required,uuid4"`
	TeamID       string                 `json:"team_id" validate:"omitempty,uuid4"`
	DomainID     string                 `json:"domain_id" validate:"omitempty,uuid4"`
	CategoryID   string                 `json:"category_id" validate:"omitempty,uuid4"`
	CollectionID string                 `json:"collection_id" validate:"omitempty,uuid4"`
	Public       bool                   `json:"public"`
	RoutePath    string                 `json:"route_path"`
	Resources    []StackResourceRequest `json:"resources" validate:"dive"`
}

type StackUpdateRequest struct {
	Name         string `json:"name" validate:"omitempty,max=128"`
	Description  string `json:"description"`
	Language     string `json:"language"`
	TeamID       string `json:"team_id" validate:"omitempty,uuid4"`
	DomainID     string `json:"domain_id" validate:"omitempty,uuid4"`
	CategoryID   string `json:"category_id" validate:"omitempty,uuid4"`
	CollectionID string `json:"collection_id" validate:"omitempty,uuid4"`
	Public       bool   `json:"public"`
	RoutePath    string `json:"route_path"`
}

// Taxonomy and environments.

type NamedRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	Description string `json:"description"`
	OwnerEmail  string `json:"owner_email" validate:"omitempty,email"`
}

type EnvironmentCreateRequest struct {
	Name        string `json:"name" validate:"required,oneof=DEV PROD"`
	Description string `json:"description"`
}

type EnvironmentConfigRequest struct {
	Key             string `json:"key" validate:"required,max=128"`
	Value           string `json:"value"`
	CloudProviderID string `json:"cloud_provider_id" validate:"omitempty,uuid4"`
}

// API keys.

type APIKeyCreateRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	Description string `json:"description"`
	Type        string `json:"type" validate:"omitempty,oneof=USER SYSTEM"`
	OwnerEmail  string `json:"owner_email" validate:"omitempty,email"`
}

type APIKeyRenameRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	Description string `json:"description"`
}

type ToggleRequest struct {
	Enabled bool `json:"enabled"`
}
