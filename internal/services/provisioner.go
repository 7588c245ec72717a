package services

import (
	"strings"

	"github.com/angryss/idp-engine/internal/models"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

// Provider names the selector recognizes. Providers are catalog data; any
// other name yields resources without provisioner hints.
const (
	providerAWS    = "aws"
	providerOnPrem = "on-prem"
)

// computePlatform picks the runtime for a stack's own compute.
func computePlatform(providerName string, stackType models.StackType) (models.ComputePlatform, error) {
	if stackType == models.StackTypeInfrastructure {
		return "", nil
	}
	switch normalizeProvider(providerName) {
	case providerOnPrem:
		return models.ComputeKubernetes, nil
	case providerAWS:
		switch stackType {
		case models.StackTypeRestfulServerless, models.StackTypeEventDrivenServerless:
			return models.ComputeLambda, nil
		case models.StackTypeRestfulAPI, models.StackTypeEventDrivenAPI, models.StackTypeJavascriptWebApp:
			return models.ComputeFargate, nil
		}
	}
	return "", appErr.Newf(appErr.CodeInvalid, "no compute platform for provider %q and stack type %s", providerName, stackType)
}

// computeProvisioner names the provisioner deploying the stack's compute.
func computeProvisioner(platform models.ComputePlatform) string {
	switch platform {
	case models.ComputeKubernetes:
		return "kubernetes-provisioner"
	case models.ComputeLambda:
		return "lambda-provisioner"
	case models.ComputeFargate:
		return "ecs-fargate-provisioner"
	}
	return ""
}

// resourceProvisioner names the provisioner for an attached infrastructure
// resource, keyed off the resource type name.
func resourceProvisioner(providerName, resourceTypeName string) string {
	kind := classifyResource(resourceTypeName)
	switch normalizeProvider(providerName) {
	case providerOnPrem:
		switch kind {
		case models.InfraRelationalDatabase:
			return "postgresql-provisioner"
		case models.InfraCache:
			return "redis-provisioner"
		case models.InfraQueue:
			return "rabbitmq-provisioner"
		}
		return "kubernetes-provisioner"
	case providerAWS:
		switch kind {
		case models.InfraRelationalDatabase:
			return "aurora-postgresql-provisioner"
		case models.InfraCache:
			return "elasticache-redis-provisioner"
		case models.InfraQueue:
			return "sqs-provisioner"
		}
	}
	return ""
}

func classifyResource(resourceTypeName string) models.InfraResourceKind {
	name := strings.ToLower(resourceTypeName)
	switch {
	case strings.Contains(name, "database"):
		return models.InfraRelationalDatabase
	case strings.Contains(name, "cache"), strings.Contains(name, "redis"):
		return models.InfraCache
	case strings.Contains(name, "queue"):
		return models.InfraQueue
	}
	return ""
}

func normalizeProvider(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", "-")
	if n == "onprem" || n == "on-premise" || n == "on-premises" {
		return providerOnPrem
	}
	return n
}
