package apis

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const (
	CloudRun         = "run.googleapis.com"
	Firestore        = "firestore.googleapis.com"
	VertexAI         = "aiplatform.googleapis.com"
	SecretManager    = "secretmanager.googleapis.com"
	KMS              = "cloudkms.googleapis.com"
	ArtifactRegistry = "artifactregistry.googleapis.com"
)

// resource names are kept stable so existing stacks do not recreate them
var resourceNames = map[string]string{
	CloudRun:         "cloudRunService",
	Firestore:        "firestore",
	VertexAI:         "vertex",
	SecretManager:    "secretManagerService",
	KMS:              "kmsService",
	ArtifactRegistry: "artifactRegistryService",
}

// Enabled maps an API name to the resource that turned it on.
type Enabled map[string]*projects.Service

// On returns a DependsOn option for the named APIs.
func (e Enabled) On(names ...string) pulumi.ResourceOption {
	deps := make([]pulumi.Resource, 0, len(names))
	for _, n := range names {
		if svc, ok := e[n]; ok {
			deps = append(deps, svc)
		}
	}
	return pulumi.DependsOn(deps)
}

// Enable turns on every Google API the service needs.
func Enable(ctx *pulumi.Context, prov *gcp.Provider) (Enabled, error) {
	enabled := make(Enabled, len(resourceNames))
	for api, name := range resourceNames {
		svc, err := projects.NewService(ctx, name, &projects.ServiceArgs{
			Service:                  pulumi.String(api),
			DisableOnDestroy:         pulumi.Bool(false),
			DisableDependentServices: pulumi.Bool(false),
		},
			pulumi.Provider(prov),
		)
		if err != nil {
			return nil, err
		}
		enabled[api] = svc
	}
	return enabled, nil
}
