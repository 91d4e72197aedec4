package firestore

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/firestore"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

// CreateDatabase creates the default native-mode database that holds the
// settings collection.
func CreateDatabase(ctx *pulumi.Context, prov *gcp.Provider, opts ...pulumi.ResourceOption) (*firestore.Database, error) {
	gcpCfg := config.New(ctx, "gcp")

	opts = append(opts, pulumi.Provider(prov))
	return firestore.NewDatabase(ctx, "firestoreDatabase", &firestore.DatabaseArgs{
		Name:                  pulumi.String("(default)"),
		Project:               pulumi.String(gcpCfg.Require("project")),
		LocationId:            pulumi.String(gcpCfg.Require("region")),
		Type:                  pulumi.String("FIRESTORE_NATIVE"),
		DeleteProtectionState: pulumi.String("DELETE_PROTECTION_ENABLED"),
	}, opts...)
}
