package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"

	"github.com/GregMSThompson/novaspeak/infra/apis"
	"github.com/GregMSThompson/novaspeak/infra/cloudrun"
	"github.com/GregMSThompson/novaspeak/infra/docker"
	"github.com/GregMSThompson/novaspeak/infra/firestore"
	"github.com/GregMSThompson/novaspeak/infra/kms"
	"github.com/GregMSThompson/novaspeak/infra/provider"
	"github.com/GregMSThompson/novaspeak/infra/secret"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		enabled, err := apis.Enable(ctx, prov)
		if err != nil {
			return err
		}

		db, err := firestore.CreateDatabase(ctx, prov, enabled.On(apis.Firestore))
		if err != nil {
			return err
		}

		repo, err := docker.CreateCloudrunRepo(ctx, prov, enabled.On(apis.ArtifactRegistry))
		if err != nil {
			return err
		}

		apiSA, err := cloudrun.CreateServiceAccount(ctx, prov)
		if err != nil {
			return err
		}

		keyName, err := kms.CreateKey(ctx, prov, apiSA, "novaspeak", "read-api-key", enabled.On(apis.KMS))
		if err != nil {
			return err
		}

		readKey := config.New(ctx, "novaspeak").RequireSecret("readApiKey")
		readKeySecret, err := secret.AddSecret(ctx, prov, apiSA, "readApiKeySecret", "novaspeakReadApiKey", readKey,
			enabled.On(apis.SecretManager))
		if err != nil {
			return err
		}

		return cloudrun.SetupCloudRun(ctx, prov, apiSA, cloudrun.Env{
			KMSKeyName:    keyName,
			ReadKeySecret: readKeySecret,
		}, repo, db, enabled[apis.CloudRun], enabled[apis.VertexAI])
	})
}
