package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/amankumarsingh77/seo_audit/config"
	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

const fallbackRegion = "us-east-1"

type secretsAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValue(ctx context.Context, in *secretsmanager.PutSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	CreateSecret(ctx context.Context, in *secretsmanager.CreateSecretInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
}

type AWSVault struct {
	client secretsAPI
	logger logging.Logger
}

func NewAWSVault(ctx context.Context, cfg *config.SecretsConfig, logger logging.Logger) (*AWSVault, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if awsCfg.Region == "" {
		logger.Warn("AWS region not set, falling back", logging.String("region", fallbackRegion))
		awsCfg.Region = fallbackRegion
	}
	return &AWSVault{client: secretsmanager.NewFromConfig(awsCfg), logger: logger}, nil
}

func (v *AWSVault) Get(ctx context.Context, name string) map[string]any {
	out, err := v.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(name)})
	if err != nil {
		v.logger.Error("error retrieving secret", logging.String("secret", name), logging.Error(err))
		return nil
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return nil
	}
	var value map[string]any
	if err = json.Unmarshal([]byte(*out.SecretString), &value); err != nil {
		v.logger.Error("secret is not a JSON object", logging.String("secret", name), logging.Error(err))
		return nil
	}
	return value
}

// Put updates the secret, creating it when it does not exist yet.
func (v *AWSVault) Put(ctx context.Context, name string, value map[string]any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		v.logger.Error("cannot encode secret", logging.String("secret", name), logging.Error(err))
		return false
	}
	_, err = v.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(name),
		SecretString: aws.String(string(raw)),
	})
	if err == nil {
		return true
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		v.logger.Error("error updating secret", logging.String("secret", name), logging.Error(err))
		return false
	}
	_, err = v.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(name),
		SecretString: aws.String(string(raw)),
	})
	if err != nil {
		v.logger.Error("error creating secret", logging.String("secret", name), logging.Error(err))
		return false
	}
	return true
}
