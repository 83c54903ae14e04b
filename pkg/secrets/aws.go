package secrets

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// awsRequestTimeout bounds each GetSecretValue call made during startup.
const awsRequestTimeout = 10 * time.Second

// AWSConfig holds configuration for AWS Secrets Manager.
type AWSConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	SecretName      string `yaml:"secret_name"`
	Endpoint        string `yaml:"endpoint,omitempty"` // for LocalStack or custom endpoints
}

// Validate checks if the AWSConfig has all required fields set. Credentials
// are optional; when absent the default credential chain is used.
func (a AWSConfig) Validate() error {
	if a.Region == "" {
		return errors.New("AWS region is required")
	}
	if a.SecretName == "" {
		return errors.New("AWS secret name is required")
	}
	return nil
}

// CreateClient creates and configures an AWS Secrets Manager client from
// this config.
func (a AWSConfig) CreateClient() (*secretsmanager.Client, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid AWS configuration")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(a.Region),
	}
	if a.Endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(a.Endpoint))
	}
	if a.AccessKeyID != "" && a.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(a.AccessKeyID, a.SecretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS configuration")
	}

	return secretsmanager.NewFromConfig(cfg), nil
}

// AWSResolver retrieves secrets from AWS Secrets Manager. The stored secret
// may be a JSON object, in which case the requested key is extracted, or a
// plain string, in which case the whole value is returned.
type AWSResolver struct {
	client     *secretsmanager.Client
	secretName string
}

// NewAWSResolver creates a resolver reading the named Secrets Manager secret.
func NewAWSResolver(client *secretsmanager.Client, secretName string) *AWSResolver {
	return &AWSResolver{
		client:     client,
		secretName: secretName,
	}
}

// Resolve retrieves a secret value from AWS Secrets Manager.
func (a *AWSResolver) Resolve(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), awsRequestTimeout)
	defer cancel()

	result, err := a.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(a.secretName),
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to read secret %q from AWS Secrets Manager", a.secretName)
	}
	if result.SecretString == nil {
		return "", errors.Errorf("secret %q has no string value", a.secretName)
	}

	value, err := extractSecretField(*result.SecretString, key)
	if err != nil {
		return "", errors.Wrapf(err, "secret %q", a.secretName)
	}

	log.Debug().Str("secret_name", a.secretName).Str("key", key).Msg("Retrieved secret from AWS Secrets Manager")
	return value, nil
}

// Name returns the resolver name.
func (a *AWSResolver) Name() string {
	return "AWS Secrets Manager"
}

// extractSecretField pulls a key out of a JSON secret payload. A payload
// that is not a JSON object is returned whole, ignoring the key.
func extractSecretField(payload, key string) (string, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return payload, nil
	}

	value, ok := fields[key].(string)
	if !ok {
		return "", errors.Errorf("key %q not found in secret payload", key)
	}
	return value, nil
}
