// Package paramstore resolves secrets stored in AWS Systems Manager Parameter Store.
package paramstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ErrNotFound is returned when a parameter exists but carries no value.
var ErrNotFound = errors.New("paramstore: parameter has no value")

// ssmAPI is the subset of *ssm.Client used by Store.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SecretGetter fetches a decrypted secret by name.
type SecretGetter interface {
	Secret(ctx context.Context, name string) (string, error)
}

// Store reads SecureString parameters.
type Store struct {
	api ssmAPI
}

// New creates a Store backed by the given SSM API.
func New(api ssmAPI) (*Store, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	return &Store{api: api}, nil
}

// NewFromEnvironment creates a Store using the default AWS credential chain
// (environment, shared config, instance role).
func NewFromEnvironment(ctx context.Context) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("paramstore: load aws config: %w", err)
	}
	return New(ssm.NewFromConfig(cfg))
}

// Secret returns the decrypted value of the named parameter.
func (s *Store) Secret(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("paramstore: name is required")
	}

	out, err := s.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("paramstore: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	value := strings.TrimSpace(aws.ToString(out.Parameter.Value))
	if value == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return value, nil
}

// ResolveAPIKey returns key when it is set, otherwise fetches param from getter.
// The resolved value is never logged.
func ResolveAPIKey(ctx context.Context, getter SecretGetter, key, param string) (string, error) {
	if key != "" {
		return key, nil
	}
	if param == "" {
		return "", errors.New("paramstore: neither api key nor parameter name provided")
	}
	if getter == nil {
		return "", errors.New("paramstore: no secret store configured")
	}

	value, err := getter.Secret(ctx, param)
	if err != nil {
		return "", err
	}

	slog.Info("API key resolved from parameter store", slog.String("parameter", param))
	return value, nil
}
