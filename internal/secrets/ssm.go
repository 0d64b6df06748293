package secrets

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"
)

// SSMProvider reads SecureString parameters from AWS Systems Manager
// Parameter Store
type SSMProvider struct {
	client ssmiface.SSMAPI
	prefix string
}

// NewSSMProvider creates a provider with a session for region. prefix is
// joined to every secret name, e.g. "/ga-proxy" + "GA_API_TOKEN".
func NewSSMProvider(region, prefix string) (*SSMProvider, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}
	return NewSSMProviderWithClient(ssm.New(sess), prefix), nil
}

// NewSSMProviderWithClient creates a provider around an existing client
func NewSSMProviderWithClient(client ssmiface.SSMAPI, prefix string) *SSMProvider {
	return &SSMProvider{client: client, prefix: prefix}
}

func (p *SSMProvider) Get(ctx context.Context, name string) (string, error) {
	key := p.parameterName(name)
	input := &ssm.GetParameterInput{
		Name:           aws.String(key),
		WithDecryption: aws.Bool(true),
	}

	out, err := p.client.GetParameterWithContext(ctx, input)
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == ssm.ErrCodeParameterNotFound {
			return "", fmt.Errorf("%w: %s", ErrSecretNotFound, key)
		}
		return "", fmt.Errorf("failed to get parameter %s: %w", key, err)
	}

	if out.Parameter == nil || aws.StringValue(out.Parameter.Value) == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, key)
	}
	return aws.StringValue(out.Parameter.Value), nil
}

func (p *SSMProvider) parameterName(name string) string {
	if p.prefix == "" {
		return name
	}
	return strings.TrimSuffix(p.prefix, "/") + "/" + strings.TrimPrefix(name, "/")
}
