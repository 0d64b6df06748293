package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"
	"github.com/enterprise/ga-view-proxy/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSSM struct {
	ssmiface.SSMAPI
	mock.Mock
}

func (m *mockSSM) GetParameterWithContext(ctx aws.Context, input *ssm.GetParameterInput, _ ...request.Option) (*ssm.GetParameterOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*ssm.GetParameterOutput)
	return out, args.Error(1)
}

func TestEnvProvider_Get(t *testing.T) {
	t.Setenv("GA_API_TOKEN", "s3cret")
	t.Setenv("GA_EMPTY", "")

	p := NewEnvProvider()

	value, err := p.Get(context.Background(), "GA_API_TOKEN")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", value)

	_, err = p.Get(context.Background(), "GA_EMPTY")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	_, err = p.Get(context.Background(), "GA_DOES_NOT_EXIST")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestStaticProvider_Get(t *testing.T) {
	p := StaticProvider{"token": "abc"}

	value, err := p.Get(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", value)

	_, err = p.Get(context.Background(), "other")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestChain_Get(t *testing.T) {
	chain := Chain{StaticProvider{"a": "1"}, StaticProvider{"a": "2", "b": "3"}}

	value, err := chain.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "1", value)

	value, err = chain.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "3", value)

	_, err = chain.Get(context.Background(), "c")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestChain_StopsOnHardError(t *testing.T) {
	client := &mockSSM{}
	client.On("GetParameterWithContext", mock.Anything, mock.Anything).
		Return(nil, errors.New("throttled"))

	chain := Chain{NewSSMProviderWithClient(client, ""), StaticProvider{"a": "1"}}

	_, err := chain.Get(context.Background(), "a")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSecretNotFound)
}

func TestSSMProvider_Get(t *testing.T) {
	tests := []struct {
		name        string
		prefix      string
		secret      string
		wantKey     string
		output      *ssm.GetParameterOutput
		err         error
		expected    string
		notFound    bool
		expectError bool
	}{
		{
			name:     "found with prefix",
			prefix:   "/ga-proxy/",
			secret:   "GA_API_TOKEN",
			wantKey:  "/ga-proxy/GA_API_TOKEN",
			output:   &ssm.GetParameterOutput{Parameter: &ssm.Parameter{Value: aws.String("tok")}},
			expected: "tok",
		},
		{
			name:     "found without prefix",
			secret:   "/ga/token",
			wantKey:  "/ga/token",
			output:   &ssm.GetParameterOutput{Parameter: &ssm.Parameter{Value: aws.String("tok")}},
			expected: "tok",
		},
		{
			name:     "parameter not found",
			secret:   "missing",
			wantKey:  "missing",
			err:      awserr.New(ssm.ErrCodeParameterNotFound, "nope", nil),
			notFound: true,
		},
		{
			name:     "empty value",
			secret:   "empty",
			wantKey:  "empty",
			output:   &ssm.GetParameterOutput{Parameter: &ssm.Parameter{Value: aws.String("")}},
			notFound: true,
		},
		{
			name:        "access denied",
			secret:      "denied",
			wantKey:     "denied",
			err:         awserr.New("AccessDeniedException", "denied", nil),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockSSM{}
			client.On("GetParameterWithContext", mock.Anything, mock.MatchedBy(func(in *ssm.GetParameterInput) bool {
				return aws.StringValue(in.Name) == tt.wantKey && aws.BoolValue(in.WithDecryption)
			})).Return(tt.output, tt.err)

			p := NewSSMProviderWithClient(client, tt.prefix)
			value, err := p.Get(context.Background(), tt.secret)

			switch {
			case tt.notFound:
				assert.ErrorIs(t, err, ErrSecretNotFound)
			case tt.expectError:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrSecretNotFound)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.expected, value)
			}
			client.AssertExpectations(t)
		})
	}
}

func TestNew(t *testing.T) {
	p, err := New(config.SecretsConfig{Source: config.SecretSourceEnv})
	require.NoError(t, err)
	assert.IsType(t, &EnvProvider{}, p)

	p, err = New(config.SecretsConfig{Source: config.SecretSourceSSM, Region: "us-east-1"})
	require.NoError(t, err)
	assert.IsType(t, &SSMProvider{}, p)

	_, err = New(config.SecretsConfig{Source: "vault"})
	assert.Error(t, err)
}
