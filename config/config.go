package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration. Everything comes from the
// environment (with an optional .env file); the bootstrap GitHub token may
// alternatively come from an AWS Secrets Manager secret.
type Config struct {
	ListenAddr        string
	GitHubToken       string
	TokenStoreBackend string
	TokenStorePath    string
	RateLimit         int
	SecretName        string
}

// secret is the JSON shape of the Secrets Manager secret.
type secret struct {
	GitHubToken string `json:"github_token"`
}

// SecretsManagerInterface is the subset of the Secrets Manager client used
// here, an interface so tests can swap in a mock.
type SecretsManagerInterface interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Function variables to allow swapping with mocks in tests
var loadAWSConfig = awsconfig.LoadDefaultConfig

var SecretManagerFunc = func() (SecretsManagerInterface, error) {
	cfg, err := loadAWSConfig(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// LoadConfig reads configuration from the environment. When
// GHMON_SECRET_NAME is set and no token is present in the environment, the
// token is fetched from Secrets Manager.
func LoadConfig() (*Config, error) {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:        strFromEnv("GHMON_LISTEN_ADDR", ":8080"),
		GitHubToken:       os.Getenv("GITHUB_TOKEN"),
		TokenStoreBackend: strFromEnv("GHMON_TOKEN_STORE", "bolt"),
		TokenStorePath:    strFromEnv("GHMON_TOKEN_STORE_PATH", "data/tokens.db"),
		RateLimit:         intFromEnv("GHMON_RATE_LIMIT", 5),
		SecretName:        os.Getenv("GHMON_SECRET_NAME"),
	}

	if cfg.GitHubToken == "" && cfg.SecretName != "" {
		token, err := tokenFromSecretsManager(cfg.SecretName)
		if err != nil {
			return nil, err
		}
		cfg.GitHubToken = token
	}

	return cfg, nil
}

func tokenFromSecretsManager(secretName string) (string, error) {
	svc, err := SecretManagerFunc()
	if err != nil {
		return "", err
	}

	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	}

	result, err := svc.GetSecretValue(context.TODO(), input)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve secret: %w", err)
	}

	var s secret
	if err := json.Unmarshal([]byte(aws.ToString(result.SecretString)), &s); err != nil {
		return "", fmt.Errorf("failed to unmarshal secret string: %w", err)
	}

	return s.GitHubToken, nil
}

func strFromEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func intFromEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
