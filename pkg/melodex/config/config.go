// Package config loads process configuration from the environment and
// assembles the service from it.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/melodex/melodex/pkg/melodex"
	"github.com/melodex/melodex/pkg/melodex/pinning"
	"github.com/melodex/melodex/pkg/melodex/registration"
	fsstore "github.com/melodex/melodex/pkg/melodex/store/fs"
	memorystore "github.com/melodex/melodex/pkg/melodex/store/memory"
	s3store "github.com/melodex/melodex/pkg/melodex/store/s3"
)

const (
	defaultStorageFile = "asset-storage.json"
	legacyStorageFile  = "music-storage.json"
)

// ServerConfig represents server configuration for the Melodex service.
//
// STORAGE_URL selects the asset store backend once at process start:
//
//	s3://bucket          - remote blob storage
//	file:///path/to.json - local file
//	memory://            - in-memory (development/testing)
//	(empty)              - local file at ./asset-storage.json
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing

	StorageURL string `env:"STORAGE_URL"`

	// S3 backend options
	S3Region          string `env:"AWS_REGION" env-default:"us-east-1"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`

	// Pinning service
	PinataJWT     string `env:"PINATA_JWT"`
	PinataBaseURL string `env:"PINATA_BASE_URL" env-default:"https://api.pinata.cloud"`
	IPFSGateway   string `env:"IPFS_GATEWAY" env-default:"https://ipfs.io/ipfs"`

	// IP registration
	RegistryURL    string `env:"REGISTRY_GATEWAY_URL"`
	RegistryAPIKey string `env:"REGISTRY_API_KEY"`
	SPGContract    string `env:"SPG_NFT_CONTRACT" env-default:"0xc32A8a0FF3beDDDa58393d022aF433e78739FAbc"`
	ExplorerBase   string `env:"PROTOCOL_EXPLORER" env-default:"https://aeneid.explorer.story.foundation"`

	// AdminWallet is the moderation wallet, injected into the API layer
	// rather than read from the environment at call sites.
	AdminWallet string `env:"ADMIN_WALLET"`
}

// Load reads the configuration from the environment.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &cfg, nil
}

// BuildService assembles the platform service: one asset store selected
// from STORAGE_URL, the pinning client and the registration client.
func (c *ServerConfig) BuildService() (melodex.Service, error) {
	store, err := c.BuildStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build asset store: %w", err)
	}

	pinner := pinning.New(pinning.Config{
		BaseURL: c.PinataBaseURL,
		Gateway: c.IPFSGateway,
		JWT:     c.PinataJWT,
	})

	registrar, err := registration.New(registration.Config{
		BaseURL:  c.RegistryURL,
		APIKey:   c.RegistryAPIKey,
		Contract: c.SPGContract,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build registrar: %w", err)
	}

	return melodex.New(
		melodex.WithAssetStore(store),
		melodex.WithPinner(pinner),
		melodex.WithRegistrar(registrar),
		melodex.WithExplorerBase(c.ExplorerBase),
	)
}

// BuildStore selects and constructs the asset store backend.
func (c *ServerConfig) BuildStore() (melodex.AssetStore, error) {
	url := c.StorageURL
	switch {
	case url == "" || strings.HasPrefix(url, "file://"):
		path := defaultStorageFile
		if strings.HasPrefix(url, "file://") {
			path = strings.TrimPrefix(url, "file://")
			if path == "" {
				return nil, errors.New("storage file path cannot be empty in STORAGE_URL")
			}
		}
		return fsstore.New(fsstore.Config{
			Path:       path,
			LegacyPath: filepath.Join(filepath.Dir(path), legacyStorageFile),
		})

	case strings.HasPrefix(url, "s3://"):
		bucket := strings.TrimPrefix(url, "s3://")
		if i := strings.IndexByte(bucket, '?'); i >= 0 {
			bucket = bucket[:i]
		}
		if bucket == "" {
			return nil, errors.New("S3 bucket name cannot be empty in STORAGE_URL")
		}
		return s3store.New(s3store.Config{
			Region:          c.S3Region,
			Bucket:          bucket,
			AccessKeyID:     c.S3AccessKeyID,
			SecretAccessKey: c.S3SecretAccessKey,
			Endpoint:        c.S3Endpoint,
			UsePathStyle:    c.S3UsePathStyle,
		})

	case url == "memory://" || url == "memory":
		return memorystore.New(), nil
	}

	return nil, fmt.Errorf("unsupported STORAGE_URL format: %s (use 's3://...', 'file://...', or 'memory://')", url)
}
