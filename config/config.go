package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Firebase configuration shared by Firestore, Auth and Cloud Messaging
	Firebase *FirebaseConfig `json:"firebase" yaml:"firebase"`

	// Database selects the document store backend
	Database *DatabaseConfig `json:"database" yaml:"database"`

	// Storage configuration for shelter media
	Storage *StorageConfig `json:"storage" yaml:"storage"`

	// Auth configuration for the identity provider
	Auth *AuthConfig `json:"auth" yaml:"auth"`

	// Moderation configuration for the proposal engine
	Moderation *ModerationConfig `json:"moderation" yaml:"moderation"`

	// PubSub configuration for moderation event publishing
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// FirebaseConfig defines the Firebase project used by every Google client
type FirebaseConfig struct {
	ProjectID       string `json:"projectId" yaml:"projectId"`
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`
}

// DatabaseConfig defines which document store backs the repositories
type DatabaseConfig struct {
	// Provider type: "firestore" or "memory"
	Provider string `json:"provider" yaml:"provider"`
}

// StorageConfig defines the object store
type StorageConfig struct {
	// gocloud bucket URL, e.g. gs://refugis-media, file:///tmp/media or mem://
	BucketURL string `json:"bucketUrl" yaml:"bucketUrl"`

	// Lifetime of presigned GET URLs
	SignedURLTTL time.Duration `json:"signedUrlTtl" yaml:"signedUrlTtl"`
}

// AuthConfig defines the identity provider
type AuthConfig struct {
	// Provider type: "firebase" or "jwt"
	Provider string `json:"provider" yaml:"provider"`

	// HMAC secret for the jwt provider
	JWTSecret string `json:"jwtSecret" yaml:"jwtSecret"`

	// Custom claim whose value "admin" (or true) grants the administrator role
	AdminRole string `json:"adminRole" yaml:"adminRole"`
}

// ModerationConfig defines the tunables of the proposal moderation engine
type ModerationConfig struct {
	// CacheTTLShelter is reserved for the shelter read path, which this service does not serve;
	// the moderation engine only invalidates shelter keys written by that path.
	CacheTTLShelter           time.Duration `json:"cacheTtlShelter" yaml:"cacheTtlShelter"`
	CacheTTLProposal          time.Duration `json:"cacheTtlProposal" yaml:"cacheTtlProposal"`
	GeohashPrecision          int           `json:"geohashPrecision" yaml:"geohashPrecision"`
	ConditionMin              float64       `json:"conditionMin" yaml:"conditionMin"`
	ConditionMax              float64       `json:"conditionMax" yaml:"conditionMax"`
	MaxInfoComplementariaKeys int           `json:"maxInfoComplementariaKeys" yaml:"maxInfoComplementariaKeys"`
	AllowedAmenityKeys        []string      `json:"allowedAmenityKeys" yaml:"allowedAmenityKeys"`
}

// DefaultAmenityKeys are the info_complementaria keys accepted when none are configured.
func DefaultAmenityKeys() []string {
	return []string{
		"manque_un_mur", "cheminee", "poele", "couvertures", "latrines",
		"bois", "eau", "matelas", "couchage", "bas_flancs", "lits", "mezzanine/etage",
	}
}

// DefaultModerationConfig returns the defaults used for any unset moderation value.
func DefaultModerationConfig() *ModerationConfig {
	return &ModerationConfig{
		CacheTTLShelter:           5 * time.Minute,
		CacheTTLProposal:          time.Minute,
		GeohashPrecision:          5,
		ConditionMin:              0,
		ConditionMax:              3,
		MaxInfoComplementariaKeys: len(DefaultAmenityKeys()),
		AllowedAmenityKeys:        DefaultAmenityKeys(),
	}
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	configFile, err := findConfigFile(currEnv, searchPaths)
	if err != nil {
		return nil, err
	}

	return loadFile[T](currEnv, configFile)
}

// loadFromDir loads <dir>/<name>.yaml with env overrides.
func loadFromDir[T any](name, dir string) (*T, error) {
	configFile, err := findConfigFile(name, []string{dir})
	if err != nil {
		return nil, err
	}

	return loadFile[T](name, configFile)
}

func findConfigFile(currEnv string, searchPaths []string) (string, error) {
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", errors.Errorf("config file %s.yaml not found in any search path", currEnv)
}

func loadFile[T any](currEnv, configFile string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: MODERATION_CACHETTLPROPOSAL -> moderation.cacheTtlProposal
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	cfg.Moderation = withModerationDefaults(cfg.Moderation)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// withModerationDefaults fills every zero moderation value with its default.
func withModerationDefaults(m *ModerationConfig) *ModerationConfig {
	def := DefaultModerationConfig()
	if m == nil {
		return def
	}

	out := *m
	if out.CacheTTLShelter <= 0 {
		out.CacheTTLShelter = def.CacheTTLShelter
	}
	if out.CacheTTLProposal <= 0 {
		out.CacheTTLProposal = def.CacheTTLProposal
	}
	if out.GeohashPrecision <= 0 {
		out.GeohashPrecision = def.GeohashPrecision
	}
	if out.ConditionMin == 0 && out.ConditionMax == 0 {
		out.ConditionMin, out.ConditionMax = def.ConditionMin, def.ConditionMax
	}
	if len(out.AllowedAmenityKeys) == 0 {
		out.AllowedAmenityKeys = def.AllowedAmenityKeys
	}
	if out.MaxInfoComplementariaKeys <= 0 {
		out.MaxInfoComplementariaKeys = len(out.AllowedAmenityKeys)
	}

	return &out
}

func (c *Config) validate() error {
	if c.Moderation.ConditionMin > c.Moderation.ConditionMax {
		return errors.Errorf("moderation.conditionMin %v exceeds conditionMax %v",
			c.Moderation.ConditionMin, c.Moderation.ConditionMax)
	}
	if c.Moderation.GeohashPrecision > 12 {
		return errors.Errorf("moderation.geohashPrecision %d exceeds 12", c.Moderation.GeohashPrecision)
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
