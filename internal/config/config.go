// Package config loads the recognized site options from the project's
// frontship config file and resolves them once, at pipeline start, into an
// immutable value that later phases receive as a read-only parameter.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/frontship/frontship/internal/models"
	"github.com/spf13/viper"
)

// raw mirrors the config file. buildCommand and aliases accept either a
// single string or a list; both are normalized in Resolved.
type raw struct {
	BuildCommand     any               `mapstructure:"buildCommand"`
	BuildEnvironment map[string]string `mapstructure:"buildEnvironment"`
	Framework        string            `mapstructure:"framework"`
	SSREnvironment   map[string]string `mapstructure:"ssrEnvironment"`
	SSRForwardHost   *bool             `mapstructure:"ssrForwardHost"`
	Aliases          any               `mapstructure:"aliases"`
	Certificate      string            `mapstructure:"certificate"`
	Stack            string            `mapstructure:"stack"`
	CloudFront       rawCloudFront     `mapstructure:"cloudfront"`
}

type rawCloudFront struct {
	Description string `mapstructure:"description"`
	PriceClass  string `mapstructure:"price_class"`
	IPv6        *bool  `mapstructure:"ipv6"`
	Enabled     *bool  `mapstructure:"enabled"`
	HTTP        string `mapstructure:"http"`
	SSLVersion  string `mapstructure:"ssl_version"`
}

// Resolved is the read-only configuration threaded through the pipeline.
type Resolved struct {
	BuildCommand     []string
	BuildEnvironment map[string]string
	Framework        string
	SSREnvironment   map[string]string
	SSRForwardHost   bool
	Aliases          []string
	Certificate      string
	Stack            string

	CDNDescription string
	CDNPriceClass  string
	CDNIPv6        *bool
	CDNEnabled     *bool
	CDNHTTPVersion string
	CDNSSLVersion  string
}

// envKeys are the recognized settings, bound explicitly so a FRONTSHIP_*
// variable takes effect even when the file does not mention the key (or does
// not exist at all). AutomaticEnv alone only overrides keys viper has
// already seen.
var envKeys = []string{
	"buildCommand",
	"framework",
	"ssrForwardHost",
	"aliases",
	"certificate",
	"stack",
	"cloudfront.description",
	"cloudfront.price_class",
	"cloudfront.ipv6",
	"cloudfront.enabled",
	"cloudfront.http",
	"cloudfront.ssl_version",
}

// Load reads frontship.{yml,yaml,json} from the project directory plus
// FRONTSHIP_* environment overrides. A missing file resolves to defaults;
// malformed values are configuration errors.
func Load(projectDir string) (*Resolved, error) {
	v := viper.New()
	v.SetConfigName("frontship")
	v.AddConfigPath(projectDir)
	v.SetEnvPrefix("frontship")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, &models.ConfigurationError{Field: key, Cause: err}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &models.ConfigurationError{Field: "frontship.yml", Cause: err}
		}
	}

	var r raw
	if err := v.Unmarshal(&r); err != nil {
		return nil, &models.ConfigurationError{Field: "frontship.yml", Cause: err}
	}
	return resolve(&r)
}

func resolve(r *raw) (*Resolved, error) {
	buildCommand, err := normalizeList("buildCommand", r.BuildCommand, strings.Fields)
	if err != nil {
		return nil, err
	}
	aliases, err := normalizeList("aliases", r.Aliases, splitCommaList)
	if err != nil {
		return nil, err
	}

	forwardHost := true
	if r.SSRForwardHost != nil {
		forwardHost = *r.SSRForwardHost
	}

	return &Resolved{
		BuildCommand:     buildCommand,
		BuildEnvironment: r.BuildEnvironment,
		Framework:        r.Framework,
		SSREnvironment:   r.SSREnvironment,
		SSRForwardHost:   forwardHost,
		Aliases:          aliases,
		Certificate:      r.Certificate,
		Stack:            r.Stack,
		CDNDescription:   r.CloudFront.Description,
		CDNPriceClass:    r.CloudFront.PriceClass,
		CDNIPv6:          r.CloudFront.IPv6,
		CDNEnabled:       r.CloudFront.Enabled,
		CDNHTTPVersion:   r.CloudFront.HTTP,
		CDNSSLVersion:    r.CloudFront.SSLVersion,
	}, nil
}

// normalizeList accepts a string (split with the provided splitter) or a
// list of strings.
func normalizeList(field string, value any, split func(string) []string) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return split(v), nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &models.ConfigurationError{
					Field: field,
					Value: fmt.Sprint(item),
					Cause: fmt.Errorf("list entries must be strings"),
				}
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, &models.ConfigurationError{
			Field: field,
			Value: fmt.Sprint(value),
			Cause: fmt.Errorf("expected a string or a list of strings"),
		}
	}
}

func splitCommaList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
