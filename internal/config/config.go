// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

// Package config provides the typed configuration keys of the service, backed by viper.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable bound by InitConfig.
const EnvPrefix = "PROMPTSMITH"

// DevSigningSecret is only ever used to sign sessions when dev mode is on.
const DevSigningSecret = "promptsmith-development-signing-secret"

// K is a configuration key.
type K string

const (
	// ServiceName is the name used in logs, metrics and the TOTP issuer fallback.
	ServiceName K = `service.name`
	// ServiceHost is the address the HTTP server binds to.
	ServiceHost K = `service.host`
	// ServicePort is the port the HTTP server listens on.
	ServicePort K = `service.port`
	// ServiceAPIPrefix is the path prefix of the versioned API.
	ServiceAPIPrefix K = `service.api_prefix`
	// ServiceDevMode relaxes cookie security and allows the development signing secret.
	ServiceDevMode K = `service.dev_mode`
	// ServiceLogLevel is the slog level (debug, info, warn, error).
	ServiceLogLevel K = `service.log_level`
	// ServiceBodyLimit limits the size of request bodies, media may be sent as data URLs.
	ServiceBodyLimit K = `service.body_limit`
	// ServiceContentSecurityPolicy is sent on every response.
	ServiceContentSecurityPolicy K = `service.content_security_policy`

	// ServiceCorsAllowOrigins is the list of allowed CORS origins.
	ServiceCorsAllowOrigins K = `service.cors.allowed_origins`
	// ServiceCorsAllowMethods is the list of allowed CORS methods.
	ServiceCorsAllowMethods K = `service.cors.allowed_methods`
	// ServiceCorsAllowCredentials controls Access-Control-Allow-Credentials.
	ServiceCorsAllowCredentials K = `service.cors.allow_credentials`
	// ServiceCorsMaxAge is the CORS preflight cache duration in seconds.
	ServiceCorsMaxAge K = `service.cors.max_age`

	// ServiceJWTSigningMethod is the session token algorithm, only HS256 is supported.
	ServiceJWTSigningMethod K = `service.jwt.signing_method`
	// ServiceJWTSigningSecret is the symmetric key used to sign session tokens.
	ServiceJWTSigningSecret K = `service.jwt.signing_secret`
	// ServiceJWTIssuer is the iss claim of session tokens.
	ServiceJWTIssuer K = `service.jwt.issuer`
	// ServiceJWTAudience is the aud claim of session tokens.
	ServiceJWTAudience K = `service.jwt.audience`

	// ServiceSessionCookieName is the name of the admin session cookie.
	ServiceSessionCookieName K = `service.session.cookie_name`
	// ServiceSessionTTL is the lifetime of an admin session.
	ServiceSessionTTL K = `service.session.ttl`

	// ServiceTotpSkew is the number of time steps accepted on either side of now.
	ServiceTotpSkew K = `service.totp.skew`
	// ServiceTotpInterval is the TOTP time step in seconds.
	ServiceTotpInterval K = `service.totp.interval`
	// ServiceTotpIssuer is the issuer label of provisioning URIs.
	ServiceTotpIssuer K = `service.totp.issuer`
	// ServiceTotpAccount is the account label of provisioning URIs.
	ServiceTotpAccount K = `service.totp.account`

	// ServiceRateLimitEnabled enables rate limiting of the authentication endpoints.
	ServiceRateLimitEnabled K = `service.rate_limit.enabled`
	// ServiceRateLimitRequestsPerMinute is the number of requests allowed per window.
	ServiceRateLimitRequestsPerMinute K = `service.rate_limit.requests_per_minute`
	// ServiceRateLimitWindowMinutes is the sliding window length.
	ServiceRateLimitWindowMinutes K = `service.rate_limit.window_minutes`

	// AdminPasswordHash is the bcrypt hash of the admin password.
	AdminPasswordHash K = `admin.password_hash`
	// AdminPassword is a plaintext admin password, used only when no hash is set.
	AdminPassword K = `admin.password`
	// AdminTotpSecret is the base32 shared secret of the admin authenticator.
	AdminTotpSecret K = `admin.totp_secret`
	// AdminSetupCode unlocks the enrollment endpoint. Enrollment is disabled when empty.
	AdminSetupCode K = `admin.setup_code`

	// DatabaseHost is the PostgreSQL host.
	DatabaseHost K = `database.host`
	// DatabasePort is the PostgreSQL port.
	DatabasePort K = `database.port`
	// DatabaseUsername is the PostgreSQL user.
	DatabaseUsername K = `database.username`
	// DatabasePassword is the PostgreSQL password.
	DatabasePassword K = `database.password`
	// DatabaseName is the PostgreSQL database.
	DatabaseName K = `database.name`
	// DatabaseAutoMigration runs pending migrations on startup.
	DatabaseAutoMigration K = `database.auto_migration`

	// RedisHost is the redis host.
	RedisHost K = `redis.host`
	// RedisPort is the redis port.
	RedisPort K = `redis.port`
	// RedisPassword is the redis password.
	RedisPassword K = `redis.password`
	// RedisDatabase is the redis database number.
	RedisDatabase K = `redis.database`

	// TelemetryEnabled enables OpenTelemetry.
	TelemetryEnabled K = `telemetry.enabled`
	// TelemetryServiceName is the service.name resource attribute.
	TelemetryServiceName K = `telemetry.service_name`
	// TelemetryServiceVersion is the service.version resource attribute.
	TelemetryServiceVersion K = `telemetry.service_version`
	// TelemetryOTLPEndpoint is the OTLP/HTTP collector endpoint, tracing export is off when empty.
	TelemetryOTLPEndpoint K = `telemetry.otlp.endpoint`
	// TelemetryOTLPHeaders are extra headers sent to the collector.
	TelemetryOTLPHeaders K = `telemetry.otlp.headers`
	// TelemetryOTLPInsecure disables TLS towards the collector.
	TelemetryOTLPInsecure K = `telemetry.otlp.insecure`
	// TelemetryPrometheusEnabled exposes metrics in the Prometheus format.
	TelemetryPrometheusEnabled K = `telemetry.prometheus.enabled`
	// TelemetryPrometheusEndpoint is the path of the metrics endpoint.
	TelemetryPrometheusEndpoint K = `telemetry.prometheus.endpoint`
	// TelemetryPrometheusExcludePrefixes hides metric families from the metrics endpoint.
	TelemetryPrometheusExcludePrefixes K = `telemetry.prometheus.exclude_prefixes`
	// TelemetryTracingEnabled enables the trace provider.
	TelemetryTracingEnabled K = `telemetry.tracing.enabled`
	// TelemetryTracingSampleRate is the ratio of sampled traces.
	TelemetryTracingSampleRate K = `telemetry.tracing.sample_rate`
	// TelemetryMetricsEnabled enables the metric provider.
	TelemetryMetricsEnabled K = `telemetry.metrics.enabled`
	// TelemetryResourceAttributes are extra resource attributes.
	TelemetryResourceAttributes K = `telemetry.resource_attributes`
)

// legacyEnv maps keys to the unprefixed variable names used by existing deployments.
var legacyEnv = map[K]string{
	ServiceJWTSigningSecret: "AUTH_SECRET",
	AdminPasswordHash:       "ADMIN_PASSWORD_HASH",
	AdminPassword:           "ADMIN_PASSWORD",
	AdminTotpSecret:         "ADMIN_TOTP_SECRET",
	AdminSetupCode:          "SETUP_CODE",
}

// Get returns the raw value of the key.
func (k K) Get() interface{} {
	return viper.Get(string(k))
}

// GetString returns the value of the key as a string.
func (k K) GetString() string {
	return viper.GetString(string(k))
}

// GetStringSlice returns the value of the key as a slice of strings.
func (k K) GetStringSlice() []string {
	return viper.GetStringSlice(string(k))
}

// GetStringMapString returns the value of the key as a string map.
func (k K) GetStringMapString() map[string]string {
	return viper.GetStringMapString(string(k))
}

// GetBool returns the value of the key as a bool.
func (k K) GetBool() bool {
	return viper.GetBool(string(k))
}

// GetInt returns the value of the key as an int.
func (k K) GetInt() int {
	return viper.GetInt(string(k))
}

// GetUint returns the value of the key as a uint.
func (k K) GetUint() uint {
	return viper.GetUint(string(k))
}

// GetUint8 returns the value of the key as a uint8.
func (k K) GetUint8() uint8 {
	return uint8(viper.GetUint(string(k))) // nolint:gosec // small configuration values
}

// GetUint64 returns the value of the key as a uint64.
func (k K) GetUint64() uint64 {
	return viper.GetUint64(string(k))
}

// GetFloat64 returns the value of the key as a float64.
func (k K) GetFloat64() float64 {
	return viper.GetFloat64(string(k))
}

// GetDuration returns the value of the key as a time.Duration.
func (k K) GetDuration() time.Duration {
	return viper.GetDuration(string(k))
}

// Set overrides the value of the key.
func (k K) Set(value interface{}) {
	viper.Set(string(k), value)
}

// DefaultConfig registers the default value of every key.
func DefaultConfig() {
	viper.SetDefault(string(ServiceName), "promptsmith-api")
	viper.SetDefault(string(ServiceHost), "*")
	viper.SetDefault(string(ServicePort), 8080)
	viper.SetDefault(string(ServiceAPIPrefix), "api")
	viper.SetDefault(string(ServiceDevMode), false)
	viper.SetDefault(string(ServiceLogLevel), "info")
	viper.SetDefault(string(ServiceBodyLimit), "10M")
	viper.SetDefault(string(ServiceContentSecurityPolicy),
		"default-src 'self'; img-src 'self' data: blob: https:; media-src 'self' data: blob: https:; "+
			"script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; connect-src 'self' https:; "+
			"frame-ancestors 'none'")

	viper.SetDefault(string(ServiceCorsAllowOrigins), []string{"*"})
	viper.SetDefault(string(ServiceCorsAllowMethods), []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault(string(ServiceCorsAllowCredentials), true)
	viper.SetDefault(string(ServiceCorsMaxAge), 0)

	viper.SetDefault(string(ServiceJWTSigningMethod), "HS256")
	viper.SetDefault(string(ServiceJWTSigningSecret), "")
	viper.SetDefault(string(ServiceJWTIssuer), "promptsmith")
	viper.SetDefault(string(ServiceJWTAudience), "admin")

	viper.SetDefault(string(ServiceSessionCookieName), "admin_session")
	viper.SetDefault(string(ServiceSessionTTL), 7*24*time.Hour)

	viper.SetDefault(string(ServiceTotpSkew), 1)
	viper.SetDefault(string(ServiceTotpInterval), 30)
	viper.SetDefault(string(ServiceTotpIssuer), "PromptSmith")
	viper.SetDefault(string(ServiceTotpAccount), "admin")

	viper.SetDefault(string(ServiceRateLimitEnabled), true)
	viper.SetDefault(string(ServiceRateLimitRequestsPerMinute), 10)
	viper.SetDefault(string(ServiceRateLimitWindowMinutes), 1)

	viper.SetDefault(string(AdminPasswordHash), "")
	viper.SetDefault(string(AdminPassword), "")
	viper.SetDefault(string(AdminTotpSecret), "")
	viper.SetDefault(string(AdminSetupCode), "")

	viper.SetDefault(string(DatabaseHost), "localhost")
	viper.SetDefault(string(DatabasePort), 5432)
	viper.SetDefault(string(DatabaseUsername), "promptsmith")
	viper.SetDefault(string(DatabasePassword), "promptsmith")
	viper.SetDefault(string(DatabaseName), "promptsmith")
	viper.SetDefault(string(DatabaseAutoMigration), true)

	viper.SetDefault(string(RedisHost), "localhost")
	viper.SetDefault(string(RedisPort), 6379)
	viper.SetDefault(string(RedisPassword), "")
	viper.SetDefault(string(RedisDatabase), 0)

	viper.SetDefault(string(TelemetryEnabled), false)
	viper.SetDefault(string(TelemetryServiceName), "promptsmith-api")
	viper.SetDefault(string(TelemetryServiceVersion), "dev")
	viper.SetDefault(string(TelemetryOTLPEndpoint), "")
	viper.SetDefault(string(TelemetryOTLPHeaders), map[string]string{})
	viper.SetDefault(string(TelemetryOTLPInsecure), false)
	viper.SetDefault(string(TelemetryPrometheusEnabled), true)
	viper.SetDefault(string(TelemetryPrometheusEndpoint), "/metrics")
	viper.SetDefault(string(TelemetryPrometheusExcludePrefixes), []string{"promhttp_"})
	viper.SetDefault(string(TelemetryTracingEnabled), false)
	viper.SetDefault(string(TelemetryTracingSampleRate), 0.1)
	viper.SetDefault(string(TelemetryMetricsEnabled), true)
	viper.SetDefault(string(TelemetryResourceAttributes), map[string]string{})
}

// InitConfig loads defaults, an optional YAML file, a .env file in the working directory
// and the process environment, in increasing order of precedence.
func InitConfig(configPath string) {
	DefaultConfig()

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/promptsmith")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("Failed to read config file", "error", err)
		}
	} else {
		slog.Info("Using config file", "file", viper.ConfigFileUsed())
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for key, legacy := range legacyEnv {
		envName := EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(string(key)))
		if err := viper.BindEnv(string(key), envName, legacy); err != nil {
			slog.Warn("Failed to bind environment variable", "key", key, "error", err)
		}
	}
}

// GetDbURI returns the PostgreSQL connection URI.
func GetDbURI() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		DatabaseUsername.GetString(),
		DatabasePassword.GetString(),
		DatabaseHost.GetString(),
		DatabasePort.GetUint(),
		DatabaseName.GetString(),
	)
}

// GetRedisAddress returns the redis host:port pair.
func GetRedisAddress() string {
	return net.JoinHostPort(RedisHost.GetString(), strconv.Itoa(RedisPort.GetInt()))
}

// GetServerAddress returns the listen address. A host of "*" listens on all interfaces.
func GetServerAddress() string {
	host := ServiceHost.GetString()
	if host == "*" {
		host = ""
	}
	return fmt.Sprintf("%s:%d", host, ServicePort.GetUint())
}

// GetJWTSigningSecret returns the session signing secret. In dev mode a fixed fallback is
// returned when none is configured, otherwise an empty secret is returned and Validate fails.
func GetJWTSigningSecret() []byte {
	if secret := ServiceJWTSigningSecret.GetString(); secret != "" {
		return []byte(secret)
	}
	if ServiceDevMode.GetBool() {
		return []byte(DevSigningSecret)
	}
	return nil
}

// Validate reports configuration that must stop the service from starting.
func Validate() error {
	var errs []error

	if len(GetJWTSigningSecret()) == 0 {
		errs = append(errs, fmt.Errorf("%s is required outside dev mode (env %s_SERVICE_JWT_SIGNING_SECRET or AUTH_SECRET)",
			ServiceJWTSigningSecret, EnvPrefix))
	}
	if m := ServiceJWTSigningMethod.GetString(); m != "HS256" {
		errs = append(errs, fmt.Errorf("%s: unsupported signing method %q", ServiceJWTSigningMethod, m))
	}
	if ServicePort.GetInt() <= 0 || ServicePort.GetInt() > 65535 {
		errs = append(errs, fmt.Errorf("%s: invalid port %d", ServicePort, ServicePort.GetInt()))
	}
	if ServiceTotpInterval.GetInt() <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", ServiceTotpInterval))
	}
	if ServiceSessionTTL.GetDuration() <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", ServiceSessionTTL))
	}

	return errors.Join(errs...)
}

// Random returns n random bytes, hex encoded.
func Random(n int) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("invalid length %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
