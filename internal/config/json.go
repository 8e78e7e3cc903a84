package config

import (
	"encoding/json"
	"os"

	"github.com/mkoval-dev/peercall/internal/flagx"
	"github.com/mkoval-dev/peercall/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "60s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	NatsURL               string         `json:"nats_url"`
	DatabaseDSN           string         `json:"database_dsn"`
	LocalDBPath           string         `json:"local_db_path"`
	CallAppID             int64          `json:"call_app_id"`
	CallServerSecret      string         `json:"call_server_secret"`
	CallRoom              string         `json:"call_room"`
	InviteTimeout         timex.Duration `json:"invite_timeout"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	PresenceTTL           timex.Duration `json:"presence_ttl"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	AvatarURLValidity     timex.Duration `json:"avatar_url_validity"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies known fields into the provided Config.
//   - Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones. Zero values in the JSON do not overwrite defaults.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.NatsURL != "" {
		cfg.NatsURL = jc.NatsURL
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.LocalDBPath != "" {
		cfg.LocalDBPath = jc.LocalDBPath
	}
	if jc.CallAppID != 0 {
		cfg.CallAppID = jc.CallAppID
	}
	if jc.CallServerSecret != "" {
		cfg.CallServerSecret = jc.CallServerSecret
	}
	if jc.CallRoom != "" {
		cfg.CallRoom = jc.CallRoom
	}
	if jc.InviteTimeout.Duration != 0 {
		cfg.InviteTimeout = jc.InviteTimeout.Duration
	}
	if jc.TokenValidityDuration.Duration != 0 {
		cfg.TokenValidityDuration = jc.TokenValidityDuration.Duration
	}
	if jc.PresenceTTL.Duration != 0 {
		cfg.PresenceTTL = jc.PresenceTTL.Duration
	}
	if jc.S3RootUser != "" {
		cfg.S3RootUser = jc.S3RootUser
	}
	if jc.S3RootPassword != "" {
		cfg.S3RootPassword = jc.S3RootPassword
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3BaseEndpoint != "" {
		cfg.S3BaseEndpoint = jc.S3BaseEndpoint
	}
	if jc.AvatarURLValidity.Duration != 0 {
		cfg.AvatarURLValidity = jc.AvatarURLValidity.Duration
	}
}
