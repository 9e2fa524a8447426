// internal/config/model.go
//
// Typed configuration model for the platform gateway.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                       – dotenv values,
//   • `conf/global.yaml`                    – primary static file,
//   • `LMS_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client at boot, so downstream code never sees Vault
// URIs—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the control-plane DSN and its secret.
//
// The *template* (`GlobalDSN`) is kept in YAML so operators can tweak
// host, port, or flags without touching Vault.  The *secret* portion
// (`GlobalPassword`) is stored in Vault and injected at runtime, keeping
// credentials out of flat files and git history.
type Database struct {
	GlobalDSN      string `koanf:"global_dsn"      validate:"required"`
	GlobalPassword string `koanf:"global_password" validate:"required"`
}

//
// Gateway section
//

// Gateway holds edge-routing tunables.  LocalHosts lists the hostnames the
// tenant resolver must skip entirely, so dev instances never hit the
// organization tables.  GeoDBPath is optional; when empty the request-info
// middleware skips geolocation.
type Gateway struct {
	LocalHosts []string `koanf:"local_hosts"`
	GeoDBPath  string   `koanf:"geoip_db"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or LMS_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // LMS_ROOT or discovered parent
}

// Config is the root of the tree.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Gateway  Gateway  `koanf:"gateway"`
	Paths    Paths    `koanf:"-"`
}
