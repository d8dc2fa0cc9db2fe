package serverconfig

import "time"

type Config struct {
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	HTTPServer  HTTPServerConfig  `yaml:"httpserver" mapstructure:"httpserver"`
	GRPCServer  GRPCServerConfig  `yaml:"grpcserver" mapstructure:"grpcserver"`
	Game        GameConfig        `yaml:"game" mapstructure:"game"`
	Persistence PersistenceConfig `yaml:"persistence" mapstructure:"persistence"`
	MongoDB     MongoDBConfig     `yaml:"mongodb" mapstructure:"mongodb"`
	MySQL       MySQLConfig       `yaml:"mysql" mapstructure:"mysql"`
	SQLite      SQLiteConfig      `yaml:"sqlite" mapstructure:"sqlite"`
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}

type HTTPServerConfig struct {
	Host        string   `yaml:"host" mapstructure:"host"`
	Port        int      `yaml:"port" mapstructure:"port"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second per client ip, 0 disables
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	CorsOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

type GRPCServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"` // 0 disables the health endpoint
}

type GameConfig struct {
	TickMs              int     `yaml:"tick_ms" mapstructure:"tick_ms"`
	AIIntervalMs        int     `yaml:"ai_interval_ms" mapstructure:"ai_interval_ms"`
	MarketMaintenanceMs int     `yaml:"market_maintenance_ms" mapstructure:"market_maintenance_ms"`
	FlushMs             int     `yaml:"flush_ms" mapstructure:"flush_ms"`
	StateCacheTTLMs     int     `yaml:"state_cache_ttl_ms" mapstructure:"state_cache_ttl_ms"`
	ResetOnStart        *bool   `yaml:"reset_on_start" mapstructure:"reset_on_start"`
	BuildingsFile       string  `yaml:"buildings_file" mapstructure:"buildings_file"`
	RegionsFile         string  `yaml:"regions_file" mapstructure:"regions_file"`
	SnapshotDir         string  `yaml:"snapshot_dir" mapstructure:"snapshot_dir"`
	ArmySpeedKmh        float64 `yaml:"army_speed_kmh" mapstructure:"army_speed_kmh"`
	TransferMinMs       int     `yaml:"transfer_min_ms" mapstructure:"transfer_min_ms"`
	TransferMaxMs       int     `yaml:"transfer_max_ms" mapstructure:"transfer_max_ms"`
	AskTimeoutMs        int     `yaml:"ask_timeout_ms" mapstructure:"ask_timeout_ms"`
	MarketSeed          int64   `yaml:"market_seed" mapstructure:"market_seed"` // 0 seeds from the clock
}

func (g GameConfig) WithDefaults() GameConfig {
	if g.TickMs <= 0 {
		g.TickMs = 1000
	}
	if g.AIIntervalMs <= 0 {
		g.AIIntervalMs = 10000
	}
	if g.MarketMaintenanceMs <= 0 {
		g.MarketMaintenanceMs = 30 * 60 * 1000
	}
	if g.FlushMs <= 0 {
		g.FlushMs = 3000
	}
	if g.StateCacheTTLMs <= 0 {
		g.StateCacheTTLMs = 5000
	}
	if g.ResetOnStart == nil {
		reset := true
		g.ResetOnStart = &reset
	}
	if g.SnapshotDir == "" {
		g.SnapshotDir = "data/snapshots"
	}
	if g.ArmySpeedKmh <= 0 {
		g.ArmySpeedKmh = 100
	}
	if g.TransferMinMs <= 0 {
		g.TransferMinMs = 5000
	}
	if g.TransferMaxMs < g.TransferMinMs {
		g.TransferMaxMs = 30000
	}
	if g.AskTimeoutMs <= 0 {
		g.AskTimeoutMs = 3000
	}
	return g
}

func (g GameConfig) Tick() time.Duration       { return ms(g.TickMs) }
func (g GameConfig) AIInterval() time.Duration { return ms(g.AIIntervalMs) }
func (g GameConfig) MarketMaintenance() time.Duration {
	return ms(g.MarketMaintenanceMs)
}
func (g GameConfig) Flush() time.Duration         { return ms(g.FlushMs) }
func (g GameConfig) StateCacheTTL() time.Duration { return ms(g.StateCacheTTLMs) }
func (g GameConfig) TransferMin() time.Duration   { return ms(g.TransferMinMs) }
func (g GameConfig) TransferMax() time.Duration   { return ms(g.TransferMaxMs) }
func (g GameConfig) AskTimeout() time.Duration    { return ms(g.AskTimeoutMs) }
func (g GameConfig) ShouldReset() bool            { return g.ResetOnStart == nil || *g.ResetOnStart }

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// PersistenceConfig selects where the game-state slot lives.
type PersistenceConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"` // file | sqlite | mongodb | mysql | memory
	FilePath string `yaml:"file_path" mapstructure:"file_path"`
}

func (p PersistenceConfig) WithDefaults() PersistenceConfig {
	if p.Driver == "" {
		p.Driver = "file"
	}
	if p.FilePath == "" {
		p.FilePath = "data/game-state.json"
	}
	return p
}

type MongoDBConfig struct {
	URI             string `yaml:"uri" mapstructure:"uri"`
	Database        string `yaml:"database" mapstructure:"database"`
	ConnectTimeoutS int    `yaml:"connect_timeout_s" mapstructure:"connect_timeout_s"`
}

type MySQLConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	Charset  string `yaml:"charset" mapstructure:"charset"`
	MaxIdle  int    `yaml:"max_idle" mapstructure:"max_idle"`
	MaxConn  int    `yaml:"max_conn" mapstructure:"max_conn"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}
