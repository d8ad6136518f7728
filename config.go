package logging

import (
	stderrs "errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Station-Manager/config"
	"github.com/Station-Manager/errors"
	"github.com/Station-Manager/types"
	"github.com/Station-Manager/utils"
	"github.com/dustin/go-humanize"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Config is the file form of the handle options.
//
//	name: worker
//	level: debug
//	file_path: /var/log/worker.log
//	max_size: 10MiB
//	backup_count: 5
type Config struct {
	Name        string `koanf:"name"`
	Level       string `koanf:"level"`
	Format      string `koanf:"format"`
	FilePath    string `koanf:"file_path"`
	LogDir      string `koanf:"log_dir"`
	MaxSize     string `koanf:"max_size"`
	BackupCount *int   `koanf:"backup_count"`
	Rotation    string `koanf:"rotation"`
	MaxAgeDays  int    `koanf:"max_age_days"`
	Compress    bool   `koanf:"compress"`
	Console     *bool  `koanf:"console"`
}

// LoadConfig reads a YAML (.yaml, .yml) or JSON (.json) config file.
func LoadConfig(path string) (Config, error) {
	const op errors.Op = "logging.LoadConfig"

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, ioError(op, err, errMsgReadConfig)
	}
	return parseConfig(path, data)
}

func parseConfig(path string, data []byte) (Config, error) {
	const op errors.Op = "logging.parseConfig"

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return Config{}, configError(op, ErrInvalidConfig, errMsgParseConfig+" Unsupported extension: "+filepath.Ext(path))
	}

	var cfg Config
	k := koanf.New(".")
	if len(data) == 0 {
		return cfg, nil
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return Config{}, configError(op, stderrs.Join(ErrInvalidConfig, err), errMsgParseConfig)
	}
	if err := k.UnmarshalWithConf(emptyString, &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, configError(op, stderrs.Join(ErrInvalidConfig, err), errMsgParseConfig)
	}
	return cfg, nil
}

// Options converts the file form into handle options. Only fields present in
// the file produce an option, so defaults and LOG_LEVEL still apply to the rest.
func (c Config) Options() ([]Option, error) {
	const op errors.Op = "logging.Config.Options"

	var opts []Option
	if c.Name != emptyString {
		opts = append(opts, WithName(c.Name))
	}
	if c.Level != emptyString {
		if _, err := ParseLevel(c.Level); err != nil {
			return nil, err
		}
		opts = append(opts, WithLevel(c.Level))
	}
	if c.Format != emptyString {
		opts = append(opts, WithFormat(c.Format))
	}
	if c.FilePath != emptyString {
		opts = append(opts, WithFilePath(c.FilePath))
	}
	if c.LogDir != emptyString {
		opts = append(opts, WithLogDir(c.LogDir))
	}
	if c.MaxSize != emptyString {
		n, err := ParseSize(c.MaxSize)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithMaxBytes(n))
	}
	if c.BackupCount != nil {
		opts = append(opts, WithBackupCount(*c.BackupCount))
	}
	switch RotationStyle(strings.ToLower(c.Rotation)) {
	case emptyString:
	case RotationNumbered:
		opts = append(opts, WithRotation(RotationNumbered))
	case RotationTimestamped:
		opts = append(opts, WithRotation(RotationTimestamped))
	default:
		return nil, configError(op, ErrInvalidConfig, errMsgConfigInvalid+" Unknown rotation: "+c.Rotation)
	}
	if c.MaxAgeDays != 0 {
		opts = append(opts, WithMaxAgeDays(c.MaxAgeDays))
	}
	if c.Compress {
		opts = append(opts, WithCompress(true))
	}
	if c.Console != nil && !*c.Console {
		opts = append(opts, WithoutConsole())
	}
	return opts, nil
}

// ParseSize accepts a plain byte count ("1048576") or a humanized size
// ("10MiB", "512 KB").
func ParseSize(s string) (int64, error) {
	const op errors.Op = "logging.ParseSize"
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 0 {
		return n, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil || n > 1<<62 {
		return 0, configError(op, stderrs.Join(ErrInvalidConfig, err), errMsgConfigInvalid+" Invalid size: "+s)
	}
	return int64(n), nil
}

// FromLoggingConfig adapts the shared Station-Manager logging config. The
// file lives at <workingDir>/<RelLogFileDir>/<name>.log and rotates by
// megabytes and age, as the rest of the Station-Manager services do.
// An empty name selects the executable name.
func FromLoggingConfig(workingDir, name string, cfg types.LoggingConfig) []Option {
	if name == emptyString {
		if exe, err := utils.ExecName(true); err == nil {
			name = exe
		}
	}
	opts := []Option{
		WithName(name),
		WithLogDir(filepath.Join(workingDir, cfg.RelLogFileDir)),
		WithRotation(RotationTimestamped),
		WithMaxBytes(int64(cfg.LogFileMaxSizeMB) * megabyte),
		WithBackupCount(cfg.LogFileMaxBackups),
		WithMaxAgeDays(cfg.LogFileMaxAgeDays),
		WithCompress(cfg.LogFileCompress),
	}
	if cfg.Level != emptyString {
		opts = append(opts, WithLevel(cfg.Level))
	}
	if !cfg.ConsoleLogging {
		opts = append(opts, WithoutConsole())
	}
	return opts
}

// LoadAppConfig initializes the Station-Manager application config service
// from the config.json in dir.
func LoadAppConfig(dir string) (*config.Service, error) {
	const op errors.Op = "logging.LoadAppConfig"
	svc := &config.Service{WorkingDir: dir}
	if err := svc.Initialize(); err != nil {
		return nil, configError(op, stderrs.Join(ErrInvalidConfig, err), errMsgLoadAppConfig)
	}
	return svc, nil
}

// FromConfigService is FromLoggingConfig over the logging section of an
// initialized application config service. An empty workingDir selects the
// service's own working directory.
func FromConfigService(workingDir, name string, svc *config.Service) ([]Option, error) {
	const op errors.Op = "logging.FromConfigService"
	if svc == nil {
		return nil, configError(op, ErrInvalidConfig, errMsgNilAppConfig)
	}
	if workingDir == emptyString {
		workingDir = svc.WorkingDir
	}
	cfg, err := svc.LoggingConfig()
	if err != nil {
		return nil, configError(op, stderrs.Join(ErrInvalidConfig, err), errMsgLoadAppConfig)
	}
	return FromLoggingConfig(workingDir, name, cfg), nil
}
