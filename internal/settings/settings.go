// Package settings loads settings.ini: the `[ssh]` gateway credentials and
// the `[rlogin]` relay target.
package settings

import (
	"log/slog"
	"strings"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"
	"github.com/rectcircle/doorparty/internal/errs"
	"github.com/rectcircle/doorparty/internal/logs"
	"github.com/rectcircle/doorparty/internal/variable"
	"github.com/rectcircle/doorparty/tools"
)

// SSH - tunnel gateway configuration, section `[ssh]`
type SSH struct {
	Username string
	Password string
	Server   string
	Port     int
}

// RLogin - relay target and session identity, section `[rlogin]`
type RLogin struct {
	// BBSTag is always in bracketed form, see NormalizeTag
	BBSTag   string
	Password string
	Server   string
	Port     int
}

// Settings - the whole settings.ini
type Settings struct {
	SSH    SSH
	RLogin RLogin
}

// Default - settings of a source with neither section present
func Default() Settings {
	return Settings{
		SSH: SSH{
			Server: variable.DefaultGatewayHost,
			Port:   variable.DefaultSSHPort,
		},
		RLogin: RLogin{
			BBSTag: NormalizeTag(""),
			Server: variable.DefaultGatewayHost,
			Port:   variable.DefaultRLoginPort,
		},
	}
}

// NormalizeTag - strip every `[` and `]`, then wrap the rest as `[tag]`
func NormalizeTag(tag string) string {
	return "[" + strings.NewReplacer("[", "", "]", "").Replace(tag) + "]"
}

// Parse - decode settings.ini content, `name` only labels errors
func Parse(name string, source interface{}) (Settings, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment: true,
	}, source)
	if err != nil {
		return Settings{}, errs.NewParseError(name, errors.Wrap(err, "load ini"))
	}
	settings := Default()
	rawTag := ""
	if section, err := file.GetSection("ssh"); err == nil {
		settings.SSH.Username = section.Key("username").String()
		settings.SSH.Password = section.Key("password").String()
		settings.SSH.Server = stringOr(section, "server", variable.DefaultGatewayHost)
		if settings.SSH.Port, err = portOr(section, variable.DefaultSSHPort); err != nil {
			return Settings{}, errs.NewParseError(name, err)
		}
	}
	if section, err := file.GetSection("rlogin"); err == nil {
		rawTag = section.Key("bbs_tag").String()
		settings.RLogin.Password = section.Key("password").String()
		settings.RLogin.Server = stringOr(section, "server", variable.DefaultGatewayHost)
		if settings.RLogin.Port, err = portOr(section, variable.DefaultRLoginPort); err != nil {
			return Settings{}, errs.NewParseError(name, err)
		}
	}
	settings.RLogin.BBSTag = NormalizeTag(rawTag)
	return settings, nil
}

func stringOr(section *ini.Section, key string, fallback string) string {
	if v := section.Key(key).String(); v != "" {
		return v
	}
	return fallback
}

func portOr(section *ini.Section, fallback int) (int, error) {
	key := section.Key("port")
	if key.String() == "" {
		return fallback, nil
	}
	port, err := key.Int()
	if err != nil {
		return 0, errors.Wrapf(err, "[%s] port", section.Name())
	}
	if port <= 0 || port >= 1<<16 {
		return 0, errors.Errorf("[%s] port %d out of range", section.Name(), port)
	}
	return port, nil
}

// Load - read settings from `path`; if that file does not exist, fall back
// to `fallback`. The read failure of the last candidate is returned.
func Load(path string, fallback string, logger *slog.Logger) (Settings, error) {
	if path == "" {
		path = fallback
	} else if !tools.PathExist(path) && fallback != "" {
		logger.Warn("Settings file missing, using default", "path", path, "fallback", fallback)
		path = fallback
	}
	settings, err := Parse(path, path)
	if err != nil {
		return Settings{}, err
	}
	logger.Debug("Settings", "data", settings)
	return settings, nil
}

func (s SSH) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", s.Username),
		slog.Any("password", logs.Redacted(s.Password)),
		slog.String("server", s.Server),
		slog.Int("port", s.Port))
}

func (r RLogin) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bbs_tag", r.BBSTag),
		slog.Any("password", logs.Redacted(r.Password)),
		slog.String("server", r.Server),
		slog.Int("port", r.Port))
}

func (s Settings) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("ssh", s.SSH),
		slog.Any("rlogin", s.RLogin))
}
