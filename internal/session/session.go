package session

import (
	"log/slog"
	"path/filepath"

	"github.com/rectcircle/doorparty/internal/dropfile"
	"github.com/rectcircle/doorparty/internal/errs"
	"github.com/rectcircle/doorparty/internal/logs"
	"github.com/rectcircle/doorparty/internal/settings"
	"github.com/rectcircle/doorparty/internal/variable"
)

// Options - startup parameters taken from the command line
type Options struct {
	Dropfile string
	Game     string
	Settings string
	Password string
	Debug    bool
}

// Validate - the only check made before any file is read
func (o Options) Validate() error {
	if o.Dropfile == "" {
		return &errs.ConfigurationError{Reason: "missing dropfile argument (-d, --dropfile <path>)"}
	}
	return nil
}

func (o Options) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("dropfile", o.Dropfile),
		slog.String("game", o.Game),
		slog.String("settings", o.Settings),
		slog.Any("password", logs.Redacted(o.Password)),
		slog.Bool("debug", o.Debug))
}

// Overrides - command line values replacing defaults or settings
type Overrides struct {
	Game     string
	Password string
}

// Descriptor - everything one door session needs. It holds no references,
// so every copy handed out is independent and the assembled value never changes.
type Descriptor struct {
	SSH    settings.SSH
	RLogin settings.RLogin
	Origin dropfile.Origin
	// Game is the game code sent in the client hello
	Game string
	// Password overrides RLogin.Password when non-empty
	Password string
}

// Assemble - combine dropfile, settings and overrides into a Descriptor
func Assemble(origin dropfile.Origin, s settings.Settings, overrides Overrides) Descriptor {
	game := overrides.Game
	if game == "" {
		game = variable.DefaultGameCode
	}
	return Descriptor{
		SSH:      s.SSH,
		RLogin:   s.RLogin,
		Origin:   origin,
		Game:     game,
		Password: overrides.Password,
	}
}

// SessionPassword - the rlogin password actually sent
func (d Descriptor) SessionPassword() string {
	if d.Password != "" {
		return d.Password
	}
	return d.RLogin.Password
}

func (d Descriptor) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("ssh", d.SSH),
		slog.Any("rlogin", d.RLogin),
		slog.Any("door32", d.Origin),
		slog.String("game", d.Game),
		slog.Any("password", logs.Redacted(d.Password)))
}

// Load - validate options, then parse the dropfile and settings and assemble.
// The fallback settings file lives in programDir.
func Load(opts Options, programDir string, logger *slog.Logger) (Descriptor, error) {
	if err := opts.Validate(); err != nil {
		return Descriptor{}, err
	}
	origin, err := dropfile.Load(opts.Dropfile, logger)
	if err != nil {
		return Descriptor{}, err
	}
	s, err := settings.Load(opts.Settings, filepath.Join(programDir, variable.SettingsFileName), logger)
	if err != nil {
		return Descriptor{}, err
	}
	return Assemble(origin, s, Overrides{Game: opts.Game, Password: opts.Password}), nil
}
