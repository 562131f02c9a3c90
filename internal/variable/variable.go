package variable

import (
	"os/user"
	"path"
)

var (
	// DefaultGatewayHost - gateway (and rlogin target) used when settings omit `server`
	DefaultGatewayHost = "dp.throwbackbbs.com"
	// DefaultSSHPort - gateway port used when `[ssh]` omits `port`
	DefaultSSHPort = 2022
	// DefaultRLoginPort - rlogin target port used when `[rlogin]` omits `port`
	DefaultRLoginPort = 513
	// DefaultGameCode - game launched when no `--game` is given
	DefaultGameCode = "ansi-bbs"
	// TerminalSpeedSuffix - appended to the game code in the rlogin client hello
	TerminalSpeedSuffix = "/115200"
	// ForwardOriginHost - originator host announced on the direct-tcpip channel
	ForwardOriginHost = "localhost"
	// SettingsFileName - default settings file, looked up next to the executable
	SettingsFileName = "settings.ini"
	// LogFileName - diagnostic log, written next to the executable
	LogFileName = "dpc.log"
	// SSHHostKeyFileName - development gateway rsa private key file name
	SSHHostKeyFileName = "ssh_host_rsa_key"
)

// ConfigBaseDir - the development gateway config dir
func ConfigBaseDir() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return path.Join(u.HomeDir, ".doorparty"), nil
}
