package main

import (
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/rectcircle/doorparty/internal/simplesshd"
	"github.com/rectcircle/doorparty/internal/variable"
	"github.com/rectcircle/doorparty/tools"
	"golang.org/x/crypto/ssh"
)

func parseArgs(args []string) (host string, port uint16, username string, password string) {
	var (
		portUint64 uint
		help       bool
	)
	flagset := flag.NewFlagSet(args[0], flag.ExitOnError)
	flagset.StringVar(&host, "h", "127.0.0.1", "host - bind host")
	flagset.UintVar(&portUint64, "p", 2022, "port - bind port")
	flagset.StringVar(&username, "u", "door", "username accepted by the gateway")
	flagset.StringVar(&password, "P", "party", "password accepted by the gateway")
	flagset.BoolVar(&help, "help", false, "output this help")
	flagset.Usage = func() {
		fmt.Fprintf(flagset.Output(), "Start a development door party gateway (password auth, direct-tcpip only)\nUsage of `%s`:\n", args[0])
		flagset.PrintDefaults()
	}
	flagset.Parse(args[1:])
	if help {
		flagset.Usage()
		os.Exit(0)
	}
	if portUint64 >= (1 << 16) {
		os.Stderr.WriteString("error: port must is uint16\n")
		os.Exit(2)
	}
	port = uint16(portUint64)
	return
}

func readOrCreatePrivateKey() []byte {
	baseDir, err := variable.ConfigBaseDir()
	tools.LogAndExitIfErr(err)
	content, err2 := tools.ReadOrCreateFile(
		path.Join(baseDir, variable.SSHHostKeyFileName),
		simplesshd.GeneratePrivateKey,
	)
	tools.LogAndExitIfErr(err2)
	return content
}

func main() {
	host, port, username, password := parseArgs(os.Args)
	signer, err := ssh.ParsePrivateKey(readOrCreatePrivateKey())
	tools.LogAndExitIfErr(err)
	server := &simplesshd.Server{
		Username: username,
		Password: password,
		Signer:   signer,
	}
	tools.LogAndExitIfErr(server.ListenAndServe(host, int(port)))
}
