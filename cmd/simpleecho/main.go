package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rectcircle/doorparty/internal/simpleecho"
	"github.com/rectcircle/doorparty/tools"
)

func parseArgs(args []string) (host string, port uint16) {
	var (
		portUint64 uint
		help       bool
	)
	flagset := flag.NewFlagSet(args[0], flag.ExitOnError)
	flagset.StringVar(&host, "h", "127.0.0.1", "host")
	flagset.UintVar(&portUint64, "p", 10513, "port")
	flagset.BoolVar(&help, "help", false, "output this help")
	flagset.Usage = func() {
		fmt.Fprintf(flagset.Output(), "Run a echo server standing in for an rlogin game server\nUsage of `%s`:\n", args[0])
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

func main() {
	host, port := parseArgs(os.Args)
	tools.LogAndExitIfErr(simpleecho.ListenAndServe(host, int(port)))
}
