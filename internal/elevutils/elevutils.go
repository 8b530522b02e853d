package elevutils

import (
	_ "embed"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/xyproto/randomstring"
)

//go:generate sh -c "printf %s $(git rev-parse HEAD) > githash.txt"
//go:embed githash.txt
var gitHash string

const REQUEST_ID_LEN = 10

func GetGitHash() string {
	return gitHash
}

// NewRequestId returns a short random id used to follow a request through the logs
func NewRequestId() string {
	return randomstring.EnglishFrequencyString(REQUEST_ID_LEN)
}

type CmdArgs struct {
	ConfigPath  string
	EnvPath     string
	Interactive bool
}

func ProcessCmdArgs() CmdArgs {
	args, code, done := ParseCmdArgs(os.Args[1:], os.Stdout)
	if done {
		os.Exit(code)
	}
	return args
}

// ParseCmdArgs parses args without touching the global flag set. done is
// true when the caller should exit with code (help, version, bad flags).
func ParseCmdArgs(arguments []string, out io.Writer) (args CmdArgs, code int, done bool) {
	flags := flag.NewFlagSet("dispatcher", flag.ContinueOnError)
	flags.SetOutput(out)

	help := flags.Bool("help", false, "Show Help Window")
	version := flags.Bool("version", false, "Show Version")
	flags.StringVar(&args.ConfigPath, "config", "", "Path to a YAML config file. Defaults to built-in settings")
	flags.StringVar(&args.EnvPath, "env", "", "Path to a .env file with DISPATCH_* overrides")
	flags.BoolVar(&args.Interactive, "interactive", false, "Read calls from the keyboard. Defaults to false")

	if err := flags.Parse(arguments); err != nil {
		return args, 2, true
	}

	if *version {
		fmt.Fprintln(out, "Version:", GetGitHash())
		return args, 0, true
	}

	if *help {
		fmt.Fprintln(out, "Usage: ./dispatcher [OPTIONS]")
		fmt.Fprintln(out, "Elevator Call Dispatcher")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Options:")
		flags.PrintDefaults()
		return args, 0, true
	}

	return args, 0, false
}
