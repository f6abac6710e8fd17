package main

import (
	"os"
	"strings"

	"cardwrite/internal/cli"
)

const cardIDPrefix = "card-"

func isCardID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, cardIDPrefix) && len(s) > len(cardIDPrefix)
}

// valueFlags are the persistent flags that take a separate value token.
var valueFlags = map[string]bool{
	"--dir":    true,
	"--format": true,
}

// rewriteCardLookupArgs turns `cardwrite <card-id>` into
// `cardwrite cards show <card-id>`. Cobra would read the id as a subcommand,
// so argv is rewritten before parsing.
func rewriteCardLookupArgs(argv []string) []string {
	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			if i+1 < len(argv) && isCardID(argv[i+1]) {
				return spliceShow(argv, i+1)
			}
			return argv
		case strings.HasPrefix(a, "-"):
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		case isCardID(a):
			return spliceShow(argv, i)
		default:
			return argv
		}
	}
	return argv
}

func spliceShow(argv []string, at int) []string {
	out := make([]string, 0, len(argv)+2)
	out = append(out, argv[:at]...)
	out = append(out, "cards", "show")
	return append(out, argv[at:]...)
}

func main() {
	os.Args = rewriteCardLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
