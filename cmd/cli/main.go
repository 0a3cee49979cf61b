// Command cli is the operator tool for the wallet: schema migrations, order
// lookups, balance audits and promotion management.
package main

import (
	"os"

	log "github.com/charmbracelet/log"
)

func main() {
	if err := newRootCmd(defaultEnv()).Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
