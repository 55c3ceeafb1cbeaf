// Command forbidcallsvet runs the forbidden call check over Go packages as a
// go/analysis pass, with type information.
//
//	forbidcallsvet -config forbidscan.yaml ./...
//	go vet -vettool=$(which forbidcallsvet) ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/ludo-technologies/forbidscan/internal/gocalls"
	"github.com/ludo-technologies/forbidscan/service"
)

func main() {
	singlechecker.Main(gocalls.NewConfigurableAnalyzer(service.LoadRuleSet))
}
