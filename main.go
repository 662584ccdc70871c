// The main package for the cronograma executable.
package main

import (
	"github.com/dmorenoc/cronograma/cmd"
)

func main() {
	cmd.Execute()
}
