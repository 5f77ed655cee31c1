package main

import (
	"fmt"

	"github.com/fwojciec/ragdoc/tui"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	answer, err := deps.Asker.Ask(deps.Ctx, c.Question)
	if err != nil {
		return report(deps.Stderr, err)
	}

	fmt.Fprint(deps.Stdout, tui.FormatAnswer(answer, c.Sources))
	return nil
}
