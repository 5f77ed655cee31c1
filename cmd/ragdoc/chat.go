package main

import (
	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/tui"
)

// Run executes the chat command. A terminal gets the full-screen chat;
// piped input is answered line by line.
func (c *ChatCmd) Run(deps *Dependencies) error {
	session := ragdoc.NewSession(deps.Asker)

	if deps.Interactive {
		return tui.Run(deps.Ctx, session, chatTitle(deps.Config), deps.Stdin, deps.Stdout)
	}
	return tui.RunLines(deps.Ctx, session, deps.Stdin, deps.Stdout, c.Sources)
}

func chatTitle(cfg ragdoc.Config) string {
	if cfg.Subject != "" {
		return cfg.Subject + " docs"
	}
	return cfg.IndexName
}
