package cmd

import (
	"fmt"
)

func init() {
	RegisterCommand(&Command{
		Name:  "list",
		Short: "List prefixes or the icons of a prefix",
		Long: `Without arguments, list every registered prefix. With a prefix, list the
icon names it serves, including aliases.

Listing an iconify prefix queries the Iconify API.`,
		Usage: "icons list [PREFIX]",
		Run:   runList,
	})
}

func runList(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("expected at most one prefix")
	}

	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	if len(args) == 0 {
		for _, prefix := range p.manager.Prefixes() {
			fmt.Fprintln(stdout, prefix)
		}
		return nil
	}

	names, err := p.manager.List(args[0])
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintf(stdout, "%s:%s\n", args[0], name)
	}
	return nil
}
