package cmd

import (
	"fmt"
)

func init() {
	RegisterCommand(&Command{
		Name:  "get",
		Short: "Print the SVG markup of icons",
		Long: `Resolve one or more icon names and print their SVG markup, one per line.

Attributes passed with --attr are applied last, after the defaults from
icons.yaml. Adding aria-label makes the icon labelled (role="img"); without
a label it is rendered decorative (aria-hidden="true").`,
		Usage: "icons get [--attr name=value]... [--class CLASS] [--size N] NAME...",
		Run:   runGet,
	})
}

func runGet(args []string) error {
	attrs, names, err := parseAttrFlags(args)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("at least one icon name is required")
	}

	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	for _, name := range names {
		markup, err := p.manager.Render(name, attrs)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, markup)
	}
	return nil
}
