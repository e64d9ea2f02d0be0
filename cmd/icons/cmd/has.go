package cmd

import (
	"fmt"
)

func init() {
	RegisterCommand(&Command{
		Name:  "has",
		Short: "Check whether icons exist",
		Long: `Report whether each name resolves. Malformed names are reported as
missing rather than as errors. The command fails if any name is missing.

Remote (iconify) providers download the icon to answer.`,
		Usage: "icons has NAME...",
		Run:   runHas,
	})
}

func runHas(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one icon name is required")
	}

	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	missing := 0
	for _, name := range args {
		if p.manager.Has(name) {
			fmt.Fprintf(stdout, "%s: found\n", name)
			continue
		}
		missing++
		fmt.Fprintf(stdout, "%s: missing\n", name)
	}
	if missing > 0 {
		return fmt.Errorf("%d of %d icons missing", missing, len(args))
	}
	return nil
}
