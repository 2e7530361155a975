package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fretcoach/fretcoach/pkg/lesson"
)

func newLessonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lessons",
		Short: "List the built-in lesson plans",
		Run: func(cmd *cobra.Command, args []string) {
			plans := lesson.Builtin()
			names := make([]string, 0, len(plans))
			for name := range plans {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				p := plans[name]
				mode := "tap to record"
				if p.AutoRecord {
					mode = "auto-records"
				}
				fmt.Printf("%s\n", bannerStyle.Render(name))
				fmt.Printf("  %s\n", dimStyle.Render(p.Description))
				fmt.Printf("  %s\n\n", dimStyle.Render(fmt.Sprintf("targets: %s  (%s)", strings.Join(p.Targets, ", "), mode)))
			}
		},
	}
}
