package main

import (
	"fmt"
	"io"
	"sort"

	"moltree/internal/observ"
)

// printTimings sums phases by name and prints them slowest first.
func printTimings(out io.Writer, command string, files int, report observ.Report) {
	byName := make(map[string]float64)
	var order []string
	for _, ph := range report.Phases {
		if _, seen := byName[ph.Name]; !seen {
			order = append(order, ph.Name)
		}
		byName[ph.Name] += ph.DurationMS
	}
	sort.SliceStable(order, func(i, j int) bool { return byName[order[i]] > byName[order[j]] })

	fmt.Fprintf(out, "%s: %d file(s), %.1f ms\n", command, files, report.TotalMS)
	for _, name := range order {
		fmt.Fprintf(out, "  %-14s %8.2f ms\n", name, byName[name])
	}
}
